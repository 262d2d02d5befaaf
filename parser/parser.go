// Package parser decodes vacancy search responses into models.Vacancy values.
package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-lang-salaries/models"
)

// Source names used on vacancies, metrics and reports.
const (
	SourceHeadHunter = "headhunter"
	SourceSuperJob   = "superjob"
)

type headHunterPage struct {
	Found int              `json:"found"`
	Pages int              `json:"pages"`
	Items []headHunterItem `json:"items"`
}

type headHunterItem struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Salary *headHunterSalary `json:"salary"`
}

type headHunterSalary struct {
	From     *float64 `json:"from"`
	To       *float64 `json:"to"`
	Currency string   `json:"currency"`
}

type superJobPage struct {
	Objects []superJobItem `json:"objects"`
	Total   int            `json:"total"`
	More    bool           `json:"more"`
}

type superJobItem struct {
	ID          int64   `json:"id"`
	Profession  string  `json:"profession"`
	PaymentFrom float64 `json:"payment_from"`
	PaymentTo   float64 `json:"payment_to"`
	Currency    string  `json:"currency"`
}

// ParseHeadHunter decodes one page of the HeadHunter vacancy search.
// Vacancies without a salary object are kept with zero bounds.
func ParseHeadHunter(body []byte) (int, []models.Vacancy, error) {
	var page headHunterPage
	if err := json.Unmarshal(body, &page); err != nil {
		return 0, nil, fmt.Errorf("decode headhunter page: %w", err)
	}

	vacancies := make([]models.Vacancy, 0, len(page.Items))
	for _, item := range page.Items {
		v := models.Vacancy{
			ID:     item.ID,
			Title:  NormalizeTitle(item.Name),
			Source: SourceHeadHunter,
		}
		if item.Salary != nil {
			v.SalaryFrom = deref(item.Salary.From)
			v.SalaryTo = deref(item.Salary.To)
			v.Currency = strings.TrimSpace(item.Salary.Currency)
		}
		vacancies = append(vacancies, v)
	}
	return page.Found, vacancies, nil
}

// ParseSuperJob decodes one page of the SuperJob vacancy search. The currency
// is not carried over: SuperJob listings are treated as roubles.
func ParseSuperJob(body []byte) (int, []models.Vacancy, error) {
	var page superJobPage
	if err := json.Unmarshal(body, &page); err != nil {
		return 0, nil, fmt.Errorf("decode superjob page: %w", err)
	}

	vacancies := make([]models.Vacancy, 0, len(page.Objects))
	for _, item := range page.Objects {
		vacancies = append(vacancies, models.Vacancy{
			ID:         strconv.FormatInt(item.ID, 10),
			Title:      NormalizeTitle(item.Profession),
			SalaryFrom: item.PaymentFrom,
			SalaryTo:   item.PaymentTo,
			Source:     SourceSuperJob,
		})
	}
	return page.Total, vacancies, nil
}

// QueryText builds the search text sent to both sources.
func QueryText(keyword, language string) string {
	return strings.TrimSpace(strings.TrimSpace(keyword) + " " + strings.TrimSpace(language))
}

// NormalizeTitle collapses runs of whitespace in a vacancy title.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
