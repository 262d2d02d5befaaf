// Package models defines data structures shared by fetchers, estimators and the pipeline.
package models

import (
	"iter"
	"time"
)

// Vacancy is one listing as returned by a job source.
// Zero SalaryFrom or SalaryTo means the bound was not published.
type Vacancy struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SalaryFrom float64 `json:"salary_from"`
	SalaryTo   float64 `json:"salary_to"`
	Currency   string  `json:"currency,omitempty"`
	Source     string  `json:"source"`
}

// Page holds the vacancies of a single search page.
type Page struct {
	Number    int
	Vacancies []Vacancy
}

// SearchResult is everything a fetcher collected for one language.
type SearchResult struct {
	Found int
	Pages []Page
}

// All yields the pages in request order. The sequence can be ranged over repeatedly.
func (r *SearchResult) All() iter.Seq[Page] {
	return func(yield func(Page) bool) {
		if r == nil {
			return
		}
		for _, page := range r.Pages {
			if !yield(page) {
				return
			}
		}
	}
}

// VacancyCount returns the number of vacancies across all pages.
func (r *SearchResult) VacancyCount() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, page := range r.Pages {
		total += len(page.Vacancies)
	}
	return total
}

// LanguageSummary is the per-language figure shown to the user.
type LanguageSummary struct {
	Language           string `csv:"language" json:"language"`
	VacanciesFound     int    `csv:"vacancies_found" json:"vacancies_found"`
	AverageSalary      int    `csv:"average_salary" json:"average_salary"`
	VacanciesProcessed int    `csv:"vacancies_processed" json:"vacancies_processed"`
	Failed             bool   `csv:"failed" json:"failed,omitempty"`
}

// Report holds the outcome of one source across all languages.
type Report struct {
	Source       string
	Summaries    []LanguageSummary
	Failed       map[string]string
	StartTime    time.Time
	EndTime      time.Time
	RequestCount int
}
