// Package render prints salary reports as terminal tables.
package render

import (
	"fmt"
	"io"

	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

var header = []string{"Language", "Vacancies found", "Vacancies processed", "Average salary"}

// Rows converts summaries into table rows, header first.
func Rows(summaries []models.LanguageSummary) [][]string {
	rows := make([][]string, 0, len(summaries)+1)
	rows = append(rows, header)
	for _, s := range summaries {
		average := humanize.Comma(int64(s.AverageSalary))
		if s.Failed {
			average = "n/a"
		}
		rows = append(rows, []string{
			s.Language,
			humanize.Comma(int64(s.VacanciesFound)),
			humanize.Comma(int64(s.VacanciesProcessed)),
			average,
		})
	}
	return rows
}

// Table writes report to w under title.
func Table(w io.Writer, title string, report *models.Report) error {
	if report == nil {
		return fmt.Errorf("render %q: nil report", title)
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(pterm.TableData(Rows(report.Summaries))).
		Srender()
	if err != nil {
		return fmt.Errorf("render %s table: %w", report.Source, err)
	}

	if _, err := fmt.Fprintf(w, "%s\n%s\n", pterm.Bold.Sprint(title), table); err != nil {
		return fmt.Errorf("write %s table: %w", report.Source, err)
	}
	if len(report.Failed) > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", pterm.Yellow(fmt.Sprintf("%d language(s) skipped after fetch errors", len(report.Failed)))); err != nil {
			return fmt.Errorf("write %s table: %w", report.Source, err)
		}
	}
	return nil
}
