package pipeline

import (
	"iter"
	"log/slog"
	"math"

	"github.com/aluiziolira/go-lang-salaries/config"
	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/aluiziolira/go-lang-salaries/salary"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Aggregator turns the pages fetched for one language into a LanguageSummary.
type Aggregator struct {
	Estimator salary.Estimator
	// Budget is the configured number of pages per language.
	Budget int
	// Policy selects the denominator of the language average:
	// config.PolicyBudget divides by Budget, config.PolicyContributing by
	// the number of pages that produced an average.
	Policy string
	// DedupeMaxSize bounds the per-language set of seen vacancy IDs.
	// Zero keeps duplicates.
	DedupeMaxSize int
}

// PageAverage returns floor(sum/count). ok is false for an empty page,
// which contributes nothing instead of dividing by zero.
func PageAverage(estimates []float64) (int, bool) {
	if len(estimates) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, e := range estimates {
		sum += e
	}
	return int(math.Floor(sum / float64(len(estimates)))), true
}

// EstimatePage returns the estimates of every vacancy est does not skip.
func EstimatePage(page models.Page, est salary.Estimator) []float64 {
	estimates := make([]float64, 0, len(page.Vacancies))
	for _, v := range page.Vacancies {
		if value, ok := est.Estimate(v); ok {
			estimates = append(estimates, value)
		}
	}
	return estimates
}

type tally struct {
	processed    int
	averageSum   int
	contributing int
}

func fold[T, A any](seq iter.Seq[T], acc A, step func(A, T) A) A {
	for item := range seq {
		acc = step(acc, item)
	}
	return acc
}

// Summarize folds the pages of result into a summary for language.
func (a Aggregator) Summarize(language string, result *models.SearchResult) models.LanguageSummary {
	if result == nil {
		return models.LanguageSummary{Language: language}
	}

	pages := result.All()
	if a.DedupeMaxSize > 0 {
		pages = dedupe(pages, a.DedupeMaxSize)
	}

	t := fold(pages, tally{}, func(t tally, page models.Page) tally {
		estimates := EstimatePage(page, a.Estimator)
		t.processed += len(estimates)
		if avg, ok := PageAverage(estimates); ok {
			t.averageSum += avg
			t.contributing++
		}
		return t
	})

	return models.LanguageSummary{
		Language:           language,
		VacanciesFound:     result.Found,
		AverageSalary:      a.average(t),
		VacanciesProcessed: t.processed,
	}
}

func (a Aggregator) average(t tally) int {
	denominator := a.Budget
	if a.Policy == config.PolicyContributing {
		denominator = t.contributing
	}
	if denominator <= 0 {
		return 0
	}
	return t.averageSum / denominator
}

// dedupe drops vacancies whose ID was already yielded for this language.
// Vacancies without an ID are always kept.
func dedupe(pages iter.Seq[models.Page], size int) iter.Seq[models.Page] {
	return func(yield func(models.Page) bool) {
		seen, err := lru.New[string, struct{}](size)
		if err != nil {
			slog.Warn("dedupe disabled", slog.Any("error", err))
			for page := range pages {
				if !yield(page) {
					return
				}
			}
			return
		}

		for page := range pages {
			kept := make([]models.Vacancy, 0, len(page.Vacancies))
			for _, v := range page.Vacancies {
				if v.ID != "" {
					if seen.Contains(v.ID) {
						continue
					}
					seen.Add(v.ID, struct{}{})
				}
				kept = append(kept, v)
			}
			if !yield(models.Page{Number: page.Number, Vacancies: kept}) {
				return
			}
		}
	}
}
