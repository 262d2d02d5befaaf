package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-lang-salaries/config"
	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/aluiziolira/go-lang-salaries/salary"
)

func scenarioPage(number int) models.Page {
	return models.Page{Number: number, Vacancies: []models.Vacancy{
		{ID: "a", SalaryFrom: 100, SalaryTo: 200, Currency: "RUR"},
		{ID: "b", SalaryFrom: 0, SalaryTo: 0, Currency: "RUR"},
		{ID: "c", SalaryFrom: 50, Currency: "RUR"},
	}}
}

func emptyPage(number int) models.Page {
	return models.Page{Number: number, Vacancies: []models.Vacancy{
		{ID: "x"},
		{ID: "y", SalaryFrom: 100, Currency: "USD"},
	}}
}

func TestPageAverage(t *testing.T) {
	avg, ok := PageAverage([]float64{150, 60})
	require.True(t, ok)
	assert.Equal(t, 105, avg)

	avg, ok = PageAverage([]float64{1, 2})
	require.True(t, ok)
	assert.Equal(t, 1, avg, "average is floored")

	avg, ok = PageAverage(nil)
	assert.False(t, ok)
	assert.Zero(t, avg)
}

func TestEstimatePageScenario(t *testing.T) {
	estimates := EstimatePage(scenarioPage(0), salary.ForCurrency("RUR"))
	require.Len(t, estimates, 2)
	assert.Equal(t, 150.0, estimates[0])
	assert.InDelta(t, 60.0, estimates[1], 1e-9)
}

func TestSummarizeBudgetPolicy(t *testing.T) {
	agg := Aggregator{Estimator: salary.ForCurrency("RUR"), Budget: 3, Policy: config.PolicyBudget}
	result := &models.SearchResult{
		Found: 999,
		Pages: []models.Page{scenarioPage(0), emptyPage(1), scenarioPage(2)},
	}

	summary := agg.Summarize("python", result)

	assert.Equal(t, "python", summary.Language)
	assert.Equal(t, 999, summary.VacanciesFound)
	assert.Equal(t, 4, summary.VacanciesProcessed)
	// (105 + 0 + 105) / 3: the empty page still counts toward the denominator.
	assert.Equal(t, 70, summary.AverageSalary)
	assert.False(t, summary.Failed)
}

func TestSummarizeContributingPolicy(t *testing.T) {
	agg := Aggregator{Estimator: salary.ForCurrency("RUR"), Budget: 3, Policy: config.PolicyContributing}
	result := &models.SearchResult{
		Found: 999,
		Pages: []models.Page{scenarioPage(0), emptyPage(1), scenarioPage(2)},
	}

	summary := agg.Summarize("python", result)
	assert.Equal(t, 105, summary.AverageSalary)
	assert.Equal(t, 4, summary.VacanciesProcessed)
}

func TestSummarizeAllPagesEmpty(t *testing.T) {
	for _, policy := range []string{config.PolicyBudget, config.PolicyContributing} {
		t.Run(policy, func(t *testing.T) {
			agg := Aggregator{Estimator: salary.ForCurrency("RUR"), Budget: 2, Policy: policy}
			result := &models.SearchResult{Found: 5, Pages: []models.Page{emptyPage(0), {Number: 1}}}

			summary := agg.Summarize("c", result)
			assert.Zero(t, summary.AverageSalary)
			assert.Zero(t, summary.VacanciesProcessed)
			assert.Equal(t, 5, summary.VacanciesFound)
		})
	}
}

func TestSummarizeZeroBudget(t *testing.T) {
	agg := Aggregator{Estimator: salary.AnyCurrency(), Budget: 0, Policy: config.PolicyBudget}
	result := &models.SearchResult{Pages: []models.Page{scenarioPage(0)}}

	summary := agg.Summarize("go", result)
	assert.Zero(t, summary.AverageSalary)
	assert.Equal(t, 2, summary.VacanciesProcessed)
}

func TestSummarizeNilResult(t *testing.T) {
	agg := Aggregator{Estimator: salary.AnyCurrency(), Budget: 1}
	assert.Equal(t, models.LanguageSummary{Language: "php"}, agg.Summarize("php", nil))
}

func TestSummarizeProcessedEqualsSumOfPageCounts(t *testing.T) {
	est := salary.ForCurrency("RUR")
	pages := []models.Page{scenarioPage(0), emptyPage(1), scenarioPage(2), {Number: 3}}
	agg := Aggregator{Estimator: est, Budget: len(pages), Policy: config.PolicyBudget}

	want := 0
	for _, page := range pages {
		want += len(EstimatePage(page, est))
	}

	summary := agg.Summarize("java", &models.SearchResult{Pages: pages})
	assert.Equal(t, want, summary.VacanciesProcessed)
	assert.LessOrEqual(t, summary.VacanciesProcessed, (&models.SearchResult{Pages: pages}).VacancyCount())
}

func TestSummarizeDedupe(t *testing.T) {
	result := &models.SearchResult{Pages: []models.Page{scenarioPage(0), scenarioPage(1)}}

	plain := Aggregator{Estimator: salary.ForCurrency("RUR"), Budget: 2, Policy: config.PolicyBudget}
	assert.Equal(t, 4, plain.Summarize("ruby", result).VacanciesProcessed)

	deduped := plain
	deduped.DedupeMaxSize = 100
	summary := deduped.Summarize("ruby", result)
	assert.Equal(t, 2, summary.VacanciesProcessed, "repeated IDs on the second page are dropped")
	assert.Equal(t, 52, summary.AverageSalary, "second page is now empty: 105 / 2")

	// Summarize can be called again on the same result.
	assert.Equal(t, summary, deduped.Summarize("ruby", result))
}
