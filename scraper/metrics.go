package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors shared by all fetchers.
type Metrics struct {
	Registry                *prometheus.Registry
	RequestsTotal           *prometheus.CounterVec
	RequestDuration         *prometheus.HistogramVec
	PagesFetchedTotal       *prometheus.CounterVec
	VacanciesFetchedTotal   *prometheus.CounterVec
	ErrorsTotal             *prometheus.CounterVec
	LanguagesCompletedTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salary_requests_total",
			Help: "Total vacancy search requests by source and phase.",
		},
		[]string{"source", "phase"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salary_request_duration_seconds",
			Help:    "Vacancy search request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salary_pages_fetched_total",
			Help: "Search pages decoded successfully.",
		},
		[]string{"source"},
	)
	vacancies := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salary_vacancies_fetched_total",
			Help: "Vacancies decoded from search pages.",
		},
		[]string{"source"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salary_errors_total",
			Help: "Fetch errors by source and type.",
		},
		[]string{"source", "error_type"},
	)
	languages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salary_languages_completed_total",
			Help: "Languages summarised, by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	registry.MustRegister(requests, requestDuration, pages, vacancies, errorsTotal, languages)

	return &Metrics{
		Registry:                registry,
		RequestsTotal:           requests,
		RequestDuration:         requestDuration,
		PagesFetchedTotal:       pages,
		VacanciesFetchedTotal:   vacancies,
		ErrorsTotal:             errorsTotal,
		LanguagesCompletedTotal: languages,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(source, phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(source, phase).Inc()
}

// ObserveDuration records a request duration.
func (m *Metrics) ObserveDuration(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(source).Observe(d.Seconds())
}

// AddPage records one decoded page and its vacancies.
func (m *Metrics) AddPage(source string, vacancies int) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.WithLabelValues(source).Inc()
	m.VacanciesFetchedTotal.WithLabelValues(source).Add(float64(vacancies))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(source, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// IncLanguage records a finished language; outcome is "ok" or "failed".
func (m *Metrics) IncLanguage(source, outcome string) {
	if m == nil {
		return
	}
	m.LanguagesCompletedTotal.WithLabelValues(source, outcome).Inc()
}
