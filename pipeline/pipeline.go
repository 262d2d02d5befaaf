// Package pipeline fetches, estimates and aggregates salaries per language.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/aluiziolira/go-lang-salaries/scraper"
)

// progressInterval spaces the periodic progress logs emitted at debug level.
const progressInterval = 5 * time.Second

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

// Pipeline runs languages for one source through a bounded worker pool.
// Each language summary is stored exactly once; a failed language is
// zero-filled and never affects the others.
type Pipeline struct {
	ctx        context.Context
	fetcher    scraper.Fetcher
	aggregator Aggregator
	metrics    *scraper.Metrics
	langCh     chan string

	wg sync.WaitGroup

	resultsMu sync.Mutex
	summaries map[string]models.LanguageSummary
	failed    map[string]string
	onDone    func(models.LanguageSummary)

	counters counters

	mu     sync.Mutex // guards closed
	closed bool

	start        time.Time
	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline for fetcher. metrics may be nil.
func NewPipeline(ctx context.Context, fetcher scraper.Fetcher, aggregator Aggregator, metrics *scraper.Metrics) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Pipeline{
		ctx:        ctx,
		fetcher:    fetcher,
		aggregator: aggregator,
		metrics:    metrics,
		langCh:     make(chan string, 64),
		summaries:  make(map[string]models.LanguageSummary),
		failed:     make(map[string]string),
		counters:   newCounters(),
		start:      time.Now(),
		shutdown:   make(chan struct{}),
	}
}

// OnLanguageDone registers a callback invoked after each language is stored.
// It must be set before Start.
func (p *Pipeline) OnLanguageDone(fn func(models.LanguageSummary)) {
	p.onDone = fn
}

// Start launches worker goroutines.
func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process enqueues languages for fetching.
func (p *Pipeline) Process(languages ...string) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPipelineClosed
	}

	for _, lang := range languages {
		if lang == "" {
			continue
		}
		if err := p.enqueue(lang); err != nil {
			return err
		}
	}
	return nil
}

// Close waits for in-flight languages and prevents more submissions.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.closeOnce.Do(func() {
		close(p.langCh)
	})

	p.wg.Wait()
	p.signalShutdown()
	return nil
}

// Report returns summaries in the order of languages. Languages that were
// never processed are omitted.
func (p *Pipeline) Report(languages []string) *models.Report {
	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()

	report := &models.Report{
		Source:    p.fetcher.Name(),
		Summaries: make([]models.LanguageSummary, 0, len(languages)),
		Failed:    make(map[string]string, len(p.failed)),
		StartTime: p.start,
		EndTime:   time.Now(),
	}
	for _, lang := range languages {
		if summary, ok := p.summaries[lang]; ok {
			report.Summaries = append(report.Summaries, summary)
		}
	}
	for lang, msg := range p.failed {
		report.Failed[lang] = msg
	}
	if counter, ok := p.fetcher.(interface{ RequestCount() int }); ok {
		report.RequestCount = counter.RequestCount()
	}
	return report
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.counters.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snapshot := p.GetMetrics()
				slog.Debug("pipeline progress",
					slog.String("source", p.fetcher.Name()),
					slog.Int64("languages_done", snapshot["languages_done"].(int64)),
					slog.Int64("languages_failed", snapshot["languages_failed"].(int64)),
					slog.Int64("vacancies_processed", snapshot["vacancies_processed"].(int64)),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

// Run processes languages with the given number of workers and returns the report.
func Run(ctx context.Context, fetcher scraper.Fetcher, aggregator Aggregator, metrics *scraper.Metrics, languages []string, workers int, onDone func(models.LanguageSummary)) (*models.Report, error) {
	p := NewPipeline(ctx, fetcher, aggregator, metrics)
	p.OnLanguageDone(onDone)
	p.Start(workers)
	if slog.Default().Enabled(p.ctx, slog.LevelDebug) {
		p.StartMetricsReporting(progressInterval)
	}
	if err := p.Process(languages...); err != nil {
		_ = p.Close()
		return nil, err
	}
	if err := p.Close(); err != nil {
		return nil, err
	}
	return p.Report(languages), nil
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	for lang := range p.langCh {
		summary := p.summarize(lang)
		if !p.store(summary) {
			continue
		}
		if p.onDone != nil {
			p.onDone(summary)
		}
	}
}

func (p *Pipeline) summarize(lang string) models.LanguageSummary {
	source := p.fetcher.Name()

	if err := p.ctx.Err(); err != nil {
		return p.fail(lang, err)
	}

	result, err := p.fetcher.Fetch(p.ctx, lang)
	if err != nil {
		return p.fail(lang, err)
	}

	summary := p.aggregator.Summarize(lang, result)
	p.metrics.IncLanguage(source, "ok")
	p.counters.addLanguage(summary.VacanciesProcessed)
	slog.Debug("language summarised",
		slog.String("source", source),
		slog.String("language", lang),
		slog.Int("found", summary.VacanciesFound),
		slog.Int("processed", summary.VacanciesProcessed),
		slog.Int("average_salary", summary.AverageSalary),
	)
	return summary
}

func (p *Pipeline) fail(lang string, err error) models.LanguageSummary {
	source := p.fetcher.Name()
	category := scraper.ErrorLabel(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		category = "cancelled"
	}

	p.metrics.IncLanguage(source, "failed")
	p.counters.addFailure(category)
	slog.Warn("skipping language",
		slog.String("source", source),
		slog.String("language", lang),
		slog.String("category", category),
		slog.Any("error", err),
	)

	p.resultsMu.Lock()
	p.failed[lang] = err.Error()
	p.resultsMu.Unlock()

	return models.LanguageSummary{Language: lang, Failed: true}
}

// store records summary unless the language already has one.
func (p *Pipeline) store(summary models.LanguageSummary) bool {
	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()
	if _, exists := p.summaries[summary.Language]; exists {
		p.counters.addDuplicate()
		return false
	}
	p.summaries[summary.Language] = summary
	return true
}

func (p *Pipeline) enqueue(lang string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case p.langCh <- lang:
		return nil
	}
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type counters struct {
	mu         sync.Mutex
	done       int64
	failed     int64
	processed  int64
	duplicates int64
	failures   map[string]int
}

func newCounters() counters {
	return counters{
		failures: make(map[string]int),
	}
}

func (c *counters) addLanguage(processed int) {
	c.mu.Lock()
	c.done++
	c.processed += int64(processed)
	c.mu.Unlock()
}

func (c *counters) addFailure(kind string) {
	c.mu.Lock()
	c.failed++
	c.failures[kind]++
	c.mu.Unlock()
}

func (c *counters) addDuplicate() {
	c.mu.Lock()
	c.duplicates++
	c.mu.Unlock()
}

func (c *counters) snapshot() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	copyFailures := make(map[string]int, len(c.failures))
	for k, v := range c.failures {
		copyFailures[k] = v
	}

	return map[string]interface{}{
		"languages_done":      c.done,
		"languages_failed":    c.failed,
		"vacancies_processed": c.processed,
		"duplicate_languages": c.duplicates,
		"failures":            copyFailures,
	}
}
