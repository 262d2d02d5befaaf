package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-lang-salaries/config"
	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/aluiziolira/go-lang-salaries/pipeline"
	"github.com/aluiziolira/go-lang-salaries/render"
	"github.com/aluiziolira/go-lang-salaries/salary"
	"github.com/aluiziolira/go-lang-salaries/scraper"
	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// source pairs a fetcher with its estimator and table title.
type source struct {
	title     string
	fetcher   scraper.Fetcher
	estimator salary.Estimator
}

func main() {
	_ = godotenv.Load()

	cfg, err := buildConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, level := newLogger(cfg.Verbose)
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := scraper.NewMetrics()
	hh, err := scraper.NewHeadHunter(cfg, metrics)
	if err != nil {
		slog.Error("initialising headhunter fetcher", slog.Any("error", err))
		os.Exit(1)
	}
	sj, err := scraper.NewSuperJob(cfg, metrics)
	if err != nil {
		slog.Error("initialising superjob fetcher", slog.Any("error", err))
		os.Exit(1)
	}
	sources := []source{
		{title: "HeadHunter Moscow", fetcher: hh, estimator: salary.ForCurrency(cfg.HeadHunter.Currency)},
		{title: "SuperJob Moscow", fetcher: sj, estimator: salary.AnyCurrency()},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting salary collection",
		slog.Int("languages", len(cfg.Languages)),
		slog.Int("hh_pages", cfg.HeadHunter.Pages),
		slog.Int("sj_pages", cfg.SuperJob.Pages),
		slog.String("policy", cfg.Policy),
	)

	var bar *pb.ProgressBar
	if !cfg.Verbose && isTerminal(os.Stderr) {
		bar = pb.StartNew(len(cfg.Languages) * len(sources))
	}
	onDone := func(models.LanguageSummary) {
		if bar != nil {
			bar.Increment()
		}
	}

	startTime := time.Now()
	reports, err := collect(ctx, cfg, sources, metrics, onDone)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		slog.Error("salary collection failed", slog.Any("error", err))
		os.Exit(1)
	}

	for i, report := range reports {
		if err := render.Table(os.Stdout, sources[i].title, report); err != nil {
			slog.Error("rendering table", slog.Any("error", err))
		}
	}

	if cfg.OutputFile != "" {
		if err := export(cfg, reports); err != nil {
			slog.Error("export failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("summaries exported", slog.String("path", cfg.OutputFile))
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	logSummary(reports, time.Since(startTime))
}

// buildConfig layers environment overrides and then flags over the defaults.
func buildConfig(args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	pagesDefault := 0
	if value, ok, err := config.EnvInt("SALARY_PAGES"); err != nil {
		return nil, fmt.Errorf("invalid SALARY_PAGES: %w", err)
	} else if ok {
		pagesDefault = value
	}
	parallelDefault := cfg.Parallelism
	if value, ok, err := config.EnvInt("SALARY_PARALLEL"); err != nil {
		return nil, fmt.Errorf("invalid SALARY_PARALLEL: %w", err)
	} else if ok {
		parallelDefault = value
	}
	outputDefault := cfg.OutputFile
	if value, ok := config.EnvString("SALARY_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := cfg.MetricsAddr
	if value, ok := config.EnvString("SALARY_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	fs := flag.NewFlagSet("salaries", flag.ContinueOnError)
	pages := fs.Int("pages", pagesDefault, "Pages requested per language for both sources (0 keeps per-source defaults)")
	hhPages := fs.Int("hh-pages", 0, "HeadHunter pages requested per language (overrides -pages)")
	sjPages := fs.Int("sj-pages", 0, "SuperJob pages requested per language (overrides -pages)")
	parallelism := fs.Int("parallel", parallelDefault, "Languages fetched concurrently per source")
	sourceParallelism := fs.Int("parallel-sources", cfg.SourceParallelism, "Sources fetched concurrently")
	delayMs := fs.Int("delay", 0, "Delay between requests (milliseconds)")
	policy := fs.String("policy", cfg.Policy, "Average denominator: budget or contributing")
	dedupe := fs.Int("dedupe", cfg.DedupeMaxSize, "Drop repeated vacancy IDs per language, remembering up to N IDs (0 disables)")
	languages := fs.String("languages", strings.Join(cfg.Languages, ","), "Comma separated languages to query")
	outputFile := fs.String("output", outputDefault, "Optional summary export path")
	outputFormat := fs.String("format", cfg.OutputFormat, "Export format: csv or json")
	metricsAddr := fs.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := fs.Bool("v", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *pages > 0 {
		cfg.HeadHunter.Pages = *pages
		cfg.SuperJob.Pages = *pages
	}
	if *hhPages > 0 {
		cfg.HeadHunter.Pages = *hhPages
	}
	if *sjPages > 0 {
		cfg.SuperJob.Pages = *sjPages
	}
	cfg.Parallelism = *parallelism
	cfg.SourceParallelism = *sourceParallelism
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.Policy = strings.ToLower(*policy)
	cfg.DedupeMaxSize = *dedupe
	cfg.Languages = config.ParseLanguages(*languages)
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if key, ok := config.EnvString(config.SuperJobKeyEnv); ok {
		cfg.SuperJob.APIKey = key
	}
	return cfg, nil
}

// collect runs every source through the pipeline. A source never fails the
// run because of fetch errors; those are recorded per language.
func collect(ctx context.Context, cfg *config.Config, sources []source, metrics *scraper.Metrics, onDone func(models.LanguageSummary)) ([]*models.Report, error) {
	reports := make([]*models.Report, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.SourceParallelism)
	for i, src := range sources {
		g.Go(func() error {
			agg := pipeline.Aggregator{
				Estimator:     src.estimator,
				Budget:        src.fetcher.PageBudget(),
				Policy:        cfg.Policy,
				DedupeMaxSize: cfg.DedupeMaxSize,
			}
			report, err := pipeline.Run(gctx, src.fetcher, agg, metrics, cfg.Languages, cfg.Parallelism, onDone)
			if err != nil {
				return fmt.Errorf("%s: %w", src.fetcher.Name(), err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func export(cfg *config.Config, reports []*models.Report) (err error) {
	writer, err := pipeline.NewWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close writer: %w", closeErr)
		}
	}()

	for _, report := range reports {
		if err := writer.Write(report.Source, report.Summaries); err != nil {
			return err
		}
	}
	return writer.Validate()
}

func logSummary(reports []*models.Report, duration time.Duration) {
	for _, report := range reports {
		processed := 0
		for _, s := range report.Summaries {
			processed += s.VacanciesProcessed
		}
		slog.Info("source complete",
			slog.String("source", report.Source),
			slog.Int("languages", len(report.Summaries)),
			slog.Int("failed", len(report.Failed)),
			slog.Int("requests", report.RequestCount),
			slog.Int("vacancies_processed", processed),
		)
	}
	slog.Info("run complete", slog.Duration("duration", duration))
}

// newLogger logs to stderr so stdout carries only the tables.
func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var out io.Writer = os.Stderr
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
