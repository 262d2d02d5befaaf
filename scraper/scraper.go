// Package scraper fetches paginated vacancy searches from HeadHunter and SuperJob.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-lang-salaries/config"
	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves every page of the configured budget for one language.
type Fetcher interface {
	Name() string
	PageBudget() int
	Fetch(ctx context.Context, language string) (*models.SearchResult, error)
}

type pageDecoder func(body []byte) (int, []models.Vacancy, error)

// client wraps a synchronous colly collector shared by the pages of a source.
type client struct {
	source    string
	collector *colly.Collector
	metrics   *Metrics
	userAgent string

	requestCount int64
}

func newClient(source string, cfg *config.Config, metrics *Metrics) (*client, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	return &client{
		source:    source,
		collector: collector,
		metrics:   metrics,
		userAgent: cfg.UserAgent,
	}, nil
}

// RequestCount returns the number of requests issued so far.
func (c *client) RequestCount() int {
	return int(atomic.LoadInt64(&c.requestCount))
}

func (c *client) setTransport(rt http.RoundTripper) {
	c.collector.WithTransport(rt)
}

// fetchPages requests pages origin .. origin+budget-1. The budget is fixed:
// short or empty trailing pages are kept, any failed page aborts the language.
func (c *client) fetchPages(ctx context.Context, language string, origin, budget int, pageURL func(page int) string, header http.Header, decode pageDecoder) (*models.SearchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.SearchResult{Pages: make([]models.Page, 0, budget)}
	for i := 0; i < budget; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		number := origin + i
		body, err := c.get(pageURL(number), header)
		if err != nil {
			return nil, fmt.Errorf("%s %q page %d: %w", c.source, language, number, err)
		}

		found, vacancies, err := decode(body)
		if err != nil {
			decodeErr := ErrDecode{Err: err}
			c.metrics.IncError(c.source, errorTypeLabel(decodeErr))
			return nil, fmt.Errorf("%s %q page %d: %w", c.source, language, number, decodeErr)
		}

		result.Found = found
		result.Pages = append(result.Pages, models.Page{Number: number, Vacancies: vacancies})
		c.metrics.AddPage(c.source, len(vacancies))

		slog.Debug("page fetched",
			slog.String("source", c.source),
			slog.String("language", language),
			slog.Int("page", number),
			slog.Int("vacancies", len(vacancies)),
			slog.Int("found", found),
		)
	}
	return result, nil
}

func (c *client) get(rawURL string, header http.Header) ([]byte, error) {
	collector := c.collector.Clone()

	var (
		body   []byte
		status int
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	hdr := http.Header{}
	for key, values := range header {
		hdr[key] = append([]string(nil), values...)
	}
	hdr.Set("User-Agent", c.userAgent)
	hdr.Set("Accept", "application/json")

	atomic.AddInt64(&c.requestCount, 1)
	c.metrics.IncRequest(c.source, "started")
	start := time.Now()
	err := collector.Request(http.MethodGet, rawURL, nil, nil, hdr)
	c.metrics.ObserveDuration(c.source, time.Since(start))

	if err != nil || status >= http.StatusMultipleChoices {
		classified := classifyError(err, status)
		category := errorTypeLabel(classified)
		c.metrics.IncError(c.source, category)
		slog.Debug("request error",
			slog.String("source", c.source),
			slog.String("url", rawURL),
			slog.Int("status", status),
			slog.String("category", category),
			slog.Any("error", err),
		)
		return nil, classified
	}

	c.metrics.IncRequest(c.source, "completed")
	return body, nil
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		} else {
			wrapped = fmt.Errorf("http status %d: %w", statusCode, err)
		}
		switch statusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized{Err: wrapped}
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
		return wrapped
	}

	return err
}
