package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aluiziolira/go-lang-salaries/config"
	"github.com/aluiziolira/go-lang-salaries/models"
	"github.com/aluiziolira/go-lang-salaries/parser"
)

// superJobKeyHeader carries the application secret on every SuperJob request.
const superJobKeyHeader = "X-Api-App-Id"

// SuperJob queries the api.superjob.ru vacancy search.
type SuperJob struct {
	*client
	cfg     config.SuperJobConfig
	keyword string
	header  http.Header
}

// NewSuperJob builds a SuperJob fetcher. The API key must already be validated.
func NewSuperJob(cfg *config.Config, metrics *Metrics) (*SuperJob, error) {
	c, err := newClient(parser.SourceSuperJob, cfg, metrics)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set(superJobKeyHeader, cfg.SuperJob.APIKey)
	return &SuperJob{client: c, cfg: cfg.SuperJob, keyword: cfg.Keyword, header: header}, nil
}

// Name implements Fetcher.
func (s *SuperJob) Name() string { return parser.SourceSuperJob }

// PageBudget implements Fetcher.
func (s *SuperJob) PageBudget() int { return s.cfg.Pages }

// SetTransport replaces the HTTP transport, mainly for tests.
func (s *SuperJob) SetTransport(rt http.RoundTripper) { s.setTransport(rt) }

// Fetch implements Fetcher.
func (s *SuperJob) Fetch(ctx context.Context, language string) (*models.SearchResult, error) {
	return s.fetchPages(ctx, language, s.cfg.PageOrigin, s.cfg.Pages, func(page int) string {
		return s.pageURL(language, page)
	}, s.header, parser.ParseSuperJob)
}

func (s *SuperJob) pageURL(language string, page int) string {
	params := url.Values{}
	params.Set("keyword", parser.QueryText(s.keyword, language))
	params.Set("town", s.cfg.Town)
	params.Set("catalogues", s.cfg.Catalogue)
	params.Set("period", strconv.Itoa(s.cfg.Period))
	params.Set("count", strconv.Itoa(s.cfg.PerPage))
	params.Set("page", strconv.Itoa(page))
	return s.cfg.BaseURL + "?" + params.Encode()
}
