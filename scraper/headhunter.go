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

// HeadHunter queries the public api.hh.ru vacancy search. No credential is needed.
type HeadHunter struct {
	*client
	cfg     config.HeadHunterConfig
	keyword string
}

// NewHeadHunter builds a HeadHunter fetcher from cfg.
func NewHeadHunter(cfg *config.Config, metrics *Metrics) (*HeadHunter, error) {
	c, err := newClient(parser.SourceHeadHunter, cfg, metrics)
	if err != nil {
		return nil, err
	}
	return &HeadHunter{client: c, cfg: cfg.HeadHunter, keyword: cfg.Keyword}, nil
}

// Name implements Fetcher.
func (h *HeadHunter) Name() string { return parser.SourceHeadHunter }

// PageBudget implements Fetcher.
func (h *HeadHunter) PageBudget() int { return h.cfg.Pages }

// SetTransport replaces the HTTP transport, mainly for tests.
func (h *HeadHunter) SetTransport(rt http.RoundTripper) { h.setTransport(rt) }

// Fetch implements Fetcher.
func (h *HeadHunter) Fetch(ctx context.Context, language string) (*models.SearchResult, error) {
	return h.fetchPages(ctx, language, h.cfg.PageOrigin, h.cfg.Pages, func(page int) string {
		return h.pageURL(language, page)
	}, nil, parser.ParseHeadHunter)
}

func (h *HeadHunter) pageURL(language string, page int) string {
	params := url.Values{}
	params.Set("text", parser.QueryText(h.keyword, language))
	params.Set("area", h.cfg.Area)
	params.Set("period", strconv.Itoa(h.cfg.Period))
	params.Set("per_page", strconv.Itoa(h.cfg.PerPage))
	params.Set("page", strconv.Itoa(page))
	return h.cfg.BaseURL + "?" + params.Encode()
}
