package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// SuperJobKeyEnv names the environment variable holding the SuperJob credential.
const SuperJobKeyEnv = "SUPERJOB_SECRET_KEY"

// Averaging policies for the per-language salary figure.
const (
	PolicyBudget       = "budget"
	PolicyContributing = "contributing"
)

// DefaultLanguages is the fixed language list queried on every run.
var DefaultLanguages = []string{
	"python", "javascript", "java", "ruby", "php",
	"c++", "go", "c", "scala", "swift",
}

// HeadHunterConfig describes the HeadHunter vacancy search.
type HeadHunterConfig struct {
	BaseURL    string
	Pages      int
	PageOrigin int
	PerPage    int
	Area       string
	Period     int    // days
	Currency   string // accepted salary currency
}

// SuperJobConfig describes the SuperJob vacancy search.
type SuperJobConfig struct {
	BaseURL    string
	APIKey     string
	Pages      int
	PageOrigin int
	PerPage    int
	Town       string
	Catalogue  string
	Period     int // days, SuperJob accepts 0, 1, 3 or 7
}

// Config holds run configuration.
type Config struct {
	Languages         []string
	Keyword           string
	HeadHunter        HeadHunterConfig
	SuperJob          SuperJobConfig
	Parallelism       int
	SourceParallelism int
	Timeout           time.Duration
	Delay             time.Duration
	UserAgent         string
	Policy            string // budget or contributing
	DedupeMaxSize     int    // 0 disables vacancy de-duplication
	OutputFile        string // optional summary export
	OutputFormat      string // csv or json
	MetricsAddr       string
	Verbose           bool
}

// DefaultConfig returns the settings the original tool ran with.
func DefaultConfig() *Config {
	languages := make([]string, len(DefaultLanguages))
	copy(languages, DefaultLanguages)

	return &Config{
		Languages: languages,
		Keyword:   "Программист",
		HeadHunter: HeadHunterConfig{
			BaseURL:    "https://api.hh.ru/vacancies",
			Pages:      50,
			PageOrigin: 0,
			PerPage:    20,
			Area:       "1",
			Period:     30,
			Currency:   "RUR",
		},
		SuperJob: SuperJobConfig{
			BaseURL:    "https://api.superjob.ru/2.0/vacancies/",
			Pages:      5,
			PageOrigin: 0,
			PerPage:    100,
			Town:       "4",
			Catalogue:  "48",
			Period:     7,
		},
		Parallelism:       1,
		SourceParallelism: 1,
		Timeout:           15 * time.Second,
		Delay:             0,
		UserAgent:         "go-lang-salaries/1.0",
		Policy:            PolicyBudget,
		DedupeMaxSize:     0,
		OutputFile:        "",
		OutputFormat:      "csv",
		MetricsAddr:       "",
		Verbose:           false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("language list cannot be empty")
	}
	for _, lang := range c.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("language list contains an empty entry")
		}
	}
	if strings.TrimSpace(c.Keyword) == "" {
		return fmt.Errorf("search keyword cannot be empty")
	}

	if err := validateBaseURL("headhunter", c.HeadHunter.BaseURL); err != nil {
		return err
	}
	if c.HeadHunter.Pages <= 0 {
		return fmt.Errorf("headhunter pages must be positive")
	}
	if c.HeadHunter.PageOrigin < 0 {
		return fmt.Errorf("headhunter page origin cannot be negative")
	}
	if c.HeadHunter.PerPage <= 0 {
		return fmt.Errorf("headhunter per page must be positive")
	}
	if c.HeadHunter.Currency == "" {
		return fmt.Errorf("headhunter currency cannot be empty")
	}

	if err := validateBaseURL("superjob", c.SuperJob.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.SuperJob.APIKey) == "" {
		return fmt.Errorf("superjob api key is required (set %s)", SuperJobKeyEnv)
	}
	if c.SuperJob.Pages <= 0 {
		return fmt.Errorf("superjob pages must be positive")
	}
	if c.SuperJob.PageOrigin < 0 {
		return fmt.Errorf("superjob page origin cannot be negative")
	}
	if c.SuperJob.PerPage <= 0 {
		return fmt.Errorf("superjob per page must be positive")
	}
	switch c.SuperJob.Period {
	case 0, 1, 3, 7:
	default:
		return fmt.Errorf("superjob period must be one of 0, 1, 3 or 7 days")
	}

	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.SourceParallelism <= 0 {
		return fmt.Errorf("source parallelism must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Policy != PolicyBudget && c.Policy != PolicyContributing {
		return fmt.Errorf("policy must be %s or %s", PolicyBudget, PolicyContributing)
	}
	if c.DedupeMaxSize < 0 {
		return fmt.Errorf("dedupe max size cannot be negative")
	}
	if c.OutputFile != "" && c.OutputFormat != "csv" && c.OutputFormat != "json" {
		return fmt.Errorf("output format must be csv or json")
	}

	return nil
}

func validateBaseURL(source, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s base URL cannot be empty", source)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s base URL: %w", source, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s base URL must include a host", source)
	}
	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer. Unset keys report ok=false without error.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// ParseLanguages splits a comma separated list, dropping blanks.
func ParseLanguages(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
