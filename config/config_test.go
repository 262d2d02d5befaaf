package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.SuperJob.APIKey = "v3.r.test"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "missing superjob key",
			mutate: func(cfg *Config) {
				cfg.SuperJob.APIKey = "  "
			},
			wantErr: SuperJobKeyEnv,
		},
		{
			name: "zero headhunter pages",
			mutate: func(cfg *Config) {
				cfg.HeadHunter.Pages = 0
			},
			wantErr: "headhunter pages",
		},
		{
			name: "zero superjob pages",
			mutate: func(cfg *Config) {
				cfg.SuperJob.Pages = 0
			},
			wantErr: "superjob pages",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.HeadHunter.BaseURL = ""
			},
			wantErr: "headhunter base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.SuperJob.BaseURL = "http://"
			},
			wantErr: "superjob base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = -1
			},
			wantErr: "parallelism",
		},
		{
			name: "unknown policy",
			mutate: func(cfg *Config) {
				cfg.Policy = "median"
			},
			wantErr: "policy",
		},
		{
			name: "unsupported superjob period",
			mutate: func(cfg *Config) {
				cfg.SuperJob.Period = 30
			},
			wantErr: "superjob period",
		},
		{
			name: "empty language list",
			mutate: func(cfg *Config) {
				cfg.Languages = nil
			},
			wantErr: "language list",
		},
		{
			name: "bad output format",
			mutate: func(cfg *Config) {
				cfg.OutputFile = "out/summary.xml"
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigNeedsCredential(t *testing.T) {
	if err := DefaultConfig().Validate(); err == nil {
		t.Fatalf("default config without a superjob key should not validate")
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config with key should validate, got %v", err)
	}
}

func TestDefaultConfigLanguagesAreCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Languages[0] = "cobol"
	if DefaultLanguages[0] != "python" {
		t.Fatalf("DefaultLanguages mutated through config: %v", DefaultLanguages)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SALARY_TEST_INT", "12")
	value, ok, err := EnvInt("SALARY_TEST_INT")
	if err != nil || !ok || value != 12 {
		t.Fatalf("EnvInt = %d, %v, %v; want 12, true, nil", value, ok, err)
	}

	t.Setenv("SALARY_TEST_INT", "twelve")
	if _, _, err := EnvInt("SALARY_TEST_INT"); err == nil {
		t.Fatalf("expected parse error")
	}

	if _, ok, err := EnvInt("SALARY_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset key should report ok=false without error")
	}
}

func TestParseLanguages(t *testing.T) {
	got := ParseLanguages(" Go, python,, C++ ")
	want := []string{"go", "python", "c++"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseLanguages = %v, want %v", got, want)
	}
}
