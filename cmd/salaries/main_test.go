package main

import (
	"testing"
	"time"

	"github.com/aluiziolira/go-lang-salaries/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfigDefaults(t *testing.T) {
	t.Setenv(config.SuperJobKeyEnv, "secret")

	cfg, err := buildConfig(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, config.DefaultLanguages, cfg.Languages)
	assert.Equal(t, 50, cfg.HeadHunter.Pages)
	assert.Equal(t, 5, cfg.SuperJob.Pages)
	assert.Equal(t, "secret", cfg.SuperJob.APIKey)
	assert.Equal(t, config.PolicyBudget, cfg.Policy)
}

func TestBuildConfigMissingKeyFailsValidation(t *testing.T) {
	t.Setenv(config.SuperJobKeyEnv, "")

	cfg, err := buildConfig(nil)
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), config.SuperJobKeyEnv)
}

func TestBuildConfigPagesPrecedence(t *testing.T) {
	t.Setenv("SALARY_PAGES", "4")

	cfg, err := buildConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.HeadHunter.Pages)
	assert.Equal(t, 4, cfg.SuperJob.Pages)

	cfg, err = buildConfig([]string{"-pages", "3", "-sj-pages", "1"})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.HeadHunter.Pages)
	assert.Equal(t, 1, cfg.SuperJob.Pages)
}

func TestBuildConfigFlags(t *testing.T) {
	t.Setenv("SALARY_OUTPUT", "out/env.csv")

	cfg, err := buildConfig([]string{
		"-languages", " Go, rust ,,",
		"-parallel", "3",
		"-parallel-sources", "2",
		"-policy", "CONTRIBUTING",
		"-dedupe", "100",
		"-delay", "250",
		"-format", "JSON",
		"-v",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "rust"}, cfg.Languages)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 2, cfg.SourceParallelism)
	assert.Equal(t, config.PolicyContributing, cfg.Policy)
	assert.Equal(t, 100, cfg.DedupeMaxSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, "out/env.csv", cfg.OutputFile)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verbose)
}

func TestBuildConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("SALARY_PARALLEL", "many")

	_, err := buildConfig(nil)
	assert.ErrorContains(t, err, "SALARY_PARALLEL")
}
