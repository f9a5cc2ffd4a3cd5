package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GITHUB_TOKEN", "GITHUB_ORG", "DEFAULT_BRANCH", "GITHUB_TEMPLATE_OWNER", "GITHUB_TEMPLATE_REPO",
		"OPENAI_API_KEY", "MANAGER_MODEL", "GEMINI_API_KEY", "ADMIN_ORIGIN", "DB_PATH", "JWT_SECRET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: fs
  owner: masajid
fs:
  root: /srv/sites
planner:
  provider: gemini
  timeout: 5s
http:
  status_codes: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fs", cfg.Store.Backend)
	assert.Equal(t, "main", cfg.Store.Branch, "unset keys keep defaults")
	assert.Equal(t, "/srv/sites", cfg.FS.Root)
	assert.Equal(t, "gemini", cfg.Planner.Provider)
	assert.Equal(t, 5*time.Second, cfg.GetPlannerTimeout())
	assert.True(t, cfg.HTTP.StatusCodes)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("original environment names", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GITHUB_TOKEN", "ghp_x")
		t.Setenv("GITHUB_ORG", "masajid")
		t.Setenv("DEFAULT_BRANCH", "gh-pages")
		t.Setenv("GITHUB_TEMPLATE_OWNER", "minbar")
		t.Setenv("GITHUB_TEMPLATE_REPO", "site-template")
		t.Setenv("OPENAI_API_KEY", "sk-x")
		t.Setenv("MANAGER_MODEL", "gpt-4o-mini")
		t.Setenv("ADMIN_ORIGIN", "https://admin.example.org")
		t.Setenv("DB_PATH", "/var/lib/minbar.db")
		t.Setenv("JWT_SECRET", "s")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ghp_x", cfg.GitHub.Token)
		assert.Equal(t, "masajid", cfg.Store.Owner)
		assert.Equal(t, "gh-pages", cfg.Store.Branch)
		assert.Equal(t, "minbar", cfg.Store.TemplateOwner)
		assert.Equal(t, "site-template", cfg.Store.TemplateRepo)
		assert.Equal(t, "sk-x", cfg.Planner.OpenAIKey)
		assert.Equal(t, "openai", cfg.Planner.Provider)
		assert.Equal(t, "gpt-4o-mini", cfg.Planner.Model)
		assert.Equal(t, "https://admin.example.org", cfg.HTTP.AdminOrigin)
		assert.Equal(t, "/var/lib/minbar.db", cfg.Auth.DBPath)
		assert.Equal(t, "s", cfg.Auth.JWTSecret)
	})

	t.Run("GEMINI_API_KEY alone selects gemini", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "g")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini", cfg.Planner.Provider)
		assert.Empty(t, cfg.Planner.Model)
	})

	t.Run("OPENAI_API_KEY keeps openai", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "g")
		t.Setenv("OPENAI_API_KEY", "o")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "openai", cfg.Planner.Provider)
	})
}

func TestDurations_Fallback(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 60*time.Second, cfg.GetPlannerTimeout())
	assert.Equal(t, 120*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetGitHubTimeout())
	assert.Equal(t, 24*time.Hour, cfg.GetTokenTTL())
	assert.True(t, cfg.DevSafetyEnabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Store.Owner = "masajid"
		cfg.GitHub.Token = "ghp"
		cfg.Planner.OpenAIKey = "sk"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Store.Backend = "s3" }},
		{"no owner", func(c *Config) { c.Store.Owner = "" }},
		{"no github token", func(c *Config) { c.GitHub.Token = "" }},
		{"no planner key", func(c *Config) { c.Planner.OpenAIKey = "" }},
		{"bad provider", func(c *Config) { c.Planner.Provider = "oracle" }},
		{"gemini without key", func(c *Config) { c.Planner.Provider = "gemini" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("memory needs no token", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Backend = "memory"
		cfg.GitHub.Token = ""
		assert.NoError(t, cfg.Validate())
	})
}
