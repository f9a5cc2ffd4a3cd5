// Package config loads minbar settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up by the CLI.
const DefaultFile = "minbar.yaml"

// Config holds all minbar configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	GitHub  GitHubConfig  `yaml:"github"`
	FS      FSConfig      `yaml:"fs"`
	Planner PlannerConfig `yaml:"planner"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects the content store and the site namespace.
type StoreConfig struct {
	Backend       string `yaml:"backend"` // github, fs, memory
	Owner         string `yaml:"owner"`
	Branch        string `yaml:"branch"`
	TemplateOwner string `yaml:"template_owner"`
	TemplateRepo  string `yaml:"template_repo"`
}

// GitHubConfig configures the GitHub backend.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// FSConfig configures the local git backend.
type FSConfig struct {
	Root      string `yaml:"root"`
	Templates string `yaml:"templates"`
	Gitless   bool   `yaml:"gitless"`
	DevSafety *bool  `yaml:"dev_safety"`
}

// PlannerConfig configures the planning oracle.
type PlannerConfig struct {
	Provider  string `yaml:"provider"` // openai, gemini
	Model     string `yaml:"model"` // empty selects the provider default
	BaseURL   string `yaml:"base_url"`
	OpenAIKey string `yaml:"openai_api_key"`
	GeminiKey string `yaml:"gemini_api_key"`
	MaxTokens int    `yaml:"max_tokens"`
	JSONMode  bool   `yaml:"json_mode"`
	Timeout   string `yaml:"timeout"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	AdminOrigin    string `yaml:"admin_origin"`
	RequestTimeout string `yaml:"request_timeout"`
	StatusCodes    bool   `yaml:"status_codes"`
}

// AuthConfig configures operator accounts.
type AuthConfig struct {
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

// AssetsConfig restricts uploaded asset names.
type AssetsConfig struct {
	Allowed []string `yaml:"allowed"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "github",
			Branch:  "main",
		},
		GitHub: GitHubConfig{
			Timeout: "30s",
		},
		FS: FSConfig{
			Root: "./sites",
		},
		Planner: PlannerConfig{
			Provider:  "openai",
			MaxTokens: 400,
			Timeout:   "60s",
		},
		HTTP: HTTPConfig{
			Addr:           ":8000",
			AdminOrigin:    "http://localhost:5500",
			RequestTimeout: "120s",
		},
		Auth: AuthConfig{
			DBPath:   "./data/storage.sqlite3",
			TokenTTL: "24h",
		},
		Assets: AssetsConfig{
			Allowed: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_ORG"); v != "" {
		c.Store.Owner = v
	}
	if v := os.Getenv("DEFAULT_BRANCH"); v != "" {
		c.Store.Branch = v
	}
	if v := os.Getenv("GITHUB_TEMPLATE_OWNER"); v != "" {
		c.Store.TemplateOwner = v
	}
	if v := os.Getenv("GITHUB_TEMPLATE_REPO"); v != "" {
		c.Store.TemplateRepo = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Planner.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Planner.GeminiKey = v
		// a Gemini key alone selects Gemini
		if c.Planner.OpenAIKey == "" {
			c.Planner.Provider = "gemini"
		}
	}
	if v := os.Getenv("MANAGER_MODEL"); v != "" {
		c.Planner.Model = v
	}

	if v := os.Getenv("ADMIN_ORIGIN"); v != "" {
		c.HTTP.AdminOrigin = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Auth.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetPlannerTimeout returns the planner timeout as a duration.
func (c *Config) GetPlannerTimeout() time.Duration {
	return duration(c.Planner.Timeout, 60*time.Second)
}

// GetRequestTimeout returns the HTTP request timeout as a duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return duration(c.HTTP.RequestTimeout, 120*time.Second)
}

// GetGitHubTimeout returns the GitHub client timeout as a duration.
func (c *Config) GetGitHubTimeout() time.Duration {
	return duration(c.GitHub.Timeout, 30*time.Second)
}

// GetTokenTTL returns the bearer token lifetime as a duration.
func (c *Config) GetTokenTTL() time.Duration {
	return duration(c.Auth.TokenTTL, 24*time.Hour)
}

// DevSafetyEnabled reports whether fs roots are sandboxed during go run / go test.
func (c *Config) DevSafetyEnabled() bool {
	return c.FS.DevSafety == nil || *c.FS.DevSafety
}

// ValidBackends lists the supported content stores.
var ValidBackends = []string{"github", "fs", "memory"}

// ValidProviders lists the supported planning oracles.
var ValidProviders = []string{"openai", "gemini"}

// Validate checks the store and planner settings.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(ValidBackends, c.Store.Backend) {
		problems = append(problems, fmt.Sprintf("invalid store backend: %q (valid: %v)", c.Store.Backend, ValidBackends))
	}
	if c.Store.Owner == "" {
		problems = append(problems, "store owner not configured (set GITHUB_ORG)")
	}
	if c.Store.Backend == "github" && c.GitHub.Token == "" {
		problems = append(problems, "github token not configured (set GITHUB_TOKEN)")
	}
	if c.Store.Backend == "fs" && c.FS.Root == "" {
		problems = append(problems, "fs root not configured")
	}

	switch c.Planner.Provider {
	case "openai":
		if c.Planner.OpenAIKey == "" && c.Planner.BaseURL == "" {
			problems = append(problems, "planner api key not configured (set OPENAI_API_KEY)")
		}
	case "gemini":
		if c.Planner.GeminiKey == "" {
			problems = append(problems, "planner api key not configured (set GEMINI_API_KEY)")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid planner provider: %q (valid: %v)", c.Planner.Provider, ValidProviders))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
