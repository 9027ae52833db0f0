// Package config loads judge configuration from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/datar-psa/gojudge/scoring"
)

// EnvPrefix prefixes every environment override, e.g. GOJUDGE_JUDGE_NAME
const EnvPrefix = "GOJUDGE"

// Supported judge platforms
const (
	PlatformOllama = "ollama"
	PlatformOpenAI = "openai"
	PlatformGemini = "gemini"
)

// Defaults applied before the file and the environment are read
const (
	DefaultBaseURL            = "http://localhost:11434/v1"
	DefaultPlatform           = PlatformOllama
	DefaultAPIKey             = "-"
	DefaultTimeout            = 30
	DefaultRetries            = 1
	DefaultConcurrency        = 4
	DefaultExtractionAttempts = 1
	DefaultGeminiLocation     = "us-central1"
)

// Config holds everything needed to build a judge.
type Config struct {
	// Judge model settings
	Judge LLMConfig `yaml:"judge"`

	// Scoring overrides the default score table
	Scoring ScoreTableConfig `yaml:"scoring"`

	// Concurrency bounds parallel assessments in a questionnaire
	Concurrency int `yaml:"concurrency"`

	// ExtractionAttempts is how many times the judge is asked when its answer cannot be parsed
	ExtractionAttempts int `yaml:"extraction_attempts" split_words:"true"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// LLMConfig describes the judge model and how to reach it.
type LLMConfig struct {
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url" split_words:"true"`
	Platform string `yaml:"platform"`
	// APIKey may be "${VAR}" to read the key from the environment
	APIKey      string  `yaml:"api_key" split_words:"true"`
	MaxTokens   int     `yaml:"max_tokens" split_words:"true"` // 0 = model default
	Temperature float64 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // seconds
	Retries     int     `yaml:"retries"`

	// Vertex AI; when Project is empty the gemini platform uses APIKey instead
	Project  string `yaml:"project"`
	Location string `yaml:"location"`

	RequestsPerMinute int `yaml:"requests_per_minute" split_words:"true"` // 0 = unlimited
}

// ScoreTableConfig holds optional overrides for the six score table weights.
type ScoreTableConfig struct {
	PassHigh   *float64 `yaml:"pass_high" split_words:"true"`
	PassMedium *float64 `yaml:"pass_medium" split_words:"true"`
	PassLow    *float64 `yaml:"pass_low" split_words:"true"`
	FailHigh   *float64 `yaml:"fail_high" split_words:"true"`
	FailMedium *float64 `yaml:"fail_medium" split_words:"true"`
	FailLow    *float64 `yaml:"fail_low" split_words:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds a Config from defaults, the optional YAML file at path and
// GOJUDGE_* environment variables, in increasing priority, then validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func setDefaults(cfg *Config) {
	cfg.Judge = LLMConfig{
		BaseURL:  DefaultBaseURL,
		Platform: DefaultPlatform,
		APIKey:   DefaultAPIKey,
		Timeout:  DefaultTimeout,
		Retries:  DefaultRetries,
	}
	cfg.Concurrency = DefaultConcurrency
	cfg.ExtractionAttempts = DefaultExtractionAttempts
	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

func (c *Config) normalize() {
	c.Judge.Name = strings.TrimSpace(c.Judge.Name)
	c.Judge.Platform = strings.ToLower(strings.TrimSpace(c.Judge.Platform))
	c.Judge.BaseURL = strings.TrimRight(strings.TrimSpace(c.Judge.BaseURL), "/")
	if c.Judge.Platform == PlatformGemini && c.Judge.Project != "" && c.Judge.Location == "" {
		c.Judge.Location = DefaultGeminiLocation
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	errs = append(errs, c.Judge.validate()...)

	if _, err := c.Scoring.Table(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Concurrency < 1 {
		errs = append(errs, "concurrency must be positive")
	}
	if c.ExtractionAttempts < 1 {
		errs = append(errs, "extraction_attempts must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (l LLMConfig) validate() []string {
	var errs []string

	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, "judge name cannot be empty")
	}

	switch l.Platform {
	case PlatformOllama, PlatformOpenAI:
		if !strings.HasPrefix(l.BaseURL, "http://") && !strings.HasPrefix(l.BaseURL, "https://") {
			errs = append(errs, fmt.Sprintf("judge base_url must start with http:// or https:// (got %q)", l.BaseURL))
		}
	case PlatformGemini:
		if l.Project == "" && (l.APIKey == "" || l.APIKey == DefaultAPIKey) {
			errs = append(errs, "gemini judge needs either project (Vertex AI) or api_key")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported judge platform: %s (must be ollama, openai, or gemini)", l.Platform))
	}

	if l.MaxTokens < 0 {
		errs = append(errs, "judge max_tokens must be positive when set")
	}
	if l.Temperature < 0 || l.Temperature > 1 {
		errs = append(errs, "judge temperature must be within [0, 1]")
	}
	if l.Timeout < 1 {
		errs = append(errs, "judge timeout must be positive")
	}
	if l.Retries < 1 {
		errs = append(errs, "judge retries must be positive")
	}
	if l.RequestsPerMinute < 0 {
		errs = append(errs, "judge requests_per_minute cannot be negative")
	}

	return errs
}

// ResolveAPIKey returns the API key with a "${VAR}" reference expanded from
// the environment. An unset or empty VAR is an error.
func (l LLMConfig) ResolveAPIKey() (string, error) {
	key := l.APIKey
	if !strings.HasPrefix(key, "${") || !strings.HasSuffix(key, "}") {
		return key, nil
	}

	name := key[2 : len(key)-1]
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("environment variable %s referenced by api_key is not set", name)
	}
	return value, nil
}

// Table builds a score table from the defaults and the configured overrides.
func (s ScoreTableConfig) Table() (scoring.ScoreTable, error) {
	var opts []scoring.TableOption
	add := func(w *float64, opt func(float64) scoring.TableOption) {
		if w != nil {
			opts = append(opts, opt(*w))
		}
	}
	add(s.PassHigh, scoring.WithPassHigh)
	add(s.PassMedium, scoring.WithPassMedium)
	add(s.PassLow, scoring.WithPassLow)
	add(s.FailHigh, scoring.WithFailHigh)
	add(s.FailMedium, scoring.WithFailMedium)
	add(s.FailLow, scoring.WithFailLow)

	return scoring.NewScoreTable(opts...)
}
