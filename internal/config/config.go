package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string          `yaml:"addr"`
	JWTSecret     string          `yaml:"jwt_secret"`
	APITimeout    time.Duration   `yaml:"timeout"`
	DatabasePath  string          `yaml:"database_path"`
	TokenDuration time.Duration   `yaml:"token_duration"`
	Ollama        OllamaConfig    `yaml:"ollama"`
	Collectors    CollectorConfig `yaml:"collectors"`
	Scheduler     SchedulerConfig `yaml:"scheduler"`
}

type OllamaConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	EmbedModel              string        `yaml:"embed_model"`
	ChatModel               string        `yaml:"chat_model"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

// CollectorConfig controls which job sources the refresh cycle pulls from.
type CollectorConfig struct {
	Sources     []string `yaml:"sources"`
	SampleCount int      `yaml:"sample_count"`
	SearchTerms []string `yaml:"search_terms"`
}

type SchedulerConfig struct {
	Enabled       bool `yaml:"enabled"`
	IntervalHours int  `yaml:"interval_hours"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Addr:          getEnv("JOBPULSE_ADDR", ":8080"),
		JWTSecret:     getEnv("JOBPULSE_JWT_SECRET", "supersecretkey"),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("JOBPULSE_DATABASE_PATH", "jobpulse.db"),
		TokenDuration: tokenDuration,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills in safe defaults and rejects configurations that cannot
// run. The insecure default JWT secret is only allowed when JOBPULSE_ENV
// is "development" or unset.
func (c *Config) Validate() error {
	env := getEnv("JOBPULSE_ENV", "development")
	if c.JWTSecret == "supersecretkey" && env != "development" {
		return fmt.Errorf("jwt_secret must be changed outside development")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}

	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = getEnv("JOBPULSE_OLLAMA_URL", "http://localhost:11434")
	}
	if c.Ollama.EmbedModel == "" {
		c.Ollama.EmbedModel = "nomic-embed-text"
	}
	if c.Ollama.Timeout <= 0 {
		c.Ollama.Timeout = 30 * time.Second
	}
	if c.Ollama.Retries <= 0 {
		c.Ollama.Retries = 2
	}
	if c.Ollama.Backoff <= 0 {
		c.Ollama.Backoff = 500 * time.Millisecond
	}
	if c.Ollama.CircuitFailureThreshold <= 0 {
		c.Ollama.CircuitFailureThreshold = 5
	}
	if c.Ollama.CircuitReset <= 0 {
		c.Ollama.CircuitReset = 30 * time.Second
	}

	if len(c.Collectors.Sources) == 0 {
		c.Collectors.Sources = []string{"sample"}
	}
	if c.Collectors.SampleCount <= 0 {
		c.Collectors.SampleCount = 500
	}
	if len(c.Collectors.SearchTerms) == 0 {
		c.Collectors.SearchTerms = []string{"data engineer", "machine learning", "python"}
	}

	if c.Scheduler.IntervalHours <= 0 {
		c.Scheduler.IntervalHours = 6
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
