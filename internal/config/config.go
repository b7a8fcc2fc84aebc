// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	UseDummy        bool          `yaml:"use_dummy"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	GeminiModel     string        `yaml:"gemini_model"`
	DeepAIKey       string        `yaml:"deepai_key"`
	DeepAIURL       string        `yaml:"deepai_url"`
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIModel     string        `yaml:"openai_model"`
	MaxRetries      int           `yaml:"max_retries"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	ProcessingDelay time.Duration `yaml:"processing_delay"` // UX delay before answering
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent calls per provider
}

type ContextConfig struct {
	MaxContextLength int `yaml:"max_context_length"`
	MaxMessages      int `yaml:"max_messages"`
}

type WorkerConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

type UploadConfig struct {
	Dir          string   `yaml:"dir"`
	MaxSize      int64    `yaml:"max_size"`
	AllowedTypes []string `yaml:"allowed_types"`

	// orphaned uploads older than Retention are removed every SweepInterval
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Retention     time.Duration `yaml:"retention"`
}

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	AI      AIConfig      `yaml:"ai"`
	Context ContextConfig `yaml:"context"`
	Worker  WorkerConfig  `yaml:"worker"`
	Upload  UploadConfig  `yaml:"upload"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides lists the variables that win over the YAML file.
// Only variables that are actually set are applied.
type envOverrides struct {
	HTTPAddr        *string        `envconfig:"HTTP_ADDR"`
	LogLevel        *string        `envconfig:"LOG_LEVEL"`
	UseDummy        *bool          `envconfig:"USE_DUMMY_AI"`
	GeminiKey       *string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel     *string        `envconfig:"GEMINI_MODEL"`
	DeepAIKey       *string        `envconfig:"DEEPAI_API_KEY"`
	OpenAIKey       *string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     *string        `envconfig:"OPENAI_MODEL"`
	CallTimeout     *time.Duration `envconfig:"API_TIMEOUT"`
	ProcessingDelay *time.Duration `envconfig:"PROCESSING_DELAY"`
	UploadDir       *string        `envconfig:"UPLOAD_DIRECTORY"`
}

var defaultAllowedTypes = []string{".txt", ".pdf", ".docx", ".jpg", ".jpeg", ".png", ".csv", ".json"}

// LoadConfig reads the YAML file at path (a missing file means "defaults only"),
// loads .env if present, applies environment overrides and fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}
	setStr(&cfg.HTTP.Addr, env.HTTPAddr)
	setStr(&cfg.Log.Level, env.LogLevel)
	setStr(&cfg.AI.GeminiKey, env.GeminiKey)
	setStr(&cfg.AI.GeminiModel, env.GeminiModel)
	setStr(&cfg.AI.DeepAIKey, env.DeepAIKey)
	setStr(&cfg.AI.OpenAIKey, env.OpenAIKey)
	setStr(&cfg.AI.OpenAIModel, env.OpenAIModel)
	setStr(&cfg.Upload.Dir, env.UploadDir)
	if env.UseDummy != nil {
		cfg.AI.UseDummy = *env.UseDummy
	}
	if env.CallTimeout != nil {
		cfg.AI.CallTimeout = *env.CallTimeout
	}
	if env.ProcessingDelay != nil {
		cfg.AI.ProcessingDelay = *env.ProcessingDelay
	}
	return nil
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":5000"
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 15 * time.Second
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.AI.DeepAIURL == "" {
		cfg.AI.DeepAIURL = "https://api.deepai.org/api/text-generator"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxRetries <= 0 {
		cfg.AI.MaxRetries = 2
	}
	if cfg.AI.CallTimeout <= 0 {
		cfg.AI.CallTimeout = 10 * time.Second
	}
	if cfg.AI.RetryDelay <= 0 {
		cfg.AI.RetryDelay = time.Second
	}
	if cfg.AI.ProcessingDelay < 0 {
		cfg.AI.ProcessingDelay = 0
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Upload.SweepInterval <= 0 {
		cfg.Upload.SweepInterval = 10 * time.Minute
	}
	if cfg.Upload.Retention <= 0 {
		cfg.Upload.Retention = time.Hour
	}
	if cfg.Context.MaxContextLength <= 0 {
		cfg.Context.MaxContextLength = 4000
	}
	if cfg.Context.MaxMessages <= 0 {
		cfg.Context.MaxMessages = 20
	}
	if cfg.Worker.QueueSize <= 0 {
		cfg.Worker.QueueSize = 256
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "uploads"
	}
	if cfg.Upload.MaxSize <= 0 {
		cfg.Upload.MaxSize = 10 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = append([]string(nil), defaultAllowedTypes...)
	}
	for i, t := range cfg.Upload.AllowedTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		cfg.Upload.AllowedTypes[i] = t
	}
}

// Validate performs minimal sanity checks after defaults are applied.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.AI.MaxRetries > 10 {
		return errors.New("ai.max_retries must be at most 10")
	}
	if c.Context.MaxMessages > 1000 {
		return errors.New("context.max_messages must be at most 1000")
	}
	return nil
}

// HasProvider reports whether at least one real provider is configured.
func (c *Config) HasProvider() bool {
	return c.AI.GeminiKey != "" || c.AI.DeepAIKey != "" || c.AI.OpenAIKey != ""
}
