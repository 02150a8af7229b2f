package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	AI       AIConfig       `yaml:"ai" envconfig:"AI"`
	Store    StoreConfig    `yaml:"store" envconfig:"STORE"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" envconfig:"ANALYSIS_TIMEOUT" default:"2m"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"true"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR" default:"data/uploads"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// AIConfig contains the LLM endpoint configuration. An empty APIKey
// disables AI stages entirely; deterministic fallbacks take over.
type AIConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.groq.com/openai/v1"`
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	Model   string        `yaml:"model" envconfig:"MODEL" default:"llama-3.3-70b-versatile"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// StoreConfig bounds the in-memory analysis store
type StoreConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"TTL" default:"2h"`
	MaxEntries    int           `yaml:"max_entries" envconfig:"MAX_ENTRIES" default:"200" validate:"min=1"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SWEEP_INTERVAL" default:"5m"`
}

// UploadConfig bounds workbook uploads
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" envconfig:"MAX_BYTES" default:"16777216" validate:"min=1"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Environment first; file values only fill fields the environment
	// left at zero.
	if err := envconfig.Process("FINSIGHT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.ensureDirs(); err != nil {
		return nil, fmt.Errorf("failed to prepare directories: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.AnalysisTimeout == 0 {
		envConfig.Server.AnalysisTimeout = fileConfig.Server.AnalysisTimeout
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.UploadsDir == "" {
		envConfig.Paths.UploadsDir = fileConfig.Paths.UploadsDir
	}
	if envConfig.AI.APIKey == "" {
		envConfig.AI.APIKey = fileConfig.AI.APIKey
	}
	if envConfig.AI.Model == "" {
		envConfig.AI.Model = fileConfig.AI.Model
	}
	if envConfig.Store.TTL == 0 {
		envConfig.Store.TTL = fileConfig.Store.TTL
	}
	if envConfig.Upload.MaxBytes == 0 {
		envConfig.Upload.MaxBytes = fileConfig.Upload.MaxBytes
	}
	return envConfig
}

// ensureDirs creates the data, uploads and logs directories.
func (c *Config) ensureDirs() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.UploadsDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// getConfigFilePath returns the config file location, overridable via
// FINSIGHT_CONFIG.
func getConfigFilePath() string {
	if p := os.Getenv("FINSIGHT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(".", "config.yaml")
}

// Address returns the server listen address.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
