package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultEndpoint         = "http://127.0.0.1:5000"
	DefaultAPITimeout       = "" // no timeout: wait for the service
	DefaultDebounceDuration = "500ms"
	DefaultLogMaxSizeMB     = 10
	DefaultLogMaxBackups    = 3
	DefaultWebClientURL     = "http://localhost:5173"
)

type Config struct {
	Endpoint         string `json:"endpoint" validate:"required,url"`
	APITimeout       string `json:"api_timeout" validate:"omitempty,duration"`
	WatchPath        string `json:"watch_path"`
	LogPath          string `json:"log_path"`
	LogMaxSizeMB     int    `json:"log_max_size_mb" validate:"gte=0"`
	LogMaxBackups    int    `json:"log_max_backups" validate:"gte=0"`
	DebounceDuration string `json:"debounce_duration" validate:"omitempty,duration"`
	WebClientURL     string `json:"web_client_url" validate:"omitempty,url"`
}

// Default returns a config with every field at its default.
// Paths are relative to dir (usually the executable's directory).
func Default(dir string) *Config {
	return &Config{
		Endpoint:         DefaultEndpoint,
		APITimeout:       DefaultAPITimeout,
		WatchPath:        filepath.Join(dir, "videos"),
		LogPath:          filepath.Join(dir, "vrag.log"),
		LogMaxSizeMB:     DefaultLogMaxSizeMB,
		LogMaxBackups:    DefaultLogMaxBackups,
		DebounceDuration: DefaultDebounceDuration,
		WebClientURL:     DefaultWebClientURL,
	}
}

// Load reads the config file at path, falling back to defaults when it does
// not exist, then applies environment overrides (a .env file in the working
// directory is honored).
func Load(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only
	default:
		return nil, err
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as indented JSON.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

func applyEnv(cfg *Config) {
	setString(&cfg.Endpoint, "VRAG_ENDPOINT")
	setString(&cfg.APITimeout, "VRAG_API_TIMEOUT")
	setString(&cfg.WatchPath, "VRAG_WATCH_PATH")
	setString(&cfg.LogPath, "VRAG_LOG_PATH")
	setString(&cfg.DebounceDuration, "VRAG_DEBOUNCE_DURATION")
	setString(&cfg.WebClientURL, "VRAG_WEB_CLIENT_URL")
	setInt(&cfg.LogMaxSizeMB, "VRAG_LOG_MAX_SIZE_MB")
	setInt(&cfg.LogMaxBackups, "VRAG_LOG_MAX_BACKUPS")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field formats.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Debounce returns the parsed debounce duration, or 500ms if unset or invalid.
func (c *Config) Debounce() time.Duration {
	d, err := time.ParseDuration(c.DebounceDuration)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}
