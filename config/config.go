package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds callview settings.
type Config struct {
	API     APIConfig
	View    ViewConfig
	Player  string // audio player command line, empty for the platform default
	Logging LoggingConfig
	Metrics MetricsConfig
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type ViewConfig struct {
	DefaultAvatar       string
	SuppressFirstHeader bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputFile string
}

type MetricsConfig struct {
	Addr string
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads the configuration from the environment, after loading a .env
// file from the working directory or its parent when one exists.
func Load(logger *logrus.Logger) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Warn("Failed to get current working directory")
		wd = "."
	}

	var loadedFrom string
	for _, envFile := range []string{".env", "../.env", filepath.Join(wd, ".env")} {
		if _, statErr := os.Stat(envFile); statErr != nil {
			continue
		}
		if err := godotenv.Load(envFile); err == nil {
			loadedFrom, _ = filepath.Abs(envFile)
			break
		}
	}
	if loadedFrom != "" {
		logger.WithField("path", loadedFrom).Debug("Loaded .env file")
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: getEnv("CALLVIEW_API_URL", "https://api.skilla.ru/mango"),
			Token:   getEnv("CALLVIEW_TOKEN", "testtoken"),
			Timeout: getEnvDuration("CALLVIEW_TIMEOUT", 15*time.Second),
		},
		View: ViewConfig{
			DefaultAvatar:       getEnv("CALLVIEW_DEFAULT_AVATAR", "avatar.svg"),
			SuppressFirstHeader: getEnvBool("CALLVIEW_SUPPRESS_FIRST_HEADER", true),
		},
		Player: os.Getenv("CALLVIEW_PLAYER"),
		Metrics: MetricsConfig{
			Addr: os.Getenv("CALLVIEW_METRICS_ADDR"),
		},
	}
	loadLoggingConfig(logger, &cfg.Logging)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadLoggingConfig(logger *logrus.Logger, config *LoggingConfig) {
	config.Level = getEnv("LOG_LEVEL", "info")
	if _, err := logrus.ParseLevel(config.Level); err != nil {
		logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to 'info'", config.Level)
		config.Level = "info"
	}

	config.Format = getEnv("LOG_FORMAT", "text")
	if config.Format != "json" && config.Format != "text" {
		logger.Warn("Invalid LOG_FORMAT, must be 'json' or 'text', defaulting to 'text'")
		config.Format = "text"
	}

	// empty means stderr; see InteractiveLogging
	config.OutputFile = os.Getenv("LOG_OUTPUT_FILE")
}

// DefaultLogFile receives logs while the TUI owns the terminal.
const DefaultLogFile = "callview.log"

// InteractiveLogging sends logs to DefaultLogFile unless LOG_OUTPUT_FILE
// chose an output. "-" keeps stderr.
func (c *Config) InteractiveLogging() {
	if c.Logging.OutputFile == "" {
		c.Logging.OutputFile = DefaultLogFile
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: CALLVIEW_API_URL %q is not an absolute URL", ErrInvalidConfig, c.API.BaseURL)
	}
	if strings.TrimSpace(c.API.Token) == "" {
		return fmt.Errorf("%w: CALLVIEW_TOKEN is empty", ErrInvalidConfig)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: CALLVIEW_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyLogging configures logger level, format and output. The returned
// close function releases the log file, if one was opened.
func (c *Config) ApplyLogging(logger *logrus.Logger) (func() error, error) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", c.Logging.Level, err)
	}
	logger.SetLevel(level)

	if c.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			DisableColors:   true,
		})
	}

	if c.Logging.OutputFile == "" || c.Logging.OutputFile == "-" {
		logger.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.Logging.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", c.Logging.OutputFile, err)
	}
	logger.SetOutput(f)
	return f.Close, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
