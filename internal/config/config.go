package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"photo-restorer/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxDimension = 32768
	DefaultEnvFile      = ".env"
)

// Config holds the shell's runtime settings. The restoration core itself
// has no configuration surface.
type Config struct {
	LogLevel     zerolog.Level
	LogFile      string
	MaxDimension int
}

func Default() Config {
	return Config{
		LogLevel:     zerolog.InfoLevel,
		MaxDimension: DefaultMaxDimension,
	}
}

// Load reads an optional .env file and then the process environment.
// Unusable values keep their defaults and are reported as warnings.
func Load() (Config, []string, error) {
	return LoadFile(DefaultEnvFile)
}

func LoadFile(envFile string) (Config, []string, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var warnings []string

	if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level, err := logger.ParseLevel(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("LOG_LEVEL: %v, using info", err))
		}
		cfg.LogLevel = level
	} else if os.Getenv("DEBUG") == "1" {
		cfg.LogLevel = zerolog.DebugLevel
	}

	cfg.LogFile = strings.TrimSpace(os.Getenv("RESTORER_LOG_FILE"))

	if raw := strings.TrimSpace(os.Getenv("RESTORER_MAX_DIMENSION")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("RESTORER_MAX_DIMENSION: %q is not an integer", raw))
		case n <= 0:
			warnings = append(warnings, fmt.Sprintf("RESTORER_MAX_DIMENSION: %d must be positive", n))
		default:
			cfg.MaxDimension = n
		}
	}

	return cfg, warnings, nil
}
