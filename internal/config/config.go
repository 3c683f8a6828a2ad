// Package config resolves the server configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	HTTPPort int
	DBPath   string
	LogLevel string

	RoundingUnit int64

	JWTSecret string
	TokenTTL  time.Duration

	OCR OCRConfig

	NameMatchThreshold float64
}

// OCRConfig selects and tunes the recognition engines.
type OCRConfig struct {
	PrimaryEnabled bool
	GeminiAPIKey   string
	GeminiModel    string

	TesseractPath      string
	TesseractLanguages string

	EngineTimeout        time.Duration
	MinPrimaryConfidence float64
}

// PrimaryAvailable reports whether the remote engine can be used.
func (c OCRConfig) PrimaryAvailable() bool {
	return c.PrimaryEnabled && c.GeminiAPIKey != ""
}

// configFile mirrors the YAML schema of config.yaml.
type configFile struct {
	Server struct {
		HTTPPort int    `yaml:"http_port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Settlement struct {
		RoundingUnit int64 `yaml:"rounding_unit"`
	} `yaml:"settlement"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
	OCR struct {
		PrimaryEnabled       *bool   `yaml:"primary_enabled"`
		GeminiModel          string  `yaml:"gemini_model"`
		TesseractPath        string  `yaml:"tesseract_path"`
		TesseractLanguages   string  `yaml:"tesseract_languages"`
		TimeoutSeconds       int     `yaml:"timeout_seconds"`
		MinPrimaryConfidence float64 `yaml:"min_primary_confidence"`
		NameMatchThreshold   float64 `yaml:"name_match_threshold"`
	} `yaml:"ocr"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		DBPath:       "./data/clubsettle.db",
		LogLevel:     "info",
		RoundingUnit: 1000,
		TokenTTL:     30 * 24 * time.Hour,
		OCR: OCRConfig{
			PrimaryEnabled:     true,
			GeminiModel:        "gemini-2.5-flash",
			TesseractPath:      "tesseract",
			TesseractLanguages: "kor+eng",
			EngineTimeout:      30 * time.Second,
		},
		NameMatchThreshold: 0.6,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DBPath = envOrDefault("DB_PATH", cfg.DBPath)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.RoundingUnit = int64(envInt("ROUNDING_UNIT", int(cfg.RoundingUnit)))
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = time.Duration(envInt("TOKEN_TTL_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour

	cfg.OCR.PrimaryEnabled = envBool("OCR_PRIMARY_ENABLED", cfg.OCR.PrimaryEnabled)
	cfg.OCR.GeminiAPIKey = envOrDefault("GEMINI_API_KEY", envOrDefault("GOOGLE_API_KEY", cfg.OCR.GeminiAPIKey))
	cfg.OCR.GeminiModel = envOrDefault("GEMINI_MODEL", cfg.OCR.GeminiModel)
	cfg.OCR.TesseractPath = envOrDefault("TESSERACT_PATH", cfg.OCR.TesseractPath)
	cfg.OCR.TesseractLanguages = envOrDefault("TESSERACT_LANG", cfg.OCR.TesseractLanguages)
	cfg.OCR.EngineTimeout = time.Duration(envInt("OCR_TIMEOUT_SECONDS", int(cfg.OCR.EngineTimeout.Seconds()))) * time.Second
	cfg.OCR.MinPrimaryConfidence = envFloat("OCR_MIN_PRIMARY_CONFIDENCE", cfg.OCR.MinPrimaryConfidence)
	cfg.NameMatchThreshold = envFloat("NAME_MATCH_THRESHOLD", cfg.NameMatchThreshold)

	if cfg.RoundingUnit <= 0 {
		return Config{}, fmt.Errorf("rounding unit must be positive, got %d", cfg.RoundingUnit)
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("invalid HTTP port %d", cfg.HTTPPort)
	}
	if cfg.OCR.MinPrimaryConfidence < 0 || cfg.OCR.MinPrimaryConfidence > 1 {
		return Config{}, fmt.Errorf("min primary confidence must be in [0, 1], got %v", cfg.OCR.MinPrimaryConfidence)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Server.HTTPPort > 0 {
		cfg.HTTPPort = f.Server.HTTPPort
	}
	if f.Server.LogLevel != "" {
		cfg.LogLevel = f.Server.LogLevel
	}
	if f.Storage.DBPath != "" {
		cfg.DBPath = f.Storage.DBPath
	}
	if f.Settlement.RoundingUnit != 0 {
		cfg.RoundingUnit = f.Settlement.RoundingUnit
	}
	if f.Auth.JWTSecret != "" {
		cfg.JWTSecret = f.Auth.JWTSecret
	}
	if f.Auth.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(f.Auth.TokenTTLHours) * time.Hour
	}
	if f.OCR.PrimaryEnabled != nil {
		cfg.OCR.PrimaryEnabled = *f.OCR.PrimaryEnabled
	}
	if f.OCR.GeminiModel != "" {
		cfg.OCR.GeminiModel = f.OCR.GeminiModel
	}
	if f.OCR.TesseractPath != "" {
		cfg.OCR.TesseractPath = f.OCR.TesseractPath
	}
	if f.OCR.TesseractLanguages != "" {
		cfg.OCR.TesseractLanguages = f.OCR.TesseractLanguages
	}
	if f.OCR.TimeoutSeconds > 0 {
		cfg.OCR.EngineTimeout = time.Duration(f.OCR.TimeoutSeconds) * time.Second
	}
	if f.OCR.MinPrimaryConfidence != 0 {
		cfg.OCR.MinPrimaryConfidence = f.OCR.MinPrimaryConfidence
	}
	if f.OCR.NameMatchThreshold != 0 {
		cfg.NameMatchThreshold = f.OCR.NameMatchThreshold
	}
	return nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	switch os.Getenv(name) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
