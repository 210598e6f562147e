// Package config loads service configuration from environment variables,
// with an optional YAML file override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	// Language model
	GenAIModel       string
	GenAITemperature float64
	GenAIMaxTokens   int
	GenAITimeout     time.Duration
	GenAIMaxRetries  int
	GeminiAPIKey     string

	// Catalog service
	BooksAPIKey string

	// Document store
	DBPath string

	// Chat history embeddings
	EmbedProvider string // "ollama", "openai" or "" (disabled)
	EmbedModel    string

	// HTTP server
	Port string

	// Voice front-end
	VoiceUserID string
}

// fileConfig is the subset that may come from a YAML file. Numeric fields
// are pointers so an explicit zero in the file is distinguishable from the
// field being absent.
type fileConfig struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
	TimeoutSec  *int     `yaml:"timeout_seconds"`
	MaxRetries  *int     `yaml:"max_retries"`
	DBPath      string   `yaml:"db_path"`
	Port        string   `yaml:"port"`
}

// Load builds a Config from environment variables. If path is non-empty and
// the file exists, its values override the environment defaults.
func Load(path string) (*Config, error) {
	timeoutSec, _ := strconv.Atoi(getEnv("GENAI_TIMEOUT", "60"))
	maxTokens, _ := strconv.Atoi(getEnv("GENAI_MAX_TOKENS", "1024"))
	maxRetries, _ := strconv.Atoi(getEnv("GENAI_MAX_RETRIES", "5"))
	temperature, _ := strconv.ParseFloat(getEnv("GENAI_TEMPERATURE", "0"), 64)

	cfg := &Config{
		GenAIModel:       getEnv("GENAI_MODEL", "gemini-1.5-flash"),
		GenAITemperature: temperature,
		GenAIMaxTokens:   maxTokens,
		GenAITimeout:     time.Duration(timeoutSec) * time.Second,
		GenAIMaxRetries:  maxRetries,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		BooksAPIKey:      os.Getenv("GOOGLE_BOOKS_API_KEY"),
		DBPath:           getEnv("BOOKWORM_DB", "data/bookworm.db"),
		EmbedProvider:    os.Getenv("BOOKWORM_EMBED_PROVIDER"),
		EmbedModel:       os.Getenv("BOOKWORM_EMBED_MODEL"),
		Port:             getEnv("PORT", "8080"),
		VoiceUserID:      getEnv("BOOKWORM_VOICE_USER", "voice_user"),
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Model != "" {
		c.GenAIModel = fc.Model
	}
	if fc.Temperature != nil {
		c.GenAITemperature = *fc.Temperature
	}
	if fc.MaxTokens != nil {
		c.GenAIMaxTokens = *fc.MaxTokens
	}
	if fc.TimeoutSec != nil {
		c.GenAITimeout = time.Duration(*fc.TimeoutSec) * time.Second
	}
	if fc.MaxRetries != nil {
		c.GenAIMaxRetries = *fc.MaxRetries
	}
	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
