package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "http://localhost:1234/v1"
	DefaultAPIKey      = "lm-studio"
	DefaultModel       = "model-identifier"
	DefaultTemperature = 1.0
	DefaultLogPath     = "log_conversa.txt"
	DefaultConfigFile  = "assistente.yaml"

	// DefaultSystemPrompt is the instruction seeded as the first history message.
	DefaultSystemPrompt = "Você é um assistente pessoal virtual. Ajude o usuário com informações, organização e tarefas diárias."
)

// Config holds all runtime configuration for the assistant.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64

	SystemPrompt string
	PersonaFile  string

	LogPath string
	Timeout time.Duration
	Verbose bool
}

// fileConfig mirrors the optional YAML configuration file.
type fileConfig struct {
	BaseURL      string   `yaml:"base_url"`
	APIKey       string   `yaml:"api_key"`
	Model        string   `yaml:"model"`
	Temperature  *float64 `yaml:"temperature"`
	SystemPrompt string   `yaml:"system_prompt"`
	PersonaFile  string   `yaml:"persona_file"`
	LogPath      string   `yaml:"log_path"`
	Timeout      string   `yaml:"timeout"`
	Verbose      *bool    `yaml:"verbose"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		APIKey:       DefaultAPIKey,
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		SystemPrompt: DefaultSystemPrompt,
		LogPath:      DefaultLogPath,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Empty fields in the file
// leave the corresponding cfg values untouched.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.APIKey != "" {
		cfg.APIKey = fc.APIKey
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.SystemPrompt != "" {
		cfg.SystemPrompt = fc.SystemPrompt
	}
	if fc.PersonaFile != "" {
		cfg.PersonaFile = fc.PersonaFile
	}
	if fc.LogPath != "" {
		cfg.LogPath = fc.LogPath
	}
	if strings.TrimSpace(fc.Timeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(fc.Timeout))
		if err != nil {
			return cfg, fmt.Errorf("parse timeout %q: %w", fc.Timeout, err)
		}
		cfg.Timeout = d
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	return cfg, nil
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.PersonaFile = strings.TrimSpace(cfg.PersonaFile)
	cfg.LogPath = strings.TrimSpace(cfg.LogPath)

	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogPath
	}
	return cfg
}

// Validate reports configuration that cannot produce a working session.
func Validate(cfg Config) error {
	if cfg.BaseURL == "" {
		return errors.New("BaseURL is not set")
	}
	if cfg.Model == "" {
		return errors.New("Model is not set")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", cfg.Temperature)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout %v must not be negative", cfg.Timeout)
	}
	return nil
}
