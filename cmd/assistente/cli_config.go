package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	configpkg "github.com/minhyannv/assistente-go/pkg/config"
)

// parseCLIConfig loads defaults, the optional YAML file, env and flags, in
// increasing order of precedence.
func parseCLIConfig(args []string, getenv func(string) string, stderr io.Writer) (configpkg.Config, error) {
	_ = godotenv.Load()
	if getenv == nil {
		getenv = os.Getenv
	}

	fs := flag.NewFlagSet("assistente", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML config file (default ./"+configpkg.DefaultConfigFile+" when present)")
	personaFile := fs.String("persona", "", "Markdown file with YAML front matter whose body replaces the system prompt")
	logFile := fs.String("log_file", "", "Transcript file path (default "+configpkg.DefaultLogPath+")")
	timeout := fs.Duration("timeout", 0, "Per-request completion timeout, 0 waits indefinitely")
	verbose := fs.Bool("verbose", false, "Verbose diagnostic logging on stderr")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, err
	}

	cfg := configpkg.DefaultConfig()

	path := strings.TrimSpace(*configFile)
	if path == "" {
		if _, err := os.Stat(configpkg.DefaultConfigFile); err == nil {
			path = configpkg.DefaultConfigFile
		}
	}
	if path != "" {
		loaded, err := configpkg.LoadFile(cfg, path)
		if err != nil {
			return configpkg.Config{}, err
		}
		cfg = loaded
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return configpkg.Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["persona"] {
		cfg.PersonaFile = *personaFile
	}
	if set["log_file"] {
		cfg.LogPath = *logFile
	}
	if set["timeout"] {
		cfg.Timeout = *timeout
	}
	if set["verbose"] {
		cfg.Verbose = *verbose
	}

	cfg = configpkg.Normalize(cfg)
	if err := configpkg.Validate(cfg); err != nil {
		return configpkg.Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *configpkg.Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(getenv("ASSISTENTE_TEMPERATURE")); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ASSISTENTE_TEMPERATURE: %w", err)
		}
		cfg.Temperature = t
	}
	if v := strings.TrimSpace(getenv("ASSISTENTE_PERSONA_FILE")); v != "" {
		cfg.PersonaFile = v
	}
	if v := strings.TrimSpace(getenv("ASSISTENTE_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	if v := strings.TrimSpace(getenv("ASSISTENTE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ASSISTENTE_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}
