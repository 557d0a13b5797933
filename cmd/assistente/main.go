// Package main provides the interactive personal assistant CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/minhyannv/assistente-go/pkg/completion"
	configpkg "github.com/minhyannv/assistente-go/pkg/config"
	"github.com/minhyannv/assistente-go/pkg/history"
	loggerpkg "github.com/minhyannv/assistente-go/pkg/logger"
	"github.com/minhyannv/assistente-go/pkg/persona"
	"github.com/minhyannv/assistente-go/pkg/session"
	"github.com/minhyannv/assistente-go/pkg/transcript"
)

// main is the program entry point.
func main() {
	config, err := parseCLIConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	appLogger := loggerpkg.NewWriterLogger(os.Stderr)
	sess, err := newSession(config, appLogger)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := sess.Run(context.Background(), os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSession wires the history store, transcript and completion client for cfg.
func newSession(cfg configpkg.Config, appLogger loggerpkg.Logger) (*session.Session, error) {
	systemPrompt := cfg.SystemPrompt
	if cfg.PersonaFile != "" {
		p, err := persona.Load(cfg.PersonaFile)
		if err != nil {
			return nil, err
		}
		loggerpkg.Debug(cfg.Verbose, appLogger, "persona loaded", map[string]any{
			"name": p.Name,
			"path": p.Path,
		})
		systemPrompt = p.Instruction
	}

	client := completion.NewOpenAIClient(cfg, completion.WithLogger(appLogger, cfg.Verbose))
	return session.New(
		history.New(systemPrompt),
		transcript.New(cfg.LogPath),
		client,
		session.WithLogger(appLogger, cfg.Verbose),
	)
}
