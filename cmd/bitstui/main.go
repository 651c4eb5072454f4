package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bitsandpieces/bitstui/internal/api"
	"github.com/bitsandpieces/bitstui/internal/config"
	"github.com/bitsandpieces/bitstui/internal/session"
	"github.com/bitsandpieces/bitstui/internal/tui"
)

func main() {
	ctx := context.Background()

	// optional .env for local development overrides
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	writeStarterConfig(cfg)

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	store := session.NewStore()
	sess, err := store.Load()
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.WithError(err).Warn("session restore failed")
	}

	client := api.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, sess, logger)

	p := tea.NewProgram(tui.New(ctx, cfg, client, store, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

// writeStarterConfig drops a config file with the effective settings on
// first run, so users have something to edit.
func writeStarterConfig(cfg config.Config) {
	if os.Getenv("BITSTUI_CONFIG") != "" {
		return
	}
	path := filepath.Join(os.Getenv("HOME"), ".config", "bitstui", "config.toml")
	if _, err := os.Stat(path); err == nil || !errors.Is(err, os.ErrNotExist) {
		return
	}
	if err := config.Save(cfg); err != nil {
		log.Printf("warn: write starter config: %v", err)
	}
}

// newLogger writes to the configured file. The terminal belongs to the
// TUI, so nothing is ever logged to stdout.
func newLogger(cfg config.Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	logger.SetFormatter(&logrus.JSONFormatter{})

	return logger, func() { _ = f.Close() }, nil
}
