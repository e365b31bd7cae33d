package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"

	"tradepanel/api"
	"tradepanel/auth"
	"tradepanel/config"
	"tradepanel/models"
	"tradepanel/storage"
)

func main() {
	cfg := config.Load()

	logger, closeLog, err := openLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open local store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	tokens := auth.NewTokenStore(store)
	prefill := auth.NewPrefillCache(store)

	client := api.NewClient(cfg.APIBaseURL, tokens, logger, cfg.HTTPTimeout)
	newsClient := api.NewNewsClient(api.NewClient(cfg.NewsBaseURL, tokens, logger, cfg.HTTPTimeout))

	model := models.NewAppModel(models.Deps{
		Client:       client,
		News:         newsClient,
		Tokens:       tokens,
		Prefill:      prefill,
		Logger:       logger,
		PollInterval: cfg.PollInterval,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Both gateways share the token store, so a 401/403 on either clears the
	// credential; the callback just tells the session controller about it.
	client.SetOnUnauthorized(func() {
		p.Send(models.SessionExpiredMsg{})
	})
	newsClient.SetOnUnauthorized(func() {
		p.Send(models.SessionExpiredMsg{})
	})

	logger.Info("starting panel",
		slog.String("api", cfg.APIBaseURL),
		slog.String("news", cfg.NewsBaseURL))

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// openLogger writes structured logs to a file. The terminal belongs to the
// TUI, so nothing is logged to stdout or stderr while it runs.
func openLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	handler := tint.NewHandler(f, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	})

	return slog.New(handler), func() { f.Close() }, nil
}
