package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"tradepanel/api"
	"tradepanel/auth"
	"tradepanel/config"
	"tradepanel/storage"
)

// logincheck exercises the login flow without the TUI in the way: it prompts
// for credentials, hits the backend, and prints what came back.
func main() {
	fmt.Println("=== PANEL LOGIN CHECK ===")
	fmt.Println("Verifies backend connectivity and credentials without the TUI")
	fmt.Println()

	cfg := config.Load()
	logger := slog.New(tint.NewHandler(io.Discard, nil))
	if os.Getenv("PANEL_DEBUG") != "" {
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	}

	store := storage.NewMemory()
	tokens := auth.NewTokenStore(store)
	client := api.NewClient(cfg.APIBaseURL, tokens, logger, cfg.HTTPTimeout)

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Enter password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Println()
	fmt.Printf("=== ATTEMPTING LOGIN against %s ===\n", cfg.APIBaseURL)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Login(ctx, username, password)
	if err != nil {
		fmt.Printf("LOGIN FAILED: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("LOGIN SUCCESS!")
	fmt.Printf("Token type:  %s\n", resp.TokenType)
	fmt.Printf("Expires in:  %ds\n", resp.ExpiresIn)
	fmt.Printf("User:        %s (id %d)\n", resp.User.Username, resp.User.ID)
	fmt.Printf("Risk level:  %s\n", resp.User.RiskLevel)
}
