package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the panel needs to reach its backend.
// All values come from the environment (optionally seeded from a .env file)
// so the same binary can point at a local or remote backend.
type Config struct {
	// APIBaseURL is the backend root, e.g. http://localhost:8000.
	APIBaseURL string
	// NewsBaseURL is the news mount point. The backend serves news under
	// /api, so this defaults to APIBaseURL + "/api".
	NewsBaseURL string

	PollInterval time.Duration
	HTTPTimeout  time.Duration

	DBPath  string
	LogFile string
}

// Load reads a .env file if present and builds the config from the
// environment, applying defaults for anything unset.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	apiURL := getEnv("PANEL_API_URL", "http://localhost:8000")

	newsURL := os.Getenv("PANEL_NEWS_URL")
	if newsURL == "" {
		newsURL = apiURL + "/api"
	}

	return Config{
		APIBaseURL:   apiURL,
		NewsBaseURL:  newsURL,
		PollInterval: getEnvDuration("PANEL_POLL_INTERVAL", 30*time.Second),
		HTTPTimeout:  getEnvDuration("PANEL_HTTP_TIMEOUT", 30*time.Second),
		DBPath:       getEnv("PANEL_DB_PATH", defaultDataPath("tradepanel.db")),
		LogFile:      getEnv("PANEL_LOG_FILE", defaultDataPath("tradepanel.log")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// Bare numbers are taken as seconds, e.g. PANEL_POLL_INTERVAL=30.
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid duration %q for %s, using %s", v, key, fallback)
	return fallback
}

// defaultDataPath places panel files under ~/.config/tradepanel, falling back
// to the working directory when the home directory is unavailable.
func defaultDataPath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}

	configDir := filepath.Join(homeDir, ".config", "tradepanel")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return name
	}

	return filepath.Join(configDir, name)
}
