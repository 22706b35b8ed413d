package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/teemow/beefewer/internal/beeminder"
)

const (
	envBeeminderToken   = "BEEMINDER_AUTH_TOKEN"
	envBeeminderBaseURL = "BEEMINDER_BASE_URL"
	envFile             = ".env"
)

// loadDotEnv loads variables from a .env file in the working directory.
// Variables already set in the environment win; a missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// beeminderTokenFile is where the Beeminder auth token is kept when
// BEEMINDER_AUTH_TOKEN is not set.
func beeminderTokenFile() string {
	return filepath.Join(homeDir(), "keys", "beeminder-beefewer.token")
}

// readBeeminderToken returns the Beeminder personal auth token.
func readBeeminderToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv(envBeeminderToken)); token != "" {
		return token, nil
	}

	file := beeminderTokenFile()
	slurp, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("no Beeminder auth token: set %s or write it to %s: %w", envBeeminderToken, file, err)
	}
	f := strings.Fields(string(slurp))
	if len(f) != 1 {
		return "", fmt.Errorf("expected one field (the auth token) in %v; got %d fields", file, len(f))
	}
	return f[0], nil
}

// beeminderBaseURL returns the API base URL, overridable for tests.
func beeminderBaseURL() string {
	return getEnvOrDefault(envBeeminderBaseURL, beeminder.DefaultBaseURL)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	// Windows fallback
	return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
}
