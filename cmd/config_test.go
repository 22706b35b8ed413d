package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/beefewer/internal/beeminder"
)

func writeTokenFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, "keys")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beeminder-beefewer.token"), []byte(content), 0o600))
}

func TestReadBeeminderToken(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		file      string
		want      string
		wantError string
	}{
		{name: "from env", env: " envtoken\n", file: "filetoken", want: "envtoken"},
		{name: "from file", file: "filetoken\n", want: "filetoken"},
		{name: "missing", wantError: "no Beeminder auth token"},
		{name: "two fields", file: "alice filetoken", wantError: "expected one field"},
		{name: "empty file", file: "\n", wantError: "got 0 fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)
			t.Setenv(envBeeminderToken, tt.env)
			if tt.file != "" {
				writeTokenFile(t, home, tt.file)
			}

			got, err := readBeeminderToken()
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBeeminderBaseURL(t *testing.T) {
	t.Setenv(envBeeminderBaseURL, "")
	assert.Equal(t, beeminder.DefaultBaseURL, beeminderBaseURL())

	t.Setenv(envBeeminderBaseURL, "http://localhost:3000/api/v1")
	assert.Equal(t, "http://localhost:3000/api/v1", beeminderBaseURL())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	// missing file is not an error
	require.NoError(t, loadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BEEFEWER_TEST_FROM_FILE=file\nBEEFEWER_TEST_PRESET=file\n"), 0o600))
	t.Setenv("BEEFEWER_TEST_PRESET", "env")
	t.Cleanup(func() { _ = os.Unsetenv("BEEFEWER_TEST_FROM_FILE") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "file", os.Getenv("BEEFEWER_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("BEEFEWER_TEST_PRESET"))
}
