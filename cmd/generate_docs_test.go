package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsDocumentation(t *testing.T) {
	markdown, err := toolsDocumentation()
	require.NoError(t, err)

	assert.Contains(t, markdown, "# MCP Tools Reference")
	assert.Contains(t, markdown, "## Beeminder Reminder Tools")
	assert.Contains(t, markdown, "## Google Authentication Tools")
	assert.Contains(t, markdown, "### beeminder_list_reminders")
	assert.Contains(t, markdown, "### beeminder_archive_stale_reminders")
	assert.Contains(t, markdown, "### google_save_auth_code")
	assert.Contains(t, markdown, "- `authCode` (required)")
	assert.Contains(t, markdown, "- `account` (optional)")
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"beeminder_list_reminders", "Beeminder Reminder Tools"},
		{"google_get_auth_url", "Google Authentication Tools"},
		{"gmail_list_threads", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getCategoryFromToolName(tt.name))
		})
	}
}

func TestRunGenerateDocs(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, runGenerateDocs("", &out, &errOut))
	assert.Contains(t, out.String(), "### beeminder_classify_subject")
	assert.Empty(t, errOut.String())

	file := filepath.Join(t.TempDir(), "tools.md")
	out.Reset()
	require.NoError(t, runGenerateDocs(file, &out, &errOut))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# MCP Tools Reference")
}
