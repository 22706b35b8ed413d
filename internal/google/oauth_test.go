package google

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func isolateCache(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("cache dir isolation relies on XDG_CACHE_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	return dir
}

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetTokenFilePath(t *testing.T) {
	dir := isolateCache(t)

	got := getTokenFilePath("work")
	assert.Equal(t, filepath.Join(dir, "beefewer", "google-work.token"), got)
}

func TestTokenRoundTrip(t *testing.T) {
	isolateCache(t)

	assert.False(t, HasTokenForAccount("default"))
	assert.False(t, NewFileTokenStore().HasTokenForAccount("default"))

	require.NoError(t, writeToken("default", &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}))
	assert.True(t, HasTokenForAccount("default"))

	info, err := os.Stat(getTokenFilePath("default"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	tok, err := readToken("default")
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.False(t, tok.Valid(), "stored tokens must be refreshed before use")
}

func TestReadToken_Invalid(t *testing.T) {
	isolateCache(t)

	_, err := readToken("missing")
	assert.Error(t, err)

	_, err = readToken("bad name")
	assert.Error(t, err)

	require.NoError(t, os.MkdirAll(cacheDir(), 0700))
	require.NoError(t, os.WriteFile(getTokenFilePath("broken"), []byte("only-one-field"), 0600))
	_, err = readToken("broken")
	assert.Error(t, err)
}

func TestHasTokenForAccount_InvalidName(t *testing.T) {
	assert.False(t, HasTokenForAccount("invalid account"))
	assert.False(t, HasTokenForAccount(""))
}

func TestOAuthConfig_FromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_SECRET_FILE", "")
	t.Setenv("GOOGLE_CLIENT_ID", "id.apps.googleusercontent.com")
	t.Setenv("GOOGLE_CLIENT_SECRET", "shh")

	conf, err := OAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "id.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, OOBRedirectURL, conf.RedirectURL)
	assert.Equal(t, DefaultOAuthScopes, conf.Scopes)

	url, err := GetAuthURL("work")
	require.NoError(t, err)
	assert.Contains(t, url, "client_id=id.apps.googleusercontent.com")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "gmail.modify")
}

func TestOAuthConfig_FromSecretFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "client_secret.json")
	secret := `{"installed":{"client_id":"file-id","client_secret":"file-secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(file, []byte(secret), 0600))
	t.Setenv("GOOGLE_CLIENT_SECRET_FILE", file)

	conf, err := OAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-id", conf.ClientID)
	assert.Equal(t, "file-secret", conf.ClientSecret)
}

func TestOAuthConfig_Missing(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_SECRET_FILE", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	_, err := OAuthConfig()
	assert.Error(t, err)

	_, err = GetAuthURL("default")
	assert.Error(t, err)
}
