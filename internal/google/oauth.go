package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OOBRedirectURL makes Google show the authorization code to the user so it
// can be pasted back into the terminal.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

var accountNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validateAccountName restricts account names to characters that are safe
// inside a file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name must not be empty")
	}
	if !accountNameRE.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

func cacheDir() string {
	return filepath.Join(userCacheDir(), "beefewer")
}

// getTokenFilePath returns the token file of account.
func getTokenFilePath(account string) string {
	return filepath.Join(cacheDir(), "google-"+account+".token")
}

// HasTokenForAccount checks if a stored OAuth token exists for account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// OAuthConfig returns the OAuth2 configuration for Gmail access.
//
// The client comes from GOOGLE_CLIENT_SECRET_FILE (the JSON downloaded from
// the Google Cloud console) or from GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func OAuthConfig() (*oauth2.Config, error) {
	if file := os.Getenv("GOOGLE_CLIENT_SECRET_FILE"); file != "" {
		slurp, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read client secret file: %w", err)
		}
		conf, err := google.ConfigFromJSON(slurp, DefaultOAuthScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse client secret file %s: %w", file, err)
		}
		if conf.RedirectURL == "" {
			conf.RedirectURL = OOBRedirectURL
		}
		return conf, nil
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("no Google OAuth client configured: set GOOGLE_CLIENT_SECRET_FILE or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  OOBRedirectURL,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// GetAuthURL returns the OAuth URL the user has to visit to authorize account.
func GetAuthURL(account string) (string, error) {
	conf, err := OAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state-"+account, oauth2.AccessTypeOffline), nil
}

// SaveTokenForAccount exchanges an authorization code for tokens and saves them
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	conf, err := OAuthConfig()
	if err != nil {
		return err
	}

	t, err := conf.Exchange(ctx, strings.TrimSpace(authCode))
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(account, t)
}

func writeToken(account string, t *oauth2.Token) error {
	if err := os.MkdirAll(cacheDir(), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(getTokenFilePath(account), []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// readToken loads the stored token of account. The access token is marked
// expired so the first use refreshes it.
func readToken(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s", account)
	}
	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format in %s", getTokenFilePath(account))
	}
	return &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	}, nil
}

// GetTokenSourceForAccount returns a validated token source for the stored
// token of account.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	tok, err := readToken(account)
	if err != nil {
		return nil, err
	}
	conf, err := OAuthConfig()
	if err != nil {
		return nil, err
	}

	ts := conf.TokenSource(ctx, tok)
	if _, err := ts.Token(); err != nil {
		slog.Warn("cached Google token invalid", "account", account, "error", err)
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}
	return ts, nil
}

// GetHTTPClientForAccount returns an HTTP client configured with OAuth2
// authentication for account. It uses HTTP/1.1 to avoid HTTP/2 protocol
// errors seen against the Gmail API.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &http.Transport{ForceAttemptHTTP2: false},
		},
	}, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
