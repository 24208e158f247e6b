package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account name used when none is configured.
const DefaultAccount = "default"

// ErrNoToken is returned when no cached token exists for an account.
var ErrNoToken = errors.New("no cached Google OAuth token")

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Credentials identifies the OAuth client.
type Credentials struct {
	ClientID     string
	ClientSecret string

	// RedirectURL defaults to the out-of-band flow used by `meetpilot auth`.
	RedirectURL string
}

// OAuthConfig returns the oauth2 configuration for all Google services meetpilot uses.
func OAuthConfig(creds Credentials) *oauth2.Config {
	redirect := creds.RedirectURL
	if redirect == "" {
		redirect = "urn:ietf:wg:oauth:2.0:oob"
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       DefaultOAuthScopes,
	}
}

// AuthURL returns the consent URL for an account.
func AuthURL(conf *oauth2.Config, account string) string {
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeAndSave exchanges an authorization code and caches the token for account.
func ExchangeAndSave(ctx context.Context, conf *oauth2.Config, store *FileTokenProvider, account, code string) error {
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return store.SaveToken(account, token)
}

// HTTPClient returns an HTTP client authorized for account. The token source
// refreshes expired tokens and writes them back to the provider when it can.
// HTTP/2 is disabled because the Google APIs occasionally reset long-lived
// HTTP/2 streams.
func HTTPClient(ctx context.Context, conf *oauth2.Config, provider TokenProvider, account string) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	base := &http.Transport{ForceAttemptHTTP2: false}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})

	var src oauth2.TokenSource = conf.TokenSource(ctx, token)
	if saver, ok := provider.(tokenSaver); ok {
		src = &savingTokenSource{src: src, account: account, saver: saver, last: token.AccessToken}
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, src)), nil
}

// GetAuthenticationErrorMessage explains how to authorize an account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token not found for account %q. "+
		"Run `meetpilot auth --account %s` and follow the link to grant calendar and mail access.", account, account)
}

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("account name %q may only contain letters, digits, '-' and '_'", account)
	}
	return nil
}

func readTokenFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", filepath.Base(path), err)
	}
	if token.RefreshToken == "" && token.AccessToken == "" {
		return nil, fmt.Errorf("invalid token file %s: no tokens", filepath.Base(path))
	}
	return &token, nil
}

func writeTokenFile(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}
