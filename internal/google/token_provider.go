package google

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

type tokenSaver interface {
	SaveToken(account string, token *oauth2.Token) error
}

// FileTokenProvider stores one JSON token file per account.
type FileTokenProvider struct {
	dir string
	mu  sync.Mutex
}

// NewFileTokenProvider creates a provider rooted in the user cache directory.
func NewFileTokenProvider() *FileTokenProvider {
	return NewFileTokenProviderInDir(filepath.Join(userCacheDir(), "meetpilot"))
}

// NewFileTokenProviderInDir creates a provider rooted in dir.
func NewFileTokenProviderInDir(dir string) *FileTokenProvider {
	return &FileTokenProvider{dir: dir}
}

// TokenPath returns the token file for account.
func (p *FileTokenProvider) TokenPath(account string) string {
	return filepath.Join(p.dir, "google-"+account+".token")
}

// GetTokenForAccount reads the cached token for account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return readTokenFile(p.TokenPath(account))
}

// HasTokenForAccount reports whether a readable token exists for account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.GetTokenForAccount(context.Background(), account)
	return err == nil
}

// SaveToken caches token for account.
func (p *FileTokenProvider) SaveToken(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return writeTokenFile(p.TokenPath(account), token)
}

// savingTokenSource persists refreshed tokens.
type savingTokenSource struct {
	src     oauth2.TokenSource
	account string
	saver   tokenSaver

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.saver.SaveToken(s.account, token); err != nil {
			slog.Warn("failed to cache refreshed token", "account", s.account, "error", err.Error())
		}
	}
	return token, nil
}
