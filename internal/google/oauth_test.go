package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

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
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileTokenProvider(t *testing.T) {
	dir := t.TempDir()
	p := NewFileTokenProviderInDir(dir)

	assert.Equal(t, filepath.Join(dir, "google-work.token"), p.TokenPath("work"))
	assert.False(t, p.HasTokenForAccount("work"))

	_, err := p.GetTokenForAccount(context.Background(), "work")
	assert.ErrorIs(t, err, ErrNoToken)

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Unix(1700000000, 0)}
	require.NoError(t, p.SaveToken("work", token))
	assert.True(t, p.HasTokenForAccount("work"))

	got, err := p.GetTokenForAccount(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, token.Expiry.Equal(got.Expiry))

	info, err := os.Stat(p.TokenPath("work"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTokenProvider_RejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	p := NewFileTokenProviderInDir(dir)

	assert.Error(t, p.SaveToken("../escape", &oauth2.Token{AccessToken: "x"}))
	assert.False(t, p.HasTokenForAccount(""))

	require.NoError(t, os.WriteFile(p.TokenPath("broken"), []byte("access refresh"), 0o600))
	_, err := p.GetTokenForAccount(context.Background(), "broken")
	assert.ErrorContains(t, err, "invalid token file")

	require.NoError(t, os.WriteFile(p.TokenPath("empty"), []byte("{}"), 0o600))
	_, err = p.GetTokenForAccount(context.Background(), "empty")
	assert.ErrorContains(t, err, "no tokens")
}

func TestOAuthConfig(t *testing.T) {
	conf := OAuthConfig(Credentials{ClientID: "id", ClientSecret: "secret"})

	assert.Equal(t, "id", conf.ClientID)
	assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", conf.RedirectURL)
	assert.Contains(t, conf.Scopes, "https://www.googleapis.com/auth/calendar")
	assert.Contains(t, conf.Scopes, "https://www.googleapis.com/auth/gmail.send")

	url := AuthURL(conf, "work")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "state=work")
}

func TestHTTPClient_NoToken(t *testing.T) {
	conf := OAuthConfig(Credentials{ClientID: "id"})

	_, err := HTTPClient(context.Background(), conf, nil, DefaultAccount)
	assert.Error(t, err)

	_, err = HTTPClient(context.Background(), conf, NewFileTokenProviderInDir(t.TempDir()), DefaultAccount)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestHTTPClient_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	p := NewFileTokenProviderInDir(t.TempDir())
	require.NoError(t, p.SaveToken("work", &oauth2.Token{AccessToken: "live", Expiry: time.Now().Add(time.Hour)}))

	client, err := HTTPClient(context.Background(), OAuthConfig(Credentials{}), p, "work")
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "Bearer live", auth)
}

type rotatingSource struct{ n int }

func (s *rotatingSource) Token() (*oauth2.Token, error) {
	s.n++
	return &oauth2.Token{AccessToken: "token-" + strconv.Itoa(s.n)}, nil
}

func TestSavingTokenSource_PersistsRotation(t *testing.T) {
	p := NewFileTokenProviderInDir(t.TempDir())
	src := &savingTokenSource{src: &rotatingSource{}, account: "work", saver: p, last: "token-0"}

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.AccessToken)

	cached, err := p.GetTokenForAccount(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, "token-1", cached.AccessToken)
}

func TestGetAuthenticationErrorMessage(t *testing.T) {
	msg := GetAuthenticationErrorMessage("work")
	assert.Contains(t, msg, "OAuth")
	assert.Contains(t, msg, "--account work")
}

func TestResolveIdentity(t *testing.T) {
	t.Run("userinfo answer wins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "/userinfo"), r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":"olivia@example.com","name":"Olivia"}`))
		}))
		defer srv.Close()

		id, err := ResolveIdentity(context.Background(), srv.Client(),
			Identity{Name: "MeetPilot User", Email: "no-reply@meetpilot.dev"},
			option.WithEndpoint(srv.URL+"/"))
		require.NoError(t, err)
		assert.Equal(t, Identity{Name: "Olivia", Email: "olivia@example.com"}, id)
	})

	t.Run("missing name falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":"olivia@example.com"}`))
		}))
		defer srv.Close()

		id, err := ResolveIdentity(context.Background(), srv.Client(),
			Identity{Name: "MeetPilot User"}, option.WithEndpoint(srv.URL+"/"))
		require.NoError(t, err)
		assert.Equal(t, "MeetPilot User", id.Name)
		assert.Equal(t, "olivia@example.com", id.Email)
	})

	t.Run("failure returns fallback", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":401,"message":"unauthorized"}}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		fallback := Identity{Name: "MeetPilot User", Email: "no-reply@meetpilot.dev"}
		id, err := ResolveIdentity(context.Background(), srv.Client(), fallback, option.WithEndpoint(srv.URL+"/"))
		assert.Error(t, err)
		assert.Equal(t, fallback, id)
	})
}
