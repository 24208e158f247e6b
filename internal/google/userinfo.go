package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity is the authenticated user's display name and email.
type Identity struct {
	Name  string
	Email string
}

// FetchIdentity asks the userinfo endpoint who owns the client's token.
func FetchIdentity(ctx context.Context, client *http.Client, opts ...option.ClientOption) (Identity, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	if strings.TrimSpace(info.Email) == "" {
		return Identity{}, fmt.Errorf("userinfo returned no email")
	}
	return Identity{Name: strings.TrimSpace(info.Name), Email: strings.TrimSpace(info.Email)}, nil
}

// ResolveIdentity returns the userinfo identity, falling back to fallback
// field by field when the lookup fails or a field is missing.
func ResolveIdentity(ctx context.Context, client *http.Client, fallback Identity, opts ...option.ClientOption) (Identity, error) {
	id, err := FetchIdentity(ctx, client, opts...)
	if err != nil {
		return fallback, err
	}
	if id.Name == "" {
		id.Name = fallback.Name
	}
	return id, nil
}
