package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/n0madic/go-chorus/internal/config"
)

// NewClientCredentialsConfig creates a clientcredentials.Config from the
// oauth block. Client ID, secret and token URL are all required.
func NewClientCredentialsConfig(oc *config.OAuthConfig) (*clientcredentials.Config, error) {
	var missing []string
	if oc.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if oc.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if oc.TokenURL == "" {
		missing = append(missing, "token_url")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteOAuth, strings.Join(missing, ", "))
	}
	return &clientcredentials.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		TokenURL:     oc.TokenURL,
		Scopes:       oc.Scopes,
		AuthStyle:    oauth2.AuthStyleAutoDetect,
	}, nil
}

// ClientCredentials returns a caching token source that fetches a new token
// from the token endpoint shortly before the current one expires.
func ClientCredentials(ctx context.Context, oc *config.OAuthConfig) (oauth2.TokenSource, error) {
	cc, err := NewClientCredentialsConfig(oc)
	if err != nil {
		return nil, err
	}
	return cc.TokenSource(ctx), nil
}
