package auth

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/n0madic/go-chorus/internal/config"
)

// TokenSource returns the bearer token source described by cfg: a static
// access token when one is set, the OAuth2 client credentials grant when the
// oauth block is set, and nil when the backend is used without auth.
func TokenSource(ctx context.Context, cfg *config.ClientConfig) (oauth2.TokenSource, error) {
	if cfg.AccessToken != "" {
		return NewStaticTokenSource(cfg.AccessToken), nil
	}
	if !cfg.OAuth.Empty() {
		return ClientCredentials(ctx, cfg.OAuth)
	}
	return nil, nil
}

// staticTokenSource serves a fixed access token. If the token is a JWT its
// exp claim is honoured so an expired token fails locally instead of as a 401.
type staticTokenSource struct {
	token *oauth2.Token
}

// NewStaticTokenSource wraps a pre-issued access token.
func NewStaticTokenSource(accessToken string) oauth2.TokenSource {
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if exp, ok := TokenExpiry(accessToken); ok {
		tok.Expiry = exp
		if time.Until(exp) <= 5*time.Minute {
			slog.Warn("auth.token_expiring", "expires_at", exp.UTC().Format(time.RFC3339))
		}
	}
	return &staticTokenSource{token: tok}
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	if !s.token.Expiry.IsZero() && time.Now().After(s.token.Expiry) {
		return nil, ErrTokenExpired
	}
	return s.token, nil
}
