package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/n0madic/go-chorus/internal/config"
)

func TestTokenSourceSelection(t *testing.T) {
	ctx := context.Background()

	ts, err := TokenSource(ctx, &config.ClientConfig{})
	if err != nil || ts != nil {
		t.Fatalf("no credentials: got %v, %v", ts, err)
	}

	ts, err = TokenSource(ctx, &config.ClientConfig{AccessToken: "opaque"})
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	tok, err := ts.Token()
	if err != nil || tok.AccessToken != "opaque" || tok.Type() != "Bearer" {
		t.Fatalf("static token: got %+v, %v", tok, err)
	}

	_, err = TokenSource(ctx, &config.ClientConfig{OAuth: &config.OAuthConfig{ClientID: "id"}})
	if !errors.Is(err, ErrIncompleteOAuth) {
		t.Fatalf("partial oauth: got %v, want ErrIncompleteOAuth", err)
	}
}

func TestStaticTokenSourceExpired(t *testing.T) {
	expired := makeJWT(map[string]any{"exp": float64(time.Now().Add(-time.Hour).Unix())})
	if _, err := NewStaticTokenSource(expired).Token(); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}

	valid := makeJWT(map[string]any{"exp": float64(time.Now().Add(time.Hour).Unix())})
	tok, err := NewStaticTokenSource(valid).Token()
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if tok.Expiry.IsZero() {
		t.Error("expiry not taken from exp claim")
	}
}

func TestClientCredentials(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`)) //nolint:errcheck
	}))
	defer srv.Close()

	ts, err := ClientCredentials(context.Background(), &config.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     srv.URL,
		Scopes:       []string{"chorus"},
	})
	if err != nil {
		t.Fatalf("ClientCredentials: %v", err)
	}
	for i := 0; i < 2; i++ {
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if tok.AccessToken != "cc-token" {
			t.Fatalf("AccessToken: got %q", tok.AccessToken)
		}
	}
	if calls != 1 {
		t.Errorf("token endpoint calls: got %d, want 1 (cached)", calls)
	}
}

func TestNewClientCredentialsConfigMissingFields(t *testing.T) {
	_, err := NewClientCredentialsConfig(&config.OAuthConfig{ClientID: "id"})
	if !errors.Is(err, ErrIncompleteOAuth) {
		t.Fatalf("got %v", err)
	}
	if got := err.Error(); got != "incomplete oauth configuration: missing client_secret, token_url" {
		t.Fatalf("message: got %q", got)
	}
}
