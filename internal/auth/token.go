// Package auth supplies bearer credentials for the Genie API. Providers
// refresh transparently; callers ask for a token immediately before every
// request and never cache it themselves.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yuanchaoma-db/genie-space/internal/config"
)

type TokenProvider interface {
	// Token returns a currently-valid bearer credential.
	Token(ctx context.Context) (string, error)

	// Invalidate discards any cached credential so the next Token call
	// fetches a fresh one. Called after the API rejects a token.
	Invalidate()
}

// FromConfig picks the OAuth machine-to-machine flow when client
// credentials are configured, otherwise a static personal access token.
func FromConfig(host string, cfg config.AuthConfig) (TokenProvider, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return NewOAuthProvider(host, cfg.ClientID, cfg.ClientSecret), nil
	}
	if cfg.Token != "" {
		return StaticProvider(cfg.Token), nil
	}
	return nil, fmt.Errorf("no credentials configured")
}

// StaticProvider wraps a fixed personal access token.
type StaticProvider string

func (p StaticProvider) Token(_ context.Context) (string, error) {
	return string(p), nil
}

func (p StaticProvider) Invalidate() {}

// OAuthProvider runs the Databricks client-credentials flow against the
// workspace /oidc/v1/token endpoint. The oauth2 token source caches the
// token and refreshes it near expiry; Invalidate drops the source so the
// next call fetches fresh.
type OAuthProvider struct {
	conf *clientcredentials.Config
	ctx  context.Context

	mu     sync.Mutex
	source oauth2.TokenSource
}

func NewOAuthProvider(host, clientID, clientSecret string) *OAuthProvider {
	base := host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	return &OAuthProvider{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     strings.TrimRight(base, "/") + "/oidc/v1/token",
			Scopes:       []string{"all-apis"},
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		// token fetches run on the source's own context; the transport
		// timeout bounds them
		ctx: context.WithValue(context.Background(), oauth2.HTTPClient,
			&http.Client{Timeout: 30 * time.Second}),
	}
}

func (p *OAuthProvider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	if p.source == nil {
		p.source = p.conf.TokenSource(p.ctx)
	}
	source := p.source
	p.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("refresh oauth token: %w", err)
	}
	return token.AccessToken, nil
}

func (p *OAuthProvider) Invalidate() {
	p.mu.Lock()
	p.source = nil
	p.mu.Unlock()
}
