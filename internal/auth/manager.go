package auth

import (
	"context"
	"time"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// TokenStore persists session tokens between runs. Implementations live in
// internal/secret; a nil store means nothing is cached.
type TokenStore interface {
	Save(tok *Token) error
	Load() (*Token, error)
	Exists() bool
	// Clear removes any stored token. Clearing an empty store is a no-op.
	Clear() error
}

// Manager resolves the session token and tier for a proxy run.
type Manager struct {
	Store  TokenStore
	Client *Client
	APIKey string
}

// FreeTier is what every failure path falls back to.
const FreeTier = "free"

// ResolveSession returns the session token (nil when unauthenticated) and the
// effective tier. Precedence: explicit override, then the token's tier claim,
// then free. Auth trouble of any kind logs a warning and degrades to free;
// it never prevents the proxy from running.
func (m *Manager) ResolveSession(ctx context.Context, overrideTier string) (*Token, string) {
	tok := m.cachedToken()
	if tok == nil {
		tok = m.exchange(ctx)
	}
	tier := overrideTier
	if tier == "" && tok != nil {
		tier = tok.Claims.Tier
	}
	if tier == "" {
		tier = FreeTier
	}
	return tok, tier
}

func (m *Manager) cachedToken() *Token {
	if m.Store == nil || !m.Store.Exists() {
		return nil
	}
	tok, err := m.Store.Load()
	if err != nil {
		logx.Log.Warn().Err(err).Msg("failed to load cached token")
		return nil
	}
	if IsExpired(tok, time.Now()) {
		logx.Log.Debug().Msg("cached token expired; exchanging again")
		return nil
	}
	return tok
}

func (m *Manager) exchange(ctx context.Context) *Token {
	if m.APIKey == "" || m.Client == nil {
		logx.Log.Debug().Msg("no API key configured; running local-only")
		return nil
	}
	tok, err := m.Client.Exchange(ctx, m.APIKey)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("token exchange failed; running local-only")
		return nil
	}
	if m.Store != nil {
		if err := m.Store.Save(tok); err != nil {
			logx.Log.Warn().Err(err).Msg("failed to cache token")
		}
	}
	return tok
}
