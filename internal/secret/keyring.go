package secret

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/gaspardpetit/mcptap/internal/auth"
)

const (
	keyringService = "dev.mcptap"
	tokenEntry     = "session-token"
	refreshEntry   = "refresh-token"
)

// Keyring stores tokens in the OS credential manager. The session token is
// one JSON entry; the refresh token is kept separately because some backends
// reject empty secrets.
type Keyring struct{}

// NewKeyring returns a keyring-backed store, or ErrKeyringUnavailable on CI
// runners where no credential manager is present.
func NewKeyring() (*Keyring, error) {
	if inCI() {
		return nil, ErrKeyringUnavailable
	}
	return &Keyring{}, nil
}

func (k *Keyring) Save(tok *auth.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("secret: encode token: %w", err)
	}
	if err := keyring.Set(keyringService, tokenEntry, string(b)); err != nil {
		return fmt.Errorf("secret: keyring set: %w", err)
	}
	if tok.RefreshToken != "" {
		if err := keyring.Set(keyringService, refreshEntry, tok.RefreshToken); err != nil {
			return fmt.Errorf("secret: keyring set refresh: %w", err)
		}
	}
	return nil
}

func (k *Keyring) Load() (*auth.Token, error) {
	raw, err := keyring.Get(keyringService, tokenEntry)
	if err != nil {
		return nil, fmt.Errorf("secret: keyring get: %w", err)
	}
	var tok auth.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("secret: decode token: %w", err)
	}
	if tok.RefreshToken == "" {
		if r, err := keyring.Get(keyringService, refreshEntry); err == nil {
			tok.RefreshToken = r
		}
	}
	return &tok, nil
}

func (k *Keyring) Exists() bool {
	_, err := keyring.Get(keyringService, tokenEntry)
	return err == nil
}

func (k *Keyring) Clear() error {
	if err := keyring.Delete(keyringService, tokenEntry); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("secret: keyring delete: %w", err)
	}
	if err := keyring.Delete(keyringService, refreshEntry); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("secret: keyring delete refresh: %w", err)
	}
	return nil
}
