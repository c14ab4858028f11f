package secret

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaspardpetit/mcptap/internal/auth"
)

// File stores the token as a mode-0600 JSON snapshot.
type File struct {
	path string
}

// NewFile returns a file-backed store at path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Save(tok *auth.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("secret: encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("secret: create token dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("secret: write token: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("secret: rename token: %w", err)
	}
	return nil
}

func (f *File) Load() (*auth.Token, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("secret: read token: %w", err)
	}
	var tok auth.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("secret: decode token: %w", err)
	}
	return &tok, nil
}

func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("secret: remove token: %w", err)
	}
	return nil
}
