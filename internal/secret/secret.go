// Package secret persists session tokens between proxy runs. The OS keyring
// is preferred; a mode-0600 JSON file under the data directory is the
// fallback for headless machines and CI.
package secret

import (
	"errors"
	"os"

	"github.com/gaspardpetit/mcptap/internal/auth"
	"github.com/gaspardpetit/mcptap/internal/logx"
)

// ErrKeyringUnavailable marks environments where no OS keyring should be
// touched, such as CI runners.
var ErrKeyringUnavailable = errors.New("secret: keyring unavailable")

// Open returns the best available token store: the OS keyring when usable,
// otherwise a file store at path.
func Open(path string) auth.TokenStore {
	kr, err := NewKeyring()
	if err != nil {
		logx.Log.Debug().Err(err).Msg("keyring unavailable; using file token store")
		return NewFile(path)
	}
	return kr
}

func inCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}
