package filter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// LocalLog appends one metadata record per proxied command to a local JSONL
// file. It never blocks a launch: every failure is swallowed with a warning.
type LocalLog struct {
	path string
	tier string
}

// NewLocalLog returns a LocalLog writing to path, stamping records with tier.
func NewLocalLog(path, tier string) *LocalLog {
	return &LocalLog{path: path, tier: tier}
}

func (l *LocalLog) Name() string { return "local_logger" }

func (l *LocalLog) Blocking() bool { return false }

type commandRecord struct {
	Timestamp time.Time         `json:"timestamp"`
	Command   string            `json:"command"`
	Args      []string          `json:"args"`
	UserTier  string            `json:"user_tier"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (l *LocalLog) Check(_ context.Context, fc *Context) (Decision, error) {
	rec := commandRecord{
		Timestamp: time.Now().UTC(),
		Command:   fc.Request.Command,
		Args:      fc.Request.Args,
		UserTier:  l.tier,
		Metadata:  fc.Request.Metadata,
	}
	if err := l.append(rec); err != nil {
		logx.Log.Warn().Err(err).Str("path", l.path).Msg("command log write failed")
	}
	return Allow(), nil
}

func (l *LocalLog) append(rec commandRecord) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(b, '\n'))
	return err
}
