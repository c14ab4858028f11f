package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gaspardpetit/mcptap/internal/config"
)

// runConfigShow prints the effective configuration as YAML. The API key is
// masked unless --show-secrets is set.
func runConfigShow(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var cfg config.Config
	cfg.BindFlags(fs)
	showSecrets := fs.Bool("show-secrets", false, "print the API key unmasked")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
		}
	}

	shown := cfg
	if !*showSecrets {
		shown.APIKey = config.MaskSecret(cfg.APIKey)
	}
	out, err := yaml.Marshal(&shown)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "# %s\n", cfg.ConfigFile)
	_, err = stdout.Write(out)
	return err
}
