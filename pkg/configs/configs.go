// Package configs provides the embedded default configuration file.
package configs

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultConfigBytes is the default config.yml shipped with enforcedomain.
//
//go:embed config.yml
var DefaultConfigBytes []byte

// DefaultFileName is the config file used when none is specified.
const DefaultFileName = "config.yml"

// EnsureFile writes the default config to path if no file exists there yet.
// It reports whether the file was created.
func EnsureFile(path string) (created bool, err error) {
	if _, err = os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("error creating config directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}
	if _, err = f.Write(DefaultConfigBytes); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("error writing default config: %w", err)
	}
	return true, f.Close()
}
