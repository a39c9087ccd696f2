// Package config loads environment configuration into tagged structs. A .env
// file in the working directory is read once before the first load; variables
// already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	dotenvErr  error
)

// Load parses environment variables into target, which must be a pointer to
// a struct using `env` tags.
func Load(target any, files ...string) error {
	dotenvOnce.Do(func() {
		if len(files) == 0 {
			files = []string{".env"}
		}
		for _, f := range files {
			if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
				dotenvErr = fmt.Errorf("load %s: %w", f, err)
				return
			}
		}
	})
	if dotenvErr != nil {
		return dotenvErr
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
