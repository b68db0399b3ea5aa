// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/subosito/gotenv"
)

// DotenvFiles are loaded from the working directory, in this order, before
// environment variables are parsed.
var DotenvFiles = []string{".env", ".env.local", ".env.development"}

// LoadDotenv exports the variables of the DotenvFiles found in dir. Variables
// already present in the process environment are never overwritten, and a
// file loaded earlier wins over a later one. Missing files are skipped.
func LoadDotenv(dir string) error {
	for _, name := range DotenvFiles {
		path := filepath.Join(dir, name)
		if err := gotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}

	return nil
}
