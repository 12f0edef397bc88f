// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads catalog credentials from a directory of plain-text
// files. Each regular file holds one credential: the filename is the key
// name and the trimmed file contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaterialsAPIKey is the key name of the hosted catalog credential.
const MaterialsAPIKey = "materials-api-key"

// Store holds credentials by key name.
type Store map[string]string

// Get returns the named credential and whether it is present.
func (s Store) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the loaded key names in sorted order.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads every credential file in dir. A missing directory is not an
// error; Load returns an empty store. Dotfiles and subdirectories are
// skipped, and unreadable or empty files produce a warning on stderr but do
// not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		value, err := readKey(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value == "" {
			fmt.Fprintf(os.Stderr, "warning: secret %s is empty\n", name)
			continue
		}
		store[name] = value
	}
	return store, nil
}

func readKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
