// Package auth stores per-site login credentials. Secrets live in the OS
// keyring when one is available; headless environments (CI, containers) fall
// back to mode-0600 JSON files under the user's home directory.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService namespaces harvest entries in the OS keyring.
	KeyringService = "harvest"
	// FallbackDir holds file-based credentials relative to the home dir.
	FallbackDir = ".harvest/credentials"
)

// Credentials is one site's login pair.
type Credentials struct {
	Site     string    `json:"site"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store reads and writes credentials. The zero value is not usable; construct
// with NewStore.
type Store struct {
	service string
	// dir overrides the fallback directory, for tests.
	dir string
	// forceFile skips the keyring probe, for tests and headless installs.
	forceFile bool

	fileBased *bool
}

// NewStore returns a store backed by the OS keyring with file fallback.
func NewStore() *Store {
	return &Store{service: KeyringService}
}

// NewFileStore returns a store that only uses files under dir.
func NewFileStore(dir string) *Store {
	return &Store{service: KeyringService, dir: dir, forceFile: true}
}

// useFileStorage probes the keyring once and caches the answer. CI and
// Codespaces never have a usable keyring, so the probe is skipped there.
func (s *Store) useFileStorage() bool {
	if s.fileBased != nil {
		return *s.fileBased
	}
	result := s.forceFile
	if !result && (os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "") {
		result = true
	}
	if !result {
		probe := "_keyring_probe_"
		if err := keyring.Set(s.service, probe, "probe"); err != nil {
			result = true
		} else {
			keyring.Delete(s.service, probe)
		}
	}
	s.fileBased = &result
	return result
}

func (s *Store) credentialDir() (string, error) {
	dir := s.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, FallbackDir)
	}
	return dir, os.MkdirAll(dir, 0o700)
}

func (s *Store) credentialPath(site string) (string, error) {
	dir, err := s.credentialDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, normalizeSite(site)+".json"), nil
}

// Save stores the pair, replacing any previous entry for the site.
func (s *Store) Save(creds *Credentials) error {
	if creds == nil || strings.TrimSpace(creds.Site) == "" {
		return fmt.Errorf("credentials require a site name")
	}
	creds.Site = normalizeSite(creds.Site)
	if creds.SavedAt.IsZero() {
		creds.SavedAt = time.Now()
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("serialize credentials: %w", err)
	}

	if s.useFileStorage() {
		path, err := s.credentialPath(creds.Site)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o600)
	}
	return keyring.Set(s.service, creds.Site, string(data))
}

// Load retrieves the pair for a site.
func (s *Store) Load(site string) (*Credentials, error) {
	site = normalizeSite(site)
	if site == "" {
		return nil, fmt.Errorf("site name cannot be empty")
	}

	var data string
	if s.useFileStorage() {
		path, err := s.credentialPath(site)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("no stored credentials for %q: %w", site, err)
		}
		data = string(raw)
	} else {
		stored, err := keyring.Get(s.service, site)
		if err != nil {
			return nil, fmt.Errorf("no stored credentials for %q: %w", site, err)
		}
		data = stored
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("deserialize credentials: %w", err)
	}
	return &creds, nil
}

// Delete removes a site's entry. Missing entries are not an error.
func (s *Store) Delete(site string) error {
	site = normalizeSite(site)
	if site == "" {
		return fmt.Errorf("site name cannot be empty")
	}
	if s.useFileStorage() {
		path, err := s.credentialPath(site)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := keyring.Delete(s.service, site); err != nil && err != keyring.ErrNotFound {
		return err
	}
	return nil
}

// List names the sites with stored credentials. Keyring backends have no
// enumeration API, so only the file fallback can list.
func (s *Store) List() ([]string, error) {
	if !s.useFileStorage() {
		return nil, fmt.Errorf("the OS keyring cannot enumerate entries")
	}
	dir, err := s.credentialDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sites []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			sites = append(sites, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return sites, nil
}

// Lookup resolves credentials for a login agent: environment variables first
// (HARVEST_<SITE>_EMAIL / HARVEST_<SITE>_PASSWORD), then the store. Its
// signature matches the runner's lookup hook.
func (s *Store) Lookup(site string) (string, string, error) {
	key := strings.ToUpper(normalizeSite(site))
	email := os.Getenv("HARVEST_" + key + "_EMAIL")
	password := os.Getenv("HARVEST_" + key + "_PASSWORD")
	if email != "" && password != "" {
		return email, password, nil
	}

	creds, err := s.Load(site)
	if err != nil {
		return "", "", err
	}
	if email == "" {
		email = creds.Email
	}
	if password == "" {
		password = creds.Password
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("incomplete credentials for %q", site)
	}
	return email, password, nil
}

// normalizeSite lowercases and maps separators so "Station F" and
// "station_f" address the same entry.
func normalizeSite(site string) string {
	site = strings.ToLower(strings.TrimSpace(site))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == ' ':
			return '_'
		}
		return -1
	}, site)
}
