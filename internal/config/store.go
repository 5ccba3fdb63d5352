package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists user data (settings, recently used vaults) under the
// state directory.
type Store struct {
	dataDir string
}

// maxRecentVaults caps the recently-used vault list.
const maxRecentVaults = 10

// validatePath rejects paths carrying HTML or script patterns. Stored
// paths are rendered back into the review UI, so they must be inert.
func validatePath(path string) error {
	if path == "" {
		return nil
	}

	lowerPath := strings.ToLower(path)

	htmlTagPatterns := []string{
		"<script",
		"</script",
		"<iframe",
		"<object",
		"<embed",
		"<img",
	}
	for _, pattern := range htmlTagPatterns {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains HTML tag pattern: %s", pattern)
		}
	}

	dangerousPatterns := []string{
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains potentially malicious pattern: %s", pattern)
		}
	}

	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	return nil
}

// NewStore creates a store rooted at the default state directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(homeDir, ".paste-image-rename"))
}

// NewStoreAt creates a store rooted at dir.
func NewStoreAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dataDir: dir}, nil
}

// SaveSettings writes the settings to disk.
func (st *Store) SaveSettings(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return st.writeAtomic("settings.json", data)
}

// LoadSettings reads the stored settings, or the defaults when nothing
// has been stored yet.
func (st *Store) LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(filepath.Join(st.dataDir, "settings.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

// AddRecentVault records a vault path at the head of the recent list,
// deduplicating and trimming to the cap.
func (st *Store) AddRecentVault(path string) error {
	if err := validatePath(path); err != nil {
		return &ValidationError{Field: "vault", Message: err.Error()}
	}

	recent, err := st.LoadRecentVaults()
	if err != nil {
		return err
	}

	updated := []string{path}
	for _, p := range recent {
		if p == path {
			continue
		}
		updated = append(updated, p)
	}
	if len(updated) > maxRecentVaults {
		updated = updated[:maxRecentVaults]
	}

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recent vaults: %w", err)
	}
	return st.writeAtomic("recent-vaults.json", data)
}

// LoadRecentVaults returns the recently used vault paths, newest first.
func (st *Store) LoadRecentVaults() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(st.dataDir, "recent-vaults.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recent vaults: %w", err)
	}

	var recent []string
	if err := json.Unmarshal(data, &recent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recent vaults: %w", err)
	}
	return recent, nil
}

// writeAtomic writes to a temp file then renames into place.
func (st *Store) writeAtomic(name string, data []byte) error {
	filename := filepath.Join(st.dataDir, name)
	tmpFile := filename + ".tmp"

	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to finalize %s: %w", name, err)
	}
	return nil
}
