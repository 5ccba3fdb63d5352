package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
	"gopkg.in/yaml.v3"
)

// PresetManager manages named settings presets on disk.
type PresetManager struct {
	presetsDir string
}

// NewPresetManager creates a preset manager rooted under the user home.
func NewPresetManager() (*PresetManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewPresetManagerAt(filepath.Join(homeDir, ".paste-image-rename", "presets"))
}

// NewPresetManagerAt creates a preset manager using an explicit directory.
func NewPresetManagerAt(dir string) (*PresetManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create presets directory: %w", err)
	}
	return &PresetManager{presetsDir: dir}, nil
}

// SettingsToPreset converts settings to a named preset. The payload is kept
// as a generic mapping so saved presets survive settings schema changes.
func SettingsToPreset(s *Settings, name, description string) (*types.SettingsPreset, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	var payload map[string]interface{}
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to convert settings: %w", err)
	}

	return &types.SettingsPreset{
		Name:        name,
		Description: description,
		Settings:    payload,
		CreatedAt:   time.Now(),
	}, nil
}

// PresetToSettings applies a preset on top of the defaults. Unknown keys in
// the payload are ignored.
func PresetToSettings(preset *types.SettingsPreset) (*Settings, error) {
	data, err := yaml.Marshal(preset.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preset payload: %w", err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to apply preset: %w", err)
	}
	return s, nil
}

// SavePreset saves a preset to disk.
func (pm *PresetManager) SavePreset(preset *types.SettingsPreset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}

	filename := filepath.Join(pm.presetsDir, preset.Name+".json")
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	return nil
}

// LoadPreset loads a preset from disk.
func (pm *PresetManager) LoadPreset(name string) (*types.SettingsPreset, error) {
	filename := filepath.Join(pm.presetsDir, name+".json")
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset types.SettingsPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preset: %w", err)
	}

	return &preset, nil
}

// DeletePreset deletes a preset from disk.
func (pm *PresetManager) DeletePreset(name string) error {
	filename := filepath.Join(pm.presetsDir, name+".json")
	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("failed to delete preset file: %w", err)
	}
	return nil
}

// ListPresets lists all available presets.
func (pm *PresetManager) ListPresets() ([]types.SettingsPreset, error) {
	entries, err := os.ReadDir(pm.presetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets directory: %w", err)
	}

	var presets []types.SettingsPreset
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		name := entry.Name()[:len(entry.Name())-5] // Remove ".json"
		preset, err := pm.LoadPreset(name)
		if err != nil {
			continue // Skip invalid presets
		}
		presets = append(presets, *preset)
	}

	return presets, nil
}
