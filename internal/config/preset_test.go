package config

import (
	"testing"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

func newTestPresetManager(t *testing.T) *PresetManager {
	t.Helper()
	pm, err := NewPresetManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create preset manager: %v", err)
	}
	return pm
}

func TestPresetRoundTrip(t *testing.T) {
	pm := newTestPresetManager(t)

	s := DefaultSettings()
	s.ImageNamePattern = "{{dirName}}-{{fileName}}"
	s.DupNumberAtStart = true
	s.OutputFormat = types.FormatWebP

	preset, err := SettingsToPreset(s, "screenshots", "screenshot naming")
	if err != nil {
		t.Fatalf("failed to convert settings: %v", err)
	}

	if err := pm.SavePreset(preset); err != nil {
		t.Fatalf("failed to save preset: %v", err)
	}

	loaded, err := pm.LoadPreset("screenshots")
	if err != nil {
		t.Fatalf("failed to load preset: %v", err)
	}
	if loaded.Name != "screenshots" || loaded.Description != "screenshot naming" {
		t.Fatalf("unexpected preset metadata: %+v", loaded)
	}

	restored, err := PresetToSettings(loaded)
	if err != nil {
		t.Fatalf("failed to restore settings: %v", err)
	}
	if restored.ImageNamePattern != "{{dirName}}-{{fileName}}" {
		t.Fatalf("unexpected pattern: %s", restored.ImageNamePattern)
	}
	if !restored.DupNumberAtStart {
		t.Fatal("expected dup_number_at_start to survive the round trip")
	}
	if restored.OutputFormat != types.FormatWebP {
		t.Fatalf("unexpected output format: %s", restored.OutputFormat)
	}
}

func TestPresetToSettingsKeepsDefaultsForMissingKeys(t *testing.T) {
	preset := &types.SettingsPreset{
		Name: "minimal",
		Settings: map[string]interface{}{
			"image_name_pattern": "{{firstHeading}}",
		},
	}

	s, err := PresetToSettings(preset)
	if err != nil {
		t.Fatalf("failed to restore settings: %v", err)
	}
	if s.ImageNamePattern != "{{firstHeading}}" {
		t.Fatalf("unexpected pattern: %s", s.ImageNamePattern)
	}
	if s.DupNumberDelimiter != "-" {
		t.Fatalf("expected default delimiter, got %q", s.DupNumberDelimiter)
	}
}

func TestSavePresetRequiresName(t *testing.T) {
	pm := newTestPresetManager(t)

	if err := pm.SavePreset(&types.SettingsPreset{}); err == nil {
		t.Fatal("expected error for unnamed preset")
	}
}

func TestListAndDeletePresets(t *testing.T) {
	pm := newTestPresetManager(t)

	for _, name := range []string{"a", "b"} {
		preset, err := SettingsToPreset(DefaultSettings(), name, "")
		if err != nil {
			t.Fatalf("failed to convert settings: %v", err)
		}
		if err := pm.SavePreset(preset); err != nil {
			t.Fatalf("failed to save preset %s: %v", name, err)
		}
	}

	presets, err := pm.ListPresets()
	if err != nil {
		t.Fatalf("failed to list presets: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}

	if err := pm.DeletePreset("a"); err != nil {
		t.Fatalf("failed to delete preset: %v", err)
	}

	presets, err = pm.ListPresets()
	if err != nil {
		t.Fatalf("failed to list presets: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "b" {
		t.Fatalf("unexpected presets after delete: %+v", presets)
	}

	if err := pm.DeletePreset("missing"); err == nil {
		t.Fatal("expected error deleting missing preset")
	}
}
