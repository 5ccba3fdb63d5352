package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

func TestSettingsValidate_RequiresPattern(t *testing.T) {
	s := DefaultSettings()
	s.ImageNamePattern = ""

	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if validationErr.Field != "image_name_pattern" {
		t.Fatalf("expected field image_name_pattern, got %s", validationErr.Field)
	}
}

func TestSettingsValidate_RejectsBadExcludePattern(t *testing.T) {
	s := DefaultSettings()
	s.ExcludeExtensionPattern = "["

	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation error for bad regex")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if validationErr.Field != "exclude_extension_pattern" {
		t.Fatalf("expected field exclude_extension_pattern, got %s", validationErr.Field)
	}
}

func TestSettingsValidate_RejectsOutOfRangeQuality(t *testing.T) {
	s := DefaultSettings()
	s.WebpQuality = 1.5

	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation error for quality > 1")
	}
}

func TestSettingsValidate_FillsDefaults(t *testing.T) {
	s := DefaultSettings()
	s.DupNumberDelimiter = ""
	s.OutputFormat = ""
	s.LogFile = ""
	s.HistoryFile = ""

	if err := s.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if s.DupNumberDelimiter != "-" {
		t.Fatalf("expected delimiter '-', got %q", s.DupNumberDelimiter)
	}
	if s.OutputFormat != types.FormatAuto {
		t.Fatalf("expected auto output format, got %s", s.OutputFormat)
	}
	if s.LogFile == "" || s.HistoryFile == "" {
		t.Fatal("expected log and history paths to be filled")
	}
}

func TestLoadFromFile_ReadsYAMLIntoSettings(t *testing.T) {
	yamlContent := strings.Join([]string{
		"image_name_pattern: '{{imageNameKey}}-{{DATE:YYYYMMDD}}'",
		"dup_number_at_start: true",
		"dup_number_delimiter: '_'",
		"auto_rename: true",
		"output_format: webp",
	}, "\n")

	filePath := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(filePath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := LoadFromFile(filePath)
	if err != nil {
		t.Fatalf("load from file failed: %v", err)
	}
	if s.ImageNamePattern != "{{imageNameKey}}-{{DATE:YYYYMMDD}}" {
		t.Fatalf("unexpected pattern: %s", s.ImageNamePattern)
	}
	if !s.DupNumberAtStart || s.DupNumberDelimiter != "_" || !s.AutoRename {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.OutputFormat != types.FormatWebP {
		t.Fatalf("unexpected output format: %s", s.OutputFormat)
	}
	// Fields absent from the file keep their defaults.
	if s.ImageNameKey != "imageNameKey" {
		t.Fatalf("expected default image_name_key, got %s", s.ImageNameKey)
	}
}

func TestLoadFromFile_ReturnsReadError(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected read error for missing settings file")
	}
}

func TestLoadFromFile_ReturnsYAMLParseError(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(filePath, []byte("image_name_pattern: ["), 0644); err != nil {
		t.Fatalf("failed to write broken yaml: %v", err)
	}

	_, err := LoadFromFile(filePath)
	if err == nil {
		t.Fatal("expected yaml parse error")
	}
}

func TestDuplicatePolicy(t *testing.T) {
	s := DefaultSettings()
	s.DupNumberAtStart = true
	s.DupNumberDelimiter = "_"
	s.DupNumberAlways = true

	p := s.DuplicatePolicy()
	if !p.AtStart || p.Delimiter != "_" || !p.Always {
		t.Fatalf("unexpected policy: %+v", p)
	}
}

func TestExcludesExtension(t *testing.T) {
	s := DefaultSettings()

	if s.ExcludesExtension("png") {
		t.Error("empty pattern should exclude nothing")
	}

	s.ExcludeExtensionPattern = "^(gif|svg)$"
	if !s.ExcludesExtension("gif") {
		t.Error("gif should be excluded")
	}
	if s.ExcludesExtension("png") {
		t.Error("png should not be excluded")
	}
}

func TestValidationError_ErrorFormat(t *testing.T) {
	err := (&ValidationError{Field: "image_name_pattern", Message: "is required"}).Error()
	if err != "image_name_pattern: is required" {
		t.Fatalf("unexpected validation error format: %s", err)
	}
}
