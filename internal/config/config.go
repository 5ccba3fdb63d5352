package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
	"gopkg.in/yaml.v3"
)

// Settings is the flat settings record consumed by every core call. It is
// loaded and saved by the host; the core holds no ambient state.
type Settings struct {
	// ImageNamePattern is the name template for pasted attachments,
	// e.g. "{{imageNameKey}}-{{DATE:YYYYMMDD}}".
	ImageNamePattern string `yaml:"image_name_pattern" json:"image_name_pattern"`
	// ImageNameKey is the frontmatter key resolved by {{imageNameKey}}.
	ImageNameKey string `yaml:"image_name_key" json:"image_name_key"`

	DupNumberAtStart   bool   `yaml:"dup_number_at_start" json:"dup_number_at_start"`
	DupNumberDelimiter string `yaml:"dup_number_delimiter" json:"dup_number_delimiter"`
	DupNumberAlways    bool   `yaml:"dup_number_always" json:"dup_number_always"`

	// AutoRename applies meaningful generated names without confirmation.
	AutoRename bool `yaml:"auto_rename" json:"auto_rename"`
	// ExcludeExtensionPattern is a regex; attachments whose extension
	// matches are never renamed.
	ExcludeExtensionPattern string `yaml:"exclude_extension_pattern" json:"exclude_extension_pattern"`

	// UseExifDate formats {{DATE:...}} tokens with the image's EXIF capture
	// time when available, instead of the wall clock.
	UseExifDate bool `yaml:"use_exif_date" json:"use_exif_date"`
	// SlugifyStem normalizes generated stems to URL-safe slugs.
	SlugifyStem bool `yaml:"slugify_stem" json:"slugify_stem"`
	// WikiLinks renders rewritten references as ![[...]] embeds instead of
	// markdown image links.
	WikiLinks bool `yaml:"wiki_links" json:"wiki_links"`

	EnableCompression    bool               `yaml:"enable_compression" json:"enable_compression"`
	MaxWidth             int                `yaml:"max_width" json:"max_width"`
	MaxHeight            int                `yaml:"max_height" json:"max_height"`
	JPGQuality           float64            `yaml:"jpg_quality" json:"jpg_quality"`
	WebpQuality          float64            `yaml:"webp_quality" json:"webp_quality"`
	AvifQuality          float64            `yaml:"avif_quality" json:"avif_quality"`
	OutputFormat         types.OutputFormat `yaml:"output_format" json:"output_format"`
	SmartFormatSelection bool               `yaml:"smart_format_selection" json:"smart_format_selection"`

	LogFile string `yaml:"log_file" json:"log_file"`
	LogJSON bool   `yaml:"log_json" json:"log_json"`
	// HistoryFile is the rename journal used by undo.
	HistoryFile string `yaml:"history_file" json:"history_file"`
}

// DefaultSettings returns the settings used when no file overrides them.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".paste-image-rename")

	return &Settings{
		ImageNamePattern:        "{{fileName}}",
		ImageNameKey:            "imageNameKey",
		DupNumberAtStart:        false,
		DupNumberDelimiter:      "-",
		DupNumberAlways:         false,
		AutoRename:              false,
		ExcludeExtensionPattern: "",
		UseExifDate:             false,
		SlugifyStem:             false,
		WikiLinks:               true,
		EnableCompression:       false,
		MaxWidth:                0,
		MaxHeight:               0,
		JPGQuality:              0.85,
		WebpQuality:             0.85,
		AvifQuality:             0.8,
		OutputFormat:            types.FormatAuto,
		SmartFormatSelection:    false,
		LogFile:                 filepath.Join(stateDir, "paste-image-rename.log"),
		LogJSON:                 false,
		HistoryFile:             filepath.Join(stateDir, "history.json"),
	}
}

// LoadFromFile reads settings from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate normalizes the settings and rejects values the engine cannot
// work with.
func (s *Settings) Validate() error {
	if s.ImageNamePattern == "" {
		return &ValidationError{Field: "image_name_pattern", Message: "name pattern is required"}
	}

	if s.ExcludeExtensionPattern != "" {
		if _, err := regexp.Compile(s.ExcludeExtensionPattern); err != nil {
			return &ValidationError{Field: "exclude_extension_pattern", Message: err.Error()}
		}
	}

	if s.DupNumberDelimiter == "" {
		s.DupNumberDelimiter = "-"
	}

	for _, q := range []struct {
		field string
		value float64
	}{
		{"jpg_quality", s.JPGQuality},
		{"webp_quality", s.WebpQuality},
		{"avif_quality", s.AvifQuality},
	} {
		if q.value < 0 || q.value > 1 {
			return &ValidationError{Field: q.field, Message: "quality must be between 0 and 1"}
		}
	}

	if s.OutputFormat == "" {
		s.OutputFormat = types.FormatAuto
	}

	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".paste-image-rename")

	if s.LogFile == "" {
		s.LogFile = filepath.Join(stateDir, "paste-image-rename.log")
	}
	if s.HistoryFile == "" {
		s.HistoryFile = filepath.Join(stateDir, "history.json")
	}

	return nil
}

// DuplicatePolicy returns the duplicate-numbering policy carried by the
// settings.
func (s *Settings) DuplicatePolicy() types.DuplicatePolicy {
	return types.DuplicatePolicy{
		AtStart:   s.DupNumberAtStart,
		Delimiter: s.DupNumberDelimiter,
		Always:    s.DupNumberAlways,
	}
}

// ExcludesExtension reports whether the extension is excluded from renaming
// by the configured pattern. An empty or invalid pattern excludes nothing.
func (s *Settings) ExcludesExtension(ext string) bool {
	if s.ExcludeExtensionPattern == "" {
		return false
	}
	re, err := regexp.Compile(s.ExcludeExtensionPattern)
	if err != nil {
		return false
	}
	return re.MatchString(ext)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
