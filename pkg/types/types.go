// Package types defines core data structures used across paste-image-rename modules.
package types

import (
	"time"
)

// Attachment represents a scanned attachment file inside the vault.
type Attachment struct {
	// Path is the vault-relative path to the attachment.
	Path string `json:"path"`
	// Name is the base filename.
	Name string `json:"name"`
	// Dir is the vault-relative parent directory.
	Dir string `json:"dir"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// ModTime is the file modification time.
	ModTime time.Time `json:"mod_time"`
	// Extension is the lowercase file extension without dot (e.g., "png", "webp").
	Extension string `json:"extension"`
	// IsImage indicates if this is a raster image file.
	IsImage bool `json:"is_image"`
}

// CandidateName is a proposed file name prior to collision resolution.
// Extension is always non-empty; name generation never changes it.
type CandidateName struct {
	Stem      string
	Extension string
}

// String returns the full "stem.ext" form.
func (c CandidateName) String() string {
	return c.Stem + "." + c.Extension
}

// ResolvedName is a final, collision-free file name.
type ResolvedName struct {
	// Name is the full file name including extension.
	Name string
	// Stem is the file name without extension.
	Stem string
	// Extension is the extension without dot.
	Extension string
}

// DuplicatePolicy governs whether and how a numeric disambiguator is
// attached to a generated name.
type DuplicatePolicy struct {
	// AtStart places the number before the stem ("1-foo.png") instead of
	// after it ("foo-1.png").
	AtStart bool
	// Delimiter separates the number from the stem.
	Delimiter string
	// Always numbers every generated name, not only on conflict.
	Always bool
}

// GeneratedName is the output of the naming policy for one attachment.
type GeneratedName struct {
	// Stem is the rendered, sanitized stem.
	Stem string
	// NewName is stem plus the original extension.
	NewName string
	// IsMeaningful reports whether the stem contains at least one character
	// other than whitespace or the duplicate-number delimiter. Names that
	// are not meaningful must never be auto-applied.
	IsMeaningful bool
}

// TaskStatus represents the status of a rename or conversion task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// TaskAction represents the action taken for an attachment.
type TaskAction string

const (
	TaskActionRenamed   TaskAction = "renamed"
	TaskActionConverted TaskAction = "converted"
	TaskActionSkipped   TaskAction = "skipped"
	TaskActionFailed    TaskAction = "failed"
)

// RenameTask represents a planned rename of one attachment. Tasks are
// produced in bulk by the batch commands and consumed by a confirmation
// step before any mutation.
type RenameTask struct {
	// Attachment is the file the task applies to.
	Attachment Attachment `json:"attachment"`
	// NewName is the proposed file name (pre collision resolution).
	NewName string `json:"new_name"`
	// IsMeaningful mirrors GeneratedName.IsMeaningful.
	IsMeaningful bool `json:"is_meaningful"`
	// Status indicates the task status.
	Status TaskStatus `json:"status"`
	// Action indicates what action was taken.
	Action TaskAction `json:"action,omitempty"`
	// Error contains the error message if the task failed.
	Error string `json:"error,omitempty"`
}

// ConversionTask represents a planned format conversion of one attachment.
type ConversionTask struct {
	Attachment   Attachment   `json:"attachment"`
	TargetFormat OutputFormat `json:"target_format"`
	Status       TaskStatus   `json:"status"`
	Action       TaskAction   `json:"action,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// OutputFormat is an image output format, or "auto" for policy selection.
type OutputFormat string

const (
	FormatAuto OutputFormat = "auto"
	FormatJPG  OutputFormat = "jpg"
	FormatWebP OutputFormat = "webp"
	FormatAVIF OutputFormat = "avif"
	FormatPNG  OutputFormat = "png"
	FormatGIF  OutputFormat = "gif"
)

// FormatFromExtension normalizes a file extension to an OutputFormat.
func FormatFromExtension(ext string) OutputFormat {
	if ext == "jpeg" {
		return FormatJPG
	}
	return OutputFormat(ext)
}

// Extension returns the file extension for the format, without dot.
func (f OutputFormat) Extension() string {
	return string(f)
}

// RunSummary contains statistics for a completed batch run.
type RunSummary struct {
	Scanned   int           `json:"scanned"`
	Proposed  int           `json:"proposed"`
	Renamed   int           `json:"renamed"`
	Converted int           `json:"converted"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// SettingsPreset is a named, saved copy of the plugin settings.
// The payload is kept schema-free so presets survive settings fields
// being added or removed.
type SettingsPreset struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Settings    map[string]interface{} `json:"settings"`
	CreatedAt   time.Time              `json:"created_at"`
}
