package policy

import (
	"strings"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

// CapabilityProbe reports whether the runtime can encode a given format.
// Probe results may be stale; callers re-check per selection.
type CapabilityProbe interface {
	Supports(format types.OutputFormat) bool
}

// FormatSettings are the compression-related knobs consumed by selection.
type FormatSettings struct {
	// EnableCompression gates the whole policy; off means keep the original.
	EnableCompression bool
	// OutputFormat is the configured target, or FormatAuto.
	OutputFormat types.OutputFormat
	// SmartSelection picks the most space-efficient supported format.
	SmartSelection bool
	// Fallback is the generic fallback when smart selection is off.
	Fallback types.OutputFormat
}

// smartOrder is the fixed preference order for smart selection: best
// compression first, guaranteed fallback last.
var smartOrder = []types.OutputFormat{types.FormatAVIF, types.FormatWebP, types.FormatJPG}

// FormatSelector chooses the output format for image conversions.
type FormatSelector struct {
	probe CapabilityProbe
}

// NewFormatSelector creates a selector backed by the given probe.
func NewFormatSelector(probe CapabilityProbe) *FormatSelector {
	return &FormatSelector{probe: probe}
}

// Select decides the output format for an attachment with the given original
// extension. Unsupported targets are skipped silently, never surfaced as
// errors. Animated sources (gif) never select a format that cannot hold
// animation; their floor is the original format rather than jpg.
func (s *FormatSelector) Select(originalExt string, cfg FormatSettings) types.OutputFormat {
	original := types.FormatFromExtension(strings.ToLower(originalExt))

	if !cfg.EnableCompression {
		return original
	}

	if cfg.OutputFormat != "" && cfg.OutputFormat != types.FormatAuto {
		return cfg.OutputFormat
	}

	if cfg.SmartSelection {
		animated := original == types.FormatGIF
		for _, f := range smartOrder {
			if animated && (f == types.FormatAVIF || f == types.FormatJPG) {
				continue
			}
			if s.probe.Supports(f) {
				return f
			}
		}
		if animated {
			return original
		}
		// jpg is the guaranteed floor for still images.
		return types.FormatJPG
	}

	if cfg.Fallback != "" {
		return cfg.Fallback
	}
	return types.FormatJPG
}
