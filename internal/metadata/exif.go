// Package metadata extracts capture metadata from image attachments.
package metadata

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Capture is the result of extracting a capture time from an image.
type Capture struct {
	// Time is the shooting/creation time, nil if extraction failed.
	Time *time.Time
	// Source indicates where the time came from (e.g., "EXIF:DateTimeOriginal").
	Source string
	// Error contains the extraction error message if any.
	Error string
}

// Extractor reads EXIF capture times. It is used by the exif-date feature:
// {{DATE:...}} tokens can format the pasted image's capture time instead of
// the wall clock.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{}
}

// CaptureTime extracts the capture time of the image at path.
func (e *Extractor) CaptureTime(path string) Capture {
	f, err := os.Open(path)
	if err != nil {
		return Capture{Error: err.Error()}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Capture{Error: "no EXIF data: " + err.Error()}
	}

	if t, err := x.DateTime(); err == nil {
		return Capture{
			Time:   &t,
			Source: "EXIF:DateTimeOriginal",
		}
	}

	if tag, err := x.Get(exif.DateTimeDigitized); err == nil {
		if strVal, err := tag.StringVal(); err == nil {
			if t, err := time.Parse("2006:01:02 15:04:05", strVal); err == nil {
				return Capture{
					Time:   &t,
					Source: "EXIF:DateTimeDigitized",
				}
			}
		}
	}

	return Capture{Error: "no capture time found in EXIF"}
}
