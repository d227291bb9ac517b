package tagging

import (
	"path/filepath"

	"github.com/Aftnet/NetMediaInfoLib/internal/container"
)

// Target is a writable tag bag. Setters overwrite unconditionally and are
// only ever called with valid values.
type Target interface {
	SetTitle(title string)
	SetGenres(genres []string)
	SetDescription(description string)
	SetCoverImage(image []byte)

	// applyExtra writes the fields specific to the container format.
	applyExtra(fields Fields, props container.Properties)
}

// Format is a supported tag container format.
type Format int

const (
	FormatApple Format = iota + 1
	FormatMatroska
)

func (f Format) String() string {
	switch f {
	case FormatApple:
		return "apple"
	case FormatMatroska:
		return "matroska"
	default:
		return "unknown"
	}
}

// Extensions are matched case-sensitively.
var formatsByExtension = map[string]Format{
	".mkv": FormatMatroska,
	".mp4": FormatApple,
	".m4v": FormatApple,
}

// FormatFor picks the container format from the file extension.
func FormatFor(path string) (Format, bool) {
	f, ok := formatsByExtension[filepath.Ext(path)]
	return f, ok
}

// SupportedExtensions lists the video extensions that can be tagged.
func SupportedExtensions() []string {
	return []string{".mkv", ".mp4", ".m4v"}
}

// target returns the tag bag for the format, creating it when absent.
func (f Format) target(file container.File) Target {
	switch f {
	case FormatApple:
		if tag := file.AppleTag(true); tag != nil {
			return &appleTarget{tag: tag}
		}
	case FormatMatroska:
		if tag := file.MatroskaTag(true); tag != nil {
			return &matroskaTarget{tag: tag}
		}
	}
	return nil
}

// applyBasic writes the fields common to every format, skipping invalid
// values.
func applyBasic(t Target, fields Fields) {
	if NonEmpty(fields.Title) {
		t.SetTitle(fields.Title)
	}
	if AnyGenre(fields.Genres) {
		t.SetGenres(fields.Genres)
	}
	if NonEmpty(fields.Description) {
		t.SetDescription(fields.Description)
	}
	if Present(fields.Cover) {
		t.SetCoverImage(fields.Cover)
	}
}
