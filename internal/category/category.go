package category

import (
	"path/filepath"
	"strings"
)

// Category is a coarse file-type label derived from a filename's extension.
type Category string

const (
	Photo    Category = "photo"
	Video    Category = "video"
	Audio    Category = "audio"
	Document Category = "document"
	Other    Category = "other"
)

// extensions maps lowercase extensions (with the leading dot) to their category.
var extensions = map[string]Category{
	".jpg":  Photo,
	".jpeg": Photo,
	".png":  Photo,
	".gif":  Photo,
	".bmp":  Photo,
	".webp": Photo,

	".mp4": Video,
	".mov": Video,
	".avi": Video,
	".wmv": Video,

	".mp3":  Audio,
	".wav":  Audio,
	".flac": Audio,
	".ogg":  Audio,

	".pdf":  Document,
	".doc":  Document,
	".docx": Document,
	".txt":  Document,
	".rtf":  Document,
	".md":   Document,
}

// Classify returns the category for filename based on its extension.
// Matching is case-insensitive. Unknown or missing extensions map to Other.
func Classify(filename string) Category {
	ext := strings.ToLower(filepath.Ext(filename))
	if c, ok := extensions[ext]; ok {
		return c
	}
	return Other
}

// Parse converts a stored label back into a Category.
// It reports false for labels outside the fixed set.
func Parse(s string) (Category, bool) {
	switch c := Category(s); c {
	case Photo, Video, Audio, Document, Other:
		return c, true
	default:
		return "", false
	}
}

func (c Category) String() string { return string(c) }
