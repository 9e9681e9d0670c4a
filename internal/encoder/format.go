package encoder

import (
	"fmt"
	"path/filepath"
	"strings"

	"podknight/internal/config"
)

// Kind is the media type a Format renders.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// ParseKind validates a configured kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindVideo:
		return KindVideo, nil
	case KindAudio:
		return KindAudio, nil
	default:
		return "", fmt.Errorf("unsupported format type %q (want video or audio)", value)
	}
}

// Extension returns the container extension, including the dot.
func (k Kind) Extension() string {
	if k == KindAudio {
		return ".mp3"
	}
	return ".mp4"
}

// Format is one publishable rendition of a Part.
type Format struct {
	Kind     Kind
	Prefix   string
	Suffix   string
	Encoding []string
}

// Label is a short human name used in task titles and logs.
func (f Format) Label() string {
	label := string(f.Kind)
	if f.Prefix != "" || f.Suffix != "" {
		label += " " + strings.TrimSpace(f.Prefix+"*"+f.Suffix)
	}
	return label
}

// OutputName derives the output filename from a part filename.
func (f Format) OutputName(partFilename string) string {
	base := filepath.Base(partFilename)
	return f.Prefix + base + f.Suffix + f.Kind.Extension()
}

// DefaultFormats is one video and one audio rendition with no affixes.
func DefaultFormats() []Format {
	return []Format{{Kind: KindVideo}, {Kind: KindAudio}}
}

// FormatsFromConfig converts [[formats]] entries.
func FormatsFromConfig(entries []config.Format) ([]Format, error) {
	formats := make([]Format, 0, len(entries))
	for i, entry := range entries {
		kind, err := ParseKind(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("formats[%d]: %w", i, err)
		}
		formats = append(formats, Format{
			Kind:     kind,
			Prefix:   entry.Prefix,
			Suffix:   entry.Suffix,
			Encoding: append([]string(nil), entry.Encoding...),
		})
	}
	return formats, nil
}
