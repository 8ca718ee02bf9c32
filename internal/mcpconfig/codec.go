package mcpconfig

import (
	"fmt"
	"strings"
)

// Parse decodes text in the given format. Empty or whitespace-only input yields an
// empty config. On failure the returned config is nil and the error wraps ErrUnparseable,
// so a legitimately empty config can be told apart from a broken one.
func Parse(text string, format Format) (*Config, error) {
	if strings.TrimSpace(text) == "" {
		if format == FormatUnknown {
			return nil, ErrUnknownFormat
		}
		return NewConfig(), nil
	}

	switch format {
	case FormatJSON, FormatJSONC:
		return parseJSON(text)
	case FormatTOML:
		return parseTOML(text)
	case FormatYAML:
		return parseYAML(text)
	default:
		return nil, ErrUnknownFormat
	}
}

// ParseFile is Parse with the format detected from path.
func ParseFile(path, text string) (*Config, error) {
	return Parse(text, DetectFormat(path))
}

// Serialize encodes cfg in the given format.
func Serialize(cfg *Config, format Format) (string, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	switch format {
	case FormatJSON, FormatJSONC:
		return serializeJSON(cfg)
	case FormatTOML:
		return serializeTOML(cfg)
	case FormatYAML:
		return serializeYAML(cfg)
	default:
		return "", fmt.Errorf("serialize: %w", ErrUnknownFormat)
	}
}

// Convert re-encodes text from one format to another.
func Convert(text string, from, to Format) (string, error) {
	cfg, err := Parse(text, from)
	if err != nil {
		return "", err
	}
	return Serialize(cfg, to)
}
