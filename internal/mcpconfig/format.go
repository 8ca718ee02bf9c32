package mcpconfig

import (
	"path/filepath"
	"strings"
)

// Format is a textual encoding of an MCP config.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatJSONC   Format = "jsonc"
	FormatTOML    Format = "toml"
	FormatYAML    Format = "yaml"
)

// DetectFormat selects the encoding purely from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonc":
		return FormatJSONC
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}
