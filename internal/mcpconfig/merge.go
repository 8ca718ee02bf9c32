package mcpconfig

import (
	"log/slog"
	"strings"

	"github.com/openmined/agentsync/internal/assets"
)

// RawSeparator joins raw contents when no input could be parsed.
const RawSeparator = "\n\n---\n\n"

// Merge unions the servers of all configs. A server name present in more than one
// config takes the whole definition from the last one; fields are never mixed.
// Top-level keys follow the same rule.
func Merge(configs ...*Config) *Config {
	out := NewConfig()
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		for k, v := range cfg.Extra {
			out.Extra[k] = v
		}
		for name, s := range cfg.Servers {
			out.Servers[name] = s.Clone()
		}
	}
	return out
}

// MergeAssets merges the MCP configs carried by list and encodes the result in the
// format of the first asset. Assets whose contents cannot be parsed are left out.
// If none parse, the raw contents are concatenated so nothing is silently lost.
// The boolean is false only for an empty list.
func MergeAssets(list []*assets.Asset) (string, bool) {
	switch len(list) {
	case 0:
		return "", false
	case 1:
		return list[0].Content, true
	}

	format := formatOf(list[0])

	var parsed []*Config
	for _, a := range list {
		cfg, err := Parse(a.Content, formatOf(a))
		if err != nil {
			slog.Warn("mcp merge skipping unparseable config", "client", a.Client, "path", a.RelPath, "error", err)
			continue
		}
		parsed = append(parsed, cfg)
	}

	if len(parsed) > 0 {
		out, err := Serialize(Merge(parsed...), format)
		if err == nil {
			return out, true
		}
		slog.Warn("mcp merge encode failed", "format", format, "error", err)
	}

	raw := make([]string, len(list))
	for i, a := range list {
		raw[i] = a.Content
	}
	return strings.Join(raw, RawSeparator), true
}

// formatOf picks the encoding for an asset, preferring its on-disk path.
// Canonical paths of MCP assets keep the native file name, so they carry the
// extension for synthesized assets too.
func formatOf(a *assets.Asset) Format {
	for _, p := range []string{a.AbsPath, a.RelPath, a.CanonicalPath} {
		if f := DetectFormat(p); f != FormatUnknown {
			return f
		}
	}
	return FormatJSON
}
