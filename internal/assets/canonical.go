package assets

import (
	"path"
	"strings"
)

const (
	// AgentsFileName is the canonical filename for agent instructions.
	AgentsFileName = "AGENTS.md"
	// ClaudeFileName is the native agent instructions filename of Claude-style clients.
	ClaudeFileName = "CLAUDE.md"
	// ConditionalRulesDir is where opt-in rules live in the canonical namespace.
	ConditionalRulesDir = "skills/conditional-rules"

	commandsDir = "commands"
	promptsDir  = "prompts"
	rulesDir    = "rules"
	skillsDir   = "skills"
	mcpBase     = "mcp"
)

// NormPath converts a relative path to its slash-separated, cleaned form with no
// leading slash. Root-only and empty paths normalize to "".
func NormPath(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = path.Clean("/" + rel)
	rel = strings.TrimLeft(rel, "/")
	if rel == "." {
		return ""
	}
	return rel
}

// Canonicalize maps a client's native relative path for an asset to the canonical
// cross-client path. Different on-disk names for the same logical file collapse
// to the same result, so the mapping is a projection.
func Canonicalize(layout Layout, atype AssetType, rel string, meta *Metadata) string {
	rel = NormPath(rel)
	if rel == "" {
		return atype.DefaultFileName()
	}
	rule, ok := typeRules[atype]
	if !ok || rule.canonical == nil {
		return rel
	}
	return rule.canonical(layout, rel, meta)
}

// NativePath maps a canonical path back to the destination client's layout.
func NativePath(layout Layout, atype AssetType, canonical string) string {
	canonical = NormPath(canonical)
	if canonical == "" {
		canonical = atype.DefaultFileName()
	}
	rule, ok := typeRules[atype]
	if !ok || rule.native == nil {
		return canonical
	}
	return rule.native(layout, canonical)
}

func canonicalAgents(layout Layout, rel string, _ *Metadata) string {
	dir, base := path.Split(rel)
	if strings.EqualFold(base, ClaudeFileName) ||
		(layout.AgentsFile != "" && strings.EqualFold(base, layout.AgentsFile)) {
		return dir + AgentsFileName
	}
	return rel
}

func nativeAgents(layout Layout, canonical string) string {
	dir, base := path.Split(canonical)
	if base == AgentsFileName && layout.AgentsFile != "" {
		return dir + layout.AgentsFile
	}
	return canonical
}

func canonicalCommands(layout Layout, rel string, _ *Metadata) string {
	if !layout.PromptsCommands {
		return rel
	}
	if rest, ok := strings.CutPrefix(rel, promptsDir+"/"); ok {
		return commandsDir + "/" + rest
	}
	return rel
}

func nativeCommands(layout Layout, canonical string) string {
	if !layout.PromptsCommands {
		return canonical
	}
	if rest, ok := strings.CutPrefix(canonical, commandsDir+"/"); ok {
		return promptsDir + "/" + strings.ReplaceAll(rest, "/", "-")
	}
	return canonical
}

func canonicalRules(layout Layout, rel string, meta *Metadata) string {
	if !layout.CursorRules || meta == nil || meta.AlwaysApply == nil || *meta.AlwaysApply {
		return rel
	}
	rest := strings.TrimPrefix(rel, rulesDir+"/")
	return ConditionalRulesDir + "/" + rest
}

func nativeRules(layout Layout, canonical string) string {
	if !layout.CursorRules {
		return canonical
	}
	if rest, ok := strings.CutPrefix(canonical, ConditionalRulesDir+"/"); ok {
		return rulesDir + "/" + rest
	}
	return canonical
}

// MCP configs collapse to "mcp" plus the encoding's extension, so clients that
// name the file differently but share a format meet on one key.
func canonicalMCP(_ Layout, rel string, _ *Metadata) string {
	return mcpBase + strings.ToLower(path.Ext(rel))
}

func nativeMCP(layout Layout, canonical string) string {
	if layout.MCPFile == "" {
		return canonical
	}
	native := NormPath(layout.MCPFile)
	if !strings.EqualFold(path.Ext(native), path.Ext(canonical)) {
		return canonical
	}
	return native
}
