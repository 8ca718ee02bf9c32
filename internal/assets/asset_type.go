package assets

import (
	"fmt"
	"strings"
)

// AssetType is the closed set of artifact kinds that can be reconciled between clients.
type AssetType string

const (
	TypeAgents   AssetType = "agents"
	TypeCommands AssetType = "commands"
	TypeRules    AssetType = "rules"
	TypeSkills   AssetType = "skills"
	TypeMCP      AssetType = "mcp"
	TypePrompts  AssetType = "prompts"
)

// AllTypes lists every asset type in reconciliation order.
func AllTypes() []AssetType {
	return []AssetType{TypeAgents, TypeCommands, TypeRules, TypeSkills, TypeMCP, TypePrompts}
}

// ParseAssetType parses a type name, accepting a few long-form aliases.
func ParseAssetType(raw string) (AssetType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "agents", "agent-instructions", "instructions":
		return TypeAgents, nil
	case "commands", "command":
		return TypeCommands, nil
	case "rules", "rule":
		return TypeRules, nil
	case "skills", "skill":
		return TypeSkills, nil
	case "mcp", "mcp-config":
		return TypeMCP, nil
	case "prompts", "prompt":
		return TypePrompts, nil
	default:
		return "", fmt.Errorf("unknown asset type %q", raw)
	}
}

func (t AssetType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known asset types.
func (t AssetType) IsValid() bool {
	_, ok := typeRules[t]
	return ok
}

// Order returns the position of t in AllTypes, used for stable sorting.
func (t AssetType) Order() int {
	for i, at := range AllTypes() {
		if at == t {
			return i
		}
	}
	return len(AllTypes())
}

// Mergeable reports whether conflicting versions of this type may be merged.
// Only agent instructions (concatenation) and MCP configs (structured merge) qualify.
func (t AssetType) Mergeable() bool {
	return typeRules[t].mergeable
}

// DefaultFileName is the relative path used when a producer has no usable name.
func (t AssetType) DefaultFileName() string {
	if r, ok := typeRules[t]; ok {
		return r.defaultName
	}
	return "asset.md"
}

// typeRule holds the per-type behaviour that would otherwise be scattered across
// canonicalization, naming and merge eligibility checks.
type typeRule struct {
	defaultName string
	rootDir     string
	mergeable   bool
	canonical   func(layout Layout, rel string, meta *Metadata) string
	native      func(layout Layout, canonical string) string
}

var typeRules = map[AssetType]typeRule{
	TypeAgents: {
		defaultName: AgentsFileName,
		mergeable:   true,
		canonical:   canonicalAgents,
		native:      nativeAgents,
	},
	TypeCommands: {
		defaultName: "commands/command.md",
		rootDir:     commandsDir,
		canonical:   canonicalCommands,
		native:      nativeCommands,
	},
	TypeRules: {
		defaultName: "rules/rule.md",
		rootDir:     rulesDir,
		canonical:   canonicalRules,
		native:      nativeRules,
	},
	TypeSkills: {
		defaultName: "skills/SKILL.md",
		rootDir:     skillsDir,
	},
	TypeMCP: {
		defaultName: "mcp.json",
		mergeable:   true,
		canonical:   canonicalMCP,
		native:      nativeMCP,
	},
	TypePrompts: {
		defaultName: "prompts/prompt.md",
		rootDir:     promptsDir,
	},
}
