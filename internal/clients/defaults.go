package clients

import (
	"path/filepath"

	"github.com/openmined/agentsync/internal/assets"
)

// ProjectClient is the name of the client rooted at the current project.
const ProjectClient = "project"

// Defaults returns the built-in client table in priority order. The project client
// is omitted when project is empty. home and project are expected to be absolute.
func Defaults(home, project string) *Table {
	var defs []*Definition

	if project != "" {
		defs = append(defs, &Definition{
			Name:        ProjectClient,
			DisplayName: "Project",
			Root:        project,
			Scope:       ScopeProject,
			Layout:      assets.Layout{AgentsFile: assets.AgentsFileName, MCPFile: ".mcp.json"},
			Assets: []AssetSpec{
				{Type: assets.TypeAgents, Files: []string{assets.AgentsFileName}},
				{Type: assets.TypeCommands, Dir: ".agents", Patterns: []string{"commands/**/*.md"}},
				{Type: assets.TypeRules, Dir: ".agents", Patterns: []string{"rules/**/*.md", "rules/**/*.mdc"}},
				{Type: assets.TypeSkills, Dir: ".agents", Patterns: []string{"skills/**/*.md"}},
				{Type: assets.TypeMCP, Files: []string{".mcp.json"}},
				{Type: assets.TypePrompts, Dir: ".agents", Patterns: []string{"prompts/**/*.md"}},
			},
		})
	}

	defs = append(defs,
		&Definition{
			Name:        "claude",
			DisplayName: "Claude",
			Root:        filepath.Join(home, ".claude"),
			Scope:       ScopeGlobal,
			Layout:      assets.Layout{AgentsFile: assets.ClaudeFileName},
			Assets: []AssetSpec{
				{Type: assets.TypeAgents, Files: []string{assets.ClaudeFileName}},
				{Type: assets.TypeCommands, Patterns: []string{"commands/**/*.md"}},
				{Type: assets.TypeSkills, Patterns: []string{"skills/**/*.md"}},
			},
		},
		&Definition{
			Name:        "codex",
			DisplayName: "Codex",
			Root:        filepath.Join(home, ".codex"),
			Scope:       ScopeGlobal,
			Layout:      assets.Layout{AgentsFile: assets.AgentsFileName, PromptsCommands: true},
			Assets: []AssetSpec{
				{Type: assets.TypeAgents, Files: []string{assets.AgentsFileName}},
				{Type: assets.TypeCommands, Patterns: []string{"prompts/*.md"}},
			},
		},
		&Definition{
			Name:        "cursor",
			DisplayName: "Cursor",
			Root:        filepath.Join(home, ".cursor"),
			Scope:       ScopeGlobal,
			Layout:      assets.Layout{CursorRules: true, MCPFile: "mcp.json"},
			Assets: []AssetSpec{
				{Type: assets.TypeCommands, Patterns: []string{"commands/**/*.md"}},
				{Type: assets.TypeRules, Patterns: []string{"rules/**/*.mdc", "rules/**/*.md"}},
				{Type: assets.TypeMCP, Files: []string{"mcp.json"}},
			},
		},
		&Definition{
			Name:        "gemini",
			DisplayName: "Gemini CLI",
			Root:        filepath.Join(home, ".gemini"),
			Scope:       ScopeGlobal,
			// settings.json carries auth and UI settings next to mcpServers, so it is
			// not declared as an MCP asset.
			Layout: assets.Layout{AgentsFile: "GEMINI.md"},
			Assets: []AssetSpec{
				{Type: assets.TypeAgents, Files: []string{"GEMINI.md"}},
			},
		},
		&Definition{
			Name:        "continue",
			DisplayName: "Continue",
			Root:        filepath.Join(home, ".continue"),
			Scope:       ScopeGlobal,
			Layout:      assets.Layout{MCPFile: "mcpServers/agentsync.yaml"},
			Assets: []AssetSpec{
				{Type: assets.TypeRules, Patterns: []string{"rules/**/*.md"}},
				{Type: assets.TypeMCP, Patterns: []string{"mcpServers/*.yaml", "mcpServers/*.yml"}},
				{Type: assets.TypePrompts, Patterns: []string{"prompts/**/*.md"}},
			},
		},
	)

	return &Table{defs: defs}
}
