package clients

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmined/agentsync/internal/assets"
)

func testDirs(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	return filepath.Join(base, "home"), filepath.Join(base, "project")
}

func TestDefaults_Order(t *testing.T) {
	home, project := testDirs(t)

	table := Defaults(home, project)
	assert.Equal(t, []string{"project", "claude", "codex", "cursor", "gemini", "continue"}, table.Names())
	assert.Equal(t, 0, table.Priority(ProjectClient))
	assert.Equal(t, table.Len(), table.Priority("missing"))

	claude, ok := table.Get("claude")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(home, ".claude"), claude.Root)
	assert.True(t, claude.Supports(assets.TypeAgents))
	assert.False(t, claude.Supports(assets.TypeMCP))

	gemini, ok := table.Get("gemini")
	require.True(t, ok)
	assert.True(t, gemini.Supports(assets.TypeAgents))
	assert.False(t, gemini.Supports(assets.TypeMCP), "settings.json is not an MCP asset")

	noProject := Defaults(home, "")
	_, ok = noProject.Get(ProjectClient)
	assert.False(t, ok)

	for _, d := range table.All() {
		assert.NoError(t, d.Clone().Validate(), d.Name)
	}
}

func TestDefinition_TypeRoot(t *testing.T) {
	home, project := testDirs(t)
	p, _ := Defaults(home, project).Get(ProjectClient)

	assert.Equal(t, project, p.TypeRoot(assets.TypeAgents))
	assert.Equal(t, filepath.Join(project, ".agents"), p.TypeRoot(assets.TypeCommands))
	assert.Equal(t, []assets.AssetType{
		assets.TypeAgents, assets.TypeCommands, assets.TypeRules,
		assets.TypeSkills, assets.TypeMCP, assets.TypePrompts,
	}, p.Types())
}

func TestTable_Select(t *testing.T) {
	home, project := testDirs(t)
	table := Defaults(home, project)

	defs, err := table.Select([]string{"cursor", "claude", "cursor"})
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "claude", defs[0].Name, "table order, not argument order")
	assert.Equal(t, "cursor", defs[1].Name)

	all, err := table.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, table.Len())

	_, err = table.Select([]string{"claude", "vim"})
	assert.ErrorIs(t, err, ErrUnknownClient)
}

func TestNewTable_Validation(t *testing.T) {
	root := t.TempDir()

	_, err := NewTable(&Definition{Name: "a", Root: "relative", Assets: []AssetSpec{{Type: assets.TypeAgents, Files: []string{"AGENTS.md"}}}})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewTable(&Definition{Name: "a", Root: root, Assets: []AssetSpec{{Type: "bogus", Files: []string{"x"}}}})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewTable(&Definition{Name: "a", Root: root, Assets: []AssetSpec{{Type: assets.TypeRules}}})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	dup := func() *Definition {
		return &Definition{Name: "a", Root: root, Assets: []AssetSpec{{Type: assets.TypeAgents, Files: []string{"AGENTS.md"}}}}
	}
	_, err = NewTable(dup(), dup())
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	d := &Definition{Name: "a", Root: root, Assets: []AssetSpec{{Type: "agent-instructions", Files: []string{"AGENTS.md"}}}}
	table, err := NewTable(d)
	require.NoError(t, err)
	got, _ := table.Get("a")
	assert.Equal(t, assets.TypeAgents, got.Assets[0].Type, "aliases normalized")
	assert.Equal(t, ScopeGlobal, got.Scope)
}

func TestLoad_Overrides(t *testing.T) {
	home, project := testDirs(t)
	base := Defaults(home, project)

	file := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
clients:
  - name: codex
    disabled: true
  - name: claude
    root: ~/custom-claude
  - name: windsurf
    display_name: Windsurf
    root: .windsurf
    scope: project
    assets:
      - type: rules
        patterns: ["rules/*.md"]
`), 0o644))

	table, err := Load(file, base, home, project)
	require.NoError(t, err)

	assert.Equal(t, []string{"project", "claude", "cursor", "gemini", "continue", "windsurf"}, table.Names())

	claude, _ := table.Get("claude")
	assert.Equal(t, filepath.Join(home, "custom-claude"), claude.Root)
	assert.True(t, claude.Supports(assets.TypeCommands), "unset fields inherited")
	assert.Equal(t, assets.ClaudeFileName, claude.Layout.AgentsFile)

	ws, _ := table.Get("windsurf")
	assert.Equal(t, filepath.Join(project, ".windsurf"), ws.Root)
	assert.Equal(t, ScopeProject, ws.Scope)

	orig, _ := base.Get("claude")
	assert.Equal(t, filepath.Join(home, ".claude"), orig.Root, "base table untouched")
}

func TestLoad_MissingAndInvalid(t *testing.T) {
	home, project := testDirs(t)
	base := Defaults(home, project)

	table, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), base, home, project)
	require.NoError(t, err)
	assert.Same(t, base, table)

	file := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(file, []byte("clients:\n  - name: x\n    unknown_field: 1\n"), 0o644))
	_, err = Load(file, base, home, project)
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	home, project := testDirs(t)
	base := Defaults(home, project)

	data, err := Marshal(base)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(file, data, 0o644))

	empty, err := NewTable()
	require.NoError(t, err)
	table, err := Load(file, empty, home, project)
	require.NoError(t, err)
	assert.Equal(t, base.Names(), table.Names())

	cursor, _ := table.Get("cursor")
	assert.True(t, cursor.Layout.CursorRules)
	assert.Equal(t, "mcp.json", cursor.Layout.MCPFile)
}
