package mcpconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmined/agentsync/internal/assets"
)

func mcpAsset(client, rel, content string) *assets.Asset {
	return assets.New(client, assets.Layout{}, assets.TypeMCP, "/"+client+"/"+rel, rel, content, time.Time{}, nil)
}

func TestMerge_LastWriteWins(t *testing.T) {
	a := NewConfig()
	a.Servers["fs"] = &Server{Command: "npx", Args: []string{"-y", "fs"}, Env: map[string]string{"A": "1"}}
	a.Servers["only-a"] = &Server{Command: "a"}
	b := NewConfig()
	b.Servers["fs"] = &Server{Command: "node"}
	c := NewConfig()
	c.Servers["fs"] = &Server{Command: "deno", Args: []string{"run"}}
	c.Extra["theme"] = "dark"

	merged := Merge(a, nil, b, c)
	require.Len(t, merged.Servers, 2)

	// whole definition replaced, no field mixing
	assert.Equal(t, "deno", merged.Servers["fs"].Command)
	assert.Equal(t, []string{"run"}, merged.Servers["fs"].Args)
	assert.Nil(t, merged.Servers["fs"].Env)
	assert.Equal(t, "a", merged.Servers["only-a"].Command)
	assert.Equal(t, "dark", merged.Extra["theme"])

	merged.Servers["fs"].Args[0] = "mutated"
	assert.Equal(t, "run", c.Servers["fs"].Args[0], "inputs are not aliased")

	assert.True(t, Merge().IsEmpty())
}

func TestMergeAssets_Empty(t *testing.T) {
	out, ok := MergeAssets(nil)
	assert.False(t, ok)
	assert.Equal(t, "", out)
}

func TestMergeAssets_SingleUnchanged(t *testing.T) {
	content := "{ \"mcpServers\": {} }  // odd spacing kept"
	out, ok := MergeAssets([]*assets.Asset{mcpAsset("a", "mcp.json", content)})
	assert.True(t, ok)
	assert.Equal(t, content, out)
}

func TestMergeAssets_TwoClientsJSON(t *testing.T) {
	a := mcpAsset("a", "mcp.json", `{"mcpServers": {"fs": {"command": "npx"}}}`)
	b := mcpAsset("b", "mcp.json", `{"mcpServers": {"gh": {"command": "gh"}}}`)

	out, ok := MergeAssets([]*assets.Asset{a, b})
	require.True(t, ok)

	cfg, err := Parse(out, FormatJSON)
	require.NoError(t, err, "merged output is json, the first asset's format")
	assert.Equal(t, []string{"fs", "gh"}, cfg.ServerNames())
	assert.Equal(t, "npx", cfg.Servers["fs"].Command)
	assert.Equal(t, "gh", cfg.Servers["gh"].Command)
}

func TestMergeAssets_FirstFormatWins(t *testing.T) {
	a := mcpAsset("codex", "config.toml", "[mcpServers.fs]\ncommand = \"npx\"\n")
	b := mcpAsset("claude", ".mcp.json", `{"mcpServers": {"gh": {"command": "gh"}}}`)
	c := mcpAsset("continue", "mcpServers/servers.yaml", "mcpServers:\n  fs:\n    command: deno\n")

	out, ok := MergeAssets([]*assets.Asset{a, b, c})
	require.True(t, ok)
	assert.Contains(t, out, "[mcpServers.fs]")
	assert.Contains(t, out, "[mcpServers.gh]")

	cfg, err := Parse(out, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "deno", cfg.Servers["fs"].Command, "later definition wins")
}

func TestMergeAssets_SkipsUnparseable(t *testing.T) {
	a := mcpAsset("a", "mcp.json", `{"mcpServers": {`)
	b := mcpAsset("b", "mcp.json", `{"mcpServers": {"gh": {"command": "gh"}}}`)

	out, ok := MergeAssets([]*assets.Asset{a, b})
	require.True(t, ok)
	cfg, err := Parse(out, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"gh"}, cfg.ServerNames())
}

func TestMergeAssets_RawFallback(t *testing.T) {
	a := mcpAsset("a", "mcp.json", "{bad")
	b := mcpAsset("b", "mcp.yaml", "- not: [a mapping")

	out, ok := MergeAssets([]*assets.Asset{a, b})
	require.True(t, ok)
	assert.Equal(t, "{bad"+RawSeparator+"- not: [a mapping", out)
}
