package assets

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Layout describes the on-disk conventions of a client that affect how its
// relative paths map to canonical keys.
type Layout struct {
	// AgentsFile is the native filename for agent instructions, e.g. AGENTS.md, CLAUDE.md or GEMINI.md.
	AgentsFile string `yaml:"agents_file,omitempty"`
	// PromptsCommands is set for clients that keep commands under prompts/ as flat files.
	PromptsCommands bool `yaml:"prompts_commands,omitempty"`
	// CursorRules is set for clients whose rules carry an alwaysApply front-matter flag.
	CursorRules bool `yaml:"cursor_rules,omitempty"`
	// MCPFile is the client's native MCP config path relative to its root, e.g. ".mcp.json".
	MCPFile string `yaml:"mcp_file,omitempty"`
}

// Metadata carries optional type-specific attributes of an asset.
type Metadata struct {
	AlwaysApply *bool
}

// Key identifies the same logical asset across clients.
type Key struct {
	Type AssetType
	Path string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.Path)
}

// Asset is a single discovered file relevant to synchronization.
// Assets are created fresh on every discovery pass and never mutated afterwards.
type Asset struct {
	Client        string
	Type          AssetType
	AbsPath       string
	RelPath       string
	CanonicalPath string
	Name          string
	Content       string
	Fingerprint   string
	ModTime       time.Time
	Size          int64
	Metadata      *Metadata
}

// New builds an asset from raw content, computing its fingerprint, canonical path and name.
func New(client string, layout Layout, atype AssetType, absPath, relPath, content string, modTime time.Time, meta *Metadata) *Asset {
	rel := NormPath(relPath)
	return &Asset{
		Client:        client,
		Type:          atype,
		AbsPath:       absPath,
		RelPath:       rel,
		CanonicalPath: Canonicalize(layout, atype, rel, meta),
		Name:          DisplayName(atype, rel),
		Content:       content,
		Fingerprint:   Fingerprint(content),
		ModTime:       modTime,
		Size:          int64(len(content)),
		Metadata:      meta,
	}
}

// Key returns the canonical key of the asset.
func (a *Asset) Key() Key {
	return Key{Type: a.Type, Path: a.CanonicalPath}
}

// HasModTime reports whether the modification time is known.
func (a *Asset) HasModTime() bool {
	return !a.ModTime.IsZero()
}

// Synthesized reports whether the asset has no backing file, e.g. a merge result.
func (a *Asset) Synthesized() bool {
	return a.AbsPath == ""
}

// WithContent returns a copy carrying new content and a recomputed fingerprint.
// The copy has no backing file.
func (a *Asset) WithContent(content string) *Asset {
	c := *a
	c.Content = content
	c.Fingerprint = Fingerprint(content)
	c.Size = int64(len(content))
	c.AbsPath = ""
	return &c
}

// WithCanonicalPath returns a copy of the asset keyed under a different canonical path.
func (a *Asset) WithCanonicalPath(canonical string) *Asset {
	c := *a
	c.CanonicalPath = canonical
	c.Name = DisplayName(a.Type, canonical)
	return &c
}

func (a *Asset) String() string {
	return fmt.Sprintf("%s/%s (%s)", a.Client, a.RelPath, a.Type)
}

// DisplayName derives a short human-facing name: the path without the type's leading
// directory and without extension. Ancestor directories are kept for disambiguation.
func DisplayName(atype AssetType, rel string) string {
	rel = NormPath(rel)
	if rel == "" {
		rel = atype.DefaultFileName()
	}
	if dir := typeRules[atype].rootDir; dir != "" {
		rel = strings.TrimPrefix(rel, dir+"/")
	}
	if atype == TypeCommands {
		rel = strings.TrimPrefix(rel, promptsDir+"/")
	}
	return strings.TrimSuffix(rel, path.Ext(rel))
}
