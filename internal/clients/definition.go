package clients

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/openmined/agentsync/internal/assets"
)

// Scope says whether a client lives inside the project or in the user's home.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
)

var (
	ErrUnknownClient     = errors.New("unknown client")
	ErrInvalidDefinition = errors.New("invalid client definition")
)

// AssetSpec declares where a client keeps one asset type.
type AssetSpec struct {
	Type assets.AssetType `yaml:"type"`
	// Dir anchors patterns, files and relative paths at a subdirectory of the client root.
	Dir string `yaml:"dir,omitempty"`
	// Patterns are doublestar globs, slash separated.
	Patterns []string `yaml:"patterns,omitempty"`
	// Files are always attempted, even when no pattern matches them.
	Files []string `yaml:"files,omitempty"`
}

// Definition is one synchronization endpoint.
type Definition struct {
	Name        string        `yaml:"name"`
	DisplayName string        `yaml:"display_name,omitempty"`
	Root        string        `yaml:"root"`
	Scope       Scope         `yaml:"scope,omitempty"`
	Layout      assets.Layout `yaml:"layout,omitempty"`
	Assets      []AssetSpec   `yaml:"assets"`
	// Disabled removes a built-in client when set in an override file.
	Disabled bool `yaml:"disabled,omitempty"`
}

// Spec returns the asset declaration for t.
func (d *Definition) Spec(t assets.AssetType) (AssetSpec, bool) {
	for _, s := range d.Assets {
		if s.Type == t {
			return s, true
		}
	}
	return AssetSpec{}, false
}

// Supports reports whether the client declares the asset type.
func (d *Definition) Supports(t assets.AssetType) bool {
	_, ok := d.Spec(t)
	return ok
}

// Types lists the declared asset types in type order.
func (d *Definition) Types() []assets.AssetType {
	types := make([]assets.AssetType, 0, len(d.Assets))
	for _, s := range d.Assets {
		types = append(types, s.Type)
	}
	slices.SortFunc(types, func(a, b assets.AssetType) int { return a.Order() - b.Order() })
	return slices.Compact(types)
}

// TypeRoot is the directory relative paths of type t are measured from.
func (d *Definition) TypeRoot(t assets.AssetType) string {
	spec, _ := d.Spec(t)
	if spec.Dir == "" {
		return d.Root
	}
	return filepath.Join(d.Root, filepath.FromSlash(spec.Dir))
}

// Title is the display name, falling back to the name.
func (d *Definition) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// Validate normalizes asset type aliases and checks required fields.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	if d.Root == "" {
		return fmt.Errorf("%w: client %q has no root", ErrInvalidDefinition, d.Name)
	}
	if !filepath.IsAbs(d.Root) {
		return fmt.Errorf("%w: client %q root %q is not absolute", ErrInvalidDefinition, d.Name, d.Root)
	}

	switch d.Scope {
	case "":
		d.Scope = ScopeGlobal
	case ScopeProject, ScopeGlobal:
	default:
		return fmt.Errorf("%w: client %q has unknown scope %q", ErrInvalidDefinition, d.Name, d.Scope)
	}

	for i := range d.Assets {
		t, err := assets.ParseAssetType(string(d.Assets[i].Type))
		if err != nil {
			return fmt.Errorf("%w: client %q: %w", ErrInvalidDefinition, d.Name, err)
		}
		d.Assets[i].Type = t
		if len(d.Assets[i].Patterns) == 0 && len(d.Assets[i].Files) == 0 {
			return fmt.Errorf("%w: client %q type %s has no patterns or files", ErrInvalidDefinition, d.Name, t)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d *Definition) Clone() *Definition {
	c := *d
	c.Assets = make([]AssetSpec, len(d.Assets))
	for i, s := range d.Assets {
		c.Assets[i] = AssetSpec{
			Type:     s.Type,
			Dir:      s.Dir,
			Patterns: slices.Clone(s.Patterns),
			Files:    slices.Clone(s.Files),
		}
	}
	return &c
}
