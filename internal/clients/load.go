package clients

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/utils"
)

type tableFile struct {
	Clients []*Definition `yaml:"clients"`
}

// Load overlays the client definitions in the YAML file at path onto base.
// Entries naming an existing client replace the fields they set; `disabled: true`
// drops the client; new names are appended with the lowest priority.
// A missing file returns base unchanged.
func Load(path string, base *Table, home, project string) (*Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	} else if err != nil {
		return nil, fmt.Errorf("read clients file: %w", err)
	}

	var file tableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse clients file %s: %w", path, err)
	}

	defs := make([]*Definition, 0, base.Len()+len(file.Clients))
	for _, d := range base.All() {
		defs = append(defs, d.Clone())
	}

	for _, o := range file.Clients {
		if o == nil || o.Name == "" {
			return nil, fmt.Errorf("%w: entry without name in %s", ErrInvalidDefinition, path)
		}
		o.Root = resolveRoot(o.Root, home, project)

		idx := slices.IndexFunc(defs, func(d *Definition) bool { return d.Name == o.Name })
		switch {
		case idx >= 0 && o.Disabled:
			defs = slices.Delete(defs, idx, idx+1)
		case idx >= 0:
			defs[idx] = overlay(defs[idx], o)
		case !o.Disabled:
			defs = append(defs, o)
		}
	}

	return NewTable(defs...)
}

// Marshal encodes the table in the same format Load reads.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tableFile{Clients: t.All()}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func overlay(base, o *Definition) *Definition {
	out := base.Clone()
	if o.DisplayName != "" {
		out.DisplayName = o.DisplayName
	}
	if o.Root != "" {
		out.Root = o.Root
	}
	if o.Scope != "" {
		out.Scope = o.Scope
	}
	if o.Layout != (assets.Layout{}) {
		out.Layout = o.Layout
	}
	if len(o.Assets) > 0 {
		out.Assets = o.Assets
	}
	return out
}

// resolveRoot expands `~` against home and anchors relative roots at the project.
func resolveRoot(root, home, project string) string {
	if root == "" {
		return ""
	}
	root = utils.ExpandHome(root, home)
	if !filepath.IsAbs(root) && project != "" {
		root = filepath.Join(project, root)
	}
	return filepath.Clean(root)
}
