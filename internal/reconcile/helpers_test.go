package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/clients"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	defs   []*clients.Definition
	byName map[string]*clients.Definition
}

func newFixture(t *testing.T, defs ...*clients.Definition) *fixture {
	t.Helper()
	f := &fixture{defs: defs, byName: map[string]*clients.Definition{}}
	for _, d := range defs {
		if d.Root == "" {
			d.Root = t.TempDir()
		}
		f.byName[d.Name] = d
	}
	return f
}

func agentsClient(name string) *clients.Definition {
	return &clients.Definition{
		Name:   name,
		Layout: assets.Layout{AgentsFile: assets.AgentsFileName},
		Assets: []clients.AssetSpec{
			{Type: assets.TypeAgents, Files: []string{assets.AgentsFileName}},
			{Type: assets.TypeCommands, Patterns: []string{"commands/**/*.md"}},
			{Type: assets.TypeRules, Patterns: []string{"rules/**/*.md"}},
			{Type: assets.TypeMCP, Files: []string{"mcp.json"}},
		},
	}
}

// asset builds an asset as discovery would for client at rel.
func (f *fixture) asset(client string, atype assets.AssetType, rel, content string, mod time.Time) *assets.Asset {
	d := f.byName[client]
	abs := filepath.Join(d.TypeRoot(atype), filepath.FromSlash(rel))
	return assets.New(client, d.Layout, atype, abs, rel, content, mod, nil)
}

func (f *fixture) input(list []*assets.Asset, conflicts []*Conflict, opts Options, targets ...string) PlanInput {
	return PlanInput{
		Assets:    list,
		Conflicts: conflicts,
		Clients:   f.defs,
		Targets:   targets,
		Options:   opts,
	}
}
