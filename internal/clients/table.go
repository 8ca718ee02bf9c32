package clients

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Table is the ordered set of client definitions. Position is priority: earlier
// clients win when the same key is present without a conflict.
type Table struct {
	defs []*Definition
}

// NewTable validates defs and rejects duplicate names.
func NewTable(defs ...*Definition) (*Table, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if !seen.Add(d.Name) {
			return nil, fmt.Errorf("%w: duplicate client %q", ErrInvalidDefinition, d.Name)
		}
	}
	return &Table{defs: defs}, nil
}

// All returns the definitions in priority order.
func (t *Table) All() []*Definition {
	return slices.Clone(t.defs)
}

func (t *Table) Len() int {
	return len(t.defs)
}

func (t *Table) Names() []string {
	names := make([]string, len(t.defs))
	for i, d := range t.defs {
		names[i] = d.Name
	}
	return names
}

func (t *Table) Get(name string) (*Definition, bool) {
	for _, d := range t.defs {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Priority is the table position of name; unknown names sort last.
func (t *Table) Priority(name string) int {
	for i, d := range t.defs {
		if d.Name == name {
			return i
		}
	}
	return len(t.defs)
}

// Select returns the named definitions in table order. No names selects all.
func (t *Table) Select(names []string) ([]*Definition, error) {
	if len(names) == 0 {
		return t.All(), nil
	}

	want := mapset.NewThreadUnsafeSet(names...)
	var out []*Definition
	for _, d := range t.defs {
		if want.Contains(d.Name) {
			out = append(out, d)
			want.Remove(d.Name)
		}
	}
	if want.Cardinality() > 0 {
		missing := want.ToSlice()
		slices.Sort(missing)
		return nil, fmt.Errorf("%w: %v", ErrUnknownClient, missing)
	}
	return out, nil
}
