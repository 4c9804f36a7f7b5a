// Package catalog loads the column layout of every list view from YAML.
// The embedded default covers the inventory, item list and report screens.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrUnknownView       = errors.New("unknown view")
	ErrDuplicateView     = errors.New("duplicate view")
	ErrUnknownComparator = errors.New("unknown comparator")
	ErrEmptyViewName     = errors.New("view name cannot be empty")
)

// File is the on-disk shape of a catalog.
type File struct {
	Views []ViewDef `yaml:"views"`
}

// ViewDef declares one view.
type ViewDef struct {
	Name    string      `yaml:"name"`
	Title   string      `yaml:"title"`
	Columns []ColumnDef `yaml:"columns"`
}

// ColumnDef declares one column. Comparator names a registered comparator.
type ColumnDef struct {
	ID         string `yaml:"id"`
	Label      string `yaml:"label"`
	Sortable   bool   `yaml:"sortable"`
	Type       string `yaml:"type"`
	Comparator string `yaml:"comparator"`
}

// View is a resolved view definition.
type View struct {
	Name    string
	Title   string
	Columns []engine.ColumnSpec
}

// Catalog is an immutable set of views keyed by name.
type Catalog struct {
	views map[string]View
}

// Default returns the embedded catalog with the built-in comparators.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, BuiltinComparators())
}

// Load reads a catalog file. A nil registry means BuiltinComparators.
func Load(path string, comparators Registry) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, comparators)
}

// Parse decodes and resolves a catalog document.
func Parse(data []byte, comparators Registry) (*Catalog, error) {
	if comparators == nil {
		comparators = BuiltinComparators()
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{views: make(map[string]View, len(f.Views))}
	for _, def := range f.Views {
		if def.Name == "" {
			return nil, ErrEmptyViewName
		}
		if _, ok := c.views[def.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateView, def.Name)
		}
		view, err := resolve(def, comparators)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", def.Name, err)
		}
		c.views[def.Name] = view
	}
	return c, nil
}

func resolve(def ViewDef, comparators Registry) (View, error) {
	cols := make([]engine.ColumnSpec, 0, len(def.Columns))
	for _, cd := range def.Columns {
		dt, err := engine.ParseDataType(cd.Type)
		if err != nil {
			return View{}, fmt.Errorf("column %q: %w", cd.ID, err)
		}
		spec := engine.ColumnSpec{
			ID:       cd.ID,
			Label:    cd.Label,
			Sortable: cd.Sortable,
			DataType: dt,
		}
		if cd.Comparator != "" {
			cmp, ok := comparators[cd.Comparator]
			if !ok {
				return View{}, fmt.Errorf("column %q: %w: %q", cd.ID, ErrUnknownComparator, cd.Comparator)
			}
			spec.Comparator = cmp(cd.ID)
		}
		if spec.Label == "" {
			spec.Label = cd.ID
		}
		cols = append(cols, spec)
	}
	if err := engine.ValidateColumns(cols); err != nil {
		return View{}, err
	}
	title := def.Title
	if title == "" {
		title = def.Name
	}
	return View{Name: def.Name, Title: title, Columns: cols}, nil
}

// View returns the named view.
func (c *Catalog) View(name string) (View, error) {
	v, ok := c.views[name]
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v, nil
}

// Columns returns the column specs of the named view.
func (c *Catalog) Columns(name string) ([]engine.ColumnSpec, error) {
	v, err := c.View(name)
	if err != nil {
		return nil, err
	}
	return v.Columns, nil
}

// Names returns the view names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.views))
	for name := range c.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
