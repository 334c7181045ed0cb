package focus

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds the selectable modes in authored order.
//
// Invariant: at least one mode; ids are unique.
type Catalog struct {
	modes []*Mode
	byID  map[string]*Mode
}

// NewCatalog validates modes and indexes them by id.
//
// Postcondition: returns error when modes is empty, any mode fails Validate,
// or two modes share an id.
func NewCatalog(modes []*Mode) (*Catalog, error) {
	if len(modes) == 0 {
		return nil, errors.New("focus.NewCatalog: no modes defined")
	}
	c := &Catalog{byID: make(map[string]*Mode, len(modes))}
	for _, m := range modes {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("focus.NewCatalog: mode %q already defined", m.ID)
		}
		c.byID[m.ID] = m
		c.modes = append(c.modes, m)
	}
	return c, nil
}

// Lookup resolves id by exact match, then by prefix, then falls back to the first mode.
//
// Postcondition: never returns nil.
func (c *Catalog) Lookup(id string) *Mode {
	s := strings.ToLower(strings.TrimSpace(id))
	if m, ok := c.byID[s]; ok {
		return m
	}
	if s != "" {
		for _, m := range c.modes {
			if strings.HasPrefix(m.ID, s) {
				return m
			}
		}
	}
	return c.modes[0]
}

// Default returns the first mode.
func (c *Catalog) Default() *Mode { return c.modes[0] }

// Modes returns the modes in authored order.
func (c *Catalog) Modes() []*Mode {
	out := make([]*Mode, len(c.modes))
	copy(out, c.modes)
	return out
}

type yamlModeFile struct {
	Modes []*Mode `yaml:"modes"`
}

// LoadCatalogFromBytes parses a YAML mode list.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var f yamlModeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("focus.LoadCatalog: parsing: %w", err)
	}
	return NewCatalog(f.Modes)
}

// LoadCatalogFromFile reads and parses a YAML mode list from path.
func LoadCatalogFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("focus.LoadCatalog: reading %s: %w", path, err)
	}
	return LoadCatalogFromBytes(data)
}
