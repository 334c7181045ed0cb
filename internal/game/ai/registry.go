package ai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// Registry indexes Profiles by adversary type.
//
// Invariant: each type is registered at most once.
type Registry struct {
	profiles [entity.NumAdversaryTypes]*Profile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores p under its type.
//
// Precondition: p must have passed Validate.
// Postcondition: returns error on type collision.
func (r *Registry) Register(p *Profile) error {
	if p.Type >= entity.NumAdversaryTypes {
		return fmt.Errorf("ai.Registry: type %s out of range", p.Type)
	}
	if r.profiles[p.Type] != nil {
		return fmt.Errorf("ai.Registry: type %q already registered", p.Type)
	}
	r.profiles[p.Type] = p
	return nil
}

// ProfileFor returns the profile for t, or the baseline profile when t has none.
//
// Postcondition: never returns nil.
func (r *Registry) ProfileFor(t entity.AdversaryType) *Profile {
	if r != nil && t < entity.NumAdversaryTypes && r.profiles[t] != nil {
		return r.profiles[t]
	}
	return Baseline(t)
}

// Has reports whether t has a loaded profile.
func (r *Registry) Has(t entity.AdversaryType) bool {
	return t < entity.NumAdversaryTypes && r.profiles[t] != nil
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Adversaries []*Profile `yaml:"adversaries"`
}

// LoadRegistryFromBytes parses adversary profiles and registers them.
//
// Postcondition: returns error if the YAML fails to parse, any profile fails
// Validate, or two profiles share a type.
func LoadRegistryFromBytes(data []byte) (*Registry, error) {
	var f yamlProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ai.LoadRegistry: parsing: %w", err)
	}
	if len(f.Adversaries) == 0 {
		return nil, errNoProfiles
	}
	reg := NewRegistry()
	for _, p := range f.Adversaries {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadRegistryFromFile reads and registers adversary profiles from path.
func LoadRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadRegistry: reading %s: %w", path, err)
	}
	return LoadRegistryFromBytes(data)
}
