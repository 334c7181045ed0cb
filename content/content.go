// Package content bundles the arena's tuning data and stage scripts and loads
// them into the simulation's catalogs.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/focus"
	"github.com/cory-johannsen/arena/internal/game/hazard"
	"github.com/cory-johannsen/arena/internal/game/reward"
)

//go:embed *.yaml stages scripts
var embedded embed.FS

// ScriptsDir is the directory of the bundle's Lua stage scripts.
const ScriptsDir = "scripts"

// Embedded returns the content compiled into the binary.
func Embedded() fs.FS { return embedded }

// Bundle is every catalog a run is built from.
type Bundle struct {
	Arsenal  *combat.Arsenal
	Brain    *ai.Brain
	Modes    *focus.Catalog
	Upgrades *reward.Catalog
	Shop     *reward.Shop
	Stages   []*hazard.Stage
	// FS is the tree the bundle was read from; scripts load from ScriptsDir in it.
	FS fs.FS
}

// Load reads the bundle from dir on disk, or from the embedded content when dir
// is empty.
//
// Postcondition: Returns a fully validated Bundle or a non-nil error.
func Load(dir string) (*Bundle, error) {
	if dir == "" {
		return LoadFS(embedded)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads the bundle from fsys.
func LoadFS(fsys fs.FS) (*Bundle, error) {
	read := func(name string) ([]byte, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("content: reading %s: %w", name, err)
		}
		return data, nil
	}

	data, err := read("weapons.yaml")
	if err != nil {
		return nil, err
	}
	arsenal, err := combat.LoadArsenalFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("content: weapons.yaml: %w", err)
	}

	if data, err = read("adversaries.yaml"); err != nil {
		return nil, err
	}
	reg, err := ai.LoadRegistryFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("content: adversaries.yaml: %w", err)
	}

	if data, err = read("focus_modes.yaml"); err != nil {
		return nil, err
	}
	modes, err := focus.LoadCatalogFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("content: focus_modes.yaml: %w", err)
	}

	if data, err = read("upgrades.yaml"); err != nil {
		return nil, err
	}
	upgrades, err := reward.LoadCatalogFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("content: upgrades.yaml: %w", err)
	}

	if data, err = read("shop.yaml"); err != nil {
		return nil, err
	}
	shop, err := reward.LoadShopFromBytes(data, arsenal.All())
	if err != nil {
		return nil, fmt.Errorf("content: shop.yaml: %w", err)
	}

	stages, err := loadStages(fsys, "stages")
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Arsenal:  arsenal,
		Brain:    ai.NewBrain(reg),
		Modes:    modes,
		Upgrades: upgrades,
		Shop:     shop,
		Stages:   stages,
		FS:       fsys,
	}, nil
}

func loadStages(fsys fs.FS, dir string) ([]*hazard.Stage, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("content: reading %s: %w", dir, err)
	}
	var stages []*hazard.Stage
	seen := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("content: reading %s: %w", name, err)
		}
		s, err := hazard.LoadStageFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("content: %s: %w", name, err)
		}
		if prev, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("content: stage %q defined in both %s and %s", s.ID, prev, name)
		}
		seen[s.ID] = name
		stages = append(stages, s)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("content: no stages in %s", dir)
	}
	return stages, nil
}
