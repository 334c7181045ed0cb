package hazard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/entity"
)

// yamlStageFile is the top-level YAML structure for stage files.
type yamlStageFile struct {
	Stage yamlStage `yaml:"stage"`
}

// yamlStage is the YAML representation of a stage.
type yamlStage struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Gimmick       string         `yaml:"gimmick"`
	Rooms         []string       `yaml:"rooms"`
	Weight        *float64       `yaml:"weight"`
	NoBoss        bool           `yaml:"no_boss"`
	BossOnly      bool           `yaml:"boss_only"`
	Boss          string         `yaml:"boss"`
	BossTitle     string         `yaml:"boss_title"`
	FixedRoom     *yamlRoomSize  `yaml:"fixed_room"`
	HazardPad     *float64       `yaml:"hazard_pad"`
	JitterMul     *float64       `yaml:"hazard_jitter_mul"`
	HazardLayouts [][]yamlRegion `yaml:"hazard_layouts"`
	MagnetLayouts [][]yamlNode   `yaml:"magnet_layouts"`
	VoidLayouts   [][]yamlNode   `yaml:"void_layouts"`
	Obstacles     yamlObstacles  `yaml:"obstacles"`
}

type yamlRoomSize struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type yamlRegion struct {
	Shape  string  `yaml:"shape"`
	UX     float64 `yaml:"ux"`
	UY     float64 `yaml:"uy"`
	WMul   float64 `yaml:"w_mul"`
	HMul   float64 `yaml:"h_mul"`
	RMul   float64 `yaml:"r_mul"`
	Type   string  `yaml:"type"`
	Params `yaml:",inline"`
}

type yamlNode struct {
	UX        float64 `yaml:"ux"`
	UY        float64 `yaml:"uy"`
	RMul      float64 `yaml:"r_mul"`
	Omega     float64 `yaml:"omega"`
	Soft      float64 `yaml:"soft"`
	Pow       float64 `yaml:"pow"`
	Dir       float64 `yaml:"dir"`
	Pull      float64 `yaml:"pull"`
	PlayerMul float64 `yaml:"player_mul"`
	EnemyMul  float64 `yaml:"enemy_mul"`
}

type yamlObstacles struct {
	CircleBlockChance *float64 `yaml:"circle_block_chance"`
	Materials         []string `yaml:"materials"`
}

// LoadStageFromFile reads and validates a single stage YAML file.
//
// Precondition: path must point to a valid YAML stage file.
// Postcondition: Returns a validated Stage or a non-nil error.
func LoadStageFromFile(path string) (*Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stage file %s: %w", path, err)
	}
	return LoadStageFromBytes(data)
}

// LoadStageFromBytes parses and validates a stage from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the stage schema.
// Postcondition: Returns a validated Stage or a non-nil error.
func LoadStageFromBytes(data []byte) (*Stage, error) {
	var file yamlStageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing stage YAML: %w", err)
	}

	stage, err := convertYAMLStage(file.Stage)
	if err != nil {
		return nil, fmt.Errorf("converting stage %q: %w", file.Stage.ID, err)
	}
	if err := stage.Validate(); err != nil {
		return nil, fmt.Errorf("validating stage: %w", err)
	}
	return stage, nil
}

// LoadStagesFromDir loads all YAML files in a directory as stages.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated stages or the first error encountered.
func LoadStagesFromDir(dir string) ([]*Stage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading stage directory %s: %w", dir, err)
	}

	var stages []*Stage
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		stage, err := LoadStageFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading stage from %s: %w", name, err)
		}
		stages = append(stages, stage)
	}

	if len(stages) == 0 {
		return nil, fmt.Errorf("no stage files found in %s", dir)
	}
	return stages, nil
}

// convertYAMLStage converts the parsed YAML structures into domain types, applying defaults.
func convertYAMLStage(ys yamlStage) (*Stage, error) {
	s := &Stage{
		ID:        ys.ID,
		Name:      ys.Name,
		Gimmick:   ys.Gimmick,
		Rooms:     ys.Rooms,
		Weight:    1,
		NoBoss:    ys.NoBoss,
		BossOnly:  ys.BossOnly,
		Boss:      entity.Warden,
		BossTitle: ys.BossTitle,
		HazardPad: DefaultHazardPad,
		JitterMul: DefaultJitterMul,
		Obstacles: ObstacleStyle{CircleBlockChance: 0.22, Materials: ys.Obstacles.Materials},
	}
	if ys.Weight != nil {
		s.Weight = *ys.Weight
	}
	if ys.Boss != "" {
		t, ok := entity.ParseAdversaryType(ys.Boss)
		if !ok {
			return nil, fmt.Errorf("unknown boss type %q", ys.Boss)
		}
		s.Boss = t
	}
	if ys.FixedRoom != nil {
		s.FixedW, s.FixedH = ys.FixedRoom.W, ys.FixedRoom.H
	}
	if ys.HazardPad != nil {
		s.HazardPad = *ys.HazardPad
	}
	if ys.JitterMul != nil {
		s.JitterMul = *ys.JitterMul
	}
	if ys.Obstacles.CircleBlockChance != nil {
		s.Obstacles.CircleBlockChance = *ys.Obstacles.CircleBlockChance
	}
	if len(s.Obstacles.Materials) == 0 {
		s.Obstacles.Materials = []string{"metal"}
	}

	for li, layout := range ys.HazardLayouts {
		var regions []RegionTemplate
		for ri, r := range layout {
			var shape entity.Shape
			switch r.Shape {
			case "rect":
				shape = entity.ShapeRect
			case "circle":
				shape = entity.ShapeCircle
			default:
				return nil, fmt.Errorf("hazard layout %d region %d: unknown shape %q", li, ri, r.Shape)
			}
			effect, err := ParseEffect(r.Type)
			if err != nil {
				return nil, fmt.Errorf("hazard layout %d region %d: %w", li, ri, err)
			}
			regions = append(regions, RegionTemplate{
				Shape: shape, UX: r.UX, UY: r.UY, WMul: r.WMul, HMul: r.HMul, RMul: r.RMul,
				Effect: effect, Params: r.Params,
			})
		}
		s.HazardLayouts = append(s.HazardLayouts, regions)
	}
	s.MagnetLayouts = convertNodeLayouts(ys.MagnetLayouts)
	s.VoidLayouts = convertNodeLayouts(ys.VoidLayouts)
	return s, nil
}

func convertNodeLayouts(in [][]yamlNode) [][]NodeTemplate {
	var out [][]NodeTemplate
	for _, layout := range in {
		nodes := make([]NodeTemplate, 0, len(layout))
		for _, n := range layout {
			nodes = append(nodes, NodeTemplate{
				UX: n.UX, UY: n.UY, RMul: n.RMul,
				Node: Node{
					Omega: n.Omega, Soft: n.Soft, Pow: n.Pow, Dir: n.Dir,
					Pull: n.Pull, PlayerMul: n.PlayerMul, EnemyMul: n.EnemyMul,
				},
			})
		}
		out = append(out, nodes)
	}
	return out
}
