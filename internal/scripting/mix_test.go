package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/scripting"
)

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t testing.TB) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}

func loadContentScripts(t testing.TB) *scripting.Manager {
	t.Helper()
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadFS(os.DirFS(repoRoot(t)), "content/scripts", 0))
	return mgr
}

func TestSpawnMix_ParsesTable(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "mix.lua", `
		function spawn_mix(stage, room, t)
			return { stalker = 2, shooter = room / 10, warden = 1, nobody = 3, sniper = 0, [1] = 5 }
		end
	`)
	require.NoError(t, mgr.LoadStage("neon_alley", dir, 0))

	mix := mgr.SpawnMix("neon_alley", 5, 0)
	assert.Equal(t, map[entity.AdversaryType]float64{entity.Stalker: 2, entity.Shooter: 0.5}, mix)
	assert.Equal(t, 2, logs.FilterMessage("scripting: spawn_mix ignored type").Len())
}

func TestSpawnMix_NilWhenNoOverride(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Nil(t, mgr.SpawnMix("neon_alley", 1, 0), "no VM")

	dir := writeTempLua(t, "mix.lua", `
		function spawn_mix() return nil end
	`)
	require.NoError(t, mgr.LoadStage("neon_alley", dir, 0))
	assert.Nil(t, mgr.SpawnMix("neon_alley", 1, 0))
}

func TestSpawnMix_ReceivesArguments(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "mix.lua", `
		function spawn_mix(stage, room, t)
			if stage == "void_rift" and room == 7 and t == 0.4 then
				return { charger = 1 }
			end
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	assert.Equal(t, map[entity.AdversaryType]float64{entity.Charger: 1}, mgr.SpawnMix("void_rift", 7, 0.4))
	assert.Nil(t, mgr.SpawnMix("void_rift", 8, 0.4))
}

func TestContentScripts_Load(t *testing.T) {
	mgr := loadContentScripts(t)
	assert.True(t, mgr.Has("magnetic_foundry"))
	assert.True(t, mgr.Has("void_rift"))
	assert.False(t, mgr.Has("lava_works"))

	assert.Nil(t, mgr.SpawnMix("lava_works", 3, 0), "early rooms keep the built-in mix")
	late := mgr.SpawnMix("lava_works", 20, 1)
	require.NotEmpty(t, late)
	assert.Contains(t, late, entity.Splitter)

	early := mgr.SpawnMix("void_rift", 1, 0)
	assert.Equal(t, map[entity.AdversaryType]float64{entity.Stalker: 0.70, entity.Shooter: 0.30}, early)
}

func TestProperty_ContentScripts_MixesAreUsable(t *testing.T) {
	mgr := loadContentScripts(t)
	stages := []string{"cryo_vault", "ice_skating_rink", "lava_works", "magnetic_foundry", "neon_alley", "toxic_bog", "void_rift"}
	rapid.Check(t, func(rt *rapid.T) {
		stage := rapid.SampledFrom(stages).Draw(rt, "stage")
		room := rapid.IntRange(1, 60).Draw(rt, "room")
		tt := rapid.Float64Range(0, 1).Draw(rt, "post_boss_t")
		mix := mgr.SpawnMix(stage, room, tt)
		for typ, w := range mix {
			if typ.IsBoss() || w <= 0 {
				rt.Fatalf("%s room %d: bad entry %s=%v", stage, room, typ, w)
			}
		}
	})
}
