package run

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/entity"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/geom"
	"github.com/cory-johannsen/arena/internal/game/hazard"
)

const (
	bossEvery      = 5
	shopEvery      = 3
	roomIntroTime  = 1.10
	spawnClear     = 55.0
	eliteChanceCap = 0.28
)

func isBossRoom(room int) bool { return room%bossEvery == 0 }

// shopBefore reports whether clearing room routes through the shop: every
// third room, and always right before a boss room.
func shopBefore(nextRoom int) bool { return isBossRoom(nextRoom) || nextRoom%shopEvery == 0 }

func killTarget(room int) int { return 10 + int(math.Floor(3.2*float64(room))) }

// spawnCap bounds the live adversaries of a normal room.
func spawnCap(room int) int {
	return max(10, min(30, 12+int(math.Floor(0.9*float64(room)))))
}

// spawnInterval is the mean time between spawns in room.
func spawnInterval(room int) float64 {
	return geom.Lerp(0.92, 0.30, geom.Clamp01(float64(room)/24))
}

// postBossT ramps from 0 to 1 across the five rooms after the first boss.
func postBossT(room int) float64 {
	return geom.Clamp01(float64(room-5) / 5)
}

// genRoom rolls the stage, size, hazards and obstacles of the current room and
// places the avatar on safe floor.
func (r *Run) genRoom() {
	prev := ""
	if r.stage != nil {
		prev = r.stage.ID
	}
	r.stage = hazard.PickStage(r.deps.Stages, r.boss, prev, r.roller)
	w, h := hazard.RoomSize(r.stage, r.boss, r.src)
	r.bounds = geom.Centered(w, h)
	r.field = hazard.Resolve(r.stage, r.bounds, r.room, r.src)
	r.title = hazard.RoomTitle(r.stage, r.boss, r.src)
	r.obstacles = r.genObstacles()
	r.roomIntro = roomIntroTime

	av := r.avatar
	av.Pos = r.pickAvatarSpawn()
	av.Vel = geom.Vec2{}
	av.Dash = entity.Dash{}
	r.camera.Reset(av.Pos, r.deps.ViewportW, r.deps.ViewportH)

	stageID := ""
	if r.stage != nil {
		stageID = r.stage.ID
	}
	r.logger.Info("room generated",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.Bool("boss", r.boss),
		zap.String("stage", stageID),
		zap.String("title", r.title),
		zap.Int("obstacles", len(r.obstacles)),
	)
	r.emit(event.Event{Kind: event.RoomStart, Pos: av.Pos, Boss: r.boss})
}

// safeSpawn reports whether p keeps clear of avoid and of every obstacle.
func safeSpawn(p geom.Vec2, obstacles []entity.Obstacle, avoid geom.Vec2, avoidR float64) bool {
	return p.Dist(avoid) >= avoidR && clearOf(p, obstacles)
}

func clearOf(p geom.Vec2, obstacles []entity.Obstacle) bool {
	for _, o := range obstacles {
		switch o.Shape {
		case entity.ShapeRect:
			if p.Dist(o.ClosestPoint(p)) < spawnClear {
				return false
			}
		default:
			if p.Dist(o.Pos) < o.R+spawnClear {
				return false
			}
		}
	}
	return true
}

func (r *Run) genObstacles() []entity.Obstacle {
	count := 10 + int(math.Floor(0.25*float64(r.room)))
	rectChance := 0.24
	if r.boss {
		count, rectChance = 12, 0.32
	}
	style := hazard.ObstacleStyle{CircleBlockChance: 0.22}
	if r.stage != nil {
		style = r.stage.Obstacles
	}
	mats := style.Materials
	if len(mats) == 0 {
		mats = []string{"metal", "glass"}
	}
	soft := mats[len(mats)-1]
	if len(mats) > 1 {
		soft = mats[1]
	}

	b := r.bounds
	origin := geom.Vec2{}
	out := make([]entity.Obstacle, 0, count)
	for i := 0; i < count; i++ {
		if i > 1 && r.src.Float64() < rectChance {
			thin := dice.Range(r.src, 46, 78)
			long := dice.Range(r.src, 280, 640)
			w, h := thin, long
			if r.src.Float64() < 0.5 {
				w, h = long, thin
			}
			var p geom.Vec2
			for try := 0; try < 320; try++ {
				p = geom.V(
					dice.Range(r.src, b.MinX+w/2+130, b.MaxX-w/2-130),
					dice.Range(r.src, b.MinY+h/2+130, b.MaxY-h/2-130),
				)
				if p.Len() > 240 && safeSpawn(p, out, origin, 280) {
					break
				}
			}
			out = append(out, entity.Rect(p, w, h, true, mats[r.src.Intn(len(mats))]))
			continue
		}
		rad := dice.Range(r.src, 28, 68)
		var p geom.Vec2
		for try := 0; try < 260; try++ {
			p = geom.V(
				dice.Range(r.src, b.MinX+120, b.MaxX-120),
				dice.Range(r.src, b.MinY+120, b.MaxY-120),
			)
			if p.Len() > 220 && safeSpawn(p, out, origin, 260) {
				break
			}
		}
		blocks := r.src.Float64() < style.CircleBlockChance
		mat := soft
		if blocks {
			mat = mats[0]
		}
		out = append(out, entity.Circle(p, rad, blocks, mat))
	}
	return out
}

// pickAvatarSpawn chooses the safe floor nearest the room center. The first
// pass rejects any noticeable hazard; the second only damaging floor and void cores.
func (r *Run) pickAvatarSpawn() geom.Vec2 {
	b := r.bounds
	pad, tries := 300.0, 520
	if r.boss {
		pad, tries = 360, 560
	}
	inner := geom.Bounds{MinX: b.MinX + pad, MinY: b.MinY + pad, MaxX: b.MaxX - pad, MaxY: b.MaxY - pad}
	if inner.MinX > inner.MaxX {
		inner.MinX, inner.MaxX = 0, 0
	}
	if inner.MinY > inner.MaxY {
		inner.MinY, inner.MaxY = 0, 0
	}

	ok := func(p geom.Vec2, strict bool) bool {
		if !clearOf(p, r.obstacles) {
			return false
		}
		s := r.field.Evaluate(p)
		switch s.Effect {
		case hazard.EffectLava, hazard.EffectToxic:
			if s.Intensity > 0 {
				return false
			}
		case hazard.EffectVoid:
			if s.Intensity > 0.30 {
				return false
			}
		}
		return !strict || s.Intensity <= 0.10
	}

	for pass := 0; pass < 2; pass++ {
		best, bestD := geom.Vec2{}, math.Inf(1)
		for i := 0; i < tries; i++ {
			p := geom.V(dice.Range(r.src, inner.MinX, inner.MaxX), dice.Range(r.src, inner.MinY, inner.MaxY))
			if d := p.Len(); d < bestD && ok(p, pass == 0) {
				best, bestD = p, d
			}
		}
		if !math.IsInf(bestD, 1) {
			return best
		}
	}
	for _, p := range []geom.Vec2{geom.V(0, 0), geom.V(-pad, 0), geom.V(pad, 0), geom.V(0, -pad), geom.V(0, pad)} {
		if ok(p, false) {
			return p
		}
	}
	return geom.V(0, 0)
}

// ringPoint returns a point at radius around center, clamped inside the room.
func (r *Run) ringPoint(center geom.Vec2, radius, inset float64) geom.Vec2 {
	p := center.AddScaled(geom.FromAngle(dice.Angle(r.src)), radius)
	return r.bounds.ClampPoint(p, inset)
}

// spawnBoss places the stage's boss on a ring around the avatar.
func (r *Run) spawnBoss() {
	t := entity.Warden
	if r.stage != nil {
		t = r.stage.Boss
	}
	ring := math.Min(r.bounds.Width(), r.bounds.Height()) * 0.38
	var pos geom.Vec2
	for try := 0; try < 160; try++ {
		pos = r.ringPoint(r.avatar.Pos, ring, 90)
		if safeSpawn(pos, r.obstacles, r.avatar.Pos, 660) {
			break
		}
	}
	a := r.deps.Brain.Spawn(t, pos, false, r.src)
	bossIndex := max(1, r.room/bossEvery)
	a.MaxHP = math.Floor(a.MaxHP * (1 + math.Min(0.85, math.Max(0, float64(bossIndex-1)*0.12))))
	a.HP = a.MaxHP
	r.advs = append(r.advs, a)
	r.logger.Info("boss spawned",
		zap.String("run", r.id),
		zap.Int("room", r.room),
		zap.Stringer("type", t),
		zap.Float64("hp", a.HP),
	)
}

// typeMix is the built-in adversary mix for room.
func typeMix(room int) map[entity.AdversaryType]float64 {
	t := postBossT(room)
	switch {
	case room <= 2:
		return map[entity.AdversaryType]float64{entity.Stalker: 0.56, entity.Shooter: 0.44}
	case room <= 6:
		return map[entity.AdversaryType]float64{
			entity.Stalker: 0.34,
			entity.Weaver:  0.22 * t,
			entity.Shooter: 0.18 + 0.22*(1-t),
			entity.Bomber:  0.12,
			entity.Charger: 0.14,
		}
	case room <= 12:
		return map[entity.AdversaryType]float64{
			entity.Stalker: 0.28,
			entity.Weaver:  0.20 * t,
			entity.Shooter: 0.16 + 0.20*(1-t),
			entity.Bomber:  0.12,
			entity.Charger: 0.10,
			entity.Sniper:  0.08,
			entity.Pylon:   0.06,
		}
	}
	return map[entity.AdversaryType]float64{
		entity.Splitter: 0.20,
		entity.Pylon:    0.14,
		entity.Bomber:   0.16,
		entity.Stalker:  0.14,
		entity.Weaver:   0.12,
		entity.Shooter:  0.10,
		entity.Charger:  0.08,
		entity.Sniper:   0.06,
	}
}

// pickType draws an adversary type from the scripted mix when one is
// provided, else the built-in mix. Types are visited in enum order.
func (r *Run) pickType() entity.AdversaryType {
	var mix map[entity.AdversaryType]float64
	if r.deps.Mix != nil && r.stage != nil {
		mix = r.deps.Mix.SpawnMix(r.stage.ID, r.room, postBossT(r.room))
	}
	if len(mix) == 0 {
		mix = typeMix(r.room)
	}
	types := make([]entity.AdversaryType, 0, len(mix))
	weights := make([]float64, 0, len(mix))
	for t := entity.AdversaryType(0); t < entity.NumAdversaryTypes; t++ {
		if w, ok := mix[t]; ok && w > 0 && !t.IsBoss() {
			types = append(types, t)
			weights = append(weights, w)
		}
	}
	if len(types) == 0 {
		return entity.Stalker
	}
	return types[dice.WeightedIndex(r.src, weights)]
}

// spawnEnemy places one adversary on a ring around the avatar.
func (r *Run) spawnEnemy() {
	t := r.pickType()
	var pos geom.Vec2
	for try := 0; try < 120; try++ {
		ring := math.Min(r.bounds.Width(), r.bounds.Height()) * dice.Range(r.src, 0.36, 0.46)
		pos = r.ringPoint(r.avatar.Pos, ring, 80)
		if safeSpawn(pos, r.obstacles, r.avatar.Pos, 540) {
			break
		}
	}
	elite := r.src.Float64() < math.Min(eliteChanceCap, 0.05+0.012*float64(r.room))
	r.advs = append(r.advs, r.deps.Brain.Spawn(t, pos, elite, r.src))
}

// spawn runs the normal-room spawner for dtWorld.
func (r *Run) spawn(dtWorld float64) {
	if r.boss {
		return
	}
	rate := spawnInterval(r.room)
	remaining := r.target - r.kills
	limit := spawnCap(r.room)
	r.spawnTimer -= dtWorld
	for r.spawnTimer <= 0 {
		r.spawnTimer += rate * dice.Range(r.src, 0.85, 1.08)
		if remaining <= 0 || len(r.advs) >= limit {
			break
		}
		r.spawnEnemy()
	}
}
