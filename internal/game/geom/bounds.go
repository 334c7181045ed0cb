package geom

// Bounds is an axis-aligned world rectangle.
//
// Invariant: MinX <= MaxX and MinY <= MaxY.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Centered returns bounds of size w by h centered on the origin, rounded down to whole units.
func Centered(w, h float64) Bounds {
	hw, hh := float64(int(w/2)), float64(int(h/2))
	return Bounds{MinX: -hw, MinY: -hh, MaxX: hw, MaxY: hh}
}

func (b Bounds) Width() float64 { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether p lies inside b grown by margin on every side.
func (b Bounds) Contains(p Vec2, margin float64) bool {
	return p.X >= b.MinX-margin && p.X <= b.MaxX+margin &&
		p.Y >= b.MinY-margin && p.Y <= b.MaxY+margin
}

// ClampPoint limits p to b shrunk by inset on every side.
func (b Bounds) ClampPoint(p Vec2, inset float64) Vec2 {
	return Vec2{
		X: Clamp(p.X, b.MinX+inset, b.MaxX-inset),
		Y: Clamp(p.Y, b.MinY+inset, b.MaxY-inset),
	}
}
