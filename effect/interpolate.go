package effect

// STR coordinates are authored for a 640x580-ish character canvas; the
// player moves them so the effect origin sits at the canvas centre.
const (
	CanvasOriginX = 320
	CanvasOriginY = 290
)

// AngleUnitsPerDegree converts STR rotation units to degrees. Some tools
// store 1024 units per turn (2.8444); the effects this player targets are
// authored in degrees.
const AngleUnitsPerDegree = 1.0

// BackgroundLayer is the layer index STR reserves for a full-screen,
// untextured backdrop quad.
const BackgroundLayer = 0

// BackgroundQuad is the canvas-filling quad drawn for BackgroundLayer.
var BackgroundQuad = Quad{
	A: Vec2{-400, 300},
	B: Vec2{400, 300},
	C: Vec2{400, -300},
	D: Vec2{-400, -300},
}

// Resolved is the interpolated pose of a layer for one frame.
type Resolved struct {
	Color    Color
	Position Vec2
	Rotation float64
	Quad     Quad
	UV       Quad
	Textured bool
	// Delta is the morph extrapolation factor, 0 without a morph.
	Delta int
	// NegativeDelta is set when the morph keyframe lies after target, which
	// only happens for effects whose keyframes break the ordering rules.
	NegativeDelta bool
}

// Interpolate resolves the pose of a layer at frame target from its active
// base keyframe and, when non-nil, its active morph keyframe.
//
// Morph fields are per-frame deltas: every numeric field of the base gains
// morph.field * (target - morph.Frame). The result is an extrapolation
// that keeps growing the longer the morph stays active, not a 0..1 blend.
func Interpolate(layer int, base KeyFrame, morph *KeyFrame, target int) Resolved {
	r := Resolved{
		Color:    base.Color,
		Position: Vec2{base.Position.X - CanvasOriginX, base.Position.Y - CanvasOriginY},
		Rotation: base.Rotation / AngleUnitsPerDegree,
		Quad:     base.Quad,
		UV:       base.UV,
		Textured: true,
	}

	if morph != nil {
		delta := target - morph.Frame
		f := float64(delta)
		r.Delta = delta
		r.NegativeDelta = delta < 0
		r.Color = r.Color.AddScaled(morph.Color, f)
		r.Position = r.Position.Add(morph.Position.Scale(f))
		r.Rotation += morph.Rotation / AngleUnitsPerDegree * f
		r.Quad = r.Quad.AddScaled(morph.Quad, f)
		r.UV = r.UV.AddScaled(morph.UV, f)
	}

	if layer == BackgroundLayer {
		r.Quad = BackgroundQuad
		r.Textured = false
	}
	return r
}
