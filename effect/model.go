// Package effect plays back STR sprite effects: layered billboarded quads
// driven by sparse base and morph keyframes.
//
// The package resolves, tick by tick, which keyframes are active on each
// layer and turns them into DrawDescriptor values. It never draws anything
// itself; see the render and raster packages for consumers.
package effect

import "fmt"

// NoFrame marks "no keyframe selected" in a Cursor and "nothing rendered yet"
// for a FrameAdvancer.
const NoFrame = -1

// KeyframeKind tells a base keyframe from a morph keyframe. The numeric
// values match the ones stored in STR files.
type KeyframeKind int

const (
	KindBase  KeyframeKind = 0
	KindMorph KeyframeKind = 1
)

func (k KeyframeKind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindMorph:
		return "morph"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AnimationType selects how the texture atlas index moves while a base
// keyframe is active.
type AnimationType int

const (
	// NoChange keeps the keyframe's texture.
	NoChange AnimationType = iota
	// Linear steps through the atlas and wraps around.
	Linear
	// Clamped steps through the atlas and holds on the last texture.
	Clamped
)

func (a AnimationType) String() string {
	switch a {
	case NoChange:
		return "none"
	case Linear:
		return "linear"
	case Clamped:
		return "clamped"
	default:
		return fmt.Sprintf("animation(%d)", int(a))
	}
}

// BlendMode is a Direct3D blend factor, numbered the way STR files store it.
type BlendMode int

const (
	BlendZero BlendMode = iota + 1
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
	BlendSrcAlphaSat
)

var blendNames = map[BlendMode]string{
	BlendZero:         "zero",
	BlendOne:          "one",
	BlendSrcColor:     "src_color",
	BlendInvSrcColor:  "inv_src_color",
	BlendSrcAlpha:     "src_alpha",
	BlendInvSrcAlpha:  "inv_src_alpha",
	BlendDestAlpha:    "dest_alpha",
	BlendInvDestAlpha: "inv_dest_alpha",
	BlendDestColor:    "dest_color",
	BlendInvDestColor: "inv_dest_color",
	BlendSrcAlphaSat:  "src_alpha_sat",
}

func (b BlendMode) String() string {
	if s, ok := blendNames[b]; ok {
		return s
	}
	return fmt.Sprintf("blend(%d)", int(b))
}

// Valid reports whether b is one of the known blend factors.
func (b BlendMode) Valid() bool {
	_, ok := blendNames[b]
	return ok
}

// ParseBlendMode maps a blend factor name back to its value.
func ParseBlendMode(s string) (BlendMode, bool) {
	for b, name := range blendNames {
		if name == s {
			return b, true
		}
	}
	return 0, false
}

// Vec2 is a 2D point or offset.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Quad holds four corners in drawing order: top-left, top-right,
// bottom-right, bottom-left. It is not required to be axis aligned.
type Quad struct {
	A, B, C, D Vec2
}

// Corners returns the corners as an array in A, B, C, D order.
func (q Quad) Corners() [4]Vec2 { return [4]Vec2{q.A, q.B, q.C, q.D} }

// AddScaled returns q + o*f, corner by corner.
func (q Quad) AddScaled(o Quad, f float64) Quad {
	return Quad{
		A: q.A.Add(o.A.Scale(f)),
		B: q.B.Add(o.B.Scale(f)),
		C: q.C.Add(o.C.Scale(f)),
		D: q.D.Add(o.D.Scale(f)),
	}
}

// Color channels are 0..255 magnitudes. They are kept as floats so morph
// extrapolation can overshoot before the output stage clamps them.
type Color struct {
	R, G, B, A float64
}

// White is the neutral tint.
var White = Color{255, 255, 255, 255}

func (c Color) AddScaled(o Color, f float64) Color {
	return Color{c.R + o.R*f, c.G + o.G*f, c.B + o.B*f, c.A + o.A*f}
}

// KeyFrame is one entry of a layer timeline. For a morph keyframe the
// numeric fields are per-frame deltas rather than absolute values.
type KeyFrame struct {
	Frame     int
	Kind      KeyframeKind
	Color     Color
	Position  Vec2
	Rotation  float64
	Quad      Quad
	UV        Quad
	TextureID float64
	// AtlasDelta is the per-frame atlas step used when Animation is not NoChange.
	AtlasDelta float64
	Animation  AnimationType
	SrcBlend   BlendMode
	DstBlend   BlendMode
}

// Layer is one stacked quad with its own texture atlas.
type Layer struct {
	Name      string
	Textures  []string
	Keyframes []KeyFrame
}

// AtlasSize is the number of textures in the layer atlas.
func (l *Layer) AtlasSize() int { return len(l.Textures) }

// Effect is a complete STR effect. Layers are listed back to front.
type Effect struct {
	Name       string
	FPS        int
	FrameCount int
	Layers     []Layer
}

// DefaultFPS is the playback rate STR files are authored for.
const DefaultFPS = 60

// LoopLength returns the authored frame count, or one past the highest
// keyframe when none was authored.
func (e *Effect) LoopLength() int {
	if e.FrameCount > 0 {
		return e.FrameCount
	}
	last := -1
	for _, l := range e.Layers {
		for _, k := range l.Keyframes {
			if k.Frame > last {
				last = k.Frame
			}
		}
	}
	return last + 1
}

// Rate returns the playback rate, falling back to DefaultFPS.
func (e *Effect) Rate() int {
	if e.FPS > 0 {
		return e.FPS
	}
	return DefaultFPS
}

// Validate checks the invariants playback depends on. Keyframe kinds are not
// checked; an unknown kind fails only the layer that reaches it, at the tick
// that reaches it.
func (e *Effect) Validate() error {
	if e == nil {
		return configErr(-1, "effect is nil")
	}
	if len(e.Layers) == 0 {
		return configErr(-1, "effect has no layers")
	}
	if e.FPS < 0 {
		return configErr(-1, "negative fps %d", e.FPS)
	}
	if e.FrameCount < 0 {
		return configErr(-1, "negative frame count %d", e.FrameCount)
	}
	for i := range e.Layers {
		l := &e.Layers[i]
		if l.AtlasSize() == 0 {
			return configErr(i, "layer has an empty texture atlas")
		}
		for j, k := range l.Keyframes {
			if k.Frame < 0 {
				return configErr(i, "keyframe %d has negative frame %d", j, k.Frame)
			}
			if j > 0 && k.Frame < l.Keyframes[j-1].Frame {
				return configErr(i, "keyframe %d at frame %d is out of order", j, k.Frame)
			}
			if k.Animation < NoChange || k.Animation > Clamped {
				return configErr(i, "keyframe %d has unknown animation type %d", j, int(k.Animation))
			}
			if !k.SrcBlend.Valid() || !k.DstBlend.Valid() {
				return configErr(i, "keyframe %d has unknown blend pair %v/%v", j, k.SrcBlend, k.DstBlend)
			}
		}
	}
	if e.LoopLength() <= 0 {
		return configErr(-1, "effect has no keyframes")
	}
	return nil
}
