package effect

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/ADHSoft/ro-str-viewer/common"
)

// LayerDepth is the depth offset between consecutive layers. Rasterizers
// without a depth buffer get the same stacking from submission order.
const LayerDepth = 0.02

// Handle is whatever a TextureProvider hands back for binding.
type Handle any

// TextureProvider turns an atlas slot into something a rasterizer can bind.
// It may load lazily; a failure skips the layer for one tick only.
type TextureProvider interface {
	Resolve(layer, atlasIndex int, name string) (Handle, error)
}

// DrawDescriptor is one fully resolved quad. Descriptors of a frame must be
// submitted in slice order.
type DrawDescriptor struct {
	Layer      int
	Color      color.NRGBA
	Quad       Quad
	UV         Quad
	Position   Vec2
	Rotation   float64 // degrees, counter-clockwise
	AtlasIndex int
	Texture    string
	Handle     Handle
	SrcBlend   BlendMode
	DstBlend   BlendMode
	Textured   bool
	Depth      float64
}

// Corners returns the quad corners in effect space (y up) after the layer
// rotation about its origin and the translation to Position.
func (d DrawDescriptor) Corners() [4]Vec2 {
	s, c := math.Sincos(d.Rotation * math.Pi / 180)
	var out [4]Vec2
	for i, p := range d.Quad.Corners() {
		out[i] = Vec2{
			X: p.X*c - p.Y*s + d.Position.X,
			Y: p.X*s + p.Y*c + d.Position.Y,
		}
	}
	return out
}

func (d DrawDescriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "layer=%d depth=%.2f color=(%d,%d,%d,%d) pos=(%.1f,%.1f) rot=%.1f",
		d.Layer, d.Depth, d.Color.R, d.Color.G, d.Color.B, d.Color.A, d.Position.X, d.Position.Y, d.Rotation)
	if d.Textured {
		fmt.Fprintf(&b, " tex=%d:%s", d.AtlasIndex, d.Texture)
	} else {
		b.WriteString(" untextured")
	}
	fmt.Fprintf(&b, " blend=%v/%v", d.SrcBlend, d.DstBlend)
	return b.String()
}

func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{
		R: common.ClampByte(c.R),
		G: common.ClampByte(c.G),
		B: common.ClampByte(c.B),
		A: common.ClampByte(c.A),
	}
}
