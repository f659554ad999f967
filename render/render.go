// Package render draws effect frames with ebiten.
package render

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ADHSoft/ro-str-viewer/atlas"
	"github.com/ADHSoft/ro-str-viewer/effect"
)

// Options places the effect canvas on the destination image.
type Options struct {
	// Origin is where effect space (0, 0) lands, in destination pixels.
	Origin effect.Vec2
	// Scale multiplies effect units into destination pixels.
	Scale float64
	// Filter samples textures; the zero value is nearest.
	Filter ebiten.Filter
}

// CenteredOptions centres the canvas on a w x h destination.
func CenteredOptions(w, h int, scale float64) Options {
	if scale <= 0 {
		scale = 1
	}
	return Options{
		Origin: effect.Vec2{X: float64(w) / 2, Y: float64(h) / 2},
		Scale:  scale,
		Filter: ebiten.FilterLinear,
	}
}

// ToScreen converts an effect space point (y up) to destination pixels.
func (o Options) ToScreen(p effect.Vec2) (x, y float32) {
	s := o.Scale
	if s == 0 {
		s = 1
	}
	return float32(o.Origin.X + p.X*s), float32(o.Origin.Y - p.Y*s)
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// Vertices builds the four vertices of d. UVs are normalised and scaled by
// the texture size; the vertex color carries the descriptor tint.
func Vertices(d effect.DrawDescriptor, texW, texH int, opts Options) []ebiten.Vertex {
	corners := d.Corners()
	uv := d.UV.Corners()
	r, g, b, a := colorScale(d.Color)
	vs := make([]ebiten.Vertex, 4)
	for i := range vs {
		x, y := opts.ToScreen(corners[i])
		vs[i] = ebiten.Vertex{
			DstX:   x,
			DstY:   y,
			SrcX:   float32(uv[i].X * float64(texW)),
			SrcY:   float32(uv[i].Y * float64(texH)),
			ColorR: r,
			ColorG: g,
			ColorB: b,
			ColorA: a,
		}
	}
	return vs
}

func colorScale(c color.NRGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}

var centreUV = effect.Quad{
	A: effect.Vec2{X: 0.5, Y: 0.5},
	B: effect.Vec2{X: 0.5, Y: 0.5},
	C: effect.Vec2{X: 0.5, Y: 0.5},
	D: effect.Vec2{X: 0.5, Y: 0.5},
}

var (
	whiteOnce sync.Once
	white     *ebiten.Image
)

// whiteImage is sampled by untextured quads.
func whiteImage() *ebiten.Image {
	whiteOnce.Do(func() {
		white = ebiten.NewImage(1, 1)
		white.Fill(color.White)
	})
	return white
}

// DrawFrame submits every descriptor of f to dst, in order. Descriptors whose
// handle is not an *ebiten.Image are drawn untextured.
func DrawFrame(dst *ebiten.Image, f effect.Frame, opts Options) {
	for _, d := range f.Draws {
		img, ok := d.Handle.(*ebiten.Image)
		if !d.Textured || !ok || img == nil {
			img = whiteImage()
			d.UV = centreUV
		}
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		dst.DrawTriangles(Vertices(d, w, h, opts), quadIndices, img, &ebiten.DrawTrianglesOptions{
			Blend:  Blend(d.SrcBlend, d.DstBlend),
			Filter: opts.Filter,
		})
	}
}

// TextureProvider hands out ebiten images for atlas textures, converting
// each decoded texture once.
type TextureProvider struct {
	cache *atlas.Cache

	mu     sync.Mutex
	images map[string]*ebiten.Image
}

func NewTextureProvider(c *atlas.Cache) *TextureProvider {
	return &TextureProvider{cache: c, images: make(map[string]*ebiten.Image)}
}

func (p *TextureProvider) Resolve(_, _ int, name string) (effect.Handle, error) {
	key := atlas.CleanName(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	if img, ok := p.images[key]; ok {
		return img, nil
	}
	src, err := p.cache.Get(key)
	if err != nil {
		return nil, err
	}
	img := ebiten.NewImageFromImage(src)
	p.images[key] = img
	return img, nil
}

// Forget drops converted images and the underlying decoded textures, so the
// next Resolve reads from disk again.
func (p *TextureProvider) Forget() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, img := range p.images {
		img.Deallocate()
	}
	clear(p.images)
	p.cache.Forget()
}
