// Package raster draws effect frames in software, for exporting and for
// machines without a GPU.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

// Options sizes the output canvas.
type Options struct {
	Width, Height int
	// Scale multiplies effect units into pixels.
	Scale float64
	// Background fills each frame before layer 0 draws.
	Background color.Color
	// Label stamps the frame number in the bottom-left corner.
	Label bool
}

// DefaultOptions covers the background quad at scale 1.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, Scale: 1, Background: colornames.Black}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

func (o Options) toPixel(p effect.Vec2) (float64, float64) {
	s := o.scale()
	return float64(o.Width)/2 + p.X*s, float64(o.Height)/2 - p.Y*s
}

// NewCanvas returns a frame-sized image filled with the background.
func NewCanvas(opts Options) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	bg := opts.Background
	if bg == nil {
		bg = colornames.Black
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return dst
}

// DrawFrame composites every descriptor of f onto dst, in order. Textured
// descriptors need an *image.NRGBA handle, as atlas.Cache hands out;
// anything else draws as a flat quad.
func DrawFrame(dst *image.NRGBA, f effect.Frame, opts Options) {
	for _, d := range f.Draws {
		drawQuad(dst, d, opts)
	}
	if opts.Label {
		stampLabel(dst, f.Number)
	}
}

func drawQuad(dst *image.NRGBA, d effect.DrawDescriptor, opts Options) {
	corners := d.Corners()
	var px [4]f64.Vec2
	for i, c := range corners {
		x, y := opts.toPixel(c)
		px[i] = f64.Vec2{x, y}
	}

	bounds := bbox(px).Intersect(dst.Bounds())
	if bounds.Empty() {
		return
	}
	mask := coverage(dst.Bounds(), px)

	tex, _ := d.Handle.(*image.NRGBA)
	var layer *image.RGBA
	if d.Textured && tex != nil {
		layer = image.NewRGBA(dst.Bounds())
		uv := d.UV.Corners()
		tw, th := float64(tex.Bounds().Dx()), float64(tex.Bounds().Dy())
		var src [4]f64.Vec2
		for i, p := range uv {
			src[i] = f64.Vec2{float64(tex.Bounds().Min.X) + p.X*tw, float64(tex.Bounds().Min.Y) + p.Y*th}
		}
		if m, ok := fitAffine([3]f64.Vec2{src[0], src[1], src[3]}, [3]f64.Vec2{px[0], px[1], px[3]}); ok && maps(m, src[2], px[2]) {
			transform(layer, m, tex, nil)
		} else {
			for _, tri := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
				m, ok := fitAffine(
					[3]f64.Vec2{src[tri[0]], src[tri[1]], src[tri[2]]},
					[3]f64.Vec2{px[tri[0]], px[tri[1]], px[tri[2]]},
				)
				if !ok {
					continue
				}
				triMask := coverage(dst.Bounds(), [4]f64.Vec2{px[tri[0]], px[tri[1]], px[tri[2]], px[tri[2]]})
				transform(layer, m, tex, triMask)
			}
		}
	}

	tint := rgba{
		float64(d.Color.R) / 255,
		float64(d.Color.G) / 255,
		float64(d.Color.B) / 255,
		float64(d.Color.A) / 255,
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cov := float64(mask.AlphaAt(x, y).A) / 255
			if cov == 0 {
				continue
			}
			src := tint
			if layer != nil {
				t := straight(layer.RGBAAt(x, y))
				src = rgba{t[0] * tint[0], t[1] * tint[1], t[2] * tint[2], t[3] * tint[3]}
			}
			i := dst.PixOffset(x, y)
			p := dst.Pix[i : i+4 : i+4]
			under := rgba{float64(p[0]) / 255, float64(p[1]) / 255, float64(p[2]) / 255, float64(p[3]) / 255}
			out := blendPixel(src, under, d.SrcBlend, d.DstBlend)
			for c := range 4 {
				v := under[c] + (out[c]-under[c])*cov
				p[c] = uint8(math.Round(v * 255))
			}
		}
	}
}

// transform draws tex through m onto layer, clipped to mask when given.
func transform(layer *image.RGBA, m f64.Aff3, tex *image.NRGBA, mask *image.Alpha) {
	var opts *draw.Options
	if mask != nil {
		opts = &draw.Options{DstMask: mask, DstMaskP: mask.Bounds().Min}
	}
	draw.BiLinear.Transform(layer, m, tex, tex.Bounds(), draw.Over, opts)
}

// maps reports whether m takes p to within half a pixel of want. A quad
// that is an affine image of its UV quad draws in one pass; anything else
// is split into two triangles.
func maps(m f64.Aff3, p, want f64.Vec2) bool {
	x := m[0]*p[0] + m[1]*p[1] + m[2]
	y := m[3]*p[0] + m[4]*p[1] + m[5]
	return math.Hypot(x-want[0], y-want[1]) <= 0.5
}

// coverage rasterizes the polygon pts into an alpha mask the size of r.
func coverage(r image.Rectangle, pts [4]f64.Vec2) *image.Alpha {
	dc := gg.NewContext(r.Dx(), r.Dy())
	dc.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()
	dc.SetRGBA255(255, 255, 255, 255)
	dc.Fill()

	src := dc.Image()
	mask := image.NewAlpha(r)
	draw.Draw(mask, r, src, src.Bounds().Min, draw.Src)
	return mask
}

func bbox(pts [4]f64.Vec2) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	if math.IsNaN(minX + minY + maxX + maxY) {
		return image.Rectangle{}
	}
	const lim = 1 << 20
	minX, minY = math.Max(minX, -lim), math.Max(minY, -lim)
	maxX, maxY = math.Min(maxX, lim), math.Min(maxY, lim)
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// fitAffine solves for the affine map taking src[i] to dst[i]. It fails
// when src is degenerate.
func fitAffine(src, dst [3]f64.Vec2) (f64.Aff3, bool) {
	u0, v0 := src[0][0], src[0][1]
	u1, v1 := src[1][0], src[1][1]
	u2, v2 := src[2][0], src[2][1]
	det := (u1-u0)*(v2-v0) - (u2-u0)*(v1-v0)
	if math.Abs(det) < 1e-9 {
		return f64.Aff3{}, false
	}

	solve := func(k int) (a, b, c float64) {
		w0, w1, w2 := dst[0][k], dst[1][k], dst[2][k]
		a = ((w1-w0)*(v2-v0) - (w2-w0)*(v1-v0)) / det
		b = ((u1-u0)*(w2-w0) - (u2-u0)*(w1-w0)) / det
		c = w0 - a*u0 - b*v0
		return a, b, c
	}
	a, b, c := solve(0)
	d, e, f := solve(1)
	return f64.Aff3{a, b, c, d, e, f}, true
}

func straight(c color.RGBA) rgba {
	if c.A == 0 {
		return rgba{}
	}
	a := float64(c.A)
	return rgba{float64(c.R) / a, float64(c.G) / a, float64(c.B) / a, a / 255}
}

func stampLabel(dst *image.NRGBA, frame int) {
	const h = 16
	b := dst.Bounds()
	dc := gg.NewContext(b.Dx(), h)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colornames.White)
	dc.DrawString(labelText(frame), 4, h-4)
	label := dc.Image()
	at := image.Rect(b.Min.X, b.Max.Y-h, b.Max.X, b.Max.Y)
	draw.Draw(dst, at, label, label.Bounds().Min, draw.Over)
}
