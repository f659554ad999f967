package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

func near(a, b rgba) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestBlendPixel(t *testing.T) {
	red := rgba{1, 0, 0, 0.5}
	blue := rgba{0, 0, 1, 1}
	tests := []struct {
		name     string
		src, dst rgba
		sf, df   effect.BlendMode
		want     rgba
	}{
		{"alpha", red, blue, effect.BlendSrcAlpha, effect.BlendInvSrcAlpha, rgba{0.5, 0, 0.5, 0.75}},
		{"additive_clamps", rgba{0.8, 0.8, 0.8, 1}, rgba{0.5, 0.1, 0, 1}, effect.BlendOne, effect.BlendOne, rgba{1, 0.9, 0.8, 1}},
		{"multiply", rgba{0.5, 1, 0, 1}, rgba{1, 0.5, 1, 1}, effect.BlendDestColor, effect.BlendZero, rgba{0.5, 0.5, 0, 1}},
		{"replace", red, blue, effect.BlendOne, effect.BlendZero, red},
		{"keep", red, blue, effect.BlendZero, effect.BlendOne, blue},
		{"src_alpha_sat", red, rgba{0, 0, 0, 0.8}, effect.BlendSrcAlphaSat, effect.BlendOne, rgba{0.2, 0, 0, 1}},
		{"inv_dest_alpha", red, rgba{0, 0, 0, 0.25}, effect.BlendInvDestAlpha, effect.BlendDestAlpha, rgba{0.75, 0, 0, 0.4375}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := blendPixel(tc.src, tc.dst, tc.sf, tc.df)
			if !near(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFitAffine(t *testing.T) {
	src := [3]f64.Vec2{{0, 0}, {4, 0}, {0, 4}}
	dst := [3]f64.Vec2{{10, 20}, {10, 28}, {2, 20}} // scale 2, quarter turn
	m, ok := fitAffine(src, dst)
	if !ok {
		t.Fatalf("fit failed")
	}
	for i := range src {
		if !maps(m, src[i], dst[i]) {
			t.Fatalf("point %d does not map: %v", i, m)
		}
	}
	if !maps(m, f64.Vec2{4, 4}, f64.Vec2{2, 28}) {
		t.Fatalf("fourth corner off: %v", m)
	}

	if _, ok := fitAffine([3]f64.Vec2{{1, 1}, {2, 2}, {3, 3}}, dst); ok {
		t.Fatalf("collinear source should not fit")
	}
}

func square(half float64) effect.Quad {
	return effect.Quad{
		A: effect.Vec2{X: -half, Y: half}, B: effect.Vec2{X: half, Y: half},
		C: effect.Vec2{X: half, Y: -half}, D: effect.Vec2{X: -half, Y: -half},
	}
}

var fullUV = effect.Quad{
	A: effect.Vec2{X: 0, Y: 0}, B: effect.Vec2{X: 1, Y: 0},
	C: effect.Vec2{X: 1, Y: 1}, D: effect.Vec2{X: 0, Y: 1},
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func smallOptions() Options {
	return Options{Width: 100, Height: 100, Scale: 1, Background: color.Black}
}

func TestDrawFrameUntextured(t *testing.T) {
	opts := smallOptions()
	dst := NewCanvas(opts)
	DrawFrame(dst, effect.Frame{Draws: []effect.DrawDescriptor{{
		Color:    color.NRGBA{R: 255, A: 255},
		Quad:     square(10),
		Position: effect.Vec2{X: 20, Y: 0},
		SrcBlend: effect.BlendOne,
		DstBlend: effect.BlendZero,
	}}}, opts)

	if got := dst.NRGBAAt(70, 50); got != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("inside quad: got %v, want red", got)
	}
	if got := dst.NRGBAAt(50, 50); got != (color.NRGBA{A: 255}) {
		t.Fatalf("outside quad: got %v, want black", got)
	}
}

func TestDrawFrameTextured(t *testing.T) {
	opts := smallOptions()
	dst := NewCanvas(opts)
	green := color.NRGBA{G: 255, A: 255}
	DrawFrame(dst, effect.Frame{Draws: []effect.DrawDescriptor{{
		Color:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Quad:     square(20),
		UV:       fullUV,
		Handle:   solid(4, 4, green),
		Textured: true,
		SrcBlend: effect.BlendSrcAlpha,
		DstBlend: effect.BlendInvSrcAlpha,
	}}}, opts)

	for _, p := range []image.Point{{40, 60}, {60, 40}, {50, 50}} {
		if got := dst.NRGBAAt(p.X, p.Y); got != green {
			t.Fatalf("at %v: got %v, want green", p, got)
		}
	}
	if got := dst.NRGBAAt(10, 10); got != (color.NRGBA{A: 255}) {
		t.Fatalf("outside quad: got %v, want black", got)
	}
}

func TestDrawFrameMultiplyLeavesOutsideAlone(t *testing.T) {
	opts := smallOptions()
	opts.Background = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	dst := NewCanvas(opts)
	DrawFrame(dst, effect.Frame{Draws: []effect.DrawDescriptor{{
		Color:    color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		Quad:     square(5),
		SrcBlend: effect.BlendZero,
		DstBlend: effect.BlendSrcColor,
	}}}, opts)

	if got := dst.NRGBAAt(50, 50); got.R != 100 {
		t.Fatalf("inside: got %v, want red 100", got)
	}
	if got := dst.NRGBAAt(5, 5); got.R != 200 {
		t.Fatalf("outside: got %v, want untouched 200", got)
	}
}

func TestDrawFrameOffCanvas(t *testing.T) {
	opts := smallOptions()
	dst := NewCanvas(opts)
	before := append([]byte(nil), dst.Pix...)
	DrawFrame(dst, effect.Frame{Draws: []effect.DrawDescriptor{{
		Color:    color.NRGBA{R: 255, A: 255},
		Quad:     square(5),
		Position: effect.Vec2{X: 1000},
		SrcBlend: effect.BlendOne,
		DstBlend: effect.BlendZero,
	}}}, opts)
	if !bytes.Equal(before, dst.Pix) {
		t.Fatalf("off-canvas quad changed pixels")
	}
}

func TestDrawFrameLabel(t *testing.T) {
	opts := smallOptions()
	opts.Label = true
	dst := NewCanvas(opts)
	DrawFrame(dst, effect.Frame{Number: 7}, opts)
	lit := false
	for y := 84; y < 100 && !lit; y++ {
		for x := 0; x < 100; x++ {
			if dst.NRGBAAt(x, y).R > 0 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Fatalf("label was not drawn")
	}
}

type textures map[string]*image.NRGBA

func (tx textures) Resolve(_, _ int, name string) (effect.Handle, error) {
	img, ok := tx[name]
	if !ok {
		return nil, errors.New("file not found")
	}
	return img, nil
}

func testEffect() *effect.Effect {
	white := effect.Color{R: 255, G: 255, B: 255, A: 255}
	base := func(frame int) effect.KeyFrame {
		return effect.KeyFrame{
			Frame:    frame,
			Kind:     effect.KindBase,
			Color:    white,
			Position: effect.Vec2{X: effect.CanvasOriginX, Y: effect.CanvasOriginY},
			Quad:     square(10),
			UV:       fullUV,
			SrcBlend: effect.BlendSrcAlpha,
			DstBlend: effect.BlendInvSrcAlpha,
		}
	}
	morph := func(frame int) effect.KeyFrame {
		k := effect.KeyFrame{Frame: frame, Kind: effect.KindMorph, SrcBlend: effect.BlendSrcAlpha, DstBlend: effect.BlendInvSrcAlpha}
		k.Position.X = 2
		return k
	}
	backdrop := base(0)
	backdrop.Color = effect.Color{A: 255}
	return &effect.Effect{
		Name:       "test",
		FrameCount: 6,
		Layers: []effect.Layer{
			{Textures: []string{"bg.bmp"}, Keyframes: []effect.KeyFrame{backdrop, morph(0)}},
			{Textures: []string{"dot.bmp"}, Keyframes: []effect.KeyFrame{base(0), morph(0)}},
			{Textures: []string{"missing.bmp"}, Keyframes: []effect.KeyFrame{base(0), morph(0)}},
		},
	}
}

func TestRenderFrames(t *testing.T) {
	tx := textures{"dot.bmp": solid(2, 2, color.NRGBA{R: 255, A: 255})}
	quiet := log.New(io.Discard, "", 0)

	frames, err := RenderFrames(testEffect(), tx, smallOptions(), quiet)
	if len(frames) != 6 {
		t.Fatalf("got %d frames, want 6", len(frames))
	}
	if err == nil {
		t.Fatalf("expected the missing texture to be reported")
	}
	for i, f := range frames {
		if f == nil {
			t.Fatalf("frame %d is nil", i)
		}
		// The dot moves two pixels right per frame.
		if got := f.NRGBAAt(50+2*i, 50); got.R != 255 {
			t.Fatalf("frame %d: dot missing, got %v", i, got)
		}
	}
}

func TestRenderFramesInvalidEffect(t *testing.T) {
	if _, err := RenderFrames(&effect.Effect{}, textures{}, smallOptions(), nil); !errors.Is(err, effect.ErrConfiguration) {
		t.Fatalf("got %v, want a configuration error", err)
	}
}

func TestEncodeGIF(t *testing.T) {
	frames := []*image.NRGBA{
		solid(8, 8, color.NRGBA{R: 255, A: 255}),
		solid(8, 8, color.NRGBA{B: 255, A: 255}),
	}
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, frames, 30); err != nil {
		t.Fatalf("EncodeGIF: %v", err)
	}
	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(g.Image) != 2 {
		t.Fatalf("got %d frames, want 2", len(g.Image))
	}
	if g.Delay[0] != 3 {
		t.Fatalf("delay %d, want 3", g.Delay[0])
	}
	if r, _, _, _ := g.Image[0].At(4, 4).RGBA(); r>>8 != 255 {
		t.Fatalf("first frame is not red")
	}

	if err := EncodeGIF(io.Discard, nil, 30); err == nil {
		t.Fatalf("expected an error for no frames")
	}
}

func TestWritePNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WritePNGs(dir, []*image.NRGBA{solid(2, 2, color.NRGBA{A: 255}), solid(2, 2, color.NRGBA{A: 255})})
	if err != nil {
		t.Fatalf("WritePNGs: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "frame_0001.png" {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
	}
}
