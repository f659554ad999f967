package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/creachadair/taskgroup"
	"golang.org/x/image/draw"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

// RenderFrames plays one loop of e and rasterizes every frame.
//
// Playback is sequential because the player is stateful; rasterizing is
// spread over all CPUs. Layers that fail on a frame are left out of that
// frame and their errors are returned joined, alongside the frames.
func RenderFrames(e *effect.Effect, textures effect.TextureProvider, opts Options, logger *log.Logger) ([]*image.NRGBA, error) {
	popts := []effect.PlayerOption{effect.WithTextures(textures)}
	if logger != nil {
		popts = append(popts, effect.WithLogger(logger))
	}
	p, err := effect.NewPlayer(e, popts...)
	if err != nil {
		return nil, err
	}

	n := p.LoopLength()
	frames := make([]effect.Frame, n)
	var errs []error
	for i := range frames {
		f, err := p.Tick(0)
		if err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", f.Number, err))
		}
		frames[i] = f
	}

	out := make([]*image.NRGBA, n)
	g, run := taskgroup.New(nil).Limit(runtime.NumCPU())
	for i, f := range frames {
		run.Run(func() {
			img := NewCanvas(opts)
			DrawFrame(img, f, opts)
			out[i] = img
		})
	}
	g.Wait()

	return out, errors.Join(errs...)
}

// EncodeGIF writes frames as a looping GIF at fps. Colors are reduced to the
// Plan 9 palette with Floyd-Steinberg dithering.
func EncodeGIF(w io.Writer, frames []*image.NRGBA, fps int) error {
	if len(frames) == 0 {
		return errors.New("raster: no frames to encode")
	}
	if fps <= 0 {
		fps = effect.DefaultFPS
	}
	// GIF delays are in 1/100 s; very high rates round up to the minimum.
	delay := max(1, (100+fps/2)/fps)

	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		b := f.Bounds()
		pal := image.NewPaletted(b, palette.Plan9)
		draw.FloydSteinberg.Draw(pal, b, f, b.Min)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("raster: encode gif: %w", err)
	}
	return nil
}

// WritePNGs writes frames to dir as frame_0000.png, frame_0001.png and so
// on, creating dir if needed. It returns the written paths.
func WritePNGs(dir string, frames []*image.NRGBA) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		p := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
		if err := writePNG(p, f); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("raster: encode %s: %w", path, err)
	}
	return f.Close()
}

func labelText(frame int) string {
	return fmt.Sprintf("frame %d", frame)
}
