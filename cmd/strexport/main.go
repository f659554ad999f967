// Command strexport renders one loop of an STR effect to a GIF or to a
// directory of PNG frames, without a GPU.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ADHSoft/ro-str-viewer/assets"
	"github.com/ADHSoft/ro-str-viewer/atlas"
	"github.com/ADHSoft/ro-str-viewer/prefabs"
	"github.com/ADHSoft/ro-str-viewer/raster"
)

func main() {
	effectName := flag.String("effect", "sparkle", "effect name in prefabs/effects (basename, .yaml optional) or a path")
	out := flag.String("out", "effect.gif", "output .gif file, or a directory for PNG frames")
	assetsDir := flag.String("assets", "", "directory searched first for textures")
	scale := flag.Float64("scale", 1, "pixels per effect unit")
	width := flag.Int("width", 800, "frame width in pixels")
	height := flag.Int("height", 600, "frame height in pixels")
	background := flag.String("bg", "#000000", "background color, #rrggbb")
	label := flag.Bool("label", false, "stamp frame numbers")
	colorKey := flag.Bool("colorkey", true, "treat magenta texels as transparent")
	strict := flag.Bool("strict", false, "fail on missing textures instead of drawing placeholders")
	flag.Parse()

	e, err := prefabs.LoadEffect(*effectName)
	if err != nil {
		log.Fatal(err)
	}

	bg, err := prefabs.ParseHexColor(*background)
	if err != nil {
		log.Fatal(err)
	}

	cache := atlas.NewCache(atlas.Options{
		Dir:         *assetsDir,
		FS:          assets.Textures(),
		ColorKey:    *colorKey,
		Placeholder: !*strict,
	})
	if err := cache.Preload(e); err != nil {
		if *strict {
			log.Fatal(err)
		}
		log.Printf("strexport: %v", err)
	}

	opts := raster.Options{Width: *width, Height: *height, Scale: *scale, Background: bg, Label: *label}
	start := time.Now()
	frames, err := raster.RenderFrames(e, cache, opts, nil)
	if frames == nil {
		log.Fatal(err)
	}
	if err != nil {
		log.Printf("strexport: some layers were skipped: %v", err)
	}
	log.Printf("strexport: rendered %d frames of %s in %v", len(frames), e.Name, time.Since(start).Round(time.Millisecond))

	if strings.EqualFold(filepath.Ext(*out), ".gif") {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		if err := raster.EncodeGIF(f, frames, e.Rate()); err != nil {
			f.Close()
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("strexport: wrote %s", *out)
		return
	}

	paths, err := raster.WritePNGs(*out, frames)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("strexport: wrote %d frames to %s", len(paths), *out)
}
