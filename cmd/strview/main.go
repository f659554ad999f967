// Command strview plays an STR effect in a window.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ADHSoft/ro-str-viewer/prefabs"
)

func main() {
	effectName := flag.String("effect", "sparkle", "effect name in prefabs/effects (basename, .yaml optional) or a path")
	configPath := flag.String("config", "strview.yaml", "viewer settings file; missing is fine")
	assetsDir := flag.String("assets", "", "directory searched first for textures")
	watch := flag.Bool("watch", false, "reload the effect and its script when they change on disk")
	debug := flag.Bool("debug", false, "start with the descriptor overlay on")
	list := flag.Bool("list", false, "list the embedded effects and exit")
	flag.Parse()

	if *list {
		names, err := prefabs.List()
		if err != nil {
			log.Fatal(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	cfg, err := prefabs.LoadViewerConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *assetsDir != "" {
		cfg.Assets = *assetsDir
	}

	v, err := NewViewer(*effectName, cfg, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	if *watch {
		if err := v.Watch(); err != nil {
			log.Printf("strview: watch disabled: %v", err)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("strview - " + v.Title())

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
