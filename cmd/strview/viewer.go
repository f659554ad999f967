package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"

	"github.com/ADHSoft/ro-str-viewer/assets"
	"github.com/ADHSoft/ro-str-viewer/atlas"
	"github.com/ADHSoft/ro-str-viewer/effect"
	"github.com/ADHSoft/ro-str-viewer/prefabs"
	"github.com/ADHSoft/ro-str-viewer/render"
	"github.com/ADHSoft/ro-str-viewer/script"
)

// Viewer is the ebiten game that plays one effect.
type Viewer struct {
	name string
	cfg  prefabs.ViewerConfig

	player   *effect.Player
	cache    *atlas.Cache
	textures *render.TextureProvider
	ui       *ebitenui.UI
	frame    effect.Frame
	frameErr error

	last    time.Time
	paused  bool
	debug   bool
	status  string
	statusT time.Time

	watcher   *prefabs.Watcher
	modTime   time.Time
	clipboard bool
}

func NewViewer(name string, cfg prefabs.ViewerConfig, debug bool) (*Viewer, error) {
	cache := atlas.NewCache(atlas.Options{
		Dir:         cfg.Assets,
		FS:          assets.Textures(),
		ColorKey:    cfg.UseColorKey(),
		Placeholder: true,
	})
	v := &Viewer{
		name:     name,
		cfg:      cfg,
		cache:    cache,
		textures: render.NewTextureProvider(cache),
		debug:    debug,
	}
	if err := v.load(); err != nil {
		return nil, err
	}
	v.ui = NewPauseUI(v)
	if err := clipboard.Init(); err != nil {
		log.Printf("strview: clipboard unavailable: %v", err)
	} else {
		v.clipboard = true
	}
	return v, nil
}

// load (re)builds the player from the named effect and the configured
// advance policy.
func (v *Viewer) load() error {
	e, err := prefabs.LoadEffect(v.name)
	if err != nil {
		return err
	}
	adv, err := script.BuildAdvancer(v.cfg.Advancer, e)
	if err != nil {
		return err
	}
	p, err := effect.NewPlayer(e,
		effect.WithAdvancer(adv),
		effect.WithTextures(v.textures),
	)
	if err != nil {
		return err
	}
	v.player = p
	v.modTime, _ = prefabs.ModTime(v.name)
	v.frame = effect.Frame{Number: effect.NoFrame}
	v.last = time.Time{}
	return nil
}

func (v *Viewer) Title() string {
	return v.player.Effect().Name
}

// Watch starts hot reload of the effect file, the scripts directory and the
// texture directory.
func (v *Viewer) Watch() error {
	dirs := []string{filepath.Join("prefabs", "effects"), filepath.Join("prefabs", "scripts")}
	if filepath.Ext(v.name) != "" {
		dirs = append(dirs, filepath.Dir(v.name))
	}
	var existing []string
	for _, d := range dirs {
		if isDir(d) {
			existing = append(existing, d)
		}
	}
	if len(existing) == 0 {
		return errors.New("no effect or script directory on disk")
	}
	w, err := prefabs.NewWatcher(existing...)
	if err != nil {
		return err
	}
	v.watcher = w
	return nil
}

func (v *Viewer) Close() error {
	if v.watcher != nil {
		return v.watcher.Close()
	}
	return nil
}

func (v *Viewer) Update() error {
	v.pollWatcher()
	v.handleKeys()

	now := time.Now()
	if v.last.IsZero() {
		v.last = now
	}
	elapsed := now.Sub(v.last).Milliseconds()
	v.last = v.last.Add(time.Duration(elapsed) * time.Millisecond)
	if v.paused {
		if v.ui != nil {
			v.ui.Update()
		}
		return nil
	}

	v.frame, v.frameErr = v.player.Tick(elapsed)
	return nil
}

func (v *Viewer) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if v.paused {
			v.resume()
		} else {
			v.paused = true
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		v.step()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		v.copyFrame()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		v.debug = !v.debug
	}
}

func (v *Viewer) resume() {
	v.paused = false
	v.last = time.Time{}
}

func (v *Viewer) reset() {
	v.player.Reset()
	v.frame = effect.Frame{Number: effect.NoFrame}
	v.frameErr = nil
	v.last = time.Time{}
}

// step pauses and shows the next frame.
func (v *Viewer) step() {
	v.paused = true
	next := v.player.LastFrame() + 1
	if err := v.player.Seek(next); err != nil {
		log.Printf("strview: seek %d: %v", next, err)
	}
	v.frame, v.frameErr = v.player.Peek()
}

func (v *Viewer) copyFrame() {
	if !v.clipboard {
		v.setStatus("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(dumpFrame(v.Title(), v.frame)))
	v.setStatus(fmt.Sprintf("copied frame %d", v.frame.Number))
}

func (v *Viewer) pollWatcher() {
	if v.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-v.watcher.Events:
			if !ok {
				v.watcher = nil
				return
			}
			v.reload(path)
		case err, ok := <-v.watcher.Errors:
			if !ok {
				v.watcher = nil
				return
			}
			log.Printf("strview: watch: %v", err)
		default:
			return
		}
	}
}

func (v *Viewer) reload(path string) {
	// Only our own effect file or a script triggers a reload.
	if filepath.Ext(path) != ".tengo" {
		if mt, ok := prefabs.ModTime(v.name); !ok || !mt.After(v.modTime) {
			return
		}
	}
	if err := v.load(); err != nil {
		log.Printf("strview: reload after %s: %v", path, err)
		v.setStatus("reload failed, see log")
		return
	}
	v.textures.Forget()
	v.setStatus("reloaded " + filepath.Base(path))
}

func (v *Viewer) setStatus(s string) {
	v.status = s
	v.statusT = time.Now()
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	bg := color.Color(colornames.Black)
	if v.cfg.Background != nil {
		bg = v.cfg.Background
	}
	screen.Fill(bg)

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	render.DrawFrame(screen, v.frame, render.CenteredOptions(w, h, v.cfg.Scale))

	ebitenutil.DebugPrint(screen, v.overlay(time.Now()))
	if v.paused && v.ui != nil {
		v.ui.Draw(screen)
	}
}

// overlay is the text printed over the frame.
func (v *Viewer) overlay(now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  frame %d/%d  FPS %.1f", v.Title(), v.frame.Number, v.player.LoopLength(), ebiten.ActualFPS())
	if v.status != "" && now.Sub(v.statusT) < 3*time.Second {
		b.WriteString("\n" + v.status)
	}
	if v.debug {
		b.WriteString("\n" + dumpFrame(v.Title(), v.frame))
		if v.frameErr != nil {
			b.WriteString("\nerrors: " + v.frameErr.Error())
		}
		if v.cache != nil {
			b.WriteString("\ntextures: " + strings.Join(v.cache.Names(), ", "))
		}
	}
	return b.String()
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.cfg.Width, v.cfg.Height
}
