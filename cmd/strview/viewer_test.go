package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ADHSoft/ro-str-viewer/atlas"
	"github.com/ADHSoft/ro-str-viewer/effect"
	"github.com/ADHSoft/ro-str-viewer/prefabs"
)

func testViewer(t *testing.T) *Viewer {
	t.Helper()
	e, err := prefabs.LoadEffect("sparkle")
	if err != nil {
		t.Fatalf("LoadEffect: %v", err)
	}
	p, err := effect.NewPlayer(e)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return &Viewer{
		name:   "sparkle",
		cfg:    prefabs.DefaultViewerConfig(),
		player: p,
		frame:  effect.Frame{Number: effect.NoFrame},
	}
}

func action(t *testing.T, v *Viewer, label string) func() {
	t.Helper()
	for _, a := range v.pauseActions() {
		if a.label == label {
			return a.do
		}
	}
	t.Fatalf("no %q action", label)
	return nil
}

func TestPauseActions(t *testing.T) {
	v := testViewer(t)

	var labels []string
	for _, a := range v.pauseActions() {
		labels = append(labels, a.label)
	}
	if diff := cmp.Diff([]string{"Resume", "Step", "Reset"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	step := action(t, v, "Step")
	for want := 0; want < 3; want++ {
		step()
		if !v.paused {
			t.Fatalf("step did not pause")
		}
		if v.frame.Number != want || v.player.LastFrame() != want {
			t.Fatalf("after step: frame %d, last %d, want %d", v.frame.Number, v.player.LastFrame(), want)
		}
	}

	action(t, v, "Reset")()
	if v.player.LastFrame() != effect.NoFrame || v.frame.Number != effect.NoFrame {
		t.Fatalf("after reset: frame %d, last %d", v.frame.Number, v.player.LastFrame())
	}

	v.last = time.Unix(100, 0)
	action(t, v, "Resume")()
	if v.paused || !v.last.IsZero() {
		t.Fatalf("resume left paused=%v last=%v", v.paused, v.last)
	}
}

func TestOverlayListsCachedTextures(t *testing.T) {
	v := testViewer(t)
	v.cache = atlas.NewCache(atlas.Options{Dir: t.TempDir(), Placeholder: true})
	if _, err := v.cache.Get("flare0.bmp"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	v.step()

	if got := v.overlay(time.Now()); strings.Contains(got, "textures:") {
		t.Fatalf("texture list shown without debug:\n%s", got)
	}
	v.debug = true
	got := v.overlay(time.Now())
	if !strings.Contains(got, "textures: flare0.bmp") {
		t.Fatalf("overlay misses the cached textures:\n%s", got)
	}
	if !strings.HasPrefix(got, v.Title()+"  frame 0/") {
		t.Fatalf("overlay header %q", strings.SplitN(got, "\n", 2)[0])
	}
}
