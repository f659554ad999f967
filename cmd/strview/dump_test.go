package main

import (
	"image/color"
	"strings"
	"testing"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

func TestDumpFrame(t *testing.T) {
	f := effect.Frame{
		Number: 4,
		Looped: true,
		Draws: []effect.DrawDescriptor{
			{Layer: 0, Color: color.NRGBA{A: 255}, SrcBlend: effect.BlendSrcAlpha, DstBlend: effect.BlendInvSrcAlpha},
			{Layer: 2, Textured: true, AtlasIndex: 1, Texture: "flare1.bmp", SrcBlend: effect.BlendSrcAlpha, DstBlend: effect.BlendOne},
		},
	}
	got := dumpFrame("sparkle", f)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), got)
	}
	if lines[0] != "sparkle frame 4 (looped): 2 draws" {
		t.Fatalf("header %q", lines[0])
	}
	if !strings.Contains(lines[1], "untextured") || !strings.Contains(lines[2], "tex=1:flare1.bmp") {
		t.Fatalf("unexpected dump:\n%s", got)
	}
	if !strings.Contains(lines[2], "blend=src_alpha/one") {
		t.Fatalf("blend pair missing:\n%s", got)
	}
}
