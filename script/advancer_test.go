package script

import (
	"io"
	"log"
	"testing"

	"github.com/ADHSoft/ro-str-viewer/effect"
	"github.com/ADHSoft/ro-str-viewer/prefabs"
)

func quiet(a *Advancer) *Advancer {
	a.logger = log.New(io.Discard, "", 0)
	return a
}

func mustAdvancer(t *testing.T, src string) *Advancer {
	t.Helper()
	a, err := NewAdvancer("test", []byte(src), 60, 40)
	if err != nil {
		t.Fatalf("NewAdvancer: %v", err)
	}
	return quiet(a)
}

func TestAdvancerFrames(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		elapsed []int64
		want    []int
	}{
		{
			name:    "step",
			src:     `frame = last + 1`,
			elapsed: []int64{0, 16, 16, 16},
			want:    []int{0, 1, 2, 3},
		},
		{
			name:    "uses_globals",
			src:     `frame = last + elapsed * fps / 1000`,
			elapsed: []int64{0, 50, 1000},
			want:    []int{0, 3, 63},
		},
		{
			name:    "float_result_truncates",
			src:     `frame = last + 1.75`,
			elapsed: []int64{0, 0, 0},
			want:    []int{0, 1, 2},
		},
		{
			name:    "never_goes_backwards",
			src:     `frame = 0`,
			elapsed: []int64{0, 10, 10},
			want:    []int{0, 0, 0},
		},
		{
			name:    "state_survives_calls",
			src:     `n := is_undefined(state["n"]) ? 0 : state["n"]; state["n"] = n + 1; frame = n * 10`,
			elapsed: []int64{0, 0, 0, 0},
			want:    []int{0, 0, 10, 20},
		},
		{
			name:    "frame_unset_steps",
			src:     `x := 1`,
			elapsed: []int64{0, 0, 0},
			want:    []int{0, 1, 2},
		},
		{
			name:    "runtime_error_steps",
			src:     `frame = last / (elapsed - elapsed)`,
			elapsed: []int64{0, 5},
			want:    []int{0, 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := mustAdvancer(t, tc.src)
			last := effect.NoFrame
			for i, e := range tc.elapsed {
				got := a.FrameToRender(e, last)
				if got != tc.want[i] {
					t.Fatalf("call %d: got %d, want %d", i, got, tc.want[i])
				}
				last = got
			}
		})
	}
}

func TestAdvancerCompileError(t *testing.T) {
	if _, err := NewAdvancer("broken", []byte(`frame = (`), 60, 10); err == nil {
		t.Fatalf("expected a compile error")
	}
}

func TestAdvancerResetDropsState(t *testing.T) {
	a := mustAdvancer(t, `n := is_undefined(state["n"]) ? 1 : state["n"] + 1; state["n"] = n; frame = last + n`)
	a.FrameToRender(0, effect.NoFrame)
	if got := a.FrameToRender(0, 0); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := a.FrameToRender(0, 1); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
	a.Reset()
	if got := a.FrameToRender(0, 3); got != 4 {
		t.Fatalf("after Reset: got %d, want 4", got)
	}
}

func TestEmbeddedScripts(t *testing.T) {
	tests := []struct {
		name    string
		elapsed []int64
		want    []int
	}{
		{"halfspeed", []int64{0, 16, 16, 16, 16}, []int{0, 1, 1, 2, 2}},
		{"realtime", []int64{0, 10, 10, 5000}, []int{0, 0, 1, 61}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := LoadAdvancer(tc.name, 60, 40)
			if err != nil {
				t.Fatalf("LoadAdvancer: %v", err)
			}
			quiet(a)
			last := effect.NoFrame
			for i, e := range tc.elapsed {
				got := a.FrameToRender(e, last)
				if got != tc.want[i] {
					t.Fatalf("call %d: got %d, want %d", i, got, tc.want[i])
				}
				last = got
			}
		})
	}
}

func TestBuildAdvancer(t *testing.T) {
	e := &effect.Effect{FPS: 30, FrameCount: 10}
	tests := []struct {
		name    string
		spec    prefabs.AdvancerSpec
		wantErr bool
		check   func(t *testing.T, a effect.FrameAdvancer)
	}{
		{
			name: "default_is_fixed_at_effect_rate",
			spec: prefabs.AdvancerSpec{},
			check: func(t *testing.T, a effect.FrameAdvancer) {
				f, ok := a.(*effect.FixedRateAdvancer)
				if !ok || f.FPS != 30 {
					t.Fatalf("got %#v, want fixed at 30 fps", a)
				}
			},
		},
		{
			name: "fixed_options",
			spec: prefabs.AdvancerSpec{Kind: "fixed", Options: map[string]any{"fps": 12, "max_step": 3}},
			check: func(t *testing.T, a effect.FrameAdvancer) {
				f, ok := a.(*effect.FixedRateAdvancer)
				if !ok || f.FPS != 12 || f.MaxStep != 3 {
					t.Fatalf("got %#v", a)
				}
			},
		},
		{
			name: "step",
			spec: prefabs.AdvancerSpec{Kind: "Step"},
			check: func(t *testing.T, a effect.FrameAdvancer) {
				if _, ok := a.(effect.StepAdvancer); !ok {
					t.Fatalf("got %#v, want StepAdvancer", a)
				}
			},
		},
		{
			name: "script",
			spec: prefabs.AdvancerSpec{Kind: "script", Options: map[string]any{"script": "halfspeed"}},
			check: func(t *testing.T, a effect.FrameAdvancer) {
				if _, ok := a.(*Advancer); !ok {
					t.Fatalf("got %#v, want *Advancer", a)
				}
			},
		},
		{name: "script_without_name", spec: prefabs.AdvancerSpec{Kind: "script"}, wantErr: true},
		{name: "unknown", spec: prefabs.AdvancerSpec{Kind: "warp"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := BuildAdvancer(tc.spec, e)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.check(t, a)
		})
	}
}
