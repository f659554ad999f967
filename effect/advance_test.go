package effect

import "testing"

func TestStepAdvancer(t *testing.T) {
	var a StepAdvancer
	if got := a.FrameToRender(1000, NoFrame); got != 0 {
		t.Fatalf("first frame: got %d, want 0", got)
	}
	if got := a.FrameToRender(0, 4); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestFixedRateAdvancer(t *testing.T) {
	tests := []struct {
		name    string
		fps     int
		maxStep int
		elapsed []int64
		want    []int
	}{
		{
			name:    "sixty_fps_exact",
			fps:     60,
			elapsed: []int64{0, 50, 50, 1000},
			want:    []int{0, 3, 6, 66},
		},
		{
			name:    "carries_remainder",
			fps:     60,
			elapsed: []int64{0, 10, 10, 10, 10},
			want:    []int{0, 0, 1, 1, 2},
		},
		{
			name:    "max_step_caps_jump",
			fps:     60,
			maxStep: 2,
			elapsed: []int64{0, 1000, 16, 17},
			want:    []int{0, 2, 2, 3},
		},
		{
			name:    "negative_elapsed_holds",
			fps:     30,
			elapsed: []int64{0, 100, -500},
			want:    []int{0, 3, 3},
		},
		{
			name:    "zero_fps_defaults",
			fps:     0,
			elapsed: []int64{0, 1000},
			want:    []int{0, DefaultFPS},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewFixedRateAdvancer(tc.fps, tc.maxStep)
			last := NoFrame
			for i, e := range tc.elapsed {
				got := a.FrameToRender(e, last)
				if got != tc.want[i] {
					t.Fatalf("call %d (elapsed %d): got %d, want %d", i, e, got, tc.want[i])
				}
				if got < last {
					t.Fatalf("call %d: went backwards from %d to %d", i, last, got)
				}
				last = got
			}
		})
	}
}

func TestFixedRateAdvancerReset(t *testing.T) {
	a := NewFixedRateAdvancer(60, 0)
	a.FrameToRender(0, NoFrame)
	a.FrameToRender(10, 0) // 600 frame-ms carried
	a.Reset()
	if got := a.FrameToRender(10, 0); got != 0 {
		t.Fatalf("carry survived Reset: got %d, want 0", got)
	}
}
