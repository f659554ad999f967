// Package script lets a tengo program decide how fast an effect plays.
package script

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/ADHSoft/ro-str-viewer/effect"
	"github.com/ADHSoft/ro-str-viewer/prefabs"
)

// Advancer is an effect.FrameAdvancer backed by a tengo script.
//
// The script sees the globals elapsed (ms since the previous tick), last
// (previous frame), fps, frame_count and state (a map kept between calls),
// and assigns the frame to render to frame. The first frame is always 0,
// and a result below last is raised to last.
type Advancer struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	logger   *log.Logger
}

// NewAdvancer compiles src. name only labels log lines and errors.
func NewAdvancer(name string, src []byte, fps, frameCount int) (*Advancer, error) {
	s := tengo.NewScript(src)
	_ = s.Add("elapsed", int64(0))
	_ = s.Add("last", 0)
	_ = s.Add("no_frame", effect.NoFrame)
	_ = s.Add("fps", fps)
	_ = s.Add("frame_count", frameCount)
	_ = s.Add("frame", 0)
	_ = s.Add("state", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Advancer{
		name:     name,
		compiled: compiled,
		state:    newState(),
		logger:   log.Default(),
	}, nil
}

// LoadAdvancer compiles a script from the prefabs scripts directory.
func LoadAdvancer(name string, fps, frameCount int) (*Advancer, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", name, err)
	}
	return NewAdvancer(name, src, fps, frameCount)
}

func newState() *tengo.Map {
	return &tengo.Map{Value: map[string]tengo.Object{}}
}

func (a *Advancer) FrameToRender(elapsedMillis int64, last int) int {
	if last == effect.NoFrame {
		a.state = newState()
		return 0
	}

	frame, err := a.run(elapsedMillis, last)
	if err != nil {
		a.logger.Printf("script: %s: %v; stepping one frame", a.name, err)
		return last + 1
	}
	if frame < last {
		return last
	}
	return frame
}

// Reset drops the script state map.
func (a *Advancer) Reset() {
	a.state = newState()
}

func (a *Advancer) run(elapsedMillis int64, last int) (int, error) {
	if err := a.compiled.Set("elapsed", elapsedMillis); err != nil {
		return 0, err
	}
	if err := a.compiled.Set("last", last); err != nil {
		return 0, err
	}
	if err := a.compiled.Set("frame", tengo.UndefinedValue); err != nil {
		return 0, err
	}
	if err := a.compiled.Set("state", a.state); err != nil {
		return 0, err
	}
	if err := a.compiled.Run(); err != nil {
		return 0, err
	}

	v := a.compiled.Get("frame")
	switch v.ValueType() {
	case "int", "float":
		return v.Int(), nil
	default:
		return 0, fmt.Errorf("frame is %s, want int", v.ValueType())
	}
}
