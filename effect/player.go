package effect

import (
	"errors"
	"log"
)

// Frame is the output of one tick.
type Frame struct {
	Number int
	// Looped is set on the tick that wrapped past the end of the effect.
	Looped bool
	Draws  []DrawDescriptor
}

// Player drives one playback of an Effect. It is not safe for concurrent
// use; give every simultaneously playing effect its own Player. The Effect
// itself is only read and may be shared.
type Player struct {
	effect   *Effect
	loop     int
	advancer FrameAdvancer
	textures TextureProvider
	logger   *log.Logger

	cursors []Cursor
	last    int
}

// PlayerOption configures a Player in NewPlayer.
type PlayerOption func(*Player)

// WithAdvancer sets the frame advance policy. The default renders one frame
// per tick.
func WithAdvancer(a FrameAdvancer) PlayerOption {
	return func(p *Player) {
		if a != nil {
			p.advancer = a
		}
	}
}

// WithTextures makes every textured descriptor carry a resolved handle.
func WithTextures(tp TextureProvider) PlayerOption {
	return func(p *Player) {
		p.textures = tp
	}
}

// WithLogger sets where per-layer failures and warnings are logged.
func WithLogger(l *log.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPlayer validates e and returns a Player positioned before frame 0.
func NewPlayer(e *Effect, opts ...PlayerOption) (*Player, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	p := &Player{
		effect:   e,
		loop:     e.LoopLength(),
		advancer: StepAdvancer{},
		logger:   log.Default(),
		cursors:  make([]Cursor, len(e.Layers)),
		last:     NoFrame,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resetCursors()
	return p, nil
}

// Effect returns the effect being played.
func (p *Player) Effect() *Effect { return p.effect }

// LoopLength is the number of frames in one loop.
func (p *Player) LoopLength() int { return p.loop }

// LastFrame returns the frame rendered by the previous tick, or NoFrame.
func (p *Player) LastFrame() int { return p.last }

// Cursor returns a copy of the cursor of layer i.
func (p *Player) Cursor(i int) Cursor { return p.cursors[i] }

// Reset rewinds playback to before frame 0.
func (p *Player) Reset() {
	p.resetCursors()
	p.last = NoFrame
	if r, ok := p.advancer.(Resetter); ok {
		r.Reset()
	}
}

func (p *Player) resetCursors() {
	for i := range p.cursors {
		p.cursors[i].Reset()
	}
}

// Tick advances playback by elapsedMillis and returns the descriptors to
// draw, back to front. A layer that fails is left out of the frame and its
// error is joined into the returned error; the remaining layers are still
// drawn, so a non-nil error comes with a usable Frame.
func (p *Player) Tick(elapsedMillis int64) (Frame, error) {
	target := p.advancer.FrameToRender(elapsedMillis, p.last)
	if target < 0 {
		target = 0
	}
	f := Frame{Number: target}
	if target >= p.loop {
		p.resetCursors()
		target %= p.loop
		f.Number = target
		f.Looped = true
	}

	var errs []error
	for i := range p.effect.Layers {
		d, ok, err := p.renderLayer(i, target)
		if err != nil {
			p.logger.Printf("effect: %s: skipping layer %d at frame %d: %v", p.effect.Name, i, target, err)
			errs = append(errs, err)
			continue
		}
		if ok {
			f.Draws = append(f.Draws, d)
		}
	}
	p.last = target
	return f, errors.Join(errs...)
}

// Seek rewinds and replays one frame per tick up to frame, so the cursors
// end up where sequential playback would have left them.
func (p *Player) Seek(frame int) error {
	if frame < 0 {
		frame = 0
	}
	frame %= p.loop
	p.Reset()
	var errs []error
	for n := 0; n <= frame; n++ {
		for i := range p.effect.Layers {
			if err := p.cursors[i].Advance(i, p.effect.Layers[i].Keyframes, n); err != nil {
				errs = append(errs, err)
			}
		}
	}
	p.last = frame
	return errors.Join(errs...)
}

// Peek resolves the current frame again without advancing.
func (p *Player) Peek() (Frame, error) {
	if p.last == NoFrame {
		return Frame{Number: NoFrame}, nil
	}
	f := Frame{Number: p.last}
	var errs []error
	for i := range p.effect.Layers {
		c := p.cursors[i]
		if !c.Active() {
			continue
		}
		d, err := p.describe(i, c, p.last)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f.Draws = append(f.Draws, d)
	}
	return f, errors.Join(errs...)
}

func (p *Player) renderLayer(i, target int) (DrawDescriptor, bool, error) {
	layer := &p.effect.Layers[i]
	if err := p.cursors[i].Advance(i, layer.Keyframes, target); err != nil {
		return DrawDescriptor{}, false, err
	}
	c := p.cursors[i]
	if !c.Active() {
		return DrawDescriptor{}, false, nil
	}
	d, err := p.describe(i, c, target)
	if err != nil {
		return DrawDescriptor{}, false, err
	}
	return d, true, nil
}

// describe builds the descriptor for layer i from cursor c. It reads the
// cursor but never changes it, so a failed texture lookup is retried from
// the same keyframes on the next tick.
func (p *Player) describe(i int, c Cursor, target int) (DrawDescriptor, error) {
	layer := &p.effect.Layers[i]
	base := layer.Keyframes[c.Base]
	var morph *KeyFrame
	if c.Morph != NoFrame {
		morph = &layer.Keyframes[c.Morph]
	}

	r := Interpolate(i, base, morph, target)
	if r.NegativeDelta {
		p.logger.Printf("effect: %s: layer %d: morph keyframe %d lies after frame %d", p.effect.Name, i, c.Morph, target)
	}

	idx, err := ResolveAtlasIndex(base, target, layer.AtlasSize())
	if err != nil {
		return DrawDescriptor{}, err
	}

	d := DrawDescriptor{
		Layer:      i,
		Color:      toNRGBA(r.Color),
		Quad:       r.Quad,
		UV:         r.UV,
		Position:   r.Position,
		Rotation:   r.Rotation,
		AtlasIndex: idx,
		Texture:    layer.Textures[idx],
		SrcBlend:   base.SrcBlend,
		DstBlend:   base.DstBlend,
		Textured:   r.Textured,
		Depth:      LayerDepth * float64(i),
	}
	if d.Textured && p.textures != nil {
		h, err := p.textures.Resolve(i, idx, d.Texture)
		if err != nil {
			return DrawDescriptor{}, &TextureResolutionError{Layer: i, AtlasIndex: idx, Err: err}
		}
		d.Handle = h
	}
	return d, nil
}
