package effect

// Cursor tracks the active base and morph keyframes of one layer as
// indices into that layer's keyframe slice. Indices only move forward until
// Reset.
type Cursor struct {
	Base  int
	Morph int
}

// NewCursor returns a cursor with nothing selected.
func NewCursor() Cursor {
	return Cursor{Base: NoFrame, Morph: NoFrame}
}

// Reset clears both indices.
func (c *Cursor) Reset() {
	c.Base = NoFrame
	c.Morph = NoFrame
}

// Active reports whether a base keyframe is selected, i.e. whether the layer
// has anything to draw.
func (c Cursor) Active() bool {
	return c.Base != NoFrame
}

// Advance scans keys forward from the last selected keyframe and selects the
// ones whose frame equals target. A base keyframe ends the current morph.
// The layer argument is only used to label errors.
//
// Once target has moved past the final keyframe of the layer, and that
// keyframe is the active base with no morph running, the base is cleared so
// a finished layer stops drawing until the next Reset.
func (c *Cursor) Advance(layer int, keys []KeyFrame, target int) error {
	found := false
	for i := max(c.Base, c.Morph) + 1; i < len(keys); i++ {
		k := keys[i]
		if k.Frame > target {
			break
		}
		if k.Frame < target {
			continue
		}
		switch k.Kind {
		case KindBase:
			c.Base = i
			c.Morph = NoFrame
		case KindMorph:
			c.Morph = i
		default:
			return &UnknownKeyframeKindError{Layer: layer, Index: i, Kind: k.Kind}
		}
		found = true
	}

	last := len(keys) - 1
	if !found && c.Morph == NoFrame && c.Base != NoFrame && c.Base == last && target > keys[last].Frame {
		c.Base = NoFrame
	}
	return nil
}
