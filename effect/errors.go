package effect

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("effect: invalid configuration")

// ConfigurationError reports an effect that cannot be played at all. It is
// returned before playback starts and retrying will not help.
type ConfigurationError struct {
	Layer  int // -1 when the problem is not tied to a layer
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Layer < 0 {
		return fmt.Sprintf("effect: configuration: %s", e.Reason)
	}
	return fmt.Sprintf("effect: configuration: layer %d: %s", e.Layer, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErr(layer int, format string, args ...any) error {
	return &ConfigurationError{Layer: layer, Reason: fmt.Sprintf(format, args...)}
}

// UnknownKeyframeKindError is returned when a scan reaches a keyframe that is
// neither a base nor a morph frame. Only the affected layer is skipped for
// the tick.
type UnknownKeyframeKindError struct {
	Layer int
	Index int
	Kind  KeyframeKind
}

func (e *UnknownKeyframeKindError) Error() string {
	return fmt.Sprintf("effect: layer %d: keyframe %d has unknown kind %d", e.Layer, e.Index, int(e.Kind))
}

// TextureResolutionError wraps a TextureProvider failure. The layer is
// skipped for the tick and retried on the next one.
type TextureResolutionError struct {
	Layer      int
	AtlasIndex int
	Err        error
}

func (e *TextureResolutionError) Error() string {
	return fmt.Sprintf("effect: layer %d: resolve texture %d: %v", e.Layer, e.AtlasIndex, e.Err)
}

func (e *TextureResolutionError) Unwrap() error { return e.Err }
