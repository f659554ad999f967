package script

import (
	"fmt"
	"strings"

	"github.com/ADHSoft/ro-str-viewer/effect"
	"github.com/ADHSoft/ro-str-viewer/prefabs"
)

// BuildAdvancer turns a configured advance policy into a FrameAdvancer for e.
func BuildAdvancer(spec prefabs.AdvancerSpec, e *effect.Effect) (effect.FrameAdvancer, error) {
	switch strings.ToLower(spec.Kind) {
	case "", "fixed":
		opts, err := prefabs.DecodeOptions[prefabs.FixedRateOptions](spec.Options)
		if err != nil {
			return nil, fmt.Errorf("script: fixed options: %w", err)
		}
		fps := opts.FPS
		if fps <= 0 {
			fps = e.Rate()
		}
		return effect.NewFixedRateAdvancer(fps, opts.MaxStep), nil
	case "step":
		return effect.StepAdvancer{}, nil
	case "script":
		opts, err := prefabs.DecodeOptions[prefabs.ScriptOptions](spec.Options)
		if err != nil {
			return nil, fmt.Errorf("script: script options: %w", err)
		}
		if opts.Script == "" {
			return nil, fmt.Errorf("script: advancer kind script needs options.script")
		}
		return LoadAdvancer(opts.Script, e.Rate(), e.LoopLength())
	default:
		return nil, fmt.Errorf("script: unknown advancer kind %q", spec.Kind)
	}
}
