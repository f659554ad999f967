package effect

// FrameAdvancer decides which frame a tick renders. elapsedMillis is the
// time since the previous tick and last is the frame that tick rendered, or
// NoFrame before the first tick and after a reset. Implementations return 0
// for NoFrame and never go below last otherwise; folding results that run
// past the loop length is the Player's job.
type FrameAdvancer interface {
	FrameToRender(elapsedMillis int64, last int) int
}

// Resetter is implemented by advancers that carry state between ticks.
// Player.Reset calls it.
type Resetter interface {
	Reset()
}

// StepAdvancer renders one frame per tick regardless of time.
type StepAdvancer struct{}

func (StepAdvancer) FrameToRender(_ int64, last int) int {
	if last == NoFrame {
		return 0
	}
	return last + 1
}

// FixedRateAdvancer advances at FPS frames per second of elapsed time.
// Time that does not add up to a whole frame is carried to the next call.
type FixedRateAdvancer struct {
	FPS int
	// MaxStep caps how many frames one call may advance. Skipping frames
	// can step over keyframes, so viewers usually keep this small. Zero
	// means no cap.
	MaxStep int

	carry int64 // elapsed frame-milliseconds not yet turned into frames
}

// NewFixedRateAdvancer returns an advancer running at fps, or DefaultFPS
// when fps is not positive.
func NewFixedRateAdvancer(fps, maxStep int) *FixedRateAdvancer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &FixedRateAdvancer{FPS: fps, MaxStep: maxStep}
}

func (a *FixedRateAdvancer) FrameToRender(elapsedMillis int64, last int) int {
	if last == NoFrame {
		a.carry = 0
		return 0
	}
	if elapsedMillis < 0 {
		elapsedMillis = 0
	}
	fps := int64(a.FPS)
	if fps <= 0 {
		fps = DefaultFPS
	}

	a.carry += elapsedMillis * fps
	steps := a.carry / 1000
	a.carry %= 1000
	if a.MaxStep > 0 && steps > int64(a.MaxStep) {
		steps = int64(a.MaxStep)
		a.carry = 0
	}
	return last + int(steps)
}

func (a *FixedRateAdvancer) Reset() {
	a.carry = 0
}
