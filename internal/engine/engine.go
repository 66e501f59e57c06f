package engine

import (
	"log/slog"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/music"
	"github.com/roach88/deafbeat/internal/rng"
	"github.com/roach88/deafbeat/internal/voice"
)

// Composition is the complete per-seed state: RNG, derived parameters,
// clock, queue and scheduler. Compositions share nothing with each other.
//
// Not safe for concurrent use; render distinct compositions on distinct
// goroutines instead.
type Composition struct {
	seed      uint64
	src       *rng.Source
	params    music.Params
	patterns  music.Patterns
	clock     music.Clock
	queue     *Queue
	scheduler *Scheduler
	quota     *FrameQuota

	sampleRate uint32
	maxEvents  int
	maxFrames  int
	bank       *voice.Bank
}

// Option configures a Composition.
type Option func(*Composition)

// WithSampleRate sets the sample rate in Hz.
//
// Default: 44100 (ir.SampleRate)
func WithSampleRate(sr uint32) Option {
	return func(c *Composition) {
		c.sampleRate = sr
	}
}

// WithMaxEvents sets the queue capacity. Events past the capacity are
// dropped silently.
//
// Default: 512 (DefaultMaxEvents)
func WithMaxEvents(n int) Option {
	return func(c *Composition) {
		c.maxEvents = n
	}
}

// WithMaxFrames caps the frames produced by Render.
//
// Default: 424000 (DefaultMaxFrames)
func WithMaxFrames(n int) Option {
	return func(c *Composition) {
		c.maxFrames = n
	}
}

// WithVoices routes triggers to bank. Without it the composition renders
// silence.
func WithVoices(bank *voice.Bank) Option {
	return func(c *Composition) {
		c.bank = bank
	}
}

// New derives a composition from seed.
//
// Parameter derivation consumes the first draws of the seed's stream; the
// scheduler continues on the same stream. New returns a *ConfigError for
// invalid options and never fails otherwise.
func New(seed uint64, opts ...Option) (*Composition, error) {
	c := &Composition{
		seed:       seed,
		sampleRate: ir.SampleRate,
		maxEvents:  DefaultMaxEvents,
		maxFrames:  DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	c.src = rng.New(seed)
	c.params = music.Derive(c.src)
	c.patterns = music.SelectPatterns(c.params)
	c.clock = music.NewClock(c.params.BPM, c.sampleRate)
	c.queue = NewQueue(c.maxEvents)
	pushed := music.Build(c.clock, c.patterns, c.queue)
	c.scheduler = NewScheduler(c.clock, c.params, c.queue, c.src, c.bank)
	c.quota = NewFrameQuota(uint64(c.maxFrames))

	slog.Debug("composition built",
		"seed", seed,
		"bpm", c.params.BPM,
		"step_samples", c.clock.StepSamples,
		"events", pushed,
		"dropped", c.queue.Dropped(),
	)
	return c, nil
}

func (c *Composition) validate() error {
	if c.sampleRate == 0 {
		return &ConfigError{Code: ErrCodeInvalidSampleRate, Option: "sample_rate", Message: "sample rate must be positive"}
	}
	if c.maxEvents < 1 {
		return &ConfigError{Code: ErrCodeInvalidMaxEvents, Option: "max_events", Message: "queue capacity must be at least 1"}
	}
	if c.maxFrames < 1 {
		return &ConfigError{Code: ErrCodeInvalidMaxFrames, Option: "max_frames", Message: "frame budget must be at least 1"}
	}
	return nil
}

// Render processes the rest of the segment, bounded by the frame budget,
// and returns the stereo buffers. A second call after Done returns empty
// buffers.
func (c *Composition) Render() (left, right []float32) {
	var want uint64
	if f, seg := c.scheduler.Frame(), uint64(c.clock.SegmentFrames); f < seg {
		want = seg - f
	}
	n := c.quota.Take(want)
	if n < want {
		slog.Warn("render truncated by frame budget",
			"seed", c.seed,
			"segment_frames", c.clock.SegmentFrames,
			"max_frames", c.quota.Limit(),
		)
	}
	left = make([]float32, n)
	right = make([]float32, n)
	c.scheduler.Process(left, right)

	slog.Debug("render complete",
		"seed", c.seed,
		"frames", c.scheduler.Frame(),
		"dispatched", c.scheduler.Dispatched(),
		"pending", c.queue.Len()-c.queue.Cursor(),
	)
	return left, right
}

// Done reports whether rendering has reached the end of the segment or the
// frame budget.
func (c *Composition) Done() bool {
	return c.scheduler.Frame() >= uint64(c.clock.SegmentFrames) || c.quota.Exhausted()
}

// Seed returns the seed the composition was built from.
func (c *Composition) Seed() uint64 { return c.seed }

// Params returns the derived parameters.
func (c *Composition) Params() music.Params { return c.params }

// Patterns returns the selected step patterns.
func (c *Composition) Patterns() music.Patterns { return c.patterns }

// Clock returns the music clock.
func (c *Composition) Clock() music.Clock { return c.clock }

// Queue returns the event queue.
func (c *Composition) Queue() *Queue { return c.queue }

// Scheduler returns the scheduler.
func (c *Composition) Scheduler() *Scheduler { return c.scheduler }

// Truncated reports whether any event was dropped or the frame budget cut
// the segment short.
func (c *Composition) Truncated() bool {
	return c.queue.Dropped() > 0 || c.quota.Limit() < uint64(c.clock.SegmentFrames)
}
