package rng

// Stream offsets XOR-ed into the base seed for each visual subsystem.
const (
	offsetVisual     = 0x00000000
	offsetParticle   = 0x7F4A7C15
	offsetShip       = 0x9E3779B9
	offsetBoss       = 0x6A09E667
	offsetProjectile = 0xBB67AE85
	offsetEffects    = 0x3C6EF372
)

// Streams holds independent per-subsystem seeds derived from one base seed.
// It is a plain value: callers create the Source they need, so no stream is
// ever shared between goroutines.
type Streams struct {
	Visual     uint32
	Particle   uint32
	Ship       uint32
	Boss       uint32
	Projectile uint32
	Effects    uint32
}

// NewStreams derives the visual stream seeds from base.
func NewStreams(base uint32) Streams {
	return Streams{
		Visual:     base ^ offsetVisual,
		Particle:   base ^ offsetParticle,
		Ship:       base ^ offsetShip,
		Boss:       base ^ offsetBoss,
		Projectile: base ^ offsetProjectile,
		Effects:    base ^ offsetEffects,
	}
}

// At returns a fresh Source for the given stream seed mixed with a frame
// index, so frame N can be drawn without drawing frames 0..N-1.
func At(streamSeed uint32, frame int) *Source {
	// Knuth multiplicative hash spreads adjacent frames across the state space.
	return New(uint64(streamSeed ^ (uint32(frame) * 2654435761)))
}
