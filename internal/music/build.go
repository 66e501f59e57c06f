package music

import "github.com/roach88/deafbeat/internal/ir"

// Appender receives events in construction order. Push reports whether the
// event was accepted; a full sink silently drops the rest.
type Appender interface {
	Push(ev ir.Event) bool
}

// Build expands the patterns over the whole segment into sink.
//
// Steps are visited in increasing order and, within a step, channels in the
// fixed priority order of ir.EventTypes. The resulting sequence is therefore
// sorted by time with a deterministic tie-break. Build returns the number of
// events the sink accepted.
func Build(clock Clock, patterns Patterns, sink Appender) int {
	pushed := 0
	for step := uint32(0); step < ir.TotalSteps; step++ {
		t := clock.StepStart(step)
		for _, typ := range ir.EventTypes {
			if !patterns[typ].Fires(step) {
				continue
			}
			if sink.Push(ir.Event{Time: t, Type: typ, Aux: Aux(typ)}) {
				pushed++
			}
		}
	}
	return pushed
}
