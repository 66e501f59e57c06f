// Package harness runs conformance scenarios against the composition
// engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cafebabe_grid
//	description: "Kick on the downbeat, full grid exported"
//	seed: "0xCAFEBABE"
//	max_frames: 0          # optional, 0 renders the whole segment
//	assertions:
//	  - type: event_at
//	    time: 0
//	    event: kick
//	  - type: type_count
//	    event: hat
//	    count: 16
//	  - type: event_count
//	    count: 64
//	  - type: trigger_count
//	    kind: mid_fm
//	    count: 8
//	  - type: bpm
//	    value: 91.172187
//	  - type: round_trip
//
// # Execution
//
// Run builds the composition, exports the timeline document, parses it
// back, renders the segment into a voice.Recorder and logs the render and
// its triggers to a store. Assertions are evaluated against the document,
// the parsed timeline and the logged triggers.
//
// Every scenario runs against a fresh in-memory store with a
// deterministic seq clock and fixed render IDs, so two runs of the same
// scenario produce identical results. RunWithGolden additionally compares
// the exported document with testdata/golden/<name>.golden.
package harness
