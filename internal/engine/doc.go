// Package engine turns a seed into a rendered composition.
//
// A Composition owns every piece of per-seed state: the RNG stream, the
// derived parameters, the music clock, the event queue and the scheduler.
// Nothing is shared between compositions, so independent seeds can be
// rendered on separate goroutines.
//
// Rendering is a single-threaded, sample-accurate walk over the segment:
//
//  1. New derives parameters from the seed and builds the queue.
//  2. Render (or repeated Scheduler.Process calls) advances step by step.
//  3. At the first sample of each step, every queued event stamped with that
//     step's start is dispatched to the voice bank, in queue order.
//  4. Voice output is pulled block-wise between step boundaries.
//
// DETERMINISM:
//
// The RNG is drawn in a fixed order: parameter derivation first, then the
// draws made by melody, mid and bass dispatch in queue order. Identical
// seeds and options therefore produce identical queues, triggers and
// timelines. No wall-clock time or map iteration is involved.
package engine
