// Package probe extracts codec, duration, resolution, and frame-rate
// metadata from local media files via ffprobe.
//
// Probe failures are policy, not errors: a file ffprobe cannot read still
// yields a Result, with every underivable field set to its unknown terminal
// value. The builder records those values verbatim; nothing downstream may
// coerce them back to numbers.
package probe
