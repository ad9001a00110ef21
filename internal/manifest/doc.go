// Package manifest defines the wire-format data model for the test-vector
// catalog: headers, video and playlist assets, the two manifest kinds, and
// the catalog root.
//
// Documents are content-addressed: every reference between documents is the
// SHA-256 digest of the referenced document's canonical serialized form.
// Encode therefore produces the byte-exact published representation (fixed
// key order, two-space indentation), and those bytes are what gets digested
// and stored. Changing the serialization changes every digest, so treat the
// struct field order and Encode settings as frozen.
//
// Probe-derived fields can legitimately be unknown; Duration and FrameRate
// are tagged unions that round-trip either a number or the literal string
// "unknown" without numeric coercion.
package manifest
