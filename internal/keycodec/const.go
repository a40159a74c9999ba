// Package keycodec implements spec §4.1: deterministic, order-preserving
// encoding of typed column values into byte keys, and the inverse decode
// where it is lossless.
package keycodec

// MaxKeylen is the KV engine's key-length ceiling (spec §4.1, §6): keys
// longer than this are "shoved" (head/tail-hashed) rather than stored whole.
// This mirrors libmdbx's practical default page-derived key limit.
const MaxKeylen = 511

// ShovedKeylen is the fixed length of an oversized-key representation:
// MaxKeylen bytes of head or tail plus an 8-byte hash of the rest.
const ShovedKeylen = MaxKeylen + 8

// NotNilPrefixByte is the present-marker prepended (obverse) or appended
// (reverse) to byte-string-like encodings so a zero-length NIL is
// distinguishable from a zero-length non-nullable empty string (spec §4.1).
const NotNilPrefixByte = 42

// CompositeAbsentByte is the single-byte marker substituted for a missing
// member of a unique-nullable composite index when at least one other
// member of the same row is present (spec §3/§4.1: "a single absent-marker
// byte is inserted"). It must sort before every present member's own
// encoding, including the byte-string present-marker above, so it is
// chosen below NotNilPrefixByte rather than equal to any per-type NIL
// sentinel value.
const CompositeAbsentByte = 0

// SchemaChecksumSeed and SchemaSignature are bound here (rather than only in
// internal/schema) because KeyCodec's composite-accumulator mixing uses the
// same hash family; see internal/schema for the stored-schema use.
const (
	SchemaSignature    uint32 = 1636722823
	SchemaChecksumSeed uint64 = 67413473
)
