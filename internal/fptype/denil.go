package fptype

import "math"

// Reserved floating-point bit patterns (spec §6 "Numeric NIL sentinels",
// SPEC_FULL.md item C.4). These are quiet-NaN payloads chosen to be
// distinguishable from any NaN a caller could construct through ordinary
// arithmetic, matching the original implementation's published
// FPTA_DENIL_FP32/FPTA_QSNAN_FP32 bit patterns exactly; the float64 variants
// are this repository's own native analogues (the original only publishes a
// float32 pattern and its promotion into a float64 slot, not a distinct
// native float64 sentinel).
const (
	denilFloat32Bits    uint32 = 0xFFFFFFFF
	quietNaNFloat32Bits uint32 = 0xFFFFFFFE

	denilFloat64Bits    uint64 = 0xFFFFFFFFFFFFFFFF
	quietNaNFloat64Bits uint64 = 0xFFFFFFFFFFFFFFFE
)

// DenilFloat32 is the reserved NaN payload representing NIL for a float32
// column; never produced by ordinary float arithmetic.
func DenilFloat32() float32 { return math.Float32frombits(denilFloat32Bits) }

// QuietNaNFloat32 is a second reserved NaN payload, distinct from
// DenilFloat32, available to callers that need to tell "this NaN is our
// NIL marker" apart from "this NaN is some other reserved value".
func QuietNaNFloat32() float32 { return math.Float32frombits(quietNaNFloat32Bits) }

// DenilFloat64 is the float64 analogue of DenilFloat32.
func DenilFloat64() float64 { return math.Float64frombits(denilFloat64Bits) }

// QuietNaNFloat64 is the float64 analogue of QuietNaNFloat32.
func QuietNaNFloat64() float64 { return math.Float64frombits(quietNaNFloat64Bits) }

// IsDenil32 reports whether f is exactly the reserved float32 NIL payload.
func IsDenil32(f float32) bool { return math.Float32bits(f) == denilFloat32Bits }

// IsDenil64 reports whether f is exactly the reserved float64 NIL payload.
func IsDenil64(f float64) bool { return math.Float64bits(f) == denilFloat64Bits }
