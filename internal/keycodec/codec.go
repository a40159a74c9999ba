package keycodec

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
)

const op = "keycodec"

// ValueToKey implements spec §4.1's value_to_key: it encodes a single
// column value into its ordered or unordered key-byte representation,
// honoring the column's IndexKind (obverse/reverse, nullable, ordered) and
// ColumnType.
func ValueToKey(kind fptype.IndexKind, ctype fptype.ColumnType, v fptype.Value) ([]byte, error) {
	if !kind.IsOrdered() {
		if v.IsNull() && !kind.IsNullable() {
			return nil, fptaerr.New(fptaerr.ColumnMissing, op+".ValueToKey", ctype.String())
		}
		return encodeUnordered(ctype, v)
	}
	if !isCompatible(ctype, v) {
		return nil, fptaerr.New(fptaerr.EType, op+".ValueToKey", ctype.String())
	}
	var raw []byte
	var err error
	switch {
	case ctype.Base() == fptype.String || ctype.Base() == fptype.Opaque:
		raw, err = encodeBytesLike(kind, v)
	case ctype.Base() == fptype.Fixed96, ctype.Base() == fptype.Fixed128,
		ctype.Base() == fptype.Fixed160, ctype.Base() == fptype.Fixed256:
		raw, err = encodeFixedBinary(kind, ctype, v)
	case ctype.IsNumeric():
		raw, err = encodeNumeric(kind, ctype, v)
	case ctype.Base() == fptype.Datetime:
		raw, err = encodeDatetime(kind, v)
	default:
		return nil, fptaerr.New(fptaerr.EType, op+".ValueToKey", ctype.String())
	}
	if err != nil {
		return nil, err
	}
	return shoveIfOversized(raw, kind.IsObverse()), nil
}

// isCompatible implements the §4.1 value-kind/column-type compatibility
// table. A NIL value is always reported compatible here; the per-type
// encoders reject NIL for a non-nullable column with COLUMN_MISSING.
func isCompatible(ctype fptype.ColumnType, v fptype.Value) bool {
	if v.IsNull() {
		return true // nullability is checked by the caller via COLUMN_MISSING
	}
	base := ctype.Base()
	switch v.Kind {
	case fptype.VUint, fptype.VInt:
		switch base {
		case fptype.Uint16, fptype.Uint32, fptype.Uint64, fptype.Int32, fptype.Int64:
			return true
		}
		return false
	case fptype.VFloat:
		return base == fptype.Float32 || base == fptype.Float64
	case fptype.VDatetime:
		return base == fptype.Datetime
	case fptype.VString:
		return base == fptype.String
	case fptype.VBinary:
		return base == fptype.Opaque || base == fptype.Fixed96 ||
			base == fptype.Fixed128 || base == fptype.Fixed160 || base == fptype.Fixed256
	default:
		return false
	}
}

// --- numeric ---------------------------------------------------------------

// numericOrdKey converts v into an unsigned "order key" of the given byte
// width such that unsigned comparison of order keys reproduces the type's
// natural order (spec §4.1's bias/sign-magnitude transforms), and reports
// whether v was NIL.
func numericOrdKey(ctype fptype.ColumnType, v fptype.Value) (ordkey uint64, width int, isNil bool, err error) {
	base := ctype.Base()
	width, _ = ctype.FixedWidth()
	if v.IsNull() {
		return 0, width, true, nil
	}
	switch base {
	case fptype.Uint16:
		if v.U > numericMaxUnsigned(width) {
			return 0, width, false, fptaerr.New(fptaerr.EValue, op+".numericOrdKey", "uint16 overflow")
		}
		return v.U, width, false, nil
	case fptype.Uint32, fptype.Uint64:
		return v.U, width, false, nil
	case fptype.Int32:
		biased := int64(v.I) - math.MinInt32
		return uint64(biased), width, false, nil
	case fptype.Int64:
		// bias by subtracting MinInt64 without overflow: equivalent to
		// flipping the sign bit of the two's-complement representation.
		return uint64(v.I) ^ (uint64(1) << 63), width, false, nil
	case fptype.Float32:
		f := float32(v.F)
		if math.IsNaN(float64(f)) {
			return 0, width, false, fptaerr.New(fptaerr.EValue, op+".numericOrdKey", "NaN not permitted")
		}
		bits := uint64(math.Float32bits(f))
		return floatOrdKey32(uint32(bits)), width, false, nil
	case fptype.Float64:
		if math.IsNaN(v.F) {
			return 0, width, false, fptaerr.New(fptaerr.EValue, op+".numericOrdKey", "NaN not permitted")
		}
		return floatOrdKey64(math.Float64bits(v.F)), width, false, nil
	default:
		return 0, width, false, fptaerr.New(fptaerr.EType, op+".numericOrdKey", base.String())
	}
}

func numericMaxUnsigned(width int) uint64 {
	if width >= 8 {
		return math.MaxUint64
	}
	return uint64(1)<<(uint(width)*8) - 1
}

func floatOrdKey32(bits uint32) uint64 {
	if bits&0x80000000 != 0 {
		return uint64(^bits)
	}
	return uint64(bits | 0x80000000)
}

func floatOrdKey64(bits uint64) uint64 {
	if bits&(uint64(1)<<63) != 0 {
		return ^bits
	}
	return bits | (uint64(1) << 63)
}

// sentinelOrdKey returns the reserved order-key pattern representing NIL
// for a nullable numeric column, per direction: obverse reserves the
// top-of-range pattern (so NIL sorts first, ascending); reverse reserves
// the bottom-of-range pattern (so NIL sorts last, ascending). See
// SPEC_FULL.md / DESIGN.md for the derivation.
func sentinelOrdKey(width int, obverse bool) uint64 {
	if obverse {
		return numericMaxUnsigned(width)
	}
	return 0
}

// IsSentinelOrdKey reports whether ordkey is the reserved NIL pattern for
// the given width/direction — exported for internal/indexops comparators.
func IsSentinelOrdKey(ordkey uint64, width int, obverse bool) bool {
	return ordkey == sentinelOrdKey(width, obverse)
}

func encodeNumeric(kind fptype.IndexKind, ctype fptype.ColumnType, v fptype.Value) ([]byte, error) {
	ordkey, width, isNil, err := numericOrdKey(ctype, v)
	if err != nil {
		return nil, err
	}
	if isNil {
		if !kind.IsNullable() {
			return nil, fptaerr.New(fptaerr.ColumnMissing, op+".encodeNumeric", ctype.String())
		}
		ordkey = sentinelOrdKey(width, kind.IsObverse())
	}
	buf := make([]byte, width)
	putOrdKey(buf, ordkey, kind.IsObverse())
	return buf, nil
}

func encodeDatetime(kind fptype.IndexKind, v fptype.Value) ([]byte, error) {
	if v.IsNull() {
		if !kind.IsNullable() {
			return nil, fptaerr.New(fptaerr.ColumnMissing, op+".encodeDatetime", "datetime")
		}
		buf := make([]byte, 8)
		putOrdKey(buf, sentinelOrdKey(8, kind.IsObverse()), kind.IsObverse())
		return buf, nil
	}
	if v.Kind != fptype.VDatetime {
		return nil, fptaerr.New(fptaerr.EType, op+".encodeDatetime", "datetime")
	}
	buf := make([]byte, 8)
	putOrdKey(buf, v.U, kind.IsObverse())
	return buf, nil
}

func putOrdKey(buf []byte, ordkey uint64, obverse bool) {
	width := len(buf)
	full := make([]byte, 8)
	binary.BigEndian.PutUint64(full, ordkey)
	be := full[8-width:]
	if obverse {
		copy(buf, be)
		return
	}
	for i := 0; i < width; i++ {
		buf[i] = be[width-1-i]
	}
}

func getOrdKey(buf []byte, obverse bool) uint64 {
	width := len(buf)
	full := make([]byte, 8)
	if obverse {
		copy(full[8-width:], buf)
	} else {
		for i := 0; i < width; i++ {
			full[8-width+i] = buf[width-1-i]
		}
	}
	return binary.BigEndian.Uint64(full)
}

// --- fixed-width binary ------------------------------------------------------

func encodeFixedBinary(kind fptype.IndexKind, ctype fptype.ColumnType, v fptype.Value) ([]byte, error) {
	width, _ := ctype.FixedWidth()
	if v.IsNull() {
		if !kind.IsNullable() {
			return nil, fptaerr.New(fptaerr.ColumnMissing, op+".encodeFixedBinary", ctype.String())
		}
		buf := make([]byte, width)
		fillFixedSentinel(buf, kind.IsObverse())
		return buf, nil
	}
	if len(v.B) != width {
		return nil, fptaerr.New(fptaerr.DatalenMismatch, op+".encodeFixedBinary", ctype.String())
	}
	buf := make([]byte, width)
	copy(buf, v.B)
	if kind.IsNullable() && isFixedSentinel(buf, kind.IsObverse()) {
		return nil, fptaerr.New(fptaerr.EValue, op+".encodeFixedBinary", "value collides with NIL sentinel")
	}
	return buf, nil
}

// fixedSentinelByte is the byte pattern reserved for NIL fixed-binary
// values: all-0xFF for obverse (sorts first among same-width obverse keys,
// using the comparator's NIL-aware ordering), all-0x00 for reverse.
func fixedSentinelByte(obverse bool) byte {
	if obverse {
		return 0xFF
	}
	return 0x00
}

func fillFixedSentinel(buf []byte, obverse bool) {
	b := fixedSentinelByte(obverse)
	for i := range buf {
		buf[i] = b
	}
}

func isFixedSentinel(buf []byte, obverse bool) bool {
	b := fixedSentinelByte(obverse)
	for _, x := range buf {
		if x != b {
			return false
		}
	}
	return true
}

// --- string / opaque ---------------------------------------------------------

func encodeBytesLike(kind fptype.IndexKind, v fptype.Value) ([]byte, error) {
	if v.IsNull() {
		if !kind.IsNullable() {
			return nil, fptaerr.New(fptaerr.ColumnMissing, op+".encodeBytesLike", "string/opaque")
		}
		return []byte{}, nil // zero-length key represents NIL
	}
	if !kind.IsNullable() {
		return append([]byte{}, v.B...), nil
	}
	// Nullable: prepend (obverse) or append (reverse) the present-marker so
	// an empty non-NIL value is distinguishable from NIL.
	out := make([]byte, 0, len(v.B)+1)
	if kind.IsObverse() {
		out = append(out, NotNilPrefixByte)
		out = append(out, v.B...)
	} else {
		out = append(out, v.B...)
		out = append(out, NotNilPrefixByte)
	}
	return out, nil
}

// --- unordered ---------------------------------------------------------------

func encodeUnordered(ctype fptype.ColumnType, v fptype.Value) ([]byte, error) {
	if !isCompatible(ctype, v) {
		return nil, fptaerr.New(fptaerr.EType, op+".encodeUnordered", ctype.String())
	}
	h := hashValue(ctype, v)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, h)
	return buf, nil
}

// hashValue produces the 64-bit hash used for unordered indexes and as the
// mixing primitive for unordered composite accumulators (spec §4.1, §3).
func hashValue(ctype fptype.ColumnType, v fptype.Value) uint64 {
	if v.IsNull() {
		return absentMixConstant
	}
	switch v.Kind {
	case fptype.VUint:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.U)
		return xxhash.Sum64(b[:])
	case fptype.VInt:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v.I))
		return xxhash.Sum64(b[:])
	case fptype.VFloat:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.F))
		return xxhash.Sum64(b[:])
	case fptype.VDatetime:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.U)
		return xxhash.Sum64(b[:])
	default:
		return xxhash.Sum64(v.B)
	}
}

// absentMixConstant is the reserved accumulator contribution for a missing
// composite member / unordered NIL field (spec §3 "missing members
// XOR-rotate-mix a reserved absent constant").
const absentMixConstant uint64 = 0x9E3779B97F4A7C15 // golden-ratio constant, reserved

// --- oversized key shoving ----------------------------------------------------

// shoveIfOversized implements spec §4.1's oversized-key handling: keys
// longer than MaxKeylen are replaced by a ShovedKeylen-byte representation
// combining MaxKeylen bytes of the head or tail with a 64-bit hash of the
// remainder.
func shoveIfOversized(raw []byte, obverse bool) []byte {
	if len(raw) <= MaxKeylen {
		return raw
	}
	out := make([]byte, ShovedKeylen)
	if obverse {
		copy(out, raw[:MaxKeylen])
		h := xxhash.Sum64(raw[MaxKeylen:])
		binary.BigEndian.PutUint64(out[MaxKeylen:], h)
	} else {
		h := xxhash.Sum64(raw[:len(raw)-MaxKeylen])
		binary.BigEndian.PutUint64(out[:8], h)
		copy(out[8:], raw[len(raw)-MaxKeylen:])
	}
	return out
}

// IsShoved reports whether a key of this length is in the shoved
// (oversized) representation.
func IsShoved(key []byte) bool { return len(key) == ShovedKeylen }
