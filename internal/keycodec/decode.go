package keycodec

import (
	"math"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
)

// KeyToValue is the inverse of ValueToKey where the encoding is lossless. A
// shoved (oversized) key cannot be inverted — spec §4.1 only guarantees
// equality/ordering for those, not round-trip — and is returned as a
// fptype.VShoved value carrying the raw bytes.
func KeyToValue(kind fptype.IndexKind, ctype fptype.ColumnType, key []byte) (fptype.Value, error) {
	if IsShoved(key) {
		return fptype.Shoved(append([]byte{}, key...)), nil
	}
	if !kind.IsOrdered() {
		// Unordered (hashed) keys carry no recoverable value.
		return fptype.Shoved(append([]byte{}, key...)), nil
	}
	switch {
	case ctype.Base() == fptype.String || ctype.Base() == fptype.Opaque:
		return decodeBytesLike(kind, ctype, key)
	case ctype.Base() == fptype.Fixed96, ctype.Base() == fptype.Fixed128,
		ctype.Base() == fptype.Fixed160, ctype.Base() == fptype.Fixed256:
		return decodeFixedBinary(kind, ctype, key)
	case ctype.Base() == fptype.Datetime:
		return decodeDatetime(kind, key)
	case ctype.IsNumeric():
		return decodeNumeric(kind, ctype, key)
	default:
		return fptype.Value{}, fptaerr.New(fptaerr.EType, op+".KeyToValue", ctype.String())
	}
}

func decodeNumeric(kind fptype.IndexKind, ctype fptype.ColumnType, key []byte) (fptype.Value, error) {
	width, _ := ctype.FixedWidth()
	if len(key) != width {
		return fptype.Value{}, fptaerr.New(fptaerr.DatalenMismatch, op+".decodeNumeric", ctype.String())
	}
	ordkey := getOrdKey(key, kind.IsObverse())
	if kind.IsNullable() && IsSentinelOrdKey(ordkey, width, kind.IsObverse()) {
		return fptype.NullValue(), nil
	}
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		return fptype.Uint(ordkey), nil
	case fptype.Int32:
		return fptype.Int(int64(ordkey) + math.MinInt32), nil
	case fptype.Int64:
		return fptype.Int(int64(ordkey ^ (uint64(1) << 63))), nil
	case fptype.Float32:
		return fptype.Float(float64(math.Float32frombits(unFloatOrdKey32(uint32(ordkey))))), nil
	case fptype.Float64:
		return fptype.Float(math.Float64frombits(unFloatOrdKey64(ordkey))), nil
	default:
		return fptype.Value{}, fptaerr.New(fptaerr.EType, op+".decodeNumeric", ctype.String())
	}
}

func unFloatOrdKey32(ordkey uint32) uint32 {
	if ordkey&0x80000000 != 0 {
		return ordkey &^ 0x80000000
	}
	return ^ordkey
}

func unFloatOrdKey64(ordkey uint64) uint64 {
	const signBit = uint64(1) << 63
	if ordkey&signBit != 0 {
		return ordkey &^ signBit
	}
	return ^ordkey
}

func decodeDatetime(kind fptype.IndexKind, key []byte) (fptype.Value, error) {
	if len(key) != 8 {
		return fptype.Value{}, fptaerr.New(fptaerr.DatalenMismatch, op+".decodeDatetime", "datetime")
	}
	ordkey := getOrdKey(key, kind.IsObverse())
	if kind.IsNullable() && IsSentinelOrdKey(ordkey, 8, kind.IsObverse()) {
		return fptype.NullValue(), nil
	}
	return fptype.DatetimeValue(ordkey), nil
}

func decodeFixedBinary(kind fptype.IndexKind, ctype fptype.ColumnType, key []byte) (fptype.Value, error) {
	width, _ := ctype.FixedWidth()
	if len(key) != width {
		return fptype.Value{}, fptaerr.New(fptaerr.DatalenMismatch, op+".decodeFixedBinary", ctype.String())
	}
	if kind.IsNullable() && isFixedSentinel(key, kind.IsObverse()) {
		return fptype.NullValue(), nil
	}
	return fptype.Bin(append([]byte{}, key...)), nil
}

func decodeBytesLike(kind fptype.IndexKind, ctype fptype.ColumnType, key []byte) (fptype.Value, error) {
	wrap := func(b []byte) fptype.Value {
		if ctype.Base() == fptype.String {
			return fptype.Str(string(b))
		}
		return fptype.Bin(b)
	}
	if !kind.IsNullable() {
		return wrap(append([]byte{}, key...)), nil
	}
	if len(key) == 0 {
		return fptype.NullValue(), nil
	}
	if kind.IsObverse() {
		if key[0] != NotNilPrefixByte {
			return fptype.Value{}, fptaerr.New(fptaerr.IndexCorrupted, op+".decodeBytesLike", "missing present-marker")
		}
		return wrap(append([]byte{}, key[1:]...)), nil
	}
	if key[len(key)-1] != NotNilPrefixByte {
		return fptype.Value{}, fptaerr.New(fptaerr.IndexCorrupted, op+".decodeBytesLike", "missing present-marker")
	}
	return wrap(append([]byte{}, key[:len(key)-1]...)), nil
}
