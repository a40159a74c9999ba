package indexops

import (
	"bytes"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/keycodec"
)

// CmpFunc matches the KV engine's comparator shape (see
// github.com/erigontech/erigon-lib's kv.CmpFunc), so mdbxkv/memkv can hand
// it straight to the engine as a custom dbi comparator.
type CmpFunc func(a, b []byte) int

// Comparator builds the ordering function for an index of the given kind
// and column type. For non-nullable columns it degenerates to a direct
// byte comparison, which is already order-preserving by construction
// (spec §4.1). For nullable columns it additionally recognizes the
// reserved NIL sentinel pattern and places it at the boundary the
// direction requires (first for obverse, last for reverse) rather than
// trusting the sentinel's raw byte position — see DESIGN.md for why this
// is a comparator concern and not a key-encoding one.
func Comparator(kind fptype.IndexKind, ctype fptype.ColumnType) CmpFunc {
	if !kind.IsOrdered() {
		return nil // unordered indexes never compare keys for range order
	}
	if !kind.IsNullable() || ctype.Base() == fptype.String || ctype.Base() == fptype.Opaque {
		// String/opaque NIL already sorts correctly as a zero-length key
		// under plain byte comparison (shorter-is-less, spec §4.1), so no
		// special casing is needed even when nullable.
		return bytes.Compare
	}
	width, fixed := ctype.FixedWidth()
	obverse := kind.IsObverse()
	return func(a, b []byte) int {
		if keycodec.IsShoved(a) || keycodec.IsShoved(b) {
			return bytes.Compare(a, b)
		}
		aNil := fixed && isNilKey(a, width, obverse)
		bNil := fixed && isNilKey(b, width, obverse)
		switch {
		case aNil && bNil:
			return 0
		case aNil:
			return nilOrder(obverse)
		case bNil:
			return -nilOrder(obverse)
		default:
			return bytes.Compare(a, b)
		}
	}
}

func isNilKey(key []byte, width int, obverse bool) bool {
	if len(key) != width {
		return false
	}
	b := fixedSentinelByteFor(obverse)
	for _, x := range key {
		if x != b {
			return false
		}
	}
	return true
}

// fixedSentinelByteFor matches keycodec's reserved fill byte for fixed-width
// NIL encodings (all-0xFF obverse, all-0x00 reverse); numeric ordkeys share
// the same all-ones/all-zero convention (see keycodec.sentinelOrdKey).
func fixedSentinelByteFor(obverse bool) byte {
	if obverse {
		return 0xFF
	}
	return 0x00
}

// nilOrder reports the comparator's verdict when the left operand is NIL
// and the right is a real value: obverse sorts NIL first (-1), reverse
// sorts NIL last (+1).
func nilOrder(obverse bool) int {
	if obverse {
		return -1
	}
	return 1
}
