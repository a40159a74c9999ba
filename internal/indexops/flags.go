// Package indexops implements spec §4.4: per-index comparators, the
// translation from fptype.IndexKind into the underlying KV engine's dbi
// flags, and secondary-index maintenance (upsert/remove).
//
// The dbi flag names below are carried over unchanged from the KV engine's
// own vocabulary (this repository wires github.com/erigontech/mdbx-go,
// whose flag set matches libmdbx exactly) and from
// github.com/erigontech/erigon-lib's kv.TableFlags, which names the same
// bits for the same engine family (see erigon-lib/kv/tables.go and
// DESIGN.md).
package indexops

import "github.com/fpta-go/fpta/internal/fptype"

// DBIFlags mirrors the subset of libmdbx's MDBX_db_flags this store needs,
// kept as this repository's own type so internal/kvengine implementations
// (mdbxkv, memkv) can each map it onto their own native flag type.
type DBIFlags uint

const (
	Default    DBIFlags = 0x00
	ReverseKey DBIFlags = 0x02 // MDBX_REVERSEKEY
	DupSort    DBIFlags = 0x04 // MDBX_DUPSORT
	IntegerKey DBIFlags = 0x08 // MDBX_INTEGERKEY
	DupFixed   DBIFlags = 0x10 // MDBX_DUPFIXED
	IntegerDup DBIFlags = 0x20 // MDBX_INTEGERDUP
	ReverseDup DBIFlags = 0x40 // MDBX_REVERSEDUP
)

// DBIFlagsFor derives the dbi flags an index of the given kind/column-type
// should be opened with (spec §4.4's "index kind -> engine flags" mapping).
func DBIFlagsFor(kind fptype.IndexKind, ctype fptype.ColumnType) DBIFlags {
	var f DBIFlags
	if !kind.IsUnique() {
		f |= DupSort
		if kind.IsReverse() {
			f |= ReverseDup
		}
		if width, ok := ctype.FixedWidth(); ok && width <= 8 {
			f |= DupFixed
			if ctype.IsNumeric() && !ctype.IsFloat() {
				f |= IntegerDup
			}
		}
	}
	if kind.IsReverse() {
		f |= ReverseKey
	}
	if width, ok := ctype.FixedWidth(); ok && (width == 4 || width == 8) &&
		ctype.IsNumeric() && !ctype.IsFloat() && !kind.IsNullable() {
		// INTEGERKEY requires a fixed-width native key and is incompatible
		// with the nullable sentinel scheme's custom ordering (spec §4.4
		// "nullable indexes fall back to byte comparison").
		f |= IntegerKey
	}
	return f
}
