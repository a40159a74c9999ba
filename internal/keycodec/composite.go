package keycodec

import (
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/rowcodec"
)

// Member describes one column participating in a composite index: its
// position in the owning row and its own (type, index-kind) descriptor.
type Member struct {
	ColumnIndex int
	Shove       fptype.Shove
}

// CompositeRowToKey implements spec §4.1's composite_row_to_key / §3's
// composite-key rules: ordered composites concatenate each member's
// encoded key in list order (obverse) or reverse list order (reverse);
// unordered composites mix each member into a single 64-bit accumulator.
//
// For a missing member: if kind is unique-nullable and at least one other
// member of the row is present, a single CompositeAbsentByte is inserted
// in that member's slot instead of its full per-type NIL sentinel
// encoding (spec.md §3 rule 1, §4.1's composite-key section); otherwise —
// not unique-nullable, or every member absent — the member's ordinary
// per-type NIL sentinel is substituted, so the composite still collates
// correctly against a fully-present row.
func CompositeRowToKey(kind fptype.IndexKind, members []Member, row rowcodec.Row) ([]byte, error) {
	if len(members) == 0 {
		return nil, fptaerr.New(fptaerr.Inval, "keycodec.CompositeRowToKey", "empty member list")
	}
	if !kind.IsOrdered() {
		return compositeHash(members, row, kind.IsObverse())
	}
	ordered := members
	if !kind.IsObverse() {
		ordered = make([]Member, len(members))
		for i, m := range members {
			ordered[len(members)-1-i] = m
		}
	}
	compact := kind.IsUnique() && kind.IsNullable() && anyMemberPresent(members, row)
	var out []byte
	for _, m := range ordered {
		v, present := row.Field(m.ColumnIndex)
		if !present {
			if compact {
				out = append(out, CompositeAbsentByte)
				continue
			}
			v = fptype.NullValue()
		}
		part, err := ValueToKey(m.Shove.Index(), m.Shove.Type(), v)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return shoveIfOversized(out, kind.IsObverse()), nil
}

// anyMemberPresent reports whether at least one member of the composite
// has a non-absent field in row (spec.md §3 rule 1's "at least one member
// is present" gate for the absent-marker compaction).
func anyMemberPresent(members []Member, row rowcodec.Row) bool {
	for _, m := range members {
		if _, present := row.Field(m.ColumnIndex); present {
			return true
		}
	}
	return false
}

// compositeHash implements the unordered-composite accumulator: acc =
// xxhash(be64(acc + shove) ++ be64(hash(value))), with a reserved mix constant
// standing in for a missing member (spec §4.1 "missing members XOR-rotate-
// mix a reserved absent constant").
func compositeHash(members []Member, row rowcodec.Row, obverse bool) ([]byte, error) {
	ordered := members
	if !obverse {
		ordered = make([]Member, len(members))
		for i, m := range members {
			ordered[len(members)-1-i] = m
		}
	}
	var acc uint64
	for _, m := range ordered {
		v, present := row.Field(m.ColumnIndex)
		if !present || v.IsNull() {
			acc = bits.RotateLeft64(acc, 13) ^ absentMixConstant
			continue
		}
		h := hashValue(m.Shove.Type(), v)
		var seed [16]byte
		binary.BigEndian.PutUint64(seed[:8], acc+uint64(m.Shove))
		binary.BigEndian.PutUint64(seed[8:], h)
		acc = xxhash.Sum64(seed[:])
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, acc)
	return buf, nil
}
