// Package rowcodec is this repository's minimal stand-in for the tuple
// serialization library spec §1 names as an out-of-scope external
// collaborator ("field layout, presence lookup by column-id"). No example
// in this repository's corpus ships a general-purpose tuple codec to adopt
// wholesale, so this package is a small, self-contained encoding built on
// the standard library's binary/varint primitives (see DESIGN.md).
//
// A Row is a sparse map from column index to fptype.Value; a table's
// stored row bytes are this package's Encode output, and TableOps/Cursor
// reconstruct a Row via Decode before evaluating a Filter or extracting a
// field for a secondary key.
package rowcodec

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
)

func floatBits(f float64) uint64   { return math.Float64bits(f) }
func floatFromBits(u uint64) float64 { return math.Float64frombits(u) }

const op = "rowcodec"

// Row is a sparse, column-indexed set of field values.
type Row struct {
	fields map[int]fptype.Value
}

// NewRow builds a Row from a column-index -> value map.
func NewRow(fields map[int]fptype.Value) Row {
	cp := make(map[int]fptype.Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Row{fields: cp}
}

// Field returns the value stored at columnIndex, and whether it is present
// at all (a row may omit trailing optional columns entirely, distinct from
// storing an explicit NIL).
func (r Row) Field(columnIndex int) (fptype.Value, bool) {
	v, ok := r.fields[columnIndex]
	return v, ok
}

// With returns a copy of r with columnIndex set to v (used by Saturated's
// inplace rebuild, spec §4.8, which grows the row by one field slot when
// the field was previously absent).
func (r Row) With(columnIndex int, v fptype.Value) Row {
	out := make(map[int]fptype.Value, len(r.fields)+1)
	for k, fv := range r.fields {
		out[k] = fv
	}
	out[columnIndex] = v
	return Row{fields: out}
}

// Len reports the number of present fields.
func (r Row) Len() int { return len(r.fields) }

const (
	tagNull ValueTag = iota
	tagUint
	tagInt
	tagFloat
	tagDatetime
	tagString
	tagBinary
)

// ValueTag is the on-wire tag identifying a field's payload shape.
type ValueTag uint8

func tagFor(v fptype.Value) ValueTag {
	switch v.Kind {
	case fptype.VNull:
		return tagNull
	case fptype.VUint:
		return tagUint
	case fptype.VInt:
		return tagInt
	case fptype.VFloat:
		return tagFloat
	case fptype.VDatetime:
		return tagDatetime
	case fptype.VString:
		return tagString
	default:
		return tagBinary
	}
}

// Encode serializes r as: varint field count, then per field: varint
// column index, one tag byte, then a tag-dependent payload (8 bytes for
// fixed-width scalars, varint length + bytes for string/binary).
func Encode(r Row) []byte {
	buf := make([]byte, 0, 32+16*len(r.fields))
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(r.fields)))
	buf = append(buf, tmp[:n]...)

	indices := make([]int, 0, len(r.fields))
	for idx := range r.fields {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		v := r.fields[idx]
		n := binary.PutUvarint(tmp[:], uint64(idx))
		buf = append(buf, tmp[:n]...)
		buf = append(buf, byte(tagFor(v)))
		switch v.Kind {
		case fptype.VNull:
		case fptype.VUint, fptype.VDatetime:
			var w [8]byte
			binary.BigEndian.PutUint64(w[:], v.U)
			buf = append(buf, w[:]...)
		case fptype.VInt:
			var w [8]byte
			binary.BigEndian.PutUint64(w[:], uint64(v.I))
			buf = append(buf, w[:]...)
		case fptype.VFloat:
			var w [8]byte
			binary.BigEndian.PutUint64(w[:], floatBits(v.F))
			buf = append(buf, w[:]...)
		default:
			n := binary.PutUvarint(tmp[:], uint64(len(v.B)))
			buf = append(buf, tmp[:n]...)
			buf = append(buf, v.B...)
		}
	}
	return buf
}

// Decode is the inverse of Encode.
func Decode(data []byte) (Row, error) {
	fields := make(map[int]fptype.Value)
	pos := 0
	count, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Decode", "truncated count")
	}
	pos += n
	for i := uint64(0); i < count; i++ {
		idx, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Decode", "truncated index")
		}
		pos += n
		if pos >= len(data) {
			return Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Decode", "truncated tag")
		}
		tag := ValueTag(data[pos])
		pos++
		switch tag {
		case tagNull:
			fields[int(idx)] = fptype.NullValue()
		case tagUint:
			u := binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
			fields[int(idx)] = fptype.Uint(u)
		case tagInt:
			u := binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
			fields[int(idx)] = fptype.Int(int64(u))
		case tagFloat:
			u := binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
			fields[int(idx)] = fptype.Float(floatFromBits(u))
		case tagDatetime:
			u := binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
			fields[int(idx)] = fptype.DatetimeValue(u)
		case tagString, tagBinary:
			blen, n := binary.Uvarint(data[pos:])
			if n <= 0 {
				return Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Decode", "truncated length")
			}
			pos += n
			if uint64(pos)+blen > uint64(len(data)) {
				return Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Decode", "truncated payload")
			}
			b := append([]byte{}, data[pos:pos+int(blen)]...)
			pos += int(blen)
			if tag == tagString {
				fields[int(idx)] = fptype.Str(string(b))
			} else {
				fields[int(idx)] = fptype.Bin(b)
			}
		default:
			return Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Decode", "unknown tag")
		}
	}
	return Row{fields: fields}, nil
}
