// Package schema implements spec §4.2: the stored per-table schema record
// (columns + composite member lists), its integrity checksum, the column
// sort order, and the create/drop/load/refresh_name transitions. Grounded
// on the original implementation's schema.cxx (see DESIGN.md) and on this
// repository's own internal/keycodec for the composite member encoding it
// validates against.
package schema

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/keycodec"
)

const op = "schema"

// MaxColumns is this repository's MAX_COLS (spec §3: "1..MAX_COLS ≈ 256").
const MaxColumns = 256

// Column is one entry of a table's stored column list.
type Column struct {
	Shove fptype.Shove
	Name  string // not part of the wire checksum; carried for Name resolution
}

// Composite is one trailing composite-member-list entry: the column index
// of the synthetic composite column, and the ordered list of member
// column indices it concatenates or hashes.
type Composite struct {
	ColumnIndex int
	Members     []int
}

// Table is the in-memory materialization of a stored schema record (spec
// §3's "prefer a reader that decodes into an owned structure").
type Table struct {
	Signature  uint32
	Checksum   uint64
	CSN        uint64
	Columns    []Column
	Composites []Composite
}

// PrimaryColumn is column index 0 by convention (spec §3 invariant 1).
func (t *Table) PrimaryColumn() Column { return t.Columns[0] }

// ColumnByIndex returns column i, or (Column{}, false) if out of range.
func (t *Table) ColumnByIndex(i int) (Column, bool) {
	if i < 0 || i >= len(t.Columns) {
		return Column{}, false
	}
	return t.Columns[i], true
}

// FindColumnByShove rescans the column list comparing by Shove.Equal
// (ignoring the name-hash bits), per refresh_name's "rescan by shove"
// behavior when a column's position may have moved.
func (t *Table) FindColumnByShove(s fptype.Shove) (index int, ok bool) {
	for i, c := range t.Columns {
		if c.Shove.Equal(s) {
			return i, true
		}
	}
	return 0, false
}

// FindColumnByName looks up a column by its case-sensitive stored name.
func (t *Table) FindColumnByName(name string) (index int, ok bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// columnRank implements spec §3 invariant 3's total order: primary >
// secondary-indexed > nullable-non-indexed > plain; ties break by shove
// value.
func columnRank(c Column) int {
	k := c.Shove.Index()
	switch {
	case k.Primary():
		return 0
	case k.IsSecondary():
		return 1
	case k.IsNullable() && !k.IsIndexed():
		return 2
	default:
		return 3
	}
}

// Sort re-orders columns by the §3 total order and renumbers every
// composite's member-index references to match the new positions.
func (t *Table) Sort() {
	cols := append([]Column{}, t.Columns...)
	sort.SliceStable(cols, func(i, j int) bool {
		ri, rj := columnRank(cols[i]), columnRank(cols[j])
		if ri != rj {
			return ri < rj
		}
		return cols[i].Shove < cols[j].Shove
	})
	newIndexOf := make(map[fptype.Shove]int, len(cols))
	for i, c := range cols {
		newIndexOf[c.Shove] = i
	}
	for ci, comp := range t.Composites {
		for mi, memberOldIdx := range comp.Members {
			oldShove := t.Columns[memberOldIdx].Shove
			comp.Members[mi] = newIndexOf[oldShove]
		}
		t.Composites[ci].ColumnIndex = newIndexOf[t.Columns[comp.ColumnIndex].Shove]
	}
	t.Columns = cols
}

// Validate enforces spec §3's structural invariants over an already-sorted
// table. It does not recompute or check Checksum (see VerifyChecksum).
func (t *Table) Validate() error {
	if len(t.Columns) == 0 || len(t.Columns) > MaxColumns {
		return fptaerr.New(fptaerr.SchemaCorrupted, op+".Validate", "column count out of range")
	}
	primaries := 0
	for i, c := range t.Columns {
		if c.Shove.Index().Primary() {
			primaries++
			if i != 0 {
				return fptaerr.New(fptaerr.SchemaCorrupted, op+".Validate", "primary not at index 0")
			}
		}
		if c.Shove.Index().IsSecondary() && !t.Columns[0].Shove.Index().IsUnique() {
			return fptaerr.New(fptaerr.SchemaCorrupted, op+".Validate", "secondary without unique primary")
		}
	}
	if primaries != 1 {
		return fptaerr.New(fptaerr.SchemaCorrupted, op+".Validate", "exactly one primary column required")
	}

	seen := make([]map[int]bool, 0, len(t.Composites))
	for _, comp := range t.Composites {
		if _, ok := t.ColumnByIndex(comp.ColumnIndex); !ok {
			return fptaerr.New(fptaerr.SchemaCorrupted, op+".Validate", "composite references unknown column")
		}
		members := make(map[int]bool, len(comp.Members))
		for _, m := range comp.Members {
			mc, ok := t.ColumnByIndex(m)
			if !ok {
				return fptaerr.New(fptaerr.SchemaCorrupted, op+".Validate", "composite member out of range")
			}
			if mc.Shove.IsComposite() || mc.Shove.Type().IsArray() || mc.Shove.Type().Base() == fptype.Nested {
				return fptaerr.New(fptaerr.EFlag, op+".Validate", "composite member must be plain scalar")
			}
			if members[m] {
				return fptaerr.New(fptaerr.EFlag, op+".Validate", "duplicate composite member")
			}
			members[m] = true
		}
		seen = append(seen, members)
	}
	if err := t.checkCompositeRedundancy(seen); err != nil {
		return err
	}
	return nil
}

// checkCompositeRedundancy enforces spec §3 invariants 5 and 6: no two
// composites may share a member set unless both are ordered and disagree
// on direction, and no composite's member ordering may be a prefix of
// another's.
func (t *Table) checkCompositeRedundancy(memberSets []map[int]bool) error {
	for i := 0; i < len(t.Composites); i++ {
		for j := i + 1; j < len(t.Composites); j++ {
			ci, cj := t.Composites[i], t.Composites[j]
			kindI := t.Columns[ci.ColumnIndex].Shove.Index()
			kindJ := t.Columns[cj.ColumnIndex].Shove.Index()
			if sameSet(memberSets[i], memberSets[j]) {
				bothOrdered := kindI.IsOrdered() && kindJ.IsOrdered()
				disagreeDirection := kindI.IsObverse() != kindJ.IsObverse()
				if !(bothOrdered && disagreeDirection) {
					return fptaerr.New(fptaerr.SimilarIndex, op+".Validate", "duplicate composite member set")
				}
				continue
			}
			if isPrefix(ci.Members, cj.Members) || isPrefix(cj.Members, ci.Members) {
				return fptaerr.New(fptaerr.SimilarIndex, op+".Validate", "redundant composite prefix")
			}
		}
	}
	return nil
}

func sameSet(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func isPrefix(shorter, longer []int) bool {
	if len(shorter) >= len(longer) || len(shorter) == 0 {
		return false
	}
	for i, v := range shorter {
		if longer[i] != v {
			return false
		}
	}
	return true
}

// Serialize encodes t into the stored wire form (spec §3's stored-layout
// diagram): checksum, then signature, csn, count, columns[], then the
// composites trailer, with the checksum computed over everything after it.
func Serialize(t *Table) []byte {
	buf := make([]byte, 0, 16+8*len(t.Columns)+8*len(t.Composites))
	var hdr [16]byte
	binary.BigEndian.PutUint32(hdr[0:4], keycodec.SchemaSignature)
	binary.BigEndian.PutUint64(hdr[4:12], t.CSN)
	binary.BigEndian.PutUint32(hdr[12:16], uint32(len(t.Columns)))
	buf = append(buf, hdr[:]...)
	for _, c := range t.Columns {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(c.Shove))
		buf = append(buf, b[:]...)
	}
	ordered := append([]Composite{}, t.Composites...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ColumnIndex < ordered[j].ColumnIndex })
	for _, comp := range ordered {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(comp.Members)))
		buf = append(buf, lenBuf[:]...)
		for _, m := range comp.Members {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(m))
			buf = append(buf, b[:]...)
		}
	}
	checksum := checksumOf(buf)
	out := make([]byte, 8, 8+len(buf))
	binary.BigEndian.PutUint64(out, checksum)
	out = append(out, buf...)
	return out
}

// checksumOf computes the seeded integrity hash (spec §3 "checksum (u64,
// seeded hash over the rest)"), using keycodec.SchemaChecksumSeed as the
// seed mixed into an xxhash digest.
func checksumOf(body []byte) uint64 {
	var seedBuf [8]byte
	binary.BigEndian.PutUint64(seedBuf[:], keycodec.SchemaChecksumSeed)
	return xxhash.Sum64(append(seedBuf[:], body...))
}

// Deserialize is the inverse of Serialize; names are not carried on the
// wire (spec §3's record has no name strings) and must be attached
// separately by the caller that tracks name -> shove bindings.
func Deserialize(data []byte) (*Table, error) {
	if len(data) < 8+16 {
		return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "truncated header")
	}
	storedChecksum := binary.BigEndian.Uint64(data[0:8])
	body := data[8:]
	if checksumOf(body) != storedChecksum {
		return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "checksum mismatch")
	}
	signature := binary.BigEndian.Uint32(body[0:4])
	if signature != keycodec.SchemaSignature {
		return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "bad signature")
	}
	csn := binary.BigEndian.Uint64(body[4:12])
	count := binary.BigEndian.Uint32(body[12:16])
	if count == 0 || count > MaxColumns {
		return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "column count out of range")
	}
	pos := 16
	need := int(count) * 8
	if pos+need > len(body) {
		return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "truncated columns")
	}
	cols := make([]Column, count)
	for i := range cols {
		cols[i] = Column{Shove: fptype.Shove(binary.BigEndian.Uint64(body[pos : pos+8]))}
		pos += 8
	}
	var compositeColumnIndices []int
	for i, c := range cols {
		if c.Shove.IsComposite() {
			compositeColumnIndices = append(compositeColumnIndices, i)
		}
	}
	var composites []Composite
	compositeOrdinal := 0
	for pos < len(body) {
		if pos+4 > len(body) {
			return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "truncated composite length")
		}
		n := int(binary.BigEndian.Uint32(body[pos : pos+4]))
		pos += 4
		if n < 0 || pos+n*4 > len(body) {
			return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "truncated composite members")
		}
		members := make([]int, n)
		for i := range members {
			members[i] = int(binary.BigEndian.Uint32(body[pos : pos+4]))
			pos += 4
		}
		if compositeOrdinal >= len(compositeColumnIndices) {
			return nil, fptaerr.New(fptaerr.SchemaCorrupted, op+".Deserialize", "more composite groups than composite columns")
		}
		composites = append(composites, Composite{ColumnIndex: compositeColumnIndices[compositeOrdinal], Members: members})
		compositeOrdinal++
	}
	return &Table{
		Signature:  signature,
		Checksum:   storedChecksum,
		CSN:        csn,
		Columns:    cols,
		Composites: composites,
	}, nil
}
