package fptype

// Shove is the 64-bit packed column descriptor of spec §3: a case-insensitive
// name-hash in the high bits, the column's IndexKind in the middle bits, and
// its ColumnType in the low bits. Shoves are the stable identity of columns
// in the stored schema — two shoves compare Equal when they agree on type
// and index-kind, irrespective of any difference in the name-hash bits
// (spec §9's "name collisions resolve by reserved-bit pattern").
type Shove uint64

const (
	typeBits = 5
	typeMask = Shove(1)<<typeBits - 1

	indexBits  = 7
	indexShift = typeBits
	indexMask  = Shove(1)<<indexBits - 1

	// NameHashShift is the bit position where the name-hash begins. Bits
	// below this position (type + index-kind) are what Equal compares;
	// bits at or above it are the hash and are ignored by Equal, mirroring
	// the original fpta_shove_eq's "differences confined to the hash are
	// not a mismatch" rule (spec §9, SPEC_FULL.md item C.5).
	NameHashShift = typeBits + indexBits
)

// NewShove packs a name hash, index kind, and column type into a Shove.
func NewShove(nameHash uint64, kind IndexKind, ctype ColumnType) Shove {
	return Shove(nameHash)<<NameHashShift |
		Shove(kind&IndexKind(indexMask))<<indexShift |
		Shove(ctype)&typeMask
}

// Type extracts the column type packed into s.
func (s Shove) Type() ColumnType { return ColumnType(s & typeMask) }

// Index extracts the index-kind flags packed into s.
func (s Shove) Index() IndexKind { return IndexKind((s >> indexShift) & indexMask) }

// NameHash extracts the name-hash bits packed into s.
func (s Shove) NameHash() uint64 { return uint64(s >> NameHashShift) }

// WithNameHash returns a copy of s with the name-hash bits replaced; used
// when a column is renamed without otherwise changing its type or index
// kind.
func (s Shove) WithNameHash(nameHash uint64) Shove {
	return NewShove(nameHash, s.Index(), s.Type())
}

// Equal reports whether a and b describe the same column identity: same
// type and index-kind, regardless of any name-hash collision bits.
func (a Shove) Equal(b Shove) bool {
	const lowMask = Shove(1)<<NameHashShift - 1
	return a&lowMask == b&lowMask
}

// IsComposite reports whether s is a synthetic composite-member marker
// shove (column type Null with the CompositeMember flag set).
func (s Shove) IsComposite() bool {
	return s.Type() == Null && s.Index()&CompositeMember != 0
}
