package fptype

// IndexKind is the orthogonal flag set from spec §3: primary/secondary,
// unique/with-duplicates, ordered/unordered, obverse/reverse, nullable —
// plus two bookkeeping bits (Indexed, CompositeMember) that are not part of
// the original's single packed enum but are needed by a Go encoding of the
// same state space; see DESIGN.md for the bit-layout note.
type IndexKind uint16

const (
	// None marks a plain, non-indexed column. Every other flag is
	// meaningless when None is set (other than Nullable, which still
	// describes the column's own nullability).
	None IndexKind = 0

	// Indexed marks that this shove describes a primary or secondary
	// index (as opposed to a plain stored column).
	Indexed IndexKind = 1 << 0

	// Secondary distinguishes a secondary index from the primary index.
	Secondary IndexKind = 1 << 1

	// Unique marks a unique index; its absence means with-duplicates.
	Unique IndexKind = 1 << 2

	// Ordered marks a B+tree-ordered index; its absence means an
	// unordered (hashed) index, for which range queries are forbidden.
	Ordered IndexKind = 1 << 3

	// Obverse marks forward (big-endian-equivalent) byte order; its
	// absence means reverse order.
	Obverse IndexKind = 1 << 4

	// Nullable marks that the column accepts an absent value, reserving
	// an in-band sentinel (scalars) or a zero-length encoding (strings)
	// for NIL.
	Nullable IndexKind = 1 << 5

	// CompositeMember marks a synthetic shove used only inside a
	// composite index's member list (paired with fptype.Null as the
	// column type, per spec §3).
	CompositeMember IndexKind = 1 << 6
)

// Primary reports whether k describes the table's primary index.
func (k IndexKind) Primary() bool { return k&Indexed != 0 && k&Secondary == 0 }

// IsSecondary reports whether k describes a secondary index.
func (k IndexKind) IsSecondary() bool { return k&Indexed != 0 && k&Secondary != 0 }

// IsIndexed reports whether k describes any index (primary or secondary).
func (k IndexKind) IsIndexed() bool { return k&Indexed != 0 }

// IsUnique reports whether k's index forbids duplicate keys.
func (k IndexKind) IsUnique() bool { return k&Unique != 0 }

// IsOrdered reports whether k's index preserves value order.
func (k IndexKind) IsOrdered() bool { return k&Ordered != 0 }

// IsObverse reports whether k's index collates in forward byte order.
func (k IndexKind) IsObverse() bool { return k&Obverse != 0 }

// IsReverse reports whether k's index collates in reverse byte order.
func (k IndexKind) IsReverse() bool { return k&Obverse == 0 }

// IsNullable reports whether the column accepts an absent value.
func (k IndexKind) IsNullable() bool { return k&Nullable != 0 }

func (k IndexKind) String() string {
	if k == None {
		return "none"
	}
	s := ""
	if k.Primary() {
		s += "primary"
	} else if k.IsSecondary() {
		s += "secondary"
	} else {
		s += "plain"
	}
	if k.IsIndexed() {
		if k.IsUnique() {
			s += "+unique"
		} else {
			s += "+dup"
		}
		if k.IsOrdered() {
			if k.IsObverse() {
				s += "+ordered-obverse"
			} else {
				s += "+ordered-reverse"
			}
		} else {
			s += "+unordered"
		}
	}
	if k.IsNullable() {
		s += "+nullable"
	}
	return s
}
