package cursor

import "github.com/fpta-go/fpta/internal/fptype"

// BoundKind tags a range endpoint (spec §4.6 open's range_from/range_to).
type BoundKind int

const (
	// BoundNone means unbounded on this side.
	BoundNone BoundKind = iota
	// BoundValue carries a concrete column value to encode into a key.
	BoundValue
	// BoundBegin is the "beginning of the index" marker (-infinity).
	BoundBegin
	// BoundEnd is the "end of the index" marker (+infinity).
	BoundEnd
)

// Bound is one side of a cursor's range.
type Bound struct {
	Kind  BoundKind
	Value fptype.Value
}

// Unbounded leaves a side of the range open.
func Unbounded() Bound { return Bound{Kind: BoundNone} }

// Begin is the -infinity marker; valid only as a lower bound.
func Begin() Bound { return Bound{Kind: BoundBegin} }

// End is the +infinity marker; valid only as an upper bound.
func End() Bound { return Bound{Kind: BoundEnd} }

// At bounds a side of the range at a concrete value.
func At(v fptype.Value) Bound { return Bound{Kind: BoundValue, Value: v} }

// Op is a high-level cursor movement request; Move translates it to the
// underlying engine cursor's first/last/next/prev/*dup primitives,
// swapping next<->prev and first<->last when the cursor iterates in
// descending order (spec §4.6).
type Op int

const (
	OpFirst Op = iota
	OpLast
	OpNext
	OpPrev
	OpFirstDup
	OpLastDup
	OpNextDup
	OpPrevDup
	OpNextNoDup
	OpPrevNoDup
)

func isForwardOp(op Op) bool {
	switch op {
	case OpFirst, OpNext, OpFirstDup, OpNextDup, OpNextNoDup:
		return true
	default:
		return false
	}
}

// Options configures Open (spec §4.6's "options" argument).
type Options struct {
	// Ascending selects the cursor's iteration direction. Descending
	// requires an ordered index.
	Ascending bool
	// DontFetch skips the implicit first seek Open otherwise performs,
	// leaving the cursor in its unpositioned ("poor") state.
	DontFetch bool
}
