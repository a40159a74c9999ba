package fpta

import "github.com/fpta-go/fpta/internal/filter"

// Filter and its constructors are re-exported from internal/filter so
// callers never need to import it directly to build a cursor's predicate
// tree (spec §4.7).
type (
	Filter       = filter.Expr
	CompareOp    = filter.Op
	RowPredicate = filter.RowPredicate
	ColPredicate = filter.ColPredicate
)

const (
	OpLt = filter.Lt
	OpLe = filter.Le
	OpEq = filter.Eq
	OpNe = filter.Ne
	OpGt = filter.Gt
	OpGe = filter.Ge
)

var (
	Not   = filter.Not
	And   = filter.And
	Or    = filter.Or
	FnRow = filter.FnRow
	FnCol = filter.FnCol
	Cmp   = filter.Cmp
)
