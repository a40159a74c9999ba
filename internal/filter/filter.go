// Package filter implements spec §4.7: a small tagged expression tree
// evaluated against one row at a time by internal/cursor during a move.
// There is no teacher equivalent (erigon has no per-row predicate
// language); the tree shape and the not/and/or short-circuit rules follow
// the original implementation's filter.h (a chain of fptu_filter nodes)
// translated into Go interface dispatch rather than a C union-tagged
// struct, since that is how the example repos express small closed sum
// types (see e.g. erigon-lib/kv/order.go's enum-by-const-type pattern).
package filter

import (
	"bytes"
	"math"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/rowcodec"
)

// Order is the three-valued (plus incomparable) result of comparing two
// column values.
type Order int

const (
	Less Order = iota
	Equal
	Greater
	Incomparable
)

// Op is a cmp node's relational operator.
type Op int

const (
	Lt Op = iota
	Le
	Eq
	Ne
	Gt
	Ge
)

// RowPredicate backs an fn_row node: a pure callback over the whole row.
type RowPredicate func(row rowcodec.Row, arg any) bool

// ColPredicate backs an fn_col node: a pure callback over one field.
type ColPredicate func(v fptype.Value, arg any) bool

// Context is the per-evaluation state a filter tree sees: the candidate
// row, already fetched from the primary if the index needed it (spec
// §4.6 move step 3).
type Context struct {
	Row rowcodec.Row
}

// Expr is one node of a filter tree.
type Expr interface {
	Eval(ctx *Context) (bool, error)
}

type notExpr struct{ child Expr }

// Not negates child.
func Not(child Expr) Expr { return notExpr{child} }

func (e notExpr) Eval(ctx *Context) (bool, error) {
	ok, err := e.child.Eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type andExpr struct{ a, b Expr }

// And short-circuits: b is not evaluated when a is false.
func And(a, b Expr) Expr { return andExpr{a, b} }

func (e andExpr) Eval(ctx *Context) (bool, error) {
	ok, err := e.a.Eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return e.b.Eval(ctx)
}

type orExpr struct{ a, b Expr }

// Or short-circuits: b is not evaluated when a is true.
func Or(a, b Expr) Expr { return orExpr{a, b} }

func (e orExpr) Eval(ctx *Context) (bool, error) {
	ok, err := e.a.Eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return e.b.Eval(ctx)
}

type fnRowExpr struct {
	predicate RowPredicate
	arg       any
}

// FnRow wraps a whole-row callback.
func FnRow(predicate RowPredicate, arg any) Expr { return fnRowExpr{predicate, arg} }

func (e fnRowExpr) Eval(ctx *Context) (bool, error) {
	return e.predicate(ctx.Row, e.arg), nil
}

type fnColExpr struct {
	column    int
	predicate ColPredicate
	arg       any
}

// FnCol wraps a single-column callback; the field is fptype.NullValue()
// when absent from the row.
func FnCol(column int, predicate ColPredicate, arg any) Expr {
	return fnColExpr{column, predicate, arg}
}

func (e fnColExpr) Eval(ctx *Context) (bool, error) {
	v, ok := ctx.Row.Field(e.column)
	if !ok {
		v = fptype.NullValue()
	}
	return e.predicate(v, e.arg), nil
}

type cmpExpr struct {
	op       Op
	column   int
	constant fptype.Value
}

// Cmp applies op between the row's column field and constant.
func Cmp(op Op, column int, constant fptype.Value) Expr {
	return cmpExpr{op: op, column: column, constant: constant}
}

func (e cmpExpr) Eval(ctx *Context) (bool, error) {
	v, ok := ctx.Row.Field(e.column)
	if !ok {
		v = fptype.NullValue()
	}
	ord := Compare(v, e.constant)
	if ord == Incomparable {
		return false, nil
	}
	switch e.op {
	case Lt:
		return ord == Less, nil
	case Le:
		return ord == Less || ord == Equal, nil
	case Eq:
		return ord == Equal, nil
	case Ne:
		return ord != Equal, nil
	case Gt:
		return ord == Greater, nil
	case Ge:
		return ord == Greater || ord == Equal, nil
	default:
		return false, nil
	}
}

// Compare is the total comparator spec §4.7 requires of cmp nodes. Two
// nulls compare equal; a null against any present value is incomparable;
// values of incompatible kinds (e.g. string vs number) are incomparable.
func Compare(a, b fptype.Value) Order {
	if a.IsNull() || b.IsNull() {
		if a.IsNull() && b.IsNull() {
			return Equal
		}
		return Incomparable
	}
	switch {
	case isNumericKind(a.Kind) && isNumericKind(b.Kind):
		return compareFloat(numericFloat(a), numericFloat(b))
	case a.Kind == fptype.VDatetime && b.Kind == fptype.VDatetime:
		return compareUint(a.U, b.U)
	case isBytesKind(a.Kind) && isBytesKind(b.Kind):
		return compareBytes(a.B, b.B)
	default:
		return Incomparable
	}
}

func isNumericKind(k fptype.ValueKind) bool {
	return k == fptype.VUint || k == fptype.VInt || k == fptype.VFloat
}

func isBytesKind(k fptype.ValueKind) bool {
	return k == fptype.VString || k == fptype.VBinary
}

func numericFloat(v fptype.Value) float64 {
	switch v.Kind {
	case fptype.VUint:
		return float64(v.U)
	case fptype.VInt:
		return float64(v.I)
	default:
		return v.F
	}
}

func compareFloat(a, b float64) Order {
	if math.IsNaN(a) || math.IsNaN(b) {
		return Incomparable
	}
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareUint(a, b uint64) Order {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareBytes(a, b []byte) Order {
	switch bytes.Compare(a, b) {
	case -1:
		return Less
	case 1:
		return Greater
	default:
		return Equal
	}
}
