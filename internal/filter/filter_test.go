package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/rowcodec"
)

func evalRow(t *testing.T, e Expr, row rowcodec.Row) bool {
	t.Helper()
	ok, err := e.Eval(&Context{Row: row})
	require.NoError(t, err)
	return ok
}

func TestAndShortCircuitsOnFalse(t *testing.T) {
	row := rowcodec.NewRow(nil)
	called := false
	rhs := FnRow(func(rowcodec.Row, any) bool { called = true; return true }, nil)
	lhs := FnRow(func(rowcodec.Row, any) bool { return false }, nil)

	require.False(t, evalRow(t, And(lhs, rhs), row))
	require.False(t, called, "And must not evaluate b once a is false")
}

func TestOrShortCircuitsOnTrue(t *testing.T) {
	row := rowcodec.NewRow(nil)
	called := false
	rhs := FnRow(func(rowcodec.Row, any) bool { called = true; return false }, nil)
	lhs := FnRow(func(rowcodec.Row, any) bool { return true }, nil)

	require.True(t, evalRow(t, Or(lhs, rhs), row))
	require.False(t, called, "Or must not evaluate b once a is true")
}

func TestAndEvaluatesBWhenATrue(t *testing.T) {
	row := rowcodec.NewRow(nil)
	lhs := FnRow(func(rowcodec.Row, any) bool { return true }, nil)
	rhs := FnRow(func(rowcodec.Row, any) bool { return true }, nil)
	require.True(t, evalRow(t, And(lhs, rhs), row))

	rhsFalse := FnRow(func(rowcodec.Row, any) bool { return false }, nil)
	require.False(t, evalRow(t, And(lhs, rhsFalse), row))
}

func TestOrEvaluatesBWhenAFalse(t *testing.T) {
	row := rowcodec.NewRow(nil)
	lhs := FnRow(func(rowcodec.Row, any) bool { return false }, nil)
	rhsTrue := FnRow(func(rowcodec.Row, any) bool { return true }, nil)
	require.True(t, evalRow(t, Or(lhs, rhsTrue), row))

	rhsFalse := FnRow(func(rowcodec.Row, any) bool { return false }, nil)
	require.False(t, evalRow(t, Or(lhs, rhsFalse), row))
}

func TestNotNegatesChild(t *testing.T) {
	row := rowcodec.NewRow(nil)
	truthy := FnRow(func(rowcodec.Row, any) bool { return true }, nil)
	require.False(t, evalRow(t, Not(truthy), row))

	falsy := FnRow(func(rowcodec.Row, any) bool { return false }, nil)
	require.True(t, evalRow(t, Not(falsy), row))
}

func TestFnColSeesNullValueForAbsentField(t *testing.T) {
	row := rowcodec.NewRow(nil)
	var seen fptype.Value
	e := FnCol(0, func(v fptype.Value, _ any) bool { seen = v; return true }, nil)
	require.True(t, evalRow(t, e, row))
	require.True(t, seen.IsNull())
}

func TestFnColSeesPresentFieldValue(t *testing.T) {
	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(42)})
	var seen fptype.Value
	e := FnCol(0, func(v fptype.Value, _ any) bool { seen = v; return true }, nil)
	require.True(t, evalRow(t, e, row))
	require.Equal(t, uint64(42), seen.U)
}

func TestCmpAgainstPresentField(t *testing.T) {
	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(10)})

	require.True(t, evalRow(t, Cmp(Lt, 0, fptype.Uint(20)), row))
	require.False(t, evalRow(t, Cmp(Gt, 0, fptype.Uint(20)), row))
	require.True(t, evalRow(t, Cmp(Eq, 0, fptype.Uint(10)), row))
	require.True(t, evalRow(t, Cmp(Le, 0, fptype.Uint(10)), row))
	require.True(t, evalRow(t, Cmp(Ge, 0, fptype.Uint(10)), row))
	require.True(t, evalRow(t, Cmp(Ne, 0, fptype.Uint(11)), row))
	require.False(t, evalRow(t, Cmp(Ne, 0, fptype.Uint(10)), row))
}

func TestCmpAbsentFieldIsNullAgainstConstant(t *testing.T) {
	row := rowcodec.NewRow(nil)
	// absent field reads as NULL; NULL vs a present constant is incomparable,
	// so every op except Ne never matches and Ne never matches either since
	// Incomparable short-circuits to false before the op switch.
	require.False(t, evalRow(t, Cmp(Eq, 0, fptype.Uint(10)), row))
	require.False(t, evalRow(t, Cmp(Ne, 0, fptype.Uint(10)), row))
	require.False(t, evalRow(t, Cmp(Lt, 0, fptype.Uint(10)), row))
}

func TestCmpReEvaluationIsIdempotent(t *testing.T) {
	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Str("widget")})
	e := Cmp(Eq, 0, fptype.Str("widget"))
	first := evalRow(t, e, row)
	second := evalRow(t, e, row)
	require.Equal(t, first, second)
	require.True(t, first)
}

func TestCompareBothNullIsEqual(t *testing.T) {
	require.Equal(t, Equal, Compare(fptype.NullValue(), fptype.NullValue()))
}

func TestCompareNullAgainstPresentIsIncomparable(t *testing.T) {
	require.Equal(t, Incomparable, Compare(fptype.NullValue(), fptype.Uint(1)))
	require.Equal(t, Incomparable, Compare(fptype.Uint(1), fptype.NullValue()))
}

func TestCompareCrossKindIsIncomparable(t *testing.T) {
	require.Equal(t, Incomparable, Compare(fptype.Uint(1), fptype.Str("1")))
	require.Equal(t, Incomparable, Compare(fptype.Str("a"), fptype.Bin([]byte("a"))))
}

func TestCompareNumericCrossesUintIntFloat(t *testing.T) {
	require.Equal(t, Equal, Compare(fptype.Uint(5), fptype.Int(5)))
	require.Equal(t, Less, Compare(fptype.Int(-1), fptype.Uint(0)))
	require.Equal(t, Greater, Compare(fptype.Float(1.5), fptype.Int(1)))
}

func TestCompareNaNIsIncomparable(t *testing.T) {
	nan := fptype.Float(math.NaN())
	require.Equal(t, Incomparable, Compare(nan, fptype.Float(1)))
	require.Equal(t, Incomparable, Compare(nan, nan))
}

func TestCompareBytesOrdering(t *testing.T) {
	require.Equal(t, Less, Compare(fptype.Str("a"), fptype.Str("b")))
	require.Equal(t, Greater, Compare(fptype.Bin([]byte{2}), fptype.Bin([]byte{1})))
	require.Equal(t, Equal, Compare(fptype.Str("x"), fptype.Str("x")))
}
