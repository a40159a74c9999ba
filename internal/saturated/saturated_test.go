package saturated

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/numeric"
)

func TestTopReservesSentinelForObverseNullable(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse | fptype.Nullable
	top, err := Top(kind, fptype.Uint32)
	require.NoError(t, err)
	require.Equal(t, uint64(numeric.MaxUint32-1), top.U)

	bottom, err := Bottom(kind, fptype.Uint32)
	require.NoError(t, err)
	require.Equal(t, uint64(0), bottom.U)
}

func TestBottomReservesSentinelForReverseNullable(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Nullable // Obverse bit unset = reverse
	bottom, err := Bottom(kind, fptype.Int32)
	require.NoError(t, err)
	require.Equal(t, int64(numeric.MinInt32+1), bottom.I)
}

func TestAddSaturatesAtTop(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse
	result, changed, err := Add(kind, fptype.Uint16, fptype.Uint(numeric.MaxUint16-1), true, fptype.Uint(10))
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, uint64(numeric.MaxUint16), result.U)
}

func TestSubSaturatesAtBottom(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse
	result, changed, err := Sub(kind, fptype.Uint32, fptype.Uint(5), true, fptype.Uint(10))
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, uint64(0), result.U)
}

func TestAddOnAbsentFieldWithZeroAddendIsNoOp(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse // bottom is 0, not reserved
	_, changed, err := Add(kind, fptype.Uint32, fptype.Value{}, false, fptype.Uint(0))
	require.NoError(t, err)
	require.False(t, changed)
}

func TestAddOnAbsentFieldWithNonzeroAddendMaterializesBottom(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse
	result, changed, err := Add(kind, fptype.Uint32, fptype.Value{}, false, fptype.Uint(3))
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, uint64(3), result.U)
}

func TestMinMaxAgainstAbsentField(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse
	got, err := Min(kind, fptype.Int32, fptype.Value{}, false, fptype.Int(7))
	require.NoError(t, err)
	require.Equal(t, int64(7), got.I)

	got, err = Max(kind, fptype.Int32, fptype.Value{}, false, fptype.Int(7))
	require.NoError(t, err)
	require.Equal(t, int64(7), got.I)
}

func TestFloatAddReliesOnIEEEInfinity(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse
	result, changed, err := Add(kind, fptype.Float64, fptype.Float(math.MaxFloat64), true, fptype.Float(math.MaxFloat64))
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, math.IsInf(result.F, 1))
}
