package keycodec

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
)

func TestRoundTripNumeric(t *testing.T) {
	cases := []struct {
		name  string
		kind  fptype.IndexKind
		ctype fptype.ColumnType
		v     fptype.Value
	}{
		{"uint32-obverse", fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse, fptype.Uint32, fptype.Uint(42)},
		{"int64-reverse", fptype.Indexed | fptype.Ordered, fptype.Int64, fptype.Int(-7)},
		{"float64-obverse-negative", fptype.Indexed | fptype.Ordered | fptype.Obverse, fptype.Float64, fptype.Float(-3.5)},
		{"float32-obverse-positive", fptype.Indexed | fptype.Ordered | fptype.Obverse, fptype.Float32, fptype.Float(2.25)},
		{"datetime-obverse", fptype.Indexed | fptype.Ordered | fptype.Obverse, fptype.Datetime, fptype.DatetimeValue(123456)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			key, err := ValueToKey(c.kind, c.ctype, c.v)
			require.NoError(t, err)
			got, err := KeyToValue(c.kind, c.ctype, key)
			require.NoError(t, err)
			require.Equal(t, c.v, got)
		})
	}
}

func TestNullableNumericRoundTrip(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse | fptype.Nullable
	key, err := ValueToKey(kind, fptype.Uint32, fptype.NullValue())
	require.NoError(t, err)
	got, err := KeyToValue(kind, fptype.Uint32, key)
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestNonNullableRejectsNil(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	_, err := ValueToKey(kind, fptype.Uint32, fptype.NullValue())
	require.Error(t, err)
}

func TestOrderPreservingObverseIntegers(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	values := []int64{-100, -1, 0, 1, 100, 1 << 40}
	keys := make([][]byte, len(values))
	for i, v := range values {
		k, err := ValueToKey(kind, fptype.Int64, fptype.Int(v))
		require.NoError(t, err)
		keys[i] = k
	}
	sorted := append([][]byte{}, keys...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	for i := range keys {
		require.Equal(t, keys[i], sorted[i], "value %d should sort into position %d", values[i], i)
	}
}

func TestOrderPreservingFloats(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	values := []float64{-10.5, -0.001, 0, 0.001, 10.5}
	var keys [][]byte
	for _, v := range values {
		k, err := ValueToKey(kind, fptype.Float64, fptype.Float(v))
		require.NoError(t, err)
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		require.True(t, bytes.Compare(keys[i-1], keys[i]) < 0, "expected ascending order at %d", i)
	}
}

func TestNilSentinelOccupiesTopObverseBottomReverse(t *testing.T) {
	obverse := fptype.Indexed | fptype.Ordered | fptype.Obverse | fptype.Nullable
	nilKey, err := ValueToKey(obverse, fptype.Uint32, fptype.NullValue())
	require.NoError(t, err)
	valKey, err := ValueToKey(obverse, fptype.Uint32, fptype.Uint(0))
	require.NoError(t, err)
	require.True(t, bytes.Compare(nilKey, valKey) > 0, "obverse NIL sentinel occupies the top slot; ordering is enforced by the index comparator, not raw memcmp")

	reverse := fptype.Indexed | fptype.Ordered | fptype.Nullable
	nilKeyR, err := ValueToKey(reverse, fptype.Uint32, fptype.NullValue())
	require.NoError(t, err)
	valKeyR, err := ValueToKey(reverse, fptype.Uint32, fptype.Uint(0xFFFFFFFF-1))
	require.NoError(t, err)
	require.True(t, bytes.Compare(nilKeyR, valKeyR) < 0)
}

func TestStringNullableDistinguishesEmptyFromNull(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse | fptype.Nullable
	nilKey, err := ValueToKey(kind, fptype.String, fptype.NullValue())
	require.NoError(t, err)
	require.Len(t, nilKey, 0)

	emptyKey, err := ValueToKey(kind, fptype.String, fptype.Str(""))
	require.NoError(t, err)
	require.Greater(t, len(emptyKey), 0)

	got, err := KeyToValue(kind, fptype.String, emptyKey)
	require.NoError(t, err)
	require.False(t, got.IsNull())
	require.Equal(t, "", got.String())
}

func TestOversizedKeyShoving(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	big := bytes.Repeat([]byte("x"), MaxKeylen+100)
	key, err := ValueToKey(kind, fptype.Opaque, fptype.Bin(big))
	require.NoError(t, err)
	require.True(t, IsShoved(key))
	require.Len(t, key, ShovedKeylen)
}

func TestRejectsNaN(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	_, err := ValueToKey(kind, fptype.Float64, fptype.Float(nan()))
	require.Error(t, err)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestFixedBinaryRoundTrip(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	raw := bytes.Repeat([]byte{0xAB}, 12)
	key, err := ValueToKey(kind, fptype.Fixed96, fptype.Bin(raw))
	require.NoError(t, err)
	got, err := KeyToValue(kind, fptype.Fixed96, key)
	require.NoError(t, err)
	require.Equal(t, raw, got.B)
}

func TestFixedBinaryWrongWidthRejected(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse
	_, err := ValueToKey(kind, fptype.Fixed96, fptype.Bin(bytes.Repeat([]byte{1}, 4)))
	require.Error(t, err)
}

func TestUnorderedIndexIgnoresDirection(t *testing.T) {
	kind := fptype.Indexed // unordered, obverse bit unset
	k1, err := ValueToKey(kind, fptype.String, fptype.Str("hello"))
	require.NoError(t, err)
	k2, err := ValueToKey(kind|fptype.Obverse, fptype.String, fptype.Str("hello"))
	require.NoError(t, err)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 8)
}
