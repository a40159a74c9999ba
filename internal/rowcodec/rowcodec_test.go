package rowcodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	row := NewRow(map[int]fptype.Value{
		0: fptype.Uint(7),
		1: fptype.Str("hello"),
		2: fptype.NullValue(),
		3: fptype.Float(-1.5),
		4: fptype.Bin([]byte{1, 2, 3}),
	})
	encoded := Encode(row)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, row.Len(), decoded.Len())
	for _, idx := range []int{0, 1, 2, 3, 4} {
		want, _ := row.Field(idx)
		got, ok := decoded.Field(idx)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestFieldAbsentVsNull(t *testing.T) {
	row := NewRow(map[int]fptype.Value{0: fptype.NullValue()})
	_, present := row.Field(1)
	require.False(t, present)
	v, present := row.Field(0)
	require.True(t, present)
	require.True(t, v.IsNull())
}

func TestWithGrowsRow(t *testing.T) {
	row := NewRow(nil)
	grown := row.With(5, fptype.Uint(9))
	require.Equal(t, 0, row.Len())
	require.Equal(t, 1, grown.Len())
}
