package fptype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShovePackUnpack(t *testing.T) {
	cases := []struct {
		name     string
		hash     uint64
		kind     IndexKind
		ctype    ColumnType
	}{
		{"primary-unique-ordered-obverse-string", 0xdeadbeef, Indexed | Unique | Ordered | Obverse, String},
		{"secondary-dup-ordered-reverse-uint32", 0x1, Indexed | Secondary | Ordered, Uint32},
		{"plain-nullable-float64", 0xffffffff, Nullable, Float64},
		{"unordered-unique-binary", 0x42, Indexed | Unique, Opaque},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewShove(c.hash, c.kind, c.ctype)
			require.Equal(t, c.ctype, s.Type())
			require.Equal(t, c.kind, s.Index())
			require.Equal(t, c.hash, s.NameHash())
		})
	}
}

func TestShoveEqualIgnoresNameHash(t *testing.T) {
	a := NewShove(0x1111, Indexed|Unique|Ordered|Obverse, Uint32)
	b := NewShove(0x2222, Indexed|Unique|Ordered|Obverse, Uint32)
	require.True(t, a.Equal(b))

	c := NewShove(0x1111, Indexed|Unique|Ordered, Uint32) // different index kind (reverse)
	require.False(t, a.Equal(c))

	d := NewShove(0x1111, Indexed|Unique|Ordered|Obverse, Uint64) // different type
	require.False(t, a.Equal(d))
}

func TestArrayTypeRoundtrip(t *testing.T) {
	arr := Array(Uint32)
	require.True(t, arr.IsArray())
	require.Equal(t, Uint32, arr.Base())

	s := NewShove(1, None, arr)
	require.True(t, s.Type().IsArray())
}

func TestCompositeMarker(t *testing.T) {
	s := NewShove(7, CompositeMember, Null)
	require.True(t, s.IsComposite())

	notComposite := NewShove(7, Indexed, Uint32)
	require.False(t, notComposite.IsComposite())
}

func TestFixedWidths(t *testing.T) {
	widths := map[ColumnType]int{
		Uint16: 2, Uint32: 4, Int32: 4, Float32: 4,
		Uint64: 8, Int64: 8, Float64: 8, Datetime: 8,
		Fixed96: 12, Fixed128: 16, Fixed160: 20, Fixed256: 32,
	}
	for ct, want := range widths {
		w, ok := ct.FixedWidth()
		require.True(t, ok, ct.String())
		require.Equal(t, want, w, ct.String())
	}
	_, ok := String.FixedWidth()
	require.False(t, ok)
}
