package keycodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/rowcodec"
)

func compositeMembers() []Member {
	memberKind := fptype.Indexed | fptype.Ordered | fptype.Obverse | fptype.Nullable | fptype.CompositeMember
	return []Member{
		{ColumnIndex: 0, Shove: fptype.NewShove(1, memberKind, fptype.Uint32)},
		{ColumnIndex: 1, Shove: fptype.NewShove(2, memberKind, fptype.Uint32)},
	}
}

func TestCompositeRowToKeyUniqueNullableUsesAbsentByteWhenAnyMemberPresent(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse | fptype.Nullable
	members := compositeMembers()

	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(7)}) // member 1 absent
	key, err := CompositeRowToKey(kind, members, row)
	require.NoError(t, err)

	present, err := ValueToKey(members[0].Shove.Index(), members[0].Shove.Type(), fptype.Uint(7))
	require.NoError(t, err)
	want := append(append([]byte{}, present...), CompositeAbsentByte)
	require.Equal(t, want, key)
}

func TestCompositeRowToKeyFallsBackToSentinelWhenNotUniqueNullable(t *testing.T) {
	kind := fptype.Indexed | fptype.Ordered | fptype.Obverse | fptype.Nullable // not unique
	members := compositeMembers()

	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(7)})
	key, err := CompositeRowToKey(kind, members, row)
	require.NoError(t, err)

	present, err := ValueToKey(members[0].Shove.Index(), members[0].Shove.Type(), fptype.Uint(7))
	require.NoError(t, err)
	sentinel, err := ValueToKey(members[1].Shove.Index(), members[1].Shove.Type(), fptype.NullValue())
	require.NoError(t, err)
	want := append(append([]byte{}, present...), sentinel...)
	require.Equal(t, want, key)
}

func TestCompositeRowToKeyFallsBackToSentinelWhenEveryMemberAbsent(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse | fptype.Nullable
	members := compositeMembers()

	row := rowcodec.NewRow(nil)
	key, err := CompositeRowToKey(kind, members, row)
	require.NoError(t, err)

	sentinel, err := ValueToKey(members[0].Shove.Index(), members[0].Shove.Type(), fptype.NullValue())
	require.NoError(t, err)
	want := append(append([]byte{}, sentinel...), sentinel...)
	require.Equal(t, want, key)
}

func TestCompositeAbsentByteSortsBeforePresentMembers(t *testing.T) {
	kind := fptype.Indexed | fptype.Unique | fptype.Ordered | fptype.Obverse | fptype.Nullable
	members := compositeMembers()

	withSecondAbsent := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(1)})
	withBothPresent := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(1), 1: fptype.Uint(16777216)})

	absentKey, err := CompositeRowToKey(kind, members, withSecondAbsent)
	require.NoError(t, err)
	presentKey, err := CompositeRowToKey(kind, members, withBothPresent)
	require.NoError(t, err)

	require.Less(t, bytes.Compare(absentKey, presentKey), 0)
}
