package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
)

func primaryShove() fptype.Shove {
	return fptype.NewShove(1, fptype.Indexed|fptype.Unique|fptype.Ordered|fptype.Obverse, fptype.Uint32)
}

func TestSortOrdersByPriority(t *testing.T) {
	plain := fptype.NewShove(2, fptype.None, fptype.String)
	secondary := fptype.NewShove(3, fptype.Indexed|fptype.Secondary|fptype.Ordered|fptype.Obverse, fptype.Uint32)
	nullablePlain := fptype.NewShove(4, fptype.Nullable, fptype.Float64)

	tbl := &Table{Columns: []Column{
		{Shove: plain, Name: "plain"},
		{Shove: secondary, Name: "sec"},
		{Shove: primaryShove(), Name: "pk"},
		{Shove: nullablePlain, Name: "opt"},
	}}
	tbl.Sort()
	require.True(t, tbl.Columns[0].Shove.Index().Primary())
	require.True(t, tbl.Columns[1].Shove.Index().IsSecondary())
	require.True(t, tbl.Columns[2].Shove.Index().IsNullable())
	require.Equal(t, plain, tbl.Columns[3].Shove)
}

func TestValidateRequiresExactlyOnePrimary(t *testing.T) {
	tbl := &Table{Columns: []Column{{Shove: fptype.NewShove(1, fptype.None, fptype.String)}}}
	err := tbl.Validate()
	require.Error(t, err)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tbl := &Table{
		CSN: 7,
		Columns: []Column{
			{Shove: primaryShove(), Name: "pk"},
			{Shove: fptype.NewShove(2, fptype.None, fptype.String), Name: "name"},
		},
	}
	data := Serialize(tbl)
	got, err := Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, tbl.CSN, got.CSN)
	require.Equal(t, tbl.Columns[0].Shove, got.Columns[0].Shove)
	require.Equal(t, tbl.Columns[1].Shove, got.Columns[1].Shove)
}

func TestDeserializeRejectsTamperedChecksum(t *testing.T) {
	tbl := &Table{Columns: []Column{{Shove: primaryShove()}}}
	data := Serialize(tbl)
	data[0] ^= 0xFF
	_, err := Deserialize(data)
	require.Error(t, err)
}

func TestCompositeRedundancyRejected(t *testing.T) {
	memberA := fptype.NewShove(2, fptype.None, fptype.Uint32)
	memberB := fptype.NewShove(3, fptype.None, fptype.Uint32)
	compositeShoveFwd := fptype.NewShove(4, fptype.Indexed|fptype.Secondary|fptype.Ordered|fptype.Obverse|fptype.CompositeMember, fptype.Null)
	compositeShoveRev := fptype.NewShove(5, fptype.Indexed|fptype.Secondary|fptype.Ordered|fptype.CompositeMember, fptype.Null)

	base := func() *Table {
		return &Table{Columns: []Column{
			{Shove: primaryShove()},
			{Shove: memberA},
			{Shove: memberB},
			{Shove: compositeShoveFwd},
			{Shove: compositeShoveRev},
		}}
	}

	t.Run("same set opposite direction is allowed", func(t *testing.T) {
		tbl := base()
		tbl.Composites = []Composite{
			{ColumnIndex: 3, Members: []int{1, 2}},
			{ColumnIndex: 4, Members: []int{1, 2}},
		}
		require.NoError(t, tbl.Validate())
	})

	t.Run("duplicate member set same direction rejected", func(t *testing.T) {
		tbl := base()
		tbl.Columns[4].Shove = compositeShoveFwd.WithNameHash(9)
		tbl.Composites = []Composite{
			{ColumnIndex: 3, Members: []int{1, 2}},
			{ColumnIndex: 4, Members: []int{2, 1}},
		}
		err := tbl.Validate()
		require.Error(t, err)
	})
}
