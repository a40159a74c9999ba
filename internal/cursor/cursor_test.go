package cursor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/filter"
	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/kvengine/memkv"
	"github.com/fpta-go/fpta/internal/rowcodec"
	"github.com/fpta-go/fpta/internal/schema"
	"github.com/fpta-go/fpta/internal/tableops"
)

func buildTable(t *testing.T) (*tableops.Table, kvengine.Txn) {
	pkShove := fptype.NewShove(1, fptype.Indexed|fptype.Unique|fptype.Ordered|fptype.Obverse, fptype.Uint32)
	grpShove := fptype.NewShove(2, fptype.Indexed|fptype.Secondary|fptype.Ordered|fptype.Obverse, fptype.Uint32)
	labelShove := fptype.NewShove(3, fptype.None, fptype.String)

	sc := &schema.Table{Columns: []schema.Column{
		{Shove: pkShove, Name: "id"},
		{Shove: grpShove, Name: "grp"},
		{Shove: labelShove, Name: "label"},
	}}
	sc.Sort()

	env := memkv.New()
	txn, err := env.Begin(context.Background(), true)
	require.NoError(t, err)

	dbis := map[int]kvengine.DBI{}
	for i, c := range sc.Columns {
		if i != 0 && !c.Shove.Index().IsIndexed() {
			continue
		}
		flags := indexops.DBIFlagsFor(c.Shove.Index(), c.Shove.Type())
		cmp := indexops.Comparator(c.Shove.Index(), c.Shove.Type())
		dbi, err := txn.OpenDBI(string(rune('a'+i)), flags, cmp, nil, true)
		require.NoError(t, err)
		dbis[i] = dbi
	}
	tbl := &tableops.Table{Schema: sc, DBIs: dbis}

	for i := 1; i <= 5; i++ {
		row := rowcodec.NewRow(map[int]fptype.Value{
			0: fptype.Uint(uint64(i)),
			1: fptype.Uint(uint64(i % 2)),
			2: fptype.Str("row"),
		})
		require.NoError(t, tableops.Put(txn, tbl, row, tableops.Insert))
	}
	return tbl, txn
}

func TestCursorWalksPrimaryAscending(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 0, Unbounded(), Unbounded(), nil, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	require.True(t, c.Positioned())
	var seen []uint64
	row, err := c.Row()
	require.NoError(t, err)
	v, _ := row.Field(0)
	seen = append(seen, v.U)
	for {
		if err := c.Move(OpNext); err != nil {
			require.True(t, fptaerr.Is(err, fptaerr.NoData))
			break
		}
		row, err := c.Row()
		require.NoError(t, err)
		v, _ := row.Field(0)
		seen = append(seen, v.U)
	}
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, seen)
}

func TestCursorDescendingOrder(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 0, Unbounded(), Unbounded(), nil, Options{Ascending: false})
	require.NoError(t, err)
	defer c.Close()

	row, err := c.Row()
	require.NoError(t, err)
	v, _ := row.Field(0)
	require.Equal(t, uint64(5), v.U)
}

func TestCursorRangeBoundsClamp(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 0, At(fptype.Uint(2)), At(fptype.Uint(4)), nil, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	var seen []uint64
	for {
		row, err := c.Row()
		require.NoError(t, err)
		v, _ := row.Field(0)
		seen = append(seen, v.U)
		if err := c.Move(OpNext); err != nil {
			require.True(t, fptaerr.Is(err, fptaerr.NoData))
			break
		}
	}
	require.Equal(t, []uint64{2, 3}, seen)
}

func TestCursorFilterSkipsNonMatching(t *testing.T) {
	tbl, txn := buildTable(t)
	only1 := filter.Cmp(filter.Eq, 1, fptype.Uint(1))
	c, err := Open(txn, tbl, 0, Unbounded(), Unbounded(), only1, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	var seen []uint64
	for {
		row, err := c.Row()
		require.NoError(t, err)
		v, _ := row.Field(0)
		seen = append(seen, v.U)
		if err := c.Move(OpNext); err != nil {
			require.True(t, fptaerr.Is(err, fptaerr.NoData))
			break
		}
	}
	require.Equal(t, []uint64{1, 3, 5}, seen)
}

func TestCursorOpenRejectsEndAsLowerBound(t *testing.T) {
	tbl, txn := buildTable(t)
	_, err := Open(txn, tbl, 0, End(), Unbounded(), nil, Options{Ascending: true})
	require.Error(t, err)
}

func TestCursorUpdateOnSecondaryRewritesRow(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 1, At(fptype.Uint(0)), Unbounded(), nil, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	row, err := c.Row()
	require.NoError(t, err)
	pkField, _ := row.Field(0)

	updated := rowcodec.NewRow(map[int]fptype.Value{
		0: pkField,
		1: fptype.Uint(0),
		2: fptype.Str("changed"),
	})
	require.NoError(t, c.Update(updated))

	got, err := tableops.Get(txn, tbl, 0, mustPKKey(t, tbl, pkField))
	require.NoError(t, err)
	label, _ := got.Field(2)
	require.Equal(t, "changed", label.String())
}

func TestCursorUpdateRejectsMismatchedIndexedField(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 0, Unbounded(), Unbounded(), nil, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	mismatched := rowcodec.NewRow(map[int]fptype.Value{
		0: fptype.Uint(999),
		1: fptype.Uint(1),
		2: fptype.Str("x"),
	})
	err = c.Update(mismatched)
	require.True(t, fptaerr.Is(err, fptaerr.RowMismatch))
}

func TestCursorDeleteRemovesRow(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 0, Unbounded(), Unbounded(), nil, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	row, err := c.Row()
	require.NoError(t, err)
	pkField, _ := row.Field(0)
	require.NoError(t, c.Delete())

	_, err = tableops.Get(txn, tbl, 0, mustPKKey(t, tbl, pkField))
	require.True(t, fptaerr.Is(err, fptaerr.NotFound))
}

func TestCursorCount(t *testing.T) {
	tbl, txn := buildTable(t)
	c, err := Open(txn, tbl, 0, Unbounded(), Unbounded(), nil, Options{Ascending: true})
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Count(0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func mustPKKey(t *testing.T, tbl *tableops.Table, pk fptype.Value) []byte {
	row := rowcodec.NewRow(map[int]fptype.Value{0: pk})
	k, err := indexops.RowToKey(tbl.Schema.Columns[0].Shove, row, 0)
	require.NoError(t, err)
	return k
}
