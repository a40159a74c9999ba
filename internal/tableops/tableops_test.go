package tableops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/kvengine/memkv"
	"github.com/fpta-go/fpta/internal/rowcodec"
	"github.com/fpta-go/fpta/internal/schema"
)

func buildTable(t *testing.T, env *memkv.Env) (*Table, kvengine.Txn) {
	pkShove := fptype.NewShove(1, fptype.Indexed|fptype.Unique|fptype.Ordered|fptype.Obverse, fptype.Uint32)
	secShove := fptype.NewShove(2, fptype.Indexed|fptype.Secondary|fptype.Unique|fptype.Ordered|fptype.Obverse, fptype.Uint32)
	plainShove := fptype.NewShove(3, fptype.None, fptype.String)

	sc := &schema.Table{Columns: []schema.Column{
		{Shove: pkShove, Name: "id"},
		{Shove: secShove, Name: "grp"},
		{Shove: plainShove, Name: "label"},
	}}
	sc.Sort()

	txn, err := env.Begin(context.Background(), true)
	require.NoError(t, err)

	dbis := map[int]kvengine.DBI{}
	for i, c := range sc.Columns {
		if i != 0 && !c.Shove.Index().IsIndexed() {
			continue
		}
		flags := indexops.DBIFlagsFor(c.Shove.Index(), c.Shove.Type())
		cmp := indexops.Comparator(c.Shove.Index(), c.Shove.Type())
		dbi, err := txn.OpenDBI("t/"+string(rune('0'+i)), flags, cmp, nil, true)
		require.NoError(t, err)
		dbis[i] = dbi
	}
	return &Table{Schema: sc, DBIs: dbis}, txn
}

func TestPutInsertThenGetByPrimary(t *testing.T) {
	env := memkv.New()
	tbl, txn := buildTable(t, env)

	row := rowcodec.NewRow(map[int]fptype.Value{
		0: fptype.Uint(1),
		1: fptype.Uint(100),
		2: fptype.Str("alice"),
	})
	require.NoError(t, Put(txn, tbl, row, Insert))

	got, err := Get(txn, tbl, 0, mustKey(t, tbl, row))
	require.NoError(t, err)
	v, _ := got.Field(2)
	require.Equal(t, "alice", v.String())
}

func TestInsertDuplicateRejected(t *testing.T) {
	env := memkv.New()
	tbl, txn := buildTable(t, env)
	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(1), 1: fptype.Uint(1), 2: fptype.Str("a")})
	require.NoError(t, Put(txn, tbl, row, Insert))
	err := Put(txn, tbl, row, Insert)
	require.Error(t, err)
}

func TestSecondaryLookupAfterUpdate(t *testing.T) {
	env := memkv.New()
	tbl, txn := buildTable(t, env)

	row1 := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(1), 1: fptype.Uint(10), 2: fptype.Str("a")})
	require.NoError(t, Put(txn, tbl, row1, Insert))

	updated := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(1), 1: fptype.Uint(20), 2: fptype.Str("a2")})
	require.NoError(t, Put(txn, tbl, updated, Update))

	secKey := mustSecondaryKey(t, tbl, updated)
	got, err := Get(txn, tbl, 1, secKey)
	require.NoError(t, err)
	v, _ := got.Field(2)
	require.Equal(t, "a2", v.String())
}

func TestDeleteRemovesSecondaryEntry(t *testing.T) {
	env := memkv.New()
	tbl, txn := buildTable(t, env)

	row := rowcodec.NewRow(map[int]fptype.Value{0: fptype.Uint(1), 1: fptype.Uint(10), 2: fptype.Str("a")})
	require.NoError(t, Put(txn, tbl, row, Insert))
	require.NoError(t, Delete(txn, tbl, row))

	_, err := Get(txn, tbl, 0, mustKey(t, tbl, row))
	require.Error(t, err)
	_, err = Get(txn, tbl, 1, mustSecondaryKey(t, tbl, row))
	require.Error(t, err)
}

func mustKey(t *testing.T, tbl *Table, row rowcodec.Row) []byte {
	k, err := indexops.RowToKey(tbl.Schema.Columns[0].Shove, row, 0)
	require.NoError(t, err)
	return k
}

func mustSecondaryKey(t *testing.T, tbl *Table, row rowcodec.Row) []byte {
	k, err := indexops.RowToKey(tbl.Schema.Columns[1].Shove, row, 1)
	require.NoError(t, err)
	return k
}
