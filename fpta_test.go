package fpta_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/fpta-go/fpta"
	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/kvengine/memkv"
)

func openDB(t *testing.T) *fpta.DB {
	t.Helper()
	db, err := fpta.Open(fpta.Options{
		Env:        memkv.New(),
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func createWidgets(t *testing.T, db *fpta.DB) *fpta.Name {
	t.Helper()
	ctx := context.Background()
	txn, err := db.Begin(ctx, fpta.Schema)
	require.NoError(t, err)
	name, err := txn.CreateTable("widgets", []fpta.ColumnSpec{
		{Name: "id", Type: fpta.Uint32Type, Kind: fpta.IndexIndexed | fpta.IndexUnique | fpta.IndexOrdered | fpta.IndexObverse},
		{Name: "sku", Type: fpta.StringType, Kind: fpta.IndexIndexed | fpta.IndexSecondary | fpta.IndexUnique | fpta.IndexOrdered | fpta.IndexObverse},
		{Name: "notes", Type: fpta.StringType, Kind: fpta.IndexNone},
	})
	require.NoError(t, err)
	require.NoError(t, txn.End(false))
	return name
}

func TestCreateTablePutGetRoundTrip(t *testing.T) {
	db := openDB(t)
	name := createWidgets(t, db)
	ctx := context.Background()

	wtxn, err := db.Begin(ctx, fpta.Write)
	require.NoError(t, err)
	row := fpta.NewRow(map[int]fpta.Value{
		0: fpta.Uint(1),
		1: fpta.Str("sku-1"),
		2: fpta.Str("first widget"),
	})
	require.NoError(t, wtxn.Put(name, row, fpta.Insert))
	require.NoError(t, wtxn.End(false))

	rtxn, err := db.Begin(ctx, fpta.Read)
	require.NoError(t, err)
	idKey, err := name.EncodeKey(0, fpta.Uint(1))
	require.NoError(t, err)
	got, err := rtxn.Get(name, 0, idKey)
	require.NoError(t, err)
	id, ok := got.Field(0)
	require.True(t, ok)
	require.Equal(t, uint64(1), id.U)

	skuKey, err := name.EncodeKey(1, fpta.Str("sku-1"))
	require.NoError(t, err)
	bySKU, err := rtxn.Get(name, 1, skuKey)
	require.NoError(t, err)
	notes, ok := bySKU.Field(2)
	require.True(t, ok)
	require.Equal(t, "first widget", notes.String())
	require.NoError(t, rtxn.End(false))
}

func TestPutRejectsDuplicateInsert(t *testing.T) {
	db := openDB(t)
	name := createWidgets(t, db)
	ctx := context.Background()

	txn, err := db.Begin(ctx, fpta.Write)
	require.NoError(t, err)
	row := fpta.NewRow(map[int]fpta.Value{0: fpta.Uint(1), 1: fpta.Str("sku-1")})
	require.NoError(t, txn.Put(name, row, fpta.Insert))
	err = txn.Put(name, row, fpta.Insert)
	require.Error(t, err)
	require.True(t, fptaerr.Is(err, fptaerr.KeyExist))
	require.NoError(t, txn.End(true))
}

func TestCursorWalksPrimaryIndex(t *testing.T) {
	db := openDB(t)
	name := createWidgets(t, db)
	ctx := context.Background()

	wtxn, err := db.Begin(ctx, fpta.Write)
	require.NoError(t, err)
	skus := []string{"sku-a", "sku-b", "sku-c"}
	for i, sku := range skus {
		row := fpta.NewRow(map[int]fpta.Value{
			0: fpta.Uint(uint64(i) + 1),
			1: fpta.Str(sku),
		})
		require.NoError(t, wtxn.Put(name, row, fpta.Insert))
	}
	require.NoError(t, wtxn.End(false))

	rtxn, err := db.Begin(ctx, fpta.Read)
	require.NoError(t, err)
	cur, err := rtxn.OpenCursor(name, 0, fpta.Unbounded(), fpta.Unbounded(), nil, fpta.CursorOpts{Ascending: true})
	require.NoError(t, err)
	defer cur.Close()

	var seen []uint64
	for cur.Positioned() {
		row, err := cur.Row()
		require.NoError(t, err)
		v, _ := row.Field(0)
		seen = append(seen, v.U)
		if err := cur.Move(fpta.OpNext); err != nil {
			require.True(t, fptaerr.Is(err, fptaerr.NoData))
			break
		}
	}
	require.Equal(t, []uint64{1, 2, 3}, seen)
	require.NoError(t, rtxn.End(false))
}

func TestSchemaTxnRequiredForCreateTable(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	txn, err := db.Begin(ctx, fpta.Write)
	require.NoError(t, err)
	_, err = txn.CreateTable("oops", []fpta.ColumnSpec{{Name: "id", Type: fpta.Uint32Type, Kind: fpta.IndexIndexed | fpta.IndexUnique}})
	require.Error(t, err)
	require.True(t, fptaerr.Is(err, fptaerr.EPerm))
	require.NoError(t, txn.End(true))
}

func TestSchemaTxnExcludesConcurrentWriteTxn(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	sctx, cancel := context.WithCancel(ctx)
	schemaTxn, err := db.Begin(ctx, fpta.Schema)
	require.NoError(t, err)

	cancel() // a write Begin racing the held schema lock must not block forever
	_, err = db.Begin(sctx, fpta.Write)
	require.Error(t, err)

	require.NoError(t, schemaTxn.End(false))
}

func TestEndIsIdempotent(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	txn, err := db.Begin(ctx, fpta.Read)
	require.NoError(t, err)
	require.NoError(t, txn.End(false))
	require.NoError(t, txn.End(false))
}

func TestReadOnlyDatabaseRejectsSchemaTxn(t *testing.T) {
	db, err := fpta.Open(fpta.Options{
		Env:        memkv.New(),
		ReadOnly:   true,
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Begin(context.Background(), fpta.Schema)
	require.Error(t, err)
	require.True(t, fptaerr.Is(err, fptaerr.EPerm))
}
