package fpta

import (
	"github.com/cespare/xxhash/v2"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/handlecache"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/keycodec"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/rowcodec"
	"github.com/fpta-go/fpta/internal/schema"
	"github.com/fpta-go/fpta/internal/tableops"
)

// hashName derives a Shove's name-hash bits the same way for every column
// and table identity this layer mints (spec §3/§9: "name collisions
// resolve by reserved-bit pattern" presumes a stable hash of the name).
func hashName(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Mode selects Put's conflict behavior; re-exported from internal/tableops
// so callers never need to import it directly.
type Mode = tableops.Mode

const (
	Insert = tableops.Insert
	Update = tableops.Update
	Upsert = tableops.Upsert
)

// ColumnSpec describes one column a caller wants in a new table: its
// name, scalar type, and index kind. Column 0 of a CreateTable call is
// always the primary column.
type ColumnSpec struct {
	Name string
	Type fptype.ColumnType
	Kind fptype.IndexKind
}

// Name is the opaque handle spec §3 calls "Name": a resolved binding from
// a table identity to the schema snapshot it was last checked against,
// plus the open dbi handles needed to operate on it.
type Name struct {
	tableShove fptype.Shove
	inner      schema.Name
	table      *tableops.Table
}

// TableName reports the stored primary column's owning table name, i.e.
// the name this Name was opened/created with.
func (n *Name) TableName() string { return n.table.Schema.PrimaryColumn().Name }

// ColumnIndex resolves a column by its stored name, refreshing against
// the current schema (spec §4.2's refresh_name) first.
func (n *Name) ColumnIndex(txn *Txn, columnName string) (int, error) {
	if err := n.refresh(txn); err != nil {
		return 0, err
	}
	idx, ok := n.table.Schema.FindColumnByName(columnName)
	if !ok {
		return 0, fptaerr.New(fptaerr.EName, "fpta.Name.ColumnIndex", columnName)
	}
	return idx, nil
}

func (n *Name) refresh(txn *Txn) error {
	tbl, err := schema.RefreshName(txn.engine, &n.inner, txn.canary.schemaCSN)
	if err != nil {
		return err
	}
	dbis, err := openTableDBIs(txn, n.tableShove, tbl, false)
	if err != nil {
		return err
	}
	n.table.Schema = tbl
	n.table.DBIs = dbis
	return nil
}

// openTableDBIs opens (creating when create is true) every indexed
// column's dbi for tableShove, going through the process-wide handle
// cache (spec §4.3): a validated cache hit skips the engine call
// entirely, a miss opens the dbi and installs the result.
func openTableDBIs(txn *Txn, tableShove fptype.Shove, sc *schema.Table, create bool) (map[int]kvengine.DBI, error) {
	dbis := make(map[int]kvengine.DBI, len(sc.Columns))
	observed := txn.db.observedSchemaCSN()
	for i, c := range sc.Columns {
		kind := c.Shove.Index()
		if i != 0 && !kind.IsIndexed() {
			continue
		}
		key := handlecache.Key{TableShove: uint64(tableShove), ColumnIndex: i}
		if entry, ok := txn.db.handles.Get(key); ok && entry.Validate(observed) {
			txn.db.metrics.HandleCacheHits.Inc()
			dbis[i] = entry.Handle
			continue
		}
		txn.db.metrics.HandleCacheMiss.Inc()
		flags := indexops.DBIFlagsFor(kind, c.Shove.Type())
		cmp := indexops.Comparator(kind, c.Shove.Type())
		dbi, err := txn.engine.OpenDBI(schema.DBIName(tableShove, i), flags, cmp, nil, create)
		if err != nil {
			return nil, err
		}
		dbis[i] = dbi
		txn.db.handles.Put(key, dbi, sc.CSN)
	}
	return dbis, nil
}

// CreateTable implements spec §4.2's create_table against a Schema-level
// transaction: build the stored schema record from columns, persist it,
// and open every index's dbi.
func (t *Txn) CreateTable(name string, columns []ColumnSpec) (*Name, error) {
	if t.level != Schema {
		return nil, fptaerr.New(fptaerr.EPerm, "fpta.CreateTable", "requires a schema-level transaction")
	}
	if len(columns) == 0 {
		return nil, fptaerr.New(fptaerr.Inval, "fpta.CreateTable", "at least one column required")
	}
	tableShove := schema.TableShove(hashName(name))
	sc := &schema.Table{Columns: make([]schema.Column, len(columns))}
	for i, cs := range columns {
		sc.Columns[i] = schema.Column{
			Shove: fptype.NewShove(hashName(name+"."+cs.Name), cs.Kind, cs.Type),
			Name:  cs.Name,
		}
	}
	nextCSN := t.canary.schemaCSN + 1
	if err := schema.CreateTable(t.engine, tableShove, sc, nextCSN); err != nil {
		return nil, err
	}
	dbis, err := openTableDBIs(t, tableShove, sc, true)
	if err != nil {
		return nil, err
	}
	t.canary.schemaCSN = sc.CSN
	return &Name{
		tableShove: tableShove,
		inner:      schema.Name{TableShove: tableShove},
		table:      &tableops.Table{Schema: sc, DBIs: dbis},
	}, nil
}

// DropTable implements spec §4.2's drop_table against a Schema-level
// transaction.
func (t *Txn) DropTable(n *Name) error {
	if t.level != Schema {
		return fptaerr.New(fptaerr.EPerm, "fpta.DropTable", "requires a schema-level transaction")
	}
	if err := n.refresh(t); err != nil {
		return err
	}
	if err := schema.DropTable(t.engine, n.tableShove, n.table.Schema); err != nil {
		return err
	}
	t.canary.schemaCSN++
	return nil
}

// OpenTable implements spec §4.2's name resolution for an existing table:
// load its stored schema record and open every index's dbi.
func (t *Txn) OpenTable(name string) (*Name, error) {
	tableShove := schema.TableShove(hashName(name))
	sc, err := t.db.schemaCache.LoadCached(t.engine, tableShove, t.canary.schemaCSN)
	if err != nil {
		return nil, err
	}
	dbis, err := openTableDBIs(t, tableShove, sc, false)
	if err != nil {
		return nil, err
	}
	return &Name{
		tableShove: tableShove,
		inner:      schema.Name{TableShove: tableShove},
		table:      &tableops.Table{Schema: sc, DBIs: dbis},
	}, nil
}

// Put implements spec §4.5's put against n's primary table.
func (t *Txn) Put(n *Name, row rowcodec.Row, mode tableops.Mode) error {
	if err := n.refresh(t); err != nil {
		return err
	}
	return tableops.Put(t.engine, n.table, row, mode)
}

// Delete implements spec §4.5's delete against n's primary table.
func (t *Txn) Delete(n *Name, row rowcodec.Row) error {
	if err := n.refresh(t); err != nil {
		return err
	}
	return tableops.Delete(t.engine, n.table, row)
}

// Get implements spec §4.5's get: columnIndex must name a unique index
// (the primary, or a unique secondary).
func (t *Txn) Get(n *Name, columnIndex int, key []byte) (rowcodec.Row, error) {
	if err := n.refresh(t); err != nil {
		return rowcodec.Row{}, err
	}
	return tableops.Get(t.engine, n.table, columnIndex, key)
}

// EncodeKey implements spec §4.1's value_to_key against n's column
// columnIndex, for building the key Get expects.
func (n *Name) EncodeKey(columnIndex int, v fptype.Value) ([]byte, error) {
	col, ok := n.table.Schema.ColumnByIndex(columnIndex)
	if !ok {
		return nil, fptaerr.New(fptaerr.Inval, "fpta.Name.EncodeKey", "unknown column")
	}
	return keycodec.ValueToKey(col.Shove.Index(), col.Shove.Type(), v)
}
