package schema

import (
	"encoding/binary"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/kvengine"
)

// CatalogDBIName is the single sub-database holding every table's
// serialized schema record, keyed by the table's shove (spec §4.2
// create_table step 3: "under the table's shove key").
const CatalogDBIName = "fpta.catalog"

// DBIName derives the per-index sub-database name for a table/column pair,
// mirroring the "table shove + column ordinal" key HandleCache derives its
// own cache key from (spec §4.3).
func DBIName(tableShove fptype.Shove, columnIndex int) string {
	var b [12]byte
	binary.BigEndian.PutUint64(b[:8], uint64(tableShove))
	binary.BigEndian.PutUint32(b[8:], uint32(columnIndex))
	return string(b[:])
}

func catalogKey(tableShove fptype.Shove) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(tableShove))
	return b[:]
}

// TableShove derives the identity shove for a table name: a plain
// (non-indexed, non-nullable) shove over the Null type, keyed by the
// name's hash. Table identity does not need a real ColumnType since it
// never appears in a row.
func TableShove(nameHash uint64) fptype.Shove {
	return fptype.NewShove(nameHash, fptype.None, fptype.Null)
}

// CreateTable implements spec §4.2's create_table: sort + validate, open
// every per-index sub-database with create=true (to detect collisions),
// serialize and store the schema record with no-overwrite semantics, and
// bump csn. On any failure after sub-databases were opened, every newly
// created one is dropped before returning (grounded on the original
// implementation's schema.cxx create-table rollback behavior).
func CreateTable(txn kvengine.Txn, tableShove fptype.Shove, table *Table, nextCSN uint64) error {
	table.Sort()
	if err := table.Validate(); err != nil {
		return err
	}
	table.CSN = nextCSN

	opened := make([]kvengine.DBI, 0, len(table.Columns))
	rollback := func() {
		for _, dbi := range opened {
			_ = txn.DropDBI(dbi)
		}
	}

	for i, c := range table.Columns {
		kind := c.Shove.Index()
		if !kind.IsIndexed() {
			continue
		}
		flags := indexops.DBIFlagsFor(kind, c.Shove.Type())
		cmp := indexops.Comparator(kind, c.Shove.Type())
		dbi, err := txn.OpenDBI(DBIName(tableShove, i), flags, cmp, nil, true)
		if err != nil {
			rollback()
			return err
		}
		opened = append(opened, dbi)
	}
	primaryFlags := indexops.DBIFlagsFor(table.Columns[0].Shove.Index(), table.Columns[0].Shove.Type())
	primaryCmp := indexops.Comparator(table.Columns[0].Shove.Index(), table.Columns[0].Shove.Type())
	primaryDBI, err := txn.OpenDBI(DBIName(tableShove, 0), primaryFlags, primaryCmp, nil, true)
	if err != nil {
		rollback()
		return err
	}
	opened = append(opened, primaryDBI)

	catalogDBI, err := txn.OpenDBI(CatalogDBIName, 0, nil, nil, true)
	if err != nil {
		rollback()
		return err
	}
	record := Serialize(table)
	if err := txn.Put(catalogDBI, catalogKey(tableShove), record, true, false); err != nil {
		rollback()
		if fptaerr.Is(err, fptaerr.KeyExist) {
			return fptaerr.New(fptaerr.KeyExist, "schema.CreateTable", "table already exists")
		}
		return err
	}
	return nil
}

// DropTable implements spec §4.2's drop_table: open (without create)
// every per-index sub-database, remove the schema record, then drop each
// sub-database, tolerating sub-databases that are already missing (a
// partial prior failure).
func DropTable(txn kvengine.Txn, tableShove fptype.Shove, table *Table) error {
	catalogDBI, err := txn.OpenDBI(CatalogDBIName, 0, nil, nil, false)
	if err != nil {
		return err
	}
	if _, err := txn.Delete(catalogDBI, catalogKey(tableShove), nil); err != nil {
		return err
	}
	for i, c := range table.Columns {
		if !c.Shove.Index().IsIndexed() && i != 0 {
			continue
		}
		dbi, err := txn.OpenDBI(DBIName(tableShove, i), 0, nil, nil, false)
		if err != nil {
			if fptaerr.Is(err, fptaerr.NotFound) {
				continue
			}
			return err
		}
		if err := txn.DropDBI(dbi); err != nil {
			return err
		}
	}
	return nil
}

// Load implements spec §4.2's load(txn, table_shove): fetch and
// deserialize the stored schema record.
func Load(txn kvengine.Txn, tableShove fptype.Shove) (*Table, error) {
	catalogDBI, err := txn.OpenDBI(CatalogDBIName, 0, nil, nil, false)
	if err != nil {
		return nil, err
	}
	record, found, err := txn.Get(catalogDBI, catalogKey(tableShove))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fptaerr.New(fptaerr.NotFound, "schema.Load", "no such table")
	}
	return Deserialize(record)
}

// Name is the opaque user handle of spec §3 "Name": a binding from a
// table/column identity to the schema snapshot it was last resolved
// against.
type Name struct {
	TableShove   fptype.Shove
	ColumnShove  fptype.Shove
	ColumnIndex  int
	IsColumn     bool
	SchemaVer    uint64
	resolvedOnce bool
}

// RefreshName implements spec §4.2's refresh_name: no-op when the name's
// version matches the transaction's; SCHEMA_CHANGED when the name is from
// the future (a caller bug); otherwise reload and rescan by shove.
func RefreshName(txn kvengine.Txn, n *Name, txnSchemaVersion uint64) (*Table, error) {
	if n.resolvedOnce && n.SchemaVer == txnSchemaVersion {
		return Load(txn, n.TableShove)
	}
	if n.resolvedOnce && n.SchemaVer > txnSchemaVersion {
		return nil, fptaerr.New(fptaerr.SchemaChanged, "schema.RefreshName", "name is from a newer schema version")
	}
	table, err := Load(txn, n.TableShove)
	if err != nil {
		return nil, err
	}
	if n.IsColumn {
		idx, ok := table.FindColumnByShove(n.ColumnShove)
		if !ok {
			return nil, fptaerr.New(fptaerr.SchemaChanged, "schema.RefreshName", "column no longer present")
		}
		n.ColumnIndex = idx
		n.ColumnShove = table.Columns[idx].Shove
	}
	n.SchemaVer = txnSchemaVersion
	n.resolvedOnce = true
	return table, nil
}
