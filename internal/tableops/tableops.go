// Package tableops implements spec §4.5: single-row insert/update/upsert,
// delete, and get, coordinating the primary index with every secondary
// through internal/indexops. Grounded on the original implementation's
// table.cxx (itself a thin dispatcher; the real logic it calls into lives
// in data.cxx, which this package's Put/Delete mirror) — see DESIGN.md.
package tableops

import (
	"bytes"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/rowcodec"
	"github.com/fpta-go/fpta/internal/schema"
)

const op = "tableops"

// Mode selects put's conflict behavior (spec §4.5).
type Mode int

const (
	Insert Mode = iota
	Update
	Upsert
)

// Table bundles what Put/Delete/Get need about one table: its schema and
// the already-opened dbi handles for the primary and every secondary
// index, keyed by column index.
type Table struct {
	Schema *schema.Table
	DBIs   map[int]kvengine.DBI // column index -> dbi handle
}

func (t *Table) secondaries(skip int) []indexops.IndexDef {
	var out []indexops.IndexDef
	for i, c := range t.Schema.Columns {
		if i == 0 || !c.Shove.Index().IsSecondary() || i == skip {
			continue
		}
		out = append(out, indexops.IndexDef{DBI: t.DBIs[i], ColumnIndex: i, Shove: c.Shove})
	}
	return out
}

// Secondaries exposes t's secondary-index definitions to internal/cursor's
// cursor-bound update/delete, which must reconcile every secondary other
// than the one the cursor itself is positioned on.
func (t *Table) Secondaries(skip int) []indexops.IndexDef {
	return t.secondaries(skip)
}

// Put implements spec §4.5's put: compute the new primary key, probe for
// a conflict per mode, write the primary row, and (if the table has
// secondaries) reconcile them against the previous row.
func Put(txn kvengine.Txn, t *Table, row rowcodec.Row, mode Mode) error {
	primaryDBI := t.DBIs[0]
	primaryShove := t.Schema.Columns[0].Shove
	newPK, err := indexops.RowToKey(primaryShove, row, 0)
	if err != nil {
		return err
	}
	newRowBytes := rowcodec.Encode(row)

	oldRowBytes, existed, err := txn.Get(primaryDBI, newPK)
	if err != nil {
		return err
	}

	switch mode {
	case Insert:
		if existed && primaryShove.Index().IsUnique() {
			return fptaerr.New(fptaerr.KeyExist, op+".Put", "row already exists")
		}
	case Update:
		if !existed {
			return fptaerr.New(fptaerr.NotFound, op+".Put", "row does not exist")
		}
	case Upsert:
		if existed && !primaryShove.Index().IsUnique() {
			return fptaerr.New(fptaerr.KeyExist, op+".Put", "ambiguous upsert against duplicate-key primary")
		}
	}
	if existed && bytes.Equal(oldRowBytes, newRowBytes) {
		return fptaerr.New(fptaerr.KeyExist, op+".Put", "exact duplicate")
	}

	if err := txn.Put(primaryDBI, newPK, newRowBytes, false, false); err != nil {
		return err
	}

	secondaries := t.secondaries(0)
	if len(secondaries) == 0 {
		return nil
	}
	var oldRow rowcodec.Row
	if existed {
		oldRow, err = rowcodec.Decode(oldRowBytes)
		if err != nil {
			return fptaerr.Wrap(fptaerr.IndexCorrupted, op+".Put", "corrupt stored row", err)
		}
	}
	if err := indexops.SecondaryUpsert(txn, secondaries, newPK, oldRow, existed, newPK, row, 0); err != nil {
		return err
	}
	return nil
}

// Delete implements spec §4.5's delete: compute pk, delete the primary
// row, then remove it from every secondary.
func Delete(txn kvengine.Txn, t *Table, row rowcodec.Row) error {
	primaryDBI := t.DBIs[0]
	primaryShove := t.Schema.Columns[0].Shove
	pk, err := indexops.RowToKey(primaryShove, row, 0)
	if err != nil {
		return err
	}
	oldRowBytes, existed, err := txn.Get(primaryDBI, pk)
	if err != nil {
		return err
	}
	if !existed {
		return fptaerr.New(fptaerr.NotFound, op+".Delete", "row does not exist")
	}
	oldRow, err := rowcodec.Decode(oldRowBytes)
	if err != nil {
		return fptaerr.Wrap(fptaerr.IndexCorrupted, op+".Delete", "corrupt stored row", err)
	}
	if _, err := txn.Delete(primaryDBI, pk, nil); err != nil {
		return err
	}
	secondaries := t.secondaries(0)
	if len(secondaries) == 0 {
		return nil
	}
	return indexops.SecondaryRemove(txn, secondaries, pk, oldRow, 0)
}

// Get implements spec §4.5's get: value must encode against a unique
// index (primary or secondary); a secondary hit whose primary lookup
// misses is INDEX_CORRUPTED.
func Get(txn kvengine.Txn, t *Table, columnIndex int, key []byte) (rowcodec.Row, error) {
	col, ok := t.Schema.ColumnByIndex(columnIndex)
	if !ok {
		return rowcodec.Row{}, fptaerr.New(fptaerr.Inval, op+".Get", "unknown column")
	}
	if !col.Shove.Index().IsUnique() {
		return rowcodec.Row{}, fptaerr.New(fptaerr.EFlag, op+".Get", "get requires a unique index")
	}
	if columnIndex == 0 {
		rowBytes, found, err := txn.Get(t.DBIs[0], key)
		if err != nil {
			return rowcodec.Row{}, err
		}
		if !found {
			return rowcodec.Row{}, fptaerr.New(fptaerr.NotFound, op+".Get", "")
		}
		return rowcodec.Decode(rowBytes)
	}
	pk, found, err := txn.Get(t.DBIs[columnIndex], key)
	if err != nil {
		return rowcodec.Row{}, err
	}
	if !found {
		return rowcodec.Row{}, fptaerr.New(fptaerr.NotFound, op+".Get", "")
	}
	rowBytes, found, err := txn.Get(t.DBIs[0], pk)
	if err != nil {
		return rowcodec.Row{}, err
	}
	if !found {
		return rowcodec.Row{}, fptaerr.New(fptaerr.IndexCorrupted, op+".Get", "secondary entry with no primary row")
	}
	return rowcodec.Decode(rowBytes)
}
