package indexops

import (
	"bytes"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/keycodec"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/rowcodec"
)

// IndexDef is the slice of a table's schema that secondary maintenance
// needs: which dbi backs the index, which row column it is keyed on, and
// the column's packed descriptor (type + index kind).
type IndexDef struct {
	DBI         kvengine.DBI
	ColumnIndex int
	Shove       fptype.Shove
}

// RowToKey implements spec §4.1's row_to_key for a single (non-composite)
// column: look up the field in row and encode it per the column's shove.
// A present-but-absent required field surfaces as COLUMN_MISSING via
// keycodec's own nullability check.
func RowToKey(shove fptype.Shove, row rowcodec.Row, columnIndex int) ([]byte, error) {
	v, present := row.Field(columnIndex)
	if !present {
		v = fptype.NullValue()
	}
	return keycodec.ValueToKey(shove.Index(), shove.Type(), v)
}

// fieldChanged reports whether columnIndex's value differs between two rows
// (spec secondary.cxx's fpta_is_column_changed): a byte-exact comparison of
// the encoded key is sufficient because keycodec's encoding is injective
// for any single column's declared type.
func fieldChanged(shove fptype.Shove, oldRow, newRow rowcodec.Row, columnIndex int) (bool, error) {
	oldKey, err := RowToKey(shove, oldRow, columnIndex)
	if err != nil {
		return false, err
	}
	newKey, err := RowToKey(shove, newRow, columnIndex)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(oldKey, newKey), nil
}

// SecondaryUpsert implements spec §4.4's secondary_upsert: called once the
// primary row is already in place, it brings every secondary index (other
// than stepover) in line with newRow, removing oldRow's stale entry first
// when the row previously existed and the indexed field (or the primary
// key) changed. Grounded on the original implementation's
// fpta_secondary_upsert (secondary.cxx).
func SecondaryUpsert(txn kvengine.Txn, indexes []IndexDef, oldPK []byte, oldRow rowcodec.Row, hasOld bool,
	newPK []byte, newRow rowcodec.Row, stepover int) error {
	for _, idx := range indexes {
		if idx.ColumnIndex == stepover {
			continue
		}
		if hasOld {
			changed, err := fieldChanged(idx.Shove, oldRow, newRow, idx.ColumnIndex)
			if err != nil {
				return err
			}
			if !changed && bytes.Equal(oldPK, newPK) {
				continue
			}
			if changed || !bytes.Equal(oldPK, newPK) {
				oldKey, err := RowToKey(idx.Shove, oldRow, idx.ColumnIndex)
				if err != nil {
					return err
				}
				found, err := txn.Delete(idx.DBI, oldKey, oldPK)
				if err != nil {
					return err
				}
				if !found {
					return fptaerr.New(fptaerr.IndexCorrupted, "indexops.SecondaryUpsert", "stale secondary entry not found")
				}
			}
		}
		newKey, err := RowToKey(idx.Shove, newRow, idx.ColumnIndex)
		if err != nil {
			return err
		}
		if err := txn.Put(idx.DBI, newKey, newPK, false, true); err != nil {
			if fptaerr.Is(err, fptaerr.KeyExist) {
				return fptaerr.New(fptaerr.IndexCorrupted, "indexops.SecondaryUpsert", "duplicate secondary key")
			}
			return err
		}
	}
	return nil
}

// SecondaryRemove implements spec §4.4's secondary_remove: deletes pk from
// every secondary index (other than stepover), using oldRow to recompute
// each index's key. Grounded on fpta_secondary_remove (secondary.cxx).
func SecondaryRemove(txn kvengine.Txn, indexes []IndexDef, pk []byte, oldRow rowcodec.Row, stepover int) error {
	for _, idx := range indexes {
		if idx.ColumnIndex == stepover {
			continue
		}
		key, err := RowToKey(idx.Shove, oldRow, idx.ColumnIndex)
		if err != nil {
			return err
		}
		found, err := txn.Delete(idx.DBI, key, pk)
		if err != nil {
			return err
		}
		if !found {
			return fptaerr.New(fptaerr.IndexCorrupted, "indexops.SecondaryRemove", "secondary entry not found")
		}
	}
	return nil
}
