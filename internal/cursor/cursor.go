// Package cursor implements spec §4.6: the poor/positioned state machine
// that walks one index, optionally range-clamped and filtered, and the
// cursor-bound update/delete operations that reconcile every other
// secondary index when the row under the cursor changes.
//
// Grounded on the original implementation's cursor.cxx (fpta_cursor_move's
// direction-swap and range-clamp loop) translated into a Go method that
// drives internal/kvengine.Cursor instead of a libmdbx MDBX_cursor
// directly; internal/tableops supplies the primary-plus-secondaries
// reconciliation this package reuses for Update/Delete (see DESIGN.md).
package cursor

import (
	"bytes"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/filter"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/keycodec"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/rowcodec"
	"github.com/fpta-go/fpta/internal/tableops"
)

const op = "cursor"

// Cursor is positioned on one column's index within one table, inside one
// transaction.
type Cursor struct {
	txn         kvengine.Txn
	engine      kvengine.Cursor
	table       *tableops.Table
	columnIndex int
	shove       fptype.Shove
	ordered     bool
	ascending   bool
	lowerKey    []byte
	upperKey    []byte
	filterExpr  filter.Expr
	cmp         indexops.CmpFunc

	// positioned is true only while key/pk/row describe a row the caller
	// can read or mutate. beforeFirst/afterLast are the state diagram's
	// terminal sub-states; when all three are false the cursor is "poor"
	// (never yet positioned, e.g. opened with DontFetch).
	positioned  bool
	beforeFirst bool
	afterLast   bool

	key []byte
	pk  []byte
	row rowcodec.Row
}

// Open implements spec §4.6's open.
func Open(txn kvengine.Txn, table *tableops.Table, columnIndex int, from, to Bound, filterExpr filter.Expr, opts Options) (*Cursor, error) {
	col, ok := table.Schema.ColumnByIndex(columnIndex)
	if !ok {
		return nil, fptaerr.New(fptaerr.Inval, op+".Open", "unknown column")
	}
	kind := col.Shove.Index()
	if !kind.IsIndexed() {
		return nil, fptaerr.New(fptaerr.EFlag, op+".Open", "column is not indexed")
	}
	if from.Kind == BoundEnd {
		return nil, fptaerr.New(fptaerr.Inval, op+".Open", "range_from cannot be the end-of-index marker")
	}
	if to.Kind == BoundBegin {
		return nil, fptaerr.New(fptaerr.Inval, op+".Open", "range_to cannot be the begin-of-index marker")
	}
	if !kind.IsOrdered() && !opts.Ascending {
		return nil, fptaerr.New(fptaerr.EFlag, op+".Open", "descending order requires an ordered index")
	}

	var lowerKey, upperKey []byte
	var err error
	if from.Kind == BoundValue {
		if lowerKey, err = keycodec.ValueToKey(kind, col.Shove.Type(), from.Value); err != nil {
			return nil, err
		}
	}
	if to.Kind == BoundValue {
		if upperKey, err = keycodec.ValueToKey(kind, col.Shove.Type(), to.Value); err != nil {
			return nil, err
		}
	}

	dbi, ok := table.DBIs[columnIndex]
	if !ok {
		return nil, fptaerr.New(fptaerr.Inval, op+".Open", "column has no open handle")
	}
	eng, err := txn.Cursor(dbi)
	if err != nil {
		return nil, err
	}

	cmp := indexops.Comparator(kind, col.Shove.Type())
	if cmp == nil {
		cmp = bytes.Compare
	}

	c := &Cursor{
		txn:         txn,
		engine:      eng,
		table:       table,
		columnIndex: columnIndex,
		shove:       col.Shove,
		ordered:     kind.IsOrdered(),
		ascending:   opts.Ascending,
		lowerKey:    lowerKey,
		upperKey:    upperKey,
		filterExpr:  filterExpr,
		cmp:         cmp,
	}

	if !opts.DontFetch {
		// Move translates OpFirst into OpLast for a descending cursor.
		if err := c.Move(OpFirst); err != nil && !fptaerr.Is(err, fptaerr.NoData) {
			return nil, err
		}
	}
	return c, nil
}

// Close releases the underlying engine cursor.
func (c *Cursor) Close() { c.engine.Close() }

// Positioned reports whether the cursor currently has a row.
func (c *Cursor) Positioned() bool { return c.positioned }

// Row returns the row at the cursor's current position.
func (c *Cursor) Row() (rowcodec.Row, error) {
	if !c.positioned {
		return rowcodec.Row{}, fptaerr.New(fptaerr.ECursor, op+".Row", "cursor not positioned")
	}
	return c.row, nil
}

// translate swaps the op against the cursor's iteration direction (spec
// §4.6: "if the cursor is descending, swaps next<->prev and
// first<->last"); duplicate navigation is always ascending within a key
// regardless of the index's own direction.
func (c *Cursor) translate(o Op) Op {
	if c.ascending {
		return o
	}
	switch o {
	case OpFirst:
		return OpLast
	case OpLast:
		return OpFirst
	case OpNext:
		return OpPrev
	case OpPrev:
		return OpNext
	case OpNextNoDup:
		return OpPrevNoDup
	case OpPrevNoDup:
		return OpNextNoDup
	default:
		return o
	}
}

// Move implements spec §4.6's move: translate op for direction, run the
// engine primitive, clamp against the open range, evaluate the filter,
// and step again on a miss.
func (c *Cursor) Move(requested Op) error {
	step := c.translate(requested)
	for {
		if !c.positioned {
			switch {
			case c.beforeFirst:
				if !isForwardOp(step) {
					return fptaerr.New(fptaerr.NoData, op+".Move", "")
				}
				step = OpFirst
			case c.afterLast:
				if isForwardOp(step) {
					return fptaerr.New(fptaerr.NoData, op+".Move", "")
				}
				step = OpLast
			default:
				if isForwardOp(step) {
					step = OpFirst
				} else {
					step = OpLast
				}
			}
		}

		key, value, ok, err := c.engineMove(step)
		if err != nil {
			return err
		}
		if !ok {
			if isForwardOp(step) {
				c.afterLast, c.beforeFirst = true, false
			} else {
				c.beforeFirst, c.afterLast = true, false
			}
			c.positioned = false
			return fptaerr.New(fptaerr.NoData, op+".Move", "")
		}
		c.beforeFirst, c.afterLast = false, false
		c.key = key

		switch c.checkBounds(key) {
		case boundsStop:
			if isForwardOp(step) {
				c.afterLast = true
			} else {
				c.beforeFirst = true
			}
			c.positioned = false
			return fptaerr.New(fptaerr.NoData, op+".Move", "")
		case boundsSkip:
			step = stepOp(step)
			continue
		}

		row, pk, err := c.fetchRow(key, value)
		if err != nil {
			return err
		}
		if c.filterExpr != nil {
			matched, err := c.filterExpr.Eval(&filter.Context{Row: row})
			if err != nil {
				return err
			}
			if !matched {
				step = stepOp(step)
				continue
			}
		}
		c.row, c.pk = row, pk
		c.positioned = true
		return nil
	}
}

func stepOp(o Op) Op {
	if isForwardOp(o) {
		return OpNext
	}
	return OpPrev
}

type boundsVerdict int

const (
	boundsOK boundsVerdict = iota
	boundsStop
	boundsSkip
)

func (c *Cursor) checkBounds(key []byte) boundsVerdict {
	if c.lowerKey != nil && c.cmp(key, c.lowerKey) < 0 {
		if c.ordered {
			return boundsStop
		}
		return boundsSkip
	}
	if c.upperKey != nil && c.cmp(key, c.upperKey) >= 0 {
		if c.ordered {
			return boundsStop
		}
		return boundsSkip
	}
	return boundsOK
}

func (c *Cursor) engineMove(o Op) (key, value []byte, ok bool, err error) {
	switch o {
	case OpFirst:
		if c.ordered && c.lowerKey != nil {
			return c.engine.Seek(c.lowerKey)
		}
		return c.engine.First()
	case OpLast:
		if c.ordered && c.upperKey != nil {
			_, _, found, err := c.engine.Seek(c.upperKey)
			if err != nil {
				return nil, nil, false, err
			}
			if found {
				return c.engine.Prev()
			}
		}
		return c.engine.Last()
	case OpNext:
		return c.engine.Next()
	case OpPrev:
		return c.engine.Prev()
	case OpFirstDup:
		v, ok, err := c.engine.FirstDup()
		if !ok {
			return nil, nil, false, err
		}
		return c.key, v, true, nil
	case OpLastDup:
		v, ok, err := c.engine.LastDup()
		if !ok {
			return nil, nil, false, err
		}
		return c.key, v, true, nil
	case OpNextDup:
		v, ok, err := c.engine.NextDup()
		if !ok {
			return nil, nil, false, err
		}
		return c.key, v, true, nil
	case OpPrevDup:
		v, ok, err := c.engine.PrevDup()
		if !ok {
			return nil, nil, false, err
		}
		return c.key, v, true, nil
	case OpNextNoDup:
		return c.skipDups(true)
	case OpPrevNoDup:
		return c.skipDups(false)
	default:
		return nil, nil, false, fptaerr.New(fptaerr.Inval, op+".Move", "unknown op")
	}
}

// skipDups advances past every remaining duplicate of the current key
// (spec §4.6's "*_nodup"); the in-memory engine has no native primitive
// for this, so it walks one item at a time, same as a real engine would
// once it reaches the next distinct key.
func (c *Cursor) skipDups(forward bool) ([]byte, []byte, bool, error) {
	startKey := c.key
	for {
		var k, v []byte
		var ok bool
		var err error
		if forward {
			k, v, ok, err = c.engine.Next()
		} else {
			k, v, ok, err = c.engine.Prev()
		}
		if err != nil || !ok {
			return nil, nil, false, err
		}
		if startKey == nil || c.cmp(k, startKey) != 0 {
			return k, v, true, nil
		}
	}
}

// fetchRow decodes the row the current (key, value) pair identifies: for
// the primary index value is the row itself; for a secondary index value
// is the primary key and the row must be fetched from the primary dbi
// (spec §4.6 move step 3).
func (c *Cursor) fetchRow(key, value []byte) (rowcodec.Row, []byte, error) {
	if c.columnIndex == 0 {
		row, err := rowcodec.Decode(value)
		return row, key, err
	}
	rowBytes, found, err := c.txn.Get(c.table.DBIs[0], value)
	if err != nil {
		return rowcodec.Row{}, nil, err
	}
	if !found {
		return rowcodec.Row{}, nil, fptaerr.New(fptaerr.IndexCorrupted, op+".Move", "secondary entry with no primary row")
	}
	row, err := rowcodec.Decode(rowBytes)
	return row, value, err
}

// Count implements spec §4.6's count: walk forward from the current
// position (inclusive) until NODATA or limit rows have been counted.
// limit<=0 means unbounded.
func (c *Cursor) Count(limit int) (int, error) {
	n := 0
	if c.positioned {
		n = 1
	}
	for limit <= 0 || n < limit {
		if err := c.Move(OpNext); err != nil {
			if fptaerr.Is(err, fptaerr.NoData) {
				break
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// Dups implements spec §4.6's dups: 1 for unique indexes, the engine's
// duplicate count otherwise.
func (c *Cursor) Dups() (int, error) {
	if !c.positioned {
		return 0, fptaerr.New(fptaerr.ECursor, op+".Dups", "cursor not positioned")
	}
	if c.shove.Index().IsUnique() {
		return 1, nil
	}
	return c.engine.CountDup()
}

// Update implements spec §4.6's cursor-bound update.
func (c *Cursor) Update(newRow rowcodec.Row) error {
	if !c.positioned {
		return fptaerr.New(fptaerr.ECursor, op+".Update", "cursor not positioned")
	}
	newIndexKey, err := indexops.RowToKey(c.shove, newRow, c.columnIndex)
	if err != nil {
		return err
	}
	if !bytes.Equal(newIndexKey, c.key) {
		return fptaerr.New(fptaerr.RowMismatch, op+".Update", "new row's indexed field does not match the cursor position")
	}

	primaryShove := c.table.Schema.Columns[0].Shove
	newPK, err := indexops.RowToKey(primaryShove, newRow, 0)
	if err != nil {
		return err
	}
	secondaries := c.table.Secondaries(c.columnIndex)
	newRowBytes := rowcodec.Encode(newRow)

	if len(secondaries) == 0 && c.columnIndex == 0 {
		if err := c.engine.Put(c.key, newRowBytes, false); err != nil {
			return err
		}
		c.row = newRow
		return nil
	}

	if err := indexops.SecondaryUpsert(c.txn, secondaries, c.pk, c.row, true, newPK, newRow, c.columnIndex); err != nil {
		return err
	}
	switch {
	case bytes.Equal(newPK, c.pk):
		if err := c.txn.Put(c.table.DBIs[0], newPK, newRowBytes, false, false); err != nil {
			return err
		}
	default:
		if _, err := c.txn.Delete(c.table.DBIs[0], c.pk, nil); err != nil {
			return err
		}
		if err := c.txn.Put(c.table.DBIs[0], newPK, newRowBytes, true, false); err != nil {
			return err
		}
		if c.columnIndex != 0 {
			if err := c.engine.Put(c.key, newPK, false); err != nil {
				return err
			}
		}
	}
	c.row, c.pk = newRow, newPK
	return nil
}

// Delete implements spec §4.6's cursor-bound delete.
func (c *Cursor) Delete() error {
	if !c.positioned {
		return fptaerr.New(fptaerr.ECursor, op+".Delete", "cursor not positioned")
	}
	oldRow, pk := c.row, c.pk
	secondaries := c.table.Secondaries(c.columnIndex)

	if _, err := c.txn.Delete(c.table.DBIs[0], pk, nil); err != nil {
		return err
	}
	if err := indexops.SecondaryRemove(c.txn, secondaries, pk, oldRow, c.columnIndex); err != nil {
		return err
	}
	if c.columnIndex != 0 {
		if err := c.engine.Delete(); err != nil {
			return err
		}
	}
	c.positioned = false
	c.row = rowcodec.Row{}
	c.pk = nil
	return nil
}
