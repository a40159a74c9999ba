package fpta

import (
	"github.com/fpta-go/fpta/internal/cursor"
	"github.com/fpta-go/fpta/internal/fptaerr"
)

// Bound, BoundKind, Op and Options are re-exported from internal/cursor so
// callers never need to import it directly.
type (
	Bound      = cursor.Bound
	BoundKind  = cursor.BoundKind
	CursorOp   = cursor.Op
	CursorOpts = cursor.Options
)

const (
	BoundNone  = cursor.BoundNone
	BoundValue = cursor.BoundValue
	BoundBegin = cursor.BoundBegin
	BoundEnd   = cursor.BoundEnd
)

const (
	OpFirst     = cursor.OpFirst
	OpLast      = cursor.OpLast
	OpNext      = cursor.OpNext
	OpPrev      = cursor.OpPrev
	OpFirstDup  = cursor.OpFirstDup
	OpLastDup   = cursor.OpLastDup
	OpNextDup   = cursor.OpNextDup
	OpPrevDup   = cursor.OpPrevDup
	OpNextNoDup = cursor.OpNextNoDup
	OpPrevNoDup = cursor.OpPrevNoDup
)

// Unbounded, Begin, End, At construct Bound values; re-exported for the
// same reason as the types above.
var (
	Unbounded = cursor.Unbounded
	BeginMark = cursor.Begin
	EndMark   = cursor.End
	At        = cursor.At
)

// Cursor wraps internal/cursor.Cursor, binding it to this package's Name
// and Txn so callers never reach into internal/ packages directly.
type Cursor struct {
	inner *cursor.Cursor
	txn   *Txn
}

// OpenCursor implements spec §4.6's open against n's column columnIndex.
func (t *Txn) OpenCursor(n *Name, columnIndex int, from, to Bound, filterExpr Filter, opts CursorOpts) (*Cursor, error) {
	if err := n.refresh(t); err != nil {
		return nil, err
	}
	inner, err := cursor.Open(t.engine, n.table, columnIndex, from, to, filterExpr, opts)
	if err != nil {
		return nil, err
	}
	return &Cursor{inner: inner, txn: t}, nil
}

// Close releases the underlying engine cursor.
func (c *Cursor) Close() { c.inner.Close() }

// Positioned reports whether the cursor currently has a row.
func (c *Cursor) Positioned() bool { return c.inner.Positioned() }

// Row returns the row at the cursor's current position.
func (c *Cursor) Row() (Row, error) { return c.inner.Row() }

// Move implements spec §4.6's move.
func (c *Cursor) Move(op CursorOp) error {
	err := c.inner.Move(op)
	outcome := "ok"
	switch {
	case err == nil:
		outcome = "ok"
	case fptaerr.Is(err, fptaerr.NoData):
		outcome = "nodata"
	default:
		outcome = "error"
	}
	c.txn.db.metrics.CursorMoveTotal.WithLabelValues(outcome).Inc()
	return err
}

// Count implements spec §4.6's count.
func (c *Cursor) Count(limit int) (int, error) { return c.inner.Count(limit) }

// Dups implements spec §4.6's dups.
func (c *Cursor) Dups() (int, error) { return c.inner.Dups() }

// Update implements spec §4.6's cursor-bound update.
func (c *Cursor) Update(row Row) error { return c.inner.Update(row) }

// Delete implements spec §4.6's cursor-bound delete.
func (c *Cursor) Delete() error { return c.inner.Delete() }
