package fpta

import (
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/saturated"
)

// SaturatedOp selects CursorInplace's arithmetic (spec §4.8).
type SaturatedOp = saturated.Op

const (
	OpMin = saturated.OpMin
	OpMax = saturated.OpMax
	OpAdd = saturated.OpAdd
	OpSub = saturated.OpSub
)

// CursorInplace implements spec §4.8's cursor_inplace: fetch the row under
// c, apply op to the field at columnIndex, and write the result back
// through c's own cursor-bound update.
func CursorInplace(c *Cursor, columnIndex int, kind fptype.IndexKind, ctype fptype.ColumnType, op SaturatedOp, operand fptype.Value) error {
	return saturated.CursorInplace(c.inner, columnIndex, kind, ctype, op, operand)
}
