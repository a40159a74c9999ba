package fpta

import "github.com/fpta-go/fpta/internal/rowcodec"

// Row is re-exported from internal/rowcodec: a sparse, column-indexed set
// of field values (spec §1's out-of-scope tuple collaborator's minimal
// stand-in, see SPEC_FULL.md).
type Row = rowcodec.Row

// NewRow builds a Row from a column-index -> value map.
func NewRow(fields map[int]Value) Row { return rowcodec.NewRow(fields) }
