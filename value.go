package fpta

import "github.com/fpta-go/fpta/internal/fptype"

// Value and ColumnType are re-exported from internal/fptype so callers
// never need to import it directly for ordinary put/get/filter use.
type (
	Value      = fptype.Value
	ColumnType = fptype.ColumnType
	IndexKind  = fptype.IndexKind
)

var (
	NullValue     = fptype.NullValue
	Uint          = fptype.Uint
	Int           = fptype.Int
	Float         = fptype.Float
	DatetimeValue = fptype.DatetimeValue
	Str           = fptype.Str
	Bin           = fptype.Bin
)

const (
	Uint16Type   = fptype.Uint16
	Uint32Type   = fptype.Uint32
	Uint64Type   = fptype.Uint64
	Int32Type    = fptype.Int32
	Int64Type    = fptype.Int64
	Float32Type  = fptype.Float32
	Float64Type  = fptype.Float64
	DatetimeType = fptype.Datetime
	StringType   = fptype.String
	OpaqueType   = fptype.Opaque
)

const (
	IndexNone      = fptype.None
	IndexIndexed   = fptype.Indexed
	IndexSecondary = fptype.Secondary
	IndexUnique    = fptype.Unique
	IndexOrdered   = fptype.Ordered
	IndexObverse   = fptype.Obverse
	IndexNullable  = fptype.Nullable
)
