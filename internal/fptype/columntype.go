// Package fptype holds the data-model primitives of spec §3: column types,
// index-kind flags, the packed Shove column descriptor, and the tagged
// Value used to pass column contents across the KeyCodec/IndexOps/Cursor
// boundary. These are pure value types with no I/O.
package fptype

// ColumnType is the scalar (or array-of-scalar) type of a column, packed
// into the low bits of a Shove. Column 0 of the enum, Null, doubles as the
// marker for a synthetic composite-index "column" (spec §3).
type ColumnType uint8

const (
	Null ColumnType = iota
	Uint16
	Uint32
	Uint64
	Int32
	Int64
	Float32
	Float64
	Fixed96
	Fixed128
	Fixed160
	Fixed256
	Datetime
	String
	Opaque
	Nested

	// arrayBit, added to any of the above (except Null), marks a typed
	// array column. Array columns are never indexable (spec §3).
	arrayBit ColumnType = 1 << 4
)

// Array returns the array-of-t type for a base scalar type t.
func Array(base ColumnType) ColumnType { return base | arrayBit }

// IsArray reports whether t is a typed-array column type.
func (t ColumnType) IsArray() bool { return t&arrayBit != 0 }

// Base strips the array bit, returning the element type.
func (t ColumnType) Base() ColumnType { return t &^ arrayBit }

// FixedWidth returns the encoded byte width of fixed-size scalar types, and
// ok=false for variable-width or array types.
func (t ColumnType) FixedWidth() (width int, ok bool) {
	switch t.Base() {
	case Uint16:
		return 2, true
	case Uint32, Int32, Float32:
		return 4, true
	case Uint64, Int64, Float64, Datetime:
		return 8, true
	case Fixed96:
		return 12, true
	case Fixed128:
		return 16, true
	case Fixed160:
		return 20, true
	case Fixed256:
		return 32, true
	default:
		return 0, false
	}
}

// IsNumeric reports whether t is one of the saturated-arithmetic-eligible
// scalar types (spec §4.8): unsigned/signed integers and floats.
func (t ColumnType) IsNumeric() bool {
	switch t.Base() {
	case Uint16, Uint32, Uint64, Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is a signed integer type.
func (t ColumnType) IsSigned() bool {
	switch t.Base() {
	case Int32, Int64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t is a floating-point type.
func (t ColumnType) IsFloat() bool {
	switch t.Base() {
	case Float32, Float64:
		return true
	default:
		return false
	}
}

// IsVariableWidth reports whether t's encoding has no fixed byte width.
func (t ColumnType) IsVariableWidth() bool {
	switch t.Base() {
	case String, Opaque, Nested:
		return true
	default:
		return false
	}
}

func (t ColumnType) String() string {
	names := [...]string{
		"null", "uint16", "uint32", "uint64", "int32", "int64",
		"float32", "float64", "fixed96", "fixed128", "fixed160",
		"fixed256", "datetime", "string", "opaque", "nested",
	}
	base := t.Base()
	name := "?"
	if int(base) < len(names) {
		name = names[base]
	}
	if t.IsArray() {
		return "array<" + name + ">"
	}
	return name
}
