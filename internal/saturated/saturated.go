// Package saturated implements spec §4.8: saturating min/max/add/sub over
// a table's numeric columns, built on internal/numeric's overflow-safe
// integer helpers, plus cursor_inplace which rebuilds the current row
// through internal/cursor's update path.
//
// No pack example ships saturating-arithmetic helpers; this is a small,
// self-contained package over internal/numeric (see DESIGN.md).
package saturated

import (
	"math"

	"github.com/fpta-go/fpta/internal/cursor"
	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/numeric"
)

const op = "saturated"

// Op selects a cursor_inplace operation.
type Op int

const (
	OpMin Op = iota
	OpMax
	OpAdd
	OpSub
)

// Bottom returns the type's minimum representable value, adjusted by one
// when the nullable sentinel for this direction occupies the bottom of
// the range (reverse-ordered nullable integer columns).
func Bottom(kind fptype.IndexKind, ctype fptype.ColumnType) (fptype.Value, error) {
	reserve := kind.IsNullable() && kind.IsReverse()
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		lo := uint64(0)
		if reserve {
			lo = 1
		}
		return fptype.Uint(lo), nil
	case fptype.Int32:
		lo := int64(numeric.MinInt32)
		if reserve {
			lo++
		}
		return fptype.Int(lo), nil
	case fptype.Int64:
		lo := int64(numeric.MinInt64)
		if reserve {
			lo++
		}
		return fptype.Int(lo), nil
	case fptype.Float32, fptype.Float64:
		return fptype.Float(math.Inf(-1)), nil
	default:
		return fptype.Value{}, fptaerr.New(fptaerr.EType, op+".Bottom", ctype.String())
	}
}

// Top is Bottom's upper-bound counterpart: obverse-ordered nullable
// integer columns reserve their top-of-range pattern for NIL.
func Top(kind fptype.IndexKind, ctype fptype.ColumnType) (fptype.Value, error) {
	reserve := kind.IsNullable() && kind.IsObverse()
	switch ctype.Base() {
	case fptype.Uint16:
		hi := uint64(numeric.MaxUint16)
		if reserve {
			hi--
		}
		return fptype.Uint(hi), nil
	case fptype.Uint32:
		hi := uint64(numeric.MaxUint32)
		if reserve {
			hi--
		}
		return fptype.Uint(hi), nil
	case fptype.Uint64:
		hi := uint64(numeric.MaxUint64)
		if reserve {
			hi--
		}
		return fptype.Uint(hi), nil
	case fptype.Int32:
		hi := int64(numeric.MaxInt32)
		if reserve {
			hi--
		}
		return fptype.Int(hi), nil
	case fptype.Int64:
		hi := int64(numeric.MaxInt64)
		if reserve {
			hi--
		}
		return fptype.Int(hi), nil
	case fptype.Float32, fptype.Float64:
		return fptype.Float(math.Inf(1)), nil
	default:
		return fptype.Value{}, fptaerr.New(fptaerr.EType, op+".Top", ctype.String())
	}
}

// Confine clamps v into [bottom, top].
func Confine(ctype fptype.ColumnType, v, bottom, top fptype.Value) fptype.Value {
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		return fptype.Uint(numeric.ClampU64(v.U, bottom.U, top.U))
	case fptype.Int32, fptype.Int64:
		return fptype.Int(numeric.ClampI64(v.I, bottom.I, top.I))
	case fptype.Float32, fptype.Float64:
		f := v.F
		if f < bottom.F {
			f = bottom.F
		}
		if f > top.F {
			f = top.F
		}
		return fptype.Float(f)
	default:
		return v
	}
}

func isZero(ctype fptype.ColumnType, v fptype.Value) bool {
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		return v.U == 0
	case fptype.Int32, fptype.Int64:
		return v.I == 0
	case fptype.Float32, fptype.Float64:
		return v.F == 0
	default:
		return true
	}
}

func less(ctype fptype.ColumnType, a, b fptype.Value) bool {
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		return a.U < b.U
	case fptype.Int32, fptype.Int64:
		return a.I < b.I
	default:
		return a.F < b.F
	}
}

// Min implements spec §4.8's min(field?, addend): result = min(field,
// clamp(addend)) when field is present, else clamp(addend).
func Min(kind fptype.IndexKind, ctype fptype.ColumnType, field fptype.Value, hasField bool, addend fptype.Value) (fptype.Value, error) {
	bottom, top, err := limits(kind, ctype)
	if err != nil {
		return fptype.Value{}, err
	}
	clamped := Confine(ctype, addend, bottom, top)
	if !hasField {
		return clamped, nil
	}
	if less(ctype, field, clamped) {
		return field, nil
	}
	return clamped, nil
}

// Max is Min's symmetric counterpart.
func Max(kind fptype.IndexKind, ctype fptype.ColumnType, field fptype.Value, hasField bool, addend fptype.Value) (fptype.Value, error) {
	bottom, top, err := limits(kind, ctype)
	if err != nil {
		return fptype.Value{}, err
	}
	clamped := Confine(ctype, addend, bottom, top)
	if !hasField {
		return clamped, nil
	}
	if less(ctype, field, clamped) {
		return clamped, nil
	}
	return field, nil
}

func limits(kind fptype.IndexKind, ctype fptype.ColumnType) (bottom, top fptype.Value, err error) {
	if bottom, err = Bottom(kind, ctype); err != nil {
		return
	}
	top, err = Top(kind, ctype)
	return
}

// Add implements spec §4.8's add(field?, addend>=0): saturate toward top.
// When the field is absent and addend is exactly zero and the
// sentinel-adjusted bottom is nonzero, this is a true no-op (changed is
// false) rather than materializing bottom as the field's new value.
func Add(kind fptype.IndexKind, ctype fptype.ColumnType, field fptype.Value, hasField bool, addend fptype.Value) (result fptype.Value, changed bool, err error) {
	bottom, top, err := limits(kind, ctype)
	if err != nil {
		return fptype.Value{}, false, err
	}
	if !hasField {
		if isZero(ctype, addend) && !isZero(ctype, bottom) {
			return fptype.Value{}, false, nil
		}
		field = bottom
	}
	return saturateAdd(ctype, field, addend, top), true, nil
}

// Sub is Add's symmetric counterpart, saturating toward bottom and basing
// an absent field on top rather than bottom.
func Sub(kind fptype.IndexKind, ctype fptype.ColumnType, field fptype.Value, hasField bool, subtrahend fptype.Value) (result fptype.Value, changed bool, err error) {
	bottom, top, err := limits(kind, ctype)
	if err != nil {
		return fptype.Value{}, false, err
	}
	if !hasField {
		if isZero(ctype, subtrahend) && !isZero(ctype, top) {
			return fptype.Value{}, false, nil
		}
		field = top
	}
	return saturateSub(ctype, field, subtrahend, bottom), true, nil
}

func saturateAdd(ctype fptype.ColumnType, a, b, top fptype.Value) fptype.Value {
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		sum, overflow := numeric.SafeAddU64(a.U, b.U)
		if overflow || sum > top.U {
			return fptype.Uint(top.U)
		}
		return fptype.Uint(sum)
	case fptype.Int32, fptype.Int64:
		sum := a.I + b.I
		if sum < a.I || sum > top.I {
			return fptype.Int(top.I)
		}
		return fptype.Int(sum)
	case fptype.Float32, fptype.Float64:
		return fptype.Float(a.F + b.F) // IEEE arithmetic saturates to +Inf
	default:
		return a
	}
}

func saturateSub(ctype fptype.ColumnType, a, b, bottom fptype.Value) fptype.Value {
	switch ctype.Base() {
	case fptype.Uint16, fptype.Uint32, fptype.Uint64:
		diff, underflow := numeric.SafeSubU64(a.U, b.U)
		if underflow || diff < bottom.U {
			return fptype.Uint(bottom.U)
		}
		return fptype.Uint(diff)
	case fptype.Int32, fptype.Int64:
		diff := a.I - b.I
		if diff > a.I || diff < bottom.I {
			return fptype.Int(bottom.I)
		}
		return fptype.Int(diff)
	case fptype.Float32, fptype.Float64:
		return fptype.Float(a.F - b.F) // IEEE arithmetic saturates to -Inf
	default:
		return a
	}
}

// CursorInplace implements spec §4.8's cursor_inplace: fetch the current
// row, apply op to columnIndex's value (growing the row by one field slot
// when it was absent), validate the result against the field's own type
// limits, and write back through the cursor's update path (which in turn
// re-validates uniqueness against the cursor's index).
func CursorInplace(c *cursor.Cursor, columnIndex int, kind fptype.IndexKind, ctype fptype.ColumnType, op Op, operand fptype.Value) error {
	row, err := c.Row()
	if err != nil {
		return err
	}
	field, hasField := row.Field(columnIndex)

	var result fptype.Value
	changed := true
	switch op {
	case OpMin:
		result, err = Min(kind, ctype, field, hasField, operand)
	case OpMax:
		result, err = Max(kind, ctype, field, hasField, operand)
	case OpAdd:
		result, changed, err = Add(kind, ctype, field, hasField, operand)
	case OpSub:
		result, changed, err = Sub(kind, ctype, field, hasField, operand)
	default:
		return fptaerr.New(fptaerr.Inval, "saturated.CursorInplace", "unknown op")
	}
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return c.Update(row.With(columnIndex, result))
}
