package fptype

// ValueKind tags the payload carried by a Value.
type ValueKind uint8

const (
	VNull ValueKind = iota
	VUint
	VInt
	VFloat
	VDatetime
	VString
	VBinary
	// VShoved tags a value decoded from an oversized ("shoved") key: it
	// carries only the raw key bytes and must not be treated as the
	// original value (spec §4.1 "Decoding").
	VShoved
)

// Value is the tagged union this layer exchanges with the row/tuple
// collaborator (out of scope per spec §1; see SPEC_FULL.md for the minimal
// stand-in used by this repository's tests, internal/rowcodec).
type Value struct {
	Kind ValueKind
	U    uint64
	I    int64
	F    float64
	B    []byte // string/opaque/fixed-binary/shoved-key payload
}

// NullValue returns the absent-value marker.
func NullValue() Value { return Value{Kind: VNull} }

// IsNull reports whether v represents an absent field.
func (v Value) IsNull() bool { return v.Kind == VNull }

func Uint(u uint64) Value    { return Value{Kind: VUint, U: u} }
func Int(i int64) Value      { return Value{Kind: VInt, I: i} }
func Float(f float64) Value  { return Value{Kind: VFloat, F: f} }
func DatetimeValue(u uint64) Value { return Value{Kind: VDatetime, U: u} }
func Str(s string) Value     { return Value{Kind: VString, B: []byte(s)} }
func Bin(b []byte) Value     { return Value{Kind: VBinary, B: b} }
func Shoved(b []byte) Value  { return Value{Kind: VShoved, B: b} }

func (v Value) String() string {
	if v.Kind == VString {
		return string(v.B)
	}
	return ""
}
