// Package fptaerr defines the closed set of error kinds surfaced by every
// layer of the store, following spec §7.
package fptaerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds from spec §7. Kind carries the surface
// semantics, not a message: call sites branch on Kind, not on Error().
type Kind int

const (
	// OK is the zero value and never appears in a returned *Error.
	OK Kind = iota
	// Inval marks a programming mistake: a nil or otherwise invalid argument.
	Inval
	// EPerm marks an operation not allowed at the current transaction level.
	EPerm
	// EFlag marks an invalid combination of index/cursor flags.
	EFlag
	// EName marks a bad table/column name.
	EName
	// EType marks a value kind incompatible with the column's declared type.
	EType
	// EValue marks an out-of-range or otherwise invalid value (e.g. NaN
	// where not permitted).
	EValue
	// DatalenMismatch marks a fixed-width blob of the wrong size.
	DatalenMismatch
	// KeyExist marks a uniqueness violation on insert/upsert.
	KeyExist
	// NotFound marks a missing row/key on update/get/delete.
	NotFound
	// NoData marks end-of-iteration for a cursor.
	NoData
	// ECursor marks a cursor that is not positioned.
	ECursor
	// ColumnMissing marks a row lacking a required indexed field.
	ColumnMissing
	// IndexCorrupted marks a stored-data invariant violation.
	IndexCorrupted
	// SimilarIndex marks a redundant composite-index declaration.
	SimilarIndex
	// SchemaCorrupted marks a checksum/signature mismatch on the stored schema.
	SchemaCorrupted
	// SchemaChanged marks a stale name handle relative to the transaction.
	SchemaChanged
	// TxnCancelled marks a transaction whose internal_abort already ran.
	TxnCancelled
	// TardyDbi marks a stale handle that cannot yet be safely closed.
	TardyDbi
	// NoMem marks allocation failure.
	NoMem
	// ENoImp marks an unimplemented code path.
	ENoImp
	// RowMismatch marks a cursor-bound update whose row doesn't match the
	// cursor's current index key.
	RowMismatch
	// WannaDie marks an unrecoverable condition; the caller should end the
	// transaction and, per an installed panic handler, possibly abort the
	// process.
	WannaDie
)

var kindNames = map[Kind]string{
	OK:              "OK",
	Inval:           "INVAL",
	EPerm:           "EPERM",
	EFlag:           "EFLAG",
	EName:           "ENAME",
	EType:           "ETYPE",
	EValue:          "EVALUE",
	DatalenMismatch: "DATALEN_MISMATCH",
	KeyExist:        "KEYEXIST",
	NotFound:        "NOTFOUND",
	NoData:          "NODATA",
	ECursor:         "ECURSOR",
	ColumnMissing:   "COLUMN_MISSING",
	IndexCorrupted:  "INDEX_CORRUPTED",
	SimilarIndex:    "SIMILAR_INDEX",
	SchemaCorrupted: "SCHEMA_CORRUPTED",
	SchemaChanged:   "SCHEMA_CHANGED",
	TxnCancelled:    "TXN_CANCELLED",
	TardyDbi:        "TARDY_DBI",
	NoMem:           "NOMEM",
	ENoImp:          "ENOIMP",
	RowMismatch:     "ROW_MISMATCH",
	WannaDie:        "WANNA_DIE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the error type returned by every exported operation. It always
// carries a Kind and optionally a causal chain (via github.com/pkg/errors)
// and free-form context.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "keycodec.ValueToKey"
	Context string // short free-form detail, e.g. a column name
	cause   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap exposes the causal chain to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Format supports "%+v" to print the full causal stack, matching the
// github.com/pkg/errors convention used throughout this repository.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", e.Error())
			if e.cause != nil {
				fmt.Fprintf(s, "\n  caused by: %+v", e.cause)
			}
			return
		}
		fmt.Fprintf(s, "%s", e.Error())
	default:
		fmt.Fprintf(s, "%s", e.Error())
	}
}

// New builds an *Error with no cause.
func New(kind Kind, op, context string) *Error {
	return &Error{Kind: kind, Op: op, Context: context}
}

// Wrap builds an *Error around an underlying cause, attaching a stack trace
// at the point the engine error first crossed into this layer (the
// convention this repository follows for github.com/pkg/errors: wrap once,
// at the point of detection).
func Wrap(kind Kind, op, context string, cause error) *Error {
	if cause == nil {
		return New(kind, op, context)
	}
	return &Error{Kind: kind, Op: op, Context: context, cause: errors.WithStack(cause)}
}

// Is reports whether the first *Error found in err's causal chain (via
// errors.As) carries the given Kind; deeper *Error values are not examined.
func Is(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf returns the Kind carried by err, or OK if err is nil, or Inval if
// err is a non-*Error (a programming error: every exported path should
// return *Error).
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Inval
}
