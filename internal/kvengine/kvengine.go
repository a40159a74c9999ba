// Package kvengine declares the narrow contract this store needs from its
// external transactional, memory-mapped B+tree collaborator (spec §6: out
// of scope, provided externally). Two implementations satisfy it:
// internal/kvengine/mdbxkv (github.com/erigontech/mdbx-go, production) and
// internal/kvengine/memkv (github.com/google/btree, in-memory, used by this
// repository's own tests).
package kvengine

import (
	"context"

	"github.com/fpta-go/fpta/internal/indexops"
)

// DBI identifies an open "database" (table or index) within an Env,
// matching libmdbx's dbi handle concept.
type DBI uint32

// Env is a single memory-mapped environment: one or more DBIs sharing one
// set of transactions.
type Env interface {
	// Begin starts a new transaction. write requests a read-write
	// transaction; the caller must Commit or Abort it.
	Begin(ctx context.Context, write bool) (Txn, error)
	// Close releases the environment and all its resources.
	Close() error
}

// Txn is a single transaction against an Env.
type Txn interface {
	// OpenDBI opens (creating if requested) the named dbi with the given
	// flags and optional custom key/value comparators.
	OpenDBI(name string, flags indexops.DBIFlags, cmp, dupCmp indexops.CmpFunc, create bool) (DBI, error)
	// DropDBI removes a dbi and all its data.
	DropDBI(dbi DBI) error

	Get(dbi DBI, key []byte) (value []byte, found bool, err error)
	Put(dbi DBI, key, value []byte, noOverwrite, noDupData bool) error
	Delete(dbi DBI, key, value []byte) (found bool, err error)

	Cursor(dbi DBI) (Cursor, error)

	// Commit finalizes a write transaction. Read transactions may also be
	// ended this way (equivalent to Abort).
	Commit() error
	// Abort discards a transaction's effects.
	Abort() error

	// Writable reports whether this is a write transaction.
	Writable() bool
}

// Direction is the Cursor's iteration order.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Cursor iterates a single dbi's keys (and, for DupSort dbis, a key's
// duplicate values), in the dbi's native comparator order.
type Cursor interface {
	First() (key, value []byte, ok bool, err error)
	Last() (key, value []byte, ok bool, err error)
	Next() (key, value []byte, ok bool, err error)
	Prev() (key, value []byte, ok bool, err error)
	// Seek positions at the first key >= target (or <=, direction-aware,
	// left to the caller to interpret per the dbi's comparator).
	Seek(target []byte) (key, value []byte, ok bool, err error)
	// SeekExact positions exactly at target, or reports not-found.
	SeekExact(target []byte) (value []byte, ok bool, err error)

	// NextDup/PrevDup/FirstDup/LastDup navigate duplicates of the current
	// key in a DupSort dbi.
	NextDup() (value []byte, ok bool, err error)
	PrevDup() (value []byte, ok bool, err error)
	FirstDup() (value []byte, ok bool, err error)
	LastDup() (value []byte, ok bool, err error)

	// CountDup reports the number of duplicate values at the current key.
	CountDup() (int, error)

	// Put/Delete act at the cursor's current position (spec §4.6's
	// cursor-bound update/delete).
	Put(key, value []byte, noDupData bool) error
	Delete() error

	Close()
}
