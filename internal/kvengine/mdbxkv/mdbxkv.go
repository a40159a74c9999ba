// Package mdbxkv is the production implementation of internal/kvengine,
// wrapping github.com/erigontech/mdbx-go/mdbx — the same cgo binding to
// libmdbx that erigontech/erigon-lib itself vendors for its own KV layer.
// internal/kvengine/memkv is the in-memory fake this repository's own
// tests use instead, so this package's correctness is exercised through
// the kvengine.Env/Txn/Cursor contract rather than duplicated here.
package mdbxkv

import (
	"context"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/kvengine"
)

const op = "mdbxkv"

// Env wraps a single *mdbx.Env.
type Env struct {
	env *mdbx.Env
}

// Options configures Open.
type Options struct {
	Path        string
	MaxDBs      int
	MapSizeMiB  int64
	NoSubDir    bool
	Readonly    bool
	FileMode    uint32
}

// Open creates and opens an mdbx environment at opts.Path.
func Open(opts Options) (*Env, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, fptaerr.Wrap(fptaerr.NoMem, op+".Open", "mdbx.NewEnv", err)
	}
	maxDBs := opts.MaxDBs
	if maxDBs <= 0 {
		maxDBs = 64
	}
	if err := env.SetMaxDBs(maxDBs); err != nil {
		return nil, fptaerr.Wrap(fptaerr.Inval, op+".Open", "SetMaxDBs", err)
	}
	if opts.MapSizeMiB > 0 {
		if err := env.SetGeometry(-1, -1, int(opts.MapSizeMiB)<<20, -1, -1, -1); err != nil {
			return nil, fptaerr.Wrap(fptaerr.Inval, op+".Open", "SetGeometry", err)
		}
	}
	var flags uint
	if opts.NoSubDir {
		flags |= mdbx.NoSubdir
	}
	if opts.Readonly {
		flags |= mdbx.Readonly
	}
	mode := opts.FileMode
	if mode == 0 {
		mode = 0o644
	}
	if err := env.Open(opts.Path, flags, mode); err != nil {
		return nil, fptaerr.Wrap(fptaerr.Inval, op+".Open", opts.Path, err)
	}
	return &Env{env: env}, nil
}

// Begin starts a new top-level transaction.
func (e *Env) Begin(_ context.Context, write bool) (kvengine.Txn, error) {
	var flags uint
	if !write {
		flags |= mdbx.Readonly
	}
	tx, err := e.env.BeginTxn(nil, flags)
	if err != nil {
		return nil, fptaerr.Wrap(fptaerr.NoMem, op+".Begin", "", err)
	}
	return &txn{tx: tx, write: write, handles: make(map[kvengine.DBI]uint)}, nil
}

// Close shuts down the environment.
func (e *Env) Close() error {
	e.env.Close()
	return nil
}

// txn wraps a *mdbx.Txn. internal/kvengine.DBI handles are this
// transaction's own small sequence number, mapped to the native
// mdbx.DBI the engine assigned, so the rest of this store never depends
// on mdbx-go's own handle type.
type txn struct {
	tx      *mdbx.Txn
	write   bool
	handles map[kvengine.DBI]uint // our DBI -> native mdbx.DBI
	next    kvengine.DBI
}

func (t *txn) Writable() bool { return t.write }

func nativeFlags(f indexops.DBIFlags, create bool) uint {
	var out uint
	if create {
		out |= mdbx.Create
	}
	if f&indexops.ReverseKey != 0 {
		out |= mdbx.ReverseKey
	}
	if f&indexops.DupSort != 0 {
		out |= mdbx.DupSort
	}
	if f&indexops.IntegerKey != 0 {
		out |= mdbx.IntegerKey
	}
	if f&indexops.DupFixed != 0 {
		out |= mdbx.DupFixed
	}
	if f&indexops.IntegerDup != 0 {
		out |= mdbx.IntegerDup
	}
	if f&indexops.ReverseDup != 0 {
		out |= mdbx.ReverseDup
	}
	return out
}

func (t *txn) OpenDBI(name string, flags indexops.DBIFlags, cmp, dupCmp indexops.CmpFunc, create bool) (kvengine.DBI, error) {
	dbi, err := t.tx.OpenDBI(name, nativeFlags(flags, create), nil, nil)
	if err != nil {
		if create {
			return 0, fptaerr.Wrap(fptaerr.Inval, op+".OpenDBI", name, err)
		}
		return 0, fptaerr.Wrap(fptaerr.NotFound, op+".OpenDBI", name, err)
	}
	// Custom comparators (for the NIL-sentinel-aware nullable ordering)
	// are installed as mdbx's own key-compare callback; mdbx-go exposes
	// this via Txn.SetCompare on the native dbi handle.
	if cmp != nil {
		if err := t.tx.SetCompare(dbi, mdbx.CmpFunc(cmp)); err != nil {
			return 0, fptaerr.Wrap(fptaerr.Inval, op+".OpenDBI", name+" SetCompare", err)
		}
	}
	if dupCmp != nil {
		if err := t.tx.SetDupCompare(dbi, mdbx.CmpFunc(dupCmp)); err != nil {
			return 0, fptaerr.Wrap(fptaerr.Inval, op+".OpenDBI", name+" SetDupCompare", err)
		}
	}
	t.next++
	handle := t.next
	t.handles[handle] = dbi
	return handle, nil
}

func (t *txn) resolve(dbi kvengine.DBI) (mdbx.DBI, error) {
	native, ok := t.handles[dbi]
	if !ok {
		return 0, fptaerr.New(fptaerr.Inval, op, "unknown dbi handle")
	}
	return mdbx.DBI(native), nil
}

func (t *txn) DropDBI(dbi kvengine.DBI) error {
	native, err := t.resolve(dbi)
	if err != nil {
		return err
	}
	return t.tx.Drop(native, true)
}

func (t *txn) Get(dbi kvengine.DBI, key []byte) ([]byte, bool, error) {
	native, err := t.resolve(dbi)
	if err != nil {
		return nil, false, err
	}
	v, err := t.tx.Get(native, key)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fptaerr.Wrap(fptaerr.NotFound, op+".Get", "", err)
	}
	return v, true, nil
}

func (t *txn) Put(dbi kvengine.DBI, key, value []byte, noOverwrite, noDupData bool) error {
	native, err := t.resolve(dbi)
	if err != nil {
		return err
	}
	var flags uint
	if noOverwrite {
		flags |= mdbx.NoOverwrite
	}
	if noDupData {
		flags |= mdbx.NoDupData
	}
	if err := t.tx.Put(native, key, value, flags); err != nil {
		if mdbx.IsKeyExist(err) {
			return fptaerr.New(fptaerr.KeyExist, op+".Put", "")
		}
		return fptaerr.Wrap(fptaerr.Inval, op+".Put", "", err)
	}
	return nil
}

func (t *txn) Delete(dbi kvengine.DBI, key, value []byte) (bool, error) {
	native, err := t.resolve(dbi)
	if err != nil {
		return false, err
	}
	if err := t.tx.Del(native, key, value); err != nil {
		if mdbx.IsNotFound(err) {
			return false, nil
		}
		return false, fptaerr.Wrap(fptaerr.Inval, op+".Delete", "", err)
	}
	return true, nil
}

func (t *txn) Cursor(dbi kvengine.DBI) (kvengine.Cursor, error) {
	native, err := t.resolve(dbi)
	if err != nil {
		return nil, err
	}
	c, err := t.tx.OpenCursor(native)
	if err != nil {
		return nil, fptaerr.Wrap(fptaerr.Inval, op+".Cursor", "", err)
	}
	return &cursor{c: c}, nil
}

func (t *txn) Commit() error {
	_, err := t.tx.Commit()
	if err != nil {
		return fptaerr.Wrap(fptaerr.Inval, op+".Commit", "", err)
	}
	return nil
}

func (t *txn) Abort() error {
	t.tx.Abort()
	return nil
}

// cursor wraps a *mdbx.Cursor, translating kvengine.Cursor's named
// methods into mdbx's single Get(key, val, op) primitive.
type cursor struct {
	c *mdbx.Cursor
}

func (c *cursor) get(key []byte, op mdbx.CursorOp) ([]byte, []byte, bool, error) {
	k, v, err := c.c.Get(key, nil, op)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	return k, v, true, nil
}

func (c *cursor) First() ([]byte, []byte, bool, error) { return c.get(nil, mdbx.First) }
func (c *cursor) Last() ([]byte, []byte, bool, error)   { return c.get(nil, mdbx.Last) }
func (c *cursor) Next() ([]byte, []byte, bool, error)   { return c.get(nil, mdbx.Next) }
func (c *cursor) Prev() ([]byte, []byte, bool, error)   { return c.get(nil, mdbx.Prev) }

func (c *cursor) Seek(target []byte) ([]byte, []byte, bool, error) {
	return c.get(target, mdbx.SetRange)
}

func (c *cursor) SeekExact(target []byte) ([]byte, bool, error) {
	_, v, ok, err := c.get(target, mdbx.Set)
	return v, ok, err
}

func (c *cursor) NextDup() ([]byte, bool, error) {
	_, v, ok, err := c.get(nil, mdbx.NextDup)
	return v, ok, err
}

func (c *cursor) PrevDup() ([]byte, bool, error) {
	_, v, ok, err := c.get(nil, mdbx.PrevDup)
	return v, ok, err
}

func (c *cursor) FirstDup() ([]byte, bool, error) {
	_, v, ok, err := c.get(nil, mdbx.FirstDup)
	return v, ok, err
}

func (c *cursor) LastDup() ([]byte, bool, error) {
	_, v, ok, err := c.get(nil, mdbx.LastDup)
	return v, ok, err
}

func (c *cursor) CountDup() (int, error) {
	n, err := c.c.Count()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (c *cursor) Put(key, value []byte, noDupData bool) error {
	flags := uint(mdbx.Current)
	if noDupData {
		flags = mdbx.NoDupData
	}
	if err := c.c.Put(key, value, flags); err != nil {
		if mdbx.IsKeyExist(err) {
			return fptaerr.New(fptaerr.KeyExist, op+".cursor.Put", "")
		}
		return err
	}
	return nil
}

func (c *cursor) Delete() error {
	return c.c.Del(0)
}

func (c *cursor) Close() { c.c.Close() }
