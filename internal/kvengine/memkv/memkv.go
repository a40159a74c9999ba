// Package memkv is an in-memory stand-in for the external transactional
// KV engine (spec §6), backed by github.com/google/btree. It exists so
// this repository's own tests can exercise internal/indexops,
// internal/tableops, internal/cursor and internal/schema without requiring
// the cgo mdbx-go toolchain; internal/kvengine/mdbxkv is the production
// implementation wired to github.com/erigontech/mdbx-go.
//
// memkv is not transactional in the engine's ACID sense: write
// transactions mutate a copy-on-write snapshot of each touched dbi and
// only publish it to the shared Env on Commit, which is enough to give
// this repository's tests the read-isolation they need without
// implementing MVCC twice.
package memkv

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/indexops"
	"github.com/fpta-go/fpta/internal/kvengine"
)

const op = "memkv"

const btreeDegree = 32

type item struct {
	key, value []byte
}

type dbiState struct {
	name   string
	flags  indexops.DBIFlags
	cmp    indexops.CmpFunc
	dupCmp indexops.CmpFunc
	tree   *btree.BTreeG[item]
}

func (d *dbiState) less(a, b item) bool {
	cmp := d.cmp
	if cmp == nil {
		cmp = bytes.Compare
	}
	if c := cmp(a.key, b.key); c != 0 {
		return c < 0
	}
	if d.flags&indexops.DupSort == 0 {
		return false // one value per key: the key alone identifies the item
	}
	dupCmp := d.dupCmp
	if dupCmp == nil {
		dupCmp = bytes.Compare
	}
	return dupCmp(a.value, b.value) < 0
}

func (d *dbiState) clone() *dbiState {
	nt := btree.NewG(btreeDegree, d.less)
	d.tree.Ascend(func(it item) bool {
		nt.ReplaceOrInsert(it)
		return true
	})
	return &dbiState{name: d.name, flags: d.flags, cmp: d.cmp, dupCmp: d.dupCmp, tree: nt}
}

// Env implements kvengine.Env over an in-memory map of dbis.
type Env struct {
	mu   sync.Mutex
	dbis map[string]*dbiState
}

// New returns an empty in-memory environment.
func New() *Env {
	return &Env{dbis: make(map[string]*dbiState)}
}

func (e *Env) Begin(_ context.Context, write bool) (kvengine.Txn, error) {
	e.mu.Lock()
	snapshot := make(map[string]*dbiState, len(e.dbis))
	for name, d := range e.dbis {
		if write {
			snapshot[name] = d.clone()
		} else {
			snapshot[name] = d
		}
	}
	e.mu.Unlock()
	return &txn{env: e, write: write, dbis: snapshot, handles: make(map[kvengine.DBI]string)}, nil
}

func (e *Env) Close() error { return nil }

type txn struct {
	env     *Env
	write   bool
	done    bool
	dbis    map[string]*dbiState
	handles map[kvengine.DBI]string
	nextDBI kvengine.DBI
}

func (t *txn) Writable() bool { return t.write }

func (t *txn) OpenDBI(name string, flags indexops.DBIFlags, cmp, dupCmp indexops.CmpFunc, create bool) (kvengine.DBI, error) {
	d, ok := t.dbis[name]
	if !ok {
		if !create {
			return 0, fptaerr.New(fptaerr.NotFound, op+".OpenDBI", name)
		}
		d = &dbiState{name: name, flags: flags, cmp: cmp, dupCmp: dupCmp}
		d.tree = btree.NewG(btreeDegree, d.less)
		t.dbis[name] = d
	}
	t.nextDBI++
	handle := t.nextDBI
	t.handles[handle] = name
	return handle, nil
}

func (t *txn) DropDBI(dbi kvengine.DBI) error {
	name, ok := t.handles[dbi]
	if !ok {
		return fptaerr.New(fptaerr.Inval, op+".DropDBI", "unknown dbi")
	}
	delete(t.dbis, name)
	return nil
}

func (t *txn) resolve(dbi kvengine.DBI) (*dbiState, error) {
	name, ok := t.handles[dbi]
	if !ok {
		return nil, fptaerr.New(fptaerr.Inval, op, "unknown dbi handle")
	}
	d, ok := t.dbis[name]
	if !ok {
		return nil, fptaerr.New(fptaerr.Inval, op, "dbi dropped")
	}
	return d, nil
}

func (t *txn) Get(dbi kvengine.DBI, key []byte) ([]byte, bool, error) {
	d, err := t.resolve(dbi)
	if err != nil {
		return nil, false, err
	}
	found, ok := d.tree.Get(item{key: key})
	if !ok {
		return nil, false, nil
	}
	return found.value, true, nil
}

func (t *txn) Put(dbi kvengine.DBI, key, value []byte, noOverwrite, noDupData bool) error {
	d, err := t.resolve(dbi)
	if err != nil {
		return err
	}
	if d.flags&indexops.DupSort == 0 {
		if noOverwrite || noDupData {
			if _, exists := d.tree.Get(item{key: key}); exists {
				return fptaerr.New(fptaerr.KeyExist, op+".Put", d.name)
			}
		}
		d.tree.ReplaceOrInsert(item{key: append([]byte{}, key...), value: append([]byte{}, value...)})
		return nil
	}
	it := item{key: append([]byte{}, key...), value: append([]byte{}, value...)}
	if noDupData {
		if _, exists := d.tree.Get(it); exists {
			return fptaerr.New(fptaerr.KeyExist, op+".Put", d.name)
		}
	}
	d.tree.ReplaceOrInsert(it)
	return nil
}

func (t *txn) Delete(dbi kvengine.DBI, key, value []byte) (bool, error) {
	d, err := t.resolve(dbi)
	if err != nil {
		return false, err
	}
	if value == nil {
		removed := false
		var toRemove []item
		d.tree.AscendGreaterOrEqual(item{key: key}, func(it item) bool {
			cmp := d.cmp
			if cmp == nil {
				cmp = bytes.Compare
			}
			if cmp(it.key, key) != 0 {
				return false
			}
			toRemove = append(toRemove, it)
			return true
		})
		for _, it := range toRemove {
			d.tree.Delete(it)
			removed = true
		}
		return removed, nil
	}
	_, existed := d.tree.Delete(item{key: key, value: value})
	return existed, nil
}

func (t *txn) Cursor(dbi kvengine.DBI) (kvengine.Cursor, error) {
	d, err := t.resolve(dbi)
	if err != nil {
		return nil, err
	}
	return &cursor{d: d}, nil
}

func (t *txn) Commit() error {
	if t.done {
		return fptaerr.New(fptaerr.TxnCancelled, op+".Commit", "")
	}
	t.done = true
	if !t.write {
		return nil
	}
	t.env.mu.Lock()
	for name, d := range t.dbis {
		t.env.dbis[name] = d
	}
	t.env.mu.Unlock()
	return nil
}

func (t *txn) Abort() error {
	t.done = true
	return nil
}
