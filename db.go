// Package fpta is the public surface of this embedded structured-record
// store: DB, Txn, Name and Cursor, built on internal/kvengine's
// transactional, memory-mapped B+tree contract (internal/kvengine/mdbxkv
// in production, internal/kvengine/memkv in this repository's own tests).
package fpta

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"

	"github.com/fpta-go/fpta/internal/ftlog"
	"github.com/fpta-go/fpta/internal/handlecache"
	"github.com/fpta-go/fpta/internal/kvengine"
	"github.com/fpta-go/fpta/internal/metrics"
	"github.com/fpta-go/fpta/internal/schema"
)

// schemaWeight is the full weight of the schema-rwlock's semaphore: a
// schema transaction acquires all of it (exclusive), a read or write
// transaction acquires one unit (shared), matching spec §5's "all
// non-schema transactions hold it shared, schema transactions hold it
// exclusive" rwlock built on golang.org/x/sync/semaphore.Weighted instead
// of a bare sync.RWMutex so a schema txn's acquire can be expressed as a
// single TryAcquire/Acquire call against the whole capacity (see
// DESIGN.md).
const schemaWeight int64 = 1 << 30

// Options configures Open.
type Options struct {
	// Env is the already-open KV engine environment this store runs
	// against (mdbxkv.Open or memkv.New).
	Env kvengine.Env
	// ExpectedTables sizes the handle cache (spec §4.3's "tables_max").
	ExpectedTables int
	// ReadOnly opens the database non-alterable: schema transactions
	// always fail with EPERM (spec §4.9 step 1).
	ReadOnly bool
	// Namespace prefixes every exported metric name (default "fpta").
	Namespace string
	// Registerer receives this DB's metrics (default: a fresh registry).
	Registerer prometheus.Registerer
	// Logger receives structured log lines (default: silent, see
	// ftlog.Nop).
	Logger ftlog.Logger
}

// DB is one opened store: the KV environment plus the process-wide
// caches, locks, and instrumentation every transaction shares.
type DB struct {
	env      kvengine.Env
	readOnly bool

	handles     *handlecache.Cache
	schemaCache *schema.Cache
	metrics     *metrics.Registry
	logger      ftlog.Logger

	schemaLock *semaphore.Weighted

	mu         sync.Mutex
	schemaCSN  uint64
	dbSequence uint64
	nextTxnID  uint64
}

// Open builds a DB around an already-open kvengine.Env.
func Open(opts Options) (*DB, error) {
	expected := opts.ExpectedTables
	if expected <= 0 {
		expected = 16
	}
	handles, err := handlecache.New(expected)
	if err != nil {
		return nil, err
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "fpta"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = ftlog.Nop()
	}
	schemaCache, err := schema.NewCache(expected * handlecache.DefaultCapacityPerTable)
	if err != nil {
		return nil, err
	}
	return &DB{
		env:         opts.Env,
		readOnly:    opts.ReadOnly,
		handles:     handles,
		schemaCache: schemaCache,
		metrics:     metrics.NewRegistry(namespace, reg),
		logger:      ftlog.WithComponent(logger, "fpta"),
		schemaLock:  semaphore.NewWeighted(schemaWeight),
		nextTxnID:   1,
	}, nil
}

// Close releases the underlying environment.
func (db *DB) Close() error { return db.env.Close() }

func (db *DB) allocTxnID() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextTxnID
	db.nextTxnID++
	return id
}

func (db *DB) observedSchemaCSN() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.schemaCSN
}

func (db *DB) bumpSchemaCSN(csn uint64) {
	db.mu.Lock()
	if csn > db.schemaCSN {
		db.schemaCSN = csn
	}
	db.mu.Unlock()
	db.handles.BumpSchemaVersion(csn)
	db.metrics.SchemaCSN.Set(float64(csn))
}
