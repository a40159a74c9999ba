package fpta

import (
	"context"
	"time"

	"github.com/fpta-go/fpta/internal/fptaerr"
	"github.com/fpta-go/fpta/internal/ftlog"
	"github.com/fpta-go/fpta/internal/kvengine"
)

// Level is one of spec §4.9's three strictly nested transaction levels.
type Level int

const (
	Read Level = iota
	Write
	Schema
)

func (l Level) String() string {
	switch l {
	case Read:
		return "read"
	case Write:
		return "write"
	case Schema:
		return "schema"
	default:
		return "unknown"
	}
}

// Txn is one transaction against a DB. Not safe for concurrent use by
// more than one goroutine (spec §5: "transactions are not shareable").
type Txn struct {
	db    *DB
	id    uint64
	level Level
	engine kvengine.Txn

	canaryDBI kvengine.DBI
	canary    canary

	cancelled bool
	begun     time.Time
}

// Begin implements spec §4.9's begin. A Schema-level begin against a
// database opened with Options.ReadOnly fails with EPERM before any lock
// is taken or engine transaction started.
func (db *DB) Begin(ctx context.Context, level Level) (*Txn, error) {
	if level == Schema && db.readOnly {
		return nil, fptaerr.New(fptaerr.EPerm, "fpta.Begin", "database opened non-alterable")
	}

	weight := int64(1)
	if level == Schema {
		weight = schemaWeight
	}
	if err := db.schemaLock.Acquire(ctx, weight); err != nil {
		return nil, fptaerr.Wrap(fptaerr.Inval, "fpta.Begin", "schema-rwlock acquire", err)
	}

	write := level != Read
	engineTxn, err := db.env.Begin(ctx, write)
	if err != nil {
		db.schemaLock.Release(weight)
		return nil, fptaerr.Wrap(fptaerr.NoMem, "fpta.Begin", "", err)
	}

	dbi, c, err := loadCanary(engineTxn, write)
	if err != nil {
		_ = engineTxn.Abort()
		db.schemaLock.Release(weight)
		return nil, err
	}

	// Step 4: a schema_csn mismatch means a schema transaction committed
	// since this database last observed one. Read txns simply adopt the
	// fresh snapshot (the engine's MVCC view already reflects it); write
	// txns must additionally drop any handle-cache entries that might
	// still point at a dropped or since-recreated dbi.
	if observed := db.observedSchemaCSN(); c.schemaCSN != observed {
		if write {
			db.handles.BumpSchemaVersion(c.schemaCSN)
		}
		db.bumpSchemaCSN(c.schemaCSN)
	}

	txn := &Txn{
		db:        db,
		id:        db.allocTxnID(),
		level:     level,
		engine:    engineTxn,
		canaryDBI: dbi,
		canary:    c,
		begun:     time.Now(),
	}
	db.metrics.TxnBeginTotal.WithLabelValues(level.String()).Inc()
	ftlog.Debug(db.logger, "txn begin", "id", txn.id, "level", level.String())
	return txn, nil
}

// Level reports this transaction's level.
func (t *Txn) Level() Level { return t.level }

// Engine exposes the underlying kvengine.Txn for packages (tableops,
// cursor, schema) that operate directly against it.
func (t *Txn) Engine() kvengine.Txn { return t.engine }

func (t *Txn) checkLive(op string) error {
	if t.cancelled {
		return fptaerr.New(fptaerr.TxnCancelled, op, "")
	}
	return nil
}

func (t *Txn) weight() int64 {
	if t.level == Schema {
		return schemaWeight
	}
	return 1
}

// End implements spec §4.9's end / internal_abort. abort=true
// unconditionally discards the transaction's effects.
func (t *Txn) End(abort bool) error {
	if t.cancelled {
		return nil // already ended; transaction_end must be safe to call twice
	}
	defer t.db.schemaLock.Release(t.weight())
	t.cancelled = true

	outcome := "commit"
	defer func() {
		t.db.metrics.TxnDuration.WithLabelValues(t.level.String(), outcome).Observe(time.Since(t.begun).Seconds())
	}()

	if abort {
		outcome = "abort"
		return t.internalAbort(nil)
	}

	if t.level == Read {
		return t.engine.Commit()
	}

	// t.canary.schemaCSN already reflects any CreateTable/DropTable bump
	// made during this transaction (spec §4.9 end: "schema-level ...
	// transactions write back the canary"); a write transaction that made
	// no schema change republishes the value it observed at begin.
	next := t.canary
	next.dbSequence++
	if err := storeCanary(t.engine, t.canaryDBI, next); err != nil {
		outcome = "abort"
		return t.internalAbort(err)
	}
	if err := t.engine.Commit(); err != nil {
		outcome = "abort"
		return t.internalAbort(err)
	}
	if t.level == Schema {
		t.db.bumpSchemaCSN(next.schemaCSN)
	}
	return nil
}

// internalAbort implements spec §7's "engine errors encountered after a
// partial write force internal_abort": the engine transaction is
// discarded; if the engine's own abort itself fails, WANNA_DIE is
// returned instead of the original cause (there is no panic-handler hook
// at this layer, so the process is never terminated here — the caller
// ending the transaction is all this layer promises).
func (t *Txn) internalAbort(cause error) error {
	t.db.metrics.InternalAborts.Inc()
	if abortErr := t.engine.Abort(); abortErr != nil {
		ftlog.Error(t.db.logger, "engine abort failed", "id", t.id, "err", abortErr)
		return fptaerr.New(fptaerr.WannaDie, "fpta.Txn.End", "engine abort failed")
	}
	if cause != nil {
		if fe, ok := cause.(*fptaerr.Error); ok {
			return fe
		}
		return fptaerr.Wrap(fptaerr.Inval, "fpta.Txn.End", "", cause)
	}
	return nil
}
