package fpta

import (
	"encoding/binary"

	"github.com/fpta-go/fpta/internal/kvengine"
)

// canaryDBIName is the reserved sub-database holding the three 64-bit
// canary words (spec §4.9/§6: schema_csn, db_sequence, manna). A real
// libmdbx environment exposes these as engine-provided user slots; this
// store's collaborator contract (internal/kvengine) has no such slot, so
// they are kept the same way the schema catalog is: a tiny reserved dbi
// under a fixed key, opened lazily on first use.
const canaryDBIName = "fpta.canary"

var canaryKey = []byte{0}

// canary is the in-memory copy of the three canary words fetched at
// transaction begin (spec §4.9 step 3).
type canary struct {
	schemaCSN  uint64
	dbSequence uint64
	manna      uint64
}

func encodeCanary(c canary) []byte {
	var b [24]byte
	binary.BigEndian.PutUint64(b[0:8], c.schemaCSN)
	binary.BigEndian.PutUint64(b[8:16], c.dbSequence)
	binary.BigEndian.PutUint64(b[16:24], c.manna)
	return b[:]
}

func decodeCanary(b []byte) canary {
	if len(b) < 24 {
		return canary{}
	}
	return canary{
		schemaCSN:  binary.BigEndian.Uint64(b[0:8]),
		dbSequence: binary.BigEndian.Uint64(b[8:16]),
		manna:      binary.BigEndian.Uint64(b[16:24]),
	}
}

// loadCanary implements spec §4.9 step 3: fetch the canary area into the
// txn, creating the reserved dbi (and a zeroed record) the first time any
// transaction in this database's lifetime needs it.
func loadCanary(txn kvengine.Txn, write bool) (kvengine.DBI, canary, error) {
	dbi, err := txn.OpenDBI(canaryDBIName, 0, nil, nil, false)
	if err != nil {
		if !write {
			return 0, canary{}, nil // nothing written yet; a read txn has no canary to see
		}
		dbi, err = txn.OpenDBI(canaryDBIName, 0, nil, nil, true)
		if err != nil {
			return 0, canary{}, err
		}
	}
	raw, found, err := txn.Get(dbi, canaryKey)
	if err != nil {
		return 0, canary{}, err
	}
	if !found {
		return dbi, canary{}, nil
	}
	return dbi, decodeCanary(raw), nil
}

// storeCanary implements spec §4.9 end's "write back the canary" step.
func storeCanary(txn kvengine.Txn, dbi kvengine.DBI, c canary) error {
	return txn.Put(dbi, canaryKey, encodeCanary(c), false, false)
}
