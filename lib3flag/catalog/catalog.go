// Package catalog persists canonical 3-graphs and cached density matrices in
// a badger key-value store, so large enumerations and product-density runs
// survive across problem sessions.
package catalog

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag"
)

/***

Catalog database format:

	gCatalogStateKey                          => catalogState (msgpack)
	'G', order, <canonical graph key>         => canonical graph key bytes
	'D', graphIdx (u16 BE), typeIdx (u16 BE)  => compact density matrix (msgpack)

Graph keys sort by order first, so a prefix scan of ('G', order) enumerates
all stored graphs of one order in canonical-key order.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
	gGraphPrefix     = byte('G')
	gDensityPrefix   = byte('D')
)

const (
	catalogMajorVers = 2026
	catalogMinorVers = 1
)

type catalogState struct {
	MajorVers int      `msgpack:"major"`
	MinorVers int      `msgpack:"minor"`
	NumGraphs []uint64 `msgpack:"num_graphs"` // indexed by graph order
}

type catalog struct {
	db         *badger.DB
	readOnly   bool
	stateDirty bool
	state      catalogState
}

// Open opens a new or existing graph catalog.  An empty DbPathName opens an
// in-memory catalog (which cannot be read-only).
func Open(opts go3flag.CatalogOpts) (lib3flag.Catalog, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // single writer, so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(go3flag.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	cat := &catalog{readOnly: opts.ReadOnly}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = catalogMajorVers
		cat.state.MinorVers = catalogMinorVers
		cat.state.NumGraphs = make([]uint64, go3flag.MaxVtxID+1)
	}
	if err == nil && (cat.state.MajorVers != catalogMajorVers || cat.state.MinorVers != catalogMinorVers) {
		err = errors.New("catalog version is incompatible")
	}
	if err != nil {
		cat.db.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *catalog) flushState() {
	if !cat.stateDirty || cat.readOnly {
		return
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		buf, err := msgpack.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, buf)
	})
	if err != nil {
		panic(err)
	}
	cat.stateDirty = false
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumGraphs(order int) int64 {
	if order < 0 || order >= len(cat.state.NumGraphs) {
		return 0
	}
	return int64(cat.state.NumGraphs[order])
}

func formGraphKey(buf []byte, X *lib3flag.Graph) []byte {
	buf = append(buf, gGraphPrefix, byte(X.Order()))
	return append(buf, X.Key()...)
}

// TryAddGraph adds the given graph if its canonical form is not already
// stored.  Returns true if the graph was new.  Callers are expected to pass
// canonical graphs; the key is content-based either way.
func (cat *catalog) TryAddGraph(X *lib3flag.Graph) bool {
	if cat.readOnly {
		return false
	}

	var keyBuf [64]byte
	key := formGraphKey(keyBuf[:0], X)

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	if _, err := txn.Get(key); err != badger.ErrKeyNotFound {
		return false
	}
	if err := txn.Set(key, X.Key()); err != nil {
		panic(err)
	}
	if err := txn.Commit(); err != nil {
		panic(err)
	}

	cat.state.NumGraphs[X.Order()]++
	cat.stateDirty = true
	return true
}

// Select streams every stored graph whose order is within the selector's
// bounds into onHit, then closes the channel.
func (cat *catalog) Select(sel go3flag.GraphSelector, onHit chan<- *lib3flag.Graph) {
	defer close(onHit)

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	for order := sel.MinVtxCount; order <= sel.MaxVtxCount; order++ {
		prefix := []byte{gGraphPrefix, byte(order)}
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   300,
			Prefix:         prefix,
		})
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				X, err := lib3flag.GraphFromKey(val)
				if err != nil {
					return err
				}
				onHit <- X
				return nil
			})
			if err != nil {
				it.Close()
				panic(err)
			}
		}
		it.Close()
	}
}

func formDensityKey(buf []byte, graphIdx, typeIdx int) []byte {
	buf = append(buf, gDensityPrefix)
	buf = binary.BigEndian.AppendUint16(buf, uint16(graphIdx))
	return binary.BigEndian.AppendUint16(buf, uint16(typeIdx))
}

func (cat *catalog) StoreDensity(graphIdx, typeIdx int, buf []byte) error {
	if cat.readOnly {
		return go3flag.ErrCatalogReadOnly
	}
	var keyBuf [8]byte
	key := formDensityKey(keyBuf[:0], graphIdx, typeIdx)
	return cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

func (cat *catalog) LoadDensity(graphIdx, typeIdx int) ([]byte, bool, error) {
	var keyBuf [8]byte
	key := formDensityKey(keyBuf[:0], graphIdx, typeIdx)

	var out []byte
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "load density")
	}
	return out, true, nil
}
