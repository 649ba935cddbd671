package kvt

import (
	"sync"

	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var log = logrus.WithField("component", "kvt")

// Engine is the KVT core: one table registry, one transaction map, and
// one of four concurrency-control strategies governing every get, set,
// del, scan, commit and rollback. Every public operation is serialized
// through mu.
type Engine struct {
	mode Mode

	mu           sync.Mutex
	tables       *kvtable.Registry
	txns         map[uint64]*kvtxn.Txn
	nextTxID     uint64
	simpleActive uint64 // Simple mode: tx id currently open, 0 if none

	createSF singleflight.Group // collapses concurrent CreateTable(same name)
}

// New returns an Engine enforcing the given concurrency-control mode.
func New(mode Mode) *Engine {
	return &Engine{
		mode:     mode,
		tables:   kvtable.NewRegistry(),
		txns:     make(map[uint64]*kvtxn.Txn),
		nextTxID: 1,
	}
}

// Mode reports the concurrency-control strategy this Engine enforces.
func (e *Engine) Mode() Mode { return e.mode }

func tableKey(tableID uint64, key []byte) kvtxn.TableKey {
	return kvtxn.TableKey{TableID: tableID, Key: string(key)}
}

// CreateTable provisions a new table. Callers in the graph adapter
// treat TableAlreadyExists as a successful, idempotent no-op. Concurrent
// calls for the same name are collapsed by createSF into one actual
// registry mutation, so a burst of first-use callers provisioning the
// same space never race each other into spurious TableAlreadyExists
// errors beyond the one genuine loser.
func (e *Engine) CreateTable(name string, partition kvtable.Partition) (uint64, error) {
	v, err, _ := e.createSF.Do(name, func() (interface{}, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		t, err := e.tables.Create(name, partition)
		if err != nil {
			return nil, err
		}
		return t.ID, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// DropTable removes a table and every entry in it.
func (e *Engine) DropTable(tableID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tables.Drop(tableID)
}

// GetTableName resolves a table id to its name.
func (e *Engine) GetTableName(tableID uint64) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.tables.ByID(tableID)
	if err != nil {
		return "", err
	}
	return t.Name, nil
}

// GetTableID resolves a table name to its id.
func (e *Engine) GetTableID(name string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.tables.ByName(name)
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

// ListTables returns every currently registered table.
func (e *Engine) ListTables() []TableInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	tables := e.tables.List()
	out := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableInfo{ID: t.ID, Name: t.Name, Partition: string(t.Partition)})
	}
	return out
}

// Begin opens a new transaction and returns its id. Under Simple mode
// it fails with TransactionAlreadyRunning if one is already open.
func (e *Engine) Begin() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == Simple && e.simpleActive != 0 {
		return 0, kvterr.New(kvterr.TransactionAlreadyRunning, "transaction %d already open", e.simpleActive)
	}
	id := e.nextTxID
	e.nextTxID++
	e.txns[id] = kvtxn.New(id)
	if e.mode == Simple {
		e.simpleActive = id
	}
	log.WithFields(logrus.Fields{"tx_id": id, "mode": e.mode}).Debug("begin")
	return id, nil
}

func (e *Engine) activeTxn(txID uint64) (*kvtxn.Txn, error) {
	txn, ok := e.txns[txID]
	if !ok {
		return nil, kvterr.New(kvterr.TransactionNotFound, "transaction %d not found", txID)
	}
	return txn, nil
}

func (e *Engine) dropTxn(txID uint64) {
	delete(e.txns, txID)
	if e.mode == Simple && e.simpleActive == txID {
		e.simpleActive = 0
	}
}

// resolveTable looks a table up and wraps absence in TableNotFound.
func (e *Engine) resolveTable(tableID uint64) (*kvtable.Table, error) {
	return e.tables.ByID(tableID)
}
