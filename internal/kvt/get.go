package kvt

import (
	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
)

// Get reads key from table tableID. txID==0 is a one-shot read, always
// permitted regardless of strategy.
func (e *Engine) Get(txID, tableID uint64, key []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.resolveTable(tableID)
	if err != nil {
		return nil, err
	}
	if txID == 0 {
		return e.oneShotGet(table, key)
	}
	txn, err := e.activeTxn(txID)
	if err != nil {
		return nil, err
	}
	return e.txnGet(txn, table, key)
}

func (e *Engine) oneShotGet(table *kvtable.Table, key []byte) ([]byte, error) {
	entry, ok := table.Get(key)
	if !ok {
		return nil, kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
	}
	if e.mode == TwoPL && entry.Metadata != 0 {
		return nil, kvterr.New(kvterr.KeyIsLocked, "key locked by transaction %d", entry.Metadata)
	}
	return entry.Payload, nil
}

func (e *Engine) txnGet(txn *kvtxn.Txn, table *kvtable.Table, key []byte) ([]byte, error) {
	tk := tableKey(table.ID, key)

	if e.mode == NoCC {
		entry, ok := table.Get(key)
		if !ok {
			return nil, kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
		}
		return entry.Payload, nil
	}

	// Simple, 2PL and OCC all check the pending write/delete sets first.
	if p, ok := txn.PendingWrite(tk); ok {
		return p, nil
	}
	if txn.PendingDelete(tk) {
		return nil, kvterr.New(kvterr.KeyIsDeleted, "key staged for delete in transaction %d", txn.ID)
	}

	if e.mode == Simple {
		entry, ok := table.Get(key)
		if !ok {
			return nil, kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
		}
		return entry.Payload, nil
	}

	// 2PL and OCC: a repeat read returns the snapshot captured on first read.
	if r, ok := txn.ReadOf(tk); ok {
		return r.Payload, nil
	}

	entry, ok := table.Get(key)
	if !ok {
		return nil, kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
	}

	if e.mode == TwoPL {
		if entry.Metadata != 0 && entry.Metadata != int64(txn.ID) {
			return nil, kvterr.New(kvterr.KeyIsLocked, "key locked by transaction %d", entry.Metadata)
		}
		entry.Metadata = int64(txn.ID)
		table.Set(key, entry)
	}

	txn.RecordRead(tk, entry.Metadata, true, entry.Payload)
	return entry.Payload, nil
}
