package kvt

import (
	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
)

// Set installs value at key in table tableID. txID==0 is a one-shot
// write; Simple mode refuses it outright.
func (e *Engine) Set(txID, tableID uint64, key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.resolveTable(tableID)
	if err != nil {
		return err
	}
	if txID == 0 {
		return e.oneShotSet(table, key, value)
	}
	txn, err := e.activeTxn(txID)
	if err != nil {
		return err
	}
	return e.txnSet(txn, table, key, value)
}

func (e *Engine) oneShotSet(table *kvtable.Table, key, value []byte) error {
	switch e.mode {
	case Simple:
		return kvterr.New(kvterr.OneShotWriteNotAllowed, "table %q is in Simple mode, writes require an open transaction", table.Name)
	case TwoPL:
		entry, ok := table.Get(key)
		if ok && entry.Metadata != 0 {
			return kvterr.New(kvterr.KeyIsLocked, "key locked by transaction %d", entry.Metadata)
		}
		table.Set(key, kvtable.Entry{Payload: value})
		return nil
	case OCC:
		entry, ok := table.Get(key)
		version := int64(1)
		if ok {
			version = entry.Metadata + 1
		}
		table.Set(key, kvtable.Entry{Payload: value, Metadata: version})
		return nil
	default: // NoCC
		table.Set(key, kvtable.Entry{Payload: value})
		return nil
	}
}

func (e *Engine) txnSet(txn *kvtxn.Txn, table *kvtable.Table, key, value []byte) error {
	tk := tableKey(table.ID, key)

	switch e.mode {
	case NoCC:
		table.Set(key, kvtable.Entry{Payload: value})
		return nil

	case Simple, OCC:
		txn.RecordWrite(tk, value)
		return nil

	case TwoPL:
		if _, staged := txn.PendingWrite(tk); staged {
			txn.RecordWrite(tk, value)
			return nil
		}
		entry, ok := table.Get(key)
		if !ok {
			// Brand-new key: install a locked placeholder now so a
			// concurrent transaction sees the lock immediately.
			table.Set(key, kvtable.Entry{Metadata: int64(txn.ID)})
			txn.RecordWriteNew(tk, value)
			return nil
		}
		if entry.Metadata != 0 && entry.Metadata != int64(txn.ID) {
			return kvterr.New(kvterr.KeyIsLocked, "key locked by transaction %d", entry.Metadata)
		}
		if _, alreadyRead := txn.ReadOf(tk); !alreadyRead {
			txn.RecordRead(tk, entry.Metadata, true, entry.Payload)
		}
		entry.Metadata = int64(txn.ID)
		table.Set(key, entry)
		txn.RecordWrite(tk, value)
		return nil

	default:
		return kvterr.New(kvterr.UnknownError, "unhandled mode %v", e.mode)
	}
}
