package kvt

import (
	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
)

// Del removes key from table tableID. txID==0 is a one-shot delete;
// Simple mode refuses it outright.
func (e *Engine) Del(txID, tableID uint64, key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.resolveTable(tableID)
	if err != nil {
		return err
	}
	if txID == 0 {
		return e.oneShotDel(table, key)
	}
	txn, err := e.activeTxn(txID)
	if err != nil {
		return err
	}
	return e.txnDel(txn, table, key)
}

func (e *Engine) oneShotDel(table *kvtable.Table, key []byte) error {
	if e.mode == Simple {
		return kvterr.New(kvterr.OneShotDeleteNotAllowed, "table %q is in Simple mode, deletes require an open transaction", table.Name)
	}
	entry, ok := table.Get(key)
	if !ok {
		return kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
	}
	if e.mode == TwoPL && entry.Metadata != 0 {
		return kvterr.New(kvterr.KeyIsLocked, "key locked by transaction %d", entry.Metadata)
	}
	table.Delete(key)
	return nil
}

func (e *Engine) txnDel(txn *kvtxn.Txn, table *kvtable.Table, key []byte) error {
	tk := tableKey(table.ID, key)

	switch e.mode {
	case NoCC:
		table.Delete(key)
		return nil

	case Simple:
		if _, staged := txn.PendingWrite(tk); staged {
			txn.DropWrite(tk)
			return nil
		}
		if !table.Has(key) {
			return kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
		}
		txn.RecordDelete(tk)
		return nil

	case TwoPL:
		if _, staged := txn.PendingWrite(tk); staged {
			if txn.IsWriteNew(tk) {
				table.Delete(key) // drop the lock placeholder too
				txn.DropWrite(tk)
				return nil
			}
			txn.RecordDelete(tk) // keeps the lock, just relabels intent
			return nil
		}
		entry, ok := table.Get(key)
		if !ok {
			return kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
		}
		if entry.Metadata != 0 && entry.Metadata != int64(txn.ID) {
			return kvterr.New(kvterr.KeyIsLocked, "key locked by transaction %d", entry.Metadata)
		}
		entry.Metadata = int64(txn.ID)
		table.Set(key, entry)
		txn.RecordDelete(tk)
		return nil

	case OCC:
		if _, staged := txn.PendingWrite(tk); staged {
			txn.DropWrite(tk)
			return nil
		}
		if _, alreadyRead := txn.ReadOf(tk); !alreadyRead {
			entry, ok := table.Get(key)
			if !ok {
				return kvterr.New(kvterr.KeyNotFound, "key not found in table %q", table.Name)
			}
			txn.RecordRead(tk, entry.Metadata, true, entry.Payload)
		}
		txn.RecordDelete(tk)
		return nil

	default:
		return kvterr.New(kvterr.UnknownError, "unhandled mode %v", e.mode)
	}
}
