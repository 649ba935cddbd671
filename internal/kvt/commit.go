package kvt

import (
	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
	"github.com/sirupsen/logrus"
)

// Commit finalizes a transaction. NoCC and Simple never fail here for
// reasons other than an unknown tx id; 2PL installs and unlocks; OCC
// validates its read set before installing anything.
func (e *Engine) Commit(txID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	txn, err := e.activeTxn(txID)
	if err != nil {
		return err
	}

	switch e.mode {
	case NoCC:
		// set/del already applied directly to the table; nothing to do.

	case Simple:
		for _, tk := range txn.WriteKeys() {
			table, terr := e.resolveTable(tk.TableID)
			if terr != nil {
				continue
			}
			payload, _ := txn.PendingWrite(tk)
			table.Set([]byte(tk.Key), kvtable.Entry{Payload: payload})
		}
		for _, tk := range txn.DeleteKeys() {
			table, terr := e.resolveTable(tk.TableID)
			if terr != nil {
				continue
			}
			table.Delete([]byte(tk.Key))
		}

	case TwoPL:
		e.commit2PL(txn)

	case OCC:
		if err := e.commitOCC(txn); err != nil {
			e.dropTxn(txID)
			return err
		}
	}

	log.WithFields(logrus.Fields{"tx_id": txID, "mode": e.mode}).Debug("commit")
	e.dropTxn(txID)
	return nil
}

func (e *Engine) commit2PL(txn *kvtxn.Txn) {
	for _, tk := range txn.TouchedKeys() {
		table, err := e.resolveTable(tk.TableID)
		if err != nil {
			continue
		}
		key := []byte(tk.Key)
		if txn.PendingDelete(tk) {
			table.Delete(key)
			continue
		}
		if payload, ok := txn.PendingWrite(tk); ok {
			table.Set(key, kvtable.Entry{Payload: payload, Metadata: 0})
			continue
		}
		if entry, ok := table.Get(key); ok && entry.Metadata == int64(txn.ID) {
			entry.Metadata = 0
			table.Set(key, entry)
		}
	}
}

func (e *Engine) commitOCC(txn *kvtxn.Txn) error {
	for _, tk := range txn.ReadKeys() {
		table, terr := e.resolveTable(tk.TableID)
		if terr != nil {
			return kvterr.New(kvterr.TransactionHasStaleData, "table %d no longer exists", tk.TableID)
		}
		r, _ := txn.ReadOf(tk)
		entry, ok := table.Get([]byte(tk.Key))
		if !ok || entry.Metadata != r.Metadata {
			return kvterr.New(kvterr.TransactionHasStaleData, "key %q in table %d changed since read", tk.Key, tk.TableID)
		}
	}

	for _, tk := range txn.DeleteKeys() {
		table, terr := e.resolveTable(tk.TableID)
		if terr != nil {
			continue
		}
		table.Delete([]byte(tk.Key))
	}
	for _, tk := range txn.WriteKeys() {
		table, terr := e.resolveTable(tk.TableID)
		if terr != nil {
			continue
		}
		key := []byte(tk.Key)
		payload, _ := txn.PendingWrite(tk)
		version := int64(1)
		if prior, ok := table.Get(key); ok {
			version = prior.Metadata + 1
		}
		table.Set(key, kvtable.Entry{Payload: payload, Metadata: version})
	}
	return nil
}
