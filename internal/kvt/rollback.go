package kvt

import (
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
	"github.com/sirupsen/logrus"
)

// Rollback discards a transaction's staged state. NoCC has nothing to
// undo since its mutations already landed directly on the table; every
// other strategy releases locks and/or drops staged sets.
func (e *Engine) Rollback(txID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	txn, err := e.activeTxn(txID)
	if err != nil {
		return err
	}

	switch e.mode {
	case NoCC, Simple, OCC:
		// Nothing installed yet; dropping the transaction discards its sets.
	case TwoPL:
		e.rollback2PL(txn)
	}

	log.WithFields(logrus.Fields{"tx_id": txID, "mode": e.mode}).Debug("rollback")
	e.dropTxn(txID)
	return nil
}

func (e *Engine) rollback2PL(txn *kvtxn.Txn) {
	for _, tk := range txn.TouchedKeys() {
		table, err := e.resolveTable(tk.TableID)
		if err != nil {
			continue
		}
		key := []byte(tk.Key)
		if txn.IsWriteNew(tk) {
			table.Delete(key)
			continue
		}
		if entry, ok := table.Get(key); ok && entry.Metadata == int64(txn.ID) {
			entry.Metadata = 0
			table.Set(key, entry)
		}
	}
}
