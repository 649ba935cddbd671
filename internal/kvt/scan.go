package kvt

import (
	"bytes"
	"sort"

	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtxn"
)

// Scan reads keys in [start, end) from table tableID, in ascending key
// order, up to limit rows. txID==0 is a one-shot scan of the committed
// table with no transaction overlay.
func (e *Engine) Scan(txID, tableID uint64, start, end []byte, limit int) ([]KV, error) {
	if limit <= 0 {
		return nil, kvterr.New(kvterr.UnknownError, "scan limit must be positive, got %d", limit)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.resolveTable(tableID)
	if err != nil {
		return nil, err
	}
	if txID == 0 {
		return e.oneShotScan(table, start, end, limit), nil
	}
	txn, err := e.activeTxn(txID)
	if err != nil {
		return nil, err
	}
	return e.txnScan(txn, table, start, end, limit), nil
}

func (e *Engine) oneShotScan(table *kvtable.Table, start, end []byte, limit int) []KV {
	var out []KV
	table.Scan(start, end, func(key []byte, entry kvtable.Entry) bool {
		out = append(out, KV{Key: append([]byte(nil), key...), Value: append([]byte(nil), entry.Payload...)})
		return len(out) < limit
	})
	return out
}

func (e *Engine) txnScan(txn *kvtxn.Txn, table *kvtable.Table, start, end []byte, limit int) []KV {
	if e.mode == NoCC {
		return e.oneShotScan(table, start, end, limit)
	}

	inRange := func(k []byte) bool {
		if start != nil && bytes.Compare(k, start) < 0 {
			return false
		}
		if end != nil && bytes.Compare(k, end) >= 0 {
			return false
		}
		return true
	}

	merged := make(map[string][]byte)
	table.Scan(start, end, func(key []byte, entry kvtable.Entry) bool {
		if e.mode == OCC {
			tk := tableKey(table.ID, key)
			if _, already := txn.ReadOf(tk); !already {
				txn.RecordRead(tk, entry.Metadata, true, entry.Payload)
			}
		}
		merged[string(key)] = entry.Payload
		return true
	})
	for key, payload := range txn.WritesInTable(table.ID) {
		if inRange([]byte(key)) {
			merged[key] = payload
		}
	}
	for key := range txn.DeletesInTable(table.ID) {
		delete(merged, key)
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]KV, 0, limit)
	for _, key := range keys {
		if len(out) >= limit {
			break
		}
		out = append(out, KV{Key: []byte(key), Value: merged[key]})
	}
	return out
}
