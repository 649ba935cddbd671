// Package kvtable holds the engine's storage primitives: the per-key
// Entry, the Table that owns an ordered map of them, and the process-wide
// table registry. It has no notion of transactions or concurrency
// control strategy; those live in internal/kvt.
package kvtable

// Entry is the unit of storage. Metadata is overloaded by whichever CC
// strategy owns the table: under 2PL it is the id of the transaction
// holding the lock (0 = unlocked); under OCC it is a monotonically
// increasing version counter (0 = never written). NoCC and Simple never
// read it.
type Entry struct {
	Payload  []byte
	Metadata int64
}

// Clone returns a deep copy of e so callers can stash it in a read/write
// set without aliasing the table's backing array.
func (e Entry) Clone() Entry {
	cp := make([]byte, len(e.Payload))
	copy(cp, e.Payload)
	return Entry{Payload: cp, Metadata: e.Metadata}
}
