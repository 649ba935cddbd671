// Package kvtxn holds per-transaction state: the read/write/delete sets
// every concurrency-control strategy in internal/kvt consults at commit
// time. It knows nothing about locking or validation policy; that
// belongs to the strategy that owns a Txn.
package kvtxn

// TableKey names a single row: the table it lives in plus its raw key.
// Transactions span tables, so every set is keyed on the pair rather
// than the bare key.
type TableKey struct {
	TableID uint64
	Key     string
}

// State is where a Txn sits in its lifecycle.
type State int

const (
	Active State = iota
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Committed:
		return "COMMITTED"
	case RolledBack:
		return "ROLLED_BACK"
	default:
		return "UNKNOWN"
	}
}

// Read is what a transaction remembers about a key it read: the
// metadata observed at read time (OCC's version, 2PL's lock holder, or
// just a marker that the read happened) so commit-time validation has
// something to compare against, plus the payload snapshot so a second
// get() within the same transaction never has to touch the table again.
type Read struct {
	Metadata int64
	Existed  bool
	Payload  []byte
}

// Txn is the mutable state a single transaction accumulates between
// begin and commit/rollback: one read, write and delete set, each keyed
// by TableKey, plus insertion order so replay against the table is
// deterministic.
type Txn struct {
	ID    uint64
	State State

	reads    map[TableKey]Read
	writes   map[TableKey][]byte
	writeNew map[TableKey]bool
	deletes  map[TableKey]struct{}
	order    []TableKey
}

// New returns an empty, Active transaction with the given id.
func New(id uint64) *Txn {
	return &Txn{
		ID:       id,
		State:    Active,
		reads:    make(map[TableKey]Read),
		writes:   make(map[TableKey][]byte),
		writeNew: make(map[TableKey]bool),
		deletes:  make(map[TableKey]struct{}),
	}
}

// RecordRead remembers the metadata and payload observed for tk at read
// time. It never overwrites an existing entry: the first read within a
// transaction is the one OCC and 2PL validate against and return on a
// repeat read.
func (t *Txn) RecordRead(tk TableKey, metadata int64, existed bool, payload []byte) {
	if _, ok := t.reads[tk]; ok {
		return
	}
	t.reads[tk] = Read{Metadata: metadata, Existed: existed, Payload: payload}
}

// ReadOf returns what was recorded for tk by RecordRead, if anything.
func (t *Txn) ReadOf(tk TableKey) (Read, bool) {
	r, ok := t.reads[tk]
	return r, ok
}

// RecordWrite stages payload for tk, clearing any pending delete on the
// same key: a key is never in both the write set and the delete set at
// once.
func (t *Txn) RecordWrite(tk TableKey, payload []byte) {
	if _, ok := t.deletes[tk]; ok {
		delete(t.deletes, tk)
	}
	if _, existed := t.writes[tk]; !existed {
		t.order = append(t.order, tk)
	}
	t.writes[tk] = payload
}

// RecordWriteNew is RecordWrite for a key that did not previously exist
// in the table. 2PL uses the distinction at del/rollback time: a new
// key's placeholder lock is dropped outright instead of being released.
func (t *Txn) RecordWriteNew(tk TableKey, payload []byte) {
	t.RecordWrite(tk, payload)
	t.writeNew[tk] = true
}

// IsWriteNew reports whether tk's staged write was recorded via
// RecordWriteNew.
func (t *Txn) IsWriteNew(tk TableKey) bool {
	return t.writeNew[tk]
}

// DropWrite removes tk from the write set without adding it to the
// delete set, for 2PL's "delete of a not-yet-installed new key just
// drops the placeholder" rule.
func (t *Txn) DropWrite(tk TableKey) {
	delete(t.writes, tk)
	delete(t.writeNew, tk)
}

// RecordDelete stages a delete for tk, clearing any pending write on the
// same key.
func (t *Txn) RecordDelete(tk TableKey) {
	if _, ok := t.writes[tk]; ok {
		delete(t.writes, tk)
	}
	if _, existed := t.deletes[tk]; !existed {
		t.order = append(t.order, tk)
	}
	t.deletes[tk] = struct{}{}
}

// PendingWrite returns the staged payload for tk, if any.
func (t *Txn) PendingWrite(tk TableKey) ([]byte, bool) {
	p, ok := t.writes[tk]
	return p, ok
}

// PendingDelete reports whether tk is staged for deletion.
func (t *Txn) PendingDelete(tk TableKey) bool {
	_, ok := t.deletes[tk]
	return ok
}

// Mutations replays the write and delete sets in the order operations
// were issued, calling onWrite or onDelete once for each key, at the slot
// where that key was first staged. The commit paths in internal/kvt do
// not call it; they apply staged changes through WriteKeys and DeleteKeys.
func (t *Txn) Mutations(onWrite func(tk TableKey, payload []byte), onDelete func(tk TableKey)) {
	seen := make(map[TableKey]struct{}, len(t.order))
	for _, tk := range t.order {
		if _, dup := seen[tk]; dup {
			continue
		}
		seen[tk] = struct{}{}
		if p, ok := t.writes[tk]; ok {
			onWrite(tk, p)
			continue
		}
		if _, ok := t.deletes[tk]; ok {
			onDelete(tk)
		}
	}
}

// ReadKeys returns every key this transaction has read, for OCC's
// commit-time revalidation of the full read set.
func (t *Txn) ReadKeys() []TableKey {
	out := make([]TableKey, 0, len(t.reads))
	for tk := range t.reads {
		out = append(out, tk)
	}
	return out
}

// WritesInTable returns the staged writes belonging to tableID, keyed
// by raw key, for scan overlay.
func (t *Txn) WritesInTable(tableID uint64) map[string][]byte {
	out := make(map[string][]byte)
	for tk, payload := range t.writes {
		if tk.TableID == tableID {
			out[tk.Key] = payload
		}
	}
	return out
}

// DeletesInTable returns the staged deletes belonging to tableID, keyed
// by raw key, for scan overlay.
func (t *Txn) DeletesInTable(tableID uint64) map[string]struct{} {
	out := make(map[string]struct{})
	for tk := range t.deletes {
		if tk.TableID == tableID {
			out[tk.Key] = struct{}{}
		}
	}
	return out
}

// WriteKeys returns every key with a pending write, across all tables.
func (t *Txn) WriteKeys() []TableKey {
	out := make([]TableKey, 0, len(t.writes))
	for tk := range t.writes {
		out = append(out, tk)
	}
	return out
}

// DeleteKeys returns every key with a pending delete, across all tables.
func (t *Txn) DeleteKeys() []TableKey {
	out := make([]TableKey, 0, len(t.deletes))
	for tk := range t.deletes {
		out = append(out, tk)
	}
	return out
}

// TouchedKeys returns the union of read, write and delete sets, for
// strategies (2PL) that must release every lock a transaction ever held.
func (t *Txn) TouchedKeys() []TableKey {
	seen := make(map[TableKey]struct{}, len(t.reads)+len(t.writes)+len(t.deletes))
	var out []TableKey
	add := func(tk TableKey) {
		if _, ok := seen[tk]; ok {
			return
		}
		seen[tk] = struct{}{}
		out = append(out, tk)
	}
	for tk := range t.reads {
		add(tk)
	}
	for tk := range t.writes {
		add(tk)
	}
	for tk := range t.deletes {
		add(tk)
	}
	return out
}
