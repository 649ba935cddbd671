package kvtable

import (
	"bytes"

	"github.com/google/btree"
)

// Partition names a table's declared partition style. Both are accepted
// by every operation; HASH tables simply make no promise about scan
// order, even though the underlying btree always keeps entries ordered.
type Partition string

const (
	Hash  Partition = "hash"
	Range Partition = "range"
)

const btreeDegree = 32

// item is the btree.Item stored in a Table's tree: a user key plus its
// Entry, ordered by raw byte comparison of the key.
type item struct {
	key   []byte
	entry Entry
}

func (it *item) Less(than btree.Item) bool {
	return bytes.Compare(it.key, than.(*item).key) < 0
}

// Table is a named, numbered, typed container of key->Entry mappings.
// The backing btree keeps entries ordered regardless of declared
// partition style, so a HASH table never refuses a scan.
type Table struct {
	ID        uint64
	Name      string
	Partition Partition
	tree      *btree.BTree
}

func newTable(id uint64, name string, partition Partition) *Table {
	return &Table{ID: id, Name: name, Partition: partition, tree: btree.New(btreeDegree)}
}

// Get returns the Entry stored at key and true, or a zero Entry and
// false if key is absent.
func (t *Table) Get(key []byte) (Entry, bool) {
	found := t.tree.Get(&item{key: key})
	if found == nil {
		return Entry{}, false
	}
	return found.(*item).entry, true
}

// Set installs entry at key, replacing any existing value.
func (t *Table) Set(key []byte, entry Entry) {
	t.tree.ReplaceOrInsert(&item{key: append([]byte(nil), key...), entry: entry})
}

// Delete removes key from the table. It is a no-op if key is absent.
func (t *Table) Delete(key []byte) {
	t.tree.Delete(&item{key: key})
}

// Has reports whether key is present.
func (t *Table) Has(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of entries currently stored.
func (t *Table) Len() int {
	return t.tree.Len()
}

// Scan iterates keys in [start, end) in ascending byte order, calling
// visit for each. Iteration stops early if visit returns false.
func (t *Table) Scan(start, end []byte, visit func(key []byte, entry Entry) bool) {
	pivot := &item{key: start}
	t.tree.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
		it := i.(*item)
		if end != nil && bytes.Compare(it.key, end) >= 0 {
			return false
		}
		return visit(it.key, it.entry)
	})
}

// DeletePrefix removes every key with the given prefix, returning the
// removed keys. Registry.Drop and the graph adapter's cascade delete do
// not use it; they unlink the table or delete row by row through the
// engine.
func (t *Table) DeletePrefix(prefix []byte) [][]byte {
	var removed [][]byte
	upper := PrefixUpperBound(prefix)
	t.Scan(prefix, upper, func(key []byte, _ Entry) bool {
		removed = append(removed, append([]byte(nil), key...))
		return true
	})
	for _, k := range removed {
		t.Delete(k)
	}
	return removed
}

// PrefixUpperBound forms the closed-open scan upper bound for prefix by
// appending the high sentinel byte 0xFF.
func PrefixUpperBound(prefix []byte) []byte {
	b := make([]byte, len(prefix)+1)
	copy(b, prefix)
	b[len(prefix)] = 0xFF
	return b
}
