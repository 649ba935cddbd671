package kvtable

import (
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "kvtable")

// Registry owns every Table in the process. It assigns process-unique,
// monotonically increasing table ids that are never reused within a
// process lifetime.
//
// Registry is not safe for concurrent use on its own; callers (the CC
// strategies in internal/kvt) are expected to serialize access under
// their own engine-wide mutex.
type Registry struct {
	byName  map[string]*Table
	byID    map[uint64]*Table
	nextID  uint64
}

// NewRegistry returns an empty table registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Table),
		byID:   make(map[uint64]*Table),
		nextID: 1,
	}
}

// Create provisions a new table, returning TableAlreadyExists if name is
// taken or InvalidPartitionMethod if partition is neither "hash" nor
// "range".
func (r *Registry) Create(name string, partition Partition) (*Table, error) {
	if _, ok := r.byName[name]; ok {
		return nil, kvterr.New(kvterr.TableAlreadyExists, "table %q already exists", name)
	}
	if partition != Hash && partition != Range {
		return nil, kvterr.New(kvterr.InvalidPartitionMethod, "partition method %q must be hash or range", partition)
	}
	id := r.nextID
	r.nextID++
	t := newTable(id, name, partition)
	r.byName[name] = t
	r.byID[id] = t
	log.WithFields(logrus.Fields{"table": name, "table_id": id, "partition": partition}).Debug("create_table")
	return t, nil
}

// Drop removes a table and everything in it.
func (r *Registry) Drop(id uint64) error {
	t, ok := r.byID[id]
	if !ok {
		return kvterr.New(kvterr.TableNotFound, "table id %d not found", id)
	}
	delete(r.byID, id)
	delete(r.byName, t.Name)
	log.WithField("table_id", id).Debug("drop_table")
	return nil
}

// ByID returns the table with the given id.
func (r *Registry) ByID(id uint64) (*Table, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, kvterr.New(kvterr.TableNotFound, "table id %d not found", id)
	}
	return t, nil
}

// ByName returns the table with the given name.
func (r *Registry) ByName(name string) (*Table, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, kvterr.New(kvterr.TableNotFound, "table %q not found", name)
	}
	return t, nil
}

// List returns every table currently registered.
func (r *Registry) List() []*Table {
	out := make([]*Table, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out
}
