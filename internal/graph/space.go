package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtfacade"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "graph")

// Space is the three tables backing one graph space.
type Space struct {
	ID            uint64
	VerticesTable uint64
	EdgesTable    uint64
	IndicesTable  uint64
}

// Adapter is the graph-to-KV adapter: it owns no storage itself,
// delegating every mutation to the wrapped engine through a
// transaction façade, and caches the per-space table ids it has
// provisioned.
type Adapter struct {
	engine *kvt.Engine
	facade *kvtfacade.Facade

	mu     sync.Mutex
	spaces map[uint64]*Space
}

// New wraps engine in a graph adapter.
func New(engine *kvt.Engine) *Adapter {
	return &Adapter{
		engine: engine,
		facade: kvtfacade.New(engine),
		spaces: make(map[uint64]*Space),
	}
}

// Stats exposes the underlying façade's transaction counters.
func (a *Adapter) Stats() kvtfacade.Stats { return a.facade.Stats() }

// ensureSpace provisions vertices_space_<id> (HASH), edges_space_<id>
// (HASH) and indices_space_<id> (RANGE) on first use. create_table
// returning TABLE_ALREADY_EXISTS is treated as success, making
// provisioning idempotent across concurrent callers.
func (a *Adapter) ensureSpace(spaceID uint64) (*Space, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sp, ok := a.spaces[spaceID]; ok {
		return sp, nil
	}

	vTable, err := a.createIdempotent(fmt.Sprintf("vertices_space_%d", spaceID), kvtable.Hash)
	if err != nil {
		return nil, err
	}
	eTable, err := a.createIdempotent(fmt.Sprintf("edges_space_%d", spaceID), kvtable.Hash)
	if err != nil {
		return nil, err
	}
	iTable, err := a.createIdempotent(fmt.Sprintf("indices_space_%d", spaceID), kvtable.Range)
	if err != nil {
		return nil, err
	}

	sp := &Space{ID: spaceID, VerticesTable: vTable, EdgesTable: eTable, IndicesTable: iTable}
	a.spaces[spaceID] = sp
	log.WithFields(logrus.Fields{"space": spaceID, "vertices": vTable, "edges": eTable, "indices": iTable}).Debug("space provisioned")
	return sp, nil
}

func (a *Adapter) createIdempotent(name string, partition kvtable.Partition) (uint64, error) {
	id, err := a.engine.CreateTable(name, partition)
	if err == nil {
		return id, nil
	}
	if kvterr.CodeOf(err) == kvterr.TableAlreadyExists {
		return a.engine.GetTableID(name)
	}
	return 0, err
}

// ListTables passes through the engine's table listing for operational
// inspection. (cmd/kvtctl's `tables` subcommand calls Engine.ListTables
// directly, not this method.)
func (a *Adapter) ListTables() []kvt.TableInfo {
	return a.engine.ListTables()
}

// upperBound forms the closed-open scan bound [prefix, upperBound(prefix))
// shared by every prefix scan in this package.
func upperBound(prefix []byte) []byte {
	return kvtable.PrefixUpperBound(prefix)
}

// newRequestID stamps a Response with a locally generated correlation
// id. The id is generated when the response is built and is not written
// to any log line.
func newRequestID() string {
	return uuid.NewString()
}
