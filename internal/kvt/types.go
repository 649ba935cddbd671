// Package kvt is the KVT engine: four pluggable concurrency-control
// strategies (NoCC, Simple, 2PL, OCC) sharing one table registry and
// transaction map, plus a batch executor. The scoped transaction façade
// lives in internal/kvtfacade.
package kvt

// Mode selects the concurrency-control strategy an Engine enforces.
type Mode int

const (
	// NoCC applies every mutation directly under the engine mutex with
	// no isolation at all. Reference baseline only.
	NoCC Mode = iota
	// Simple allows at most one open transaction at a time; one-shot
	// reads still see the committed snapshot.
	Simple
	// TwoPL is strict two-phase locking: locks held until commit or
	// rollback, no deadlock detection.
	TwoPL
	// OCC is optimistic concurrency control: transactions proceed
	// lock-free and validate read-set versions at commit.
	OCC
)

func (m Mode) String() string {
	switch m {
	case NoCC:
		return "NOCC"
	case Simple:
		return "SIMPLE"
	case TwoPL:
		return "2PL"
	case OCC:
		return "OCC"
	default:
		return "UNKNOWN"
	}
}

// OpType names one batch operation kind.
type OpType int

const (
	OpGet OpType = iota
	OpSet
	OpDel
)

func (t OpType) String() string {
	switch t {
	case OpGet:
		return "GET"
	case OpSet:
		return "SET"
	case OpDel:
		return "DEL"
	default:
		return "UNKNOWN"
	}
}

// Op is one entry of a batch_execute request.
type Op struct {
	Type    OpType
	TableID uint64
	Key     []byte
	Value   []byte // only meaningful for OpSet
}

// OpResult is the outcome of a single Op within a batch.
type OpResult struct {
	Value []byte // only set for a successful OpGet
	Err   error
}

// KV is one row of a scan result.
type KV struct {
	Key   []byte
	Value []byte
}

// TableInfo is the read-only view of a table exposed by ListTables.
type TableInfo struct {
	ID        uint64
	Name      string
	Partition string
}
