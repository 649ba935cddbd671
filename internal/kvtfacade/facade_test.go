package kvtfacade

import (
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFacade(t *testing.T, mode kvt.Mode) (*Facade, uint64) {
	t.Helper()
	engine := kvt.New(mode)
	tblID, err := engine.CreateTable("t", kvtable.Hash)
	require.NoError(t, err)
	return New(engine), tblID
}

func TestHandleCommitUpdatesStats(t *testing.T) {
	f, _ := newTestFacade(t, kvt.OCC)

	h, err := f.Begin()
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Commit())

	stats := f.Stats()
	assert.Equal(t, uint64(1), stats.Started)
	assert.Equal(t, uint64(1), stats.Committed)
	assert.Equal(t, uint64(0), stats.RolledBack)
}

func TestHandleCloseRollsBackUncommittedTransaction(t *testing.T) {
	f, _ := newTestFacade(t, kvt.OCC)

	h, err := f.Begin()
	require.NoError(t, err)
	h.Close()

	stats := f.Stats()
	assert.Equal(t, uint64(1), stats.RolledBack)
	assert.Equal(t, uint64(0), stats.Committed)
}

func TestHandleCloseAfterCommitIsNoOp(t *testing.T) {
	f, _ := newTestFacade(t, kvt.OCC)
	h, err := f.Begin()
	require.NoError(t, err)
	require.NoError(t, h.Commit())
	h.Close()

	stats := f.Stats()
	assert.Equal(t, uint64(1), stats.Committed)
	assert.Equal(t, uint64(0), stats.RolledBack)
}

func TestExecuteWithRetryRetriesOnStaleData(t *testing.T) {
	engine := kvt.New(kvt.OCC)
	tbl, err := engine.CreateTable("t", kvtable.Hash)
	require.NoError(t, err)
	require.NoError(t, engine.Set(0, tbl, []byte("k"), []byte("orig")))

	f := New(engine)

	// A concurrent writer bumps the version between read and commit of
	// the body below, forcing exactly one retry.
	attempt := 0
	err = f.ExecuteWithRetry(func(txID uint64) error {
		attempt++
		_, gerr := engine.Get(txID, tbl, []byte("k"))
		if gerr != nil {
			return gerr
		}
		if attempt == 1 {
			require.NoError(t, engine.Set(0, tbl, []byte("k"), []byte("interloper")))
		}
		return engine.Set(txID, tbl, []byte("k"), []byte("mine"))
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, attempt)

	stats := f.Stats()
	assert.Equal(t, uint64(1), stats.Retries)
	assert.Equal(t, uint64(1), stats.Conflicts)

	v, gerr := engine.Get(0, tbl, []byte("k"))
	require.NoError(t, gerr)
	assert.Equal(t, []byte("mine"), v)
}

func TestExecuteWithRetryDoesNotRetryBodyErrors(t *testing.T) {
	f, tbl := newTestFacade(t, kvt.OCC)
	_ = tbl

	calls := 0
	err := f.ExecuteWithRetry(func(txID uint64) error {
		calls++
		return assert.AnError
	}, 5)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
