package kvt

import (
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/kvtable"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, mode Mode) (*Engine, uint64) {
	t.Helper()
	e := New(mode)
	id, err := e.CreateTable("t", kvtable.Hash)
	require.NoError(t, err)
	return e, id
}

// TestOCCSnapshotIsolation checks that a reader inside an open
// transaction never observes another transaction's uncommitted write.
// T2 only ever reads iso, but since T1 commits a new version of iso
// in between, T2's own commit must still fail validation: a read-only
// transaction is not exempt from the read-set version check.
func TestOCCSnapshotIsolation(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	require.NoError(t, e.Set(0, tbl, []byte("iso"), []byte("initial")))

	t1, err := e.Begin()
	require.NoError(t, err)
	t2, err := e.Begin()
	require.NoError(t, err)

	require.NoError(t, e.Set(t1, tbl, []byte("iso"), []byte("t1")))

	v, err := e.Get(t2, tbl, []byte("iso"))
	require.NoError(t, err)
	assert.Equal(t, []byte("initial"), v)

	require.NoError(t, e.Commit(t1))

	v, err = e.Get(t2, tbl, []byte("iso"))
	require.NoError(t, err)
	assert.Equal(t, []byte("initial"), v)

	err = e.Commit(t2)
	require.Error(t, err)
	assert.Equal(t, kvterr.TransactionHasStaleData, kvterr.CodeOf(err))

	t3, err := e.Begin()
	require.NoError(t, err)
	v, err = e.Get(t3, tbl, []byte("iso"))
	require.NoError(t, err)
	assert.Equal(t, []byte("t1"), v)
}

func TestOCCWriteWriteConflict(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	require.NoError(t, e.Set(0, tbl, []byte("c"), []byte("orig")))

	t1, _ := e.Begin()
	t2, _ := e.Begin()

	_, err := e.Get(t1, tbl, []byte("c"))
	require.NoError(t, err)
	_, err = e.Get(t2, tbl, []byte("c"))
	require.NoError(t, err)

	require.NoError(t, e.Set(t1, tbl, []byte("c"), []byte("v1")))
	require.NoError(t, e.Set(t2, tbl, []byte("c"), []byte("v2")))

	require.NoError(t, e.Commit(t1))

	err = e.Commit(t2)
	require.Error(t, err)
	assert.Equal(t, kvterr.TransactionHasStaleData, kvterr.CodeOf(err))

	v, err := e.Get(0, tbl, []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)
}

func TestOCCDeleteRequiresReadSetVersion(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	require.NoError(t, e.Set(0, tbl, []byte("k"), []byte("v")))

	txID, _ := e.Begin()
	require.NoError(t, e.Del(txID, tbl, []byte("k")))
	require.NoError(t, e.Commit(txID))

	_, err := e.Get(0, tbl, []byte("k"))
	require.Error(t, err)
	assert.Equal(t, kvterr.KeyNotFound, kvterr.CodeOf(err))
}

func TestOCCOneShotWriteBumpsVersionWithoutValidation(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	require.NoError(t, e.Set(0, tbl, []byte("k"), []byte("v1")))
	require.NoError(t, e.Set(0, tbl, []byte("k"), []byte("v2")))

	v, err := e.Get(0, tbl, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)
}
