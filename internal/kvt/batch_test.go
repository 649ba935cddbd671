package kvt

import (
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBatchAtomicity checks that a batch of ops commits or fails as a
// unit: a failing op in the batch leaves none of the batch's writes
// visible.
func TestBatchAtomicity(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)

	ops := []Op{
		{Type: OpSet, TableID: tbl, Key: []byte("k1"), Value: []byte("v1")},
		{Type: OpSet, TableID: tbl, Key: []byte("k2"), Value: []byte("v2")},
		{Type: OpDel, TableID: tbl, Key: []byte("k3")}, // absent
	}

	results, err := e.BatchExecute(0, ops)
	require.Error(t, err)
	assert.Equal(t, kvterr.BatchNotFullySuccess, kvterr.CodeOf(err))
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Error(t, results[2].Err)

	_, err = e.Get(0, tbl, []byte("k1"))
	assert.Error(t, err)
	_, err = e.Get(0, tbl, []byte("k2"))
	assert.Error(t, err)
}

func TestBatchAllSuccessCommits(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)

	ops := []Op{
		{Type: OpSet, TableID: tbl, Key: []byte("k1"), Value: []byte("v1")},
		{Type: OpSet, TableID: tbl, Key: []byte("k2"), Value: []byte("v2")},
	}
	results, err := e.BatchExecute(0, ops)
	require.NoError(t, err)
	require.Len(t, results, 2)

	v, err := e.Get(0, tbl, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)
}

func TestBatchAgainstCallerTransactionDoesNotAutoCommit(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	txID, err := e.Begin()
	require.NoError(t, err)

	ops := []Op{{Type: OpSet, TableID: tbl, Key: []byte("k"), Value: []byte("v")}}
	_, err = e.BatchExecute(txID, ops)
	require.NoError(t, err)

	_, err = e.Get(0, tbl, []byte("k"))
	require.Error(t, err) // not visible until the caller commits

	require.NoError(t, e.Commit(txID))
	v, err := e.Get(0, tbl, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestBatchLaterOpsSeeEarlierOpsInSameTransaction(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	ops := []Op{
		{Type: OpSet, TableID: tbl, Key: []byte("k"), Value: []byte("v1")},
		{Type: OpGet, TableID: tbl, Key: []byte("k")},
		{Type: OpSet, TableID: tbl, Key: []byte("k"), Value: []byte("v2")},
	}
	results, err := e.BatchExecute(0, ops)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), results[1].Value)

	v, err := e.Get(0, tbl, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)
}
