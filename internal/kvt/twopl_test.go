package kvt

import (
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTwoPLLockThenRefuse checks that once a transaction has read a key
// under 2PL, a second transaction reading that key is refused until the
// first releases its locks.
func TestTwoPLLockThenRefuse(t *testing.T) {
	e, tbl := newTestEngine(t, TwoPL)
	require.NoError(t, e.Set(0, tbl, []byte("x"), []byte("a")))

	t1, _ := e.Begin()
	v, err := e.Get(t1, tbl, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)

	t2, _ := e.Begin()
	_, err = e.Get(t2, tbl, []byte("x"))
	require.Error(t, err)
	assert.Equal(t, kvterr.KeyIsLocked, kvterr.CodeOf(err))

	require.NoError(t, e.Commit(t1))

	v, err = e.Get(t2, tbl, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)
}

func TestTwoPLNewKeyPlaceholderDroppedOnDelete(t *testing.T) {
	e, tbl := newTestEngine(t, TwoPL)

	txID, _ := e.Begin()
	require.NoError(t, e.Set(txID, tbl, []byte("k"), []byte("v")))
	require.NoError(t, e.Del(txID, tbl, []byte("k")))
	require.NoError(t, e.Commit(txID))

	_, err := e.Get(0, tbl, []byte("k"))
	require.Error(t, err)
	assert.Equal(t, kvterr.KeyNotFound, kvterr.CodeOf(err))
}

func TestTwoPLRollbackReleasesLocksWithoutInstalling(t *testing.T) {
	e, tbl := newTestEngine(t, TwoPL)
	require.NoError(t, e.Set(0, tbl, []byte("k"), []byte("orig")))

	txID, _ := e.Begin()
	require.NoError(t, e.Set(txID, tbl, []byte("k"), []byte("staged")))
	require.NoError(t, e.Rollback(txID))

	v, err := e.Get(0, tbl, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("orig"), v)

	// lock released: a fresh transaction can lock it again
	t2, _ := e.Begin()
	_, err = e.Get(t2, tbl, []byte("k"))
	assert.NoError(t, err)
}

func TestTwoPLOneShotRefusesLockedRow(t *testing.T) {
	e, tbl := newTestEngine(t, TwoPL)
	require.NoError(t, e.Set(0, tbl, []byte("k"), []byte("v")))

	txID, _ := e.Begin()
	_, err := e.Get(txID, tbl, []byte("k"))
	require.NoError(t, err)

	_, err = e.Get(0, tbl, []byte("k"))
	require.Error(t, err)
	assert.Equal(t, kvterr.KeyIsLocked, kvterr.CodeOf(err))
}
