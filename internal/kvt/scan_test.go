package kvt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanRangeBounds checks that Scan returns a half-open [start, end)
// range in ascending key order, honoring limit.
func TestScanRangeBounds(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	for _, k := range []string{"scan_001", "scan_002", "scan_003", "scan_004", "scan_005"} {
		require.NoError(t, e.Set(0, tbl, []byte(k), []byte(k)))
	}

	rows, err := e.Scan(0, tbl, []byte("scan_001"), []byte("scan_004"), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "scan_001", string(rows[0].Key))
	assert.Equal(t, "scan_002", string(rows[1].Key))
	assert.Equal(t, "scan_003", string(rows[2].Key))
}

func TestScanOverlaysStagedWritesAndDeletes(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	require.NoError(t, e.Set(0, tbl, []byte("a"), []byte("a1")))
	require.NoError(t, e.Set(0, tbl, []byte("b"), []byte("b1")))

	txID, _ := e.Begin()
	require.NoError(t, e.Del(txID, tbl, []byte("a")))
	require.NoError(t, e.Set(txID, tbl, []byte("c"), []byte("c1")))

	rows, err := e.Scan(txID, tbl, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", string(rows[0].Key))
	assert.Equal(t, "c", string(rows[1].Key))

	// one-shot scan, unaffected by the open transaction's staged state
	committed, err := e.Scan(0, tbl, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, committed, 2)
	assert.Equal(t, "a", string(committed[0].Key))
	assert.Equal(t, "b", string(committed[1].Key))
}

func TestScanRejectsNonPositiveLimit(t *testing.T) {
	e, tbl := newTestEngine(t, OCC)
	_, err := e.Scan(0, tbl, nil, nil, 0)
	assert.Error(t, err)
}
