package graph

import (
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddEdgesWritesSymmetricReverseIndex checks that adding an edge is
// visible from both a forward (OUT) neighbor walk of its source and a
// reverse (IN) neighbor walk of its destination, and both carry the
// same properties.
func TestAddEdgesWritesSymmetricReverseIndex(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	resp, err := a.AddEdges(1, []EdgeInput{
		{EdgeRef: EdgeRef{Src: graphval.String("alice"), EdgeType: 9, Ranking: 0, Dst: graphval.String("bob")},
			Values: []graphval.Value{graphval.Int64(2020)}},
	}, []string{"since"}, WriteFlags{})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, resp.Code)

	out, err := a.GetNeighbors(1, []graphval.Value{graphval.String("alice")}, []int64{9}, Out, nil, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, graphval.String("bob"), out[0].Edge.Dst)

	in, err := a.GetNeighbors(1, []graphval.Value{graphval.String("bob")}, []int64{9}, In, nil, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, graphval.String("alice"), in[0].Edge.Src)

	since, ok := in[0].EdgeProps.Get("since")
	require.True(t, ok)
	assert.Equal(t, graphval.Int64(2020), since)
}

func TestAddEdgesIfNotExistsSkipsExistingEdge(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	edge := EdgeInput{EdgeRef: EdgeRef{Src: graphval.String("a"), EdgeType: 1, Dst: graphval.String("b")},
		Values: []graphval.Value{graphval.Int64(1)}}
	_, err := a.AddEdges(1, []EdgeInput{edge}, []string{"v"}, WriteFlags{})
	require.NoError(t, err)

	edge.Values = []graphval.Value{graphval.Int64(2)}
	resp, err := a.AddEdges(1, []EdgeInput{edge}, []string{"v"}, WriteFlags{IfNotExists: true})
	require.NoError(t, err)
	assert.Equal(t, Skipped, resp.Entries[0].Outcome)

	rows, err := a.GetEdgeProps(1, []EdgeRef{edge.EdgeRef})
	require.NoError(t, err)
	v, _ := rows[0].Record.Get("v")
	assert.Equal(t, graphval.Int64(1), v)
}

func TestDeleteEdgesRemovesBothForwardAndReverseRows(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	ref := EdgeRef{Src: graphval.String("a"), EdgeType: 1, Dst: graphval.String("b")}
	_, err := a.AddEdges(1, []EdgeInput{{EdgeRef: ref}}, nil, WriteFlags{})
	require.NoError(t, err)

	resp, err := a.DeleteEdges(1, []EdgeRef{ref})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, resp.Code)

	out, err := a.GetNeighbors(1, []graphval.Value{graphval.String("a")}, []int64{1}, Out, nil, QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, out)
	in, err := a.GetNeighbors(1, []graphval.Value{graphval.String("b")}, []int64{1}, In, nil, QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, in)
}

// TestDeleteEdgesToleratesAlreadyMissingCounterpart is the benign side
// of spec's KEY_NOT_FOUND tolerance: deleting an edge that is already
// fully gone (both halves) must still report success, not a failure.
func TestDeleteEdgesToleratesAlreadyMissingCounterpart(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	ref := EdgeRef{Src: graphval.String("a"), EdgeType: 1, Dst: graphval.String("b")}
	_, err := a.AddEdges(1, []EdgeInput{{EdgeRef: ref}}, nil, WriteFlags{})
	require.NoError(t, err)

	_, err = a.DeleteEdges(1, []EdgeRef{ref})
	require.NoError(t, err)

	resp, err := a.DeleteEdges(1, []EdgeRef{ref})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, resp.Code)
}
