package graph

import (
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVertexPropsReportsPerSelectorErrorOnMissingRow(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	_, err := a.AddVertices(1, []VertexInput{
		{VID: graphval.String("alice"), Tags: []TagValues{{TagID: 1, Values: []graphval.Value{graphval.String("Alice")}}}},
	}, map[uint64][]string{1: {"name"}}, WriteFlags{})
	require.NoError(t, err)

	rows, err := a.GetVertexProps(1, []VertexSelector{
		{VID: graphval.String("alice"), Tag: 1},
		{VID: graphval.String("ghost"), Tag: 1},
	}, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NoError(t, rows[0].Err)
	assert.Error(t, rows[1].Err)
}

func TestGetVertexPropsDedupCollapsesIdenticalRecords(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	names := map[uint64][]string{1: {"name"}}
	_, err := a.AddVertices(1, []VertexInput{
		{VID: graphval.String("alice"), Tags: []TagValues{{TagID: 1, Values: []graphval.Value{graphval.String("dup")}}}},
		{VID: graphval.String("bob"), Tags: []TagValues{{TagID: 1, Values: []graphval.Value{graphval.String("dup")}}}},
	}, names, WriteFlags{})
	require.NoError(t, err)

	rows, err := a.GetVertexProps(1, []VertexSelector{
		{VID: graphval.String("alice"), Tag: 1},
		{VID: graphval.String("bob"), Tag: 1},
	}, QueryOptions{Dedup: true})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetEdgePropsRoundTrips(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	ref := EdgeRef{Src: graphval.String("a"), EdgeType: 1, Dst: graphval.String("b")}
	_, err := a.AddEdges(1, []EdgeInput{{EdgeRef: ref, Values: []graphval.Value{graphval.Int64(7)}}}, []string{"weight"}, WriteFlags{})
	require.NoError(t, err)

	rows, err := a.GetEdgeProps(1, []EdgeRef{ref})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, rows[0].Err)
	w, ok := rows[0].Record.Get("weight")
	require.True(t, ok)
	assert.Equal(t, graphval.Int64(7), w)
}

func TestScanVertexPagesThroughTableInKeyOrder(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	names := map[uint64][]string{1: {"name"}}
	_, err := a.AddVertices(1, []VertexInput{
		{VID: graphval.String("alice"), Tags: []TagValues{{TagID: 1, Values: []graphval.Value{graphval.String("Alice")}}}},
		{VID: graphval.String("bob"), Tags: []TagValues{{TagID: 1, Values: []graphval.Value{graphval.String("Bob")}}}},
		{VID: graphval.String("carol"), Tags: []TagValues{{TagID: 1, Values: []graphval.Value{graphval.String("Carol")}}}},
	}, names, WriteFlags{})
	require.NoError(t, err)

	first, cursor, err := a.ScanVertex(1, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)

	second, cursor, err := a.ScanVertex(1, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, cursor)

	seen := map[string]bool{}
	for _, row := range append(first, second...) {
		seen[row.Vertex.VID.Str] = true
	}
	assert.True(t, seen["alice"] && seen["bob"] && seen["carol"])
}

func TestScanEdgeReportsBothOrientations(t *testing.T) {
	a := newTestAdapter(t, kvt.OCC)
	ref := EdgeRef{Src: graphval.String("a"), EdgeType: 1, Dst: graphval.String("b")}
	_, err := a.AddEdges(1, []EdgeInput{{EdgeRef: ref, Values: []graphval.Value{graphval.Int64(7)}}}, []string{"weight"}, WriteFlags{})
	require.NoError(t, err)

	rows, cursor, err := a.ScanEdge(1, nil, 10)
	require.NoError(t, err)
	assert.Nil(t, cursor)
	require.Len(t, rows, 2)
	var sawForward, sawReverse bool
	for _, row := range rows {
		if row.Reverse {
			sawReverse = true
		} else {
			sawForward = true
		}
	}
	assert.True(t, sawForward)
	assert.True(t, sawReverse)
}
