package graphkey

import (
	"strconv"

	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
)

// Vertex identifies a tagged property set on a vertex.
type Vertex struct {
	Space uint64
	Part  uint64
	VID   graphval.Value
	Tag   uint64
}

// EdgeKey identifies one forward edge: (src, type, ranking, dst).
type EdgeKey struct {
	Space    uint64
	Part     uint64
	Src      graphval.Value
	EdgeType int64
	Ranking  int64
	Dst      graphval.Value
}

// EncodeVertex builds the key `v:space:part:escape(vid):tag`.
func EncodeVertex(v Vertex) []byte {
	return joinComponents(
		string(VertexPrefix),
		u64(v.Space),
		u64(v.Part),
		escape(canonical(v.VID)),
		u64(v.Tag),
	)
}

// DecodeVertex parses a key built by EncodeVertex.
func DecodeVertex(key []byte) (Vertex, error) {
	parts := splitComponents(string(key))
	if len(parts) != 5 || parts[0] != string(VertexPrefix) {
		return Vertex{}, kvterr.New(kvterr.UnknownError, "malformed vertex key %q", key)
	}
	space, err := parseU64(parts[1])
	if err != nil {
		return Vertex{}, err
	}
	part, err := parseU64(parts[2])
	if err != nil {
		return Vertex{}, err
	}
	tag, err := parseU64(parts[4])
	if err != nil {
		return Vertex{}, err
	}
	return Vertex{Space: space, Part: part, VID: decodeID(unescape(parts[3])), Tag: tag}, nil
}

// VertexPrefixBytes builds the scan prefix `v:space:part:escape(vid):`
// bracketing every tag's row for one vertex.
func VertexPrefixBytes(space, part uint64, vid graphval.Value) []byte {
	return append(joinComponents(string(VertexPrefix), u64(space), u64(part), escape(canonical(vid))), Separator)
}

// EncodeEdge builds the forward-edge key
// `e:space:part:escape(src):type:ranking:escape(dst)`.
func EncodeEdge(e EdgeKey) []byte {
	return joinComponents(
		string(EdgePrefix),
		u64(e.Space),
		u64(e.Part),
		escape(canonical(e.Src)),
		strconv.FormatInt(e.EdgeType, 10),
		strconv.FormatInt(e.Ranking, 10),
		escape(canonical(e.Dst)),
	)
}

// EncodeReverseEdge builds the reverse-edge-index key
// `r:space:part:escape(dst):type:ranking:escape(src)`: the same edge,
// indexed under its destination.
func EncodeReverseEdge(e EdgeKey) []byte {
	return joinComponents(
		string(ReverseEdgePrefix),
		u64(e.Space),
		u64(e.Part),
		escape(canonical(e.Dst)),
		strconv.FormatInt(e.EdgeType, 10),
		strconv.FormatInt(e.Ranking, 10),
		escape(canonical(e.Src)),
	)
}

// DecodeEdge parses a forward-edge key built by EncodeEdge.
func DecodeEdge(key []byte) (EdgeKey, error) {
	return decodeEdgeLike(key, EdgePrefix, false)
}

// DecodeReverseEdge parses a reverse-edge key built by EncodeReverseEdge,
// reconstructing it back into forward (src, dst) orientation.
func DecodeReverseEdge(key []byte) (EdgeKey, error) {
	return decodeEdgeLike(key, ReverseEdgePrefix, true)
}

func decodeEdgeLike(key []byte, prefix byte, reversed bool) (EdgeKey, error) {
	parts := splitComponents(string(key))
	if len(parts) != 7 || parts[0] != string(prefix) {
		return EdgeKey{}, kvterr.New(kvterr.UnknownError, "malformed edge key %q", key)
	}
	space, err := parseU64(parts[1])
	if err != nil {
		return EdgeKey{}, err
	}
	part, err := parseU64(parts[2])
	if err != nil {
		return EdgeKey{}, err
	}
	edgeType, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return EdgeKey{}, kvterr.New(kvterr.UnknownError, "malformed edge type in key %q", key)
	}
	ranking, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return EdgeKey{}, kvterr.New(kvterr.UnknownError, "malformed ranking in key %q", key)
	}
	first := decodeID(unescape(parts[3]))
	second := decodeID(unescape(parts[6]))

	e := EdgeKey{Space: space, Part: part, EdgeType: edgeType, Ranking: ranking}
	if reversed {
		e.Dst, e.Src = first, second
	} else {
		e.Src, e.Dst = first, second
	}
	return e, nil
}

// OutEdgePrefixBytes builds the scan prefix `e:space:part:escape(src):`
// for every outgoing edge of src, or `e:space:part:escape(src):type:`
// when edgeType is non-nil, restricting to one edge type.
func OutEdgePrefixBytes(space, part uint64, src graphval.Value, edgeType *int64) []byte {
	parts := []string{string(EdgePrefix), u64(space), u64(part), escape(canonical(src))}
	if edgeType != nil {
		parts = append(parts, strconv.FormatInt(*edgeType, 10))
	}
	return append(joinComponents(parts...), Separator)
}

// InEdgePrefixBytes builds the reverse-index scan prefix
// `r:space:part:escape(dst):` (or with a trailing edge type) for every
// incoming edge of dst.
func InEdgePrefixBytes(space, part uint64, dst graphval.Value, edgeType *int64) []byte {
	parts := []string{string(ReverseEdgePrefix), u64(space), u64(part), escape(canonical(dst))}
	if edgeType != nil {
		parts = append(parts, strconv.FormatInt(*edgeType, 10))
	}
	return append(joinComponents(parts...), Separator)
}

// EncodeIndex builds the secondary-index key
// `i:space:index_id:escape(value)`.
func EncodeIndex(space, indexID uint64, value graphval.Value) []byte {
	return joinComponents(string(IndexPrefix), u64(space), u64(indexID), escape(canonical(value)))
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func parseU64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, kvterr.New(kvterr.UnknownError, "malformed numeric key component %q", s)
	}
	return v, nil
}
