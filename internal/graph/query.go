package graph

import (
	"bytes"
	"sort"

	"github.com/pingcap-incubator/kvtgraph/internal/graphkey"
	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
)

// PropRow is one fetched (vid, tag) property row. Err is set and Record
// is empty when the underlying GET failed (most commonly KEY_NOT_FOUND).
type PropRow struct {
	VID    graphval.Value
	Tag    uint64
	Record graphval.Record
	Err    error
}

// GetVertexProps batch-fetches the tagged property rows named by sels: a
// GET is formed against the appropriate vertex table for each selector,
// issued as one batch, and every successful payload decoded back into a
// Record. Dedup and Limit in opts are applied last, over the encoded
// wire form of each row's record, matching the rule that dedup sorts then
// uniques before any limit is applied.
func (a *Adapter) GetVertexProps(spaceID uint64, sels []VertexSelector, opts QueryOptions) ([]PropRow, error) {
	sp, err := a.ensureSpace(spaceID)
	if err != nil {
		return nil, err
	}

	ops := make([]kvt.Op, len(sels))
	for i, sel := range sels {
		ops[i] = kvt.Op{
			Type:    kvt.OpGet,
			TableID: sp.VerticesTable,
			Key:     graphkey.EncodeVertex(graphkey.Vertex{Space: spaceID, VID: sel.VID, Tag: sel.Tag}),
		}
	}

	results, err := a.engine.BatchExecute(0, ops)
	if err != nil && kvterr.CodeOf(err) != kvterr.BatchNotFullySuccess {
		return nil, err
	}

	rows := make([]PropRow, len(sels))
	for i, sel := range sels {
		res := results[i]
		rows[i] = PropRow{VID: sel.VID, Tag: sel.Tag, Err: res.Err}
		if res.Err == nil {
			rows[i].Record = graphval.Decode(res.Value)
		}
	}
	return applyDedupLimit(rows, opts), nil
}

// EdgePropRow is one fetched edge's decoded properties.
type EdgePropRow struct {
	Edge   graphkey.EdgeKey
	Record graphval.Record
	Err    error
}

// GetEdgeProps batch-fetches the forward rows named by refs, the same
// way GetVertexProps does for vertices.
func (a *Adapter) GetEdgeProps(spaceID uint64, refs []EdgeRef) ([]EdgePropRow, error) {
	sp, err := a.ensureSpace(spaceID)
	if err != nil {
		return nil, err
	}

	ops := make([]kvt.Op, len(refs))
	keys := make([]graphkey.EdgeKey, len(refs))
	for i, ref := range refs {
		e := ref.key()
		e.Space = spaceID
		keys[i] = e
		ops[i] = kvt.Op{Type: kvt.OpGet, TableID: sp.EdgesTable, Key: graphkey.EncodeEdge(e)}
	}

	results, err := a.engine.BatchExecute(0, ops)
	if err != nil && kvterr.CodeOf(err) != kvterr.BatchNotFullySuccess {
		return nil, err
	}

	rows := make([]EdgePropRow, len(refs))
	for i, key := range keys {
		res := results[i]
		rows[i] = EdgePropRow{Edge: key, Err: res.Err}
		if res.Err == nil {
			rows[i].Record = graphval.Decode(res.Value)
		}
	}
	return rows, nil
}

// ScanVertexRow is one row yielded by a table-order vertex scan.
type ScanVertexRow struct {
	Vertex graphkey.Vertex
	Record graphval.Record
}

// ScanVertex walks the vertices table for spaceID in key order starting
// at cursor (nil for the beginning), decoding up to limit rows. The
// returned cursor, passed back as the next call's cursor, is nil once
// the table is exhausted.
func (a *Adapter) ScanVertex(spaceID uint64, cursor []byte, limit int) ([]ScanVertexRow, []byte, error) {
	sp, err := a.ensureSpace(spaceID)
	if err != nil {
		return nil, nil, err
	}
	return scanTable(a.engine, sp.VerticesTable, cursor, limit, func(key, value []byte) (ScanVertexRow, error) {
		v, err := graphkey.DecodeVertex(key)
		if err != nil {
			return ScanVertexRow{}, err
		}
		return ScanVertexRow{Vertex: v, Record: graphval.Decode(value)}, nil
	})
}

// ScanEdgeRow is one row yielded by a table-order edge scan. Reverse is
// true when the row was stored under the reverse-edge-index orientation
// rather than the forward orientation.
type ScanEdgeRow struct {
	Edge    graphkey.EdgeKey
	Record  graphval.Record
	Reverse bool
}

// ScanEdge walks the edges table for spaceID in key order starting at
// cursor (nil for the beginning), decoding up to limit rows. Forward
// and reverse-index rows share one table, so Reverse reports which
// orientation each row was stored in.
func (a *Adapter) ScanEdge(spaceID uint64, cursor []byte, limit int) ([]ScanEdgeRow, []byte, error) {
	sp, err := a.ensureSpace(spaceID)
	if err != nil {
		return nil, nil, err
	}
	return scanTable(a.engine, sp.EdgesTable, cursor, limit, func(key, value []byte) (ScanEdgeRow, error) {
		reverse := len(key) > 0 && key[0] == graphkey.ReverseEdgePrefix
		var e graphkey.EdgeKey
		var err error
		if reverse {
			e, err = graphkey.DecodeReverseEdge(key)
		} else {
			e, err = graphkey.DecodeEdge(key)
		}
		if err != nil {
			return ScanEdgeRow{}, err
		}
		return ScanEdgeRow{Edge: e, Record: graphval.Decode(value), Reverse: reverse}, nil
	})
}

// scanTable is the shared table-order paginated scan used by ScanVertex
// and ScanEdge: it scans [cursor, +inf), decodes each row with decode,
// and returns the key just past the last row as the next cursor (nil
// once fewer than limit rows come back).
func scanTable[T any](engine *kvt.Engine, tableID uint64, cursor []byte, limit int, decode func(key, value []byte) (T, error)) ([]T, []byte, error) {
	kvs, err := engine.Scan(0, tableID, cursor, nil, limit)
	if err != nil {
		return nil, nil, err
	}
	out := make([]T, len(kvs))
	for i, kv := range kvs {
		row, err := decode(kv.Key, kv.Value)
		if err != nil {
			return nil, nil, err
		}
		out[i] = row
	}
	var next []byte
	if len(kvs) == limit {
		next = append(append([]byte(nil), kvs[len(kvs)-1].Key...), 0x00)
	}
	return out, next, nil
}

// applyDedupLimit sorts rows by their encoded record, drops adjacent
// duplicates when opts.Dedup is set, then truncates to opts.Limit. A
// zero Limit leaves the result unbounded.
func applyDedupLimit(rows []PropRow, opts QueryOptions) []PropRow {
	if opts.Dedup {
		sort.SliceStable(rows, func(i, j int) bool {
			return bytes.Compare(graphval.Encode(rows[i].Record), graphval.Encode(rows[j].Record)) < 0
		})
		out := rows[:0]
		var prev []byte
		for _, r := range rows {
			enc := graphval.Encode(r.Record)
			if prev != nil && bytes.Equal(enc, prev) {
				continue
			}
			prev = enc
			out = append(out, r)
		}
		rows = out
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	return rows
}
