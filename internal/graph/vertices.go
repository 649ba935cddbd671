package graph

import (
	"github.com/pingcap-incubator/kvtgraph/internal/graphkey"
	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
)

// zipRecord pairs names against values up to the shorter length,
// silently dropping any excess on either side.
func zipRecord(names []string, values []graphval.Value) graphval.Record {
	n := len(names)
	if len(values) < n {
		n = len(values)
	}
	rec := make(graphval.Record, n)
	for i := 0; i < n; i++ {
		rec[i] = graphval.Field{Name: names[i], Value: values[i]}
	}
	return rec
}

// AddVertices writes each (vid, tag) property set in vertices. When
// flags.IfNotExists is set, a row already present is left untouched and
// reported SKIPPED rather than overwritten. One EntryResult is returned
// per (vertex, tag) pair, in input order.
func (a *Adapter) AddVertices(spaceID uint64, vertices []VertexInput, propNames map[uint64][]string, flags WriteFlags) (Response, error) {
	sp, err := a.ensureSpace(spaceID)
	if err != nil {
		return Response{}, err
	}

	h, err := a.facade.Begin()
	if err != nil {
		return Response{}, err
	}
	defer h.Close()
	txID := h.TxID()

	var entries []EntryResult
	for _, v := range vertices {
		for _, tag := range v.Tags {
			key := graphkey.EncodeVertex(graphkey.Vertex{Space: spaceID, VID: v.VID, Tag: tag.TagID})

			if flags.IfNotExists {
				if _, err := a.engine.Get(txID, sp.VerticesTable, key); err == nil {
					entries = append(entries, EntryResult{Outcome: Skipped})
					continue
				}
			}

			payload := graphval.Encode(zipRecord(propNames[tag.TagID], tag.Values))
			if err := a.engine.Set(txID, sp.VerticesTable, key, payload); err != nil {
				entries = append(entries, EntryResult{Outcome: Failed, Err: err})
				continue
			}
			entries = append(entries, EntryResult{Outcome: Written})
		}
	}

	if err := h.Commit(); err != nil {
		return Response{}, err
	}
	return Response{Code: classify(entries), Entries: entries, RequestID: newRequestID()}, nil
}

// DeleteVertices removes every tagged row for each vid, along with every
// edge touching it (outgoing and incoming) and that edge's reverse-index
// counterpart, all inside one transaction. KEY_NOT_FOUND encountered
// while deleting a reverse counterpart is benign: the forward and
// reverse halves of an edge are deleted independently, so one side may
// already be gone. One EntryResult is returned per vid, in input order.
func (a *Adapter) DeleteVertices(spaceID uint64, vids []graphval.Value) (Response, error) {
	sp, err := a.ensureSpace(spaceID)
	if err != nil {
		return Response{}, err
	}

	h, err := a.facade.Begin()
	if err != nil {
		return Response{}, err
	}
	defer h.Close()
	txID := h.TxID()

	const scanBatch = 1000
	entries := make([]EntryResult, 0, len(vids))
	for _, vid := range vids {
		if err := a.deleteOneVertex(txID, sp, vid, scanBatch); err != nil {
			entries = append(entries, EntryResult{Outcome: Failed, Err: err})
			continue
		}
		entries = append(entries, EntryResult{Outcome: Written})
	}

	code := classify(entries)
	if code != Succeeded {
		return Response{Code: code, Entries: entries, RequestID: newRequestID()}, nil
	}
	if err := h.Commit(); err != nil {
		return Response{}, err
	}
	return Response{Code: code, Entries: entries, RequestID: newRequestID()}, nil
}

func (a *Adapter) deleteOneVertex(txID uint64, sp *Space, vid graphval.Value, scanBatch int) error {
	vPrefix := graphkey.VertexPrefixBytes(sp.ID, 0, vid)
	if err := a.deletePrefix(txID, sp.VerticesTable, vPrefix, scanBatch); err != nil {
		return err
	}

	outPrefix := graphkey.OutEdgePrefixBytes(sp.ID, 0, vid, nil)
	if err := a.deleteEdgesAndReverse(txID, sp, outPrefix, scanBatch, false); err != nil {
		return err
	}

	inPrefix := graphkey.InEdgePrefixBytes(sp.ID, 0, vid, nil)
	return a.deleteEdgesAndReverse(txID, sp, inPrefix, scanBatch, true)
}

// deleteEdgesAndReverse scans every row under prefix (a forward-edge
// range when reverse is false, a reverse-edge-index range when true),
// deletes it, decodes it, and deletes its counterpart on the other side
// of the index.
func (a *Adapter) deleteEdgesAndReverse(txID uint64, sp *Space, prefix []byte, scanBatch int, reverse bool) error {
	for {
		rows, err := a.engine.Scan(txID, sp.EdgesTable, prefix, upperBound(prefix), scanBatch)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, row := range rows {
			var e graphkey.EdgeKey
			var counterpart []byte
			if reverse {
				e, err = graphkey.DecodeReverseEdge(row.Key)
				if err != nil {
					return err
				}
				counterpart = graphkey.EncodeEdge(e)
			} else {
				e, err = graphkey.DecodeEdge(row.Key)
				if err != nil {
					return err
				}
				counterpart = graphkey.EncodeReverseEdge(e)
			}
			if err := a.engine.Del(txID, sp.EdgesTable, row.Key); err != nil {
				return err
			}
			if err := a.delNonFatal(txID, sp.EdgesTable, counterpart); err != nil {
				return err
			}
		}
		if len(rows) < scanBatch {
			return nil
		}
	}
}

func (a *Adapter) deletePrefix(txID, tableID uint64, prefix []byte, scanBatch int) error {
	for {
		rows, err := a.engine.Scan(txID, tableID, prefix, upperBound(prefix), scanBatch)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, row := range rows {
			if err := a.engine.Del(txID, tableID, row.Key); err != nil {
				return err
			}
		}
		if len(rows) < scanBatch {
			return nil
		}
	}
}

// delNonFatal deletes key, treating KEY_NOT_FOUND as success: the
// reverse half of an edge may already have been removed by an earlier
// pass over the same vertex's neighbors.
func (a *Adapter) delNonFatal(txID, tableID uint64, key []byte) error {
	err := a.engine.Del(txID, tableID, key)
	if err == nil || kvterr.CodeOf(err) == kvterr.KeyNotFound {
		return nil
	}
	return err
}
