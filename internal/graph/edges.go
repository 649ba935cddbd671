package graph

import (
	"github.com/pingcap-incubator/kvtgraph/internal/graphkey"
	"github.com/pingcap-incubator/kvtgraph/internal/graphval"
)

func (r EdgeRef) key() graphkey.EdgeKey {
	return graphkey.EdgeKey{Src: r.Src, EdgeType: r.EdgeType, Ranking: r.Ranking, Dst: r.Dst}
}

// AddEdges writes each edge's forward row and its reverse-index
// counterpart with the same payload, preserving the invariant that
// every edge is reachable from both its source and its destination.
// flags.IfNotExists skips (rather than overwrites) an edge whose
// forward row is already present.
func (a *Adapter) AddEdges(spaceID uint64, edges []EdgeInput, propNames []string, flags WriteFlags) (Response, error) {
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

	entries := make([]EntryResult, 0, len(edges))
	for _, edge := range edges {
		e := edge.key()
		e.Space = spaceID
		fwdKey := graphkey.EncodeEdge(e)

		if flags.IfNotExists {
			if _, err := a.engine.Get(txID, sp.EdgesTable, fwdKey); err == nil {
				entries = append(entries, EntryResult{Outcome: Skipped})
				continue
			}
		}

		payload := graphval.Encode(zipRecord(propNames, edge.Values))
		revKey := graphkey.EncodeReverseEdge(e)

		if err := a.engine.Set(txID, sp.EdgesTable, fwdKey, payload); err != nil {
			entries = append(entries, EntryResult{Outcome: Failed, Err: err})
			continue
		}
		if err := a.engine.Set(txID, sp.EdgesTable, revKey, payload); err != nil {
			entries = append(entries, EntryResult{Outcome: Failed, Err: err})
			continue
		}
		entries = append(entries, EntryResult{Outcome: Written})
	}

	if err := h.Commit(); err != nil {
		return Response{}, err
	}
	return Response{Code: classify(entries), Entries: entries, RequestID: newRequestID()}, nil
}

// DeleteEdges removes both halves of each referenced edge. KEY_NOT_FOUND
// on either half is benign, matching the cascade-delete path's tolerance
// for a counterpart already removed by a prior call.
func (a *Adapter) DeleteEdges(spaceID uint64, refs []EdgeRef) (Response, error) {
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

	entries := make([]EntryResult, 0, len(refs))
	for _, ref := range refs {
		e := ref.key()
		e.Space = spaceID
		fwdKey := graphkey.EncodeEdge(e)
		revKey := graphkey.EncodeReverseEdge(e)

		if err := a.delNonFatal(txID, sp.EdgesTable, fwdKey); err != nil {
			entries = append(entries, EntryResult{Outcome: Failed, Err: err})
			continue
		}
		if err := a.delNonFatal(txID, sp.EdgesTable, revKey); err != nil {
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
