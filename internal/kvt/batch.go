package kvt

import "github.com/pingcap-incubator/kvtgraph/internal/kvterr"

// BatchExecute runs ops sequentially against txID, or against a fresh
// auto-committed transaction when txID is 0. Later ops in the same
// batch observe the effects of earlier ones. Once ops run, the returned
// slice has one OpResult per input Op, even when the batch as a whole is
// reported as BatchNotFullySuccess; if beginning the auto-commit
// transaction fails, it is nil.
func (e *Engine) BatchExecute(txID uint64, ops []Op) ([]OpResult, error) {
	autoCommit := txID == 0
	workingTx := txID
	if autoCommit {
		id, err := e.Begin()
		if err != nil {
			return nil, err
		}
		workingTx = id
	}

	results := make([]OpResult, len(ops))
	failed := 0
	for i, op := range ops {
		var res OpResult
		switch op.Type {
		case OpGet:
			v, err := e.Get(workingTx, op.TableID, op.Key)
			res = OpResult{Value: v, Err: err}
		case OpSet:
			res = OpResult{Err: e.Set(workingTx, op.TableID, op.Key, op.Value)}
		case OpDel:
			res = OpResult{Err: e.Del(workingTx, op.TableID, op.Key)}
		default:
			res = OpResult{Err: kvterr.New(kvterr.UnknownError, "unknown batch op type %v", op.Type)}
		}
		if res.Err != nil {
			failed++
		}
		results[i] = res
	}

	if autoCommit {
		if failed > 0 {
			_ = e.Rollback(workingTx)
			return results, kvterr.New(kvterr.BatchNotFullySuccess, "%d/%d ops failed", failed, len(ops))
		}
		if err := e.Commit(workingTx); err != nil {
			return results, err
		}
		return results, nil
	}

	if failed > 0 {
		return results, kvterr.New(kvterr.BatchNotFullySuccess, "%d/%d ops failed", failed, len(ops))
	}
	return results, nil
}
