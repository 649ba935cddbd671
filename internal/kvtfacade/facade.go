// Package kvtfacade wraps a raw kvt.Engine transaction id with scoped
// ownership: a Handle rolls back on Close unless Commit already ran,
// and Facade.ExecuteWithRetry retries a body function across commit-time
// conflicts. Neither the engine nor its transactions are safe to share
// outside of this ownership discipline.
package kvtfacade

import (
	"sync/atomic"

	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/pingcap-incubator/kvtgraph/internal/kvterr"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "kvtfacade")

// Stats is a point-in-time snapshot of a Facade's transaction counters.
type Stats struct {
	Started    uint64
	Committed  uint64
	RolledBack uint64
	Retries    uint64
	Conflicts  uint64
}

// Facade issues scoped transaction Handles against an Engine and
// accumulates aggregate stats across every Handle it creates.
type Facade struct {
	engine *kvt.Engine

	started    uint64
	committed  uint64
	rolledBack uint64
	retries    uint64
	conflicts  uint64
}

// New wraps engine in a Facade with zeroed stats.
func New(engine *kvt.Engine) *Facade {
	return &Facade{engine: engine}
}

// Stats returns a snapshot of the counters accumulated so far.
func (f *Facade) Stats() Stats {
	return Stats{
		Started:    atomic.LoadUint64(&f.started),
		Committed:  atomic.LoadUint64(&f.committed),
		RolledBack: atomic.LoadUint64(&f.rolledBack),
		Retries:    atomic.LoadUint64(&f.retries),
		Conflicts:  atomic.LoadUint64(&f.conflicts),
	}
}

// Handle owns one open transaction id. Close is safe to call any number
// of times and after Commit; it is a no-op once the transaction has
// already been committed or rolled back.
type Handle struct {
	facade *Facade
	txID   uint64
	done   bool
}

// Begin opens a new transaction and returns a Handle owning it.
func (f *Facade) Begin() (*Handle, error) {
	id, err := f.engine.Begin()
	if err != nil {
		return nil, err
	}
	atomic.AddUint64(&f.started, 1)
	return &Handle{facade: f, txID: id}, nil
}

// TxID returns the underlying engine transaction id, for passing into
// Engine.Get/Set/Del/Scan/BatchExecute calls.
func (h *Handle) TxID() uint64 { return h.txID }

// Commit finalizes the transaction. It is idempotent: a second call
// after a successful commit is a no-op.
func (h *Handle) Commit() error {
	if h.done {
		return nil
	}
	err := h.facade.engine.Commit(h.txID)
	h.done = true
	if err != nil {
		return err
	}
	atomic.AddUint64(&h.facade.committed, 1)
	return nil
}

// Close rolls back the transaction if it was neither committed nor
// already rolled back. Call it via defer immediately after Begin so
// every exit path — including a panic recovered upstream — releases
// the transaction.
func (h *Handle) Close() {
	if h.done {
		return
	}
	h.done = true
	if err := h.facade.engine.Rollback(h.txID); err != nil {
		log.WithFields(logrus.Fields{"tx_id": h.txID, "error": err}).Warn("rollback on close failed")
	}
	atomic.AddUint64(&h.facade.rolledBack, 1)
}

// ExecuteWithRetry begins a transaction, invokes body with its id,
// commits, and retries the whole begin/body/commit cycle up to
// maxRetries times if commit fails with a retryable conflict
// (TRANSACTION_HAS_STALE_DATA or KEY_IS_LOCKED). A body error is never
// retried; it propagates immediately after rolling back.
func (f *Facade) ExecuteWithRetry(body func(txID uint64) error, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		h, err := f.Begin()
		if err != nil {
			return err
		}

		if bodyErr := body(h.TxID()); bodyErr != nil {
			h.Close()
			return bodyErr
		}

		commitErr := h.Commit()
		if commitErr == nil {
			return nil
		}
		lastErr = commitErr

		code := kvterr.CodeOf(commitErr)
		if code != kvterr.TransactionHasStaleData && code != kvterr.KeyIsLocked {
			return commitErr
		}
		atomic.AddUint64(&f.retries, 1)
		atomic.AddUint64(&f.conflicts, 1)
		log.WithFields(logrus.Fields{"attempt": attempt, "code": code}).Debug("retrying after conflict")
	}
	return lastErr
}
