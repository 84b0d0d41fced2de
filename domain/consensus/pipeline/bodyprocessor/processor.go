// Package bodyprocessor implements the pipeline's second stage: validating a
// block's transaction list and committing it as StatusUTXOPendingVerification.
// Its worker/queue/validate/commit flow includes non-fatal-error handling: a
// block that fails a retryable rule, like a bad merkle root or missing
// parents, is left at its current status rather than marked Invalid, so it
// can be resubmitted.
package bodyprocessor

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/logging"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/metrics"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/dependencymanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/blockvalidator"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

var log = logging.Subsystem("BODY")

// Processor runs the body stage of the pipeline.
type Processor struct {
	db database.DataAccessor

	validator *blockvalidator.Validator

	headerStore            model.HeaderStoreReader
	blockStatusStore       model.BlockStatusStore
	blockTransactionsStore model.BlockTransactionsStore
	tipsStore              model.TipsStore

	deps *dependencymanager.Manager

	pendingMu sync.Mutex
	pending   map[externalapi.DomainHash]*pendingBody
}

type pendingBody struct {
	header       *externalapi.DomainBlockHeader
	transactions []*externalapi.DomainTransaction
}

// New constructs a Processor.
func New(
	db database.DataAccessor,
	validator *blockvalidator.Validator,
	headerStore model.HeaderStoreReader,
	blockStatusStore model.BlockStatusStore,
	blockTransactionsStore model.BlockTransactionsStore,
	tipsStore model.TipsStore,
) *Processor {
	return &Processor{
		db:                     db,
		validator:              validator,
		headerStore:            headerStore,
		blockStatusStore:       blockStatusStore,
		blockTransactionsStore: blockTransactionsStore,
		tipsStore:              tipsStore,
		deps:                   dependencymanager.New(),
		pending:                make(map[externalapi.DomainHash]*pendingBody),
	}
}

// isFatal reports whether err should mark a block StatusInvalid. Retryable
// rule violations (a body that hasn't arrived for a still-missing parent, or
// a merkle root mismatch that a resubmission with corrected transactions
// could fix) leave the block's status untouched instead.
func isFatal(err error) bool {
	switch err.(type) {
	case *ruleerrors.ErrMissingParents, *ruleerrors.ErrBadMerkleRoot, *ruleerrors.ErrPrunedBlock:
		return false
	default:
		return true
	}
}

// Submit registers a block body for processing and, if all of its direct
// parents already have their bodies committed, processes it immediately.
// Resubmitting a hash already registered is a no-op.
func (p *Processor) Submit(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader, transactions []*externalapi.DomainTransaction) error {
	status, err := p.blockStatusStore.Get(hash)
	if err != nil {
		return err
	}
	if status == externalapi.StatusInvalid {
		return &ruleerrors.ErrKnownInvalid{}
	}
	if status.HasBlockBody() {
		return nil
	}

	p.pendingMu.Lock()
	if _, alreadyPending := p.pending[*hash]; alreadyPending {
		p.pendingMu.Unlock()
		return nil
	}
	p.pending[*hash] = &pendingBody{header: header, transactions: transactions}
	p.pendingMu.Unlock()

	ready, duplicate, err := p.deps.Register(hash, header.DirectParents(), p.parentHasBody)
	if err != nil {
		return err
	}
	if duplicate || !ready {
		return nil
	}

	return p.process(hash, header, transactions)
}

func (p *Processor) parentHasBody(parent *externalapi.DomainHash) (bool, error) {
	status, err := p.blockStatusStore.Get(parent)
	if err != nil {
		return false, err
	}
	return status.HasBlockBody(), nil
}

// WaitForIdle blocks until every registered body has been processed.
func (p *Processor) WaitForIdle() {
	p.deps.WaitForIdle()
}

func (p *Processor) process(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader, transactions []*externalapi.DomainTransaction) error {
	err := p.validateAndCommit(hash, header, transactions)
	if err != nil && isFatal(err) {
		if markErr := p.blockStatusStore.Stage(hash, externalapi.StatusInvalid); markErr != nil {
			return markErr
		}
	}

	if err == nil {
		p.pendingMu.Lock()
		delete(p.pending, *hash)
		p.pendingMu.Unlock()
		log.WithField("hash", hash.String()).Debug("body accepted")
		metrics.BlocksProcessed.WithLabelValues("body", "accepted").Inc()
		p.releaseDependents(hash)
	} else {
		log.WithError(err).WithField("hash", hash.String()).Warn("body rejected")
		metrics.BlocksProcessed.WithLabelValues("body", "rejected").Inc()
	}
	// A retryable (non-fatal) failure leaves hash registered: its dependents
	// stay blocked until a later Submit succeeds and calls End on its behalf.
	// A fatal failure permanently blocks them the same way, since Invalid can
	// never become a valid parent.

	return err
}

func (p *Processor) releaseDependents(hash *externalapi.DomainHash) {
	for _, dependent := range p.deps.End(hash) {
		p.pendingMu.Lock()
		body, ok := p.pending[*dependent]
		p.pendingMu.Unlock()
		if !ok {
			continue
		}
		_ = p.process(dependent, body.header, body.transactions)
	}
}

func (p *Processor) validateAndCommit(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader, transactions []*externalapi.DomainTransaction) error {
	if err := p.validator.ValidateBodyInIsolation(header, transactions); err != nil {
		return err
	}
	if err := p.validator.ValidateBodyInContext(transactions); err != nil {
		return err
	}

	batch := p.db.NewWriteBatch()

	if err := p.blockTransactionsStore.InsertBatch(batch, hash, transactions); err != nil {
		return err
	}
	if err := p.tipsStore.AddTipBatch(batch, hash, header.DirectParents()); err != nil {
		return err
	}
	if err := p.blockStatusStore.StageBatch(batch, hash, externalapi.StatusUTXOPendingVerification); err != nil {
		return err
	}

	if err := p.db.CommitWriteBatch(batch); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
