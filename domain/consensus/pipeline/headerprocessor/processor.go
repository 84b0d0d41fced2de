// Package headerprocessor implements the pipeline's first stage: validating
// a block header in isolation and in context, running GHOSTDAG over it, and
// committing it as StatusHeaderOnly.
package headerprocessor

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/hashserialization"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/logging"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/metrics"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/dependencymanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/blockvalidator"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/depthmanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

var log = logging.Subsystem("HDRP")

// Processor runs the header stage of the pipeline.
type Processor struct {
	db database.DataAccessor

	validator           *blockvalidator.Validator
	ghostdagManager     model.GHOSTDAGManager
	reachabilityManager model.ReachabilityManager

	headerStore       model.HeaderStore
	ghostdagDataStore model.GHOSTDAGDataStore
	blockStatusStore  model.BlockStatusStore
	depthStore        model.DepthStore
	depthManager      *depthmanager.Manager

	deps *dependencymanager.Manager

	pendingMu sync.Mutex
	pending   map[externalapi.DomainHash]*externalapi.DomainBlockHeader
}

// New constructs a Processor.
func New(
	db database.DataAccessor,
	validator *blockvalidator.Validator,
	ghostdagManager model.GHOSTDAGManager,
	reachabilityManager model.ReachabilityManager,
	headerStore model.HeaderStore,
	ghostdagDataStore model.GHOSTDAGDataStore,
	blockStatusStore model.BlockStatusStore,
	depthStore model.DepthStore,
	depthManager *depthmanager.Manager,
) *Processor {
	return &Processor{
		db:                  db,
		validator:           validator,
		ghostdagManager:     ghostdagManager,
		reachabilityManager: reachabilityManager,
		headerStore:         headerStore,
		ghostdagDataStore:   ghostdagDataStore,
		blockStatusStore:    blockStatusStore,
		depthStore:          depthStore,
		depthManager:        depthManager,
		deps:                dependencymanager.New(),
		pending:             make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader),
	}
}

// Submit registers header for processing and, if all of its direct parents
// have already passed the header stage, processes it immediately. It returns
// the hash the header was accepted under. Resubmitting a hash already
// registered is a no-op (idempotent).
func (p *Processor) Submit(header *externalapi.DomainBlockHeader) (*externalapi.DomainHash, error) {
	hash := hashserialization.HeaderHash(header)

	exists, err := p.blockStatusStore.Exists(&hash)
	if err != nil {
		return nil, err
	}
	if exists {
		status, err := p.blockStatusStore.Get(&hash)
		if err != nil {
			return nil, err
		}
		if status == externalapi.StatusInvalid {
			return nil, &ruleerrors.ErrKnownInvalid{}
		}
		return &hash, nil
	}

	p.pendingMu.Lock()
	if _, alreadyPending := p.pending[hash]; alreadyPending {
		p.pendingMu.Unlock()
		return &hash, nil
	}
	p.pending[hash] = header
	p.pendingMu.Unlock()

	ready, duplicate, err := p.deps.Register(&hash, header.DirectParents(), p.headerStore.HasHeader)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return &hash, nil
	}
	metrics.PipelineInFlight.WithLabelValues("header").Inc()
	if !ready {
		log.WithField("hash", hash.String()).Debug("header waiting on parents")
		return &hash, nil
	}

	if err := p.process(&hash, header); err != nil {
		return nil, err
	}
	return &hash, nil
}

// WaitForIdle blocks until every registered header has been processed.
func (p *Processor) WaitForIdle() {
	p.deps.WaitForIdle()
}

func (p *Processor) process(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	err := p.validateAndCommit(hash, header)

	p.pendingMu.Lock()
	delete(p.pending, *hash)
	p.pendingMu.Unlock()

	metrics.PipelineInFlight.WithLabelValues("header").Dec()
	if err != nil {
		log.WithError(err).WithField("hash", hash.String()).Warn("header rejected")
		metrics.BlocksProcessed.WithLabelValues("header", "rejected").Inc()
	} else {
		log.WithField("hash", hash.String()).Debug("header accepted")
		metrics.BlocksProcessed.WithLabelValues("header", "accepted").Inc()
	}

	p.releaseDependents(hash)
	return err
}

func (p *Processor) validateAndCommit(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	if err := p.validator.ValidateHeaderInIsolation(header); err != nil {
		return err
	}
	if err := p.validator.ValidateHeaderInContext(hash, header); err != nil {
		return err
	}

	ghostdagData, err := p.ghostdagManager.GHOSTDAG(header.DirectParents())
	if err != nil {
		return err
	}

	batch := p.db.NewWriteBatch()

	if err := p.headerStore.Insert(hash, header); err != nil {
		return err
	}
	if err := p.ghostdagDataStore.InsertBatch(batch, hash, ghostdagData); err != nil {
		return err
	}
	if err := p.blockStatusStore.StageBatch(batch, hash, externalapi.StatusHeaderOnly); err != nil {
		return err
	}

	if err := p.db.CommitWriteBatch(batch); err != nil {
		return errors.WithStack(err)
	}

	if err := p.reachabilityManager.AddBlock(hash, ghostdagData.SelectedParent, header.DirectParents()); err != nil {
		return err
	}

	depthInfo, err := p.depthManager.ComputeDepthInfo(hash)
	if err != nil {
		return err
	}
	if err := p.depthStore.Insert(hash, depthInfo); err != nil {
		return err
	}

	return nil
}

// releaseDependents re-processes any header that was only waiting on hash to
// finish this stage. A child that fails is reported by discarding its error:
// callers learn about it when they themselves query its status, rather than
// propagating a dependent's failure to its sibling.
func (p *Processor) releaseDependents(hash *externalapi.DomainHash) {
	for _, dependent := range p.deps.End(hash) {
		p.pendingMu.Lock()
		dependentHeader, ok := p.pending[*dependent]
		p.pendingMu.Unlock()
		if !ok {
			continue
		}
		_ = p.process(dependent, dependentHeader)
	}
}
