// Package virtualprocessor implements the pipeline's third stage: verifying
// a block's UTXO transition and settling it at StatusUTXOValid or
// StatusDisqualifiedFromChain. UTXO diff computation itself is out of this
// core's scope and delegated to model.UTXODiffManager; this stage's own job
// is purely the same dependency-ordered scheduling the header and body
// stages use, plus the final status write.
package virtualprocessor

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/logging"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/metrics"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/dependencymanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/ghostdagmanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

var log = logging.Subsystem("VIRT")

// Processor runs the virtual/UTXO stage of the pipeline.
type Processor struct {
	blockStatusStore  model.BlockStatusStore
	ghostdagDataStore model.GHOSTDAGDataStoreReader
	utxoDiffManager   model.UTXODiffManager

	deps *dependencymanager.Manager
}

// New constructs a Processor.
func New(blockStatusStore model.BlockStatusStore, ghostdagDataStore model.GHOSTDAGDataStoreReader, utxoDiffManager model.UTXODiffManager) *Processor {
	return &Processor{
		blockStatusStore:  blockStatusStore,
		ghostdagDataStore: ghostdagDataStore,
		utxoDiffManager:   utxoDiffManager,
		deps:              dependencymanager.New(),
	}
}

// Submit registers hash for UTXO verification and, if all of its direct
// parents have already settled at StatusUTXOValid or
// StatusDisqualifiedFromChain, verifies it immediately. Unlike the header and
// body stages, this stage needs no payload beyond hash itself to reprocess a
// released dependent, so there is no separate pending map: process releases
// dependents by recursing directly on the hashes dependencymanager hands back.
func (p *Processor) Submit(hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	status, err := p.blockStatusStore.Get(hash)
	if err != nil {
		return err
	}
	if status == externalapi.StatusInvalid {
		return &ruleerrors.ErrKnownInvalid{}
	}
	if status == externalapi.StatusUTXOValid || status == externalapi.StatusDisqualifiedFromChain {
		return nil
	}

	ready, duplicate, err := p.deps.Register(hash, parents, p.parentSettled)
	if err != nil {
		return err
	}
	if duplicate {
		return nil
	}
	metrics.PipelineInFlight.WithLabelValues("virtual").Inc()
	if !ready {
		log.WithField("hash", hash.String()).Debug("UTXO transition waiting on parents")
		return nil
	}

	return p.process(hash)
}

func (p *Processor) parentSettled(parent *externalapi.DomainHash) (bool, error) {
	status, err := p.blockStatusStore.Get(parent)
	if err != nil {
		return false, err
	}
	return status == externalapi.StatusUTXOValid || status == externalapi.StatusDisqualifiedFromChain, nil
}

// WaitForIdle blocks until every registered block has been verified.
func (p *Processor) WaitForIdle() {
	p.deps.WaitForIdle()
}

func (p *Processor) process(hash *externalapi.DomainHash) error {
	defer metrics.PipelineInFlight.WithLabelValues("virtual").Dec()

	ghostdagData, err := p.ghostdagDataStore.Get(hash)
	if err != nil {
		return err
	}
	mergeSetOrder, err := ghostdagmanager.ConsensusOrderedMergeSet(p.ghostdagDataStore, ghostdagData)
	if err != nil {
		return err
	}

	finalStatus, err := p.utxoDiffManager.VerifyAndApplyUTXOTransition(hash, mergeSetOrder)
	if err != nil {
		if markErr := p.blockStatusStore.Stage(hash, externalapi.StatusInvalid); markErr != nil {
			return markErr
		}
		log.WithError(err).WithField("hash", hash.String()).Warn("UTXO transition rejected")
		metrics.BlocksProcessed.WithLabelValues("virtual", "rejected").Inc()
		p.releaseDependents(hash)
		return err
	}

	if err := p.blockStatusStore.Stage(hash, finalStatus); err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{"hash": hash.String(), "status": finalStatus.String()}).Debug("UTXO transition settled")
	metrics.BlocksProcessed.WithLabelValues("virtual", "accepted").Inc()

	p.releaseDependents(hash)

	return nil
}

// releaseDependents re-verifies any block that was only waiting on hash to
// settle. A dependent that itself fails is reported by discarding its error
// here: callers learn about it when they query its status, mirroring how the
// header and body stages surface a dependent's rejection.
func (p *Processor) releaseDependents(hash *externalapi.DomainHash) {
	for _, dependent := range p.deps.End(hash) {
		_ = p.process(dependent)
	}
}
