// Package consensus assembles the stores, processes and pipeline stages into
// a single runnable consensus instance.
package consensus

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/blockheaderstore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/blockstatusstore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/blocktransactionsstore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/depthstore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/tipsstore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/hashserialization"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/bodyprocessor"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/headerprocessor"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/virtualprocessor"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/blockvalidator"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/coinbasemanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/dagtopologymanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/depthmanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/ghostdagmanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/pastmediantimemanager"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/reachabilitymanager"
)

// Consensus is the fully wired consensus core: stores, processes, and the
// three-stage processing pipeline, ready to accept blocks via SubmitBlock.
type Consensus struct {
	cfg *config.Config
	db  database.DataAccessor

	headerStore       model.HeaderStore
	blockStatusStore  model.BlockStatusStore
	ghostdagDataStore model.GHOSTDAGDataStore

	coinbaseManager *coinbasemanager.Manager
	pipeline        *pipeline.Pipeline
}

// Deps bundles the external collaborators (§6 boundary) a Consensus needs
// but does not implement itself: proof-of-work/difficulty retargeting and
// UTXO-set diff verification are both explicitly out of this core's scope.
type Deps struct {
	DifficultyManager model.DifficultyManager
	UTXODiffManager   model.UTXODiffManager
}

// New builds a Consensus over db using cfg, wiring every store and process
// this core depends on, and processes the genesis block if it isn't already
// committed.
func New(cfg *config.Config, db database.DataAccessor, deps Deps, genesisHeader *externalapi.DomainBlockHeader) (*Consensus, error) {
	headerStore := blockheaderstore.New(db, blockheaderstore.DefaultCacheSize)
	blockStatusStore := blockstatusstore.New(db, blockstatusstore.DefaultCacheSize)
	ghostdagDataStore := ghostdagdatastore.New(db, ghostdagdatastore.DefaultCacheSize)
	blockTransactionsStore := blocktransactionsstore.New(db, blocktransactionsstore.DefaultCacheSize)
	tipsStore := tipsstore.New(db)
	depthStore := depthstore.New(db, depthstore.DefaultCacheSize)
	reachabilityStore := reachabilitydatastore.New(db, reachabilitydatastore.DefaultCacheSize)

	reachabilityManager := reachabilitymanager.New(reachabilityStore)
	dagTopologyManager := dagtopologymanager.New(headerStore, reachabilityManager)
	ghostdagManager := ghostdagmanager.New(cfg.K, dagTopologyManager, reachabilityManager, ghostdagDataStore, headerStore)
	pastMedianTimeManager := pastmediantimemanager.New(ghostdagDataStore, headerStore)
	coinbaseManager := coinbasemanager.New(cfg)
	depthManager := depthmanager.New(ghostdagDataStore, cfg.MergeDepth, cfg.FinalityDepth)

	validator := blockvalidator.New(cfg, headerStore, pastMedianTimeManager.PastMedianTime, deps.DifficultyManager)

	headerStage := headerprocessor.New(db, validator, ghostdagManager, reachabilityManager, headerStore, ghostdagDataStore, blockStatusStore, depthStore, depthManager)
	bodyStage := bodyprocessor.New(db, validator, headerStore, blockStatusStore, blockTransactionsStore, tipsStore)
	virtualStage := virtualprocessor.New(blockStatusStore, ghostdagDataStore, deps.UTXODiffManager)

	consensus := &Consensus{
		cfg:               cfg,
		db:                db,
		headerStore:       headerStore,
		blockStatusStore:  blockStatusStore,
		ghostdagDataStore: ghostdagDataStore,
		coinbaseManager:   coinbaseManager,
		pipeline:          pipeline.New(headerStage, bodyStage, virtualStage, 4),
	}

	if err := consensus.ensureGenesis(genesisHeader, reachabilityManager, depthStore, depthManager, bodyStage, virtualStage); err != nil {
		return nil, err
	}

	return consensus, nil
}

func (c *Consensus) ensureGenesis(
	genesisHeader *externalapi.DomainBlockHeader,
	reachabilityManager model.ReachabilityManager,
	depthStore model.DepthStore,
	depthManager *depthmanager.Manager,
	bodyStage *bodyprocessor.Processor,
	virtualStage *virtualprocessor.Processor,
) error {
	genesisHash := hashserialization.HeaderHash(genesisHeader)

	exists, err := c.blockStatusStore.Exists(&genesisHash)
	if err != nil {
		return err
	}
	if !exists {
		if err := c.headerStore.Insert(&genesisHash, genesisHeader); err != nil {
			return err
		}
		if err := c.ghostdagDataStore.Insert(&genesisHash, externalapi.NewBlockGHOSTDAGData(0, genesisHeader.BlueWork, nil, nil, nil, nil)); err != nil {
			return err
		}
		if err := c.blockStatusStore.Stage(&genesisHash, externalapi.StatusHeaderOnly); err != nil {
			return err
		}
		if err := reachabilityManager.InitGenesis(&genesisHash); err != nil {
			return err
		}
		depthInfo, err := depthManager.ComputeDepthInfo(&genesisHash)
		if err != nil {
			return err
		}
		if err := depthStore.Insert(&genesisHash, depthInfo); err != nil {
			return err
		}
	}

	if err := bodyStage.ProcessGenesisIfNeeded(&genesisHash, c.coinbaseManager); err != nil {
		return err
	}
	return virtualStage.Submit(&genesisHash, nil)
}

// SubmitBlock enqueues a block for asynchronous processing through the
// header, body and virtual pipeline stages.
func (c *Consensus) SubmitBlock(block *externalapi.DomainBlock) {
	c.pipeline.Submit(block.Header, block.Transactions)
}

// BlockStatus returns the current validation status of hash.
func (c *Consensus) BlockStatus(hash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	return c.blockStatusStore.Get(hash)
}

// Shutdown drains the pipeline and stops its worker pool.
func (c *Consensus) Shutdown() {
	c.pipeline.Shutdown()
}
