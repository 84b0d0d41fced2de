// Package model declares the interfaces that tie the consensus core's stores,
// processes, and pipeline stages together, independent of their concrete
// (DB-backed or in-memory) implementations, so processes depend on
// store/service interfaces rather than concrete types.
package model

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// GHOSTDAGDataStoreReader is the read side of the GHOSTDAG data store.
type GHOSTDAGDataStoreReader interface {
	Get(hash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error)
	GetCompact(hash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error)
	Has(hash *externalapi.DomainHash) (bool, error)
}

// GHOSTDAGDataStore is the full GHOSTDAG data store, insert is append-only.
type GHOSTDAGDataStore interface {
	GHOSTDAGDataStoreReader
	Insert(hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) error
	InsertBatch(batch database.WriteBatch, hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) error
}

// BlockStatusStoreReader is the read side of the block status store.
type BlockStatusStoreReader interface {
	Get(hash *externalapi.DomainHash) (externalapi.BlockStatus, error)
	Exists(hash *externalapi.DomainHash) (bool, error)
}

// BlockStatusStore is the block status state machine store.
type BlockStatusStore interface {
	BlockStatusStoreReader
	Stage(hash *externalapi.DomainHash, status externalapi.BlockStatus) error
	StageBatch(batch database.WriteBatch, hash *externalapi.DomainHash, status externalapi.BlockStatus) error
}

// HeaderStoreReader is the read side of the header store.
type HeaderStoreReader interface {
	Header(hash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	HasHeader(hash *externalapi.DomainHash) (bool, error)
}

// HeaderStore is the full header store, insert is append-only.
type HeaderStore interface {
	HeaderStoreReader
	Insert(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error
}

// BlockTransactionsStoreReader is the read side of the body store.
type BlockTransactionsStoreReader interface {
	Get(hash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error)
	Has(hash *externalapi.DomainHash) (bool, error)
}

// BlockTransactionsStore is the body store, insert is append-only.
type BlockTransactionsStore interface {
	BlockTransactionsStoreReader
	Insert(hash *externalapi.DomainHash, transactions []*externalapi.DomainTransaction) error
	InsertBatch(batch database.WriteBatch, hash *externalapi.DomainHash, transactions []*externalapi.DomainTransaction) error
}

// TipsStoreReader is the read side of the tips store.
type TipsStoreReader interface {
	Tips() ([]*externalapi.DomainHash, error)
}

// TipsStore maintains the set of body-accepted tips.
type TipsStore interface {
	TipsStoreReader
	AddTip(hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error
	AddTipBatch(batch database.WriteBatch, hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error
	Init(tips []*externalapi.DomainHash) error
}

// DepthStoreReader is the read side of the depth store.
type DepthStoreReader interface {
	Get(hash *externalapi.DomainHash) (*externalapi.BlockDepthInfo, error)
}

// DepthStore is the merge-depth/finality-point store, insert is append-only.
type DepthStore interface {
	DepthStoreReader
	Insert(hash *externalapi.DomainHash, info *externalapi.BlockDepthInfo) error
}

// DAGTopologyManager answers direct-parent and ancestor queries without
// exposing how parents or reachability are stored. GHOSTDAG and the pipeline
// both depend only on this interface.
type DAGTopologyManager interface {
	Parents(hash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	IsParentOf(parent, hash *externalapi.DomainHash) (bool, error)
	IsAncestorOf(ancestor, descendant *externalapi.DomainHash) (bool, error)
}

// ReachabilityManager answers ancestor-in-selected-parent-tree queries via
// interval labels, and maintains those labels as blocks are added.
type ReachabilityManager interface {
	IsDAGAncestorOf(anchor, queried *externalapi.DomainHash) (bool, error)
	IsChainAncestorOf(anchor, queried *externalapi.DomainHash) (bool, error)

	// AddBlock registers hash as a new tree-child of selectedParent, and
	// updates the future covering set of every other entry in parents (the
	// block's non-selected direct parents) so that later IsDAGAncestorOf
	// queries crossing into a different subtree still resolve correctly.
	AddBlock(hash *externalapi.DomainHash, selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) error
	ForwardChainIterator(from, to *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
}

// GHOSTDAGManager computes ordering data for a new block given its direct parents.
type GHOSTDAGManager interface {
	GHOSTDAG(parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error)
}

// DifficultyManager is an external collaborator (§6): proof-of-work and DAA
// score retargeting live outside the core; this interface is the narrow
// boundary the header stage calls through.
type DifficultyManager interface {
	RequiredDifficulty(parents []*externalapi.DomainHash) (uint32, error)
	CheckProofOfWork(header *externalapi.DomainBlockHeader) error
}

// UTXODiffManager is an external collaborator (§6): UTXO-set diff machinery
// is explicitly out of scope; the virtual/UTXO stage only needs this narrow
// boundary to apply and query diffs. mergeSetOrder is the block's consensus
// order (selected parent, then the rest of its merge set ascending by blue
// work, see processes/ghostdagmanager.ConsensusOrderedMergeSet) -- the order
// in which a real implementation would replay mergeset transactions against
// the UTXO set.
type UTXODiffManager interface {
	VerifyAndApplyUTXOTransition(hash *externalapi.DomainHash, mergeSetOrder []*externalapi.DomainHash) (externalapi.BlockStatus, error)
}

// BlockMassCalculator is an external collaborator (§6): transaction mass
// accounting internals are out of scope.
type BlockMassCalculator interface {
	BlockMass(block *externalapi.DomainBlock) (uint64, error)
}
