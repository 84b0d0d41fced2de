package externalapi

import "math/big"

// DomainBlockHeader is the header of a DomainBlock, immutable once accepted.
type DomainBlockHeader struct {
	Version int32

	// ParentsByLevel holds, for each DAG pruning level, the set of parent
	// hashes at that level. ParentsByLevel[0] are the block's direct parents.
	ParentsByLevel [][]*DomainHash

	HashMerkleRoot       DomainHash
	AcceptedIDMerkleRoot DomainHash
	UTXOCommitment       DomainHash

	TimeInMilliseconds int64
	Bits               uint32
	Nonce              uint64
	DAAScore           uint64

	// BlueWork is the cumulative proof-of-work of all blue ancestors. A wide,
	// arbitrary-precision unsigned integer is required since blue work
	// accumulates over the lifetime of the DAG; math/big.Int is the standard
	// library type a DAG-based consensus engine needs for cumulative work.
	BlueWork *big.Int

	BlueScore uint64

	PruningPoint DomainHash
}

// DirectParents returns the header's level-0 parents.
func (header *DomainBlockHeader) DirectParents() []*DomainHash {
	if len(header.ParentsByLevel) == 0 {
		return nil
	}
	return header.ParentsByLevel[0]
}

// Clone returns a deep copy of the header.
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	parentsByLevel := make([][]*DomainHash, len(header.ParentsByLevel))
	for i, level := range header.ParentsByLevel {
		parentsByLevel[i] = make([]*DomainHash, len(level))
		copy(parentsByLevel[i], level)
	}
	return &DomainBlockHeader{
		Version:              header.Version,
		ParentsByLevel:       parentsByLevel,
		HashMerkleRoot:       header.HashMerkleRoot,
		AcceptedIDMerkleRoot: header.AcceptedIDMerkleRoot,
		UTXOCommitment:       header.UTXOCommitment,
		TimeInMilliseconds:   header.TimeInMilliseconds,
		Bits:                 header.Bits,
		Nonce:                header.Nonce,
		DAAScore:             header.DAAScore,
		BlueWork:             new(big.Int).Set(header.BlueWork),
		BlueScore:            header.BlueScore,
		PruningPoint:         header.PruningPoint,
	}
}

// DomainOutpoint is a reference to a specific output of a specific transaction.
type DomainOutpoint struct {
	TransactionID DomainHash
	Index         uint32
}

// DomainTransactionInput is an input of a DomainTransaction.
type DomainTransactionInput struct {
	PreviousOutpoint DomainOutpoint
	SignatureScript  []byte
	Sequence         uint64
	UTXOEntry        *UTXOEntry
}

// DomainTransactionOutput is an output of a DomainTransaction.
type DomainTransactionOutput struct {
	Value           uint64
	ScriptPublicKey *ScriptPublicKey
}

// ScriptPublicKey is a (versioned) output locking script.
type ScriptPublicKey struct {
	Script  []byte
	Version uint16
}

// UTXOEntry is the confirmed state of a single UTXO. The internals of UTXO-set
// diffing and commitment bookkeeping are an external collaborator (see §6); this
// type is the narrow shape the pipeline passes across that boundary.
type UTXOEntry struct {
	Amount          uint64
	ScriptPublicKey *ScriptPublicKey
	BlockBlueScore  uint64
	IsCoinbase      bool
}

// DomainTransaction is a transaction as carried inside a DomainBlock.
type DomainTransaction struct {
	Version      int32
	Inputs       []*DomainTransactionInput
	Outputs      []*DomainTransactionOutput
	LockTime     uint64
	SubnetworkID DomainSubnetworkID
	Gas          uint64
	Payload      []byte
}

// DomainBlock is a header plus an ordered transaction list.
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
}

// Clone returns a deep copy of the block.
func (block *DomainBlock) Clone() *DomainBlock {
	clone := &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: make([]*DomainTransaction, len(block.Transactions)),
	}
	copy(clone.Transactions, block.Transactions)
	return clone
}

// DomainCoinbaseData is the miner-controlled portion of a coinbase transaction.
type DomainCoinbaseData struct {
	ScriptPublicKey *ScriptPublicKey
	ExtraData       []byte
}
