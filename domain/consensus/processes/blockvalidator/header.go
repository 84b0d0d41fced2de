// Package blockvalidator implements the rule checks the header and body
// pipeline stages run before accepting a block: structural validation in
// isolation, followed by parent-lookup and context-dependent checks.
package blockvalidator

import (
	"crypto/sha256"
	"time"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

// Validator runs header and body rule checks.
type Validator struct {
	cfg               *config.Config
	headerStore       model.HeaderStoreReader
	pastMedianTime    func(hash *externalapi.DomainHash) (int64, error)
	difficultyManager model.DifficultyManager
}

// New constructs a Validator.
func New(
	cfg *config.Config,
	headerStore model.HeaderStoreReader,
	pastMedianTime func(hash *externalapi.DomainHash) (int64, error),
	difficultyManager model.DifficultyManager,
) *Validator {
	return &Validator{
		cfg:               cfg,
		headerStore:       headerStore,
		pastMedianTime:    pastMedianTime,
		difficultyManager: difficultyManager,
	}
}

// ValidateHeaderInIsolation validates everything about header that doesn't
// require the rest of the DAG: proof of work and internal consistency.
func (v *Validator) ValidateHeaderInIsolation(header *externalapi.DomainBlockHeader) error {
	if err := v.difficultyManager.CheckProofOfWork(header); err != nil {
		return err
	}
	if len(header.DirectParents()) == 0 {
		return &ruleerrors.ErrBadParents{Reason: "header has no direct parents"}
	}
	return nil
}

// ValidateHeaderInContext validates header against the rest of the already-
// accepted DAG: that its direct parents exist and that its timestamp isn't
// too far ahead of the network-adjusted past median time.
func (v *Validator) ValidateHeaderInContext(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	var missing []*externalapi.DomainHash
	for _, parent := range header.DirectParents() {
		hasHeader, err := v.headerStore.HasHeader(parent)
		if err != nil {
			return err
		}
		if !hasHeader {
			missing = append(missing, parent)
		}
	}
	if len(missing) > 0 {
		return &ruleerrors.ErrMissingParents{MissingParentHashes: missing}
	}

	medianTime, err := v.pastMedianTime(header.DirectParents()[0])
	if err != nil {
		return err
	}
	toleranceMs := int64(v.cfg.TimestampDeviationTolerance) * int64(time.Second/time.Millisecond)
	if header.TimeInMilliseconds > medianTime+toleranceMs {
		return &ruleerrors.ErrBadTimestamp{Reason: "block timestamp is too far in the future"}
	}

	return nil
}

// ComputeHashMerkleRoot derives the Merkle root over a transaction list's IDs.
// A binary Merkle tree over double-SHA256 transaction IDs is the standard
// scheme this kind of UTXO chain uses; no ecosystem library expresses this
// more tersely than the ~20 lines of stdlib crypto/sha256.
func ComputeHashMerkleRoot(transactions []*externalapi.DomainTransaction) externalapi.DomainHash {
	if len(transactions) == 0 {
		return externalapi.DomainHash{}
	}

	level := make([][]byte, len(transactions))
	for i, tx := range transactions {
		level[i] = transactionID(tx)
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, len(level)/2)
		for i := range next {
			h := sha256.Sum256(append(append([]byte{}, level[2*i]...), level[2*i+1]...))
			h2 := sha256.Sum256(h[:])
			next[i] = h2[:]
		}
		level = next
	}

	var root externalapi.DomainHash
	copy(root[:], level[0])
	return root
}

func transactionID(tx *externalapi.DomainTransaction) []byte {
	h := sha256.New()
	for _, input := range tx.Inputs {
		h.Write(input.PreviousOutpoint.TransactionID[:])
	}
	for _, output := range tx.Outputs {
		h.Write(output.ScriptPublicKey.Script)
	}
	h.Write(tx.Payload)
	digest := h.Sum(nil)
	digest2 := sha256.Sum256(digest)
	return digest2[:]
}
