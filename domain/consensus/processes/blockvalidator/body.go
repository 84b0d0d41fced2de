package blockvalidator

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

// ValidateBodyInIsolation validates a block's transaction list against
// properties that don't require the rest of the DAG: the Merkle root matches
// the header, mass stays under the configured limit, and every non-coinbase
// transaction belongs to a built-in or native subnetwork (since arbitrary
// custom subnetworks are out of this core's scope).
func (v *Validator) ValidateBodyInIsolation(header *externalapi.DomainBlockHeader, transactions []*externalapi.DomainTransaction) error {
	computedRoot := ComputeHashMerkleRoot(transactions)
	if !computedRoot.Equal(&header.HashMerkleRoot) {
		return &ruleerrors.ErrBadMerkleRoot{Expected: header.HashMerkleRoot, Got: computedRoot}
	}

	if len(transactions) == 0 {
		return &ruleerrors.ErrBadCoinbase{Reason: "block body has no coinbase transaction"}
	}
	coinbase := transactions[0]
	if !coinbase.SubnetworkID.Equal(&externalapi.SubnetworkIDCoinbase) {
		return &ruleerrors.ErrBadCoinbase{Reason: "first transaction is not a coinbase transaction"}
	}

	for _, tx := range transactions[1:] {
		if tx.SubnetworkID.Equal(&externalapi.SubnetworkIDCoinbase) {
			return &ruleerrors.ErrBadTransaction{Reason: "only the first transaction in a block may be a coinbase transaction"}
		}
		if !tx.SubnetworkID.IsBuiltInOrNative() {
			return &ruleerrors.ErrBadTransaction{Reason: "custom subnetworks are not supported by this core"}
		}
	}

	var totalMass uint64
	for _, tx := range transactions {
		totalMass += estimateMass(tx)
	}
	if totalMass > v.cfg.MaxBlockMass {
		return &ruleerrors.ErrBadBlockMass{}
	}

	return nil
}

// ValidateBodyInContext validates a block's transaction list against
// context the rest of the DAG provides. Resolving individual inputs against
// the UTXO set is the UTXO diff manager's job (§6 boundary); this stage only
// catches a block referencing the same output twice within itself, since
// that's a structural defect no amount of valid UTXO state could excuse.
func (v *Validator) ValidateBodyInContext(transactions []*externalapi.DomainTransaction) error {
	seen := make(map[externalapi.DomainOutpoint]bool)
	for _, tx := range transactions {
		for _, input := range tx.Inputs {
			if seen[input.PreviousOutpoint] {
				return &ruleerrors.ErrBadTransaction{Reason: "double spend of the same outpoint within one block"}
			}
			seen[input.PreviousOutpoint] = true
		}
	}
	return nil
}

// estimateMass is a lightweight stand-in for full transaction mass
// accounting (the real calculation is an external collaborator per §6,
// model.BlockMassCalculator); it is used only for the coarse ValidateBodyInIsolation
// budget check, counting each input and output as a fixed weight.
func estimateMass(tx *externalapi.DomainTransaction) uint64 {
	const inputWeight = 100
	const outputWeight = 50
	return uint64(len(tx.Inputs))*inputWeight + uint64(len(tx.Outputs))*outputWeight + uint64(len(tx.Payload))
}
