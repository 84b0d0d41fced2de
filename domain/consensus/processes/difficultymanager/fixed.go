// Package difficultymanager provides a minimal model.DifficultyManager. Real
// difficulty retargeting is an external collaborator out of this core's
// scope; this type only performs the one check that belongs to the core itself --
// that a header's hash actually meets its declared target -- and otherwise
// hands back a fixed target, standing in for whatever retargeting algorithm
// a full node would supply.
package difficultymanager

import (
	"math/big"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/hashserialization"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

// FixedManager always requires the same compact-bits target; it never
// retargets based on DAA score or recent block timestamps.
type FixedManager struct {
	bits uint32
}

// New constructs a FixedManager requiring the given compact-bits target for
// every block.
func New(bits uint32) *FixedManager {
	return &FixedManager{bits: bits}
}

// RequiredDifficulty returns the manager's fixed target regardless of parents.
func (m *FixedManager) RequiredDifficulty(parents []*externalapi.DomainHash) (uint32, error) {
	return m.bits, nil
}

// CheckProofOfWork reports whether header's hash, read as a big-endian
// integer, is numerically at or below the target its declared bits encode.
func (m *FixedManager) CheckProofOfWork(header *externalapi.DomainBlockHeader) error {
	rawTarget := config.CompactToBig(header.Bits)
	if rawTarget.Sign() <= 0 {
		return &ruleerrors.ErrBadPow{}
	}

	hash := hashserialization.HeaderHash(header)
	hashInt := new(big.Int).SetBytes(hash[:])

	if hashInt.Cmp(rawTarget) > 0 {
		return &ruleerrors.ErrBadPow{}
	}
	return nil
}
