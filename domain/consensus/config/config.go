// Package config holds the consensus-tunable constants for a network.
package config

import (
	"math/big"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// Config bundles the consensus parameters a Consensus instance is built from.
type Config struct {
	// K is the GHOSTDAG k-cluster bound. Must be <= 255 (see KType).
	K externalapi.KType

	// MergeDepth bounds how deep a merge-set-excluded ancestor may sit before
	// it becomes the merge depth root.
	MergeDepth uint64

	// FinalityDepth bounds how deep along the selected chain the finality
	// point sits.
	FinalityDepth uint64

	// MaxBlockMass is the maximum total transaction mass a block may carry.
	MaxBlockMass uint64

	// TimestampDeviationTolerance bounds how far into the future a block's
	// timestamp may be relative to the network-adjusted time.
	TimestampDeviationTolerance int

	// GenesisHash is the hash of the network's genesis block.
	GenesisHash externalapi.DomainHash

	// GenesisTimeInMilliseconds is the genesis block's declared timestamp.
	GenesisTimeInMilliseconds int64

	// SubsidyGenesisReward is the coinbase subsidy paid out by the genesis block.
	SubsidyGenesisReward uint64

	// NetworkTag identifies the network in genesis coinbase payloads (e.g. "ghostnet").
	NetworkTag string
}

// DefaultMainnetConfig returns sensible mainnet defaults, scaled down where
// this core does not need full mainnet fidelity (e.g. difficulty retargeting
// is out of scope).
func DefaultMainnetConfig() *Config {
	return &Config{
		K:                           18,
		MergeDepth:                  3600,
		FinalityDepth:               86400,
		MaxBlockMass:                500_000,
		TimestampDeviationTolerance: 132,
		GenesisTimeInMilliseconds:   1_600_000_000_000,
		SubsidyGenesisReward:        50 * 100_000_000,
		NetworkTag:                  "ghostnet-mainnet",
	}
}

// BlueWorkFromBits derives the work contributed by a single block from its
// compact PoW target bits, for accumulation into cumulative chain work:
// work = 2^256 / (target + 1).
func BlueWorkFromBits(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(1)
	}
	denominator := new(big.Int).Add(target, big.NewInt(1))
	numerator := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Div(numerator, denominator)
}

// CompactToBig expands a compact "bits" encoding (sign-magnitude, base 256)
// into a big.Int, the standard difficulty-bits representation used by
// Bitcoin-derived proof-of-work chains. difficultymanager's proof-of-work
// check reuses this rather than re-deriving its own expansion.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := uint(compact >> 24)

	var result *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		result = big.NewInt(int64(mantissa))
	} else {
		result = big.NewInt(int64(mantissa))
		result.Lsh(result, 8*(exponent-3))
	}

	if compact&0x00800000 != 0 {
		result = result.Neg(result)
	}
	return result
}
