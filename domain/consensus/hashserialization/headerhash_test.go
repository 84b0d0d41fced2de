package hashserialization

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

func TestHeaderHashIsDeterministic(t *testing.T) {
	header := &externalapi.DomainBlockHeader{
		Version:        1,
		ParentsByLevel: [][]*externalapi.DomainHash{{&externalapi.DomainHash{1}}},
		HashMerkleRoot: externalapi.DomainHash{2},
		Bits:           0x207fffff,
		Nonce:          7,
	}

	require.Equal(t, HeaderHash(header), HeaderHash(header))
}

func TestHeaderHashChangesWithNonce(t *testing.T) {
	base := &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{{&externalapi.DomainHash{1}}},
		HashMerkleRoot: externalapi.DomainHash{2},
		Bits:           0x207fffff,
		Nonce:          1,
	}
	other := *base
	other.Nonce = 2

	h1 := HeaderHash(base)
	h2 := HeaderHash(&other)
	require.False(t, h1.Equal(&h2))
}

func TestHeaderHashIgnoresFieldsNotCommittedToByMining(t *testing.T) {
	// BlueWork, BlueScore, DAAScore and PruningPoint are derived from DAG
	// state discovered after the header is mined, so they must not affect
	// the header's own identity hash.
	base := &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{{&externalapi.DomainHash{1}}},
		HashMerkleRoot: externalapi.DomainHash{2},
		Bits:           0x207fffff,
		Nonce:          1,
	}
	enriched := *base
	enriched.BlueScore = 100
	enriched.BlueWork = big.NewInt(300)
	enriched.DAAScore = 200
	enriched.PruningPoint = externalapi.DomainHash{9}

	h1 := HeaderHash(base)
	h2 := HeaderHash(&enriched)
	require.True(t, h1.Equal(&h2))
}
