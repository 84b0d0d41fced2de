package difficultymanager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/ruleerrors"
)

// fixedBits' target is wider than the entire 256-bit hash space, so
// CheckProofOfWork accepts any header's hash regardless of content.
const fixedBits = 0xff7fffff

func TestRequiredDifficultyIgnoresParents(t *testing.T) {
	m := New(fixedBits)

	bits, err := m.RequiredDifficulty(nil)
	require.NoError(t, err)
	require.Equal(t, uint32(fixedBits), bits)

	parent := &externalapi.DomainHash{1}
	bits, err = m.RequiredDifficulty([]*externalapi.DomainHash{parent})
	require.NoError(t, err)
	require.Equal(t, uint32(fixedBits), bits)
}

func TestCheckProofOfWorkAcceptsAnyHashUnderAWideTarget(t *testing.T) {
	m := New(fixedBits)

	header := &externalapi.DomainBlockHeader{
		HashMerkleRoot: externalapi.DomainHash{7},
		Bits:           fixedBits,
	}

	require.NoError(t, m.CheckProofOfWork(header))
}

func TestCheckProofOfWorkRejectsAZeroTarget(t *testing.T) {
	m := New(0)

	header := &externalapi.DomainBlockHeader{
		HashMerkleRoot: externalapi.DomainHash{7},
		Bits:           0,
	}

	err := m.CheckProofOfWork(header)
	require.Error(t, err)
	require.IsType(t, &ruleerrors.ErrBadPow{}, err)
}
