package ghostdagmanager

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// These fixtures build a seven-block merge-set scenario: selected parent SP, blues {B1@2, B2@7, B3@11}, reds {R1@4, R2@9,
// R3@11}, with R3's hash greater than B3's so the two blue-work-11 entries
// tie-break on hash.
func orderingFixture() (store *fakeGhostdagDataStore, data *externalapi.BlockGHOSTDAGData, sp, b1, b2, b3, r1, r2, r3 *externalapi.DomainHash) {
	sp = &externalapi.DomainHash{0}
	b1 = &externalapi.DomainHash{1}
	b2 = &externalapi.DomainHash{2}
	b3 = &externalapi.DomainHash{10}
	r1 = &externalapi.DomainHash{3}
	r2 = &externalapi.DomainHash{4}
	r3 = &externalapi.DomainHash{11}

	store = &fakeGhostdagDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	work := func(w int64) *externalapi.BlockGHOSTDAGData {
		return externalapi.NewBlockGHOSTDAGData(0, big.NewInt(w), nil, nil, nil, nil)
	}
	store.data[*sp] = work(1)
	store.data[*b1] = work(2)
	store.data[*b2] = work(7)
	store.data[*b3] = work(11)
	store.data[*r1] = work(4)
	store.data[*r2] = work(9)
	store.data[*r3] = work(11)

	data = externalapi.NewBlockGHOSTDAGData(
		0, big.NewInt(0), sp,
		[]*externalapi.DomainHash{sp, b1, b2, b3},
		[]*externalapi.DomainHash{r1, r2, r3},
		nil,
	)
	return store, data, sp, b1, b2, b3, r1, r2, r3
}

func TestAscendingMergeSetWithoutSelectedParent(t *testing.T) {
	store, data, _, b1, b2, b3, r1, r2, r3 := orderingFixture()

	ordered, err := AscendingMergeSetWithoutSelectedParent(store, data)
	require.NoError(t, err)
	require.Equal(t, []*externalapi.DomainHash{b1, r1, b2, r2, b3, r3}, ordered)
}

func TestDescendingMergeSetWithoutSelectedParent(t *testing.T) {
	store, data, _, b1, b2, b3, r1, r2, r3 := orderingFixture()

	ordered, err := DescendingMergeSetWithoutSelectedParent(store, data)
	require.NoError(t, err)
	require.Equal(t, []*externalapi.DomainHash{r3, b3, r2, b2, r1, b1}, ordered)
}

func TestUnorderedMergeSetWithoutSelectedParent(t *testing.T) {
	_, data, _, b1, b2, b3, r1, r2, r3 := orderingFixture()

	unordered := UnorderedMergeSetWithoutSelectedParent(data)
	require.Equal(t, []*externalapi.DomainHash{b1, b2, b3, r1, r2, r3}, unordered)
}

func TestConsensusOrderedMergeSet(t *testing.T) {
	store, data, sp, b1, b2, b3, r1, r2, r3 := orderingFixture()

	ordered, err := ConsensusOrderedMergeSet(store, data)
	require.NoError(t, err)
	require.Equal(t, []*externalapi.DomainHash{sp, b1, r1, b2, r2, b3, r3}, ordered)
}

func TestConsensusOrderedMergeSetAtGenesis(t *testing.T) {
	store := &fakeGhostdagDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	genesis := externalapi.NewBlockGHOSTDAGData(0, big.NewInt(0), nil, nil, nil, nil)

	ordered, err := ConsensusOrderedMergeSet(store, genesis)
	require.NoError(t, err)
	require.Empty(t, ordered)
}
