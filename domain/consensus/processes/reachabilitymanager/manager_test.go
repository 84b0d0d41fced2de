package reachabilitymanager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

type fakeReachabilityDataStore struct {
	data map[externalapi.DomainHash]*model.ReachabilityData
}

func newFakeReachabilityDataStore() *fakeReachabilityDataStore {
	return &fakeReachabilityDataStore{data: map[externalapi.DomainHash]*model.ReachabilityData{}}
}

func (f *fakeReachabilityDataStore) Get(hash *externalapi.DomainHash) (*model.ReachabilityData, error) {
	return f.data[*hash], nil
}

func (f *fakeReachabilityDataStore) Has(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.data[*hash]
	return ok, nil
}

func (f *fakeReachabilityDataStore) Stage(hash *externalapi.DomainHash, data *model.ReachabilityData) error {
	f.data[*hash] = data
	return nil
}

func (f *fakeReachabilityDataStore) StageReindexedSubtree(updates map[externalapi.DomainHash]*model.ReachabilityData) error {
	for hash, data := range updates {
		h := hash
		f.data[h] = data
	}
	return nil
}

func hash(n byte) *externalapi.DomainHash {
	return &externalapi.DomainHash{n}
}

func TestChainAncestryViaIntervalContainment(t *testing.T) {
	store := newFakeReachabilityDataStore()
	manager := New(store)

	genesis := hash(0)
	require.NoError(t, manager.InitGenesis(genesis))

	a := hash(1)
	require.NoError(t, manager.AddBlock(a, genesis, []*externalapi.DomainHash{genesis}))

	b := hash(2)
	require.NoError(t, manager.AddBlock(b, a, []*externalapi.DomainHash{a}))

	isAncestor, err := manager.IsChainAncestorOf(genesis, b)
	require.NoError(t, err)
	require.True(t, isAncestor)

	isAncestor, err = manager.IsChainAncestorOf(b, genesis)
	require.NoError(t, err)
	require.False(t, isAncestor)

	isAncestor, err = manager.IsChainAncestorOf(genesis, genesis)
	require.NoError(t, err)
	require.True(t, isAncestor, "an interval always contains itself")
}

func TestDAGAncestryCrossesIntoFutureCoveringSet(t *testing.T) {
	store := newFakeReachabilityDataStore()
	manager := New(store)

	genesis := hash(0)
	require.NoError(t, manager.InitGenesis(genesis))

	left := hash(1)
	require.NoError(t, manager.AddBlock(left, genesis, []*externalapi.DomainHash{genesis}))

	right := hash(2)
	require.NoError(t, manager.AddBlock(right, genesis, []*externalapi.DomainHash{genesis}))

	// merged has left as selected parent but also references right directly,
	// so merged must land in right's future covering set.
	merged := hash(3)
	require.NoError(t, manager.AddBlock(merged, left, []*externalapi.DomainHash{left, right}))

	isChainAncestor, err := manager.IsChainAncestorOf(right, merged)
	require.NoError(t, err)
	require.False(t, isChainAncestor, "right is not in merged's selected-parent-tree lineage")

	isDAGAncestor, err := manager.IsDAGAncestorOf(right, merged)
	require.NoError(t, err)
	require.True(t, isDAGAncestor, "right still reaches merged through the DAG")
}

func TestForwardChainIteratorReturnsPathInOrder(t *testing.T) {
	store := newFakeReachabilityDataStore()
	manager := New(store)

	genesis := hash(0)
	require.NoError(t, manager.InitGenesis(genesis))

	a := hash(1)
	require.NoError(t, manager.AddBlock(a, genesis, []*externalapi.DomainHash{genesis}))
	b := hash(2)
	require.NoError(t, manager.AddBlock(b, a, []*externalapi.DomainHash{a}))

	path, err := manager.ForwardChainIterator(genesis, b)
	require.NoError(t, err)
	require.Len(t, path, 3)
	require.True(t, path[0].Equal(genesis))
	require.True(t, path[1].Equal(a))
	require.True(t, path[2].Equal(b))
}

func TestForwardChainIteratorRejectsNonAncestor(t *testing.T) {
	store := newFakeReachabilityDataStore()
	manager := New(store)

	genesis := hash(0)
	require.NoError(t, manager.InitGenesis(genesis))
	a := hash(1)
	require.NoError(t, manager.AddBlock(a, genesis, []*externalapi.DomainHash{genesis}))
	b := hash(2)
	require.NoError(t, manager.AddBlock(b, genesis, []*externalapi.DomainHash{genesis}))

	_, err := manager.ForwardChainIterator(a, b)
	require.Error(t, err)
}

func TestReindexTriggersOnIntervalExhaustion(t *testing.T) {
	store := newFakeReachabilityDataStore()
	manager := New(store)

	genesis := hash(0)
	// A tiny root interval forces allocateChildInterval to reindex almost
	// immediately, exercising reindex/reindexSubtreeInto instead of only the
	// genesisIntervalSize-sized happy path.
	require.NoError(t, store.Stage(genesis, &model.ReachabilityData{
		Interval: model.ReachabilityInterval{Start: 0, End: 8},
	}))

	var prev *externalapi.DomainHash = genesis
	for i := byte(1); i <= 5; i++ {
		child := hash(i)
		require.NoError(t, manager.AddBlock(child, prev, []*externalapi.DomainHash{prev}))
		prev = child
	}

	isAncestor, err := manager.IsChainAncestorOf(genesis, prev)
	require.NoError(t, err)
	require.True(t, isAncestor)
}
