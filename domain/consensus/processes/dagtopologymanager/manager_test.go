package dagtopologymanager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/blockheaderstore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/reachabilitymanager"
)

func newTestManager(t *testing.T) (*Manager, *blockheaderstore.Store, *reachabilitymanager.Manager) {
	headerStore := blockheaderstore.New(database.NewMemoryAccessor(), blockheaderstore.DefaultCacheSize)
	reachabilityStore := reachabilitydatastore.New(database.NewMemoryAccessor(), reachabilitydatastore.DefaultCacheSize)
	reachabilityManager := reachabilitymanager.New(reachabilityStore)
	return New(headerStore, reachabilityManager), headerStore, reachabilityManager
}

func TestParentsReturnsDirectParents(t *testing.T) {
	m, headerStore, _ := newTestManager(t)
	parentA := &externalapi.DomainHash{1}
	parentB := &externalapi.DomainHash{2}
	hash := &externalapi.DomainHash{3}
	require.NoError(t, headerStore.Insert(hash, &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{{parentA, parentB}},
	}))

	parents, err := m.Parents(hash)
	require.NoError(t, err)
	require.Len(t, parents, 2)
	require.True(t, parents[0].Equal(parentA))
	require.True(t, parents[1].Equal(parentB))
}

func TestIsParentOfDistinguishesDirectFromIndirectParents(t *testing.T) {
	m, headerStore, _ := newTestManager(t)
	grandparent := &externalapi.DomainHash{1}
	parent := &externalapi.DomainHash{2}
	hash := &externalapi.DomainHash{3}
	require.NoError(t, headerStore.Insert(parent, &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{{grandparent}},
	}))
	require.NoError(t, headerStore.Insert(hash, &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{{parent}},
	}))

	isParent, err := m.IsParentOf(parent, hash)
	require.NoError(t, err)
	require.True(t, isParent)

	isParent, err = m.IsParentOf(grandparent, hash)
	require.NoError(t, err)
	require.False(t, isParent)
}

func TestIsAncestorOfDelegatesToReachability(t *testing.T) {
	m, _, reachability := newTestManager(t)
	genesis := &externalapi.DomainHash{1}
	child := &externalapi.DomainHash{2}

	require.NoError(t, reachability.InitGenesis(genesis))
	require.NoError(t, reachability.AddBlock(child, genesis, []*externalapi.DomainHash{genesis}))

	isAncestor, err := m.IsAncestorOf(genesis, child)
	require.NoError(t, err)
	require.True(t, isAncestor)

	isAncestor, err = m.IsAncestorOf(child, genesis)
	require.NoError(t, err)
	require.False(t, isAncestor)
}
