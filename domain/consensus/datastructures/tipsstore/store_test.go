package tipsstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

func TestInitSeedsTheTipSet(t *testing.T) {
	store := New(database.NewMemoryAccessor())
	genesis := &externalapi.DomainHash{0}

	require.NoError(t, store.Init([]*externalapi.DomainHash{genesis}))

	tips, err := store.Tips()
	require.NoError(t, err)
	require.Len(t, tips, 1)
	require.True(t, tips[0].Equal(genesis))
}

func TestInitTwiceIsAnError(t *testing.T) {
	store := New(database.NewMemoryAccessor())
	require.NoError(t, store.Init(nil))
	require.Error(t, store.Init(nil))
}

func TestAddTipReplacesItsParents(t *testing.T) {
	store := New(database.NewMemoryAccessor())
	genesis := &externalapi.DomainHash{0}
	require.NoError(t, store.Init([]*externalapi.DomainHash{genesis}))

	child := &externalapi.DomainHash{1}
	require.NoError(t, store.AddTip(child, []*externalapi.DomainHash{genesis}))

	tips, err := store.Tips()
	require.NoError(t, err)
	require.Len(t, tips, 1)
	require.True(t, tips[0].Equal(child), "genesis must be removed from the tip set once something is built on it")
}

func TestAddTipWithMultipleParentsReplacesAllOfThem(t *testing.T) {
	store := New(database.NewMemoryAccessor())
	left := &externalapi.DomainHash{1}
	right := &externalapi.DomainHash{2}
	require.NoError(t, store.Init([]*externalapi.DomainHash{left, right}))

	merged := &externalapi.DomainHash{3}
	require.NoError(t, store.AddTip(merged, []*externalapi.DomainHash{left, right}))

	tips, err := store.Tips()
	require.NoError(t, err)
	require.Len(t, tips, 1)
	require.True(t, tips[0].Equal(merged))
}

func TestAddTipLeavesUnrelatedTipsInPlace(t *testing.T) {
	store := New(database.NewMemoryAccessor())
	a := &externalapi.DomainHash{1}
	b := &externalapi.DomainHash{2}
	require.NoError(t, store.Init([]*externalapi.DomainHash{a, b}))

	child := &externalapi.DomainHash{3}
	require.NoError(t, store.AddTip(child, []*externalapi.DomainHash{a}))

	tips, err := store.Tips()
	require.NoError(t, err)
	require.Len(t, tips, 2)

	var hashes []externalapi.DomainHash
	for _, tip := range tips {
		hashes = append(hashes, *tip)
	}
	require.Contains(t, hashes, *b)
	require.Contains(t, hashes, *child)
}
