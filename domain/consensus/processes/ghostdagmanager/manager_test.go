package ghostdagmanager

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// fakeTopology and fakeReachability below stand in for the store/service
// boundary GHOSTDAG depends on.

type fakeTopology struct {
	parents map[externalapi.DomainHash][]*externalapi.DomainHash
}

func (f *fakeTopology) Parents(hash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return f.parents[*hash], nil
}

func (f *fakeTopology) IsParentOf(parent, hash *externalapi.DomainHash) (bool, error) {
	for _, p := range f.parents[*hash] {
		if p.Equal(parent) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTopology) IsAncestorOf(ancestor, descendant *externalapi.DomainHash) (bool, error) {
	return f.isAncestorOf(ancestor, descendant, make(map[externalapi.DomainHash]bool))
}

func (f *fakeTopology) isAncestorOf(ancestor, descendant *externalapi.DomainHash, visited map[externalapi.DomainHash]bool) (bool, error) {
	if visited[*descendant] {
		return false, nil
	}
	visited[*descendant] = true
	for _, parent := range f.parents[*descendant] {
		if parent.Equal(ancestor) {
			return true, nil
		}
		found, err := f.isAncestorOf(ancestor, parent, visited)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// fakeReachability answers IsDAGAncestorOf by walking the same parents map a
// real interval-tree would have indexed -- correct but O(n), which is fine at
// this test's scale.
type fakeReachability struct {
	topology *fakeTopology
}

func (f *fakeReachability) IsDAGAncestorOf(anchor, queried *externalapi.DomainHash) (bool, error) {
	if anchor.Equal(queried) {
		return true, nil
	}
	return f.topology.IsAncestorOf(anchor, queried)
}

func (f *fakeReachability) IsChainAncestorOf(anchor, queried *externalapi.DomainHash) (bool, error) {
	return f.IsDAGAncestorOf(anchor, queried)
}

func (f *fakeReachability) AddBlock(hash, selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	return nil
}

func (f *fakeReachability) ForwardChainIterator(from, to *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return nil, nil
}

type fakeGhostdagDataStore struct {
	data map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

func (f *fakeGhostdagDataStore) Get(hash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return f.data[*hash], nil
}

func (f *fakeGhostdagDataStore) GetCompact(hash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error) {
	d := f.data[*hash]
	return &externalapi.CompactGHOSTDAGData{BlueScore: d.BlueScore, BlueWork: d.BlueWork, SelectedParent: d.SelectedParent}, nil
}

func (f *fakeGhostdagDataStore) Has(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.data[*hash]
	return ok, nil
}

func (f *fakeGhostdagDataStore) Insert(hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) error {
	f.data[*hash] = data
	return nil
}

func (f *fakeGhostdagDataStore) InsertBatch(_ database.WriteBatch, hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) error {
	return f.Insert(hash, data)
}

type fakeHeaderStore struct {
	bits map[externalapi.DomainHash]uint32
}

func (f *fakeHeaderStore) Header(hash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	return &externalapi.DomainBlockHeader{Bits: f.bits[*hash]}, nil
}

func (f *fakeHeaderStore) HasHeader(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.bits[*hash]
	return ok, nil
}

func hashN(n byte) *externalapi.DomainHash {
	return &externalapi.DomainHash{n}
}

// TestGHOSTDAGChain exercises a pure chain: every block's only parent is its
// predecessor, so it is always the selected parent and the merge set is
// always empty of reds regardless of k.
func TestGHOSTDAGChain(t *testing.T) {
	topology := &fakeTopology{parents: map[externalapi.DomainHash][]*externalapi.DomainHash{}}
	dataStore := &fakeGhostdagDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	headers := &fakeHeaderStore{bits: map[externalapi.DomainHash]uint32{}}
	reachability := &fakeReachability{topology: topology}

	genesis := hashN(0)
	dataStore.data[*genesis] = externalapi.NewBlockGHOSTDAGData(1, big.NewInt(0), nil, nil, nil, nil)
	headers.bits[*genesis] = 0x207fffff

	manager := New(0, topology, reachability, dataStore, headers)

	prev := genesis
	for i := byte(1); i <= 3; i++ {
		h := hashN(i)
		headers.bits[*h] = 0x207fffff
		topology.parents[*h] = []*externalapi.DomainHash{prev}

		data, err := manager.GHOSTDAG([]*externalapi.DomainHash{prev})
		require.NoError(t, err)
		require.True(t, data.SelectedParent.Equal(prev))
		require.Empty(t, data.MergeSetReds)
		require.Equal(t, []*externalapi.DomainHash{prev}, data.MergeSetBlues)

		prevData := dataStore.data[*prev]
		require.Equal(t, prevData.BlueScore+1, data.BlueScore)

		dataStore.Insert(h, data)
		prev = h
	}
}

// TestGHOSTDAGDiamondRedWithZeroK builds a diamond (two children of genesis
// merged by a third block) with k=0, so the non-selected branch can never be
// admitted to the blue set -- it must land in MergeSetReds.
func TestGHOSTDAGDiamondRedWithZeroK(t *testing.T) {
	topology := &fakeTopology{parents: map[externalapi.DomainHash][]*externalapi.DomainHash{}}
	dataStore := &fakeGhostdagDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	headers := &fakeHeaderStore{bits: map[externalapi.DomainHash]uint32{}}
	reachability := &fakeReachability{topology: topology}

	genesis := hashN(0)
	dataStore.data[*genesis] = externalapi.NewBlockGHOSTDAGData(1, big.NewInt(0), nil, nil, nil, nil)
	headers.bits[*genesis] = 0x207fffff

	manager := New(0, topology, reachability, dataStore, headers)

	left := hashN(1)
	headers.bits[*left] = 0x207fffff
	topology.parents[*left] = []*externalapi.DomainHash{genesis}
	leftData, err := manager.GHOSTDAG([]*externalapi.DomainHash{genesis})
	require.NoError(t, err)
	dataStore.Insert(left, leftData)

	right := hashN(2)
	headers.bits[*right] = 0x207fffff
	topology.parents[*right] = []*externalapi.DomainHash{genesis}
	rightData, err := manager.GHOSTDAG([]*externalapi.DomainHash{genesis})
	require.NoError(t, err)
	dataStore.Insert(right, rightData)

	tip := hashN(3)
	headers.bits[*tip] = 0x207fffff
	topology.parents[*tip] = []*externalapi.DomainHash{left, right}

	tipData, err := manager.GHOSTDAG([]*externalapi.DomainHash{left, right})
	require.NoError(t, err)

	// left and right have equal blue score; the tie-break picks the
	// lexicographically smaller hash as selected parent.
	require.True(t, tipData.SelectedParent.Equal(left))
	require.Len(t, tipData.MergeSetReds, 1)
	require.True(t, tipData.MergeSetReds[0].Equal(right))
	require.Empty(t, tipData.MergeSetBlues[1:])
}

// TestGHOSTDAGDiamondBlueWithSufficientK reruns the same diamond with a k
// large enough to admit the second parent as blue instead of red.
func TestGHOSTDAGDiamondBlueWithSufficientK(t *testing.T) {
	topology := &fakeTopology{parents: map[externalapi.DomainHash][]*externalapi.DomainHash{}}
	dataStore := &fakeGhostdagDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	headers := &fakeHeaderStore{bits: map[externalapi.DomainHash]uint32{}}
	reachability := &fakeReachability{topology: topology}

	genesis := hashN(0)
	dataStore.data[*genesis] = externalapi.NewBlockGHOSTDAGData(1, big.NewInt(0), nil, nil, nil, nil)
	headers.bits[*genesis] = 0x207fffff

	manager := New(5, topology, reachability, dataStore, headers)

	left := hashN(1)
	headers.bits[*left] = 0x207fffff
	topology.parents[*left] = []*externalapi.DomainHash{genesis}
	leftData, err := manager.GHOSTDAG([]*externalapi.DomainHash{genesis})
	require.NoError(t, err)
	dataStore.Insert(left, leftData)

	right := hashN(2)
	headers.bits[*right] = 0x207fffff
	topology.parents[*right] = []*externalapi.DomainHash{genesis}
	rightData, err := manager.GHOSTDAG([]*externalapi.DomainHash{genesis})
	require.NoError(t, err)
	dataStore.Insert(right, rightData)

	tip := hashN(3)
	headers.bits[*tip] = 0x207fffff
	topology.parents[*tip] = []*externalapi.DomainHash{left, right}

	tipData, err := manager.GHOSTDAG([]*externalapi.DomainHash{left, right})
	require.NoError(t, err)

	require.Empty(t, tipData.MergeSetReds)
	require.Len(t, tipData.MergeSetBlues, 2)
}
