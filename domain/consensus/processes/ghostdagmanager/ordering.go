package ghostdagmanager

import (
	"math/big"
	"sort"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// SortableBlock pairs a hash with its blue work for GHOSTDAG's canonical
// ordering: ascending by blue work, ties broken by the lexicographically
// smaller hash.
type SortableBlock struct {
	Hash     *externalapi.DomainHash
	BlueWork *big.Int
}

// less reports whether a sorts before b under the canonical ordering.
func sortableBlockLess(a, b *SortableBlock) bool {
	cmp := a.BlueWork.Cmp(b.BlueWork)
	if cmp != 0 {
		return cmp < 0
	}
	return a.Hash.Less(b.Hash)
}

func sortSortableBlocks(blocks []*SortableBlock) {
	sort.Slice(blocks, func(i, j int) bool { return sortableBlockLess(blocks[i], blocks[j]) })
}

func sortableBlocksFromMergeSet(store model.GHOSTDAGDataStoreReader, hashes []*externalapi.DomainHash) ([]*SortableBlock, error) {
	blocks := make([]*SortableBlock, len(hashes))
	for i, hash := range hashes {
		compact, err := store.GetCompact(hash)
		if err != nil {
			return nil, err
		}
		blocks[i] = &SortableBlock{Hash: hash, BlueWork: compact.BlueWork}
	}
	return blocks, nil
}

// mergeSetWithoutSelectedParentCapacity returns the merge set size excluding
// the selected parent, which occupies index 0 of MergeSetBlues for every
// block but genesis (whose MergeSetBlues is empty).
func mergeSetWithoutSelectedParentCapacity(data *externalapi.BlockGHOSTDAGData) int {
	blues := len(data.MergeSetBlues)
	if blues > 0 {
		blues--
	}
	return blues + len(data.MergeSetReds)
}

// AscendingMergeSetWithoutSelectedParent returns the merge set (blues and
// reds, excluding the selected parent) ordered ascending by blue work.
func AscendingMergeSetWithoutSelectedParent(store model.GHOSTDAGDataStoreReader, data *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {
	all := make([]*externalapi.DomainHash, 0, mergeSetWithoutSelectedParentCapacity(data))
	if len(data.MergeSetBlues) > 0 {
		all = append(all, data.MergeSetBlues[1:]...)
	}
	all = append(all, data.MergeSetReds...)

	blocks, err := sortableBlocksFromMergeSet(store, all)
	if err != nil {
		return nil, err
	}
	sortSortableBlocks(blocks)

	result := make([]*externalapi.DomainHash, len(blocks))
	for i, block := range blocks {
		result[i] = block.Hash
	}
	return result, nil
}

// DescendingMergeSetWithoutSelectedParent returns the same set in reverse order.
func DescendingMergeSetWithoutSelectedParent(store model.GHOSTDAGDataStoreReader, data *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {
	ascending, err := AscendingMergeSetWithoutSelectedParent(store, data)
	if err != nil {
		return nil, err
	}
	result := make([]*externalapi.DomainHash, len(ascending))
	for i, hash := range ascending {
		result[len(ascending)-1-i] = hash
	}
	return result, nil
}

// UnorderedMergeSetWithoutSelectedParent returns blues then reds, each in
// their stored (insertion) order, without imposing any global sort.
func UnorderedMergeSetWithoutSelectedParent(data *externalapi.BlockGHOSTDAGData) []*externalapi.DomainHash {
	all := make([]*externalapi.DomainHash, 0, mergeSetWithoutSelectedParentCapacity(data))
	if len(data.MergeSetBlues) > 0 {
		all = append(all, data.MergeSetBlues[1:]...)
	}
	all = append(all, data.MergeSetReds...)
	return all
}

// ConsensusOrderedMergeSet returns the selected parent followed by the rest
// of the merge set in ascending blue-work order, which is consensus's total
// order over all blocks in the DAG (every block's merge set, concatenated
// along the selected chain, is this sequence). Genesis has no selected
// parent and an empty merge set, so its consensus order is empty.
func ConsensusOrderedMergeSet(store model.GHOSTDAGDataStoreReader, data *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {
	rest, err := AscendingMergeSetWithoutSelectedParent(store, data)
	if err != nil {
		return nil, err
	}
	if data.SelectedParent == nil {
		return rest, nil
	}
	result := make([]*externalapi.DomainHash, 0, len(rest)+1)
	result = append(result, data.SelectedParent)
	result = append(result, rest...)
	return result, nil
}
