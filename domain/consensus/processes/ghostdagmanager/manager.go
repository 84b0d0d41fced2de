// Package ghostdagmanager implements the GHOSTDAG ordering protocol: selected
// parent selection, mergeset computation over the selected parent's anticone,
// and k-cluster blue/red coloring, built over the store/interface
// architecture the pipeline's model package declares.
package ghostdagmanager

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// Manager runs the GHOSTDAG protocol over a DAG exposed through
// model.DAGTopologyManager, model.ReachabilityManager and
// model.GHOSTDAGDataStore.
type Manager struct {
	k                   externalapi.KType
	dagTopology         model.DAGTopologyManager
	reachabilityManager model.ReachabilityManager
	ghostdagDataStore   model.GHOSTDAGDataStore
	headerStore         model.HeaderStoreReader
}

var _ model.GHOSTDAGManager = (*Manager)(nil)

// New constructs a Manager.
func New(
	k externalapi.KType,
	dagTopology model.DAGTopologyManager,
	reachabilityManager model.ReachabilityManager,
	ghostdagDataStore model.GHOSTDAGDataStore,
	headerStore model.HeaderStoreReader,
) *Manager {
	return &Manager{
		k:                   k,
		dagTopology:         dagTopology,
		reachabilityManager: reachabilityManager,
		ghostdagDataStore:   ghostdagDataStore,
		headerStore:         headerStore,
	}
}

// GHOSTDAG runs the GHOSTDAG protocol for a new block with the given direct
// parents and returns its finalized ordering data. It updates blues,
// selectedParent and bluesAnticoneSizes by iterating over the anticone of the
// selected parent (the parent with the highest blue work) and admits a
// candidate into the blue set only if admitting it would not violate the
// k-cluster bound, either for the candidate itself or for any blue block
// already in newNode's blue set.
func (gm *Manager) GHOSTDAG(parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	if len(parents) == 0 {
		return nil, errors.New("GHOSTDAG requires at least one parent")
	}

	selectedParent, err := gm.bluest(parents)
	if err != nil {
		return nil, err
	}

	data := externalapi.NewBlockGHOSTDAGDataWithSelectedParent(selectedParent, gm.k)

	selectedParentAnticone, err := gm.selectedParentAnticone(parents, selectedParent)
	if err != nil {
		return nil, err
	}

	ordered, err := gm.sortByBlueWork(selectedParentAnticone)
	if err != nil {
		return nil, err
	}

	for _, blueCandidate := range ordered {
		candidateBluesAnticoneSizes := make(map[externalapi.DomainHash]externalapi.KType)
		var candidateAnticoneSize externalapi.KType
		possiblyBlue := true

		chainBlock := selectedParent
		chainBlockBlues := data.MergeSetBlues
		chainBlockIsNewNode := true

		for possiblyBlue {
			if !chainBlockIsNewNode {
				isAncestorOfBlueCandidate, err := gm.isInPast(chainBlock, blueCandidate)
				if err != nil {
					return nil, err
				}
				if isAncestorOfBlueCandidate {
					break
				}
			}

			for _, block := range chainBlockBlues {
				isAncestorOfBlueCandidate, err := gm.isInPast(block, blueCandidate)
				if err != nil {
					return nil, err
				}
				if isAncestorOfBlueCandidate {
					continue
				}

				size, err := gm.blueAnticoneSize(block, selectedParent, data.BluesAnticoneSizes)
				if err != nil {
					return nil, err
				}
				candidateBluesAnticoneSizes[*block] = size
				candidateAnticoneSize++

				if candidateAnticoneSize > gm.k {
					possiblyBlue = false
					break
				}
				if size == gm.k {
					possiblyBlue = false
					break
				}
				if size > gm.k {
					return nil, errors.New("found blue anticone size larger than k")
				}
			}

			if !possiblyBlue {
				break
			}

			if chainBlockIsNewNode {
				chainBlockIsNewNode = false
				chainBlock = selectedParent
			}

			chainData, err := gm.ghostdagDataStore.Get(chainBlock)
			if err != nil {
				return nil, err
			}
			chainBlockBlues = chainData.MergeSetBlues
			if chainData.SelectedParent == nil {
				// Reached genesis; its own selected parent chain is empty,
				// so there is nothing further to check and we stop (the
				// candidate is as blue as it will ever be determined here).
				break
			}
			chainBlock = chainData.SelectedParent
		}

		if possiblyBlue {
			data.AddBlue(blueCandidate, candidateAnticoneSize, candidateBluesAnticoneSizes)

			if externalapi.KType(len(data.MergeSetBlues)) == gm.k+1 {
				break
			}
		}
	}

	blueSet := externalapi.NewDomainHashSet(data.MergeSetBlues...)
	for _, candidate := range ordered {
		if !blueSet.Contains(candidate) {
			data.AddRed(candidate)
		}
	}

	selectedParentData, err := gm.ghostdagDataStore.Get(selectedParent)
	if err != nil {
		return nil, err
	}
	blueScore := selectedParentData.BlueScore + uint64(len(data.MergeSetBlues))
	blueWork, err := gm.accumulateBlueWork(selectedParentData.BlueWork, data.MergeSetBlues[1:])
	if err != nil {
		return nil, err
	}
	data.FinalizeScoreAndWork(blueScore, blueWork)

	return data, nil
}

// bluest returns the parent with the highest blue work, ties broken by the
// lexicographically smallest hash.
func (gm *Manager) bluest(parents []*externalapi.DomainHash) (*externalapi.DomainHash, error) {
	best := parents[0]
	bestData, err := gm.ghostdagDataStore.GetCompact(best)
	if err != nil {
		return nil, err
	}

	for _, parent := range parents[1:] {
		data, err := gm.ghostdagDataStore.GetCompact(parent)
		if err != nil {
			return nil, err
		}
		if data.BlueWork.Cmp(bestData.BlueWork) > 0 ||
			(data.BlueWork.Cmp(bestData.BlueWork) == 0 && parent.Less(best)) {
			best = parent
			bestData = data
		}
	}
	return best, nil
}

// selectedParentAnticone returns the blocks in the anticone of the selected
// parent: starting from the new block's other direct parents, a BFS walks
// each block's own parents, keeping anything that is not in the past of the
// selected parent.
func (gm *Manager) selectedParentAnticone(parents []*externalapi.DomainHash, selectedParent *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	anticoneSet := externalapi.NewDomainHashSet()
	var anticoneSlice []*externalapi.DomainHash
	selectedParentPast := externalapi.NewDomainHashSet()

	var queue []*externalapi.DomainHash
	for _, parent := range parents {
		if parent.Equal(selectedParent) {
			continue
		}
		anticoneSet.Add(parent)
		anticoneSlice = append(anticoneSlice, parent)
		queue = append(queue, parent)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		currentParents, err := gm.dagTopology.Parents(current)
		if err != nil {
			return nil, err
		}

		for _, parent := range currentParents {
			if anticoneSet.Contains(parent) || selectedParentPast.Contains(parent) {
				continue
			}
			isAncestorOfSelectedParent, err := gm.isInPast(parent, selectedParent)
			if err != nil {
				return nil, err
			}
			if isAncestorOfSelectedParent {
				selectedParentPast.Add(parent)
				continue
			}
			anticoneSet.Add(parent)
			anticoneSlice = append(anticoneSlice, parent)
			queue = append(queue, parent)
		}
	}

	return anticoneSlice, nil
}

func (gm *Manager) isInPast(this, other *externalapi.DomainHash) (bool, error) {
	return gm.reachabilityManager.IsDAGAncestorOf(this, other)
}

// blueAnticoneSize looks up the recorded blue anticone size of block, as
// observed from the point of view of the new block under construction:
// newNodeBluesAnticoneSizes holds the partial map being built for the new
// block itself (which reflects every increment applied so far in this same
// GHOSTDAG run); if block isn't present there, the search continues up the
// already-finalized selected-parent chain, since a block's recorded anticone
// size only ever increases as later chain blocks add new blues that affect it.
func (gm *Manager) blueAnticoneSize(block, selectedParent *externalapi.DomainHash, newNodeBluesAnticoneSizes map[externalapi.DomainHash]externalapi.KType) (externalapi.KType, error) {
	if size, ok := newNodeBluesAnticoneSizes[*block]; ok {
		return size, nil
	}

	current := selectedParent
	for current != nil {
		data, err := gm.ghostdagDataStore.Get(current)
		if err != nil {
			return 0, err
		}
		if size, ok := data.BluesAnticoneSizes[*block]; ok {
			return size, nil
		}
		current = data.SelectedParent
	}
	return 0, errors.Errorf("block %s is not in the blue set of any block in the selected chain", block)
}

func (gm *Manager) sortByBlueWork(hashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blocks, err := sortableBlocksFromMergeSet(gm.ghostdagDataStore, hashes)
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

// accumulateBlueWork derives the new block's cumulative blue work: the
// selected parent's own cumulative work plus the individual proof-of-work
// contribution of every other blue newly included in this block's merge set
// (a merge-set blue's own cumulative BlueWork field isn't reusable here --
// only its own header difficulty counts, since its ancestors' work was
// already folded into the selected parent's chain long ago).
func (gm *Manager) accumulateBlueWork(selectedParentBlueWork *big.Int, otherBlues []*externalapi.DomainHash) (*big.Int, error) {
	total := new(big.Int)
	if selectedParentBlueWork != nil {
		total.Set(selectedParentBlueWork)
	}
	for _, blue := range otherBlues {
		header, err := gm.headerStore.Header(blue)
		if err != nil {
			return nil, err
		}
		total.Add(total, config.BlueWorkFromBits(header.Bits))
	}
	return total, nil
}
