// Package reachabilitymanager answers ancestor queries over the BlockDAG in
// O(1) (chain ancestry) or O(log n) (general DAG ancestry) time using an
// interval tree over the selected-parent tree, built against
// model.ReachabilityDataStore.
package reachabilitymanager

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// genesisIntervalSize is the capacity reserved for the whole DAG's interval
// tree at genesis. It is enormous relative to any realistic block count so
// that subtree reindexing -- while always available as a correctness
// fallback -- is triggered rarely, which is what makes interval allocation
// amortized O(1) per block.
const genesisIntervalSize = uint64(1) << 62

// Manager is the concrete model.ReachabilityManager.
type Manager struct {
	store model.ReachabilityDataStore
}

var _ model.ReachabilityManager = (*Manager)(nil)

// New constructs a Manager over store.
func New(store model.ReachabilityDataStore) *Manager {
	return &Manager{store: store}
}

// InitGenesis seeds the reachability tree's root interval. Must be called
// exactly once, before any AddBlock call.
func (m *Manager) InitGenesis(genesis *externalapi.DomainHash) error {
	return m.store.Stage(genesis, &model.ReachabilityData{
		Interval: model.ReachabilityInterval{Start: 0, End: genesisIntervalSize},
	})
}

// AddBlock registers hash as a tree-child of selectedParent, allocating it an
// interval nested inside selectedParent's, and records hash in the future
// covering set of every other direct parent so general DAG-ancestor queries
// that cross into hash's parents' subtrees still resolve.
func (m *Manager) AddBlock(hash, selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	parentData, err := m.store.Get(selectedParent)
	if err != nil {
		return err
	}

	interval, err := m.allocateChildInterval(selectedParent, parentData)
	if err != nil {
		return err
	}

	childData := &model.ReachabilityData{Interval: interval, Parent: selectedParent}
	if err := m.store.Stage(hash, childData); err != nil {
		return err
	}

	parentData.Children = append(parentData.Children, hash)
	if err := m.store.Stage(selectedParent, parentData); err != nil {
		return err
	}

	for _, parent := range parents {
		if parent.Equal(selectedParent) {
			continue
		}
		if err := m.addToFutureCoveringSet(parent, hash); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) addToFutureCoveringSet(parent, hash *externalapi.DomainHash) error {
	data, err := m.store.Get(parent)
	if err != nil {
		return err
	}
	hashData, err := m.store.Get(hash)
	if err != nil {
		return err
	}

	index := sort.Search(len(data.FutureCoveringSet), func(i int) bool {
		entryData, err := m.store.Get(data.FutureCoveringSet[i])
		if err != nil {
			return false
		}
		return entryData.Interval.Start >= hashData.Interval.Start
	})
	data.FutureCoveringSet = append(data.FutureCoveringSet, nil)
	copy(data.FutureCoveringSet[index+1:], data.FutureCoveringSet[index:])
	data.FutureCoveringSet[index] = hash

	return m.store.Stage(parent, data)
}

// IsChainAncestorOf reports whether anchor is an ancestor of queried within
// the selected-parent tree, answered in O(1) via interval containment.
func (m *Manager) IsChainAncestorOf(anchor, queried *externalapi.DomainHash) (bool, error) {
	anchorData, err := m.store.Get(anchor)
	if err != nil {
		return false, err
	}
	queriedData, err := m.store.Get(queried)
	if err != nil {
		return false, err
	}
	return anchorData.Interval.Contains(queriedData.Interval), nil
}

// IsDAGAncestorOf reports whether anchor is an ancestor of queried anywhere
// in the DAG, whether or not they share a selected-parent-tree lineage: a
// tree-ancestry check first, then a search through anchor's future covering
// set for an entry whose own subtree contains queried.
func (m *Manager) IsDAGAncestorOf(anchor, queried *externalapi.DomainHash) (bool, error) {
	isChainAncestor, err := m.IsChainAncestorOf(anchor, queried)
	if err != nil {
		return false, err
	}
	if isChainAncestor {
		return true, nil
	}

	anchorData, err := m.store.Get(anchor)
	if err != nil {
		return false, err
	}
	queriedData, err := m.store.Get(queried)
	if err != nil {
		return false, err
	}

	index := sort.Search(len(anchorData.FutureCoveringSet), func(i int) bool {
		entryData, err := m.store.Get(anchorData.FutureCoveringSet[i])
		if err != nil {
			return true
		}
		return entryData.Interval.Start > queriedData.Interval.Start
	}) - 1
	if index < 0 {
		return false, nil
	}

	candidate := anchorData.FutureCoveringSet[index]
	return m.IsChainAncestorOf(candidate, queried)
}

// ForwardChainIterator returns the selected-parent-tree path from from down
// to to, inclusive, assuming from is a chain ancestor of to.
func (m *Manager) ForwardChainIterator(from, to *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	isAncestor, err := m.IsChainAncestorOf(from, to)
	if err != nil {
		return nil, err
	}
	if !isAncestor {
		return nil, errors.Errorf("%s is not a chain ancestor of %s", from, to)
	}

	var reversed []*externalapi.DomainHash
	current := to
	for {
		reversed = append(reversed, current)
		if current.Equal(from) {
			break
		}
		data, err := m.store.Get(current)
		if err != nil {
			return nil, err
		}
		if data.Parent == nil {
			return nil, errors.Errorf("reached the root before reaching %s", from)
		}
		current = data.Parent
	}

	result := make([]*externalapi.DomainHash, len(reversed))
	for i, hash := range reversed {
		result[len(reversed)-1-i] = hash
	}
	return result, nil
}

// allocateChildInterval carves out an interval for a new tree-child of
// parentHash, reindexing the subtree if the parent has run out of slack.
func (m *Manager) allocateChildInterval(parentHash *externalapi.DomainHash, parentData *model.ReachabilityData) (model.ReachabilityInterval, error) {
	usedEnd := parentData.Interval.Start + 1
	if len(parentData.Children) > 0 {
		lastChild := parentData.Children[len(parentData.Children)-1]
		lastChildData, err := m.store.Get(lastChild)
		if err != nil {
			return model.ReachabilityInterval{}, err
		}
		usedEnd = lastChildData.Interval.End
	}

	remaining := int64(parentData.Interval.End) - int64(usedEnd)
	if remaining < 2 {
		if err := m.reindex(parentHash); err != nil {
			return model.ReachabilityInterval{}, err
		}
		parentData, err := m.store.Get(parentHash)
		if err != nil {
			return model.ReachabilityInterval{}, err
		}
		return m.allocateChildInterval(parentHash, parentData)
	}

	size := uint64(remaining) / 2
	if size < 1 {
		size = 1
	}
	return model.ReachabilityInterval{Start: usedEnd, End: usedEnd + size}, nil
}

// reindex reallocates every interval in the subtree rooted at hash,
// repacking existing children tightly and proportionally to their current
// subtree weight. If the repack still leaves no slack, the same treatment is
// escalated to hash's own parent first, to borrow more room from above.
func (m *Manager) reindex(hash *externalapi.DomainHash) error {
	data, err := m.store.Get(hash)
	if err != nil {
		return err
	}

	if len(data.Children) == 0 {
		return nil
	}

	weights := make([]uint64, len(data.Children))
	var totalWeight uint64
	for i, child := range data.Children {
		childData, err := m.store.Get(child)
		if err != nil {
			return err
		}
		weights[i] = childData.Interval.Size()
		totalWeight += weights[i]
	}

	available := data.Interval.End - (data.Interval.Start + 1)
	if totalWeight == 0 || available <= totalWeight {
		if data.Parent != nil {
			if err := m.reindex(data.Parent); err != nil {
				return err
			}
			return m.reindex(hash)
		}
		return errors.Errorf("reachability interval space exhausted at root while reindexing %s", hash)
	}

	updates := make(map[externalapi.DomainHash]*model.ReachabilityData)
	cursor := data.Interval.Start + 1
	for i, child := range data.Children {
		share := available * weights[i] / totalWeight
		if share < 2 {
			share = 2
		}
		newInterval := model.ReachabilityInterval{Start: cursor, End: cursor + share}
		if err := m.reindexSubtreeInto(child, newInterval, updates); err != nil {
			return err
		}
		cursor += share
	}

	return m.store.StageReindexedSubtree(updates)
}

// reindexSubtreeInto assigns newInterval to hash and recursively redistributes
// its current children proportionally within it, collecting every rewritten
// entry into updates rather than writing immediately, so the whole subtree
// rewrite can later be committed as one batch by the caller.
func (m *Manager) reindexSubtreeInto(hash *externalapi.DomainHash, newInterval model.ReachabilityInterval, updates map[externalapi.DomainHash]*model.ReachabilityData) error {
	data, err := m.store.Get(hash)
	if err != nil {
		return err
	}

	rewritten := &model.ReachabilityData{
		Interval:          newInterval,
		Parent:            data.Parent,
		Children:          data.Children,
		FutureCoveringSet: data.FutureCoveringSet,
	}
	updates[*hash] = rewritten

	if len(data.Children) == 0 {
		return nil
	}

	weights := make([]uint64, len(data.Children))
	var totalWeight uint64
	for i, child := range data.Children {
		childData, err := m.store.Get(child)
		if err != nil {
			return err
		}
		weights[i] = childData.Interval.Size()
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		totalWeight = uint64(len(data.Children))
		for i := range weights {
			weights[i] = 1
		}
	}

	available := newInterval.End - (newInterval.Start + 1)
	cursor := newInterval.Start + 1
	for i, child := range data.Children {
		share := available * weights[i] / totalWeight
		if share < 1 {
			share = 1
		}
		if err := m.reindexSubtreeInto(child, model.ReachabilityInterval{Start: cursor, End: cursor + share}, updates); err != nil {
			return err
		}
		cursor += share
	}
	return nil
}
