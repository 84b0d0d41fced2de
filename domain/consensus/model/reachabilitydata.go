package model

import "github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"

// ReachabilityInterval is a half-open range [Start, End) assigned to a block
// within its ancestor's subtree in the selected-parent tree. A block A is an
// ancestor of B in that tree iff A's interval contains B's interval -- this
// is what makes chain-ancestor queries O(1) instead of O(depth).
type ReachabilityInterval struct {
	Start uint64
	End    uint64
}

// Contains reports whether other lies entirely within interval.
func (interval ReachabilityInterval) Contains(other ReachabilityInterval) bool {
	return interval.Start <= other.Start && other.End <= interval.End
}

// Size returns the number of slots the interval spans.
func (interval ReachabilityInterval) Size() uint64 {
	return interval.End - interval.Start
}

// ReachabilityData is the per-block bookkeeping the reachability manager
// maintains: the block's place in the selected-parent tree (for O(1)
// chain-ancestor queries) plus a future covering set (for DAG-ancestor
// queries that may cross into a sibling subtree).
type ReachabilityData struct {
	Interval ReachabilityInterval
	Parent   *externalapi.DomainHash
	Children []*externalapi.DomainHash

	// FutureCoveringSet is a sorted-by-interval list of blocks in this
	// block's anticone-complement (its "future") that are not also covered
	// by one of its tree descendants, used to answer general DAG-ancestor
	// queries with a binary search instead of a DAG walk.
	FutureCoveringSet []*externalapi.DomainHash
}

// ReachabilityDataStoreReader is the read side of the reachability store.
type ReachabilityDataStoreReader interface {
	Get(hash *externalapi.DomainHash) (*ReachabilityData, error)
	Has(hash *externalapi.DomainHash) (bool, error)
}

// ReachabilityDataStore persists per-block reachability bookkeeping. Unlike
// the other stores this one is mutable: interval reallocation on subtree
// slack exhaustion rewrites the intervals of a whole reindexed subtree, and
// future covering sets grow as new blocks reference existing ones.
type ReachabilityDataStore interface {
	ReachabilityDataStoreReader
	Stage(hash *externalapi.DomainHash, data *ReachabilityData) error
	StageReindexedSubtree(updates map[externalapi.DomainHash]*ReachabilityData) error
}
