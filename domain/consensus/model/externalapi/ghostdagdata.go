package externalapi

import "math/big"

// KType is the width of a GHOSTDAG blue-anticone-size counter. If K is ever
// needed above 255, this must widen to uint16 and the on-disk GhostdagData
// encoding must change (it carries no format version); this is documented,
// not implemented.
type KType uint8

// BlockGHOSTDAGData holds the ordering data GHOSTDAG computes for a single
// block, written once and never mutated thereafter (see store Insert
// semantics).
type BlockGHOSTDAGData struct {
	BlueScore      uint64
	BlueWork       *big.Int
	SelectedParent *DomainHash

	// MergeSetBlues is ordered ascending by blue work (ties by hash); index 0
	// is always the selected parent.
	MergeSetBlues []*DomainHash

	// MergeSetReds is ordered ascending by blue work (ties by hash).
	MergeSetReds []*DomainHash

	// BluesAnticoneSizes maps each blue hash in this block's blue anticone to
	// its anticone size as observed from this block's point of view.
	BluesAnticoneSizes map[DomainHash]KType
}

// NewBlockGHOSTDAGData constructs a fully-formed BlockGHOSTDAGData.
func NewBlockGHOSTDAGData(
	blueScore uint64,
	blueWork *big.Int,
	selectedParent *DomainHash,
	mergeSetBlues []*DomainHash,
	mergeSetReds []*DomainHash,
	bluesAnticoneSizes map[DomainHash]KType,
) *BlockGHOSTDAGData {
	return &BlockGHOSTDAGData{
		BlueScore:          blueScore,
		BlueWork:           blueWork,
		SelectedParent:     selectedParent,
		MergeSetBlues:      mergeSetBlues,
		MergeSetReds:       mergeSetReds,
		BluesAnticoneSizes: bluesAnticoneSizes,
	}
}

// NewBlockGHOSTDAGDataWithSelectedParent seeds a new, in-progress
// BlockGHOSTDAGData with only the selected parent set as the first (and so
// far only) blue.
func NewBlockGHOSTDAGDataWithSelectedParent(selectedParent *DomainHash, k KType) *BlockGHOSTDAGData {
	mergeSetBlues := make([]*DomainHash, 0, k+1)
	mergeSetBlues = append(mergeSetBlues, selectedParent)

	bluesAnticoneSizes := make(map[DomainHash]KType, k)
	bluesAnticoneSizes[*selectedParent] = 0

	return &BlockGHOSTDAGData{
		SelectedParent:     selectedParent,
		MergeSetBlues:      mergeSetBlues,
		MergeSetReds:       nil,
		BluesAnticoneSizes: bluesAnticoneSizes,
	}
}

// MergeSetSize returns the total size of the mergeset, including the selected parent.
func (data *BlockGHOSTDAGData) MergeSetSize() int {
	return len(data.MergeSetBlues) + len(data.MergeSetReds)
}

// ToCompact projects the data down to its compact form.
func (data *BlockGHOSTDAGData) ToCompact() *CompactGHOSTDAGData {
	blueWork := data.BlueWork
	if blueWork == nil {
		blueWork = big.NewInt(0)
	}
	return &CompactGHOSTDAGData{
		BlueScore:      data.BlueScore,
		BlueWork:       new(big.Int).Set(blueWork),
		SelectedParent: data.SelectedParent,
	}
}

// AddBlue records `block` as a new blue in the mergeset, with its observed blue
// anticone size, and bumps the anticone counters of every blue affected by the
// insertion. It mutates `data` in place and nothing copies it first (stores
// hand out the cached pointer), so it is only called on a value that has not
// been stored yet: GHOSTDAG calls it on the one it seeded with
// NewBlockGHOSTDAGDataWithSelectedParent.
func (data *BlockGHOSTDAGData) AddBlue(block *DomainHash, blueAnticoneSize KType, blockBluesAnticoneSizes map[DomainHash]KType) {
	data.MergeSetBlues = append(data.MergeSetBlues, block)

	if data.BluesAnticoneSizes == nil {
		data.BluesAnticoneSizes = make(map[DomainHash]KType)
	}
	data.BluesAnticoneSizes[*block] = blueAnticoneSize

	for blue, size := range blockBluesAnticoneSizes {
		data.BluesAnticoneSizes[blue] = size + 1
	}
}

// AddRed records `block` as a new red in the mergeset.
func (data *BlockGHOSTDAGData) AddRed(block *DomainHash) {
	data.MergeSetReds = append(data.MergeSetReds, block)
}

// FinalizeScoreAndWork sets the block's final blue score and blue work, once
// the whole mergeset has been colored.
func (data *BlockGHOSTDAGData) FinalizeScoreAndWork(blueScore uint64, blueWork *big.Int) {
	data.BlueScore = blueScore
	data.BlueWork = blueWork
}

// CompactGHOSTDAGData is the {blue_score, blue_work, selected_parent} projection
// used for fast selected-chain walks without materializing full mergesets.
type CompactGHOSTDAGData struct {
	BlueScore      uint64
	BlueWork       *big.Int
	SelectedParent *DomainHash
}

// BlockDepthInfo anchors a block's merge-depth root and finality point, both
// derived from walking the selected-parent chain.
type BlockDepthInfo struct {
	MergeDepthRoot *DomainHash
	FinalityPoint  *DomainHash
}
