// Package depthmanager computes each block's merge-depth root and finality
// point: the nearest selected-parent-chain ancestor whose blue score falls at
// least MergeDepth (respectively FinalityDepth) behind the block's own.
package depthmanager

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// Manager computes BlockDepthInfo for newly accepted blocks.
type Manager struct {
	ghostdagDataStore model.GHOSTDAGDataStoreReader
	mergeDepth        uint64
	finalityDepth     uint64
}

// New constructs a Manager.
func New(ghostdagDataStore model.GHOSTDAGDataStoreReader, mergeDepth, finalityDepth uint64) *Manager {
	return &Manager{ghostdagDataStore: ghostdagDataStore, mergeDepth: mergeDepth, finalityDepth: finalityDepth}
}

// ComputeDepthInfo returns hash's merge-depth root and finality point.
func (m *Manager) ComputeDepthInfo(hash *externalapi.DomainHash) (*externalapi.BlockDepthInfo, error) {
	data, err := m.ghostdagDataStore.Get(hash)
	if err != nil {
		return nil, err
	}

	mergeRoot, err := m.walkBack(hash, data, m.mergeDepth)
	if err != nil {
		return nil, err
	}
	finalityPoint, err := m.walkBack(hash, data, m.finalityDepth)
	if err != nil {
		return nil, err
	}

	return &externalapi.BlockDepthInfo{MergeDepthRoot: mergeRoot, FinalityPoint: finalityPoint}, nil
}

// walkBack follows hash's selected-parent chain until it finds the nearest
// ancestor at least depth blue score behind hash, or returns the chain's
// last reachable block (genesis) if the chain is shorter than depth.
func (m *Manager) walkBack(hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData, depth uint64) (*externalapi.DomainHash, error) {
	target := data.BlueScore
	current := hash
	currentData := data

	for currentData.SelectedParent != nil {
		parentData, err := m.ghostdagDataStore.Get(currentData.SelectedParent)
		if err != nil {
			return nil, err
		}
		if target-parentData.BlueScore >= depth {
			return currentData.SelectedParent, nil
		}
		current = currentData.SelectedParent
		currentData = parentData
	}
	return current, nil
}
