// Package pastmediantimemanager computes a block's past median time: the
// median timestamp of a fixed-size window of its selected-parent-chain
// ancestors, used to bound how far into the past or future a new block's
// own timestamp may legally drift.
package pastmediantimemanager

import (
	"sort"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// WindowSize is the number of selected-chain ancestors the median is taken over.
const WindowSize = 11

// Manager is the concrete past-median-time calculator.
type Manager struct {
	ghostdagDataStore model.GHOSTDAGDataStore
	headerStore       model.HeaderStoreReader
}

// New constructs a Manager.
func New(ghostdagDataStore model.GHOSTDAGDataStore, headerStore model.HeaderStoreReader) *Manager {
	return &Manager{ghostdagDataStore: ghostdagDataStore, headerStore: headerStore}
}

// PastMedianTime returns the median timestamp, in milliseconds, of the
// WindowSize selected-parent-chain ancestors of hash (hash included).
func (m *Manager) PastMedianTime(hash *externalapi.DomainHash) (int64, error) {
	timestamps := make([]int64, 0, WindowSize)

	current := hash
	for i := 0; i < WindowSize && current != nil; i++ {
		header, err := m.headerStore.Header(current)
		if err != nil {
			return 0, err
		}
		timestamps = append(timestamps, header.TimeInMilliseconds)

		data, err := m.ghostdagDataStore.Get(current)
		if err != nil {
			return 0, err
		}
		current = data.SelectedParent
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps[len(timestamps)/2], nil
}
