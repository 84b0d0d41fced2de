// Package dagtopologymanager answers direct-parent and ancestor queries by
// reading from the header store and delegating to the reachability manager,
// so GHOSTDAG and the pipeline never need to know how parents or ancestry
// are actually stored.
package dagtopologymanager

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// Manager is the concrete model.DAGTopologyManager.
type Manager struct {
	headerStore         model.HeaderStoreReader
	reachabilityManager model.ReachabilityManager
}

var _ model.DAGTopologyManager = (*Manager)(nil)

// New constructs a Manager.
func New(headerStore model.HeaderStoreReader, reachabilityManager model.ReachabilityManager) *Manager {
	return &Manager{headerStore: headerStore, reachabilityManager: reachabilityManager}
}

// Parents returns hash's direct (level-0) parents.
func (m *Manager) Parents(hash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	header, err := m.headerStore.Header(hash)
	if err != nil {
		return nil, err
	}
	return header.DirectParents(), nil
}

// IsParentOf reports whether parent is a direct parent of hash.
func (m *Manager) IsParentOf(parent, hash *externalapi.DomainHash) (bool, error) {
	parents, err := m.Parents(hash)
	if err != nil {
		return false, err
	}
	for _, candidate := range parents {
		if candidate.Equal(parent) {
			return true, nil
		}
	}
	return false, nil
}

// IsAncestorOf reports whether ancestor is a DAG ancestor of descendant.
func (m *Manager) IsAncestorOf(ancestor, descendant *externalapi.DomainHash) (bool, error) {
	return m.reachabilityManager.IsDAGAncestorOf(ancestor, descendant)
}
