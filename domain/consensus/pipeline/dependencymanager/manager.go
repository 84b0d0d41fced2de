// Package dependencymanager schedules per-block pipeline work so that a
// block only enters a processing stage once all of its direct parents have
// already completed that same stage.
package dependencymanager

import (
	"sync"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

type taskState struct {
	remainingParents int
	children         []*externalapi.DomainHash
}

// Manager tracks, for one pipeline stage, which registered blocks are still
// waiting on a parent to finish that stage.
type Manager struct {
	mu    sync.Mutex
	cond  *sync.Cond
	tasks map[externalapi.DomainHash]*taskState

	// waiters holds children registered before their parent, keyed by the
	// not-yet-registered parent's hash. The parent's own Register call
	// consumes and clears its entry so End(parent) can find and release
	// them once they were linked in as that parent's children.
	waiters map[externalapi.DomainHash][]*externalapi.DomainHash
	active  int
}

// New constructs an empty Manager.
func New() *Manager {
	m := &Manager{
		tasks:   make(map[externalapi.DomainHash]*taskState),
		waiters: make(map[externalapi.DomainHash][]*externalapi.DomainHash),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Register records hash as entering this stage with the given direct
// parents. isParentDone is consulted for each parent not already tracked by
// this Manager (e.g. because it completed the stage in an earlier run, or
// before this node's current process started) -- the store-backed status is
// always the source of truth; this Manager's own task map exists only to
// coordinate concurrently in-flight work within the current run.
//
// duplicate is true if hash was already registered; the caller must not
// process it twice (this is what makes resubmitting the same block a no-op).
// ready is true iff hash has no outstanding parent dependencies and the
// caller may begin processing it immediately; otherwise it will be handed
// back from a future End call once its last pending parent finishes.
func (m *Manager) Register(
	hash *externalapi.DomainHash,
	parents []*externalapi.DomainHash,
	isParentDone func(*externalapi.DomainHash) (bool, error),
) (ready bool, duplicate bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[*hash]; exists {
		return false, true, nil
	}

	state := &taskState{}
	var waitingOnUnregistered []*externalapi.DomainHash
	for _, parent := range parents {
		if parentState, tracked := m.tasks[*parent]; tracked {
			state.remainingParents++
			parentState.children = append(parentState.children, hash)
			continue
		}
		done, err := isParentDone(parent)
		if err != nil {
			return false, false, err
		}
		if !done {
			// Not tracked by this run and not yet done: this block has a
			// true missing-parent dependency (e.g. the parent hasn't been
			// submitted at all). Record hash under waiters[parent] so that
			// whenever the parent itself is later registered, it finds hash
			// and links it in as one of its own children.
			state.remainingParents++
			waitingOnUnregistered = append(waitingOnUnregistered, parent)
		}
	}

	m.tasks[*hash] = state
	m.active++

	for _, parent := range waitingOnUnregistered {
		m.waiters[*parent] = append(m.waiters[*parent], hash)
	}

	// hash may itself already have children waiting on it from before it was
	// registered; claim them now that hash has a task to hang them off of.
	if waiting, ok := m.waiters[*hash]; ok {
		state.children = append(state.children, waiting...)
		delete(m.waiters, *hash)
	}

	if state.remainingParents == 0 {
		return true, false, nil
	}
	return false, false, nil
}

// End marks hash as having completed this stage, releasing any dependents
// whose last outstanding parent was hash. The caller must schedule the
// returned hashes for processing.
func (m *Manager) End(hash *externalapi.DomainHash) []*externalapi.DomainHash {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.tasks[*hash]
	delete(m.tasks, *hash)
	m.active--
	if m.active == 0 {
		m.cond.Broadcast()
	}
	if !ok {
		return nil
	}

	ready := make([]*externalapi.DomainHash, 0, len(state.children))
	for _, child := range state.children {
		childState, tracked := m.tasks[*child]
		if !tracked {
			continue
		}
		childState.remainingParents--
		if childState.remainingParents == 0 {
			ready = append(ready, child)
		}
	}
	return ready
}

// WaitForIdle blocks until every registered task has called End.
func (m *Manager) WaitForIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.active > 0 {
		m.cond.Wait()
	}
}
