package virtualprocessor

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

type fakeBlockStatusStore struct {
	status map[externalapi.DomainHash]externalapi.BlockStatus
}

func (f *fakeBlockStatusStore) Get(hash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	return f.status[*hash], nil
}

func (f *fakeBlockStatusStore) Exists(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.status[*hash]
	return ok, nil
}

func (f *fakeBlockStatusStore) Stage(hash *externalapi.DomainHash, status externalapi.BlockStatus) error {
	f.status[*hash] = status
	return nil
}

func (f *fakeBlockStatusStore) StageBatch(_ database.WriteBatch, hash *externalapi.DomainHash, status externalapi.BlockStatus) error {
	return f.Stage(hash, status)
}

type fakeGHOSTDAGDataStore struct {
	data map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

func (f *fakeGHOSTDAGDataStore) Get(hash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return f.data[*hash], nil
}

func (f *fakeGHOSTDAGDataStore) GetCompact(hash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error) {
	return f.data[*hash].ToCompact(), nil
}

func (f *fakeGHOSTDAGDataStore) Has(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.data[*hash]
	return ok, nil
}

// genesisGHOSTDAGDataStore returns a store where every registered hash is
// treated as having no selected parent and an empty merge set, which is
// enough for tests that only care about dependency-manager scheduling, not
// GHOSTDAG ordering itself.
func genesisGHOSTDAGDataStore(hashes ...*externalapi.DomainHash) *fakeGHOSTDAGDataStore {
	store := &fakeGHOSTDAGDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	for _, hash := range hashes {
		store.data[*hash] = externalapi.NewBlockGHOSTDAGData(0, big.NewInt(0), nil, nil, nil, nil)
	}
	return store
}

type fakeUTXODiffManager struct {
	result    map[externalapi.DomainHash]externalapi.BlockStatus
	err       map[externalapi.DomainHash]error
	calls     []externalapi.DomainHash
	mergeSets map[externalapi.DomainHash][]*externalapi.DomainHash
}

func (f *fakeUTXODiffManager) VerifyAndApplyUTXOTransition(hash *externalapi.DomainHash, mergeSetOrder []*externalapi.DomainHash) (externalapi.BlockStatus, error) {
	f.calls = append(f.calls, *hash)
	if f.mergeSets == nil {
		f.mergeSets = map[externalapi.DomainHash][]*externalapi.DomainHash{}
	}
	f.mergeSets[*hash] = mergeSetOrder
	if err, ok := f.err[*hash]; ok {
		return 0, err
	}
	return f.result[*hash], nil
}

func TestSubmitWithNoParentsProcessesImmediately(t *testing.T) {
	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{}}
	diffManager := &fakeUTXODiffManager{
		result: map[externalapi.DomainHash]externalapi.BlockStatus{{1}: externalapi.StatusUTXOValid},
		err:    map[externalapi.DomainHash]error{},
	}
	hash := &externalapi.DomainHash{1}
	p := New(statusStore, genesisGHOSTDAGDataStore(hash), diffManager)

	statusStore.status[*hash] = externalapi.StatusUTXOPendingVerification

	require.NoError(t, p.Submit(hash, nil))
	require.Equal(t, externalapi.StatusUTXOValid, statusStore.status[*hash])
}

func TestSubmitWaitsForUnsettledParent(t *testing.T) {
	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{}}
	parent := &externalapi.DomainHash{1}
	child := &externalapi.DomainHash{2}
	statusStore.status[*parent] = externalapi.StatusUTXOPendingVerification
	statusStore.status[*child] = externalapi.StatusUTXOPendingVerification

	diffManager := &fakeUTXODiffManager{
		result: map[externalapi.DomainHash]externalapi.BlockStatus{
			*parent: externalapi.StatusUTXOValid,
			*child:  externalapi.StatusUTXOValid,
		},
		err: map[externalapi.DomainHash]error{},
	}
	p := New(statusStore, genesisGHOSTDAGDataStore(parent, child), diffManager)

	// child is submitted before parent is ever registered with the
	// dependency manager -- the out-of-order liveness case.
	require.NoError(t, p.Submit(child, []*externalapi.DomainHash{parent}))
	require.Equal(t, externalapi.StatusUTXOPendingVerification, statusStore.status[*child], "child must wait on its in-flight parent")
	require.Empty(t, diffManager.calls, "child must not be verified before its parent settles")

	require.NoError(t, p.Submit(parent, nil))
	require.Equal(t, externalapi.StatusUTXOValid, statusStore.status[*parent])
	require.Contains(t, diffManager.calls, *parent)

	require.Equal(t, externalapi.StatusUTXOValid, statusStore.status[*child], "child must be released and verified once its parent settles")
	require.Contains(t, diffManager.calls, *child)
}

func TestSubmitRejectedTransitionMarksInvalid(t *testing.T) {
	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{}}
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusUTXOPendingVerification

	diffManager := &fakeUTXODiffManager{
		result: map[externalapi.DomainHash]externalapi.BlockStatus{},
		err:    map[externalapi.DomainHash]error{*hash: errors.New("double spend")},
	}
	p := New(statusStore, genesisGHOSTDAGDataStore(hash), diffManager)

	err := p.Submit(hash, nil)
	require.Error(t, err)
	require.Equal(t, externalapi.StatusInvalid, statusStore.status[*hash])
}

func TestSubmitKnownInvalidIsRejected(t *testing.T) {
	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{}}
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusInvalid

	diffManager := &fakeUTXODiffManager{result: map[externalapi.DomainHash]externalapi.BlockStatus{}, err: map[externalapi.DomainHash]error{}}
	p := New(statusStore, genesisGHOSTDAGDataStore(hash), diffManager)
	err := p.Submit(hash, nil)
	require.Error(t, err)
}

func TestSubmitAlreadySettledIsNoOp(t *testing.T) {
	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{}}
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusUTXOValid

	diffManager := &fakeUTXODiffManager{result: map[externalapi.DomainHash]externalapi.BlockStatus{}, err: map[externalapi.DomainHash]error{}}
	p := New(statusStore, genesisGHOSTDAGDataStore(hash), diffManager)

	require.NoError(t, p.Submit(hash, nil))
	require.Empty(t, diffManager.calls, "an already-settled block must not be re-verified")
}

// TestProcessComputesConsensusOrderedMergeSet wires
// ghostdagmanager.ConsensusOrderedMergeSet through to the UTXO diff manager:
// selected parent SP, blues {B1@2, B2@7, B3@11}, reds {R1@4, R2@9, R3@11}
// with R3's hash greater than B3's, matching spec.md scenario S2.
func TestProcessComputesConsensusOrderedMergeSet(t *testing.T) {
	sp := &externalapi.DomainHash{0}
	b1 := &externalapi.DomainHash{1}
	b2 := &externalapi.DomainHash{2}
	b3 := &externalapi.DomainHash{10}
	r1 := &externalapi.DomainHash{3}
	r2 := &externalapi.DomainHash{4}
	r3 := &externalapi.DomainHash{11}
	hash := &externalapi.DomainHash{20}

	store := &fakeGHOSTDAGDataStore{data: map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData{}}
	work := func(w int64) *externalapi.BlockGHOSTDAGData {
		return externalapi.NewBlockGHOSTDAGData(0, big.NewInt(w), nil, nil, nil, nil)
	}
	store.data[*sp] = work(1)
	store.data[*b1] = work(2)
	store.data[*b2] = work(7)
	store.data[*b3] = work(11)
	store.data[*r1] = work(4)
	store.data[*r2] = work(9)
	store.data[*r3] = work(11)
	store.data[*hash] = externalapi.NewBlockGHOSTDAGData(
		0, big.NewInt(0), sp,
		[]*externalapi.DomainHash{sp, b1, b2, b3},
		[]*externalapi.DomainHash{r1, r2, r3},
		nil,
	)

	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{
		*hash: externalapi.StatusUTXOPendingVerification,
	}}
	diffManager := &fakeUTXODiffManager{
		result: map[externalapi.DomainHash]externalapi.BlockStatus{*hash: externalapi.StatusUTXOValid},
		err:    map[externalapi.DomainHash]error{},
	}
	p := New(statusStore, store, diffManager)

	require.NoError(t, p.Submit(hash, nil))

	require.Equal(t, []*externalapi.DomainHash{sp, b1, r1, b2, r2, b3, r3}, diffManager.mergeSets[*hash])
}
