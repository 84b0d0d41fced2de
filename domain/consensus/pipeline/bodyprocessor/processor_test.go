package bodyprocessor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/blockvalidator"
)

type fakeHeaderStore struct {
	headers map[externalapi.DomainHash]*externalapi.DomainBlockHeader
}

func (f *fakeHeaderStore) Header(hash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	return f.headers[*hash], nil
}

func (f *fakeHeaderStore) HasHeader(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.headers[*hash]
	return ok, nil
}

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

type fakeBlockTransactionsStore struct {
	transactions map[externalapi.DomainHash][]*externalapi.DomainTransaction
}

func (f *fakeBlockTransactionsStore) Get(hash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	return f.transactions[*hash], nil
}

func (f *fakeBlockTransactionsStore) Has(hash *externalapi.DomainHash) (bool, error) {
	_, ok := f.transactions[*hash]
	return ok, nil
}

func (f *fakeBlockTransactionsStore) Insert(hash *externalapi.DomainHash, transactions []*externalapi.DomainTransaction) error {
	f.transactions[*hash] = transactions
	return nil
}

func (f *fakeBlockTransactionsStore) InsertBatch(_ database.WriteBatch, hash *externalapi.DomainHash, transactions []*externalapi.DomainTransaction) error {
	return f.Insert(hash, transactions)
}

type fakeTipsStore struct {
	tips map[externalapi.DomainHash][]*externalapi.DomainHash
}

func (f *fakeTipsStore) Tips() ([]*externalapi.DomainHash, error) {
	var result []*externalapi.DomainHash
	for hash := range f.tips {
		h := hash
		result = append(result, &h)
	}
	return result, nil
}

func (f *fakeTipsStore) AddTip(hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	f.tips[*hash] = parents
	return nil
}

func (f *fakeTipsStore) AddTipBatch(_ database.WriteBatch, hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	return f.AddTip(hash, parents)
}

func (f *fakeTipsStore) Init(tips []*externalapi.DomainHash) error {
	return nil
}

func coinbaseTx() *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		Version:      0,
		SubnetworkID: externalapi.SubnetworkIDCoinbase,
		Outputs:      []*externalapi.DomainTransactionOutput{{Value: 50, ScriptPublicKey: &externalapi.ScriptPublicKey{}}},
	}
}

func newTestProcessor() (*Processor, *fakeBlockStatusStore) {
	cfg := config.DefaultMainnetConfig()
	validator := blockvalidator.New(cfg, &fakeHeaderStore{headers: map[externalapi.DomainHash]*externalapi.DomainBlockHeader{}}, nil, nil)
	statusStore := &fakeBlockStatusStore{status: map[externalapi.DomainHash]externalapi.BlockStatus{}}

	p := New(
		database.NewMemoryAccessor(),
		validator,
		&fakeHeaderStore{headers: map[externalapi.DomainHash]*externalapi.DomainBlockHeader{}},
		statusStore,
		&fakeBlockTransactionsStore{transactions: map[externalapi.DomainHash][]*externalapi.DomainTransaction{}},
		&fakeTipsStore{tips: map[externalapi.DomainHash][]*externalapi.DomainHash{}},
	)
	return p, statusStore
}

func headerWithRoot(transactions []*externalapi.DomainTransaction, parents ...*externalapi.DomainHash) *externalapi.DomainBlockHeader {
	root := blockvalidator.ComputeHashMerkleRoot(transactions)
	return &externalapi.DomainBlockHeader{
		ParentsByLevel: [][]*externalapi.DomainHash{parents},
		HashMerkleRoot: root,
	}
}

func TestSubmitWithNoParentsProcessesImmediately(t *testing.T) {
	p, statusStore := newTestProcessor()
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusHeaderOnly

	txs := []*externalapi.DomainTransaction{coinbaseTx()}
	err := p.Submit(hash, headerWithRoot(txs), txs)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusUTXOPendingVerification, statusStore.status[*hash])
}

func TestSubmitWithUnreadyParentStaysPending(t *testing.T) {
	p, statusStore := newTestProcessor()
	parent := &externalapi.DomainHash{1}
	child := &externalapi.DomainHash{2}
	statusStore.status[*parent] = externalapi.StatusHeaderOnly
	statusStore.status[*child] = externalapi.StatusHeaderOnly

	childTxs := []*externalapi.DomainTransaction{coinbaseTx()}
	err := p.Submit(child, headerWithRoot(childTxs, parent), childTxs)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusHeaderOnly, statusStore.status[*child], "child must not be processed before its parent's body")

	parentTxs := []*externalapi.DomainTransaction{coinbaseTx()}
	err = p.Submit(parent, headerWithRoot(parentTxs), parentTxs)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusUTXOPendingVerification, statusStore.status[*parent])
	require.Equal(t, externalapi.StatusUTXOPendingVerification, statusStore.status[*child], "child must be released once its parent's body is accepted")
}

func TestSubmitBadMerkleRootIsNonFatal(t *testing.T) {
	p, statusStore := newTestProcessor()
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusHeaderOnly

	txs := []*externalapi.DomainTransaction{coinbaseTx()}
	header := headerWithRoot(txs)
	header.HashMerkleRoot = externalapi.DomainHash{0xff}

	err := p.Submit(hash, header, txs)
	require.Error(t, err)
	require.Equal(t, externalapi.StatusHeaderOnly, statusStore.status[*hash], "a retryable rule violation must not mark the block invalid")
}

func TestSubmitKnownInvalidIsRejected(t *testing.T) {
	p, statusStore := newTestProcessor()
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusInvalid

	txs := []*externalapi.DomainTransaction{coinbaseTx()}
	err := p.Submit(hash, headerWithRoot(txs), txs)
	require.Error(t, err)
}

func TestSubmitDuplicateWithBodyIsNoOp(t *testing.T) {
	p, statusStore := newTestProcessor()
	hash := &externalapi.DomainHash{1}
	statusStore.status[*hash] = externalapi.StatusUTXOPendingVerification

	txs := []*externalapi.DomainTransaction{coinbaseTx()}
	err := p.Submit(hash, headerWithRoot(txs), txs)
	require.NoError(t, err)
}
