package blockstatusstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

func newTestStore() *Store {
	return New(database.NewMemoryAccessor(), DefaultCacheSize)
}

func TestStageInitialWriteMustBeHeaderOnly(t *testing.T) {
	store := newTestStore()
	hash := &externalapi.DomainHash{1}

	err := store.Stage(hash, externalapi.StatusUTXOValid)
	require.Error(t, err, "a never-before-seen hash can only enter at StatusHeaderOnly")

	require.NoError(t, store.Stage(hash, externalapi.StatusHeaderOnly))
	status, err := store.Get(hash)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusHeaderOnly, status)
}

func TestStageFollowsTransitionTable(t *testing.T) {
	store := newTestStore()
	hash := &externalapi.DomainHash{1}
	require.NoError(t, store.Stage(hash, externalapi.StatusHeaderOnly))

	// HeaderOnly -> UTXOValid directly is illegal; must pass through
	// UTXOPendingVerification first.
	require.Error(t, store.Stage(hash, externalapi.StatusUTXOValid))

	require.NoError(t, store.Stage(hash, externalapi.StatusUTXOPendingVerification))
	require.NoError(t, store.Stage(hash, externalapi.StatusUTXOValid))

	status, err := store.Get(hash)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusUTXOValid, status)
}

func TestStageAnyStatusCanBecomeInvalid(t *testing.T) {
	store := newTestStore()
	hash := &externalapi.DomainHash{1}
	require.NoError(t, store.Stage(hash, externalapi.StatusHeaderOnly))
	require.NoError(t, store.Stage(hash, externalapi.StatusInvalid))

	status, err := store.Get(hash)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusInvalid, status)
}

func TestStageBatchValidatesLikeStage(t *testing.T) {
	db := database.NewMemoryAccessor()
	store := New(db, DefaultCacheSize)
	hash := &externalapi.DomainHash{1}

	batch := db.NewWriteBatch()
	require.NoError(t, store.StageBatch(batch, hash, externalapi.StatusHeaderOnly))
	require.NoError(t, db.CommitWriteBatch(batch))

	status, err := store.Get(hash)
	require.NoError(t, err)
	require.Equal(t, externalapi.StatusHeaderOnly, status)

	batch = db.NewWriteBatch()
	err = store.StageBatch(batch, hash, externalapi.StatusUTXOValid)
	require.Error(t, err)
}

func TestExistsReflectsWrites(t *testing.T) {
	store := newTestStore()
	hash := &externalapi.DomainHash{1}

	exists, err := store.Exists(hash)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.Stage(hash, externalapi.StatusHeaderOnly))

	exists, err = store.Exists(hash)
	require.NoError(t, err)
	require.True(t, exists)
}
