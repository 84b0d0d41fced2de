// Package blockstatusstore tracks each block's position in the validation
// state machine described by externalapi.BlockStatus, enforcing the legal
// transition table on every write.
package blockstatusstore

import (
	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var bucket = []byte("block-statuses")

// DefaultCacheSize bounds how many statuses are kept warm; every pipeline
// stage reads and writes status on its way through, so this is sized to
// cover a typical in-flight window of unconfirmed blocks.
const DefaultCacheSize = 10_000

// Store is the concrete, DB-backed model.BlockStatusStore.
type Store struct {
	access *database.CachedDBAccess[externalapi.BlockStatus]
}

var _ model.BlockStatusStore = (*Store)(nil)

// New constructs a Store over db.
func New(db database.DataAccessor, cacheSize int) *Store {
	return &Store{
		access: database.NewCachedDBAccess[externalapi.BlockStatus](
			db, cacheSize, bucket, serializeStatus, deserializeStatus,
		),
	}
}

func serializeStatus(status externalapi.BlockStatus) ([]byte, error) {
	return []byte{byte(status)}, nil
}

func deserializeStatus(data []byte) (externalapi.BlockStatus, error) {
	if len(data) != 1 {
		return 0, errors.Errorf("block status encoding must be 1 byte, got %d", len(data))
	}
	return externalapi.BlockStatus(data[0]), nil
}

// Get returns the current status of hash.
func (s *Store) Get(hash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	return s.access.Read(*hash)
}

// Exists reports whether a status has been recorded for hash.
func (s *Store) Exists(hash *externalapi.DomainHash) (bool, error) {
	return s.access.Has(*hash)
}

// Stage writes status for hash directly, validating the transition against
// whatever status (if any) is already recorded.
func (s *Store) Stage(hash *externalapi.DomainHash, status externalapi.BlockStatus) error {
	exists, err := s.access.Has(*hash)
	if err != nil {
		return err
	}

	var from externalapi.BlockStatus
	if exists {
		from, err = s.access.Read(*hash)
		if err != nil {
			return err
		}
	}

	if !externalapi.CanTransition(from, status, !exists) {
		return errors.Errorf("illegal block status transition for %s: %s -> %s", hash, from, status)
	}

	return s.access.Write(*hash, status)
}

// StageBatch queues status for hash into batch, with the same transition
// validation as Stage, for atomic commit alongside other stores' writes.
func (s *Store) StageBatch(batch database.WriteBatch, hash *externalapi.DomainHash, status externalapi.BlockStatus) error {
	exists, err := s.access.Has(*hash)
	if err != nil {
		return err
	}

	var from externalapi.BlockStatus
	if exists {
		from, err = s.access.Read(*hash)
		if err != nil {
			return err
		}
	}

	if !externalapi.CanTransition(from, status, !exists) {
		return errors.Errorf("illegal block status transition for %s: %s -> %s", hash, from, status)
	}

	return s.access.WriteBatch(batch, *hash, status)
}
