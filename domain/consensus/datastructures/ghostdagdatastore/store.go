// Package ghostdagdatastore is the append-only, cached store for GHOSTDAG
// ordering data, keeping the full and compact projections behind one cache
// each.
package ghostdagdatastore

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var blockGHOSTDAGDataBucket = []byte("block-ghostdag-data")
var compactGHOSTDAGDataBucket = []byte("compact-block-ghostdag-data")

// DefaultCacheSize bounds the number of GhostdagData entries kept warm per
// projection. Sized generously since entries are small and GHOSTDAG re-reads
// recent selected-parent-chain ancestors constantly while coloring mergesets.
const DefaultCacheSize = 10_000

// Store is the concrete, DB-backed model.GHOSTDAGDataStore.
type Store struct {
	full    *database.CachedDBAccess[*externalapi.BlockGHOSTDAGData]
	compact *database.CachedDBAccess[*externalapi.CompactGHOSTDAGData]
}

var _ model.GHOSTDAGDataStore = (*Store)(nil)

// New constructs a Store over db, with the given number of cached entries per projection.
func New(db database.DataAccessor, cacheSize int) *Store {
	return &Store{
		full: database.NewCachedDBAccess[*externalapi.BlockGHOSTDAGData](
			db, cacheSize, blockGHOSTDAGDataBucket, serializeGHOSTDAGData, deserializeGHOSTDAGData,
		),
		compact: database.NewCachedDBAccess[*externalapi.CompactGHOSTDAGData](
			db, cacheSize, compactGHOSTDAGDataBucket, serializeCompactGHOSTDAGData, deserializeCompactGHOSTDAGData,
		),
	}
}

// Get returns the full GhostdagData for hash.
func (s *Store) Get(hash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return s.full.Read(*hash)
}

// GetCompact returns the compact GhostdagData projection for hash.
func (s *Store) GetCompact(hash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error) {
	return s.compact.Read(*hash)
}

// Has reports whether GhostdagData has been recorded for hash.
func (s *Store) Has(hash *externalapi.DomainHash) (bool, error) {
	return s.full.Has(*hash)
}

// Insert records data for hash, in both the full and compact projections,
// directly (outside of a batch). It is an error to insert the same hash
// twice, since GhostdagData is never recomputed once finalized.
func (s *Store) Insert(hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) error {
	if err := s.full.WriteIfAbsent(*hash, data); err != nil {
		return err
	}
	return s.compact.WriteIfAbsent(*hash, data.ToCompact())
}

// InsertBatch queues data for hash into batch, for atomic commit alongside
// other stores' writes (e.g. the header stage's validateAndCommit).
func (s *Store) InsertBatch(batch database.WriteBatch, hash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) error {
	if err := s.full.WriteIfAbsentBatch(batch, *hash, data); err != nil {
		return err
	}
	return s.compact.WriteIfAbsentBatch(batch, *hash, data.ToCompact())
}
