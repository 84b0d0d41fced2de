// Package reachabilitydatastore persists the reachability manager's
// per-block interval-tree bookkeeping (model.ReachabilityData).
package reachabilitydatastore

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var bucket = []byte("reachability")

// DefaultCacheSize bounds how many reachability records are kept warm.
const DefaultCacheSize = 10_000

// Store is the concrete, DB-backed model.ReachabilityDataStore.
type Store struct {
	db     database.DataAccessor
	access *database.CachedDBAccess[*model.ReachabilityData]
}

var _ model.ReachabilityDataStore = (*Store)(nil)

// New constructs a Store over db.
func New(db database.DataAccessor, cacheSize int) *Store {
	return &Store{
		db: db,
		access: database.NewCachedDBAccess[*model.ReachabilityData](
			db, cacheSize, bucket, serializeReachabilityData, deserializeReachabilityData,
		),
	}
}

// Get returns the reachability data stored for hash.
func (s *Store) Get(hash *externalapi.DomainHash) (*model.ReachabilityData, error) {
	return s.access.Read(*hash)
}

// Has reports whether reachability data has been recorded for hash.
func (s *Store) Has(hash *externalapi.DomainHash) (bool, error) {
	return s.access.Has(*hash)
}

// Stage writes data for hash directly, overwriting any previous value. Reachability
// data is mutable (parent links and future covering sets grow, and interval
// reallocation rewrites a whole reindexed subtree), unlike the append-only stores.
func (s *Store) Stage(hash *externalapi.DomainHash, data *model.ReachabilityData) error {
	return s.access.Write(*hash, data)
}

// StageReindexedSubtree atomically rewrites every entry in updates, used when
// interval slack exhaustion forces a subtree-wide interval reallocation.
func (s *Store) StageReindexedSubtree(updates map[externalapi.DomainHash]*model.ReachabilityData) error {
	batch := s.db.NewWriteBatch()
	for hash, data := range updates {
		hash := hash
		if err := s.access.WriteBatch(batch, hash, data); err != nil {
			return err
		}
	}
	return s.db.CommitWriteBatch(batch)
}
