// Package blockheaderstore is the append-only store for accepted block
// headers, keyed by block hash.
package blockheaderstore

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var bucket = []byte("headers")

// DefaultCacheSize bounds how many headers are kept warm.
const DefaultCacheSize = 10_000

// Store is the concrete, DB-backed model.HeaderStore.
type Store struct {
	access *database.CachedDBAccess[*externalapi.DomainBlockHeader]
}

var _ model.HeaderStore = (*Store)(nil)

// New constructs a Store over db.
func New(db database.DataAccessor, cacheSize int) *Store {
	return &Store{
		access: database.NewCachedDBAccess[*externalapi.DomainBlockHeader](
			db, cacheSize, bucket, serializeHeader, deserializeHeader,
		),
	}
}

// Header returns the header stored for hash.
func (s *Store) Header(hash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	return s.access.Read(*hash)
}

// HasHeader reports whether a header has been stored for hash.
func (s *Store) HasHeader(hash *externalapi.DomainHash) (bool, error) {
	return s.access.Has(*hash)
}

// Insert stores header for hash. It is an error to insert the same hash twice.
func (s *Store) Insert(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	return s.access.WriteIfAbsent(*hash, header)
}
