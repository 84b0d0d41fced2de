// Package blocktransactionsstore is the append-only store for accepted block
// bodies (transaction lists), keyed by block hash.
package blocktransactionsstore

import (
	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var bucket = []byte("block-transactions")

// DefaultCacheSize bounds how many bodies are kept warm.
const DefaultCacheSize = 2_000

// Store is the concrete, DB-backed model.BlockTransactionsStore.
type Store struct {
	access *database.CachedDBAccess[[]*externalapi.DomainTransaction]
}

var _ model.BlockTransactionsStore = (*Store)(nil)

// New constructs a Store over db.
func New(db database.DataAccessor, cacheSize int) *Store {
	return &Store{
		access: database.NewCachedDBAccess[[]*externalapi.DomainTransaction](
			db, cacheSize, bucket, serializeTransactions, deserializeTransactions,
		),
	}
}

// Get returns the transaction list stored for hash.
func (s *Store) Get(hash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	return s.access.Read(*hash)
}

// Has reports whether a transaction list has been stored for hash.
func (s *Store) Has(hash *externalapi.DomainHash) (bool, error) {
	return s.access.Has(*hash)
}

// Insert stores transactions for hash. It is an error to insert the same
// hash twice.
func (s *Store) Insert(hash *externalapi.DomainHash, transactions []*externalapi.DomainTransaction) error {
	return s.access.WriteIfAbsent(*hash, transactions)
}

// InsertBatch queues transactions for hash into batch, for atomic commit
// alongside other stores' writes (the body stage's validateAndCommit).
func (s *Store) InsertBatch(batch database.WriteBatch, hash *externalapi.DomainHash, transactions []*externalapi.DomainTransaction) error {
	return s.access.WriteIfAbsentBatch(batch, *hash, transactions)
}
