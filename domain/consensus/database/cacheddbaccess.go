package database

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// Serializer encodes a value of type V to its stable, self-describing wire
// representation.
type Serializer[V any] func(value V) ([]byte, error)

// Deserializer decodes a value of type V from its wire representation.
type Deserializer[V any] func(data []byte) (V, error)

// CachedDBAccess is a thread-safe, read-through/write-through cache layer
// wrapping a DataAccessor for a single logical store, keyed by
// externalapi.DomainHash. Eviction is LRU-bounded by the configured cache
// size.
type CachedDBAccess[V any] struct {
	db         DataAccessor
	bucket     *Bucket
	cache      *lru.Cache[externalapi.DomainHash, V]
	serialize  Serializer[V]
	deserialize Deserializer[V]
}

// NewCachedDBAccess constructs a CachedDBAccess over the given bucket prefix.
func NewCachedDBAccess[V any](db DataAccessor, cacheSize int, prefix []byte, serialize Serializer[V], deserialize Deserializer[V]) *CachedDBAccess[V] {
	cache, err := lru.New[externalapi.DomainHash, V](cacheSize)
	if err != nil {
		// Only returns an error for a non-positive size; such a size falls back to a one-entry cache.
		cache, _ = lru.New[externalapi.DomainHash, V](1)
	}
	return &CachedDBAccess[V]{
		db:          db,
		bucket:      MakeBucket(prefix),
		cache:       cache,
		serialize:   serialize,
		deserialize: deserialize,
	}
}

func (access *CachedDBAccess[V]) key(hash externalapi.DomainHash) *Key {
	return access.bucket.Key(hash[:])
}

// Has reports whether hash has a stored value, checking the cache first.
func (access *CachedDBAccess[V]) Has(hash externalapi.DomainHash) (bool, error) {
	if _, ok := access.cache.Get(hash); ok {
		return true, nil
	}
	return access.db.Has(access.key(hash))
}

// Read fetches the value for hash, populating the cache on a miss.
func (access *CachedDBAccess[V]) Read(hash externalapi.DomainHash) (V, error) {
	if value, ok := access.cache.Get(hash); ok {
		return value, nil
	}

	var zero V
	data, err := access.db.Get(access.key(hash))
	if err != nil {
		return zero, err
	}
	value, err := access.deserialize(data)
	if err != nil {
		return zero, errors.WithStack(err)
	}
	access.cache.Add(hash, value)
	return value, nil
}

// Write stores value for hash directly (outside of a batch) and updates the cache.
func (access *CachedDBAccess[V]) Write(hash externalapi.DomainHash, value V) error {
	data, err := access.serialize(value)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := access.db.Put(access.key(hash), data); err != nil {
		return err
	}
	access.cache.Add(hash, value)
	return nil
}

// WriteIfAbsentBatch queues value for hash into batch, failing if the key
// already exists either in cache or in the underlying store. Every store's
// Insert path is append-only: this is the shared enforcement point.
func (access *CachedDBAccess[V]) WriteIfAbsentBatch(batch WriteBatch, hash externalapi.DomainHash, value V) error {
	exists, err := access.Has(hash)
	if err != nil {
		return err
	}
	if exists {
		return ErrKeyAlreadyExists(access.key(hash).String())
	}
	data, err := access.serialize(value)
	if err != nil {
		return errors.WithStack(err)
	}
	batch.Put(access.key(hash), data)
	access.cache.Add(hash, value)
	return nil
}

// WriteBatch queues value for hash into batch, overwriting any previous
// value once committed, and updates the cache immediately. Unlike
// WriteIfAbsentBatch this allows overwriting -- it backs stores whose values
// legitimately change over a block's lifetime (e.g. block status).
func (access *CachedDBAccess[V]) WriteBatch(batch WriteBatch, hash externalapi.DomainHash, value V) error {
	data, err := access.serialize(value)
	if err != nil {
		return errors.WithStack(err)
	}
	batch.Put(access.key(hash), data)
	access.cache.Add(hash, value)
	return nil
}

// WriteIfAbsent stores value for hash directly, failing if the key already exists.
func (access *CachedDBAccess[V]) WriteIfAbsent(hash externalapi.DomainHash, value V) error {
	exists, err := access.Has(hash)
	if err != nil {
		return err
	}
	if exists {
		return ErrKeyAlreadyExists(access.key(hash).String())
	}
	return access.Write(hash, value)
}
