package database

// Cursor iterates over all keys within a bucket's prefix range, in key order.
type Cursor interface {
	Next() bool
	Key() (*Key, error)
	Value() ([]byte, error)
	Close() error
}

// WriteBatch collects a set of puts across one or more logical stores to be
// committed atomically. A batch is not applied until passed to
// DataAccessor.WriteBatch.
type WriteBatch interface {
	Put(key *Key, value []byte)
	Delete(key *Key)
}

// DataAccessor is the persistent key-value interface the consensus core
// consumes: point read/write, atomic batched write, and prefix scan. Two
// implementations are provided: MemoryAccessor (tests, ephemeral nodes) and
// LevelDBAccessor (production, github.com/syndtr/goleveldb).
type DataAccessor interface {
	// Put sets the value for the given key, overwriting any previous value.
	Put(key *Key, value []byte) error

	// PutIfAbsent sets the value for the given key only if it does not
	// already exist, returning ErrCodeKeyAlreadyExists otherwise. Append-only
	// stores enforce the same "no key is ever overwritten" invariant through
	// CachedDBAccess.WriteIfAbsent/WriteIfAbsentBatch, which probe Has before
	// Put, rather than through this method.
	PutIfAbsent(key *Key, value []byte) error

	// Get returns the value for the given key, or a StoreError with
	// ErrCodeKeyNotFound if it does not exist.
	Get(key *Key) ([]byte, error)

	// Has reports whether the given key exists.
	Has(key *Key) (bool, error)

	// Delete removes the value for the given key. It is not an error if the
	// key does not exist.
	Delete(key *Key) error

	// NewWriteBatch starts a new, empty write batch.
	NewWriteBatch() WriteBatch

	// CommitWriteBatch atomically applies all puts/deletes queued in batch.
	CommitWriteBatch(batch WriteBatch) error

	// Cursor begins a new cursor over all keys within the given bucket.
	Cursor(bucket *Bucket) (Cursor, error)

	// Close releases any underlying resources.
	Close() error
}
