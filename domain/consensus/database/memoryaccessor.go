package database

import (
	"sort"
	"sync"
)

// MemoryAccessor is an in-memory DataAccessor, used for tests and for
// ephemeral/dev nodes, backed by a mutex-guarded map.
type MemoryAccessor struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryAccessor creates a new, empty MemoryAccessor.
func NewMemoryAccessor() *MemoryAccessor {
	return &MemoryAccessor{data: make(map[string][]byte)}
}

func (a *MemoryAccessor) Put(key *Key, value []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	clone := make([]byte, len(value))
	copy(clone, value)
	a.data[key.String()] = clone
	return nil
}

func (a *MemoryAccessor) PutIfAbsent(key *Key, value []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.data[key.String()]; exists {
		return ErrKeyAlreadyExists(key.String())
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	a.data[key.String()] = clone
	return nil
}

func (a *MemoryAccessor) Get(key *Key) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	value, exists := a.data[key.String()]
	if !exists {
		return nil, ErrKeyNotFound(key.String())
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	return clone, nil
}

func (a *MemoryAccessor) Has(key *Key) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, exists := a.data[key.String()]
	return exists, nil
}

func (a *MemoryAccessor) Delete(key *Key) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.data, key.String())
	return nil
}

type memoryWriteBatchOp struct {
	key    *Key
	value  []byte
	delete bool
}

type memoryWriteBatch struct {
	ops []memoryWriteBatchOp
}

func (b *memoryWriteBatch) Put(key *Key, value []byte) {
	clone := make([]byte, len(value))
	copy(clone, value)
	b.ops = append(b.ops, memoryWriteBatchOp{key: key, value: clone})
}

func (b *memoryWriteBatch) Delete(key *Key) {
	b.ops = append(b.ops, memoryWriteBatchOp{key: key, delete: true})
}

func (a *MemoryAccessor) NewWriteBatch() WriteBatch {
	return &memoryWriteBatch{}
}

func (a *MemoryAccessor) CommitWriteBatch(batch WriteBatch) error {
	memBatch, ok := batch.(*memoryWriteBatch)
	if !ok {
		return ErrKeyNotFound("write batch is not a *memoryWriteBatch")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, op := range memBatch.ops {
		if op.delete {
			delete(a.data, op.key.String())
			continue
		}
		a.data[op.key.String()] = op.value
	}
	return nil
}

type memoryCursor struct {
	keys   []string
	values [][]byte
	index  int
}

func (a *MemoryAccessor) Cursor(bucket *Bucket) (Cursor, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	prefix := bucket.Path()
	var keys []string
	for k := range a.data {
		if HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = a.data[k]
	}

	return &memoryCursor{keys: keys, values: values, index: -1}, nil
}

func (c *memoryCursor) Next() bool {
	c.index++
	return c.index < len(c.keys)
}

func (c *memoryCursor) Key() (*Key, error) {
	if c.index < 0 || c.index >= len(c.keys) {
		return nil, ErrKeyNotFound("cursor out of range")
	}
	raw := []byte(c.keys[c.index])
	return &Key{bytes: raw}, nil
}

func (c *memoryCursor) Value() ([]byte, error) {
	if c.index < 0 || c.index >= len(c.values) {
		return nil, ErrKeyNotFound("cursor out of range")
	}
	return c.values[c.index], nil
}

func (c *memoryCursor) Close() error {
	return nil
}

func (a *MemoryAccessor) Close() error {
	return nil
}
