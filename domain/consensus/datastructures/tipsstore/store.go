// Package tipsstore maintains the set of body-accepted blocks that are not
// yet any other block's parent: adding a new tip removes its direct parents
// from the set, since a block that has been built upon is no longer a tip.
package tipsstore

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var bucket = []byte("tips")

// tipsKey is the single fixed suffix the whole tip set is stored under; the
// set is small (bounded by DAG width, not height) so it is not worth
// key-per-hash fan-out.
var tipsKey = []byte("current")

// Store is the concrete, DB-backed model.TipsStore. Reads and writes are
// serialized through a mutex since AddTip is a read-modify-write over the
// single shared set.
type Store struct {
	mutex  sync.Mutex
	db     database.DataAccessor
	bucket *database.Bucket
	cache  []*externalapi.DomainHash
	warm   bool
}

var _ model.TipsStore = (*Store)(nil)

// New constructs a Store over db.
func New(db database.DataAccessor) *Store {
	return &Store{db: db, bucket: database.MakeBucket(bucket)}
}

// Init seeds the tip set (used to record the genesis block as the sole
// initial tip). It is an error to call Init more than once.
func (s *Store) Init(tips []*externalapi.DomainHash) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := s.bucket.Key(tipsKey)
	exists, err := s.db.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("tips store already initialized")
	}

	data, err := serializeTips(tips)
	if err != nil {
		return err
	}
	if err := s.db.Put(key, data); err != nil {
		return err
	}
	s.cache = tips
	s.warm = true
	return nil
}

// Tips returns the current tip set.
func (s *Store) Tips() ([]*externalapi.DomainHash, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.tipsLocked()
}

func (s *Store) tipsLocked() ([]*externalapi.DomainHash, error) {
	if s.warm {
		return s.cache, nil
	}
	data, err := s.db.Get(s.bucket.Key(tipsKey))
	if err != nil {
		return nil, err
	}
	tips, err := deserializeTips(data)
	if err != nil {
		return nil, err
	}
	s.cache = tips
	s.warm = true
	return tips, nil
}

// AddTip adds hash to the tip set and removes any of parents that were
// previously tips, directly (outside of a batch).
func (s *Store) AddTip(hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next, err := s.nextTipsLocked(hash, parents)
	if err != nil {
		return err
	}

	data, err := serializeTips(next)
	if err != nil {
		return err
	}
	if err := s.db.Put(s.bucket.Key(tipsKey), data); err != nil {
		return err
	}
	s.cache = next
	s.warm = true
	return nil
}

// AddTipBatch queues the same update as AddTip into batch, for atomic commit
// alongside other stores' writes.
func (s *Store) AddTipBatch(batch database.WriteBatch, hash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next, err := s.nextTipsLocked(hash, parents)
	if err != nil {
		return err
	}

	data, err := serializeTips(next)
	if err != nil {
		return err
	}
	batch.Put(s.bucket.Key(tipsKey), data)
	s.cache = next
	s.warm = true
	return nil
}

func (s *Store) nextTipsLocked(hash *externalapi.DomainHash, parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	current, err := s.tipsLocked()
	if err != nil {
		return nil, err
	}

	parentSet := externalapi.NewDomainHashSet(parents...)
	next := make([]*externalapi.DomainHash, 0, len(current)+1)
	for _, tip := range current {
		if parentSet.Contains(tip) {
			continue
		}
		next = append(next, tip)
	}
	next = append(next, hash)
	return next, nil
}

func serializeTips(tips []*externalapi.DomainHash) ([]byte, error) {
	var scratch [8]byte
	buf := make([]byte, 0, 8+len(tips)*externalapi.DomainHashSize)
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(tips)))
	buf = append(buf, scratch[:]...)
	for _, tip := range tips {
		buf = append(buf, tip[:]...)
	}
	return buf, nil
}

func deserializeTips(raw []byte) ([]*externalapi.DomainHash, error) {
	if len(raw) < 8 {
		return nil, errors.New("unexpected end of tip set encoding")
	}
	count := binary.LittleEndian.Uint64(raw[:8])
	raw = raw[8:]
	tips := make([]*externalapi.DomainHash, count)
	for i := range tips {
		if len(raw) < externalapi.DomainHashSize {
			return nil, errors.New("unexpected end of tip set encoding")
		}
		tips[i] = externalapi.NewDomainHashFromByteSlice(raw[:externalapi.DomainHashSize])
		raw = raw[externalapi.DomainHashSize:]
	}
	return tips, nil
}
