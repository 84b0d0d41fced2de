package database

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBAccessor is the production DataAccessor, backed by the embedded
// github.com/syndtr/goleveldb key-value store.
type LevelDBAccessor struct {
	db *leveldb.DB
}

// NewLevelDBAccessor opens (or creates) a LevelDB database at path.
func NewLevelDBAccessor(path string) (*LevelDBAccessor, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening leveldb at %s", path)
	}
	return &LevelDBAccessor{db: db}, nil
}

func (a *LevelDBAccessor) Put(key *Key, value []byte) error {
	return errors.WithStack(a.db.Put(key.Bytes(), value, nil))
}

func (a *LevelDBAccessor) PutIfAbsent(key *Key, value []byte) error {
	exists, err := a.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrKeyAlreadyExists(key.String())
	}
	return a.Put(key, value)
}

func (a *LevelDBAccessor) Get(key *Key) ([]byte, error) {
	value, err := a.db.Get(key.Bytes(), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrKeyNotFound(key.String())
		}
		return nil, errors.WithStack(err)
	}
	return value, nil
}

func (a *LevelDBAccessor) Has(key *Key) (bool, error) {
	exists, err := a.db.Has(key.Bytes(), nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

func (a *LevelDBAccessor) Delete(key *Key) error {
	return errors.WithStack(a.db.Delete(key.Bytes(), nil))
}

type levelDBWriteBatch struct {
	batch *leveldb.Batch
}

func (b *levelDBWriteBatch) Put(key *Key, value []byte) {
	b.batch.Put(key.Bytes(), value)
}

func (b *levelDBWriteBatch) Delete(key *Key) {
	b.batch.Delete(key.Bytes())
}

func (a *LevelDBAccessor) NewWriteBatch() WriteBatch {
	return &levelDBWriteBatch{batch: new(leveldb.Batch)}
}

func (a *LevelDBAccessor) CommitWriteBatch(batch WriteBatch) error {
	ldbBatch, ok := batch.(*levelDBWriteBatch)
	if !ok {
		return errors.New("write batch is not a *levelDBWriteBatch")
	}
	return errors.WithStack(a.db.Write(ldbBatch.batch, nil))
}

type levelDBCursor struct {
	iterator iteratorLike
}

// iteratorLike narrows goleveldb's iterator.Iterator to what Cursor needs.
type iteratorLike interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

func (a *LevelDBAccessor) Cursor(bucket *Bucket) (Cursor, error) {
	iter := a.db.NewIterator(util.BytesPrefix(bucket.Path()), nil)
	return &levelDBCursor{iterator: iter}, nil
}

func (c *levelDBCursor) Next() bool {
	return c.iterator.Next()
}

func (c *levelDBCursor) Key() (*Key, error) {
	raw := make([]byte, len(c.iterator.Key()))
	copy(raw, c.iterator.Key())
	return &Key{bytes: raw}, nil
}

func (c *levelDBCursor) Value() ([]byte, error) {
	raw := make([]byte, len(c.iterator.Value()))
	copy(raw, c.iterator.Value())
	return raw, nil
}

func (c *levelDBCursor) Close() error {
	c.iterator.Release()
	return errors.WithStack(c.iterator.Error())
}

func (a *LevelDBAccessor) Close() error {
	return errors.WithStack(a.db.Close())
}
