// Package depthstore holds each block's merge-depth root and finality point.
package depthstore

import (
	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/database"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var bucket = []byte("block-at-depth")

// DefaultCacheSize bounds how many depth records are kept warm.
const DefaultCacheSize = 10_000

// Store is the concrete, DB-backed model.DepthStore.
type Store struct {
	access *database.CachedDBAccess[*externalapi.BlockDepthInfo]
}

var _ model.DepthStore = (*Store)(nil)

// New constructs a Store over db.
func New(db database.DataAccessor, cacheSize int) *Store {
	return &Store{
		access: database.NewCachedDBAccess[*externalapi.BlockDepthInfo](
			db, cacheSize, bucket, serializeDepthInfo, deserializeDepthInfo,
		),
	}
}

// Get returns the depth info stored for hash.
func (s *Store) Get(hash *externalapi.DomainHash) (*externalapi.BlockDepthInfo, error) {
	return s.access.Read(*hash)
}

// Insert stores info for hash. It is an error to insert the same hash twice.
func (s *Store) Insert(hash *externalapi.DomainHash, info *externalapi.BlockDepthInfo) error {
	return s.access.WriteIfAbsent(*hash, info)
}

func serializeDepthInfo(info *externalapi.BlockDepthInfo) ([]byte, error) {
	buf := make([]byte, 0, externalapi.DomainHashSize*2)
	buf = append(buf, info.MergeDepthRoot[:]...)
	buf = append(buf, info.FinalityPoint[:]...)
	return buf, nil
}

func deserializeDepthInfo(raw []byte) (*externalapi.BlockDepthInfo, error) {
	if len(raw) != externalapi.DomainHashSize*2 {
		return nil, errors.Errorf("block depth info encoding must be %d bytes, got %d", externalapi.DomainHashSize*2, len(raw))
	}
	return &externalapi.BlockDepthInfo{
		MergeDepthRoot: externalapi.NewDomainHashFromByteSlice(raw[:externalapi.DomainHashSize]),
		FinalityPoint:  externalapi.NewDomainHashFromByteSlice(raw[externalapi.DomainHashSize:]),
	}, nil
}
