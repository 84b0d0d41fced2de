package reachabilitydatastore

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

var zeroHash externalapi.DomainHash

func serializeReachabilityData(data *model.ReachabilityData) ([]byte, error) {
	var scratch [8]byte
	buf := make([]byte, 0, 64+len(data.Children)*32+len(data.FutureCoveringSet)*32)

	binary.LittleEndian.PutUint64(scratch[:], data.Interval.Start)
	buf = append(buf, scratch[:]...)
	binary.LittleEndian.PutUint64(scratch[:], data.Interval.End)
	buf = append(buf, scratch[:]...)

	if data.Parent != nil {
		buf = append(buf, 1)
		buf = append(buf, data.Parent[:]...)
	} else {
		buf = append(buf, 0)
		buf = append(buf, zeroHash[:]...)
	}

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(data.Children)))
	buf = append(buf, scratch[:]...)
	for _, child := range data.Children {
		buf = append(buf, child[:]...)
	}

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(data.FutureCoveringSet)))
	buf = append(buf, scratch[:]...)
	for _, entry := range data.FutureCoveringSet {
		buf = append(buf, entry[:]...)
	}

	return buf, nil
}

func deserializeReachabilityData(raw []byte) (*model.ReachabilityData, error) {
	r := &byteReader{data: raw}

	start, err := r.uint64()
	if err != nil {
		return nil, err
	}
	end, err := r.uint64()
	if err != nil {
		return nil, err
	}

	hasParent, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	parentBytes, err := r.bytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	var parent *externalapi.DomainHash
	if hasParent[0] == 1 {
		parent = externalapi.NewDomainHashFromByteSlice(parentBytes)
	}

	childCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	children := make([]*externalapi.DomainHash, childCount)
	for i := range children {
		hashBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		children[i] = externalapi.NewDomainHashFromByteSlice(hashBytes)
	}

	fcsCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	futureCoveringSet := make([]*externalapi.DomainHash, fcsCount)
	for i := range futureCoveringSet {
		hashBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		futureCoveringSet[i] = externalapi.NewDomainHashFromByteSlice(hashBytes)
	}

	return &model.ReachabilityData{
		Interval:          model.ReachabilityInterval{Start: start, End: end},
		Parent:            parent,
		Children:          children,
		FutureCoveringSet: futureCoveringSet,
	}, nil
}

type byteReader struct {
	data   []byte
	offset int
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, errors.New("unexpected end of ReachabilityData encoding")
	}
	out := r.data[r.offset : r.offset+n]
	r.offset += n
	return out, nil
}

func (r *byteReader) uint64() (uint64, error) {
	raw, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}
