package blockheaderstore

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

func serializeHeader(header *externalapi.DomainBlockHeader) ([]byte, error) {
	var scratch [8]byte
	buf := make([]byte, 0, 256)

	binary.LittleEndian.PutUint32(scratch[:4], uint32(header.Version))
	buf = append(buf, scratch[:4]...)

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(header.ParentsByLevel)))
	buf = append(buf, scratch[:]...)
	for _, level := range header.ParentsByLevel {
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(level)))
		buf = append(buf, scratch[:]...)
		for _, parent := range level {
			buf = append(buf, parent[:]...)
		}
	}

	buf = append(buf, header.HashMerkleRoot[:]...)
	buf = append(buf, header.AcceptedIDMerkleRoot[:]...)
	buf = append(buf, header.UTXOCommitment[:]...)

	binary.LittleEndian.PutUint64(scratch[:], uint64(header.TimeInMilliseconds))
	buf = append(buf, scratch[:]...)

	binary.LittleEndian.PutUint32(scratch[:4], header.Bits)
	buf = append(buf, scratch[:4]...)

	binary.LittleEndian.PutUint64(scratch[:], header.Nonce)
	buf = append(buf, scratch[:]...)

	binary.LittleEndian.PutUint64(scratch[:], header.DAAScore)
	buf = append(buf, scratch[:]...)

	workBytes := bigIntToLittleEndian(header.BlueWork)
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(workBytes)))
	buf = append(buf, scratch[:]...)
	buf = append(buf, workBytes...)

	binary.LittleEndian.PutUint64(scratch[:], header.BlueScore)
	buf = append(buf, scratch[:]...)

	buf = append(buf, header.PruningPoint[:]...)

	return buf, nil
}

func deserializeHeader(raw []byte) (*externalapi.DomainBlockHeader, error) {
	r := &byteReader{data: raw}

	version, err := r.uint32()
	if err != nil {
		return nil, err
	}

	levelCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	parentsByLevel := make([][]*externalapi.DomainHash, levelCount)
	for i := range parentsByLevel {
		parentCount, err := r.uint64()
		if err != nil {
			return nil, err
		}
		level := make([]*externalapi.DomainHash, parentCount)
		for j := range level {
			hashBytes, err := r.bytes(externalapi.DomainHashSize)
			if err != nil {
				return nil, err
			}
			level[j] = externalapi.NewDomainHashFromByteSlice(hashBytes)
		}
		parentsByLevel[i] = level
	}

	hashMerkleRootBytes, err := r.bytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	acceptedIDMerkleRootBytes, err := r.bytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	utxoCommitmentBytes, err := r.bytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}

	timeInMilliseconds, err := r.uint64()
	if err != nil {
		return nil, err
	}

	bits, err := r.uint32()
	if err != nil {
		return nil, err
	}

	nonce, err := r.uint64()
	if err != nil {
		return nil, err
	}

	daaScore, err := r.uint64()
	if err != nil {
		return nil, err
	}

	workLen, err := r.uint64()
	if err != nil {
		return nil, err
	}
	workBytes, err := r.bytes(int(workLen))
	if err != nil {
		return nil, err
	}

	blueScore, err := r.uint64()
	if err != nil {
		return nil, err
	}

	pruningPointBytes, err := r.bytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}

	header := &externalapi.DomainBlockHeader{
		Version:            int32(version),
		ParentsByLevel:      parentsByLevel,
		TimeInMilliseconds:  int64(timeInMilliseconds),
		Bits:                bits,
		Nonce:               nonce,
		DAAScore:            daaScore,
		BlueWork:            littleEndianToBigInt(workBytes),
		BlueScore:           blueScore,
	}
	copy(header.HashMerkleRoot[:], hashMerkleRootBytes)
	copy(header.AcceptedIDMerkleRoot[:], acceptedIDMerkleRootBytes)
	copy(header.UTXOCommitment[:], utxoCommitmentBytes)
	copy(header.PruningPoint[:], pruningPointBytes)

	return header, nil
}

func bigIntToLittleEndian(value *big.Int) []byte {
	if value == nil {
		return nil
	}
	bigEndian := value.Bytes()
	littleEndian := make([]byte, len(bigEndian))
	for i, b := range bigEndian {
		littleEndian[len(bigEndian)-1-i] = b
	}
	return littleEndian
}

func littleEndianToBigInt(data []byte) *big.Int {
	bigEndian := make([]byte, len(data))
	for i, b := range data {
		bigEndian[len(data)-1-i] = b
	}
	return new(big.Int).SetBytes(bigEndian)
}

type byteReader struct {
	data   []byte
	offset int
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, errors.New("unexpected end of DomainBlockHeader encoding")
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

func (r *byteReader) uint32() (uint32, error) {
	raw, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}
