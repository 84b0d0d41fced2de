package ghostdagdatastore

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// serializeGHOSTDAGData encodes a BlockGHOSTDAGData using a fixed field
// order: blue_score u64-LE, blue_work as a length-prefixed
// big-unsigned LE, a 1-byte selected_parent presence flag followed by 32
// bytes when present, mergeset_blues as u64 count + 32*count, mergeset_reds
// likewise, and blues_anticone_sizes as u64 count + (32+1)*count.
//
// Genesis is the only block with a nil SelectedParent (it has no ancestors),
// and pastmediantimemanager's selected-chain walk relies on that nil
// surviving a store round trip to know where to stop.
func serializeGHOSTDAGData(data *externalapi.BlockGHOSTDAGData) ([]byte, error) {
	buf := make([]byte, 0, 64+len(data.MergeSetBlues)*32+len(data.MergeSetReds)*32+len(data.BluesAnticoneSizes)*33)

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], data.BlueScore)
	buf = append(buf, scratch[:]...)

	workBytes := bigIntToLittleEndian(data.BlueWork)
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(workBytes)))
	buf = append(buf, scratch[:]...)
	buf = append(buf, workBytes...)

	if data.SelectedParent == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = append(buf, data.SelectedParent[:]...)
	}

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(data.MergeSetBlues)))
	buf = append(buf, scratch[:]...)
	for _, blue := range data.MergeSetBlues {
		buf = append(buf, blue[:]...)
	}

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(data.MergeSetReds)))
	buf = append(buf, scratch[:]...)
	for _, red := range data.MergeSetReds {
		buf = append(buf, red[:]...)
	}

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(data.BluesAnticoneSizes)))
	buf = append(buf, scratch[:]...)
	// Map iteration order is randomized by Go; since mergeset_blues already
	// fixes a canonical order, anticone sizes are written in that same order
	// (plus the selected parent) so re-serializing a freshly-deserialized
	// value is deterministic.
	written := make(map[externalapi.DomainHash]bool, len(data.BluesAnticoneSizes))
	for _, blue := range data.MergeSetBlues {
		size, ok := data.BluesAnticoneSizes[*blue]
		if !ok {
			continue
		}
		buf = append(buf, blue[:]...)
		buf = append(buf, byte(size))
		written[*blue] = true
	}
	for hash, size := range data.BluesAnticoneSizes {
		if written[hash] {
			continue
		}
		buf = append(buf, hash[:]...)
		buf = append(buf, byte(size))
	}

	return buf, nil
}

func deserializeGHOSTDAGData(raw []byte) (*externalapi.BlockGHOSTDAGData, error) {
	r := &byteReader{data: raw}

	blueScore, err := r.uint64()
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
	blueWork := littleEndianToBigInt(workBytes)

	hasSelectedParent, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	var selectedParent *externalapi.DomainHash
	if hasSelectedParent[0] != 0 {
		selectedParentBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		selectedParent = externalapi.NewDomainHashFromByteSlice(selectedParentBytes)
	}

	bluesCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	mergeSetBlues := make([]*externalapi.DomainHash, bluesCount)
	for i := range mergeSetBlues {
		hashBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		mergeSetBlues[i] = externalapi.NewDomainHashFromByteSlice(hashBytes)
	}

	redsCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	mergeSetReds := make([]*externalapi.DomainHash, redsCount)
	for i := range mergeSetReds {
		hashBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		mergeSetReds[i] = externalapi.NewDomainHashFromByteSlice(hashBytes)
	}

	anticoneCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	bluesAnticoneSizes := make(map[externalapi.DomainHash]externalapi.KType, anticoneCount)
	for i := uint64(0); i < anticoneCount; i++ {
		hashBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		sizeByte, err := r.bytes(1)
		if err != nil {
			return nil, err
		}
		hash := externalapi.NewDomainHashFromByteSlice(hashBytes)
		bluesAnticoneSizes[*hash] = externalapi.KType(sizeByte[0])
	}

	return externalapi.NewBlockGHOSTDAGData(blueScore, blueWork, selectedParent, mergeSetBlues, mergeSetReds, bluesAnticoneSizes), nil
}

func serializeCompactGHOSTDAGData(data *externalapi.CompactGHOSTDAGData) ([]byte, error) {
	buf := make([]byte, 0, 48)
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], data.BlueScore)
	buf = append(buf, scratch[:]...)

	workBytes := bigIntToLittleEndian(data.BlueWork)
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(workBytes)))
	buf = append(buf, scratch[:]...)
	buf = append(buf, workBytes...)

	if data.SelectedParent == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = append(buf, data.SelectedParent[:]...)
	}
	return buf, nil
}

func deserializeCompactGHOSTDAGData(raw []byte) (*externalapi.CompactGHOSTDAGData, error) {
	r := &byteReader{data: raw}
	blueScore, err := r.uint64()
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
	hasSelectedParent, err := r.bytes(1)
	if err != nil {
		return nil, err
	}
	var selectedParent *externalapi.DomainHash
	if hasSelectedParent[0] != 0 {
		selectedParentBytes, err := r.bytes(externalapi.DomainHashSize)
		if err != nil {
			return nil, err
		}
		selectedParent = externalapi.NewDomainHashFromByteSlice(selectedParentBytes)
	}
	return &externalapi.CompactGHOSTDAGData{
		BlueScore:      blueScore,
		BlueWork:       littleEndianToBigInt(workBytes),
		SelectedParent: selectedParent,
	}, nil
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
		return nil, errors.New("unexpected end of GhostdagData encoding")
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
