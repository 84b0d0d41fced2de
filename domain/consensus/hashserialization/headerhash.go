// Package hashserialization computes the content hash that identifies a
// block header within the DAG, using the same double-SHA256 scheme
// blockvalidator.ComputeHashMerkleRoot uses for transaction IDs; no library
// expresses header hashing more tersely than stdlib crypto/sha256 over a
// deterministic field encoding.
package hashserialization

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// HeaderHash returns the block hash a header identifies itself by: the
// double-SHA256 digest of its serialized fields, nonce included, since the
// nonce is exactly what proof-of-work mining searches over.
func HeaderHash(header *externalapi.DomainBlockHeader) externalapi.DomainHash {
	h := sha256.New()

	var scratch [8]byte
	binary.LittleEndian.PutUint32(scratch[:4], uint32(header.Version))
	h.Write(scratch[:4])

	for _, level := range header.ParentsByLevel {
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(level)))
		h.Write(scratch[:])
		for _, parent := range level {
			h.Write(parent[:])
		}
	}

	h.Write(header.HashMerkleRoot[:])
	h.Write(header.AcceptedIDMerkleRoot[:])
	h.Write(header.UTXOCommitment[:])

	binary.LittleEndian.PutUint64(scratch[:], uint64(header.TimeInMilliseconds))
	h.Write(scratch[:])

	binary.LittleEndian.PutUint32(scratch[:4], header.Bits)
	h.Write(scratch[:4])

	binary.LittleEndian.PutUint64(scratch[:], header.Nonce)
	h.Write(scratch[:])

	digest := h.Sum(nil)
	digest2 := sha256.Sum256(digest)

	var hash externalapi.DomainHash
	copy(hash[:], digest2[:])
	return hash
}
