package externalapi

import "encoding/hex"

// DomainHashSize is the size in bytes of a DomainHash. A hash is already
// a cryptographic digest by the time it reaches the core, so DomainHash
// does no hashing of its own -- it is a content-addressed identifier.
const DomainHashSize = 32

// DomainHash is the domain representation of a consensus hash.
type DomainHash [DomainHashSize]byte

// String returns the hex representation of the hash, most significant byte first.
func (hash DomainHash) String() string {
	return hex.EncodeToString(hash[:])
}

// Equal returns whether hash equals other.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return *hash == *other
}

// Less returns true iff hash is lexicographically smaller than other, byte by byte,
// most significant byte first. This is the canonical tie-breaker used throughout
// GHOSTDAG whenever two blocks compare equal on blue work.
func (hash *DomainHash) Less(other *DomainHash) bool {
	for i := range hash {
		if hash[i] != other[i] {
			return hash[i] < other[i]
		}
	}
	return false
}

// ByteSlice returns a copy of the hash as a byte slice.
func (hash *DomainHash) ByteSlice() []byte {
	clone := make([]byte, DomainHashSize)
	copy(clone, hash[:])
	return clone
}

// NewDomainHashFromByteSlice returns a new DomainHash using the given byte slice.
func NewDomainHashFromByteSlice(slice []byte) *DomainHash {
	var hash DomainHash
	copy(hash[:], slice)
	return &hash
}

// HashesEqual returns whether the given hash slices are equal, element-wise, in order.
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// DomainHashSet is a set of hashes.
type DomainHashSet map[DomainHash]struct{}

// NewDomainHashSet creates a new, empty DomainHashSet.
func NewDomainHashSet(hashes ...*DomainHash) DomainHashSet {
	set := make(DomainHashSet, len(hashes))
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

// Add inserts hash into the set.
func (set DomainHashSet) Add(hash *DomainHash) {
	set[*hash] = struct{}{}
}

// Remove deletes hash from the set, if present.
func (set DomainHashSet) Remove(hash *DomainHash) {
	delete(set, *hash)
}

// Contains returns whether hash is a member of the set.
func (set DomainHashSet) Contains(hash *DomainHash) bool {
	_, ok := set[*hash]
	return ok
}

// BlockHasher produces a small, fast, non-cryptographic hash derived from a
// DomainHash's first 8 bytes, suitable for use as a Go map key hint. The
// caller's key remains the DomainHash itself; the hashes package never
// contributes entropy beyond what already exists in the block hash.
func BlockHasher(hash DomainHash) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(hash[i])
	}
	return v
}
