package database

import "bytes"

// Bucket groups keys under a common store-prefix byte string. Store prefixes
// in use: block-ghostdag-data, compact-block-ghostdag-data, block-at-depth,
// block-statuses, block-transactions, headers, tips, reachability.
type Bucket struct {
	prefix []byte
}

// MakeBucket builds a Bucket from a raw prefix.
func MakeBucket(prefix []byte) *Bucket {
	clone := make([]byte, len(prefix))
	copy(clone, prefix)
	return &Bucket{prefix: clone}
}

// Key builds the full store key: prefix ‖ suffix.
func (b *Bucket) Key(suffix []byte) *Key {
	fullBytes := make([]byte, len(b.prefix)+len(suffix))
	copy(fullBytes, b.prefix)
	copy(fullBytes[len(b.prefix):], suffix)
	return &Key{bytes: fullBytes, prefixLen: len(b.prefix)}
}

// Path returns the bucket's raw prefix bytes.
func (b *Bucket) Path() []byte {
	return b.prefix
}

// Key is a fully-qualified, prefixed database key.
type Key struct {
	bytes     []byte
	prefixLen int
}

// Bytes returns the full prefixed key bytes.
func (k *Key) Bytes() []byte {
	return k.bytes
}

// Suffix returns the key bytes with the bucket prefix stripped off (typically
// the hash component of the key).
func (k *Key) Suffix() []byte {
	return k.bytes[k.prefixLen:]
}

// String implements fmt.Stringer.
func (k *Key) String() string {
	return string(k.bytes)
}

// HasPrefix reports whether the key's raw bytes begin with prefix.
func HasPrefix(keyBytes, prefix []byte) bool {
	return bytes.HasPrefix(keyBytes, prefix)
}
