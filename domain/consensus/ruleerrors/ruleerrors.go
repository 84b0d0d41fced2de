// Package ruleerrors defines the RuleError taxonomy that the consensus
// pipeline returns to callers and block-task listeners. None of these are
// recovered inside the pipeline. The body stage writes StatusInvalid for the
// fatal ones and the virtual stage for any error it hits; the header stage
// writes no status when it rejects a header. MissingParents, BadMerkleRoot
// and PrunedBlock leave status untouched.
package ruleerrors

import "github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"

// RuleError is satisfied by every error type in this package, so that callers
// can use errors.As(err, &RuleError) style assertions against the interface,
// or errors.As against a concrete type for a specific rule.
type RuleError interface {
	error
	RuleError()
}

// ErrKnownInvalid is returned when a block was previously marked Invalid.
type ErrKnownInvalid struct{}

func (e *ErrKnownInvalid) Error() string { return "block is known to be invalid" }
func (e *ErrKnownInvalid) RuleError()    {}

// ErrMissingParents is returned when one or more of a block's direct parents
// are absent from the DAG. Not fatal: the block is retried once its parents
// arrive.
type ErrMissingParents struct {
	MissingParentHashes []*externalapi.DomainHash
}

func (e *ErrMissingParents) Error() string {
	return "block has missing parents: " + joinHashes(e.MissingParentHashes)
}
func (e *ErrMissingParents) RuleError() {}

// ErrBadMerkleRoot is returned when a block body's computed merkle root
// disagrees with the root committed to by its header. Not fatal: the block
// may be resubmitted later with different transactions.
type ErrBadMerkleRoot struct {
	Expected externalapi.DomainHash
	Got      externalapi.DomainHash
}

func (e *ErrBadMerkleRoot) Error() string {
	return "block merkle root is invalid - block header indicates " + e.Expected.String() +
		", but calculated value is " + e.Got.String()
}
func (e *ErrBadMerkleRoot) RuleError() {}

// ErrPrunedBlock is returned when a block's body is rejected because its
// height falls below the pruning horizon. The header remains valid.
type ErrPrunedBlock struct{}

func (e *ErrPrunedBlock) Error() string { return "block is a pruned block" }
func (e *ErrPrunedBlock) RuleError()    {}

// ErrBadCoinbase is returned when a block's coinbase transaction is malformed.
type ErrBadCoinbase struct {
	Reason string
}

func (e *ErrBadCoinbase) Error() string { return "bad coinbase transaction: " + e.Reason }
func (e *ErrBadCoinbase) RuleError()    {}

// ErrBadTransaction is returned when a non-coinbase transaction fails validation.
type ErrBadTransaction struct {
	Reason string
}

func (e *ErrBadTransaction) Error() string { return "bad transaction: " + e.Reason }
func (e *ErrBadTransaction) RuleError()    {}

// ErrBadBlockMass is returned when a block's transaction mass exceeds the
// configured maximum.
type ErrBadBlockMass struct{}

func (e *ErrBadBlockMass) Error() string { return "block mass exceeds the maximum allowed" }
func (e *ErrBadBlockMass) RuleError()    {}

// ErrBadTimestamp is returned when a block's timestamp fails the past median
// time check.
type ErrBadTimestamp struct {
	Reason string
}

func (e *ErrBadTimestamp) Error() string { return "bad timestamp: " + e.Reason }
func (e *ErrBadTimestamp) RuleError()    {}

// ErrBadPow is returned when a block's proof of work does not meet its target.
type ErrBadPow struct{}

func (e *ErrBadPow) Error() string { return "block does not meet the required proof of work" }
func (e *ErrBadPow) RuleError()    {}

// ErrBadParents is returned when a block's declared parent set is structurally
// invalid (e.g. duplicate parents, parents not partitioned correctly by level).
type ErrBadParents struct {
	Reason string
}

func (e *ErrBadParents) Error() string { return "bad parents: " + e.Reason }
func (e *ErrBadParents) RuleError()    {}

// ErrUnfinalizedTx is returned when a transaction's lock time or sequence
// number has not yet finalized against the block's past median time.
type ErrUnfinalizedTx struct{}

func (e *ErrUnfinalizedTx) Error() string { return "transaction is not finalized" }
func (e *ErrUnfinalizedTx) RuleError()    {}

func joinHashes(hashes []*externalapi.DomainHash) string {
	s := ""
	for i, hash := range hashes {
		if i > 0 {
			s += ", "
		}
		s += hash.String()
	}
	return s
}
