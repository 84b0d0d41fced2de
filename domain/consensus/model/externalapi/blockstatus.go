package externalapi

// BlockStatus represents the validation state of a block in the DAG.
type BlockStatus byte

const (
	// StatusHeaderOnly indicates that the block's header is accepted but its
	// body has not yet been received or validated.
	StatusHeaderOnly BlockStatus = iota

	// StatusInvalid indicates the block was permanently rejected by a fatal
	// rule violation. Any status may transition to StatusInvalid.
	StatusInvalid

	// StatusUTXOPendingVerification indicates that the block's body was
	// accepted but its UTXO transition has not yet been verified.
	StatusUTXOPendingVerification

	// StatusUTXOValid indicates the block passed full UTXO verification.
	StatusUTXOValid

	// StatusDisqualifiedFromChain indicates the block's body is valid but it
	// can never be selected as a selected parent.
	StatusDisqualifiedFromChain
)

// String implements fmt.Stringer.
func (status BlockStatus) String() string {
	switch status {
	case StatusHeaderOnly:
		return "StatusHeaderOnly"
	case StatusInvalid:
		return "StatusInvalid"
	case StatusUTXOPendingVerification:
		return "StatusUTXOPendingVerification"
	case StatusUTXOValid:
		return "StatusUTXOValid"
	case StatusDisqualifiedFromChain:
		return "StatusDisqualifiedFromChain"
	default:
		return "StatusUnknown"
	}
}

// HasBlockBody returns true iff a block with this status has its transactions stored.
func (status BlockStatus) HasBlockBody() bool {
	switch status {
	case StatusUTXOPendingVerification, StatusUTXOValid, StatusDisqualifiedFromChain:
		return true
	default:
		return false
	}
}

// IsUTXOValidOrPending returns true iff the block's body was accepted, whether or
// not its UTXO transition has been verified yet.
func (status BlockStatus) IsUTXOValidOrPending() bool {
	return status == StatusUTXOValid || status == StatusUTXOPendingVerification
}

// validPredecessors enumerates, for each status, the set of statuses a block may be
// written from. A nil entry means the status is only valid as an initial write
// (i.e. a fresh StatusHeaderOnly for a never-before-seen hash).
var validPredecessors = map[BlockStatus][]BlockStatus{
	StatusHeaderOnly:              nil,
	StatusInvalid:                 nil, // any status may transition to Invalid
	StatusUTXOPendingVerification: {StatusHeaderOnly},
	StatusUTXOValid:               {StatusUTXOPendingVerification},
	StatusDisqualifiedFromChain:   {StatusUTXOPendingVerification},
}

// CanTransition reports whether moving from `from` to `to` is a legal status
// transition per the status table. `to` == StatusInvalid is always legal, from
// any status (StatusInvalid included) and as an initial write, so re-marking
// Invalid is idempotent rather than an error.
func CanTransition(from, to BlockStatus, isInitialWrite bool) bool {
	if to == StatusInvalid {
		return true
	}
	if isInitialWrite {
		return to == StatusHeaderOnly
	}
	allowed, ok := validPredecessors[to]
	if !ok {
		return false
	}
	for _, candidate := range allowed {
		if candidate == from {
			return true
		}
	}
	return false
}
