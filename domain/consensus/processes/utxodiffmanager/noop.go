// Package utxodiffmanager provides a minimal model.UTXODiffManager. Full
// UTXO-set diff machinery is explicitly out of this core's scope; this
// stand-in lets the virtual/UTXO pipeline stage run
// end-to-end by accepting every block's UTXO transition unconditionally,
// standing in for whatever real verification a full node would supply.
package utxodiffmanager

import "github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"

// AcceptAllManager accepts every block's UTXO transition as valid.
type AcceptAllManager struct{}

// New constructs an AcceptAllManager.
func New() *AcceptAllManager {
	return &AcceptAllManager{}
}

// VerifyAndApplyUTXOTransition always reports StatusUTXOValid, ignoring
// mergeSetOrder since there is no UTXO set here to replay it against.
func (m *AcceptAllManager) VerifyAndApplyUTXOTransition(hash *externalapi.DomainHash, mergeSetOrder []*externalapi.DomainHash) (externalapi.BlockStatus, error) {
	return externalapi.StatusUTXOValid, nil
}
