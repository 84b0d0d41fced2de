package bodyprocessor

import (
	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/processes/coinbasemanager"
)

// ProcessGenesisIfNeeded commits the genesis block's body -- a single
// genesis coinbase transaction and an empty parent set -- the first time the
// genesis header reaches StatusHeaderOnly. It is a no-op once the genesis
// body is already committed, and a programming error if genesis isn't
// registered at all (its header must always be inserted first).
func (p *Processor) ProcessGenesisIfNeeded(genesisHash *externalapi.DomainHash, coinbaseManager *coinbasemanager.Manager) error {
	status, err := p.blockStatusStore.Get(genesisHash)
	if err != nil {
		return err
	}

	switch {
	case status == externalapi.StatusHeaderOnly:
		if err := p.tipsStore.Init(nil); err != nil {
			return err
		}
		header, err := p.headerStore.Header(genesisHash)
		if err != nil {
			return err
		}
		genesisCoinbase := coinbaseManager.GenesisCoinbaseTransaction()
		return p.validateAndCommit(genesisHash, header, []*externalapi.DomainTransaction{genesisCoinbase})
	case status.HasBlockBody():
		return nil
	default:
		return errors.Errorf("unexpected genesis status %s", status)
	}
}
