// Package coinbasemanager builds and parses the coinbase payload format: an
// 8-byte little-endian blue score, an 8-byte little-endian subsidy, a 2-byte
// script version, a varint script length, the script itself, and a trailing
// ASCII network tag.
package coinbasemanager

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/config"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// Manager builds and parses coinbase transactions and their payloads.
type Manager struct {
	cfg *config.Config
}

// New constructs a Manager.
func New(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// BuildPayload encodes a coinbase payload for the given blue score, subsidy,
// locking script and network tag.
func BuildPayload(blueScore, subsidy uint64, scriptPubKey *externalapi.ScriptPublicKey, networkTag string) []byte {
	buf := make([]byte, 0, 19+len(scriptPubKey.Script)+len(networkTag))

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], blueScore)
	buf = append(buf, scratch[:]...)

	binary.LittleEndian.PutUint64(scratch[:], subsidy)
	buf = append(buf, scratch[:]...)

	var versionScratch [2]byte
	binary.LittleEndian.PutUint16(versionScratch[:], scriptPubKey.Version)
	buf = append(buf, versionScratch[:]...)

	buf = append(buf, byte(len(scriptPubKey.Script)))
	buf = append(buf, scriptPubKey.Script...)
	buf = append(buf, []byte(networkTag)...)

	return buf
}

// ParsePayload decodes a coinbase payload back into its blue score, subsidy,
// locking script and network tag.
func ParsePayload(payload []byte) (blueScore, subsidy uint64, scriptPubKey *externalapi.ScriptPublicKey, networkTag string, err error) {
	if len(payload) < 19 {
		return 0, 0, nil, "", errors.Errorf("coinbase payload too short: %d bytes", len(payload))
	}

	blueScore = binary.LittleEndian.Uint64(payload[0:8])
	subsidy = binary.LittleEndian.Uint64(payload[8:16])
	scriptVersion := binary.LittleEndian.Uint16(payload[16:18])
	scriptLen := int(payload[18])

	if len(payload) < 19+scriptLen {
		return 0, 0, nil, "", errors.Errorf("coinbase payload too short for declared script length %d", scriptLen)
	}

	script := append([]byte(nil), payload[19:19+scriptLen]...)
	networkTag = string(payload[19+scriptLen:])

	scriptPubKey = &externalapi.ScriptPublicKey{Script: script, Version: scriptVersion}
	return blueScore, subsidy, scriptPubKey, networkTag, nil
}

// GenesisCoinbaseTransaction builds the network's genesis coinbase
// transaction: zero blue score, the configured genesis subsidy, an OP-FALSE
// placeholder script, and the network's tag.
func (m *Manager) GenesisCoinbaseTransaction() *externalapi.DomainTransaction {
	payload := BuildPayload(0, m.cfg.SubsidyGenesisReward, &externalapi.ScriptPublicKey{Script: []byte{0x00}, Version: 0}, m.cfg.NetworkTag)

	return &externalapi.DomainTransaction{
		Version:      0,
		Inputs:       nil,
		Outputs:      nil,
		LockTime:     0,
		SubnetworkID: externalapi.SubnetworkIDCoinbase,
		Gas:          0,
		Payload:      payload,
	}
}

// ExpectedCoinbaseTransaction builds the coinbase transaction a block at
// blueScore should carry, paying out subsidy to the miner-supplied coinbase
// data's script, tagged with the manager's configured network.
func (m *Manager) ExpectedCoinbaseTransaction(blueScore, subsidy uint64, coinbaseData *externalapi.DomainCoinbaseData) *externalapi.DomainTransaction {
	payload := BuildPayload(blueScore, subsidy, coinbaseData.ScriptPublicKey, m.cfg.NetworkTag)
	payload = append(payload, coinbaseData.ExtraData...)

	return &externalapi.DomainTransaction{
		Version: 0,
		Inputs:  nil,
		Outputs: []*externalapi.DomainTransactionOutput{
			{Value: subsidy, ScriptPublicKey: coinbaseData.ScriptPublicKey},
		},
		LockTime:     0,
		SubnetworkID: externalapi.SubnetworkIDCoinbase,
		Gas:          0,
		Payload:      payload,
	}
}
