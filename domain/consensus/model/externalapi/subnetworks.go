package externalapi

import (
	"encoding/hex"
)

// DomainSubnetworkIDSize is the size of the array used to store subnetwork IDs.
const DomainSubnetworkIDSize = 20

// DomainSubnetworkID is the domain representation of a subnetwork ID.
type DomainSubnetworkID [DomainSubnetworkIDSize]byte

// String returns the hex representation of the subnetwork ID.
func (id DomainSubnetworkID) String() string {
	return hex.EncodeToString(id[:])
}

// Equal returns whether id equals other.
func (id *DomainSubnetworkID) Equal(other *DomainSubnetworkID) bool {
	if id == nil || other == nil {
		return id == other
	}
	return *id == *other
}

func subnetworkIDFromByte(b byte) DomainSubnetworkID {
	var id DomainSubnetworkID
	id[0] = b
	return id
}

var (
	// SubnetworkIDNative is the default subnetwork ID used for transactions
	// without subnetwork-specific payload data.
	SubnetworkIDNative = subnetworkIDFromByte(0)

	// SubnetworkIDCoinbase is the subnetwork ID used for coinbase transactions.
	SubnetworkIDCoinbase = subnetworkIDFromByte(1)

	// SubnetworkIDRegistry is the subnetwork ID used for registering new subnetworks.
	SubnetworkIDRegistry = subnetworkIDFromByte(2)
)

// IsBuiltIn returns true if the subnetwork is one of the built-in subnetworks, which
// means all nodes, including partial nodes, must validate it, and its transactions
// always use zero gas.
func (id *DomainSubnetworkID) IsBuiltIn() bool {
	return id.Equal(&SubnetworkIDCoinbase) || id.Equal(&SubnetworkIDRegistry)
}

// IsBuiltInOrNative returns true if the subnetwork is the native subnetwork or a
// built-in one.
func (id *DomainSubnetworkID) IsBuiltInOrNative() bool {
	return id.Equal(&SubnetworkIDNative) || id.IsBuiltIn()
}
