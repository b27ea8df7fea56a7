package types

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	AddressLength = common.AddressLength
	HashLength    = common.HashLength
)

type (
	// Address is the 20 byte account address of the VM.
	Address = common.Address
	// H256 is a 32 byte word (storage key, event topic, hash etc).
	H256 = common.Hash

	// L1BatchNumber is the sequence number of the batch settled on the outer layer.
	L1BatchNumber uint32
)

func (n L1BatchNumber) String() string {
	return fmt.Sprintf("#%d", uint32(n))
}

func (n L1BatchNumber) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(n))
}

// Next returns the number of the batch following n.
func (n L1BatchNumber) Next() L1BatchNumber {
	return n + 1
}

/*
AddressFromUint16 returns address with n in the two lowest bytes, all other
bytes are zero. System contracts live in this kernel space address range.
*/
func AddressFromUint16(n uint16) Address {
	var addr Address
	binary.BigEndian.PutUint16(addr[AddressLength-2:], n)
	return addr
}

// IsZero returns true when all the bytes of h are zero.
func IsZero(h H256) bool {
	return h == H256{}
}
