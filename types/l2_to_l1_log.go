package types

import (
	"encoding/binary"
	"fmt"
)

// L2ToL1LogSerializeSize is the size of the packed L2ToL1Log encoding.
const L2ToL1LogSerializeSize = 1 + 1 + 2 + AddressLength + HashLength + HashLength

type (
	// L2ToL1Log is a log record sent to the outer settlement layer.
	L2ToL1Log struct {
		_               struct{} `cbor:",toarray"`
		ShardID         uint8    `json:"shardId"`
		IsService       bool     `json:"isService"`
		TxNumberInBlock uint16   `json:"txNumberInBlock"`
		Sender          Address  `json:"sender"`
		Key             H256     `json:"key"`
		Value           H256     `json:"value"`
	}

	// UserL2ToL1Log is a L2ToL1Log emitted on behalf of the user (ie via
	// the L1 messenger contract).
	UserL2ToL1Log L2ToL1Log

	// SystemL2ToL1Log is a L2ToL1Log emitted by the system itself
	// (bootloader, system contracts).
	SystemL2ToL1Log L2ToL1Log
)

/*
Bytes returns the packed encoding of the log:

	shardId(1) | isService(1) | txNumberInBlock(2) | sender(20) | key(32) | value(32)
*/
func (l *L2ToL1Log) Bytes() []byte {
	res := make([]byte, 0, L2ToL1LogSerializeSize)
	res = append(res, l.ShardID)
	if l.IsService {
		res = append(res, 1)
	} else {
		res = append(res, 0)
	}
	res = binary.BigEndian.AppendUint16(res, l.TxNumberInBlock)
	res = append(res, l.Sender.Bytes()...)
	res = append(res, l.Key.Bytes()...)
	res = append(res, l.Value.Bytes()...)
	return res
}

// L2ToL1LogFromBytes decodes the packed encoding returned by L2ToL1Log.Bytes.
func L2ToL1LogFromBytes(data []byte) (*L2ToL1Log, error) {
	if len(data) != L2ToL1LogSerializeSize {
		return nil, fmt.Errorf("invalid L2ToL1Log length %d, expected %d", len(data), L2ToL1LogSerializeSize)
	}
	if data[1] > 1 {
		return nil, fmt.Errorf("invalid isService flag %d", data[1])
	}
	l := &L2ToL1Log{
		ShardID:         data[0],
		IsService:       data[1] == 1,
		TxNumberInBlock: binary.BigEndian.Uint16(data[2:4]),
	}
	data = data[4:]
	copy(l.Sender[:], data[:AddressLength])
	data = data[AddressLength:]
	copy(l.Key[:], data[:HashLength])
	copy(l.Value[:], data[HashLength:])
	return l, nil
}
