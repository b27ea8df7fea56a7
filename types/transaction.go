package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zkvm-go/vm-interface/cbor"
	abhash "github.com/zkvm-go/vm-interface/hash"
)

var ErrTransactionIsNil = errors.New("transaction is nil")

type (
	// Execute is the part of the transaction describing what is executed.
	Execute struct {
		_ struct{} `cbor:",toarray"`
		// ContractAddress is nil for deployment transactions.
		ContractAddress *Address        `json:"contractAddress"`
		Calldata        hexutil.Bytes   `json:"calldata"`
		Value           U256            `json:"value"`
		FactoryDeps     []hexutil.Bytes `json:"factoryDeps"`
	}

	Transaction struct {
		_                   struct{} `cbor:",toarray"`
		Version             Version  `json:"version"`
		InitiatorAccount    Address  `json:"initiatorAccount"`
		Nonce               uint32   `json:"nonce"`
		GasLimit            U256     `json:"gasLimit"`
		Execute             Execute  `json:"execute"`
		ReceivedTimestampMs uint64   `json:"receivedTimestampMs"`
	}
)

func (t *Transaction) GetVersion() Version {
	if t == nil || t.Version == 0 {
		return 1
	}
	return t.Version
}

/*
GasLimitU64 returns the gas limit of the transaction as uint64. Transactions
admitted to execution always have gas limit which fits into uint64 so
anything else is a programming error and causes panic.
*/
func (t *Transaction) GasLimitU64() uint64 {
	if !t.GasLimit.IsUint64() {
		panic(fmt.Errorf("gas limit %s of the transaction doesn't fit into uint64", t.GasLimit))
	}
	return t.GasLimit.Uint64()
}

func (t *Transaction) IsDeployment() bool {
	return t.Execute.ContractAddress == nil
}

// Hash returns Keccak-256 hash of the CBOR encoding of the transaction.
func (t *Transaction) Hash() H256 {
	return abhash.Keccak256(t)
}

func (t *Transaction) IsValid() error {
	if t == nil {
		return ErrTransactionIsNil
	}
	if t.GetVersion() != 1 {
		return ErrInvalidVersion(t)
	}
	if !t.GasLimit.IsUint64() {
		return fmt.Errorf("gas limit %s exceeds uint64", t.GasLimit)
	}
	return nil
}

func (t *Transaction) MarshalCBOR() ([]byte, error) {
	type alias Transaction
	if t.Version == 0 {
		t.Version = t.GetVersion()
	}
	return cbor.MarshalTaggedValue(TransactionTag, (*alias)(t))
}

func (t *Transaction) UnmarshalCBOR(data []byte) error {
	type alias Transaction
	if err := cbor.UnmarshalTaggedValue(TransactionTag, data, (*alias)(t)); err != nil {
		return err
	}
	return EnsureVersion(t, t.Version, 1)
}
