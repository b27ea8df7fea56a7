package vmtest

import (
	"testing"

	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/vm"
)

type TxOption func(*types.Transaction)

func WithGasLimit(gasLimit uint64) TxOption {
	return func(tx *types.Transaction) {
		tx.GasLimit = types.NewU256(gasLimit)
	}
}

func WithCalldata(data []byte) TxOption {
	return func(tx *types.Transaction) {
		tx.Execute.Calldata = data
	}
}

func WithValue(value uint64) TxOption {
	return func(tx *types.Transaction) {
		tx.Execute.Value = types.NewU256(value)
	}
}

// NewTransaction returns valid (L2) transaction calling random contract.
func NewTransaction(t testing.TB, opts ...TxOption) *types.Transaction {
	to := RandomAddress(t)
	tx := &types.Transaction{
		Version:          1,
		InitiatorAccount: RandomAddress(t),
		Nonce:            1,
		GasLimit:         types.NewU256(1_000_000),
		Execute: types.Execute{
			ContractAddress: &to,
			Calldata:        RandomBytes(t, 36),
			Value:           types.NewU256(0),
		},
		ReceivedTimestampMs: 1700000000000,
	}
	for _, opt := range opts {
		opt(tx)
	}
	return tx
}

// NewLeafCall returns a normal far call from the initiator to a contract.
func NewLeafCall(t testing.TB, gas, gasUsed uint64) vm.Call {
	return vm.Call{
		Type:      vm.NewFarCallType(vm.FarCallNormal),
		From:      RandomAddress(t),
		To:        RandomAddress(t),
		ParentGas: gas,
		Gas:       gas,
		GasUsed:   gasUsed,
		Input:     RandomBytes(t, 4),
		Output:    []byte{},
	}
}
