package vm_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zkvm-go/vm-interface/cbor"
	"github.com/zkvm-go/vm-interface/testutils/vmtest"
	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/vm"
)

func TestTxExecutionStatusFromHasFailed(t *testing.T) {
	require.Equal(t, vm.TxStatusFailure, vm.TxExecutionStatusFromHasFailed(true))
	require.Equal(t, vm.TxStatusSuccess, vm.TxExecutionStatusFromHasFailed(false))
	require.Equal(t, "failure", vm.TxStatusFailure.String())
	require.Equal(t, "success", vm.TxStatusSuccess.String())
}

func TestBatchTransactionExecutionResult_WasHalted(t *testing.T) {
	var testCases = []struct {
		name   string
		result vm.ExecutionResult
		halted bool
	}{
		{name: "success", result: &vm.ExecutionSuccess{}, halted: false},
		{name: "revert", result: &vm.ExecutionRevert{Output: vm.RevertReason{Kind: vm.RevertVMError}}, halted: false},
		{name: "halt", result: &vm.ExecutionHalt{Reason: vm.NewHalt(vm.HaltBootloaderOutOfGas)}, halted: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := vm.BatchTransactionExecutionResult{TxResult: vm.NewExecutionResultAndLogs(tc.result)}
			require.Equal(t, tc.halted, res.WasHalted())
		})
	}
}

func newBatchTxResult(t *testing.T, result vm.ExecutionResult, refunded uint64, traces []vm.Call) *vm.BatchTransactionExecutionResult {
	t.Helper()
	res := vm.NewExecutionResultAndLogs(result)
	res.Refunds = vm.Refunds{GasRefunded: refunded, OperatorSuggestedRefund: refunded}
	res.Statistics.GasUsed = 21_000
	res.Logs.Events = []vm.Event{
		vmtest.L1MessageSentEvent(t, vmtest.RandomAddress(t), []byte("withdraw")),
		vmtest.MarkedAsKnownEvent(vmtest.EraVMBytecodeHash(t, 1), true),
	}
	res.Logs.UserL2ToL1Logs = make([]types.UserL2ToL1Log, 1)
	return &vm.BatchTransactionExecutionResult{TxResult: res, CallTraces: traces}
}

func TestNewTransactionExecutionResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tx := vmtest.NewTransaction(t)
		batchRes := newBatchTxResult(t, &vm.ExecutionSuccess{Output: []byte{1}}, 100, nil)

		res := vm.NewTransactionExecutionResult(tx, batchRes)
		require.NoError(t, res.IsValid())
		require.Equal(t, tx, res.Transaction)
		require.Equal(t, tx.Hash(), res.Hash)
		require.Equal(t, batchRes.TxResult.ExecutionMetrics(), res.ExecutionInfo)
		require.Equal(t, 96, res.ExecutionInfo.L2L1LongMessages)
		require.Equal(t, 32+types.PublishBytecodeOverhead, res.ExecutionInfo.PublishedBytecodeBytes)
		require.Equal(t, vm.TxStatusSuccess, res.ExecutionStatus)
		require.EqualValues(t, 100, res.RefundedGas)
		require.Nil(t, res.RevertReason)
		require.Empty(t, res.CallTraces)
	})

	t.Run("revert", func(t *testing.T) {
		batchRes := newBatchTxResult(t, &vm.ExecutionRevert{Output: vm.NewGeneralRevertReason("insufficient balance")}, 0, nil)
		res := vm.NewTransactionExecutionResult(vmtest.NewTransaction(t), batchRes)
		require.Equal(t, vm.TxStatusFailure, res.ExecutionStatus)
		require.NotNil(t, res.RevertReason)
		require.Equal(t, "insufficient balance", *res.RevertReason)
	})

	t.Run("revert with unknown reason", func(t *testing.T) {
		reason, err := vm.ParseRevertReason([]byte{1, 2, 3, 4, 5})
		require.NoError(t, err)
		batchRes := newBatchTxResult(t, &vm.ExecutionRevert{Output: reason}, 0, nil)
		res := vm.NewTransactionExecutionResult(vmtest.NewTransaction(t), batchRes)
		require.Equal(t, vm.TxStatusFailure, res.ExecutionStatus)
		require.NotNil(t, res.RevertReason)
		require.Empty(t, *res.RevertReason)
	})

	t.Run("halt", func(t *testing.T) {
		batchRes := newBatchTxResult(t, &vm.ExecutionHalt{Reason: vm.NewHalt(vm.HaltValidationOutOfGas)}, 0, nil)
		res := vm.NewTransactionExecutionResult(vmtest.NewTransaction(t), batchRes)
		require.Equal(t, vm.TxStatusFailure, res.ExecutionStatus)
		require.Equal(t, "Validation run out of gas", *res.RevertReason)
	})
}

func TestTransactionExecutionResult_CallTrace(t *testing.T) {
	t.Run("no traces", func(t *testing.T) {
		res := vm.NewTransactionExecutionResult(vmtest.NewTransaction(t), newBatchTxResult(t, &vm.ExecutionSuccess{}, 10, nil))
		require.Nil(t, res.CallTrace())

		res.CallTraces = []vm.Call{}
		require.Nil(t, res.CallTrace())
	})

	t.Run("traces are wrapped into top level call", func(t *testing.T) {
		tx := vmtest.NewTransaction(t, vmtest.WithGasLimit(500_000), vmtest.WithValue(42), vmtest.WithCalldata([]byte{0xca, 0xfe}))
		traces := []vm.Call{vmtest.NewLeafCall(t, 400_000, 30_000), vmtest.NewLeafCall(t, 300_000, 20_000)}
		reason := "Bootloader-based tx failed"
		batchRes := newBatchTxResult(t, &vm.ExecutionRevert{Output: vm.RevertReason{Kind: vm.RevertInnerTxError}}, 120_000, traces)

		res := vm.NewTransactionExecutionResult(tx, batchRes)
		call := res.CallTrace()
		require.NotNil(t, call)
		require.EqualValues(t, 500_000, call.Gas)
		require.EqualValues(t, 500_000, call.ParentGas)
		require.EqualValues(t, 380_000, call.GasUsed)
		require.Equal(t, types.NewU256(42), call.Value)
		require.EqualValues(t, []byte{0xca, 0xfe}, call.Input)
		require.Empty(t, call.Output)
		require.Equal(t, types.BootloaderAddress, call.To)
		require.Equal(t, &reason, call.RevertReason)

		want := vm.NewHighLevelCall(1, 2, types.NewU256(42), []byte{0xca, 0xfe}, nil, &reason, traces)
		require.True(t, want.Equal(*call), cmp.Diff(want, *call))
	})

	t.Run("refund exceeds gas limit", func(t *testing.T) {
		tx := vmtest.NewTransaction(t, vmtest.WithGasLimit(1000))
		batchRes := newBatchTxResult(t, &vm.ExecutionSuccess{}, 1001, []vm.Call{vmtest.NewLeafCall(t, 10, 1)})
		res := vm.NewTransactionExecutionResult(tx, batchRes)
		require.PanicsWithError(t, "refunded gas 1001 exceeds gas limit 1000 of the transaction", func() { res.CallTrace() })
	})

	t.Run("gas limit does not fit uint64", func(t *testing.T) {
		tx := vmtest.NewTransaction(t)
		tx.GasLimit = types.U256(*new(uint256.Int).Lsh(uint256.NewInt(1), 64))
		batchRes := newBatchTxResult(t, &vm.ExecutionSuccess{}, 0, []vm.Call{vmtest.NewLeafCall(t, 10, 1)})
		res := vm.NewTransactionExecutionResult(tx, batchRes)
		require.PanicsWithError(t, "gas limit 18446744073709551616 of the transaction doesn't fit into uint64", func() { res.CallTrace() })
	})
}

func TestTransactionExecutionResult_Encoding(t *testing.T) {
	tx := vmtest.NewTransaction(t)
	reason := "Failed to charge fee: oops"
	batchRes := newBatchTxResult(t, &vm.ExecutionHalt{Reason: vm.NewHaltWithReason(vm.HaltFailedToChargeFee, vm.NewGeneralRevertReason("oops"))}, 5, []vm.Call{
		vmtest.NewLeafCall(t, 1000, 10),
		{Type: vm.CallType{Kind: vm.CallKindCreate}, Calls: []vm.Call{{Type: vm.CallType{Kind: vm.CallKindNearCall}}}},
	})
	res := vm.NewTransactionExecutionResult(tx, batchRes)
	require.Equal(t, reason, *res.RevertReason)

	t.Run("CBOR", func(t *testing.T) {
		data, err := res.Bytes()
		require.NoError(t, err)

		var decoded vm.TransactionExecutionResult
		require.NoError(t, cbor.Unmarshal(data, &decoded))
		require.NoError(t, decoded.IsValid())
		require.Equal(t, res.Hash, decoded.Hash)
		require.Equal(t, res.Transaction.Hash(), decoded.Transaction.Hash())
		require.Equal(t, res.ExecutionInfo, decoded.ExecutionInfo)
		require.Equal(t, res.ExecutionStatus, decoded.ExecutionStatus)
		require.Equal(t, res.RefundedGas, decoded.RefundedGas)
		require.Equal(t, *res.RevertReason, *decoded.RevertReason)
		require.True(t, cmp.Equal(res.CallTraces, decoded.CallTraces))
		require.True(t, res.CallTrace().Equal(*decoded.CallTrace()))

		// encoding is deterministic
		data2, err := decoded.Bytes()
		require.NoError(t, err)
		require.Equal(t, data, data2)
	})

	t.Run("CBOR with wrong tag", func(t *testing.T) {
		data, err := cbor.MarshalTaggedValue(types.TransactionTag, []any{1})
		require.NoError(t, err)
		var decoded vm.TransactionExecutionResult
		require.EqualError(t, cbor.Unmarshal(data, &decoded), "unexpected tag: 1001, expected: 1002")
	})

	t.Run("CBOR with invalid version", func(t *testing.T) {
		r := *res
		r.Version = 2
		data, err := r.Bytes()
		require.NoError(t, err)
		var decoded vm.TransactionExecutionResult
		require.EqualError(t, cbor.Unmarshal(data, &decoded), "invalid version (type *vm.TransactionExecutionResult), expected 1, got 2")
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(res)
		require.NoError(t, err)
		require.Contains(t, string(data), `"revertReason":"Failed to charge fee: oops"`)
		require.Contains(t, string(data), `"type":{"Call":0}`)
		require.Contains(t, string(data), `"type":"NearCall"`)

		var decoded vm.TransactionExecutionResult
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, res.Hash, decoded.Hash)
		require.Equal(t, res.ExecutionInfo, decoded.ExecutionInfo)
		require.True(t, cmp.Equal(res.CallTraces, decoded.CallTraces))
	})
}

func TestTransactionExecutionResult_IsValid(t *testing.T) {
	var res *vm.TransactionExecutionResult
	require.ErrorIs(t, res.IsValid(), vm.ErrTxExecutionResultIsNil)

	res = vm.NewTransactionExecutionResult(vmtest.NewTransaction(t), newBatchTxResult(t, &vm.ExecutionSuccess{}, 0, nil))
	require.NoError(t, res.IsValid())

	res.ExecutionStatus = 2
	require.EqualError(t, res.IsValid(), "invalid execution status 2")

	res.ExecutionStatus = vm.TxStatusSuccess
	res.CallTraces = []vm.Call{{Type: vm.NewFarCallType(7)}}
	require.ErrorIs(t, res.IsValid(), vm.ErrInvalidFarCallOpcode)

	res.CallTraces = nil
	res.Transaction = nil
	require.ErrorIs(t, res.IsValid(), types.ErrTransactionIsNil)
}

func TestTransactionExecutionResult_MarshalZerologObject(t *testing.T) {
	res := vm.NewTransactionExecutionResult(vmtest.NewTransaction(t), newBatchTxResult(t, &vm.ExecutionSuccess{}, 7, nil))
	out := &bytes.Buffer{}
	zerolog.New(out).Info().Object("tx", res).Msg("")
	require.Contains(t, out.String(), `"hash":"`+res.Hash.Hex()+`"`)
	require.Contains(t, out.String(), `"status":"success"`)
	require.Contains(t, out.String(), `"refundedGas":7`)
	require.Contains(t, out.String(), `"executionInfo":{"gasUsed":21000`)
}
