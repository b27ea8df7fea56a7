package vm_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zkvm-go/vm-interface/bytecode"
	"github.com/zkvm-go/vm-interface/testutils/vmtest"
	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/vm"
)

func TestExecutionMetrics_LongMessages(t *testing.T) {
	var testCases = []struct {
		msgLen int
		want   int
	}{
		{msgLen: 0, want: 64},
		{msgLen: 1, want: 96},
		{msgLen: 31, want: 96},
		{msgLen: 32, want: 96},
		{msgLen: 33, want: 128},
		{msgLen: 64, want: 128},
		{msgLen: 65, want: 160},
	}
	sender := vmtest.RandomAddress(t)
	for _, tc := range testCases {
		res := vm.NewSuccessResultAndLogs()
		res.Logs.Events = []vm.Event{vmtest.L1MessageSentEvent(t, sender, make([]byte, tc.msgLen))}
		m := res.ExecutionMetrics()
		require.Equal(t, tc.want, m.L2L1LongMessages, "message length %d", tc.msgLen)
	}
}

func TestExecutionMetrics_LongMessagesProperty(t *testing.T) {
	sender := vmtest.RandomAddress(t)
	rapid.Check(t, func(rt *rapid.T) {
		lengths := rapid.SliceOfN(rapid.IntRange(0, 2048), 0, 8).Draw(rt, "lengths")
		res := vm.NewSuccessResultAndLogs()
		want := 0
		for _, l := range lengths {
			res.Logs.Events = append(res.Logs.Events, vmtest.L1MessageSentEvent(t, sender, make([]byte, l)))
			want += ((l+31)/32)*32 + 64
		}
		require.Equal(rt, want, res.ExecutionMetrics().L2L1LongMessages)
	})
}

func TestExecutionMetrics(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		m := vm.NewSuccessResultAndLogs().ExecutionMetrics()
		require.Equal(t, vm.ExecutionMetrics{}, m)
		require.Zero(t, m.Size())
	})

	t.Run("published bytecodes", func(t *testing.T) {
		eraVM := vmtest.EraVMBytecodeHash(t, 3)
		evm, err := bytecode.ForEVMBytecode(50, make([]byte, 64+32))
		require.NoError(t, err)

		res := vm.NewSuccessResultAndLogs()
		res.Logs.Events = []vm.Event{
			vmtest.MarkedAsKnownEvent(eraVM, true),
			vmtest.MarkedAsKnownEvent(evm.H256(), true),
			// marked as known but not published
			vmtest.MarkedAsKnownEvent(vmtest.EraVMBytecodeHash(t, 5), false),
		}
		m := res.ExecutionMetrics()
		require.Equal(t, 3*32+100+50+100, m.PublishedBytecodeBytes)
		require.Equal(t, 3, m.ContractDeploymentCount)
		require.Equal(t, 3, m.VMEvents)
	})

	t.Run("contract deployment count counts bytecodes marked as known", func(t *testing.T) {
		res := vm.NewSuccessResultAndLogs()
		res.Logs.Events = []vm.Event{
			vmtest.ContractDeployedEvent(vmtest.RandomAddress(t), vmtest.RandomH256(t), vmtest.RandomAddress(t)),
		}
		require.Zero(t, res.ExecutionMetrics().ContractDeploymentCount)

		res.Logs.Events = append(res.Logs.Events, vmtest.MarkedAsKnownEvent(vmtest.RandomH256(t), false))
		require.Equal(t, 1, res.ExecutionMetrics().ContractDeploymentCount)
	})

	t.Run("invalid hash of the published bytecode panics", func(t *testing.T) {
		h := vmtest.RandomH256(t)
		h[0] = 0xff
		res := vm.NewSuccessResultAndLogs()
		res.Logs.Events = []vm.Event{vmtest.MarkedAsKnownEvent(h, true)}
		require.Panics(t, func() { res.ExecutionMetrics() })
	})

	t.Run("pass-through counters", func(t *testing.T) {
		res := vm.NewExecutionResultAndLogs(&vm.ExecutionRevert{Output: vm.NewGeneralRevertReason("oops")})
		res.Logs.StorageLogs = make([]types.StorageLogWithPreviousValue, 4)
		res.Logs.UserL2ToL1Logs = make([]types.UserL2ToL1Log, 2)
		res.Logs.SystemL2ToL1Logs = make([]types.SystemL2ToL1Log, 3)
		res.Statistics = vm.ExecutionStatistics{
			ContractsUsed:        7,
			CyclesUsed:           1000,
			GasUsed:              50_000,
			GasRemaining:         10,
			ComputationalGasUsed: 40_000,
			TotalLogQueries:      12,
			PubdataPublished:     300,
			CircuitStatistic:     vm.CircuitStatistic{MainVM: 0.5, Keccak256: 0.75},
		}

		m := res.ExecutionMetrics()
		require.Equal(t, vm.ExecutionMetrics{
			GasUsed:              50_000,
			L2ToL1Logs:           5,
			UserL2ToL1Logs:       2,
			ContractsUsed:        7,
			StorageLogs:          4,
			TotalLogQueries:      12,
			CyclesUsed:           1000,
			ComputationalGasUsed: 40_000,
			PubdataPublished:     300,
			CircuitStatistic:     vm.CircuitStatistic{MainVM: 0.5, Keccak256: 0.75},
		}, m)
		require.Equal(t, 5*types.L2ToL1LogSerializeSize+5*4, m.Size())
	})
}

func TestExecutionMetrics_Add(t *testing.T) {
	a := vm.ExecutionMetrics{
		GasUsed:                 100,
		PublishedBytecodeBytes:  196,
		L2L1LongMessages:        96,
		L2ToL1Logs:              2,
		UserL2ToL1Logs:          1,
		ContractsUsed:           3,
		ContractDeploymentCount: 1,
		VMEvents:                5,
		StorageLogs:             6,
		TotalLogQueries:         7,
		CyclesUsed:              8,
		ComputationalGasUsed:    9,
		PubdataPublished:        10,
		CircuitStatistic:        vm.CircuitStatistic{MainVM: 1.5},
	}
	sum := a.Add(a)
	require.Equal(t, vm.ExecutionMetrics{
		GasUsed:                 200,
		PublishedBytecodeBytes:  392,
		L2L1LongMessages:        192,
		L2ToL1Logs:              4,
		UserL2ToL1Logs:          2,
		ContractsUsed:           6,
		ContractDeploymentCount: 2,
		VMEvents:                10,
		StorageLogs:             12,
		TotalLogQueries:         14,
		CyclesUsed:              16,
		ComputationalGasUsed:    18,
		PubdataPublished:        20,
		CircuitStatistic:        vm.CircuitStatistic{MainVM: 3},
	}, sum)
	require.Equal(t, a, a.Add(vm.ExecutionMetrics{}))
	require.Equal(t, 2*a.Size(), sum.Size())

	require.PanicsWithError(t, "gas used overflow: 18446744073709551615 + 100", func() {
		vm.ExecutionMetrics{GasUsed: math.MaxUint64}.Add(a)
	})
}

func TestExecutionMetrics_MarshalZerologObject(t *testing.T) {
	m := vm.ExecutionMetrics{GasUsed: 42, L2ToL1Logs: 1, CircuitStatistic: vm.CircuitStatistic{MainVM: 0.1}}
	out := &bytes.Buffer{}
	zerolog.New(out).Info().Object("metrics", m).Msg("")
	require.Contains(t, out.String(), `"gasUsed":42`)
	require.Contains(t, out.String(), `"l2ToL1Logs":1`)
	require.Contains(t, out.String(), `"circuits":1`)
}
