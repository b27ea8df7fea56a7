package vm

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zkvm-go/vm-interface/bytecode"
	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/util"
)

// Pubdata occupied by the length of every L2->L1 message and published
// bytecode (each of them is accompanied by a L2->L1 log).
const l2ToL1LogLengthOverhead = 4

/*
ExecutionMetrics are the metrics of the execution used for fee accounting
and batch sealing. Byte counts must match the fee charging logic of the
system contracts exactly.

ContractDeploymentCount is the number of bytecodes marked as known (whether
or not they were published), not the number of `ContractDeployed` events.
*/
type ExecutionMetrics struct {
	_                       struct{}         `cbor:",toarray"`
	GasUsed                 uint64           `json:"gasUsed"`
	PublishedBytecodeBytes  int              `json:"publishedBytecodeBytes"`
	L2L1LongMessages        int              `json:"l2L1LongMessages"`
	L2ToL1Logs              int              `json:"l2ToL1Logs"`
	UserL2ToL1Logs          int              `json:"userL2ToL1Logs"`
	ContractsUsed           int              `json:"contractsUsed"`
	ContractDeploymentCount int              `json:"contractDeploymentCount"`
	VMEvents                int              `json:"vmEvents"`
	StorageLogs             int              `json:"storageLogs"`
	TotalLogQueries         int              `json:"totalLogQueries"`
	CyclesUsed              uint32           `json:"cyclesUsed"`
	ComputationalGasUsed    uint32           `json:"computationalGasUsed"`
	PubdataPublished        uint32           `json:"pubdataPublished"`
	CircuitStatistic        CircuitStatistic `json:"circuitStatistic"`
}

/*
ExecutionMetrics derives the metrics from the execution output.

Panics when a bytecode marked for publishing has a hash which doesn't encode
the bytecode length or when a L1 messenger event can't be decoded, the system
contracts emitting them are trusted to emit valid data.
*/
func (r *ExecutionResultAndLogs) ExecutionMetrics() ExecutionMetrics {
	// messages are published as ABI encoded `bytes`, so the total length is:
	// message length rounded up to the word, offset word and length word
	l2l1LongMessages := 0
	for _, msg := range ExtractLongL2ToL1Messages(r.Logs.Events) {
		l2l1LongMessages += util.RoundUpToWord(len(msg)) + 2*util.WordSize
	}

	publishedBytecodeBytes := 0
	for _, h := range ExtractPublishedBytecodes(r.Logs.Events) {
		publishedBytecodeBytes += bytecode.MustFromHash(h).LenInBytes() + types.PublishBytecodeOverhead
	}

	contractDeploymentCount := 0
	for range ExtractBytecodesMarkedAsKnown(r.Logs.Events) {
		contractDeploymentCount++
	}

	return ExecutionMetrics{
		GasUsed:                 r.Statistics.GasUsed,
		PublishedBytecodeBytes:  publishedBytecodeBytes,
		L2L1LongMessages:        l2l1LongMessages,
		L2ToL1Logs:              r.Logs.TotalL2ToL1LogsCount(),
		UserL2ToL1Logs:          len(r.Logs.UserL2ToL1Logs),
		ContractsUsed:           r.Statistics.ContractsUsed,
		ContractDeploymentCount: contractDeploymentCount,
		VMEvents:                len(r.Logs.Events),
		StorageLogs:             len(r.Logs.StorageLogs),
		TotalLogQueries:         r.Statistics.TotalLogQueries,
		CyclesUsed:              r.Statistics.CyclesUsed,
		ComputationalGasUsed:    r.Statistics.ComputationalGasUsed,
		PubdataPublished:        r.Statistics.PubdataPublished,
		CircuitStatistic:        r.Statistics.CircuitStatistic,
	}
}

// Size returns the amount of pubdata (in bytes) the metrics account for.
func (m ExecutionMetrics) Size() int {
	return m.L2ToL1Logs*types.L2ToL1LogSerializeSize +
		m.L2L1LongMessages +
		m.PublishedBytecodeBytes +
		m.L2ToL1Logs*l2ToL1LogLengthOverhead
}

/*
Add returns sum of the metrics m and other, used to accumulate metrics of
the transactions in a block/batch. Panics when gas used overflows.
*/
func (m ExecutionMetrics) Add(other ExecutionMetrics) ExecutionMetrics {
	gasUsed, ok := util.SafeAdd(m.GasUsed, other.GasUsed)
	if !ok {
		panic(fmt.Errorf("gas used overflow: %d + %d", m.GasUsed, other.GasUsed))
	}
	return ExecutionMetrics{
		GasUsed:                 gasUsed,
		PublishedBytecodeBytes:  m.PublishedBytecodeBytes + other.PublishedBytecodeBytes,
		L2L1LongMessages:        m.L2L1LongMessages + other.L2L1LongMessages,
		L2ToL1Logs:              m.L2ToL1Logs + other.L2ToL1Logs,
		UserL2ToL1Logs:          m.UserL2ToL1Logs + other.UserL2ToL1Logs,
		ContractsUsed:           m.ContractsUsed + other.ContractsUsed,
		ContractDeploymentCount: m.ContractDeploymentCount + other.ContractDeploymentCount,
		VMEvents:                m.VMEvents + other.VMEvents,
		StorageLogs:             m.StorageLogs + other.StorageLogs,
		TotalLogQueries:         m.TotalLogQueries + other.TotalLogQueries,
		CyclesUsed:              m.CyclesUsed + other.CyclesUsed,
		ComputationalGasUsed:    m.ComputationalGasUsed + other.ComputationalGasUsed,
		PubdataPublished:        m.PubdataPublished + other.PubdataPublished,
		CircuitStatistic:        m.CircuitStatistic.Add(other.CircuitStatistic),
	}
}

func (m ExecutionMetrics) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("gasUsed", m.GasUsed).
		Int("publishedBytecodeBytes", m.PublishedBytecodeBytes).
		Int("l2L1LongMessages", m.L2L1LongMessages).
		Int("l2ToL1Logs", m.L2ToL1Logs).
		Int("userL2ToL1Logs", m.UserL2ToL1Logs).
		Int("contractsUsed", m.ContractsUsed).
		Int("contractDeploymentCount", m.ContractDeploymentCount).
		Int("vmEvents", m.VMEvents).
		Int("storageLogs", m.StorageLogs).
		Int("totalLogQueries", m.TotalLogQueries).
		Uint32("cyclesUsed", m.CyclesUsed).
		Uint32("computationalGasUsed", m.ComputationalGasUsed).
		Uint32("pubdataPublished", m.PubdataPublished).
		Int("circuits", m.CircuitStatistic.Total())
}
