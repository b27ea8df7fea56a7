package vm

import "math"

type (
	// CircuitStatistic is the (fractional) number of prover circuits of each
	// kind used by the execution.
	CircuitStatistic struct {
		_                       struct{} `cbor:",toarray"`
		MainVM                  float32  `json:"mainVm"`
		RAMPermutation          float32  `json:"ramPermutation"`
		StorageApplication      float32  `json:"storageApplication"`
		StorageSorter           float32  `json:"storageSorter"`
		CodeDecommitter         float32  `json:"codeDecommitter"`
		CodeDecommitterSorter   float32  `json:"codeDecommitterSorter"`
		LogDemuxer              float32  `json:"logDemuxer"`
		EventsSorter            float32  `json:"eventsSorter"`
		Keccak256               float32  `json:"keccak256"`
		Ecrecover               float32  `json:"ecrecover"`
		Sha256                  float32  `json:"sha256"`
		Secp256k1Verify         float32  `json:"secp256k1Verify"`
		TransientStorageChecker float32  `json:"transientStorageChecker"`
		Modexp                  float32  `json:"modexp"`
		Ecadd                   float32  `json:"ecadd"`
		Ecmul                   float32  `json:"ecmul"`
		Ecpairing               float32  `json:"ecpairing"`
	}

	// ExecutionStatistics are the counters collected by the VM during execution.
	ExecutionStatistics struct {
		_                    struct{}         `cbor:",toarray"`
		ContractsUsed        int              `json:"contractsUsed"`
		CyclesUsed           uint32           `json:"cyclesUsed"`
		GasUsed              uint64           `json:"gasUsed"`
		GasRemaining         uint32           `json:"gasRemaining"`
		ComputationalGasUsed uint32           `json:"computationalGasUsed"`
		TotalLogQueries      int              `json:"totalLogQueries"`
		PubdataPublished     uint32           `json:"pubdataPublished"`
		CircuitStatistic     CircuitStatistic `json:"circuitStatistic"`
	}
)

func (cs CircuitStatistic) TotalF32() float32 {
	return cs.MainVM +
		cs.RAMPermutation +
		cs.StorageApplication +
		cs.StorageSorter +
		cs.CodeDecommitter +
		cs.CodeDecommitterSorter +
		cs.LogDemuxer +
		cs.EventsSorter +
		cs.Keccak256 +
		cs.Ecrecover +
		cs.Sha256 +
		cs.Secp256k1Verify +
		cs.TransientStorageChecker +
		cs.Modexp +
		cs.Ecadd +
		cs.Ecmul +
		cs.Ecpairing
}

// Total returns the number of circuits rounded up to the whole circuit.
func (cs CircuitStatistic) Total() int {
	return int(math.Ceil(float64(cs.TotalF32())))
}

// Add returns component-wise sum of cs and other.
func (cs CircuitStatistic) Add(other CircuitStatistic) CircuitStatistic {
	return CircuitStatistic{
		MainVM:                  cs.MainVM + other.MainVM,
		RAMPermutation:          cs.RAMPermutation + other.RAMPermutation,
		StorageApplication:      cs.StorageApplication + other.StorageApplication,
		StorageSorter:           cs.StorageSorter + other.StorageSorter,
		CodeDecommitter:         cs.CodeDecommitter + other.CodeDecommitter,
		CodeDecommitterSorter:   cs.CodeDecommitterSorter + other.CodeDecommitterSorter,
		LogDemuxer:              cs.LogDemuxer + other.LogDemuxer,
		EventsSorter:            cs.EventsSorter + other.EventsSorter,
		Keccak256:               cs.Keccak256 + other.Keccak256,
		Ecrecover:               cs.Ecrecover + other.Ecrecover,
		Sha256:                  cs.Sha256 + other.Sha256,
		Secp256k1Verify:         cs.Secp256k1Verify + other.Secp256k1Verify,
		TransientStorageChecker: cs.TransientStorageChecker + other.TransientStorageChecker,
		Modexp:                  cs.Modexp + other.Modexp,
		Ecadd:                   cs.Ecadd + other.Ecadd,
		Ecmul:                   cs.Ecmul + other.Ecmul,
		Ecpairing:               cs.Ecpairing + other.Ecpairing,
	}
}
