package types

// Addresses of the system contracts whose events and calls the execution
// result model interprets.
var (
	BootloaderAddress        = AddressFromUint16(0x8001)
	KnownCodesStorageAddress = AddressFromUint16(0x8004)
	ContractDeployerAddress  = AddressFromUint16(0x8006)
	L1MessengerAddress       = AddressFromUint16(0x8008)
)

const (
	// PublishBytecodeOverhead is the amount of pubdata (in bytes) charged for
	// publishing a bytecode on top of the bytecode itself.
	PublishBytecodeOverhead = 100
)
