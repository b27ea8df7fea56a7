package types

import "fmt"

const (
	StorageLogRead StorageLogKind = iota
	StorageLogInitialWrite
	StorageLogRepeatedWrite
)

type (
	StorageLogKind uint8

	// StorageKey identifies a storage slot: the account owning the storage
	// and the key within it.
	StorageKey struct {
		_       struct{} `cbor:",toarray"`
		Address Address  `json:"address"`
		Key     H256     `json:"key"`
	}

	StorageLog struct {
		_     struct{}       `cbor:",toarray"`
		Kind  StorageLogKind `json:"kind"`
		Key   StorageKey     `json:"key"`
		Value H256           `json:"value"`
	}

	// StorageLogWithPreviousValue is a storage log accompanied by the value
	// the slot had before the access.
	StorageLogWithPreviousValue struct {
		_             struct{}   `cbor:",toarray"`
		Log           StorageLog `json:"log"`
		PreviousValue H256       `json:"previousValue"`
	}
)

func (k StorageLogKind) String() string {
	switch k {
	case StorageLogRead:
		return "Read"
	case StorageLogInitialWrite:
		return "InitialWrite"
	case StorageLogRepeatedWrite:
		return "RepeatedWrite"
	default:
		return fmt.Sprintf("StorageLogKind(%d)", uint8(k))
	}
}

// IsWrite returns true for both initial and repeated writes.
func (k StorageLogKind) IsWrite() bool {
	return k == StorageLogInitialWrite || k == StorageLogRepeatedWrite
}

func NewStorageKey(address Address, key H256) StorageKey {
	return StorageKey{Address: address, Key: key}
}

func (l *StorageLog) IsWrite() bool {
	return l.Kind.IsWrite()
}

// IsNoop returns true when the log is a write that didn't change the value of the slot.
func (l *StorageLogWithPreviousValue) IsNoop() bool {
	return l.Log.IsWrite() && l.Log.Value == l.PreviousValue
}
