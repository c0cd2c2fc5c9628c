// Package errors provides the structured error taxonomy of the save subsystem.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Slot errors
	CodeInvalidSlotIndex Code = "INVALID_SLOT_INDEX"
	CodeSlotEmpty        Code = "SLOT_EMPTY"
	CodeCorruptRecord    Code = "CORRUPT_RECORD"
	CodeIOFailure        Code = "IO_FAILURE"

	// Snapshot errors
	CodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	CodeAdapterMissing  Code = "ADAPTER_MISSING"

	// Orchestration errors
	CodeSceneUnavailable Code = "SCENE_UNAVAILABLE"
	CodeBusy             Code = "BUSY"
)

// Codes lists every known code in display order.
func Codes() []Code {
	return []Code{
		CodeInvalidSlotIndex,
		CodeSlotEmpty,
		CodeCorruptRecord,
		CodeIOFailure,
		CodeInvalidSnapshot,
		CodeAdapterMissing,
		CodeSceneUnavailable,
		CodeBusy,
	}
}
