package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// They are duplicated as strings to avoid an import cycle.
var enUS = map[string]string{
	KeySaved:      "Game saved to slot %d.",
	KeyAutoSaved:  "Auto-saved to slot %d.",
	KeyQuickSaved: "Quick-saved to slot %d.",
	KeyLoaded:     "Loaded slot %d.",
	KeyDeleted:    "Deleted slot %d.",

	"INVALID_SLOT_INDEX": "Slot %d does not exist.",
	"SLOT_EMPTY":         "Slot %d is empty.",
	"CORRUPT_RECORD":     "The save in slot %d is corrupt.",
	"IO_FAILURE":         "Could not access slot %d.",
	"INVALID_SNAPSHOT":   "The game could not be saved to slot %d.",
	"ADAPTER_MISSING":    "Nothing to save or restore for slot %d.",
	"SCENE_UNAVAILABLE":  "The area saved in slot %d is unavailable.",
	"BUSY":               "Slot %d: another save or load is in progress.",
	"UNKNOWN":            "Something went wrong with slot %d.",
}
