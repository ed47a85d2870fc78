package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy    = "E_WORLD_BUSY"
	ErrWorldStopped = "E_WORLD_STOPPED"

	// Request layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrNoPermission = "E_NO_PERMISSION"
	ErrInternal     = "E_INTERNAL"

	// Structure generation.
	ErrMissingParameter = "E_MISSING_PARAMETER"
	ErrInvalidParameter = "E_INVALID_PARAMETER"
	ErrUnknownStructure = "E_UNKNOWN_STRUCTURE"
	ErrUnknownMaterial  = "E_UNKNOWN_MATERIAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrWorldBusy:        {},
	ErrWorldStopped:     {},
	ErrBadRequest:       {},
	ErrNoPermission:     {},
	ErrInternal:         {},
	ErrMissingParameter: {},
	ErrInvalidParameter: {},
	ErrUnknownStructure: {},
	ErrUnknownMaterial:  {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Coded is implemented by errors that map onto one of the codes above.
type Coded interface {
	error
	Code() string
}
