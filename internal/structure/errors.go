package structure

import (
	"fmt"
	"strings"

	"structurebuilder.ai/internal/protocol"
)

type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return "Missing required parameter: " + e.Name
}

func (e *MissingParameterError) Code() string { return protocol.ErrMissingParameter }

// InvalidParameterError is returned when a required parameter is present but
// cannot be read as the expected kind.
type InvalidParameterError struct {
	Name  string
	Value any
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("Invalid value for parameter %s: %v", e.Name, e.Value)
}

func (e *InvalidParameterError) Code() string { return protocol.ErrInvalidParameter }

type UnknownTypeError struct {
	Name      string
	Available []string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("Unknown structure type: %s. Available: %s", e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownTypeError) Code() string { return protocol.ErrUnknownStructure }
