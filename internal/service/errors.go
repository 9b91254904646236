package service

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidPayload is returned when the inbound body is not a JSON
	// object, or one of its structured fields has the wrong shape.
	ErrInvalidPayload = errors.New("payload inválido (no es objeto JSON)")
	// ErrDuplicateDocument is returned when an ingestion loses against an
	// existing document with the same content hash. The DUP audit row has
	// already been written when this error reaches the caller.
	ErrDuplicateDocument = errors.New("documento duplicado (hash)")
)

// MissingFieldsError names the required fields absent from a payload after
// both input shapes were considered.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "faltan campos requeridos: " + strings.Join(e.Fields, ", ")
}
