package patients

import "errors"

var (
	// ErrPatientNotFound indicates no patient matched the lookup.
	ErrPatientNotFound = errors.New("patients: not found")
	// ErrDuplicatePhone indicates the phone is already registered.
	ErrDuplicatePhone = errors.New("patients: phone already registered")
)
