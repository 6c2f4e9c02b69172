package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorStorageUnavailable means the counter/document store could not be
	// reached or committed. Always fatal to the enclosing operation; retry
	// policy belongs to the caller.
	ErrorStorageUnavailable = errors.New("storage unavailable")

	// ErrorInvalidInput means a quantity or unit price is not a well-formed
	// finite numeric value.
	ErrorInvalidInput = errors.New("invalid input")

	ErrorNoProjectAccess = errors.New("no access to this project")

	// ErrorDuplicate marks unique-constraint violations; ValidateUnique wraps
	// it with the offending column name.
	ErrorDuplicate = errors.New("duplicate")
)
