package allocation

import "github.com/pkg/errors"

// ErrorKind classifies a failed run for the failure record.
type ErrorKind string

const (
	KindInvalidBudget     ErrorKind = "InvalidBudget"
	KindInvalidFieldCount ErrorKind = "InvalidFieldCount"
	KindInvalidMoisture   ErrorKind = "InvalidMoisture"
	KindInvalidWaterNeed  ErrorKind = "InvalidWaterNeed"
	KindMalformedInput    ErrorKind = "MalformedInput"
	KindCapacityExceeded  ErrorKind = "CapacityExceeded"
	KindInternal          ErrorKind = "Internal"
)

var (
	ErrInvalidBudget     = errors.New("invalid total water amount")
	ErrInvalidFieldCount = errors.New("invalid field count")
	ErrInvalidMoisture   = errors.New("invalid moisture level")
	ErrInvalidWaterNeed  = errors.New("invalid water needed")
	ErrMalformedInput    = errors.New("malformed input")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidBudget, KindInvalidBudget},
	{ErrInvalidFieldCount, KindInvalidFieldCount},
	{ErrInvalidMoisture, KindInvalidMoisture},
	{ErrInvalidWaterNeed, KindInvalidWaterNeed},
	{ErrMalformedInput, KindMalformedInput},
	{ErrCapacityExceeded, KindCapacityExceeded},
}

// KindOf returns the kind of a validation error, or KindInternal for
// anything else.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsValidation reports whether err was raised by input validation.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) != KindInternal
}
