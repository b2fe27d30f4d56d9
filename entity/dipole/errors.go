package dipole

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrShapeMismatch    = errors.New("radius and angle batches differ in length")
)

// InvalidParameterError reports which construction parameter was rejected.
type InvalidParameterError struct {
	Name  string
	Value float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %v", ErrInvalidParameter, e.Name, e.Value)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}
