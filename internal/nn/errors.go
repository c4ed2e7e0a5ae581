package nn

import "errors"

// State dict loading errors.
var (
	ErrMissingParameter    = errors.New("nn: missing parameter in state dict")
	ErrUnexpectedParameter = errors.New("nn: unexpected parameter in state dict")
	ErrParameterShape      = errors.New("nn: parameter shape mismatch")
	ErrParameterDType      = errors.New("nn: parameter dtype mismatch")
)
