package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Standard domain errors
var (
	ErrResourceNotFound = errors.New("the requested resource was not found")
	ErrUnauthorized     = errors.New("missing or invalid credentials")
	ErrFeatureDisabled  = errors.New("feature is not configured on this deployment")
)

// ErrorKind classifies every failure that can leave the generation pipeline.
type ErrorKind string

const (
	KindInput      ErrorKind = "input_error"
	KindSafety     ErrorKind = "safety_blocked"
	KindParse      ErrorKind = "parse_error"
	KindValidation ErrorKind = "validation_error"
	KindTransport  ErrorKind = "transport_error"
)

// Pipeline sentinels, for use with errors.Is.
var (
	ErrInput         = errors.New("invalid input")
	ErrSafetyBlocked = errors.New("content blocked by safety filters")
	ErrParse         = errors.New("model output is not a JSON object")
	ErrValidation    = errors.New("model output has the wrong shape")
	ErrTransport     = errors.New("generation endpoint call failed")
)

var kindSentinels = map[ErrorKind]error{
	KindInput:      ErrInput,
	KindSafety:     ErrSafetyBlocked,
	KindParse:      ErrParse,
	KindValidation: ErrValidation,
	KindTransport:  ErrTransport,
}

// PipelineError is the only error type returned by the pipeline boundary.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	// Missing lists the absent fields (input) or accepted keys (validation).
	Missing []string
	// Raw is the unparsed model text, attached to parse failures.
	Raw string
	Err error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		if s, ok := kindSentinels[e.Kind]; ok {
			msg = s.Error()
		} else {
			msg = string(e.Kind)
		}
	}
	if len(e.Missing) > 0 {
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func (e *PipelineError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

func NewInputError(msg string, missing ...string) *PipelineError {
	return &PipelineError{Kind: KindInput, Message: msg, Missing: missing}
}

func NewSafetyError(model string) *PipelineError {
	return &PipelineError{Kind: KindSafety, Message: fmt.Sprintf("content blocked by safety filters (model %s)", model)}
}

func NewParseError(msg, raw string, err error) *PipelineError {
	return &PipelineError{Kind: KindParse, Message: msg, Raw: raw, Err: err}
}

func NewValidationError(msg string, accepted ...string) *PipelineError {
	return &PipelineError{Kind: KindValidation, Message: msg, Missing: accepted}
}

func NewTransportError(msg string, err error) *PipelineError {
	return &PipelineError{Kind: KindTransport, Message: msg, Err: err}
}

// AsPipelineError unwraps err to a *PipelineError, if any.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
