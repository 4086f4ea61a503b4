package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNoRecord         = errors.New("no resume record in session")
	ErrNoProposal       = errors.New("turn carries no proposed record")
	ErrUnsupported      = errors.New("operation not supported by provider")
	ErrSessionNotActive = errors.New("session is not in an editable phase")
)

// ErrorClass buckets a backend failure for retry/fallback decisions.
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassThrottled
	ClassNotFound
	ClassDecode
)

func (c ErrorClass) String() string {
	switch c {
	case ClassThrottled:
		return "throttled"
	case ClassNotFound:
		return "not_found"
	case ClassDecode:
		return "decode"
	default:
		return "other"
	}
}

// Markers the hosted backend embeds in error messages. Matching on these
// strings is the de facto wire contract; keep them in sync with the
// provider's error surface.
const (
	markerTooManyRequests   = "429"
	markerResourceExhausted = "RESOURCE_EXHAUSTED"
	markerEntityNotFound    = "Requested entity was not found"
)

// DecodeError marks a well-formed response whose payload did not match
// the expected schema. Never retried.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Classify derives the error class from the payload alone. It is a pure
// function of the error; attempt counts and call sites play no part.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return ClassDecode
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, markerTooManyRequests), strings.Contains(msg, markerResourceExhausted):
		return ClassThrottled
	case strings.Contains(msg, markerEntityNotFound):
		return ClassNotFound
	default:
		return ClassOther
	}
}

// Retryable reports whether the retry policy may re-issue the call.
func Retryable(err error) bool { return Classify(err) == ClassThrottled }

// QuotaExhausted reports the classes that push the workflow into the
// key-reconfiguration phase.
func QuotaExhausted(err error) bool {
	switch Classify(err) {
	case ClassThrottled, ClassNotFound:
		return true
	default:
		return false
	}
}
