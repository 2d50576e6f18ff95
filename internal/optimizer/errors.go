package optimizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"workshophub/internal/llm"
)

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindCredential ErrorKind = "credential"
	KindTransport  ErrorKind = "transport"
	KindSchema     ErrorKind = "schema"
)

const (
	// CombinedFailureMessage is shown for both schema and credential failures;
	// the upstream cannot reliably tell a bad key from a bad reply.
	CombinedFailureMessage = "Unable to parse the AI response or the API key is invalid. Check the key's permissions and try again."
	GenericFailureMessage  = "Something went wrong while optimizing the workflow."
)

var (
	ErrEmptyWorkflow      = &ValidationError{Field: "workflow", Reason: "workflow description is required"}
	ErrGated              = errors.New("optimizer: no usable credential selected")
	ErrSubmissionInFlight = errors.New("optimizer: a submission is already in flight")
	ErrInvalidTransition  = errors.New("optimizer: transition not allowed from current state")
)

// credentialPattern matches remote failure descriptions that mean the key is
// missing or not usable, e.g. "Requested entity was not found."
var credentialPattern = regexp.MustCompile(`(?i)\bnot found\b`)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("optimizer: invalid %s: %s", e.Field, e.Reason)
}

type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	if e.Err == nil {
		return "optimizer: credential rejected"
	}
	return "optimizer: credential rejected: " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error { return e.Err }

type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "optimizer: transport failure"
	}
	return "optimizer: transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "optimizer: reply does not match schema: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// KindOf returns the kind of a submission failure. Unknown errors count as
// transport failures.
func KindOf(err error) ErrorKind {
	var (
		vErr *ValidationError
		cErr *CredentialError
		sErr *SchemaError
	)
	switch {
	case errors.As(err, &vErr):
		return KindValidation
	case errors.As(err, &cErr):
		return KindCredential
	case errors.As(err, &sErr):
		return KindSchema
	default:
		return KindTransport
	}
}

// UserMessage renders the display string for a failed submission.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindSchema, KindCredential:
		return CombinedFailureMessage
	case KindValidation:
		var vErr *ValidationError
		errors.As(err, &vErr)
		return vErr.Reason
	}
	if errors.Is(err, llm.ErrRateLimited) {
		return GenericFailureMessage
	}
	var tErr *TransportError
	if errors.As(err, &tErr) && tErr.Err != nil {
		if msg := strings.TrimSpace(tErr.Err.Error()); msg != "" {
			return msg
		}
	}
	return GenericFailureMessage
}

// IsCredentialShaped reports whether err should send the user back to the
// credential gate: either a classified CredentialError or any failure whose
// description matches the credential pattern.
func IsCredentialShaped(err error) bool {
	if err == nil {
		return false
	}
	var cErr *CredentialError
	if errors.As(err, &cErr) {
		return true
	}
	return credentialPattern.MatchString(err.Error())
}
