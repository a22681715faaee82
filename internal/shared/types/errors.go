package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated     = errors.New("not signed in. Please run 'finance-dashboard login' first")
	ErrSubmissionInProgress = errors.New("another submission is still in progress")
	ErrInvalidPageDelta     = errors.New("page delta must be -1 or +1")
	ErrEmptyReceipt         = errors.New("receipt file is empty")
)

// ErrorKind classifies every failure the client can surface to the user.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthExpired
	KindValidation
	KindNetworkFailure
	KindServerError
	KindMalformedResponse
	KindExtraction
	KindPartialPipelineFailure
	KindAuthRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthExpired:
		return "AuthExpired"
	case KindValidation:
		return "ValidationError"
	case KindNetworkFailure:
		return "NetworkFailure"
	case KindServerError:
		return "ServerError"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindExtraction:
		return "ExtractionError"
	case KindPartialPipelineFailure:
		return "PartialPipelineFailure"
	case KindAuthRejected:
		return "AuthError"
	default:
		return "Unknown"
	}
}

// PipelineStage names the step of the receipt pipeline that failed after extraction succeeded.
type PipelineStage string

const (
	StageCreate PipelineStage = "create"
	StageResync PipelineStage = "resync"
)

// AppError is the single error type produced by adapters and use cases.
type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Stage   PipelineStage
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, msg)
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Stage, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewError builds an AppError of the given kind.
func NewError(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: cause}
}

// NewPartialFailure reports a receipt pipeline that extracted data but failed at stage.
func NewPartialFailure(stage PipelineStage, cause error) *AppError {
	msg := "receipt processed but failed to add expense automatically"
	if stage == StageResync {
		msg = "receipt processed but failed to refresh data"
	}
	return &AppError{Kind: KindPartialPipelineFailure, Message: msg, Stage: stage, Err: cause}
}

// KindOf returns the kind of the outermost AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsAuthExpired reports whether any AppError in err's chain is an authorization failure.
func IsAuthExpired(err error) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Kind == KindAuthExpired {
			return true
		}
		err = appErr.Err
	}
	return false
}
