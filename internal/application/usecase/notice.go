package usecase

import (
	"errors"
	"fmt"

	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// SessionExpiredMessage is shown for every authorization failure.
const SessionExpiredMessage = "Session expired. Please log in again."

// NoticeLevel is how loudly a notice is shown.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is the user-visible form of an error.
type Notice struct {
	Level     NoticeLevel
	Message   string
	SignedOut bool
}

// NoticeFor maps err to the message shown to the user. A nil error yields a zero Notice.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{}
	}

	switch {
	case errors.Is(err, types.ErrNotAuthenticated):
		return Notice{Level: NoticeWarning, Message: "You are not signed in. Please log in first."}
	case errors.Is(err, types.ErrSubmissionInProgress):
		return Notice{Level: NoticeWarning, Message: "Please wait for the current submission to finish."}
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return Notice{Level: NoticeError, Message: err.Error()}
	}

	if appErr.Kind == types.KindPartialPipelineFailure {
		return partialNotice(appErr)
	}
	if types.IsAuthExpired(err) {
		return Notice{Level: NoticeError, Message: SessionExpiredMessage, SignedOut: true}
	}

	switch appErr.Kind {
	case types.KindValidation:
		return Notice{Level: NoticeWarning, Message: "Please check your input: " + appErr.Message}
	case types.KindAuthRejected:
		return Notice{Level: NoticeError, Message: "Authentication failed: " + appErr.Message}
	case types.KindNetworkFailure:
		return Notice{Level: NoticeError, Message: "Could not reach the finance service. Check your connection and try again."}
	case types.KindServerError:
		return Notice{Level: NoticeError, Message: "The server reported an error: " + appErr.Message}
	case types.KindMalformedResponse:
		return Notice{Level: NoticeError, Message: "The finance service returned an unexpected response."}
	case types.KindExtraction:
		msg := appErr.Message
		if appErr.Err != nil {
			msg = causeMessage(appErr.Err)
		}
		return Notice{Level: NoticeError, Message: "Failed to process receipt: " + msg}
	default:
		return Notice{Level: NoticeError, Message: appErr.Error()}
	}
}

func partialNotice(appErr *types.AppError) Notice {
	n := Notice{Level: NoticeWarning}
	switch appErr.Stage {
	case types.StageResync:
		n.Message = "Receipt processed and expense added, but the dashboard could not be refreshed"
	default:
		n.Message = "Receipt processed but failed to add expense automatically. Please review the extracted details and add it manually"
	}
	if types.IsAuthExpired(appErr) {
		n.Message += ". " + SessionExpiredMessage
		n.SignedOut = true
		return n
	}
	if appErr.Err != nil {
		n.Message = fmt.Sprintf("%s (%s)", n.Message, causeMessage(appErr.Err))
	} else {
		n.Message += "."
	}
	return n
}

func causeMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		if appErr.Err != nil {
			return appErr.Err.Error()
		}
	}
	return err.Error()
}
