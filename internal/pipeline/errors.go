package pipeline

import (
	"errors"

	"github.com/Mavwarf/mkicns/internal/advisor"
	"github.com/Mavwarf/mkicns/internal/host"
	"github.com/Mavwarf/mkicns/internal/iconset"
)

// Message table codes. These are indices into messages, not process exit
// codes.
const (
	CodeCancelled  = 0
	CodeNoDocument = 1
)

var messages = []string{
	CodeCancelled:  "",
	CodeNoDocument: "No open document.",
}

// EndingScript is appended to every final message.
const EndingScript = "Ending script."

// ExitError ends a run with a message from the message table. Code 0 ends
// it silently.
type ExitError struct {
	Code int
}

// Message returns the user-facing text for the code, possibly empty.
func (e ExitError) Message() string {
	if e.Code >= 0 && e.Code < len(messages) {
		return messages[e.Code]
	}
	return ""
}

func (e ExitError) Error() string {
	if e.Code == CodeCancelled {
		return "cancelled by user"
	}
	if m := e.Message(); m != "" {
		return m
	}
	return "exit"
}

// Is lets ExitError match the sentinel errors it stands for.
func (e ExitError) Is(target error) bool {
	switch e.Code {
	case CodeCancelled:
		return target == advisor.ErrCancelled
	case CodeNoDocument:
		return target == host.ErrNoDocument
	}
	return false
}

// Message renders err as the single line shown when a run ends: the
// error's message followed by "Ending script.", or "Ending script." alone
// for a silent abort or an empty message. Export failures show the host's
// message as is. A nil error yields "".
func Message(err error) string {
	if err == nil {
		return ""
	}
	var msg string
	var ee ExitError
	var xe *iconset.ExportError
	switch {
	case errors.As(err, &ee):
		msg = ee.Message()
	case errors.As(err, &xe):
		// The host's own text, without the step context.
		msg = xe.Err.Error()
	default:
		msg = err.Error()
	}
	if msg == "" {
		return EndingScript
	}
	return msg + " " + EndingScript
}

// Silent reports whether err is a user cancellation.
func Silent(err error) bool {
	var ee ExitError
	return errors.As(err, &ee) && ee.Code == CodeCancelled
}
