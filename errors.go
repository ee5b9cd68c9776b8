package main

import (
	"errors"
	"fmt"
)

const (
	CodeUnsupportedType = "unsupported_type"
	CodeFileTooLarge    = "file_too_large"
	CodeUploadFailed    = "upload_failed"
	CodeConvertFailed   = "convert_failed"
	CodeUnexpected      = "unexpected"

	msgUploadFailed  = "upload failed"
	msgConvertFailed = "conversion failed"
	msgUnknown       = "unknown error"
)

// WorkflowError carries a stable code, the message shown to the user and
// the underlying cause, if any.
type WorkflowError struct {
	Code    string
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

var (
	ErrUnsupportedType = func(name string) *WorkflowError {
		return &WorkflowError{Code: CodeUnsupportedType, Message: fmt.Sprintf("%s is not a supported video or image file", name)}
	}
	ErrFileTooLarge = func(size, limit string) *WorkflowError {
		return &WorkflowError{Code: CodeFileTooLarge, Message: fmt.Sprintf("file is %s; the limit is %s", size, limit)}
	}
	ErrUploadFailed = func(err error) *WorkflowError {
		return &WorkflowError{Code: CodeUploadFailed, Message: msgUploadFailed, Err: err}
	}
	ErrConvertFailed = func(detail string, err error) *WorkflowError {
		if detail == "" {
			detail = msgConvertFailed
		}
		return &WorkflowError{Code: CodeConvertFailed, Message: detail, Err: err}
	}
)

var ErrInvalidTransition = errors.New("invalid workflow transition")

// StatusError is returned by the client for a non-2xx response.
type StatusError struct {
	Op     string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

// DisplayMessage turns any workflow failure into the single line the user
// sees in the error state.
func DisplayMessage(err error) string {
	if err == nil {
		return msgUnknown
	}
	var we *WorkflowError
	if errors.As(err, &we) && we.Message != "" {
		return we.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnknown
}
