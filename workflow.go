package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// State is the remote conversion lifecycle.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateConverting
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateConverting:
		return "converting"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateIdle:       {StateUploading},
	StateUploading:  {StateConverting, StateError},
	StateConverting: {StateCompleted, StateError},
	StateCompleted:  {StateIdle},
	StateError:      {StateIdle},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ConversionAPI is the part of the remote service the workflow needs.
type ConversionAPI interface {
	Upload(ctx context.Context, src SourceFile, progress ProgressFunc) (*UploadResponse, error)
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error)
	BaseURL() string
}

// Workflow tracks one remote conversion at a time. It is not safe for
// concurrent use; the TUI only touches it from its update loop.
type Workflow struct {
	api     ConversionAPI
	maxSize int64
	logger  hclog.Logger

	state       State
	source      SourceFile
	sessionID   string
	filename    string
	downloadURL string
	message     string
	err         error
}

func NewWorkflow(api ConversionAPI, maxSize int64, logger hclog.Logger) *Workflow {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Workflow{api: api, maxSize: maxSize, logger: logger.Named("workflow")}
}

func (w *Workflow) State() State         { return w.state }
func (w *Workflow) Message() string      { return w.message }
func (w *Workflow) DownloadURL() string  { return w.downloadURL }
func (w *Workflow) SessionID() string    { return w.sessionID }
func (w *Workflow) Source() SourceFile   { return w.source }
func (w *Workflow) API() ConversionAPI   { return w.api }
func (w *Workflow) UploadedName() string { return w.filename }
func (w *Workflow) Err() error           { return w.err }

func (w *Workflow) transition(to State) error {
	if !canTransition(w.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.state, to)
	}
	w.logger.Debug("state change", "from", w.state, "to", to)
	w.state = to
	return nil
}

// Begin validates src and moves to uploading. A rejected file leaves the
// workflow idle.
func (w *Workflow) Begin(src SourceFile) error {
	if w.state != StateIdle {
		return fmt.Errorf("%w: begin while %s", ErrInvalidTransition, w.state)
	}
	if err := CheckSource(src, w.maxSize); err != nil {
		return err
	}
	w.source = src
	w.clear()
	return w.transition(StateUploading)
}

func (w *Workflow) Uploaded(resp *UploadResponse) error {
	if err := w.transition(StateConverting); err != nil {
		return err
	}
	w.sessionID = resp.SessionID
	w.filename = resp.Filename
	w.logger.Info("uploaded", "file", w.source.Name, "session_id", resp.SessionID)
	return nil
}

// ConvertRequest builds the payload for the current session.
func (w *Workflow) ConvertRequest(opts Options) ConvertRequest {
	return BuildConvertRequest(opts, w.filename, w.sessionID)
}

func (w *Workflow) Converted(resp *ConvertResponse) error {
	if err := w.transition(StateCompleted); err != nil {
		return err
	}
	w.downloadURL = ResolveDownloadURL(w.api.BaseURL(), resp.DownloadURL)
	w.logger.Info("converted", "session_id", w.sessionID, "download_url", w.downloadURL)
	return nil
}

// Fail records err as the reason for the error state. Errors from a step
// are classified by the step that produced them.
func (w *Workflow) Fail(err error) error {
	err = classify(w.state, err)
	if terr := w.transition(StateError); terr != nil {
		return terr
	}
	w.err = err
	w.message = DisplayMessage(err)
	w.logger.Error("conversion failed", "error", err)
	return nil
}

func classify(state State, err error) error {
	var we *WorkflowError
	if errors.As(err, &we) {
		return err
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch state {
		case StateUploading:
			return ErrUploadFailed(err)
		case StateConverting:
			return ErrConvertFailed(se.Detail, err)
		}
	}
	if err == nil {
		return &WorkflowError{Code: CodeUnexpected, Message: msgUnknown}
	}
	return &WorkflowError{Code: CodeUnexpected, Message: DisplayMessage(err), Err: err}
}

func (w *Workflow) clear() {
	w.sessionID, w.filename, w.downloadURL, w.message = "", "", "", ""
	w.err = nil
}

// Reset returns to idle from completed or error.
func (w *Workflow) Reset() error {
	if w.state == StateIdle {
		return nil
	}
	if err := w.transition(StateIdle); err != nil {
		return err
	}
	w.source = SourceFile{}
	w.clear()
	return nil
}

// Retry goes back to idle after an error, keeping the source for another
// attempt.
func (w *Workflow) Retry() error {
	if w.state != StateError {
		return fmt.Errorf("%w: retry while %s", ErrInvalidTransition, w.state)
	}
	src := w.source
	if err := w.Reset(); err != nil {
		return err
	}
	w.source = src
	return nil
}

// Abandon drops local state whatever the current state is. Requests that
// are still in flight are not cancelled; their results are ignored by the
// caller.
func (w *Workflow) Abandon() {
	w.state = StateIdle
	w.source = SourceFile{}
	w.clear()
}

// Run performs upload then convert synchronously. Every failure ends in
// StateError and is returned as a *WorkflowError.
func (w *Workflow) Run(ctx context.Context, src SourceFile, opts Options, onState func(State)) error {
	notify := func() {
		if onState != nil {
			onState(w.state)
		}
	}

	if err := w.Begin(src); err != nil {
		return err
	}
	notify()

	up, err := w.api.Upload(ctx, src, nil)
	if err != nil {
		_ = w.Fail(err)
		notify()
		return w.err
	}
	if err := w.Uploaded(up); err != nil {
		return err
	}
	notify()

	conv, err := w.api.Convert(ctx, w.ConvertRequest(opts))
	if err != nil {
		_ = w.Fail(err)
		notify()
		return w.err
	}
	if err := w.Converted(conv); err != nil {
		return err
	}
	notify()
	return nil
}
