package chat

import "errors"

var (
	// ErrClosed is returned by commands after Close
	ErrClosed = errors.New("chat: controller closed")
	// ErrNoCredential is returned when sending without a token
	ErrNoCredential = errors.New("chat: no credential")
	// ErrEmptyMessage is returned for a turn with no text and no attachment
	ErrEmptyMessage = errors.New("chat: empty message")
	// ErrPendingBusy is returned when a turn is already waiting for a socket
	ErrPendingBusy = errors.New("chat: a message is already pending")
	// ErrBootstrapFailed wraps the error from creating a session
	ErrBootstrapFailed = errors.New("chat: failed to start chat")
	// ErrBootstrapAbandoned is returned when the user left before creation finished
	ErrBootstrapAbandoned = errors.New("chat: session creation abandoned")
	// ErrNotConnected is returned when a command needs an open socket
	ErrNotConnected = errors.New("chat: not connected")
	// ErrMessageNotFound is returned when a command targets an unknown id
	ErrMessageNotFound = errors.New("chat: message not found")
	// ErrNotEditable is returned when editing an assistant message
	ErrNotEditable = errors.New("chat: only user messages can be edited")
)
