package domain

import (
	"errors"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrLocked             = errors.New("resource is locked")

	// Forum action errors
	ErrAlreadyActed  = errors.New("post action already exists")
	ErrInvalidAccess = errors.New("not permitted")

	// Telegram transport errors
	ErrTelegramAPI      = errors.New("telegram api request failed")
	ErrTelegramDisabled = errors.New("telegram notifications are disabled")
	ErrNoAccessToken    = errors.New("telegram access token is not configured")
)

// ValidationError carries the user-facing reasons a post was rejected.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// FullMessages joins the reasons one per line, the way they are shown to users.
func (e *ValidationError) FullMessages() string {
	return strings.Join(e.Messages, "\n")
}
