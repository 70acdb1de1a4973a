package service

import "errors"

var (
	// ErrInvalidUserID is returned by lookups given a blank user id
	ErrInvalidUserID = errors.New("user id is blank")

	// ErrUnexpectedScriptResult is returned when the atomic purchase script replies
	// with a status code this build does not know, which means the deployed script
	// and this consumer are out of sync
	ErrUnexpectedScriptResult = errors.New("unexpected purchase script result")
)
