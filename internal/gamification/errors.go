package gamification

import "errors"

var (
	// ErrInstanceNotFound means the referenced chore instance does not exist.
	ErrInstanceNotFound = errors.New("chore instance not found")
	// ErrUserNotFound means the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyResolved means the instance left pending before this attempt:
	// it was completed or skipped by someone else. The caller holds a stale
	// view and should re-fetch.
	ErrAlreadyResolved = errors.New("chore instance already resolved")
)
