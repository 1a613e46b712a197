package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenConflict means a freshly signed value already exists in the
	// store. Values carry a random jti, so this points at a signer defect.
	ErrTokenConflict = errors.New("token value conflict")
	// ErrStoreUnavailable wraps token store faults. It is an outage, never
	// a security decision.
	ErrStoreUnavailable = errors.New("token store unavailable")

	// Permission/Access related errors
	ErrForbidden = errors.New("forbidden")

	// Content related errors
	ErrArticleNotFound = errors.New("article not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrPodcastNotFound = errors.New("podcast not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
