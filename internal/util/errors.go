package util

import "errors"

// Policy violations: surfaced to the caller verbatim, not retryable.
var (
	ErrTestNotFound        = errors.New("test not found")
	ErrTestNotPublished    = errors.New("test not published")
	ErrOutsideWindow       = errors.New("test window is not open")
	ErrAttemptLimitReached = errors.New("attempt limit reached")
)

// State violations: client misuse or a lost race.
var (
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptNotSubmitted     = errors.New("attempt not yet submitted")
	ErrQuestionNotInTest       = errors.New("question does not belong to this test")
	ErrReportNotFound          = errors.New("session report not found")
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrRootAdminExists    = errors.New("root admin already initialized")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
