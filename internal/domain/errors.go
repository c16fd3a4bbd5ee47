package domain

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrFetch           = errors.New("fetch listings failed")
	ErrAuth            = errors.New("session could not be restored")
	ErrPersistence     = errors.New("persistence failed")
	ErrContact         = errors.New("contact failed")
	ErrMFARequired     = errors.New("two-factor verification required")
)
