package domain

import "errors"

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
)

// Authz errors
var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidRole = errors.New("invalid role")
)

// Ledger errors — business-rule rejections callers are expected to branch on,
// never used for control flow inside the ledger itself.
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrStudentNumberTaken  = errors.New("student number already registered")
	ErrItemNotFound        = errors.New("item not found")
	ErrItemUnavailable     = errors.New("item does not exist or is inactive")
	ErrItemAlreadyOnLoan   = errors.New("item already on loan")
	ErrAssetTagTaken       = errors.New("asset tag already in use")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
)
