package domain

import "errors"

// Sentinel errors shared across services, repositories, and handlers.
// Services wrap these with %w; handlers map them to HTTP statuses with
// errors.Is. Anything not in this list surfaces as a 500.
var (
	// ErrValidation covers bad input shape or length. Messages wrapped
	// around it may be specific (admin-facing) but must never leak
	// account existence.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateIdentity is returned when (email, platform) is already
	// taken. The storage layer also maps unique-constraint violations to
	// this error, closing the check-then-insert race.
	ErrDuplicateIdentity = errors.New("email already registered on this platform")

	ErrPlatformNotFound = errors.New("platform not found")
	ErrPlatformInactive = errors.New("platform is inactive")

	// ErrInvalidCredentials is deliberately undifferentiated: wrong email,
	// wrong password, and unknown platform user all look the same to the
	// caller to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAccountPending = errors.New("account pending approval")
	ErrAccountBlocked = errors.New("account blocked")

	ErrRoleForbidden   = errors.New("insufficient role")
	ErrTenantIsolation = errors.New("target belongs to another platform")
	ErrSelfAction      = errors.New("operation not allowed on own account")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateCode   = errors.New("platform code already exists")
)
