package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnavailable        = errors.New("storage unavailable")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context for query")

	// Redemption errors
	ErrCodeNotFound        = errors.New("access code not found")
	ErrCodeExpired         = errors.New("access code expired")
	ErrCodeNotYetActive    = errors.New("access code not yet active")
	ErrUsageLimitReached   = errors.New("access code usage limit reached")
	ErrAlreadyRedeemed     = errors.New("access code already redeemed by this user")
	ErrCodeDeactivated     = errors.New("access code deactivated")
	ErrPersistenceConflict = errors.New("persistence conflict, retry")

	// Resolution errors
	ErrScopeMismatch = errors.New("entitlement scope does not cover this content")

	// Rate limiting
	ErrRateLimited = errors.New("too many attempts")
)

// Kind returns a stable machine-readable identifier for a domain error so the
// transport layer can map it to a status code without string matching.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrCodeNotFound):
		return "code_not_found"
	case errors.Is(err, ErrCodeExpired):
		return "code_expired"
	case errors.Is(err, ErrCodeNotYetActive):
		return "code_not_yet_active"
	case errors.Is(err, ErrUsageLimitReached):
		return "usage_limit_reached"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, ErrCodeDeactivated):
		return "code_deactivated"
	case errors.Is(err, ErrScopeMismatch):
		return "scope_mismatch"
	case errors.Is(err, ErrPersistenceConflict):
		return "persistence_conflict"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

// HumanMessage maps a domain error to a message safe to show end users.
// Redemption failures are deliberately distinct (clarity over
// code-enumeration resistance); the redeem route is rate limited instead.
func HumanMessage(err error) string {
	switch {
	case errors.Is(err, ErrCodeNotFound):
		return "We couldn't find that code. Please check it and try again."
	case errors.Is(err, ErrCodeExpired):
		return "This code has expired."
	case errors.Is(err, ErrCodeNotYetActive):
		return "This code is not active yet."
	case errors.Is(err, ErrUsageLimitReached):
		return "This code has reached its usage limit."
	case errors.Is(err, ErrAlreadyRedeemed):
		return "You have already redeemed this code."
	case errors.Is(err, ErrCodeDeactivated):
		return "This code is no longer valid."
	case errors.Is(err, ErrScopeMismatch):
		return "This code does not cover the requested content."
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts. Please wait a moment and try again."
	case errors.Is(err, ErrUnavailable):
		return "Service temporarily unavailable. Please try again shortly."
	default:
		return "Something went wrong. Please try again."
	}
}
