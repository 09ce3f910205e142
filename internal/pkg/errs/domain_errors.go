package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Subscription errors
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionConflict = errors.New("active subscription already exists")

	// Trip errors
	ErrTripNotFound = errors.New("trip not found")

	// Task errors
	ErrTaskNotFound = errors.New("task not found")

	// Notification errors
	ErrNotificationNotFound      = errors.New("notification not found")
	ErrNotificationNotResendable = errors.New("notification cannot be resent")

	// Concurrency control errors
	ErrPreconditionRequired = errors.New("precondition required")
	ErrPreconditionFailed   = errors.New("precondition failed")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
