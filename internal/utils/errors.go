package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrValidation         = errors.New("VALIDATION_ERROR")
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrCustomerNotFound   = errors.New("CUSTOMER_NOT_FOUND")
	ErrSaleNotFound       = errors.New("SALE_NOT_FOUND")
	ErrDraftNotFound      = errors.New("DRAFT_NOT_FOUND")
	ErrAlertNotFound      = errors.New("ALERT_NOT_FOUND")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrEmptyItems         = errors.New("EMPTY_ITEMS")
	ErrNonPositiveTotal   = errors.New("NON_POSITIVE_TOTAL")
	ErrRateOutOfRange     = errors.New("RATE_OUT_OF_RANGE")
	ErrPriceMismatch      = errors.New("PRICE_MISMATCH")
	ErrTotalsMismatch     = errors.New("TOTALS_MISMATCH")
	ErrInsufficientStock  = errors.New("INSUFFICIENT_STOCK")
	ErrOutOfStock         = errors.New("OUT_OF_STOCK")
	ErrUserNotFound       = errors.New("USER_NOT_FOUND")
	ErrEmailTaken         = errors.New("EMAIL_TAKEN")
	ErrForbidden          = errors.New("FORBIDDEN")
	ErrLastAdmin          = errors.New("LAST_ADMIN")
)

// ValidationError carries a human-readable reason and matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
