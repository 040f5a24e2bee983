package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "INTEGRITY_CONFLICT"
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// DomainError carries a machine-readable code alongside the message so
// handlers can map business failures to HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message)
}

// NewConflictError reports a unique-key violation.
func NewConflictError(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}

// Common domain errors
var (
	ErrProductNotFound      = NewNotFoundError("product not found")
	ErrOrderNotFound        = NewNotFoundError("order not found")
	ErrReturnNotFound       = NewNotFoundError("return not found")
	ErrDiscountCodeNotFound = NewNotFoundError("discount code not found")
	ErrDuplicateSKU         = NewConflictError("a product with this SKU already exists")
	ErrInvalidQuantity      = NewValidationError("quantity must be greater than zero")
	ErrInvalidMovementType  = NewValidationError("movement type must be one of in, out or adjustment")
	ErrNoReturnableItems    = NewValidationError("return must contain at least one item with a positive quantity")
	ErrInvalidAmountUsed    = NewValidationError("amount used must be greater than zero")
	ErrCreditExceeded       = NewValidationError("amount used exceeds available credit")
	ErrCreditExpired        = NewValidationError("discount code has expired")
	ErrInvalidOrderStatus   = NewValidationError("invalid order status")
)
