// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Migration and storage errors
	CodeSchema              Code = "SCHEMA_ERROR"
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"
	CodeLedgerCorruption    Code = "LEDGER_CORRUPTION"
	CodeNotFound            Code = "NOT_FOUND"

	// Input errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// User errors
	CodeUserInvalidEmail       Code = "USER_INVALID_EMAIL"
	CodeUserEmptyName          Code = "USER_EMPTY_NAME"
	CodeUserInvalidRole        Code = "USER_INVALID_ROLE"
	CodeUserWeakPassword       Code = "USER_WEAK_PASSWORD"
	CodeUserInvalidPermissions Code = "USER_INVALID_PERMISSIONS"
	CodeUserInvalidCredentials Code = "USER_INVALID_CREDENTIALS"

	// Product errors
	CodeProductEmptyName    Code = "PRODUCT_EMPTY_NAME"
	CodeProductInvalidPrice Code = "PRODUCT_INVALID_PRICE"
	CodeProductInvalidStock Code = "PRODUCT_INVALID_STOCK"

	// Customer errors
	CodeCustomerEmptyName    Code = "CUSTOMER_EMPTY_NAME"
	CodeCustomerInvalidEmail Code = "CUSTOMER_INVALID_EMAIL"

	// Order errors
	CodeOrderInvalidStatus           Code = "ORDER_INVALID_STATUS"
	CodeOrderInvalidStatusTransition Code = "ORDER_INVALID_STATUS_TRANSITION"
	CodeOrderInvalidPaymentMethod    Code = "ORDER_INVALID_PAYMENT_METHOD"
	CodeOrderInvalidQuantity         Code = "ORDER_INVALID_QUANTITY"
	CodeOrderEmpty                   Code = "ORDER_EMPTY"
	CodeOrderInsufficientStock       Code = "ORDER_INSUFFICIENT_STOCK"
	CodeOrderNotEditable             Code = "ORDER_NOT_EDITABLE"

	// Settings errors
	CodeSettingsEmptyName       Code = "SETTINGS_EMPTY_NAME"
	CodeSettingsInvalidTax      Code = "SETTINGS_INVALID_TAX"
	CodeSettingsInvalidLanguage Code = "SETTINGS_INVALID_LANGUAGE"
)

// Retryable reports whether a caller may retry the failed operation after a delay.
func (c Code) Retryable() bool {
	return c == CodeStorageUnavailable
}

// Fatal reports whether the code must abort startup when raised while migrating.
func (c Code) Fatal() bool {
	switch c {
	case CodeSchema, CodeStorageUnavailable, CodeLedgerCorruption:
		return true
	default:
		return false
	}
}
