package domain

import (
	"errors"
	"fmt"
)

// ErrOrderNumberTaken signals a unique violation on the order number; the
// intake loop regenerates the number and retries the insert.
var ErrOrderNumberTaken = errors.New("order number already taken")

// IntakeErrorKind distinguishes the failure branches of order intake so the
// HTTP layer can map each one to a status code and response shape.
type IntakeErrorKind string

const (
	ErrKindMethodNotAllowed           IntakeErrorKind = "method_not_allowed"
	ErrKindServerConfiguration        IntakeErrorKind = "server_configuration"
	ErrKindMissingOrderInformation    IntakeErrorKind = "missing_order_information"
	ErrKindMissingCustomerInformation IntakeErrorKind = "missing_customer_information"
	ErrKindInvalidEmailFormat         IntakeErrorKind = "invalid_email_format"
	ErrKindPaymentIncomplete          IntakeErrorKind = "payment_incomplete"
	ErrKindRowLevelSecurityBlocked    IntakeErrorKind = "row_level_security_blocked"
	ErrKindPersistenceFailure         IntakeErrorKind = "persistence_failure"
	ErrKindCollisionExhausted         IntakeErrorKind = "collision_exhausted"
)

type IntakeError struct {
	Kind    IntakeErrorKind
	Message string
	Details string
	Code    string
	Hint    string
}

func (e *IntakeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func ErrMethodNotAllowed() *IntakeError {
	return &IntakeError{Kind: ErrKindMethodNotAllowed, Message: "Method not allowed"}
}

func ErrServerConfiguration(details string) *IntakeError {
	return &IntakeError{
		Kind:    ErrKindServerConfiguration,
		Message: "Server configuration error",
		Details: details,
	}
}

func ErrMissingOrderInformation() *IntakeError {
	return &IntakeError{Kind: ErrKindMissingOrderInformation, Message: "Missing required order information"}
}

func ErrMissingCustomerInformation() *IntakeError {
	return &IntakeError{Kind: ErrKindMissingCustomerInformation, Message: "Missing required customer information"}
}

func ErrInvalidEmailFormat() *IntakeError {
	return &IntakeError{Kind: ErrKindInvalidEmailFormat, Message: "Invalid email format"}
}

func ErrPaymentIncomplete(status string) *IntakeError {
	return &IntakeError{
		Kind:    ErrKindPaymentIncomplete,
		Message: "Payment has not been completed",
		Details: fmt.Sprintf("payment intent status: %s", status),
	}
}

func ErrRowLevelSecurityBlocked(details, code string) *IntakeError {
	return &IntakeError{
		Kind:    ErrKindRowLevelSecurityBlocked,
		Message: "Database security policy blocked the order",
		Details: details,
		Code:    code,
		Hint:    "Allow inserts on the orders table for the application role, or configure the elevated service credential",
	}
}

func ErrPersistenceFailure(details, code string) *IntakeError {
	return &IntakeError{
		Kind:    ErrKindPersistenceFailure,
		Message: "Failed to save order",
		Details: details,
		Code:    code,
	}
}

func ErrCollisionExhausted(attempts int) *IntakeError {
	return &IntakeError{
		Kind:    ErrKindCollisionExhausted,
		Message: "Could not allocate a unique order number",
		Details: fmt.Sprintf("%d generation attempts collided", attempts),
	}
}
