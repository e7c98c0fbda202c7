package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mindfulpages/order-intake/internal/domain"
)

// CheckoutSuccess is the wire shape of a placed order.
type CheckoutSuccess struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId"`
	OrderDate time.Time `json:"orderDate"`
}

// CheckoutError is the wire shape of every failure branch. Details, Code,
// Hint and RLSError are only populated for the branches that carry them.
type CheckoutError struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Code     string `json:"code,omitempty"`
	Hint     string `json:"hint,omitempty"`
	RLSError bool   `json:"rls_error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, message, orderNumber string, orderDate time.Time) error {
	return c.Status(fiber.StatusOK).JSON(CheckoutSuccess{
		Success:   true,
		Message:   message,
		OrderID:   orderNumber,
		OrderDate: orderDate,
	})
}

// IntakeErrorResponse maps a typed intake error to its status code and body.
func IntakeErrorResponse(c *fiber.Ctx, err *domain.IntakeError) error {
	body := CheckoutError{
		Error:   err.Message,
		Details: err.Details,
		Code:    err.Code,
		Hint:    err.Hint,
	}

	switch err.Kind {
	case domain.ErrKindMethodNotAllowed:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(body)
	case domain.ErrKindMissingOrderInformation,
		domain.ErrKindMissingCustomerInformation,
		domain.ErrKindInvalidEmailFormat,
		domain.ErrKindPaymentIncomplete:
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case domain.ErrKindRowLevelSecurityBlocked:
		body.RLSError = true
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

func BadRequestResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(CheckoutError{Error: message})
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(CheckoutError{Error: message})
}
