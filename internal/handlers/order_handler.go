package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/mindfulpages/order-intake/internal/domain"
	intakehttp "github.com/mindfulpages/order-intake/internal/http"
	"github.com/mindfulpages/order-intake/internal/messaging"
	"github.com/mindfulpages/order-intake/internal/service"
)

type OrderHandler struct {
	orderService       *service.OrderService
	fulfillmentService *service.FulfillmentService
}

func NewOrderHandler(orderService *service.OrderService, fulfillmentService *service.FulfillmentService) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		fulfillmentService: fulfillmentService,
	}
}

// Checkout is the intake endpoint: validates the submission, verifies card
// payments, records the order and dispatches the notification emails.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var request domain.CheckoutRequest

	if err := c.BodyParser(&request); err != nil {
		return intakehttp.BadRequestResponse(c, "Invalid request body")
	}

	result, ierr := h.orderService.SubmitOrder(c.Context(), request)
	if ierr != nil {
		log.Printf("Order intake rejected: %v", ierr)
		return intakehttp.IntakeErrorResponse(c, ierr)
	}

	message := "Order placed successfully"
	if result.EmailFailed {
		message = "Order placed successfully, but confirmation email could not be sent"
	}

	return intakehttp.SuccessResponse(c, message, result.Order.OrderNumber, result.Order.OrderDate)
}

// MethodNotAllowed answers every non-POST verb on the checkout path.
func (h *OrderHandler) MethodNotAllowed(c *fiber.Ctx) error {
	return intakehttp.IntakeErrorResponse(c, domain.ErrMethodNotAllowed())
}

// GetOrderByNumber returns an order and its line items by display number.
func (h *OrderHandler) GetOrderByNumber(c *fiber.Ctx) error {
	orderNumber := c.Params("number")
	if len(orderNumber) != 6 {
		return intakehttp.BadRequestResponse(c, "Invalid order number")
	}

	order, err := h.orderService.GetOrderByNumber(c.Context(), orderNumber)
	if err != nil {
		return intakehttp.NotFoundResponse(c, "Order not found")
	}

	return c.Status(fiber.StatusOK).JSON(mapOrder(order))
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"service": "order-intake",
		"status":  "healthy",
	})
}

// StartConsuming binds the fulfillment consumer to the retry routing keys.
func (h *OrderHandler) StartConsuming(consumer *messaging.Consumer) error {
	routingKeys := []string{
		"orders.order-intake.order.items.retry",
		"orders.order-intake.order.notify.retry",
	}

	return consumer.ConsumeEvents(routingKeys, h.fulfillmentService.ProcessRetryEvent)
}
