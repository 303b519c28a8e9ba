package handlers

import (
	"movie-booking/internal/middleware"
	"movie-booking/internal/models"
	"movie-booking/internal/services"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service services.BookingService
	logger  *logrus.Logger
}

func NewBookingHandler(service services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

func customer(c *fiber.Ctx) services.Customer {
	return services.Customer{ID: middleware.UserID(c), Email: middleware.Email(c)}
}

// SeatMap godoc
// @Summary Seat map of a showtime
// @Description Seats are available, held, occupied, or selected (held by the caller when a token is sent)
// @Tags booking
// @Produce json
// @Param id path int true "Showtime ID"
// @Success 200 {object} utils.StandardResponse{data=services.SeatMapView}
// @Failure 404 {object} utils.StandardResponse "Showtime not found"
// @Router /showtimes/{id}/seats [get]
func (h *BookingHandler) SeatMap(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid showtime ID")
	}

	view, err := h.service.SeatMap(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve seat map")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Seat map retrieved successfully", view)
}

// Quote godoc
// @Summary Price a seat selection
// @Tags booking
// @Accept json
// @Produce json
// @Param id path int true "Showtime ID"
// @Param body body services.SeatsInput true "Seats"
// @Success 200 {object} utils.StandardResponse{data=seating.Quote}
// @Failure 400 {object} utils.StandardResponse
// @Router /showtimes/{id}/quote [post]
func (h *BookingHandler) Quote(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid showtime ID")
	}
	var req services.SeatsInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	quote, err := h.service.Quote(c.UserContext(), id, req.Seats)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to quote seats")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Quote calculated successfully", quote)
}

// Hold godoc
// @Summary Hold seats for the caller
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Showtime ID"
// @Param body body services.SeatsInput true "Seats"
// @Success 200 {object} utils.StandardResponse{data=services.HoldResult}
// @Failure 409 {object} utils.StandardResponse "Some seats are unavailable"
// @Router /showtimes/{id}/holds [post]
func (h *BookingHandler) Hold(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid showtime ID")
	}
	var req services.SeatsInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.service.Hold(c.UserContext(), customer(c), id, req.Seats)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to hold seats")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Seats held successfully", res)
}

// ReleaseHolds godoc
// @Summary Release the caller's holds on a showtime
// @Tags booking
// @Produce json
// @Security BearerAuth
// @Param id path int true "Showtime ID"
// @Success 200 {object} utils.StandardResponse
// @Router /showtimes/{id}/holds [delete]
func (h *BookingHandler) ReleaseHolds(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid showtime ID")
	}

	if err := h.service.ReleaseHolds(c.UserContext(), customer(c), id); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to release seats")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Seats released successfully", nil)
}

// Checkout godoc
// @Summary Buy seats
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CheckoutInput true "Order"
// @Success 201 {object} utils.StandardResponse{data=models.Order}
// @Failure 400 {object} utils.StandardResponse
// @Failure 409 {object} utils.StandardResponse "Some seats are unavailable"
// @Router /orders [post]
func (h *BookingHandler) Checkout(c *fiber.Ctx) error {
	var req services.CheckoutInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.Checkout(c.UserContext(), customer(c), req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to place order")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Order confirmed", order)
}

// ListOrders godoc
// @Summary The caller's orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=[]models.Order}
// @Router /orders [get]
func (h *BookingHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Orders retrieved successfully", orders)
}

// GetOrder godoc
// @Summary Get one of the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} utils.StandardResponse{data=models.Order}
// @Failure 404 {object} utils.StandardResponse "Order not found"
// @Router /orders/{id} [get]
func (h *BookingHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.service.GetOrder(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve order")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Order retrieved successfully", order)
}

// CancelOrder godoc
// @Summary Cancel an order before the showtime starts
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} utils.StandardResponse{data=models.Order}
// @Failure 404 {object} utils.StandardResponse "Order not found"
// @Failure 409 {object} utils.StandardResponse "Order cannot be cancelled"
// @Router /orders/{id} [delete]
func (h *BookingHandler) CancelOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.service.CancelOrder(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to cancel order")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Order cancelled successfully", order)
}
