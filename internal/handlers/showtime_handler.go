package handlers

import (
	"movie-booking/internal/models"
	"movie-booking/internal/services"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ShowtimeHandler struct {
	service services.ShowtimeService
	logger  *logrus.Logger
}

func NewShowtimeHandler(service services.ShowtimeService, logger *logrus.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{service: service, logger: logger}
}

// ListByMovie godoc
// @Summary Upcoming showtimes of a movie
// @Tags showtimes
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} utils.StandardResponse{data=[]models.Showtime}
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Router /movies/{id}/showtimes [get]
func (h *ShowtimeHandler) ListByMovie(c *fiber.Ctx) error {
	movieID, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	showtimes, err := h.service.ListByMovie(c.UserContext(), movieID)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve showtimes")
	}
	if showtimes == nil {
		showtimes = []models.Showtime{}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Showtimes retrieved successfully", showtimes)
}

// Create godoc
// @Summary Schedule a showtime (admin only)
// @Tags showtimes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param body body services.ShowtimeInput true "Showtime"
// @Success 201 {object} utils.StandardResponse{data=models.Showtime}
// @Failure 400 {object} utils.StandardResponse
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Router /movies/{id}/showtimes [post]
func (h *ShowtimeHandler) Create(c *fiber.Ctx) error {
	movieID, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	var req services.ShowtimeInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	showtime, err := h.service.Create(c.UserContext(), movieID, req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to create showtime")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Showtime created successfully", showtime)
}

// Get godoc
// @Summary Get a showtime with its movie
// @Tags showtimes
// @Produce json
// @Param id path int true "Showtime ID"
// @Success 200 {object} utils.StandardResponse{data=models.Showtime}
// @Failure 404 {object} utils.StandardResponse "Showtime not found"
// @Router /showtimes/{id} [get]
func (h *ShowtimeHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid showtime ID")
	}

	showtime, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve showtime")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Showtime retrieved successfully", showtime)
}

// Delete godoc
// @Summary Delete a showtime (admin only)
// @Tags showtimes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Showtime ID"
// @Success 200 {object} utils.StandardResponse
// @Failure 404 {object} utils.StandardResponse "Showtime not found"
// @Failure 409 {object} utils.StandardResponse "Showtime has confirmed orders"
// @Router /showtimes/{id} [delete]
func (h *ShowtimeHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid showtime ID")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to delete showtime")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Showtime deleted successfully", nil)
}
