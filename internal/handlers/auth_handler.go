package handlers

import (
	"movie-booking/internal/middleware"
	"movie-booking/internal/models"
	"movie-booking/internal/services"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	auth     services.AuthService
	bookings services.BookingService
	logger   *logrus.Logger
}

func NewAuthHandler(auth services.AuthService, bookings services.BookingService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, bookings: bookings, logger: logger}
}

// Register godoc
// @Summary Register a customer account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration"
// @Success 201 {object} utils.StandardResponse{data=services.AuthResult}
// @Failure 400 {object} utils.StandardResponse "Validation failed"
// @Failure 409 {object} utils.StandardResponse "Email is already registered"
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to register")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Registered successfully", res)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} utils.StandardResponse{data=services.AuthResult}
// @Failure 401 {object} utils.StandardResponse "Invalid email or password"
// @Failure 429 {object} utils.StandardResponse "Too many attempts"
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to log in")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Logged in successfully", res)
}

// GetProfile godoc
// @Summary Current user and order history
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=ProfileResponse}
// @Failure 401 {object} utils.StandardResponse
// @Router /profile [get]
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	user, err := h.auth.GetProfile(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve profile")
	}
	orders, err := h.bookings.ListOrders(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve profile")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Profile retrieved successfully", ProfileResponse{User: user, Orders: orders})
}

// UpdateProfile godoc
// @Summary Update name, favorite genres and notification preference
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProfileInput true "Profile fields"
// @Success 200 {object} utils.StandardResponse{data=models.User}
// @Failure 400 {object} utils.StandardResponse
// @Failure 401 {object} utils.StandardResponse
// @Router /profile [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to update profile")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Profile updated successfully", user)
}
