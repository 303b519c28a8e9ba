package handlers

import (
	"errors"
	"strconv"
	"strings"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// handleServiceError maps domain errors onto the response envelope. Anything
// unrecognized is logged and answered with a 500 naming the operation.
func handleServiceError(c *fiber.Ctx, logger *logrus.Logger, err error, failure string) error {
	var (
		notFound     *apperrors.ErrNotFound
		validation   *apperrors.ErrValidation
		conflict     *apperrors.ErrConflict
		unauthorized *apperrors.ErrUnauthorized
		forbidden    *apperrors.ErrForbidden
		unavailable  *apperrors.ErrUnavailable
	)

	switch {
	case errors.As(err, &notFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, capitalize(notFound.Resource)+" not found")
	case errors.As(err, &validation):
		return utils.ErrorWithDataResponse(c, fiber.StatusBadRequest, "Validation failed", validation.Fields)
	case errors.As(err, &conflict):
		if len(conflict.Items) > 0 {
			return utils.ErrorWithDataResponse(c, fiber.StatusConflict, capitalize(conflict.Reason), fiber.Map{"items": conflict.Items})
		}
		return utils.ErrorResponse(c, fiber.StatusConflict, capitalize(conflict.Reason))
	case errors.As(err, &unauthorized):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, capitalize(unauthorized.Message))
	case errors.As(err, &forbidden):
		return utils.ErrorResponse(c, fiber.StatusForbidden, forbidden.Message)
	case errors.As(err, &unavailable):
		logger.WithError(err).WithField("route", c.Route().Path).Warn(failure)
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, capitalize(unavailable.Message))
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"route":  c.Route().Path,
	}).Error(failure)
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, failure)
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
