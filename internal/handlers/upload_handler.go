package handlers

import (
	"movie-booking/internal/services"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UploadHandler struct {
	banners services.BannerStorage
	logger  *logrus.Logger
}

// NewUploadHandler accepts a nil storage; uploads then answer 503.
func NewUploadHandler(banners services.BannerStorage, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		banners: banners,
		logger:  logger,
	}
}

// GetPresignedURL godoc
// @Summary Get presigned URL for banner upload
// @Description Generate a presigned PUT URL for uploading a banner image to MinIO/S3 (admin only)
// @Tags Upload
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param filename query string true "Filename"
// @Param contentType query string false "Content Type" default(image/jpeg)
// @Success 200 {object} utils.StandardResponse{data=services.UploadTicket}
// @Failure 400 {object} utils.StandardResponse
// @Failure 500 {object} utils.StandardResponse
// @Failure 503 {object} utils.StandardResponse
// @Router /upload/presign [get]
func (h *UploadHandler) GetPresignedURL(c *fiber.Ctx) error {
	if h.banners == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Banner storage is not configured")
	}

	filename := c.Query("filename")
	if filename == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "filename is required")
	}

	contentType := c.Query("contentType", "image/jpeg")

	ticket, err := h.banners.PresignUpload(c.UserContext(), filename, contentType)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to generate presigned URL")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Presigned URL generated successfully", ticket)
}
