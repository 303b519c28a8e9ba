package handlers

import (
	"strconv"

	"movie-booking/internal/models"
	"movie-booking/internal/services"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	service services.MovieService
	logger  *logrus.Logger
}

func NewMovieHandler(service services.MovieService, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		logger:  logger,
	}
}

// GetAllMovies godoc
// @Summary Get all movies
// @Description Get list of movies with pagination, genre/date filters, search and sorting
// @Tags movies
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param genre query string false "Exact genre name (case-insensitive)"
// @Param release_date query string false "Exact release date (YYYY-MM-DD)"
// @Param search query string false "Search by title or description"
// @Param sort_by query string false "Sort by field (id, title, release_date, rating, created_at, updated_at)" default(created_at)
// @Param order query string false "Sort order (asc/desc)" default(desc)
// @Param start_date query string false "Filter by start date (YYYY-MM-DD)"
// @Param end_date query string false "Filter by end date (YYYY-MM-DD)"
// @Success 200 {object} utils.StandardResponse{data=[]models.Movie,meta=utils.PaginationMeta} "List of movies"
// @Failure 400 {object} utils.StandardResponse "Invalid filter"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /movies [get]
func (h *MovieHandler) GetAllMovies(c *fiber.Ctx) error {
	ctx := c.UserContext()

	movies, total, applied, err := h.service.GetAllMovies(ctx, movieFilterFromQuery(c))
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve movies")
	}
	if movies == nil {
		movies = []models.Movie{}
	}

	meta := utils.CreatePaginationMeta(applied.Page, applied.Limit, total)
	return utils.SuccessWithMetaResponse(c, fiber.StatusOK, "Movies retrieved successfully", movies, meta)
}

// GetMovieByID godoc
// @Summary Get movie by ID
// @Description Get a single movie by its ID
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} utils.StandardResponse{data=models.Movie} "Movie details"
// @Failure 400 {object} utils.StandardResponse "Invalid movie ID"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovieByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	movie, err := h.service.GetMovieByID(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve movie")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie retrieved successfully", movie)
}

// CreateMovie godoc
// @Summary Create a new movie
// @Description Create a new movie entry (admin only)
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param movie body MovieRequest true "Movie request object"
// @Success 201 {object} utils.StandardResponse{data=models.Movie} "Movie created successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid request body"
// @Failure 401 {object} utils.StandardResponse "Unauthorized"
// @Failure 403 {object} utils.StandardResponse "Admin access required"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /movies [post]
func (h *MovieHandler) CreateMovie(c *fiber.Ctx) error {
	var req MovieRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	movie, err := h.service.CreateMovie(c.UserContext(), req.toInput())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to create movie")
	}

	h.logger.WithField("id", movie.ID).Info("Movie created")
	return utils.SuccessResponse(c, fiber.StatusCreated, "Movie created successfully", movie)
}

// UpdateMovie godoc
// @Summary Update a movie
// @Description Replace the editable fields of an existing movie (admin only)
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param movie body MovieRequest true "Movie request object"
// @Success 200 {object} utils.StandardResponse{data=models.Movie} "Movie updated successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid request"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /movies/{id} [put]
func (h *MovieHandler) UpdateMovie(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	var req MovieRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	movie, err := h.service.UpdateMovie(c.UserContext(), id, req.toInput())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to update movie")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movie updated successfully", movie)
}

// DeleteMovie godoc
// @Summary Delete a movie
// @Description Delete a movie by ID together with its showtimes (admin only)
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 200 {object} utils.StandardResponse "Movie deleted successfully"
// @Failure 400 {object} utils.StandardResponse "Invalid movie ID"
// @Failure 404 {object} utils.StandardResponse "Movie not found"
// @Failure 409 {object} utils.StandardResponse "Movie has showtimes with active orders"
// @Failure 500 {object} utils.StandardResponse "Internal server error"
// @Router /movies/{id} [delete]
func (h *MovieHandler) DeleteMovie(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid movie ID")
	}

	if err := h.service.DeleteMovie(c.UserContext(), id); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to delete movie")
	}

	h.logger.WithField("id", id).Info("Movie deleted")
	return utils.SuccessResponse(c, fiber.StatusOK, "Movie deleted successfully", nil)
}

// ListGenres godoc
// @Summary List genres
// @Description All genres known to the catalogue, ordered by name
// @Tags movies
// @Produce json
// @Success 200 {object} utils.StandardResponse{data=[]models.Genre} "Genres"
// @Router /genres [get]
func (h *MovieHandler) ListGenres(c *fiber.Ctx) error {
	genres, err := h.service.ListGenres(c.UserContext())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve genres")
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Genres retrieved successfully", genres)
}

// SyncMoviesFromTMDB godoc
// @Summary Sync movies from TMDB
// @Description Fetch and sync popular movies from TMDB API (admin only)
// @Tags sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pages query int false "Number of pages to sync (1-10)" default(1)
// @Success 200 {object} utils.StandardResponse{data=models.SyncLog} "Sync completed successfully"
// @Failure 500 {object} utils.StandardResponse "Sync failed"
// @Failure 503 {object} utils.StandardResponse "TMDB import is not configured"
// @Router /sync/movies [post]
func (h *MovieHandler) SyncMoviesFromTMDB(c *fiber.Ctx) error {
	pages, _ := strconv.Atoi(c.Query("pages", "1"))

	h.logger.WithField("pages", pages).Info("Starting TMDB sync")

	syncLog, err := h.service.SyncMoviesFromTMDB(c.UserContext(), pages)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sync movies from TMDB")
		return utils.ErrorWithDataResponse(c, fiber.StatusInternalServerError, "Failed to sync movies", syncLog)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movies synced successfully", syncLog)
}

// GetDashboardStats godoc
// @Summary Get dashboard statistics
// @Description Catalogue and sales totals (admin only)
// @Tags dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=models.DashboardStats} "Dashboard statistics"
// @Failure 500 {object} utils.StandardResponse "Failed to retrieve statistics"
// @Router /dashboard/stats [get]
func (h *MovieHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve dashboard statistics")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Dashboard statistics retrieved successfully", stats)
}

// GetLastSyncLog godoc
// @Summary Get last sync log
// @Description Get the most recent sync operation log
// @Tags sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=models.SyncLog} "Last sync log"
// @Failure 500 {object} utils.StandardResponse "Failed to retrieve sync log"
// @Router /sync/last-log [get]
func (h *MovieHandler) GetLastSyncLog(c *fiber.Ctx) error {
	syncLog, err := h.service.GetLastSyncLog(c.UserContext())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve last sync log")
	}

	if syncLog == nil {
		return utils.SuccessResponse(c, fiber.StatusOK, "No sync log found", nil)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Last sync log retrieved successfully", syncLog)
}

// GetGenreChartData godoc
// @Summary Get chart data by genre
// @Description Movie count per genre
// @Tags charts
// @Accept json
// @Produce json
// @Success 200 {object} utils.StandardResponse{data=[]models.ChartData} "Genre chart data"
// @Failure 500 {object} utils.StandardResponse "Failed to retrieve chart data"
// @Router /charts/genres [get]
func (h *MovieHandler) GetGenreChartData(c *fiber.Ctx) error {
	data, err := h.service.GetMoviesByGenre(c.UserContext())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve genre chart data")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Genre chart data retrieved successfully", data)
}

// GetYearChartData godoc
// @Summary Get chart data by year
// @Description Movie count per release year
// @Tags charts
// @Accept json
// @Produce json
// @Param start_date query string false "Filter by start date (YYYY-MM-DD)"
// @Param end_date query string false "Filter by end date (YYYY-MM-DD)"
// @Success 200 {object} utils.StandardResponse{data=[]models.ChartData} "Year chart data"
// @Failure 400 {object} utils.StandardResponse "Invalid date"
// @Failure 500 {object} utils.StandardResponse "Failed to retrieve chart data"
// @Router /charts/years [get]
func (h *MovieHandler) GetYearChartData(c *fiber.Ctx) error {
	startDate := c.Query("start_date", "")
	endDate := c.Query("end_date", "")

	data, err := h.service.GetMoviesByYear(c.UserContext(), startDate, endDate)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve year chart data")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Year chart data retrieved successfully", data)
}

// GetMonthlyChartData godoc
// @Summary Get monthly chart data for a specific year
// @Description Get movie distribution by month for a specific year
// @Tags charts
// @Accept json
// @Produce json
// @Param year path int true "Year (e.g., 2024)"
// @Success 200 {object} utils.StandardResponse{data=[]models.ChartData} "Monthly chart data"
// @Failure 400 {object} utils.StandardResponse "Invalid year"
// @Failure 500 {object} utils.StandardResponse "Failed to retrieve monthly chart data"
// @Router /charts/monthly/{year} [get]
func (h *MovieHandler) GetMonthlyChartData(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid year format")
	}

	data, err := h.service.GetMoviesByMonth(c.UserContext(), year)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to retrieve monthly chart data")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Monthly chart data retrieved successfully", data)
}
