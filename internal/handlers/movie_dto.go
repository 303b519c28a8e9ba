package handlers

import (
	"strconv"

	"movie-booking/internal/models"
	"movie-booking/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MovieRequest is the body of POST and PUT /movies.
type MovieRequest struct {
	Title       string   `json:"title" example:"Dune: Part Two"`
	Description string   `json:"description" example:"Paul Atreides unites with the Fremen."`
	Genre       []string `json:"genre" example:"Science Fiction,Adventure"`
	ReleaseDate string   `json:"release_date" example:"2024-03-01"`
	Rating      *float64 `json:"rating" example:"8.5"`
	Banner      string   `json:"banner" example:"http://localhost:9000/banners/dune_1a2b3c4d.jpg"`
}

func (r MovieRequest) toInput() services.MovieInput {
	return services.MovieInput{
		Title:       r.Title,
		Description: r.Description,
		Genre:       r.Genre,
		ReleaseDate: r.ReleaseDate,
		Rating:      r.Rating,
		Banner:      r.Banner,
	}
}

// movieFilterFromQuery reads the listing query. Unparseable numbers fall back
// to zero and are clamped by the service.
func movieFilterFromQuery(c *fiber.Ctx) models.MovieFilter {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	return models.MovieFilter{
		Page:        page,
		Limit:       limit,
		Genre:       c.Query("genre"),
		ReleaseDate: c.Query("release_date"),
		Search:      c.Query("search"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		SortBy:      c.Query("sort_by"),
		Order:       c.Query("order"),
	}
}

// ProfileResponse is the body of GET /profile.
type ProfileResponse struct {
	User   *models.User   `json:"user"`
	Orders []models.Order `json:"orders"`
}
