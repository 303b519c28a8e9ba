package routes

import (
	"time"

	"movie-booking/internal/handlers"
	"movie-booking/internal/middleware"
	"movie-booking/internal/models"
	"movie-booking/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Movie    *handlers.MovieHandler
	Upload   *handlers.UploadHandler
	Auth     *handlers.AuthHandler
	Showtime *handlers.ShowtimeHandler
	Booking  *handlers.BookingHandler
}

type Options struct {
	JWTSecret string
	// AuthRateLimit is the number of login/register requests per IP per minute; 0 disables the limiter.
	AuthRateLimit int
}

func Setup(app *fiber.App, h Handlers, opts Options) {
	api := app.Group("/api")

	requireAuth := middleware.JWTAuth(opts.JWTSecret)
	optionalAuth := middleware.OptionalAuth(opts.JWTSecret)
	adminOnly := []fiber.Handler{requireAuth, middleware.RequireRole(models.RoleAdmin)}

	// Account routes
	authLimit := func(c *fiber.Ctx) error { return c.Next() }
	if opts.AuthRateLimit > 0 {
		authLimit = limiter.New(limiter.Config{
			Max:        opts.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return utils.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many attempts, try again later")
			},
		})
	}
	api.Post("/register", authLimit, h.Auth.Register)
	api.Post("/login", authLimit, h.Auth.Login)
	api.Get("/profile", requireAuth, h.Auth.GetProfile)
	api.Put("/profile", requireAuth, h.Auth.UpdateProfile)

	// Movie routes - CRUD operations
	movies := api.Group("/movies")
	{
		movies.Get("/", h.Movie.GetAllMovies)
		movies.Get("/:id", h.Movie.GetMovieByID)
		movies.Post("/", append(adminOnly, h.Movie.CreateMovie)...)
		movies.Put("/:id", append(adminOnly, h.Movie.UpdateMovie)...)
		movies.Delete("/:id", append(adminOnly, h.Movie.DeleteMovie)...)

		movies.Get("/:id/showtimes", h.Showtime.ListByMovie)
		movies.Post("/:id/showtimes", append(adminOnly, h.Showtime.Create)...)
	}
	api.Get("/genres", h.Movie.ListGenres)

	// Showtime and seat routes
	showtimes := api.Group("/showtimes")
	{
		showtimes.Get("/:id", h.Showtime.Get)
		showtimes.Delete("/:id", append(adminOnly, h.Showtime.Delete)...)
		showtimes.Get("/:id/seats", optionalAuth, h.Booking.SeatMap)
		showtimes.Post("/:id/quote", h.Booking.Quote)
		showtimes.Post("/:id/holds", requireAuth, h.Booking.Hold)
		showtimes.Delete("/:id/holds", requireAuth, h.Booking.ReleaseHolds)
	}

	orders := api.Group("/orders", requireAuth)
	{
		orders.Post("/", h.Booking.Checkout)
		orders.Get("/", h.Booking.ListOrders)
		orders.Get("/:id", h.Booking.GetOrder)
		orders.Delete("/:id", h.Booking.CancelOrder)
	}

	// Sync routes - TMDB synchronization
	sync := api.Group("/sync", adminOnly...)
	{
		sync.Post("/movies", h.Movie.SyncMoviesFromTMDB)
		sync.Get("/last-log", h.Movie.GetLastSyncLog)
	}

	// Dashboard routes - Analytics and statistics
	dashboard := api.Group("/dashboard", adminOnly...)
	{
		dashboard.Get("/stats", h.Movie.GetDashboardStats)
	}

	// Chart routes - Visualization data
	charts := api.Group("/charts")
	{
		charts.Get("/genres", h.Movie.GetGenreChartData)
		charts.Get("/years", h.Movie.GetYearChartData)
		charts.Get("/monthly/:year", h.Movie.GetMonthlyChartData)
	}

	upload := api.Group("/upload", adminOnly...)
	{
		upload.Get("/presign", h.Upload.GetPresignedURL)
	}
}
