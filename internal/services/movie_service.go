package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/config"
	"movie-booking/internal/metrics"
	"movie-booking/internal/models"
	"movie-booking/internal/repository"
	"movie-booking/internal/utils"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxSyncPages     = 10
)

// MovieInput is the editable part of a movie as sent by clients.
type MovieInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Genre       []string `json:"genre" validate:"required,min=1,max=10,dive,required,max=50"`
	ReleaseDate string   `json:"release_date" validate:"required,date"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
	Banner      string   `json:"banner" validate:"max=2048"`
}

// normalize trims every text field and collapses duplicate genres, keeping
// the first spelling.
func (in *MovieInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	in.Banner = strings.TrimSpace(in.Banner)

	seen := make(map[string]struct{}, len(in.Genre))
	genres := make([]string, 0, len(in.Genre))
	for _, g := range in.Genre {
		g = strings.TrimSpace(g)
		key := strings.ToLower(g)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		genres = append(genres, g)
	}
	in.Genre = genres
}

type MovieService interface {
	// CRUD operations
	CreateMovie(ctx context.Context, input MovieInput) (*models.Movie, error)
	UpdateMovie(ctx context.Context, id uint, input MovieInput) (*models.Movie, error)
	DeleteMovie(ctx context.Context, id uint) error
	GetMovieByID(ctx context.Context, id uint) (*models.Movie, error)
	GetAllMovies(ctx context.Context, filter models.MovieFilter) ([]models.Movie, int64, models.MovieFilter, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)

	// Sync operations
	SyncMoviesFromTMDB(ctx context.Context, pages int) (*models.SyncLog, error)
	GetLastSyncLog(ctx context.Context) (*models.SyncLog, error)

	// Dashboard operations
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)

	// Chart data operations
	GetMoviesByGenre(ctx context.Context) ([]models.ChartData, error)
	GetMoviesByYear(ctx context.Context, startDate, endDate string) ([]models.ChartData, error)
	GetMoviesByMonth(ctx context.Context, year int) ([]models.ChartData, error)
}

type movieService struct {
	repo      repository.MovieRepository
	genreRepo repository.GenreRepository
	banners   BannerStorage
	tmdb      TMDBClient
	config    *config.Config
	logger    *logrus.Logger
	cache     *lru.LRU[uint, models.Movie]
}

// NewMovieService wires the movie service. banners and tmdb may be nil, in
// which case banner cleanup and TMDB import are disabled.
func NewMovieService(repo repository.MovieRepository, genreRepo repository.GenreRepository, banners BannerStorage, tmdb TMDBClient, cfg *config.Config, logger *logrus.Logger) MovieService {
	size := cfg.Cache.Size
	if size <= 0 {
		size = 512
	}
	return &movieService{
		repo:      repo,
		genreRepo: genreRepo,
		banners:   banners,
		tmdb:      tmdb,
		config:    cfg,
		logger:    logger,
		cache:     lru.NewLRU[uint, models.Movie](size, nil, cfg.Cache.TTL),
	}
}

func (s *movieService) CreateMovie(ctx context.Context, input MovieInput) (*models.Movie, error) {
	movie := &models.Movie{}
	if err := s.apply(ctx, movie, input); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	movie.Present()
	return movie, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, id uint, input MovieInput) (*models.Movie, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldBanner := existing.Banner
	movie := *existing
	if err := s.apply(ctx, &movie, input); err != nil {
		return nil, err
	}
	movie.ID = id
	movie.CreatedAt = existing.CreatedAt
	movie.TMDBID = existing.TMDBID // Don't allow changing TMDB ID

	if err := s.repo.Update(ctx, &movie); err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	s.cache.Remove(id)

	if oldBanner != movie.Banner {
		s.deleteBanner(ctx, oldBanner)
	}
	movie.Present()
	return &movie, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, id uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.repo.HasActiveOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check orders: %w", err)
	}
	if active {
		return apperrors.NewConflictError("movie has showtimes with active orders", existing.Title)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Remove(id)
	s.deleteBanner(ctx, existing.Banner)
	return nil
}

// deleteBanner removes a banner from the managed bucket. Failures are logged
// only; the movie write has already happened.
func (s *movieService) deleteBanner(ctx context.Context, banner string) {
	if s.banners == nil || banner == "" || !s.banners.IsManaged(banner) {
		return
	}
	if err := s.banners.Delete(ctx, banner); err != nil {
		s.logger.WithError(err).WithField("banner", banner).Warn("Failed to delete banner from MinIO")
	}
}

// apply validates input and copies it onto movie, resolving genre names.
func (s *movieService) apply(ctx context.Context, movie *models.Movie, input MovieInput) error {
	input.normalize()
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	releaseDate, err := utils.ParseDate(input.ReleaseDate)
	if err != nil {
		return apperrors.NewFieldError("release_date", "must be a date in YYYY-MM-DD format")
	}

	genres, err := s.resolveGenres(ctx, input.Genre)
	if err != nil {
		return err
	}

	movie.Title = input.Title
	movie.Description = input.Description
	movie.ReleaseDate = releaseDate
	movie.Rating = input.Rating
	movie.Banner = input.Banner
	movie.Genres = genres
	return nil
}

func (s *movieService) resolveGenres(ctx context.Context, names []string) ([]models.Genre, error) {
	genres := make([]models.Genre, 0, len(names))
	for _, name := range names {
		genre, err := s.genreRepo.FindOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve genre %q: %w", name, err)
		}
		genres = append(genres, *genre)
	}
	return genres, nil
}

func (s *movieService) GetMovieByID(ctx context.Context, id uint) (*models.Movie, error) {
	if cached, ok := s.cache.Get(id); ok {
		metrics.CacheHitsTotal.Inc()
		return &cached, nil
	}
	metrics.CacheMissesTotal.Inc()

	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, *movie)
	return movie, nil
}

// GetAllMovies returns one page of movies together with the filter as
// actually applied (page and limit clamped).
func (s *movieService) GetAllMovies(ctx context.Context, filter models.MovieFilter) ([]models.Movie, int64, models.MovieFilter, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)

	fields := map[string]string{}
	for name, value := range map[string]string{
		"release_date": filter.ReleaseDate,
		"start_date":   filter.StartDate,
		"end_date":     filter.EndDate,
	} {
		if value != "" && !utils.IsDate(value) {
			fields[name] = "must be a date in YYYY-MM-DD format"
		}
	}
	if len(fields) > 0 {
		return nil, 0, filter, apperrors.NewValidationError(fields)
	}

	movies, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, total, filter, nil
}

func (s *movieService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.genreRepo.FindAll(ctx)
}

func (s *movieService) SyncMoviesFromTMDB(ctx context.Context, pages int) (*models.SyncLog, error) {
	if s.tmdb == nil {
		return nil, apperrors.NewUnavailableError("TMDB import is not configured")
	}

	syncLog := &models.SyncLog{
		SyncType: "manual",
		Status:   "failed",
		SyncedAt: time.Now().UTC(),
	}

	// Validate pages
	if pages < 1 {
		pages = 1
	}
	if pages > maxSyncPages {
		pages = maxSyncPages // Limit to prevent too many API calls
	}

	var moviesAdded, moviesUpdated int

	for page := 1; page <= pages; page++ {
		s.logger.WithField("page", page).Info("Fetching TMDB popular movies")

		results, err := s.tmdb.PopularMovies(ctx, page)
		if err != nil {
			syncLog.ErrorMessage = fmt.Sprintf("failed to fetch page %d: %s", page, err.Error())
			syncLog.MoviesAdded = moviesAdded
			syncLog.MoviesUpdated = moviesUpdated
			_ = s.repo.CreateSyncLog(ctx, syncLog)
			return syncLog, err
		}

		for _, tmdbMovie := range results {
			added, err := s.importTMDBMovie(ctx, tmdbMovie)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"tmdb_id": tmdbMovie.ID,
					"title":   tmdbMovie.Title,
				}).Error("Error importing movie")
				continue
			}
			if added {
				moviesAdded++
			} else {
				moviesUpdated++
			}
		}
	}

	syncLog.Status = "success"
	syncLog.MoviesAdded = moviesAdded
	syncLog.MoviesUpdated = moviesUpdated
	if err := s.repo.CreateSyncLog(ctx, syncLog); err != nil {
		s.logger.WithError(err).Warn("Failed to write sync log")
	}

	s.logger.WithFields(logrus.Fields{
		"movies_added":   moviesAdded,
		"movies_updated": moviesUpdated,
	}).Info("Sync completed")

	return syncLog, nil
}

// importTMDBMovie creates or updates one movie keyed by its TMDB id and
// reports whether it was newly added.
func (s *movieService) importTMDBMovie(ctx context.Context, t models.TMDBMovieResponse) (bool, error) {
	releaseDate, err := utils.ParseDate(t.ReleaseDate)
	if err != nil {
		return false, fmt.Errorf("invalid release date %q", t.ReleaseDate)
	}
	if strings.TrimSpace(t.Title) == "" {
		return false, errors.New("missing title")
	}

	names := make([]string, 0, len(t.GenreIDs))
	for _, id := range t.GenreIDs {
		names = append(names, tmdbGenreName(id))
	}
	if len(names) == 0 {
		names = append(names, "Uncategorized")
	}
	genres, err := s.resolveGenres(ctx, names)
	if err != nil {
		return false, err
	}

	rating := t.VoteAverage
	if rating < 0 {
		rating = 0
	}
	if rating > 10 {
		rating = 10
	}
	tmdbID := t.ID
	movie := &models.Movie{
		TMDBID:      &tmdbID,
		Title:       strings.TrimSpace(t.Title),
		Description: strings.TrimSpace(t.Overview),
		Genres:      genres,
		ReleaseDate: releaseDate,
		Rating:      &rating,
	}
	if t.PosterPath != "" {
		movie.Banner = strings.TrimSuffix(s.config.TMDB.ImageURL, "/") + t.PosterPath
	}

	existing, err := s.repo.FindByTMDBID(ctx, t.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, s.repo.Create(ctx, movie)
	}

	movie.ID = existing.ID
	movie.CreatedAt = existing.CreatedAt
	if movie.Banner == "" {
		movie.Banner = existing.Banner
	}
	if err := s.repo.Update(ctx, movie); err != nil {
		return false, err
	}
	s.cache.Remove(existing.ID)
	return false, nil
}

func (s *movieService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}

func (s *movieService) GetLastSyncLog(ctx context.Context) (*models.SyncLog, error) {
	return s.repo.GetLastSyncLog(ctx)
}

// GetMoviesByGenre returns movie distribution by genre
func (s *movieService) GetMoviesByGenre(ctx context.Context) ([]models.ChartData, error) {
	return s.repo.GetMoviesByGenre(ctx)
}

// GetMoviesByYear returns movie distribution by year
func (s *movieService) GetMoviesByYear(ctx context.Context, startDate, endDate string) ([]models.ChartData, error) {
	fields := map[string]string{}
	if startDate != "" && !utils.IsDate(startDate) {
		fields["start_date"] = "must be a date in YYYY-MM-DD format"
	}
	if endDate != "" && !utils.IsDate(endDate) {
		fields["end_date"] = "must be a date in YYYY-MM-DD format"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	return s.repo.GetMoviesByYear(ctx, startDate, endDate)
}

// GetMoviesByMonth returns movie distribution by month for a specific year
func (s *movieService) GetMoviesByMonth(ctx context.Context, year int) ([]models.ChartData, error) {
	if year < 1900 || year > 2100 {
		return nil, apperrors.NewFieldError("year", "must be between 1900 and 2100")
	}
	return s.repo.GetMoviesByMonth(ctx, year)
}
