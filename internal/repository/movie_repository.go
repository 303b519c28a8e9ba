package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/database"
	"movie-booking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository interface {
	// CRUD operations
	Create(ctx context.Context, movie *models.Movie) error
	Update(ctx context.Context, movie *models.Movie) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Movie, error)
	FindByTMDBID(ctx context.Context, tmdbID int) (*models.Movie, error)
	FindAll(ctx context.Context, filter models.MovieFilter) ([]models.Movie, int64, error)
	HasActiveOrders(ctx context.Context, movieID uint) (bool, error)

	// Dashboard operations
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)

	// Sync log operations
	CreateSyncLog(ctx context.Context, log *models.SyncLog) error
	GetLastSyncLog(ctx context.Context) (*models.SyncLog, error)

	// Chart data operations
	GetMoviesByGenre(ctx context.Context) ([]models.ChartData, error)
	GetMoviesByYear(ctx context.Context, startDate, endDate string) ([]models.ChartData, error)
	GetMoviesByMonth(ctx context.Context, year int) ([]models.ChartData, error)
}

type movieRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewMovieRepository(db *database.Database) MovieRepository {
	return &movieRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *movieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func preloadGenres(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name ASC")
}

func (r *movieRepository) Create(ctx context.Context, movie *models.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(movie).Error
}

// Update saves the movie and replaces its genre links.
func (r *movieRepository) Update(ctx context.Context, movie *models.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres").Save(movie).Error; err != nil {
			return err
		}
		return tx.Model(movie).Association("Genres").Replace(movie.Genres)
	})
}

// Delete removes the movie with its genre links, showtimes and cancelled
// orders. Confirmed orders on any of its showtimes make it a conflict.
func (r *movieRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&models.MovieGenre{}).Error; err != nil {
			return err
		}
		var showtimeIDs []uint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Model(&models.Showtime{}).
			Where("movie_id = ?", id).Pluck("id", &showtimeIDs).Error; err != nil {
			return err
		}
		if err := guardConfirmedOrders(tx, showtimeIDs, "movie has showtimes with active orders"); err != nil {
			return err
		}
		if len(showtimeIDs) > 0 {
			if err := tx.Where("showtime_id IN ? AND status = ?", showtimeIDs, models.OrderStatusCancelled).
				Delete(&models.Order{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("movie_id = ?", id).Delete(&models.Showtime{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Movie{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFoundError("movie", id)
		}
		return nil
	})
}

func (r *movieRepository) FindByID(ctx context.Context, id uint) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.db.WithContext(ctx).Preload("Genres", preloadGenres).First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("movie", id)
		}
		return nil, err
	}
	movie.Present()
	return &movie, nil
}

func (r *movieRepository) FindByTMDBID(ctx context.Context, tmdbID int) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.db.WithContext(ctx).Where("tmdb_id = ?", tmdbID).First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

var movieSortFields = map[string]bool{
	"id": true, "title": true, "release_date": true, "rating": true,
	"created_at": true, "updated_at": true,
}

// orderClause builds the ORDER BY for a listing. Without sort_by the newest
// movies come first; an unknown sort_by falls back to created_at.
func orderClause(sortBy, order string) string {
	if sortBy == "" {
		return "created_at DESC, id DESC"
	}
	if !movieSortFields[sortBy] {
		sortBy = "created_at"
	}
	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}
	if sortBy == "rating" {
		return "rating " + dir + " NULLS LAST, id " + dir
	}
	return sortBy + " " + dir + ", id " + dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *movieRepository) FindAll(ctx context.Context, filter models.MovieFilter) ([]models.Movie, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Movie{})

	if filter.Genre != "" {
		query = query.Where(`EXISTS (SELECT 1 FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
			WHERE mg.movie_id = movies.id AND LOWER(g.name) = LOWER(?))`, strings.TrimSpace(filter.Genre))
	}
	if filter.ReleaseDate != "" {
		query = query.Where("release_date = ?", filter.ReleaseDate)
	}
	if filter.Search != "" {
		searchPattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(`title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\'`, searchPattern, searchPattern)
	}
	if filter.StartDate != "" {
		query = query.Where("release_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Where("release_date <= ?", filter.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Genres", preloadGenres).
		Order(orderClause(filter.SortBy, filter.Order)).
		Offset(offset).Limit(filter.Limit).
		Find(&movies).Error; err != nil {
		return nil, 0, err
	}

	for i := range movies {
		movies[i].Present()
	}
	return movies, total, nil
}

// HasActiveOrders reports whether any showtime of the movie has confirmed orders.
func (r *movieRepository) HasActiveOrders(ctx context.Context, movieID uint) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Joins("JOIN showtimes ON showtimes.id = orders.showtime_id").
		Where("showtimes.movie_id = ? AND orders.status = ?", movieID, models.OrderStatusConfirmed).
		Count(&count).Error
	return count > 0, err
}

func (r *movieRepository) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var stats models.DashboardStats
	db := r.db.WithContext(ctx)

	// Total movies
	if err := db.Model(&models.Movie{}).Count(&stats.TotalMovies).Error; err != nil {
		return nil, err
	}

	if stats.TotalMovies > 0 {
		if err := db.Model(&models.Movie{}).
			Select("COALESCE(AVG(rating), 0)").
			Scan(&stats.AverageRating).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&models.Showtime{}).Count(&stats.TotalShowtimes).Error; err != nil {
		return nil, err
	}

	type orderAgg struct {
		Orders  int64
		Revenue int64
	}
	var agg orderAgg
	if err := db.Model(&models.Order{}).
		Select("COUNT(*) as orders, COALESCE(SUM(total_cents), 0) as revenue").
		Where("status = ?", models.OrderStatusConfirmed).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	stats.TotalOrders = agg.Orders
	stats.RevenueCents = agg.Revenue

	// cancelled orders release their order_seats rows
	if err := db.Model(&models.OrderSeat{}).Count(&stats.TicketsSold).Error; err != nil {
		return nil, err
	}

	// Last sync time
	var lastSync models.SyncLog
	if err := db.Model(&models.SyncLog{}).Order("synced_at DESC").First(&lastSync).Error; err == nil {
		stats.LastSyncTime = &lastSync.SyncedAt
	}

	// Top rated movies (limit 10)
	if err := db.Model(&models.Movie{}).
		Preload("Genres", preloadGenres).
		Where("rating IS NOT NULL").
		Order("rating DESC, release_date DESC").
		Limit(10).
		Find(&stats.TopRatedMovies).Error; err != nil {
		return nil, err
	}

	// Recently added movies (limit 10)
	if err := db.Model(&models.Movie{}).
		Preload("Genres", preloadGenres).
		Order("created_at DESC").
		Limit(10).
		Find(&stats.RecentlyAdded).Error; err != nil {
		return nil, err
	}

	for i := range stats.TopRatedMovies {
		stats.TopRatedMovies[i].Present()
	}
	for i := range stats.RecentlyAdded {
		stats.RecentlyAdded[i].Present()
	}
	return &stats, nil
}

func (r *movieRepository) CreateSyncLog(ctx context.Context, log *models.SyncLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(log).Error
}

func (r *movieRepository) GetLastSyncLog(ctx context.Context) (*models.SyncLog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var log models.SyncLog
	err := r.db.WithContext(ctx).Order("synced_at DESC").First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *movieRepository) GetMoviesByGenre(ctx context.Context) ([]models.ChartData, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var results []models.ChartData

	err := r.db.WithContext(ctx).Model(&models.Genre{}).
		Select("genres.name as label, COUNT(movie_genres.movie_id) as value").
		Joins("JOIN movie_genres ON movie_genres.genre_id = genres.id").
		Group("genres.name").
		Order("value DESC, label ASC").
		Limit(10).
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *movieRepository) GetMoviesByYear(ctx context.Context, startDate, endDate string) ([]models.ChartData, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var results []models.ChartData

	query := r.db.WithContext(ctx).Model(&models.Movie{}).
		Select("TO_CHAR(release_date, 'YYYY') as label, COUNT(*) as value")

	if startDate != "" {
		query = query.Where("release_date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("release_date <= ?", endDate)
	}

	err := query.Group("TO_CHAR(release_date, 'YYYY')").
		Order("label DESC").
		Limit(10).
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type monthCount struct {
	Month int64
	Count int64
}

// fillMonths expands sparse per-month counts to all twelve months.
func fillMonths(counts []monthCount) []models.ChartData {
	byMonth := make(map[int64]int64, len(counts))
	for _, mc := range counts {
		byMonth[mc.Month] = mc.Count
	}
	results := make([]models.ChartData, 0, len(monthLabels))
	for i, label := range monthLabels {
		results = append(results, models.ChartData{Label: label, Value: byMonth[int64(i+1)]})
	}
	return results
}

func (r *movieRepository) GetMoviesByMonth(ctx context.Context, year int) ([]models.ChartData, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var monthCounts []monthCount
	err := r.db.WithContext(ctx).Model(&models.Movie{}).
		Select("CAST(EXTRACT(MONTH FROM release_date) AS INTEGER) as month, COUNT(*) as count").
		Where("EXTRACT(YEAR FROM release_date) = ?", year).
		Group("EXTRACT(MONTH FROM release_date)").
		Order("month").
		Find(&monthCounts).Error

	if err != nil {
		return nil, err
	}

	return fillMonths(monthCounts), nil
}
