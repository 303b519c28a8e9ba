package repository

import (
	"context"
	"errors"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/database"
	"movie-booking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShowtimeRepository interface {
	Create(ctx context.Context, showtime *models.Showtime) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Showtime, error)
	ListByMovie(ctx context.Context, movieID uint, from time.Time) ([]models.Showtime, error)
	HasConfirmedOrders(ctx context.Context, id uint) (bool, error)
	SoldSeats(ctx context.Context, id uint) ([]string, error)
}

type showtimeRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewShowtimeRepository(db *database.Database) ShowtimeRepository {
	return &showtimeRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *showtimeRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *showtimeRepository) Create(ctx context.Context, showtime *models.Showtime) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Omit("Movie").Create(showtime).Error
}

func (r *showtimeRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock waits out checkouts in flight; see orderRepository.Create.
		var showtime models.Showtime
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&showtime, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("showtime", id)
		}
		if err != nil {
			return err
		}
		if err := guardConfirmedOrders(tx, []uint{id}, "showtime has confirmed orders"); err != nil {
			return err
		}
		if err := tx.Where("showtime_id = ? AND status = ?", id, models.OrderStatusCancelled).
			Delete(&models.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Showtime{}, id).Error
	})
}

// guardConfirmedOrders fails with a conflict when any of the showtimes has a
// confirmed order. It must run inside the transaction that locked them.
func guardConfirmedOrders(tx *gorm.DB, showtimeIDs []uint, reason string) error {
	if len(showtimeIDs) == 0 {
		return nil
	}
	var confirmed int64
	err := tx.Model(&models.Order{}).
		Where("showtime_id IN ? AND status = ?", showtimeIDs, models.OrderStatusConfirmed).
		Count(&confirmed).Error
	if err != nil {
		return err
	}
	if confirmed > 0 {
		return apperrors.NewConflictError(reason)
	}
	return nil
}

func (r *showtimeRepository) FindByID(ctx context.Context, id uint) (*models.Showtime, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var showtime models.Showtime
	err := r.db.WithContext(ctx).
		Preload("Movie").Preload("Movie.Genres", preloadGenres).
		First(&showtime, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("showtime", id)
		}
		return nil, err
	}
	if showtime.Movie != nil {
		showtime.Movie.Present()
	}
	return &showtime, nil
}

// ListByMovie returns the showtimes starting at or after from, soonest first.
func (r *showtimeRepository) ListByMovie(ctx context.Context, movieID uint, from time.Time) ([]models.Showtime, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var showtimes []models.Showtime
	err := r.db.WithContext(ctx).
		Where("movie_id = ? AND starts_at >= ?", movieID, from).
		Order("starts_at ASC, id ASC").
		Find(&showtimes).Error
	return showtimes, err
}

func (r *showtimeRepository) HasConfirmedOrders(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("showtime_id = ? AND status = ?", id, models.OrderStatusConfirmed).
		Count(&count).Error
	return count > 0, err
}

// SoldSeats lists the seat labels sold for a showtime.
func (r *showtimeRepository) SoldSeats(ctx context.Context, id uint) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var labels []string
	err := r.db.WithContext(ctx).Model(&models.OrderSeat{}).
		Where("showtime_id = ?", id).
		Pluck("seat_label", &labels).Error
	return labels, err
}
