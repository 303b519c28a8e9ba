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

type OrderRepository interface {
	// Create inserts the order and one order_seats row per seat in a single
	// transaction. Seats sold in the meantime yield an *apperrors.ErrConflict
	// and a showtime deleted in the meantime an *apperrors.ErrNotFound.
	Create(ctx context.Context, order *models.Order) error
	Cancel(ctx context.Context, order *models.Order, at time.Time) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
}

type orderRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewOrderRepository(db *database.Database) OrderRepository {
	return &orderRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *orderRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Blocks while the showtime is being deleted, and keeps it from being
		// deleted until this order is committed.
		var showtime models.Showtime
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").First(&showtime, order.ShowtimeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("showtime", order.ShowtimeID)
		}
		if err != nil {
			return err
		}
		if err := tx.Omit("Seats", "Showtime").Create(order).Error; err != nil {
			return err
		}
		seats := make([]models.OrderSeat, len(order.SeatLabels))
		for i, label := range order.SeatLabels {
			seats[i] = models.OrderSeat{
				OrderID:    order.ID,
				ShowtimeID: order.ShowtimeID,
				SeatLabel:  label,
				PriceCents: order.SeatPriceCents,
			}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return err
		}
		order.Seats = seats
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		order.ID = 0
		// the order number index can collide too; only sold seats are a conflict
		if taken := r.takenSeats(ctx, order.ShowtimeID, order.SeatLabels); len(taken) > 0 {
			return apperrors.NewSeatsUnavailableError(taken)
		}
	}
	return err
}

// takenSeats narrows a failed checkout down to the seats that were sold.
func (r *orderRepository) takenSeats(ctx context.Context, showtimeID uint, labels []string) []string {
	var taken []string
	err := r.db.WithContext(ctx).Model(&models.OrderSeat{}).
		Where("showtime_id = ? AND seat_label IN ?", showtimeID, labels).
		Order("id").
		Pluck("seat_label", &taken).Error
	if err != nil {
		return nil
	}
	return taken
}

// Cancel frees the order's seats and marks it cancelled.
func (r *orderRepository) Cancel(ctx context.Context, order *models.Order, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderSeat{}).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusConfirmed).
			Updates(map[string]interface{}{
				"status":       models.OrderStatusCancelled,
				"cancelled_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflictError("order is already cancelled", order.OrderNumber)
		}
		order.Status = models.OrderStatusCancelled
		order.CancelledAt = &at
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var order models.Order
	err := r.db.WithContext(ctx).Preload("Showtime").Preload("Showtime.Movie").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("order", id)
		}
		return nil, err
	}
	presentOrder(&order)
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Showtime").Preload("Showtime.Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		presentOrder(&orders[i])
	}
	return orders, nil
}

func presentOrder(o *models.Order) {
	if o.Showtime != nil && o.Showtime.Movie != nil {
		o.Showtime.Movie.Present()
	}
}
