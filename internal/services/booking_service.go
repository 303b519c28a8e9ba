package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/config"
	"movie-booking/internal/events"
	"movie-booking/internal/metrics"
	"movie-booking/internal/models"
	"movie-booking/internal/repository"
	"movie-booking/internal/seathold"
	"movie-booking/internal/seating"
	"movie-booking/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Customer identifies the authenticated user placing holds and orders.
type Customer struct {
	ID    uint
	Email string
}

type SeatsInput struct {
	Seats []string `json:"seats" validate:"required,min=1"`
}

type CheckoutInput struct {
	ShowtimeID    uint     `json:"showtime_id" validate:"required"`
	Seats         []string `json:"seats" validate:"required,min=1"`
	PaymentMethod string   `json:"payment_method" validate:"omitempty,oneof=card wallet cash"`
}

type SeatMapView struct {
	Showtime           *models.Showtime `json:"showtime"`
	SeatPriceCents     int64            `json:"seat_price_cents"`
	ServiceChargeCents int64            `json:"service_charge_cents"`
	seating.SeatMap
}

type HoldResult struct {
	ShowtimeID uint          `json:"showtime_id"`
	Seats      []string      `json:"seats"`
	ExpiresAt  time.Time     `json:"expires_at"`
	Quote      seating.Quote `json:"quote"`
}

type BookingService interface {
	SeatMap(ctx context.Context, showtimeID, viewerID uint) (*SeatMapView, error)
	Quote(ctx context.Context, showtimeID uint, seats []string) (*seating.Quote, error)
	Hold(ctx context.Context, customer Customer, showtimeID uint, seats []string) (*HoldResult, error)
	ReleaseHolds(ctx context.Context, customer Customer, showtimeID uint) error
	Checkout(ctx context.Context, customer Customer, input CheckoutInput) (*models.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
}

type bookingService struct {
	showtimes repository.ShowtimeRepository
	orders    repository.OrderRepository
	holds     seathold.Store
	publisher events.Publisher
	config    config.BookingConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewBookingService(
	showtimes repository.ShowtimeRepository,
	orders repository.OrderRepository,
	holds seathold.Store,
	publisher events.Publisher,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) BookingService {
	return &bookingService{
		showtimes: showtimes,
		orders:    orders,
		holds:     holds,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func ownerKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func (s *bookingService) SeatMap(ctx context.Context, showtimeID, viewerID uint) (*SeatMapView, error) {
	showtime, err := s.showtimes.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	sold, err := s.showtimes.SoldSeats(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold seats: %w", err)
	}
	holds, err := s.holds.Holds(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat holds: %w", err)
	}

	viewer := ""
	if viewerID != 0 {
		viewer = ownerKey(viewerID)
	}
	return &SeatMapView{
		Showtime:           showtime,
		SeatPriceCents:     showtime.SeatPriceCents,
		ServiceChargeCents: s.config.ServiceChargeCents,
		SeatMap:            seating.BuildMap(layoutOf(showtime), sold, holds, viewer),
	}, nil
}

func (s *bookingService) Quote(ctx context.Context, showtimeID uint, seats []string) (*seating.Quote, error) {
	showtime, err := s.showtimes.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	labels, err := s.selection(showtime, seats)
	if err != nil {
		return nil, err
	}
	q := seating.NewQuote(labels, showtime.SeatPriceCents, s.config.ServiceChargeCents)
	return &q, nil
}

// selection normalizes a seat list against the showtime layout and the
// per-order limit.
func (s *bookingService) selection(showtime *models.Showtime, seats []string) ([]string, error) {
	labels, err := layoutOf(showtime).Normalize(seats)
	if err != nil {
		return nil, err
	}
	if limit := s.config.MaxSeatsPerOrder; limit > 0 && len(labels) > limit {
		return nil, apperrors.NewFieldError("seats", fmt.Sprintf("at most %d seats per order", limit))
	}
	return labels, nil
}

// bookable loads a showtime that can still be booked and normalizes the seats.
func (s *bookingService) bookable(ctx context.Context, showtimeID uint, seats []string) (*models.Showtime, []string, error) {
	showtime, err := s.showtimes.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}
	if showtime.Started(s.now()) {
		return nil, nil, apperrors.NewConflictError("showtime has already started")
	}
	labels, err := s.selection(showtime, seats)
	if err != nil {
		return nil, nil, err
	}
	return showtime, labels, nil
}

// hold checks the seats are unsold and holds them for the customer.
func (s *bookingService) hold(ctx context.Context, customer Customer, showtimeID uint, labels []string) (time.Time, error) {
	sold, err := s.showtimes.SoldSeats(ctx, showtimeID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load sold seats: %w", err)
	}
	if taken := intersect(labels, sold); len(taken) > 0 {
		metrics.SeatHoldsTotal.WithLabelValues("conflict").Inc()
		return time.Time{}, apperrors.NewSeatsUnavailableError(taken)
	}

	expiresAt, err := s.holds.Hold(ctx, showtimeID, ownerKey(customer.ID), labels)
	if err != nil {
		if errors.Is(err, &apperrors.ErrConflict{}) {
			metrics.SeatHoldsTotal.WithLabelValues("conflict").Inc()
			return time.Time{}, err
		}
		metrics.SeatHoldsTotal.WithLabelValues("error").Inc()
		return time.Time{}, fmt.Errorf("failed to hold seats: %w", err)
	}
	metrics.SeatHoldsTotal.WithLabelValues("held").Inc()
	return expiresAt, nil
}

func (s *bookingService) Hold(ctx context.Context, customer Customer, showtimeID uint, seats []string) (*HoldResult, error) {
	showtime, labels, err := s.bookable(ctx, showtimeID, seats)
	if err != nil {
		return nil, err
	}
	expiresAt, err := s.hold(ctx, customer, showtimeID, labels)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"showtime_id": showtimeID,
		"user_id":     customer.ID,
		"seats":       labels,
	}).Debug("Seats held")

	return &HoldResult{
		ShowtimeID: showtimeID,
		Seats:      labels,
		ExpiresAt:  expiresAt,
		Quote:      seating.NewQuote(labels, showtime.SeatPriceCents, s.config.ServiceChargeCents),
	}, nil
}

func (s *bookingService) ReleaseHolds(ctx context.Context, customer Customer, showtimeID uint) error {
	if _, err := s.showtimes.FindByID(ctx, showtimeID); err != nil {
		return err
	}
	if err := s.holds.Release(ctx, showtimeID, ownerKey(customer.ID), nil); err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

func (s *bookingService) Checkout(ctx context.Context, customer Customer, input CheckoutInput) (*models.Order, error) {
	input.PaymentMethod = strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "card"
	}

	showtime, labels, err := s.bookable(ctx, input.ShowtimeID, input.Seats)
	if err != nil {
		return nil, err
	}
	if _, err := s.hold(ctx, customer, showtime.ID, labels); err != nil {
		return nil, err
	}

	quote := seating.NewQuote(labels, showtime.SeatPriceCents, s.config.ServiceChargeCents)
	order := &models.Order{
		OrderNumber:        newOrderNumber(),
		UserID:             customer.ID,
		ShowtimeID:         showtime.ID,
		Status:             models.OrderStatusConfirmed,
		SeatLabels:         labels,
		SeatPriceCents:     quote.SeatPriceCents,
		SubtotalCents:      quote.SubtotalCents,
		ServiceChargeCents: quote.ServiceChargeCents,
		TotalCents:         quote.TotalCents,
		PaymentMethod:      input.PaymentMethod,
		PaymentRef:         "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12]),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, &apperrors.ErrConflict{}) || errors.Is(err, &apperrors.ErrNotFound{}) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	owner := ownerKey(customer.ID)
	if err := s.holds.Release(ctx, showtime.ID, owner, labels); err != nil {
		s.logger.WithError(err).WithField("order_number", order.OrderNumber).Warn("Failed to release seat holds after checkout")
	}

	metrics.OrdersTotal.WithLabelValues(models.OrderStatusConfirmed).Inc()
	metrics.TicketsSoldTotal.Add(float64(len(labels)))

	order.Showtime = showtime
	s.publishConfirmed(ctx, customer, order)

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"showtime_id":  showtime.ID,
		"user_id":      customer.ID,
		"seats":        labels,
		"total_cents":  order.TotalCents,
	}).Info("Order confirmed")
	return order, nil
}

// publishConfirmed never fails the checkout; the order is already stored.
func (s *bookingService) publishConfirmed(ctx context.Context, customer Customer, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := events.BookingConfirmed{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      customer.ID,
		UserEmail:   customer.Email,
		ShowtimeID:  order.ShowtimeID,
		Seats:       order.SeatLabels,
		TotalCents:  order.TotalCents,
		ConfirmedAt: s.now().UTC().Format(time.RFC3339),
	}
	if st := order.Showtime; st != nil {
		event.StartsAt = st.StartsAt.UTC().Format(time.RFC3339)
		event.Auditorium = st.Auditorium
		if st.Movie != nil {
			event.MovieTitle = st.Movie.Title
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		metrics.BookingEventsTotal.WithLabelValues("published", "error").Inc()
		s.logger.WithError(err).WithField("order_number", order.OrderNumber).Error("Failed to publish booking event")
		return
	}
	metrics.BookingEventsTotal.WithLabelValues("published", "ok").Inc()
}

func (s *bookingService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder hides orders of other users behind a not-found error.
func (s *bookingService) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NewNotFoundError("order", orderID)
	}
	return order, nil
}

func (s *bookingService) CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, apperrors.NewConflictError("order is already cancelled", order.OrderNumber)
	}
	now := s.now()
	if st := order.Showtime; st != nil && !now.Add(s.config.CancellationCutoff).Before(st.StartsAt) {
		if st.Started(now) {
			return nil, apperrors.NewConflictError("showtime has already started", order.OrderNumber)
		}
		return nil, apperrors.NewConflictError("cancellation window has closed", order.OrderNumber)
	}

	if err := s.orders.Cancel(ctx, order, now.UTC()); err != nil {
		if errors.Is(err, &apperrors.ErrConflict{}) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	metrics.OrdersTotal.WithLabelValues(models.OrderStatusCancelled).Inc()

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
	}).Info("Order cancelled")
	return order, nil
}

// newOrderNumber returns 8 upper-case hex characters of a random UUID.
func newOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
