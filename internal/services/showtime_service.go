package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/config"
	"movie-booking/internal/models"
	"movie-booking/internal/repository"
	"movie-booking/internal/seating"
	"movie-booking/internal/utils"

	"github.com/sirupsen/logrus"
)

// ShowtimeInput creates a screening. Zero layout and price fields take the
// configured defaults.
type ShowtimeInput struct {
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	Auditorium     string    `json:"auditorium" validate:"max=100"`
	Rows           int       `json:"rows" validate:"omitempty,min=1,max=26"`
	SeatsPerRow    int       `json:"seats_per_row" validate:"omitempty,min=1,max=50"`
	SeatPriceCents int64     `json:"seat_price_cents" validate:"omitempty,min=1"`
}

type ShowtimeService interface {
	Create(ctx context.Context, movieID uint, input ShowtimeInput) (*models.Showtime, error)
	Get(ctx context.Context, id uint) (*models.Showtime, error)
	ListByMovie(ctx context.Context, movieID uint) ([]models.Showtime, error)
	Delete(ctx context.Context, id uint) error
}

type showtimeService struct {
	showtimes repository.ShowtimeRepository
	movies    repository.MovieRepository
	config    config.BookingConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewShowtimeService(showtimes repository.ShowtimeRepository, movies repository.MovieRepository, cfg config.BookingConfig, logger *logrus.Logger) ShowtimeService {
	return &showtimeService{
		showtimes: showtimes,
		movies:    movies,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *showtimeService) Create(ctx context.Context, movieID uint, input ShowtimeInput) (*models.Showtime, error) {
	input.Auditorium = strings.TrimSpace(input.Auditorium)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.StartsAt.After(s.now()) {
		return nil, apperrors.NewFieldError("starts_at", "must be in the future")
	}

	movie, err := s.movies.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	showtime := &models.Showtime{
		MovieID:        movieID,
		StartsAt:       input.StartsAt.UTC(),
		Auditorium:     input.Auditorium,
		Rows:           input.Rows,
		SeatsPerRow:    input.SeatsPerRow,
		SeatPriceCents: input.SeatPriceCents,
	}
	if showtime.Rows == 0 {
		showtime.Rows = s.config.DefaultRows
	}
	if showtime.SeatsPerRow == 0 {
		showtime.SeatsPerRow = s.config.DefaultSeatsPerRow
	}
	if showtime.SeatPriceCents == 0 {
		showtime.SeatPriceCents = s.config.SeatPriceCents
	}
	if err := layoutOf(showtime).Validate(); err != nil {
		return nil, err
	}

	if err := s.showtimes.Create(ctx, showtime); err != nil {
		return nil, fmt.Errorf("failed to create showtime: %w", err)
	}
	showtime.Movie = movie

	s.logger.WithFields(logrus.Fields{
		"showtime_id": showtime.ID,
		"movie_id":    movieID,
		"starts_at":   showtime.StartsAt,
	}).Info("Showtime created")
	return showtime, nil
}

func (s *showtimeService) Get(ctx context.Context, id uint) (*models.Showtime, error) {
	return s.showtimes.FindByID(ctx, id)
}

// ListByMovie returns the movie's showtimes that have not started yet.
func (s *showtimeService) ListByMovie(ctx context.Context, movieID uint) ([]models.Showtime, error) {
	if _, err := s.movies.FindByID(ctx, movieID); err != nil {
		return nil, err
	}
	showtimes, err := s.showtimes.ListByMovie(ctx, movieID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list showtimes: %w", err)
	}
	return showtimes, nil
}

func (s *showtimeService) Delete(ctx context.Context, id uint) error {
	if _, err := s.showtimes.FindByID(ctx, id); err != nil {
		return err
	}
	active, err := s.showtimes.HasConfirmedOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check orders: %w", err)
	}
	if active {
		return apperrors.NewConflictError("showtime has confirmed orders")
	}
	return s.showtimes.Delete(ctx, id)
}

func layoutOf(s *models.Showtime) seating.Layout {
	return seating.Layout{Rows: s.Rows, SeatsPerRow: s.SeatsPerRow}
}
