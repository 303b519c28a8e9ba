package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishBookingConfirmed(_ context.Context, event BookingConfirmed) error {
	p.log.WithFields(logrus.Fields{
		"event":        "booking.confirmed",
		"order_number": event.OrderNumber,
		"showtime_id":  event.ShowtimeID,
		"user_id":      event.UserID,
		"seats":        event.Seats,
		"total_cents":  event.TotalCents,
	}).Info("Booking confirmed")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
