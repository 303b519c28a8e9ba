// Package events carries booking events between the API and the worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// BookingConfirmed is published once an order has been written.
type BookingConfirmed struct {
	OrderID     uint     `json:"order_id"`
	OrderNumber string   `json:"order_number"`
	UserID      uint     `json:"user_id"`
	UserEmail   string   `json:"user_email"`
	ShowtimeID  uint     `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title"`
	StartsAt    string   `json:"starts_at"`
	Auditorium  string   `json:"auditorium"`
	Seats       []string `json:"seats"`
	TotalCents  int64    `json:"total_cents"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// Publisher sends booking events to whoever listens.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error
	Close() error
}

// Encode stamps ConfirmedAt when missing and marshals the event.
func Encode(event BookingConfirmed) ([]byte, error) {
	if event.ConfirmedAt == "" {
		event.ConfirmedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return json.Marshal(event)
}

// Decode parses and sanity-checks a message body.
func Decode(body []byte) (BookingConfirmed, error) {
	var ev BookingConfirmed
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.OrderID == 0 || ev.OrderNumber == "" {
		return ev, fmt.Errorf("event without order reference")
	}
	return ev, nil
}
