// Package seathold keeps short-lived seat reservations made while a customer
// is choosing seats. A hold only blocks other customers; it is not a sale.
package seathold

import (
	"context"
	"fmt"
	"time"
)

// Store holds seats per showtime on behalf of an owner (the user id).
type Store interface {
	// Hold atomically holds every seat for owner until the returned expiry.
	// Seats already held by owner are refreshed. When any seat is held by
	// someone else nothing is held and an *apperrors.ErrConflict listing
	// those seats is returned.
	Hold(ctx context.Context, showtimeID uint, owner string, seats []string) (time.Time, error)

	// Release drops owner's holds on the given seats, or on every seat of the
	// showtime when seats is empty. Seats held by someone else are untouched.
	Release(ctx context.Context, showtimeID uint, owner string, seats []string) error

	// Holds returns the live holds of a showtime as seat label -> owner.
	Holds(ctx context.Context, showtimeID uint) (map[string]string, error)

	Close() error
}

type Options struct {
	TTL time.Duration
	// Capacity bounds the in-memory store.
	Capacity int

	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

// New returns a Redis-backed store when a Redis address is configured and an
// in-memory store otherwise.
func New(opts Options) (Store, error) {
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("seat hold TTL must be positive")
	}
	if opts.RedisAddress != "" {
		return NewRedisStore(opts)
	}
	return NewMemoryStore(opts.Capacity, opts.TTL), nil
}

const keyPrefix = "seathold:"

func showtimePrefix(showtimeID uint) string {
	return fmt.Sprintf("%s%d:", keyPrefix, showtimeID)
}

func holdKey(showtimeID uint, seat string) string {
	return showtimePrefix(showtimeID) + seat
}
