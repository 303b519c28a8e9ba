package models

import "time"

type Showtime struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MovieID        uint      `gorm:"index;not null" json:"movie_id"`
	Movie          *Movie    `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	StartsAt       time.Time `gorm:"index;not null" json:"starts_at"`
	Auditorium     string    `json:"auditorium" example:"MARTONG MALL - Sala 3"`
	Rows           int       `gorm:"not null" json:"rows" example:"8"`
	SeatsPerRow    int       `gorm:"not null" json:"seats_per_row" example:"8"`
	SeatPriceCents int64     `gorm:"not null" json:"seat_price_cents" example:"1299"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Showtime) TableName() string {
	return "showtimes"
}

// Started reports whether the showtime has begun at the given instant.
func (s *Showtime) Started(now time.Time) bool {
	return !s.StartsAt.After(now)
}
