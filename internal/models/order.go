package models

import "time"

const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	OrderNumber        string      `gorm:"uniqueIndex;size:16;not null" json:"order_number" example:"7F3A9C21"`
	UserID             uint        `gorm:"index;not null" json:"user_id"`
	ShowtimeID         uint        `gorm:"index;not null" json:"showtime_id"`
	Showtime           *Showtime   `gorm:"foreignKey:ShowtimeID" json:"showtime,omitempty"`
	Status             string      `gorm:"index;not null" json:"status" example:"confirmed"`
	SeatLabels         []string    `gorm:"serializer:json" json:"seats" example:"A1,A2"`
	Seats              []OrderSeat `gorm:"foreignKey:OrderID" json:"-"`
	SeatPriceCents     int64       `json:"seat_price_cents" example:"1299"`
	SubtotalCents      int64       `json:"subtotal_cents" example:"2598"`
	ServiceChargeCents int64       `json:"service_charge_cents" example:"199"`
	TotalCents         int64       `json:"total_cents" example:"2797"`
	PaymentMethod      string      `json:"payment_method" example:"card"`
	PaymentRef         string      `json:"payment_ref"`
	CreatedAt          time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderSeat is a sold seat. The unique index on (showtime_id, seat_label)
// is what keeps a seat from being sold twice.
type OrderSeat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	ShowtimeID uint      `gorm:"uniqueIndex:idx_showtime_seat;not null" json:"showtime_id"`
	SeatLabel  string    `gorm:"uniqueIndex:idx_showtime_seat;size:4;not null" json:"seat_label"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

func (OrderSeat) TableName() string {
	return "order_seats"
}
