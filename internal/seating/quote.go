package seating

import "fmt"

// Quote is the price breakdown of a seat selection. The service charge is
// applied once per order, not per seat.
type Quote struct {
	Seats              []string `json:"seats"`
	SeatCount          int      `json:"seat_count"`
	SeatPriceCents     int64    `json:"seat_price_cents"`
	SubtotalCents      int64    `json:"subtotal_cents"`
	ServiceChargeCents int64    `json:"service_charge_cents"`
	TotalCents         int64    `json:"total_cents"`
	Total              string   `json:"total"`
}

func NewQuote(seats []string, seatPriceCents, serviceChargeCents int64) Quote {
	subtotal := int64(len(seats)) * seatPriceCents
	total := subtotal
	if len(seats) > 0 {
		total += serviceChargeCents
	} else {
		serviceChargeCents = 0
	}
	return Quote{
		Seats:              seats,
		SeatCount:          len(seats),
		SeatPriceCents:     seatPriceCents,
		SubtotalCents:      subtotal,
		ServiceChargeCents: serviceChargeCents,
		TotalCents:         total,
		Total:              FormatCents(total),
	}
}

// FormatCents renders an amount as dollars, e.g. 2797 -> "$27.97".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
