// Package seating holds the seat layout rules of an auditorium: seat labels,
// the seat map shown to customers, and the price quote for a selection.
package seating

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"movie-booking/internal/apperrors"
)

const (
	MaxRows        = 26
	MaxSeatsPerRow = 50
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusOccupied  Status = "occupied"
	// StatusSelected marks seats held by the viewer.
	StatusSelected Status = "selected"
)

// Layout is a rectangular grid of seats. Rows are lettered from A, seats are
// numbered from 1, so the first seat is "A1".
type Layout struct {
	Rows        int
	SeatsPerRow int
}

func (l Layout) Validate() error {
	fields := map[string]string{}
	if l.Rows < 1 || l.Rows > MaxRows {
		fields["rows"] = fmt.Sprintf("must be between 1 and %d", MaxRows)
	}
	if l.SeatsPerRow < 1 || l.SeatsPerRow > MaxSeatsPerRow {
		fields["seats_per_row"] = fmt.Sprintf("must be between 1 and %d", MaxSeatsPerRow)
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

// Capacity is the number of seats in the layout.
func (l Layout) Capacity() int {
	return l.Rows * l.SeatsPerRow
}

// Label returns the label of the seat in the zero-based row at the one-based number.
func Label(row, number int) string {
	return string(rune('A'+row)) + strconv.Itoa(number)
}

// Parse splits a label such as "c5" into its zero-based row and one-based number.
func (l Layout) Parse(label string) (int, int, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if len(label) < 2 {
		return 0, 0, fmt.Errorf("invalid seat label %q", label)
	}
	row := int(label[0] - 'A')
	if row < 0 || row >= l.Rows {
		return 0, 0, fmt.Errorf("seat %s: row out of range", label)
	}
	number, err := strconv.Atoi(label[1:])
	if err != nil || label[1] == '0' || label[1] == '+' || label[1] == '-' {
		return 0, 0, fmt.Errorf("invalid seat label %q", label)
	}
	if number < 1 || number > l.SeatsPerRow {
		return 0, 0, fmt.Errorf("seat %s: number out of range", label)
	}
	return row, number, nil
}

func (l Layout) Contains(label string) bool {
	_, _, err := l.Parse(label)
	return err == nil
}

// Labels lists every seat in row-major order.
func (l Layout) Labels() []string {
	labels := make([]string, 0, l.Capacity())
	for r := 0; r < l.Rows; r++ {
		for n := 1; n <= l.SeatsPerRow; n++ {
			labels = append(labels, Label(r, n))
		}
	}
	return labels
}

// Normalize upper-cases, de-duplicates and sorts a seat selection. Every
// label must belong to the layout and the selection must not be empty.
func (l Layout) Normalize(labels []string) ([]string, error) {
	if len(labels) == 0 {
		return nil, apperrors.NewFieldError("seats", "at least one seat is required")
	}

	type seat struct {
		label       string
		row, number int
	}
	seen := make(map[string]struct{}, len(labels))
	seats := make([]seat, 0, len(labels))
	var invalid []string
	for _, raw := range labels {
		row, number, err := l.Parse(raw)
		if err != nil {
			invalid = append(invalid, strings.TrimSpace(raw))
			continue
		}
		label := Label(row, number)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		seats = append(seats, seat{label: label, row: row, number: number})
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewFieldError("seats", "invalid seats: "+strings.Join(invalid, ", "))
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].row != seats[j].row {
			return seats[i].row < seats[j].row
		}
		return seats[i].number < seats[j].number
	})
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.label
	}
	return out, nil
}
