package seating

type Seat struct {
	Label  string `json:"label"`
	Number int    `json:"number"`
	Status Status `json:"status"`
}

type Row struct {
	Label string `json:"label"`
	Seats []Seat `json:"seats"`
}

type SeatMap struct {
	Rows      []Row `json:"rows"`
	Capacity  int   `json:"capacity"`
	Available int   `json:"available"`
	Held      int   `json:"held"`
	Occupied  int   `json:"occupied"`
	Selected  int   `json:"selected"`
}

// BuildMap computes the status of every seat. Sold seats win over holds;
// holds owned by viewer are reported as selected. An empty viewer never
// matches a hold owner.
func BuildMap(layout Layout, sold []string, holds map[string]string, viewer string) SeatMap {
	soldSet := make(map[string]struct{}, len(sold))
	for _, s := range sold {
		soldSet[s] = struct{}{}
	}

	m := SeatMap{
		Rows:     make([]Row, 0, layout.Rows),
		Capacity: layout.Capacity(),
	}
	for r := 0; r < layout.Rows; r++ {
		row := Row{
			Label: string(rune('A' + r)),
			Seats: make([]Seat, 0, layout.SeatsPerRow),
		}
		for n := 1; n <= layout.SeatsPerRow; n++ {
			label := Label(r, n)
			status := StatusAvailable
			if _, ok := soldSet[label]; ok {
				status = StatusOccupied
				m.Occupied++
			} else if owner, ok := holds[label]; ok {
				if viewer != "" && owner == viewer {
					status = StatusSelected
					m.Selected++
				} else {
					status = StatusHeld
					m.Held++
				}
			} else {
				m.Available++
			}
			row.Seats = append(row.Seats, Seat{Label: label, Number: n, Status: status})
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}
