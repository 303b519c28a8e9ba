package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/models"
	"movie-booking/internal/seathold"
	"movie-booking/internal/seating"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc       *bookingService
	showtimes *fakeShowtimeRepo
	orders    *fakeOrderRepo
	holds     seathold.Store
	publisher *fakePublisher
	showtime  *models.Showtime
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	showtimes := newFakeShowtimeRepo()
	orders := newFakeOrderRepo(showtimes)
	holds := seathold.NewMemoryStore(1000, 5*time.Minute)
	t.Cleanup(func() { _ = holds.Close() })
	publisher := &fakePublisher{}

	showtime := &models.Showtime{
		MovieID:        1,
		Movie:          &models.Movie{ID: 1, Title: "Dune"},
		StartsAt:       testNow.Add(48 * time.Hour),
		Auditorium:     "Sala 3",
		Rows:           4,
		SeatsPerRow:    5,
		SeatPriceCents: 1299,
	}
	if err := showtimes.Create(context.Background(), showtime); err != nil {
		t.Fatalf("Create showtime: %v", err)
	}

	svc := NewBookingService(showtimes, orders, holds, publisher, testConfig().Booking, quietLogger()).(*bookingService)
	svc.now = func() time.Time { return testNow }
	return &bookingFixture{svc: svc, showtimes: showtimes, orders: orders, holds: holds, publisher: publisher, showtime: showtime}
}

var (
	ana   = Customer{ID: 1, Email: "ana@example.com"}
	bruno = Customer{ID: 2, Email: "bruno@example.com"}
)

func TestQuote(t *testing.T) {
	f := newBookingFixture(t)

	q, err := f.svc.Quote(context.Background(), f.showtime.ID, []string{"b2", "A1", "a1"})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if q.SeatCount != 2 || q.SubtotalCents != 2598 || q.ServiceChargeCents != 199 || q.TotalCents != 2797 {
		t.Errorf("quote = %+v", q)
	}
	if q.Seats[0] != "A1" || q.Seats[1] != "B2" {
		t.Errorf("Seats = %v, want [A1 B2]", q.Seats)
	}

	if _, err := f.svc.Quote(context.Background(), f.showtime.ID, []string{"E1"}); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Errorf("Quote(E1) error = %v, want validation error", err)
	}
	if _, err := f.svc.Quote(context.Background(), 99, []string{"A1"}); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("Quote(unknown showtime) error = %v, want not found", err)
	}
}

func TestQuote_MaxSeatsPerOrder(t *testing.T) {
	f := newBookingFixture(t)
	seats := []string{"A1", "A2", "A3", "A4", "A5", "B1", "B2", "B3", "B4", "B5", "C1"}
	if _, err := f.svc.Quote(context.Background(), f.showtime.ID, seats); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestHold_ConflictHoldsNothing(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	res, err := f.svc.Hold(ctx, ana, f.showtime.ID, []string{"A1", "A2"})
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if !res.ExpiresAt.After(time.Now()) || res.Quote.TotalCents != 2797 {
		t.Errorf("hold = %+v", res)
	}

	_, err = f.svc.Hold(ctx, bruno, f.showtime.ID, []string{"A2", "A3"})
	var cerr *apperrors.ErrConflict
	if !errors.As(err, &cerr) {
		t.Fatalf("Hold() error = %v, want conflict", err)
	}
	if len(cerr.Items) != 1 || cerr.Items[0] != "A2" {
		t.Errorf("conflicting seats = %v, want [A2]", cerr.Items)
	}

	holds, _ := f.holds.Holds(ctx, f.showtime.ID)
	if _, ok := holds["A3"]; ok {
		t.Error("A3 held despite conflict")
	}

	if _, err := f.svc.Hold(ctx, ana, f.showtime.ID, []string{"A1", "A2"}); err != nil {
		t.Errorf("re-hold own seats error = %v", err)
	}
}

func TestSeatMap(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Checkout(ctx, bruno, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"D5"}}); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if _, err := f.svc.Hold(ctx, ana, f.showtime.ID, []string{"A1"}); err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if _, err := f.svc.Hold(ctx, bruno, f.showtime.ID, []string{"B1"}); err != nil {
		t.Fatalf("Hold() error = %v", err)
	}

	view, err := f.svc.SeatMap(ctx, f.showtime.ID, ana.ID)
	if err != nil {
		t.Fatalf("SeatMap() error = %v", err)
	}
	if view.Capacity != 20 || view.Occupied != 1 || view.Held != 1 || view.Selected != 1 || view.Available != 17 {
		t.Errorf("counts = %+v", view.SeatMap)
	}
	status := map[string]seating.Status{}
	for _, row := range view.Rows {
		for _, seat := range row.Seats {
			status[seat.Label] = seat.Status
		}
	}
	if status["A1"] != seating.StatusSelected || status["B1"] != seating.StatusHeld || status["D5"] != seating.StatusOccupied {
		t.Errorf("statuses A1=%s B1=%s D5=%s", status["A1"], status["B1"], status["D5"])
	}

	anon, err := f.svc.SeatMap(ctx, f.showtime.ID, 0)
	if err != nil {
		t.Fatalf("SeatMap() error = %v", err)
	}
	if anon.Selected != 0 || anon.Held != 2 {
		t.Errorf("anonymous counts = %+v", anon.SeatMap)
	}
}

func TestCheckout(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"a2", "A1"}})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if len(order.OrderNumber) != 8 {
		t.Errorf("OrderNumber = %q, want 8 characters", order.OrderNumber)
	}
	if order.Status != models.OrderStatusConfirmed || order.PaymentMethod != "card" || order.TotalCents != 2797 {
		t.Errorf("order = %+v", order)
	}
	if len(order.PaymentRef) != 16 {
		t.Errorf("PaymentRef = %q", order.PaymentRef)
	}

	holds, _ := f.holds.Holds(ctx, f.showtime.ID)
	if len(holds) != 0 {
		t.Errorf("holds after checkout = %v, want none", holds)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.publisher.events))
	}
	ev := f.publisher.events[0]
	if ev.OrderNumber != order.OrderNumber || ev.MovieTitle != "Dune" || ev.UserEmail != ana.Email || len(ev.Seats) != 2 {
		t.Errorf("event = %+v", ev)
	}

	_, err = f.svc.Checkout(ctx, bruno, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A2", "A3"}})
	var cerr *apperrors.ErrConflict
	if !errors.As(err, &cerr) || len(cerr.Items) != 1 || cerr.Items[0] != "A2" {
		t.Errorf("second Checkout() error = %v, want conflict on A2", err)
	}
}

func TestCheckout_PublishFailureKeepsOrder(t *testing.T) {
	f := newBookingFixture(t)
	f.publisher.err = errors.New("broker down")

	order, err := f.svc.Checkout(context.Background(), ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"C3"}, PaymentMethod: "Wallet"})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if order.PaymentMethod != "wallet" {
		t.Errorf("PaymentMethod = %q, want wallet", order.PaymentMethod)
	}
}

func TestCheckout_Rejects(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A1"}, PaymentMethod: "bitcoin"}); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Errorf("bad payment method error = %v, want validation error", err)
	}
	if _, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID}); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Errorf("no seats error = %v, want validation error", err)
	}

	if _, err := f.svc.Hold(ctx, bruno, f.showtime.ID, []string{"B2"}); err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if _, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"B2"}}); !errors.Is(err, &apperrors.ErrConflict{}) {
		t.Errorf("seat held by another user error = %v, want conflict", err)
	}

	f.svc.now = func() time.Time { return f.showtime.StartsAt }
	_, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A1"}})
	var cerr *apperrors.ErrConflict
	if !errors.As(err, &cerr) || cerr.Reason != "showtime has already started" {
		t.Errorf("started showtime error = %v", err)
	}
}

func TestReleaseHolds(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Hold(ctx, ana, f.showtime.ID, []string{"A1", "A2"}); err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if err := f.svc.ReleaseHolds(ctx, ana, f.showtime.ID); err != nil {
		t.Fatalf("ReleaseHolds() error = %v", err)
	}
	if _, err := f.svc.Hold(ctx, bruno, f.showtime.ID, []string{"A1"}); err != nil {
		t.Errorf("Hold() after release error = %v", err)
	}
}

func TestOrders_OwnershipAndCancel(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A1"}})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	if _, err := f.svc.GetOrder(ctx, bruno.ID, order.ID); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("GetOrder() by another user error = %v, want not found", err)
	}
	if _, err := f.svc.CancelOrder(ctx, bruno.ID, order.ID); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("CancelOrder() by another user error = %v, want not found", err)
	}

	list, err := f.svc.ListOrders(ctx, ana.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListOrders() = %v, %v", list, err)
	}

	cancelled, err := f.svc.CancelOrder(ctx, ana.ID, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Errorf("cancelled order = %+v", cancelled)
	}
	if _, err := f.svc.CancelOrder(ctx, ana.ID, order.ID); !errors.Is(err, &apperrors.ErrConflict{}) {
		t.Errorf("second CancelOrder() error = %v, want conflict", err)
	}

	if _, err := f.svc.Checkout(ctx, bruno, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A1"}}); err != nil {
		t.Errorf("seat not freed by cancellation: %v", err)
	}
}

func TestCancelOrder_AfterStart(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A1"}})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	f.svc.now = func() time.Time { return f.showtime.StartsAt.Add(time.Minute) }
	if _, err := f.svc.CancelOrder(ctx, ana.ID, order.ID); !errors.Is(err, &apperrors.ErrConflict{}) {
		t.Errorf("CancelOrder() after start error = %v, want conflict", err)
	}
}

func TestCancelOrder_CutoffWindow(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	f.svc.config.CancellationCutoff = 2 * time.Hour

	order, err := f.svc.Checkout(ctx, ana, CheckoutInput{ShowtimeID: f.showtime.ID, Seats: []string{"A1"}})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	f.svc.now = func() time.Time { return f.showtime.StartsAt.Add(-time.Hour) }
	_, err = f.svc.CancelOrder(ctx, ana.ID, order.ID)
	var cerr *apperrors.ErrConflict
	if !errors.As(err, &cerr) || cerr.Reason != "cancellation window has closed" {
		t.Fatalf("CancelOrder() inside cutoff error = %v, want closed window conflict", err)
	}

	f.svc.now = func() time.Time { return f.showtime.StartsAt.Add(-3 * time.Hour) }
	cancelled, err := f.svc.CancelOrder(ctx, ana.ID, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder() before cutoff error = %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
}

func TestShowtimeService(t *testing.T) {
	movies := newFakeMovieRepo()
	movie := &models.Movie{Title: "Dune"}
	_ = movies.Create(context.Background(), movie)
	showtimes := newFakeShowtimeRepo()
	newFakeOrderRepo(showtimes)

	svc := NewShowtimeService(showtimes, movies, testConfig().Booking, quietLogger()).(*showtimeService)
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	created, err := svc.Create(ctx, movie.ID, ShowtimeInput{StartsAt: testNow.Add(2 * time.Hour), Auditorium: " Sala 1 "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Rows != 8 || created.SeatsPerRow != 8 || created.SeatPriceCents != 1299 || created.Auditorium != "Sala 1" {
		t.Errorf("showtime = %+v, want configured defaults", created)
	}

	if _, err := svc.Create(ctx, movie.ID, ShowtimeInput{StartsAt: testNow.Add(-time.Hour)}); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Errorf("past start error = %v, want validation error", err)
	}
	if _, err := svc.Create(ctx, movie.ID, ShowtimeInput{StartsAt: testNow.Add(time.Hour), Rows: 27}); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Errorf("27 rows error = %v, want validation error", err)
	}
	if _, err := svc.Create(ctx, 99, ShowtimeInput{StartsAt: testNow.Add(time.Hour)}); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("unknown movie error = %v, want not found", err)
	}

	list, err := svc.ListByMovie(ctx, movie.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByMovie() = %v, %v", list, err)
	}

	showtimes.sold[created.ID] = map[string]uint{"A1": 1}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, &apperrors.ErrConflict{}) {
		t.Errorf("Delete() with orders error = %v, want conflict", err)
	}
	delete(showtimes.sold, created.ID)
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}
