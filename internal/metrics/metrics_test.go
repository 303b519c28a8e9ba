package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_SeatHoldsTotal(t *testing.T) {
	before := testutil.ToFloat64(SeatHoldsTotal.WithLabelValues("held"))
	SeatHoldsTotal.WithLabelValues("held").Inc()
	after := testutil.ToFloat64(SeatHoldsTotal.WithLabelValues("held"))

	if after != before+1 {
		t.Errorf("Expected held counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_TicketsSoldTotal(t *testing.T) {
	before := testutil.ToFloat64(TicketsSoldTotal)
	TicketsSoldTotal.Add(3)
	after := testutil.ToFloat64(TicketsSoldTotal)

	if after != before+3 {
		t.Errorf("Expected tickets sold to increase by 3, got diff %.0f", after-before)
	}
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/movies/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/movies/:id", "418")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/api/movies/1", "/api/movies/2"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("Expected 2 requests for the route pattern, got %.0f", got)
	}
}

func TestMiddleware_CountsFiberErrors(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/boom", "502")
	before := testutil.ToFloat64(counter)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("Expected error status to be counted once, got %.0f", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", Handler())
	OrdersTotal.WithLabelValues("confirmed").Inc()

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "orders_total") {
		t.Error("Expected orders_total in metrics output")
	}
}
