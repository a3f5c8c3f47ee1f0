package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"catering-fees/models"
)

func TestBuildScheduleView(t *testing.T) {
	store := models.NewDefaultFeeStore()
	store.Settings.GuestCountActive = true
	store.Settings.OrderAmountActive = true
	store.GuestCountRules = []models.GuestCountRule{
		{ID: "b", MinGuests: 6, Charge: models.PerPersonCharge(200), Active: true},
		{ID: "a", MinGuests: 1, MaxGuests: intPtr(5), Charge: models.FlatCharge(1000), Active: true},
	}
	store.OrderAmountRules = []models.OrderAmountRule{
		{ID: "o", MinSubtotalCents: 0, MaxSubtotalCents: int64Ptr(9999), Charge: models.FlatCharge(500), Active: true},
		{ID: "p", MinSubtotalCents: 10000, Charge: models.PercentCharge(5), Active: true},
	}
	store.EventTypeRules = []models.EventTypeRule{
		{ID: "w", EventTypeName: "Wedding", Charge: models.FlatCharge(2500), Active: true},
		{ID: "x", EventTypeName: "Birthday", Charge: models.FlatCharge(900), Active: false},
	}

	view := BuildScheduleView(store, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if view.GeneratedAt != "March 1, 2026" {
		t.Errorf("unexpected date %q", view.GeneratedAt)
	}
	if len(view.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(view.Sections))
	}

	guests := view.Sections[0]
	want := []ScheduleRow{{"1–5 guests", "$10 flat"}, {"6+ guests", "$2 per person"}}
	if len(guests.Rows) != 2 || guests.Rows[0] != want[0] || guests.Rows[1] != want[1] {
		t.Errorf("unexpected guest rows: %+v", guests.Rows)
	}

	orders := view.Sections[1]
	if len(orders.Rows) != 2 || orders.Rows[0].Label != "$0.00 – $99.99" || orders.Rows[1] != (ScheduleRow{"$100.00 and up", "5% of subtotal"}) {
		t.Errorf("unexpected order rows: %+v", orders.Rows)
	}

	events := view.Sections[2]
	if len(events.Rows) != 1 || events.Rows[0].Label != "Wedding" {
		t.Errorf("inactive event types should be left out: %+v", events.Rows)
	}

	if full := view.Sections[3]; full.Active || len(full.Rows) != 0 {
		t.Errorf("unconfigured full service should be empty: %+v", full)
	}
}

func TestRenderHTML(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	store := models.NewDefaultFeeStore()
	store.FullService.Mode = models.FullServiceALaCarte
	store.FullService.Components[models.ComponentCutlery] = models.ServiceRule{Charge: models.FlatCharge(150), Active: true}
	if err := repo.Save(ctx, store); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	svc := NewScheduleService(repo, "http://localhost:8080")
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	html, err := svc.RenderHTML(ctx)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, want := range []string{"Catering fee schedule", "January 2, 2026", "Plates &amp; cutlery", "$1.50 flat"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered schedule is missing %q", want)
		}
	}
}
