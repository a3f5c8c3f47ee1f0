package pricing

import (
	"testing"

	"catering-fees/models"
)

func TestResolveGuestCountTierContinuousSet(t *testing.T) {
	rules := []models.GuestCountRule{
		guestTier("c", 21, nil),
		guestTier("a", 1, intPtr(10)),
		guestTier("b", 11, intPtr(20)),
	}

	for guests := 1; guests <= 40; guests++ {
		got := ResolveGuestCountTier(rules, guests)
		if got == nil {
			t.Fatalf("no tier for %d guests", guests)
		}
		contained := got.MinGuests <= guests && (got.MaxGuests == nil || guests <= *got.MaxGuests)
		if !contained {
			t.Errorf("%d guests resolved to non-containing tier %s", guests, got.ID)
		}
	}

	if got := ResolveGuestCountTier(rules, 0); got != nil {
		t.Errorf("expected nil below the floor, got %s", got.ID)
	}
}

func TestResolveGuestCountTierClampsDown(t *testing.T) {
	rules := []models.GuestCountRule{
		guestTier("a", 5, intPtr(10)),
		guestTier("b", 20, intPtr(30)),
	}

	tests := []struct {
		guests int
		wantID string
	}{
		{4, ""},
		{5, "a"},
		{15, "a"},
		{20, "b"},
		{45, "b"},
	}

	for _, tt := range tests {
		got := ResolveGuestCountTier(rules, tt.guests)
		gotID := ""
		if got != nil {
			gotID = got.ID
		}
		if gotID != tt.wantID {
			t.Errorf("%d guests: expected %q, got %q", tt.guests, tt.wantID, gotID)
		}
	}
}

func TestResolveSkipsInactiveRules(t *testing.T) {
	rules := []models.OrderAmountRule{
		orderTier("a", 0, int64Ptr(9999), models.FlatCharge(500)),
		orderTier("b", 10000, nil, models.PercentCharge(5)),
	}
	rules[1].Active = false

	got := ResolveOrderAmountTier(rules, 12000)
	if got == nil || got.ID != "a" {
		t.Errorf("expected clamp down to a when b is inactive, got %+v", got)
	}

	if got := ResolveOrderAmountTier(nil, 100); got != nil {
		t.Errorf("expected nil for empty rules, got %+v", got)
	}
}
