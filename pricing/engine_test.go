package pricing

import (
	"context"
	"testing"

	"catering-fees/models"
)

type staticStore struct {
	store *models.FeeStore
}

func (s staticStore) Load(ctx context.Context) *models.FeeStore {
	return s.store.Clone()
}

func scenarioStore() *models.FeeStore {
	store := models.NewDefaultFeeStore()
	store.OrderAmountRules = []models.OrderAmountRule{
		orderTier("oa-low", 0, int64Ptr(9999), models.FlatCharge(500)),
		orderTier("oa-high", 10000, nil, models.PercentCharge(5)),
	}
	store.GuestCountRules = []models.GuestCountRule{
		{ID: "gc", MinGuests: 6, MaxGuests: intPtr(10), Charge: models.PerPersonCharge(200), Active: true},
	}
	store.Settings.GuestCountActive = true
	store.Settings.OrderAmountActive = true
	return store
}

func TestComputeFeeLinesScenario(t *testing.T) {
	engine := NewEngine(staticStore{scenarioStore()})

	breakdown := engine.ComputeFeeLines(context.Background(), models.CartContext{SubtotalCents: 12000, GuestCount: 8})

	if len(breakdown.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", breakdown.Lines)
	}

	guest := breakdown.Lines[0]
	if guest.Kind != models.FeeKindGuestCount || guest.AmountCents != 1600 {
		t.Errorf("unexpected guest count line: %+v", guest)
	}
	if guest.Name != "Party size fee" || guest.Calculation != "$2 per person × 8" {
		t.Errorf("unexpected guest count copy: %q / %q", guest.Name, guest.Calculation)
	}

	order := breakdown.Lines[1]
	if order.Kind != models.FeeKindOrderAmount || order.AmountCents != 600 || order.RuleID != "oa-high" {
		t.Errorf("unexpected order amount line: %+v", order)
	}
	if order.Calculation != "5% of subtotal ($120.00)" {
		t.Errorf("unexpected order amount calculation: %q", order.Calculation)
	}

	if breakdown.FeesTotalCents != 2200 || breakdown.TotalCents != 14200 {
		t.Errorf("expected fees 2200 and total 14200, got %d and %d", breakdown.FeesTotalCents, breakdown.TotalCents)
	}
	if breakdown.PerPersonCents != 1775 {
		t.Errorf("expected 1775 per person, got %d", breakdown.PerPersonCents)
	}
}

func TestResolveALaCarteOnlyActiveSelectedComponents(t *testing.T) {
	store := models.NewDefaultFeeStore()
	store.FullService.Mode = models.FullServiceALaCarte
	store.FullService.Components[models.ComponentCutlery] = models.ServiceRule{Charge: models.FlatCharge(150), Active: true}
	store.FullService.Components[models.ComponentStaffing] = models.ServiceRule{Charge: models.FlatCharge(900), Active: false}

	breakdown := Resolve(store, models.CartContext{
		SubtotalCents: 5000,
		GuestCount:    4,
		FullService: models.FullServiceSelection{
			Enabled:    true,
			Mode:       models.FullServiceALaCarte,
			Components: []models.ComponentKey{models.ComponentStaffing, models.ComponentCutlery, models.ComponentCutlery},
		},
	})

	if len(breakdown.Lines) != 1 {
		t.Fatalf("expected exactly one line, got %+v", breakdown.Lines)
	}
	line := breakdown.Lines[0]
	if line.Name != "Plates & cutlery" || line.AmountCents != 150 || line.RuleID != "cutlery" {
		t.Errorf("unexpected cutlery line: %+v", line)
	}
}

func TestResolveLineOrderAndZeroLines(t *testing.T) {
	store := scenarioStore()
	store.EventTypeRules = []models.EventTypeRule{
		{ID: "wed", EventTypeName: "Wedding", Charge: models.FlatCharge(2500), Active: true},
		{ID: "free", EventTypeName: "Birthday", Charge: models.FlatCharge(0), Active: true},
		{ID: "off", EventTypeName: "Graduation", Charge: models.FlatCharge(900), Active: false},
	}
	store.FullService.Bundle = models.ServiceRule{Charge: models.FlatCharge(0), Active: true}

	cart := models.CartContext{
		SubtotalCents: 5000,
		GuestCount:    8,
		EventTypeID:   "wed",
		FullService:   models.FullServiceSelection{Enabled: true},
	}
	breakdown := Resolve(store, cart)

	wantKinds := []models.FeeKind{models.FeeKindGuestCount, models.FeeKindOrderAmount, models.FeeKindEventType, models.FeeKindFullService}
	if len(breakdown.Lines) != len(wantKinds) {
		t.Fatalf("expected %d lines, got %+v", len(wantKinds), breakdown.Lines)
	}
	for i, kind := range wantKinds {
		if breakdown.Lines[i].Kind != kind {
			t.Errorf("line %d: expected %s, got %s", i, kind, breakdown.Lines[i].Kind)
		}
	}
	if breakdown.Lines[2].Name != "Wedding coordination" {
		t.Errorf("unexpected event type line name: %q", breakdown.Lines[2].Name)
	}
	// full-service lines show even at zero
	if breakdown.Lines[3].AmountCents != 0 || breakdown.Lines[3].Name != "Full-service" {
		t.Errorf("unexpected full service line: %+v", breakdown.Lines[3])
	}

	cart.EventTypeID = "free"
	if got := Resolve(store, cart); len(got.Lines) != 3 {
		t.Errorf("zero event type fee should be omitted, got %+v", got.Lines)
	}
	cart.EventTypeID = "off"
	if got := Resolve(store, cart); len(got.Lines) != 3 {
		t.Errorf("inactive event type should be omitted, got %+v", got.Lines)
	}
	cart.FullService.Enabled = false
	if got := Resolve(store, cart); len(got.Lines) != 2 {
		t.Errorf("full service should be omitted when the cart disables it, got %+v", got.Lines)
	}
}

func TestResolveMissingGuestCountPolicy(t *testing.T) {
	store := models.NewDefaultFeeStore()
	store.GuestCountRules = []models.GuestCountRule{
		{ID: "small", MinGuests: 1, MaxGuests: intPtr(10), Charge: models.FlatCharge(700), Active: true},
		{ID: "large", MinGuests: 11, Charge: models.FlatCharge(1500), Active: true},
	}
	store.Settings.GuestCountActive = true

	cart := models.CartContext{SubtotalCents: 10000, GuestCount: 25, GuestCountMissing: true}

	if got := Resolve(store, cart); len(got.Lines) != 0 {
		t.Errorf("skip policy should omit the guest count line, got %+v", got.Lines)
	}

	store.Settings.GuestCountMissingPolicy = models.MissingGuestCountFloor
	got := Resolve(store, cart)
	if len(got.Lines) != 1 || got.Lines[0].RuleID != "small" || got.Lines[0].AmountCents != 700 {
		t.Errorf("floor policy should use the lowest tier, got %+v", got.Lines)
	}
	if got.PerPersonCents != 0 {
		t.Errorf("per person should be 0 without a guest count, got %d", got.PerPersonCents)
	}
}

func TestResolveBundleUsesCartModeOverConfiguredMode(t *testing.T) {
	store := models.NewDefaultFeeStore()
	store.FullService.Mode = models.FullServiceALaCarte
	store.FullService.Bundle = models.ServiceRule{Charge: models.PercentCharge(10), Active: true}
	store.FullService.Components[models.ComponentCleanup] = models.ServiceRule{Charge: models.FlatCharge(300), Active: true}

	cart := models.CartContext{
		SubtotalCents: 20000,
		FullService: models.FullServiceSelection{
			Enabled:    true,
			Mode:       models.FullServiceBundle,
			Components: []models.ComponentKey{models.ComponentCleanup},
		},
	}
	got := Resolve(store, cart)
	if len(got.Lines) != 1 || got.Lines[0].Name != "Full-service" || got.Lines[0].AmountCents != 2000 {
		t.Errorf("expected bundle line of 2000, got %+v", got.Lines)
	}

	cart.FullService.Mode = ""
	got = Resolve(store, cart)
	if len(got.Lines) != 1 || got.Lines[0].Name != "Cleanup" || got.Lines[0].AmountCents != 300 {
		t.Errorf("expected configured a la carte mode, got %+v", got.Lines)
	}
}

func TestChargeAmountRoundsHalfUp(t *testing.T) {
	if got := ChargeAmount(models.PercentCharge(2.5), 1010, 0); got != 25 {
		t.Errorf("2.5%% of 1010 = 25.25, expected 25, got %d", got)
	}
	if got := ChargeAmount(models.PercentCharge(5), 1010, 0); got != 51 {
		t.Errorf("5%% of 1010 = 50.5, expected 51, got %d", got)
	}
	if got := ChargeAmount(models.Charge{}, 1010, 3); got != 0 {
		t.Errorf("unconfigured charge should be 0, got %d", got)
	}
}
