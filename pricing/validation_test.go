package pricing

import (
	"testing"

	"catering-fees/models"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func guestTier(id string, min int, max *int) models.GuestCountRule {
	return models.GuestCountRule{ID: id, MinGuests: min, MaxGuests: max, Charge: models.FlatCharge(100), Active: true}
}

func orderTier(id string, min int64, max *int64, charge models.Charge) models.OrderAmountRule {
	return models.OrderAmountRule{ID: id, MinSubtotalCents: min, MaxSubtotalCents: max, Charge: charge, Active: true}
}

func TestValidateCharge(t *testing.T) {
	tests := []struct {
		name    string
		charge  models.Charge
		allowed []models.CalcType
		wantMsg string
	}{
		{"flat ok", models.FlatCharge(0), nil, ""},
		{"negative amount", models.FlatCharge(-1), nil, "Amount must be 0 or greater."},
		{"percent upper bound", models.PercentCharge(100), nil, ""},
		{"percent too high", models.PercentCharge(100.5), nil, "Percent must be between 0 and 100."},
		{"percent negative", models.PercentCharge(-0.1), nil, "Percent must be between 0 and 100."},
		{"unconfigured", models.Charge{}, nil, "Add fee amount"},
		{"calc type not allowed", models.PerPersonCharge(100), EventTypeCalcTypes, `Calculation type "perPerson" is not supported for this fee.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCharge(tt.charge, tt.allowed...)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Message != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateGuestCountRule(t *testing.T) {
	existing := []models.GuestCountRule{
		guestTier("a", 1, intPtr(10)),
		guestTier("b", 11, intPtr(20)),
	}

	tests := []struct {
		name      string
		candidate models.GuestCountRule
		existing  []models.GuestCountRule
		wantField string
		wantMsg   string
	}{
		{"max below min", guestTier("", 10, intPtr(5)), nil, FieldMax, "Maximum guests must be greater than or equal to minimum."},
		{"negative min", guestTier("", -1, nil), nil, FieldMin, "Minimum guests must be 0 or greater."},
		{"overlap", guestTier("", 15, intPtr(30)), existing, FieldMin, "Guest count ranges cannot overlap."},
		{"gap", guestTier("", 22, nil), existing, FieldMax, "Guest count ranges must be continuous with no gaps."},
		{"bad floor", guestTier("", 2, intPtr(5)), nil, FieldMin, "First range must start at 0 or 1."},
		{"appends abutting tier", guestTier("", 21, nil), existing, "", ""},
		{"edit of self does not overlap", guestTier("b", 11, nil), existing, "", ""},
		{"first tier may start at 0", guestTier("", 0, nil), nil, "", ""},
		{"widening into the next tier", guestTier("a", 1, nil), existing, FieldMin, "Guest count ranges cannot overlap."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGuestCountRule(tt.candidate, tt.existing)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %q, got nil", tt.wantMsg)
			}
			if err.Field != tt.wantField || err.Message != tt.wantMsg {
				t.Errorf("expected %s/%q, got %s/%q", tt.wantField, tt.wantMsg, err.Field, err.Message)
			}
		})
	}
}

func TestValidateGuestCountRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []models.GuestCountRule
		wantMsg string
	}{
		{"empty", nil, ""},
		{"continuous", []models.GuestCountRule{guestTier("a", 1, intPtr(10)), guestTier("b", 11, nil)}, ""},
		{"unsorted but continuous", []models.GuestCountRule{guestTier("b", 11, nil), guestTier("a", 0, intPtr(10))}, ""},
		{"gap", []models.GuestCountRule{guestTier("a", 0, intPtr(99)), guestTier("b", 101, nil)}, "Guest count ranges must be continuous with no gaps."},
		{"overlap", []models.GuestCountRule{guestTier("a", 0, intPtr(10)), guestTier("b", 10, nil)}, "Guest count ranges cannot overlap."},
		{"open-ended overlaps later tier", []models.GuestCountRule{guestTier("a", 0, nil), guestTier("b", 0, intPtr(5))}, "Guest count ranges cannot overlap."},
		{"inverted bounds", []models.GuestCountRule{guestTier("a", 10, intPtr(5))}, "Maximum guests must be greater than or equal to minimum."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGuestCountRules(tt.rules)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Message != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateOrderAmountRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []models.OrderAmountRule
		wantMsg string
	}{
		{"continuous cents", []models.OrderAmountRule{
			orderTier("a", 0, int64Ptr(9999), models.FlatCharge(500)),
			orderTier("b", 10000, nil, models.PercentCharge(5)),
		}, ""},
		{"gap", []models.OrderAmountRule{
			orderTier("a", 0, int64Ptr(99), models.FlatCharge(500)),
			orderTier("b", 101, nil, models.FlatCharge(500)),
		}, "Subtotal ranges must be continuous with no gaps."},
		{"must start at zero", []models.OrderAmountRule{
			orderTier("a", 100, nil, models.FlatCharge(500)),
		}, "First range must start at $0.00."},
		{"per person not allowed", []models.OrderAmountRule{
			orderTier("a", 0, nil, models.PerPersonCharge(500)),
		}, `Calculation type "perPerson" is not supported for this fee.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderAmountRules(tt.rules)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Message != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateEventTypeRule(t *testing.T) {
	existing := []models.EventTypeRule{
		{ID: "w", EventTypeName: "Wedding", Charge: models.FlatCharge(1000), Active: true},
	}

	tests := []struct {
		name      string
		candidate models.EventTypeRule
		wantMsg   string
	}{
		{"blank name", models.EventTypeRule{EventTypeName: "   ", Charge: models.FlatCharge(1)}, "Event type name is required."},
		{"duplicate ignoring case", models.EventTypeRule{EventTypeName: " wedding ", Charge: models.FlatCharge(1)}, "Event type name must be unique."},
		{"rename of self", models.EventTypeRule{ID: "w", EventTypeName: "WEDDING", Charge: models.FlatCharge(1)}, ""},
		{"new name", models.EventTypeRule{EventTypeName: "Birthday", Charge: models.PercentCharge(10)}, ""},
		{"bad percent", models.EventTypeRule{EventTypeName: "Birthday", Charge: models.PercentCharge(101)}, "Percent must be between 0 and 100."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEventTypeRule(tt.candidate, existing)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Message != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, err)
			}
		})
	}

	dupes := []models.EventTypeRule{
		{ID: "1", EventTypeName: "Birthday", Charge: models.FlatCharge(1)},
		{ID: "2", EventTypeName: "BIRTHDAY", Charge: models.FlatCharge(1)},
	}
	if err := ValidateEventTypeRules(dupes); err == nil || err.Field != FieldName {
		t.Errorf("expected duplicate name error for collection, got %v", err)
	}
}

func TestValidateFullServiceConfig(t *testing.T) {
	bundle := models.NewFullServiceConfig()
	bundle.Bundle = models.ServiceRule{Charge: models.FlatCharge(4000), Active: true}
	if err := ValidateFullServiceConfig(bundle, true); err != nil {
		t.Errorf("valid bundle rejected: %v", err)
	}

	unset := models.NewFullServiceConfig()
	if err := ValidateFullServiceConfig(unset, true); err == nil || err.Message != "Add fee amount" {
		t.Errorf("expected missing bundle amount error, got %v", err)
	}

	aLaCarte := models.NewFullServiceConfig()
	aLaCarte.Mode = models.FullServiceALaCarte
	if err := ValidateFullServiceConfig(aLaCarte, true); err == nil || err.Message != "Configure at least one service." {
		t.Errorf("expected at least one service error, got %v", err)
	}
	if err := ValidateFullServiceConfig(aLaCarte, false); err != nil {
		t.Errorf("inactive empty config should pass when activity is not required: %v", err)
	}

	aLaCarte.Components[models.ComponentSetup] = models.ServiceRule{Charge: models.PercentCharge(150), Active: true}
	err := ValidateFullServiceConfig(aLaCarte, true)
	if err == nil || err.Field != FieldComponents || err.RuleID != string(models.ComponentSetup) {
		t.Errorf("expected component error on setup, got %+v", err)
	}

	aLaCarte.Components[models.ComponentSetup] = models.ServiceRule{Charge: models.PercentCharge(15), Active: true}
	if err := ValidateFullServiceConfig(aLaCarte, true); err != nil {
		t.Errorf("valid a la carte rejected: %v", err)
	}
}
