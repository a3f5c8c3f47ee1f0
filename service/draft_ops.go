package service

import (
	"math"

	"catering-fees/models"
	"catering-fees/pricing"

	"github.com/google/uuid"
)

// newRuleID assigns IDs to new rules
var newRuleID = uuid.NewString

// Spacing used when suggesting the next tier after an open-ended one
const (
	guestTierStep       = 50
	orderAmountTierStep = 10000
)

const noRoomForTier = "The highest range is already at its limit."

func upsertByID[R interface{ RuleID() string }](rules []R, rule R) []R {
	for i := range rules {
		if rules[i].RuleID() == rule.RuleID() {
			rules[i] = rule
			return rules
		}
	}
	return append(rules, rule)
}

func deleteByID[R interface{ RuleID() string }](rules []R, id string) []R {
	out := rules[:0]
	for _, r := range rules {
		if r.RuleID() != id {
			out = append(out, r)
		}
	}
	return out
}

// UpsertEventTypeRule adds rule to the draft, or replaces the rule with the same ID
func UpsertEventTypeRule(rule models.EventTypeRule) DraftOp[[]models.EventTypeRule] {
	return func(rules []models.EventTypeRule) ([]models.EventTypeRule, *pricing.ValidationError) {
		if rule.ID == "" {
			rule.ID = newRuleID()
		}
		if err := pricing.ValidateEventTypeRule(rule, rules); err != nil {
			return rules, err
		}
		return upsertByID(rules, rule), nil
	}
}

// DeleteEventTypeRule removes the rule with id from the draft
func DeleteEventTypeRule(id string) DraftOp[[]models.EventTypeRule] {
	return func(rules []models.EventTypeRule) ([]models.EventTypeRule, *pricing.ValidationError) {
		return deleteByID(rules, id), nil
	}
}

// UpsertGuestCountRule adds a tier to the draft, or replaces the tier with the same ID
func UpsertGuestCountRule(rule models.GuestCountRule) DraftOp[models.GuestCountSchedule] {
	return func(s models.GuestCountSchedule) (models.GuestCountSchedule, *pricing.ValidationError) {
		if rule.ID == "" {
			rule.ID = newRuleID()
		}
		if err := pricing.ValidateGuestCountRule(rule, s.Rules); err != nil {
			return s, err
		}
		s.Rules = upsertByID(s.Rules, rule)
		return s, nil
	}
}

// DeleteGuestCountRule removes the tier with id from the draft
func DeleteGuestCountRule(id string) DraftOp[models.GuestCountSchedule] {
	return func(s models.GuestCountSchedule) (models.GuestCountSchedule, *pricing.ValidationError) {
		s.Rules = deleteByID(s.Rules, id)
		return s, nil
	}
}

// UpsertOrderAmountRule adds a tier to the draft, or replaces the tier with the same ID
func UpsertOrderAmountRule(rule models.OrderAmountRule) DraftOp[models.OrderAmountSchedule] {
	return func(s models.OrderAmountSchedule) (models.OrderAmountSchedule, *pricing.ValidationError) {
		if rule.ID == "" {
			rule.ID = newRuleID()
		}
		if err := pricing.ValidateOrderAmountRule(rule, s.Rules); err != nil {
			return s, err
		}
		s.Rules = upsertByID(s.Rules, rule)
		return s, nil
	}
}

// DeleteOrderAmountRule removes the tier with id from the draft
func DeleteOrderAmountRule(id string) DraftOp[models.OrderAmountSchedule] {
	return func(s models.OrderAmountSchedule) (models.OrderAmountSchedule, *pricing.ValidationError) {
		s.Rules = deleteByID(s.Rules, id)
		return s, nil
	}
}

// CalcTypeChangeNeedsReview reports whether amounts entered under from should be
// looked at again under to. Flat and per-person share cents; percent does not.
func CalcTypeChangeNeedsReview(from, to models.CalcType) bool {
	return from != to && (from == models.CalcTypePercent || to == models.CalcTypePercent)
}

// ConvertGuestCountCalcType switches the schedule and every tier to calcType
func ConvertGuestCountCalcType(calcType models.CalcType) DraftOp[models.GuestCountSchedule] {
	return func(s models.GuestCountSchedule) (models.GuestCountSchedule, *pricing.ValidationError) {
		if err := pricing.ValidateCalcType(calcType, pricing.GuestCountCalcTypes...); err != nil {
			return s, err
		}
		s.CalcType = calcType
		for i := range s.Rules {
			s.Rules[i].Charge = s.Rules[i].Charge.ConvertTo(calcType)
		}
		return s, nil
	}
}

// ConvertOrderAmountCalcType switches the schedule and every tier to calcType
func ConvertOrderAmountCalcType(calcType models.CalcType) DraftOp[models.OrderAmountSchedule] {
	return func(s models.OrderAmountSchedule) (models.OrderAmountSchedule, *pricing.ValidationError) {
		if err := pricing.ValidateCalcType(calcType, pricing.OrderAmountCalcTypes...); err != nil {
			return s, err
		}
		s.CalcType = calcType
		for i := range s.Rules {
			s.Rules[i].Charge = s.Rules[i].Charge.ConvertTo(calcType)
		}
		return s, nil
	}
}

// AddGuestCountTier appends an open-ended tier after the highest one. An
// open-ended highest tier is first closed guestTierStep guests after its start.
func AddGuestCountTier() DraftOp[models.GuestCountSchedule] {
	return func(s models.GuestCountSchedule) (models.GuestCountSchedule, *pricing.ValidationError) {
		calcType := s.CalcType
		if calcType == "" {
			calcType = models.CalcTypeFlat
		}
		next := models.GuestCountRule{ID: newRuleID(), MinGuests: 1, Charge: models.ZeroCharge(calcType), Active: true}

		if last := highestGuestTier(s.Rules); last >= 0 {
			top := s.Rules[last]
			if (top.MaxGuests == nil && top.MinGuests > math.MaxInt32-guestTierStep) ||
				(top.MaxGuests != nil && *top.MaxGuests >= math.MaxInt32) {
				return s, &pricing.ValidationError{Field: pricing.FieldRanges, Message: noRoomForTier}
			}
			if s.Rules[last].MaxGuests == nil {
				max := s.Rules[last].MinGuests + guestTierStep - 1
				s.Rules[last].MaxGuests = &max
			}
			next.MinGuests = *s.Rules[last].MaxGuests + 1
		}
		s.Rules = append(s.Rules, next)
		return s, nil
	}
}

// AddOrderAmountTier appends an open-ended tier after the highest one. An
// open-ended highest tier is first closed $100 after its start.
func AddOrderAmountTier() DraftOp[models.OrderAmountSchedule] {
	return func(s models.OrderAmountSchedule) (models.OrderAmountSchedule, *pricing.ValidationError) {
		calcType := s.CalcType
		if calcType == "" {
			calcType = models.CalcTypeFlat
		}
		next := models.OrderAmountRule{ID: newRuleID(), MinSubtotalCents: 0, Charge: models.ZeroCharge(calcType), Active: true}

		if last := highestOrderTier(s.Rules); last >= 0 {
			top := s.Rules[last]
			if (top.MaxSubtotalCents == nil && top.MinSubtotalCents > math.MaxInt64-orderAmountTierStep) ||
				(top.MaxSubtotalCents != nil && *top.MaxSubtotalCents == math.MaxInt64) {
				return s, &pricing.ValidationError{Field: pricing.FieldRanges, Message: noRoomForTier}
			}
			if s.Rules[last].MaxSubtotalCents == nil {
				max := s.Rules[last].MinSubtotalCents + orderAmountTierStep - 1
				s.Rules[last].MaxSubtotalCents = &max
			}
			next.MinSubtotalCents = *s.Rules[last].MaxSubtotalCents + 1
		}
		s.Rules = append(s.Rules, next)
		return s, nil
	}
}

func highestGuestTier(rules []models.GuestCountRule) int {
	idx := -1
	for i, r := range rules {
		if idx < 0 || r.MinGuests > rules[idx].MinGuests {
			idx = i
		}
	}
	return idx
}

func highestOrderTier(rules []models.OrderAmountRule) int {
	idx := -1
	for i, r := range rules {
		if idx < 0 || r.MinSubtotalCents > rules[idx].MinSubtotalCents {
			idx = i
		}
	}
	return idx
}

// SetFullServiceMode switches the draft between bundle and à-la-carte
func SetFullServiceMode(mode models.FullServiceMode) DraftOp[models.FullServiceConfig] {
	return func(c models.FullServiceConfig) (models.FullServiceConfig, *pricing.ValidationError) {
		parsed, ok := models.ParseFullServiceMode(string(mode))
		if !ok {
			return c, &pricing.ValidationError{Field: pricing.FieldMode, Message: "Choose bundle or à la carte."}
		}
		c.Mode = parsed
		return c, nil
	}
}

// SetBundleRule replaces the bundle charge. The bundle keeps its active flag.
func SetBundleRule(charge models.Charge) DraftOp[models.FullServiceConfig] {
	return func(c models.FullServiceConfig) (models.FullServiceConfig, *pricing.ValidationError) {
		if charge.IsConfigured() {
			if err := pricing.ValidateCharge(charge, pricing.ServiceCalcTypes...); err != nil {
				return c, err
			}
		}
		c.Bundle.Charge = charge
		return c, nil
	}
}

// SetComponentRule replaces one component's charge; an unconfigured charge
// switches the component off. The component otherwise keeps its active flag.
func SetComponentRule(raw models.ComponentKey, charge models.Charge) DraftOp[models.FullServiceConfig] {
	return func(c models.FullServiceConfig) (models.FullServiceConfig, *pricing.ValidationError) {
		key, ok := models.ParseComponentKey(string(raw))
		if !ok {
			return c, &pricing.ValidationError{Field: pricing.FieldComponents, Message: "Unknown service component."}
		}
		if charge.IsConfigured() {
			if err := pricing.ValidateCharge(charge, pricing.ServiceCalcTypes...); err != nil {
				err.Field = pricing.FieldComponents
				err.RuleID = string(key)
				return c, err
			}
		}
		rule := c.Components[key]
		rule.Charge = charge
		if !charge.IsConfigured() {
			rule.Active = false
		}
		c.Components[key] = rule
		return c, nil
	}
}
