package service

import (
	"encoding/json"
	"sort"

	"catering-fees/models"
	"catering-fees/pricing"
)

// fingerprint returns canonical JSON for v; rules must already be sorted by ID
func fingerprint(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func sortedByID[R interface{ RuleID() string }](rules []R) []R {
	out := append([]R(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RuleID() < out[j].RuleID() })
	return out
}

// EventTypeStrategy edits the event-type rules. The kind has no on/off
// switch: its draft always starts from the committed rules.
type EventTypeStrategy struct{}

var _ DraftStrategy[[]models.EventTypeRule] = EventTypeStrategy{}

func (EventTypeStrategy) Kind() models.FeeKind { return models.FeeKindEventType }

func (s EventTypeStrategy) Seed(store *models.FeeStore) []models.EventTypeRule {
	return s.Clone(store.EventTypeRules)
}

func (EventTypeStrategy) Clone(rules []models.EventTypeRule) []models.EventTypeRule {
	return append([]models.EventTypeRule{}, rules...)
}

func (s EventTypeStrategy) Commit(store *models.FeeStore, rules []models.EventTypeRule, activate bool) *pricing.ValidationError {
	if err := pricing.ValidateEventTypeRules(rules); err != nil {
		return err
	}
	store.EventTypeRules = s.Clone(rules)
	return nil
}

func (EventTypeStrategy) Clear(store *models.FeeStore) {
	store.EventTypeRules = []models.EventTypeRule{}
}

func (EventTypeStrategy) Fingerprint(rules []models.EventTypeRule) string {
	return fingerprint(sortedByID(rules))
}

// GuestCountStrategy edits the guest-count tiers and their calc type
type GuestCountStrategy struct{}

var _ DraftStrategy[models.GuestCountSchedule] = GuestCountStrategy{}

func (GuestCountStrategy) Kind() models.FeeKind { return models.FeeKindGuestCount }

func (s GuestCountStrategy) Seed(store *models.FeeStore) models.GuestCountSchedule {
	schedule := models.GuestCountSchedule{
		CalcType: store.Settings.GuestCountCalcType,
		Rules:    []models.GuestCountRule{},
	}
	if store.Settings.GuestCountActive {
		schedule.Rules = models.CloneGuestCountRules(store.GuestCountRules)
	}
	return schedule
}

func (GuestCountStrategy) Clone(s models.GuestCountSchedule) models.GuestCountSchedule {
	return models.GuestCountSchedule{CalcType: s.CalcType, Rules: models.CloneGuestCountRules(s.Rules)}
}

func (s GuestCountStrategy) Commit(store *models.FeeStore, schedule models.GuestCountSchedule, activate bool) *pricing.ValidationError {
	if err := validateSchedule(len(schedule.Rules), "Add at least one guest range before saving.", activate); err != nil {
		return err
	}
	if err := pricing.ValidateGuestCountRules(schedule.Rules); err != nil {
		return err
	}
	if len(schedule.Rules) > 0 && !lastGuestTierOpen(schedule.Rules) {
		return &pricing.ValidationError{Field: pricing.FieldMax, Message: lastRangeOpenMessage}
	}

	store.GuestCountRules = models.CloneGuestCountRules(schedule.Rules)
	if schedule.CalcType != "" {
		store.Settings.GuestCountCalcType = schedule.CalcType
	}
	store.Settings.GuestCountActive = activate
	return nil
}

func (GuestCountStrategy) Clear(store *models.FeeStore) {
	store.GuestCountRules = []models.GuestCountRule{}
	store.Settings.GuestCountActive = false
}

func (GuestCountStrategy) Fingerprint(s models.GuestCountSchedule) string {
	return fingerprint(models.GuestCountSchedule{CalcType: s.CalcType, Rules: sortedByID(s.Rules)})
}

// OrderAmountStrategy edits the order-amount tiers and their calc type
type OrderAmountStrategy struct{}

var _ DraftStrategy[models.OrderAmountSchedule] = OrderAmountStrategy{}

func (OrderAmountStrategy) Kind() models.FeeKind { return models.FeeKindOrderAmount }

func (OrderAmountStrategy) Seed(store *models.FeeStore) models.OrderAmountSchedule {
	schedule := models.OrderAmountSchedule{
		CalcType: store.Settings.OrderAmountCalcType,
		Rules:    []models.OrderAmountRule{},
	}
	if store.Settings.OrderAmountActive {
		schedule.Rules = models.CloneOrderAmountRules(store.OrderAmountRules)
	}
	return schedule
}

func (OrderAmountStrategy) Clone(s models.OrderAmountSchedule) models.OrderAmountSchedule {
	return models.OrderAmountSchedule{CalcType: s.CalcType, Rules: models.CloneOrderAmountRules(s.Rules)}
}

func (OrderAmountStrategy) Commit(store *models.FeeStore, schedule models.OrderAmountSchedule, activate bool) *pricing.ValidationError {
	if err := validateSchedule(len(schedule.Rules), "Add at least one subtotal range before saving.", activate); err != nil {
		return err
	}
	if err := pricing.ValidateOrderAmountRules(schedule.Rules); err != nil {
		return err
	}
	if len(schedule.Rules) > 0 && !lastOrderTierOpen(schedule.Rules) {
		return &pricing.ValidationError{Field: pricing.FieldMax, Message: lastRangeOpenMessage}
	}

	store.OrderAmountRules = models.CloneOrderAmountRules(schedule.Rules)
	if schedule.CalcType != "" {
		store.Settings.OrderAmountCalcType = schedule.CalcType
	}
	store.Settings.OrderAmountActive = activate
	return nil
}

func (OrderAmountStrategy) Clear(store *models.FeeStore) {
	store.OrderAmountRules = []models.OrderAmountRule{}
	store.Settings.OrderAmountActive = false
}

func (OrderAmountStrategy) Fingerprint(s models.OrderAmountSchedule) string {
	return fingerprint(models.OrderAmountSchedule{CalcType: s.CalcType, Rules: sortedByID(s.Rules)})
}

const lastRangeOpenMessage = "Leave the last range without a maximum so it covers everything above it."

// validateSchedule rejects activating a tiered kind with no tiers
func validateSchedule(count int, message string, activate bool) *pricing.ValidationError {
	if activate && count == 0 {
		return &pricing.ValidationError{Field: pricing.FieldRanges, Message: message}
	}
	return nil
}

func lastGuestTierOpen(rules []models.GuestCountRule) bool {
	last := rules[0]
	for _, r := range rules[1:] {
		if r.MinGuests > last.MinGuests {
			last = r
		}
	}
	return last.MaxGuests == nil
}

func lastOrderTierOpen(rules []models.OrderAmountRule) bool {
	last := rules[0]
	for _, r := range rules[1:] {
		if r.MinSubtotalCents > last.MinSubtotalCents {
			last = r
		}
	}
	return last.MaxSubtotalCents == nil
}

// FullServiceStrategy edits the full-service config
type FullServiceStrategy struct{}

var _ DraftStrategy[models.FullServiceConfig] = FullServiceStrategy{}

func (FullServiceStrategy) Kind() models.FeeKind { return models.FeeKindFullService }

func (FullServiceStrategy) Seed(store *models.FeeStore) models.FullServiceConfig {
	if !store.FullService.IsActive() {
		return models.NewFullServiceConfig()
	}
	return store.FullService.Clone()
}

func (FullServiceStrategy) Clone(c models.FullServiceConfig) models.FullServiceConfig {
	return c.Clone()
}

// Commit activates the bundle in bundle mode, or every configured component
// in à-la-carte mode. Committing without activate switches everything off.
func (FullServiceStrategy) Commit(store *models.FeeStore, config models.FullServiceConfig, activate bool) *pricing.ValidationError {
	next := config.Clone()
	if activate {
		if next.Mode == models.FullServiceBundle {
			next.Bundle.Active = true
		} else {
			for _, key := range models.ComponentKeys() {
				rule := next.Components[key]
				rule.Active = rule.Charge.IsConfigured()
				next.Components[key] = rule
			}
		}
	} else {
		next.Bundle.Active = false
		for _, key := range models.ComponentKeys() {
			rule := next.Components[key]
			rule.Active = false
			next.Components[key] = rule
		}
	}

	if err := pricing.ValidateFullServiceConfig(next, activate); err != nil {
		return err
	}
	store.FullService = next
	return nil
}

func (FullServiceStrategy) Clear(store *models.FeeStore) {
	store.FullService = models.NewFullServiceConfig()
}

func (FullServiceStrategy) Fingerprint(c models.FullServiceConfig) string {
	return fingerprint(c)
}
