package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"catering-fees/models"
)

// Field names carried by ValidationError
const (
	FieldMin        = "min"
	FieldMax        = "max"
	FieldAmount     = "amount"
	FieldName       = "name"
	FieldRanges     = "ranges"
	FieldComponents = "components"
	FieldMode       = "mode"
	FieldCalcType   = "calcType"
)

// ValidationError is a user-correctable problem with a rule or collection.
// Field names the input the message belongs to; RuleID is set when one rule is at fault.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	RuleID  string `json:"ruleId,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidateCharge checks a charge's amount and that its calc type is one of allowed.
// An unconfigured charge is rejected.
func ValidateCharge(charge models.Charge, allowed ...models.CalcType) *ValidationError {
	if !charge.IsConfigured() {
		return invalid(FieldAmount, "Add fee amount")
	}
	if len(allowed) > 0 {
		ok := false
		for _, calcType := range allowed {
			if charge.CalcType() == calcType {
				ok = true
				break
			}
		}
		if !ok {
			return invalid(FieldCalcType, fmt.Sprintf("Calculation type %q is not supported for this fee.", charge.CalcType()))
		}
	}

	if percent, ok := charge.Percent(); ok {
		if math.IsNaN(percent) || percent < 0 || percent > 100 {
			return invalid(FieldAmount, "Percent must be between 0 and 100.")
		}
		return nil
	}
	if amount, ok := charge.AmountCents(); ok && amount < 0 {
		return invalid(FieldAmount, "Amount must be 0 or greater.")
	}
	return nil
}

// ValidateCalcType checks that calcType is one of allowed
func ValidateCalcType(calcType models.CalcType, allowed ...models.CalcType) *ValidationError {
	for _, c := range allowed {
		if c == calcType {
			return nil
		}
	}
	return invalid(FieldCalcType, "Choose how the fee is calculated.")
}

// Calc types each kind accepts
var (
	EventTypeCalcTypes   = []models.CalcType{models.CalcTypeFlat, models.CalcTypePercent}
	GuestCountCalcTypes  = []models.CalcType{models.CalcTypeFlat, models.CalcTypePerPerson, models.CalcTypePercent}
	OrderAmountCalcTypes = []models.CalcType{models.CalcTypeFlat, models.CalcTypePercent}
	ServiceCalcTypes     = []models.CalcType{models.CalcTypeFlat, models.CalcTypePercent}
)

// tier is the kind-independent view of a ranged rule
type tier struct {
	id  string
	min int64
	max *int64 // nil is open-ended
}

// tierMessages is the copy each tiered kind shows
type tierMessages struct {
	minNegative string
	maxBelowMin string
	overlap     string
	floor       string
	gap         string
	openEnded   string
	floorOK     func(min int64) bool
}

var guestCountMessages = tierMessages{
	minNegative: "Minimum guests must be 0 or greater.",
	maxBelowMin: "Maximum guests must be greater than or equal to minimum.",
	overlap:     "Guest count ranges cannot overlap.",
	floor:       "First range must start at 0 or 1.",
	gap:         "Guest count ranges must be continuous with no gaps.",
	openEnded:   "Open-ended range must be the last range.",
	floorOK:     func(min int64) bool { return min == 0 || min == 1 },
}

var orderAmountMessages = tierMessages{
	minNegative: "Minimum subtotal must be 0 or greater.",
	maxBelowMin: "Maximum subtotal must be greater than or equal to minimum.",
	overlap:     "Ranges cannot overlap.",
	floor:       "First range must start at $0.00.",
	gap:         "Subtotal ranges must be continuous with no gaps.",
	openEnded:   "Open-ended range must be the last range.",
	floorOK:     func(min int64) bool { return min == 0 },
}

func guestCountTier(r models.GuestCountRule) tier {
	t := tier{id: r.ID, min: int64(r.MinGuests)}
	if r.MaxGuests != nil {
		max := int64(*r.MaxGuests)
		t.max = &max
	}
	return t
}

func orderAmountTier(r models.OrderAmountRule) tier {
	return tier{id: r.ID, min: r.MinSubtotalCents, max: r.MaxSubtotalCents}
}

func validateBounds(t tier, msgs tierMessages) *ValidationError {
	if t.min < 0 {
		return &ValidationError{Field: FieldMin, Message: msgs.minNegative, RuleID: t.id}
	}
	if t.max != nil && *t.max < t.min {
		return &ValidationError{Field: FieldMax, Message: msgs.maxBelowMin, RuleID: t.id}
	}
	return nil
}

// rangesOverlap treats both ranges as closed, with a nil max as +infinity
func rangesOverlap(a, b tier) bool {
	aMax, bMax := int64(math.MaxInt64), int64(math.MaxInt64)
	if a.max != nil {
		aMax = *a.max
	}
	if b.max != nil {
		bMax = *b.max
	}
	return a.min <= bMax && b.min <= aMax
}

// validateContinuity checks floor, abutment and the position of the open-ended range
func validateContinuity(tiers []tier, msgs tierMessages) *ValidationError {
	if len(tiers) == 0 {
		return nil
	}
	sorted := append([]tier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].min < sorted[j].min })

	if !msgs.floorOK(sorted[0].min) {
		return &ValidationError{Field: FieldMin, Message: msgs.floor, RuleID: sorted[0].id}
	}
	for i, current := range sorted {
		if current.max == nil {
			if i != len(sorted)-1 {
				return &ValidationError{Field: FieldMax, Message: msgs.openEnded, RuleID: current.id}
			}
			return nil
		}
		if i+1 < len(sorted) && sorted[i+1].min != *current.max+1 {
			return &ValidationError{Field: FieldMax, Message: msgs.gap, RuleID: current.id}
		}
	}
	return nil
}

// validateCandidate checks one tier against the collection it would join
func validateCandidate(candidate tier, existing []tier, msgs tierMessages) *ValidationError {
	if err := validateBounds(candidate, msgs); err != nil {
		return err
	}

	next := make([]tier, 0, len(existing)+1)
	replaced := false
	for _, t := range existing {
		if candidate.id != "" && t.id == candidate.id {
			next = append(next, candidate)
			replaced = true
			continue
		}
		if rangesOverlap(candidate, t) {
			return &ValidationError{Field: FieldMin, Message: msgs.overlap, RuleID: candidate.id}
		}
		next = append(next, t)
	}
	if !replaced {
		next = append(next, candidate)
	}

	return validateContinuity(next, msgs)
}

// validateTierSet checks a whole collection: every tier's bounds, pairwise overlap and continuity
func validateTierSet(tiers []tier, msgs tierMessages) *ValidationError {
	for _, t := range tiers {
		if err := validateBounds(t, msgs); err != nil {
			return err
		}
	}
	for i := range tiers {
		for j := i + 1; j < len(tiers); j++ {
			if rangesOverlap(tiers[i], tiers[j]) {
				return &ValidationError{Field: FieldRanges, Message: msgs.overlap, RuleID: tiers[j].id}
			}
		}
	}
	return validateContinuity(tiers, msgs)
}

// ValidateGuestCountRule checks candidate against the collection it would be upserted into.
// A rule in existing with the candidate's ID is replaced, not compared.
func ValidateGuestCountRule(candidate models.GuestCountRule, existing []models.GuestCountRule) *ValidationError {
	if err := ValidateCharge(candidate.Charge, GuestCountCalcTypes...); err != nil {
		err.RuleID = candidate.ID
		return err
	}
	tiers := make([]tier, len(existing))
	for i, r := range existing {
		tiers[i] = guestCountTier(r)
	}
	return validateCandidate(guestCountTier(candidate), tiers, guestCountMessages)
}

// ValidateGuestCountRules checks a whole guest-count collection
func ValidateGuestCountRules(rules []models.GuestCountRule) *ValidationError {
	tiers := make([]tier, len(rules))
	for i, r := range rules {
		if err := ValidateCharge(r.Charge, GuestCountCalcTypes...); err != nil {
			err.RuleID = r.ID
			return err
		}
		tiers[i] = guestCountTier(r)
	}
	return validateTierSet(tiers, guestCountMessages)
}

// ValidateOrderAmountRule checks candidate against the collection it would be upserted into
func ValidateOrderAmountRule(candidate models.OrderAmountRule, existing []models.OrderAmountRule) *ValidationError {
	if err := ValidateCharge(candidate.Charge, OrderAmountCalcTypes...); err != nil {
		err.RuleID = candidate.ID
		return err
	}
	tiers := make([]tier, len(existing))
	for i, r := range existing {
		tiers[i] = orderAmountTier(r)
	}
	return validateCandidate(orderAmountTier(candidate), tiers, orderAmountMessages)
}

// ValidateOrderAmountRules checks a whole order-amount collection
func ValidateOrderAmountRules(rules []models.OrderAmountRule) *ValidationError {
	tiers := make([]tier, len(rules))
	for i, r := range rules {
		if err := ValidateCharge(r.Charge, OrderAmountCalcTypes...); err != nil {
			err.RuleID = r.ID
			return err
		}
		tiers[i] = orderAmountTier(r)
	}
	return validateTierSet(tiers, orderAmountMessages)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateEventTypeRule checks the name (required, unique ignoring case among
// other rules) and the charge.
func ValidateEventTypeRule(candidate models.EventTypeRule, existing []models.EventTypeRule) *ValidationError {
	name := normalizeName(candidate.EventTypeName)
	if name == "" {
		return &ValidationError{Field: FieldName, Message: "Event type name is required.", RuleID: candidate.ID}
	}
	for _, r := range existing {
		if candidate.ID != "" && r.ID == candidate.ID {
			continue
		}
		if normalizeName(r.EventTypeName) == name {
			return &ValidationError{Field: FieldName, Message: "Event type name must be unique.", RuleID: candidate.ID}
		}
	}
	if err := ValidateCharge(candidate.Charge, EventTypeCalcTypes...); err != nil {
		err.RuleID = candidate.ID
		return err
	}
	return nil
}

// ValidateEventTypeRules checks every rule of a collection against the others
func ValidateEventTypeRules(rules []models.EventTypeRule) *ValidationError {
	for i, r := range rules {
		others := make([]models.EventTypeRule, 0, len(rules)-1)
		others = append(others, rules[:i]...)
		others = append(others, rules[i+1:]...)
		if err := ValidateEventTypeRule(r, others); err != nil {
			return err
		}
	}
	return nil
}

// ValidateServiceRule checks the bundle rule or one component rule
func ValidateServiceRule(rule models.ServiceRule) *ValidationError {
	return ValidateCharge(rule.Charge, ServiceCalcTypes...)
}

// ValidateFullServiceConfig checks the rules the config's mode uses. Bundle
// mode needs a configured bundle unless nothing is being activated; à-la-carte validates every configured
// component and, when requireActive is set, needs at least one active one.
func ValidateFullServiceConfig(config models.FullServiceConfig, requireActive bool) *ValidationError {
	switch config.Mode {
	case models.FullServiceBundle:
		if !requireActive && !config.Bundle.Charge.IsConfigured() {
			return nil
		}
		return ValidateServiceRule(config.Bundle)
	case models.FullServiceALaCarte:
		activeCount := 0
		for _, key := range models.ComponentKeys() {
			rule := config.Components[key]
			if !rule.Charge.IsConfigured() {
				continue
			}
			if err := ValidateServiceRule(rule); err != nil {
				err.Field = FieldComponents
				err.RuleID = string(key)
				return err
			}
			if rule.Active {
				activeCount++
			}
		}
		if requireActive && activeCount == 0 {
			return invalid(FieldComponents, "Configure at least one service.")
		}
		return nil
	}
	return invalid(FieldMode, fmt.Sprintf("Unknown full service mode %q.", config.Mode))
}
