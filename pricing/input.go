package pricing

import (
	"errors"
	"strings"

	"catering-fees/models"
	"catering-fees/utils"
)

// GuestCountInput is a guest-count tier as typed into the editor
type GuestCountInput struct {
	ID       string `json:"id"`
	Min      string `json:"min"`
	Max      string `json:"max"` // empty is open-ended
	Amount   string `json:"amount"`
	CalcType string `json:"calcType,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// OrderAmountInput is a subtotal tier as typed into the editor, in dollars
type OrderAmountInput struct {
	ID       string `json:"id"`
	Min      string `json:"min"`
	Max      string `json:"max"`
	Amount   string `json:"amount"`
	CalcType string `json:"calcType,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// EventTypeInput is an event-type rule as typed into the editor
type EventTypeInput struct {
	ID       string `json:"id"`
	Name     string `json:"eventTypeName"`
	Amount   string `json:"amount"`
	CalcType string `json:"calcType,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// ServiceRuleInput is the full-service bundle or a component as typed into the editor.
// Components and the bundle are switched on when the draft is committed.
type ServiceRuleInput struct {
	Amount   string `json:"amount"`
	CalcType string `json:"calcType,omitempty"`
}

const tooLargeMessage = "Value is too large."

// numberMessage picks the message for a parse failure that is not an empty input
func numberMessage(err error, fallback string) string {
	if errors.Is(err, utils.ErrNumberTooLarge) {
		return tooLargeMessage
	}
	return fallback
}

func activeOrDefault(active *bool) bool {
	return active == nil || *active
}

func inputCalcType(raw string, fallback models.CalcType) (models.CalcType, *ValidationError) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	calcType, ok := models.ParseCalcType(raw)
	if !ok {
		return "", invalid(FieldCalcType, "Choose how the fee is calculated.")
	}
	return calcType, nil
}

// parseCharge reads an amount typed as dollars or as a percentage, depending on calcType
func parseCharge(raw string, calcType models.CalcType) (models.Charge, *ValidationError) {
	if calcType == models.CalcTypePercent {
		percent, err := utils.ParsePercent(raw)
		if errors.Is(err, utils.ErrEmptyInput) {
			return models.Charge{}, invalid(FieldAmount, "Add fee amount")
		}
		if err != nil {
			return models.Charge{}, invalid(FieldAmount, "Percent must be between 0 and 100.")
		}
		return models.PercentCharge(percent), nil
	}

	cents, err := utils.ParseCents(raw)
	if errors.Is(err, utils.ErrEmptyInput) {
		return models.Charge{}, invalid(FieldAmount, "Add fee amount")
	}
	if err != nil {
		return models.Charge{}, invalid(FieldAmount, numberMessage(err, "Amount must be 0 or greater."))
	}
	if calcType == models.CalcTypePerPerson {
		return models.PerPersonCharge(cents), nil
	}
	return models.FlatCharge(cents), nil
}

// ParseGuestCountInput turns editor strings into a rule. calcType applies when the input names none.
func ParseGuestCountInput(in GuestCountInput, calcType models.CalcType) (models.GuestCountRule, *ValidationError) {
	rule := models.GuestCountRule{ID: in.ID, Active: activeOrDefault(in.Active)}

	min, err := utils.ParseCount(in.Min)
	if errors.Is(err, utils.ErrEmptyInput) {
		return rule, &ValidationError{Field: FieldMin, Message: "Add a From value", RuleID: in.ID}
	}
	if err != nil {
		return rule, &ValidationError{Field: FieldMin, Message: numberMessage(err, guestCountMessages.minNegative), RuleID: in.ID}
	}
	rule.MinGuests = min

	if strings.TrimSpace(in.Max) != "" {
		max, err := utils.ParseCount(in.Max)
		if err != nil {
			return rule, &ValidationError{Field: FieldMax, Message: numberMessage(err, guestCountMessages.maxBelowMin), RuleID: in.ID}
		}
		rule.MaxGuests = &max
	}

	ct, verr := inputCalcType(in.CalcType, calcType)
	if verr != nil {
		verr.RuleID = in.ID
		return rule, verr
	}
	charge, verr := parseCharge(in.Amount, ct)
	if verr != nil {
		verr.RuleID = in.ID
		return rule, verr
	}
	rule.Charge = charge
	return rule, nil
}

// ParseOrderAmountInput turns editor strings into a rule; bounds are read as dollars and stored as cents
func ParseOrderAmountInput(in OrderAmountInput, calcType models.CalcType) (models.OrderAmountRule, *ValidationError) {
	rule := models.OrderAmountRule{ID: in.ID, Active: activeOrDefault(in.Active)}

	min, err := utils.ParseCents(in.Min)
	if errors.Is(err, utils.ErrEmptyInput) {
		return rule, &ValidationError{Field: FieldMin, Message: "Add a From value", RuleID: in.ID}
	}
	if err != nil {
		return rule, &ValidationError{Field: FieldMin, Message: numberMessage(err, orderAmountMessages.minNegative), RuleID: in.ID}
	}
	rule.MinSubtotalCents = min

	if strings.TrimSpace(in.Max) != "" {
		max, err := utils.ParseCents(in.Max)
		if err != nil {
			return rule, &ValidationError{Field: FieldMax, Message: numberMessage(err, orderAmountMessages.maxBelowMin), RuleID: in.ID}
		}
		rule.MaxSubtotalCents = &max
	}

	ct, verr := inputCalcType(in.CalcType, calcType)
	if verr != nil {
		verr.RuleID = in.ID
		return rule, verr
	}
	charge, verr := parseCharge(in.Amount, ct)
	if verr != nil {
		verr.RuleID = in.ID
		return rule, verr
	}
	rule.Charge = charge
	return rule, nil
}

// ParseEventTypeInput turns editor strings into a rule. The name is trimmed.
func ParseEventTypeInput(in EventTypeInput) (models.EventTypeRule, *ValidationError) {
	rule := models.EventTypeRule{
		ID:            in.ID,
		EventTypeName: strings.TrimSpace(in.Name),
		Active:        activeOrDefault(in.Active),
	}
	if rule.EventTypeName == "" {
		return rule, &ValidationError{Field: FieldName, Message: "Event type name is required.", RuleID: in.ID}
	}

	ct, verr := inputCalcType(in.CalcType, models.CalcTypeFlat)
	if verr != nil {
		verr.RuleID = in.ID
		return rule, verr
	}
	charge, verr := parseCharge(in.Amount, ct)
	if verr != nil {
		verr.RuleID = in.ID
		return rule, verr
	}
	rule.Charge = charge
	return rule, nil
}

// ParseServiceRuleInput turns editor strings into a service rule. An empty
// amount leaves the rule unconfigured, which is how a component is switched off.
func ParseServiceRuleInput(in ServiceRuleInput) (models.ServiceRule, *ValidationError) {
	var rule models.ServiceRule
	if strings.TrimSpace(in.Amount) == "" {
		return rule, nil
	}

	ct, verr := inputCalcType(in.CalcType, models.CalcTypeFlat)
	if verr != nil {
		return rule, verr
	}
	charge, verr := parseCharge(in.Amount, ct)
	if verr != nil {
		return rule, verr
	}
	rule.Charge = charge
	return rule, nil
}
