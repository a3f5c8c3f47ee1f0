package pricing

import (
	"context"
	"fmt"
	"log"

	"catering-fees/models"
	"catering-fees/utils"
)

// StoreReader gives the engine read access to the committed fee configuration
type StoreReader interface {
	Load(ctx context.Context) *models.FeeStore
}

// Engine computes the catering fees of a cart from the committed fee rules
type Engine struct {
	store StoreReader
}

// NewEngine creates a new fee engine reading from store
func NewEngine(store StoreReader) *Engine {
	return &Engine{store: store}
}

// Line names and descriptions shown to the customer
const (
	guestCountLineName        = "Party size fee"
	guestCountLineDescription = "Scales with your party size to ensure adequate staffing and prep."
	orderAmountLineName       = "Service fee"
	orderAmountLineDesc       = "Covers the administrative and operational costs of your catering order."
	bundleLineName            = "Full-service"
	bundleLineDescription     = "Comprehensive on-site service from setup to cleanup."
)

type componentCopy struct {
	label       string
	description string
}

var componentCopies = map[models.ComponentKey]componentCopy{
	models.ComponentCutlery:  {"Plates & cutlery", "Provision of all necessary dining ware for your guests."},
	models.ComponentStaffing: {"On-site staff", "Professional team members to assist during your event."},
	models.ComponentSetup:    {"On-site setup", "Professional arrangement and presentation of your catering."},
	models.ComponentCleanup:  {"Cleanup", "Professional clearing of the catering area after your event."},
}

// ComponentLabel returns the display name of a full-service component
func ComponentLabel(key models.ComponentKey) string {
	if c, ok := componentCopies[key]; ok {
		return c.label
	}
	return string(key)
}

// ComputeFeeLines calculates the fee breakdown for a cart. It never fails:
// rules that cannot be applied are left out.
func (e *Engine) ComputeFeeLines(ctx context.Context, cart models.CartContext) models.FeeBreakdown {
	breakdown := Resolve(e.store.Load(ctx), cart)
	log.Printf("💰 ComputeFeeLines: subtotal=%d guests=%d -> %d fee lines, fees=%d, total=%d",
		cart.SubtotalCents, cart.GuestCount, len(breakdown.Lines), breakdown.FeesTotalCents, breakdown.TotalCents)
	return breakdown
}

// Resolve computes the fee breakdown of cart against store.
// Lines come in the order guest count, order amount, event type, full service.
func Resolve(store *models.FeeStore, cart models.CartContext) models.FeeBreakdown {
	if store == nil {
		store = models.NewDefaultFeeStore()
	}

	guestCount := cart.GuestCount
	if cart.GuestCountMissing {
		guestCount = 0
	}

	lines := []models.FeeLine{}

	if store.Settings.GuestCountActive {
		if rule := guestCountRuleFor(store, cart); rule != nil {
			lines = appendLine(lines, models.FeeKindGuestCount, rule.ID, guestCountLineName, guestCountLineDescription,
				rule.Charge, cart.SubtotalCents, guestCount, false)
		}
	}

	if store.Settings.OrderAmountActive {
		if rule := ResolveOrderAmountTier(store.OrderAmountRules, cart.SubtotalCents); rule != nil {
			lines = appendLine(lines, models.FeeKindOrderAmount, rule.ID, orderAmountLineName, orderAmountLineDesc,
				rule.Charge, cart.SubtotalCents, guestCount, false)
		}
	}

	if cart.EventTypeID != "" {
		for _, rule := range store.EventTypeRules {
			if rule.ID != cart.EventTypeID || !rule.Active {
				continue
			}
			lines = appendLine(lines, models.FeeKindEventType, rule.ID,
				fmt.Sprintf("%s coordination", rule.EventTypeName),
				fmt.Sprintf("Specialized planning and resources required for %s events.", rule.EventTypeName),
				rule.Charge, cart.SubtotalCents, guestCount, false)
			break
		}
	}

	if cart.FullService.Enabled {
		lines = appendFullServiceLines(lines, store.FullService, cart, guestCount)
	}

	var feesTotal int64
	for _, line := range lines {
		feesTotal += line.AmountCents
	}
	total := cart.SubtotalCents + feesTotal

	breakdown := models.FeeBreakdown{
		Lines:          lines,
		SubtotalCents:  cart.SubtotalCents,
		FeesTotalCents: feesTotal,
		TotalCents:     total,
		GuestCount:     guestCount,
	}
	if guestCount > 0 {
		breakdown.PerPersonCents = utils.DivideRounded(total, int64(guestCount))
	}
	return breakdown
}

func guestCountRuleFor(store *models.FeeStore, cart models.CartContext) *models.GuestCountRule {
	if !cart.GuestCountMissing {
		return ResolveGuestCountTier(store.GuestCountRules, cart.GuestCount)
	}
	if store.Settings.GuestCountMissingPolicy == models.MissingGuestCountFloor {
		return lowestGuestCountTier(store.GuestCountRules)
	}
	return nil
}

func appendFullServiceLines(lines []models.FeeLine, config models.FullServiceConfig, cart models.CartContext, guestCount int) []models.FeeLine {
	mode := cart.FullService.Mode
	if mode == "" {
		mode = config.Mode
	}

	if mode != models.FullServiceALaCarte {
		if config.Bundle.Active && config.Bundle.Charge.IsConfigured() {
			lines = appendLine(lines, models.FeeKindFullService, string(models.FullServiceBundle), bundleLineName, bundleLineDescription,
				config.Bundle.Charge, cart.SubtotalCents, guestCount, true)
		}
		return lines
	}

	selected := make(map[models.ComponentKey]bool, len(cart.FullService.Components))
	for _, key := range cart.FullService.Components {
		selected[key] = true
	}
	for _, key := range models.ComponentKeys() {
		rule := config.Components[key]
		if !selected[key] || !rule.Active || !rule.Charge.IsConfigured() {
			continue
		}
		c := componentCopies[key]
		lines = appendLine(lines, models.FeeKindFullService, string(key), c.label, c.description,
			rule.Charge, cart.SubtotalCents, guestCount, true)
	}
	return lines
}

// appendLine adds a fee line for charge. Lines that come to zero are left out unless forceShow is set.
func appendLine(lines []models.FeeLine, kind models.FeeKind, ruleID, name, description string, charge models.Charge, subtotalCents int64, guestCount int, forceShow bool) []models.FeeLine {
	amount := ChargeAmount(charge, subtotalCents, guestCount)
	if amount == 0 && !forceShow {
		return lines
	}
	return append(lines, models.FeeLine{
		Kind:        kind,
		RuleID:      ruleID,
		Name:        name,
		Description: description,
		Calculation: DescribeCharge(charge, subtotalCents, guestCount),
		AmountCents: amount,
	})
}

// ChargeAmount returns the fee in cents that charge adds to an order
func ChargeAmount(charge models.Charge, subtotalCents int64, guestCount int) int64 {
	switch charge.CalcType() {
	case models.CalcTypePercent:
		percent, _ := charge.Percent()
		return utils.PercentOfCents(subtotalCents, percent)
	case models.CalcTypePerPerson:
		amount, _ := charge.AmountCents()
		return amount * int64(guestCount)
	case models.CalcTypeFlat:
		amount, _ := charge.AmountCents()
		return amount
	}
	return 0
}

// DescribeCharge explains how a fee amount was calculated, e.g. "$2 per person × 8"
func DescribeCharge(charge models.Charge, subtotalCents int64, guestCount int) string {
	switch charge.CalcType() {
	case models.CalcTypePercent:
		percent, _ := charge.Percent()
		return fmt.Sprintf("%s of subtotal (%s)", utils.FormatPercent(percent), utils.FormatUSD(subtotalCents))
	case models.CalcTypePerPerson:
		amount, _ := charge.AmountCents()
		return fmt.Sprintf("%s per person × %d", utils.FormatDollarsSmart(amount), guestCount)
	case models.CalcTypeFlat:
		amount, _ := charge.AmountCents()
		return fmt.Sprintf("%s flat", utils.FormatDollarsSmart(amount))
	}
	return ""
}

// DescribeRate describes a charge without cart context, e.g. "5% of subtotal" or "$2 per person"
func DescribeRate(charge models.Charge) string {
	switch charge.CalcType() {
	case models.CalcTypePercent:
		percent, _ := charge.Percent()
		return utils.FormatPercent(percent) + " of subtotal"
	case models.CalcTypePerPerson:
		amount, _ := charge.AmountCents()
		return utils.FormatDollarsSmart(amount) + " per person"
	case models.CalcTypeFlat:
		amount, _ := charge.AmountCents()
		return utils.FormatDollarsSmart(amount) + " flat"
	}
	return "Not set"
}
