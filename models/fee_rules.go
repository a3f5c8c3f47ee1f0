package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CalcType is the way a fee amount is computed
type CalcType string

const (
	CalcTypeFlat      CalcType = "flat"
	CalcTypePercent   CalcType = "percent"
	CalcTypePerPerson CalcType = "perPerson"
)

// ParseCalcType maps a raw calc type ("flat", "percent", "perPerson") to a CalcType.
// Matching is case-insensitive; "per_person" is accepted as an alias.
func ParseCalcType(raw string) (CalcType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "flat":
		return CalcTypeFlat, true
	case "percent":
		return CalcTypePercent, true
	case "perperson", "per_person":
		return CalcTypePerPerson, true
	}
	return "", false
}

// Charge is the amount side of a fee rule. It is a tagged variant: a flat or
// per-person charge carries cents, a percent charge carries a percentage, and
// the field that does not belong to the calc type cannot be read.
// The zero Charge means "no amount entered yet".
type Charge struct {
	calcType    CalcType
	amountCents int64
	percent     float64
}

// FlatCharge returns a fixed charge in cents
func FlatCharge(amountCents int64) Charge {
	return Charge{calcType: CalcTypeFlat, amountCents: amountCents}
}

// PerPersonCharge returns a charge of amountCents for every guest
func PerPersonCharge(amountCents int64) Charge {
	return Charge{calcType: CalcTypePerPerson, amountCents: amountCents}
}

// PercentCharge returns a charge computed as a percentage of the order subtotal
func PercentCharge(percent float64) Charge {
	return Charge{calcType: CalcTypePercent, percent: percent}
}

// ZeroCharge returns a configured charge of the given type with a zero amount
func ZeroCharge(calcType CalcType) Charge {
	switch calcType {
	case CalcTypePercent:
		return PercentCharge(0)
	case CalcTypePerPerson:
		return PerPersonCharge(0)
	}
	return FlatCharge(0)
}

// ChargeFromFields builds a Charge from its serialized form. Only the field
// selected by calcType is used; unknown calc types are read as flat.
func ChargeFromFields(calcType CalcType, amountCents *int64, percent *float64) Charge {
	if calcType == CalcTypePercent {
		if percent == nil {
			return Charge{}
		}
		return PercentCharge(*percent)
	}
	if amountCents == nil {
		return Charge{}
	}
	if calcType == CalcTypePerPerson {
		return PerPersonCharge(*amountCents)
	}
	return FlatCharge(*amountCents)
}

// Fields returns the serialized form of the charge. The inert field is zero;
// both are nil when the charge is not configured.
func (c Charge) Fields() (calcType CalcType, amountCents *int64, percent *float64) {
	if !c.IsConfigured() {
		return CalcTypeFlat, nil, nil
	}
	amount := c.amountCents
	pct := c.percent
	if c.calcType == CalcTypePercent {
		amount = 0
	} else {
		pct = 0
	}
	return c.calcType, &amount, &pct
}

// CalcType returns the calc type, or "" for an unconfigured charge
func (c Charge) CalcType() CalcType {
	return c.calcType
}

// IsConfigured reports whether an amount or percent was entered
func (c Charge) IsConfigured() bool {
	return c.calcType != ""
}

// AmountCents returns the cents amount of a flat or per-person charge
func (c Charge) AmountCents() (int64, bool) {
	if c.calcType == CalcTypeFlat || c.calcType == CalcTypePerPerson {
		return c.amountCents, true
	}
	return 0, false
}

// Percent returns the percentage of a percent charge
func (c Charge) Percent() (float64, bool) {
	if c.calcType == CalcTypePercent {
		return c.percent, true
	}
	return 0, false
}

// ConvertTo switches the charge to another calc type. Flat and per-person
// share the cents amount; switching to or from percent starts at zero.
func (c Charge) ConvertTo(calcType CalcType) Charge {
	if c.calcType == calcType {
		return c
	}
	if amount, ok := c.AmountCents(); ok && calcType != CalcTypePercent {
		if calcType == CalcTypePerPerson {
			return PerPersonCharge(amount)
		}
		return FlatCharge(amount)
	}
	return ZeroCharge(calcType)
}

type chargeJSON struct {
	CalcType    CalcType `json:"calcType"`
	AmountCents *int64   `json:"amountCents"`
	Percent     *float64 `json:"percent"`
}

// MarshalJSON encodes the charge as {calcType, amountCents, percent}
func (c Charge) MarshalJSON() ([]byte, error) {
	calcType, amount, percent := c.Fields()
	if !c.IsConfigured() {
		calcType = ""
	}
	return json.Marshal(chargeJSON{CalcType: calcType, AmountCents: amount, Percent: percent})
}

// UnmarshalJSON decodes {calcType, amountCents, percent}
func (c *Charge) UnmarshalJSON(data []byte) error {
	var raw chargeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid charge: %w", err)
	}
	if raw.CalcType == "" {
		*c = Charge{}
		return nil
	}
	*c = ChargeFromFields(raw.CalcType, raw.AmountCents, raw.Percent)
	return nil
}

// FeeKind identifies one fee collection
type FeeKind string

const (
	FeeKindGuestCount  FeeKind = "guestCount"
	FeeKindOrderAmount FeeKind = "orderAmount"
	FeeKindEventType   FeeKind = "eventType"
	FeeKindFullService FeeKind = "fullService"
)

// ParseFeeKind accepts the camelCase kind or its kebab-case URL form
func ParseFeeKind(raw string) (FeeKind, bool) {
	switch strings.TrimSpace(raw) {
	case "guestCount", "guest-count":
		return FeeKindGuestCount, true
	case "orderAmount", "order-amount":
		return FeeKindOrderAmount, true
	case "eventType", "event-type":
		return FeeKindEventType, true
	case "fullService", "full-service":
		return FeeKindFullService, true
	}
	return "", false
}

// EventTypeRule charges a fee for a specific kind of event
type EventTypeRule struct {
	ID            string `json:"id"`
	EventTypeName string `json:"eventTypeName"`
	Charge        Charge `json:"charge"`
	Active        bool   `json:"active"`
}

func (r EventTypeRule) RuleID() string { return r.ID }

// GuestCountRule charges a fee when the party size falls in [MinGuests, MaxGuests].
// A nil MaxGuests is open-ended.
type GuestCountRule struct {
	ID        string `json:"id"`
	MinGuests int    `json:"minGuests"`
	MaxGuests *int   `json:"maxGuests"`
	Charge    Charge `json:"charge"`
	Active    bool   `json:"active"`
}

func (r GuestCountRule) RuleID() string { return r.ID }

// OrderAmountRule charges a fee when the subtotal falls in [MinSubtotalCents, MaxSubtotalCents].
// A nil MaxSubtotalCents is open-ended.
type OrderAmountRule struct {
	ID               string `json:"id"`
	MinSubtotalCents int64  `json:"minSubtotalCents"`
	MaxSubtotalCents *int64 `json:"maxSubtotalCents"`
	Charge           Charge `json:"charge"`
	Active           bool   `json:"active"`
}

func (r OrderAmountRule) RuleID() string { return r.ID }

// GuestCountSchedule is the guest-count collection plus the calc type new tiers start with
type GuestCountSchedule struct {
	CalcType CalcType         `json:"calcType"`
	Rules    []GuestCountRule `json:"rules"`
}

// OrderAmountSchedule is the order-amount collection plus the calc type new tiers start with
type OrderAmountSchedule struct {
	CalcType CalcType          `json:"calcType"`
	Rules    []OrderAmountRule `json:"rules"`
}

// ComponentKey names one à-la-carte full-service component
type ComponentKey string

const (
	ComponentCutlery  ComponentKey = "cutlery"
	ComponentStaffing ComponentKey = "staffing"
	ComponentSetup    ComponentKey = "setup"
	ComponentCleanup  ComponentKey = "cleanup"
)

// ComponentKeys returns every component in display order
func ComponentKeys() []ComponentKey {
	return []ComponentKey{ComponentCutlery, ComponentStaffing, ComponentSetup, ComponentCleanup}
}

// ParseComponentKey validates a raw component key
func ParseComponentKey(raw string) (ComponentKey, bool) {
	key := ComponentKey(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range ComponentKeys() {
		if k == key {
			return k, true
		}
	}
	return "", false
}

// FullServiceMode selects between one bundled charge and per-component charges
type FullServiceMode string

const (
	FullServiceBundle   FullServiceMode = "bundle"
	FullServiceALaCarte FullServiceMode = "a_la_carte"
)

// ParseFullServiceMode accepts "bundle" and "a_la_carte" (or "a-la-carte")
func ParseFullServiceMode(raw string) (FullServiceMode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "bundle":
		return FullServiceBundle, true
	case "a_la_carte", "a-la-carte", "alacarte":
		return FullServiceALaCarte, true
	}
	return "", false
}

// ServiceRule is the charge for the full-service bundle or one of its components
type ServiceRule struct {
	Charge Charge `json:"charge"`
	Active bool   `json:"active"`
}

// FullServiceConfig holds the full-service fee in either mode
type FullServiceConfig struct {
	Mode       FullServiceMode              `json:"mode"`
	Bundle     ServiceRule                  `json:"bundle"`
	Components map[ComponentKey]ServiceRule `json:"components"`
}

// NewFullServiceConfig returns an inactive bundle-mode config with nothing configured
func NewFullServiceConfig() FullServiceConfig {
	components := make(map[ComponentKey]ServiceRule, 4)
	for _, key := range ComponentKeys() {
		components[key] = ServiceRule{}
	}
	return FullServiceConfig{
		Mode:       FullServiceBundle,
		Components: components,
	}
}

// IsActive reports whether the config currently charges anything
func (c FullServiceConfig) IsActive() bool {
	if c.Mode == FullServiceALaCarte {
		for _, key := range ComponentKeys() {
			if c.Components[key].Active {
				return true
			}
		}
		return false
	}
	return c.Bundle.Active
}

// Clone returns a copy that shares no map with c
func (c FullServiceConfig) Clone() FullServiceConfig {
	out := c
	out.Components = make(map[ComponentKey]ServiceRule, len(c.Components))
	for k, v := range c.Components {
		out.Components[k] = v
	}
	return out
}

// MissingGuestCountPolicy decides what happens when a cart has no guest count
type MissingGuestCountPolicy string

const (
	MissingGuestCountSkip  MissingGuestCountPolicy = "skip"
	MissingGuestCountFloor MissingGuestCountPolicy = "floor"
)

// Settings holds the per-kind switches of the fee configuration
type Settings struct {
	GuestCountActive        bool                    `json:"guestCountActive"`
	GuestCountCalcType      CalcType                `json:"guestCountCalcType"`
	GuestCountMissingPolicy MissingGuestCountPolicy `json:"guestCountMissingPolicy"`
	OrderAmountActive       bool                    `json:"orderAmountActive"`
	OrderAmountCalcType     CalcType                `json:"orderAmountCalcType"`
}

// DefaultSettings returns the settings of a fresh store
func DefaultSettings() Settings {
	return Settings{
		GuestCountCalcType:      CalcTypeFlat,
		GuestCountMissingPolicy: MissingGuestCountSkip,
		OrderAmountCalcType:     CalcTypeFlat,
	}
}
