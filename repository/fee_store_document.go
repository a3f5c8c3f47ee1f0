package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"catering-fees/models"
)

// The types below are the stored JSON layout of the current schema version.
// Domain types never reach the wire directly; charges are flattened into
// calcType / amountCents / percent with the inert field written as zero.

type chargeRecord struct {
	CalcType    string   `json:"calcType"`
	AmountCents *int64   `json:"amountCents"`
	Percent     *float64 `json:"percent"`
}

type eventTypeRuleRecord struct {
	ID            string `json:"id"`
	EventTypeName string `json:"eventTypeName"`
	chargeRecord
	Active bool `json:"active"`
}

type guestCountRuleRecord struct {
	ID        string `json:"id"`
	MinGuests int    `json:"minGuests"`
	MaxGuests *int   `json:"maxGuests"`
	chargeRecord
	Active bool `json:"active"`
}

type orderAmountRuleRecord struct {
	ID               string `json:"id"`
	MinSubtotalCents int64  `json:"minSubtotalCents"`
	MaxSubtotalCents *int64 `json:"maxSubtotalCents"`
	chargeRecord
	Active bool `json:"active"`
}

type serviceRuleRecord struct {
	chargeRecord
	Active bool `json:"active"`
}

type fullServiceConfigRecord struct {
	Mode       string                       `json:"mode"`
	Bundle     serviceRuleRecord            `json:"bundle"`
	Components map[string]serviceRuleRecord `json:"components"`
}

type settingsRecord struct {
	GuestCountActive        bool   `json:"guestCountActive"`
	GuestCountCalcType      string `json:"guestCountCalcType"`
	GuestCountMissingPolicy string `json:"guestCountMissingPolicy"`
	OrderAmountActive       bool   `json:"orderAmountActive"`
	OrderAmountCalcType     string `json:"orderAmountCalcType"`
}

type storeDocument struct {
	Version           int                     `json:"version"`
	EventTypeRules    []eventTypeRuleRecord   `json:"eventTypeRules"`
	GuestCountRules   []guestCountRuleRecord  `json:"guestCountRules"`
	OrderAmountRules  []orderAmountRuleRecord `json:"orderAmountRules"`
	FullServiceConfig fullServiceConfigRecord `json:"fullServiceConfig"`
	Settings          settingsRecord          `json:"settings"`
}

func encodeCharge(c models.Charge) chargeRecord {
	calcType, amount, percent := c.Fields()
	return chargeRecord{CalcType: string(calcType), AmountCents: amount, Percent: percent}
}

func decodeCharge(r chargeRecord) models.Charge {
	calcType, ok := models.ParseCalcType(r.CalcType)
	if !ok {
		calcType = models.CalcTypeFlat
	}
	return models.ChargeFromFields(calcType, r.AmountCents, r.Percent)
}

func encodeServiceRule(r models.ServiceRule) serviceRuleRecord {
	return serviceRuleRecord{chargeRecord: encodeCharge(r.Charge), Active: r.Active}
}

func decodeServiceRule(r serviceRuleRecord) models.ServiceRule {
	return models.ServiceRule{Charge: decodeCharge(r.chargeRecord), Active: r.Active}
}

// encodeDocument converts a store to its stored layout at the current version
func encodeDocument(store *models.FeeStore) storeDocument {
	doc := storeDocument{
		Version:          models.CurrentStoreVersion,
		EventTypeRules:   make([]eventTypeRuleRecord, 0, len(store.EventTypeRules)),
		GuestCountRules:  make([]guestCountRuleRecord, 0, len(store.GuestCountRules)),
		OrderAmountRules: make([]orderAmountRuleRecord, 0, len(store.OrderAmountRules)),
		FullServiceConfig: fullServiceConfigRecord{
			Mode:       string(store.FullService.Mode),
			Bundle:     encodeServiceRule(store.FullService.Bundle),
			Components: make(map[string]serviceRuleRecord, len(store.FullService.Components)),
		},
		Settings: settingsRecord{
			GuestCountActive:        store.Settings.GuestCountActive,
			GuestCountCalcType:      string(store.Settings.GuestCountCalcType),
			GuestCountMissingPolicy: string(store.Settings.GuestCountMissingPolicy),
			OrderAmountActive:       store.Settings.OrderAmountActive,
			OrderAmountCalcType:     string(store.Settings.OrderAmountCalcType),
		},
	}

	for _, r := range store.EventTypeRules {
		doc.EventTypeRules = append(doc.EventTypeRules, eventTypeRuleRecord{
			ID:            r.ID,
			EventTypeName: r.EventTypeName,
			chargeRecord:  encodeCharge(r.Charge),
			Active:        r.Active,
		})
	}
	for _, r := range store.GuestCountRules {
		doc.GuestCountRules = append(doc.GuestCountRules, guestCountRuleRecord{
			ID:           r.ID,
			MinGuests:    r.MinGuests,
			MaxGuests:    r.MaxGuests,
			chargeRecord: encodeCharge(r.Charge),
			Active:       r.Active,
		})
	}
	for _, r := range store.OrderAmountRules {
		doc.OrderAmountRules = append(doc.OrderAmountRules, orderAmountRuleRecord{
			ID:               r.ID,
			MinSubtotalCents: r.MinSubtotalCents,
			MaxSubtotalCents: r.MaxSubtotalCents,
			chargeRecord:     encodeCharge(r.Charge),
			Active:           r.Active,
		})
	}
	for key, rule := range store.FullService.Components {
		doc.FullServiceConfig.Components[string(key)] = encodeServiceRule(rule)
	}

	return doc
}

// decodeDocument reads a current-version document. Sections missing from data
// keep their default values.
func decodeDocument(data []byte) (*models.FeeStore, error) {
	doc := encodeDocument(models.NewDefaultFeeStore())
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fee document: %w", err)
	}
	if doc.Version != models.CurrentStoreVersion {
		return nil, fmt.Errorf("unexpected fee document version %d", doc.Version)
	}

	defaults := models.DefaultSettings()
	store := &models.FeeStore{
		Version:          doc.Version,
		EventTypeRules:   make([]models.EventTypeRule, 0, len(doc.EventTypeRules)),
		GuestCountRules:  make([]models.GuestCountRule, 0, len(doc.GuestCountRules)),
		OrderAmountRules: make([]models.OrderAmountRule, 0, len(doc.OrderAmountRules)),
		FullService:      models.NewFullServiceConfig(),
		Settings: models.Settings{
			GuestCountActive:        doc.Settings.GuestCountActive,
			GuestCountCalcType:      calcTypeOr(doc.Settings.GuestCountCalcType, defaults.GuestCountCalcType),
			GuestCountMissingPolicy: models.MissingGuestCountPolicy(doc.Settings.GuestCountMissingPolicy),
			OrderAmountActive:       doc.Settings.OrderAmountActive,
			OrderAmountCalcType:     calcTypeOr(doc.Settings.OrderAmountCalcType, defaults.OrderAmountCalcType),
		},
	}
	if store.Settings.GuestCountMissingPolicy != models.MissingGuestCountFloor {
		store.Settings.GuestCountMissingPolicy = models.MissingGuestCountSkip
	}

	for _, r := range doc.EventTypeRules {
		store.EventTypeRules = append(store.EventTypeRules, models.EventTypeRule{
			ID:            r.ID,
			EventTypeName: r.EventTypeName,
			Charge:        decodeCharge(r.chargeRecord),
			Active:        r.Active,
		})
	}
	for _, r := range doc.GuestCountRules {
		store.GuestCountRules = append(store.GuestCountRules, models.GuestCountRule{
			ID:        r.ID,
			MinGuests: r.MinGuests,
			MaxGuests: r.MaxGuests,
			Charge:    decodeCharge(r.chargeRecord),
			Active:    r.Active,
		})
	}
	for _, r := range doc.OrderAmountRules {
		store.OrderAmountRules = append(store.OrderAmountRules, models.OrderAmountRule{
			ID:               r.ID,
			MinSubtotalCents: r.MinSubtotalCents,
			MaxSubtotalCents: r.MaxSubtotalCents,
			Charge:           decodeCharge(r.chargeRecord),
			Active:           r.Active,
		})
	}

	if mode, ok := models.ParseFullServiceMode(doc.FullServiceConfig.Mode); ok {
		store.FullService.Mode = mode
	}
	store.FullService.Bundle = decodeServiceRule(doc.FullServiceConfig.Bundle)
	for rawKey, rule := range doc.FullServiceConfig.Components {
		key, ok := models.ParseComponentKey(rawKey)
		if !ok {
			continue
		}
		store.FullService.Components[key] = decodeServiceRule(rule)
	}

	return store, nil
}

func calcTypeOr(raw string, fallback models.CalcType) models.CalcType {
	if calcType, ok := models.ParseCalcType(strings.TrimSpace(raw)); ok {
		return calcType
	}
	return fallback
}

// MarshalDocument returns store in its stored JSON form
func MarshalDocument(store *models.FeeStore) ([]byte, error) {
	data, err := json.Marshal(encodeDocument(store))
	if err != nil {
		return nil, fmt.Errorf("failed to encode fee document: %w", err)
	}
	return data, nil
}
