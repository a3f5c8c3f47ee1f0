package models

// CurrentStoreVersion is the schema version written by this code
const CurrentStoreVersion = 3

// FeeStore is the persisted fee configuration document
type FeeStore struct {
	Version          int               `json:"version"`
	EventTypeRules   []EventTypeRule   `json:"eventTypeRules"`
	GuestCountRules  []GuestCountRule  `json:"guestCountRules"`
	OrderAmountRules []OrderAmountRule `json:"orderAmountRules"`
	FullService      FullServiceConfig `json:"fullServiceConfig"`
	Settings         Settings          `json:"settings"`
}

// NewDefaultFeeStore returns the document used when nothing usable is stored
func NewDefaultFeeStore() *FeeStore {
	return &FeeStore{
		Version:          CurrentStoreVersion,
		EventTypeRules:   []EventTypeRule{},
		GuestCountRules:  []GuestCountRule{},
		OrderAmountRules: []OrderAmountRule{},
		FullService:      NewFullServiceConfig(),
		Settings:         DefaultSettings(),
	}
}

// Clone returns a deep copy of the store
func (s *FeeStore) Clone() *FeeStore {
	out := *s
	out.EventTypeRules = append([]EventTypeRule{}, s.EventTypeRules...)
	out.GuestCountRules = CloneGuestCountRules(s.GuestCountRules)
	out.OrderAmountRules = CloneOrderAmountRules(s.OrderAmountRules)
	out.FullService = s.FullService.Clone()
	return &out
}

// CloneGuestCountRules copies rules including their MaxGuests pointers
func CloneGuestCountRules(rules []GuestCountRule) []GuestCountRule {
	out := make([]GuestCountRule, len(rules))
	for i, r := range rules {
		if r.MaxGuests != nil {
			max := *r.MaxGuests
			r.MaxGuests = &max
		}
		out[i] = r
	}
	return out
}

// CloneOrderAmountRules copies rules including their MaxSubtotalCents pointers
func CloneOrderAmountRules(rules []OrderAmountRule) []OrderAmountRule {
	out := make([]OrderAmountRule, len(rules))
	for i, r := range rules {
		if r.MaxSubtotalCents != nil {
			max := *r.MaxSubtotalCents
			r.MaxSubtotalCents = &max
		}
		out[i] = r
	}
	return out
}
