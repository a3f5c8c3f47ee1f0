package models

// FullServiceSelection is what the cart asks for in terms of full service
type FullServiceSelection struct {
	Enabled    bool            `json:"enabled"`
	Mode       FullServiceMode `json:"mode,omitempty"` // empty means the configured mode
	Components []ComponentKey  `json:"components,omitempty"`
}

// CartContext is the input of a fee computation
type CartContext struct {
	SubtotalCents     int64                `json:"subtotalCents"`
	GuestCount        int                  `json:"guestCount"`
	GuestCountMissing bool                 `json:"guestCountMissing,omitempty"`
	EventTypeID       string               `json:"eventTypeId,omitempty"`
	FullService       FullServiceSelection `json:"fullService"`
}

// FeeLine is a single fee applied to a cart
type FeeLine struct {
	Kind        FeeKind `json:"kind"`
	RuleID      string  `json:"ruleId,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Calculation string  `json:"calculation"`
	AmountCents int64   `json:"amountCents"`
}

// FeeBreakdown is the complete fee calculation result for a cart
type FeeBreakdown struct {
	Lines          []FeeLine `json:"lines"`
	SubtotalCents  int64     `json:"subtotalCents"`
	FeesTotalCents int64     `json:"feesTotalCents"` // sum of line amounts, each rounded on its own
	TotalCents     int64     `json:"totalCents"`
	GuestCount     int       `json:"guestCount"`
	PerPersonCents int64     `json:"perPersonCents"`
}
