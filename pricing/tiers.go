package pricing

import (
	"sort"

	"catering-fees/models"
)

// resolveTier returns the index of the tier containing value. When no tier
// contains it, the tier with the greatest min not above value is used.
// It returns -1 only when value is below every min. tiers must be sorted by min.
func resolveTier(tiers []tier, value int64) int {
	fallback := -1
	for i, t := range tiers {
		if t.min > value {
			break
		}
		if t.max == nil || value <= *t.max {
			return i
		}
		fallback = i
	}
	return fallback
}

// ResolveGuestCountTier returns the active rule that applies to guestCount, or nil
func ResolveGuestCountTier(rules []models.GuestCountRule, guestCount int) *models.GuestCountRule {
	active := make([]models.GuestCountRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].MinGuests < active[j].MinGuests })

	tiers := make([]tier, len(active))
	for i, r := range active {
		tiers[i] = guestCountTier(r)
	}
	if i := resolveTier(tiers, int64(guestCount)); i >= 0 {
		return &active[i]
	}
	return nil
}

// ResolveOrderAmountTier returns the active rule that applies to subtotalCents, or nil
func ResolveOrderAmountTier(rules []models.OrderAmountRule, subtotalCents int64) *models.OrderAmountRule {
	active := make([]models.OrderAmountRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].MinSubtotalCents < active[j].MinSubtotalCents })

	tiers := make([]tier, len(active))
	for i, r := range active {
		tiers[i] = orderAmountTier(r)
	}
	if i := resolveTier(tiers, subtotalCents); i >= 0 {
		return &active[i]
	}
	return nil
}

// lowestGuestCountTier returns the active rule with the smallest MinGuests, or nil
func lowestGuestCountTier(rules []models.GuestCountRule) *models.GuestCountRule {
	var lowest *models.GuestCountRule
	for i := range rules {
		if !rules[i].Active {
			continue
		}
		if lowest == nil || rules[i].MinGuests < lowest.MinGuests {
			lowest = &rules[i]
		}
	}
	return lowest
}
