package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"catering-fees/models"
	"catering-fees/pricing"
	"catering-fees/repository"
)

// ErrUnknownFeeKind is returned for a fee kind outside models.FeeKind
var ErrUnknownFeeKind = errors.New("unknown fee kind")

// EventTypeCatalog is the list of event types offered when adding an event-type fee
var EventTypeCatalog = []string{
	"Birthday",
	"Wedding",
	"Corporate event",
	"Family gathering",
	"Holiday party",
	"School event",
	"Community event",
	"Sports event",
	"Baby shower",
	"Graduation",
	"Anniversary",
	"Office meeting",
}

// FeeRuleService writes single rules straight to committed state, without a draft
type FeeRuleService struct {
	repo repository.FeeStoreRepositoryInterface
}

// NewFeeRuleService creates a new FeeRuleService
func NewFeeRuleService(repo repository.FeeStoreRepositoryInterface) *FeeRuleService {
	return &FeeRuleService{repo: repo}
}

// Snapshot returns the committed store
func (s *FeeRuleService) Snapshot(ctx context.Context) *models.FeeStore {
	return s.repo.Load(ctx)
}

// mutate runs fn inside WithStore, passing validation errors back unwrapped
func (s *FeeRuleService) mutate(ctx context.Context, op string, fn func(store *models.FeeStore) *pricing.ValidationError) (*models.FeeStore, error) {
	store, err := s.repo.WithStore(ctx, func(store *models.FeeStore) error {
		if verr := fn(store); verr != nil {
			return verr
		}
		return nil
	})
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			log.Printf("⚠️  %s rejected: %s", op, verr.Message)
			return nil, err
		}
		log.Printf("❌ %s failed: %v", op, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Printf("✅ %s saved", op)
	return store, nil
}

// UpsertEventTypeRule validates rule against the committed rules and saves it
func (s *FeeRuleService) UpsertEventTypeRule(ctx context.Context, rule models.EventTypeRule) (models.EventTypeRule, error) {
	if rule.ID == "" {
		rule.ID = newRuleID()
	}
	_, err := s.mutate(ctx, "UpsertEventTypeRule", func(store *models.FeeStore) *pricing.ValidationError {
		if verr := pricing.ValidateEventTypeRule(rule, store.EventTypeRules); verr != nil {
			return verr
		}
		store.EventTypeRules = upsertByID(store.EventTypeRules, rule)
		return nil
	})
	return rule, err
}

// DeleteEventTypeRule removes the event-type rule with id
func (s *FeeRuleService) DeleteEventTypeRule(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "DeleteEventTypeRule", func(store *models.FeeStore) *pricing.ValidationError {
		store.EventTypeRules = deleteByID(store.EventTypeRules, id)
		return nil
	})
	return err
}

// UpsertGuestCountRule validates rule against the committed tiers and saves it
func (s *FeeRuleService) UpsertGuestCountRule(ctx context.Context, rule models.GuestCountRule) (models.GuestCountRule, error) {
	if rule.ID == "" {
		rule.ID = newRuleID()
	}
	_, err := s.mutate(ctx, "UpsertGuestCountRule", func(store *models.FeeStore) *pricing.ValidationError {
		if verr := pricing.ValidateGuestCountRule(rule, store.GuestCountRules); verr != nil {
			return verr
		}
		store.GuestCountRules = upsertByID(store.GuestCountRules, rule)
		return nil
	})
	return rule, err
}

// DeleteGuestCountRule removes the guest-count tier with id
func (s *FeeRuleService) DeleteGuestCountRule(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "DeleteGuestCountRule", func(store *models.FeeStore) *pricing.ValidationError {
		store.GuestCountRules = deleteByID(store.GuestCountRules, id)
		return nil
	})
	return err
}

// UpsertOrderAmountRule validates rule against the committed tiers and saves it
func (s *FeeRuleService) UpsertOrderAmountRule(ctx context.Context, rule models.OrderAmountRule) (models.OrderAmountRule, error) {
	if rule.ID == "" {
		rule.ID = newRuleID()
	}
	_, err := s.mutate(ctx, "UpsertOrderAmountRule", func(store *models.FeeStore) *pricing.ValidationError {
		if verr := pricing.ValidateOrderAmountRule(rule, store.OrderAmountRules); verr != nil {
			return verr
		}
		store.OrderAmountRules = upsertByID(store.OrderAmountRules, rule)
		return nil
	})
	return rule, err
}

// DeleteOrderAmountRule removes the order-amount tier with id
func (s *FeeRuleService) DeleteOrderAmountRule(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "DeleteOrderAmountRule", func(store *models.FeeStore) *pricing.ValidationError {
		store.OrderAmountRules = deleteByID(store.OrderAmountRules, id)
		return nil
	})
	return err
}

// UpdateFullServiceConfig replaces the full-service config as given
func (s *FeeRuleService) UpdateFullServiceConfig(ctx context.Context, config models.FullServiceConfig) error {
	_, err := s.mutate(ctx, "UpdateFullServiceConfig", func(store *models.FeeStore) *pricing.ValidationError {
		if verr := pricing.ValidateFullServiceConfig(config, false); verr != nil {
			return verr
		}
		store.FullService = config.Clone()
		return nil
	})
	return err
}

// UpdateSettings replaces the per-kind switches. Unknown calc types or
// policies are rejected.
func (s *FeeRuleService) UpdateSettings(ctx context.Context, settings models.Settings) error {
	_, err := s.mutate(ctx, "UpdateSettings", func(store *models.FeeStore) *pricing.ValidationError {
		if verr := pricing.ValidateCalcType(settings.GuestCountCalcType, pricing.GuestCountCalcTypes...); verr != nil {
			return verr
		}
		if verr := pricing.ValidateCalcType(settings.OrderAmountCalcType, pricing.OrderAmountCalcTypes...); verr != nil {
			return verr
		}
		switch settings.GuestCountMissingPolicy {
		case models.MissingGuestCountSkip, models.MissingGuestCountFloor:
		case "":
			settings.GuestCountMissingPolicy = models.MissingGuestCountSkip
		default:
			return &pricing.ValidationError{Field: "guestCountMissingPolicy", Message: "Choose skip or floor."}
		}
		store.Settings = settings
		return nil
	})
	return err
}

// AvailableEventTypes returns the catalog names not yet used by a rule.
// The rule with editID keeps its own name available.
func (s *FeeRuleService) AvailableEventTypes(ctx context.Context, editID string) []string {
	store := s.repo.Load(ctx)
	used := make(map[string]bool, len(store.EventTypeRules))
	for _, r := range store.EventTypeRules {
		if r.ID == editID {
			continue
		}
		used[strings.ToLower(strings.TrimSpace(r.EventTypeName))] = true
	}

	available := make([]string, 0, len(EventTypeCatalog))
	for _, name := range EventTypeCatalog {
		if !used[strings.ToLower(name)] {
			available = append(available, name)
		}
	}
	return available
}
