package service

import (
	"context"

	"catering-fees/models"
	"catering-fees/repository"
)

// DraftSet groups one draft controller per fee kind over the same store
type DraftSet struct {
	EventTypes  *DraftController[[]models.EventTypeRule]
	GuestCount  *DraftController[models.GuestCountSchedule]
	OrderAmount *DraftController[models.OrderAmountSchedule]
	FullService *DraftController[models.FullServiceConfig]
}

// NewDraftSet creates draft controllers for every fee kind
func NewDraftSet(repo repository.FeeStoreRepositoryInterface) *DraftSet {
	return &DraftSet{
		EventTypes:  NewDraftController(repo, DraftStrategy[[]models.EventTypeRule](EventTypeStrategy{})),
		GuestCount:  NewDraftController(repo, DraftStrategy[models.GuestCountSchedule](GuestCountStrategy{})),
		OrderAmount: NewDraftController(repo, DraftStrategy[models.OrderAmountSchedule](OrderAmountStrategy{})),
		FullService: NewDraftController(repo, DraftStrategy[models.FullServiceConfig](FullServiceStrategy{})),
	}
}

// Deactivate clears the committed rules of one kind
func (s *DraftSet) Deactivate(ctx context.Context, kind models.FeeKind) error {
	switch kind {
	case models.FeeKindEventType:
		return s.EventTypes.Deactivate(ctx)
	case models.FeeKindGuestCount:
		return s.GuestCount.Deactivate(ctx)
	case models.FeeKindOrderAmount:
		return s.OrderAmount.Deactivate(ctx)
	case models.FeeKindFullService:
		return s.FullService.Deactivate(ctx)
	}
	return ErrUnknownFeeKind
}

// AnyDirty reports whether any kind has uncommitted changes
func (s *DraftSet) AnyDirty() bool {
	return s.EventTypes.Dirty() || s.GuestCount.Dirty() || s.OrderAmount.Dirty() || s.FullService.Dirty()
}
