package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"catering-fees/models"
	"catering-fees/pricing"
	"catering-fees/repository"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func newTestRepo() *repository.FeeStoreRepository {
	return repository.NewFeeStoreRepository(repository.NewMemoryKeyValueStore(), "")
}

// sequentialIDs makes newRuleID deterministic for the duration of a test
func sequentialIDs(t *testing.T) {
	t.Helper()
	n := 0
	prev := newRuleID
	newRuleID = func() string {
		n++
		return fmt.Sprintf("rule-%d", n)
	}
	t.Cleanup(func() { newRuleID = prev })
}

func mustMutate[C any](t *testing.T, d *DraftController[C], op DraftOp[C]) {
	t.Helper()
	if err := d.Mutate(op); err != nil {
		t.Fatalf("mutate failed: %v", err)
	}
}

func TestDraftRequiresBegin(t *testing.T) {
	d := NewDraftSet(newTestRepo()).GuestCount
	if err := d.Mutate(AddGuestCountTier()); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft from Mutate, got %v", err)
	}
	if err := d.Commit(context.Background(), true); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft from Commit, got %v", err)
	}
}

func TestGuestCountCommitThenBeginMatches(t *testing.T) {
	sequentialIDs(t)
	ctx := context.Background()
	repo := newTestRepo()
	d := NewDraftSet(repo).GuestCount

	d.BeginDraft(ctx)
	mustMutate(t, d, ConvertGuestCountCalcType(models.CalcTypePerPerson))
	mustMutate(t, d, UpsertGuestCountRule(models.GuestCountRule{ID: "a", MinGuests: 1, MaxGuests: intPtr(5), Charge: models.PerPersonCharge(300), Active: true}))
	mustMutate(t, d, UpsertGuestCountRule(models.GuestCountRule{ID: "b", MinGuests: 6, Charge: models.PerPersonCharge(200), Active: true}))
	if !d.Dirty() {
		t.Fatal("expected draft to be dirty after edits")
	}
	draft := d.Draft()

	if err := d.Commit(ctx, true); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if d.Dirty() {
		t.Error("draft should be clean after commit")
	}

	again := NewDraftSet(repo).GuestCount.BeginDraft(ctx)
	if !reflect.DeepEqual(again, draft) {
		t.Errorf("draft after commit differs:\n got %+v\nwant %+v", again, draft)
	}

	store := repo.Load(ctx)
	if !store.Settings.GuestCountActive || store.Settings.GuestCountCalcType != models.CalcTypePerPerson {
		t.Errorf("settings not committed: %+v", store.Settings)
	}
}

func TestInvalidCommitLeavesStoreAndDraft(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	d := NewDraftSet(repo).OrderAmount

	d.BeginDraft(ctx)
	mustMutate(t, d, UpsertOrderAmountRule(models.OrderAmountRule{ID: "a", MinSubtotalCents: 0, MaxSubtotalCents: int64Ptr(9999), Charge: models.FlatCharge(500), Active: true}))
	before := d.Draft()

	err := d.Commit(ctx, true)
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) || verr.Message != lastRangeOpenMessage {
		t.Fatalf("expected last range error, got %v", err)
	}
	if !reflect.DeepEqual(d.Draft(), before) || !d.Dirty() {
		t.Error("rejected commit must keep the draft")
	}
	if store := repo.Load(ctx); len(store.OrderAmountRules) != 0 || store.Settings.OrderAmountActive {
		t.Errorf("rejected commit must not write: %+v", store)
	}
}

func TestCommitRequiresRangesWhenActivating(t *testing.T) {
	ctx := context.Background()
	d := NewDraftSet(newTestRepo()).GuestCount
	d.BeginDraft(ctx)

	err := d.Commit(ctx, true)
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) || verr.Message != "Add at least one guest range before saving." {
		t.Fatalf("expected missing range error, got %v", err)
	}
	if err := d.Commit(ctx, false); err != nil {
		t.Errorf("saving an empty inactive schedule should pass: %v", err)
	}
}

func TestDiscardAndDirtyTracking(t *testing.T) {
	ctx := context.Background()
	d := NewDraftSet(newTestRepo()).EventTypes
	d.BeginDraft(ctx)

	mustMutate(t, d, UpsertEventTypeRule(models.EventTypeRule{ID: "w", EventTypeName: "Wedding", Charge: models.FlatCharge(2500), Active: true}))
	if !d.Dirty() {
		t.Fatal("expected dirty draft")
	}
	mustMutate(t, d, DeleteEventTypeRule("w"))
	if d.Dirty() {
		t.Error("draft equal to saved state should not be dirty")
	}

	mustMutate(t, d, UpsertEventTypeRule(models.EventTypeRule{ID: "w", EventTypeName: "Wedding", Charge: models.FlatCharge(2500), Active: true}))
	d.Discard()
	if d.Dirty() || len(d.Draft()) != 0 {
		t.Errorf("discard should restore the saved state, got %+v", d.Draft())
	}
}

func TestRejectedMutationKeepsDraft(t *testing.T) {
	ctx := context.Background()
	d := NewDraftSet(newTestRepo()).EventTypes
	d.BeginDraft(ctx)
	mustMutate(t, d, UpsertEventTypeRule(models.EventTypeRule{ID: "w", EventTypeName: "Wedding", Charge: models.FlatCharge(2500), Active: true}))

	err := d.Mutate(UpsertEventTypeRule(models.EventTypeRule{ID: "x", EventTypeName: "wedding ", Charge: models.FlatCharge(100), Active: true}))
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) || verr.Field != pricing.FieldName {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
	if got := d.Draft(); len(got) != 1 || got[0].ID != "w" {
		t.Errorf("draft changed after rejected mutation: %+v", got)
	}
}

func TestDeactivateClearsCommittedRules(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	set := NewDraftSet(repo)

	d := set.GuestCount
	d.BeginDraft(ctx)
	mustMutate(t, d, UpsertGuestCountRule(models.GuestCountRule{ID: "a", MinGuests: 1, Charge: models.FlatCharge(1000), Active: true}))
	if err := d.Commit(ctx, true); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := set.Deactivate(ctx, models.FeeKindGuestCount); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	store := repo.Load(ctx)
	if len(store.GuestCountRules) != 0 || store.Settings.GuestCountActive {
		t.Errorf("deactivate should clear the kind: %+v", store)
	}
	if len(d.Draft().Rules) != 0 {
		t.Errorf("draft should be reseeded empty, got %+v", d.Draft())
	}

	if err := set.Deactivate(ctx, models.FeeKind("bogus")); !errors.Is(err, ErrUnknownFeeKind) {
		t.Errorf("expected ErrUnknownFeeKind, got %v", err)
	}
}

func TestInactiveKindSeedsEmptyDraft(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	store := models.NewDefaultFeeStore()
	store.OrderAmountRules = []models.OrderAmountRule{{ID: "a", MinSubtotalCents: 0, Charge: models.FlatCharge(500), Active: true}}
	if err := repo.Save(ctx, store); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	draft := NewDraftSet(repo).OrderAmount.BeginDraft(ctx)
	if len(draft.Rules) != 0 {
		t.Errorf("inactive kind should seed an empty draft, got %+v", draft.Rules)
	}
}

func TestAddTierSteps(t *testing.T) {
	sequentialIDs(t)
	ctx := context.Background()
	d := NewDraftSet(newTestRepo()).GuestCount
	d.BeginDraft(ctx)

	mustMutate(t, d, AddGuestCountTier())
	mustMutate(t, d, AddGuestCountTier())
	rules := d.Draft().Rules
	if len(rules) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(rules))
	}
	if rules[0].MinGuests != 1 || rules[0].MaxGuests == nil || *rules[0].MaxGuests != 50 {
		t.Errorf("first tier should close at 50: %+v", rules[0])
	}
	if rules[1].MinGuests != 51 || rules[1].MaxGuests != nil {
		t.Errorf("second tier should start at 51 and stay open: %+v", rules[1])
	}

	o := NewDraftSet(newTestRepo()).OrderAmount
	o.BeginDraft(ctx)
	mustMutate(t, o, AddOrderAmountTier())
	mustMutate(t, o, AddOrderAmountTier())
	tiers := o.Draft().Rules
	if tiers[0].MinSubtotalCents != 0 || *tiers[0].MaxSubtotalCents != 9999 || tiers[1].MinSubtotalCents != 10000 {
		t.Errorf("unexpected order tiers: %+v", tiers)
	}
}

func TestConvertCalcType(t *testing.T) {
	ctx := context.Background()
	d := NewDraftSet(newTestRepo()).GuestCount
	d.BeginDraft(ctx)
	mustMutate(t, d, UpsertGuestCountRule(models.GuestCountRule{ID: "a", MinGuests: 1, Charge: models.FlatCharge(700), Active: true}))

	mustMutate(t, d, ConvertGuestCountCalcType(models.CalcTypePerPerson))
	if got := d.Draft().Rules[0].Charge; got != models.PerPersonCharge(700) {
		t.Errorf("flat to per-person should keep cents, got %+v", got)
	}
	mustMutate(t, d, ConvertGuestCountCalcType(models.CalcTypePercent))
	if got := d.Draft().Rules[0].Charge; got != models.PercentCharge(0) {
		t.Errorf("switch to percent should reset the amount, got %+v", got)
	}

	if err := d.Mutate(ConvertGuestCountCalcType("tiered")); err == nil {
		t.Error("expected unknown calc type to be rejected")
	}
	if err := NewDraftSet(newTestRepo()).OrderAmount.Mutate(ConvertOrderAmountCalcType(models.CalcTypePerPerson)); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}

	if !CalcTypeChangeNeedsReview(models.CalcTypeFlat, models.CalcTypePercent) || CalcTypeChangeNeedsReview(models.CalcTypeFlat, models.CalcTypePerPerson) {
		t.Error("only changes to or from percent need review")
	}
}

func TestFullServiceCommitActivation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	d := NewDraftSet(repo).FullService
	d.BeginDraft(ctx)

	mustMutate(t, d, SetFullServiceMode(models.FullServiceALaCarte))
	if err := d.Commit(ctx, true); err == nil {
		t.Fatal("expected error when no component is configured")
	}

	mustMutate(t, d, SetComponentRule(models.ComponentCutlery, models.FlatCharge(150)))
	if err := d.Commit(ctx, true); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	fs := repo.Load(ctx).FullService
	if !fs.Components[models.ComponentCutlery].Active || fs.Components[models.ComponentStaffing].Active {
		t.Errorf("only configured components should be active: %+v", fs.Components)
	}
	if !reflect.DeepEqual(d.Draft(), fs) {
		t.Errorf("draft after commit should equal committed config")
	}

	if err := d.Mutate(SetComponentRule("valet", models.FlatCharge(1))); err == nil {
		t.Error("expected unknown component to be rejected")
	}
}

func TestFullServiceOpsUseCanonicalKeys(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	d := NewDraftSet(repo).FullService
	d.BeginDraft(ctx)

	mustMutate(t, d, SetFullServiceMode("A-LA-CARTE"))
	mustMutate(t, d, SetComponentRule(" Cutlery ", models.FlatCharge(150)))

	draft := d.Draft()
	if draft.Mode != models.FullServiceALaCarte {
		t.Errorf("expected mode %q, got %q", models.FullServiceALaCarte, draft.Mode)
	}
	if len(draft.Components) != len(models.ComponentKeys()) {
		t.Errorf("expected only canonical component keys, got %v", draft.Components)
	}
	if draft.Components[models.ComponentCutlery].Charge != models.FlatCharge(150) {
		t.Errorf("charge should land on %q: %v", models.ComponentCutlery, draft.Components)
	}

	if err := d.Commit(ctx, true); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	breakdown := pricing.Resolve(repo.Load(ctx), models.CartContext{
		SubtotalCents: 10000,
		GuestCount:    10,
		FullService:   models.FullServiceSelection{Enabled: true, Components: []models.ComponentKey{models.ComponentCutlery}},
	})
	if len(breakdown.Lines) != 1 || breakdown.Lines[0].AmountCents != 150 {
		t.Errorf("expected one cutlery line of 150, got %+v", breakdown.Lines)
	}
}

func TestAddTierAtLimit(t *testing.T) {
	sequentialIDs(t)
	ctx := context.Background()
	set := NewDraftSet(newTestRepo())

	guests := set.GuestCount
	guests.BeginDraft(ctx)
	mustMutate(t, guests, UpsertGuestCountRule(models.GuestCountRule{ID: "a", MinGuests: 1, MaxGuests: intPtr(math.MaxInt32 - 10), Charge: models.FlatCharge(100), Active: true}))
	mustMutate(t, guests, UpsertGuestCountRule(models.GuestCountRule{ID: "b", MinGuests: math.MaxInt32 - 9, Charge: models.FlatCharge(100), Active: true}))
	before := guests.Draft()
	var verr *pricing.ValidationError
	if err := guests.Mutate(AddGuestCountTier()); !errors.As(err, &verr) || verr.Field != pricing.FieldRanges {
		t.Errorf("expected ranges error, got %v", err)
	}
	if !reflect.DeepEqual(guests.Draft(), before) {
		t.Errorf("rejected add should leave the draft unchanged")
	}

	orders := set.OrderAmount
	orders.BeginDraft(ctx)
	mustMutate(t, orders, UpsertOrderAmountRule(models.OrderAmountRule{ID: "a", MinSubtotalCents: 0, MaxSubtotalCents: int64Ptr(math.MaxInt64), Charge: models.FlatCharge(100), Active: true}))
	if err := orders.Mutate(AddOrderAmountTier()); !errors.As(err, &verr) || verr.Field != pricing.FieldRanges {
		t.Errorf("expected ranges error, got %v", err)
	}
}
