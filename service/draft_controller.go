package service

import (
	"context"
	"errors"
	"log"

	"catering-fees/models"
	"catering-fees/pricing"
	"catering-fees/repository"
)

// ErrNoDraft is returned when a draft is changed or committed before BeginDraft
var ErrNoDraft = errors.New("no draft in progress, call BeginDraft first")

// DraftStrategy supplies everything a DraftController needs to know about one fee kind.
// C is the editable collection: a rule slice, a tier schedule or the full-service config.
type DraftStrategy[C any] interface {
	Kind() models.FeeKind
	// Seed returns a deep copy of the committed collection, or an empty one when the kind is inactive
	Seed(store *models.FeeStore) C
	Clone(c C) C
	// Commit validates c and writes it into store along with the kind's active setting
	Commit(store *models.FeeStore, c C, activate bool) *pricing.ValidationError
	// Clear empties the kind in store and marks it inactive
	Clear(store *models.FeeStore)
	// Fingerprint is equal for collections that differ only in rule order
	Fingerprint(c C) string
}

// DraftOp changes a draft. It receives a copy it may modify and returns the new draft.
type DraftOp[C any] func(draft C) (C, *pricing.ValidationError)

// DraftController holds an editor's working copy of one fee kind. Changes stay
// in the draft until Commit; the fee engine only ever sees committed state.
// A DraftController is not safe for concurrent use.
type DraftController[C any] struct {
	repo     repository.FeeStoreRepositoryInterface
	strategy DraftStrategy[C]

	started bool
	saved   C
	draft   C
	dirty   bool
}

// NewDraftController creates a DraftController for the kind strategy describes
func NewDraftController[C any](repo repository.FeeStoreRepositoryInterface, strategy DraftStrategy[C]) *DraftController[C] {
	return &DraftController[C]{repo: repo, strategy: strategy}
}

// Kind returns the fee kind this controller edits
func (d *DraftController[C]) Kind() models.FeeKind {
	return d.strategy.Kind()
}

// BeginDraft starts a new draft from committed state and returns a copy of it
func (d *DraftController[C]) BeginDraft(ctx context.Context) C {
	d.reset(d.repo.Load(ctx))
	return d.strategy.Clone(d.draft)
}

func (d *DraftController[C]) reset(store *models.FeeStore) {
	d.saved = d.strategy.Seed(store)
	d.draft = d.strategy.Clone(d.saved)
	d.dirty = false
	d.started = true
}

// Draft returns a copy of the current draft
func (d *DraftController[C]) Draft() C {
	return d.strategy.Clone(d.draft)
}

// Saved returns a copy of the committed snapshot the draft started from
func (d *DraftController[C]) Saved() C {
	return d.strategy.Clone(d.saved)
}

// Dirty reports whether the draft differs from the committed snapshot
func (d *DraftController[C]) Dirty() bool {
	return d.dirty
}

// Started reports whether BeginDraft has been called
func (d *DraftController[C]) Started() bool {
	return d.started
}

// Mutate applies op to the draft. A rejected op leaves the draft unchanged.
func (d *DraftController[C]) Mutate(op DraftOp[C]) error {
	if !d.started {
		return ErrNoDraft
	}
	next, verr := op(d.strategy.Clone(d.draft))
	if verr != nil {
		return verr
	}
	d.draft = next
	d.dirty = d.strategy.Fingerprint(d.draft) != d.strategy.Fingerprint(d.saved)
	return nil
}

// Commit validates the whole draft and writes it to the store in one save.
// activate sets whether the kind charges fees afterwards. On failure the
// draft and the store are left as they were.
func (d *DraftController[C]) Commit(ctx context.Context, activate bool) error {
	if !d.started {
		return ErrNoDraft
	}
	candidate := d.strategy.Clone(d.draft)

	store, err := d.repo.WithStore(ctx, func(store *models.FeeStore) error {
		if verr := d.strategy.Commit(store, candidate, activate); verr != nil {
			return verr
		}
		return nil
	})
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			log.Printf("⚠️  Commit %s rejected: %s", d.strategy.Kind(), verr.Message)
		} else {
			log.Printf("❌ Commit %s failed: %v", d.strategy.Kind(), err)
		}
		return err
	}

	d.reset(store)
	log.Printf("✅ Committed %s fees (active=%v)", d.strategy.Kind(), activate)
	return nil
}

// Discard throws away uncommitted changes
func (d *DraftController[C]) Discard() {
	d.draft = d.strategy.Clone(d.saved)
	d.dirty = false
}

// Deactivate removes every committed rule of the kind and marks it inactive.
// It does not validate anything.
func (d *DraftController[C]) Deactivate(ctx context.Context) error {
	store, err := d.repo.WithStore(ctx, func(store *models.FeeStore) error {
		d.strategy.Clear(store)
		return nil
	})
	if err != nil {
		log.Printf("❌ Deactivate %s failed: %v", d.strategy.Kind(), err)
		return err
	}

	d.reset(store)
	log.Printf("✅ Deactivated %s fees", d.strategy.Kind())
	return nil
}
