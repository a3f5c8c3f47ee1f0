package controller

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"catering-fees/models"
	"catering-fees/pricing"
	"catering-fees/repository"
	"catering-fees/service"
)

const calcTypeReviewNotice = "Percent values may need review after switching calculation type."

// FeeAdminController handles HTTP requests of the fee rule editors
type FeeAdminController struct {
	drafts *service.DraftSet
	rules  *service.FeeRuleService
	// mu serializes draft access; drafts belong to a single editor session
	mu sync.Mutex
}

// NewFeeAdminController creates a new FeeAdminController
func NewFeeAdminController(drafts *service.DraftSet, rules *service.FeeRuleService) *FeeAdminController {
	return &FeeAdminController{drafts: drafts, rules: rules}
}

// draftState is the response body of every draft endpoint
type draftState[C any] struct {
	Kind    models.FeeKind `json:"kind"`
	Started bool           `json:"started"`
	Dirty   bool           `json:"dirty"`
	Draft   C              `json:"draft"`
	Saved   C              `json:"saved"`
	Notice  string         `json:"notice,omitempty"`
}

func stateOf[C any](d *service.DraftController[C]) draftState[C] {
	return draftState[C]{
		Kind:    d.Kind(),
		Started: d.Started(),
		Dirty:   d.Dirty(),
		Draft:   d.Draft(),
		Saved:   d.Saved(),
	}
}

type commitRequest struct {
	Activate *bool `json:"activate"`
}

type calcTypeRequest struct {
	CalcType string `json:"calcType"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// handleLifecycle serves the actions every fee kind has. It reports false for other actions.
func handleLifecycle[C any](w http.ResponseWriter, r *http.Request, d *service.DraftController[C], action string) bool {
	op := "Draft " + string(d.Kind())
	ctx := r.Context()

	switch action {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return true
		}
	case "begin":
		if !requirePost(w, r) {
			return true
		}
		d.BeginDraft(ctx)
	case "discard":
		if !requirePost(w, r) {
			return true
		}
		d.Discard()
	case "commit":
		if !requirePost(w, r) {
			return true
		}
		var req commitRequest
		if r.ContentLength != 0 && !decodeBody(w, r, op, &req) {
			return true
		}
		activate := req.Activate == nil || *req.Activate
		if err := d.Commit(ctx, activate); err != nil {
			writeError(w, op+" commit", err)
			return true
		}
	case "deactivate":
		if !requirePost(w, r) {
			return true
		}
		if err := d.Deactivate(ctx); err != nil {
			writeError(w, op+" deactivate", err)
			return true
		}
	default:
		return false
	}

	writeJSON(w, http.StatusOK, stateOf(d))
	return true
}

// applyOp runs op on the draft and responds with the new state
func applyOp[C any](w http.ResponseWriter, d *service.DraftController[C], op string, draftOp service.DraftOp[C], notice string) {
	if err := d.Mutate(draftOp); err != nil {
		writeError(w, op, err)
		return
	}
	state := stateOf(d)
	state.Notice = notice
	writeJSON(w, http.StatusOK, state)
}

// Drafts handles /admin/fees/drafts/{kind}[/{action}[/{id}]]
func (c *FeeAdminController) Drafts(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Drafts: Received %s request to %s", r.Method, r.URL.Path)

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/fees/drafts/"), "/"), "/")
	kind, ok := models.ParseFeeKind(parts[0])
	if !ok {
		http.Error(w, "Unknown fee kind", http.StatusNotFound)
		return
	}
	var action, arg string
	if len(parts) > 1 {
		action = parts[1]
	}
	if len(parts) > 2 {
		arg = parts[2]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case models.FeeKindEventType:
		c.eventTypeDraft(w, r, action, arg)
	case models.FeeKindGuestCount:
		c.guestCountDraft(w, r, action, arg)
	case models.FeeKindOrderAmount:
		c.orderAmountDraft(w, r, action, arg)
	case models.FeeKindFullService:
		c.fullServiceDraft(w, r, action, arg)
	}
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "Not found", http.StatusNotFound)
}

func (c *FeeAdminController) eventTypeDraft(w http.ResponseWriter, r *http.Request, action, arg string) {
	d := c.drafts.EventTypes
	if handleLifecycle(w, r, d, action) {
		return
	}
	if action != "rules" {
		notFound(w)
		return
	}

	switch {
	case r.Method == http.MethodDelete && arg != "":
		applyOp(w, d, "DeleteEventTypeRule", service.DeleteEventTypeRule(arg), "")
	case r.Method == http.MethodPost && arg == "":
		var in pricing.EventTypeInput
		if !decodeBody(w, r, "UpsertEventTypeRule", &in) {
			return
		}
		rule, verr := pricing.ParseEventTypeInput(in)
		if verr != nil {
			writeError(w, "UpsertEventTypeRule", verr)
			return
		}
		applyOp(w, d, "UpsertEventTypeRule", service.UpsertEventTypeRule(rule), "")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// calcTypeChange parses a calc-type switch and the notice to show with it
func calcTypeChange(w http.ResponseWriter, r *http.Request, op string, current models.CalcType, ruleCount int) (models.CalcType, string, bool) {
	var req calcTypeRequest
	if !decodeBody(w, r, op, &req) {
		return "", "", false
	}
	calcType, ok := models.ParseCalcType(req.CalcType)
	if !ok {
		writeError(w, op, &pricing.ValidationError{Field: pricing.FieldCalcType, Message: "Choose how the fee is calculated."})
		return "", "", false
	}
	notice := ""
	if ruleCount > 0 && service.CalcTypeChangeNeedsReview(current, calcType) {
		notice = calcTypeReviewNotice
	}
	return calcType, notice, true
}

func (c *FeeAdminController) guestCountDraft(w http.ResponseWriter, r *http.Request, action, arg string) {
	d := c.drafts.GuestCount
	if handleLifecycle(w, r, d, action) {
		return
	}
	if !d.Started() {
		writeError(w, "Draft guestCount", service.ErrNoDraft)
		return
	}
	draft := d.Draft()

	switch {
	case action == "rules" && r.Method == http.MethodDelete && arg != "":
		applyOp(w, d, "DeleteGuestCountRule", service.DeleteGuestCountRule(arg), "")
	case action == "rules" && r.Method == http.MethodPost:
		var in pricing.GuestCountInput
		if !decodeBody(w, r, "UpsertGuestCountRule", &in) {
			return
		}
		rule, verr := pricing.ParseGuestCountInput(in, draft.CalcType)
		if verr != nil {
			writeError(w, "UpsertGuestCountRule", verr)
			return
		}
		applyOp(w, d, "UpsertGuestCountRule", service.UpsertGuestCountRule(rule), "")
	case action == "tiers" && r.Method == http.MethodPost:
		applyOp(w, d, "AddGuestCountTier", service.AddGuestCountTier(), "")
	case action == "calc-type" && r.Method == http.MethodPost:
		calcType, notice, ok := calcTypeChange(w, r, "ConvertGuestCountCalcType", draft.CalcType, len(draft.Rules))
		if ok {
			applyOp(w, d, "ConvertGuestCountCalcType", service.ConvertGuestCountCalcType(calcType), notice)
		}
	default:
		notFound(w)
	}
}

func (c *FeeAdminController) orderAmountDraft(w http.ResponseWriter, r *http.Request, action, arg string) {
	d := c.drafts.OrderAmount
	if handleLifecycle(w, r, d, action) {
		return
	}
	if !d.Started() {
		writeError(w, "Draft orderAmount", service.ErrNoDraft)
		return
	}
	draft := d.Draft()

	switch {
	case action == "rules" && r.Method == http.MethodDelete && arg != "":
		applyOp(w, d, "DeleteOrderAmountRule", service.DeleteOrderAmountRule(arg), "")
	case action == "rules" && r.Method == http.MethodPost:
		var in pricing.OrderAmountInput
		if !decodeBody(w, r, "UpsertOrderAmountRule", &in) {
			return
		}
		rule, verr := pricing.ParseOrderAmountInput(in, draft.CalcType)
		if verr != nil {
			writeError(w, "UpsertOrderAmountRule", verr)
			return
		}
		applyOp(w, d, "UpsertOrderAmountRule", service.UpsertOrderAmountRule(rule), "")
	case action == "tiers" && r.Method == http.MethodPost:
		applyOp(w, d, "AddOrderAmountTier", service.AddOrderAmountTier(), "")
	case action == "calc-type" && r.Method == http.MethodPost:
		calcType, notice, ok := calcTypeChange(w, r, "ConvertOrderAmountCalcType", draft.CalcType, len(draft.Rules))
		if ok {
			applyOp(w, d, "ConvertOrderAmountCalcType", service.ConvertOrderAmountCalcType(calcType), notice)
		}
	default:
		notFound(w)
	}
}

func (c *FeeAdminController) fullServiceDraft(w http.ResponseWriter, r *http.Request, action, arg string) {
	d := c.drafts.FullService
	if handleLifecycle(w, r, d, action) {
		return
	}
	if !requirePost(w, r) {
		return
	}

	switch action {
	case "mode":
		var req modeRequest
		if !decodeBody(w, r, "SetFullServiceMode", &req) {
			return
		}
		applyOp(w, d, "SetFullServiceMode", service.SetFullServiceMode(models.FullServiceMode(req.Mode)), "")
	case "bundle", "components":
		op := "SetBundleRule"
		if action == "components" {
			op = "SetComponentRule"
		}
		var in pricing.ServiceRuleInput
		if !decodeBody(w, r, op, &in) {
			return
		}
		rule, verr := pricing.ParseServiceRuleInput(in)
		if verr != nil {
			writeError(w, op, verr)
			return
		}
		if action == "bundle" {
			applyOp(w, d, op, service.SetBundleRule(rule.Charge), "")
		} else {
			applyOp(w, d, op, service.SetComponentRule(models.ComponentKey(arg), rule.Charge), "")
		}
	default:
		notFound(w)
	}
}

// Rules handles /admin/fees/rules/{kind}[/{id}]
// POST upserts one committed rule, DELETE removes one. Tiered kinds read amounts
// in the calc type stored in settings.
func (c *FeeAdminController) Rules(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Rules: Received %s request to %s", r.Method, r.URL.Path)

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/fees/rules/"), "/"), "/")
	kind, ok := models.ParseFeeKind(parts[0])
	if !ok || kind == models.FeeKindFullService || len(parts) > 2 {
		http.Error(w, "Unknown fee kind", http.StatusNotFound)
		return
	}
	var id string
	if len(parts) == 2 {
		id = parts[1]
	}

	switch {
	case r.Method == http.MethodDelete && id != "":
		c.deleteRule(w, r, kind, id)
	case r.Method == http.MethodPost && id == "":
		c.upsertRule(w, r, kind)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (c *FeeAdminController) upsertRule(w http.ResponseWriter, r *http.Request, kind models.FeeKind) {
	ctx := r.Context()
	settings := c.rules.Snapshot(ctx).Settings

	switch kind {
	case models.FeeKindEventType:
		var in pricing.EventTypeInput
		if !decodeBody(w, r, "UpsertEventTypeRule", &in) {
			return
		}
		rule, verr := pricing.ParseEventTypeInput(in)
		if verr != nil {
			writeError(w, "UpsertEventTypeRule", verr)
			return
		}
		saved, err := c.rules.UpsertEventTypeRule(ctx, rule)
		if err != nil {
			writeError(w, "UpsertEventTypeRule", err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case models.FeeKindGuestCount:
		var in pricing.GuestCountInput
		if !decodeBody(w, r, "UpsertGuestCountRule", &in) {
			return
		}
		rule, verr := pricing.ParseGuestCountInput(in, settings.GuestCountCalcType)
		if verr != nil {
			writeError(w, "UpsertGuestCountRule", verr)
			return
		}
		saved, err := c.rules.UpsertGuestCountRule(ctx, rule)
		if err != nil {
			writeError(w, "UpsertGuestCountRule", err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case models.FeeKindOrderAmount:
		var in pricing.OrderAmountInput
		if !decodeBody(w, r, "UpsertOrderAmountRule", &in) {
			return
		}
		rule, verr := pricing.ParseOrderAmountInput(in, settings.OrderAmountCalcType)
		if verr != nil {
			writeError(w, "UpsertOrderAmountRule", verr)
			return
		}
		saved, err := c.rules.UpsertOrderAmountRule(ctx, rule)
		if err != nil {
			writeError(w, "UpsertOrderAmountRule", err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func (c *FeeAdminController) deleteRule(w http.ResponseWriter, r *http.Request, kind models.FeeKind, id string) {
	var err error
	switch kind {
	case models.FeeKindEventType:
		err = c.rules.DeleteEventTypeRule(r.Context(), id)
	case models.FeeKindGuestCount:
		err = c.rules.DeleteGuestCountRule(r.Context(), id)
	case models.FeeKindOrderAmount:
		err = c.rules.DeleteOrderAmountRule(r.Context(), id)
	}
	if err != nil {
		writeError(w, "DeleteRule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Store handles GET /admin/fees
// Returns the committed fee document as stored
func (c *FeeAdminController) Store(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := repository.MarshalDocument(c.rules.Snapshot(r.Context()))
	if err != nil {
		log.Printf("❌ Store: %v", err)
		http.Error(w, "Failed to encode fee configuration", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Settings handles PUT /admin/fees/settings
func (c *FeeAdminController) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var settings models.Settings
	if !decodeBody(w, r, "UpdateSettings", &settings) {
		return
	}
	if err := c.rules.UpdateSettings(r.Context(), settings); err != nil {
		writeError(w, "UpdateSettings", err)
		return
	}
	writeJSON(w, http.StatusOK, c.rules.Snapshot(r.Context()).Settings)
}

// AvailableEventTypes handles GET /admin/fees/event-types/available?editId=
// Returns the catalog event types not used by another rule
func (c *FeeAdminController) AvailableEventTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := c.rules.AvailableEventTypes(r.Context(), r.URL.Query().Get("editId"))
	writeJSON(w, http.StatusOK, map[string][]string{"eventTypes": names})
}
