package controller

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"catering-fees/models"
	"catering-fees/pricing"
)

// PreviewController handles fee previews for a cart
type PreviewController struct {
	engine *pricing.Engine
}

// NewPreviewController creates a new PreviewController
func NewPreviewController(engine *pricing.Engine) *PreviewController {
	return &PreviewController{engine: engine}
}

// selectComponents parses a comma-separated component list. Setup and
// cleanup can't be booked without staff, so either one adds staffing.
func selectComponents(raw string) []models.ComponentKey {
	selected := make(map[models.ComponentKey]bool)
	for _, part := range strings.Split(raw, ",") {
		if key, ok := models.ParseComponentKey(part); ok {
			selected[key] = true
		}
	}
	if selected[models.ComponentSetup] || selected[models.ComponentCleanup] {
		selected[models.ComponentStaffing] = true
	}

	keys := make([]models.ComponentKey, 0, len(selected))
	for _, key := range models.ComponentKeys() {
		if selected[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// parseCart reads a CartContext from query parameters
func parseCart(r *http.Request) (models.CartContext, string) {
	q := r.URL.Query()
	cart := models.CartContext{
		EventTypeID: strings.TrimSpace(q.Get("eventTypeId")),
		FullService: models.FullServiceSelection{Enabled: true},
	}

	if raw := strings.TrimSpace(q.Get("subtotalCents")); raw != "" {
		subtotal, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || subtotal < 0 {
			return cart, "subtotalCents must be a whole number of cents, 0 or greater"
		}
		cart.SubtotalCents = subtotal
	}

	if raw := strings.TrimSpace(q.Get("guestCount")); raw != "" {
		guests, err := strconv.Atoi(raw)
		if err != nil || guests < 0 {
			return cart, "guestCount must be a whole number, 0 or greater"
		}
		cart.GuestCount = guests
	} else {
		cart.GuestCountMissing = true
	}

	if raw := strings.TrimSpace(q.Get("fullServiceEnabled")); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return cart, "fullServiceEnabled must be true or false"
		}
		cart.FullService.Enabled = enabled
	}

	if raw := strings.TrimSpace(q.Get("fullServiceMode")); raw != "" {
		mode, ok := models.ParseFullServiceMode(raw)
		if !ok {
			return cart, "fullServiceMode must be bundle or a_la_carte"
		}
		cart.FullService.Mode = mode
	}
	cart.FullService.Components = selectComponents(q.Get("aLaCarteComponents"))

	return cart, ""
}

// Preview handles GET /cart/preview
// Returns the fee breakdown the cart would be charged with the committed rules
func (c *PreviewController) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cart, problem := parseCart(r)
	if problem != "" {
		log.Printf("❌ Preview: %s", problem)
		http.Error(w, problem, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, c.engine.ComputeFeeLines(r.Context(), cart))
}
