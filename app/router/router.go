package router

import (
	"net/http"

	"catering-fees/app/controller"
)

type Controllers struct {
	Preview  *controller.PreviewController
	FeeAdmin *controller.FeeAdminController
	Schedule *controller.ScheduleController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Fee preview for the cart
	mux.HandleFunc("/cart/preview", controllers.Preview.Preview)

	// Committed fee document
	mux.HandleFunc("/admin/fees", controllers.FeeAdmin.Store)
	mux.HandleFunc("/admin/fees/settings", controllers.FeeAdmin.Settings)
	mux.HandleFunc("/admin/fees/event-types/available", controllers.FeeAdmin.AvailableEventTypes)

	// Single committed rules: /admin/fees/rules/{kind}[/{id}]
	mux.HandleFunc("/admin/fees/rules/", controllers.FeeAdmin.Rules)

	// Draft editors: /admin/fees/drafts/{kind}[/{action}[/{id}]]
	mux.HandleFunc("/admin/fees/drafts/", controllers.FeeAdmin.Drafts)

	// Printable fee schedule
	mux.HandleFunc("/admin/fees/schedule", controllers.Schedule.RenderHTML)
	mux.HandleFunc("/admin/fees/schedule.pdf", controllers.Schedule.GeneratePDF)
}
