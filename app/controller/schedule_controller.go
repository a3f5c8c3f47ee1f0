package controller

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"catering-fees/service"
)

// ScheduleController handles HTTP requests for the printable fee schedule
type ScheduleController struct {
	scheduleService *service.ScheduleService
}

// NewScheduleController creates a new ScheduleController
func NewScheduleController(scheduleService *service.ScheduleService) *ScheduleController {
	return &ScheduleController{scheduleService: scheduleService}
}

// RenderHTML handles GET /admin/fees/schedule
// Also the page headless Chrome prints for the PDF
func (c *ScheduleController) RenderHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	htmlContent, err := c.scheduleService.RenderHTML(r.Context())
	if err != nil {
		log.Printf("❌ RenderHTML: %v", err)
		http.Error(w, fmt.Sprintf("Failed to render fee schedule: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		log.Printf("❌ RenderHTML: Error writing response: %v", err)
	}
}

// GeneratePDF handles GET /admin/fees/schedule.pdf
func (c *ScheduleController) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pdfData, err := c.scheduleService.GeneratePDF(r.Context())
	if err != nil {
		log.Printf("❌ GeneratePDF: %v", err)
		http.Error(w, fmt.Sprintf("Failed to generate PDF: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("fee_schedule_%s.pdf", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfData); err != nil {
		log.Printf("❌ GeneratePDF: Error writing response: %v", err)
	}
}
