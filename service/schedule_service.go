package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"os"
	"sort"
	"time"

	"catering-fees/models"
	"catering-fees/pricing"
	"catering-fees/repository"
	"catering-fees/utils"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

//go:embed templates/fee_schedule.html
var scheduleTemplates embed.FS

var scheduleTemplate = template.Must(template.ParseFS(scheduleTemplates, "templates/fee_schedule.html"))

// ScheduleRow is one line of the printed fee schedule
type ScheduleRow struct {
	Label string
	Rate  string
}

// ScheduleSection groups the rows of one fee kind
type ScheduleSection struct {
	Title  string
	Active bool
	Note   string
	Rows   []ScheduleRow
}

// ScheduleView is the data the fee schedule template renders
type ScheduleView struct {
	GeneratedAt string
	Sections    []ScheduleSection
}

// ScheduleService renders the committed fee configuration as a printable schedule
type ScheduleService struct {
	repo    repository.FeeStoreRepositoryInterface
	baseURL string // Base URL the PDF renderer loads the HTML from (e.g., "http://localhost:8080")
	now     func() time.Time
}

// detectChromePath detects the path to Chrome/Chromium executable
// Checks CHROME_PATH env var first, then common installation paths
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(repo repository.FeeStoreRepositoryInterface, baseURL string) *ScheduleService {
	return &ScheduleService{
		repo:    repo,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func guestRangeLabel(r models.GuestCountRule) string {
	if r.MaxGuests == nil {
		return fmt.Sprintf("%d+ guests", r.MinGuests)
	}
	if *r.MaxGuests == r.MinGuests {
		return fmt.Sprintf("%d guests", r.MinGuests)
	}
	return fmt.Sprintf("%d–%d guests", r.MinGuests, *r.MaxGuests)
}

func orderRangeLabel(r models.OrderAmountRule) string {
	if r.MaxSubtotalCents == nil {
		return utils.FormatUSD(r.MinSubtotalCents) + " and up"
	}
	return fmt.Sprintf("%s – %s", utils.FormatUSD(r.MinSubtotalCents), utils.FormatUSD(*r.MaxSubtotalCents))
}

// BuildScheduleView lays out store for the schedule template. Inactive rules are left out.
func BuildScheduleView(store *models.FeeStore, generatedAt time.Time) ScheduleView {
	view := ScheduleView{GeneratedAt: generatedAt.Format("January 2, 2006")}

	guests := ScheduleSection{Title: "Party size fee", Active: store.Settings.GuestCountActive}
	tiers := models.CloneGuestCountRules(store.GuestCountRules)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinGuests < tiers[j].MinGuests })
	for _, r := range tiers {
		if r.Active {
			guests.Rows = append(guests.Rows, ScheduleRow{Label: guestRangeLabel(r), Rate: pricing.DescribeRate(r.Charge)})
		}
	}
	if store.Settings.GuestCountMissingPolicy == models.MissingGuestCountFloor {
		guests.Note = "Orders without a guest count use the smallest party size."
	}

	orders := ScheduleSection{Title: "Service fee", Active: store.Settings.OrderAmountActive}
	amounts := models.CloneOrderAmountRules(store.OrderAmountRules)
	sort.SliceStable(amounts, func(i, j int) bool { return amounts[i].MinSubtotalCents < amounts[j].MinSubtotalCents })
	for _, r := range amounts {
		if r.Active {
			orders.Rows = append(orders.Rows, ScheduleRow{Label: orderRangeLabel(r), Rate: pricing.DescribeRate(r.Charge)})
		}
	}

	events := ScheduleSection{Title: "Event coordination"}
	eventRules := append([]models.EventTypeRule{}, store.EventTypeRules...)
	sort.SliceStable(eventRules, func(i, j int) bool { return eventRules[i].EventTypeName < eventRules[j].EventTypeName })
	for _, r := range eventRules {
		if r.Active {
			events.Rows = append(events.Rows, ScheduleRow{Label: r.EventTypeName, Rate: pricing.DescribeRate(r.Charge)})
		}
	}
	events.Active = len(events.Rows) > 0

	full := ScheduleSection{Title: "Full service", Active: store.FullService.IsActive()}
	if store.FullService.Mode == models.FullServiceALaCarte {
		full.Note = "Choose any of the services below."
		for _, key := range models.ComponentKeys() {
			if rule := store.FullService.Components[key]; rule.Active {
				full.Rows = append(full.Rows, ScheduleRow{Label: pricing.ComponentLabel(key), Rate: pricing.DescribeRate(rule.Charge)})
			}
		}
	} else if store.FullService.Bundle.Active {
		full.Rows = append(full.Rows, ScheduleRow{Label: "Setup, staffing, cutlery and cleanup", Rate: pricing.DescribeRate(store.FullService.Bundle.Charge)})
	}

	view.Sections = []ScheduleSection{guests, orders, events, full}
	return view
}

// RenderHTML renders the committed fee schedule as an HTML page
func (s *ScheduleService) RenderHTML(ctx context.Context) (string, error) {
	view := BuildScheduleView(s.repo.Load(ctx), s.now())

	var buf bytes.Buffer
	if err := scheduleTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF prints the HTML fee schedule to PDF with headless Chrome
func (s *ScheduleService) GeneratePDF(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	} else {
		log.Printf("⚠️  GeneratePDF: Chrome not found, letting chromedp auto-detect")
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := s.baseURL + "/admin/fees/schedule"

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// US Letter with half-inch margins
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0.5).
				WithMarginBottom(0.5).
				WithMarginLeft(0.5).
				WithMarginRight(0.5).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("✅ GeneratePDF: Fee schedule printed (%d bytes)", len(pdfBuf))
	return pdfBuf, nil
}
