package handlers

import (
	"log"
	"net/http"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/middleware"
	"algebra-tutor/internal/reports"
)

type DashboardHandler struct {
	cfg *config.Config
}

func NewDashboardHandler(cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{cfg: cfg}
}

// Show renders the teacher overview. The donut segments are cumulative
// percentages so the template can feed them straight into a
// conic-gradient.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	snapshot, err := reports.BuildDashboard(userID)
	if err != nil {
		log.Printf("ERROR: Failed to build dashboard for user %d: %v", userID, err)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, r, "dashboard.html", map[string]interface{}{
		"Title":              "Dashboard - Tutor de Álgebra",
		"Snapshot":           snapshot,
		"DonutAdvancedEnd":   snapshot.PctAdvanced,
		"DonutInProgressEnd": snapshot.PctAdvanced + snapshot.PctInProgress,
	})
}
