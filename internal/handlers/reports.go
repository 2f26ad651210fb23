package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/middleware"
	"algebra-tutor/internal/models"
	"algebra-tutor/internal/reports"
)

type ReportsHandler struct {
	cfg *config.Config
}

func NewReportsHandler(cfg *config.Config) *ReportsHandler {
	return &ReportsHandler{cfg: cfg}
}

// Show renders the per-student progress page. The salon and estudiante
// query parameters select the view; invalid or foreign selections fall
// back to the teacher's first classroom and its first student.
func (h *ReportsHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	teacher, err := models.GetTeacherByUserID(userID)
	if errors.Is(err, sql.ErrNoRows) {
		renderTemplate(w, r, "progress.html", map[string]interface{}{
			"Title":  "Progreso - Tutor de Álgebra",
			"Report": &reports.ProgressReport{RecencySeries: make([]int, reports.RecencyCells)},
		})
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to resolve teacher for user %d: %v", userID, err)
		http.Error(w, "Failed to load progress", http.StatusInternalServerError)
		return
	}

	classroomID, _ := strconv.Atoi(r.URL.Query().Get("salon"))
	studentID, _ := strconv.Atoi(r.URL.Query().Get("estudiante"))

	report, err := reports.BuildProgressReport(teacher.ID, classroomID, studentID)
	if err != nil {
		log.Printf("ERROR: Failed to build progress report (teacher %d): %v", teacher.ID, err)
		http.Error(w, "Failed to load progress", http.StatusInternalServerError)
		return
	}

	// The table shows the newest rows; the full capped timeline still
	// feeds the recency series.
	visible := report.Timeline
	if len(visible) > timelineTableRows {
		visible = visible[:timelineTableRows]
	}

	renderTemplate(w, r, "progress.html", map[string]interface{}{
		"Title":        "Progreso - Tutor de Álgebra",
		"Report":       report,
		"TimelineRows": visible,
	})
}

// timelineTableRows caps the visible activity table.
const timelineTableRows = 15

// Evidence redirects to the attachment a student uploaded with an answer.
func (h *ReportsHandler) Evidence(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/progreso/evidencia/")
	answerID, err := strconv.Atoi(idStr)
	if err != nil || answerID <= 0 {
		http.NotFound(w, r)
		return
	}

	url, err := models.GetAnswerAttachment(answerID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load attachment for answer %d: %v", answerID, err)
		http.Error(w, "Failed to load attachment", http.StatusInternalServerError)
		return
	}
	if !url.Valid || url.String == "" {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, url.String, http.StatusFound)
}
