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
)

type ClassroomsHandler struct {
	cfg *config.Config
}

func NewClassroomsHandler(cfg *config.Config) *ClassroomsHandler {
	return &ClassroomsHandler{cfg: cfg}
}

// teacherOr404 resolves the docente record for the session user. Handlers
// that manage classrooms or students need it on every request.
func teacherOr404(w http.ResponseWriter, r *http.Request) (*models.Teacher, bool) {
	teacher, err := models.GetTeacherByUserID(middleware.GetUserID(r))
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		log.Printf("ERROR: Failed to resolve teacher: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil, false
	}
	return teacher, true
}

func (h *ClassroomsHandler) List(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	classrooms, err := models.GetTeacherClassroomList(teacher.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list classrooms: %v", err)
		http.Error(w, "Failed to load classrooms", http.StatusInternalServerError)
		return
	}
	available, err := models.GetAvailableClassrooms(teacher.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list available classrooms: %v", err)
		http.Error(w, "Failed to load classrooms", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, r, "classrooms.html", map[string]interface{}{
		"Title":      "Salones - Tutor de Álgebra",
		"Classrooms": classrooms,
		"Available":  available,
		"Error":      r.URL.Query().Get("error"),
		"Success":    r.URL.Query().Get("ok"),
	})
}

func (h *ClassroomsHandler) Create(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	nombre := strings.TrimSpace(r.FormValue("nombre"))
	grado := strings.TrimSpace(r.FormValue("grado"))
	if nombre == "" || grado == "" {
		http.Redirect(w, r, "/salones?error=Nombre+y+grado+son+obligatorios", http.StatusFound)
		return
	}

	if _, err := models.CreateClassroom(teacher.ID, nombre, grado); err != nil {
		log.Printf("ERROR: Failed to create classroom: %v", err)
		http.Redirect(w, r, "/salones?error=No+se+pudo+crear+el+salón", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/salones?ok=Salón+creado", http.StatusFound)
}

func (h *ClassroomsHandler) Join(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	classroomID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || classroomID <= 0 {
		http.Redirect(w, r, "/salones?error=Salón+inválido", http.StatusFound)
		return
	}
	exists, err := models.ClassroomExists(classroomID)
	if err != nil || !exists {
		http.Redirect(w, r, "/salones?error=Salón+inválido", http.StatusFound)
		return
	}

	if err := models.JoinClassroom(teacher.ID, classroomID); err != nil {
		log.Printf("ERROR: Failed to join classroom %d: %v", classroomID, err)
		http.Redirect(w, r, "/salones?error=No+se+pudo+unir+al+salón", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/salones?ok=Te+uniste+al+salón", http.StatusFound)
}

func (h *ClassroomsHandler) Update(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	classroomID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || classroomID <= 0 {
		http.NotFound(w, r)
		return
	}
	owned, err := models.ClassroomBelongsToTeacher(teacher.ID, classroomID)
	if err != nil {
		log.Printf("ERROR: Failed to check classroom ownership: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.NotFound(w, r)
		return
	}

	nombre := strings.TrimSpace(r.FormValue("nombre"))
	grado := strings.TrimSpace(r.FormValue("grado"))
	if nombre == "" || grado == "" {
		http.Redirect(w, r, "/salones?error=Nombre+y+grado+son+obligatorios", http.StatusFound)
		return
	}

	if err := models.UpdateClassroom(classroomID, nombre, grado); err != nil {
		log.Printf("ERROR: Failed to update classroom %d: %v", classroomID, err)
		http.Redirect(w, r, "/salones?error=No+se+pudo+actualizar+el+salón", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/salones?ok=Salón+actualizado", http.StatusFound)
}

func (h *ClassroomsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	classroomID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || classroomID <= 0 {
		http.NotFound(w, r)
		return
	}

	// Only owned classrooms can be removed.
	owned, err := models.ClassroomBelongsToTeacher(teacher.ID, classroomID)
	if err != nil {
		log.Printf("ERROR: Failed to check classroom ownership: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.NotFound(w, r)
		return
	}

	if err := models.DeleteClassroom(classroomID); err != nil {
		log.Printf("ERROR: Failed to delete classroom %d: %v", classroomID, err)
		http.Redirect(w, r, "/salones?error=No+se+pudo+eliminar+el+salón", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/salones?ok=Salón+eliminado", http.StatusFound)
}
