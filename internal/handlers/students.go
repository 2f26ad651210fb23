package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/metrics"
	"algebra-tutor/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type StudentsHandler struct {
	cfg *config.Config
}

func NewStudentsHandler(cfg *config.Config) *StudentsHandler {
	return &StudentsHandler{cfg: cfg}
}

func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	roster, err := models.GetTeacherRoster(teacher.ID)
	if err != nil {
		log.Printf("ERROR: Failed to load roster: %v", err)
		http.Error(w, "Failed to load students", http.StatusInternalServerError)
		return
	}

	// Student accounts not yet on this roster can be attached directly.
	allStudents, err := models.GetStudentUsers()
	if err != nil {
		log.Printf("ERROR: Failed to load student users: %v", err)
		http.Error(w, "Failed to load students", http.StatusInternalServerError)
		return
	}
	enrolled := make(map[int]bool, len(roster))
	for _, s := range roster {
		enrolled[s.UserID] = true
	}
	var attachable []*models.StudentListItem
	for _, s := range allStudents {
		if !enrolled[s.UserID] {
			attachable = append(attachable, s)
		}
	}

	renderTemplate(w, r, "students.html", map[string]interface{}{
		"Title":      "Estudiantes - Tutor de Álgebra",
		"Students":   roster,
		"Attachable": attachable,
		"Error":      r.URL.Query().Get("error"),
		"Success":    r.URL.Query().Get("ok"),
	})
}

// Attach enrolls an existing student account into the teacher's first
// classroom, creating the estudiante record if the account never had one.
func (h *StudentsHandler) Attach(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(r.FormValue("usuario"))
	if err != nil || userID <= 0 {
		http.NotFound(w, r)
		return
	}
	grado := strings.TrimSpace(r.FormValue("grado"))

	classroomID, err := models.FirstTeacherClassroomID(teacher.ID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Redirect(w, r, "/estudiantes?error=Primero+crea+un+salón", http.StatusFound)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to find classroom for teacher %d: %v", teacher.ID, err)
		http.Error(w, "Failed to attach student", http.StatusInternalServerError)
		return
	}

	if _, err := models.AttachStudentUser(userID, grado, classroomID); err != nil {
		log.Printf("ERROR: Failed to attach user %d: %v", userID, err)
		http.Redirect(w, r, "/estudiantes?error=No+se+pudo+vincular+al+estudiante", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/estudiantes?ok=Estudiante+vinculado", http.StatusFound)
}

func (h *StudentsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	classrooms, err := models.GetTeacherClassrooms(teacher.ID)
	if err != nil {
		log.Printf("ERROR: Failed to load classrooms: %v", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, r, "student_form.html", map[string]interface{}{
		"Title":      "Registrar estudiante - Tutor de Álgebra",
		"Action":     "/estudiantes/nuevo",
		"Classrooms": classrooms,
	})
}

// competencyLevels reads the four competency inputs. A blank field means
// "not provided" and comes back nil so updates keep the stored value.
func competencyLevels(r *http.Request) (map[string]*int, error) {
	levels := make(map[string]*int, 4)
	for _, field := range []string{"cantidad", "regularidad", "forma", "datos"} {
		raw := strings.TrimSpace(r.FormValue(field))
		if raw == "" {
			levels[field] = nil
			continue
		}
		score, err := metrics.ParseScore(raw)
		if err != nil {
			return nil, err
		}
		levels[field] = &score
	}
	return levels, nil
}

// generalProgress averages the provided levels; nil when none were given.
func generalProgress(levels map[string]*int) *int {
	sum, n := 0, 0
	for _, v := range levels {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := metrics.PercentageOf(sum, n*100)
	return &avg
}

func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	nombre := strings.TrimSpace(r.FormValue("nombre"))
	apellidos := strings.TrimSpace(r.FormValue("apellidos"))
	email := strings.TrimSpace(r.FormValue("email"))
	grado := strings.TrimSpace(r.FormValue("grado"))
	password := r.FormValue("password")
	classroomID, _ := strconv.Atoi(r.FormValue("salon"))

	if nombre == "" || apellidos == "" || email == "" || grado == "" || len(password) < 8 {
		http.Redirect(w, r, "/estudiantes?error=Datos+incompletos", http.StatusFound)
		return
	}

	owned, err := models.ClassroomBelongsToTeacher(teacher.ID, classroomID)
	if err != nil || !owned {
		http.Redirect(w, r, "/estudiantes?error=Salón+inválido", http.StatusFound)
		return
	}

	levels, err := competencyLevels(r)
	if err != nil {
		http.Redirect(w, r, "/estudiantes?error=Niveles+de+competencia+inválidos", http.StatusFound)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	studentID, err := models.CreateStudent(nombre, apellidos, email, string(hash), grado, classroomID)
	if err != nil {
		if emailErr := models.IsEmailConstraintError(err); emailErr != nil {
			http.Redirect(w, r, "/estudiantes?error=Ya+existe+una+cuenta+con+ese+correo", http.StatusFound)
			return
		}
		log.Printf("ERROR: Failed to create student: %v", err)
		http.Redirect(w, r, "/estudiantes?error=No+se+pudo+registrar+al+estudiante", http.StatusFound)
		return
	}

	// Apply initial competency levels when any were given.
	if progress := generalProgress(levels); progress != nil {
		student, err := models.GetStudentByID(studentID)
		if err != nil {
			log.Printf("ERROR: Failed to reload student %d: %v", studentID, err)
			http.Redirect(w, r, "/estudiantes?ok=Estudiante+registrado", http.StatusFound)
			return
		}
		upd := &models.StudentUpdate{
			StudentID:       studentID,
			UserID:          student.UserID,
			Nombre:          nombre,
			Apellidos:       apellidos,
			Correo:          email,
			Grado:           grado,
			Estado:          "activo",
			CompCantidad:    levels["cantidad"],
			CompRegularidad: levels["regularidad"],
			CompForma:       levels["forma"],
			CompDatos:       levels["datos"],
			ProgresoGeneral: progress,
		}
		if err := models.UpdateStudent(upd); err != nil {
			log.Printf("ERROR: Failed to set initial levels for student %d: %v", studentID, err)
		}
	}

	http.Redirect(w, r, "/estudiantes?ok=Estudiante+registrado", http.StatusFound)
}

func (h *StudentsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	studentID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || studentID <= 0 {
		http.NotFound(w, r)
		return
	}

	student, err := models.GetStudentByID(studentID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load student %d: %v", studentID, err)
		http.Error(w, "Failed to load student", http.StatusInternalServerError)
		return
	}

	// The student must be in one of this teacher's classrooms.
	owned, err := models.ClassroomBelongsToTeacher(teacher.ID, student.ClassroomID)
	if err != nil || !owned {
		http.NotFound(w, r)
		return
	}

	classrooms, err := models.GetTeacherClassrooms(teacher.ID)
	if err != nil {
		log.Printf("ERROR: Failed to load classrooms: %v", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, r, "student_form.html", map[string]interface{}{
		"Title":             "Editar estudiante - Tutor de Álgebra",
		"Action":            "/estudiantes/editar",
		"Student":           student,
		"SelectedClassroom": student.ClassroomID,
		"Classrooms":        classrooms,
	})
}

func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	studentID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || studentID <= 0 {
		http.NotFound(w, r)
		return
	}

	student, err := models.GetStudentByID(studentID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load student %d: %v", studentID, err)
		http.Error(w, "Failed to update student", http.StatusInternalServerError)
		return
	}
	owned, err := models.ClassroomBelongsToTeacher(teacher.ID, student.ClassroomID)
	if err != nil || !owned {
		http.NotFound(w, r)
		return
	}

	nombre := strings.TrimSpace(r.FormValue("nombre"))
	apellidos := strings.TrimSpace(r.FormValue("apellidos"))
	email := strings.TrimSpace(r.FormValue("email"))
	grado := strings.TrimSpace(r.FormValue("grado"))
	classroomID, _ := strconv.Atoi(r.FormValue("salon"))

	if nombre == "" || apellidos == "" || email == "" || grado == "" {
		http.Redirect(w, r, "/estudiantes?error=Datos+incompletos", http.StatusFound)
		return
	}

	taken, err := models.EmailTakenByOther(email, student.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to check email: %v", err)
		http.Error(w, "Failed to update student", http.StatusInternalServerError)
		return
	}
	if taken {
		http.Redirect(w, r, "/estudiantes?error=Ya+existe+una+cuenta+con+ese+correo", http.StatusFound)
		return
	}

	levels, err := competencyLevels(r)
	if err != nil {
		http.Redirect(w, r, "/estudiantes?error=Niveles+de+competencia+inválidos", http.StatusFound)
		return
	}

	upd := &models.StudentUpdate{
		StudentID:       studentID,
		UserID:          student.UserID,
		Nombre:          nombre,
		Apellidos:       apellidos,
		Correo:          email,
		Grado:           grado,
		Estado:          student.Estado,
		CompCantidad:    levels["cantidad"],
		CompRegularidad: levels["regularidad"],
		CompForma:       levels["forma"],
		CompDatos:       levels["datos"],
		ProgresoGeneral: generalProgress(levels),
	}
	if err := models.UpdateStudent(upd); err != nil {
		log.Printf("ERROR: Failed to update student %d: %v", studentID, err)
		http.Redirect(w, r, "/estudiantes?error=No+se+pudo+actualizar", http.StatusFound)
		return
	}

	if classroomID > 0 && classroomID != student.ClassroomID {
		owned, err := models.ClassroomBelongsToTeacher(teacher.ID, classroomID)
		if err == nil && owned {
			if err := models.MoveStudentClassroom(studentID, classroomID); err != nil {
				log.Printf("ERROR: Failed to move student %d to classroom %d: %v", studentID, classroomID, err)
			}
		}
	}

	http.Redirect(w, r, "/estudiantes?ok=Estudiante+actualizado", http.StatusFound)
}

func (h *StudentsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	teacher, ok := teacherOr404(w, r)
	if !ok {
		return
	}

	studentID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || studentID <= 0 {
		http.NotFound(w, r)
		return
	}

	student, err := models.GetStudentByID(studentID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load student %d: %v", studentID, err)
		http.Error(w, "Failed to deactivate student", http.StatusInternalServerError)
		return
	}
	owned, err := models.ClassroomBelongsToTeacher(teacher.ID, student.ClassroomID)
	if err != nil || !owned {
		http.NotFound(w, r)
		return
	}

	if err := models.DeactivateStudent(studentID); err != nil {
		log.Printf("ERROR: Failed to deactivate student %d: %v", studentID, err)
		http.Redirect(w, r, "/estudiantes?error=No+se+pudo+desactivar", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/estudiantes?ok=Estudiante+desactivado", http.StatusFound)
}
