package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/models"
)

type ExercisesHandler struct {
	cfg *config.Config
}

func NewExercisesHandler(cfg *config.Config) *ExercisesHandler {
	return &ExercisesHandler{cfg: cfg}
}

var optionLetters = []string{"A", "B", "C", "D"}

func (h *ExercisesHandler) List(w http.ResponseWriter, r *http.Request) {
	exercises, err := models.GetExercises()
	if err != nil {
		log.Printf("ERROR: Failed to load exercises: %v", err)
		http.Error(w, "Failed to load exercises", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, r, "exercises.html", map[string]interface{}{
		"Title":     "Ejercicios - Tutor de Álgebra",
		"Exercises": exercises,
		"Error":     r.URL.Query().Get("error"),
		"Success":   r.URL.Query().Get("ok"),
	})
}

func (h *ExercisesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil)
}

func (h *ExercisesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || exerciseID <= 0 {
		http.NotFound(w, r)
		return
	}

	exercise, err := models.GetExerciseByID(exerciseID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load exercise %d: %v", exerciseID, err)
		http.Error(w, "Failed to load exercise", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, r, exercise)
}

func (h *ExercisesHandler) renderForm(w http.ResponseWriter, r *http.Request, exercise *models.Exercise) {
	competencies, err := models.GetCompetencies()
	if err != nil {
		log.Printf("ERROR: Failed to load competencies: %v", err)
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return
	}

	options := map[string]string{"A": "", "B": "", "C": "", "D": ""}
	correct := ""
	pista := ""
	if exercise != nil {
		for _, opt := range exercise.Options {
			options[opt.Letra] = opt.Descripcion
			if opt.EsCorrecta {
				correct = opt.Letra
			}
		}
		if exercise.Pista.Valid {
			pista = exercise.Pista.String
		}
	}

	title := "Nuevo ejercicio - Tutor de Álgebra"
	if exercise != nil {
		title = "Editar ejercicio - Tutor de Álgebra"
	}

	renderTemplate(w, r, "exercise_form.html", map[string]interface{}{
		"Title":         title,
		"Exercise":      exercise,
		"Competencies":  competencies,
		"Options":       options,
		"CorrectLetter": correct,
		"Pista":         pista,
	})
}

type exerciseOptionJSON struct {
	Letra       string `json:"letra"`
	Descripcion string `json:"descripcion"`
	EsCorrecta  bool   `json:"es_correcta"`
}

type exerciseDetailJSON struct {
	ID           int                  `json:"id"`
	Descripcion  string               `json:"descripcion"`
	Pista        string               `json:"pista"`
	ImagenURL    string               `json:"imagen_url"`
	CompetencyID int                  `json:"competencia_id"`
	Options      []exerciseOptionJSON `json:"opciones"`
}

// Detail serves one exercise with its options as JSON so the edit form
// can be populated without a full page load.
func (h *ExercisesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || exerciseID <= 0 {
		http.NotFound(w, r)
		return
	}

	exercise, err := models.GetExerciseByID(exerciseID)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load exercise %d: %v", exerciseID, err)
		http.Error(w, "Failed to load exercise", http.StatusInternalServerError)
		return
	}

	detail := exerciseDetailJSON{
		ID:           exercise.ID,
		Descripcion:  exercise.Descripcion,
		Pista:        exercise.Pista.String,
		ImagenURL:    exercise.ImagenURL.String,
		CompetencyID: exercise.CompetencyID,
		Options:      make([]exerciseOptionJSON, 0, len(exercise.Options)),
	}
	for _, opt := range exercise.Options {
		detail.Options = append(detail.Options, exerciseOptionJSON{
			Letra:       opt.Letra,
			Descripcion: opt.Descripcion,
			EsCorrecta:  opt.EsCorrecta,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(detail); err != nil {
		log.Printf("ERROR: Failed to encode exercise %d: %v", exerciseID, err)
	}
}

// Save handles both creation and edit. The options are always rewritten
// as a block of four; the imagen field is optional and only replaces the
// stored image when a new file arrives.
func (h *ExercisesHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Redirect(w, r, "/ejercicios?error=Formulario+inválido", http.StatusFound)
		return
	}

	exerciseID, _ := strconv.Atoi(r.FormValue("id"))
	descripcion := strings.TrimSpace(r.FormValue("descripcion"))
	competencyID, _ := strconv.Atoi(r.FormValue("competencia"))
	correct := r.FormValue("correcta")
	pista := strings.TrimSpace(r.FormValue("pista"))

	options := make(map[string]string, len(optionLetters))
	for _, letter := range optionLetters {
		options[letter] = strings.TrimSpace(r.FormValue("opcion_" + letter))
	}

	valid := descripcion != "" && competencyID > 0 && options[correct] != ""
	for _, letter := range optionLetters {
		if options[letter] == "" {
			valid = false
		}
	}
	if !valid {
		http.Redirect(w, r, "/ejercicios?error=Completa+el+enunciado+y+las+cuatro+opciones", http.StatusFound)
		return
	}

	savedID, err := models.SaveExercise(exerciseID, descripcion, correct, pista, competencyID, options)
	if err != nil {
		log.Printf("ERROR: Failed to save exercise: %v", err)
		http.Redirect(w, r, "/ejercicios?error=No+se+pudo+guardar+el+ejercicio", http.StatusFound)
		return
	}

	if file, header, err := r.FormFile("imagen"); err == nil {
		defer file.Close()
		url, err := saveUploadedImage(file, header, "ejercicios")
		if err != nil {
			log.Printf("ERROR: Failed to store exercise image: %v", err)
			http.Redirect(w, r, "/ejercicios?error=El+ejercicio+se+guardó+pero+la+imagen+no", http.StatusFound)
			return
		}
		if err := models.SetExerciseImage(savedID, url); err != nil {
			log.Printf("ERROR: Failed to attach image to exercise %d: %v", savedID, err)
		}
	}

	http.Redirect(w, r, "/ejercicios?ok=Ejercicio+guardado", http.StatusFound)
}

func (h *ExercisesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || exerciseID <= 0 {
		http.NotFound(w, r)
		return
	}

	if err := models.DeleteExercise(exerciseID); err != nil {
		log.Printf("ERROR: Failed to delete exercise %d: %v", exerciseID, err)
		http.Redirect(w, r, "/ejercicios?error=No+se+pudo+eliminar", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/ejercicios?ok=Ejercicio+eliminado", http.StatusFound)
}
