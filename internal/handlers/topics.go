package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/models"
)

type TopicsHandler struct {
	cfg *config.Config
}

func NewTopicsHandler(cfg *config.Config) *TopicsHandler {
	return &TopicsHandler{cfg: cfg}
}

func (h *TopicsHandler) Show(w http.ResponseWriter, r *http.Request) {
	competencies, err := models.GetCompetencies()
	if err != nil {
		log.Printf("ERROR: Failed to load competencies: %v", err)
		http.Error(w, "Failed to load topics", http.StatusInternalServerError)
		return
	}

	selected, _ := strconv.Atoi(r.URL.Query().Get("competencia"))
	if selected == 0 && len(competencies) > 0 {
		selected = competencies[0].ID
	}
	nivel, _ := strconv.Atoi(r.URL.Query().Get("nivel"))

	var materials []*models.Material
	if selected > 0 {
		materials, err = models.GetMaterials(selected, nivel)
		if err != nil {
			log.Printf("ERROR: Failed to load materials for competency %d: %v", selected, err)
			http.Error(w, "Failed to load materials", http.StatusInternalServerError)
			return
		}
	}

	renderTemplate(w, r, "topics.html", map[string]interface{}{
		"Title":              "Temas - Tutor de Álgebra",
		"Competencies":       competencies,
		"SelectedCompetency": selected,
		"Nivel":              nivel,
		"Materials":          materials,
		"Error":              r.URL.Query().Get("error"),
		"Success":            r.URL.Query().Get("ok"),
	})
}

func (h *TopicsHandler) CreateCompetency(w http.ResponseWriter, r *http.Request) {
	area := strings.TrimSpace(r.FormValue("area"))
	descripcion := strings.TrimSpace(r.FormValue("descripcion"))
	if area == "" {
		http.Redirect(w, r, "/temas?error=El+área+es+obligatoria", http.StatusFound)
		return
	}

	id, err := models.CreateCompetency(area, descripcion, 1)
	if err != nil {
		log.Printf("ERROR: Failed to create competency: %v", err)
		http.Redirect(w, r, "/temas?error=No+se+pudo+crear+la+competencia", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/temas?competencia="+strconv.Itoa(id)+"&ok=Competencia+creada", http.StatusFound)
}

func (h *TopicsHandler) DeleteCompetency(w http.ResponseWriter, r *http.Request) {
	competencyID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || competencyID <= 0 {
		http.NotFound(w, r)
		return
	}

	// The seeded MINEDU competencies stay.
	if models.BaseCompetencyIDs[competencyID] {
		http.Redirect(w, r, "/temas?error=Las+competencias+base+no+se+pueden+eliminar", http.StatusFound)
		return
	}
	hasMaterials, err := models.CompetencyHasMaterials(competencyID)
	if err != nil {
		log.Printf("ERROR: Failed to check competency %d: %v", competencyID, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if hasMaterials {
		http.Redirect(w, r, "/temas?error=Elimina+primero+el+material+de+la+competencia", http.StatusFound)
		return
	}

	if err := models.DeleteCompetency(competencyID); err != nil {
		log.Printf("ERROR: Failed to delete competency %d: %v", competencyID, err)
		http.Redirect(w, r, "/temas?error=No+se+pudo+eliminar", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/temas?ok=Competencia+eliminada", http.StatusFound)
}

func (h *TopicsHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	competencyID, _ := strconv.Atoi(r.FormValue("competencia"))
	titulo := strings.TrimSpace(r.FormValue("titulo"))
	tipo := r.FormValue("tipo")
	url := strings.TrimSpace(r.FormValue("url"))
	tiempo, _ := strconv.Atoi(r.FormValue("tiempo"))

	back := "/temas?competencia=" + strconv.Itoa(competencyID)
	if competencyID <= 0 || titulo == "" || url == "" {
		http.Redirect(w, r, back+"&error=Título+y+URL+son+obligatorios", http.StatusFound)
		return
	}
	if tiempo <= 0 {
		tiempo = 10
	}

	m := &models.Material{
		Titulo:         titulo,
		Tipo:           tipo,
		URL:            url,
		TiempoEstimado: tiempo,
		CompetencyID:   competencyID,
	}
	if nivel, err := strconv.Atoi(r.FormValue("nivel")); err == nil && nivel >= 1 && nivel <= 3 {
		m.Nivel.Int32 = int32(nivel)
		m.Nivel.Valid = true
	}

	if err := models.CreateMaterial(m); err != nil {
		log.Printf("ERROR: Failed to create material: %v", err)
		http.Redirect(w, r, back+"&error=No+se+pudo+agregar+el+material", http.StatusFound)
		return
	}
	http.Redirect(w, r, back+"&ok=Material+agregado", http.StatusFound)
}

func (h *TopicsHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || materialID <= 0 {
		http.NotFound(w, r)
		return
	}

	competencyID, err := models.GetMaterialCompetencyID(materialID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := models.DeleteMaterial(materialID); err != nil {
		log.Printf("ERROR: Failed to delete material %d: %v", materialID, err)
		http.Redirect(w, r, "/temas?error=No+se+pudo+eliminar+el+material", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/temas?competencia="+strconv.Itoa(competencyID)+"&ok=Material+eliminado", http.StatusFound)
}
