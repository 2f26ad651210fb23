package handlers

import (
	"log"
	"net/http"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/middleware"
	"algebra-tutor/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type ProfileHandler struct {
	cfg *config.Config
}

func NewProfileHandler(cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{cfg: cfg}
}

func (h *ProfileHandler) show(w http.ResponseWriter, r *http.Request, errMsg, okMsg string) {
	userID := middleware.GetUserID(r)

	user, err := models.GetUserByID(userID)
	if err != nil {
		log.Printf("ERROR: Failed to load user %d: %v", userID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	especialidad := ""
	if teacher, err := models.GetTeacherByUserID(userID); err == nil {
		especialidad = teacher.Especialidad
	}

	renderTemplate(w, r, "profile.html", map[string]interface{}{
		"Title":        "Mi perfil - Tutor de Álgebra",
		"User":         user,
		"Especialidad": especialidad,
		"Error":        errMsg,
		"Success":      okMsg,
	})
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, r.URL.Query().Get("error"), r.URL.Query().Get("ok"))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	nombre := strings.TrimSpace(r.FormValue("nombre"))
	apellidos := strings.TrimSpace(r.FormValue("apellidos"))
	especialidad := strings.TrimSpace(r.FormValue("especialidad"))

	if nombre == "" || apellidos == "" {
		h.show(w, r, "Nombres y apellidos son obligatorios", "")
		return
	}

	if err := models.UpdateUserName(userID, nombre, apellidos); err != nil {
		log.Printf("ERROR: Failed to update user %d: %v", userID, err)
		h.show(w, r, "No se pudo guardar", "")
		return
	}
	if err := models.UpdateTeacherSpecialty(userID, especialidad); err != nil {
		log.Printf("ERROR: Failed to update specialty for user %d: %v", userID, err)
	}

	http.Redirect(w, r, "/perfil?ok=Perfil+actualizado", http.StatusFound)
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	actual := r.FormValue("actual")
	nueva := r.FormValue("nueva")
	confirmar := r.FormValue("confirmar")

	if len(nueva) < 8 {
		h.show(w, r, "La nueva contraseña debe tener al menos 8 caracteres", "")
		return
	}
	if nueva != confirmar {
		h.show(w, r, "Las contraseñas no coinciden", "")
		return
	}

	user, err := models.GetUserByID(userID)
	if err != nil {
		log.Printf("ERROR: Failed to load user %d: %v", userID, err)
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(actual)); err != nil {
		h.show(w, r, "La contraseña actual es incorrecta", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nueva), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := models.UpdateUserPassword(userID, string(hash)); err != nil {
		log.Printf("ERROR: Failed to change password for user %d: %v", userID, err)
		h.show(w, r, "No se pudo cambiar la contraseña", "")
		return
	}

	http.Redirect(w, r, "/perfil?ok=Contraseña+actualizada", http.StatusFound)
}

func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.show(w, r, "La imagen es demasiado grande", "")
		return
	}

	file, header, err := r.FormFile("foto")
	if err != nil {
		h.show(w, r, "Selecciona una imagen", "")
		return
	}
	defer file.Close()

	url, err := saveUploadedImage(file, header, "perfiles")
	if err != nil {
		log.Printf("ERROR: Failed to store profile photo: %v", err)
		h.show(w, r, "No se pudo guardar la imagen", "")
		return
	}
	if err := models.UpdateUserPhoto(userID, url); err != nil {
		log.Printf("ERROR: Failed to save photo for user %d: %v", userID, err)
		h.show(w, r, "No se pudo guardar la imagen", "")
		return
	}

	http.Redirect(w, r, "/perfil?ok=Foto+actualizada", http.StatusFound)
}
