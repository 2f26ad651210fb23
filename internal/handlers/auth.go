package handlers

import (
	"log"
	"net/http"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/middleware"
	"algebra-tutor/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// registerForm carries the teacher sign-up fields.
type registerForm struct {
	Nombre       string `validate:"required,min=2,max=100"`
	Apellidos    string `validate:"required,min=2,max=100"`
	Email        string `validate:"required,email"`
	Especialidad string `validate:"max=100"`
	Password     string `validate:"required,min=8"`
}

// LoginForm renders the login page; an already authenticated user is sent
// straight to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil {
		if _, _, _, err := middleware.ValidateSessionCookie(cookie, h.cfg.SessionSecret); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		h.cfg.Debugf("Session cookie exists but invalid: %v", err)
	}

	renderTemplate(w, r, "login.html", map[string]interface{}{
		"Title": "Iniciar sesión - Tutor de Álgebra",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(msg string) {
		renderTemplate(w, r, "login.html", map[string]interface{}{
			"Title": "Iniciar sesión - Tutor de Álgebra",
			"Error": msg,
			"Email": email,
		})
	}

	if email == "" || password == "" {
		fail("Correo y contraseña son obligatorios")
		return
	}

	user, err := models.GetUserByEmail(email)
	if err != nil {
		fail("Correo o contraseña incorrectos")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		fail("Correo o contraseña incorrectos")
		return
	}

	cookie, err := middleware.CreateSessionCookie(user.ID, user.FullName(), user.Rol, h.cfg.SessionSecret)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "register.html", map[string]interface{}{
		"Title": "Registro - Tutor de Álgebra",
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	form := registerForm{
		Nombre:       strings.TrimSpace(r.FormValue("nombre")),
		Apellidos:    strings.TrimSpace(r.FormValue("apellidos")),
		Email:        strings.TrimSpace(r.FormValue("email")),
		Especialidad: strings.TrimSpace(r.FormValue("especialidad")),
		Password:     r.FormValue("password"),
	}

	fail := func(msg string) {
		renderTemplate(w, r, "register.html", map[string]interface{}{
			"Title":        "Registro - Tutor de Álgebra",
			"Error":        msg,
			"Nombre":       form.Nombre,
			"Apellidos":    form.Apellidos,
			"Email":        form.Email,
			"Especialidad": form.Especialidad,
		})
	}

	if err := validate.Struct(form); err != nil {
		h.cfg.Debugf("Registration validation failed: %v", err)
		fail("Revisa los datos: nombres y apellidos son obligatorios, el correo debe ser válido y la contraseña debe tener al menos 8 caracteres")
		return
	}
	if form.Password != r.FormValue("password2") {
		fail("Las contraseñas no coinciden")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user, err := models.CreateTeacher(form.Nombre, form.Apellidos, form.Email, string(hash), form.Especialidad)
	if err != nil {
		if emailErr := models.IsEmailConstraintError(err); emailErr != nil {
			fail("Ya existe una cuenta con ese correo")
			return
		}
		log.Printf("ERROR: Failed to create teacher: %v", err)
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	cookie, err := middleware.CreateSessionCookie(user.ID, user.FullName(), user.Rol, h.cfg.SessionSecret)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "forgot_password.html", map[string]interface{}{
		"Title": "Recuperar contraseña - Tutor de Álgebra",
	})
}

// ForgotPassword resets the account to a random temporary password. There
// is no mail delivery; the temporary password goes to the server log and
// an operator hands it to the teacher.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	done := map[string]interface{}{
		"Title":   "Recuperar contraseña - Tutor de Álgebra",
		"Success": "Si el correo existe, se generó una contraseña temporal. Contacta al administrador para recibirla.",
	}

	user, err := models.GetUserByEmail(email)
	if err != nil {
		// Same response whether or not the account exists.
		renderTemplate(w, r, "forgot_password.html", done)
		return
	}

	temp := uuid.NewString()[:8]
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := models.UpdateUserPassword(user.ID, string(hash)); err != nil {
		log.Printf("ERROR: Failed to reset password for %s: %v", email, err)
		http.Error(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	log.Printf("Temporary password for %s: %s", email, temp)
	renderTemplate(w, r, "forgot_password.html", done)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}
