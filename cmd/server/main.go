package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/db"
	"algebra-tutor/internal/handlers"
	"algebra-tutor/internal/middleware"
	"algebra-tutor/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()

	// Connect to database
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the default teacher account if it doesn't exist
	if err := seedTeacherUser(cfg); err != nil {
		log.Printf("Warning: Failed to seed teacher user: %v", err)
	}

	// Initialize handlers
	handlers.SetConfig(cfg)

	// Initialize templates early to catch any errors at startup
	handlers.InitTemplates()

	authHandler := handlers.NewAuthHandler(cfg)
	dashboardHandler := handlers.NewDashboardHandler(cfg)
	reportsHandler := handlers.NewReportsHandler(cfg)
	classroomsHandler := handlers.NewClassroomsHandler(cfg)
	studentsHandler := handlers.NewStudentsHandler(cfg)
	topicsHandler := handlers.NewTopicsHandler(cfg)
	exercisesHandler := handlers.NewExercisesHandler(cfg)
	profileHandler := handlers.NewProfileHandler(cfg)

	requireTeacher := middleware.RequireTeacher(cfg.SessionSecret)

	mux := http.NewServeMux()

	logged := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cfg.Debugf("REQUEST: %s %s", r.Method, r.URL.Path)
			next(w, r)
		}
	}

	// Static files - use absolute path (must be first)
	workDir, _ := os.Getwd()
	staticDir := filepath.Join(workDir, "web", "static")
	fileServer := http.FileServer(http.Dir(staticDir))
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))

	// Auth routes (public)
	mux.HandleFunc("/login", logged(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.Login(w, r)
		} else {
			authHandler.LoginForm(w, r)
		}
	}))
	mux.HandleFunc("/registro", logged(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.Register(w, r)
		} else {
			authHandler.RegisterForm(w, r)
		}
	}))
	mux.HandleFunc("/recuperar", logged(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.ForgotPassword(w, r)
		} else {
			authHandler.ForgotPasswordForm(w, r)
		}
	}))
	mux.HandleFunc("/logout", logged(authHandler.Logout))

	// getPost routes a handler pair by method; everything else is rejected.
	getPost := func(get, post http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				get(w, r)
			case http.MethodPost:
				post(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
		}
	}
	postOnly := func(post http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			post(w, r)
		}
	}

	// Teacher routes
	mux.HandleFunc("/dashboard", logged(requireTeacher(dashboardHandler.Show)))
	mux.HandleFunc("/progreso", logged(requireTeacher(reportsHandler.Show)))
	mux.HandleFunc("/progreso/evidencia/", logged(requireTeacher(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/progreso/evidencia/") {
			http.NotFound(w, r)
			return
		}
		reportsHandler.Evidence(w, r)
	})))

	mux.HandleFunc("/salones", logged(requireTeacher(getPost(classroomsHandler.List, classroomsHandler.Create))))
	mux.HandleFunc("/salones/unirme", logged(requireTeacher(postOnly(classroomsHandler.Join))))
	mux.HandleFunc("/salones/editar", logged(requireTeacher(postOnly(classroomsHandler.Update))))
	mux.HandleFunc("/salones/eliminar", logged(requireTeacher(postOnly(classroomsHandler.Delete))))

	mux.HandleFunc("/estudiantes", logged(requireTeacher(studentsHandler.List)))
	mux.HandleFunc("/estudiantes/vincular", logged(requireTeacher(postOnly(studentsHandler.Attach))))
	mux.HandleFunc("/estudiantes/nuevo", logged(requireTeacher(getPost(studentsHandler.NewForm, studentsHandler.Create))))
	mux.HandleFunc("/estudiantes/editar", logged(requireTeacher(getPost(studentsHandler.EditForm, studentsHandler.Update))))
	mux.HandleFunc("/estudiantes/desactivar", logged(requireTeacher(postOnly(studentsHandler.Deactivate))))

	mux.HandleFunc("/temas", logged(requireTeacher(topicsHandler.Show)))
	mux.HandleFunc("/temas/competencias", logged(requireTeacher(postOnly(topicsHandler.CreateCompetency))))
	mux.HandleFunc("/temas/competencias/eliminar", logged(requireTeacher(postOnly(topicsHandler.DeleteCompetency))))
	mux.HandleFunc("/temas/material", logged(requireTeacher(postOnly(topicsHandler.CreateMaterial))))
	mux.HandleFunc("/temas/material/eliminar", logged(requireTeacher(postOnly(topicsHandler.DeleteMaterial))))

	mux.HandleFunc("/ejercicios", logged(requireTeacher(exercisesHandler.List)))
	mux.HandleFunc("/ejercicios/nuevo", logged(requireTeacher(exercisesHandler.NewForm)))
	mux.HandleFunc("/ejercicios/editar", logged(requireTeacher(exercisesHandler.EditForm)))
	mux.HandleFunc("/ejercicios/detalle", logged(requireTeacher(exercisesHandler.Detail)))
	mux.HandleFunc("/ejercicios/guardar", logged(requireTeacher(postOnly(exercisesHandler.Save))))
	mux.HandleFunc("/ejercicios/eliminar", logged(requireTeacher(postOnly(exercisesHandler.Delete))))

	mux.HandleFunc("/perfil", logged(requireTeacher(getPost(profileHandler.Show, profileHandler.Update))))
	mux.HandleFunc("/perfil/password", logged(requireTeacher(postOnly(profileHandler.ChangePassword))))
	mux.HandleFunc("/perfil/foto", logged(requireTeacher(postOnly(profileHandler.UploadPhoto))))

	// Root redirects to the dashboard; unknown paths 404.
	mux.HandleFunc("/", logged(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}))

	log.Printf("Server starting on http://localhost:%s", cfg.Port)
	log.Printf("Default teacher login: %s / %s", cfg.TeacherEmail, cfg.TeacherPassword)
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedTeacherUser(cfg *config.Config) error {
	// Check if the teacher user exists
	_, err := models.GetUserByEmail(cfg.TeacherEmail)
	if err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.TeacherPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = models.CreateTeacher("Docente", "Principal", cfg.TeacherEmail, string(hashedPassword), "Matemática")
	if err != nil {
		return fmt.Errorf("failed to create teacher user: %w", err)
	}

	log.Printf("Created default teacher user: %s", cfg.TeacherEmail)
	return nil
}
