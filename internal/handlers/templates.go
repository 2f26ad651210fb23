package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/metrics"
	"algebra-tutor/internal/middleware"
	"algebra-tutor/internal/util"
	"algebra-tutor/internal/views"
)

var (
	templates     *template.Template
	templatesOnce sync.Once
	cfg           *config.Config
)

// SetConfig sets the config for debug logging
func SetConfig(c *config.Config) {
	cfg = c
}

// InitTemplates parses the embedded templates. Called explicitly at
// startup so a broken template fails the boot, not the first request.
func InitTemplates() {
	initTemplates()
}

func initTemplates() {
	templatesOnce.Do(func() {
		if cfg != nil {
			cfg.Debugf("📦 INITIALIZING TEMPLATES")
		}

		funcMap := template.FuncMap{
			"urlquery": url.QueryEscape,
			"sub": func(a, b int) int {
				return a - b
			},
			"add": func(a, b int) int {
				return a + b
			},
			"fecha": func(t time.Time) string {
				return util.FormatDateTime(t)
			},
			"banda": func(b metrics.Band) string {
				switch b {
				case metrics.BandAdvanced:
					return "Avanzado"
				case metrics.BandInProgress:
					return "En progreso"
				case metrics.BandNeedsHelp:
					return "Necesita ayuda"
				default:
					return ""
				}
			},
			"haceDias": func(t time.Time) string {
				return util.DaysAgo(t)
			},
		}

		var err error
		templates, err = template.New("").Funcs(funcMap).ParseFS(views.TemplatesFS, "*.html")
		if err != nil {
			log.Printf("ERROR: Failed to parse templates: %v", err)
			panic(fmt.Sprintf("Failed to parse templates: %v", err))
		}

		if cfg != nil {
			for _, tmpl := range templates.Templates() {
				cfg.Debugf("  - Template: '%s'", tmpl.Name())
			}
		}
	})
}

// contentTemplateMap maps template filenames to their content template names
var contentTemplateMap = map[string]string{
	"login.html":           "login_content",
	"register.html":        "register_content",
	"forgot_password.html": "forgot_password_content",
	"dashboard.html":       "dashboard_content",
	"progress.html":        "progress_content",
	"classrooms.html":      "classrooms_content",
	"students.html":        "students_content",
	"student_form.html":    "student_form_content",
	"topics.html":          "topics_content",
	"exercises.html":       "exercises_content",
	"exercise_form.html":   "exercise_form_content",
	"profile.html":         "profile_content",
}

// Templates that use auth_layout instead of the main app layout
var authLayoutTemplates = map[string]bool{
	"login.html":           true,
	"register.html":        true,
	"forgot_password.html": true,
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	initTemplates()

	contentName, ok := contentTemplateMap[name]
	if !ok {
		log.Printf("ERROR: No content template mapping for %s", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	if _, ok := data["UserName"]; !ok && r != nil {
		data["UserName"] = middleware.GetUserName(r)
	}

	// Render the page content first, then hand it to the layout. The
	// layout cannot dispatch on a template name itself, so the content
	// travels as pre-rendered HTML.
	var content bytes.Buffer
	if err := templates.ExecuteTemplate(&content, contentName, data); err != nil {
		log.Printf("ERROR: Failed to render %s: %v", contentName, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	data["Content"] = template.HTML(content.String())

	layoutName := "layout"
	if authLayoutTemplates[name] {
		layoutName = "auth_layout"
	}

	if err := templates.ExecuteTemplate(w, layoutName, data); err != nil {
		log.Printf("ERROR: Failed to render layout for %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
