// Seeder command for populating demo classrooms, students and activity
// so the dashboard and progress views have data to show.
//
// SAFETY: This command ONLY runs when:
//   - APP_ENV=development
//   - --confirm flag is provided
//
// Usage:
//
//	APP_ENV=development go run cmd/seed/main.go --students 24 --confirm
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/db"
	"algebra-tutor/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	students := flag.Int("students", 24, "Number of students to seed")
	confirm := flag.Bool("confirm", false, "Confirm seeding (required)")
	flag.Parse()

	if os.Getenv("APP_ENV") != "development" {
		log.Fatalf("ERROR: Seeder can only run in development environment. Set APP_ENV=development and try again.")
	}
	if !*confirm {
		log.Fatalf("ERROR: --confirm flag is required to run seeder. Usage: APP_ENV=development go run cmd/seed/main.go --students %d --confirm", *students)
	}

	cfg := config.Load()
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Assumes migrations already ran (the server applies them on boot).

	log.Printf("SEEDER: Preparing %d demo students", *students)

	teacher, err := seedTeacher(cfg)
	if err != nil {
		log.Fatalf("Failed to seed teacher: %v", err)
	}

	classroomIDs, err := seedClassrooms(teacher.ID)
	if err != nil {
		log.Fatalf("Failed to seed classrooms: %v", err)
	}

	exerciseIDs, err := seedExercises()
	if err != nil {
		log.Fatalf("Failed to seed exercises: %v", err)
	}

	materialIDs, err := seedMaterials()
	if err != nil {
		log.Fatalf("Failed to seed materials: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inserted := 0
	for i := 1; i <= *students; i++ {
		classroomID := classroomIDs[(i-1)%len(classroomIDs)]
		if err := seedStudent(rng, i, classroomID, exerciseIDs, materialIDs); err != nil {
			log.Printf("ERROR: Failed to seed student %d: %v", i, err)
			continue
		}
		inserted++
	}

	log.Printf("SEEDER: Done. Inserted %d students across %d classrooms.", inserted, len(classroomIDs))
	log.Printf("Log in as %s / %s to see the dashboard.", cfg.TeacherEmail, cfg.TeacherPassword)
}

func seedTeacher(cfg *config.Config) (*models.Teacher, error) {
	user, err := models.GetUserByEmail(cfg.TeacherEmail)
	if err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.TeacherPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user, err = models.CreateTeacher("Docente", "Principal", cfg.TeacherEmail, string(hash), "Matemática")
		if err != nil {
			return nil, err
		}
	}
	return models.GetTeacherByUserID(user.ID)
}

func seedClassrooms(teacherID int) ([]int, error) {
	plan := []struct {
		Nombre string
		Grado  string
	}{
		{"2do A", "Segundo de secundaria"},
		{"2do B", "Segundo de secundaria"},
		{"3ro A", "Tercero de secundaria"},
	}

	var ids []int
	for _, p := range plan {
		id, err := models.CreateClassroom(teacherID, p.Nombre, p.Grado)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seedExercises creates one multiple-choice exercise per base competency.
func seedExercises() (map[int]int, error) {
	plan := map[int]struct {
		Descripcion string
		Correcta    string
		Options     map[string]string
	}{
		1: {"Resuelve: 12 + 3 × 4", "B", map[string]string{"A": "60", "B": "24", "C": "48", "D": "19"}},
		2: {"Resuelve: 2x + 3 = 11", "A", map[string]string{"A": "x = 4", "B": "x = 7", "C": "x = 3", "D": "x = 5"}},
		3: {"Si f(x) = 2x - 1, ¿cuánto vale f(3)?", "C", map[string]string{"A": "7", "B": "3", "C": "5", "D": "6"}},
		4: {"¿Cuál es el área de un cuadrado de lado 6?", "D", map[string]string{"A": "12", "B": "24", "C": "18", "D": "36"}},
	}

	ids := make(map[int]int, len(plan))
	for competencyID, p := range plan {
		id, err := models.SaveExercise(0, p.Descripcion, p.Correcta, "", competencyID, p.Options)
		if err != nil {
			return nil, err
		}
		ids[competencyID] = id
	}
	return ids, nil
}

func seedMaterials() ([]int, error) {
	plan := []models.Material{
		{Titulo: "Video: orden de operaciones", Tipo: "video", URL: "https://example.com/orden", TiempoEstimado: 8, CompetencyID: 1},
		{Titulo: "Guía de ecuaciones lineales", Tipo: "pdf", URL: "https://example.com/ecuaciones.pdf", TiempoEstimado: 15, CompetencyID: 2},
		{Titulo: "Funciones paso a paso", Tipo: "video", URL: "https://example.com/funciones", TiempoEstimado: 12, CompetencyID: 3},
		{Titulo: "Áreas y perímetros", Tipo: "interactivo", URL: "https://example.com/geometria", TiempoEstimado: 10, CompetencyID: 4},
	}

	var ids []int
	for i := range plan {
		if err := models.CreateMaterial(&plan[i]); err != nil {
			return nil, err
		}
		var id int
		err := db.DB.QueryRow(`
			SELECT id_material FROM material_estudio
			WHERE titulo = $1 ORDER BY id_material DESC LIMIT 1
		`, plan[i].Titulo).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to read back material id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedStudent(rng *rand.Rand, n, classroomID int, exerciseIDs map[int]int, materialIDs []int) error {
	nombre := fmt.Sprintf("Estudiante%02d", n)
	apellidos := fmt.Sprintf("Demo%02d", n)
	correo := fmt.Sprintf("estudiante%02d@algebra.test", n)

	hash, err := bcrypt.GenerateFromPassword([]byte("estudiante123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	studentID, err := models.CreateStudent(nombre, apellidos, correo, string(hash), "Secundaria", classroomID)
	if err != nil {
		return err
	}

	// A skill bias per student spreads them across the three bands.
	bias := rng.Intn(70)
	now := time.Now()

	for competencyID := 1; competencyID <= 4; competencyID++ {
		// Score events over the last weeks.
		total, count := 0, 0
		for week := 0; week < 4; week++ {
			score := bias + rng.Intn(31)
			if score > 100 {
				score = 100
			}
			fecha := now.AddDate(0, 0, -7*week-rng.Intn(5))
			if _, err := db.DB.Exec(`
				INSERT INTO puntajes (id_estudiante, id_competencia, puntaje, fecha)
				VALUES ($1, $2, $3, $4)
			`, studentID, competencyID, score, fecha); err != nil {
				return fmt.Errorf("failed to insert score: %w", err)
			}
			total += score
			count++
		}

		// Cached per-competency level on the 0-4 scale.
		avg := float64(total) / float64(count) / 25.0
		if _, err := db.DB.Exec(`
			INSERT INTO nivel_estudiante_competencia (id_estudiante, id_competencia, promedio_puntaje)
			VALUES ($1, $2, $3)
			ON CONFLICT (id_estudiante, id_competencia) DO UPDATE SET promedio_puntaje = EXCLUDED.promedio_puntaje
		`, studentID, competencyID, avg); err != nil {
			return fmt.Errorf("failed to upsert competency level: %w", err)
		}

		// A couple of exercise answers, sometimes wrong.
		exerciseID := exerciseIDs[competencyID]
		for attempt := 0; attempt < 2; attempt++ {
			var optionID int
			pickCorrect := rng.Intn(100) < bias+25
			err := db.DB.QueryRow(`
				SELECT id_opcion FROM opciones_ejercicio
				WHERE id_ejercicio = $1 AND es_correcta = $2
				ORDER BY random() LIMIT 1
			`, exerciseID, pickCorrect).Scan(&optionID)
			if err != nil {
				return fmt.Errorf("failed to pick option: %w", err)
			}
			fecha := now.AddDate(0, 0, -rng.Intn(28))
			if _, err := db.DB.Exec(`
				INSERT INTO respuestas_estudiantes (id_estudiante, id_ejercicio, id_opcion, fecha)
				VALUES ($1, $2, $3, $4)
			`, studentID, exerciseID, optionID, fecha); err != nil {
				return fmt.Errorf("failed to insert answer: %w", err)
			}
		}
	}

	// Some material history, most of it completed.
	for _, materialID := range materialIDs {
		if rng.Intn(100) < 40 {
			continue
		}
		estado := "completado"
		if rng.Intn(100) < 25 {
			estado = "pendiente"
		}
		fecha := now.AddDate(0, 0, -rng.Intn(28))
		if _, err := db.DB.Exec(`
			INSERT INTO historial_material_estudio (id_estudiante, id_material, estado, fecha_revision)
			VALUES ($1, $2, $3, $4)
		`, studentID, materialID, estado, fecha); err != nil {
			return fmt.Errorf("failed to insert material history: %w", err)
		}
	}

	return nil
}
