// Verifies that the cached progress columns on estudiante and the
// nivel_estudiante_competencia averages agree with the score events in
// puntajes. Reports drift; never writes.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"math"

	"algebra-tutor/internal/config"
	"algebra-tutor/internal/db"
	"algebra-tutor/internal/metrics"
)

func main() {
	cfg := config.Load()
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rows, err := db.DB.Query(`
		SELECT e.id_estudiante,
		       u.nombre || ' ' || u.apellidos,
		       COALESCE(e.progreso_general, 0),
		       AVG(p.puntaje)
		FROM estudiante e
		JOIN usuarios u ON u.id_usuario = e.id_usuario
		LEFT JOIN puntajes p ON p.id_estudiante = e.id_estudiante
		GROUP BY e.id_estudiante, u.nombre, u.apellidos, e.progreso_general
		ORDER BY e.id_estudiante
	`)
	if err != nil {
		log.Fatalf("Failed to query students: %v", err)
	}
	defer rows.Close()

	checked, drifted := 0, 0
	for rows.Next() {
		var studentID, cached int
		var name string
		var eventAvg sql.NullFloat64
		if err := rows.Scan(&studentID, &name, &cached, &eventAvg); err != nil {
			log.Fatalf("Failed to scan student: %v", err)
		}
		checked++

		derived := metrics.ClampAverage(eventAvg)
		if cached != derived {
			drifted++
			fmt.Printf("DRIFT student %d (%s): cached progreso_general=%d, derived from events=%d\n",
				studentID, name, cached, derived)
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}

	levelDrift, err := checkCompetencyLevels()
	if err != nil {
		log.Fatalf("Failed to check competency levels: %v", err)
	}

	fmt.Printf("\nChecked %d students: %d with general progress drift, %d competency-level rows with drift\n",
		checked, drifted, levelDrift)
	if drifted == 0 && levelDrift == 0 {
		fmt.Println("OK: cached values match score events")
	}
}

// checkCompetencyLevels compares the stored 0-4 averages against the
// per-competency mean of puntajes, allowing rounding slack.
func checkCompetencyLevels() (int, error) {
	rows, err := db.DB.Query(`
		SELECT nec.id_estudiante,
		       nec.id_competencia,
		       nec.promedio_puntaje,
		       AVG(p.puntaje) / 25.0
		FROM nivel_estudiante_competencia nec
		LEFT JOIN puntajes p
		       ON p.id_estudiante = nec.id_estudiante
		      AND p.id_competencia = nec.id_competencia
		GROUP BY nec.id_estudiante, nec.id_competencia, nec.promedio_puntaje
		ORDER BY nec.id_estudiante, nec.id_competencia
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	drifted := 0
	for rows.Next() {
		var studentID, competencyID int
		var stored float64
		var derived sql.NullFloat64
		if err := rows.Scan(&studentID, &competencyID, &stored, &derived); err != nil {
			return 0, err
		}

		want := 0.0
		if derived.Valid {
			want = derived.Float64
		}
		if math.Abs(stored-want) > 0.05 {
			drifted++
			fmt.Printf("DRIFT levels student %d competency %d: stored=%.2f, derived=%.2f\n",
				studentID, competencyID, stored, want)
		}
	}
	return drifted, rows.Err()
}
