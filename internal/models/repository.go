package models

import (
	"database/sql"
	"fmt"

	"algebra-tutor/internal/db"
)

// GetTeacherByUserID resolves the docente record for a logged-in user.
// Returns sql.ErrNoRows when the user has no teacher record.
func GetTeacherByUserID(userID int) (*Teacher, error) {
	t := &Teacher{}
	var especialidad sql.NullString
	err := db.DB.QueryRow(`
		SELECT d.id_docente, u.id_usuario, COALESCE(d.especialidad, 'Álgebra'),
		       u.nombre, u.apellidos, u.correo
		FROM usuarios u
		JOIN docente d ON d.id_usuario = u.id_usuario
		WHERE u.id_usuario = $1
	`, userID).Scan(&t.ID, &t.UserID, &especialidad, &t.Nombre, &t.Apellidos, &t.Correo)
	if err != nil {
		return nil, err
	}
	t.Especialidad = especialidad.String
	return t, nil
}

// GetTeacherClassrooms lists the classrooms assigned to a teacher, stably
// ordered by name so the report filters always default the same way.
func GetTeacherClassrooms(teacherID int) ([]*ClassroomRef, error) {
	rows, err := db.DB.Query(`
		SELECT s.id_salon, s.nombre_salon, s.grado
		FROM salones s
		JOIN docente_salones ds ON ds.id_salon = s.id_salon
		WHERE ds.id_docente = $1
		ORDER BY s.nombre_salon
	`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classrooms: %w", err)
	}
	defer rows.Close()

	var classrooms []*ClassroomRef
	for rows.Next() {
		c := &ClassroomRef{}
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Grado); err != nil {
			return nil, fmt.Errorf("failed to scan classroom: %w", err)
		}
		classrooms = append(classrooms, c)
	}
	return classrooms, rows.Err()
}

// GetClassroomStudents lists the students enrolled in a classroom,
// ordered by surname then name.
func GetClassroomStudents(classroomID int) ([]*StudentRef, error) {
	rows, err := db.DB.Query(`
		SELECT e.id_estudiante, u.id_usuario, u.nombre, u.apellidos
		FROM estudiante e
		JOIN usuarios u ON u.id_usuario = e.id_usuario
		JOIN estudiante_salones es ON es.id_estudiante = e.id_estudiante
		WHERE es.id_salon = $1
		ORDER BY u.apellidos, u.nombre
	`, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classroom students: %w", err)
	}
	defer rows.Close()

	var students []*StudentRef
	for rows.Next() {
		s := &StudentRef{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Nombre, &s.Apellidos); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func ClassroomBelongsToTeacher(teacherID, classroomID int) (bool, error) {
	var exists bool
	err := db.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM docente_salones
			WHERE id_docente = $1 AND id_salon = $2
		)
	`, teacherID, classroomID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check classroom ownership: %w", err)
	}
	return exists, nil
}

func StudentInClassroom(studentID, classroomID int) (bool, error) {
	var exists bool
	err := db.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM estudiante_salones
			WHERE id_estudiante = $1 AND id_salon = $2
		)
	`, studentID, classroomID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check classroom membership: %w", err)
	}
	return exists, nil
}

// GetBandCounts counts a teacher's students total and per performance band.
// Bands are derived from the cached progreso_general: >=70 advanced,
// 40-69 in progress, <40 needs help.
func GetBandCounts(teacherID int) (*BandCounts, error) {
	counts := &BandCounts{}

	countQuery := `
		SELECT COUNT(DISTINCT e.id_estudiante)
		FROM estudiante e
		JOIN estudiante_salones es ON es.id_estudiante = e.id_estudiante
		JOIN docente_salones ds ON ds.id_salon = es.id_salon
		WHERE ds.id_docente = $1`

	if err := db.DB.QueryRow(countQuery, teacherID).Scan(&counts.Total); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if err := db.DB.QueryRow(countQuery+` AND e.progreso_general >= 70`, teacherID).Scan(&counts.Advanced); err != nil {
		return nil, fmt.Errorf("failed to count advanced students: %w", err)
	}
	if err := db.DB.QueryRow(countQuery+` AND e.progreso_general BETWEEN 40 AND 69`, teacherID).Scan(&counts.InProgress); err != nil {
		return nil, fmt.Errorf("failed to count in-progress students: %w", err)
	}
	if err := db.DB.QueryRow(countQuery+` AND e.progreso_general < 40`, teacherID).Scan(&counts.NeedsHelp); err != nil {
		return nil, fmt.Errorf("failed to count needs-help students: %w", err)
	}

	return counts, nil
}

// GetClassroomActivity returns per-classroom student counts and the raw
// average of progreso_general. Classrooms with no students still appear
// (NULL average); ordering and clamping happen in the reports package.
func GetClassroomActivity(teacherID int) ([]*ClassroomActivityRow, error) {
	rows, err := db.DB.Query(`
		SELECT s.nombre_salon,
		       COUNT(es.id_estudiante) AS num_estudiantes,
		       AVG(e.progreso_general) AS progreso_promedio
		FROM salones s
		JOIN docente_salones ds ON ds.id_salon = s.id_salon
		LEFT JOIN estudiante_salones es ON es.id_salon = s.id_salon
		LEFT JOIN estudiante e ON e.id_estudiante = es.id_estudiante
		WHERE ds.id_docente = $1
		GROUP BY s.id_salon, s.nombre_salon
		ORDER BY s.nombre_salon
	`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classroom activity: %w", err)
	}
	defer rows.Close()

	var activity []*ClassroomActivityRow
	for rows.Next() {
		row := &ClassroomActivityRow{}
		if err := rows.Scan(&row.Nombre, &row.StudentCount, &row.AvgProgress); err != nil {
			return nil, fmt.Errorf("failed to scan classroom activity: %w", err)
		}
		activity = append(activity, row)
	}
	return activity, rows.Err()
}

// GetAreaAverages returns the mean score per competency area across all of
// the teacher's students. Every competency appears; areas with no score
// events carry a NULL average and zero samples.
func GetAreaAverages(teacherID int) ([]*AreaAverageRow, error) {
	rows, err := db.DB.Query(`
		SELECT c.id_competencia,
		       c.area,
		       AVG(p.puntaje)   AS promedio_pct,
		       COUNT(p.puntaje) AS muestras
		FROM competencias c
		LEFT JOIN puntajes p
		       ON p.id_competencia = c.id_competencia
		      AND p.id_estudiante IN (
		              SELECT DISTINCT es.id_estudiante
		              FROM docente_salones ds
		              JOIN estudiante_salones es ON es.id_salon = ds.id_salon
		              WHERE ds.id_docente = $1
		      )
		GROUP BY c.id_competencia, c.area
		ORDER BY c.id_competencia
	`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query area averages: %w", err)
	}
	defer rows.Close()

	var averages []*AreaAverageRow
	for rows.Next() {
		row := &AreaAverageRow{}
		if err := rows.Scan(&row.CompetencyID, &row.Area, &row.Avg, &row.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan area average: %w", err)
		}
		averages = append(averages, row)
	}
	return averages, rows.Err()
}

// GetAtRiskStudents returns the teacher's students with the worst
// per-competency level, ascending. promedio_puntaje is kept on a 0-4
// scale by the scoring pipeline; *25 projects it onto 0-100.
func GetAtRiskStudents(teacherID, limit int) ([]*AtRiskRow, error) {
	rows, err := db.DB.Query(`
		SELECT e.id_estudiante,
		       MIN(es.id_salon) AS id_salon,
		       u.nombre,
		       u.apellidos,
		       MIN(nec.promedio_puntaje * 25) AS peor_pct
		FROM estudiante e
		JOIN usuarios u ON u.id_usuario = e.id_usuario
		JOIN estudiante_salones es ON es.id_estudiante = e.id_estudiante
		JOIN docente_salones ds ON ds.id_salon = es.id_salon
		JOIN nivel_estudiante_competencia nec ON nec.id_estudiante = e.id_estudiante
		WHERE ds.id_docente = $1
		GROUP BY e.id_estudiante, u.nombre, u.apellidos
		ORDER BY peor_pct ASC
		LIMIT $2
	`, teacherID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query at-risk students: %w", err)
	}
	defer rows.Close()

	var students []*AtRiskRow
	for rows.Next() {
		row := &AtRiskRow{}
		if err := rows.Scan(&row.StudentID, &row.ClassroomID, &row.Nombre, &row.Apellidos, &row.WorstPct); err != nil {
			return nil, fmt.Errorf("failed to scan at-risk student: %w", err)
		}
		students = append(students, row)
	}
	return students, rows.Err()
}

// GetStudentOverallAverage returns the raw mean of all score events for a
// student; NULL when the student has none.
func GetStudentOverallAverage(studentID int) (sql.NullFloat64, error) {
	var avg sql.NullFloat64
	err := db.DB.QueryRow(`
		SELECT AVG(p.puntaje)
		FROM puntajes p
		WHERE p.id_estudiante = $1
	`, studentID).Scan(&avg)
	if err != nil {
		return avg, fmt.Errorf("failed to query overall average: %w", err)
	}
	return avg, nil
}

// GetStudentCompetencyAverages returns the mean score per competency for
// one student, with every known competency present (NULL average when the
// student has no events in it).
func GetStudentCompetencyAverages(studentID int) ([]*CompetencyAverageRow, error) {
	rows, err := db.DB.Query(`
		SELECT c.id_competencia,
		       c.area,
		       AVG(p.puntaje) AS promedio
		FROM competencias c
		LEFT JOIN puntajes p
		       ON p.id_competencia = c.id_competencia
		      AND p.id_estudiante = $1
		GROUP BY c.id_competencia, c.area
		ORDER BY c.id_competencia
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query competency averages: %w", err)
	}
	defer rows.Close()

	var averages []*CompetencyAverageRow
	for rows.Next() {
		row := &CompetencyAverageRow{}
		if err := rows.Scan(&row.CompetencyID, &row.Area, &row.Avg); err != nil {
			return nil, fmt.Errorf("failed to scan competency average: %w", err)
		}
		averages = append(averages, row)
	}
	return averages, rows.Err()
}

// GetStudentAnswerEvents fetches a student's exercise submissions with the
// selected option resolved against the correct one.
func GetStudentAnswerEvents(studentID int) ([]*AnswerEventRow, error) {
	rows, err := db.DB.Query(`
		SELECT r.id_respuesta,
		       r.fecha,
		       e.descripcion AS actividad,
		       COALESCE(NULLIF(r.respuesta_texto, ''), opt.descripcion) AS respuesta_estudiante,
		       correcta.descripcion AS respuesta_correcta,
		       opt.es_correcta,
		       r.desarrollo_url
		FROM respuestas_estudiantes r
		JOIN ejercicios e ON e.id_ejercicio = r.id_ejercicio
		LEFT JOIN opciones_ejercicio opt ON opt.id_opcion = r.id_opcion
		LEFT JOIN opciones_ejercicio correcta
		       ON correcta.id_ejercicio = r.id_ejercicio AND correcta.es_correcta
		WHERE r.id_estudiante = $1
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answer events: %w", err)
	}
	defer rows.Close()

	var events []*AnswerEventRow
	for rows.Next() {
		row := &AnswerEventRow{}
		if err := rows.Scan(&row.AnswerID, &row.Fecha, &row.Actividad, &row.StudentResponse,
			&row.CorrectResponse, &row.Correct, &row.AttachmentURL); err != nil {
			return nil, fmt.Errorf("failed to scan answer event: %w", err)
		}
		events = append(events, row)
	}
	return events, rows.Err()
}

// GetStudentMaterialEvents fetches a student's study-material history.
func GetStudentMaterialEvents(studentID int) ([]*MaterialEventRow, error) {
	rows, err := db.DB.Query(`
		SELECT h.fecha_revision,
		       m.titulo,
		       m.tipo,
		       h.estado = 'completado' AS completado
		FROM historial_material_estudio h
		JOIN material_estudio m ON m.id_material = h.id_material
		WHERE h.id_estudiante = $1
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query material events: %w", err)
	}
	defer rows.Close()

	var events []*MaterialEventRow
	for rows.Next() {
		row := &MaterialEventRow{}
		if err := rows.Scan(&row.Fecha, &row.Titulo, &row.Tipo, &row.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan material event: %w", err)
		}
		events = append(events, row)
	}
	return events, rows.Err()
}

// GetAnswerAttachment returns the stored worked-solution URL for one
// answer, if any.
func GetAnswerAttachment(answerID int) (sql.NullString, error) {
	var url sql.NullString
	err := db.DB.QueryRow(`
		SELECT desarrollo_url
		FROM respuestas_estudiantes
		WHERE id_respuesta = $1
	`, answerID).Scan(&url)
	if err != nil {
		return url, err
	}
	return url, nil
}
