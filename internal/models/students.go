package models

import (
	"database/sql"
	"fmt"

	"algebra-tutor/internal/db"
)

// GetTeacherRoster lists every student across the teacher's classrooms with
// the cached competency levels.
func GetTeacherRoster(teacherID int) ([]*StudentListItem, error) {
	rows, err := db.DB.Query(`
		SELECT e.id_estudiante,
		       u.id_usuario,
		       u.nombre,
		       u.apellidos,
		       u.correo,
		       COALESCE(e.grado, ''),
		       e.estado_estudiante,
		       s.nombre_salon,
		       COALESCE(e.operaciones_basicas, 0),
		       COALESCE(e.ecuaciones, 0),
		       COALESCE(e.funciones, 0),
		       COALESCE(e.geometria, 0),
		       COALESCE(e.progreso_general, 0)
		FROM docente_salones ds
		JOIN salones s ON s.id_salon = ds.id_salon
		JOIN estudiante_salones es ON es.id_salon = s.id_salon
		JOIN estudiante e ON e.id_estudiante = es.id_estudiante
		JOIN usuarios u ON u.id_usuario = e.id_usuario
		WHERE ds.id_docente = $1
		ORDER BY u.apellidos, u.nombre
	`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var roster []*StudentListItem
	for rows.Next() {
		item := &StudentListItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.Nombre, &item.Apellidos,
			&item.Correo, &item.Grado, &item.Estado, &item.NombreSalon,
			&item.CompCantidad, &item.CompRegularidad, &item.CompForma, &item.CompDatos,
			&item.ProgresoGeneral); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		roster = append(roster, item)
	}
	return roster, rows.Err()
}

// GetStudentUsers lists every user account with the estudiante role, for
// the "attach existing student" picker.
func GetStudentUsers() ([]*StudentListItem, error) {
	rows, err := db.DB.Query(`
		SELECT COALESCE(e.id_estudiante, 0),
		       u.id_usuario,
		       u.nombre,
		       u.apellidos,
		       u.correo,
		       COALESCE(e.grado, '')
		FROM usuarios u
		LEFT JOIN estudiante e ON e.id_usuario = u.id_usuario
		WHERE u.rol = 'estudiante'
		ORDER BY u.apellidos, u.nombre
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query student users: %w", err)
	}
	defer rows.Close()

	var users []*StudentListItem
	for rows.Next() {
		item := &StudentListItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.Nombre, &item.Apellidos, &item.Correo, &item.Grado); err != nil {
			return nil, fmt.Errorf("failed to scan student user: %w", err)
		}
		users = append(users, item)
	}
	return users, rows.Err()
}

// CreateStudent creates a new student user plus its estudiante row and
// enrolls it in the given classroom.
func CreateStudent(nombre, apellidos, correo, passwordHash, grado string, classroomID int) (int, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID int
	err = tx.QueryRow(`
		INSERT INTO usuarios (nombre, apellidos, correo, contrasena, rol)
		VALUES ($1, $2, $3, $4, 'estudiante')
		RETURNING id_usuario
	`, nombre, apellidos, correo, passwordHash).Scan(&userID)
	if err != nil {
		if emailErr := IsEmailConstraintError(err); emailErr != nil {
			emailErr.Correo = correo
			return 0, emailErr
		}
		return 0, fmt.Errorf("failed to create student user: %w", err)
	}

	var studentID int
	err = tx.QueryRow(`
		INSERT INTO estudiante (grado, id_usuario)
		VALUES ($1, $2)
		RETURNING id_estudiante
	`, grado, userID).Scan(&studentID)
	if err != nil {
		return 0, fmt.Errorf("failed to create student record: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO estudiante_salones (id_estudiante, id_salon)
		VALUES ($1, $2)
	`, studentID, classroomID)
	if err != nil {
		return 0, fmt.Errorf("failed to enroll student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit student creation: %w", err)
	}
	return studentID, nil
}

// AttachStudentUser makes sure an existing estudiante-role user has a
// student record and is enrolled in the classroom. Returns the student id.
func AttachStudentUser(userID int, grado string, classroomID int) (int, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var studentID int
	err = tx.QueryRow(`SELECT id_estudiante FROM estudiante WHERE id_usuario = $1`, userID).Scan(&studentID)
	switch {
	case err == sql.ErrNoRows:
		err = tx.QueryRow(`
			INSERT INTO estudiante (grado, id_usuario)
			VALUES ($1, $2)
			RETURNING id_estudiante
		`, grado, userID).Scan(&studentID)
		if err != nil {
			return 0, fmt.Errorf("failed to create student record: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("failed to look up student: %w", err)
	default:
		if _, err := tx.Exec(`UPDATE estudiante SET grado = $1 WHERE id_estudiante = $2`, grado, studentID); err != nil {
			return 0, fmt.Errorf("failed to update student grade: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO estudiante_salones (id_estudiante, id_salon)
		VALUES ($1, $2)
		ON CONFLICT (id_estudiante, id_salon) DO NOTHING
	`, studentID, classroomID)
	if err != nil {
		return 0, fmt.Errorf("failed to enroll student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit student attachment: %w", err)
	}
	return studentID, nil
}

// StudentUpdate carries the editable roster fields. Nil competency levels
// keep the stored values (COALESCE in the update).
type StudentUpdate struct {
	StudentID       int
	UserID          int
	Nombre          string
	Apellidos       string
	Correo          string
	Grado           string
	Estado          string
	CompCantidad    *int
	CompRegularidad *int
	CompForma       *int
	CompDatos       *int
	ProgresoGeneral *int
}

// GetStudentByID loads one student with the cached levels and the current
// classroom assignment, for the edit form.
func GetStudentByID(studentID int) (*StudentListItem, error) {
	item := &StudentListItem{}
	err := db.DB.QueryRow(`
		SELECT e.id_estudiante,
		       u.id_usuario,
		       u.nombre,
		       u.apellidos,
		       u.correo,
		       COALESCE(e.grado, ''),
		       e.estado_estudiante,
		       COALESCE(es.id_salon, 0),
		       COALESCE(s.nombre_salon, ''),
		       COALESCE(e.operaciones_basicas, 0),
		       COALESCE(e.ecuaciones, 0),
		       COALESCE(e.funciones, 0),
		       COALESCE(e.geometria, 0),
		       COALESCE(e.progreso_general, 0)
		FROM estudiante e
		JOIN usuarios u ON u.id_usuario = e.id_usuario
		LEFT JOIN estudiante_salones es ON es.id_estudiante = e.id_estudiante
		LEFT JOIN salones s ON s.id_salon = es.id_salon
		WHERE e.id_estudiante = $1
	`, studentID).Scan(&item.ID, &item.UserID, &item.Nombre, &item.Apellidos,
		&item.Correo, &item.Grado, &item.Estado, &item.ClassroomID, &item.NombreSalon,
		&item.CompCantidad, &item.CompRegularidad, &item.CompForma, &item.CompDatos,
		&item.ProgresoGeneral)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	return item, nil
}

// MoveStudentClassroom reassigns the student to a classroom, replacing any
// previous assignment.
func MoveStudentClassroom(studentID, classroomID int) error {
	tx, err := db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM estudiante_salones WHERE id_estudiante = $1
	`, studentID); err != nil {
		return fmt.Errorf("failed to clear classroom assignment: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO estudiante_salones (id_estudiante, id_salon) VALUES ($1, $2)
	`, studentID, classroomID); err != nil {
		return fmt.Errorf("failed to assign classroom: %w", err)
	}

	return tx.Commit()
}

// EmailTakenByOther reports whether another user already owns the email.
func EmailTakenByOther(correo string, userID int) (bool, error) {
	var exists bool
	err := db.DB.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM usuarios WHERE correo = $1 AND id_usuario <> $2)
	`, correo, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func UpdateStudent(upd *StudentUpdate) error {
	tx, err := db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE usuarios
		SET nombre = $1, apellidos = $2, correo = $3
		WHERE id_usuario = $4
	`, upd.Nombre, upd.Apellidos, upd.Correo, upd.UserID)
	if err != nil {
		return fmt.Errorf("failed to update student user: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE estudiante
		SET grado = $1,
		    estado_estudiante = $2,
		    operaciones_basicas = COALESCE($3, operaciones_basicas),
		    ecuaciones          = COALESCE($4, ecuaciones),
		    funciones           = COALESCE($5, funciones),
		    geometria           = COALESCE($6, geometria),
		    progreso_general    = COALESCE($7, progreso_general)
		WHERE id_estudiante = $8
	`, upd.Grado, upd.Estado, upd.CompCantidad, upd.CompRegularidad,
		upd.CompForma, upd.CompDatos, upd.ProgresoGeneral, upd.StudentID)
	if err != nil {
		return fmt.Errorf("failed to update student record: %w", err)
	}

	return tx.Commit()
}

// DeactivateStudent marks a student inactive without deleting history.
func DeactivateStudent(studentID int) error {
	_, err := db.DB.Exec(`
		UPDATE estudiante SET estado_estudiante = 'inactivo' WHERE id_estudiante = $1
	`, studentID)
	if err != nil {
		return fmt.Errorf("failed to deactivate student: %w", err)
	}
	return nil
}
