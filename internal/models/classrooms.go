package models

import (
	"fmt"

	"algebra-tutor/internal/db"
)

// GetTeacherClassroomList returns the teacher's classrooms with student
// counts, for the management screen.
func GetTeacherClassroomList(teacherID int) ([]*ClassroomListItem, error) {
	rows, err := db.DB.Query(`
		SELECT s.id_salon,
		       s.nombre_salon,
		       s.grado,
		       (SELECT COUNT(*) FROM estudiante_salones es WHERE es.id_salon = s.id_salon) AS num_estudiantes
		FROM salones s
		JOIN docente_salones ds ON ds.id_salon = s.id_salon
		WHERE ds.id_docente = $1
		ORDER BY s.nombre_salon ASC
	`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classroom list: %w", err)
	}
	defer rows.Close()

	var items []*ClassroomListItem
	for rows.Next() {
		item := &ClassroomListItem{}
		if err := rows.Scan(&item.ID, &item.Nombre, &item.Grado, &item.StudentCount); err != nil {
			return nil, fmt.Errorf("failed to scan classroom: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetAvailableClassrooms lists classrooms the teacher is not yet assigned to.
func GetAvailableClassrooms(teacherID int) ([]*ClassroomRef, error) {
	rows, err := db.DB.Query(`
		SELECT s.id_salon, s.nombre_salon, s.grado
		FROM salones s
		WHERE s.id_salon NOT IN (
			SELECT id_salon FROM docente_salones WHERE id_docente = $1
		)
		ORDER BY s.nombre_salon ASC
	`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query available classrooms: %w", err)
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

// CreateClassroom inserts a classroom and assigns it to its creator.
func CreateClassroom(teacherID int, nombre, grado string) (int, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var classroomID int
	err = tx.QueryRow(`
		INSERT INTO salones (nombre_salon, grado)
		VALUES ($1, $2)
		RETURNING id_salon
	`, nombre, grado).Scan(&classroomID)
	if err != nil {
		return 0, fmt.Errorf("failed to create classroom: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO docente_salones (id_docente, id_salon)
		VALUES ($1, $2)
	`, teacherID, classroomID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign classroom: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit classroom creation: %w", err)
	}
	return classroomID, nil
}

func UpdateClassroom(classroomID int, nombre, grado string) error {
	_, err := db.DB.Exec(`
		UPDATE salones SET nombre_salon = $1, grado = $2 WHERE id_salon = $3
	`, nombre, grado, classroomID)
	if err != nil {
		return fmt.Errorf("failed to update classroom: %w", err)
	}
	return nil
}

// DeleteClassroom removes a classroom and its membership rows.
func DeleteClassroom(classroomID int) error {
	tx, err := db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM estudiante_salones WHERE id_salon = $1`, classroomID); err != nil {
		return fmt.Errorf("failed to delete classroom students: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM docente_salones WHERE id_salon = $1`, classroomID); err != nil {
		return fmt.Errorf("failed to delete classroom assignments: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM salones WHERE id_salon = $1`, classroomID); err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}

	return tx.Commit()
}

func ClassroomExists(classroomID int) (bool, error) {
	var exists bool
	err := db.DB.QueryRow(`SELECT EXISTS (SELECT 1 FROM salones WHERE id_salon = $1)`, classroomID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check classroom: %w", err)
	}
	return exists, nil
}

// JoinClassroom assigns an existing classroom to a teacher. No-op when the
// assignment already exists.
func JoinClassroom(teacherID, classroomID int) error {
	_, err := db.DB.Exec(`
		INSERT INTO docente_salones (id_docente, id_salon)
		VALUES ($1, $2)
		ON CONFLICT (id_docente, id_salon) DO NOTHING
	`, teacherID, classroomID)
	if err != nil {
		return fmt.Errorf("failed to join classroom: %w", err)
	}
	return nil
}

// FirstTeacherClassroomID returns the id of the teacher's first classroom
// (by name), or sql.ErrNoRows when the teacher has none.
func FirstTeacherClassroomID(teacherID int) (int, error) {
	var classroomID int
	err := db.DB.QueryRow(`
		SELECT s.id_salon
		FROM salones s
		JOIN docente_salones ds ON ds.id_salon = s.id_salon
		WHERE ds.id_docente = $1
		ORDER BY s.nombre_salon
		LIMIT 1
	`, teacherID).Scan(&classroomID)
	return classroomID, err
}
