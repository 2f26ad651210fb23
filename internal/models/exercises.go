package models

import (
	"fmt"

	"algebra-tutor/internal/db"
)

func GetExercises() ([]*Exercise, error) {
	rows, err := db.DB.Query(`
		SELECT e.id_ejercicio, e.descripcion, e.respuesta_correcta, e.pista,
		       e.imagen_url, e.id_competencia, COALESCE(c.descripcion, c.area)
		FROM ejercicios e
		JOIN competencias c ON c.id_competencia = e.id_competencia
		ORDER BY e.id_ejercicio DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*Exercise
	for rows.Next() {
		e := &Exercise{}
		if err := rows.Scan(&e.ID, &e.Descripcion, &e.RespuestaCorrecta, &e.Pista,
			&e.ImagenURL, &e.CompetencyID, &e.CompetencyName); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

func GetExerciseByID(exerciseID int) (*Exercise, error) {
	e := &Exercise{}
	err := db.DB.QueryRow(`
		SELECT id_ejercicio, descripcion, respuesta_correcta, pista, imagen_url, id_competencia
		FROM ejercicios
		WHERE id_ejercicio = $1
	`, exerciseID).Scan(&e.ID, &e.Descripcion, &e.RespuestaCorrecta, &e.Pista, &e.ImagenURL, &e.CompetencyID)
	if err != nil {
		return nil, err
	}

	rows, err := db.DB.Query(`
		SELECT id_opcion, letra, descripcion, es_correcta, id_ejercicio
		FROM opciones_ejercicio
		WHERE id_ejercicio = $1
		ORDER BY letra
	`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		opt := &ExerciseOption{}
		if err := rows.Scan(&opt.ID, &opt.Letra, &opt.Descripcion, &opt.EsCorrecta, &opt.ExerciseID); err != nil {
			return nil, fmt.Errorf("failed to scan exercise option: %w", err)
		}
		e.Options = append(e.Options, opt)
	}
	return e, rows.Err()
}

// SaveExercise inserts or updates an exercise together with its options
// A-D. The option matching correctLetter is flagged es_correcta. Returns
// the exercise id.
func SaveExercise(exerciseID int, descripcion, correctLetter, pista string, competencyID int, options map[string]string) (int, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := exerciseID
	if id > 0 {
		_, err = tx.Exec(`
			UPDATE ejercicios
			SET descripcion = $1, respuesta_correcta = $2, id_competencia = $3, pista = $4
			WHERE id_ejercicio = $5
		`, descripcion, correctLetter, competencyID, pista, id)
		if err != nil {
			return 0, fmt.Errorf("failed to update exercise: %w", err)
		}
	} else {
		err = tx.QueryRow(`
			INSERT INTO ejercicios (descripcion, respuesta_correcta, id_competencia, pista)
			VALUES ($1, $2, $3, $4)
			RETURNING id_ejercicio
		`, descripcion, correctLetter, competencyID, pista).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to create exercise: %w", err)
		}
	}

	// Options are rewritten wholesale on every save.
	if _, err := tx.Exec(`DELETE FROM opciones_ejercicio WHERE id_ejercicio = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to clear options: %w", err)
	}
	for _, letter := range []string{"A", "B", "C", "D"} {
		text := options[letter]
		if text == "" {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO opciones_ejercicio (letra, descripcion, es_correcta, id_ejercicio)
			VALUES ($1, $2, $3, $4)
		`, letter, text, letter == correctLetter, id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert option %s: %w", letter, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit exercise: %w", err)
	}
	return id, nil
}

func SetExerciseImage(exerciseID int, imageURL string) error {
	_, err := db.DB.Exec(`
		UPDATE ejercicios SET imagen_url = $1 WHERE id_ejercicio = $2
	`, imageURL, exerciseID)
	if err != nil {
		return fmt.Errorf("failed to set exercise image: %w", err)
	}
	return nil
}

func DeleteExercise(exerciseID int) error {
	tx, err := db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM opciones_ejercicio WHERE id_ejercicio = $1`, exerciseID); err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ejercicios WHERE id_ejercicio = $1`, exerciseID); err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}

	return tx.Commit()
}
