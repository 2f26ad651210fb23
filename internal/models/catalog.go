package models

import (
	"fmt"

	"algebra-tutor/internal/db"
)

// The four base MINEDU competencies are seeded by migration and cannot be
// removed from the topic management screen.
var BaseCompetencyIDs = map[int]bool{1: true, 2: true, 3: true, 4: true}

func GetCompetencies() ([]*Competency, error) {
	rows, err := db.DB.Query(`
		SELECT id_competencia, area, COALESCE(descripcion, ''), nivel
		FROM competencias
		ORDER BY id_competencia
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query competencies: %w", err)
	}
	defer rows.Close()

	var competencies []*Competency
	for rows.Next() {
		c := &Competency{}
		if err := rows.Scan(&c.ID, &c.Area, &c.Descripcion, &c.Nivel); err != nil {
			return nil, fmt.Errorf("failed to scan competency: %w", err)
		}
		competencies = append(competencies, c)
	}
	return competencies, rows.Err()
}

func CreateCompetency(area, descripcion string, nivel int) (int, error) {
	var id int
	err := db.DB.QueryRow(`
		INSERT INTO competencias (area, descripcion, nivel)
		VALUES ($1, $2, $3)
		RETURNING id_competencia
	`, area, descripcion, nivel).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create competency: %w", err)
	}
	return id, nil
}

func UpdateCompetency(competencyID int, area, descripcion string, nivel int) error {
	_, err := db.DB.Exec(`
		UPDATE competencias
		SET area = $1, descripcion = $2, nivel = $3
		WHERE id_competencia = $4
	`, area, descripcion, nivel, competencyID)
	if err != nil {
		return fmt.Errorf("failed to update competency: %w", err)
	}
	return nil
}

func CompetencyHasMaterials(competencyID int) (bool, error) {
	var count int
	err := db.DB.QueryRow(`
		SELECT COUNT(*) FROM material_estudio WHERE id_competencia = $1
	`, competencyID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count materials: %w", err)
	}
	return count > 0, nil
}

func DeleteCompetency(competencyID int) error {
	_, err := db.DB.Exec(`DELETE FROM competencias WHERE id_competencia = $1`, competencyID)
	if err != nil {
		return fmt.Errorf("failed to delete competency: %w", err)
	}
	return nil
}

// GetMaterials lists the study materials for a competency, optionally
// filtered by level (1..3); pass 0 for all levels.
func GetMaterials(competencyID, nivel int) ([]*Material, error) {
	query := `
		SELECT id_material, titulo, tipo, url, tiempo_estimado, nivel, id_competencia
		FROM material_estudio
		WHERE id_competencia = $1`
	args := []interface{}{competencyID}
	if nivel >= 1 && nivel <= 3 {
		query += ` AND nivel = $2`
		args = append(args, nivel)
	}
	query += ` ORDER BY id_material`

	rows, err := db.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []*Material
	for rows.Next() {
		m := &Material{}
		if err := rows.Scan(&m.ID, &m.Titulo, &m.Tipo, &m.URL, &m.TiempoEstimado, &m.Nivel, &m.CompetencyID); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func GetMaterialCompetencyID(materialID int) (int, error) {
	var competencyID int
	err := db.DB.QueryRow(`
		SELECT id_competencia FROM material_estudio WHERE id_material = $1
	`, materialID).Scan(&competencyID)
	return competencyID, err
}

func CreateMaterial(m *Material) error {
	_, err := db.DB.Exec(`
		INSERT INTO material_estudio (titulo, tipo, url, tiempo_estimado, nivel, id_competencia)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.Titulo, m.Tipo, m.URL, m.TiempoEstimado, m.Nivel, m.CompetencyID)
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

func UpdateMaterial(m *Material) error {
	_, err := db.DB.Exec(`
		UPDATE material_estudio
		SET titulo = $1, tipo = $2, url = $3, tiempo_estimado = $4, nivel = $5
		WHERE id_material = $6
	`, m.Titulo, m.Tipo, m.URL, m.TiempoEstimado, m.Nivel, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}
	return nil
}

func DeleteMaterial(materialID int) error {
	_, err := db.DB.Exec(`DELETE FROM material_estudio WHERE id_material = $1`, materialID)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}
