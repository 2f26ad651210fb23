package models

import (
	"fmt"

	"algebra-tutor/internal/db"
)

func GetUserByEmail(correo string) (*User, error) {
	user := &User{}
	err := db.DB.QueryRow(`
		SELECT id_usuario, nombre, apellidos, correo, contrasena, rol, estado_usuario, foto_perfil, creado_en
		FROM usuarios
		WHERE correo = $1 AND estado_usuario = 'activo'
	`, correo).Scan(&user.ID, &user.Nombre, &user.Apellidos, &user.Correo,
		&user.PasswordHash, &user.Rol, &user.Estado, &user.FotoPerfil, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(userID int) (*User, error) {
	user := &User{}
	err := db.DB.QueryRow(`
		SELECT id_usuario, nombre, apellidos, correo, contrasena, rol, estado_usuario, foto_perfil, creado_en
		FROM usuarios
		WHERE id_usuario = $1
	`, userID).Scan(&user.ID, &user.Nombre, &user.Apellidos, &user.Correo,
		&user.PasswordHash, &user.Rol, &user.Estado, &user.FotoPerfil, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTeacher registers a new teacher account: one usuarios row plus its
// docente row, in a single transaction.
func CreateTeacher(nombre, apellidos, correo, passwordHash, especialidad string) (*User, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user := &User{Nombre: nombre, Apellidos: apellidos, Correo: correo, Rol: "docente", Estado: "activo"}
	err = tx.QueryRow(`
		INSERT INTO usuarios (nombre, apellidos, correo, contrasena, rol)
		VALUES ($1, $2, $3, $4, 'docente')
		RETURNING id_usuario
	`, nombre, apellidos, correo, passwordHash).Scan(&user.ID)
	if err != nil {
		if emailErr := IsEmailConstraintError(err); emailErr != nil {
			emailErr.Correo = correo
			return nil, emailErr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO docente (especialidad, id_usuario)
		VALUES ($1, $2)
	`, especialidad, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create teacher record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit teacher creation: %w", err)
	}
	return user, nil
}

func UpdateUserName(userID int, nombre, apellidos string) error {
	_, err := db.DB.Exec(`
		UPDATE usuarios SET nombre = $1, apellidos = $2 WHERE id_usuario = $3
	`, nombre, apellidos, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func UpdateTeacherSpecialty(userID int, especialidad string) error {
	_, err := db.DB.Exec(`
		UPDATE docente SET especialidad = $1 WHERE id_usuario = $2
	`, especialidad, userID)
	if err != nil {
		return fmt.Errorf("failed to update specialty: %w", err)
	}
	return nil
}

func UpdateUserPassword(userID int, passwordHash string) error {
	_, err := db.DB.Exec(`
		UPDATE usuarios SET contrasena = $1 WHERE id_usuario = $2
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func UpdateUserPhoto(userID int, fotoURL string) error {
	_, err := db.DB.Exec(`
		UPDATE usuarios SET foto_perfil = $1 WHERE id_usuario = $2
	`, fotoURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	return nil
}
