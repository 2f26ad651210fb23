package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int
	Nombre       string
	Apellidos    string
	Correo       string
	PasswordHash string
	Rol          string
	Estado       string
	FotoPerfil   sql.NullString
	CreatedAt    time.Time
}

func (u *User) FullName() string {
	return u.Nombre + " " + u.Apellidos
}

// Teacher is the docente row joined with its user account.
type Teacher struct {
	ID           int
	UserID       int
	Especialidad string
	Nombre       string
	Apellidos    string
	Correo       string
}

func (t *Teacher) FullName() string {
	return t.Nombre + " " + t.Apellidos
}

type ClassroomRef struct {
	ID     int
	Nombre string
	Grado  string
}

type ClassroomListItem struct {
	ClassroomRef
	StudentCount int
}

type StudentRef struct {
	ID        int
	UserID    int
	Nombre    string
	Apellidos string
}

func (s *StudentRef) FullName() string {
	return s.Nombre + " " + s.Apellidos
}

// StudentListItem is one roster row: identity plus the denormalized
// competency levels maintained by the management screens. These cached
// values can diverge from the averages the reporting core derives from
// score events; both are kept visible on purpose.
type StudentListItem struct {
	StudentRef
	Correo          string
	Grado           string
	Estado          string
	ClassroomID     int
	NombreSalon     string
	CompCantidad    int
	CompRegularidad int
	CompForma       int
	CompDatos       int
	ProgresoGeneral int
}

type Competency struct {
	ID          int
	Area        string
	Descripcion string
	Nivel       int
}

type Material struct {
	ID             int
	Titulo         string
	Tipo           string
	URL            string
	TiempoEstimado int
	Nivel          sql.NullInt32
	CompetencyID   int
}

type Exercise struct {
	ID                int
	Descripcion       string
	RespuestaCorrecta sql.NullString
	Pista             sql.NullString
	ImagenURL         sql.NullString
	CompetencyID      int
	CompetencyName    string
	Options           []*ExerciseOption
}

type ExerciseOption struct {
	ID          int
	Letra       string
	Descripcion string
	EsCorrecta  bool
	ExerciseID  int
}

// Reporting row shapes returned by the gateway queries. Averages come
// back as NullFloat64 so LEFT JOIN groups with no observations are
// distinguishable from real zeros until the metric layer clamps them.

type BandCounts struct {
	Total      int
	Advanced   int
	InProgress int
	NeedsHelp  int
}

type ClassroomActivityRow struct {
	Nombre       string
	StudentCount int
	AvgProgress  sql.NullFloat64
}

type AreaAverageRow struct {
	CompetencyID int
	Area         string
	Avg          sql.NullFloat64
	Samples      int
}

type AtRiskRow struct {
	StudentID   int
	ClassroomID int
	Nombre      string
	Apellidos   string
	WorstPct    sql.NullFloat64
}

type CompetencyAverageRow struct {
	CompetencyID int
	Area         string
	Avg          sql.NullFloat64
}

type AnswerEventRow struct {
	AnswerID        int
	Fecha           time.Time
	Actividad       string
	StudentResponse sql.NullString
	CorrectResponse sql.NullString
	Correct         sql.NullBool
	AttachmentURL   sql.NullString
}

type MaterialEventRow struct {
	Fecha     time.Time
	Titulo    string
	Tipo      string
	Completed bool
}
