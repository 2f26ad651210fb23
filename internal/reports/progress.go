package reports

import (
	"database/sql"
	"sort"
	"time"

	"algebra-tutor/internal/metrics"
	"algebra-tutor/internal/models"
)

const (
	// TimelineCap bounds the merged activity history.
	TimelineCap = 50
	// RecencyCells is the fixed width of the recency heatmap (7x4).
	RecencyCells = 28
	// KindExercise tags answer events in the merged timeline; material
	// events carry the material's own type (video, pdf, ...).
	KindExercise = "Ejercicio"
)

// TimelineEntry is the common projection of the two activity streams.
// Score is NULL for material events that were not completed.
type TimelineEntry struct {
	AnswerID            int // 0 for material events
	Fecha               time.Time
	Actividad           string
	Tipo                string
	RespuestaEstudiante string
	RespuestaCorrecta   string
	Score               sql.NullInt32
	HasAttachment       bool
	AttachmentURL       string
}

type CompetencyScore struct {
	CompetencyID int
	Area         string
	Pct          int
}

// ProgressReport is one student's detailed view, scoped to a teacher's
// classroom selection. An empty report (no classrooms, or an empty
// classroom) has zero metrics and empty lists but RecencySeries is still
// exactly RecencyCells wide.
type ProgressReport struct {
	Classrooms        []*models.ClassroomRef
	Students          []*models.StudentRef
	SelectedClassroom int
	SelectedStudent   int
	CurrentClassroom  *models.ClassroomRef
	CurrentStudent    *models.StudentRef
	OverallProgress   int
	OverallBand       metrics.Band
	ByCompetency      []CompetencyScore
	Timeline          []TimelineEntry
	RecencySeries     []int
}

// BuildProgressReport assembles the report for a teacher. classroomID and
// studentID come from the request; zero means "default". A requested
// classroom the teacher does not own, or a student outside the selected
// classroom, silently falls back to the default selection.
func BuildProgressReport(teacherID, classroomID, studentID int) (*ProgressReport, error) {
	report := &ProgressReport{RecencySeries: make([]int, RecencyCells)}

	classrooms, err := models.GetTeacherClassrooms(teacherID)
	if err != nil {
		return nil, err
	}
	report.Classrooms = classrooms
	if len(classrooms) == 0 {
		return report, nil
	}

	report.CurrentClassroom = pickClassroom(classrooms, classroomID)
	report.SelectedClassroom = report.CurrentClassroom.ID

	students, err := models.GetClassroomStudents(report.SelectedClassroom)
	if err != nil {
		return nil, err
	}
	report.Students = students
	if len(students) == 0 {
		return report, nil
	}

	report.CurrentStudent = pickStudent(students, studentID)
	report.SelectedStudent = report.CurrentStudent.ID

	overall, err := models.GetStudentOverallAverage(report.SelectedStudent)
	if err != nil {
		return nil, err
	}
	report.OverallProgress = metrics.ClampAverage(overall)
	report.OverallBand = metrics.BandOf(report.OverallProgress)

	byCompetency, err := models.GetStudentCompetencyAverages(report.SelectedStudent)
	if err != nil {
		return nil, err
	}
	for _, row := range byCompetency {
		report.ByCompetency = append(report.ByCompetency, CompetencyScore{
			CompetencyID: row.CompetencyID,
			Area:         row.Area,
			Pct:          metrics.ClampAverage(row.Avg),
		})
	}

	answers, err := models.GetStudentAnswerEvents(report.SelectedStudent)
	if err != nil {
		return nil, err
	}
	materials, err := models.GetStudentMaterialEvents(report.SelectedStudent)
	if err != nil {
		return nil, err
	}

	report.Timeline = MergeTimeline(answerEntries(answers), materialEntries(materials))
	report.RecencySeries = RecencySeries(report.Timeline)

	return report, nil
}

func pickClassroom(classrooms []*models.ClassroomRef, requested int) *models.ClassroomRef {
	if requested > 0 {
		for _, c := range classrooms {
			if c.ID == requested {
				return c
			}
		}
	}
	return classrooms[0]
}

func pickStudent(students []*models.StudentRef, requested int) *models.StudentRef {
	if requested > 0 {
		for _, s := range students {
			if s.ID == requested {
				return s
			}
		}
	}
	return students[0]
}

// answerEntries projects exercise submissions onto the timeline shape.
// The score is binary: 100 when the selected option was the correct one.
func answerEntries(answers []*models.AnswerEventRow) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(answers))
	for _, a := range answers {
		score := int32(0)
		if a.Correct.Valid && a.Correct.Bool {
			score = 100
		}
		entries = append(entries, TimelineEntry{
			AnswerID:            a.AnswerID,
			Fecha:               a.Fecha,
			Actividad:           a.Actividad,
			Tipo:                KindExercise,
			RespuestaEstudiante: orDash(a.StudentResponse),
			RespuestaCorrecta:   orDash(a.CorrectResponse),
			Score:               sql.NullInt32{Int32: score, Valid: true},
			HasAttachment:       a.AttachmentURL.Valid && a.AttachmentURL.String != "",
			AttachmentURL:       a.AttachmentURL.String,
		})
	}
	return entries
}

// materialEntries projects study-material history onto the timeline
// shape. Completed materials score 100; anything else has no score.
func materialEntries(materials []*models.MaterialEventRow) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(materials))
	for _, m := range materials {
		entry := TimelineEntry{
			Fecha:               m.Fecha,
			Actividad:           m.Titulo,
			Tipo:                m.Tipo,
			RespuestaEstudiante: "-",
			RespuestaCorrecta:   "-",
		}
		if m.Completed {
			entry.Score = sql.NullInt32{Int32: 100, Valid: true}
		}
		entries = append(entries, entry)
	}
	return entries
}

// MergeTimeline combines the two event streams into one list, newest
// first, capped at TimelineCap entries.
func MergeTimeline(streams ...[]TimelineEntry) []TimelineEntry {
	var merged []TimelineEntry
	for _, s := range streams {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Fecha.After(merged[j].Fecha)
	})
	if len(merged) > TimelineCap {
		merged = merged[:TimelineCap]
	}
	return merged
}

// RecencySeries extracts the exercise scores from a merged timeline for
// the heatmap: the first RecencyCells exercise entries (newest first,
// NULL scores as 0), right-padded with zeros to exactly RecencyCells.
func RecencySeries(timeline []TimelineEntry) []int {
	series := make([]int, 0, RecencyCells)
	for _, entry := range timeline {
		if entry.Tipo != KindExercise {
			continue
		}
		if len(series) == RecencyCells {
			break
		}
		if entry.Score.Valid {
			series = append(series, int(entry.Score.Int32))
		} else {
			series = append(series, 0)
		}
	}
	for len(series) < RecencyCells {
		series = append(series, 0)
	}
	return series
}

func orDash(s sql.NullString) string {
	if s.Valid && s.String != "" {
		return s.String
	}
	return "-"
}
