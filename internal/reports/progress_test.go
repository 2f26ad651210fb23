package reports

import (
	"database/sql"
	"testing"
	"time"

	"algebra-tutor/internal/models"
)

func at(day int) time.Time {
	return time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC)
}

func exerciseEntry(day, score int) TimelineEntry {
	return TimelineEntry{
		Fecha: at(day),
		Tipo:  KindExercise,
		Score: sql.NullInt32{Int32: int32(score), Valid: true},
	}
}

func TestMergeTimelineOrder(t *testing.T) {
	answers := []TimelineEntry{exerciseEntry(2, 100), exerciseEntry(9, 0)}
	materials := []TimelineEntry{
		{Fecha: at(5), Tipo: "video", Actividad: "Fracciones"},
	}

	merged := MergeTimeline(answers, materials)
	if len(merged) != 3 {
		t.Fatalf("got %d entries, want 3", len(merged))
	}
	wantDays := []int{9, 5, 2}
	for i, entry := range merged {
		if entry.Fecha.Day() != wantDays[i] {
			t.Errorf("position %d day = %d, want %d", i, entry.Fecha.Day(), wantDays[i])
		}
	}
}

func TestMergeTimelineCap(t *testing.T) {
	var answers []TimelineEntry
	for i := 0; i < 40; i++ {
		answers = append(answers, exerciseEntry(1+i%28, 100))
	}
	var materials []TimelineEntry
	for i := 0; i < 40; i++ {
		materials = append(materials, TimelineEntry{Fecha: at(1 + i%28), Tipo: "pdf"})
	}

	merged := MergeTimeline(answers, materials)
	if len(merged) != TimelineCap {
		t.Fatalf("got %d entries, want cap %d", len(merged), TimelineCap)
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Fecha.After(merged[i-1].Fecha) {
			t.Fatalf("entry %d is newer than entry %d", i, i-1)
		}
	}
}

func TestRecencySeriesPadding(t *testing.T) {
	timeline := []TimelineEntry{
		exerciseEntry(10, 80),
		{Fecha: at(9), Tipo: "video"},
		exerciseEntry(8, 60),
		exerciseEntry(7, 100),
		{Fecha: at(6), Tipo: "pdf", Score: sql.NullInt32{Int32: 100, Valid: true}},
		exerciseEntry(5, 0),
		exerciseEntry(4, 40),
	}

	series := RecencySeries(timeline)
	if len(series) != RecencyCells {
		t.Fatalf("series length = %d, want %d", len(series), RecencyCells)
	}
	want := []int{80, 60, 100, 0, 40}
	for i, w := range want {
		if series[i] != w {
			t.Errorf("series[%d] = %d, want %d", i, series[i], w)
		}
	}
	for i := len(want); i < RecencyCells; i++ {
		if series[i] != 0 {
			t.Errorf("series[%d] = %d, want padded 0", i, series[i])
		}
	}
}

func TestRecencySeriesIgnoresMaterials(t *testing.T) {
	timeline := []TimelineEntry{
		{Fecha: at(3), Tipo: "video", Score: sql.NullInt32{Int32: 100, Valid: true}},
		{Fecha: at(2), Tipo: "pdf"},
	}
	series := RecencySeries(timeline)
	if len(series) != RecencyCells {
		t.Fatalf("series length = %d, want %d", len(series), RecencyCells)
	}
	for i, v := range series {
		if v != 0 {
			t.Errorf("series[%d] = %d, want 0 (materials never score cells)", i, v)
		}
	}
}

func TestRecencySeriesTruncates(t *testing.T) {
	var timeline []TimelineEntry
	for i := 0; i < RecencyCells+10; i++ {
		timeline = append(timeline, exerciseEntry(1+i%28, 50))
	}
	series := RecencySeries(timeline)
	if len(series) != RecencyCells {
		t.Fatalf("series length = %d, want %d", len(series), RecencyCells)
	}
}

func TestRecencySeriesNullScore(t *testing.T) {
	timeline := []TimelineEntry{
		{Fecha: at(1), Tipo: KindExercise, Score: sql.NullInt32{}},
	}
	series := RecencySeries(timeline)
	if series[0] != 0 {
		t.Errorf("unscored exercise cell = %d, want 0", series[0])
	}
}

func TestAnswerEntries(t *testing.T) {
	rows := []*models.AnswerEventRow{
		{
			AnswerID:        11,
			Fecha:           at(1),
			Actividad:       "2x + 3 = 7",
			StudentResponse: sql.NullString{String: "x = 2", Valid: true},
			CorrectResponse: sql.NullString{String: "x = 2", Valid: true},
			Correct:         sql.NullBool{Bool: true, Valid: true},
			AttachmentURL:   sql.NullString{String: "/uploads/work.png", Valid: true},
		},
		{
			AnswerID:  12,
			Fecha:     at(2),
			Actividad: "x^2 = 9",
			Correct:   sql.NullBool{Bool: false, Valid: true},
		},
	}

	entries := answerEntries(rows)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	right := entries[0]
	if right.Tipo != KindExercise {
		t.Errorf("Tipo = %q, want %q", right.Tipo, KindExercise)
	}
	if !right.Score.Valid || right.Score.Int32 != 100 {
		t.Errorf("correct answer score = %+v, want 100", right.Score)
	}
	if !right.HasAttachment || right.AttachmentURL != "/uploads/work.png" {
		t.Errorf("attachment not carried: %+v", right)
	}

	wrong := entries[1]
	if !wrong.Score.Valid || wrong.Score.Int32 != 0 {
		t.Errorf("wrong answer score = %+v, want 0", wrong.Score)
	}
	if wrong.RespuestaEstudiante != "-" || wrong.RespuestaCorrecta != "-" {
		t.Errorf("missing responses should render as dashes: %+v", wrong)
	}
	if wrong.HasAttachment {
		t.Error("answer without attachment flagged as having one")
	}
}

func TestMaterialEntries(t *testing.T) {
	rows := []*models.MaterialEventRow{
		{Fecha: at(1), Titulo: "Video de ecuaciones", Tipo: "video", Completed: true},
		{Fecha: at(2), Titulo: "Guia de geometria", Tipo: "pdf", Completed: false},
	}

	entries := materialEntries(rows)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Score.Valid || entries[0].Score.Int32 != 100 {
		t.Errorf("completed material score = %+v, want 100", entries[0].Score)
	}
	if entries[1].Score.Valid {
		t.Errorf("pending material score = %+v, want NULL", entries[1].Score)
	}
	if entries[0].Tipo != "video" || entries[0].Actividad != "Video de ecuaciones" {
		t.Errorf("material identity not carried: %+v", entries[0])
	}
}

func TestPickClassroomFallback(t *testing.T) {
	classrooms := []*models.ClassroomRef{
		{ID: 4, Nombre: "1A"},
		{ID: 9, Nombre: "1B"},
	}

	if got := pickClassroom(classrooms, 9); got.ID != 9 {
		t.Errorf("owned classroom: got %d, want 9", got.ID)
	}
	if got := pickClassroom(classrooms, 0); got.ID != 4 {
		t.Errorf("no selection: got %d, want first classroom 4", got.ID)
	}
	if got := pickClassroom(classrooms, 77); got.ID != 4 {
		t.Errorf("foreign classroom: got %d, want fallback 4", got.ID)
	}
}

func TestPickStudentFallback(t *testing.T) {
	students := []*models.StudentRef{
		{ID: 21, Nombre: "Ana"},
		{ID: 35, Nombre: "Luis"},
	}

	if got := pickStudent(students, 35); got.ID != 35 {
		t.Errorf("enrolled student: got %d, want 35", got.ID)
	}
	if got := pickStudent(students, 500); got.ID != 21 {
		t.Errorf("foreign student: got %d, want fallback 21", got.ID)
	}
}
