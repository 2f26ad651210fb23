package reports

import (
	"database/sql"
	"testing"

	"algebra-tutor/internal/models"
)

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestAssembleSnapshotBands(t *testing.T) {
	snap := assembleSnapshot(
		&models.BandCounts{Total: 8, Advanced: 2, InProgress: 5, NeedsHelp: 1},
		nil, nil, nil,
	)

	if snap.TotalStudents != 8 {
		t.Fatalf("TotalStudents = %d, want 8", snap.TotalStudents)
	}
	if snap.Advanced+snap.InProgress+snap.NeedsHelp != snap.TotalStudents {
		t.Errorf("band counts %d+%d+%d do not sum to total %d",
			snap.Advanced, snap.InProgress, snap.NeedsHelp, snap.TotalStudents)
	}
	// Each percentage is rounded on its own: 2/8=25, 5/8=63, 1/8=13.
	if snap.PctAdvanced != 25 || snap.PctInProgress != 63 || snap.PctNeedsHelp != 13 {
		t.Errorf("percentages = %d/%d/%d, want 25/63/13",
			snap.PctAdvanced, snap.PctInProgress, snap.PctNeedsHelp)
	}
}

func TestAssembleSnapshotEmpty(t *testing.T) {
	snap := assembleSnapshot(&models.BandCounts{}, nil, nil, nil)

	if snap.TotalStudents != 0 {
		t.Errorf("TotalStudents = %d, want 0", snap.TotalStudents)
	}
	if snap.PctAdvanced != 0 || snap.PctInProgress != 0 || snap.PctNeedsHelp != 0 {
		t.Errorf("empty cohort percentages = %d/%d/%d, want all 0",
			snap.PctAdvanced, snap.PctInProgress, snap.PctNeedsHelp)
	}
	if len(snap.Classrooms) != 0 || len(snap.TopAreas) != 0 || len(snap.AtRisk) != 0 {
		t.Error("empty snapshot should have empty lists")
	}
}

func TestAssembleSnapshotClassroomOrder(t *testing.T) {
	rows := []*models.ClassroomActivityRow{
		{Nombre: "1A", StudentCount: 10, AvgProgress: nullFloat(40)},
		{Nombre: "1B", StudentCount: 12, AvgProgress: nullFloat(85.4)},
		{Nombre: "2A", StudentCount: 8, AvgProgress: sql.NullFloat64{}},
	}
	snap := assembleSnapshot(&models.BandCounts{}, rows, nil, nil)

	if len(snap.Classrooms) != 3 {
		t.Fatalf("got %d classrooms, want 3", len(snap.Classrooms))
	}
	want := []int{85, 40, 0}
	for i, c := range snap.Classrooms {
		if c.AvgProgress != want[i] {
			t.Errorf("classroom %d AvgProgress = %d, want %d", i, c.AvgProgress, want[i])
		}
	}
	if snap.Classrooms[2].Nombre != "2A" {
		t.Errorf("no-activity classroom should sort last, got %q", snap.Classrooms[2].Nombre)
	}
}

func TestRankTopAreas(t *testing.T) {
	rows := []*models.AreaAverageRow{
		{CompetencyID: 1, Area: "Operaciones basicas", Avg: nullFloat(55), Samples: 4},
		{CompetencyID: 2, Area: "Ecuaciones", Avg: sql.NullFloat64{}, Samples: 0},
		{CompetencyID: 3, Area: "Funciones", Avg: nullFloat(90), Samples: 2},
		{CompetencyID: 4, Area: "Geometria", Avg: nullFloat(90), Samples: 7},
	}

	areas := rankTopAreas(rows, MaxTopAreas)
	if len(areas) != 4 {
		t.Fatalf("got %d areas, want 4", len(areas))
	}
	// Ties on percentage break by competency id; zero-event areas go last.
	wantOrder := []int{3, 4, 1, 2}
	for i, a := range areas {
		if a.CompetencyID != wantOrder[i] {
			t.Errorf("position %d: competency %d, want %d", i, a.CompetencyID, wantOrder[i])
		}
	}
	if areas[3].Pct != 0 {
		t.Errorf("zero-event area Pct = %d, want 0", areas[3].Pct)
	}
}

func TestRankTopAreasCap(t *testing.T) {
	rows := []*models.AreaAverageRow{
		{CompetencyID: 1, Area: "a", Avg: nullFloat(10), Samples: 1},
		{CompetencyID: 2, Area: "b", Avg: nullFloat(20), Samples: 1},
		{CompetencyID: 3, Area: "c", Avg: nullFloat(30), Samples: 1},
		{CompetencyID: 4, Area: "d", Avg: nullFloat(40), Samples: 1},
		{CompetencyID: 5, Area: "e", Avg: nullFloat(50), Samples: 1},
	}
	areas := rankTopAreas(rows, MaxTopAreas)
	if len(areas) != MaxTopAreas {
		t.Fatalf("got %d areas, want %d", len(areas), MaxTopAreas)
	}
	if areas[0].CompetencyID != 5 {
		t.Errorf("best area competency = %d, want 5", areas[0].CompetencyID)
	}
}

func TestAssembleSnapshotAtRisk(t *testing.T) {
	rows := []*models.AtRiskRow{
		{StudentID: 1, ClassroomID: 7, Nombre: "Ana", Apellidos: "Diaz", WorstPct: nullFloat(10)},
		{StudentID: 2, ClassroomID: 7, Nombre: "Luis", Apellidos: "Rojas", WorstPct: nullFloat(20)},
		{StudentID: 3, ClassroomID: 8, Nombre: "Eva", Apellidos: "Soto", WorstPct: nullFloat(30)},
		{StudentID: 4, ClassroomID: 8, Nombre: "Max", Apellidos: "Paz", WorstPct: nullFloat(35)},
	}
	snap := assembleSnapshot(&models.BandCounts{}, nil, nil, rows)

	if len(snap.AtRisk) != MaxAtRisk {
		t.Fatalf("got %d at-risk students, want %d", len(snap.AtRisk), MaxAtRisk)
	}
	first := snap.AtRisk[0]
	if first.StudentID != 1 || first.WorstPct != 10 || first.FullName != "Ana Diaz" {
		t.Errorf("first at-risk = %+v, want student 1 (Ana Diaz) at 10", first)
	}
}
