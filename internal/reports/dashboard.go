// Package reports builds the teacher-facing aggregations: the dashboard
// snapshot and the per-student progress report. It reads through the
// models gateway and never writes; a failed query aborts the whole
// computation so a partially filled report is never returned.
package reports

import (
	"database/sql"
	"errors"
	"sort"

	"algebra-tutor/internal/metrics"
	"algebra-tutor/internal/models"
)

const (
	// MaxTopAreas caps the competency ranking on the dashboard.
	MaxTopAreas = 4
	// MaxAtRisk caps the students-needing-attention shortlist.
	MaxAtRisk = 3
)

type ClassroomActivity struct {
	Nombre       string
	StudentCount int
	AvgProgress  int
}

type AreaScore struct {
	CompetencyID int
	Area         string
	Pct          int
	Samples      int
}

type AtRiskStudent struct {
	StudentID   int
	ClassroomID int
	FullName    string
	WorstPct    int
}

// DashboardSnapshot is the teacher's overview. Band percentages are
// rounded independently and may not sum to exactly 100; the band counts
// always sum to TotalStudents.
type DashboardSnapshot struct {
	TotalStudents int
	Advanced      int
	InProgress    int
	NeedsHelp     int
	PctAdvanced   int
	PctInProgress int
	PctNeedsHelp  int
	Classrooms    []ClassroomActivity
	TopAreas      []AreaScore
	AtRisk        []AtRiskStudent
}

// BuildDashboard computes the overview snapshot for the teacher linked to
// a user account. A user with no docente record gets the zero-valued
// snapshot (the dashboard's defined empty state), not an error.
func BuildDashboard(userID int) (*DashboardSnapshot, error) {
	teacher, err := models.GetTeacherByUserID(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &DashboardSnapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	counts, err := models.GetBandCounts(teacher.ID)
	if err != nil {
		return nil, err
	}
	activity, err := models.GetClassroomActivity(teacher.ID)
	if err != nil {
		return nil, err
	}
	areas, err := models.GetAreaAverages(teacher.ID)
	if err != nil {
		return nil, err
	}
	atRisk, err := models.GetAtRiskStudents(teacher.ID, MaxAtRisk)
	if err != nil {
		return nil, err
	}

	return assembleSnapshot(counts, activity, areas, atRisk), nil
}

// assembleSnapshot is the pure half of the aggregation: same inputs,
// same snapshot.
func assembleSnapshot(counts *models.BandCounts, activity []*models.ClassroomActivityRow,
	areas []*models.AreaAverageRow, atRisk []*models.AtRiskRow) *DashboardSnapshot {

	snap := &DashboardSnapshot{
		TotalStudents: counts.Total,
		Advanced:      counts.Advanced,
		InProgress:    counts.InProgress,
		NeedsHelp:     counts.NeedsHelp,
		PctAdvanced:   metrics.PercentageOf(counts.Advanced, counts.Total),
		PctInProgress: metrics.PercentageOf(counts.InProgress, counts.Total),
		PctNeedsHelp:  metrics.PercentageOf(counts.NeedsHelp, counts.Total),
	}

	for _, row := range activity {
		snap.Classrooms = append(snap.Classrooms, ClassroomActivity{
			Nombre:       row.Nombre,
			StudentCount: row.StudentCount,
			AvgProgress:  metrics.ClampAverage(row.AvgProgress),
		})
	}
	// Most active classrooms first; the input is name-ordered so ties
	// stay alphabetical.
	sort.SliceStable(snap.Classrooms, func(i, j int) bool {
		return snap.Classrooms[i].AvgProgress > snap.Classrooms[j].AvgProgress
	})

	snap.TopAreas = rankTopAreas(areas, MaxTopAreas)

	for _, row := range atRisk {
		if len(snap.AtRisk) == MaxAtRisk {
			break
		}
		snap.AtRisk = append(snap.AtRisk, AtRiskStudent{
			StudentID:   row.StudentID,
			ClassroomID: row.ClassroomID,
			FullName:    row.Nombre + " " + row.Apellidos,
			WorstPct:    metrics.ClampAverage(row.WorstPct),
		})
	}

	return snap
}

// rankTopAreas orders competency areas descending by mean score. Areas
// with no score events show 0 and rank below every scored area; remaining
// ties break by competency id for determinism.
func rankTopAreas(areas []*models.AreaAverageRow, limit int) []AreaScore {
	scored := make([]AreaScore, 0, len(areas))
	for _, row := range areas {
		scored = append(scored, AreaScore{
			CompetencyID: row.CompetencyID,
			Area:         row.Area,
			Pct:          metrics.ClampAverage(row.Avg),
			Samples:      row.Samples,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if (a.Samples > 0) != (b.Samples > 0) {
			return a.Samples > 0
		}
		if a.Pct != b.Pct {
			return a.Pct > b.Pct
		}
		return a.CompetencyID < b.CompetencyID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
