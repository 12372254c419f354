package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/internal/scheduler"
)

func testRun() *models.TimetableRun {
	return &models.TimetableRun{ID: "run-1", Name: "Odd Semester", AcademicYear: "2026-2027", Semester: 1}
}

func placement(batch, course, faculty, room string, day int, start string) models.PlacementDetail {
	return models.PlacementDetail{
		Placement: models.Placement{
			DayOfWeek: day,
			StartTime: start,
		},
		BatchName:   batch,
		CourseCode:  course,
		FacultyName: faculty,
		RoomCode:    room,
	}
}

func TestPDFExporterRendersDocument(t *testing.T) {
	exporter := NewPDFExporter(scheduler.DefaultGrid())

	out, err := exporter.Export(testRun(), []models.PlacementDetail{
		placement("CSE-A", "CS101", "Dr. Rao", "R-101", 1, "09:00"),
		placement("CSE-A", "CS102", "Dr. Iyer", "R-102", 2, "10:00"),
		placement("CSE-B", "CS101", "Dr. Rao", "R-101", 1, "11:15"),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	// One page per batch: gofpdf records the count in the /Count entry.
	assert.Contains(t, string(out), "/Count 2")
}

func TestPDFExporterHandlesEmptyRun(t *testing.T) {
	exporter := NewPDFExporter(scheduler.DefaultGrid())

	out, err := exporter.Export(testRun(), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, string(out), "/Count 1")
}
