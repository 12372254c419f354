// Package export renders timetables to downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/internal/scheduler"
)

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
}

// PDFExporter renders one landscape page per batch: days as columns,
// class hours as rows.
type PDFExporter struct {
	grid *scheduler.Grid
}

// NewPDFExporter creates an exporter over the given weekly grid.
func NewPDFExporter(grid *scheduler.Grid) *PDFExporter {
	return &PDFExporter{grid: grid}
}

type cellKey struct {
	day   int
	start string
}

// Export renders the run's placements grouped by batch.
func (e *PDFExporter) Export(run *models.TimetableRun, placements []models.PlacementDetail) ([]byte, error) {
	byBatch := make(map[string][]models.PlacementDetail)
	var batchOrder []string
	for _, p := range placements {
		if _, seen := byBatch[p.BatchName]; !seen {
			batchOrder = append(batchOrder, p.BatchName)
		}
		byBatch[p.BatchName] = append(byBatch[p.BatchName], p)
	}
	sort.Strings(batchOrder)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 10)

	days := e.grid.Days()
	starts := e.rowStarts()
	const labelWidth = 28.0
	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 20 - labelWidth) / float64(len(days))
	const rowHeight = 16.0

	for _, batchName := range batchOrder {
		cells := make(map[cellKey]models.PlacementDetail)
		for _, p := range byBatch[batchName] {
			cells[cellKey{p.DayOfWeek, p.StartTime}] = p
		}

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s — %s, Semester %d", batchName, run.AcademicYear, run.Semester), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(labelWidth, 8, "Time", "1", 0, "C", true, 0, "")
		for _, day := range days {
			pdf.CellFormat(colWidth, 8, dayNames[day], "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		for _, slot := range starts {
			pdf.SetFont("Helvetica", "B", 8)
			pdf.CellFormat(labelWidth, rowHeight, fmt.Sprintf("%s-%s", slot.Start, slot.End), "1", 0, "C", false, 0, "")
			pdf.SetFont("Helvetica", "", 7)
			for _, day := range days {
				p, ok := cells[cellKey{day, slot.Start}]
				if !ok {
					pdf.CellFormat(colWidth, rowHeight, "", "1", 0, "C", false, 0, "")
					continue
				}
				x, y := pdf.GetXY()
				pdf.Rect(x, y, colWidth, rowHeight, "D")
				pdf.SetXY(x, y+2)
				pdf.MultiCell(colWidth, 4, fmt.Sprintf("%s\n%s\n%s", p.CourseCode, p.FacultyName, p.RoomCode), "", "C", false)
				pdf.SetXY(x+colWidth, y)
			}
			pdf.Ln(-1)
		}
	}

	if len(batchOrder) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 10, "No placements in this run.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// rowStarts merges class slots across days into one ordered row list so
// Saturday's shorter day shares rows with the full weekdays.
func (e *PDFExporter) rowStarts() []scheduler.Slot {
	seen := make(map[string]bool)
	var rows []scheduler.Slot
	for _, day := range e.grid.Days() {
		for _, slot := range e.grid.ClassSlots(day) {
			if !seen[slot.Start] {
				seen[slot.Start] = true
				rows = append(rows, slot)
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Start < rows[j].Start })
	return rows
}
