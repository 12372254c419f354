package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acadsync/acadsync-api/internal/service"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
	"github.com/acadsync/acadsync-api/pkg/response"
)

// TimetableHandler wires timetable generation and publication to HTTP routes.
type TimetableHandler struct {
	timetables *service.TimetableService
}

// NewTimetableHandler constructs a new TimetableHandler.
func NewTimetableHandler(timetables *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables}
}

// Generate godoc
// @Summary Generate a timetable for one term
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.GenerateRequest true "Generation request"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.timetables.Generate(c.Request.Context(), req, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Skipped {
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	response.Created(c, result)
}

// Regenerate forces a fresh run regardless of the reference-data hash.
func (h *TimetableHandler) Regenerate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	req.Force = true
	result, err := h.timetables.Generate(c.Request.Context(), req, userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListRuns godoc
// @Summary List generation runs for a term
// @Tags Timetable
// @Produce json
// @Param academic_year query string true "Academic year"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /timetable/runs [get]
func (h *TimetableHandler) ListRuns(c *gin.Context) {
	academicYear, semester, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	runs, err := h.timetables.ListRuns(c.Request.Context(), academicYear, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

// GetRun returns one generation run.
func (h *TimetableHandler) GetRun(c *gin.Context) {
	run, err := h.timetables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// Placements godoc
// @Summary List a run's placements with reassignment overlays applied
// @Tags Timetable
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/runs/{id}/placements [get]
func (h *TimetableHandler) Placements(c *gin.Context) {
	placements, err := h.timetables.Placements(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placements, nil)
}

// Publish marks a completed run as the live timetable.
func (h *TimetableHandler) Publish(c *gin.Context) {
	run, err := h.timetables.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// Active returns the display run for a term.
func (h *TimetableHandler) Active(c *gin.Context) {
	academicYear, semester, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	run, err := h.timetables.ActiveRun(c.Request.Context(), academicYear, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// ExportPDF streams a run's weekly grid as a PDF document.
func (h *TimetableHandler) ExportPDF(c *gin.Context) {
	runID := c.Param("id")
	data, err := h.timetables.ExportPDF(c.Request.Context(), runID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="timetable-%s.pdf"`, runID))
	c.Data(http.StatusOK, "application/pdf", data)
}

func termFromQuery(c *gin.Context) (string, int, error) {
	academicYear := c.Query("academic_year")
	if academicYear == "" {
		return "", 0, appErrors.Clone(appErrors.ErrValidation, "academic_year is required")
	}
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester < 1 {
		return "", 0, appErrors.Clone(appErrors.ErrValidation, "semester must be a positive integer")
	}
	return academicYear, semester, nil
}
