package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/internal/service"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
	"github.com/acadsync/acadsync-api/pkg/response"
)

// CourseAssignmentHandler wires assignment management to HTTP routes.
type CourseAssignmentHandler struct {
	assignments *service.CourseAssignmentService
}

// NewCourseAssignmentHandler constructs a new CourseAssignmentHandler.
func NewCourseAssignmentHandler(assignments *service.CourseAssignmentService) *CourseAssignmentHandler {
	return &CourseAssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List course assignments
// @Tags CourseAssignments
// @Produce json
// @Param academic_year query string false "Filter by academic year"
// @Param semester query int false "Filter by semester"
// @Param faculty_id query string false "Filter by faculty"
// @Param batch_id query string false "Filter by batch"
// @Success 200 {object} response.Envelope
// @Router /course-assignments [get]
func (h *CourseAssignmentHandler) List(c *gin.Context) {
	filter := models.CourseAssignmentFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		FacultyID:    strings.TrimSpace(c.Query("faculty_id")),
		BatchID:      strings.TrimSpace(c.Query("batch_id")),
		CourseID:     strings.TrimSpace(c.Query("course_id")),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	assignments, pagination, err := h.assignments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get returns an assignment by id.
func (h *CourseAssignmentHandler) Get(c *gin.Context) {
	a, err := h.assignments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, a, nil)
}

// Create links a course, faculty member and batch for a term.
func (h *CourseAssignmentHandler) Create(c *gin.Context) {
	var req service.CreateCourseAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	a, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// Delete removes an assignment.
func (h *CourseAssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
