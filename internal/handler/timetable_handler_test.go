package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// The bind and query validation paths return before the service is touched,
// so a handler over a nil service exercises them safely.

func recordRequest(t *testing.T, handle gin.HandlerFunc, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handle(c)
	return w
}

func TestTimetableHandlerGenerateRejectsMalformedBody(t *testing.T) {
	h := NewTimetableHandler(nil)

	w := recordRequest(t, h.Generate, http.MethodPost, "/timetable/generate", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestTimetableHandlerListRunsRequiresTerm(t *testing.T) {
	h := NewTimetableHandler(nil)

	w := recordRequest(t, h.ListRuns, http.MethodGet, "/timetable/runs", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "academic_year is required")
}

func TestTimetableHandlerListRunsRejectsBadSemester(t *testing.T) {
	h := NewTimetableHandler(nil)

	w := recordRequest(t, h.ListRuns, http.MethodGet, "/timetable/runs?academic_year=2026-2027&semester=zero", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "semester must be a positive integer")
}

func TestLeaveHandlerCreateRejectsMalformedBody(t *testing.T) {
	h := NewLeaveHandler(nil)

	w := recordRequest(t, h.Create, http.MethodPost, "/leaves", "[]")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
