package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/pkg/jobs"
)

type mockGenerator struct {
	requests []GenerateRequest
	result   *GenerateResult
	err      error
}

func (m *mockGenerator) Generate(ctx context.Context, req GenerateRequest, userID string) (*GenerateResult, error) {
	m.requests = append(m.requests, req)
	return m.result, m.err
}

func TestRefreshWatcherHandleJob(t *testing.T) {
	generator := &mockGenerator{result: &GenerateResult{}}
	w := NewRefreshWatcher(nil, nil, generator, nil, 0, 0, nil)

	err := w.handleJob(context.Background(), jobs.Job{
		Type:    "timetable.refresh",
		Payload: models.Term{AcademicYear: "2026-2027", Semester: 1},
	})
	require.NoError(t, err)
	require.Len(t, generator.requests, 1)
	assert.Equal(t, "2026-2027", generator.requests[0].AcademicYear)
	assert.Equal(t, 1, generator.requests[0].Semester)
	// Watcher runs are never forced; the hash check in Generate still applies.
	assert.False(t, generator.requests[0].Force)
}

func TestRefreshWatcherHandleJobRejectsBadPayload(t *testing.T) {
	generator := &mockGenerator{}
	w := NewRefreshWatcher(nil, nil, generator, nil, 0, 0, nil)

	err := w.handleJob(context.Background(), jobs.Job{Type: "timetable.refresh", Payload: "bogus"})
	require.Error(t, err)
	assert.Empty(t, generator.requests)
}
