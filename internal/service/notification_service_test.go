package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/pkg/mq"
)

type mockNotificationRepo struct {
	created []models.Notification
	err     error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return m.created, m.err
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	return m.err
}

type mockAdminLister struct {
	admins []models.User
	err    error
}

func (m *mockAdminLister) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return m.admins, m.err
}

type mockPublisher struct {
	queues []string
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	m.queues = append(m.queues, queue)
	return m.err
}

func TestNotificationServiceFansOutToAdmins(t *testing.T) {
	repo := &mockNotificationRepo{}
	users := &mockAdminLister{admins: []models.User{{ID: "admin-1"}, {ID: "admin-2"}}}
	pub := &mockPublisher{}
	svc := NewNotificationService(repo, users, pub, zap.NewNop())

	run := &models.TimetableRun{ID: "run-1", AcademicYear: "2026-2027", Semester: 1}
	svc.RunCompleted(context.Background(), run, models.RunStatistics{TotalAssignments: 4, FullyScheduled: 3})

	require.Len(t, repo.created, 2)
	assert.Equal(t, "admin-1", repo.created[0].UserID)
	assert.Equal(t, "admin-2", repo.created[1].UserID)
	assert.Equal(t, "timetable_generated", repo.created[0].Type)
	assert.Contains(t, repo.created[0].Message, "3 of 4")
	assert.Equal(t, []string{mq.QueueTimetableGenerated}, pub.queues)
}

func TestNotificationServiceSkipsBrokerWhenDisabled(t *testing.T) {
	repo := &mockNotificationRepo{}
	users := &mockAdminLister{admins: []models.User{{ID: "admin-1"}}}
	svc := NewNotificationService(repo, users, nil, zap.NewNop())

	svc.LeaveDecided(context.Background(), &models.Leave{ID: "l1", FacultyID: "f1", Status: models.LeaveApproved})

	require.Len(t, repo.created, 1)
	assert.Equal(t, "leave_decided", repo.created[0].Type)
}

func TestNotificationServiceSwallowsDeliveryFailures(t *testing.T) {
	repo := &mockNotificationRepo{err: errors.New("insert failed")}
	users := &mockAdminLister{admins: []models.User{{ID: "admin-1"}}}
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := NewNotificationService(repo, users, pub, zap.NewNop())

	// Must not panic or propagate: notification delivery is best-effort.
	svc.RunPublished(context.Background(), &models.TimetableRun{ID: "run-1", AcademicYear: "2026-2027", Semester: 2})

	assert.Empty(t, repo.created)
	assert.Equal(t, []string{mq.QueueTimetablePublished}, pub.queues)
}
