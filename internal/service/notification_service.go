package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
	"github.com/acadsync/acadsync-api/pkg/mq"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type adminLister interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
}

// NotificationService persists notification rows for administrators and
// mirrors each one to the message broker. Delivery is best-effort: failures
// are logged, never propagated to the triggering operation.
type NotificationService struct {
	repo      notificationRepository
	users     adminLister
	publisher eventPublisher
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, users adminLister, publisher eventPublisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, users: users, publisher: publisher, logger: logger}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// RunCompleted notifies administrators that a generation run finished.
func (s *NotificationService) RunCompleted(ctx context.Context, run *models.TimetableRun, stats models.RunStatistics) {
	payload := map[string]interface{}{
		"run_id":        run.ID,
		"academic_year": run.AcademicYear,
		"semester":      run.Semester,
		"statistics":    stats,
	}
	message := fmt.Sprintf("Timetable for %s semester %d generated: %d of %d assignments fully scheduled.",
		run.AcademicYear, run.Semester, stats.FullyScheduled, stats.TotalAssignments)
	s.fanOutToAdmins(ctx, "Timetable generated", message, "timetable_generated", payload)
	s.publish(ctx, mq.QueueTimetableGenerated, payload)
}

// RunPublished notifies administrators that a run went live.
func (s *NotificationService) RunPublished(ctx context.Context, run *models.TimetableRun) {
	payload := map[string]interface{}{
		"run_id":        run.ID,
		"academic_year": run.AcademicYear,
		"semester":      run.Semester,
	}
	message := fmt.Sprintf("Timetable for %s semester %d is now published.", run.AcademicYear, run.Semester)
	s.fanOutToAdmins(ctx, "Timetable published", message, "timetable_published", payload)
	s.publish(ctx, mq.QueueTimetablePublished, payload)
}

// LeaveDecided notifies administrators of a leave decision.
func (s *NotificationService) LeaveDecided(ctx context.Context, leave *models.Leave) {
	payload := map[string]interface{}{
		"leave_id":   leave.ID,
		"faculty_id": leave.FacultyID,
		"status":     leave.Status,
	}
	message := fmt.Sprintf("Leave request %s is %s.", leave.ID, leave.Status)
	s.fanOutToAdmins(ctx, "Leave request decided", message, "leave_decided", payload)
	s.publish(ctx, mq.QueueLeaveDecided, payload)
}

// ReassignmentCompleted notifies administrators of a substitute takeover.
func (s *NotificationService) ReassignmentCompleted(ctx context.Context, overlay *models.ReassignmentOverlay) {
	payload := map[string]interface{}{
		"leave_id":             overlay.LeaveID,
		"original_faculty":     overlay.OriginalFacultyID,
		"substitute_faculty":   overlay.SubstituteFacultyID,
		"affected_assignments": len(overlay.AffectedAssignmentIDs),
	}
	message := fmt.Sprintf("Substitute assigned for %d course assignments.", len(overlay.AffectedAssignmentIDs))
	s.fanOutToAdmins(ctx, "Reassignment completed", message, "reassignment_completed", payload)
	s.publish(ctx, mq.QueueReassignmentDone, payload)
}

func (s *NotificationService) fanOutToAdmins(ctx context.Context, title, message, kind string, payload map[string]interface{}) {
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Warn("failed to list administrators for notification", zap.Error(err))
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal notification payload", zap.Error(err))
		data = []byte("{}")
	}
	for _, admin := range admins {
		n := &models.Notification{
			UserID:  admin.ID,
			Title:   title,
			Message: message,
			Type:    kind,
			Data:    types.JSONText(data),
		}
		if err := s.repo.Create(ctx, n); err != nil {
			s.logger.Warn("failed to persist notification",
				zap.String("user_id", admin.ID),
				zap.String("type", kind),
				zap.Error(err))
		}
	}
}

func (s *NotificationService) publish(ctx context.Context, queue string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, queue, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("queue", queue), zap.Error(err))
	}
}
