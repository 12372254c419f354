package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
)

type leaveRepository interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.Leave, int, error)
	FindByID(ctx context.Context, id string) (*models.Leave, error)
	Create(ctx context.Context, leave *models.Leave) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.LeaveStatus, approvedBy string) error
	FindOverlayByLeave(ctx context.Context, leaveID string) (*models.ReassignmentOverlay, error)
	CreateOverlayWithTx(ctx context.Context, tx *sqlx.Tx, overlay *models.ReassignmentOverlay) error
	BeginTxx(ctx context.Context) (*sqlx.Tx, error)
}

type facultyReader interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ListActive(ctx context.Context) ([]models.Faculty, error)
}

type reassignableAssignments interface {
	ListByFacultyAndTerm(ctx context.Context, facultyID, academicYear string, semester int) ([]models.CourseAssignmentDetail, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, a *models.CourseAssignment) error
}

type leaveNotifier interface {
	LeaveDecided(ctx context.Context, leave *models.Leave)
	ReassignmentCompleted(ctx context.Context, overlay *models.ReassignmentOverlay)
}

// CreateLeaveRequest files a leave request for a faculty member.
type CreateLeaveRequest struct {
	FacultyID           string    `json:"faculty_id" validate:"required"`
	LeaveType           string    `json:"leave_type" validate:"required,max=50"`
	StartDate           time.Time `json:"start_date" validate:"required"`
	EndDate             time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Reason              *string   `json:"reason" validate:"omitempty,max=1000"`
	SubstituteFacultyID *string   `json:"substitute_faculty_id"`
}

// ApproveLeaveRequest approves a leave and scopes the reassignment to one
// term. The substitute override beats the department-match lookup.
type ApproveLeaveRequest struct {
	AcademicYear        string `json:"academic_year" validate:"required"`
	Semester            int    `json:"semester" validate:"required,min=1,max=12"`
	SubstituteFacultyID string `json:"substitute_faculty_id"`
}

// LeaveDecision reports the outcome of an approval or rejection.
type LeaveDecision struct {
	Leave      *models.Leave               `json:"leave"`
	Overlay    *models.ReassignmentOverlay `json:"overlay,omitempty"`
	Reassigned int                         `json:"reassigned_assignments"`
}

// LeaveService manages the leave lifecycle and the reassignment engine.
type LeaveService struct {
	leaves      leaveRepository
	faculty     facultyReader
	assignments reassignableAssignments
	notifier    leaveNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(
	leaves leaveRepository,
	faculty facultyReader,
	assignments reassignableAssignments,
	notifier leaveNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{
		leaves:      leaves,
		faculty:     faculty,
		assignments: assignments,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
	}
}

// List returns leave requests plus pagination data.
func (s *LeaveService) List(ctx context.Context, filter models.LeaveFilter) ([]models.Leave, *models.Pagination, error) {
	leaves, total, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leaves")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return leaves, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a leave request by id.
func (s *LeaveService) Get(ctx context.Context, id string) (*models.Leave, error) {
	leave, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave")
	}
	return leave, nil
}

// Create files a leave request in pending state.
func (s *LeaveService) Create(ctx context.Context, req CreateLeaveRequest) (*models.Leave, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave request")
	}
	if _, err := s.faculty.FindByID(ctx, req.FacultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	leave := &models.Leave{
		FacultyID:           req.FacultyID,
		LeaveType:           req.LeaveType,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		Reason:              req.Reason,
		SubstituteFacultyID: req.SubstituteFacultyID,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave")
	}
	return leave, nil
}

// Reject declines a pending leave request.
func (s *LeaveService) Reject(ctx context.Context, id, approverID string) (*models.Leave, error) {
	leave, err := s.pendingLeave(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.leaves.UpdateStatus(ctx, nil, id, models.LeaveRejected, approverID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject leave")
	}
	leave.Status = models.LeaveRejected
	leave.ApprovedBy = &approverID
	if s.notifier != nil {
		s.notifier.LeaveDecided(ctx, leave)
	}
	return leave, nil
}

// Approve approves a pending leave and runs the reassignment engine: the
// substitute inherits duplicates of every assignment the original teaches
// in the given term, and an overlay records the mapping. When no substitute
// can be found the leave stays approved, the timetable is untouched and
// ErrSubstituteNotFound is returned alongside the decision.
func (s *LeaveService) Approve(ctx context.Context, id, approverID string, req ApproveLeaveRequest) (*LeaveDecision, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval request")
	}

	leave, err := s.pendingLeave(ctx, id)
	if err != nil {
		return nil, err
	}
	if overlay, err := s.leaves.FindOverlayByLeave(ctx, id); err == nil && overlay != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave has already been reassigned")
	}

	assignments, err := s.assignments.ListByFacultyAndTerm(ctx, leave.FacultyID, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	substituteID := req.SubstituteFacultyID
	if substituteID == "" && leave.SubstituteFacultyID != nil {
		substituteID = *leave.SubstituteFacultyID
	}
	if substituteID == "" {
		substituteID, err = s.findSubstitute(ctx, leave.FacultyID, assignments)
		if err != nil {
			// Approve without reassignment; the caller decides whether to
			// retry with an explicit substitute.
			if updateErr := s.leaves.UpdateStatus(ctx, nil, id, models.LeaveApproved, approverID); updateErr != nil {
				return nil, appErrors.Wrap(updateErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve leave")
			}
			leave.Status = models.LeaveApproved
			leave.ApprovedBy = &approverID
			s.logger.Warn("leave approved without substitute",
				zap.String("leave_id", id),
				zap.String("faculty_id", leave.FacultyID))
			if s.notifier != nil {
				s.notifier.LeaveDecided(ctx, leave)
			}
			return &LeaveDecision{Leave: leave}, err
		}
	} else if err := s.verifySubstitute(ctx, substituteID, leave.FacultyID); err != nil {
		return nil, err
	}

	overlay := &models.ReassignmentOverlay{
		LeaveID:             id,
		OriginalFacultyID:   leave.FacultyID,
		SubstituteFacultyID: substituteID,
	}

	tx, err := s.leaves.BeginTxx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin approval")
	}
	if err := s.leaves.UpdateStatus(ctx, tx, id, models.LeaveApproved, approverID); err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve leave")
	}
	for _, a := range assignments {
		duplicate := &models.CourseAssignment{
			CourseID:     a.CourseID,
			FacultyID:    substituteID,
			BatchID:      a.BatchID,
			AcademicYear: a.AcademicYear,
			Semester:     a.Semester,
			HoursPerWeek: a.HoursPerWeek,
		}
		if err := s.assignments.CreateWithTx(ctx, tx, duplicate); err != nil {
			_ = tx.Rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate assignment")
		}
		overlay.AffectedAssignmentIDs = append(overlay.AffectedAssignmentIDs, a.ID)
	}
	if err := s.leaves.CreateOverlayWithTx(ctx, tx, overlay); err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record reassignment")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit approval")
	}

	leave.Status = models.LeaveApproved
	leave.ApprovedBy = &approverID

	s.logger.Info("leave approved with reassignment",
		zap.String("leave_id", id),
		zap.String("original_faculty", leave.FacultyID),
		zap.String("substitute_faculty", substituteID),
		zap.Int("assignments", len(overlay.AffectedAssignmentIDs)))

	if s.notifier != nil {
		s.notifier.LeaveDecided(ctx, leave)
		s.notifier.ReassignmentCompleted(ctx, overlay)
	}
	return &LeaveDecision{Leave: leave, Overlay: overlay, Reassigned: len(overlay.AffectedAssignmentIDs)}, nil
}

func (s *LeaveService) pendingLeave(ctx context.Context, id string) (*models.Leave, error) {
	leave, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != models.LeavePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request has already been decided")
	}
	return leave, nil
}

// findSubstitute picks the first active faculty member, in listing order,
// who shares a department with any course the original teaches in the term.
func (s *LeaveService) findSubstitute(ctx context.Context, originalID string, assignments []models.CourseAssignmentDetail) (string, error) {
	departments := make(map[string]bool)
	for _, a := range assignments {
		if a.CourseDepartmentID != nil {
			departments[*a.CourseDepartmentID] = true
		}
	}
	if len(departments) == 0 {
		return "", appErrors.ErrSubstituteNotFound
	}
	candidates, err := s.faculty.ListActive(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	for _, f := range candidates {
		if f.ID == originalID || f.DepartmentID == nil {
			continue
		}
		if departments[*f.DepartmentID] {
			return f.ID, nil
		}
	}
	return "", appErrors.ErrSubstituteNotFound
}

func (s *LeaveService) verifySubstitute(ctx context.Context, substituteID, originalID string) error {
	if substituteID == originalID {
		return appErrors.Clone(appErrors.ErrValidation, "substitute cannot be the faculty member on leave")
	}
	f, err := s.faculty.FindByID(ctx, substituteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "substitute faculty not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute")
	}
	if !f.Active {
		return appErrors.Clone(appErrors.ErrValidation, "substitute faculty is inactive")
	}
	return nil
}
