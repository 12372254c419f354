package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
)

type courseAssignmentRepository interface {
	List(ctx context.Context, filter models.CourseAssignmentFilter) ([]models.CourseAssignmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseAssignment, error)
	Create(ctx context.Context, a *models.CourseAssignment) error
	Delete(ctx context.Context, id string) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type facultyFinder interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type batchFinder interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// CreateCourseAssignmentRequest represents payload for assigning a course.
type CreateCourseAssignmentRequest struct {
	CourseID     string `json:"course_id" validate:"required"`
	FacultyID    string `json:"faculty_id" validate:"required"`
	BatchID      string `json:"batch_id" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required,max=20"`
	Semester     int    `json:"semester" validate:"required,min=1,max=12"`
	HoursPerWeek int    `json:"hours_per_week" validate:"omitempty,min=1,max=20"`
}

// CourseAssignmentService orchestrates the course-faculty-batch mapping
// that feeds the scheduler.
type CourseAssignmentService struct {
	repo      courseAssignmentRepository
	courses   courseFinder
	faculty   facultyFinder
	batches   batchFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseAssignmentService constructs a CourseAssignmentService.
func NewCourseAssignmentService(
	repo courseAssignmentRepository,
	courses courseFinder,
	faculty facultyFinder,
	batches batchFinder,
	validate *validator.Validate,
	logger *zap.Logger,
) *CourseAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseAssignmentService{
		repo:      repo,
		courses:   courses,
		faculty:   faculty,
		batches:   batches,
		validator: validate,
		logger:    logger,
	}
}

// List returns assignments plus pagination data.
func (s *CourseAssignmentService) List(ctx context.Context, filter models.CourseAssignmentFilter) ([]models.CourseAssignmentDetail, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return assignments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an assignment by id.
func (s *CourseAssignmentService) Get(ctx context.Context, id string) (*models.CourseAssignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return a, nil
}

// Create links a course, faculty member and batch for one term. All three
// references must exist.
func (s *CourseAssignmentService) Create(ctx context.Context, req CreateCourseAssignmentRequest) (*models.CourseAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, refError(err, "course not found")
	}
	if _, err := s.faculty.FindByID(ctx, req.FacultyID); err != nil {
		return nil, refError(err, "faculty member not found")
	}
	if _, err := s.batches.FindByID(ctx, req.BatchID); err != nil {
		return nil, refError(err, "batch not found")
	}

	a := &models.CourseAssignment{
		CourseID:     req.CourseID,
		FacultyID:    req.FacultyID,
		BatchID:      req.BatchID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		HoursPerWeek: req.HoursPerWeek,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return a, nil
}

// Delete removes an assignment, shrinking the scheduler's demand.
func (s *CourseAssignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

func refError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify reference")
}
