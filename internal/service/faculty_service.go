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

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	Create(ctx context.Context, f *models.Faculty) error
	Update(ctx context.Context, f *models.Faculty) error
	Deactivate(ctx context.Context, id string) error
}

// CreateFacultyRequest represents payload for creating faculty members.
type CreateFacultyRequest struct {
	EmployeeID      string  `json:"employee_id" validate:"required,max=50"`
	FullName        string  `json:"full_name" validate:"required,max=200"`
	Email           string  `json:"email" validate:"required,email"`
	Designation     *string `json:"designation" validate:"omitempty,max=100"`
	DepartmentID    *string `json:"department_id"`
	MaxHoursPerWeek *int    `json:"max_hours_per_week" validate:"omitempty,min=1,max=48"`
}

// UpdateFacultyRequest represents payload for updating faculty members.
type UpdateFacultyRequest struct {
	EmployeeID      string  `json:"employee_id" validate:"required,max=50"`
	FullName        string  `json:"full_name" validate:"required,max=200"`
	Email           string  `json:"email" validate:"required,email"`
	Designation     *string `json:"designation" validate:"omitempty,max=100"`
	DepartmentID    *string `json:"department_id"`
	MaxHoursPerWeek *int    `json:"max_hours_per_week" validate:"omitempty,min=1,max=48"`
	Active          *bool   `json:"active"`
}

// FacultyService orchestrates faculty operations.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// List returns faculty plus pagination data.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	faculty, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return faculty, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a faculty member by id.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return f, nil
}

// Create registers a new faculty member.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	f := &models.Faculty{
		EmployeeID:      req.EmployeeID,
		FullName:        req.FullName,
		Email:           req.Email,
		Designation:     req.Designation,
		DepartmentID:    req.DepartmentID,
		MaxHoursPerWeek: req.MaxHoursPerWeek,
		Active:          true,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return f, nil
}

// Update modifies an existing faculty member.
func (s *FacultyService) Update(ctx context.Context, id string, req UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.EmployeeID = req.EmployeeID
	f.FullName = req.FullName
	f.Email = req.Email
	f.Designation = req.Designation
	f.DepartmentID = req.DepartmentID
	f.MaxHoursPerWeek = req.MaxHoursPerWeek
	if req.Active != nil {
		f.Active = *req.Active
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return f, nil
}

// Deactivate removes a faculty member from active scheduling.
func (s *FacultyService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate faculty")
	}
	return nil
}
