package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/internal/scheduler"
	appErrors "github.com/acadsync/acadsync-api/pkg/errors"
)

type timetableRepository interface {
	BeginTxx(ctx context.Context) (*sqlx.Tx, error)
	CreateRun(ctx context.Context, run *models.TimetableRun) error
	FindRun(ctx context.Context, id string) (*models.TimetableRun, error)
	ListRuns(ctx context.Context, academicYear string, semester int) ([]models.TimetableRun, error)
	CompleteRun(ctx context.Context, exec sqlx.ExtContext, id, generationLog string) error
	FailRun(ctx context.Context, id, generationLog string) error
	PublishRun(ctx context.Context, id string) error
	ActiveRun(ctx context.Context, academicYear string, semester int) (*models.TimetableRun, error)
	BulkCreatePlacements(ctx context.Context, tx *sqlx.Tx, placements []models.Placement) error
	ListPlacements(ctx context.Context, runID string) ([]models.PlacementDetail, error)
}

type assignmentTermReader interface {
	ListByTerm(ctx context.Context, academicYear string, semester int) ([]models.CourseAssignmentDetail, error)
}

type activeRoomReader interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type overlayReader interface {
	ListOverlays(ctx context.Context) ([]models.ReassignmentOverlay, error)
}

type facultyNameReader interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type timetableExporter interface {
	Export(run *models.TimetableRun, placements []models.PlacementDetail) ([]byte, error)
}

type generationObserver interface {
	ObserveGeneration(outcome string, duration time.Duration, placements, conflicts int)
}

type runNotifier interface {
	RunCompleted(ctx context.Context, run *models.TimetableRun, stats models.RunStatistics)
	RunPublished(ctx context.Context, run *models.TimetableRun)
}

// GenerateRequest triggers a timetable generation run.
type GenerateRequest struct {
	AcademicYear string            `json:"academic_year" validate:"required"`
	Semester     int               `json:"semester" validate:"required,min=1,max=12"`
	Name         string            `json:"name" validate:"omitempty,max=200"`
	Force        bool              `json:"force"`
	Options      *scheduler.Config `json:"options"`
}

// GenerateResult reports the outcome of a generation request.
type GenerateResult struct {
	Run       *models.TimetableRun `json:"run"`
	Stats     models.RunStatistics `json:"statistics"`
	Conflicts []scheduler.Conflict `json:"conflicts,omitempty"`
	Skipped   bool                 `json:"skipped"`
}

// TimetableService orchestrates generation runs, publication and exports.
// Generation for the same term is serialized through per-term locks so two
// concurrent requests never interleave their run records.
type TimetableService struct {
	runs        timetableRepository
	assignments assignmentTermReader
	rooms       activeRoomReader
	overlays    overlayReader
	faculty     facultyNameReader
	exporter    timetableExporter
	notifier    runNotifier
	cache       *redis.Client
	grid        *scheduler.Grid
	engineCfg   scheduler.Config
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     generationObserver

	mu        sync.Mutex
	termLocks map[string]*sync.Mutex
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(
	runs timetableRepository,
	assignments assignmentTermReader,
	rooms activeRoomReader,
	overlays overlayReader,
	faculty facultyNameReader,
	exporter timetableExporter,
	notifier runNotifier,
	cache *redis.Client,
	grid *scheduler.Grid,
	engineCfg scheduler.Config,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if grid == nil {
		grid = scheduler.DefaultGrid()
	}
	return &TimetableService{
		runs:        runs,
		assignments: assignments,
		rooms:       rooms,
		overlays:    overlays,
		faculty:     faculty,
		exporter:    exporter,
		notifier:    notifier,
		cache:       cache,
		grid:        grid,
		engineCfg:   engineCfg,
		validator:   validate,
		logger:      logger,
		termLocks:   make(map[string]*sync.Mutex),
	}
}

// WithMetrics attaches generation instrumentation.
func (s *TimetableService) WithMetrics(m generationObserver) *TimetableService {
	s.metrics = m
	return s
}

func termKey(academicYear string, semester int) string {
	return fmt.Sprintf("%s:%d", academicYear, semester)
}

func refHashKey(academicYear string, semester int) string {
	return fmt.Sprintf("scheduler:refhash:%s:%d", academicYear, semester)
}

func (s *TimetableService) termLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.termLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.termLocks[key] = lock
	}
	return lock
}

// Generate runs the scheduler for one term and persists the outcome. When
// the reference data hash is unchanged since the last successful run and
// Force is not set, the existing run is returned without regenerating.
func (s *TimetableService) Generate(ctx context.Context, req GenerateRequest, userID string) (*GenerateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}

	lock := s.termLock(termKey(req.AcademicYear, req.Semester))
	lock.Lock()
	defer lock.Unlock()

	assignments, err := s.assignments.ListByTerm(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course assignments")
	}
	if len(assignments) == 0 {
		return nil, appErrors.ErrNoAssignments
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.ErrNoRooms
	}

	hash := referenceHash(assignments, rooms)
	if !req.Force {
		if existing := s.unchangedRun(ctx, req.AcademicYear, req.Semester, hash); existing != nil {
			s.logger.Info("reference data unchanged, reusing run",
				zap.String("run_id", existing.ID),
				zap.String("academic_year", req.AcademicYear),
				zap.Int("semester", req.Semester))
			return &GenerateResult{Run: existing, Skipped: true}, nil
		}
	}

	run := &models.TimetableRun{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
	}
	if run.Name == "" {
		run.Name = fmt.Sprintf("Timetable %s S%d %s", req.AcademicYear, req.Semester, time.Now().UTC().Format("2006-01-02 15:04"))
	}
	if userID != "" {
		run.GeneratedBy = &userID
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable run")
	}

	started := time.Now()
	engine := scheduler.New(s.grid, rooms, s.effectiveConfig(req.Options))
	result := engine.Run(assignments)

	placements := make([]models.Placement, 0, len(result.Placements))
	for _, p := range result.Placements {
		placements = append(placements, models.Placement{
			RunID:              run.ID,
			CourseAssignmentID: p.AssignmentID,
			FacultyID:          p.FacultyID,
			BatchID:            p.BatchID,
			RoomID:             p.RoomID,
			DayOfWeek:          p.Day,
			StartTime:          p.Start,
			EndTime:            p.End,
			Filler:             p.Filler,
		})
	}

	if err := s.persist(ctx, run, placements, result.Summary()); err != nil {
		if s.metrics != nil {
			s.metrics.ObserveGeneration("failed", time.Since(started), 0, len(result.Conflicts))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration("completed", time.Since(started), len(placements), len(result.Conflicts))
	}

	run.Status = models.RunCompleted
	log := result.Summary()
	run.GenerationLog = &log

	if s.cache != nil {
		if err := s.cache.Set(ctx, refHashKey(req.AcademicYear, req.Semester), hash, 0).Err(); err != nil {
			s.logger.Warn("failed to store reference hash", zap.Error(err))
		}
	}

	s.logger.Info("timetable generated",
		zap.String("run_id", run.ID),
		zap.String("academic_year", req.AcademicYear),
		zap.Int("semester", req.Semester),
		zap.Int("placements", len(placements)),
		zap.Int("conflicts", len(result.Conflicts)))

	if s.notifier != nil {
		s.notifier.RunCompleted(ctx, run, result.Stats)
	}

	return &GenerateResult{Run: run, Stats: result.Stats, Conflicts: result.Conflicts}, nil
}

// persist writes placements and the completed status in one transaction.
// Any failure marks the run failed so it never lingers in `generating`.
func (s *TimetableService) persist(ctx context.Context, run *models.TimetableRun, placements []models.Placement, generationLog string) error {
	tx, err := s.runs.BeginTxx(ctx)
	if err != nil {
		s.markFailed(ctx, run.ID, err)
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	if err := s.runs.BulkCreatePlacements(ctx, tx, placements); err != nil {
		_ = tx.Rollback()
		s.markFailed(ctx, run.ID, err)
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	if err := s.runs.CompleteRun(ctx, tx, run.ID, generationLog); err != nil {
		_ = tx.Rollback()
		s.markFailed(ctx, run.ID, err)
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	if err := tx.Commit(); err != nil {
		s.markFailed(ctx, run.ID, err)
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return nil
}

func (s *TimetableService) markFailed(ctx context.Context, runID string, cause error) {
	if err := s.runs.FailRun(ctx, runID, cause.Error()); err != nil {
		s.logger.Error("failed to mark run failed", zap.String("run_id", runID), zap.Error(err))
	}
}

// unchangedRun returns the latest completed or published run when the
// stored reference hash matches the current one.
func (s *TimetableService) unchangedRun(ctx context.Context, academicYear string, semester int, hash string) *models.TimetableRun {
	if s.cache == nil {
		return nil
	}
	stored, err := s.cache.Get(ctx, refHashKey(academicYear, semester)).Result()
	if err != nil || stored != hash {
		return nil
	}
	run, err := s.runs.ActiveRun(ctx, academicYear, semester)
	if err != nil {
		return nil
	}
	if run.Status != models.RunCompleted && run.Status != models.RunPublished {
		return nil
	}
	return run
}

func (s *TimetableService) effectiveConfig(override *scheduler.Config) scheduler.Config {
	cfg := s.engineCfg
	cfg.FillGaps = true
	if override == nil {
		return cfg
	}
	if override.Algorithm != "" {
		cfg.Algorithm = override.Algorithm
	}
	if override.MaxAttempts > 0 {
		cfg.MaxAttempts = override.MaxAttempts
	}
	if override.RoomCapacityBuffer > 0 {
		cfg.RoomCapacityBuffer = override.RoomCapacityBuffer
	}
	return cfg
}

// referenceHash fingerprints the scheduler's inputs. Both slices arrive in
// stable database order, so identical data always hashes identically.
func referenceHash(assignments []models.CourseAssignmentDetail, rooms []models.Room) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(assignments)
	_ = enc.Encode(rooms)
	return hex.EncodeToString(h.Sum(nil))
}

// Publish marks a completed run as the live timetable for its term.
func (s *TimetableService) Publish(ctx context.Context, runID string) (*models.TimetableRun, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == models.RunPublished {
		return run, nil
	}
	if run.Status != models.RunCompleted {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot publish run in status %s", run.Status))
	}
	if err := s.runs.PublishRun(ctx, runID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish run")
	}
	run.Status = models.RunPublished
	now := time.Now().UTC()
	run.PublishedAt = &now

	if s.notifier != nil {
		s.notifier.RunPublished(ctx, run)
	}
	return run, nil
}

// Get returns a run by id.
func (s *TimetableService) Get(ctx context.Context, runID string) (*models.TimetableRun, error) {
	return s.findRun(ctx, runID)
}

// ListRuns returns all runs for a term, newest first.
func (s *TimetableService) ListRuns(ctx context.Context, academicYear string, semester int) ([]models.TimetableRun, error) {
	runs, err := s.runs.ListRuns(ctx, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list runs")
	}
	return runs, nil
}

// ActiveRun returns the display run for a term.
func (s *TimetableService) ActiveRun(ctx context.Context, academicYear string, semester int) (*models.TimetableRun, error) {
	run, err := s.runs.ActiveRun(ctx, academicYear, semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable run for the specified term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active run")
	}
	return run, nil
}

// Placements returns a run's placements with reassignment overlays applied:
// hours taught by a faculty member on approved leave are shown under the
// substitute without touching the stored rows.
func (s *TimetableService) Placements(ctx context.Context, runID string) ([]models.PlacementDetail, error) {
	if _, err := s.findRun(ctx, runID); err != nil {
		return nil, err
	}
	placements, err := s.runs.ListPlacements(ctx, runID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placements")
	}
	return s.applyOverlays(ctx, placements), nil
}

func (s *TimetableService) applyOverlays(ctx context.Context, placements []models.PlacementDetail) []models.PlacementDetail {
	if s.overlays == nil {
		return placements
	}
	overlays, err := s.overlays.ListOverlays(ctx)
	if err != nil {
		s.logger.Warn("failed to load reassignment overlays", zap.Error(err))
		return placements
	}
	if len(overlays) == 0 {
		return placements
	}

	substituteNames := make(map[string]string)
	substituteName := func(id string) string {
		if name, ok := substituteNames[id]; ok {
			return name
		}
		name := ""
		if s.faculty != nil {
			if f, err := s.faculty.FindByID(ctx, id); err == nil {
				name = f.FullName
			}
		}
		substituteNames[id] = name
		return name
	}

	for _, overlay := range overlays {
		affected := make(map[string]bool, len(overlay.AffectedAssignmentIDs))
		for _, id := range overlay.AffectedAssignmentIDs {
			affected[id] = true
		}
		for i := range placements {
			p := &placements[i]
			if p.FacultyID != overlay.OriginalFacultyID || !affected[p.CourseAssignmentID] {
				continue
			}
			p.FacultyID = overlay.SubstituteFacultyID
			if name := substituteName(overlay.SubstituteFacultyID); name != "" {
				p.FacultyName = name
			}
		}
	}
	return placements
}

// ExportPDF renders a run's merged placements as a weekly grid document.
func (s *TimetableService) ExportPDF(ctx context.Context, runID string) ([]byte, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	placements, err := s.Placements(ctx, runID)
	if err != nil {
		return nil, err
	}
	data, err := s.exporter.Export(run, placements)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export timetable")
	}
	return data, nil
}

func (s *TimetableService) findRun(ctx context.Context, runID string) (*models.TimetableRun, error) {
	run, err := s.runs.FindRun(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	return run, nil
}
