package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/pkg/jobs"
)

type watchedAssignments interface {
	ListTerms(ctx context.Context) ([]models.Term, error)
	ListByTerm(ctx context.Context, academicYear string, semester int) ([]models.CourseAssignmentDetail, error)
}

type timetableGenerator interface {
	Generate(ctx context.Context, req GenerateRequest, userID string) (*GenerateResult, error)
}

// RefreshWatcher polls the scheduler's reference data and regenerates the
// timetable for any term whose fingerprint drifted from the stored hash.
// Regeneration goes through a single-worker queue, so a slow run never
// overlaps the next poll's work.
type RefreshWatcher struct {
	assignments watchedAssignments
	rooms       activeRoomReader
	generator   timetableGenerator
	cache       *redis.Client
	interval    time.Duration
	logger      *zap.Logger

	queue  *jobs.Queue
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefreshWatcher constructs a RefreshWatcher.
func NewRefreshWatcher(
	assignments watchedAssignments,
	rooms activeRoomReader,
	generator timetableGenerator,
	cache *redis.Client,
	interval time.Duration,
	queueBuffer int,
	logger *zap.Logger,
) *RefreshWatcher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &RefreshWatcher{
		assignments: assignments,
		rooms:       rooms,
		generator:   generator,
		cache:       cache,
		interval:    interval,
		logger:      logger,
		done:        make(chan struct{}),
	}
	w.queue = jobs.NewQueue("timetable-refresh", w.handleJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: queueBuffer,
		Logger:     logger,
	})
	return w
}

// Start launches the poll loop. The first scan runs after one interval.
func (w *RefreshWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.queue.Start(ctx)
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.scan(ctx)
			}
		}
	}()
	w.logger.Info("refresh watcher started", zap.Duration("interval", w.interval))
}

// Stop halts polling and drains the queue.
func (w *RefreshWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	w.queue.Stop()
}

// scan fingerprints every known term and enqueues regeneration for drifts.
func (w *RefreshWatcher) scan(ctx context.Context) {
	terms, err := w.assignments.ListTerms(ctx)
	if err != nil {
		w.logger.Warn("refresh scan failed to list terms", zap.Error(err))
		return
	}
	for _, term := range terms {
		changed, err := w.termChanged(ctx, term)
		if err != nil {
			w.logger.Warn("refresh scan failed",
				zap.String("academic_year", term.AcademicYear),
				zap.Int("semester", term.Semester),
				zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		job := jobs.Job{
			ID:      fmt.Sprintf("refresh:%s:%d:%d", term.AcademicYear, term.Semester, time.Now().UnixNano()),
			Type:    "timetable.refresh",
			Payload: term,
		}
		if err := w.queue.Enqueue(job); err != nil {
			w.logger.Warn("failed to enqueue regeneration", zap.Error(err))
			continue
		}
		w.logger.Info("reference data changed, regeneration queued",
			zap.String("academic_year", term.AcademicYear),
			zap.Int("semester", term.Semester))
	}
}

func (w *RefreshWatcher) termChanged(ctx context.Context, term models.Term) (bool, error) {
	assignments, err := w.assignments.ListByTerm(ctx, term.AcademicYear, term.Semester)
	if err != nil {
		return false, err
	}
	if len(assignments) == 0 {
		return false, nil
	}
	rooms, err := w.rooms.ListActive(ctx)
	if err != nil {
		return false, err
	}
	if len(rooms) == 0 {
		return false, nil
	}

	hash := referenceHash(assignments, rooms)
	stored, err := w.cache.Get(ctx, refHashKey(term.AcademicYear, term.Semester)).Result()
	if err == redis.Nil {
		// Nothing generated yet for this term; leave the first run to an
		// explicit request rather than regenerating on sight.
		return false, w.cache.Set(ctx, refHashKey(term.AcademicYear, term.Semester), hash, 0).Err()
	}
	if err != nil {
		return false, err
	}
	return stored != hash, nil
}

func (w *RefreshWatcher) handleJob(ctx context.Context, job jobs.Job) error {
	term, ok := job.Payload.(models.Term)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	_, err := w.generator.Generate(ctx, GenerateRequest{
		AcademicYear: term.AcademicYear,
		Semester:     term.Semester,
	}, "")
	return err
}
