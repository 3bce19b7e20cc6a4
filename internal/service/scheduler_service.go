package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kelaskita/timetable-engine/internal/dto"
	"github.com/kelaskita/timetable-engine/internal/models"
	"github.com/kelaskita/timetable-engine/pkg/config"
	appErrors "github.com/kelaskita/timetable-engine/pkg/errors"
	"github.com/kelaskita/timetable-engine/pkg/jobs"
)

const (
	algorithmExact          = "exact"
	algorithmGreedy         = "greedy"
	algorithmGreedyFallback = "greedy_fallback"
	algorithmCache          = "cache"
)

// SchedulerService is the orchestrator: cache lookup, algorithm
// selection, fallback chaining, progress updates and failure
// classification. It is the sole entry point for collaborators.
type SchedulerService struct {
	cache     *ScheduleCache
	tracker   *ProgressTracker
	exact     *ExactEngine
	greedy    *GreedyScheduler
	pool      *jobs.Pool
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	complexityThreshold int
}

// NewSchedulerService wires the orchestrator. The pool may be nil, in
// which case engine runs execute inline (used by tests).
func NewSchedulerService(
	cache *ScheduleCache,
	tracker *ProgressTracker,
	exact *ExactEngine,
	greedy *GreedyScheduler,
	pool *jobs.Pool,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *SchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.ComplexityThreshold
	if threshold <= 0 {
		threshold = 100
	}
	return &SchedulerService{
		cache:               cache,
		tracker:             tracker,
		exact:               exact,
		greedy:              greedy,
		pool:                pool,
		metrics:             metrics,
		validator:           validate,
		logger:              logger,
		complexityThreshold: threshold,
	}
}

// ComputeSchedule resolves a schedule request: cache first, then the
// exact engine or the greedy heuristic depending on instance size, with
// greedy as the unconditional fallback. The progress tracker is finished
// on every path, including errors.
func (s *SchedulerService) ComputeSchedule(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	cfg := req.Config()
	start := time.Now()
	expected := totalOccurrences(req.Classes)

	key := CacheKey(req.Teachers, req.Rooms, req.Classes, cfg)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(true)
		s.tracker.Start()
		s.tracker.Update(100, "Retrieved from cache")
		s.tracker.Finish()
		s.metrics.ObserveScheduleRun(algorithmCache, "hit", len(cached), time.Since(start))
		s.logger.Info("schedule served from cache", zap.String("key", key[:8]))
		return s.respond(cached, algorithmCache, true, expected, start), nil
	}
	s.metrics.RecordCacheLookup(false)

	s.tracker.Start()
	defer s.tracker.Finish()

	if err := validateInputs(req.Teachers, req.Rooms, req.Classes, cfg); err != nil {
		s.tracker.Fail(err.Error())
		return nil, err
	}

	complexity := len(req.Teachers) * len(req.Classes)
	if complexity > s.complexityThreshold {
		s.logger.Info("complexity above threshold, greedy primary",
			zap.Int("complexity", complexity), zap.Int("threshold", s.complexityThreshold))

		schedule, err := s.runGreedy(ctx, req, cfg)
		if err != nil {
			s.tracker.Fail(err.Error())
			s.metrics.ObserveScheduleRun(algorithmGreedy, "error", 0, time.Since(start))
			return nil, err
		}
		s.cache.Set(key, schedule)
		s.metrics.ObserveScheduleRun(algorithmGreedy, "ok", len(schedule), time.Since(start))
		return s.respond(schedule, algorithmGreedy, false, expected, start), nil
	}

	schedule, status, err := s.runExact(ctx, req, cfg)
	switch {
	case err != nil && isStructural(err):
		s.tracker.Fail(err.Error())
		s.metrics.ObserveScheduleRun(algorithmExact, "error", 0, time.Since(start))
		return nil, err
	case err != nil:
		// Engine-local failures are absorbed and become a fallback trigger.
		s.logger.Warn("exact engine failed, falling back to greedy", zap.Error(err))
	case len(schedule) > 0:
		s.cache.Set(key, schedule)
		s.metrics.ObserveScheduleRun(algorithmExact, status.String(), len(schedule), time.Since(start))
		return s.respond(schedule, algorithmExact, false, expected, start), nil
	default:
		s.logger.Info("exact engine found no schedule, falling back to greedy",
			zap.String("status", status.String()))
	}

	schedule, err = s.runGreedy(ctx, req, cfg)
	if err != nil {
		s.tracker.Fail(err.Error())
		s.metrics.ObserveScheduleRun(algorithmGreedyFallback, "error", 0, time.Since(start))
		return nil, err
	}
	s.cache.Set(key, schedule)
	s.metrics.ObserveScheduleRun(algorithmGreedyFallback, "ok", len(schedule), time.Since(start))
	return s.respond(schedule, algorithmGreedyFallback, false, expected, start), nil
}

// Progress returns the current run's status without blocking on any
// in-flight computation.
func (s *SchedulerService) Progress() models.ProgressSnapshot {
	return s.tracker.Status()
}

// ClearCache empties the schedule cache.
func (s *SchedulerService) ClearCache() {
	s.cache.Clear()
}

// CacheStatus reports cache occupancy for operational visibility.
func (s *SchedulerService) CacheStatus() models.CacheStatus {
	return s.cache.Status()
}

func (s *SchedulerService) respond(schedule []models.Assignment, algorithm string, fromCache bool, expected int, start time.Time) *dto.ScheduleResponse {
	if schedule == nil {
		schedule = []models.Assignment{}
	}
	return &dto.ScheduleResponse{
		Schedule: schedule,
		Meta: dto.ScheduleMeta{
			Algorithm:   algorithm,
			FromCache:   fromCache,
			Assignments: len(schedule),
			Expected:    expected,
			ElapsedSecs: time.Since(start).Seconds(),
		},
	}
}

// runExact dispatches the exact engine to the worker pool and awaits the
// future without occupying the caller's goroutine for anything else.
func (s *SchedulerService) runExact(ctx context.Context, req dto.ScheduleRequest, cfg models.ScheduleConfig) ([]models.Assignment, SolveStatus, error) {
	type exactResult struct {
		schedule []models.Assignment
		status   SolveStatus
	}

	value, err := s.dispatch(ctx, "exact_solve", func(taskCtx context.Context) (interface{}, error) {
		schedule, status, err := s.exact.Solve(taskCtx, req.Teachers, req.Rooms, req.Classes, cfg)
		if err != nil {
			return nil, err
		}
		return exactResult{schedule: schedule, status: status}, nil
	})
	if err != nil {
		return nil, SolveInfeasible, err
	}
	res := value.(exactResult)
	return res.schedule, res.status, nil
}

func (s *SchedulerService) runGreedy(ctx context.Context, req dto.ScheduleRequest, cfg models.ScheduleConfig) ([]models.Assignment, error) {
	value, err := s.dispatch(ctx, "greedy_schedule", func(taskCtx context.Context) (interface{}, error) {
		return s.greedy.Schedule(req.Teachers, req.Rooms, req.Classes, cfg), nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Assignment), nil
}

// dispatch submits the task to the bounded pool when one is configured;
// status queries stay responsive while the caller blocks here.
func (s *SchedulerService) dispatch(ctx context.Context, kind string, task jobs.Task) (interface{}, error) {
	if s.pool == nil {
		return task(ctx)
	}

	future, err := s.pool.Submit(ctx, uuid.NewString(), kind, task)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dispatch scheduling task")
	}

	select {
	case <-ctx.Done():
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule computation cancelled")
	case res := <-future:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Value, nil
	}
}

func isStructural(err error) bool {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code == appErrors.ErrMalformed.Code || appErr.Code == appErrors.ErrValidation.Code
	}
	return false
}

func totalOccurrences(classes []models.SubjectClass) int {
	total := 0
	for _, c := range classes {
		total += c.TimesPerWeek
	}
	return total
}
