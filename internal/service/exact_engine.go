package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kelaskita/timetable-engine/internal/models"
	appErrors "github.com/kelaskita/timetable-engine/pkg/errors"
)

// SolveStatus classifies the outcome of an exact solve. Infeasible and
// TimedOut are not errors; they signal the orchestrator to fall back.
type SolveStatus int

const (
	SolveOptimal SolveStatus = iota
	SolveFeasible
	SolveInfeasible
	SolveTimedOut
)

func (s SolveStatus) String() string {
	switch s {
	case SolveOptimal:
		return "optimal"
	case SolveFeasible:
		return "feasible"
	case SolveInfeasible:
		return "infeasible"
	case SolveTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// varKey identifies one binary decision: teacher X teaches occurrence Occ
// of class C in room R at (day, period).
type varKey struct {
	TeacherID  string
	ClassID    string
	RoomID     string
	Day        string
	Period     string
	Occurrence int
}

// decisionVar is one entry of the sparse variable space. Only qualified
// teacher/class combinations over shift-eligible periods are materialized.
type decisionVar struct {
	key        varKey
	minorMatch bool
	duration   int
}

// occurrenceGroup collects the candidate variables for one (class,
// occurrence) coverage constraint.
type occurrenceGroup struct {
	classID    string
	occurrence int
	vars       []int
	// minCost is 0 when at least one candidate is major-qualified.
	minCost int
}

type exactModel struct {
	vars     []decisionVar
	varIndex map[varKey]int
	groups   []occurrenceGroup
	// lowerBound is the sum of per-group minimum objective contributions.
	lowerBound int
}

// ExactEngine formulates the timetable as a binary covering model and
// solves it with a time-boxed, gap-tolerant branch-and-bound search.
type ExactEngine struct {
	timeLimit time.Duration
	gapRel    float64
	progress  *ProgressTracker
	logger    *zap.Logger
}

// NewExactEngine wires the engine. Zero limits fall back to 15s / 30%.
func NewExactEngine(timeLimit time.Duration, gapRel float64, progress *ProgressTracker, logger *zap.Logger) *ExactEngine {
	if timeLimit <= 0 {
		timeLimit = 15 * time.Second
	}
	if gapRel <= 0 {
		gapRel = 0.3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExactEngine{timeLimit: timeLimit, gapRel: gapRel, progress: progress, logger: logger}
}

// Solve computes a full assignment minimizing minor-qualified selections.
// Infeasibility and solver timeout yield an empty schedule with the
// matching status; only structural input errors produce a non-nil error.
func (e *ExactEngine) Solve(
	ctx context.Context,
	teachers []models.Teacher,
	rooms []models.Room,
	classes []models.SubjectClass,
	cfg models.ScheduleConfig,
) ([]models.Assignment, SolveStatus, error) {
	if err := validateInputs(teachers, rooms, classes, cfg); err != nil {
		return nil, SolveInfeasible, err
	}

	e.update(10, "Creating optimization model...")

	allowedPeriods := models.ShiftPeriods(cfg.NumShifts)
	model := e.buildModel(teachers, rooms, classes, allowedPeriods)

	e.logger.Debug("exact model built",
		zap.Int("variables", len(model.vars)),
		zap.Int("occurrences", len(model.groups)),
		zap.Int("objective_lower_bound", model.lowerBound))

	e.update(50, "Adding constraints...")

	solver := newBranchAndBound(model, cfg, e.gapRel, time.Now().Add(e.timeLimit))

	e.update(70, "Running optimization...")
	chosen, status := solver.run(ctx)

	e.update(90, "Processing results...")
	if status == SolveInfeasible || status == SolveTimedOut {
		e.logger.Info("exact solve yielded no schedule", zap.String("status", status.String()))
		return []models.Assignment{}, status, nil
	}

	classByID := make(map[string]models.SubjectClass, len(classes))
	for _, c := range classes {
		classByID[c.ID] = c
	}

	schedule := make([]models.Assignment, 0, len(chosen))
	for _, idx := range chosen {
		v := model.vars[idx]
		schedule = append(schedule, models.Assignment{
			TeacherID:  v.key.TeacherID,
			ClassID:    v.key.ClassID,
			Subject:    classByID[v.key.ClassID].Subject,
			RoomID:     v.key.RoomID,
			Day:        v.key.Day,
			Period:     v.key.Period,
			Occurrence: v.key.Occurrence + 1,
			Duration:   v.duration,
		})
	}
	sort.Slice(schedule, func(i, j int) bool {
		if schedule[i].ClassID != schedule[j].ClassID {
			return schedule[i].ClassID < schedule[j].ClassID
		}
		return schedule[i].Occurrence < schedule[j].Occurrence
	})

	return schedule, status, nil
}

func (e *ExactEngine) update(progress int, stage string) {
	if e.progress != nil {
		e.progress.Update(progress, stage)
	}
}

// buildModel materializes the sparse variable space and per-occurrence
// coverage groups. Occurrences with no qualified candidate get no group,
// surfacing later as zero selected assignments.
func (e *ExactEngine) buildModel(
	teachers []models.Teacher,
	rooms []models.Room,
	classes []models.SubjectClass,
	allowedPeriods []string,
) *exactModel {
	model := &exactModel{varIndex: make(map[varKey]int)}

	e.update(30, "Generating variables...")

	for _, c := range classes {
		for occ := 0; occ < c.TimesPerWeek; occ++ {
			group := occurrenceGroup{classID: c.ID, occurrence: occ, minCost: 1}
			for _, t := range teachers {
				if !t.Qualified(c.Subject) {
					continue
				}
				minor := t.Major != c.Subject
				if !minor {
					group.minCost = 0
				}
				for _, r := range rooms {
					for _, day := range models.Days {
						for _, period := range allowedPeriods {
							key := varKey{
								TeacherID:  t.ID,
								ClassID:    c.ID,
								RoomID:     r.ID,
								Day:        day,
								Period:     period,
								Occurrence: occ,
							}
							model.varIndex[key] = len(model.vars)
							model.vars = append(model.vars, decisionVar{
								key:        key,
								minorMatch: minor,
								duration:   c.Duration,
							})
							group.vars = append(group.vars, len(model.vars)-1)
						}
					}
				}
			}
			if len(group.vars) == 0 {
				continue
			}
			model.lowerBound += group.minCost
			model.groups = append(model.groups, group)
		}
	}

	// Most-constrained occurrences first keeps the search tree shallow.
	sort.SliceStable(model.groups, func(i, j int) bool {
		return len(model.groups[i].vars) < len(model.groups[j].vars)
	})

	// Within a group, prefer major-qualified candidates so the first
	// incumbent is already close to the bound.
	for gi := range model.groups {
		group := &model.groups[gi]
		sort.SliceStable(group.vars, func(i, j int) bool {
			a, b := model.vars[group.vars[i]], model.vars[group.vars[j]]
			if a.minorMatch != b.minorMatch {
				return !a.minorMatch
			}
			return false
		})
	}

	return model
}

func validateInputs(teachers []models.Teacher, rooms []models.Room, classes []models.SubjectClass, cfg models.ScheduleConfig) error {
	if _, ok := models.ShiftPeriodRanges[cfg.NumShifts]; !ok {
		return appErrors.Clone(appErrors.ErrMalformed, fmt.Sprintf("num_shifts must be 1, 2 or 3 (got %d)", cfg.NumShifts))
	}
	if cfg.MaxPerDay < 1 || cfg.MaxPerWeek < 1 {
		return appErrors.Clone(appErrors.ErrMalformed, "workload caps must be positive")
	}

	seenTeachers := make(map[string]bool, len(teachers))
	for _, t := range teachers {
		if t.ID == "" {
			return appErrors.Clone(appErrors.ErrMalformed, "teacher id must not be empty")
		}
		if seenTeachers[t.ID] {
			return appErrors.Clone(appErrors.ErrMalformed, fmt.Sprintf("duplicate teacher id %q", t.ID))
		}
		seenTeachers[t.ID] = true
	}

	seenRooms := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		if r.ID == "" {
			return appErrors.Clone(appErrors.ErrMalformed, "room id must not be empty")
		}
		if seenRooms[r.ID] {
			return appErrors.Clone(appErrors.ErrMalformed, fmt.Sprintf("duplicate room id %q", r.ID))
		}
		seenRooms[r.ID] = true
	}

	seenClasses := make(map[string]bool, len(classes))
	for _, c := range classes {
		if c.ID == "" {
			return appErrors.Clone(appErrors.ErrMalformed, "class id must not be empty")
		}
		if seenClasses[c.ID] {
			return appErrors.Clone(appErrors.ErrMalformed, fmt.Sprintf("duplicate class id %q", c.ID))
		}
		seenClasses[c.ID] = true
		if c.TimesPerWeek < 1 {
			return appErrors.Clone(appErrors.ErrMalformed, fmt.Sprintf("class %q times_per_week must be >= 1", c.ID))
		}
		if c.Duration < 1 {
			return appErrors.Clone(appErrors.ErrMalformed, fmt.Sprintf("class %q duration must be >= 1", c.ID))
		}
	}

	return nil
}

// slotUse keys teacher/room occupancy per (day, period).
type slotUse struct {
	ID     string
	Day    string
	Period string
}

type dayLoadKey struct {
	TeacherID string
	Day       string
}

// branchAndBound runs a depth-first search over occurrence groups with
// cost pruning against the incumbent and a hard wall-clock deadline.
type branchAndBound struct {
	model    *exactModel
	cfg      models.ScheduleConfig
	gapRel   float64
	deadline time.Time

	teacherBusy map[slotUse]bool
	roomBusy    map[slotUse]bool
	dayLoad     map[dayLoadKey]int
	weekLoad    map[string]int

	// suffixMin[i] bounds the objective contribution of groups i..n-1.
	suffixMin []int

	current   []int
	best      []int
	bestCost  int
	haveBest  bool
	nodes     uint64
	timedOut  bool
	cancelled bool
}

const solverNodeCheckMask = 0x3FF

func newBranchAndBound(model *exactModel, cfg models.ScheduleConfig, gapRel float64, deadline time.Time) *branchAndBound {
	suffix := make([]int, len(model.groups)+1)
	for i := len(model.groups) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + model.groups[i].minCost
	}
	return &branchAndBound{
		model:       model,
		cfg:         cfg,
		gapRel:      gapRel,
		deadline:    deadline,
		teacherBusy: make(map[slotUse]bool),
		roomBusy:    make(map[slotUse]bool),
		dayLoad:     make(map[dayLoadKey]int),
		weekLoad:    make(map[string]int),
		suffixMin:   suffix,
	}
}

// run returns the selected variable indices and the solve status.
func (s *branchAndBound) run(ctx context.Context) ([]int, SolveStatus) {
	s.search(ctx, 0, 0)

	switch {
	case s.haveBest && s.bestCost == s.model.lowerBound:
		return s.best, SolveOptimal
	case s.haveBest:
		return s.best, SolveFeasible
	case s.timedOut || s.cancelled:
		return nil, SolveTimedOut
	default:
		return nil, SolveInfeasible
	}
}

// gapAcceptable reports whether the incumbent is within the configured
// relative gap of the lower bound, ending the search early.
func (s *branchAndBound) gapAcceptable() bool {
	if !s.haveBest {
		return false
	}
	if s.bestCost <= s.model.lowerBound {
		return true
	}
	if s.bestCost == 0 {
		return true
	}
	gap := float64(s.bestCost-s.model.lowerBound) / float64(s.bestCost)
	return gap <= s.gapRel
}

func (s *branchAndBound) expired(ctx context.Context) bool {
	s.nodes++
	if s.nodes&solverNodeCheckMask == 0 {
		if time.Now().After(s.deadline) {
			s.timedOut = true
		}
		select {
		case <-ctx.Done():
			s.cancelled = true
		default:
		}
	}
	return s.timedOut || s.cancelled
}

func (s *branchAndBound) search(ctx context.Context, depth, cost int) {
	if s.expired(ctx) {
		return
	}
	if s.haveBest && cost+s.suffixMin[depth] >= s.bestCost {
		return
	}
	if depth == len(s.model.groups) {
		s.best = append(s.best[:0], s.current...)
		s.bestCost = cost
		s.haveBest = true
		return
	}

	group := s.model.groups[depth]
	for _, idx := range group.vars {
		v := s.model.vars[idx]
		if !s.feasible(v) {
			continue
		}

		s.place(v)
		s.current = append(s.current, idx)

		next := cost
		if v.minorMatch {
			next++
		}
		s.search(ctx, depth+1, next)

		s.current = s.current[:len(s.current)-1]
		s.remove(v)

		if s.timedOut || s.cancelled || s.gapAcceptable() {
			return
		}
	}
}

func (s *branchAndBound) feasible(v decisionVar) bool {
	teacherSlot := slotUse{ID: v.key.TeacherID, Day: v.key.Day, Period: v.key.Period}
	if s.teacherBusy[teacherSlot] {
		return false
	}
	roomSlot := slotUse{ID: v.key.RoomID, Day: v.key.Day, Period: v.key.Period}
	if s.roomBusy[roomSlot] {
		return false
	}
	if s.dayLoad[dayLoadKey{v.key.TeacherID, v.key.Day}]+v.duration > s.cfg.MaxPerDay {
		return false
	}
	if s.weekLoad[v.key.TeacherID]+v.duration > s.cfg.MaxPerWeek {
		return false
	}
	return true
}

func (s *branchAndBound) place(v decisionVar) {
	s.teacherBusy[slotUse{ID: v.key.TeacherID, Day: v.key.Day, Period: v.key.Period}] = true
	s.roomBusy[slotUse{ID: v.key.RoomID, Day: v.key.Day, Period: v.key.Period}] = true
	s.dayLoad[dayLoadKey{v.key.TeacherID, v.key.Day}] += v.duration
	s.weekLoad[v.key.TeacherID] += v.duration
}

func (s *branchAndBound) remove(v decisionVar) {
	delete(s.teacherBusy, slotUse{ID: v.key.TeacherID, Day: v.key.Day, Period: v.key.Period})
	delete(s.roomBusy, slotUse{ID: v.key.RoomID, Day: v.key.Day, Period: v.key.Period})
	s.dayLoad[dayLoadKey{v.key.TeacherID, v.key.Day}] -= v.duration
	s.weekLoad[v.key.TeacherID] -= v.duration
}
