package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kelaskita/timetable-engine/internal/models"
)

// GreedyScheduler is a deterministic first-fit heuristic. It is the
// primary path for large instances and the safety net whenever the exact
// engine yields nothing. Occurrences it cannot place are silently
// dropped; callers detect partial coverage by comparing counts.
type GreedyScheduler struct {
	progress *ProgressTracker
	logger   *zap.Logger
}

// NewGreedyScheduler wires the heuristic scheduler.
func NewGreedyScheduler(progress *ProgressTracker, logger *zap.Logger) *GreedyScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GreedyScheduler{progress: progress, logger: logger}
}

type greedyCandidate struct {
	teacher  models.Teacher
	priority int // 1 = major match, 2 = minor match
}

// Schedule assigns class occurrences in priority order with no
// backtracking. It never fails; the worst case is an empty schedule.
func (g *GreedyScheduler) Schedule(
	teachers []models.Teacher,
	rooms []models.Room,
	classes []models.SubjectClass,
	cfg models.ScheduleConfig,
) []models.Assignment {
	g.update(20, "Initializing data...")

	teacherDaySlots := make(map[string]map[string]map[string]bool, len(teachers))
	teacherWeeklyHours := make(map[string]int, len(teachers))
	for _, t := range teachers {
		teacherDaySlots[t.ID] = make(map[string]map[string]bool, len(models.Days))
		for _, day := range models.Days {
			teacherDaySlots[t.ID][day] = make(map[string]bool)
		}
	}
	roomDaySlots := make(map[string]map[string]map[string]bool, len(rooms))
	for _, r := range rooms {
		roomDaySlots[r.ID] = make(map[string]map[string]bool, len(models.Days))
		for _, day := range models.Days {
			roomDaySlots[r.ID][day] = make(map[string]bool)
		}
	}

	g.update(40, "Generating variables...")

	sorted := make([]models.SubjectClass, len(classes))
	copy(sorted, classes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TimesPerWeek != sorted[j].TimesPerWeek {
			return sorted[i].TimesPerWeek > sorted[j].TimesPerWeek
		}
		pi, pj := models.PriorityFor(sorted[i].Subject), models.PriorityFor(sorted[j].Subject)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].ID < sorted[j].ID
	})

	totalNeeded := 0
	for _, c := range classes {
		totalNeeded += c.TimesPerWeek
	}

	g.update(60, "Running optimization...")

	schedule := make([]models.Assignment, 0, totalNeeded)
	for _, class := range sorted {
		candidates := qualifiedCandidates(teachers, class.Subject, teacherWeeklyHours)

		for occurrence := 0; occurrence < class.TimesPerWeek; occurrence++ {
			placed := g.placeOccurrence(class, occurrence, candidates, cfg,
				teacherDaySlots, roomDaySlots, teacherWeeklyHours, rooms, &schedule)
			if !placed {
				g.logger.Debug("occurrence left unscheduled",
					zap.String("class", class.ID), zap.Int("occurrence", occurrence+1))
			}

			if len(schedule)%10 == 0 && totalNeeded > 0 {
				pct := 60 + len(schedule)*20/totalNeeded
				if pct > 80 {
					pct = 80
				}
				g.update(pct, fmt.Sprintf("Scheduled %d/%d classes", len(schedule), totalNeeded))
			}
		}
	}

	g.update(95, fmt.Sprintf("Generated %d assignments", len(schedule)))
	g.logger.Info("greedy scheduling finished",
		zap.Int("assignments", len(schedule)), zap.Int("expected", totalNeeded))
	return schedule
}

// qualifiedCandidates lists teachers able to teach the subject, major
// matches before minor matches, least-loaded first within each tier.
func qualifiedCandidates(teachers []models.Teacher, subject string, weeklyHours map[string]int) []greedyCandidate {
	var candidates []greedyCandidate
	for _, t := range teachers {
		switch subject {
		case t.Major:
			candidates = append(candidates, greedyCandidate{teacher: t, priority: 1})
		case t.Minor:
			candidates = append(candidates, greedyCandidate{teacher: t, priority: 2})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return weeklyHours[candidates[i].teacher.ID] < weeklyHours[candidates[j].teacher.ID]
	})
	return candidates
}

// placeOccurrence commits the first free (teacher, day, period, room)
// combination that respects the workload caps.
func (g *GreedyScheduler) placeOccurrence(
	class models.SubjectClass,
	occurrence int,
	candidates []greedyCandidate,
	cfg models.ScheduleConfig,
	teacherDaySlots map[string]map[string]map[string]bool,
	roomDaySlots map[string]map[string]map[string]bool,
	teacherWeeklyHours map[string]int,
	rooms []models.Room,
	schedule *[]models.Assignment,
) bool {
	for _, cand := range candidates {
		teacherID := cand.teacher.ID
		if teacherWeeklyHours[teacherID]+class.Duration > cfg.MaxPerWeek {
			continue
		}

		for _, day := range models.Days {
			dailyHours := len(teacherDaySlots[teacherID][day]) * class.Duration
			if dailyHours+class.Duration > cfg.MaxPerDay {
				continue
			}

			for _, period := range models.GreedyPeriods {
				if teacherDaySlots[teacherID][day][period] {
					continue
				}
				for _, room := range rooms {
					if roomDaySlots[room.ID][day][period] {
						continue
					}

					*schedule = append(*schedule, models.Assignment{
						TeacherID:  teacherID,
						ClassID:    class.ID,
						Subject:    class.Subject,
						RoomID:     room.ID,
						Day:        day,
						Period:     period,
						Occurrence: occurrence + 1,
						Duration:   class.Duration,
					})
					teacherDaySlots[teacherID][day][period] = true
					roomDaySlots[room.ID][day][period] = true
					teacherWeeklyHours[teacherID] += class.Duration
					return true
				}
			}
		}
	}
	return false
}

func (g *GreedyScheduler) update(progress int, stage string) {
	if g.progress != nil {
		g.progress.Update(progress, stage)
	}
}
