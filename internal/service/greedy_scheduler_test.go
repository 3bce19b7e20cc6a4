package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelaskita/timetable-engine/internal/models"
)

func newTestGreedyScheduler() *GreedyScheduler {
	return NewGreedyScheduler(nil, nil)
}

func TestGreedySchedulerHonorsQualification(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
		{ID: "T2", Major: "English", Minor: "History"},
	}
	rooms := []models.Room{{ID: "R1"}, {ID: "R2"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 3, Duration: 1},
		{ID: "C2", Subject: "English", TimesPerWeek: 2, Duration: 1},
	}

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, defaultConfig())
	require.Len(t, schedule, 5)

	for _, a := range schedule {
		switch a.ClassID {
		case "C1":
			assert.Equal(t, "T1", a.TeacherID)
		case "C2":
			assert.Equal(t, "T2", a.TeacherID)
		}
	}
}

func TestGreedySchedulerNoDoubleBooking(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Science"},
		{ID: "T2", Major: "Science", Minor: "Mathematics"},
	}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 4, Duration: 1},
		{ID: "C2", Subject: "Science", TimesPerWeek: 4, Duration: 1},
	}

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, defaultConfig())

	teacherSlots := map[string]bool{}
	roomSlots := map[string]bool{}
	for _, a := range schedule {
		tKey := a.TeacherID + "|" + a.Day + "|" + a.Period
		rKey := a.RoomID + "|" + a.Day + "|" + a.Period
		assert.False(t, teacherSlots[tKey])
		assert.False(t, roomSlots[rKey])
		teacherSlots[tKey] = true
		roomSlots[rKey] = true
	}
}

func TestGreedySchedulerRespectsWeeklyCap(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 10, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerWeek = 4

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, cfg)
	assert.Len(t, schedule, 4, "placements beyond the weekly cap are dropped")
}

func TestGreedySchedulerRespectsDailyCap(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 10, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerDay = 2

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, cfg)

	perDay := map[string]int{}
	for _, a := range schedule {
		perDay[a.Day]++
	}
	for day, count := range perDay {
		assert.LessOrEqual(t, count, 2, "daily cap exceeded on %s", day)
	}
	assert.Len(t, schedule, 10)
}

func TestGreedySchedulerUnteachableSubjectProducesNothing(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "English"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Astronomy", TimesPerWeek: 2, Duration: 1},
	}

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, defaultConfig())
	assert.Empty(t, schedule)
}

func TestGreedySchedulerPrefersHighPrioritySubjects(t *testing.T) {
	// One teacher, capped so only one class fits. Mathematics outranks
	// Arts at equal weekly frequency and must win the slot.
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics", Minor: "Arts"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C-arts", Subject: "Arts", TimesPerWeek: 2, Duration: 1},
		{ID: "C-math", Subject: "Mathematics", TimesPerWeek: 2, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerWeek = 2

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, cfg)
	require.Len(t, schedule, 2)
	for _, a := range schedule {
		assert.Equal(t, "C-math", a.ClassID)
	}
}

func TestGreedySchedulerUsesEightPeriodGrid(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 9, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerDay = 10
	cfg.MaxPerWeek = 50

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, cfg)
	require.Len(t, schedule, 9)

	grid := map[string]bool{}
	for _, p := range models.GreedyPeriods {
		grid[p] = true
	}
	monday := 0
	for _, a := range schedule {
		assert.True(t, grid[a.Period], "period %s outside greedy grid", a.Period)
		if a.Day == "Mon" {
			monday++
		}
	}
	// Eight slots fill Monday, the ninth spills to Tuesday.
	assert.Equal(t, 8, monday)
}

func TestGreedySchedulerDeterministic(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T2", Major: "English", Minor: "Mathematics"},
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
	}
	rooms := []models.Room{{ID: "R1"}, {ID: "R2"}}
	classes := []models.SubjectClass{
		{ID: "C2", Subject: "English", TimesPerWeek: 3, Duration: 1},
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 3, Duration: 1},
	}

	scheduler := newTestGreedyScheduler()
	first := scheduler.Schedule(teachers, rooms, classes, defaultConfig())
	second := scheduler.Schedule(teachers, rooms, classes, defaultConfig())
	assert.Equal(t, first, second)
}

func TestGreedySchedulerOccurrencesAreOneBased(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 3, Duration: 1},
	}

	schedule := newTestGreedyScheduler().Schedule(teachers, rooms, classes, defaultConfig())
	require.Len(t, schedule, 3)
	for i, a := range schedule {
		assert.Equal(t, i+1, a.Occurrence)
	}
}
