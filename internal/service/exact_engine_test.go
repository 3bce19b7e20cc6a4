package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelaskita/timetable-engine/internal/models"
	appErrors "github.com/kelaskita/timetable-engine/pkg/errors"
)

func defaultConfig() models.ScheduleConfig {
	return models.ScheduleConfig{MaxPerDay: 6, MaxPerWeek: 30, NumShifts: 1}
}

func newTestExactEngine() *ExactEngine {
	return NewExactEngine(5*time.Second, 0.3, nil, nil)
}

func TestExactEnginePrefersMajorQualifiedTeacher(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
		{ID: "T2", Major: "English", Minor: "Mathematics"},
	}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 2, Duration: 1},
	}

	schedule, status, err := newTestExactEngine().Solve(context.Background(), teachers, rooms, classes, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, SolveOptimal, status)
	require.Len(t, schedule, 2)

	occurrences := map[int]bool{}
	for _, a := range schedule {
		assert.Equal(t, "T1", a.TeacherID, "major-qualified teacher should take every occurrence")
		assert.Equal(t, "C1", a.ClassID)
		assert.Equal(t, "Mathematics", a.Subject)
		assert.Equal(t, "R1", a.RoomID)
		occurrences[a.Occurrence] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true}, occurrences)
}

func TestExactEngineFallsBackToMinorWhenMajorExhausted(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
		{ID: "T2", Major: "English", Minor: "Mathematics"},
	}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "CP", Subject: "Physics", TimesPerWeek: 1, Duration: 1},
		{ID: "CM", Subject: "Mathematics", TimesPerWeek: 1, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerWeek = 1

	schedule, _, err := newTestExactEngine().Solve(context.Background(), teachers, rooms, classes, cfg)
	require.NoError(t, err)
	require.Len(t, schedule, 2)

	byClass := map[string]models.Assignment{}
	for _, a := range schedule {
		byClass[a.ClassID] = a
	}
	assert.Equal(t, "T1", byClass["CP"].TeacherID)
	assert.Equal(t, "T2", byClass["CM"].TeacherID)
}

func TestExactEngineNoDoubleBooking(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
		{ID: "T2", Major: "English", Minor: "Mathematics"},
	}
	rooms := []models.Room{{ID: "R1"}, {ID: "R2"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 3, Duration: 1},
		{ID: "C2", Subject: "English", TimesPerWeek: 3, Duration: 1},
		{ID: "C3", Subject: "Physics", TimesPerWeek: 2, Duration: 1},
	}

	schedule, _, err := newTestExactEngine().Solve(context.Background(), teachers, rooms, classes, defaultConfig())
	require.NoError(t, err)
	require.Len(t, schedule, 8)

	teacherSlots := map[string]bool{}
	roomSlots := map[string]bool{}
	for _, a := range schedule {
		tKey := a.TeacherID + "|" + a.Day + "|" + a.Period
		rKey := a.RoomID + "|" + a.Day + "|" + a.Period
		assert.False(t, teacherSlots[tKey], "teacher double-booked at %s", tKey)
		assert.False(t, roomSlots[rKey], "room double-booked at %s", rKey)
		teacherSlots[tKey] = true
		roomSlots[rKey] = true
	}
}

func TestExactEngineRespectsDailyCap(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 5, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerDay = 1

	schedule, status, err := newTestExactEngine().Solve(context.Background(), teachers, rooms, classes, cfg)
	require.NoError(t, err)
	assert.Equal(t, SolveOptimal, status)
	require.Len(t, schedule, 5)

	days := map[string]int{}
	for _, a := range schedule {
		days[a.Day]++
	}
	for day, count := range days {
		assert.Equal(t, 1, count, "daily cap exceeded on %s", day)
	}
	assert.Len(t, days, 5)
}

func TestExactEngineInfeasibleWhenWeeklyCapTooLow(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 3, Duration: 1},
	}
	cfg := defaultConfig()
	cfg.MaxPerWeek = 2

	schedule, status, err := newTestExactEngine().Solve(context.Background(), teachers, rooms, classes, cfg)
	require.NoError(t, err)
	assert.Equal(t, SolveInfeasible, status)
	assert.Empty(t, schedule)
}

func TestExactEngineUnteachableSubjectYieldsNoAssignments(t *testing.T) {
	teachers := []models.Teacher{{ID: "T1", Major: "English"}}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Quantum Gardening", TimesPerWeek: 2, Duration: 1},
	}

	schedule, _, err := newTestExactEngine().Solve(context.Background(), teachers, rooms, classes, defaultConfig())
	require.NoError(t, err)
	assert.Empty(t, schedule)
}

func TestExactEngineDeterministicAcrossRuns(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
		{ID: "T2", Major: "English", Minor: "Mathematics"},
	}
	rooms := []models.Room{{ID: "R1"}, {ID: "R2"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 2, Duration: 1},
		{ID: "C2", Subject: "English", TimesPerWeek: 2, Duration: 1},
	}

	engine := newTestExactEngine()
	first, _, err := engine.Solve(context.Background(), teachers, rooms, classes, defaultConfig())
	require.NoError(t, err)
	second, _, err := engine.Solve(context.Background(), teachers, rooms, classes, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExactEngineStructuralValidation(t *testing.T) {
	validTeachers := []models.Teacher{{ID: "T1", Major: "Mathematics"}}
	validRooms := []models.Room{{ID: "R1"}}
	validClasses := []models.SubjectClass{{ID: "C1", Subject: "Mathematics", TimesPerWeek: 1, Duration: 1}}

	tests := []struct {
		name     string
		teachers []models.Teacher
		rooms    []models.Room
		classes  []models.SubjectClass
		cfg      models.ScheduleConfig
	}{
		{
			name:     "duplicate teacher ids",
			teachers: []models.Teacher{{ID: "T1", Major: "Mathematics"}, {ID: "T1", Major: "English"}},
			rooms:    validRooms,
			classes:  validClasses,
			cfg:      defaultConfig(),
		},
		{
			name:     "duplicate room ids",
			teachers: validTeachers,
			rooms:    []models.Room{{ID: "R1"}, {ID: "R1"}},
			classes:  validClasses,
			cfg:      defaultConfig(),
		},
		{
			name:     "empty class id",
			teachers: validTeachers,
			rooms:    validRooms,
			classes:  []models.SubjectClass{{ID: "", Subject: "Mathematics", TimesPerWeek: 1, Duration: 1}},
			cfg:      defaultConfig(),
		},
		{
			name:     "zero times per week",
			teachers: validTeachers,
			rooms:    validRooms,
			classes:  []models.SubjectClass{{ID: "C1", Subject: "Mathematics", TimesPerWeek: 0, Duration: 1}},
			cfg:      defaultConfig(),
		},
		{
			name:     "unsupported shift count",
			teachers: validTeachers,
			rooms:    validRooms,
			classes:  validClasses,
			cfg:      models.ScheduleConfig{MaxPerDay: 6, MaxPerWeek: 30, NumShifts: 4},
		},
		{
			name:     "non-positive caps",
			teachers: validTeachers,
			rooms:    validRooms,
			classes:  validClasses,
			cfg:      models.ScheduleConfig{MaxPerDay: 0, MaxPerWeek: 30, NumShifts: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := newTestExactEngine().Solve(context.Background(), tc.teachers, tc.rooms, tc.classes, tc.cfg)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrMalformed.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestShiftPeriodsCoverGridWithoutDuplicates(t *testing.T) {
	for _, shifts := range []int{1, 2, 3} {
		periods := models.ShiftPeriods(shifts)
		seen := map[string]bool{}
		for _, p := range periods {
			assert.False(t, seen[p], "shift %d repeats period %s", shifts, p)
			seen[p] = true
		}
		assert.Len(t, periods, 10)
	}
	assert.Nil(t, models.ShiftPeriods(0))
}
