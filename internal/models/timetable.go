package models

import "fmt"

// Teacher represents an instructor eligible for timetable assignment.
type Teacher struct {
	ID    string `json:"id"`
	Major string `json:"major"`
	Minor string `json:"minor"`
}

// Qualified reports whether the teacher may teach the subject at all.
func (t Teacher) Qualified(subject string) bool {
	return t.Major == subject || t.Minor == subject
}

// Room represents a physical classroom. Capacity is part of the room's
// identity but unused by the current constraint set.
type Room struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
}

// SubjectClass is a class that must meet TimesPerWeek times, each
// occurrence lasting Duration hour-units.
type SubjectClass struct {
	ID           string `json:"id"`
	Subject      string `json:"subject"`
	TimesPerWeek int    `json:"times_per_week"`
	Duration     int    `json:"duration"`
}

// ScheduleConfig carries workload caps and the shift layout for a run.
type ScheduleConfig struct {
	MaxPerDay  int `json:"max_per_day"`
	MaxPerWeek int `json:"max_per_week"`
	NumShifts  int `json:"num_shifts"`
}

// Assignment places one class occurrence with a teacher and room at a
// (day, period) slot. Occurrence is 1-based in output.
type Assignment struct {
	TeacherID  string `json:"teacher"`
	ClassID    string `json:"class"`
	Subject    string `json:"subject"`
	RoomID     string `json:"room"`
	Day        string `json:"day"`
	Period     string `json:"period"`
	Occurrence int    `json:"occurrence"`
	Duration   int    `json:"duration"`
}

// Days is the fixed five-day scheduling week.
var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// Periods is the full 10-slot hourly grid used by the exact engine,
// starting at 07:00.
var Periods = buildPeriods(10)

// GreedyPeriods is the simplified 8-slot grid the greedy scheduler uses
// regardless of shift layout.
var GreedyPeriods = buildPeriods(8)

func buildPeriods(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%02d:00-%02d:00", 7+i, 8+i)
	}
	return out
}

// PeriodRange is an inclusive index range into Periods.
type PeriodRange struct {
	Start int
	End   int
}

// ShiftPeriodRanges maps a shift count to the eligible sub-ranges of the
// period grid: whole day, AM/PM, or AM/PM/evening.
var ShiftPeriodRanges = map[int][]PeriodRange{
	1: {{0, 9}},
	2: {{0, 4}, {5, 9}},
	3: {{0, 2}, {3, 6}, {7, 9}},
}

// ShiftPeriods returns the distinct eligible periods for a shift count,
// in grid order. Unknown shift counts yield nil.
func ShiftPeriods(numShifts int) []string {
	ranges, ok := ShiftPeriodRanges[numShifts]
	if !ok {
		return nil
	}
	seen := make(map[int]bool)
	var out []string
	for _, rng := range ranges {
		for i := rng.Start; i <= rng.End && i < len(Periods); i++ {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, Periods[i])
		}
	}
	return out
}

// SubjectPriority orders subjects for greedy scheduling; lower is more
// important. Subjects absent from the table fall back to
// DefaultSubjectPriority.
var SubjectPriority = map[string]int{
	"Mathematics":        1,
	"English":            2,
	"Science":            3,
	"Physics":            3,
	"Chemistry":          3,
	"Biology":            3,
	"History":            4,
	"Geography":          4,
	"Filipino":           5,
	"Computer Science":   6,
	"Arts":               7,
	"Music":              7,
	"Physical Education": 8,
	"Health Science":     9,
}

// DefaultSubjectPriority applies to subjects missing from SubjectPriority.
const DefaultSubjectPriority = 10

// PriorityFor returns the greedy ordering priority for a subject.
func PriorityFor(subject string) int {
	if p, ok := SubjectPriority[subject]; ok {
		return p
	}
	return DefaultSubjectPriority
}
