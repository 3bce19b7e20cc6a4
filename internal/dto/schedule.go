package dto

import "github.com/kelaskita/timetable-engine/internal/models"

// ScheduleRequest is the full input for one timetable computation.
type ScheduleRequest struct {
	Teachers   []models.Teacher      `json:"teachers" validate:"required,min=1,dive"`
	Rooms      []models.Room         `json:"rooms" validate:"required,min=1,dive"`
	Classes    []models.SubjectClass `json:"classes" validate:"dive"`
	MaxPerDay  int                   `json:"max_per_day" validate:"omitempty,min=1"`
	MaxPerWeek int                   `json:"max_per_week" validate:"omitempty,min=1"`
	NumShifts  int                   `json:"num_shifts" validate:"omitempty,min=1,max=3"`
}

// Config extracts the workload/shift configuration, applying the
// request defaults (6h/day, 30h/week, single shift).
func (r ScheduleRequest) Config() models.ScheduleConfig {
	cfg := models.ScheduleConfig{
		MaxPerDay:  r.MaxPerDay,
		MaxPerWeek: r.MaxPerWeek,
		NumShifts:  r.NumShifts,
	}
	if cfg.MaxPerDay <= 0 {
		cfg.MaxPerDay = 6
	}
	if cfg.MaxPerWeek <= 0 {
		cfg.MaxPerWeek = 30
	}
	if cfg.NumShifts <= 0 {
		cfg.NumShifts = 1
	}
	return cfg
}

// ScheduleResponse wraps the computed assignment list.
type ScheduleResponse struct {
	Schedule []models.Assignment `json:"schedule"`
	Meta     ScheduleMeta        `json:"meta"`
}

// ScheduleMeta reports how the result was produced.
type ScheduleMeta struct {
	Algorithm   string  `json:"algorithm"`
	FromCache   bool    `json:"from_cache"`
	Assignments int     `json:"assignments"`
	Expected    int     `json:"expected_occurrences"`
	ElapsedSecs float64 `json:"elapsed_seconds"`
}

// SampleRunResponse is returned by the canned performance fixture.
type SampleRunResponse struct {
	Schedule      []models.Assignment `json:"schedule"`
	ExecutionTime string              `json:"execution_time"`
	Assignments   int                 `json:"assignments_generated"`
}
