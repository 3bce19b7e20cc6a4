package models

// ProgressStatus enumerates the lifecycle of a scheduling run.
type ProgressStatus string

const (
	ProgressIdle      ProgressStatus = "idle"
	ProgressRunning   ProgressStatus = "running"
	ProgressCompleted ProgressStatus = "completed"
	ProgressError     ProgressStatus = "error"
)

// ProgressSnapshot is a point-in-time view of the in-flight run.
// EstimatedTime is nil until the run has made measurable progress.
type ProgressSnapshot struct {
	Progress      int            `json:"progress"`
	Status        ProgressStatus `json:"status"`
	CurrentStage  string         `json:"current_stage"`
	ElapsedTime   float64        `json:"elapsed_time"`
	EstimatedTime *float64       `json:"estimated_time,omitempty"`
	Stages        []string       `json:"stages"`
}

// CacheStatus summarises the schedule cache for operational visibility.
type CacheStatus struct {
	Size       int      `json:"cache_size"`
	Capacity   int      `json:"max_size"`
	TTLSeconds int      `json:"ttl_seconds"`
	Keys       []string `json:"entries"`
}
