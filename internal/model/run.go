package model

import "time"

// RunStatus tracks the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one KPI computation for observability: how many matches were
// listed, how many produced feature records, and why the rest were skipped.
type Run struct {
	ID        string     `json:"id"`
	PUUID     string     `json:"puuid"`
	Year      string     `json:"year"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the outcome of a run.
type RunResult struct {
	MatchesListed int                `json:"matches_listed"`
	GamesUsed     int                `json:"games_used"`
	Skips         map[SkipReason]int `json:"skips,omitempty"`
	KpiKey        string             `json:"kpi_key,omitempty"`
	Error         string             `json:"error,omitempty"`
}
