package domain

import "time"

// SourceStats counts one source's contribution to a pipeline run.
type SourceStats struct {
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Failed  bool `json:"failed,omitempty"`
}

// DigestStats counts the digest stage of a pipeline run.
type DigestStats struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// EmailStats is the outcome of the assemble-and-deliver stage.
type EmailStats struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Articles int    `json:"articles_count,omitempty"`
	Sent     int    `json:"recipients,omitempty"`
	Failed   int    `json:"failed,omitempty"`
}

// RunResult aggregates one end-to-end pipeline execution. The trigger
// interface returns this record; it never raises.
type RunResult struct {
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  time.Duration          `json:"duration"`
	Scraping  map[string]SourceStats `json:"scraping"`
	Digests   DigestStats            `json:"digests"`
	Email     EmailStats             `json:"email"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
}
