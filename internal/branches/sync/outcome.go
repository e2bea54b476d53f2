package sync

// SyncOutcome records the result of one repository synchronization attempt.
//
// Field names are stable for machine consumption; an outcome is produced
// exactly once per attempt and never mutated afterwards.
type SyncOutcome struct {
	Repository     string `json:"repo"`
	RepositoryName string `json:"repo_name"`
	Success        bool   `json:"success"`
	FromBranch     string `json:"from_branch,omitempty"`
	ToBranch       string `json:"to_branch"`
	Forced         bool   `json:"forced"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	Suggestion     string `json:"suggestion,omitempty"`
}

// BatchSummary aggregates the outcomes of a batch run.
//
// Succeeded plus Failed always equals Total; Skipped is reserved and stays
// zero. Success reports whether every repository synchronized cleanly.
type BatchSummary struct {
	Success   bool          `json:"success"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Results   []SyncOutcome `json:"results"`
}
