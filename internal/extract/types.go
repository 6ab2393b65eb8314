package extract

// Priority values allowed on an extracted goal.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Summary is the model's own report on one analysis batch.
type Summary struct {
	TotalEmails     int            `json:"total_emails"`
	ActionRequired  int            `json:"action_required"`
	FilteredOut     int            `json:"filtered_out"`
	Categories      map[string]int `json:"categories"`
	TopPriority     string         `json:"top_priority"`
	SkippedSubjects []string       `json:"skipped_subjects"`
}

// Goal is one goal candidate extracted from an email. All fields are model
// output and pass through validation before anything downstream sees them.
type Goal struct {
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	SourceEmailID string   `json:"source_email_id"`
	SourceSubject string   `json:"source_subject"`
	SourceFrom    string   `json:"source_from"`
	Subtasks      []string `json:"subtasks"`
	Deadline      string   `json:"deadline"`
}

// Result is one validated analysis response. It is consumed once per
// workflow run and never persisted.
type Result struct {
	Summary Summary `json:"analysis_summary"`
	Goals   []Goal  `json:"goals"`
}
