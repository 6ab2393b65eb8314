package workflow

import (
	"context"

	"github.com/calculate1024/goal-tracker/internal/extract"
	"github.com/calculate1024/goal-tracker/internal/gmail"
	"github.com/calculate1024/goal-tracker/internal/goal"
)

// MailGateway is the mailbox surface the orchestrator needs. gmail.Client
// implements it; tests substitute function-field fakes.
type MailGateway interface {
	Configured() bool
	FetchLatestEmails(ctx context.Context, maxResults int) ([]gmail.Email, error)
	FetchUserEmail(ctx context.Context) (string, error)
	SendEmail(ctx context.Context, to, subject, body string) gmail.SendResult
}

// Extractor turns an email batch into validated goal candidates.
// extract.Client implements it.
type Extractor interface {
	Configured() bool
	ExtractGoals(ctx context.Context, emailsText, userEmail string, categories []string) (*extract.Result, error)
}

// GoalSink is the slice of the store the orchestrator writes through.
type GoalSink interface {
	ProcessedEmailIDs() map[string]bool
	Categories() []string
	AddGoal(in goal.Input) (goal.Goal, error)
}

// GoalOutcome records one attempted goal write.
type GoalOutcome struct {
	Title         string `json:"title"`
	GoalID        string `json:"goalId,omitempty"`
	SourceEmailID string `json:"sourceEmailId,omitempty"`
	Error         string `json:"error,omitempty"`
}

// RunResult is the single summary produced by a workflow run.
type RunResult struct {
	OK                bool             `json:"ok"`
	Message           string           `json:"message"`
	TotalFetched      int              `json:"totalFetched"`
	DuplicatesSkipped int              `json:"duplicatesSkipped"`
	Created           int              `json:"created"`
	Failed            int              `json:"failed"`
	Goals             []GoalOutcome    `json:"goals,omitempty"`
	Summary           *extract.Summary `json:"analysisSummary,omitempty"`
	Warning           string           `json:"warning,omitempty"`
}

// Options tune a run.
type Options struct {
	// MaxEmails caps the mailbox listing.
	MaxEmails int
	// Notify controls whether a summary email is attempted after a
	// successful run.
	Notify bool
}

// Orchestrator sequences one end-to-end analysis run.
type Orchestrator struct {
	mail      MailGateway
	extractor Extractor
	sink      GoalSink
	opts      Options
}

// New creates an orchestrator over the given collaborators.
func New(mail MailGateway, extractor Extractor, sink GoalSink, opts Options) *Orchestrator {
	if opts.MaxEmails <= 0 {
		opts.MaxEmails = 20
	}
	return &Orchestrator{mail: mail, extractor: extractor, sink: sink, opts: opts}
}
