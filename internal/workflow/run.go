package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/calculate1024/goal-tracker/internal/extract"
	"github.com/calculate1024/goal-tracker/internal/gmail"
	"github.com/calculate1024/goal-tracker/internal/goal"
)

// deepLinkFormat opens the source message in the Gmail web UI.
const deepLinkFormat = "https://mail.google.com/mail/u/0/#inbox/%s"

var addressPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Run executes the full pipeline: credential gate, fetch, dedup, extraction,
// source matching, store writes and optional notification. Errors that
// prevent any useful result abort the run; partial failures are folded into
// an otherwise successful summary.
func (o *Orchestrator) Run(ctx context.Context) *RunResult {
	// Step 1: credential gate, before any network I/O.
	var missing []string
	if !o.mail.Configured() {
		missing = append(missing, "Gmail credentials")
	}
	if !o.extractor.Configured() {
		missing = append(missing, "Anthropic API key")
	}
	if len(missing) > 0 {
		return &RunResult{Message: "missing configuration: " + strings.Join(missing, ", ")}
	}

	// Step 2: fetch. Zero emails is an ok outcome, not an error.
	emails, err := o.mail.FetchLatestEmails(ctx, o.opts.MaxEmails)
	if err != nil {
		return &RunResult{Message: fmt.Sprintf("failed to fetch emails: %v", err)}
	}
	if len(emails) == 0 {
		return &RunResult{OK: true, Message: "no emails received in the last 24 hours"}
	}

	// Step 3: drop already-processed messages.
	processed := o.sink.ProcessedEmailIDs()
	fresh := emails[:0:0]
	for _, e := range emails {
		if !processed[e.ID] {
			fresh = append(fresh, e)
		}
	}
	skipped := len(emails) - len(fresh)
	if len(fresh) == 0 {
		return &RunResult{
			OK:                true,
			TotalFetched:      len(emails),
			DuplicatesSkipped: skipped,
			Message:           fmt.Sprintf("all %d emails were already processed, nothing new to analyze", len(emails)),
		}
	}

	// Step 4: resolve the acting user's address; degrade to header
	// extraction and then to a placeholder rather than aborting.
	userEmail := o.resolveUserEmail(ctx, fresh)

	// Step 5: one extraction call for the whole batch.
	promptEmail := userEmail
	if promptEmail == "" {
		promptEmail = "the user"
	}
	result, err := o.extractor.ExtractGoals(ctx, FormatEmailBatch(fresh), promptEmail, o.sink.Categories())
	if err != nil {
		return &RunResult{
			TotalFetched:      len(emails),
			DuplicatesSkipped: skipped,
			Message:           err.Error(),
		}
	}

	// Step 6: match each goal back to its source email and write it.
	// Writes are independent; one failure does not abort the rest.
	index := newSubjectIndex(fresh)
	byID := make(map[string]*gmail.Email, len(fresh))
	for i := range fresh {
		byID[fresh[i].ID] = &fresh[i]
	}

	run := &RunResult{
		OK:                true,
		TotalFetched:      len(emails),
		DuplicatesSkipped: skipped,
		Summary:           &result.Summary,
	}

	for _, extracted := range result.Goals {
		source := byID[extracted.SourceEmailID]
		if source == nil {
			source = index.Match(extracted.SourceSubject)
		}

		in := goal.Input{
			Title:    extracted.Title,
			Category: extracted.Category,
			Deadline: extracted.Deadline,
			Subtasks: extracted.Subtasks,
		}
		if source != nil {
			in.SourceEmailID = source.ID
			in.SourceLink = fmt.Sprintf(deepLinkFormat, source.ID)
		}

		outcome := GoalOutcome{Title: extracted.Title, SourceEmailID: in.SourceEmailID}
		created, err := o.sink.AddGoal(in)
		if err != nil {
			outcome.Error = err.Error()
			run.Failed++
		} else {
			outcome.GoalID = created.ID
			run.Created++
		}
		run.Goals = append(run.Goals, outcome)
	}

	// Step 7: best-effort notification; failure is a warning, not a run
	// failure.
	if o.opts.Notify && userEmail != "" {
		subject, body := extract.BuildSummaryEmail(result)
		if sent := o.mail.SendEmail(ctx, userEmail, subject, body); !sent.OK {
			run.Warning = "notification not sent: " + sent.Message
		}
	}

	// Step 8: compose the human-readable summary.
	run.Message = o.composeMessage(run)
	return run
}

// resolveUserEmail prefers the provider profile, then falls back to an
// address found in the To/Delivered-To headers of the batch.
func (o *Orchestrator) resolveUserEmail(ctx context.Context, emails []gmail.Email) string {
	if addr, err := o.mail.FetchUserEmail(ctx); err == nil {
		return addr
	}
	for _, e := range emails {
		for _, h := range []string{e.To, e.DeliveredTo} {
			if addr := addressPattern.FindString(h); addr != "" {
				return addr
			}
		}
	}
	return ""
}

func (o *Orchestrator) composeMessage(run *RunResult) string {
	var parts []string

	if run.Summary != nil {
		parts = append(parts, fmt.Sprintf("analyzed %d email(s) (%d action-required, %d filtered out)",
			run.Summary.TotalEmails, run.Summary.ActionRequired, run.Summary.FilteredOut))
	}
	if run.DuplicatesSkipped > 0 {
		parts = append(parts, fmt.Sprintf("skipped %d duplicate(s)", run.DuplicatesSkipped))
	}
	parts = append(parts, fmt.Sprintf("created %d goal(s)", run.Created))
	if run.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d goal(s) failed to save", run.Failed))
	}

	msg := strings.Join(parts, ", ")
	if run.Warning != "" {
		msg += " (" + run.Warning + ")"
	}
	return msg
}

// FormatEmailBatch renders a deduplicated batch into the prompt-ready text
// blob, one delimited block per email.
func FormatEmailBatch(emails []gmail.Email) string {
	var b strings.Builder
	for i, e := range emails {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== EMAIL %d ===\n", i+1)
		fmt.Fprintf(&b, "Id: %s\n", e.ID)
		fmt.Fprintf(&b, "From: %s\n", e.From)
		fmt.Fprintf(&b, "To: %s\n", e.To)
		fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
		fmt.Fprintf(&b, "Date: %s\n", e.Date)
		b.WriteString("\n")
		b.WriteString(e.Body)
		b.WriteString("\n")
	}
	return b.String()
}
