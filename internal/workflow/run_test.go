package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/calculate1024/goal-tracker/internal/extract"
	"github.com/calculate1024/goal-tracker/internal/gmail"
	"github.com/calculate1024/goal-tracker/internal/goal"
)

type fakeMail struct {
	configured bool
	emails     []gmail.Email
	fetchErr   error
	userEmail  string
	userErr    error
	sendResult gmail.SendResult
	sentTo     string
	sentBody   string
}

func (f *fakeMail) Configured() bool { return f.configured }

func (f *fakeMail) FetchLatestEmails(ctx context.Context, maxResults int) ([]gmail.Email, error) {
	return f.emails, f.fetchErr
}

func (f *fakeMail) FetchUserEmail(ctx context.Context) (string, error) {
	return f.userEmail, f.userErr
}

func (f *fakeMail) SendEmail(ctx context.Context, to, subject, body string) gmail.SendResult {
	f.sentTo = to
	f.sentBody = body
	return f.sendResult
}

type fakeExtractor struct {
	configured bool
	result     *extract.Result
	err        error
	calls      int
	gotText    string
	gotUser    string
}

func (f *fakeExtractor) Configured() bool { return f.configured }

func (f *fakeExtractor) ExtractGoals(ctx context.Context, emailsText, userEmail string, categories []string) (*extract.Result, error) {
	f.calls++
	f.gotText = emailsText
	f.gotUser = userEmail
	return f.result, f.err
}

type fakeSink struct {
	processed map[string]bool
	added     []goal.Input
	failTitle string
	nextID    int
}

func (f *fakeSink) ProcessedEmailIDs() map[string]bool {
	if f.processed == nil {
		return map[string]bool{}
	}
	return f.processed
}

func (f *fakeSink) Categories() []string { return []string{"Work", "Personal"} }

func (f *fakeSink) AddGoal(in goal.Input) (goal.Goal, error) {
	if in.Title == f.failTitle {
		return goal.Goal{}, errors.New("disk full")
	}
	f.added = append(f.added, in)
	f.nextID++
	return goal.Goal{ID: fmt.Sprintf("g%d", f.nextID), Title: in.Title}, nil
}

func testOrchestrator(mail *fakeMail, ex *fakeExtractor, sink *fakeSink, opts Options) *Orchestrator {
	return New(mail, ex, sink, opts)
}

func resultWith(goals ...extract.Goal) *extract.Result {
	return &extract.Result{
		Summary: extract.Summary{TotalEmails: 2, ActionRequired: len(goals)},
		Goals:   goals,
	}
}

func TestRun_MissingCredentials(t *testing.T) {
	run := testOrchestrator(&fakeMail{}, &fakeExtractor{}, &fakeSink{}, Options{}).Run(context.Background())

	if run.OK {
		t.Error("run without credentials must not be ok")
	}
	if !strings.Contains(run.Message, "Gmail credentials") || !strings.Contains(run.Message, "Anthropic API key") {
		t.Errorf("message must name every missing item: %q", run.Message)
	}
}

func TestRun_FetchFailureAborts(t *testing.T) {
	mail := &fakeMail{configured: true, fetchErr: errors.New("timeout")}
	ex := &fakeExtractor{configured: true}
	run := testOrchestrator(mail, ex, &fakeSink{}, Options{}).Run(context.Background())

	if run.OK {
		t.Error("fetch failure must not be ok")
	}
	if ex.calls != 0 {
		t.Error("extraction must not run after a failed fetch")
	}
}

func TestRun_NoEmailsIsOK(t *testing.T) {
	mail := &fakeMail{configured: true}
	ex := &fakeExtractor{configured: true}
	run := testOrchestrator(mail, ex, &fakeSink{}, Options{}).Run(context.Background())

	if !run.OK {
		t.Errorf("empty mailbox is a successful run: %q", run.Message)
	}
	if ex.calls != 0 {
		t.Error("nothing to extract from an empty batch")
	}
}

func TestRun_DeduplicatesBeforeExtraction(t *testing.T) {
	mail := &fakeMail{
		configured: true,
		userEmail:  "me@example.com",
		emails: []gmail.Email{
			{ID: "m1", Subject: "already seen"},
			{ID: "m2", Subject: "brand new", Body: "please review"},
		},
	}
	ex := &fakeExtractor{configured: true, result: resultWith()}
	sink := &fakeSink{processed: map[string]bool{"m1": true}}

	run := testOrchestrator(mail, ex, sink, Options{}).Run(context.Background())

	if !run.OK {
		t.Fatalf("run failed: %q", run.Message)
	}
	if run.TotalFetched != 2 || run.DuplicatesSkipped != 1 {
		t.Errorf("fetched=%d skipped=%d", run.TotalFetched, run.DuplicatesSkipped)
	}
	if strings.Contains(ex.gotText, "m1") || !strings.Contains(ex.gotText, "m2") {
		t.Errorf("duplicate forwarded to extraction:\n%s", ex.gotText)
	}
}

func TestRun_AllDuplicates(t *testing.T) {
	mail := &fakeMail{configured: true, emails: []gmail.Email{{ID: "m1"}, {ID: "m2"}}}
	ex := &fakeExtractor{configured: true}
	sink := &fakeSink{processed: map[string]bool{"m1": true, "m2": true}}

	run := testOrchestrator(mail, ex, sink, Options{}).Run(context.Background())

	if !run.OK || run.DuplicatesSkipped != 2 {
		t.Errorf("run = %+v", run)
	}
	if ex.calls != 0 {
		t.Error("extraction must be skipped when everything is a duplicate")
	}
}

func TestRun_ExtractionFailureAborts(t *testing.T) {
	mail := &fakeMail{configured: true, emails: []gmail.Email{{ID: "m1"}}}
	ex := &fakeExtractor{configured: true, err: errors.New("Anthropic API rate limit reached, try again shortly")}
	sink := &fakeSink{}

	run := testOrchestrator(mail, ex, sink, Options{}).Run(context.Background())

	if run.OK {
		t.Error("extraction failure must not be ok")
	}
	if !strings.Contains(run.Message, "rate limit") {
		t.Errorf("message = %q", run.Message)
	}
	if len(sink.added) != 0 {
		t.Error("no goals may be written after a failed extraction")
	}
}

func TestRun_MatchesByIDAndSubject(t *testing.T) {
	mail := &fakeMail{
		configured: true,
		userEmail:  "me@example.com",
		emails: []gmail.Email{
			{ID: "m1", Subject: "contract review"},
			{ID: "m2", Subject: "quarterly budget planning"},
		},
	}
	ex := &fakeExtractor{configured: true, result: resultWith(
		extract.Goal{Title: "By id", SourceEmailID: "m1", SourceSubject: "nonsense"},
		extract.Goal{Title: "By subject", SourceEmailID: "unknown", SourceSubject: "Quarterly Budget Planning"},
		extract.Goal{Title: "No source", SourceEmailID: "", SourceSubject: "totally unrelated"},
	)}
	sink := &fakeSink{}

	run := testOrchestrator(mail, ex, sink, Options{}).Run(context.Background())

	if run.Created != 3 {
		t.Fatalf("created = %d: %q", run.Created, run.Message)
	}
	if sink.added[0].SourceEmailID != "m1" {
		t.Errorf("id match failed: %+v", sink.added[0])
	}
	if sink.added[1].SourceEmailID != "m2" {
		t.Errorf("subject fallback failed: %+v", sink.added[1])
	}
	if want := "https://mail.google.com/mail/u/0/#inbox/m2"; sink.added[1].SourceLink != want {
		t.Errorf("deep link = %q, want %q", sink.added[1].SourceLink, want)
	}
	if sink.added[2].SourceEmailID != "" || sink.added[2].SourceLink != "" {
		t.Errorf("unmatched goal must carry no source: %+v", sink.added[2])
	}
}

func TestRun_PartialWriteFailure(t *testing.T) {
	mail := &fakeMail{configured: true, userEmail: "me@example.com", emails: []gmail.Email{{ID: "m1"}}}
	ex := &fakeExtractor{configured: true, result: resultWith(
		extract.Goal{Title: "good one"},
		extract.Goal{Title: "bad one"},
		extract.Goal{Title: "another good one"},
	)}
	sink := &fakeSink{failTitle: "bad one"}

	run := testOrchestrator(mail, ex, sink, Options{}).Run(context.Background())

	if !run.OK {
		t.Error("partial write failure keeps the run ok")
	}
	if run.Created != 2 || run.Failed != 1 {
		t.Errorf("created=%d failed=%d", run.Created, run.Failed)
	}

	var failed *GoalOutcome
	for i := range run.Goals {
		if run.Goals[i].Title == "bad one" {
			failed = &run.Goals[i]
		}
	}
	if failed == nil || failed.Error == "" {
		t.Errorf("failed outcome missing its error: %+v", run.Goals)
	}
	if !strings.Contains(run.Message, "1 goal(s) failed to save") {
		t.Errorf("message = %q", run.Message)
	}
}

func TestRun_UserEmailFallsBackToHeaders(t *testing.T) {
	mail := &fakeMail{
		configured: true,
		userErr:    errors.New("profile unavailable"),
		emails: []gmail.Email{
			{ID: "m1", To: "Some Person <person@example.org>"},
		},
		sendResult: gmail.SendResult{OK: true},
	}
	ex := &fakeExtractor{configured: true, result: resultWith()}

	testOrchestrator(mail, ex, &fakeSink{}, Options{Notify: true}).Run(context.Background())

	if ex.gotUser != "person@example.org" {
		t.Errorf("prompt user = %q, want header-extracted address", ex.gotUser)
	}
	if mail.sentTo != "person@example.org" {
		t.Errorf("notification sent to %q", mail.sentTo)
	}
}

func TestRun_UserEmailPlaceholder(t *testing.T) {
	mail := &fakeMail{
		configured: true,
		userErr:    errors.New("profile unavailable"),
		emails:     []gmail.Email{{ID: "m1", To: "undisclosed-recipients"}},
	}
	ex := &fakeExtractor{configured: true, result: resultWith()}

	run := testOrchestrator(mail, ex, &fakeSink{}, Options{Notify: true}).Run(context.Background())

	if ex.gotUser != "the user" {
		t.Errorf("prompt user = %q, want placeholder", ex.gotUser)
	}
	// No resolvable address means no notification attempt, and no warning.
	if mail.sentTo != "" || run.Warning != "" {
		t.Errorf("sentTo=%q warning=%q", mail.sentTo, run.Warning)
	}
}

func TestRun_NotificationFailureIsWarning(t *testing.T) {
	mail := &fakeMail{
		configured: true,
		userEmail:  "me@example.com",
		emails:     []gmail.Email{{ID: "m1"}},
		sendResult: gmail.SendResult{Message: "send rejected (403): quota"},
	}
	ex := &fakeExtractor{configured: true, result: resultWith(extract.Goal{Title: "x"})}

	run := testOrchestrator(mail, ex, &fakeSink{}, Options{Notify: true}).Run(context.Background())

	if !run.OK {
		t.Error("notification failure must not fail the run")
	}
	if !strings.Contains(run.Warning, "quota") {
		t.Errorf("warning = %q", run.Warning)
	}
	if !strings.Contains(run.Message, run.Warning) {
		t.Errorf("summary message should surface the warning: %q", run.Message)
	}
}

func TestRun_NotifyDisabled(t *testing.T) {
	mail := &fakeMail{configured: true, userEmail: "me@example.com", emails: []gmail.Email{{ID: "m1"}}}
	ex := &fakeExtractor{configured: true, result: resultWith()}

	testOrchestrator(mail, ex, &fakeSink{}, Options{Notify: false}).Run(context.Background())

	if mail.sentTo != "" {
		t.Error("notification sent despite Notify=false")
	}
}

func TestFormatEmailBatch(t *testing.T) {
	out := FormatEmailBatch([]gmail.Email{
		{ID: "m1", From: "a@e.com", To: "b@e.com", Subject: "s1", Date: "d1", Body: "body one"},
		{ID: "m2", Subject: "s2", Body: "body two"},
	})

	if !strings.Contains(out, "=== EMAIL 1 ===") || !strings.Contains(out, "=== EMAIL 2 ===") {
		t.Errorf("block markers missing:\n%s", out)
	}
	if !strings.Contains(out, "Id: m1\n") || !strings.Contains(out, "Subject: s1\n") {
		t.Errorf("metadata missing:\n%s", out)
	}
	if strings.Index(out, "body one") > strings.Index(out, "=== EMAIL 2 ===") {
		t.Error("bodies must stay inside their own blocks")
	}
}
