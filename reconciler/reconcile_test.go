/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/openedx/osprbot/botcomments"
	"github.com/openedx/osprbot/clacheck"
	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/policy"
	"github.com/openedx/osprbot/reconciler"
	"github.com/openedx/osprbot/tracker"
	"github.com/openedx/osprbot/triage"
)

const surveyURL = "https://example.com/survey"

var testConfig = triage.Config{
	OSPRProject:    "OSPR",
	BlendedProject: "BLENDED",
	OSPRBoard:      ghproject.Project{Org: "openedx", Number: 31},
	BlendedBoard:   ghproject.Project{Org: "openedx", Number: 42},
}

func testRegistry(t *testing.T) *policy.Registry {
	t.Helper()
	people := []byte(`
newcomer_signed:
  agreement: individual
committer_jan:
  agreement: individual
  core_committer: true
contract_dev:
  institution: WidgetWorks
robot-uploader:
  is_robot: true
insider:
  agreement: institution
  institution: edX
`)
	orgs := []byte(`
edX:
  internal: true
WidgetWorks:
  contractor: true
`)
	repos := []byte(`
openedx/no-contrib-repo:
  refuse_contributions: true
`)
	reg, err := policy.Load(people, orgs, repos)
	if err != nil {
		t.Fatalf("loading registry: %v", err)
	}
	return reg
}

// fakeGitHub is a stateful in-memory GitHub. Writes mutate it, so a second
// pass observes the first pass's effects.
type fakeGitHub struct {
	mu sync.Mutex

	comments      map[int][]reconciler.Comment
	nextCommentID int64
	labels        map[int][]string
	cla           map[string]*clacheck.Status
	projects      map[int][]ghproject.Project
	prs           []triage.Snapshot

	writes []string
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		comments: map[int][]reconciler.Comment{},
		labels:   map[int][]string{},
		cla:      map[string]*clacheck.Status{},
		projects: map[int][]ghproject.Project{},
	}
}

func (f *fakeGitHub) record(format string, args ...any) {
	f.writes = append(f.writes, fmt.Sprintf(format, args...))
}

func (f *fakeGitHub) ListBotComments(_ context.Context, _, _ string, number int) ([]reconciler.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reconciler.Comment(nil), f.comments[number]...), nil
}

func (f *fakeGitHub) PostComment(_ context.Context, _, _ string, number int, body string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCommentID++
	f.comments[number] = append(f.comments[number], reconciler.Comment{ID: f.nextCommentID, Body: body})
	f.record("post-comment #%d", number)
	return f.nextCommentID, nil
}

func (f *fakeGitHub) DeleteComment(_ context.Context, _, _ string, commentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for number, list := range f.comments {
		kept := list[:0]
		for _, c := range list {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		f.comments[number] = kept
	}
	f.record("delete-comment %d", commentID)
	return nil
}

func (f *fakeGitHub) SetLabels(_ context.Context, _, _ string, number int, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels[number] = append([]string(nil), labels...)
	f.record("set-labels #%d", number)
	return nil
}

func (f *fakeGitHub) CLAStatus(_ context.Context, _, _, sha string) (*clacheck.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cla[sha], nil
}

func (f *fakeGitHub) SetCLAStatus(_ context.Context, _, _, sha string, s clacheck.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cla[sha] = &s
	f.record("set-cla-status %s", s.State)
	return nil
}

func (f *fakeGitHub) ListProjects(_ context.Context, _, _ string, number int) ([]ghproject.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ghproject.Project(nil), f.projects[number]...), nil
}

func (f *fakeGitHub) AddToProject(_ context.Context, prNodeID string, p ghproject.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	number := nodeIDNumber(prNodeID)
	f.projects[number] = append(f.projects[number], p)
	f.record("add-to-project %s", p)
	return nil
}

func (f *fakeGitHub) ListPullRequests(_ context.Context, _, _ string, since, until time.Time) ([]triage.Snapshot, error) {
	var out []triage.Snapshot
	for _, s := range f.prs {
		if !since.IsZero() && s.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !s.CreatedAt.Before(until) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeGitHub) ListOrgRepos(_ context.Context, _ string) ([]string, error) {
	return []string{"some-repo"}, nil
}

// nodeIDNumber decodes the test convention nodeID = "node-<number>".
func nodeIDNumber(nodeID string) int {
	var n int
	fmt.Sscanf(nodeID, "node-%d", &n)
	return n
}

// fakeTracker is a stateful in-memory tracker with an unrestricted
// transition table.
type fakeTracker struct {
	mu sync.Mutex

	issues map[string]*tracker.Issue
	byURL  map[string]string
	nextID int
	epics  map[string]tracker.EpicLookup

	createdReqs []tracker.CreateRequest
	createErr   map[string]error // keyed by URL field
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		issues:    map[string]*tracker.Issue{},
		byURL:     map[string]string{},
		epics:     map[string]tracker.EpicLookup{},
		createErr: map[string]error{},
	}
}

func (f *fakeTracker) CreateIssue(_ context.Context, req tracker.CreateRequest) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := req.Fields[tracker.FieldURL]
	if err := f.createErr[url]; err != nil {
		return nil, err
	}
	f.nextID++
	issue := &tracker.Issue{
		Key:     fmt.Sprintf("%s-%d", req.Project, f.nextID),
		Project: req.Project,
		Status:  triage.StatusNeedsTriage,
	}
	f.issues[issue.Key] = issue
	f.byURL[url] = issue.Key
	f.createdReqs = append(f.createdReqs, req)
	return issue, nil
}

func (f *fakeTracker) GetIssue(_ context.Context, key string) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[key]
	if !ok {
		return nil, tracker.ErrIssueGone
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeTracker) FindIssueForPR(_ context.Context, prURL string) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.byURL[prURL]
	if !ok {
		return nil, nil
	}
	cp := *f.issues[key]
	return &cp, nil
}

func (f *fakeTracker) Transition(_ context.Context, key, toStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[key]
	if !ok {
		return tracker.ErrIssueGone
	}
	issue.Status = toStatus
	return nil
}

func (f *fakeTracker) FindEpic(_ context.Context, _, blendedID string) (tracker.EpicLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lookup, ok := f.epics[blendedID]; ok {
		return lookup, nil
	}
	return tracker.EpicLookup{Outcome: tracker.EpicNotFound}, nil
}

func (f *fakeTracker) IssueURL(key string) string {
	return "https://tracker.example.com/browse/" + key
}

func openPR(author string, number int) triage.Snapshot {
	return triage.Snapshot{
		Owner:     "openedx",
		Repo:      "edx-platform",
		Number:    number,
		NodeID:    fmt.Sprintf("node-%d", number),
		HTMLURL:   fmt.Sprintf("https://github.com/openedx/edx-platform/pull/%d", number),
		Author:    author,
		Title:     "Fix the frobnicator",
		Body:      "A small fix.",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		HeadSHA:   fmt.Sprintf("sha-%d", number),
	}
}

func newEngine(t *testing.T, gh *fakeGitHub, tr *fakeTracker, opts ...reconciler.Option) *reconciler.Engine {
	t.Helper()
	opts = append([]reconciler.Option{reconciler.WithSurveyURL(surveyURL)}, opts...)
	return reconciler.New(gh, tr, testRegistry(t), testConfig, opts...)
}

func TestNewExternalPRWithoutCLA(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("unknown_person", 101)

	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !out.Changed {
		t.Fatal("expected changes on first pass")
	}
	if out.TrackerIssue != "OSPR-1" {
		t.Errorf("TrackerIssue = %q, want OSPR-1", out.TrackerIssue)
	}

	issue := tr.issues["OSPR-1"]
	if issue == nil {
		t.Fatal("no tracker issue created")
	}
	if issue.Status != triage.StatusCommunityManagerReview {
		t.Errorf("issue status = %q, want %q", issue.Status, triage.StatusCommunityManagerReview)
	}
	req := tr.createdReqs[0]
	if got := req.Fields[tracker.FieldURL]; got != snap.HTMLURL {
		t.Errorf("URL field = %q, want %q", got, snap.HTMLURL)
	}
	if got := req.Fields[tracker.FieldRepo]; got != "openedx/edx-platform" {
		t.Errorf("Repo field = %q", got)
	}

	if s := gh.cla["sha-101"]; s == nil || s.State != "failure" {
		t.Errorf("CLA status = %+v, want failure", s)
	}

	comments := gh.comments[101]
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
	body := comments[0].Body
	kinds := botcomments.Classify(body)
	want := botcomments.NewSet(botcomments.Welcome, botcomments.NeedCLA)
	if !kinds.Equal(want) {
		t.Errorf("comment kinds = %s, want %s", kinds, want)
	}
	if d, ok := botcomments.ExtractData(body); !ok || d.TrackerIssue != "OSPR-1" {
		t.Errorf("embedded data = %+v ok=%v, want tracker issue OSPR-1", d, ok)
	}
	if !strings.Contains(body, "OSPR-1") || !strings.Contains(body, tr.IssueURL("OSPR-1")) {
		t.Error("comment should name the tracker issue and link it")
	}

	wantLabels := []string{"community manager review", "open-source-contribution"}
	if diff := cmp.Diff(wantLabels, gh.labels[101]); diff != "" {
		t.Errorf("labels (-want, +got): %s", diff)
	}

	if diff := cmp.Diff([]ghproject.Project{testConfig.OSPRBoard}, gh.projects[101]); diff != "" {
		t.Errorf("projects (-want, +got): %s", diff)
	}
}

func TestSecondPassIsConverged(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 102)

	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	writesAfterFirst := len(gh.writes)

	// A redelivered webhook carries updated labels.
	snap.Labels = gh.labels[102]
	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if out.Changed {
		t.Errorf("second pass changed state; actions: %v", out.Actions)
	}
	if out.TrackerIssue != "OSPR-1" {
		t.Errorf("second pass lost the tracker issue: %q", out.TrackerIssue)
	}
	if len(gh.writes) != writesAfterFirst {
		t.Errorf("second pass wrote: %v", gh.writes[writesAfterFirst:])
	}
}

func TestPartialFailureConverges(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 103)

	// A previous pass got as far as the tracker issue and died before the
	// comment. No data block exists, so the issue is only findable by URL.
	if _, err := tr.CreateIssue(context.Background(), tracker.CreateRequest{
		Project: "OSPR",
		Summary: snap.Title,
		Fields:  map[string]string{tracker.FieldURL: snap.HTMLURL},
	}); err != nil {
		t.Fatalf("seeding issue: %v", err)
	}
	gh.cla["sha-103"] = &clacheck.Good

	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(tr.createdReqs) != 1 {
		t.Fatalf("created %d issues, want the seeded one only", len(tr.createdReqs))
	}
	if out.TrackerIssue != "OSPR-1" {
		t.Errorf("TrackerIssue = %q, want the found OSPR-1", out.TrackerIssue)
	}
	comments := gh.comments[103]
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
	if d, ok := botcomments.ExtractData(comments[0].Body); !ok || d.TrackerIssue != "OSPR-1" {
		t.Errorf("recovered comment should embed the found issue, got %+v ok=%v", d, ok)
	}
}

func TestUnownedLabelsPreserved(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 104)
	snap.Labels = []string{"needs-more-cowbell", "rejected"}

	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	want := []string{"needs triage", "needs-more-cowbell", "open-source-contribution"}
	if diff := cmp.Diff(want, gh.labels[104]); diff != "" {
		t.Errorf("labels (-want, +got): %s", diff)
	}
}

// A robot author gets the passing agreement status and nothing else: no
// greeting, no labels, no tracker issue. The second pass is converged.
func TestBotAuthorGetsOnlyCLAStatus(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("robot-uploader", 105)

	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !out.Changed {
		t.Error("first pass should set the commit status")
	}
	s := gh.cla["sha-105"]
	if s == nil || s.State != "success" || s.Description != clacheck.Bot.Description {
		t.Errorf("CLA status = %+v, want the bot status", s)
	}
	if len(gh.comments[105]) != 0 || len(gh.labels[105]) != 0 {
		t.Errorf("robot PR got comments %v labels %v", gh.comments[105], gh.labels[105])
	}
	if len(tr.createdReqs) != 0 {
		t.Error("tracker issue created for robot author")
	}

	out, err = e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if out.Changed {
		t.Errorf("second pass changed state; actions: %v", out.Actions)
	}
}

func TestInternalAuthorIsIgnored(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)

	out, err := e.ReconcilePR(context.Background(), openPR("insider", 105))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Changed || len(out.Actions) != 0 {
		t.Errorf("internal author should be ignored; actions: %v", out.Actions)
	}
	if len(gh.writes) != 0 {
		t.Errorf("writes happened: %v", gh.writes)
	}
	if len(tr.createdReqs) != 0 {
		t.Error("tracker issue created for internal author")
	}
}

func TestContractorGetsOnlyTheQuestion(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)

	out, err := e.ReconcilePR(context.Background(), openPR("contract_dev", 106))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.TrackerIssue != "" {
		t.Errorf("contractor got a tracker issue: %q", out.TrackerIssue)
	}
	comments := gh.comments[106]
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
	if !botcomments.Classify(comments[0].Body).Has(botcomments.Contractor) {
		t.Error("comment is not the contractor question")
	}
	if len(gh.labels[106]) != 0 {
		t.Errorf("contractor PR got labels: %v", gh.labels[106])
	}
}

func TestBlendedPRWithEpic(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	tr.epics["BD-34"] = tracker.EpicLookup{
		Outcome: tracker.EpicFound,
		Epic: &tracker.Epic{
			Key:          "BLENDED-9",
			Name:         "Frobnicator Modernization",
			StatusPage:   "https://example.com/bd-34",
			PlatformArea: "Larger Ecosystem",
			Customer:     []string{"WidgetWorks"},
		},
	}
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 107)
	snap.Title = "[BD-34] Modernize the frobnicator"

	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.EpicOutcome != tracker.EpicFound {
		t.Errorf("EpicOutcome = %s, want found", out.EpicOutcome)
	}
	if out.TrackerIssue != "BLENDED-1" {
		t.Errorf("TrackerIssue = %q, want BLENDED-1", out.TrackerIssue)
	}
	req := tr.createdReqs[0]
	if got := req.Fields[tracker.FieldEpicLink]; got != "BLENDED-9" {
		t.Errorf("epic link = %q", got)
	}
	if got := req.Fields[tracker.FieldPlatformMapArea]; got != "Larger Ecosystem" {
		t.Errorf("platform area = %q", got)
	}
	if got := req.Fields[tracker.FieldBlendedStatusPage]; got != "https://example.com/bd-34" {
		t.Errorf("status page field = %q", got)
	}
	if got := req.Fields[tracker.FieldBlendedID]; got != "BD-34" {
		t.Errorf("blended id field = %q", got)
	}

	body := gh.comments[107][0].Body
	if !botcomments.Classify(body).Has(botcomments.Blended) {
		t.Error("comment is not the blended welcome")
	}
	if !strings.Contains(body, "Frobnicator Modernization") {
		t.Error("comment should name the epic")
	}
	if diff := cmp.Diff([]ghproject.Project{testConfig.BlendedBoard}, gh.projects[107]); diff != "" {
		t.Errorf("projects (-want, +got): %s", diff)
	}
	wantLabels := []string{"blended", "needs triage"}
	if diff := cmp.Diff(wantLabels, gh.labels[107]); diff != "" {
		t.Errorf("labels (-want, +got): %s", diff)
	}
}

func TestBlendedEpicMissingStillCreatesIssue(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 108)
	snap.Body = "Part of [BD-99]."

	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.EpicOutcome != tracker.EpicNotFound {
		t.Errorf("EpicOutcome = %s, want not-found", out.EpicOutcome)
	}
	if out.TrackerIssue != "BLENDED-1" {
		t.Errorf("TrackerIssue = %q, want BLENDED-1", out.TrackerIssue)
	}
	req := tr.createdReqs[0]
	if _, ok := req.Fields[tracker.FieldEpicLink]; ok {
		t.Error("epic link set despite missing epic")
	}
}

func TestCoreCommitterSkipsTriage(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)

	out, err := e.ReconcilePR(context.Background(), openPR("committer_jan", 109))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	issue := tr.issues[out.TrackerIssue]
	if issue.Status != triage.StatusCommunityReview {
		t.Errorf("issue status = %q, want %q", issue.Status, triage.StatusCommunityReview)
	}
	body := gh.comments[109][0].Body
	kinds := botcomments.Classify(body)
	if !kinds.Has(botcomments.CoreCommitter) || kinds.Has(botcomments.Welcome) {
		t.Errorf("comment kinds = %s", kinds)
	}
	if !kinds.Has(botcomments.OKToTest) {
		t.Error("signed committer should get the CI token")
	}
	wantLabels := []string{"core committer", "open edx community review", "open-source-contribution"}
	if diff := cmp.Diff(wantLabels, gh.labels[109]); diff != "" {
		t.Errorf("labels (-want, +got): %s", diff)
	}
}

func TestReopenDeletesSurveyComment(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 110)

	// Welcomed while open, then closed. The open-state greeting satisfies
	// the closed variant, so the closed pass posts only the survey.
	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("open pass: %v", err)
	}
	closed := snap
	closed.Closed = true
	closed.Labels = gh.labels[110]
	if _, err := e.ReconcilePR(context.Background(), closed); err != nil {
		t.Fatalf("closed pass: %v", err)
	}
	var surveyID int64
	for _, c := range gh.comments[110] {
		kinds := botcomments.Classify(c.Body)
		if kinds.Has(botcomments.WelcomeClosed) {
			t.Error("closed pass posted a second greeting")
		}
		if kinds.Has(botcomments.Survey) {
			surveyID = c.ID
		}
	}
	if surveyID == 0 {
		t.Fatal("closed pass posted no survey comment")
	}

	// Reopened: the survey comment must be retracted.
	snap.Labels = gh.labels[110]
	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("reopened pass: %v", err)
	}
	for _, c := range gh.comments[110] {
		if c.ID == surveyID {
			t.Error("survey comment still present after reopen")
		}
	}
}

// A pull request first seen after it closed gets the closed-variant
// greeting alone; the survey ask follows on the next pass.
func TestClosedFirstSeenDefersSurvey(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 114)
	snap.Closed = true

	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	comments := gh.comments[114]
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want the greeting only", len(comments))
	}
	kinds := botcomments.Classify(comments[0].Body)
	if !kinds.Has(botcomments.WelcomeClosed) || kinds.Has(botcomments.Survey) {
		t.Errorf("first comment kinds = %s, want the closed greeting without the survey", kinds)
	}

	snap.Labels = gh.labels[114]
	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	var surveyed bool
	for _, c := range gh.comments[114] {
		if botcomments.Classify(c.Body).Has(botcomments.Survey) {
			surveyed = true
		}
	}
	if !surveyed {
		t.Error("second pass did not post the survey")
	}
}

func TestNoContributionsRepo(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 111)
	snap.Repo = "no-contrib-repo"
	snap.HTMLURL = "https://github.com/openedx/no-contrib-repo/pull/111"

	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.TrackerIssue != "" {
		t.Errorf("tracker issue created for refused repo: %q", out.TrackerIssue)
	}
	if !botcomments.Classify(gh.comments[111][0].Body).Has(botcomments.NoContributions) {
		t.Error("comment is not the no-contributions notice")
	}
	s := gh.cla["sha-111"]
	if s == nil || s.State != "failure" || s.Description != clacheck.NoContributions.Description {
		t.Errorf("CLA status = %+v", s)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr, reconciler.WithDryRun(true))

	out, err := e.ReconcilePR(context.Background(), openPR("unknown_person", 112))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(out.Actions) == 0 {
		t.Error("dry run should still report the plan")
	}
	if out.Changed {
		t.Error("dry run claims to have changed state")
	}
	if len(gh.writes) != 0 {
		t.Errorf("dry run wrote to GitHub: %v", gh.writes)
	}
	if len(tr.createdReqs) != 0 {
		t.Error("dry run created a tracker issue")
	}
}

func TestRescanIsolatesFailures(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()

	good := openPR("newcomer_signed", 201)
	bad := openPR("unknown_person", 202)
	gh.prs = []triage.Snapshot{good, bad}
	tr.createErr[bad.HTMLURL] = errors.New("tracker exploded")

	e := newEngine(t, gh, tr)
	report, err := e.RescanRepo(context.Background(), "openedx", "edx-platform", reconciler.RescanOptions{})
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if report.Scanned != 2 {
		t.Errorf("Scanned = %d, want 2", report.Scanned)
	}
	if report.Issues[201] == "" {
		t.Error("good PR got no tracker issue")
	}
	if _, ok := report.Errors[202]; !ok {
		t.Error("bad PR's failure not reported")
	}
	if _, ok := report.Errors[201]; ok {
		t.Error("good PR reported an error")
	}
}

func TestRescanDateBounds(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()

	old := openPR("newcomer_signed", 301)
	old.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := openPR("newcomer_signed", 302)
	gh.prs = []triage.Snapshot{old, recent}

	e := newEngine(t, gh, tr)
	report, err := e.RescanRepo(context.Background(), "openedx", "edx-platform", reconciler.RescanOptions{
		Since: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if report.Scanned != 1 {
		t.Errorf("Scanned = %d, want only the recent PR", report.Scanned)
	}
	if _, ok := report.Issues[301]; ok {
		t.Error("out-of-bounds PR was reconciled")
	}
}

func TestDeletedTrackerIssueIsRecreated(t *testing.T) {
	t.Parallel()
	gh := newFakeGitHub()
	tr := newFakeTracker()
	e := newEngine(t, gh, tr)
	snap := openPR("newcomer_signed", 113)

	if _, err := e.ReconcilePR(context.Background(), snap); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	// Someone deletes the issue out from under the bot.
	delete(tr.issues, "OSPR-1")
	delete(tr.byURL, snap.HTMLURL)

	snap.Labels = gh.labels[113]
	out, err := e.ReconcilePR(context.Background(), snap)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if out.TrackerIssue != "OSPR-2" {
		t.Errorf("TrackerIssue = %q, want recreated OSPR-2", out.TrackerIssue)
	}
}
