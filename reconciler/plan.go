/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openedx/osprbot/botcomments"
	"github.com/openedx/osprbot/clacheck"
	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/labels"
	"github.com/openedx/osprbot/tracker"
	"github.com/openedx/osprbot/triage"
)

// Action is one write the executor will perform.
type Action interface {
	// Describe returns a short human-readable form for logs and dry runs.
	Describe() string
}

// SetCLAStatus writes the contributor-agreement commit status.
type SetCLAStatus struct {
	Status clacheck.Status
}

func (a SetCLAStatus) Describe() string {
	return fmt.Sprintf("set-cla-status %s", a.Status.State)
}

// CreateTrackerIssue creates the review issue for the pull request.
type CreateTrackerIssue struct {
	Req tracker.CreateRequest
}

func (a CreateTrackerIssue) Describe() string {
	return fmt.Sprintf("create-tracker-issue %s", a.Req.Project)
}

// TransitionTrackerIssue moves an issue to a status. An empty Key refers
// to the issue created earlier in the same plan.
type TransitionTrackerIssue struct {
	Key string
	To  string
}

func (a TransitionTrackerIssue) Describe() string {
	key := a.Key
	if key == "" {
		key = "(new)"
	}
	return fmt.Sprintf("transition-tracker-issue %s to %q", key, a.To)
}

// SetLabels replaces the pull request's labels. The replacement set always
// carries the unowned labels through unchanged.
type SetLabels struct {
	Labels []string
}

func (a SetLabels) Describe() string {
	return fmt.Sprintf("set-labels [%s]", strings.Join(a.Labels, ", "))
}

// PostComment posts one comment delivering the given kinds. Rendering
// happens at execution time, after the tracker issue key is known.
type PostComment struct {
	Kinds []botcomments.Kind
	Data  botcomments.TemplateData
}

func (a PostComment) Describe() string {
	names := make([]string, len(a.Kinds))
	for i, k := range a.Kinds {
		names[i] = k.String()
	}
	return fmt.Sprintf("post-comment %s", strings.Join(names, "+"))
}

// DeleteComment removes a comment. The only comment the engine ever
// retracts is the survey comment on a reopened pull request.
type DeleteComment struct {
	CommentID int64
}

func (a DeleteComment) Describe() string {
	return fmt.Sprintf("delete-comment %d", a.CommentID)
}

// AddToProject puts the pull request on a project board.
type AddToProject struct {
	Project ghproject.Project
}

func (a AddToProject) Describe() string {
	return fmt.Sprintf("add-to-project %s", a.Project)
}

// Plan computes the writes that move the current state to the desired
// state. It is pure: same inputs, same plan. An empty plan means the pull
// request is converged.
//
// Write order is fixed: commit status, tracker issue creation, tracker
// transition, labels, comments, survey retraction, boards. A pass that
// dies in the middle leaves a prefix of this order done, and the next pass
// plans only the remainder.
func Plan(snap triage.Snapshot, st *State, des *triage.Desired, epic tracker.EpicLookup) ([]Action, error) {
	var actions []Action

	if des.CLACheck != nil && !claMatches(st.CLACheck, *des.CLACheck) {
		actions = append(actions, SetCLAStatus{Status: *des.CLACheck})
	}

	if des.WantsTracker() && st.TrackerIssue == nil {
		actions = append(actions, CreateTrackerIssue{Req: createRequest(snap, des, epic)})
		if !strings.EqualFold(des.TrackerStatus, triage.StatusNeedsTriage) {
			actions = append(actions, TransitionTrackerIssue{To: des.TrackerStatus})
		}
	} else if des.WantsTracker() {
		// A desired status equal to the creation default never forces a
		// transition; a human may have moved the issue on deliberately.
		current := st.TrackerIssue.Status
		if !strings.EqualFold(current, des.TrackerStatus) && !strings.EqualFold(des.TrackerStatus, triage.StatusNeedsTriage) {
			actions = append(actions, TransitionTrackerIssue{Key: st.TrackerIssue.Key, To: des.TrackerStatus})
		}
	}

	if len(des.Labels) > 0 {
		if replacement, changed := labelReplacement(st.Labels, des.Labels); changed {
			actions = append(actions, SetLabels{Labels: replacement})
		}
	}

	commentActions, err := planComments(snap, st, des, epic)
	if err != nil {
		return nil, err
	}
	actions = append(actions, commentActions...)

	if snap.State() == "open" && st.SurveyCommentID != 0 {
		actions = append(actions, DeleteComment{CommentID: st.SurveyCommentID})
	}

	for _, p := range des.Projects {
		if !onProject(st.Projects, p) {
			actions = append(actions, AddToProject{Project: p})
		}
	}

	return actions, nil
}

func claMatches(current *clacheck.Status, want clacheck.Status) bool {
	return current != nil &&
		current.State == want.State &&
		current.Description == want.Description
}

// createRequest assembles the tracker issue for a pull request, including
// the sponsoring epic's fields when one was found.
func createRequest(snap triage.Snapshot, des *triage.Desired, epic tracker.EpicLookup) tracker.CreateRequest {
	fields := map[string]string{
		tracker.FieldURL:             snap.HTMLURL,
		tracker.FieldPRNumber:        strconv.Itoa(snap.Number),
		tracker.FieldRepo:            snap.FullName(),
		tracker.FieldContributorName: snap.Author,
	}
	if des.BlendedID != "" {
		fields[tracker.FieldBlendedID] = des.BlendedID
	}
	if epic.Outcome == tracker.EpicFound {
		fields[tracker.FieldEpicLink] = epic.Epic.Key
		if epic.Epic.StatusPage != "" {
			fields[tracker.FieldBlendedStatusPage] = epic.Epic.StatusPage
		}
		if epic.Epic.PlatformArea != "" {
			fields[tracker.FieldPlatformMapArea] = epic.Epic.PlatformArea
		}
		if len(epic.Epic.Customer) > 0 {
			fields[tracker.FieldCustomer] = strings.Join(epic.Epic.Customer, ", ")
		}
	}
	return tracker.CreateRequest{
		Project:     des.TrackerProject,
		Summary:     des.TrackerSummary,
		Description: des.TrackerDescription,
		Labels:      des.TrackerLabels,
		Fields:      fields,
	}
}

// labelReplacement builds the full label set to write: the desired owned
// labels plus every unowned label already present. Returns changed=false
// when the result equals the current set.
func labelReplacement(current []string, desired map[string]bool) ([]string, bool) {
	want := map[string]bool{}
	for l := range desired {
		want[l] = true
	}
	for _, l := range labels.Unowned(current) {
		want[l] = true
	}

	if len(want) == len(current) {
		same := true
		for _, l := range current {
			if !want[l] {
				same = false
				break
			}
		}
		if same {
			return nil, false
		}
	}

	out := make([]string, 0, len(want))
	for l := range want {
		out = append(out, l)
	}
	sort.Strings(out)
	return out, true
}

// planComments decides which comments to post. At most one first comment
// and one survey comment come out of a single plan. Combined-only kinds
// ride along inside the first comment; when the first comment already
// exists they are treated as delivered by it, since posted comments are
// never edited.
func planComments(snap triage.Snapshot, st *State, des *triage.Desired, epic tracker.EpicLookup) ([]Action, error) {
	missing := des.Comments.Diff(st.CommentKinds)
	// The welcome variants stand in for each other. A greeting posted while
	// the pull request was open stays valid after it closes, and the
	// closed-variant greeting stays after a reopen; posted comments are
	// never edited.
	if st.CommentKinds.Has(botcomments.Welcome) {
		missing.Remove(botcomments.WelcomeClosed)
	}
	if st.CommentKinds.Has(botcomments.WelcomeClosed) {
		missing.Remove(botcomments.Welcome)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	data := botcomments.TemplateData{
		User:     snap.Author,
		IsMerged: snap.Merged,
	}
	if epic.Outcome == tracker.EpicFound {
		data.EpicName = epic.Epic.Name
		data.EpicStatusPage = epic.Epic.StatusPage
	}

	var primary []botcomments.Kind
	var combined []botcomments.Kind
	var leftover []botcomments.Kind
	wantSurvey := false
	for _, k := range missing.Sorted() {
		switch {
		case k == botcomments.Survey:
			wantSurvey = true
		case botcomments.CombinedOnly.Has(k):
			combined = append(combined, k)
		case botcomments.First.Has(k):
			primary = append(primary, k)
		default:
			leftover = append(leftover, k)
		}
	}
	if len(primary) > 1 || len(leftover) > 0 {
		bad := append(leftover, primary...)
		sort.Slice(bad, func(i, j int) bool { return bad[i] < bad[j] })
		return nil, &UnhandledCommentKindsError{Kinds: bad}
	}

	// The folded sections render only when their kind actually rides in
	// the comment being posted, never from desired-set membership alone.
	for _, k := range combined {
		switch k {
		case botcomments.NeedCLA:
			data.NeedCLA = true
		case botcomments.EndOfWIP:
			data.IsDraft = true
		case botcomments.OKToTest:
			data.HasSignedAgreement = true
		}
	}

	// The closed-variant greeting already thanks the author for the
	// finished work; the survey ask waits for a later pass.
	if len(primary) == 1 && primary[0] == botcomments.WelcomeClosed {
		wantSurvey = false
	}

	var actions []Action
	if len(primary) == 1 {
		actions = append(actions, PostComment{
			Kinds: append(primary, combined...),
			Data:  data,
		})
	}
	if wantSurvey {
		surveyData := data
		actions = append(actions, PostComment{
			Kinds: []botcomments.Kind{botcomments.Survey},
			Data:  surveyData,
		})
	}
	return actions, nil
}

func onProject(current []ghproject.Project, p ghproject.Project) bool {
	for _, c := range current {
		if c == p {
			return true
		}
	}
	return false
}
