/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/openedx/osprbot/botcomments"
	"github.com/openedx/osprbot/triage"
)

// apply executes a plan in order, stopping at the first failure. The
// executed prefix stays behind in the external systems, where the next
// pass observes it and plans only the remainder.
//
// Comment rendering happens here rather than at planning time, because the
// body of a first comment names the tracker issue that may only exist
// once the create action before it has run.
func (e *Engine) apply(ctx context.Context, snap triage.Snapshot, st *State, actions []Action, out *Outcome) error {
	log := clog.FromContext(ctx)

	issueKey := ""
	if st.TrackerIssue != nil {
		issueKey = st.TrackerIssue.Key
	}

	for _, a := range actions {
		out.Actions = append(out.Actions, a.Describe())
		if e.dryRun {
			log.Infof("[dry-run] %s", a.Describe())
			continue
		}
		log.Infof("Applying %s", a.Describe())

		switch act := a.(type) {
		case SetCLAStatus:
			if err := e.gh.SetCLAStatus(ctx, snap.Owner, snap.Repo, snap.HeadSHA, act.Status); err != nil {
				return err
			}

		case CreateTrackerIssue:
			issue, err := e.tr.CreateIssue(ctx, act.Req)
			if err != nil {
				return err
			}
			issueKey = issue.Key
			log.Infof("Created tracker issue %s", issueKey)

		case TransitionTrackerIssue:
			key := act.Key
			if key == "" {
				key = issueKey
			}
			if key == "" {
				return fmt.Errorf("transition to %q planned with no tracker issue", act.To)
			}
			if err := e.tr.Transition(ctx, key, act.To); err != nil {
				return err
			}

		case SetLabels:
			if err := e.gh.SetLabels(ctx, snap.Owner, snap.Repo, snap.Number, act.Labels); err != nil {
				return err
			}

		case PostComment:
			body, err := e.renderComment(act, issueKey)
			if err != nil {
				return err
			}
			if _, err := e.gh.PostComment(ctx, snap.Owner, snap.Repo, snap.Number, body); err != nil {
				return err
			}

		case DeleteComment:
			if err := e.gh.DeleteComment(ctx, snap.Owner, snap.Repo, act.CommentID); err != nil {
				return err
			}

		case AddToProject:
			// Board membership is best-effort; a failed add must not fail
			// the pull request's pass.
			if err := e.gh.AddToProject(ctx, snap.NodeID, act.Project); err != nil {
				log.Warnf("Adding to board %s failed: %v", act.Project, err)
				continue
			}

		default:
			return fmt.Errorf("unknown action type %T", a)
		}
		out.Changed = true
	}

	out.TrackerIssue = issueKey
	return nil
}

// renderComment fills the late-bound template fields and renders the
// action's primary kind. First comments carrying a tracker issue also get
// the hidden data block, so later passes can find the issue without a
// tracker search.
func (e *Engine) renderComment(act PostComment, issueKey string) (string, error) {
	data := act.Data
	data.SurveyURL = e.surveyURL
	if issueKey != "" {
		data.TrackerIssue = issueKey
		data.TrackerURL = e.tr.IssueURL(issueKey)
	}

	primary := primaryKind(act.Kinds)
	body, err := botcomments.Render(primary, data)
	if err != nil {
		return "", err
	}
	if issueKey != "" && primary != botcomments.Survey {
		body, err = botcomments.EmbedData(body, botcomments.Data{TrackerIssue: issueKey})
		if err != nil {
			return "", err
		}
	}
	return body, nil
}

// primaryKind picks the kind whose template renders the comment. The
// combined-only kinds in the list only steer the template's sections.
func primaryKind(kinds []botcomments.Kind) botcomments.Kind {
	for _, k := range kinds {
		if !botcomments.CombinedOnly.Has(k) {
			return k
		}
	}
	return kinds[0]
}
