/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/openedx/osprbot/botcomments"
	"github.com/openedx/osprbot/clacheck"
	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/tracker"
	"github.com/openedx/osprbot/triage"
)

// State is the current state of the world for one pull request, as far as
// the engine cares about it.
type State struct {
	// CommentKinds is the union of kinds across the bot's comments.
	CommentKinds botcomments.Set

	// SurveyCommentID is the id of the bot's survey comment, or 0.
	SurveyCommentID int64

	// TrackerIssue is nil when no live issue references the pull request.
	// A deleted issue reads as nil, which makes the next pass recreate it.
	TrackerIssue *tracker.Issue

	Labels []string

	CLACheck *clacheck.Status

	Projects []ghproject.Project
}

// observe reads everything a pass needs in one place. Observations that
// the desired state cannot care about are skipped.
func (e *Engine) observe(ctx context.Context, snap triage.Snapshot, des *triage.Desired) (*State, error) {
	st := &State{
		CommentKinds: botcomments.Set{},
		Labels:       snap.Labels,
	}

	comments, err := e.gh.ListBotComments(ctx, snap.Owner, snap.Repo, snap.Number)
	if err != nil {
		return nil, err
	}
	var issueKey string
	for _, c := range comments {
		kinds := botcomments.Classify(c.Body)
		for k := range kinds {
			st.CommentKinds.Add(k)
		}
		if kinds.Has(botcomments.Survey) && st.SurveyCommentID == 0 {
			st.SurveyCommentID = c.ID
		}
		// The first embedded data block wins; later comments never
		// contradict it.
		if issueKey == "" {
			if d, ok := botcomments.ExtractData(c.Body); ok {
				issueKey = d.TrackerIssue
			}
		}
	}

	if des.WantsTracker() {
		if issueKey == "" {
			// Older comments predate the data block. Fall back to
			// searching the tracker by pull request URL.
			found, err := e.tr.FindIssueForPR(ctx, snap.HTMLURL)
			if err != nil {
				return nil, err
			}
			if found != nil {
				issueKey = found.Key
				st.TrackerIssue = found
			}
		}
		if issueKey != "" && st.TrackerIssue == nil {
			issue, err := e.tr.GetIssue(ctx, issueKey)
			switch {
			case errors.Is(err, tracker.ErrIssueGone):
				clog.InfoContextf(ctx, "Tracker issue %s is gone; will recreate", issueKey)
			case err != nil:
				return nil, err
			default:
				st.TrackerIssue = issue
			}
		}
	}

	if des.CLACheck != nil {
		current, err := e.gh.CLAStatus(ctx, snap.Owner, snap.Repo, snap.HeadSHA)
		if err != nil {
			return nil, err
		}
		st.CLACheck = current
	}

	if len(des.Projects) > 0 {
		projects, err := e.gh.ListProjects(ctx, snap.Owner, snap.Repo, snap.Number)
		if err != nil {
			return nil, fmt.Errorf("listing boards for %s: %w", snap, err)
		}
		st.Projects = projects
	}

	return st, nil
}
