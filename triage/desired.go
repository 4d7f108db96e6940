/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openedx/osprbot/botcomments"
	"github.com/openedx/osprbot/clacheck"
	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/policy"
)

// Tracker statuses the engine steers issues into. StatusNeedsTriage is the
// tracker's default creation status; a desired status equal to it never
// produces a transition.
const (
	StatusNeedsTriage            = "Needs Triage"
	StatusCommunityManagerReview = "Community Manager Review"
	StatusCommunityReview        = "Open edX Community Review"
)

// Config carries the routing targets for desired-state computation.
type Config struct {
	// OSPRProject is the tracker project for open-source contribution
	// review tickets.
	OSPRProject string

	// BlendedProject is the tracker project for blended initiatives.
	BlendedProject string

	// OSPRBoard and BlendedBoard are the GitHub project boards external
	// and blended pull requests are added to. A zero value disables the
	// board.
	OSPRBoard    ghproject.Project
	BlendedBoard ghproject.Project
}

// Desired is the state the world should be in for one pull request.
type Desired struct {
	Comments botcomments.Set

	// Labels are the engine-owned GitHub labels that should be present.
	Labels map[string]bool

	// TrackerProject is empty when no tracker issue is wanted.
	TrackerProject     string
	TrackerStatus      string
	TrackerLabels      []string
	TrackerSummary     string
	TrackerDescription string

	// BlendedID is the blended project marker ("BD-27") found in the
	// title or body, when the pull request belongs to a blended
	// initiative. The sponsoring epic is resolved later, at the tracker
	// boundary; this computation stays pure.
	BlendedID string

	// Projects are the GitHub boards the pull request should be on.
	Projects []ghproject.Project

	// CLACheck is the commit status the head commit should carry.
	CLACheck *clacheck.Status
}

var blendedRE = regexp.MustCompile(`(?i)\[\s*BD\s*-\s*(\d+)\s*\]`)

// BlendedProjectID extracts a blended project id from a pull request's
// title, falling back to the body. Returns "" when the pull request is not
// part of a blended initiative.
func BlendedProjectID(s Snapshot) string {
	for _, text := range []string{s.Title, s.Body} {
		if m := blendedRE.FindStringSubmatch(text); m != nil {
			return "BD-" + m[1]
		}
	}
	return ""
}

// Compute decides what state the world should be in for a pull request.
// It is a pure function of the snapshot and the policy facts. A nil return
// means the engine takes no action at all for this pull request.
func Compute(cfg Config, s Snapshot, author policy.Facts, repoRefuses bool) *Desired {
	if s.AuthorIsBot || author.IsRobot {
		// Robot authors get a passing agreement status so CI is never
		// blocked on them, and nothing else.
		return &Desired{
			Comments: botcomments.Set{},
			CLACheck: &clacheck.Bot,
		}
	}
	if author.IsInternal {
		return nil
	}

	if author.IsContractor {
		// Contractor work may or may not be a community contribution; ask
		// and stop. No tracker issue, no labels.
		return &Desired{Comments: botcomments.NewSet(botcomments.Contractor)}
	}

	if repoRefuses {
		d := &Desired{
			Comments: botcomments.Set{},
			CLACheck: &clacheck.NoContributions,
		}
		// Telling the author their pull request "will be closed" only
		// makes sense while it is still open.
		if s.State() == "open" {
			d.Comments.Add(botcomments.NoContributions)
		}
		return d
	}

	d := &Desired{
		Comments:       botcomments.Set{},
		Labels:         map[string]bool{},
		TrackerStatus:  StatusNeedsTriage,
		TrackerSummary: s.Title,
		TrackerDescription: fmt.Sprintf(
			"(From %s by @%s)\n----\n\n%s", s.HTMLURL, s.Author, s.Body),
	}

	if id := BlendedProjectID(s); id != "" {
		d.BlendedID = id
		d.TrackerProject = cfg.BlendedProject
		d.TrackerLabels = append(d.TrackerLabels, "blended")
		d.Labels["blended"] = true
		d.Comments.Add(botcomments.Blended)
		if cfg.BlendedBoard != (ghproject.Project{}) {
			d.Projects = append(d.Projects, cfg.BlendedBoard)
		}
	} else {
		d.TrackerProject = cfg.OSPRProject
		d.Labels["open-source-contribution"] = true
		if s.State() == "open" {
			d.Comments.Add(botcomments.Welcome)
		} else {
			d.Comments.Add(botcomments.WelcomeClosed)
		}
		if cfg.OSPRBoard != (ghproject.Project{}) {
			d.Projects = append(d.Projects, cfg.OSPRBoard)
		}

		switch {
		case author.IsCommitter:
			// Core committers skip triage, and are never shown the CLA
			// message even without an agreement on file.
			d.TrackerStatus = StatusCommunityReview
			d.TrackerLabels = append(d.TrackerLabels, "core-committer")
			d.Labels["core committer"] = true
			d.Comments.Remove(botcomments.Welcome)
			d.Comments.Remove(botcomments.WelcomeClosed)
			d.Comments.Add(botcomments.CoreCommitter)
		case !author.HasSignedAgreement:
			d.TrackerStatus = StatusCommunityManagerReview
			d.Comments.Add(botcomments.NeedCLA)
		}
	}

	if author.HasSignedAgreement {
		// The CI-unblocking token rides along in whichever first comment
		// is being made; it is never a comment of its own.
		d.Comments.Add(botcomments.OKToTest)
		d.CLACheck = &clacheck.Good
	} else {
		d.CLACheck = &clacheck.Bad
	}

	if s.Draft {
		d.Comments.Add(botcomments.EndOfWIP)
	}

	if s.State() != "open" {
		d.Comments.Add(botcomments.Survey)
	}

	d.Labels[strings.ToLower(d.TrackerStatus)] = true

	return d
}

// WantsTracker reports whether the desired state includes a tracker issue.
func (d *Desired) WantsTracker() bool {
	return d != nil && d.TrackerProject != ""
}
