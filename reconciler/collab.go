/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"time"

	"github.com/openedx/osprbot/clacheck"
	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/tracker"
	"github.com/openedx/osprbot/triage"
)

// Comment is one bot-authored comment on a pull request.
type Comment struct {
	ID   int64
	Body string
}

// GitHub is the engine's view of GitHub. Implementations own pagination,
// retries, and filtering comments down to the bot's own.
type GitHub interface {
	// ListBotComments returns the bot's own comments on a pull request,
	// oldest first.
	ListBotComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)

	PostComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	DeleteComment(ctx context.Context, owner, repo string, commentID int64) error

	// SetLabels replaces the full label set on a pull request.
	SetLabels(ctx context.Context, owner, repo string, number int, labels []string) error

	CLAStatus(ctx context.Context, owner, repo, sha string) (*clacheck.Status, error)
	SetCLAStatus(ctx context.Context, owner, repo, sha string, s clacheck.Status) error

	ListProjects(ctx context.Context, owner, repo string, number int) ([]ghproject.Project, error)
	AddToProject(ctx context.Context, prNodeID string, p ghproject.Project) error

	// ListPullRequests returns snapshots of every pull request in a repo
	// created inside [since, until). A zero bound is unbounded.
	ListPullRequests(ctx context.Context, owner, repo string, since, until time.Time) ([]triage.Snapshot, error)

	// ListOrgRepos returns the full names of an organization's
	// repositories.
	ListOrgRepos(ctx context.Context, org string) ([]string, error)
}

// Tracker is the engine's view of the issue tracker.
type Tracker interface {
	CreateIssue(ctx context.Context, req tracker.CreateRequest) (*tracker.Issue, error)
	GetIssue(ctx context.Context, key string) (*tracker.Issue, error)
	FindIssueForPR(ctx context.Context, prURL string) (*tracker.Issue, error)
	Transition(ctx context.Context, key, toStatus string) error
	FindEpic(ctx context.Context, blendedProject, blendedID string) (tracker.EpicLookup, error)
	IssueURL(key string) string
}
