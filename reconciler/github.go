/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/shurcooL/githubv4"

	"github.com/openedx/osprbot/clacheck"
	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/retry"
	"github.com/openedx/osprbot/triage"
)

// githubClient implements GitHub on the REST and GraphQL clients. Reads
// retry on any transient failure; writes retry only when rate-limited,
// since a retried write that did land would duplicate itself.
type githubClient struct {
	rest     *github.Client
	v4       *githubv4.Client
	botLogin string
	retry    retry.Config
}

// NewGitHub wraps the REST and GraphQL clients. botLogin is the account
// the bot posts as; only that account's comments are treated as the bot's.
func NewGitHub(rest *github.Client, v4 *githubv4.Client, botLogin string) GitHub {
	return &githubClient{
		rest:     rest,
		v4:       v4,
		botLogin: botLogin,
		retry:    retry.DefaultConfig(),
	}
}

func (g *githubClient) ListBotComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	return retry.Do(ctx, g.retry, "list_comments", Transient, func() ([]Comment, error) {
		var out []Comment
		opts := &github.IssueListCommentsOptions{
			Sort:        github.Ptr("created"),
			Direction:   github.Ptr("asc"),
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			comments, resp, err := g.rest.Issues.ListComments(ctx, owner, repo, number, opts)
			if err != nil {
				return nil, fmt.Errorf("listing comments on %s/%s#%d: %w", owner, repo, number, err)
			}
			for _, c := range comments {
				if c.GetUser().GetLogin() != g.botLogin {
					continue
				}
				out = append(out, Comment{ID: c.GetID(), Body: c.GetBody()})
			}
			if resp.NextPage == 0 {
				return out, nil
			}
			opts.Page = resp.NextPage
		}
	})
}

func (g *githubClient) PostComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	return retry.Do(ctx, g.retry, "post_comment", rateLimited, func() (int64, error) {
		c, _, err := g.rest.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
			Body: github.Ptr(body),
		})
		if err != nil {
			return 0, fmt.Errorf("posting comment on %s/%s#%d: %w", owner, repo, number, err)
		}
		return c.GetID(), nil
	})
}

func (g *githubClient) DeleteComment(ctx context.Context, owner, repo string, commentID int64) error {
	_, err := retry.Do(ctx, g.retry, "delete_comment", rateLimited, func() (struct{}, error) {
		_, err := g.rest.Issues.DeleteComment(ctx, owner, repo, commentID)
		if err != nil {
			return struct{}{}, fmt.Errorf("deleting comment %d on %s/%s: %w", commentID, owner, repo, err)
		}
		return struct{}{}, nil
	})
	return err
}

func (g *githubClient) SetLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, err := retry.Do(ctx, g.retry, "set_labels", rateLimited, func() (struct{}, error) {
		_, _, err := g.rest.Issues.ReplaceLabelsForIssue(ctx, owner, repo, number, labels)
		if err != nil {
			return struct{}{}, fmt.Errorf("replacing labels on %s/%s#%d: %w", owner, repo, number, err)
		}
		return struct{}{}, nil
	})
	return err
}

func (g *githubClient) CLAStatus(ctx context.Context, owner, repo, sha string) (*clacheck.Status, error) {
	return retry.Do(ctx, g.retry, "get_cla_status", Transient, func() (*clacheck.Status, error) {
		return clacheck.Current(ctx, g.rest, owner, repo, sha)
	})
}

func (g *githubClient) SetCLAStatus(ctx context.Context, owner, repo, sha string, s clacheck.Status) error {
	_, err := retry.Do(ctx, g.retry, "set_cla_status", rateLimited, func() (struct{}, error) {
		return struct{}{}, clacheck.Set(ctx, g.rest, owner, repo, sha, s)
	})
	return err
}

func (g *githubClient) ListProjects(ctx context.Context, owner, repo string, number int) ([]ghproject.Project, error) {
	return retry.Do(ctx, g.retry, "list_projects", Transient, func() ([]ghproject.Project, error) {
		return ghproject.ListForPR(ctx, g.v4, owner, repo, number)
	})
}

func (g *githubClient) AddToProject(ctx context.Context, prNodeID string, p ghproject.Project) error {
	_, err := retry.Do(ctx, g.retry, "add_to_project", rateLimited, func() (struct{}, error) {
		_, err := ghproject.Add(ctx, g.v4, prNodeID, p)
		return struct{}{}, err
	})
	return err
}

func (g *githubClient) ListPullRequests(ctx context.Context, owner, repo string, since, until time.Time) ([]triage.Snapshot, error) {
	return retry.Do(ctx, g.retry, "list_pull_requests", Transient, func() ([]triage.Snapshot, error) {
		var out []triage.Snapshot
		opts := &github.PullRequestListOptions{
			State:       "all",
			Sort:        "created",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			prs, resp, err := g.rest.PullRequests.List(ctx, owner, repo, opts)
			if err != nil {
				return nil, fmt.Errorf("listing pull requests in %s/%s: %w", owner, repo, err)
			}
			for _, pr := range prs {
				created := pr.GetCreatedAt().Time
				if !since.IsZero() && created.Before(since) {
					// Sorted newest first, so everything after this is
					// older still.
					return out, nil
				}
				if !until.IsZero() && !created.Before(until) {
					continue
				}
				out = append(out, triage.NewSnapshot(pr))
			}
			if resp.NextPage == 0 {
				return out, nil
			}
			opts.Page = resp.NextPage
		}
	})
}

func (g *githubClient) ListOrgRepos(ctx context.Context, org string) ([]string, error) {
	return retry.Do(ctx, g.retry, "list_org_repos", Transient, func() ([]string, error) {
		var out []string
		opts := &github.RepositoryListByOrgOptions{
			Type:        "sources",
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			repos, resp, err := g.rest.Repositories.ListByOrg(ctx, org, opts)
			if err != nil {
				return nil, fmt.Errorf("listing repositories in %s: %w", org, err)
			}
			for _, r := range repos {
				if r.GetArchived() {
					continue
				}
				out = append(out, r.GetName())
			}
			if resp.NextPage == 0 {
				return out, nil
			}
			opts.Page = resp.NextPage
		}
	})
}
