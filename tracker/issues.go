/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import (
	"context"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"
	"github.com/chainguard-dev/clog"
	"github.com/trivago/tgo/tcontainer"
)

// CreateRequest describes a new tracker issue. Fields is keyed by custom
// field display name (the Field* constants).
type CreateRequest struct {
	Project     string
	Summary     string
	Description string
	Labels      []string
	Fields      map[string]string
}

// Issue is the subset of a tracker issue the engine cares about.
type Issue struct {
	Key     string
	Project string
	Status  string
}

// CreateIssue creates a new issue. The issue starts in the tracker's
// default creation status.
func (c *Client) CreateIssue(ctx context.Context, req CreateRequest) (*Issue, error) {
	unknowns := tcontainer.NewMarshalMap()
	for name, value := range req.Fields {
		id, ok := c.fieldIDs[name]
		if !ok {
			clog.FromContext(ctx).With("field", name).Warn("Skipping unknown tracker field")
			continue
		}
		unknowns[id] = value
	}

	fields := &jira.IssueFields{
		Project:     jira.Project{Key: req.Project},
		Type:        jira.IssueType{Name: c.issueType},
		Summary:     req.Summary,
		Description: req.Description,
		Labels:      req.Labels,
		Unknowns:    unknowns,
	}

	created, resp, err := c.jc.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return nil, apiErr("creating issue", resp, err)
	}
	return &Issue{Key: created.Key, Project: req.Project}, nil
}

// GetIssue fetches an issue's key, project, and status. Returns
// ErrIssueGone when the issue has been deleted.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	issue, resp, err := c.jc.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrIssueGone
		}
		return nil, apiErr(fmt.Sprintf("getting issue %s", key), resp, err)
	}
	return issueView(issue), nil
}

// FindIssueForPR searches for an existing issue whose URL field references
// the pull request. Returns nil when there is none.
func (c *Client) FindIssueForPR(ctx context.Context, prURL string) (*Issue, error) {
	jql := fmt.Sprintf(`%q ~ %q`, FieldURL, prURL)
	found, resp, err := c.jc.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{MaxResults: 2})
	if err != nil {
		return nil, apiErr("searching for pull request issue", resp, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	if len(found) > 1 {
		clog.WarnContextf(ctx, "multiple tracker issues reference %s; using %s", prURL, found[0].Key)
	}
	return issueView(&found[0]), nil
}

func issueView(issue *jira.Issue) *Issue {
	out := &Issue{Key: issue.Key}
	if issue.Fields != nil {
		out.Project = issue.Fields.Project.Key
		if issue.Fields.Status != nil {
			out.Status = issue.Fields.Status.Name
		}
	}
	return out
}
