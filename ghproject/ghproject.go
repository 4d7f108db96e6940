/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package ghproject adds pull requests to GitHub project boards and reads
// back which boards they are already on, via the GraphQL API. A project is
// identified by (org, number); items by (projectId, nodeId).
package ghproject

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
)

// Project identifies a GitHub project board.
type Project struct {
	Org    string
	Number int
}

func (p Project) String() string {
	return fmt.Sprintf("%s/%d", p.Org, p.Number)
}

// ListForPR returns the project boards a pull request is already on.
func ListForPR(ctx context.Context, v4 *githubv4.Client, owner, repo string, number int) ([]Project, error) {
	var query struct {
		Repository struct {
			PullRequest struct {
				ProjectItems struct {
					Nodes []struct {
						Project struct {
							Number int
							Owner  struct {
								Organization struct {
									Login string
								} `graphql:"... on Organization"`
							}
						}
					}
				} `graphql:"projectItems(first: 20)"`
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]any{
		"owner":  githubv4.String(owner),
		"repo":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := v4.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying project items: %w", err)
	}

	var out []Project
	for _, n := range query.Repository.PullRequest.ProjectItems.Nodes {
		out = append(out, Project{
			Org:    n.Project.Owner.Organization.Login,
			Number: n.Project.Number,
		})
	}
	return out, nil
}

// Add puts a pull request (by node id) on a project board and returns the
// new item's id.
func Add(ctx context.Context, v4 *githubv4.Client, prNodeID string, p Project) (string, error) {
	projectID, err := projectID(ctx, v4, p)
	if err != nil {
		return "", err
	}

	var m struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID githubv4.String
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}
	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(prNodeID),
	}
	if err := v4.Mutate(ctx, &m, input, nil); err != nil {
		return "", fmt.Errorf("adding pull request to project %s: %w", p, err)
	}
	return string(m.AddProjectV2ItemByID.Item.ID), nil
}

// projectID resolves (org, number) to the project's node id.
func projectID(ctx context.Context, v4 *githubv4.Client, p Project) (string, error) {
	var query struct {
		Organization struct {
			ProjectV2 struct {
				ID githubv4.String
			} `graphql:"projectV2(number: $number)"`
		} `graphql:"organization(login: $org)"`
	}
	variables := map[string]any{
		"org":    githubv4.String(p.Org),
		"number": githubv4.Int(p.Number),
	}
	if err := v4.Query(ctx, &query, variables); err != nil {
		return "", fmt.Errorf("resolving project %s: %w", p, err)
	}
	return string(query.Organization.ProjectV2.ID), nil
}
