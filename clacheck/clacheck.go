/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package clacheck manages the contributor-agreement commit status on pull
// requests. The status lives on the head commit under a fixed context, so
// GitHub itself is the store; reading it back is how the engine knows
// whether a previous pass already reported it.
package clacheck

import (
	"context"
	"fmt"

	"github.com/google/go-github/v75/github"
)

// Context is the commit status context the engine owns.
const Context = "openedx/cla"

const agreementURL = "https://openedx.org/cla"

// Status is the CLA outcome reported on a commit.
type Status struct {
	// State is a GitHub commit status state: "success" or "failure".
	State       string
	Description string
	TargetURL   string
}

var (
	// Good means a signed, unexpired agreement is on file.
	Good = Status{
		State:       "success",
		Description: "The author is covered by a signed contributor agreement",
	}

	// Bad means no usable agreement is on file.
	Bad = Status{
		State:       "failure",
		Description: "We need a signed contributor agreement before we can review this",
		TargetURL:   agreementURL,
	}

	// Bot means the author is a robot account; no agreement applies.
	Bot = Status{
		State:       "success",
		Description: "This pull request was created by a bot account",
	}

	// NoContributions means the repository accepts no contributions.
	NoContributions = Status{
		State:       "failure",
		Description: "This repository does not accept contributions",
	}
)

// Current returns the latest CLA status on a commit, or nil if none has
// been set.
func Current(ctx context.Context, gh *github.Client, owner, repo, sha string) (*Status, error) {
	var found *Status
	opts := &github.ListOptions{PerPage: 100}
	for {
		statuses, resp, err := gh.Repositories.ListStatuses(ctx, owner, repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("listing commit statuses: %w", err)
		}
		// Statuses are newest-first; the first match is authoritative.
		for _, s := range statuses {
			if s.GetContext() == Context && found == nil {
				found = &Status{
					State:       s.GetState(),
					Description: s.GetDescription(),
					TargetURL:   s.GetTargetURL(),
				}
			}
		}
		if found != nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return found, nil
}

// Set writes the CLA status on a commit.
func Set(ctx context.Context, gh *github.Client, owner, repo, sha string, s Status) error {
	_, _, err := gh.Repositories.CreateStatus(ctx, owner, repo, sha, &github.RepoStatus{
		State:       github.Ptr(s.State),
		Description: github.Ptr(s.Description),
		Context:     github.Ptr(Context),
		TargetURL:   github.Ptr(s.TargetURL),
	})
	if err != nil {
		return fmt.Errorf("setting %s status on %s: %w", Context, sha, err)
	}
	return nil
}
