/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package triage

import (
	"fmt"
	"time"

	"github.com/google/go-github/v75/github"
)

// Snapshot is an immutable view of one pull request at one point in time.
// It is constructed once at the system boundary and never mutated by the
// engine.
type Snapshot struct {
	Owner  string
	Repo   string
	Number int

	// NodeID is the GraphQL node id, used for project board mutations.
	NodeID  string
	HTMLURL string

	Author      string
	AuthorIsBot bool

	Title string
	Body  string

	Draft  bool
	Merged bool
	Closed bool

	CreatedAt time.Time
	HeadSHA   string

	Labels []string
}

// FullName returns "owner/repo".
func (s Snapshot) FullName() string {
	return s.Owner + "/" + s.Repo
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s#%d", s.FullName(), s.Number)
}

// State collapses the closed/merged flags into the original's three-way
// pull request state.
func (s Snapshot) State() string {
	switch {
	case s.Merged:
		return "merged"
	case s.Closed:
		return "closed"
	default:
		return "open"
	}
}

// NewSnapshot builds a Snapshot from a GitHub pull request payload. This is
// the only place the engine touches the raw API shape.
func NewSnapshot(pr *github.PullRequest) Snapshot {
	s := Snapshot{
		Number:      pr.GetNumber(),
		NodeID:      pr.GetNodeID(),
		HTMLURL:     pr.GetHTMLURL(),
		Author:      pr.GetUser().GetLogin(),
		AuthorIsBot: pr.GetUser().GetType() == "Bot",
		Title:       pr.GetTitle(),
		Body:        pr.GetBody(),
		Draft:       pr.GetDraft(),
		Merged:      pr.GetMerged(),
		Closed:      pr.GetState() == "closed",
		CreatedAt:   pr.GetCreatedAt().Time,
		HeadSHA:     pr.GetHead().GetSHA(),
	}
	if base := pr.GetBase().GetRepo(); base != nil {
		s.Owner = base.GetOwner().GetLogin()
		s.Repo = base.GetName()
	}
	// "merged" is absent from list payloads; MergedAt is always there.
	if !s.Merged && pr.MergedAt != nil {
		s.Merged = true
	}
	for _, l := range pr.Labels {
		s.Labels = append(s.Labels, l.GetName())
	}
	return s
}
