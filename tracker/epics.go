/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import (
	"context"
	"fmt"

	jira "github.com/andygrunwald/go-jira"
)

// EpicOutcome is the result of searching for a sponsoring epic.
type EpicOutcome int

const (
	// EpicNone means no lookup happened; the pull request is not blended.
	EpicNone EpicOutcome = iota
	// EpicFound means exactly one epic carries the project id.
	EpicFound
	// EpicNotFound means no epic carries the project id.
	EpicNotFound
	// EpicAmbiguous means more than one epic carries the project id.
	EpicAmbiguous
)

func (o EpicOutcome) String() string {
	switch o {
	case EpicNone:
		return "none"
	case EpicFound:
		return "found"
	case EpicNotFound:
		return "not-found"
	case EpicAmbiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("EpicOutcome(%d)", int(o))
	}
}

// Epic is the sponsoring epic for a blended pull request.
type Epic struct {
	Key          string
	Name         string
	StatusPage   string
	PlatformArea string
	Customer     []string
}

// EpicLookup carries an epic search result. Epic is nil unless Outcome is
// EpicFound.
type EpicLookup struct {
	Outcome EpicOutcome
	Epic    *Epic
}

// FindEpic searches the blended project for the epic carrying the given
// project id, for example "BD-34". Zero or multiple matches are reported
// through the outcome rather than as errors, since both are expected
// states the caller must handle.
func (c *Client) FindEpic(ctx context.Context, blendedProject, blendedID string) (EpicLookup, error) {
	jql := fmt.Sprintf(`project = %s AND type = Epic AND %q ~ %q`, blendedProject, FieldBlendedID, blendedID)
	found, resp, err := c.jc.Issue.SearchWithContext(ctx, jql, nil)
	if err != nil {
		return EpicLookup{}, apiErr("searching for epic", resp, err)
	}

	// The ~ operator is a text match, so "BD-3" also matches "BD-34".
	// Filter to exact ids.
	var exact []int
	for i := range found {
		if c.stringField(&found[i], FieldBlendedID) == blendedID {
			exact = append(exact, i)
		}
	}
	switch len(exact) {
	case 0:
		return EpicLookup{Outcome: EpicNotFound}, nil
	case 1:
		issue := &found[exact[0]]
		epic := &Epic{
			Key:          issue.Key,
			StatusPage:   c.stringField(issue, FieldBlendedStatusPage),
			PlatformArea: c.stringField(issue, FieldPlatformMapArea),
		}
		if issue.Fields != nil {
			epic.Name = issue.Fields.Summary
			if cust := c.stringField(issue, FieldCustomer); cust != "" {
				epic.Customer = []string{cust}
			}
		}
		return EpicLookup{Outcome: EpicFound, Epic: epic}, nil
	default:
		return EpicLookup{Outcome: EpicAmbiguous}, nil
	}
}

// stringField reads a custom field value off an issue by display name.
// Unresolved fields and non-string values read as empty.
func (c *Client) stringField(issue *jira.Issue, name string) string {
	id, ok := c.fieldIDs[name]
	if !ok || issue.Fields == nil || issue.Fields.Unknowns == nil {
		return ""
	}
	v, _ := issue.Fields.Unknowns.Value(id)
	s, _ := v.(string)
	return s
}
