/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import (
	"context"
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/chainguard-dev/clog"
)

// Transition moves an issue to the named status. The status is matched
// against the targets of the issue's currently valid transitions, not
// against transition names, since workflows routinely name the two
// differently. Returns NoValidTransitionError when no single hop reaches
// the desired status.
func (c *Client) Transition(ctx context.Context, key, toStatus string) error {
	transitions, resp, err := c.jc.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return apiErr(fmt.Sprintf("listing transitions for %s", key), resp, err)
	}

	id, valid := matchTransition(transitions, toStatus)
	if id == "" {
		return &NoValidTransitionError{Key: key, To: toStatus, Valid: valid}
	}

	clog.InfoContextf(ctx, "Transitioning %s to %q", key, toStatus)
	resp, err = c.jc.Issue.DoTransitionWithContext(ctx, key, id)
	if err != nil {
		return apiErr(fmt.Sprintf("transitioning %s to %q", key, toStatus), resp, err)
	}
	return nil
}

// matchTransition picks the transition whose target status matches
// toStatus case-insensitively, and returns the full list of reachable
// statuses for error reporting.
func matchTransition(transitions []jira.Transition, toStatus string) (id string, valid []string) {
	for _, t := range transitions {
		valid = append(valid, t.To.Name)
		if strings.EqualFold(t.To.Name, toStatus) && id == "" {
			id = t.ID
		}
	}
	return id, valid
}
