/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v75/github"
	"github.com/openedx/osprbot/botcomments"
	"github.com/openedx/osprbot/tracker"
)

// UnhandledCommentKindsError means the planner was asked to deliver comment
// kinds it has no way to post. It indicates a gap between the desired-state
// computation and the planner, so it must fail loudly rather than silently
// drop the kinds.
type UnhandledCommentKindsError struct {
	Kinds []botcomments.Kind
}

func (e *UnhandledCommentKindsError) Error() string {
	return fmt.Sprintf("no way to deliver comment kinds: %v", e.Kinds)
}

// Transient reports whether an error is worth retrying: rate limits and
// server-side failures from either collaborator. Everything else is
// treated as fatal for the current pass.
func Transient(err error) bool {
	var rate *github.RateLimitError
	if errors.As(err, &rate) {
		return true
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return true
	}
	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil && ger.Response.StatusCode >= 500 {
		return true
	}
	var tae *tracker.APIError
	if errors.As(err, &tae) {
		return tae.StatusCode == 429 || tae.StatusCode >= 500
	}
	return false
}

// rateLimited is the narrower classifier used for writes. Retrying an
// arbitrary failed write risks duplicating it; a rate-limited write is
// known not to have happened.
func rateLimited(err error) bool {
	var rate *github.RateLimitError
	if errors.As(err, &rate) {
		return true
	}
	var abuse *github.AbuseRateLimitError
	return errors.As(err, &abuse)
}
