/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"errors"

	"github.com/openedx/osprbot/retry"
	"github.com/openedx/osprbot/tracker"
)

// retryingTracker wraps a Tracker with the same retry policy the GitHub
// adapter uses: reads retry on any transient failure, writes only when
// rate-limited.
type retryingTracker struct {
	inner Tracker
	cfg   retry.Config
}

// WrapTracker adds bounded-backoff retries around a Tracker.
func WrapTracker(t Tracker) Tracker {
	return &retryingTracker{inner: t, cfg: retry.DefaultConfig()}
}

func trackerRateLimited(err error) bool {
	var tae *tracker.APIError
	return errors.As(err, &tae) && tae.StatusCode == 429
}

func (r *retryingTracker) CreateIssue(ctx context.Context, req tracker.CreateRequest) (*tracker.Issue, error) {
	return retry.Do(ctx, r.cfg, "create_issue", trackerRateLimited, func() (*tracker.Issue, error) {
		return r.inner.CreateIssue(ctx, req)
	})
}

func (r *retryingTracker) GetIssue(ctx context.Context, key string) (*tracker.Issue, error) {
	return retry.Do(ctx, r.cfg, "get_issue", Transient, func() (*tracker.Issue, error) {
		return r.inner.GetIssue(ctx, key)
	})
}

func (r *retryingTracker) FindIssueForPR(ctx context.Context, prURL string) (*tracker.Issue, error) {
	return retry.Do(ctx, r.cfg, "find_issue", Transient, func() (*tracker.Issue, error) {
		return r.inner.FindIssueForPR(ctx, prURL)
	})
}

func (r *retryingTracker) Transition(ctx context.Context, key, toStatus string) error {
	_, err := retry.Do(ctx, r.cfg, "transition_issue", trackerRateLimited, func() (struct{}, error) {
		return struct{}{}, r.inner.Transition(ctx, key, toStatus)
	})
	return err
}

func (r *retryingTracker) FindEpic(ctx context.Context, blendedProject, blendedID string) (tracker.EpicLookup, error) {
	return retry.Do(ctx, r.cfg, "find_epic", Transient, func() (tracker.EpicLookup, error) {
		return r.inner.FindEpic(ctx, blendedProject, blendedID)
	})
}

func (r *retryingTracker) IssueURL(key string) string {
	return r.inner.IssueURL(key)
}
