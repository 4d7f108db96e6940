/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"

	"github.com/chainguard-dev/clog"

	"github.com/openedx/osprbot/policy"
	"github.com/openedx/osprbot/tracker"
	"github.com/openedx/osprbot/triage"
)

// Engine reconciles pull requests against their desired state.
type Engine struct {
	gh  GitHub
	tr  Tracker
	reg *policy.Registry
	cfg triage.Config

	surveyURL string
	dryRun    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDryRun makes the engine log planned actions without performing them.
func WithDryRun(dry bool) Option {
	return func(e *Engine) { e.dryRun = dry }
}

// WithSurveyURL sets the contributor survey link used in survey comments.
func WithSurveyURL(url string) Option {
	return func(e *Engine) { e.surveyURL = url }
}

// New builds an Engine.
func New(gh GitHub, tr Tracker, reg *policy.Registry, cfg triage.Config, opts ...Option) *Engine {
	e := &Engine{
		gh:  gh,
		tr:  tr,
		reg: reg,
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome reports what one reconciliation pass did.
type Outcome struct {
	// TrackerIssue is the key of the pull request's tracker issue, whether
	// found or created. Empty when none is wanted.
	TrackerIssue string

	// EpicOutcome is meaningful only for blended pull requests.
	EpicOutcome tracker.EpicOutcome

	// Actions describes the plan, in order. Empty means converged.
	Actions []string

	// Changed reports whether any write actually happened.
	Changed bool
}

// ReconcilePR runs one full pass over a pull request: facts, desired
// state, observation, plan, execution. It is safe to call any number of
// times with the same snapshot.
func (e *Engine) ReconcilePR(ctx context.Context, snap triage.Snapshot) (*Outcome, error) {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With(
		"repo", snap.FullName(), "pr", snap.Number))
	log := clog.FromContext(ctx)

	facts := e.reg.FactsFor(snap.Author, snap.CreatedAt)
	des := triage.Compute(e.cfg, snap, facts, e.reg.RefusesContributions(snap.FullName()))
	if des == nil {
		log.Debugf("Nothing to do for @%s", snap.Author)
		return &Outcome{}, nil
	}

	st, err := e.observe(ctx, snap, des)
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	var epic tracker.EpicLookup
	if des.BlendedID != "" {
		epic, err = e.tr.FindEpic(ctx, e.cfg.BlendedProject, des.BlendedID)
		if err != nil {
			return nil, err
		}
		out.EpicOutcome = epic.Outcome
		if epic.Outcome != tracker.EpicFound {
			// The issue is still created, just without epic fields;
			// a human can link it once the epic situation is fixed.
			log.Warnf("Epic lookup for %s: %s", des.BlendedID, epic.Outcome)
		}
	}

	actions, err := Plan(snap, st, des, epic)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		if st.TrackerIssue != nil {
			out.TrackerIssue = st.TrackerIssue.Key
		}
		log.Debugf("Converged, nothing to apply")
		return out, nil
	}

	if err := e.apply(ctx, snap, st, actions, out); err != nil {
		return out, err
	}
	log.Infof("Reconciled with %d action(s)", len(actions))
	return out, nil
}
