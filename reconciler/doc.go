/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package reconciler drives one pull request from its current state to its
// desired state. Each pass observes GitHub and the tracker, computes the
// desired state, plans the write actions that close the gap, and executes
// them in a fixed order. A pass that finds no gap performs no writes, so
// redelivered webhooks and rescans are safe.
//
// The external systems are the only state store. Nothing is persisted
// between passes; everything the engine needs to resume is re-read from
// the pull request's comments, labels, commit statuses, and tracker issue.
package reconciler
