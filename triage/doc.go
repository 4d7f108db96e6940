/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package triage holds the core triage vocabulary: the immutable
// pull-request snapshot taken at the system boundary, and the pure
// computation of the state the world should be in for that snapshot:
// which bot comments should exist, which labels, which tracker issue in
// which project and status, and what the CLA check should say.
//
// Nothing here performs I/O. The reconciler diffs this desired state
// against observed state and plans the corrective actions.
package triage
