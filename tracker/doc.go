/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package tracker is the Jira collaborator surface: creating review issues
// for pull requests, moving them between statuses through the project's
// transition table, and finding issues and sponsoring epics by structured
// query.
//
// Custom fields are addressed by display name and resolved to field ids
// once at client construction, since the ids vary between Jira instances.
package tracker
