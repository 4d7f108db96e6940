/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package policy resolves contributor logins and repositories to the facts
// the triage engine bases its decisions on: signed agreements and their
// expiry, robot accounts, core committers, contractor and internal
// organization membership, and repositories that refuse contributions.
//
// The facts are read from the people/orgs/repos YAML registries. The
// registry is an external lookup service as far as the engine is concerned;
// this package never writes to it.
package policy
