/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package botcomments defines the closed set of comment kinds the bot can
// leave on a pull request, and the machinery around them: each kind carries
// marker strings used to re-identify a previously posted comment, a
// renderer that produces the comment text (marker included), and a hidden
// JSON data block for state the bot needs to read back later, such as the
// tracker issue key.
//
// Classification and rendering are deliberately separate pure functions;
// the action executor is the only place that uses both.
package botcomments
