/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package labels records which GitHub labels the triage engine owns. The
// engine only ever rewrites labels inside this taxonomy; anything else on a
// pull request belongs to humans and must survive a label update untouched.
package labels

// Status labels mirror the tracker status of the pull request. At most one
// should be present at a time.
var Status = map[string]bool{
	"needs triage":              true,
	"community manager review":  true,
	"engineering review":        true,
	"product review":            true,
	"open edx community review": true,
	"architecture review":       true,
	"changes requested":         true,
	"waiting on author":         true,
	"blocked by other work":     true,
	"merged":                    true,
	"rejected":                  true,
	"awaiting prioritization":   true,
}

// Category labels classify the kind of contribution.
var Category = map[string]bool{
	"blended":                  true,
	"core committer":           true,
	"open-source-contribution": true,
}

// TrackerCategory labels are the tracker-side spellings of the category
// labels.
var TrackerCategory = map[string]bool{
	"blended":        true,
	"core-committer": true,
}

// Owned reports whether the engine is responsible for a label.
func Owned(name string) bool {
	return Status[name] || Category[name]
}

// Unowned filters a label list down to the labels the engine must preserve.
func Unowned(names []string) []string {
	var out []string
	for _, n := range names {
		if !Owned(n) {
			out = append(out, n)
		}
	}
	return out
}
