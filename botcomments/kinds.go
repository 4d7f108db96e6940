/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package botcomments

import (
	"sort"
	"strings"
)

// Kind is one category of bot comment.
type Kind int

const (
	// Welcome greets an external contributor on an open pull request.
	Welcome Kind = iota
	// WelcomeClosed is the first-comment variant for a pull request that
	// was already closed when the bot first saw it (rescans).
	WelcomeClosed
	// NeedCLA tells the author a signed contributor agreement is missing.
	NeedCLA
	// Blended marks a pull request belonging to a blended project.
	Blended
	// CoreCommitter greets a recognized core committer.
	CoreCommitter
	// Contractor asks a contractor-org author to clarify whether the work
	// is under contract.
	Contractor
	// EndOfWIP asks the author to announce when a draft is ready.
	EndOfWIP
	// Survey asks the author to fill in the contributor survey after the
	// pull request is closed or merged.
	Survey
	// NoContributions explains that the repository accepts no
	// contributions.
	NoContributions
	// OKToTest is the CI-unblocking token. It is only ever combined into
	// another kind's body, never posted standalone.
	OKToTest
)

var kindNames = map[Kind]string{
	Welcome:         "welcome",
	WelcomeClosed:   "welcome-closed",
	NeedCLA:         "need-cla",
	Blended:         "blended",
	CoreCommitter:   "core-committer",
	Contractor:      "contractor",
	EndOfWIP:        "end-of-wip",
	Survey:          "survey",
	NoContributions: "no-contributions",
	OKToTest:        "ok-to-test",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// markers are the literal strings that identify each kind in an existing
// comment. A comment matching markers of several kinds is all of them.
// These strings appear in posted comments; they must never change, or the
// bot will stop recognizing its own history.
var markers = map[Kind][]string{
	Welcome: {
		"<!-- comment:external_pr -->",
		"Feel free to add as much of the following information to the ticket",
	},
	WelcomeClosed: {
		"<!-- comment:welcome_closed -->",
	},
	NeedCLA: {
		"<!-- comment:no_cla -->",
		"We can't start reviewing your pull request until you've submitted",
	},
	Blended: {
		"<!-- comment:welcome-blended -->",
	},
	CoreCommitter: {
		"<!-- comment:welcome-core-committer -->",
	},
	Contractor: {
		"<!-- comment:contractor -->",
		"company that does contract work for edX",
	},
	EndOfWIP: {
		"<!-- comment:end_of_wip -->",
	},
	Survey: {
		"<!-- comment:end_survey -->",
	},
	NoContributions: {
		"<!-- comment:no-contributions -->",
	},
	OKToTest: {
		"jenkins ok to test",
	},
}

// First is the set of kinds that may only appear in the first bot comment
// on a pull request.
var First = NewSet(
	Welcome, WelcomeClosed, NeedCLA, Blended, CoreCommitter,
	Contractor, EndOfWIP, NoContributions, OKToTest,
)

// CombinedOnly is the set of kinds whose text is only ever folded into
// another kind's body; they are never a comment of their own.
var CombinedOnly = NewSet(NeedCLA, EndOfWIP, OKToTest)

// Classify returns every kind whose markers appear in the comment body.
func Classify(body string) Set {
	s := Set{}
	for kind, snips := range markers {
		for _, snip := range snips {
			if strings.Contains(body, snip) {
				s.Add(kind)
				break
			}
		}
	}
	return s
}

// Set is a set of comment kinds.
type Set map[Kind]bool

// NewSet builds a Set from kinds.
func NewSet(kinds ...Kind) Set {
	s := Set{}
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// Add inserts a kind.
func (s Set) Add(k Kind) { s[k] = true }

// Remove deletes a kind.
func (s Set) Remove(k Kind) { delete(s, k) }

// Has reports membership.
func (s Set) Has(k Kind) bool { return s[k] }

// Diff returns the kinds in s that are not in other.
func (s Set) Diff(other Set) Set {
	out := Set{}
	for k := range s {
		if !other[k] {
			out.Add(k)
		}
	}
	return out
}

// Sorted returns the kinds in a stable order.
func (s Set) Sorted() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether two sets hold the same kinds.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other[k] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	names := make([]string, 0, len(s))
	for _, k := range s.Sorted() {
		names = append(names, k.String())
	}
	return strings.Join(names, ",")
}
