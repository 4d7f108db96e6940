/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package labels_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openedx/osprbot/labels"
)

func TestOwned(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"needs triage", "open edx community review", "blended", "open-source-contribution"} {
		if !labels.Owned(name) {
			t.Errorf("Owned(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"bug", "jira:xyz", "needs-triage", "Blended"} {
		if labels.Owned(name) {
			t.Errorf("Owned(%q) = true, want false", name)
		}
	}
}

func TestUnowned(t *testing.T) {
	t.Parallel()
	got := labels.Unowned([]string{"bug", "needs triage", "help wanted", "blended"})
	want := []string{"bug", "help wanted"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unowned mismatch (-want +got):\n%s", diff)
	}
}
