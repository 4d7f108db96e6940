/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package botcomments_test

import (
	"testing"

	"github.com/openedx/osprbot/botcomments"
)

func TestClassifySingleKind(t *testing.T) {
	t.Parallel()
	got := botcomments.Classify("Hello!\n<!-- comment:welcome-blended -->\nmore text")
	want := botcomments.NewSet(botcomments.Blended)
	if !got.Equal(want) {
		t.Errorf("Classify = %v, want %v", got, want)
	}
}

// A comment that matches markers of several kinds is classified as all of
// them. This is how a combined welcome+CLA+ok-to-test comment reads back.
func TestClassifyCombinedComment(t *testing.T) {
	t.Parallel()
	body, err := botcomments.Render(botcomments.Welcome, botcomments.TemplateData{
		User:    "newbie",
		NeedCLA: true,
	})
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	got := botcomments.Classify(body)
	want := botcomments.NewSet(botcomments.Welcome, botcomments.NeedCLA)
	if !got.Equal(want) {
		t.Errorf("Classify = %v, want %v", got, want)
	}
}

func TestClassifySignedWelcomeHasOKToTest(t *testing.T) {
	t.Parallel()
	body, err := botcomments.Render(botcomments.Welcome, botcomments.TemplateData{
		User:               "signer",
		HasSignedAgreement: true,
	})
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	got := botcomments.Classify(body)
	want := botcomments.NewSet(botcomments.Welcome, botcomments.OKToTest)
	if !got.Equal(want) {
		t.Errorf("Classify = %v, want %v", got, want)
	}
}

func TestClassifyDraftWelcome(t *testing.T) {
	t.Parallel()
	body, err := botcomments.Render(botcomments.Welcome, botcomments.TemplateData{
		User:               "drafter",
		IsDraft:            true,
		HasSignedAgreement: true,
	})
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	got := botcomments.Classify(body)
	want := botcomments.NewSet(botcomments.Welcome, botcomments.EndOfWIP, botcomments.OKToTest)
	if !got.Equal(want) {
		t.Errorf("Classify = %v, want %v", got, want)
	}
}

// The CLA section renders only when asked for. A greeting for an author
// who is neither nagged nor cleared, a committer without an agreement on
// file, must carry neither the CLA text nor the CI token.
func TestClassifyCommitterWithoutAgreement(t *testing.T) {
	t.Parallel()
	body, err := botcomments.Render(botcomments.CoreCommitter, botcomments.TemplateData{
		User: "committer",
	})
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	got := botcomments.Classify(body)
	want := botcomments.NewSet(botcomments.CoreCommitter)
	if !got.Equal(want) {
		t.Errorf("Classify = %v, want %v", got, want)
	}
}

func TestClassifyUnrelatedComment(t *testing.T) {
	t.Parallel()
	if got := botcomments.Classify("LGTM, nice work"); len(got) != 0 {
		t.Errorf("Classify of a human comment = %v, want empty", got)
	}
}

// Every renderable kind must round-trip through classification as itself.
func TestRenderedCommentsSelfIdentify(t *testing.T) {
	t.Parallel()
	data := botcomments.TemplateData{
		User:               "someone",
		TrackerIssue:       "OSPR-1234",
		TrackerURL:         "https://tracker.example.com/browse/OSPR-1234",
		HasSignedAgreement: true,
		SurveyURL:          "https://example.com/survey",
	}
	for _, k := range []botcomments.Kind{
		botcomments.Welcome,
		botcomments.WelcomeClosed,
		botcomments.Blended,
		botcomments.CoreCommitter,
		botcomments.Contractor,
		botcomments.Survey,
		botcomments.NoContributions,
	} {
		body, err := botcomments.Render(k, data)
		if err != nil {
			t.Fatalf("rendering %s: %v", k, err)
		}
		if !botcomments.Classify(body).Has(k) {
			t.Errorf("rendered %s comment does not classify as itself", k)
		}
	}
}

func TestCombinedOnlyKindsHaveNoStandaloneRendering(t *testing.T) {
	t.Parallel()
	for k := range botcomments.CombinedOnly {
		if _, err := botcomments.Render(k, botcomments.TemplateData{}); err == nil {
			t.Errorf("Render(%s) should fail: combined-only kinds are never posted alone", k)
		}
	}
}

func TestEmbedExtractData(t *testing.T) {
	t.Parallel()
	body, err := botcomments.EmbedData("Some comment text.", botcomments.Data{TrackerIssue: "OSPR-42"})
	if err != nil {
		t.Fatalf("embedding: %v", err)
	}
	d, ok := botcomments.ExtractData(body)
	if !ok {
		t.Fatal("ExtractData did not find the data block")
	}
	if d.TrackerIssue != "OSPR-42" {
		t.Errorf("TrackerIssue = %q, want OSPR-42", d.TrackerIssue)
	}
}

func TestExtractDataAbsent(t *testing.T) {
	t.Parallel()
	if _, ok := botcomments.ExtractData("no data here"); ok {
		t.Error("ExtractData found data in a plain comment")
	}
	// A malformed block is treated as absent, not an error.
	if _, ok := botcomments.ExtractData("<!-- osprbot-data: {not json} -->"); ok {
		t.Error("ExtractData accepted a malformed block")
	}
}
