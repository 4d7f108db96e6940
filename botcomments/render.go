/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package botcomments

import (
	"fmt"
	"strings"
	"text/template"
)

// TemplateData carries everything any comment template can mention. Unused
// fields are ignored by kinds that do not need them.
type TemplateData struct {
	// User is the pull request author's login.
	User string

	// TrackerIssue and TrackerURL identify the tracker issue created for
	// this pull request, when one exists.
	TrackerIssue string
	TrackerURL   string

	// EpicName and EpicStatusPage come from the sponsoring blended epic.
	EpicName       string
	EpicStatusPage string

	// IsDraft, HasSignedAgreement, and NeedCLA switch the folded sections
	// on. Each is set only when the matching combined kind rides in the
	// comment being posted, so a rendered body classifies as exactly the
	// kinds it delivers.
	IsDraft            bool
	IsMerged           bool
	HasSignedAgreement bool
	NeedCLA            bool

	// SurveyURL is the pre-filled contributor survey link.
	SurveyURL string
}

// The CLA and draft sections are folded into whichever first comment is
// being made, mirroring the CombinedOnly kinds.
const claSection = `
<!-- comment:no_cla -->
We can't start reviewing your pull request until you've submitted a
[signed contributor agreement](https://openedx.org/cla) or indicated your
institutional affiliation.
`

const okToTestSection = `
jenkins ok to test
`

const wipSection = `
<!-- comment:end_of_wip -->
This pull request is a draft. When you're done with your changes, let us
know with a comment here and mark it "Ready for review".
`

var templates = map[Kind]*template.Template{
	Welcome: tmpl(Welcome, `<!-- comment:external_pr -->
Thanks for the pull request, @{{.User}}!

{{if .TrackerIssue -}}
I've created [{{.TrackerIssue}}]({{.TrackerURL}}) to keep track of it in our
review queue. Feel free to add as much of the following information to the ticket
as you can: blog posts, forum threads, or other descriptions of the change.
{{end -}}
{{if .IsDraft}}{{template "wip" .}}{{end -}}
{{if .NeedCLA}}{{template "cla" .}}{{else if .HasSignedAgreement}}{{template "oktotest" .}}{{end}}`),

	WelcomeClosed: tmpl(WelcomeClosed, `<!-- comment:welcome_closed -->
Thanks for the pull request, @{{.User}}!
{{if .IsMerged}}
Even though it's already merged, we track external contributions after the
fact, so I've made a ticket for it.
{{else}}
This pull request was already closed when I first saw it, but we track
external contributions, so I've made a ticket for it.
{{end}}`),

	Blended: tmpl(Blended, `<!-- comment:welcome-blended -->
Thanks for the pull request, @{{.User}}!

This pull request is part of a blended project{{if .EpicName}}: **{{.EpicName}}**{{end}}.
{{if .EpicStatusPage}}The project's status page is {{.EpicStatusPage}}.
{{end -}}
{{if .IsDraft}}{{template "wip" .}}{{end -}}
{{if .NeedCLA}}{{template "cla" .}}{{else if .HasSignedAgreement}}{{template "oktotest" .}}{{end}}`),

	CoreCommitter: tmpl(CoreCommitter, `<!-- comment:welcome-core-committer -->
Thanks for the pull request, @{{.User}}!

You're a core committer in this repo, so your pull request goes directly to
community review, skipping triage.
{{if .IsDraft}}{{template "wip" .}}{{end -}}
{{if .NeedCLA}}{{template "cla" .}}{{else if .HasSignedAgreement}}{{template "oktotest" .}}{{end}}`),

	Contractor: tmpl(Contractor, `<!-- comment:contractor -->
Thanks for the pull request, @{{.User}}!

It looks like you work at a company that does contract work for edX. If this
pull request is covered by a contract, there's nothing more to do. If it is
a contribution of your own, let us know with a comment here and we'll triage
it as a community contribution.
`),

	Survey: tmpl(Survey, `<!-- comment:end_survey -->
@{{.User}}, {{if .IsMerged}}congratulations on the merge!{{else}}thank you for your work on this pull request.{{end}}
Please take a moment to [fill out our contributor survey]({{.SurveyURL}});
it helps us improve the contribution experience.
`),

	NoContributions: tmpl(NoContributions, `<!-- comment:no-contributions -->
Thanks for the pull request, @{{.User}}!

Unfortunately, this repository doesn't accept contributions, so your pull
request will be closed. Thank you for wanting to improve it anyway.
`),
}

func tmpl(k Kind, text string) *template.Template {
	t := template.New(k.String())
	template.Must(t.New("cla").Parse(claSection))
	template.Must(t.New("oktotest").Parse(okToTestSection))
	template.Must(t.New("wip").Parse(wipSection))
	return template.Must(t.Parse(text))
}

// Render produces the comment text for a kind, marker included.
// CombinedOnly kinds have no standalone rendering; asking for one is a
// programming error surfaced as an error, not a panic, so the reconciler's
// exhaustiveness failure stays diagnosable.
func Render(k Kind, d TemplateData) (string, error) {
	t, ok := templates[k]
	if !ok {
		return "", fmt.Errorf("comment kind %s has no standalone rendering", k)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("rendering %s comment: %w", k, err)
	}
	return sb.String(), nil
}
