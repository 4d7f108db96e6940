/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package botcomments

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Data is the machine-readable state the bot hides inside its comments so
// a later pass can pick up where an earlier one left off.
type Data struct {
	// TrackerIssue is the key of the tracker issue created for the pull
	// request, e.g. "OSPR-1234".
	TrackerIssue string `json:"tracker_issue,omitempty"`
}

const (
	dataOpen  = "<!-- osprbot-data: "
	dataClose = " -->"
)

var dataRE = regexp.MustCompile(regexp.QuoteMeta(dataOpen) + `(\{.*?\})` + regexp.QuoteMeta(dataClose))

// EmbedData appends a hidden data block to a comment body.
func EmbedData(body string, d Data) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshaling comment data: %w", err)
	}
	return body + "\n" + dataOpen + string(b) + dataClose + "\n", nil
}

// ExtractData returns the hidden data block from a comment body, if one is
// present. A malformed block is treated as absent; old comments predating
// the block format must not break classification.
func ExtractData(body string) (Data, bool) {
	m := dataRE.FindStringSubmatch(body)
	if m == nil {
		return Data{}, false
	}
	var d Data
	if err := json.Unmarshal([]byte(m[1]), &d); err != nil {
		return Data{}, false
	}
	return d, true
}
