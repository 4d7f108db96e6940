/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import (
	"errors"
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"
)

// ErrIssueGone marks an issue that existed but has been deleted. Callers
// treat it as "no tracker issue", forcing recreation on the next pass.
var ErrIssueGone = errors.New("tracker issue is gone")

// APIError wraps a failed tracker API call with the HTTP status code, so
// callers can classify it as transient or fatal.
type APIError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker %s (status %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// NoValidTransitionError means the desired status is unreachable from the
// issue's current status in one hop. It carries the full set of valid
// target statuses for diagnosis.
type NoValidTransitionError struct {
	Key   string
	To    string
	Valid []string
}

func (e *NoValidTransitionError) Error() string {
	return fmt.Sprintf("no transition on %s to %q; valid targets: %s",
		e.Key, e.To, strings.Join(e.Valid, ", "))
}

func apiErr(op string, resp *jira.Response, err error) error {
	code := 0
	if resp != nil && resp.Response != nil {
		code = resp.StatusCode
	}
	return &APIError{Op: op, StatusCode: code, Err: err}
}
