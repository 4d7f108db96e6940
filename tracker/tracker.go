/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/chainguard-dev/clog"
)

// Display names of the custom fields the engine reads and writes. The ids
// behind them differ per Jira instance and are resolved at construction.
const (
	FieldURL               = "URL"
	FieldPRNumber          = "PR Number"
	FieldRepo              = "Repo"
	FieldContributorName   = "Contributor Name"
	FieldCustomer          = "Customer"
	FieldEpicLink          = "Epic Link"
	FieldPlatformMapArea   = "Platform Map Area (Levels 1 & 2)"
	FieldBlendedStatusPage = "Blended Project Status Page"
	FieldBlendedID         = "Blended Project ID"
)

// Client talks to one Jira instance.
type Client struct {
	jc        *jira.Client
	baseURL   string
	issueType string

	// fieldIDs maps custom field display names to field ids.
	fieldIDs map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithIssueType overrides the issue type used for created issues.
func WithIssueType(t string) Option {
	return func(c *Client) { c.issueType = t }
}

// New builds a Client with basic (user/token) auth and resolves the custom
// field ids.
func New(ctx context.Context, baseURL, username, token string, opts ...Option) (*Client, error) {
	tp := jira.BasicAuthTransport{Username: username, Password: token}
	return NewWithHTTPClient(ctx, baseURL, tp.Client(), opts...)
}

// NewWithHTTPClient builds a Client on an already-authenticated HTTP
// client.
func NewWithHTTPClient(ctx context.Context, baseURL string, hc *http.Client, opts ...Option) (*Client, error) {
	jc, err := jira.NewClient(hc, baseURL)
	if err != nil {
		return nil, fmt.Errorf("creating tracker client: %w", err)
	}
	c := &Client{
		jc:        jc,
		baseURL:   strings.TrimRight(baseURL, "/"),
		issueType: "Task",
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.resolveFields(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// IssueURL returns the browse URL for an issue key.
func (c *Client) IssueURL(key string) string {
	return c.baseURL + "/browse/" + key
}

func (c *Client) resolveFields(ctx context.Context) error {
	fields, resp, err := c.jc.Field.GetListWithContext(ctx)
	if err != nil {
		return apiErr("listing fields", resp, err)
	}
	wanted := map[string]bool{
		FieldURL:               true,
		FieldPRNumber:          true,
		FieldRepo:              true,
		FieldContributorName:   true,
		FieldCustomer:          true,
		FieldEpicLink:          true,
		FieldPlatformMapArea:   true,
		FieldBlendedStatusPage: true,
		FieldBlendedID:         true,
	}
	c.fieldIDs = map[string]string{}
	for _, f := range fields {
		if wanted[f.Name] {
			c.fieldIDs[f.Name] = f.ID
		}
	}
	for name := range wanted {
		if _, ok := c.fieldIDs[name]; !ok {
			// Missing fields are tolerated; writes to them are skipped.
			clog.WarnContextf(ctx, "tracker has no custom field named %q", name)
		}
	}
	return nil
}
