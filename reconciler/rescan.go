/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

const defaultRescanConcurrency = 4

// RescanOptions bound and shape a batch rescan.
type RescanOptions struct {
	// Since and Until bound the pull requests by creation time,
	// [Since, Until). Zero values are unbounded.
	Since time.Time
	Until time.Time

	// Concurrency is the number of pull requests reconciled in parallel.
	// Zero means a small default.
	Concurrency int
}

// RescanReport summarizes a rescan. One pull request failing does not stop
// the others; its error lands in Errors instead.
type RescanReport struct {
	// Scanned counts the pull requests considered.
	Scanned int

	// Issues maps pull request number to its tracker issue key, for every
	// pull request that has one after the rescan.
	Issues map[int]string

	// Changed lists the pull requests whose state was corrected.
	Changed []int

	// Errors maps pull request number to the failure that stopped its
	// pass.
	Errors map[int]string
}

// RescanRepo reconciles every pull request in a repository inside the date
// bounds. Failures are isolated per pull request.
func (e *Engine) RescanRepo(ctx context.Context, owner, repo string, opts RescanOptions) (*RescanReport, error) {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("repo", owner+"/"+repo))
	log := clog.FromContext(ctx)

	snaps, err := e.gh.ListPullRequests(ctx, owner, repo, opts.Since, opts.Until)
	if err != nil {
		return nil, err
	}
	log.Infof("Rescanning %d pull request(s)", len(snaps))

	report := &RescanReport{
		Scanned: len(snaps),
		Issues:  map[int]string{},
		Errors:  map[int]string{},
	}
	var mu sync.Mutex

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultRescanConcurrency
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, snap := range snaps {
		eg.Go(func() error {
			out, err := e.ReconcilePR(egCtx, snap)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors[snap.Number] = err.Error()
				clog.FromContext(egCtx).Errorf("Rescan of %s failed: %v", snap, err)
				return nil
			}
			if out.TrackerIssue != "" {
				report.Issues[snap.Number] = out.TrackerIssue
			}
			if out.Changed {
				report.Changed = append(report.Changed, snap.Number)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// RescanOrg rescans every non-archived source repository in an
// organization, sequentially per repo.
func (e *Engine) RescanOrg(ctx context.Context, org string, opts RescanOptions) (map[string]*RescanReport, error) {
	repos, err := e.gh.ListOrgRepos(ctx, org)
	if err != nil {
		return nil, err
	}
	reports := make(map[string]*RescanReport, len(repos))
	for _, repo := range repos {
		report, err := e.RescanRepo(ctx, org, repo, opts)
		if err != nil {
			return reports, err
		}
		reports[org+"/"+repo] = report
	}
	return reports, nil
}
