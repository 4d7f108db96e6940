/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package policy

import "time"

// Facts are the derived, read-only facts about a contributor as of a point
// in time (normally the pull request's creation timestamp).
type Facts struct {
	// Known reports whether the login appears in the people registry.
	Known bool

	// HasSignedAgreement reports whether a contributor agreement is on
	// file and not expired as of the reference time.
	HasSignedAgreement bool

	IsRobot      bool
	IsInternal   bool
	IsContractor bool
	IsCommitter  bool

	Institution string
}

// FactsFor resolves a login to its facts as of asOf. Unknown logins resolve
// to the zero Facts: no agreement, no flags.
func (r *Registry) FactsFor(login string, asOf time.Time) Facts {
	p, ok := r.people[login]
	if !ok {
		return Facts{}
	}
	f := Facts{
		Known:       true,
		IsRobot:     p.IsRobot,
		Institution: p.Institution,
	}
	if p.ExpiresOn != nil && expiredOn(*p.ExpiresOn, asOf) {
		// An expired entry keeps only its identity facts. Agreement and
		// membership flags lapse with the expiry.
		return f
	}
	f.HasSignedAgreement = p.Agreement != "" && p.Agreement != "none"
	org := r.orgs[p.Institution]
	f.IsInternal = p.Internal || org.Internal
	f.IsContractor = p.Contractor || org.Contractor
	f.IsCommitter = p.CoreCommitter || org.CoreCommitter
	return f
}

// HasSignedAgreement is FactsFor reduced to the agreement question. It is a
// pure function of the registry and asOf.
func (r *Registry) HasSignedAgreement(login string, asOf time.Time) bool {
	return r.FactsFor(login, asOf).HasSignedAgreement
}

// expiredOn compares calendar dates: an agreement expiring on day D is
// already expired for anything created on day D.
func expiredOn(expires, asOf time.Time) bool {
	e := time.Date(expires.Year(), expires.Month(), expires.Day(), 0, 0, 0, 0, time.UTC)
	a := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return !e.After(a)
}
