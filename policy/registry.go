/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Person is one entry in the people registry, keyed by GitHub login.
type Person struct {
	// Agreement is "individual", "institution", or "none".
	Agreement string `yaml:"agreement"`

	// Institution is the organization the person contributes on behalf of.
	Institution string `yaml:"institution"`

	// ExpiresOn ends the agreement and any flags. The expiry date itself
	// counts as expired.
	ExpiresOn *time.Time `yaml:"expires_on"`

	IsRobot       bool `yaml:"is_robot"`
	CoreCommitter bool `yaml:"core_committer"`
	Internal      bool `yaml:"internal"`
	Contractor    bool `yaml:"contractor"`
}

// Org is one entry in the orgs registry. A flag on an org applies to every
// person whose institution is that org.
type Org struct {
	Internal      bool `yaml:"internal"`
	Contractor    bool `yaml:"contractor"`
	CoreCommitter bool `yaml:"core_committer"`
}

// Repo is one entry in the repos registry, keyed by "owner/name".
type Repo struct {
	RefuseContributions bool `yaml:"refuse_contributions"`
}

// Registry holds the parsed people/orgs/repos registries.
type Registry struct {
	people map[string]Person
	orgs   map[string]Org
	repos  map[string]Repo
}

// Load parses the three registry documents. Nil slices are allowed and act
// as empty registries.
func Load(peopleYAML, orgsYAML, reposYAML []byte) (*Registry, error) {
	r := &Registry{
		people: map[string]Person{},
		orgs:   map[string]Org{},
		repos:  map[string]Repo{},
	}
	if len(peopleYAML) > 0 {
		if err := yaml.Unmarshal(peopleYAML, &r.people); err != nil {
			return nil, fmt.Errorf("parsing people registry: %w", err)
		}
	}
	if len(orgsYAML) > 0 {
		if err := yaml.Unmarshal(orgsYAML, &r.orgs); err != nil {
			return nil, fmt.Errorf("parsing orgs registry: %w", err)
		}
	}
	if len(reposYAML) > 0 {
		if err := yaml.Unmarshal(reposYAML, &r.repos); err != nil {
			return nil, fmt.Errorf("parsing repos registry: %w", err)
		}
	}
	return r, nil
}

// LoadDir reads people.yaml, orgs.yaml, and repos.yaml from a directory.
// Missing files act as empty registries.
func LoadDir(dir string) (*Registry, error) {
	read := func(name string) ([]byte, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return nil, nil
		}
		return b, err
	}

	people, err := read("people.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading people.yaml: %w", err)
	}
	orgs, err := read("orgs.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading orgs.yaml: %w", err)
	}
	repos, err := read("repos.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading repos.yaml: %w", err)
	}
	return Load(people, orgs, repos)
}

// Person returns the registry entry for a login.
func (r *Registry) Person(login string) (Person, bool) {
	p, ok := r.people[login]
	return p, ok
}

// RefusesContributions reports whether a repository ("owner/name") is
// registered as accepting no community contributions.
func (r *Registry) RefusesContributions(fullName string) bool {
	return r.repos[fullName].RefuseContributions
}
