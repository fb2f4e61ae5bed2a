package runtable

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// RunsFilteredLink returns the run-list path filtered to the given tag.
//
// Tag keys and values are path-safe by construction (the orchestrator
// rejects whitespace and '&' in tag keys), so the token is embedded
// verbatim to keep the link readable and greppable.
func RunsFilteredLink(key, value string) string {
	return fmt.Sprintf("/runs?tag=%s=%s", key, value)
}

// BackfillLink returns the backfill-detail path for the given backfill id.
func BackfillLink(backfillID string) string {
	return "/overview/backfills/" + backfillID
}

// JobPath returns the workspace path of a job under a resolved repository
// location.
func JobPath(repositoryName, locationName, jobName string) string {
	return fmt.Sprintf("/locations/%s@%s/jobs/%s", repositoryName, locationName, jobName)
}

// GuessJobLink returns the best-effort job path used when the run's
// repository origin cannot be resolved against the current workspace.
func GuessJobLink(jobName string) string {
	return "/guess/" + jobName
}

// WorkspaceResolver maps a run's repository origin to a workspace job path.
//
// Implementations report ok=false when the origin is unknown; callers fall
// back to a guess link rather than failing the render.
type WorkspaceResolver interface {
	ResolveJobPath(repositoryName, locationName, jobName string) (string, bool)
}

// StaticResolver resolves job paths from a fixed set of known repository
// locations, e.g. loaded from configuration.
type StaticResolver struct {
	// Locations maps "repository@location" to presence in the workspace.
	Locations map[string]bool
}

func (s StaticResolver) ResolveJobPath(repositoryName, locationName, jobName string) (string, bool) {
	if repositoryName == "" || locationName == "" {
		return "", false
	}
	if !s.Locations[repositoryName+"@"+locationName] {
		return "", false
	}
	return JobPath(repositoryName, locationName, jobName), true
}

// CachingResolver memoizes another resolver's results in an LRU cache.
//
// Resolution happens once per distinct (repository, location, job) triple
// per cache lifetime; the table re-derives rows on every render, so the
// cache keeps that cheap for large run lists.
type CachingResolver struct {
	inner WorkspaceResolver
	cache *lru.Cache
}

type resolvedPath struct {
	path string
	ok   bool
}

// NewCachingResolver wraps inner with an LRU of the given size.
func NewCachingResolver(inner WorkspaceResolver, size int) (*CachingResolver, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("runtable: create resolver cache: %w", err)
	}
	return &CachingResolver{inner: inner, cache: cache}, nil
}

func (c *CachingResolver) ResolveJobPath(repositoryName, locationName, jobName string) (string, bool) {
	key := repositoryName + "@" + locationName + "/" + jobName
	if v, ok := c.cache.Get(key); ok {
		r := v.(resolvedPath)
		return r.path, r.ok
	}

	path, ok := c.inner.ResolveJobPath(repositoryName, locationName, jobName)
	c.cache.Add(key, resolvedPath{path: path, ok: ok})
	return path, ok
}
