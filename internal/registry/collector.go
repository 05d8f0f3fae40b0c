package registry

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ScopeKind selects which part of the repository the Event Collector walks.
type ScopeKind string

const (
	ScopeHead        ScopeKind = "head"
	ScopeAllBranches ScopeKind = "all_branches"
	ScopeAllCommits  ScopeKind = "all_commits"
	ScopeExplicit    ScopeKind = "explicit"
)

// Scope describes the requested collection scope of spec.md §4.4.
type Scope struct {
	Kind    ScopeKind
	Commits []string // only used when Kind == ScopeExplicit
}

// TagRef is one annotated-or-lightweight tag ref as reported by the Git
// Adapter, carrying enough metadata for Tag Codec + ordering.
type TagRef struct {
	Name         string
	TargetCommit string
	Author       string
	// Timestamp is the tagger time for an annotated tag, or the pointed-to
	// commit's committer time otherwise (spec.md §4.4 step 1).
	Timestamp time.Time
}

// CommitRef is one commit visited while walking a Scope, carrying the
// committer time the Event Collector needs to interleave synthetic commit
// events with tag events (spec.md §3 invariant 5).
type CommitRef struct {
	SHA       string
	Author    string
	Timestamp time.Time
	// Subject is the commit's message, used by the changelog command's
	// conventional-commit parsing; the Assembler itself never reads it.
	Subject string
}

// Source is the narrow Git-plumbing contract the Event Collector depends
// on (spec.md §6 "out of scope... consumed through narrow interfaces").
type Source interface {
	BlobReader
	Tags(ctx context.Context) ([]TagRef, error)
	CommitsInScope(ctx context.Context, scope Scope) ([]CommitRef, error)
	ResolveRef(ref string) (string, error)
}

// Collector turns repository state into a time-ordered Event stream.
type Collector struct {
	Source Source
	Config Config
	Warn   func(string)

	// Concurrency bounds how many commits are index-read in parallel
	// (spec.md §5: "Implementers may parallelise the Event Collector's
	// per-commit index reads"). Zero means unbounded.
	Concurrency int
}

// Collect implements the C4 algorithm: enumerate tags, parse them, walk
// the requested commit scope synthesizing commit events from the index,
// then stable-sort the whole stream per spec.md §3 invariant 5.
func (c *Collector) Collect(ctx context.Context, scope Scope) ([]Event, error) {
	events, err := c.collectTagEvents(ctx)
	if err != nil {
		return nil, err
	}

	commits, err := c.Source.CommitsInScope(ctx, scope)
	if err != nil {
		return nil, RepositoryError(err, "enumerating commits in scope")
	}

	// HEAD is the only commit where a malformed index is fatal
	// (spec.md §4.3); every other commit in scope only warns.
	headSHA, _ := c.Source.ResolveRef("HEAD")

	commitEvents, err := c.collectIndexEvents(ctx, commits, headSHA)
	if err != nil {
		return nil, err
	}
	events = append(events, commitEvents...)

	sortEvents(events)
	return events, nil
}

func (c *Collector) collectTagEvents(ctx context.Context) ([]Event, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	refs, err := c.Source.Tags(ctx)
	if err != nil {
		return nil, RepositoryError(err, "listing tag refs")
	}

	var events []Event
	for _, ref := range refs {
		e, ok := ParseTag(ref.Name)
		if !ok {
			continue // foreign tag, tolerated per spec.md §4.1
		}
		e.Commit = ref.TargetCommit
		e.Author = ref.Author
		e.Timestamp = ref.Timestamp
		events = append(events, e)
	}
	return events, nil
}

type commitIndexResult struct {
	commit CommitRef
	rows   map[string]ArtifactMeta
	err    error
}

// collectIndexEvents reads artifacts.yaml at every commit in scope and
// emits one synthetic "commit" event per artifact row. Reads are
// parallelized with a bounded worker pool; the cache key is the commit
// SHA, so the result is reproducible regardless of scheduling order, and
// the final stream is stable-sorted before it is returned (spec.md §5).
func (c *Collector) collectIndexEvents(ctx context.Context, commits []CommitRef, headSHA string) ([]Event, error) {
	if len(commits) == 0 {
		return nil, nil
	}

	limit := c.Concurrency
	if limit <= 0 || limit > len(commits) {
		limit = len(commits)
	}

	results := make([]commitIndexResult, len(commits))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, commit := range commits {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, commit CommitRef) {
			defer wg.Done()
			defer func() { <-sem }()
			isHead := headSHA != "" && commit.SHA == headSHA
			rows, err := ReadIndexAt(c.Source, commit.SHA, c.Config.IndexPath, isHead, c.Warn)
			results[i] = commitIndexResult{commit: commit, rows: rows, err: err}
		}(i, commit)
	}
	wg.Wait()

	var events []Event
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		for name, meta := range r.rows {
			events = append(events, Event{
				Kind:      KindCommit,
				Artifact:  name,
				Commit:    r.commit.SHA,
				Ref:       r.commit.SHA,
				Author:    r.commit.Author,
				Timestamp: r.commit.Timestamp,
				Message:   meta.Path,
				Meta:      meta,
			})
		}
	}
	return events, nil
}

// sortEvents applies the display/fold order of spec.md §3 invariant 5:
// (committer timestamp, seq, tag name) ascending.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.Ref < b.Ref
	})
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return CancelledError()
	default:
		return nil
	}
}
