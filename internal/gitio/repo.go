// Package gitio adapts a go-git repository to the narrow interfaces the
// registry core depends on (internal/registry.Source, .BlobReader), plus
// the tag creation/deletion the Mutator's consumer needs to apply a
// MutationPlan. It owns every call into go-git; the core never imports it
// directly (spec.md §6: "consumed through narrow interfaces").
package gitio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/pocketfuldev/artag/internal/registry"
)

// Repo wraps an open go-git repository plus its working-tree root, used
// for reading the index file straight off disk when a caller asks for
// the working tree (commit == "").
type Repo struct {
	repo *git.Repository
	root string
}

// Open opens the Git repository rooted at path (ascending to find a
// .git directory, matching ordinary git CLI behaviour).
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolving worktree: %w", err)
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// notFoundError satisfies registry's duck-typed notFounder interface
// (NotFound() bool) without registry importing gitio.
type notFoundError struct{ msg string }

func (e *notFoundError) Error() string  { return e.msg }
func (e *notFoundError) NotFound() bool { return true }

// ReadFileAt implements registry.BlobReader. commit == "" reads the
// working tree straight off disk; otherwise it reads the blob out of the
// commit's tree.
func (r *Repo) ReadFileAt(commit, path string) ([]byte, error) {
	if commit == "" {
		data, err := os.ReadFile(filepath.Join(r.root, path))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &notFoundError{msg: fmt.Sprintf("%s: not found in working tree", path)}
			}
			return nil, err
		}
		return data, nil
	}

	c, err := r.repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return nil, fmt.Errorf("resolving commit %s: %w", commit, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree for commit %s: %w", commit, err)
	}
	f, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, &notFoundError{msg: fmt.Sprintf("%s: not found at %s", path, commit)}
		}
		return nil, fmt.Errorf("reading %s at %s: %w", path, commit, err)
	}
	rc, err := f.Reader()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Tags implements registry.Source: every tag ref, annotated or
// lightweight, with the author and time to attach to the parsed Event:
// the tagger's email and time for an annotated tag, the commit author's
// email and committer time for a lightweight one (spec.md §4.4 step 1).
func (r *Repo) Tags(ctx context.Context) ([]registry.TagRef, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var refs []registry.TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := ref.Name().Short()

		if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
			target, err := tagObj.Commit()
			if err != nil {
				return fmt.Errorf("resolving annotated tag %s: %w", name, err)
			}
			refs = append(refs, registry.TagRef{
				Name:         name,
				TargetCommit: target.Hash.String(),
				Author:       tagObj.Tagger.Email,
				Timestamp:    tagObj.Tagger.When,
			})
			return nil
		}

		c, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return fmt.Errorf("resolving lightweight tag %s: %w", name, err)
		}
		refs = append(refs, registry.TagRef{
			Name:         name,
			TargetCommit: c.Hash.String(),
			Author:       c.Author.Email,
			Timestamp:    c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// CommitsInScope implements registry.Source for every registry.ScopeKind.
func (r *Repo) CommitsInScope(ctx context.Context, scope registry.Scope) ([]registry.CommitRef, error) {
	switch scope.Kind {
	case registry.ScopeExplicit:
		return r.commitRefsFor(scope.Commits)
	case registry.ScopeHead:
		head, err := r.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolving HEAD: %w", err)
		}
		return r.walkFrom(ctx, head.Hash())
	case registry.ScopeAllBranches:
		return r.walkAllBranches(ctx)
	case registry.ScopeAllCommits:
		return r.walkAllCommits(ctx)
	default:
		return nil, fmt.Errorf("unknown scope kind %q", scope.Kind)
	}
}

func (r *Repo) commitRefsFor(shas []string) ([]registry.CommitRef, error) {
	out := make([]registry.CommitRef, 0, len(shas))
	for _, sha := range shas {
		c, err := r.repo.CommitObject(plumbing.NewHash(sha))
		if err != nil {
			return nil, fmt.Errorf("resolving commit %s: %w", sha, err)
		}
		out = append(out, commitRef(c))
	}
	return out, nil
}

func (r *Repo) walkFrom(ctx context.Context, from plumbing.Hash) ([]registry.CommitRef, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("walking commit log: %w", err)
	}
	defer iter.Close()

	var out []registry.CommitRef
	err = iter.ForEach(func(c *object.Commit) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		out = append(out, commitRef(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) walkAllBranches(ctx context.Context) ([]registry.CommitRef, error) {
	branches, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer branches.Close()

	seen := make(map[plumbing.Hash]bool)
	var out []registry.CommitRef
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		commits, err := r.walkFrom(ctx, ref.Hash())
		if err != nil {
			return err
		}
		for _, c := range commits {
			h := plumbing.NewHash(c.SHA)
			if seen[h] {
				continue
			}
			seen[h] = true
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walkAllCommits visits every commit object in the store, reachable or
// not, regardless of whether a branch or tag currently points at it.
func (r *Repo) walkAllCommits(ctx context.Context) ([]registry.CommitRef, error) {
	iter, err := r.repo.CommitObjects()
	if err != nil {
		return nil, fmt.Errorf("listing commit objects: %w", err)
	}
	defer iter.Close()

	var out []registry.CommitRef
	err = iter.ForEach(func(c *object.Commit) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		out = append(out, commitRef(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func commitRef(c *object.Commit) registry.CommitRef {
	return registry.CommitRef{
		SHA:       c.Hash.String(),
		Author:    c.Author.Email,
		Timestamp: c.Committer.When,
		Subject:   strings.SplitN(c.Message, "\n", 2)[0],
	}
}

// CommitsBetween walks to's log in committer-time order and stops at
// from (exclusive of from, inclusive of to); on a linear history that is
// the commits reachable from to but not from from. An empty from, or one
// the walk never meets, yields to's whole history. Used by the diff and
// changelog commands.
func (r *Repo) CommitsBetween(from, to string) ([]registry.CommitRef, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: plumbing.NewHash(to), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("walking commit log: %w", err)
	}
	defer iter.Close()

	var out []registry.CommitRef
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash.String() == from {
			return storer.ErrStop
		}
		out = append(out, commitRef(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentBranch returns the short name of the branch HEAD points at, or
// "HEAD" for a detached checkout.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return "HEAD", nil
}

// ResolveRef resolves a ref-ish string (branch, tag, short/full SHA,
// "HEAD") to a commit SHA, for the Mutator's callers to turn a `ref`
// input into the commit string registry.Mutator.Register expects.
func (r *Repo) ResolveRef(ref string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolving ref %q: %w", ref, err)
	}
	return hash.String(), nil
}

// Apply creates and deletes the tags named in plan, in order, against
// the commits it specifies. On a write failure partway through a
// multi-tag plan, the caller is responsible for treating the whole
// Apply as failed; it does not attempt rollback of tags already written
// (spec.md §4.7: "the core does not own that").
func (r *Repo) Apply(ctx context.Context, plan registry.MutationPlan, tagger object.Signature) error {
	for _, w := range plan.Writes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		opts := &git.CreateTagOptions{
			Tagger:  &tagger,
			Message: w.Message,
		}
		if opts.Message == "" {
			opts.Message = w.Name
		}
		if _, err := r.repo.CreateTag(w.Name, plumbing.NewHash(w.TargetCommit), opts); err != nil {
			return fmt.Errorf("creating tag %s: %w", w.Name, err)
		}
	}
	for _, d := range plan.Deletes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.repo.DeleteTag(d.Name); err != nil && !errors.Is(err, git.ErrTagNotFound) {
			return fmt.Errorf("deleting tag %s: %w", d.Name, err)
		}
	}
	return nil
}

// Signature builds a tagger signature from the locally configured user
// (falling back to a generic identity), for use with Apply.
func (r *Repo) Signature() object.Signature {
	cfg, err := r.repo.Config()
	if err != nil || cfg.User.Name == "" {
		return object.Signature{Name: "artag", When: timeNow()}
	}
	return object.Signature{Name: cfg.User.Name, Email: cfg.User.Email, When: timeNow()}
}

func timeNow() time.Time { return time.Now() }
