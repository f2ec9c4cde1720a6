package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masmgr/loggraph/internal/history"
)

// ErrUnborn is returned when HEAD points to a branch without commits.
var ErrUnborn = errors.New("HEAD does not point to a commit yet")

// Store reads history entries from a Git repository.
type Store struct {
	repo *gogit.Repository
	path string
}

// Open opens the repository containing path.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	root := abs
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Store{repo: repo, path: root}, nil
}

// Path returns the repository root.
func (s *Store) Path() string {
	return s.path
}

// Entry loads the commit with the given id.
func (s *Store) Entry(id history.ID) (*history.Entry, error) {
	if !plumbing.IsHash(string(id)) {
		return nil, fmt.Errorf("%q is not a commit id: %w", id, history.ErrNotFound)
	}
	c, err := s.repo.CommitObject(plumbing.NewHash(string(id)))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s: %w", id, history.ErrNotFound)
		}
		return nil, fmt.Errorf("commit %s: %w", id, err)
	}
	return newEntry(c), nil
}

func newEntry(c *object.Commit) *history.Entry {
	parents := make([]history.ID, len(c.ParentHashes))
	for i, h := range c.ParentHashes {
		parents[i] = history.ID(h.String())
	}
	committer := c.Committer
	if committer.Name == "" && committer.Email == "" && committer.When.IsZero() {
		committer = c.Author
	}
	return &history.Entry{
		ID:        history.ID(c.Hash.String()),
		Parents:   parents,
		Timestamp: committer.When,
		Meta: &history.Metadata{
			Description: c.Message,
			Author:      signature(c.Author),
			Committer:   signature(committer),
		},
	}
}

func signature(sig object.Signature) history.Signature {
	return history.Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

// Resolve turns a revision (HEAD, branch, tag, hash prefix, HEAD~2, ...) into a commit id.
func (s *Store) Resolve(rev string) (history.ID, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" || strings.EqualFold(rev, "HEAD") {
		ref, err := s.repo.Head()
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return "", ErrUnborn
			}
			return "", fmt.Errorf("resolve HEAD: %w", err)
		}
		return s.peel(ref.Hash())
	}
	h, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return s.peel(*h)
}

// Heads returns the commits pointed to by refs whose short or full name matches
// any of the doublestar patterns. The result is sorted and free of duplicates.
func (s *Store) Heads(patterns []string) ([]history.ID, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ref pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refs.Close()

	seen := make(map[history.ID]struct{})
	var heads []history.ID
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() && !name.IsTag() {
			return nil
		}
		if !matchesAny(patterns, name) {
			return nil
		}
		id, err := s.peel(ref.Hash())
		if err != nil {
			// Tags may point at trees or blobs; they have no history to show.
			return nil
		}
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}
		heads = append(heads, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })
	return heads, nil
}

func matchesAny(patterns []string, name plumbing.ReferenceName) bool {
	short := name.Short()
	full := name.String()
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, short); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, full); ok {
			return true
		}
	}
	return false
}

// Labels maps commit ids to the short names of refs pointing at them.
// HEAD comes first when it points at a branch tip.
func (s *Store) Labels() (map[history.ID][]string, error) {
	labels := map[history.ID][]string{}
	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refs.Close()

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() && !name.IsTag() {
			return nil
		}
		short := name.Short()
		if name.IsRemote() && strings.HasSuffix(short, "/HEAD") {
			return nil
		}
		id, err := s.peel(ref.Hash())
		if err != nil {
			return nil
		}
		labels[id] = append(labels[id], short)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for id := range labels {
		sort.Strings(labels[id])
	}

	if headRef, err := s.repo.Head(); err == nil {
		label := "HEAD"
		if headRef.Name().IsBranch() {
			label = "HEAD -> " + headRef.Name().Short()
		}
		if id, err := s.peel(headRef.Hash()); err == nil {
			labels[id] = append([]string{label}, labels[id]...)
		}
	}
	return labels, nil
}

// peel resolves annotated tags down to the commit they point at.
func (s *Store) peel(h plumbing.Hash) (history.ID, error) {
	if _, err := s.repo.CommitObject(h); err == nil {
		return history.ID(h.String()), nil
	}
	tag, err := s.repo.TagObject(h)
	if err != nil {
		return "", fmt.Errorf("object %s is not a commit", h)
	}
	c, err := tag.Commit()
	if err != nil {
		return "", fmt.Errorf("tag %s does not point at a commit: %w", tag.Name, err)
	}
	return history.ID(c.Hash.String()), nil
}

// Compile-time interface conformance check.
var _ history.Store = (*Store)(nil)
