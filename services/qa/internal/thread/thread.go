// Package thread materializes comment reply trees from the flat,
// parent-referencing comment collection.
package thread

import (
	"context"
	"sort"

	"github.com/example/wisora/services/qa/internal/domain"
)

// DefaultMaxDepth bounds how many comment levels Assemble materializes.
const DefaultMaxDepth = 16

// Source is the read side of the comment store the assembler needs.
type Source interface {
	ListByParent(ctx context.Context, parentID string) ([]domain.Comment, error)
	ListChildren(ctx context.Context, parentType domain.ParentType, parentIDs []string) ([]domain.Comment, error)
}

type Assembler struct {
	src      Source
	maxDepth int
}

// New returns an assembler reading from src. maxDepth <= 0 selects DefaultMaxDepth.
func New(src Source, maxDepth int) *Assembler {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Assembler{src: src, maxDepth: maxDepth}
}

type node struct {
	comment domain.Comment
	replies []*node
}

// Assemble returns the reply tree under rootID, which may be an answer or
// a comment. Siblings are ordered by ascending (created_at, id). Each level
// below the first costs one batched query. A root with no comments, or one
// that does not exist, yields an empty slice.
func (a *Assembler) Assemble(ctx context.Context, rootID string) ([]domain.ThreadNode, error) {
	top, err := a.src.ListByParent(ctx, rootID)
	if err != nil {
		return nil, err
	}

	roots := make([]*node, 0, len(top))
	seen := map[string]struct{}{rootID: {}}
	frontier := make(map[string]*node, len(top))
	for _, c := range sorted(top) {
		n := &node{comment: c}
		roots = append(roots, n)
		seen[c.ID] = struct{}{}
		frontier[c.ID] = n
	}

	for depth := 1; depth < a.maxDepth && len(frontier) > 0; depth++ {
		ids := make([]string, 0, len(frontier))
		for id := range frontier {
			ids = append(ids, id)
		}
		children, err := a.src.ListChildren(ctx, domain.ParentComment, ids)
		if err != nil {
			return nil, err
		}

		next := make(map[string]*node, len(children))
		for _, c := range sorted(children) {
			parent, ok := frontier[c.ParentID]
			if !ok {
				continue
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			n := &node{comment: c}
			parent.replies = append(parent.replies, n)
			next[c.ID] = n
		}
		frontier = next
	}

	return flatten(roots), nil
}

func sorted(cs []domain.Comment) []domain.Comment {
	out := append([]domain.Comment(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool { return domain.CommentBefore(out[i], out[j]) })
	return out
}

func flatten(ns []*node) []domain.ThreadNode {
	out := make([]domain.ThreadNode, 0, len(ns))
	for _, n := range ns {
		out = append(out, domain.ThreadNode{Comment: n.comment, Replies: flatten(n.replies)})
	}
	return out
}
