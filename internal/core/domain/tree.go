package domain

import (
	"errors"
	"fmt"
	"sort"
)

// AccountTree is an arena of accounts indexed by id with parent links.
// Traversal uses explicit stacks rather than recursive object graphs, so a
// malformed hierarchy can never blow the stack.
type AccountTree struct {
	nodes    map[string]Account
	children map[string][]string
	roots    []string
}

// NewAccountTree builds the arena from a flat account list. It fails if a
// parent reference points at an unknown account or if the hierarchy contains
// a cycle or exceeds MaxAccountDepth.
func NewAccountTree(accounts []Account) (*AccountTree, error) {
	t := &AccountTree{
		nodes:    make(map[string]Account, len(accounts)),
		children: make(map[string][]string),
	}
	for _, acc := range accounts {
		if _, dup := t.nodes[acc.AccountID]; dup {
			return nil, fmt.Errorf("duplicate account id %s", acc.AccountID)
		}
		t.nodes[acc.AccountID] = acc
	}
	for _, acc := range accounts {
		if acc.ParentAccountID == nil {
			t.roots = append(t.roots, acc.AccountID)
			continue
		}
		parentID := *acc.ParentAccountID
		if _, ok := t.nodes[parentID]; !ok {
			return nil, fmt.Errorf("account %s references unknown parent %s", acc.AccountID, parentID)
		}
		t.children[parentID] = append(t.children[parentID], acc.AccountID)
	}
	// Deterministic ordering by account code within each level.
	sortByCode := func(ids []string) {
		sort.Slice(ids, func(i, j int) bool {
			return t.nodes[ids[i]].AccountCode < t.nodes[ids[j]].AccountCode
		})
	}
	sortByCode(t.roots)
	for _, ids := range t.children {
		sortByCode(ids)
	}
	if err := t.checkShape(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkShape walks the whole arena from the roots with an explicit stack,
// verifying every node is reachable (no cycles) and no branch exceeds
// MaxAccountDepth.
func (t *AccountTree) checkShape() error {
	type frame struct {
		id    string
		depth int
	}
	seen := make(map[string]bool, len(t.nodes))
	stack := make([]frame, 0, len(t.roots))
	for _, id := range t.roots {
		stack = append(stack, frame{id: id, depth: 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.id] {
			return fmt.Errorf("account hierarchy contains a cycle at %s", f.id)
		}
		seen[f.id] = true
		if f.depth > MaxAccountDepth {
			return fmt.Errorf("account hierarchy exceeds %d levels at %s", MaxAccountDepth, f.id)
		}
		for _, child := range t.children[f.id] {
			stack = append(stack, frame{id: child, depth: f.depth + 1})
		}
	}
	if len(seen) != len(t.nodes) {
		// Nodes unreachable from any root can only mean a parent cycle.
		return errors.New("account hierarchy contains a cycle")
	}
	return nil
}

// Get returns the account for id.
func (t *AccountTree) Get(id string) (Account, bool) {
	acc, ok := t.nodes[id]
	return acc, ok
}

// Len returns the number of accounts in the arena.
func (t *AccountTree) Len() int {
	return len(t.nodes)
}

// IsLeaf reports whether the account has no children. Only leaf accounts are
// postable.
func (t *AccountTree) IsLeaf(id string) bool {
	return len(t.children[id]) == 0
}

// Children returns the ids of the direct children of id, ordered by account code.
func (t *AccountTree) Children(id string) []string {
	return t.children[id]
}

// Depth returns the level of the account counting the root as 1, or 0 if the
// account is unknown. It follows parent links upward, never descending.
func (t *AccountTree) Depth(id string) int {
	acc, ok := t.nodes[id]
	if !ok {
		return 0
	}
	depth := 1
	for acc.ParentAccountID != nil {
		parent, ok := t.nodes[*acc.ParentAccountID]
		if !ok || depth > MaxAccountDepth {
			return depth
		}
		depth++
		acc = parent
	}
	return depth
}

// PathToRoot returns the account ids from id up to its root, inclusive.
func (t *AccountTree) PathToRoot(id string) []string {
	var path []string
	acc, ok := t.nodes[id]
	if !ok {
		return nil
	}
	path = append(path, acc.AccountID)
	for acc.ParentAccountID != nil && len(path) <= MaxAccountDepth {
		parent, ok := t.nodes[*acc.ParentAccountID]
		if !ok {
			break
		}
		path = append(path, parent.AccountID)
		acc = parent
	}
	return path
}

// Walk visits every account in depth-first preorder (parents before children,
// siblings by account code) using an explicit stack. Returning false from fn
// stops the walk.
func (t *AccountTree) Walk(fn func(acc Account, depth int) bool) {
	type frame struct {
		id    string
		depth int
	}
	stack := make([]frame, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: t.roots[i], depth: 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(t.nodes[f.id], f.depth) {
			return
		}
		kids := t.children[f.id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: f.depth + 1})
		}
	}
}
