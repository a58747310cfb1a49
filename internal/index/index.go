// Package index holds the in-memory ordered index over catalog products:
// an unbalanced binary search tree keyed by product id.
package index

import (
	"sync"

	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
)

type node struct {
	product     domain.Product
	left, right *node
}

// Index is a BST keyed by product id. All operations take the index mutex;
// the tree itself is never rebalanced, so depth is O(n) in the worst case.
// Identifier uniqueness is a precondition enforced by the store's
// auto-increment keys: Insert never checks for duplicates, and a duplicate
// id simply shadows the earlier node somewhere in the right subtree.
type Index struct {
	mu   sync.Mutex
	root *node
}

func New() *Index {
	return &Index{}
}

// Insert attaches the product at the first empty slot found by descending
// the tree. Ids strictly less go left, equal-or-greater go right.
func (ix *Index) Insert(p domain.Product) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	n := &node{product: p}
	if ix.root == nil {
		ix.root = n
		return
	}
	cur := ix.root
	for {
		if p.ID < cur.product.ID {
			if cur.left == nil {
				cur.left = n
				return
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				return
			}
			cur = cur.right
		}
	}
}

// Find descends from the root and returns the product with the given id,
// or nil if no node matches. Absence is a normal result, not an error.
func (ix *Index) Find(id int64) *domain.Product {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.root
	for cur != nil {
		switch {
		case id == cur.product.ID:
			p := cur.product
			return &p
		case id < cur.product.ID:
			cur = cur.left
		default:
			cur = cur.right
		}
	}
	return nil
}

// InOrder returns every product in ascending id order. The walk is
// iterative with an explicit stack so a degenerate near-linear tree cannot
// exhaust the call stack.
func (ix *Index) InOrder() []domain.Product {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var (
		out   []domain.Product
		stack []*node
		cur   = ix.root
	)
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			stack = append(stack, cur)
			cur = cur.left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur.product)
		cur = cur.right
	}
	return out
}

// Clear drops the root; the old nodes become garbage.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.root = nil
	ix.mu.Unlock()
}

// Len counts reachable nodes.
func (ix *Index) Len() int {
	return len(ix.InOrder())
}
