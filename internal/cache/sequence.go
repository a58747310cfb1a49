// Package cache holds the in-memory order cache: a singly linked sequence
// that preserves insertion order.
package cache

import (
	"sync"

	"github.com/Tato-23/TareaTiendaOnline/internal/domain"
)

type node struct {
	order domain.Order
	next  *node
}

// Sequence is an insertion-ordered singly linked list of orders keyed by
// order id. Appends never check for duplicate ids (store-assigned keys are
// unique by construction); if a duplicate does get in, lookups return the
// first match from the head. All operations take the sequence mutex.
type Sequence struct {
	mu   sync.Mutex
	head *node
}

func New() *Sequence {
	return &Sequence{}
}

// Append attaches the order at the tail, scanning from the head.
func (s *Sequence) Append(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &node{order: o}
	if s.head == nil {
		s.head = n
		return
	}
	cur := s.head
	for cur.next != nil {
		cur = cur.next
	}
	cur.next = n
}

// Find scans from the head and returns a copy of the first order with the
// given id, or nil if the sequence holds no such order.
func (s *Sequence) Find(id int64) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cur := s.head; cur != nil; cur = cur.next {
		if cur.order.ID == id {
			o := cur.order
			o.Items = append([]domain.LineItem(nil), cur.order.Items...)
			return &o
		}
	}
	return nil
}

// Remove splices out the first order with the given id and reports whether
// a removal happened.
func (s *Sequence) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prev *node
	for cur := s.head; cur != nil; cur = cur.next {
		if cur.order.ID == id {
			if prev != nil {
				prev.next = cur.next
			} else {
				s.head = cur.next
			}
			return true
		}
		prev = cur
	}
	return false
}

// Update overwrites the provided fields of the order with the given id in
// place. Nil pointers (and a nil item slice) mean "leave untouched"; a
// non-nil empty value does overwrite. A provided item slice replaces the
// stored one wholesale. Reports whether the order was found.
func (s *Sequence) Update(id int64, client, date *string, items []domain.LineItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cur := s.head; cur != nil; cur = cur.next {
		if cur.order.ID != id {
			continue
		}
		if client != nil {
			cur.order.Client = *client
		}
		if date != nil {
			cur.order.Date = *date
		}
		if items != nil {
			cur.order.Items = append([]domain.LineItem(nil), items...)
		}
		return true
	}
	return false
}

// ListAll returns every order from head to tail.
func (s *Sequence) ListAll() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Order
	for cur := s.head; cur != nil; cur = cur.next {
		o := cur.order
		o.Items = append([]domain.LineItem(nil), cur.order.Items...)
		out = append(out, o)
	}
	return out
}

// Clear drops the head reference.
func (s *Sequence) Clear() {
	s.mu.Lock()
	s.head = nil
	s.mu.Unlock()
}

// Len counts reachable nodes.
func (s *Sequence) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for cur := s.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}
