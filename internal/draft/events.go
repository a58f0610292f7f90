// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package draft

// Op names the store operation that produced an Event.
type Op string

const (
	OpLoad             Op = "load"
	OpAdd              Op = "add"
	OpDelete           Op = "delete"
	OpDuplicate        Op = "duplicate"
	OpToggleVisibility Op = "toggle_visibility"
	OpReorder          Op = "reorder"
	OpUpdateContent    Op = "update_content"
	OpUpdate           Op = "update"
	OpSelect           Op = "select"
	OpHover            Op = "hover"
	OpDevice           Op = "device"
	OpSaved            Op = "saved"
)

// Event is published synchronously after every state change.
type Event struct {
	Op       Op
	BlockID  string
	Revision uint64
}

// Mutation reports whether the event changed block data, as opposed to a
// cursor, viewport or bookkeeping change.
func (e Event) Mutation() bool {
	switch e.Op {
	case OpAdd, OpDelete, OpDuplicate, OpToggleVisibility, OpReorder, OpUpdateContent, OpUpdate:
		return true
	}
	return false
}

// Subscribe registers fn to be called after every state change. Handlers
// run on the caller's goroutine and must not mutate the store. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Store) publish(e Event) {
	for _, fn := range s.subs {
		fn(e)
	}
}
