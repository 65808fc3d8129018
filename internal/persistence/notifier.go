package persistence

import (
	"sync"

	"github.com/google/uuid"
)

type Op string

const (
	OpReload Op = "reload"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes a successful mutation. Subscribers either re-read the
// snapshot or fetch the touched records themselves; the event carries no
// record data.
type Change struct {
	Op  Op
	IDs []uuid.UUID
}

// Notifier fans Change events out to subscribers. Backends embed it to
// satisfy the Subscribe part of the contract. Sends never block: a
// subscriber that falls behind misses events rather than stalling a
// mutation.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

func (n *Notifier) Subscribe() (<-chan Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]chan Change)
	}
	id := n.next
	n.next++
	ch := make(chan Change, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers a change to every subscriber.
func (n *Notifier) Publish(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
