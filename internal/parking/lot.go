// Package parking implements the parking-lot event bus, its text display and
// the fill/empty simulation that drives it.
package parking

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/starford/lotpad/internal/apperr"
)

// Action is the kind of occupancy change.
type Action string

const (
	ActionEnter Action = "enter"
	ActionExit  Action = "exit"
)

// Event is delivered to subscribers after each occupancy change.
type Event struct {
	Name     string `json:"name"`
	Occupied int    `json:"occupied"`
	Capacity int    `json:"capacity"`
	Action   Action `json:"action"`
}

// Subscriber receives lot events. Notify must not call back into the Lot.
type Subscriber interface {
	Notify(Event)
}

// Policy decides what Enter on a full lot and Exit on an empty lot do.
type Policy string

const (
	// PolicyAbsorb ignores the call: no change, no event.
	PolicyAbsorb Policy = "absorb"
	// PolicyStrict rejects the call with ErrCapacityExceeded or ErrUnderflow.
	PolicyStrict Policy = "strict"
)

// Lot tracks occupancy and publishes enter/exit events to subscribers in
// subscription order. Events are delivered while the lot's lock is held, so
// every subscriber sees them in occupancy order.
type Lot struct {
	name     string
	capacity int
	policy   Policy

	mu       sync.Mutex
	occupied int
	subs     []subscription
	nextID   uint64
}

type subscription struct {
	id uint64
	s  Subscriber
}

// NewLot returns an empty lot. An empty policy means PolicyAbsorb.
func NewLot(name string, capacity int, policy Policy) (*Lot, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("parking: capacity must be positive, got %d", capacity)
	}
	switch policy {
	case "":
		policy = PolicyAbsorb
	case PolicyAbsorb, PolicyStrict:
	default:
		return nil, fmt.Errorf("parking: unknown policy %q", policy)
	}
	return &Lot{name: name, capacity: capacity, policy: policy}, nil
}

// Name returns the lot's display name.
func (l *Lot) Name() string { return l.name }

// Capacity returns the maximum number of cars.
func (l *Lot) Capacity() int { return l.capacity }

// Policy returns the full/empty policy.
func (l *Lot) Policy() Policy { return l.policy }

// Occupied returns the current number of cars.
func (l *Lot) Occupied() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.occupied
}

// IsFull reports whether every space is taken.
func (l *Lot) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.occupied >= l.capacity
}

// IsEmpty reports whether no car is parked.
func (l *Lot) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.occupied == 0
}

// Subscribe appends s and returns a func that removes this registration.
// Subscribing the same comparable value twice has no effect; values of
// non-comparable types are registered every time. A nil s is ignored.
func (l *Lot) Subscribe(s Subscriber) (cancel func()) {
	if s == nil {
		return func() {}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(s); i >= 0 {
		return l.canceler(l.subs[i].id)
	}
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscription{id: id, s: s})
	return l.canceler(id)
}

// Unsubscribe removes s. Unknown subscribers, and subscribers of
// non-comparable types, are ignored; use the func returned by Subscribe
// for those.
func (l *Lot) Unsubscribe(s Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(s); i >= 0 {
		l.subs = slices.Delete(l.subs, i, i+1)
	}
}

func (l *Lot) canceler(id uint64) func() {
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if i := slices.IndexFunc(l.subs, func(sub subscription) bool { return sub.id == id }); i >= 0 {
			l.subs = slices.Delete(l.subs, i, i+1)
		}
	}
}

// indexLocked finds s by value. Comparing interfaces whose dynamic type is
// not comparable panics, so such values never match.
func (l *Lot) indexLocked(s Subscriber) int {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return -1
	}
	return slices.IndexFunc(l.subs, func(sub subscription) bool { return sub.s == s })
}

// Enter admits one car.
func (l *Lot) Enter() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.occupied >= l.capacity {
		if l.policy == PolicyStrict {
			return fmt.Errorf("parking: %s is full (%d/%d): %w", l.name, l.occupied, l.capacity, apperr.ErrCapacityExceeded)
		}
		return nil
	}
	l.occupied++
	l.notifyLocked(ActionEnter)
	return nil
}

// Exit lets one car leave.
func (l *Lot) Exit() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.occupied <= 0 {
		if l.policy == PolicyStrict {
			return fmt.Errorf("parking: %s is empty: %w", l.name, apperr.ErrUnderflow)
		}
		return nil
	}
	l.occupied--
	l.notifyLocked(ActionExit)
	return nil
}

func (l *Lot) notifyLocked(a Action) {
	evt := Event{
		Name:     l.name,
		Occupied: l.occupied,
		Capacity: l.capacity,
		Action:   a,
	}
	for _, sub := range l.subs {
		sub.s.Notify(evt)
	}
}
