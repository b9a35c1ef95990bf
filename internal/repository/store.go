package repository

import (
	"context"
	"errors"
)

// ErrReentrant is returned when a mutation starts while another mutation or a
// listener notification is still running.
var ErrReentrant = errors.New("mutation attempted during another mutation or notification")

// Topic names the registry a listener is interested in.
type Topic string

const (
	TopicPersons     Topic = "persons"
	TopicTutorials   Topic = "tutorials"
	TopicAssessments Topic = "assessments"
)

// AllTopics lists every topic in notification order.
var AllTopics = []Topic{TopicPersons, TopicTutorials, TopicAssessments}

// Listener is called synchronously after a committed mutation touched topic.
type Listener func(topic Topic)

type subscription struct {
	id     int
	topics map[Topic]struct{}
	fn     Listener
}

type storeState int

const (
	stateIdle storeState = iota
	stateMutating
	stateNotifying
)

// Store owns the record model. Mutations run against a clone and are
// committed only when they succeed, so a failed operation never leaves a
// partial change behind. The store has a single writer and takes no locks.
type Store struct {
	records   *Records
	listeners []subscription
	nextID    int
	state     storeState
}

// NewStore wraps records, or an empty model when records is nil.
func NewStore(records *Records) *Store {
	if records == nil {
		records = NewRecords()
	}
	records.clearDirty()
	return &Store{records: records}
}

// Update applies fn to a copy of the records and commits the copy when fn
// returns nil. Listeners of every touched registry run before Update returns.
func (s *Store) Update(ctx context.Context, fn func(r *Records) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.state != stateIdle {
		return ErrReentrant
	}
	s.state = stateMutating
	defer func() {
		if s.state == stateMutating {
			s.state = stateIdle
		}
	}()
	working := s.records.clone()
	if err := fn(working); err != nil {
		return err
	}
	topics := working.dirtyTopics()
	working.clearDirty()
	s.records = working
	s.notify(topics)
	return nil
}

// View runs fn against the committed records. fn must not mutate them.
func (s *Store) View(fn func(r *Records) error) error {
	return fn(s.records)
}

// Replace swaps in a complete record model, used when importing a snapshot,
// and notifies every listener.
func (s *Store) Replace(records *Records) error {
	if s.state != stateIdle {
		return ErrReentrant
	}
	records.clearDirty()
	s.records = records
	s.notify(AllTopics)
	return nil
}

// Subscribe registers fn for the given topics, or for every topic when none
// are given. The returned func removes the subscription.
func (s *Store) Subscribe(fn Listener, topics ...Topic) func() {
	if len(topics) == 0 {
		topics = AllTopics
	}
	set := make(map[Topic]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, topics: set, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(topics []Topic) {
	s.state = stateNotifying
	defer func() { s.state = stateIdle }()
	for _, topic := range topics {
		for _, sub := range append([]subscription(nil), s.listeners...) {
			if _, ok := sub.topics[topic]; ok {
				sub.fn(topic)
			}
		}
	}
}
