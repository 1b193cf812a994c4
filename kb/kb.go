package kb

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/mission-designer/core"
)

var (
	// ErrMissionExists is returned by Create for an id already in the store.
	ErrMissionExists = errors.New("mission already exists")
	// ErrMissionNotFound is returned for an unknown mission id.
	ErrMissionNotFound = errors.New("mission not found")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventMissionCreated EventType = iota
	EventMissionUpdated
	EventMissionDeleted
)

func (t EventType) String() string {
	switch t {
	case EventMissionCreated:
		return "created"
	case EventMissionUpdated:
		return "updated"
	case EventMissionDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers after a mission changes.
type Event struct {
	Type    EventType
	Mission MissionInfo
}

// MissionInfo is a lock-free snapshot of a mission's headline fields.
type MissionInfo struct {
	ID           string
	Name         string
	Description  string
	MissionType  string
	CreatedAt    time.Time
	LastModified time.Time

	Objectives   int
	Requirements int
	Constraints  int
	Solutions    int
	Iterations   int

	BaselineSolutionID string
	SelectedSolutionID string
}

func infoOf(m *core.Mission) MissionInfo {
	return MissionInfo{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		MissionType:        m.MissionType,
		CreatedAt:          m.CreatedAt,
		LastModified:       m.LastModified,
		Objectives:         len(m.Objectives()),
		Requirements:       len(m.Requirements()),
		Constraints:        len(m.Constraints()),
		Solutions:          len(m.DesignSolutions()),
		Iterations:         len(m.Iterations()),
		BaselineSolutionID: m.BaselineSolutionID,
		SelectedSolutionID: m.SelectedSolutionID,
	}
}

type entry struct {
	mu      sync.Mutex
	mission *core.Mission
}

// MissionStore is an in-memory, thread-safe registry of missions. Missions
// themselves are not synchronised, so every read or write of one goes
// through View or Update, which hold that mission's lock.
type MissionStore struct {
	mu       sync.RWMutex
	missions map[string]*entry
	order    []string

	subs    map[int]func(Event)
	nextSub int
}

// NewMissionStore constructs an empty store.
func NewMissionStore() *MissionStore {
	return &MissionStore{
		missions: make(map[string]*entry),
		subs:     make(map[int]func(Event)),
	}
}

// Create adds m. It returns ErrMissionExists if the id is taken.
func (s *MissionStore) Create(m *core.Mission) error {
	s.mu.Lock()
	if _, exists := s.missions[m.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMissionExists, m.ID)
	}
	s.missions[m.ID] = &entry{mission: m}
	s.order = append(s.order, m.ID)
	ev := Event{Type: EventMissionCreated, Mission: infoOf(m)}
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}

func (s *MissionStore) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.missions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissionNotFound, id)
	}
	return e, nil
}

// View runs fn with the mission locked. fn must not retain the mission.
func (s *MissionStore) View(id string, fn func(*core.Mission) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.mission)
}

// Update runs fn with the mission locked and notifies subscribers when fn
// succeeds.
func (s *MissionStore) Update(id string, fn func(*core.Mission) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if err := fn(e.mission); err != nil {
		e.mu.Unlock()
		return err
	}
	ev := Event{Type: EventMissionUpdated, Mission: infoOf(e.mission)}
	e.mu.Unlock()

	s.mu.RLock()
	subs := s.subscribers()
	s.mu.RUnlock()
	notify(subs, ev)
	return nil
}

// Info returns a snapshot of one mission.
func (s *MissionStore) Info(id string) (MissionInfo, error) {
	var info MissionInfo
	err := s.View(id, func(m *core.Mission) error {
		info = infoOf(m)
		return nil
	})
	return info, err
}

// List returns snapshots of every mission in creation order.
func (s *MissionStore) List() []MissionInfo {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.missions[id])
	}
	s.mu.RUnlock()

	out := make([]MissionInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, infoOf(e.mission))
		e.mu.Unlock()
	}
	return out
}

// Len is the number of missions held.
func (s *MissionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.missions)
}

// Delete removes the mission with id.
func (s *MissionStore) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.missions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMissionNotFound, id)
	}
	delete(s.missions, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	subs := s.subscribers()
	s.mu.Unlock()

	e.mu.Lock()
	ev := Event{Type: EventMissionDeleted, Mission: infoOf(e.mission)}
	e.mu.Unlock()

	notify(subs, ev)
	return nil
}

// Subscribe registers a callback for store events. Callbacks run on the
// goroutine that made the change, outside the store lock. It returns an
// unsubscribe function.
func (s *MissionStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// subscribers copies the callbacks; callers hold s.mu.
func (s *MissionStore) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
