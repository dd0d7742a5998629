package sites

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/signalsfoundry/refframe/model"
)

var (
	// ErrSiteNotFound is returned when a lookup names an unknown site.
	ErrSiteNotFound = errors.New("site not found")
	// ErrSiteExists is returned when adding a site whose ID is taken.
	ErrSiteExists = errors.New("site already exists")
	// ErrInvalidSite is returned for sites with an empty ID or an
	// out-of-range position.
	ErrInvalidSite = errors.New("invalid site")
)

// EventType indicates what kind of change happened in the registry.
type EventType int

const (
	EventSiteAdded EventType = iota
	EventSiteUpdated
	EventSiteRemoved
)

func (t EventType) String() string {
	switch t {
	case EventSiteAdded:
		return "added"
	case EventSiteUpdated:
		return "updated"
	case EventSiteRemoved:
		return "removed"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted to subscribers after every change. Count is the number of
// sites in the registry once the change has been applied.
type Event struct {
	Type  EventType
	Site  model.Site
	Count int
}

// Registry is an in-memory, thread-safe catalogue of named origins.
type Registry struct {
	mu sync.RWMutex

	sites map[string]model.Site

	subs   map[int]func(Event)
	nextID int
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sites: make(map[string]model.Site),
		subs:  make(map[int]func(Event)),
	}
}

// Add stores a new site. It fails with ErrSiteExists if the ID is taken.
func (r *Registry) Add(s model.Site) error {
	if err := Validate(s); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.sites[s.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSiteExists, s.ID)
	}
	r.sites[s.ID] = s
	r.notifyLocked(Event{Type: EventSiteAdded, Site: s})
	return nil
}

// Put stores s, replacing any site with the same ID.
func (r *Registry) Put(s model.Site) error {
	if err := Validate(s); err != nil {
		return err
	}

	r.mu.Lock()
	typ := EventSiteAdded
	if _, exists := r.sites[s.ID]; exists {
		typ = EventSiteUpdated
	}
	r.sites[s.ID] = s
	r.notifyLocked(Event{Type: typ, Site: s})
	return nil
}

// Remove deletes the site with the given ID.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sites[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSiteNotFound, id)
	}
	delete(r.sites, id)
	r.notifyLocked(Event{Type: EventSiteRemoved, Site: s})
	return nil
}

// Get returns the site with the given ID.
func (r *Registry) Get(id string) (model.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sites[id]
	if !ok {
		return model.Site{}, fmt.Errorf("%w: %q", ErrSiteNotFound, id)
	}
	return s, nil
}

// List returns a snapshot of all sites ordered by ID.
func (r *Registry) List() []model.Site {
	r.mu.RLock()
	res := make([]model.Site, 0, len(r.sites))
	for _, s := range r.sites {
		res = append(res, s)
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of sites.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sites)
}

// Subscribe registers a callback for registry events. It returns an
// unsubscribe function that is safe to call more than once.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// notifyLocked releases r.mu and then delivers ev. Subscribers run outside
// the lock so they may call back into the registry.
func (r *Registry) notifyLocked(ev Event) {
	ev.Count = len(r.sites)
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, r.subs[id])
	}
	r.mu.Unlock()

	for _, sub := range subs {
		sub(ev)
	}
}

// Validate checks that s has an ID and a finite position with latitude in
// [-90, 90].
func Validate(s model.Site) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSite)
	}
	for _, v := range []float64{s.Latitude, s.Longitude, s.Altitude, s.Heading} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %q has a non-finite coordinate", ErrInvalidSite, s.ID)
		}
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("%w: %q latitude %v out of range", ErrInvalidSite, s.ID, s.Latitude)
	}
	return nil
}
