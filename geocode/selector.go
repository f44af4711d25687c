package geocode

import (
	"context"
	"sync"
	"time"

	"civic-reports-service/models"
)

// Selector owns the single location selection of one draft. A new search
// or pick supersedes the prior selection; resolutions still in flight when
// a newer action completes are discarded instead of overwriting it.
type Selector struct {
	provider Provider
	timeout  time.Duration
	frame    Frame

	mu      sync.Mutex
	seq     uint64 // last issued action
	applied uint64 // action that produced the current selection
	current *models.Location
}

func NewSelector(p Provider, timeout time.Duration, frame Frame) *Selector {
	return &Selector{provider: p, timeout: timeout, frame: frame}
}

// Current returns the selected location, or nil when none is selected.
func (s *Selector) Current() *models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	loc := *s.current
	return &loc
}

// SearchByAddress resolves a free-text query through the provider and, if
// no newer action completed meanwhile, makes the result the current
// selection. Resolution may block up to the configured timeout; the
// returned location is valid even when a newer action won the selection.
func (s *Selector) SearchByAddress(ctx context.Context, query string) (models.Location, error) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.mu.Unlock()

	loc, err := Search(ctx, s.provider, query, s.timeout)
	if err != nil {
		return models.Location{}, err
	}

	s.apply(token, loc)
	return loc, nil
}

// PickFromSurface selects a point on the map surface immediately,
// superseding any search still in flight.
func (s *Selector) PickFromSurface(relX, relY float64) (models.Location, error) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.mu.Unlock()

	loc, err := PickFromSurface(relX, relY, s.frame)
	if err != nil {
		return models.Location{}, err
	}

	s.apply(token, loc)
	return loc, nil
}

// apply installs loc unless an action issued later already completed.
func (s *Selector) apply(token uint64, loc models.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token < s.applied {
		return
	}
	s.applied = token
	s.current = &loc
}
