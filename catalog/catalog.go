package catalog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"civic-reports-service/draft"
	"civic-reports-service/models"
)

var (
	// ErrNotFound signals a status update against an unknown report id.
	ErrNotFound = errors.New("report not found")
	// ErrLocationRequired gates submission of a draft without a resolved
	// location. It is a precondition, separate from field validation.
	ErrLocationRequired = errors.New("a resolved location is required before submission")
	// ErrBadLocation rejects a location with out-of-range coordinates or
	// an empty address. The geocode paths cannot produce one, but drafts
	// built from client input can.
	ErrBadLocation = errors.New("location is not a valid geographic point")
	// ErrValidation rejects submission of a draft with failing fields. The
	// draft itself is untouched; the caller corrects and resubmits.
	ErrValidation = errors.New("draft failed validation")
	// ErrBadStatus rejects unknown status values.
	ErrBadStatus = errors.New("unknown report status")
)

// Store persists catalog mutations. The catalog works without one; when
// present, the full report field set must round-trip without loss.
type Store interface {
	SaveReport(r *models.Report) error
	UpdateStatus(id string, status models.Status) error
}

// Publisher fans submitted reports and status changes out to interested
// consumers, such as an analysis pipeline.
type Publisher interface {
	ReportSubmitted(r *models.Report)
	StatusChanged(r *models.Report)
}

// Catalog owns the authoritative collection of reports. Submission and
// status updates serialize against reads; a concurrent All observes either
// the pre- or post-mutation collection, never a partial append.
type Catalog struct {
	mu      sync.RWMutex
	reports []*models.Report
	byID    map[string]*models.Report

	store     Store
	publisher Publisher
}

// Option configures optional catalog collaborators.
type Option func(*Catalog)

func WithStore(s Store) Option {
	return func(c *Catalog) { c.store = s }
}

func WithPublisher(p Publisher) Option {
	return func(c *Catalog) { c.publisher = p }
}

func New(opts ...Option) *Catalog {
	c := &Catalog{byID: make(map[string]*models.Report)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit converts a validated draft into a report. This is the sole
// creation path: the report gets a fresh id, a pending status and the
// submission timestamp. The draft is never discarded on failure.
func (c *Catalog) Submit(d *draft.Draft, author models.Author) (*models.Report, error) {
	if d.Location == nil {
		return nil, ErrLocationRequired
	}
	if !d.Location.Valid() {
		return nil, fmt.Errorf("%w: %q (%f, %f)", ErrBadLocation,
			d.Location.Address, d.Location.Latitude, d.Location.Longitude)
	}
	if result := draft.Validate(d); !result.OK() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, result)
	}

	r := &models.Report{
		ID:          uuid.NewString(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Status:      models.StatusPending,
		Location:    *d.Location,
		Images:      d.Images.URIs(),
		CreatedAt:   time.Now().UTC(),
		Author:      models.Author{Name: author.Name},
	}

	if c.store != nil {
		if err := c.store.SaveReport(r); err != nil {
			log.Errorf("Failed to persist report %s: %v", r.ID, err)
			return nil, err
		}
	}

	c.mu.Lock()
	c.reports = append(c.reports, r)
	c.byID[r.ID] = r
	c.mu.Unlock()

	log.Infof("Report %s submitted by %s in category %q", r.ID, r.Author.Name, r.Category)

	if c.publisher != nil {
		c.publisher.ReportSubmitted(r)
	}

	snapshot := *r
	return &snapshot, nil
}

// SetStatus overwrites the status of an existing report, leaving every
// other field untouched. Transitions are unconstrained in direction.
func (c *Catalog) SetStatus(id string, status models.Status) (*models.Report, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadStatus, status)
	}

	c.mu.Lock()
	r, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	// Persist before mutating, under the lock, so memory and store never
	// disagree about a report's status.
	if c.store != nil {
		if err := c.store.UpdateStatus(id, status); err != nil {
			c.mu.Unlock()
			log.Errorf("Failed to persist status of report %s: %v", id, err)
			return nil, err
		}
	}
	r.Status = status
	snapshot := *r
	c.mu.Unlock()

	log.Infof("Report %s moved to status %q", id, status)

	if c.publisher != nil {
		c.publisher.StatusChanged(&snapshot)
	}

	return &snapshot, nil
}

// Get returns the report with the given id.
func (c *Catalog) Get(id string) (*models.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	snapshot := *r
	return &snapshot, nil
}

// All returns the collection in insertion order. The returned slice is a
// snapshot; successive reads without intervening mutation are identical.
func (c *Catalog) All() []models.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Report, 0, len(c.reports))
	for _, r := range c.reports {
		out = append(out, *r)
	}
	return out
}

// Len reports the number of submitted reports.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reports)
}

// Load seeds the catalog from persisted reports, preserving their order.
// Used at startup when a store is configured.
func (c *Catalog) Load(reports []models.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range reports {
		r := reports[i]
		c.reports = append(c.reports, &r)
		c.byID[r.ID] = &r
	}
}
