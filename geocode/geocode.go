package geocode

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/apex/log"

	"civic-reports-service/models"
)

var (
	// ErrInvalidInput is returned for an empty or whitespace-only query.
	ErrInvalidInput = errors.New("search query must not be blank")
	// ErrTimeout is returned when the provider exceeds the latency bound.
	ErrTimeout = errors.New("geocoding provider timed out")
)

// DefaultTimeout bounds a single address resolution.
const DefaultTimeout = 10 * time.Second

// Provider resolves a free-text query into a location. Production
// integrations live behind this interface; the service only requires that
// a successful resolution carries in-range coordinates.
type Provider interface {
	Resolve(ctx context.Context, query string) (models.Location, error)
}

// StaticProvider derives fixed coordinates from the query text around a
// base point, so identical queries always resolve identically. It stands in
// for a real geocoder in demos and tests.
type StaticProvider struct {
	BaseLat float64
	BaseLon float64
}

// NewStaticProvider returns a provider centered on lower Manhattan, the
// same reference point the map surface uses.
func NewStaticProvider() StaticProvider {
	return StaticProvider{BaseLat: 40.7128, BaseLon: -74.0060}
}

func (p StaticProvider) Resolve(_ context.Context, query string) (models.Location, error) {
	h := fnv.New64a()
	h.Write([]byte(query))
	sum := h.Sum64()

	// Two independent offsets in [-0.05, 0.05), mirroring the spread of
	// the demo geocoder but reproducibly.
	latOff := (float64(sum&0xffff)/0x10000 - 0.5) * 0.1
	lonOff := (float64((sum>>16)&0xffff)/0x10000 - 0.5) * 0.1

	return models.Location{
		Address:   query,
		Latitude:  p.BaseLat + latOff,
		Longitude: p.BaseLon + lonOff,
	}, nil
}

func checkCoordinates(loc models.Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("provider returned latitude %f out of range", loc.Latitude)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("provider returned longitude %f out of range", loc.Longitude)
	}
	return nil
}

// Search runs the provider under the latency bound and validates the
// result.
func Search(ctx context.Context, p Provider, query string, timeout time.Duration) (models.Location, error) {
	if strings.TrimSpace(query) == "" {
		return models.Location{}, ErrInvalidInput
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		loc models.Location
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		loc, err := p.Resolve(ctx, query)
		ch <- outcome{loc, err}
	}()

	select {
	case <-ctx.Done():
		log.Warnf("Geocoding %q exceeded %v", query, timeout)
		return models.Location{}, ErrTimeout
	case out := <-ch:
		if out.err != nil {
			return models.Location{}, out.err
		}
		if err := checkCoordinates(out.loc); err != nil {
			return models.Location{}, err
		}
		return out.loc, nil
	}
}
