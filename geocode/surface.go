package geocode

import (
	"fmt"

	"civic-reports-service/models"
)

// Frame is the geographic window a selection surface maps onto. A
// normalized point (0.5, 0.5) lands on the frame center; X grows eastward
// and Y grows southward, matching screen coordinates.
type Frame struct {
	CenterLat float64
	CenterLon float64
	LatSpan   float64
	LonSpan   float64
}

// DefaultFrame matches the demo map window around lower Manhattan.
func DefaultFrame() Frame {
	return Frame{CenterLat: 40.7128, CenterLon: -74.0060, LatSpan: 0.1, LonSpan: 0.1}
}

// PickFromSurface maps a normalized point on the selection surface to a
// location. Pure function of its inputs; the address is a fixed-precision
// rendering of the derived coordinates.
func PickFromSurface(relX, relY float64, frame Frame) (models.Location, error) {
	if relX < 0 || relX > 1 || relY < 0 || relY > 1 {
		return models.Location{}, fmt.Errorf("%w: surface point (%f, %f) outside [0,1]", ErrInvalidInput, relX, relY)
	}
	lat := frame.CenterLat + (0.5-relY)*frame.LatSpan
	lon := frame.CenterLon + (relX-0.5)*frame.LonSpan
	return models.Location{
		Address:   fmt.Sprintf("%.4f, %.4f", lat, lon),
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
