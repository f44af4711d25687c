package geo

import (
	"encoding/json"
	"testing"

	"civic-reports-service/models"
)

func TestFeatureCollection(t *testing.T) {
	reports := []models.Report{
		{
			ID:       "r1",
			Title:    "Large pothole on Main Street",
			Category: "Road Maintenance",
			Status:   models.StatusPending,
			Location: models.Location{Address: "123 Main Street", Latitude: 40.7128, Longitude: -74.0060},
		},
		{
			ID:       "r2",
			Title:    "Broken streetlight in park",
			Category: "Lighting",
			Status:   models.StatusResolved,
			Location: models.Location{Address: "Central Park", Latitude: 40.7589, Longitude: -73.9851},
		},
	}

	fc := FeatureCollection(reports)
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}

	f := fc.Features[0]
	if !f.Geometry.IsPoint() {
		t.Fatal("feature geometry is not a point")
	}
	// GeoJSON points are lon/lat.
	if f.Geometry.Point[0] != -74.0060 || f.Geometry.Point[1] != 40.7128 {
		t.Errorf("point = %v, want [lon lat]", f.Geometry.Point)
	}
	if got, _ := f.PropertyString("status"); got != "pending" {
		t.Errorf("status property = %q", got)
	}

	if _, err := json.Marshal(fc); err != nil {
		t.Errorf("FeatureCollection not serializable: %v", err)
	}
}
