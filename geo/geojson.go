package geo

import (
	geojson "github.com/paulmach/go.geojson"

	"civic-reports-service/models"
)

// FeatureCollection renders report locations as GeoJSON point features for
// map consumers. Coordinates follow the GeoJSON lon/lat order.
func FeatureCollection(reports []models.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		f := geojson.NewPointFeature([]float64{r.Location.Longitude, r.Location.Latitude})
		f.ID = r.ID
		f.SetProperty("title", r.Title)
		f.SetProperty("category", r.Category)
		f.SetProperty("status", string(r.Status))
		f.SetProperty("address", r.Location.Address)
		fc.AddFeature(f)
	}
	return fc
}
