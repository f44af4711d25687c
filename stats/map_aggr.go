package stats

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"civic-reports-service/models"
)

const (
	expectedCells = 160
	minCellLevel  = 6
	maxCellLevel  = 16
)

type cluster struct {
	count    int64
	origCell s2.CellID
}

// MapAggregator buckets report locations into s2 cells sized to the
// viewport, so a map consumer renders at most a bounded number of markers.
type MapAggregator struct {
	level    int
	clusters map[s2.CellID]*cluster
}

// cellLevel picks the deepest cell level that keeps the viewport under
// expectedCells cells.
func cellLevel(vp models.ViewPort) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{Lo: minLL.Lat.Radians(), Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{Lo: minLL.Lng.Radians(), Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(
		(vp.LatMin+vp.LatMax)/2, (vp.LonMin+vp.LonMax)/2))

	for lv := maxCellLevel; lv >= minCellLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minCellLevel
}

func NewMapAggregator(vp models.ViewPort) *MapAggregator {
	return &MapAggregator{
		level:    cellLevel(vp),
		clusters: make(map[s2.CellID]*cluster),
	}
}

// AddReport buckets one report location.
func (a *MapAggregator) AddReport(r *models.Report) {
	a.addPoint(r.Location.Latitude, r.Location.Longitude)
}

func (a *MapAggregator) addPoint(lat, lon float64) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon))
	parent := pc.Parent(a.level)
	if _, ok := a.clusters[parent]; !ok {
		a.clusters[parent] = &cluster{}
	}
	a.clusters[parent].count++
	a.clusters[parent].origCell = pc
}

// Results renders the clusters. A single-point cluster keeps its original
// position instead of snapping to the cell center.
func (a *MapAggregator) Results() []models.MapResult {
	out := make([]models.MapResult, 0, len(a.clusters))
	for c, cl := range a.clusters {
		ll := c.LatLng()
		if cl.count == 1 {
			ll = cl.origCell.LatLng()
		}
		out = append(out, models.MapResult{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     cl.count,
		})
	}
	return out
}

// AggregateMap clusters the locations of every report inside the viewport.
func AggregateMap(reports []models.Report, vp models.ViewPort) []models.MapResult {
	a := NewMapAggregator(vp)
	for i := range reports {
		r := &reports[i]
		if r.Location.Latitude < vp.LatMin || r.Location.Latitude > vp.LatMax ||
			r.Location.Longitude < vp.LonMin || r.Location.Longitude > vp.LonMax {
			continue
		}
		a.AddReport(r)
	}
	return a.Results()
}
