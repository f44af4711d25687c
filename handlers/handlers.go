package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"civic-reports-service/attachments"
	"civic-reports-service/catalog"
	"civic-reports-service/config"
	"civic-reports-service/draft"
	"civic-reports-service/email"
	"civic-reports-service/geo"
	"civic-reports-service/geocode"
	"civic-reports-service/metrics"
	"civic-reports-service/middleware"
	"civic-reports-service/models"
	"civic-reports-service/stats"
)

// ReportsHandler exposes the catalog and its collaborators over HTTP.
type ReportsHandler struct {
	cat      *catalog.Catalog
	provider geocode.Provider
	frame    geocode.Frame
	resolver attachments.Resolver
	notifier *email.Notifier
	cfg      *config.Config
}

func NewReportsHandler(
	cat *catalog.Catalog,
	provider geocode.Provider,
	frame geocode.Frame,
	resolver attachments.Resolver,
	notifier *email.Notifier,
	cfg *config.Config,
) *ReportsHandler {
	return &ReportsHandler{
		cat:      cat,
		provider: provider,
		frame:    frame,
		resolver: resolver,
		notifier: notifier,
		cfg:      cfg,
	}
}

// HealthCheck returns a simple health status
func (h *ReportsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "civic-reports-service",
	})
}

// Help answers liveness pings from clients.
func (h *ReportsHandler) Help(c *gin.Context) {
	c.String(http.StatusOK, "Pong")
}

func badVersion(c *gin.Context, endpoint, got string) {
	log.Warnf("Bad version in %s, expected: 2.0, got: %v", endpoint, got)
	c.String(http.StatusNotAcceptable, "Bad API version, expecting 2.0.") // 406
}

// SubmitReport converts the request into a draft, runs it through the
// submission pipeline and returns the stored report. Validation failures
// come back as a field-to-error map so the client can mark every failing
// field at once.
func (h *ReportsHandler) SubmitReport(c *gin.Context) {
	args := &models.SubmitReportRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /report call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "2.0" {
		badVersion(c, "/report", args.Version)
		return
	}

	author, _ := middleware.Author(c)

	d := draft.New(h.cfg.MaxImages)
	d.Title = args.Title
	d.Description = args.Description
	d.Category = args.Category
	d.Images = attachments.FromURIs(h.cfg.MaxImages, args.Images)
	if args.Location != (models.Location{}) {
		d.AttachLocation(args.Location)
	}

	if d.Location == nil {
		metrics.SubmissionRejectedTotal.WithLabelValues("location_required").Inc()
		c.JSON(http.StatusPreconditionFailed, models.ValidationErrorsResponse{
			Errors: map[string]string{"location": "missing"},
		})
		return
	}
	if !d.Location.Valid() {
		metrics.SubmissionRejectedTotal.WithLabelValues("bad_location").Inc()
		c.JSON(http.StatusBadRequest, models.ValidationErrorsResponse{
			Errors: map[string]string{"location": "invalid"},
		})
		return
	}
	if result := draft.Validate(d); !result.OK() {
		metrics.SubmissionRejectedTotal.WithLabelValues("validation").Inc()
		c.JSON(http.StatusBadRequest, models.ValidationErrorsResponse{Errors: result})
		return
	}

	r, err := h.cat.Submit(d, author)
	if err != nil {
		log.Errorf("Error submitting report: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	metrics.ReportsSubmittedTotal.WithLabelValues(r.Category).Inc()
	c.JSON(http.StatusOK, models.SubmitReportResponse{Report: r})
}

// GetReports lists reports matching the query parameters. Absent or "all"
// parameters deactivate their predicates, so a bare call lists everything.
func (h *ReportsHandler) GetReports(c *gin.Context) {
	criteria := models.FilterCriteria{}
	if err := c.ShouldBindQuery(&criteria); err != nil {
		log.Errorf("Error in parsing /get_reports params: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing filter params: %v", err))
		return
	}

	start := time.Now()
	reports := catalog.Filter(h.cat.All(), criteria)
	metrics.FilterDurationSeconds.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, models.ReportsResponse{Reports: reports, Total: len(reports)})
}

// UpdateStatus moves a report to a new triage status.
func (h *ReportsHandler) UpdateStatus(c *gin.Context) {
	args := &models.UpdateStatusRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /update_status call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "2.0" {
		badVersion(c, "/update_status", args.Version)
		return
	}

	r, err := h.cat.SetStatus(args.ID, args.Status)
	switch {
	case errors.Is(err, catalog.ErrBadStatus):
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	case errors.Is(err, catalog.ErrNotFound):
		c.String(http.StatusNotFound, fmt.Sprint(err))
		return
	case err != nil:
		log.Errorf("Error updating status of report %s: %v", args.ID, err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(r.Status)).Inc()
	if h.notifier.Enabled() {
		go h.notifier.NotifyStatusChange(h.cfg.NotifyEmail, r)
	}

	c.JSON(http.StatusOK, models.SubmitReportResponse{Report: r})
}

// SearchLocation resolves a free-text address through the geocoding
// provider, bounded by the configured timeout.
func (h *ReportsHandler) SearchLocation(c *gin.Context) {
	args := &models.SearchLocationRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /search_location call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "2.0" {
		badVersion(c, "/search_location", args.Version)
		return
	}

	timeout := time.Duration(h.cfg.GeocodeTimeoutSec) * time.Second
	loc, err := geocode.Search(c.Request.Context(), h.provider, args.Query, timeout)
	switch {
	case errors.Is(err, geocode.ErrInvalidInput):
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	case errors.Is(err, geocode.ErrTimeout):
		metrics.GeocodeTimeoutsTotal.Inc()
		c.String(http.StatusGatewayTimeout, fmt.Sprint(err))
		return
	case err != nil:
		log.Errorf("Error geocoding %q: %v", args.Query, err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.JSON(http.StatusOK, models.LocationResponse{Location: loc})
}

// PickLocation maps a relative point on the map surface to coordinates.
func (h *ReportsHandler) PickLocation(c *gin.Context) {
	args := &models.PickLocationRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /pick_location call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "2.0" {
		badVersion(c, "/pick_location", args.Version)
		return
	}

	loc, err := geocode.PickFromSurface(args.RelativeX, args.RelativeY, h.frame)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	}

	c.JSON(http.StatusOK, models.LocationResponse{Location: loc})
}

// UploadImages accepts multipart image files and returns the URIs of the
// accepted ones. Non-image files and files past the attachment cap are
// skipped, mirroring the attachment set contract.
func (h *ReportsHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		log.Errorf("Failed to read multipart form in /upload_images call: %v", err)
		c.String(http.StatusBadRequest, "Could not read multipart input.")
		return
	}

	var candidates []attachments.Candidate
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			log.Errorf("Failed to open uploaded file %q: %v", fh.Filename, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Errorf("Failed to read uploaded file %q: %v", fh.Filename, err)
			continue
		}
		candidates = append(candidates, attachments.Candidate{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	set := attachments.NewSet(h.cfg.MaxImages).Add(h.resolver, candidates...)
	c.JSON(http.StatusOK, models.UploadImagesResponse{Images: set.URIs()})
}

// GetStats computes the dashboard aggregates from the current catalog.
func (h *ReportsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, stats.Compute(h.cat.All()))
}

// GetMap clusters report locations for the requested viewport.
func (h *ReportsHandler) GetMap(c *gin.Context) {
	args := &models.MapRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /get_map call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "2.0" {
		badVersion(c, "/get_map", args.Version)
		return
	}

	results := stats.AggregateMap(h.cat.All(), args.VPort)
	c.JSON(http.StatusOK, models.MapResponse{Results: results})
}

// GetReportsGeoJSON exports the catalog as a GeoJSON feature collection
// for map overlays.
func (h *ReportsHandler) GetReportsGeoJSON(c *gin.Context) {
	criteria := models.FilterCriteria{}
	if err := c.ShouldBindQuery(&criteria); err != nil {
		log.Errorf("Error in parsing /get_reports_geojson params: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing filter params: %v", err))
		return
	}

	fc := geo.FeatureCollection(catalog.Filter(h.cat.All(), criteria))
	c.JSON(http.StatusOK, fc)
}

// GetCategories publishes the canonical category list for the submission
// form.
func (h *ReportsHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoriesResponse{Categories: draft.Categories})
}
