package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"civic-reports-service/attachments"
	"civic-reports-service/catalog"
	"civic-reports-service/config"
	"civic-reports-service/draft"
	"civic-reports-service/email"
	"civic-reports-service/geocode"
	"civic-reports-service/middleware"
	"civic-reports-service/models"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, name, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "name": name, "role": role,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func testService(t *testing.T) (*gin.Engine, *catalog.Catalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:         testSecret,
		MaxImages:         5,
		GeocodeTimeoutSec: 1,
	}
	cat := catalog.New()
	h := NewReportsHandler(
		cat,
		geocode.NewStaticProvider(),
		geocode.DefaultFrame(),
		attachments.PlaceholderResolver{},
		email.NewNotifier("", "", ""),
		cfg,
	)

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	router.POST("/report", middleware.RequireAuth(), h.SubmitReport)
	router.GET("/get_reports", h.GetReports)
	router.POST("/update_status", middleware.RequireRole("admin"), h.UpdateStatus)
	router.POST("/search_location", h.SearchLocation)
	router.POST("/pick_location", h.PickLocation)
	router.GET("/get_stats", h.GetStats)
	router.POST("/get_map", h.GetMap)
	router.GET("/get_reports_geojson", h.GetReportsGeoJSON)
	router.GET("/get_categories", h.GetCategories)
	return router, cat
}

func postJSON(router *gin.Engine, path, token string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validSubmitRequest() models.SubmitReportRequest {
	return models.SubmitReportRequest{
		Version:     "2.0",
		Title:       "Broken streetlight",
		Description: "The streetlight has been flickering for days now.",
		Category:    "Lighting",
		Location:    models.Location{Address: "Oak Ave", Latitude: 40.71, Longitude: -74.00},
	}
}

func TestSubmitReport(t *testing.T) {
	router, cat := testService(t)
	token := signToken(t, "John Doe", "user")

	w := postJSON(router, "/report", token, validSubmitRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("/report = %d, body %s", w.Code, w.Body.String())
	}

	var resp models.SubmitReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report.ID == "" || resp.Report.Status != models.StatusPending {
		t.Errorf("report = %+v", resp.Report)
	}
	if resp.Report.Author.Name != "John Doe" {
		t.Errorf("author = %+v, want token name", resp.Report.Author)
	}
	if cat.Len() != 1 {
		t.Errorf("catalog has %d reports, want 1", cat.Len())
	}
}

func TestSubmitReportRequiresAuth(t *testing.T) {
	router, cat := testService(t)
	if w := postJSON(router, "/report", "", validSubmitRequest()); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /report = %d, want 401", w.Code)
	}
	if cat.Len() != 0 {
		t.Errorf("catalog has %d reports, want 0", cat.Len())
	}
}

func TestSubmitReportVersionGate(t *testing.T) {
	router, _ := testService(t)
	args := validSubmitRequest()
	args.Version = "1.0"
	if w := postJSON(router, "/report", signToken(t, "x", "user"), args); w.Code != http.StatusNotAcceptable {
		t.Errorf("/report with version 1.0 = %d, want 406", w.Code)
	}
}

func TestSubmitReportWithoutLocation(t *testing.T) {
	router, cat := testService(t)
	args := validSubmitRequest()
	args.Location = models.Location{}

	w := postJSON(router, "/report", signToken(t, "x", "user"), args)
	if w.Code != http.StatusPreconditionFailed {
		t.Fatalf("/report without location = %d, want 412", w.Code)
	}
	if cat.Len() != 0 {
		t.Errorf("catalog has %d reports, want 0", cat.Len())
	}
}

func TestSubmitReportRejectsOutOfRangeLocation(t *testing.T) {
	router, cat := testService(t)
	token := signToken(t, "x", "user")

	testCases := []struct {
		name string
		loc  models.Location
	}{
		{"coordinates out of range", models.Location{Address: "nowhere", Latitude: 999, Longitude: -500}},
		{"empty address", models.Location{Latitude: 40.71, Longitude: -74.00}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := validSubmitRequest()
			args.Location = tc.loc

			w := postJSON(router, "/report", token, args)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("/report = %d, want 400", w.Code)
			}
			var resp models.ValidationErrorsResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Errors["location"] == "" {
				t.Errorf("missing location error in %v", resp.Errors)
			}
		})
	}
	if cat.Len() != 0 {
		t.Errorf("catalog has %d reports, want 0", cat.Len())
	}
}

func TestSubmitReportCollectsAllValidationErrors(t *testing.T) {
	router, _ := testService(t)
	args := validSubmitRequest()
	args.Title = "Pot"
	args.Description = "Too short."
	args.Category = ""

	w := postJSON(router, "/report", signToken(t, "x", "user"), args)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("/report = %d, want 400", w.Code)
	}

	var resp models.ValidationErrorsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, field := range []string{"title", "description", "category"} {
		if resp.Errors[field] == "" {
			t.Errorf("missing error for field %q in %v", field, resp.Errors)
		}
	}
}

func TestSubmitReportTruncatesImagesAtCap(t *testing.T) {
	router, _ := testService(t)
	args := validSubmitRequest()
	args.Images = []string{"a", "b", "c", "d", "e", "f", "g"}

	w := postJSON(router, "/report", signToken(t, "x", "user"), args)
	if w.Code != http.StatusOK {
		t.Fatalf("/report = %d, body %s", w.Code, w.Body.String())
	}
	var resp models.SubmitReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Report.Images) != 5 {
		t.Errorf("report has %d images, want 5", len(resp.Report.Images))
	}
}

func TestGetReportsFiltering(t *testing.T) {
	router, cat := testService(t)
	seed(t, cat, "Pothole on Main St", "Road Maintenance")
	seed(t, cat, "Streetlight flickering", "Lighting")

	w := get(router, "/get_reports?query=pothole&status=all&category=all")
	if w.Code != http.StatusOK {
		t.Fatalf("/get_reports = %d", w.Code)
	}
	var resp models.ReportsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Reports) != 1 {
		t.Fatalf("total = %d, reports = %d, want 1", resp.Total, len(resp.Reports))
	}
	if resp.Reports[0].Title != "Pothole on Main St" {
		t.Errorf("matched %q", resp.Reports[0].Title)
	}
}

func TestUpdateStatus(t *testing.T) {
	router, cat := testService(t)
	r := seed(t, cat, "Pothole on Main St", "Road Maintenance")
	admin := signToken(t, "Ada", "admin")

	w := postJSON(router, "/update_status", admin, models.UpdateStatusRequest{
		Version: "2.0", ID: r.ID, Status: models.StatusResolved,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("/update_status = %d, body %s", w.Code, w.Body.String())
	}
	got, err := cat.Get(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusResolved {
		t.Errorf("status = %q, want resolved", got.Status)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	router, cat := testService(t)
	r := seed(t, cat, "Pothole on Main St", "Road Maintenance")
	admin := signToken(t, "Ada", "admin")

	testCases := []struct {
		name string
		req  models.UpdateStatusRequest
		want int
	}{
		{"unknown id", models.UpdateStatusRequest{Version: "2.0", ID: "nope", Status: models.StatusResolved}, http.StatusNotFound},
		{"bad status", models.UpdateStatusRequest{Version: "2.0", ID: r.ID, Status: "closed"}, http.StatusBadRequest},
		{"bad version", models.UpdateStatusRequest{Version: "1.0", ID: r.ID, Status: models.StatusResolved}, http.StatusNotAcceptable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if w := postJSON(router, "/update_status", admin, tc.req); w.Code != tc.want {
				t.Errorf("/update_status = %d, want %d", w.Code, tc.want)
			}
		})
	}

	user := signToken(t, "Bob", "user")
	req := models.UpdateStatusRequest{Version: "2.0", ID: r.ID, Status: models.StatusResolved}
	if w := postJSON(router, "/update_status", user, req); w.Code != http.StatusForbidden {
		t.Errorf("non-admin /update_status = %d, want 403", w.Code)
	}
}

func TestSearchLocation(t *testing.T) {
	router, _ := testService(t)

	w := postJSON(router, "/search_location", "", models.SearchLocationRequest{
		Version: "2.0", Query: "123 Main Street",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("/search_location = %d", w.Code)
	}
	var resp models.LocationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Location.Address != "123 Main Street" {
		t.Errorf("address = %q", resp.Location.Address)
	}

	blank := models.SearchLocationRequest{Version: "2.0", Query: "   "}
	if w := postJSON(router, "/search_location", "", blank); w.Code != http.StatusBadRequest {
		t.Errorf("blank query = %d, want 400", w.Code)
	}
}

func TestPickLocation(t *testing.T) {
	router, _ := testService(t)

	w := postJSON(router, "/pick_location", "", models.PickLocationRequest{
		Version: "2.0", RelativeX: 0.5, RelativeY: 0.5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("/pick_location = %d", w.Code)
	}
	var resp models.LocationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Location.Address != "40.7128, -74.0060" {
		t.Errorf("address = %q", resp.Location.Address)
	}

	outside := models.PickLocationRequest{Version: "2.0", RelativeX: 1.5, RelativeY: 0.5}
	if w := postJSON(router, "/pick_location", "", outside); w.Code != http.StatusBadRequest {
		t.Errorf("out-of-surface pick = %d, want 400", w.Code)
	}
}

func TestGetStats(t *testing.T) {
	router, cat := testService(t)
	r := seed(t, cat, "Pothole on Main St", "Road Maintenance")
	seed(t, cat, "Streetlight flickering", "Lighting")
	if _, err := cat.SetStatus(r.ID, models.StatusResolved); err != nil {
		t.Fatal(err)
	}

	w := get(router, "/get_stats")
	if w.Code != http.StatusOK {
		t.Fatalf("/get_stats = %d", w.Code)
	}
	var resp struct {
		TotalReports    int    `json:"total_reports"`
		ResolvedReports int    `json:"resolved_reports"`
		ResolutionRate  string `json:"resolution_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalReports != 2 || resp.ResolvedReports != 1 {
		t.Errorf("stats = %+v", resp)
	}
	if resp.ResolutionRate != "50" {
		t.Errorf("resolution rate = %q, want 50", resp.ResolutionRate)
	}
}

func TestGetMap(t *testing.T) {
	router, cat := testService(t)
	seed(t, cat, "Pothole on Main St", "Road Maintenance")

	w := postJSON(router, "/get_map", "", models.MapRequest{
		Version: "2.0",
		VPort:   models.ViewPort{LatMin: 40.0, LonMin: -75.0, LatMax: 41.0, LonMax: -73.0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("/get_map = %d", w.Code)
	}
	var resp models.MapResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Count != 1 {
		t.Errorf("map results = %+v", resp.Results)
	}
}

func TestGetReportsGeoJSON(t *testing.T) {
	router, cat := testService(t)
	seed(t, cat, "Pothole on Main St", "Road Maintenance")

	w := get(router, "/get_reports_geojson")
	if w.Code != http.StatusOK {
		t.Fatalf("/get_reports_geojson = %d", w.Code)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Errorf("collection type %q with %d features", fc.Type, len(fc.Features))
	}
}

func TestGetCategories(t *testing.T) {
	router, _ := testService(t)

	w := get(router, "/get_categories")
	if w.Code != http.StatusOK {
		t.Fatalf("/get_categories = %d", w.Code)
	}
	var resp models.CategoriesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Categories) != len(draft.Categories) {
		t.Errorf("got %d categories, want %d", len(resp.Categories), len(draft.Categories))
	}
}

// seed submits a minimal valid report directly through the catalog.
func seed(t *testing.T, cat *catalog.Catalog, title, category string) *models.Report {
	t.Helper()
	d := draft.New(5)
	d.Title = title
	d.Description = "A detailed description of the reported issue."
	d.Category = category
	d.AttachLocation(models.Location{Address: "Main St", Latitude: 40.71, Longitude: -74.00})
	r, err := cat.Submit(d, models.Author{Name: "Seeder"})
	if err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return r
}
