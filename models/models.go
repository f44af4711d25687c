package models

import (
	"time"
)

// Status of a report in the triage lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// StatusAll is the filter wildcard, it is never stored on a report.
const StatusAll = "all"

// CategoryAll is the category filter wildcard.
const CategoryAll = "all"

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Location is a resolved geographic point. Immutable once attached to a
// draft or report.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the location carries an address and in-range
// coordinates. Every location entering the catalog must satisfy this.
func (l Location) Valid() bool {
	return l.Address != "" &&
		l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Author is the opaque identity supplied by the auth collaborator.
type Author struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Report is a submitted community issue. Only Status mutates after
// creation, and only through the catalog.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	Location    Location  `json:"location"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	Author      Author    `json:"author"`
}

// FilterCriteria is the set of predicates applied to a report listing.
// Empty Query and the "all" wildcards deactivate their predicates.
type FilterCriteria struct {
	Query    string `form:"query" json:"query"`
	Status   string `form:"status" json:"status"`
	Category string `form:"category" json:"category"`
}

type SubmitReportRequest struct {
	Version     string   `json:"version"` // Must be "2.0"
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    Location `json:"location"`
	Images      []string `json:"images"`
}

type SubmitReportResponse struct {
	Report *Report `json:"report"`
}

type UpdateStatusRequest struct {
	Version string `json:"version"` // Must be "2.0"
	ID      string `json:"id"`
	Status  Status `json:"status"`
}

type ReportsResponse struct {
	Reports []Report `json:"reports"`
	Total   int      `json:"total"`
}

type SearchLocationRequest struct {
	Version string `json:"version"` // Must be "2.0"
	Query   string `json:"query"`
}

type PickLocationRequest struct {
	Version   string  `json:"version"` // Must be "2.0"
	RelativeX float64 `json:"relative_x"`
	RelativeY float64 `json:"relative_y"`
}

type LocationResponse struct {
	Location Location `json:"location"`
}

type ValidationErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}

// UploadImagesResponse lists the URIs of the accepted attachments, in the
// order they were accepted.
type UploadImagesResponse struct {
	Images []string `json:"images"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ViewPort bounds a map query and drives the aggregation cell level.
type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}

type MapRequest struct {
	Version string   `json:"version"` // Must be "2.0"
	VPort   ViewPort `json:"vport"`
}

// MapResult is one aggregated cluster of report locations.
type MapResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

type MapResponse struct {
	Results []MapResult `json:"results"`
}
