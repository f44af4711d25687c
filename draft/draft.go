package draft

import (
	"civic-reports-service/attachments"
	"civic-reports-service/models"
)

// Categories is the canonical list offered by the submission form. The
// validator does not enforce membership, it only requires a non-empty
// category; the list is published for presentation use.
var Categories = []string{
	"Road Maintenance",
	"Lighting",
	"Vandalism",
	"Waste Management",
	"Public Safety",
	"Parks & Recreation",
	"Water & Drainage",
	"Noise Complaints",
	"Other",
}

// Draft is an in-progress report owned by a single submitting session. It
// exists until it is submitted successfully or cleared.
type Draft struct {
	Title       string
	Description string
	Category    string
	Location    *models.Location
	Images      attachments.Set
}

// New returns an empty draft whose attachment set is capped at maxImages.
func New(maxImages int) *Draft {
	return &Draft{Images: attachments.NewSet(maxImages)}
}

// AttachLocation supersedes any previously selected location.
func (d *Draft) AttachLocation(loc models.Location) {
	d.Location = &loc
}

// Clear resets the draft to its initial state, keeping the image cap.
func (d *Draft) Clear() {
	*d = Draft{Images: attachments.NewSet(d.Images.MaxImages())}
}
