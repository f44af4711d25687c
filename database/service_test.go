package database

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"civic-reports-service/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func testReport() *models.Report {
	return &models.Report{
		ID:          "8a6b2f7c-0000-0000-0000-000000000001",
		Title:       "Large pothole on Main Street",
		Description: "A deep pothole near the intersection endangering cyclists.",
		Category:    "Road Maintenance",
		Status:      models.StatusPending,
		Location:    models.Location{Address: "123 Main Street, Downtown", Latitude: 40.7128, Longitude: -74.006},
		Images:      []string{"https://placehold.co/600x400?name=a.jpg"},
		CreatedAt:   time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		Author:      models.Author{Name: "John Smith"},
	}
}

func TestSaveReport(t *testing.T) {
	it(func() {
		r := testReport()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT\s+INTO reports`).
			WithArgs(r.ID, r.Title, r.Description, r.Category, r.Status,
				r.Location.Address, r.Location.Latitude, r.Location.Longitude,
				`["https://placehold.co/600x400?name=a.jpg"]`,
				r.Author.Name, "2025-01-15 10:30:00").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		if err := NewReportsService(db).SaveReport(r); err != nil {
			t.Errorf("SaveReport: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	it(func() {
		mock.ExpectExec(`UPDATE reports SET status = (.+) WHERE id = (.+)`).
			WithArgs(models.StatusResolved, "abc").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := NewReportsService(db).UpdateStatus("abc", models.StatusResolved); err != nil {
			t.Errorf("UpdateStatus: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestLoadReportsRoundTrip(t *testing.T) {
	it(func() {
		want := testReport()

		columns := []string{"id", "title", "description", "category", "status",
			"address", "latitude", "longitude", "images", "author_name", "created_at"}
		mock.ExpectQuery(`SELECT[\s\S]+FROM reports[\s\S]+ORDER BY seq`).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				want.ID, want.Title, want.Description, want.Category, string(want.Status),
				want.Location.Address, want.Location.Latitude, want.Location.Longitude,
				`["https://placehold.co/600x400?name=a.jpg"]`,
				want.Author.Name, "2025-01-15 10:30:00"))

		got, err := NewReportsService(db).LoadReports(context.Background())
		if err != nil {
			t.Fatalf("LoadReports: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d reports, want 1", len(got))
		}
		if !reflect.DeepEqual(got[0], *want) {
			t.Errorf("round trip lost fields:\n got %+v\nwant %+v", got[0], *want)
		}
	})
}

func TestLoadReportsEmpty(t *testing.T) {
	it(func() {
		columns := []string{"id", "title", "description", "category", "status",
			"address", "latitude", "longitude", "images", "author_name", "created_at"}
		mock.ExpectQuery(`SELECT[\s\S]+FROM reports`).
			WillReturnRows(sqlmock.NewRows(columns))

		got, err := NewReportsService(db).LoadReports(context.Background())
		if err != nil {
			t.Fatalf("LoadReports: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d reports, want 0", len(got))
		}
	})
}
