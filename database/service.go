package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"civic-reports-service/models"
)

// ReportsService persists reports to MySQL. It implements catalog.Store:
// the full report field set round-trips through SaveReport/LoadReports
// without loss.
type ReportsService struct {
	db *sql.DB
}

func NewReportsService(db *sql.DB) *ReportsService {
	return &ReportsService{db: db}
}

// SaveReport inserts a newly submitted report. The insertion order is kept
// by the auto-increment sequence so LoadReports can restore it.
func (s *ReportsService) SaveReport(r *models.Report) error {
	images, err := json.Marshal(r.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `INSERT
	  INTO reports (id, title, description, category, status, address, latitude, longitude, images, author_name, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Description, r.Category, r.Status,
		r.Location.Address, r.Location.Latitude, r.Location.Longitude,
		string(images), r.Author.Name, r.CreatedAt.UTC().Format(time.DateTime))
	logResult("saveReport", result, err, true)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatus overwrites the status of the report with the given id.
func (s *ReportsService) UpdateStatus(id string, status models.Status) error {
	result, err := s.db.Exec(`UPDATE reports SET status = ? WHERE id = ?`, status, id)
	logResult("updateStatus", result, err, true)
	return err
}

// LoadReports returns every persisted report in insertion order, used to
// seed the catalog at startup.
func (s *ReportsService) LoadReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
	  SELECT id, title, description, category, status, address, latitude, longitude, images, author_name, created_at
	  FROM reports
	  ORDER BY seq`)
	if err != nil {
		log.Errorf("Could not retrieve reports: %v", err)
		return nil, err
	}
	defer rows.Close()

	reports := make([]models.Report, 0, 100)
	for rows.Next() {
		var (
			r         models.Report
			images    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Category, &r.Status,
			&r.Location.Address, &r.Location.Latitude, &r.Location.Longitude,
			&images, &r.Author.Name, &createdAt); err != nil {
			return nil, err
		}
		if images.Valid && images.String != "" {
			if err := json.Unmarshal([]byte(images.String), &r.Images); err != nil {
				log.Warnf("Bad images column for report %s: %v", r.ID, err)
			}
		}
		ts, err := time.Parse(time.DateTime, createdAt)
		if err != nil {
			log.Warnf("Bad created_at for report %s: %v", r.ID, err)
		} else {
			r.CreatedAt = ts.UTC()
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func logResult(msgPrefix string, r sql.Result, e error, checkRowsAffected bool) {
	if e != nil {
		log.Errorf("Query failed: %v", e)
		return
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("Failed to get status of db op: %v", err)
		return
	}
	if checkRowsAffected && rows != 1 {
		log.Warnf("%s: Expected to affect 1 row, affected %d", msgPrefix, rows)
	}
}
