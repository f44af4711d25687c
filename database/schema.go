package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the reports table if it doesn't exist.
func InitSchema(db *sql.DB) error {
	log.Info("Initializing reports database schema...")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		id VARCHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(64) NOT NULL,
		status ENUM('pending', 'in-progress', 'resolved') NOT NULL DEFAULT 'pending',
		address VARCHAR(255) NOT NULL,
		latitude FLOAT NOT NULL,
		longitude FLOAT NOT NULL,
		images JSON,
		author_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		seq INT NOT NULL AUTO_INCREMENT,
		PRIMARY KEY (seq),
		UNIQUE INDEX id_index (id),
		INDEX status_index (status),
		INDEX category_index (category)
	)`

	if _, err := db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	return nil
}
