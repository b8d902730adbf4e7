package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ResultRecord is one indexed processing run. Typed columns, no loose maps.
type ResultRecord struct {
	JobID          string    `json:"job_id"`
	VideoName      string    `json:"video_name"`
	SourceType     string    `json:"source_type"`
	ResultPath     string    `json:"result_path"`
	GDriveURL      string    `json:"gdrive_url,omitempty"`
	Duration       float64   `json:"duration"`
	TotalWords     int       `json:"total_words"`
	SpeechCoverage string    `json:"speech_coverage"`
	CreatedAt      time.Time `json:"created_at"`
}

// MetadataDB indexes processed videos in SQLite.
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (and if needed initializes) the results index.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		video_name TEXT NOT NULL,
		source_type TEXT NOT NULL,
		result_path TEXT NOT NULL,
		gdrive_url TEXT,
		duration REAL,
		total_words INTEGER,
		speech_coverage TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
	CREATE INDEX IF NOT EXISTS idx_results_video_name ON results(video_name);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create results table: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveResult indexes one completed processing run.
func (mdb *MetadataDB) SaveResult(rec ResultRecord) error {
	query := `
	INSERT INTO results (job_id, video_name, source_type, result_path, gdrive_url, duration, total_words, speech_coverage, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.Exec(query, rec.JobID, rec.VideoName, rec.SourceType, rec.ResultPath,
		rec.GDriveURL, rec.Duration, rec.TotalWords, rec.SpeechCoverage, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save result metadata: %w", err)
	}

	return nil
}

// GetResult retrieves one run by job ID.
func (mdb *MetadataDB) GetResult(jobID string) (*ResultRecord, error) {
	query := `
	SELECT job_id, video_name, source_type, result_path, gdrive_url, duration, total_words, speech_coverage, created_at
	FROM results WHERE job_id = ?
	`

	var rec ResultRecord
	var gdriveURL sql.NullString
	err := mdb.db.QueryRow(query, jobID).Scan(
		&rec.JobID, &rec.VideoName, &rec.SourceType, &rec.ResultPath,
		&gdriveURL, &rec.Duration, &rec.TotalWords, &rec.SpeechCoverage, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	rec.GDriveURL = gdriveURL.String

	return &rec, nil
}

// ListResults returns the most recent runs, newest first.
func (mdb *MetadataDB) ListResults(limit int) ([]ResultRecord, error) {
	query := `
	SELECT job_id, video_name, source_type, result_path, gdrive_url, duration, total_words, speech_coverage, created_at
	FROM results ORDER BY created_at DESC LIMIT ?
	`

	rows, err := mdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var records []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var gdriveURL sql.NullString
		if err := rows.Scan(&rec.JobID, &rec.VideoName, &rec.SourceType, &rec.ResultPath,
			&gdriveURL, &rec.Duration, &rec.TotalWords, &rec.SpeechCoverage, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		rec.GDriveURL = gdriveURL.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close closes the database connection.
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
