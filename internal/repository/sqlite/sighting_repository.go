package sqlite

import (
	"fmt"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/model"
)

const defaultSightingLimit = 100

// SightingRepository implements repository.SightingRepository for SQLite.
type SightingRepository struct {
	db *DB
}

// NewSightingRepository creates a new SQLite sighting repository.
func NewSightingRepository(db *DB) *SightingRepository {
	return &SightingRepository{db: db}
}

// Insert adds a single sighting.
func (r *SightingRepository) Insert(s *model.Sighting) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO sightings (session_id, label, confidence, x, y, width, height, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.SessionID, s.Label, s.Confidence, s.X, s.Y, s.Width, s.Height, s.SeenAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert sighting: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple sightings in a single transaction.
func (r *SightingRepository) InsertBatch(sightings []model.Sighting) error {
	if len(sightings) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sightings (session_id, label, confidence, x, y, width, height, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range sightings {
		if _, err := stmt.Exec(s.SessionID, s.Label, s.Confidence, s.X, s.Y, s.Width, s.Height, s.SeenAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert sighting: %w", err)
		}
	}

	return tx.Commit()
}

// GetRecent returns sightings newest first, narrowed by filter.
func (r *SightingRepository) GetRecent(filter *dto.SightingFilter) ([]model.Sighting, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT id, session_id, label, confidence, x, y, width, height, seen_at
		FROM sightings
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Label != "" {
		query += " AND label = ?"
		args = append(args, filter.Label)
	}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}

	if !filter.After.IsZero() {
		query += " AND seen_at > ?"
		args = append(args, filter.After.UTC())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSightingLimit
	}
	query += " ORDER BY seen_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sightings: %w", err)
	}
	defer rows.Close()

	sightings := []model.Sighting{}
	for rows.Next() {
		var s model.Sighting
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Label, &s.Confidence, &s.X, &s.Y, &s.Width, &s.Height, &s.SeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		sightings = append(sightings, s)
	}

	return sightings, rows.Err()
}

// GetAllLabels returns every distinct label ever archived.
func (r *SightingRepository) GetAllLabels() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT label FROM sightings ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// CountByLabel returns the number of sightings per label.
func (r *SightingRepository) CountByLabel() (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT label, COUNT(*) FROM sightings GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sightings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[label] = n
	}

	return counts, rows.Err()
}

// DeleteBySession removes all sightings of one session.
func (r *SightingRepository) DeleteBySession(sessionID string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM sightings WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete sightings: %w", err)
	}
	return nil
}
