package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Repository implements progress entry persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new progress repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a progress entry
func (r *Repository) Create(ctx context.Context, entry *types.ProgressEntry) error {
	query := `
		INSERT INTO progress_entries (id, patient_id, week, health_score, symptoms,
			notes, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	symptoms := entry.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.PatientID,
		entry.Week,
		entry.HealthScore,
		pq.Array(symptoms),
		sql.NullString{String: entry.Notes, Valid: entry.Notes != ""},
		sql.NullString{String: entry.RecordedBy, Valid: entry.RecordedBy != ""},
		entry.CreatedAt,
	)
	r.db.Observe(ctx, "insert", "progress_entries", start, 1, err)

	if err != nil {
		return fmt.Errorf("failed to create progress entry: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's entries oldest first
func (r *Repository) ListByPatient(ctx context.Context, patientID string) ([]*types.ProgressEntry, error) {
	query := `
		SELECT id, patient_id, week, health_score, symptoms, notes, recorded_by, created_at
		FROM progress_entries
		WHERE patient_id = $1
		ORDER BY created_at ASC`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		r.db.Observe(ctx, "select", "progress_entries", start, 0, err)
		return nil, fmt.Errorf("failed to list progress entries: %w", err)
	}
	defer rows.Close()

	var entries []*types.ProgressEntry
	for rows.Next() {
		var e types.ProgressEntry
		var notes, recordedBy sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.PatientID,
			&e.Week,
			&e.HealthScore,
			pq.Array(&e.Symptoms),
			&notes,
			&recordedBy,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress entry: %w", err)
		}
		e.Notes = notes.String
		e.RecordedBy = recordedBy.String
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress entries: %w", err)
	}
	r.db.Observe(ctx, "select", "progress_entries", start, int64(len(entries)), nil)

	return entries, nil
}
