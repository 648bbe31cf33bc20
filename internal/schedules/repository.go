package schedules

import (
	"context"
	"fmt"
	"time"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Repository implements care schedule persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new schedule repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const selectSchedules = `
	SELECT s.id, s.patient_id, s.doctor_id, s.title, COALESCE(s.description, ''),
		s.schedule_date, s.time, s.created_at,
		COALESCE(NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''), u.username, u.email),
		d.name
	FROM schedules s
	JOIN users u ON u.id = s.patient_id
	JOIN doctors d ON d.id = s.doctor_id`

// Create inserts a new schedule item
func (r *Repository) Create(ctx context.Context, schedule *types.Schedule) error {
	query := `
		INSERT INTO schedules (id, patient_id, doctor_id, title, description,
			schedule_date, time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.PatientID,
		schedule.DoctorID,
		schedule.Title,
		schedule.Description,
		schedule.ScheduleDate,
		schedule.Time,
		schedule.CreatedAt,
	)
	r.db.Observe(ctx, "insert", "schedules", start, 1, err)

	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// ListByDoctor returns the items a doctor assigned, newest first
func (r *Repository) ListByDoctor(ctx context.Context, doctorID string) ([]*types.Schedule, error) {
	query := selectSchedules + `
		WHERE s.doctor_id = $1
		ORDER BY s.created_at DESC`
	return r.list(ctx, query, doctorID)
}

// ListByPatient returns a patient's items in date order
func (r *Repository) ListByPatient(ctx context.Context, patientID string) ([]*types.Schedule, error) {
	query := selectSchedules + `
		WHERE s.patient_id = $1
		ORDER BY s.schedule_date ASC, s.time ASC`
	return r.list(ctx, query, patientID)
}

func (r *Repository) list(ctx context.Context, query, id string) ([]*types.Schedule, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		r.db.Observe(ctx, "select", "schedules", start, 0, err)
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*types.Schedule
	for rows.Next() {
		var s types.Schedule
		var date time.Time
		if err := rows.Scan(
			&s.ID,
			&s.PatientID,
			&s.DoctorID,
			&s.Title,
			&s.Description,
			&date,
			&s.Time,
			&s.CreatedAt,
			&s.PatientName,
			&s.DoctorName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		s.ScheduleDate = date.Format(dateLayout)
		schedules = append(schedules, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	r.db.Observe(ctx, "select", "schedules", start, int64(len(schedules)), nil)

	return schedules, nil
}
