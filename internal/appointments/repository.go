package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Repository implements appointment persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new appointment repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const selectAppointments = `
	SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date, a.duration_minutes,
		a.meeting_link, a.notes, a.status, a.created_at, a.updated_at,
		d.name, d.specialization
	FROM appointments a
	LEFT JOIN doctors d ON d.id = a.doctor_id`

// Create inserts a new appointment
func (r *Repository) Create(ctx context.Context, apt *types.Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date,
			duration_minutes, meeting_link, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		nullString(apt.DoctorID),
		apt.AppointmentDate,
		apt.DurationMinutes,
		nullString(apt.MeetingLink),
		apt.Notes,
		string(apt.Status),
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	r.db.Observe(ctx, "insert", "appointments", start, 1, err)

	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "Appointment not found")
	}

	query := selectAppointments + ` WHERE a.id = $1`

	start := time.Now()
	apt, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	observed := err
	if errors.Is(err, sql.ErrNoRows) {
		observed = nil
	}
	r.db.Observe(ctx, "select", "appointments", start, 1, observed)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "Appointment not found")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

// List retrieves appointments matching filters, ordered by date
func (r *Repository) List(ctx context.Context, filters *types.AppointmentFilters) ([]*types.Appointment, error) {
	query := selectAppointments + ` WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filters == nil {
		filters = &types.AppointmentFilters{}
	}

	if filters.PatientID != "" {
		query += fmt.Sprintf(" AND a.patient_id = $%d", argIndex)
		args = append(args, filters.PatientID)
		argIndex++
	}

	if filters.DoctorID != "" {
		query += fmt.Sprintf(" AND a.doctor_id = $%d", argIndex)
		args = append(args, filters.DoctorID)
		argIndex++
	}

	if filters.Status != "" {
		if filters.Status == types.StatusScheduled {
			query += fmt.Sprintf(" AND COALESCE(a.status, 'scheduled') = $%d", argIndex)
		} else {
			query += fmt.Sprintf(" AND a.status = $%d", argIndex)
		}
		args = append(args, string(filters.Status))
		argIndex++
	}

	if filters.From != nil {
		query += fmt.Sprintf(" AND a.appointment_date >= $%d", argIndex)
		args = append(args, *filters.From)
		argIndex++
	}

	if filters.To != nil {
		query += fmt.Sprintf(" AND a.appointment_date < $%d", argIndex)
		args = append(args, *filters.To)
	}

	if filters.Newest {
		query += " ORDER BY a.appointment_date DESC, a.created_at DESC"
	} else {
		query += " ORDER BY a.appointment_date ASC, a.created_at ASC"
	}

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.db.Observe(ctx, "select", "appointments", start, 0, err)
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*types.Appointment
	for rows.Next() {
		apt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	r.db.Observe(ctx, "select", "appointments", start, int64(len(appointments)), nil)

	return appointments, nil
}

// UpdateStatus sets the status of an appointment
func (r *Repository) UpdateStatus(ctx context.Context, id string, status types.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		r.db.Observe(ctx, "update", "appointments", start, 0, err)
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	r.db.Observe(ctx, "update", "appointments", start, rowsAffected, nil)

	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "Appointment not found")
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row scanner) (*types.Appointment, error) {
	var apt types.Appointment
	var doctorID, meetingLink, notes, status, doctorName, specialization sql.NullString
	var duration sql.NullInt64

	err := row.Scan(
		&apt.ID,
		&apt.PatientID,
		&doctorID,
		&apt.AppointmentDate,
		&duration,
		&meetingLink,
		&notes,
		&status,
		&apt.CreatedAt,
		&apt.UpdatedAt,
		&doctorName,
		&specialization,
	)
	if err != nil {
		return nil, err
	}

	apt.DoctorID = doctorID.String
	apt.DurationMinutes = int(duration.Int64)
	apt.MeetingLink = meetingLink.String
	apt.Notes = notes.String
	apt.DoctorName = doctorName.String
	apt.Specialization = specialization.String

	apt.Status = types.AppointmentStatus(status.String)
	if !status.Valid || status.String == "" {
		apt.Status = types.StatusScheduled
	}

	return &apt, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
