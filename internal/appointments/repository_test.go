package appointments

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const (
	storedAppointmentID  = "6f1c2a4e-3b7d-4c8e-9a21-0d5e7f3b1c42"
	missingAppointmentID = "0b8d4f6a-1c2e-4d3f-8a5b-7e9c1d2f3a4b"
)

var appointmentColumns = []string{
	"id", "patient_id", "doctor_id", "appointment_date", "duration_minutes",
	"meeting_link", "notes", "status", "created_at", "updated_at",
	"name", "specialization",
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepository(database.New(sqlDB, logger.NewNop())), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()

	apt := &types.Appointment{
		ID:              "a1",
		PatientID:       "pat-1",
		AppointmentDate: now,
		DurationMinutes: 30,
		Notes:           "Patient: Jane Doe",
		Status:          types.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs("a1", "pat-1", nil, now, 30, nil, "Patient: Jane Doe", "pending", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), apt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NullStatusReadsScheduled(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1")).WithArgs(storedAppointmentID).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(storedAppointmentID, "pat-1", nil, now, nil, nil, nil, nil, now, now, nil, nil))

	apt, err := repo.GetByID(context.Background(), storedAppointmentID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusScheduled, apt.Status)
	assert.Empty(t, apt.DoctorID)
	assert.Empty(t, apt.Notes)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM appointments").WithArgs(missingAppointmentID).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), missingAppointmentID)
	pe, ok := types.AsPortalError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrCodeAppointmentNotFound, pe.Code)
}

func TestRepository_GetByID_MalformedIDIsNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	for _, id := range []string{"not-a-uuid", "xyz", ""} {
		_, err := repo.GetByID(context.Background(), id)
		pe, ok := types.AsPortalError(err)
		require.True(t, ok, id)
		assert.Equal(t, types.ErrCodeAppointmentNotFound, pe.Code)
		assert.Equal(t, http.StatusNotFound, types.HTTPStatus(err))
	}

	// Malformed ids never reach the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_BuildsFilters(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()
	from := now.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("AND a.patient_id = $1 AND COALESCE(a.status, 'scheduled') = $2 AND a.appointment_date >= $3 ORDER BY a.appointment_date DESC")).
		WithArgs("pat-1", "scheduled", from).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow("a2", "pat-1", "doc-1", now, 30, nil, "Details: x", "scheduled", now, now, "Dr. Rao", "Cardiology").
			AddRow("a1", "pat-1", nil, from, 30, nil, "Details: y", nil, now, now, nil, nil))

	list, err := repo.List(context.Background(), &types.AppointmentFilters{
		PatientID: "pat-1",
		Status:    types.StatusScheduled,
		From:      &from,
		Newest:    true,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dr. Rao", list[0].DoctorName)
	assert.Equal(t, types.StatusScheduled, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_DoctorAndDayWindow(t *testing.T) {
	repo, mock := newMockRepository(t)
	from := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	doctorID := "4a6c8e0b-2d4f-4a6b-8c0d-2e4f6a8b0c1d"

	mock.ExpectQuery(regexp.QuoteMeta("AND a.doctor_id = $1 AND a.status = $2 AND a.appointment_date >= $3 AND a.appointment_date < $4 ORDER BY a.appointment_date ASC")).
		WithArgs(doctorID, "confirmed", from, to).
		WillReturnRows(sqlmock.NewRows(appointmentColumns))

	list, err := repo.List(context.Background(), &types.AppointmentFilters{
		DoctorID: doctorID,
		Status:   types.StatusConfirmed,
		From:     &from,
		To:       &to,
	})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_Error(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM appointments").WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list appointments")
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs("confirmed", sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs("confirmed", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), "a1", types.StatusConfirmed))

	err := repo.UpdateStatus(context.Background(), "missing", types.StatusConfirmed)
	assert.True(t, types.IsType(err, types.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
