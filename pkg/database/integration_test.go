//go:build integration

package database_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/appointments"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/progress"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/schedules"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

var testDB *database.DB

// TestMain starts a PostgreSQL container and applies the schema
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "auricare_test",
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "testpass",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Printf("Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Printf("Failed to get postgres host: %v\n", err)
		os.Exit(1)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		fmt.Printf("Failed to get postgres port: %v\n", err)
		os.Exit(1)
	}

	testDB, err = database.NewConnection(&config.DatabaseConfig{
		URL:             fmt.Sprintf("postgres://test:testpass@%s:%s/auricare_test?sslmode=disable", host, port.Port()),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
	}, logger.NewNop())
	if err != nil {
		fmt.Printf("Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.CreateSchema(ctx); err != nil {
		fmt.Printf("Failed to create schema: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	testDB.Close()
	container.Terminate(ctx)
	os.Exit(code)
}

func TestCreateSchema_Idempotent(t *testing.T) {
	require.NoError(t, testDB.CreateSchema(context.Background()))
}

func TestPortalFlow(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()
	metrics := monitoring.NewMetricsCollector("auricare-integration")
	testDB.SetQueryRecorder(metrics)

	doctors := auth.NewDoctorRepository(testDB)
	authService := auth.NewService(&config.JWTConfig{
		SecretKey:      "integration-secret-key-0123456789abcdef",
		AccessTokenTTL: 3600,
		Issuer:         "auricare-portal",
		Audience:       "auricare-dashboards",
	}, auth.NewUserRepository(testDB), doctors, auth.NewMemorySessionStore(), metrics, log)

	appointmentService := appointments.NewService(&config.ServerConfig{Timezone: "UTC"}, appointments.NewRepository(testDB), doctors, metrics, log)
	scheduleService := schedules.NewService(schedules.NewRepository(testDB), appointmentService, log)
	progressService := progress.NewService(progress.NewRepository(testDB), appointmentService, log)

	// Accounts
	_, err := authService.SignUp(ctx, &types.SignUpRequest{
		Email: "jane@example.com", Password: "secret1", Role: types.RolePatient,
		Username: "jdoe", FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)

	_, err = authService.SignUp(ctx, &types.SignUpRequest{Email: "JANE@example.com", Password: "secret1"})
	assert.True(t, types.IsType(err, types.ErrorTypeConflict))

	patient, err := authService.SignIn(ctx, &types.SignInRequest{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	doctor, err := authService.ProvisionDoctor(ctx, &types.Doctor{
		DoctorID: "DOC001", Name: "Dr. Rao", Email: "rao@example.com", Specialization: "Cardiology",
	}, "secret1")
	require.NoError(t, err)

	doc, err := authService.DoctorSignIn(ctx, &types.DoctorSignInRequest{DoctorID: "DOC001", Password: "secret1"})
	require.NoError(t, err)

	// Appointments
	slot := time.Now().UTC().Add(72 * time.Hour)
	booked, err := appointmentService.Book(ctx, patient.Session, &types.BookAppointmentRequest{
		Details: "Chest pain", Date: slot.Format("2006-01-02"), Time: slot.Format("15:04"), DoctorID: doctor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, booked.Status)

	mine, err := appointmentService.ListMine(ctx, patient.Session)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dr. Rao", mine[0].DoctorName)

	confirmed, err := appointmentService.UpdateStatus(ctx, doc.Session, booked.ID, types.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, types.StatusConfirmed, confirmed.Status)

	roster, err := appointmentService.Roster(ctx, doc.Session)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	patientID := roster[0].PatientID
	assert.Equal(t, patient.Session.Principal.ID, patientID)

	// Schedules
	_, err = scheduleService.Create(ctx, doc.Session, &types.CreateScheduleRequest{
		PatientID: patientID, Title: "Blood pressure check",
		ScheduleDate: slot.Format("2006-01-02"), Time: "08:30",
	})
	require.NoError(t, err)

	items, err := scheduleService.ListForPatient(ctx, patient.Session)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dr. Rao", items[0].DoctorName)
	assert.Equal(t, slot.Format("2006-01-02"), items[0].ScheduleDate)

	// Progress
	report, err := progressService.MyProgress(ctx, patient.Session)
	require.NoError(t, err)
	assert.True(t, report.Baseline)

	_, err = progressService.Record(ctx, doc.Session, patientID, &types.RecordProgressRequest{
		HealthScore: 82, Symptoms: []string{"cough"},
	})
	require.NoError(t, err)

	report, err = progressService.PatientProgress(ctx, doc.Session, patientID)
	require.NoError(t, err)
	assert.False(t, report.Baseline)
	require.Len(t, report.Weekly, 1)
	assert.Equal(t, "Week 1", report.Weekly[0].Week)

	// Cancellation is terminal
	_, err = appointmentService.Cancel(ctx, patient.Session, booked.ID)
	require.NoError(t, err)
	_, err = appointmentService.UpdateStatus(ctx, doc.Session, booked.ID, types.StatusConfirmed)
	assert.True(t, types.IsType(err, types.ErrorTypeConflict))
}
