package schedules

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Service manages doctor-assigned care schedules
type Service struct {
	repository interfaces.ScheduleRepository
	roster     interfaces.RosterProvider
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates a new schedule service
func NewService(repository interfaces.ScheduleRepository, roster interfaces.RosterProvider, log *logger.Logger) *Service {
	return &Service{
		repository: repository,
		roster:     roster,
		logger:     log,
		now:        time.Now,
	}
}

// Create assigns a schedule item to one of the doctor's patients
func (s *Service) Create(ctx context.Context, session *types.Session, req *types.CreateScheduleRequest) (*types.Schedule, error) {
	if session == nil || session.Principal.Role != types.RoleDoctor {
		return nil, types.NewAuthorizationError(types.ErrCodeForbidden, "Only doctors can create schedules")
	}

	patientID := strings.TrimSpace(req.PatientID)
	if patientID == "" {
		return nil, types.NewValidationError(types.ErrCodePatientNotFound, "Please select a patient", nil)
	}

	title := strings.TrimSpace(req.Title)
	date := strings.TrimSpace(req.ScheduleDate)
	clock := strings.TrimSpace(req.Time)
	if title == "" || date == "" || clock == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Title, date and time are required", nil)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Date must be YYYY-MM-DD", map[string]interface{}{"schedule_date": date})
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Time must be HH:MM", map[string]interface{}{"time": clock})
	}

	patients, err := s.roster.Roster(ctx, session)
	if err != nil {
		return nil, err
	}
	var patient *types.PatientSummary
	for _, p := range patients {
		if p.PatientID == patientID {
			patient = p
			break
		}
	}
	if patient == nil {
		return nil, types.NewValidationError(types.ErrCodePatientNotFound, "Please select a patient", map[string]interface{}{"patient_id": patientID})
	}

	schedule := &types.Schedule{
		ID:           uuid.New().String(),
		PatientID:    patientID,
		DoctorID:     session.Principal.ID,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		ScheduleDate: date,
		Time:         clock,
		CreatedAt:    s.now().UTC(),
		PatientName:  patient.PatientName,
		DoctorName:   session.Principal.DisplayName,
	}

	if err := s.repository.Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.Audit(ctx, session.Principal.ID, "create_schedule", "schedule", true, map[string]interface{}{
		"schedule_id": schedule.ID,
		"patient_id":  patientID,
	})
	return schedule, nil
}

// ListForDoctor returns the items the doctor assigned, newest first
func (s *Service) ListForDoctor(ctx context.Context, session *types.Session) ([]*types.Schedule, error) {
	if session == nil || session.Principal.Role != types.RoleDoctor {
		return nil, types.NewAuthorizationError(types.ErrCodeForbidden, "Only doctors can view assigned schedules")
	}

	schedules, err := s.repository.ListByDoctor(ctx, session.Principal.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(schedules), nil
}

// ListForPatient returns the caller's own schedule items in date order
func (s *Service) ListForPatient(ctx context.Context, session *types.Session) ([]*types.Schedule, error) {
	if session == nil || session.Principal.Role == types.RoleDoctor {
		return nil, types.NewAuthorizationError(types.ErrCodeForbidden, "Doctors do not have a personal schedule")
	}

	schedules, err := s.repository.ListByPatient(ctx, session.Principal.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(schedules), nil
}

func nonNil(schedules []*types.Schedule) []*types.Schedule {
	if schedules == nil {
		return []*types.Schedule{}
	}
	return schedules
}
