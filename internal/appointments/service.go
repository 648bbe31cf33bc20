package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/notes"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04"
	defaultDuration = 30
)

var _ interfaces.AppointmentService = (*Service)(nil)

// Service implements booking and appointment management
type Service struct {
	repository interfaces.AppointmentRepository
	doctors    interfaces.DoctorRepository
	metrics    *monitoring.MetricsCollector
	logger     *logger.Logger
	location   *time.Location
	now        func() time.Time
}

// NewService creates a new appointment service. Dates are interpreted in
// the server's configured timezone.
func NewService(
	cfg *config.ServerConfig,
	repository interfaces.AppointmentRepository,
	doctors interfaces.DoctorRepository,
	metrics *monitoring.MetricsCollector,
	log *logger.Logger,
) *Service {
	location := time.UTC
	if cfg != nil && cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.WithError(err).WithField("timezone", cfg.Timezone).Warn("Unknown timezone, using UTC")
		} else {
			location = loc
		}
	}

	return &Service{
		repository: repository,
		doctors:    doctors,
		metrics:    metrics,
		logger:     log,
		location:   location,
		now:        time.Now,
	}
}

// Book creates a pending appointment for the signed-in user or patient
func (s *Service) Book(ctx context.Context, session *types.Session, req *types.BookAppointmentRequest) (*types.AppointmentView, error) {
	if err := requireRole(session, types.RoleUser, types.RolePatient); err != nil {
		return nil, err
	}

	when, err := s.parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if when.Before(s.now()) {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Appointment time must be in the future", map[string]interface{}{
			"date": req.Date,
			"time": req.Time,
		})
	}

	fields := notes.Fields{
		PatientName: strings.TrimSpace(req.PatientName),
		Username:    strings.TrimSpace(req.Username),
		Details:     strings.TrimSpace(req.Details),
	}
	if fields.PatientName == "" {
		fields.PatientName = session.Principal.DisplayName
	}
	if fields.Username == "" {
		fields.Username = session.Principal.Username
	}

	apt := &types.Appointment{
		ID:              uuid.New().String(),
		PatientID:       session.Principal.ID,
		AppointmentDate: when.UTC(),
		DurationMinutes: defaultDuration,
		Status:          types.StatusPending,
	}

	if doctorID := strings.TrimSpace(req.DoctorID); doctorID != "" {
		doctor, err := s.doctors.GetByID(ctx, doctorID)
		if err != nil {
			return nil, err
		}
		apt.DoctorID = doctor.ID
		apt.DoctorName = doctor.Name
		apt.Specialization = doctor.Specialization
		fields.DoctorName = doctor.Name
	}

	apt.Notes = notes.Encode(fields)
	now := s.now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	if err := s.repository.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.logger.Audit(ctx, session.Principal.ID, "book_appointment", "appointment", true, map[string]interface{}{
		"appointment_id": apt.ID,
		"doctor_id":      apt.DoctorID,
	})

	return view(apt, patientFallback(session)), nil
}

// ListMine returns the caller's appointments in date order
func (s *Service) ListMine(ctx context.Context, session *types.Session) ([]*types.AppointmentView, error) {
	if err := requireRole(session, types.RoleUser, types.RolePatient); err != nil {
		return nil, err
	}

	appointments, err := s.repository.List(ctx, &types.AppointmentFilters{PatientID: session.Principal.ID})
	if err != nil {
		return nil, err
	}
	return views(appointments, patientFallback(session)), nil
}

// ListAll returns appointments in date order for a doctor, optionally
// narrowed by status, assigned doctor or calendar day
func (s *Service) ListAll(ctx context.Context, session *types.Session, query types.AppointmentQuery) ([]*types.AppointmentView, error) {
	if err := requireRole(session, types.RoleDoctor); err != nil {
		return nil, err
	}

	filters, err := s.listFilters(query)
	if err != nil {
		return nil, err
	}

	appointments, err := s.repository.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return views(appointments, notes.DoctorView()), nil
}

func (s *Service) listFilters(query types.AppointmentQuery) (*types.AppointmentFilters, error) {
	filters := &types.AppointmentFilters{}

	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := types.AppointmentStatus(strings.ToLower(raw))
		if !status.Valid() {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Unknown appointment status", map[string]interface{}{
				"status": raw,
			})
		}
		filters.Status = status
	}

	if doctorID := strings.TrimSpace(query.DoctorID); doctorID != "" {
		if _, err := uuid.Parse(doctorID); err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Doctor id must be a UUID", map[string]interface{}{
				"doctor_id": doctorID,
			})
		}
		filters.DoctorID = doctorID
	}

	if date := strings.TrimSpace(query.Date); date != "" {
		day, err := time.ParseInLocation(dateLayout, date, s.location)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Date must be YYYY-MM-DD", map[string]interface{}{
				"date": date,
			})
		}
		filters.From, filters.To = s.dayBounds(day)
	}

	return filters, nil
}

// dayBounds returns the half-open range covering the local calendar day of t
func (s *Service) dayBounds(t time.Time) (*time.Time, *time.Time) {
	t = t.In(s.location)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 0, 1)
	return &start, &end
}

// UpdateStatus moves an appointment to status. Completed and cancelled
// appointments cannot change again.
func (s *Service) UpdateStatus(ctx context.Context, session *types.Session, id string, status types.AppointmentStatus) (*types.AppointmentView, error) {
	if err := requireRole(session, types.RoleDoctor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Unknown appointment status", map[string]interface{}{"status": status})
	}

	apt, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, session, apt, status); err != nil {
		return nil, err
	}
	return view(apt, notes.DoctorView()), nil
}

// Cancel cancels one of the caller's own open appointments
func (s *Service) Cancel(ctx context.Context, session *types.Session, id string) (*types.AppointmentView, error) {
	if err := requireRole(session, types.RoleUser, types.RolePatient); err != nil {
		return nil, err
	}

	apt, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.PatientID != session.Principal.ID {
		// Someone else's appointment reads as missing.
		return nil, types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "Appointment not found")
	}

	if err := s.transition(ctx, session, apt, types.StatusCancelled); err != nil {
		return nil, err
	}
	return view(apt, patientFallback(session)), nil
}

func (s *Service) transition(ctx context.Context, session *types.Session, apt *types.Appointment, status types.AppointmentStatus) error {
	from := apt.Status
	if from == status {
		return nil
	}
	if from.Terminal() {
		return types.NewConflictError(types.ErrCodeInvalidTransition, "Appointment is already "+string(from))
	}

	if err := s.repository.UpdateStatus(ctx, apt.ID, status); err != nil {
		return err
	}

	apt.Status = status
	apt.UpdatedAt = s.now().UTC()

	s.metrics.RecordStatusTransition(string(from), string(status))
	s.logger.Audit(ctx, session.Principal.ID, "update_appointment_status", "appointment", true, map[string]interface{}{
		"appointment_id": apt.ID,
		"from":           from,
		"to":             status,
	})
	return nil
}

// Roster groups appointments by patient, newest first
func (s *Service) Roster(ctx context.Context, session *types.Session) ([]*types.PatientSummary, error) {
	if err := requireRole(session, types.RoleDoctor); err != nil {
		return nil, err
	}

	appointments, err := s.repository.List(ctx, &types.AppointmentFilters{Newest: true})
	if err != nil {
		return nil, err
	}
	return buildRoster(appointments), nil
}

// buildRoster expects appointments newest first; the first row seen for a
// patient describes them
func buildRoster(appointments []*types.Appointment) []*types.PatientSummary {
	roster := []*types.PatientSummary{}
	byPatient := make(map[string]*types.PatientSummary)

	for _, apt := range appointments {
		if summary, ok := byPatient[apt.PatientID]; ok {
			summary.TotalAppointments++
			continue
		}

		fields := notes.Decode(apt.Notes, notes.DoctorView())
		summary := &types.PatientSummary{
			PatientID:         apt.PatientID,
			PatientName:       fields.PatientName,
			Username:          fields.Username,
			LastAppointment:   apt.AppointmentDate,
			Status:            apt.Status,
			TotalAppointments: 1,
			Details:           fields.Details,
		}
		byPatient[apt.PatientID] = summary
		roster = append(roster, summary)
	}

	return roster
}

// DashboardStats summarises the caller's appointments
func (s *Service) DashboardStats(ctx context.Context, session *types.Session) (*types.DashboardStats, error) {
	if session == nil {
		return nil, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Sign in required")
	}

	role := session.Principal.Role
	stats := &types.DashboardStats{
		Role:       role,
		Navigation: auth.Navigation(role),
	}
	now := s.now().In(s.location)

	if role == types.RoleDoctor {
		appointments, err := s.repository.List(ctx, &types.AppointmentFilters{})
		if err != nil {
			return nil, err
		}

		patients := make(map[string]struct{})
		for _, apt := range appointments {
			patients[apt.PatientID] = struct{}{}
		}

		from, to := s.dayBounds(now)
		today, err := s.repository.List(ctx, &types.AppointmentFilters{From: from, To: to})
		if err != nil {
			return nil, err
		}

		stats.TotalAppointments = len(appointments)
		stats.TotalPatients = len(patients)
		stats.TodayAppointments = len(today)
		return stats, nil
	}

	appointments, err := s.repository.List(ctx, &types.AppointmentFilters{PatientID: session.Principal.ID})
	if err != nil {
		return nil, err
	}

	stats.TotalAppointments = len(appointments)
	fallback := patientFallback(session)
	for _, apt := range appointments {
		if apt.Status.Terminal() || apt.AppointmentDate.Before(now) {
			continue
		}
		stats.UpcomingAppointments++
		if stats.NextAppointment == nil {
			stats.NextAppointment = view(apt, fallback)
		}
	}
	return stats, nil
}

func (s *Service) parseSlot(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, types.NewValidationError(types.ErrCodeInvalidInput, "Date and time are required", nil)
	}

	when, err := time.ParseInLocation(dateLayout+"T"+timeLayout, date+"T"+clock, s.location)
	if err != nil {
		return time.Time{}, types.NewValidationError(types.ErrCodeInvalidInput, "Date must be YYYY-MM-DD and time HH:MM", map[string]interface{}{
			"date": date,
			"time": clock,
		})
	}
	return when, nil
}

func requireRole(session *types.Session, roles ...types.Role) error {
	if session == nil {
		return types.NewAuthenticationError(types.ErrCodeUnauthorized, "Sign in required")
	}
	for _, role := range roles {
		if session.Principal.Role == role {
			return nil
		}
	}
	return types.NewAuthorizationError(types.ErrCodeForbidden, "This action is not available to your role")
}

func patientFallback(session *types.Session) notes.Fields {
	return notes.PatientView(session.Principal.DisplayName, session.Principal.Username)
}

func views(appointments []*types.Appointment, fallback notes.Fields) []*types.AppointmentView {
	out := make([]*types.AppointmentView, 0, len(appointments))
	for _, apt := range appointments {
		out = append(out, view(apt, fallback))
	}
	return out
}

func view(apt *types.Appointment, fallback notes.Fields) *types.AppointmentView {
	fields := notes.Decode(apt.Notes, fallback)

	doctorName := apt.DoctorName
	if doctorName == "" {
		doctorName = fields.DoctorName
	}

	return &types.AppointmentView{
		ID:              apt.ID,
		PatientID:       apt.PatientID,
		PatientName:     fields.PatientName,
		Username:        fields.Username,
		Details:         fields.Details,
		AppointmentDate: apt.AppointmentDate,
		Status:          apt.Status,
		CreatedAt:       apt.CreatedAt,
		DoctorID:        apt.DoctorID,
		DoctorName:      doctorName,
		Specialization:  apt.Specialization,
	}
}
