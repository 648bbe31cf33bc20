package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Health scores are percentages
const (
	MinHealthScore = 0
	MaxHealthScore = 100
)

// Service builds progress reports and records weekly entries
type Service struct {
	repository interfaces.ProgressRepository
	roster     interfaces.RosterProvider
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates a new progress service
func NewService(repository interfaces.ProgressRepository, roster interfaces.RosterProvider, log *logger.Logger) *Service {
	return &Service{
		repository: repository,
		roster:     roster,
		logger:     log,
		now:        time.Now,
	}
}

// MyProgress returns the signed-in patient's report
func (s *Service) MyProgress(ctx context.Context, session *types.Session) (*types.ProgressReport, error) {
	if session == nil || session.Principal.Role != types.RolePatient {
		return nil, types.NewAuthorizationError(types.ErrCodeForbidden, "Progress tracking is available to patients")
	}

	entries, err := s.repository.ListByPatient(ctx, session.Principal.ID)
	if err != nil {
		return nil, err
	}

	report := &types.ProgressReport{PatientID: session.Principal.ID}
	if len(entries) == 0 {
		report.Baseline = true
		report.Weekly = clonePoints(patientBaseline)
		report.Vitals = cloneVitals(baselineVitals)
	} else {
		report.Weekly = points(entries)
	}

	report.Summary = summarize(report.Weekly)
	return report, nil
}

// PatientProgress returns a report on one of the doctor's patients
func (s *Service) PatientProgress(ctx context.Context, session *types.Session, patientID string) (*types.ProgressReport, error) {
	patient, err := s.rosterEntry(ctx, session, patientID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repository.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	report := &types.ProgressReport{PatientID: patientID}
	if len(entries) == 0 {
		report.Baseline = true
		report.Weekly = clonePoints(doctorBaseline)
	} else {
		report.Weekly = points(entries)
	}

	report.Summary = summarize(report.Weekly)
	report.Summary.Improvement = improvement(report.Weekly)
	if !patient.LastAppointment.IsZero() {
		lastVisit := patient.LastAppointment
		report.Summary.LastVisit = &lastVisit
	}
	return report, nil
}

// Record stores a weekly entry for one of the doctor's patients
func (s *Service) Record(ctx context.Context, session *types.Session, patientID string, req *types.RecordProgressRequest) (*types.ProgressEntry, error) {
	if _, err := s.rosterEntry(ctx, session, patientID); err != nil {
		return nil, err
	}

	if req.HealthScore < MinHealthScore || req.HealthScore > MaxHealthScore {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "Health score must be between 0 and 100", map[string]interface{}{
			"health_score": req.HealthScore,
		})
	}

	week := strings.TrimSpace(req.Week)
	if week == "" {
		existing, err := s.repository.ListByPatient(ctx, patientID)
		if err != nil {
			return nil, err
		}
		week = fmt.Sprintf("Week %d", len(existing)+1)
	}

	symptoms := make([]string, 0, len(req.Symptoms))
	for _, symptom := range req.Symptoms {
		if symptom = strings.TrimSpace(symptom); symptom != "" {
			symptoms = append(symptoms, symptom)
		}
	}

	entry := &types.ProgressEntry{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		Week:        week,
		HealthScore: req.HealthScore,
		Symptoms:    symptoms,
		Notes:       strings.TrimSpace(req.Notes),
		RecordedBy:  session.Principal.ID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repository.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Audit(ctx, session.Principal.ID, "record_progress", "progress_entry", true, map[string]interface{}{
		"patient_id": patientID,
		"week":       week,
	})
	return entry, nil
}

func (s *Service) rosterEntry(ctx context.Context, session *types.Session, patientID string) (*types.PatientSummary, error) {
	if session == nil || session.Principal.Role != types.RoleDoctor {
		return nil, types.NewAuthorizationError(types.ErrCodeForbidden, "Only doctors can view patient progress")
	}

	patients, err := s.roster.Roster(ctx, session)
	if err != nil {
		return nil, err
	}
	for _, p := range patients {
		if p.PatientID == patientID {
			return p, nil
		}
	}
	return nil, types.NewNotFoundError(types.ErrCodePatientNotFound, "Patient not found")
}

func points(entries []*types.ProgressEntry) []types.WeeklyPoint {
	out := make([]types.WeeklyPoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.WeeklyPoint{
			Week:        e.Week,
			HealthScore: e.HealthScore,
			Symptoms:    len(e.Symptoms),
		})
	}
	return out
}

// summarize reports the latest score and its change from the week before
func summarize(weekly []types.WeeklyPoint) types.ProgressSummary {
	if len(weekly) == 0 {
		return types.ProgressSummary{Change: percent(0)}
	}

	current := weekly[len(weekly)-1].HealthScore
	previous := current
	if len(weekly) > 1 {
		previous = weekly[len(weekly)-2].HealthScore
	}

	return types.ProgressSummary{
		CurrentScore: current,
		Change:       percent(current - previous),
	}
}

// improvement is the change from the first week to the latest
func improvement(weekly []types.WeeklyPoint) string {
	if len(weekly) == 0 {
		return percent(0)
	}
	return percent(weekly[len(weekly)-1].HealthScore - weekly[0].HealthScore)
}

func percent(delta int) string {
	return fmt.Sprintf("%+d%%", delta)
}
