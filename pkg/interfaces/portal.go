package interfaces

import (
	"context"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// AppointmentService defines booking and appointment management
type AppointmentService interface {
	Book(ctx context.Context, session *types.Session, req *types.BookAppointmentRequest) (*types.AppointmentView, error)
	ListMine(ctx context.Context, session *types.Session) ([]*types.AppointmentView, error)
	ListAll(ctx context.Context, session *types.Session, query types.AppointmentQuery) ([]*types.AppointmentView, error)
	UpdateStatus(ctx context.Context, session *types.Session, id string, status types.AppointmentStatus) (*types.AppointmentView, error)
	Cancel(ctx context.Context, session *types.Session, id string) (*types.AppointmentView, error)
	Roster(ctx context.Context, session *types.Session) ([]*types.PatientSummary, error)
	DashboardStats(ctx context.Context, session *types.Session) (*types.DashboardStats, error)
}

// AppointmentRepository defines persistence for appointments
type AppointmentRepository interface {
	Create(ctx context.Context, apt *types.Appointment) error
	GetByID(ctx context.Context, id string) (*types.Appointment, error)
	List(ctx context.Context, filters *types.AppointmentFilters) ([]*types.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status types.AppointmentStatus) error
}

// RosterProvider exposes a doctor's patient roster to other services
type RosterProvider interface {
	Roster(ctx context.Context, session *types.Session) ([]*types.PatientSummary, error)
}

// ScheduleRepository defines persistence for care schedule items
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *types.Schedule) error
	ListByDoctor(ctx context.Context, doctorID string) ([]*types.Schedule, error)
	ListByPatient(ctx context.Context, patientID string) ([]*types.Schedule, error)
}

// ProgressRepository defines persistence for weekly progress entries
type ProgressRepository interface {
	Create(ctx context.Context, entry *types.ProgressEntry) error
	ListByPatient(ctx context.Context, patientID string) ([]*types.ProgressEntry, error)
}

// Assistant produces a free-form reply for a chat conversation
type Assistant interface {
	Complete(ctx context.Context, role types.Role, history []types.ChatMessage, message string) (string, error)
}

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	Allow(key string) bool
}
