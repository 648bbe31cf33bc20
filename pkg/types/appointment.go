package types

import "time"

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment represents an appointments row joined with its doctor
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	PatientID       string            `json:"patient_id" db:"patient_id"`
	DoctorID        string            `json:"doctor_id,omitempty" db:"doctor_id"`
	AppointmentDate time.Time         `json:"appointment_date" db:"appointment_date"`
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	MeetingLink     string            `json:"meeting_link,omitempty" db:"meeting_link"`
	Notes           string            `json:"notes,omitempty" db:"notes"`
	Status          AppointmentStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`

	// Joined from doctors
	DoctorName     string `json:"doctor_name,omitempty" db:"doctor_name"`
	Specialization string `json:"specialization,omitempty" db:"specialization"`
}

// AppointmentView is an appointment with its notes decoded for display
type AppointmentView struct {
	ID              string            `json:"id"`
	PatientID       string            `json:"patient_id"`
	PatientName     string            `json:"patient_name"`
	Username        string            `json:"username"`
	Details         string            `json:"details"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	DoctorID        string            `json:"doctor_id,omitempty"`
	DoctorName      string            `json:"doctor_name,omitempty"`
	Specialization  string            `json:"specialization,omitempty"`
}

// PatientSummary is a roster row aggregated from a patient's appointments
type PatientSummary struct {
	PatientID         string            `json:"patient_id"`
	PatientName       string            `json:"patient_name"`
	Username          string            `json:"username"`
	LastAppointment   time.Time         `json:"last_appointment"`
	Status            AppointmentStatus `json:"status"`
	TotalAppointments int               `json:"total_appointments"`
	Details           string            `json:"details"`
}

// BookAppointmentRequest represents the booking form
type BookAppointmentRequest struct {
	PatientName string `json:"patient_name"`
	Username    string `json:"username"`
	Details     string `json:"details"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DoctorID    string `json:"doctor_id,omitempty"`
}

// StatusUpdateRequest changes an appointment status
type StatusUpdateRequest struct {
	Status AppointmentStatus `json:"status"`
}

// AppointmentFilters narrows appointment listings
type AppointmentFilters struct {
	PatientID string
	DoctorID  string
	Status    AppointmentStatus
	From      *time.Time
	To        *time.Time
	Newest    bool
}

// AppointmentQuery carries the raw listing filters a doctor may send
type AppointmentQuery struct {
	Status   string
	DoctorID string
	Date     string
}

// DashboardStats summarises appointments for the caller's dashboard
type DashboardStats struct {
	Role                 Role             `json:"role"`
	TotalAppointments    int              `json:"total_appointments"`
	TotalPatients        int              `json:"total_patients,omitempty"`
	TodayAppointments    int              `json:"today_appointments"`
	UpcomingAppointments int              `json:"upcoming_appointments"`
	NextAppointment      *AppointmentView `json:"next_appointment,omitempty"`
	Navigation           []NavItem        `json:"navigation"`
}
