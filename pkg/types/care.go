package types

import "time"

// Schedule represents a care schedule item a doctor assigned to a patient
type Schedule struct {
	ID           string    `json:"id" db:"id"`
	PatientID    string    `json:"patient_id" db:"patient_id"`
	DoctorID     string    `json:"doctor_id" db:"doctor_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description,omitempty" db:"description"`
	ScheduleDate string    `json:"schedule_date" db:"schedule_date"`
	Time         string    `json:"time" db:"time"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Joined for display
	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

// CreateScheduleRequest represents the schedule form
type CreateScheduleRequest struct {
	PatientID    string `json:"patient_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ScheduleDate string `json:"schedule_date"`
	Time         string `json:"time"`
}

// ProgressEntry represents one weekly progress record
type ProgressEntry struct {
	ID          string    `json:"id" db:"id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	Week        string    `json:"week" db:"week"`
	HealthScore int       `json:"health_score" db:"health_score"`
	Symptoms    []string  `json:"symptoms" db:"symptoms"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	RecordedBy  string    `json:"recorded_by,omitempty" db:"recorded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RecordProgressRequest represents a doctor's progress entry
type RecordProgressRequest struct {
	Week        string   `json:"week"`
	HealthScore int      `json:"health_score"`
	Symptoms    []string `json:"symptoms"`
	Notes       string   `json:"notes"`
}

// VitalSign is a single vitals reading
type VitalSign struct {
	Date          string `json:"date"`
	HeartRate     int    `json:"heart_rate"`
	BloodPressure int    `json:"blood_pressure"`
}

// WeeklyPoint is one chart point in a progress report
type WeeklyPoint struct {
	Week        string `json:"week"`
	HealthScore int    `json:"health_score"`
	Symptoms    int    `json:"symptoms"`
}

// ProgressSummary holds the headline figures of a report
type ProgressSummary struct {
	CurrentScore int        `json:"current_score"`
	Change       string     `json:"change"`
	Improvement  string     `json:"improvement,omitempty"`
	LastVisit    *time.Time `json:"last_visit,omitempty"`
}

// ProgressReport is returned by the progress endpoints
type ProgressReport struct {
	PatientID string          `json:"patient_id"`
	Weekly    []WeeklyPoint   `json:"weekly"`
	Vitals    []VitalSign     `json:"vitals,omitempty"`
	Summary   ProgressSummary `json:"summary"`
	Baseline  bool            `json:"baseline"`
}

// ChatMessage is one turn in an assistant conversation
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// Chat message roles and reply sources
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"

	ReplySourceCanned = "canned"
	ReplySourceLLM    = "llm"
)

// ChatRequest is a message sent to the assistant with prior turns
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatIntro is what the assistant shows when a conversation starts
type ChatIntro struct {
	Greeting    ChatMessage `json:"greeting"`
	Suggestions []string    `json:"suggestions"`
	Placeholder string      `json:"placeholder"`
}
