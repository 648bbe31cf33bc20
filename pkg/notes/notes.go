// Package notes packs appointment booking fields into the single free-text
// notes column and reads them back.
//
// The format is one "Label: value" pair per line:
//
//	Patient: Jane Doe
//	Username: jdoe
//	Details: Follow-up on blood pressure
//	Doctor: Dr. Rao
//
// Empty fields are omitted. Notes written before the labels existed are
// plain text and decode as Details.
package notes

import "strings"

const (
	LabelPatient  = "Patient: "
	LabelUsername = "Username: "
	LabelDetails  = "Details: "
	LabelDoctor   = "Doctor: "
)

// Fallback values used when a label is missing
const (
	NoDetails          = "No details provided"
	UnknownPatient     = "Unknown Patient"
	UnknownUsername    = "unknown"
	HealthcareProvider = "Healthcare Provider"
)

var labels = []string{LabelPatient, LabelUsername, LabelDetails, LabelDoctor}

// Fields are the structured values carried in an appointment's notes
type Fields struct {
	PatientName string `json:"patient_name"`
	Username    string `json:"username"`
	Details     string `json:"details"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

// Encode packs f into the notes format
func Encode(f Fields) string {
	var lines []string
	add := func(label, value string) {
		value = flatten(value)
		if value != "" {
			lines = append(lines, label+value)
		}
	}

	add(LabelPatient, f.PatientName)
	add(LabelUsername, f.Username)
	add(LabelDetails, f.Details)
	add(LabelDoctor, f.DoctorName)

	return strings.Join(lines, "\n")
}

// Decode reads the fields back out of notes, substituting fallback for any
// label that is absent or empty. It never fails.
func Decode(notes string, fallback Fields) Fields {
	out := Fields{
		PatientName: pick(notes, LabelPatient, fallback.PatientName),
		Username:    pick(notes, LabelUsername, fallback.Username),
		Details:     pick(notes, LabelDetails, fallback.Details),
		DoctorName:  pick(notes, LabelDoctor, fallback.DoctorName),
	}

	if _, ok := extract(notes, LabelDetails); !ok && !hasAnyLabel(notes) {
		if legacy := strings.TrimSpace(notes); legacy != "" {
			out.Details = legacy
		}
	}

	return out
}

// PatientView returns the fallbacks used when a patient reads their own appointments
func PatientView(displayName, username string) Fields {
	return Fields{
		PatientName: displayName,
		Username:    username,
		Details:     NoDetails,
	}
}

// DoctorView returns the fallbacks used when a doctor reads appointments
func DoctorView() Fields {
	return Fields{
		PatientName: UnknownPatient,
		Username:    UnknownUsername,
		Details:     NoDetails,
		DoctorName:  HealthcareProvider,
	}
}

func pick(notes, label, fallback string) string {
	if v, ok := extract(notes, label); ok && v != "" {
		return v
	}
	return fallback
}

// extract returns the value following label up to the end of its line.
// A line starting with label wins; otherwise the first occurrence anywhere
// in notes is used.
func extract(notes, label string) (string, bool) {
	for _, line := range strings.Split(notes, "\n") {
		if strings.HasPrefix(line, label) {
			return restOfLine(line[len(label):]), true
		}
	}
	if i := strings.Index(notes, label); i >= 0 {
		return restOfLine(notes[i+len(label):]), true
	}
	return "", false
}

func restOfLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func hasAnyLabel(notes string) bool {
	for _, label := range labels {
		if strings.Contains(notes, label) {
			return true
		}
	}
	return false
}

func flatten(value string) string {
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.TrimSpace(value)
}
