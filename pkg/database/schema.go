package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the portal tables and indexes if they do not exist
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	for _, stmt := range Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// Statements returns the DDL in the order it must run
func Statements() []string {
	return []string{
		createExtensions,
		createUsersTable,
		createDoctorsTable,
		createAppointmentsTable,
		createSchedulesTable,
		createProgressEntriesTable,
		createUsersIndexes,
		createAppointmentsIndexes,
		createSchedulesIndexes,
		createProgressEntriesIndexes,
	}
}

// SQL DDL statements for table creation
const (
	createExtensions = `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`

	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			username VARCHAR(100),
			first_name VARCHAR(100),
			last_name VARCHAR(100),
			phone VARCHAR(32),
			role VARCHAR(20) NOT NULL CHECK (role IN ('user', 'patient')),
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createDoctorsTable = `
		CREATE TABLE IF NOT EXISTS doctors (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			doctor_id VARCHAR(64) UNIQUE NOT NULL,
			name VARCHAR(200) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			specialization VARCHAR(200) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createAppointmentsTable = `
		CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			doctor_id UUID REFERENCES doctors(id) ON DELETE SET NULL,
			appointment_date TIMESTAMP WITH TIME ZONE NOT NULL,
			duration_minutes INTEGER DEFAULT 30,
			meeting_link TEXT,
			notes TEXT,
			status VARCHAR(20) CHECK (status IN ('pending', 'confirmed', 'scheduled', 'completed', 'cancelled')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createSchedulesTable = `
		CREATE TABLE IF NOT EXISTS schedules (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			doctor_id UUID NOT NULL REFERENCES doctors(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			description TEXT,
			schedule_date DATE NOT NULL,
			time VARCHAR(5) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`

	createProgressEntriesTable = `
		CREATE TABLE IF NOT EXISTS progress_entries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			week VARCHAR(32) NOT NULL,
			health_score INTEGER NOT NULL CHECK (health_score BETWEEN 0 AND 100),
			symptoms TEXT[] NOT NULL DEFAULT '{}',
			notes TEXT,
			recorded_by UUID REFERENCES doctors(id) ON DELETE SET NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);`
)

// SQL DDL statements for index creation
const (
	createUsersIndexes = `
		CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`

	createAppointmentsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_appointments_patient_id ON appointments(patient_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor_id ON appointments(doctor_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appointment_date);`

	createSchedulesIndexes = `
		CREATE INDEX IF NOT EXISTS idx_schedules_doctor_id ON schedules(doctor_id);
		CREATE INDEX IF NOT EXISTS idx_schedules_patient_id ON schedules(patient_id, schedule_date);`

	createProgressEntriesIndexes = `
		CREATE INDEX IF NOT EXISTS idx_progress_entries_patient_id ON progress_entries(patient_id, created_at);`
)
