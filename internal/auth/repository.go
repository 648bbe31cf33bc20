package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const uniqueViolation = "23505"

// UserRepository implements user data persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	query := `
		INSERT INTO users (id, email, username, first_name, last_name, phone,
			role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullString(user.Username),
		nullString(user.FirstName),
		nullString(user.LastName),
		nullString(user.Phone),
		string(user.Role),
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	r.db.Observe(ctx, "insert", "users", start, 1, err)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.NewConflictError(types.ErrCodeEmailExists, "An account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*types.User, error) {
	if !validID(id) {
		return nil, types.NewNotFoundError(types.ErrCodeUserNotFound, "User not found")
	}
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves a user by normalised email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *UserRepository) getOne(ctx context.Context, column, value string) (*types.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, username, first_name, last_name, phone,
			role, password_hash, created_at, updated_at
		FROM users
		WHERE %s = $1`, column)

	var user types.User
	var username, firstName, lastName, phone sql.NullString
	var role string

	start := time.Now()
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&username,
		&firstName,
		&lastName,
		&phone,
		&role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	r.db.Observe(ctx, "select", "users", start, 1, ignoreNoRows(err))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodeUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Phone = phone.String
	user.Role = types.Role(role)

	return &user, nil
}

// Update applies the set fields of updates to the user
func (r *UserRepository) Update(ctx context.Context, id string, updates *types.ProfileUpdates) error {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, nullString(strings.TrimSpace(*value)))
		argIndex++
	}

	add("username", updates.Username)
	add("first_name", updates.FirstName)
	add("last_name", updates.LastName)
	add("phone", updates.Phone)

	if len(setParts) == 0 {
		return types.NewValidationError(types.ErrCodeInvalidInput, "No updates provided", nil)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())
	argIndex++

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(setParts, ", "), argIndex)
	args = append(args, id)

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.db.Observe(ctx, "update", "users", start, 0, err)
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	r.db.Observe(ctx, "update", "users", start, rowsAffected, nil)

	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeUserNotFound, "User not found")
	}

	return nil
}

// DoctorRepository implements doctor account persistence
type DoctorRepository struct {
	db *database.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *database.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

const doctorColumns = `id, doctor_id, name, email, specialization, password_hash, created_at`

// Create inserts a new doctor account
func (r *DoctorRepository) Create(ctx context.Context, doctor *types.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.DoctorID,
		doctor.Name,
		doctor.Email,
		doctor.Specialization,
		doctor.PasswordHash,
		doctor.CreatedAt,
	)
	r.db.Observe(ctx, "insert", "doctors", start, 1, err)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.NewConflictError(types.ErrCodeDoctorExists, "A doctor with this identifier or email already exists")
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	return nil
}

// GetByID retrieves a doctor by primary key
func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*types.Doctor, error) {
	if !validID(id) {
		return nil, types.NewNotFoundError(types.ErrCodeDoctorNotFound, "Doctor not found")
	}
	return r.getOne(ctx, "id", id)
}

// GetByDoctorID retrieves a doctor by the identifier they sign in with
func (r *DoctorRepository) GetByDoctorID(ctx context.Context, doctorID string) (*types.Doctor, error) {
	return r.getOne(ctx, "doctor_id", doctorID)
}

func (r *DoctorRepository) getOne(ctx context.Context, column, value string) (*types.Doctor, error) {
	query := fmt.Sprintf(`SELECT %s FROM doctors WHERE %s = $1`, doctorColumns, column)

	var doctor types.Doctor
	start := time.Now()
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&doctor.ID,
		&doctor.DoctorID,
		&doctor.Name,
		&doctor.Email,
		&doctor.Specialization,
		&doctor.PasswordHash,
		&doctor.CreatedAt,
	)
	r.db.Observe(ctx, "select", "doctors", start, 1, ignoreNoRows(err))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodeDoctorNotFound, "Doctor not found")
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	return &doctor, nil
}

// List returns every doctor ordered by name
func (r *DoctorRepository) List(ctx context.Context) ([]*types.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY name ASC`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.db.Observe(ctx, "select", "doctors", start, 0, err)
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*types.Doctor
	for rows.Next() {
		var d types.Doctor
		if err := rows.Scan(&d.ID, &d.DoctorID, &d.Name, &d.Email, &d.Specialization, &d.PasswordHash, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate doctors: %w", err)
	}
	r.db.Observe(ctx, "select", "doctors", start, int64(len(doctors)), nil)

	return doctors, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// validID reports whether id can be compared against a UUID column
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
