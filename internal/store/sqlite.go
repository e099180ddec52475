package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	clinic_name TEXT NOT NULL DEFAULT '',
	encryption_key_salt TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	name_encrypted TEXT,
	email_encrypted TEXT,
	phone_encrypted TEXT,
	date_of_birth_encrypted TEXT,
	notes_encrypted TEXT,
	insurance_number_encrypted TEXT,
	medical_conditions_encrypted TEXT,
	insurance_company TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_clients_user ON clients(user_id);

CREATE TABLE IF NOT EXISTS appointments (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	client_ids_json TEXT NOT NULL DEFAULT '[]',
	start_time TIMESTAMP NOT NULL,
	end_time TIMESTAMP NOT NULL,
	status TEXT NOT NULL DEFAULT 'scheduled',
	notes_encrypted TEXT,
	completed_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointments(user_id, start_time);
`

// Store is a SQLite-backed user and record store. It implements
// encryption.SaltStore.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and initializes
// the schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user row. The salt must already be set; it is
// never updated afterwards.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	if u.EncryptionKeySalt == "" {
		return fmt.Errorf("user %q has no encryption key salt", u.ID)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, clinic_name, encryption_key_salt, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.ClinicName, u.EncryptionKeySalt, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, clinic_name, encryption_key_salt, created_at
		FROM users WHERE id = ? AND deleted_at IS NULL`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.ClinicName, &u.EncryptionKeySalt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetSalt returns the user's hex-encoded encryption key salt, satisfying
// encryption.SaltStore. A user without a salt on record cannot have keys
// derived, so the error matches encryption.ErrSaltNotFound.
func (s *Store) GetSalt(ctx context.Context, userID string) (string, error) {
	var salt string
	err := s.db.QueryRowContext(ctx,
		`SELECT encryption_key_salt FROM users WHERE id = ?`, userID).Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", encryption.NewSaltNotFoundError(userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get salt: %w", err)
	}
	if salt == "" {
		return "", encryption.NewSaltNotFoundError(userID)
	}
	return salt, nil
}

// InsertClient persists a new client row.
func (s *Store) InsertClient(ctx context.Context, row ClientRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, user_id,
			name_encrypted, email_encrypted, phone_encrypted,
			date_of_birth_encrypted, notes_encrypted,
			insurance_number_encrypted, medical_conditions_encrypted,
			insurance_company, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.UserID,
		row.NameEncrypted, row.EmailEncrypted, row.PhoneEncrypted,
		row.DateOfBirthEncrypted, row.NotesEncrypted,
		row.InsuranceNumberEncrypted, row.MedicalConditionsEncrypted,
		row.InsuranceCompany, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// UpdateClient rewrites the mutable columns of an existing client row.
func (s *Store) UpdateClient(ctx context.Context, row ClientRow) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET
			name_encrypted = ?, email_encrypted = ?, phone_encrypted = ?,
			date_of_birth_encrypted = ?, notes_encrypted = ?,
			insurance_number_encrypted = ?, medical_conditions_encrypted = ?,
			insurance_company = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		row.NameEncrypted, row.EmailEncrypted, row.PhoneEncrypted,
		row.DateOfBirthEncrypted, row.NotesEncrypted,
		row.InsuranceNumberEncrypted, row.MedicalConditionsEncrypted,
		row.InsuranceCompany, row.UpdatedAt,
		row.ID, row.UserID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return requireRow(res, row.ID)
}

// GetClient returns one of a user's client rows.
func (s *Store) GetClient(ctx context.Context, userID, id string) (ClientRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id,
			name_encrypted, email_encrypted, phone_encrypted,
			date_of_birth_encrypted, notes_encrypted,
			insurance_number_encrypted, medical_conditions_encrypted,
			insurance_company, created_at, updated_at
		FROM clients WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ClientRow{}, fmt.Errorf("client %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return ClientRow{}, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// ListClients returns all of a user's client rows, newest first.
func (s *Store) ListClients(ctx context.Context, userID string) ([]ClientRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id,
			name_encrypted, email_encrypted, phone_encrypted,
			date_of_birth_encrypted, notes_encrypted,
			insurance_number_encrypted, medical_conditions_encrypted,
			insurance_company, created_at, updated_at
		FROM clients WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var result []ClientRow
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// SoftDeleteClient marks a client row deleted without dropping the
// ciphertext.
func (s *Store) SoftDeleteClient(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return requireRow(res, id)
}

// InsertAppointment persists a new appointment row.
func (s *Store) InsertAppointment(ctx context.Context, row AppointmentRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (
			id, user_id, client_ids_json, start_time, end_time,
			status, notes_encrypted, completed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.UserID, row.ClientIDsJSON, row.StartTime, row.EndTime,
		row.Status, row.NotesEncrypted, row.CompletedAt, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// UpdateAppointment rewrites the mutable columns of an existing appointment
// row.
func (s *Store) UpdateAppointment(ctx context.Context, row AppointmentRow) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET
			client_ids_json = ?, start_time = ?, end_time = ?,
			status = ?, notes_encrypted = ?, completed_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		row.ClientIDsJSON, row.StartTime, row.EndTime,
		row.Status, row.NotesEncrypted, row.CompletedAt,
		row.ID, row.UserID)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return requireRow(res, row.ID)
}

// GetAppointment returns one of a user's appointment rows.
func (s *Store) GetAppointment(ctx context.Context, userID, id string) (AppointmentRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_ids_json, start_time, end_time,
			status, notes_encrypted, completed_at, created_at
		FROM appointments WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AppointmentRow{}, fmt.Errorf("appointment %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return AppointmentRow{}, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// ListAppointments returns a user's appointments within [start, end),
// ordered by start time. Zero times skip the corresponding bound.
func (s *Store) ListAppointments(ctx context.Context, userID string, start, end time.Time) ([]AppointmentRow, error) {
	query := `
		SELECT id, user_id, client_ids_json, start_time, end_time,
			status, notes_encrypted, completed_at, created_at
		FROM appointments WHERE user_id = ? AND deleted_at IS NULL`
	args := []any{userID}
	if !start.IsZero() {
		query += " AND start_time >= ?"
		args = append(args, start)
	}
	if !end.IsZero() {
		query += " AND start_time < ?"
		args = append(args, end)
	}
	query += " ORDER BY start_time ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var result []AppointmentRow
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// SoftDeleteAppointment marks an appointment row deleted.
func (s *Store) SoftDeleteAppointment(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return requireRow(res, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(sc scanner) (ClientRow, error) {
	var c ClientRow
	err := sc.Scan(&c.ID, &c.UserID,
		&c.NameEncrypted, &c.EmailEncrypted, &c.PhoneEncrypted,
		&c.DateOfBirthEncrypted, &c.NotesEncrypted,
		&c.InsuranceNumberEncrypted, &c.MedicalConditionsEncrypted,
		&c.InsuranceCompany, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanAppointment(sc scanner) (AppointmentRow, error) {
	var a AppointmentRow
	err := sc.Scan(&a.ID, &a.UserID, &a.ClientIDsJSON, &a.StartTime, &a.EndTime,
		&a.Status, &a.NotesEncrypted, &a.CompletedAt, &a.CreatedAt)
	return a, err
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return nil
}
