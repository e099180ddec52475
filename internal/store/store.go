// Package store persists user accounts and their encrypted client and
// appointment rows in SQLite. Sensitive columns hold base64 ciphertext
// blobs produced by the encryption package; this package never sees
// plaintext for those fields.
package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist or is
// soft-deleted.
var ErrNotFound = errors.New("not found")

// User is an account row. EncryptionKeySalt is written exactly once at
// provisioning and is immutable afterwards: changing it would orphan every
// encrypted row belonging to the user.
type User struct {
	ID                string
	Email             string
	Name              string
	ClinicName        string
	EncryptionKeySalt string
	CreatedAt         time.Time
}

// ClientRow is a client record as persisted: one nullable text column per
// encrypted logical field, plus plaintext metadata.
type ClientRow struct {
	ID                         string
	UserID                     string
	NameEncrypted              sql.NullString
	EmailEncrypted             sql.NullString
	PhoneEncrypted             sql.NullString
	DateOfBirthEncrypted       sql.NullString
	NotesEncrypted             sql.NullString
	InsuranceNumberEncrypted   sql.NullString
	MedicalConditionsEncrypted sql.NullString
	InsuranceCompany           string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// AppointmentRow is an appointment record as persisted. Only the notes
// column is encrypted.
type AppointmentRow struct {
	ID             string
	UserID         string
	ClientIDsJSON  string
	StartTime      time.Time
	EndTime        time.Time
	Status         string
	NotesEncrypted sql.NullString
	CompletedAt    sql.NullTime
	CreatedAt      time.Time
}
