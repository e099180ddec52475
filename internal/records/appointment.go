package records

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hengadev/errsx"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/store"
)

// AppointmentStatus values mirror the persisted status column.
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// Appointment is a fully decrypted appointment record. Only Notes is
// protected; participant ids, times and status are plaintext metadata.
type Appointment struct {
	ID          string
	UserID      string
	ClientIDs   []string
	StartTime   time.Time
	EndTime     time.Time
	Status      AppointmentStatus
	Notes       string
	CompletedAt time.Time
	CreatedAt   time.Time
}

func encryptAppointment(a Appointment, key encryption.Key) (store.AppointmentRow, error) {
	clientIDs, err := json.Marshal(a.ClientIDs)
	if err != nil {
		return store.AppointmentRow{}, fmt.Errorf("encoding client ids: %w", err)
	}

	bundle := encryption.FieldBundle{}
	if a.Notes != "" {
		bundle[fieldNotes] = a.Notes
	}
	encrypted, err := encryption.EncryptFields(bundle, key)
	if err != nil {
		return store.AppointmentRow{}, fmt.Errorf("encrypting appointment %q: %w", a.ID, err)
	}

	row := store.AppointmentRow{
		ID:             a.ID,
		UserID:         a.UserID,
		ClientIDsJSON:  string(clientIDs),
		StartTime:      a.StartTime,
		EndTime:        a.EndTime,
		Status:         string(a.Status),
		NotesEncrypted: nullable(encrypted, fieldNotes),
		CreatedAt:      a.CreatedAt,
	}
	if !a.CompletedAt.IsZero() {
		row.CompletedAt.Time = a.CompletedAt
		row.CompletedAt.Valid = true
	}
	return row, nil
}

func decryptAppointment(row store.AppointmentRow, key encryption.Key) (Appointment, errsx.Map) {
	bundle := encryption.FieldBundle{}
	addPresent(bundle, fieldNotes, row.NotesEncrypted)
	decrypted, errs := encryption.DecryptFields(bundle, key)

	a := Appointment{
		ID:        row.ID,
		UserID:    row.UserID,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		Status:    AppointmentStatus(row.Status),
		Notes:     decrypted[fieldNotes],
		CreatedAt: row.CreatedAt,
	}
	if row.CompletedAt.Valid {
		a.CompletedAt = row.CompletedAt.Time
	}

	if row.ClientIDsJSON != "" {
		if err := json.Unmarshal([]byte(row.ClientIDsJSON), &a.ClientIDs); err != nil {
			errs.Set("client_ids_json", fmt.Errorf("invalid client id list: %w", err))
		}
	}

	return a, errs
}
