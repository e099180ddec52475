// Package records maps decrypted field bundles onto domain records and
// back. It is the only consumer of the encryption package's key resolution:
// every read or write resolves the user's key exactly once, encrypts or
// decrypts the record's field bundle, and touches the store with ciphertext
// only.
package records

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hengadev/errsx"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/store"
)

// Encrypted client field names, matching the column names they are stored
// under.
const (
	fieldName              = "name_encrypted"
	fieldEmail             = "email_encrypted"
	fieldPhone             = "phone_encrypted"
	fieldDateOfBirth       = "date_of_birth_encrypted"
	fieldNotes             = "notes_encrypted"
	fieldInsuranceNumber   = "insurance_number_encrypted"
	fieldMedicalConditions = "medical_conditions_encrypted"
)

// dateOfBirthLayout is the plaintext form of the encrypted birth date.
const dateOfBirthLayout = "2006-01-02"

// MedicalCondition is a Solidaris-reimbursable condition code.
type MedicalCondition string

const (
	ConditionAllergies            MedicalCondition = "allergies"
	ConditionIntolerances         MedicalCondition = "intolerances"
	ConditionChronicKidneyDisease MedicalCondition = "chronic_kidney_disease"
	ConditionEatingDisorder       MedicalCondition = "eating_disorder"
	ConditionMalnutrition         MedicalCondition = "malnutrition"
	ConditionObesity              MedicalCondition = "obesity"
)

// Client is a fully decrypted client record. Optional fields are empty
// when absent; a field that failed to decrypt is also empty and reported
// through the service's field-error hook.
type Client struct {
	ID                string
	UserID            string
	Name              string
	Email             string
	Phone             string
	DateOfBirth       time.Time
	Notes             string
	InsuranceCompany  string
	InsuranceNumber   string
	MedicalConditions []MedicalCondition
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// clientBundle collects the client's protected fields into a bundle for
// encryption. Absent optional fields are omitted so their columns stay
// NULL.
func clientBundle(c Client) (encryption.FieldBundle, error) {
	bundle := encryption.FieldBundle{
		fieldName: c.Name,
	}
	if c.Email != "" {
		bundle[fieldEmail] = c.Email
	}
	if c.Phone != "" {
		bundle[fieldPhone] = c.Phone
	}
	if !c.DateOfBirth.IsZero() {
		bundle[fieldDateOfBirth] = c.DateOfBirth.Format(dateOfBirthLayout)
	}
	if c.Notes != "" {
		bundle[fieldNotes] = c.Notes
	}
	if c.InsuranceNumber != "" {
		bundle[fieldInsuranceNumber] = c.InsuranceNumber
	}
	if len(c.MedicalConditions) > 0 {
		payload, err := json.Marshal(c.MedicalConditions)
		if err != nil {
			return nil, fmt.Errorf("encoding medical conditions: %w", err)
		}
		bundle[fieldMedicalConditions] = string(payload)
	}
	return bundle, nil
}

// encryptClient turns a plaintext client into a persistable row.
func encryptClient(c Client, key encryption.Key) (store.ClientRow, error) {
	bundle, err := clientBundle(c)
	if err != nil {
		return store.ClientRow{}, err
	}
	encrypted, err := encryption.EncryptFields(bundle, key)
	if err != nil {
		return store.ClientRow{}, fmt.Errorf("encrypting client %q: %w", c.ID, err)
	}

	return store.ClientRow{
		ID:                         c.ID,
		UserID:                     c.UserID,
		NameEncrypted:              nullable(encrypted, fieldName),
		EmailEncrypted:             nullable(encrypted, fieldEmail),
		PhoneEncrypted:             nullable(encrypted, fieldPhone),
		DateOfBirthEncrypted:       nullable(encrypted, fieldDateOfBirth),
		NotesEncrypted:             nullable(encrypted, fieldNotes),
		InsuranceNumberEncrypted:   nullable(encrypted, fieldInsuranceNumber),
		MedicalConditionsEncrypted: nullable(encrypted, fieldMedicalConditions),
		InsuranceCompany:           c.InsuranceCompany,
		CreatedAt:                  c.CreatedAt,
		UpdatedAt:                  c.UpdatedAt,
	}, nil
}

// decryptClient turns a stored row back into a plaintext client. Per-field
// decryption failures leave the field blank and are returned in the error
// map; the record itself is always returned.
func decryptClient(row store.ClientRow, key encryption.Key) (Client, errsx.Map) {
	bundle := encryption.FieldBundle{}
	addPresent(bundle, fieldName, row.NameEncrypted)
	addPresent(bundle, fieldEmail, row.EmailEncrypted)
	addPresent(bundle, fieldPhone, row.PhoneEncrypted)
	addPresent(bundle, fieldDateOfBirth, row.DateOfBirthEncrypted)
	addPresent(bundle, fieldNotes, row.NotesEncrypted)
	addPresent(bundle, fieldInsuranceNumber, row.InsuranceNumberEncrypted)
	addPresent(bundle, fieldMedicalConditions, row.MedicalConditionsEncrypted)

	decrypted, errs := encryption.DecryptFields(bundle, key)

	c := Client{
		ID:               row.ID,
		UserID:           row.UserID,
		Name:             decrypted[fieldName],
		Email:            decrypted[fieldEmail],
		Phone:            decrypted[fieldPhone],
		Notes:            decrypted[fieldNotes],
		InsuranceCompany: row.InsuranceCompany,
		InsuranceNumber:  decrypted[fieldInsuranceNumber],
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	if raw := decrypted[fieldDateOfBirth]; raw != "" {
		dob, err := time.Parse(dateOfBirthLayout, raw)
		if err != nil {
			errs.Set(fieldDateOfBirth, fmt.Errorf("invalid date of birth: %w", err))
		} else {
			c.DateOfBirth = dob
		}
	}

	if raw := decrypted[fieldMedicalConditions]; raw != "" {
		var conditions []MedicalCondition
		if err := json.Unmarshal([]byte(raw), &conditions); err != nil {
			errs.Set(fieldMedicalConditions, fmt.Errorf("invalid medical conditions: %w", err))
		} else if len(conditions) > 0 {
			c.MedicalConditions = conditions
		}
	}

	return c, errs
}

func nullable(bundle encryption.FieldBundle, name string) sql.NullString {
	blob, ok := bundle[name]
	if !ok || blob == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: blob, Valid: true}
}

func addPresent(bundle encryption.FieldBundle, name string, col sql.NullString) {
	if col.Valid && col.String != "" {
		bundle[name] = col.String
	}
}
