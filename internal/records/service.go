package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hengadev/errsx"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/store"
)

// FieldErrorHandler receives per-field decryption failures. The record is
// still returned with the failed field blank; the handler is the
// observability channel that keeps silent empty-string substitution from
// masking data loss.
type FieldErrorHandler func(recordID string, errs errsx.Map)

// Service orchestrates encryption around the record store. Keys are
// resolved through the KeyResolver once per operation and discarded; the
// service itself holds no key material.
type Service struct {
	store        *store.Store
	resolver     *encryption.KeyResolver
	onFieldError FieldErrorHandler
}

// Option configures a Service.
type Option func(*Service)

// WithFieldErrorHandler installs a handler for per-field decryption
// failures. Without one, failures still blank the field but go unreported.
func WithFieldErrorHandler(h FieldErrorHandler) Option {
	return func(s *Service) { s.onFieldError = h }
}

// NewService binds the record store and key resolver.
func NewService(st *store.Store, resolver *encryption.KeyResolver, opts ...Option) *Service {
	s := &Service{
		store:        st,
		resolver:     resolver,
		onFieldError: func(string, errsx.Map) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProvisionUser creates a user account with a freshly generated salt. The
// salt is created exactly once here; no other code path writes it.
func (s *Service) ProvisionUser(ctx context.Context, email, name, clinicName string) (store.User, error) {
	salt, err := encryption.GenerateSalt()
	if err != nil {
		return store.User{}, err
	}
	u := store.User{
		ID:                uuid.NewString(),
		Email:             email,
		Name:              name,
		ClinicName:        clinicName,
		EncryptionKeySalt: salt,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return store.User{}, err
	}
	return u, nil
}

// CreateClient encrypts and persists a new client record.
func (s *Service) CreateClient(ctx context.Context, c Client) (Client, error) {
	key, err := s.resolver.ResolveUserKey(ctx, c.UserID)
	if err != nil {
		return Client{}, err
	}
	defer key.Zero()

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	row, err := encryptClient(c, key)
	if err != nil {
		return Client{}, err
	}
	if err := s.store.InsertClient(ctx, row); err != nil {
		return Client{}, err
	}
	return c, nil
}

// GetClient fetches and decrypts one client record. A record whose owner
// has no salt on file is never returned.
func (s *Service) GetClient(ctx context.Context, userID, clientID string) (Client, error) {
	key, err := s.resolver.ResolveUserKey(ctx, userID)
	if err != nil {
		return Client{}, err
	}
	defer key.Zero()

	row, err := s.store.GetClient(ctx, userID, clientID)
	if err != nil {
		return Client{}, err
	}
	c, errs := decryptClient(row, key)
	if !errs.IsEmpty() {
		s.onFieldError(row.ID, errs)
	}
	return c, nil
}

// ListClients fetches and decrypts all of a user's client records. The key
// is resolved once for the whole listing.
func (s *Service) ListClients(ctx context.Context, userID string) ([]Client, error) {
	key, err := s.resolver.ResolveUserKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	rows, err := s.store.ListClients(ctx, userID)
	if err != nil {
		return nil, err
	}

	clients := make([]Client, 0, len(rows))
	for _, row := range rows {
		c, errs := decryptClient(row, key)
		if !errs.IsEmpty() {
			s.onFieldError(row.ID, errs)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// UpdateClient re-encrypts and rewrites an existing client record.
func (s *Service) UpdateClient(ctx context.Context, c Client) (Client, error) {
	if c.ID == "" {
		return Client{}, fmt.Errorf("client id is required")
	}
	key, err := s.resolver.ResolveUserKey(ctx, c.UserID)
	if err != nil {
		return Client{}, err
	}
	defer key.Zero()

	c.UpdatedAt = time.Now().UTC()
	row, err := encryptClient(c, key)
	if err != nil {
		return Client{}, err
	}
	if err := s.store.UpdateClient(ctx, row); err != nil {
		return Client{}, err
	}
	return c, nil
}

// DeleteClient soft-deletes a client record. The ciphertext stays in place;
// no key resolution is needed.
func (s *Service) DeleteClient(ctx context.Context, userID, clientID string) error {
	return s.store.SoftDeleteClient(ctx, userID, clientID)
}

// CreateAppointment encrypts and persists a new appointment.
func (s *Service) CreateAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	key, err := s.resolver.ResolveUserKey(ctx, a.UserID)
	if err != nil {
		return Appointment{}, err
	}
	defer key.Zero()

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	if a.Status == "" {
		a.Status = StatusScheduled
	}

	row, err := encryptAppointment(a, key)
	if err != nil {
		return Appointment{}, err
	}
	if err := s.store.InsertAppointment(ctx, row); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// UpdateAppointment re-encrypts and rewrites an existing appointment.
// Completing an appointment stamps CompletedAt; moving it back to any other
// status clears the stamp.
func (s *Service) UpdateAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	if a.ID == "" {
		return Appointment{}, fmt.Errorf("appointment id is required")
	}
	key, err := s.resolver.ResolveUserKey(ctx, a.UserID)
	if err != nil {
		return Appointment{}, err
	}
	defer key.Zero()

	if a.Status == StatusCompleted {
		if a.CompletedAt.IsZero() {
			a.CompletedAt = time.Now().UTC()
		}
	} else {
		a.CompletedAt = time.Time{}
	}

	row, err := encryptAppointment(a, key)
	if err != nil {
		return Appointment{}, err
	}
	if err := s.store.UpdateAppointment(ctx, row); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// GetAppointment fetches and decrypts one appointment.
func (s *Service) GetAppointment(ctx context.Context, userID, appointmentID string) (Appointment, error) {
	key, err := s.resolver.ResolveUserKey(ctx, userID)
	if err != nil {
		return Appointment{}, err
	}
	defer key.Zero()

	row, err := s.store.GetAppointment(ctx, userID, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	a, errs := decryptAppointment(row, key)
	if !errs.IsEmpty() {
		s.onFieldError(row.ID, errs)
	}
	return a, nil
}

// ListAppointments fetches and decrypts a user's appointments in [start,
// end). Zero bounds are open.
func (s *Service) ListAppointments(ctx context.Context, userID string, start, end time.Time) ([]Appointment, error) {
	key, err := s.resolver.ResolveUserKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	rows, err := s.store.ListAppointments(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	appointments := make([]Appointment, 0, len(rows))
	for _, row := range rows {
		a, errs := decryptAppointment(row, key)
		if !errs.IsEmpty() {
			s.onFieldError(row.ID, errs)
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}

// DeleteAppointment soft-deletes an appointment.
func (s *Service) DeleteAppointment(ctx context.Context, userID, appointmentID string) error {
	return s.store.SoftDeleteAppointment(ctx, userID, appointmentID)
}
