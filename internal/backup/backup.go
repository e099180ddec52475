// Package backup exports an encrypted snapshot of a user's records for
// off-site storage. The snapshot is encrypted with a key derived for the
// owning user, so the backup is unreadable without the server secret and
// the user's salt.
package backup

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/store"
)

const (
	// chunkSize is the plaintext segment size for stream encryption.
	chunkSize = 4096

	// maxChunkSize bounds decoded chunk lengths to prevent memory
	// exhaustion from a corrupted or hostile snapshot.
	maxChunkSize = 10 * 1024 * 1024
)

// Snapshot is the serialized form of a user's data: rows exactly as
// persisted, ciphertext columns included.
type Snapshot struct {
	UserID       string                 `json:"user_id"`
	ExportedAt   time.Time              `json:"exported_at"`
	Clients      []store.ClientRow      `json:"clients"`
	Appointments []store.AppointmentRow `json:"appointments"`
}

// Exporter reads a user's rows and writes encrypted snapshots.
type Exporter struct {
	store    *store.Store
	resolver *encryption.KeyResolver
}

// NewExporter binds the record store and key resolver.
func NewExporter(st *store.Store, resolver *encryption.KeyResolver) *Exporter {
	return &Exporter{store: st, resolver: resolver}
}

// Export writes an encrypted snapshot of the user's records to w.
func (e *Exporter) Export(ctx context.Context, userID string, w io.Writer) error {
	key, err := e.resolver.ResolveUserKey(ctx, userID)
	if err != nil {
		return err
	}
	defer key.Zero()

	clients, err := e.store.ListClients(ctx, userID)
	if err != nil {
		return fmt.Errorf("collecting clients for snapshot: %w", err)
	}
	appointments, err := e.store.ListAppointments(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return fmt.Errorf("collecting appointments for snapshot: %w", err)
	}

	payload, err := json.Marshal(Snapshot{
		UserID:       userID,
		ExportedAt:   time.Now().UTC(),
		Clients:      clients,
		Appointments: appointments,
	})
	if err != nil {
		return fmt.Errorf("serializing snapshot: %w", err)
	}

	return encryptStream(w, payload, key)
}

// encryptStream writes the payload as length-framed encrypted chunks:
// a 4-byte big-endian length followed by nonce || secretbox output, per
// chunk. Each chunk gets a fresh nonce.
func encryptStream(w io.Writer, payload []byte, key encryption.Key) error {
	for off := 0; off < len(payload); off += chunkSize {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}

		var nonce [encryption.NonceSize]byte
		if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
			return fmt.Errorf("%w: nonce generation: %v", encryption.ErrEncryptionFailed, err)
		}
		chunk := secretbox.Seal(nonce[:], payload[off:end], &nonce, (*[encryption.KeySize]byte)(&key))

		var header [4]byte
		binary.BigEndian.PutUint32(header[:], uint32(len(chunk)))
		if _, err := w.Write(header[:]); err != nil {
			return fmt.Errorf("writing chunk header: %w", err)
		}
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("writing chunk: %w", err)
		}
	}
	return nil
}

// DecryptSnapshot reads an encrypted snapshot stream back into a Snapshot.
// Used by restore tooling and tests.
func DecryptSnapshot(r io.Reader, key encryption.Key) (Snapshot, error) {
	var payload []byte
	var header [4]byte

	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF {
				break
			}
			return Snapshot{}, fmt.Errorf("%w: reading chunk header: %v", encryption.ErrDecryptionFailed, err)
		}
		length := binary.BigEndian.Uint32(header[:])
		if length == 0 || length > maxChunkSize {
			return Snapshot{}, fmt.Errorf("%w: invalid chunk size %d", encryption.ErrDecryptionFailed, length)
		}

		chunk := make([]byte, length)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return Snapshot{}, fmt.Errorf("%w: reading chunk: %v", encryption.ErrDecryptionFailed, err)
		}
		if len(chunk) < encryption.NonceSize+secretbox.Overhead {
			return Snapshot{}, fmt.Errorf("%w: chunk too short", encryption.ErrDecryptionFailed)
		}

		var nonce [encryption.NonceSize]byte
		copy(nonce[:], chunk[:encryption.NonceSize])
		plaintext, ok := secretbox.Open(nil, chunk[encryption.NonceSize:], &nonce, (*[encryption.KeySize]byte)(&key))
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: authentication failed", encryption.ErrDecryptionFailed)
		}
		payload = append(payload, plaintext...)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: invalid snapshot payload: %v", encryption.ErrDecryptionFailed, err)
	}
	return snap, nil
}
