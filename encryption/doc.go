// Package encryption implements field-level encryption for client and
// appointment data at rest.
//
// Sensitive columns (client name, email, phone, date of birth, notes,
// insurance number, medical conditions, appointment notes) are stored as
// self-contained ciphertext blobs: a fresh 24-byte nonce followed by the
// NaCl secretbox output, base64-encoded. Keys are never persisted; they are
// derived per operation from the process server secret, the user id and the
// user's salt via PBKDF2-HMAC-SHA256.
//
// The package exposes three layers:
//
//   - the primitive cipher (Encrypt, Decrypt) over single string values,
//   - the field batch codec (EncryptFields, DecryptFields) over named
//     bundles of optional fields, isolating per-field failures,
//   - key derivation and resolution (DerivePasswordKey, DeriveServerKey,
//     KeyResolver) producing the per-user 32-byte key.
//
// Data-access code resolves a key exactly once per read or write and must
// not cache it beyond the operation.
package encryption
