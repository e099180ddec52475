package encryption

import (
	"github.com/hengadev/errsx"
)

// FieldBundle maps a logical field name (e.g. "name_encrypted") to a
// plaintext or ciphertext string. Key presence is field presence: absent
// fields are simply not in the map. A present empty string passes through
// the cipher's empty sentinel unchanged.
type FieldBundle map[string]string

// EncryptFields encrypts every field present in the bundle and returns the
// ciphertext bundle under the same names. Fields absent from the input are
// absent from the output.
//
// Encryption of an individual field only fails if the random source does;
// failures are collected per field name and returned alongside the fields
// that did encrypt.
func EncryptFields(fields FieldBundle, key Key) (FieldBundle, error) {
	encrypted := make(FieldBundle, len(fields))
	var errs errsx.Map

	for name, value := range fields {
		blob, err := Encrypt(value, key)
		if err != nil {
			errs.Set(name, err)
			continue
		}
		encrypted[name] = blob
	}

	return encrypted, errs.AsError()
}

// DecryptFields decrypts every non-empty ciphertext in the bundle. Fields
// are independent: a failure on one never blocks its siblings.
//
// A field that fails to decrypt yields an empty string in the returned
// bundle and an entry in the returned error map keyed by field name. The
// map is the observability channel for corrupted data; callers that ignore
// it cannot tell a failed field from a genuinely empty one. Entries with an
// empty ciphertext are skipped entirely, mirroring the absent-field
// semantics of EncryptFields.
func DecryptFields(fields FieldBundle, key Key) (FieldBundle, errsx.Map) {
	decrypted := make(FieldBundle, len(fields))
	var errs errsx.Map

	for name, blob := range fields {
		if blob == "" {
			continue
		}
		plaintext, err := Decrypt(blob, key)
		if err != nil {
			// One corrupted field must not make the whole record
			// unreadable. Substitute empty and report.
			errs.Set(name, NewFieldDecryptionError(name, err))
			decrypted[name] = ""
			continue
		}
		decrypted[name] = plaintext
	}

	return decrypted, errs
}
