package backup

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/records"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/store"
)

const testServerSecret = "test-secret"

func newTestExporter(t *testing.T) (*Exporter, *records.Service, store.User) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	resolver, err := encryption.NewKeyResolver(st, encryption.Config{ServerSecret: testServerSecret})
	require.NoError(t, err)

	svc := records.NewService(st, resolver)
	user, err := svc.ProvisionUser(ctx, "dietist@example.be", "An De Smet", "Praktijk De Smet")
	require.NoError(t, err)

	return NewExporter(st, resolver), svc, user
}

func TestExportRoundTrip(t *testing.T) {
	exporter, svc, user := newTestExporter(t)
	ctx := context.Background()

	client, err := svc.CreateClient(ctx, records.Client{
		UserID: user.ID,
		Name:   "Jan Janssens",
		Notes:  "Sensitive medical notes.",
	})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	_, err = svc.CreateAppointment(ctx, records.Appointment{
		UserID:    user.ID,
		ClientIDs: []string{client.ID},
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, user.ID, &buf))
	require.NotZero(t, buf.Len())

	key := encryption.DeriveServerKey(user.ID, user.EncryptionKeySalt, testServerSecret)
	snap, err := DecryptSnapshot(bytes.NewReader(buf.Bytes()), key)
	require.NoError(t, err)

	assert.Equal(t, user.ID, snap.UserID)
	require.Len(t, snap.Clients, 1)
	assert.Equal(t, client.ID, snap.Clients[0].ID)
	require.Len(t, snap.Appointments, 1)

	// Rows travel as stored: ciphertext, never plaintext.
	assert.NotContains(t, snap.Clients[0].NotesEncrypted.String, "Sensitive")
}

func TestExportLargePayloadSpansChunks(t *testing.T) {
	exporter, svc, user := newTestExporter(t)
	ctx := context.Background()

	// Enough records that the serialized snapshot exceeds one chunk.
	for i := 0; i < 20; i++ {
		_, err := svc.CreateClient(ctx, records.Client{
			UserID: user.ID,
			Name:   "Client Name",
			Notes:  strings.Repeat("dieetadvies ", 50),
		})
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, user.ID, &buf))
	require.Greater(t, buf.Len(), chunkSize)

	key := encryption.DeriveServerKey(user.ID, user.EncryptionKeySalt, testServerSecret)
	snap, err := DecryptSnapshot(bytes.NewReader(buf.Bytes()), key)
	require.NoError(t, err)
	assert.Len(t, snap.Clients, 20)
}

func TestDecryptSnapshotWrongKey(t *testing.T) {
	exporter, _, user := newTestExporter(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, user.ID, &buf))

	var wrongKey encryption.Key
	wrongKey[0] = 0xFF
	_, err := DecryptSnapshot(bytes.NewReader(buf.Bytes()), wrongKey)
	require.Error(t, err)
	assert.True(t, encryption.IsDecryptionError(err))
}

func TestDecryptSnapshotTruncatedStream(t *testing.T) {
	exporter, _, user := newTestExporter(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, user.ID, &buf))

	key := encryption.DeriveServerKey(user.ID, user.EncryptionKeySalt, testServerSecret)
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err := DecryptSnapshot(bytes.NewReader(truncated), key)
	require.Error(t, err)
	assert.True(t, encryption.IsDecryptionError(err))
}

func TestExportUnknownUser(t *testing.T) {
	exporter, _, _ := newTestExporter(t)

	var buf bytes.Buffer
	err := exporter.Export(context.Background(), "never-provisioned", &buf)
	require.Error(t, err)
	assert.True(t, encryption.IsSaltNotFound(err))
}

type fakeUploader struct {
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakeUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.bucket = aws.ToString(params.Bucket)
	f.key = aws.ToString(params.Key)
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestExportToS3(t *testing.T) {
	exporter, svc, user := newTestExporter(t)
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, records.Client{UserID: user.ID, Name: "Jan Janssens"})
	require.NoError(t, err)

	uploader := &fakeUploader{}
	objectKey, err := exporter.ExportToS3(ctx, uploader, "practice-backups", user.ID)
	require.NoError(t, err)

	assert.Equal(t, "practice-backups", uploader.bucket)
	assert.Equal(t, objectKey, uploader.key)
	assert.Contains(t, objectKey, "backups/"+user.ID+"/")
	assert.True(t, strings.HasSuffix(objectKey, ".snap"))

	key := encryption.DeriveServerKey(user.ID, user.EncryptionKeySalt, testServerSecret)
	snap, err := DecryptSnapshot(bytes.NewReader(uploader.body), key)
	require.NoError(t, err)
	assert.Len(t, snap.Clients, 1)
}
