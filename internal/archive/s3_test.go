package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	putCalls []putCall
	objects  map[string][]byte
	getErr   error
}

type putCall struct {
	bucket string
	key    string
	body   []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.putCalls = append(m.putCalls, putCall{bucket: *input.Bucket, key: *input.Key, body: body})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func fixedClock(store *S3Store, at time.Time) {
	store.now = func() time.Time { return at }
}

func TestS3StoreRecordSurvey(t *testing.T) {
	mock := newMockS3()
	store := NewS3Store(mock, "test-bucket", nil)
	at := time.Date(2026, 2, 12, 15, 0, 0, 0, time.UTC)
	fixedClock(store, at)

	err := store.RecordSurvey(context.Background(), SurveyRecord{
		SessionID: "sess-123",
		Language:  "English",
		Answers:   map[int]string{1: "Yes", 9: "call 330-333-2654"},
	})
	require.NoError(t, err)

	require.Len(t, mock.putCalls, 2)
	assert.Equal(t, "test-bucket", mock.putCalls[0].bucket)
	assert.Equal(t, "surveys/v1/by-date/2026/02/12/sess-123.json", mock.putCalls[0].key)

	var decoded SurveyRecord
	require.NoError(t, json.Unmarshal(mock.putCalls[0].body, &decoded))
	assert.Equal(t, "Yes", decoded.Answers[1])
	assert.Equal(t, "call[PHONE]", decoded.Answers[9])

	assert.Equal(t, "manifests/v1/2026-02.jsonl", mock.putCalls[1].key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(mock.putCalls[1].body), &entry))
	assert.Equal(t, "survey", entry.Kind)
	assert.Equal(t, "sess-123", entry.SessionID)
}

func TestS3StoreManifestAppends(t *testing.T) {
	mock := newMockS3()
	store := NewS3Store(mock, "test-bucket", nil)

	require.NoError(t, store.RecordBooking(context.Background(), BookingRecord{SessionID: "a", Succeeded: true}))
	require.NoError(t, store.RecordBooking(context.Background(), BookingRecord{SessionID: "b"}))

	lastPut := mock.putCalls[len(mock.putCalls)-1]
	lines := bytes.Split(bytes.TrimSpace(lastPut.body), []byte("\n"))
	require.Len(t, lines, 2)

	var first ManifestEntry
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NotNil(t, first.Succeeded)
	assert.True(t, *first.Succeeded)
}

func TestS3StoreManifestReadFailure(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := NewS3Store(mock, "test-bucket", nil)

	err := store.AppendManifest(context.Background(), ManifestEntry{SessionID: "x"})
	assert.Error(t, err)

	// The record itself still lands even if the manifest cannot be updated.
	require.NoError(t, store.RecordBooking(context.Background(), BookingRecord{SessionID: "x"}))
	assert.Len(t, mock.putCalls, 1)
}

func TestS3StoreDisabled(t *testing.T) {
	store := NewS3Store(nil, "", nil)
	assert.False(t, store.Enabled())
	assert.NoError(t, store.RecordSurvey(context.Background(), SurveyRecord{}))
	assert.NoError(t, store.RecordBooking(context.Background(), BookingRecord{}))
}
