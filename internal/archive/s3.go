package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store writes PII-scrubbed records as JSON objects partitioned by date,
// plus a monthly JSONL manifest. An empty bucket disables it.
type S3Store struct {
	bucket string
	client S3API
	logger *logging.Logger
	now    func() time.Time
}

func NewS3Store(client S3API, bucket string, logger *logging.Logger) *S3Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{bucket: bucket, client: client, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

var _ Recorder = (*S3Store)(nil)

func (s *S3Store) RecordSurvey(ctx context.Context, rec SurveyRecord) error {
	if !s.Enabled() {
		return nil
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = s.now()
	}
	rec.Answers = ScrubAnswers(rec.Answers)

	key := objectKey("surveys", rec.CompletedAt, rec.SessionID)
	if err := s.putJSON(ctx, key, rec); err != nil {
		return err
	}
	s.appendManifest(ctx, ManifestEntry{Kind: "survey", SessionID: rec.SessionID, S3Key: key, ArchivedAt: rec.CompletedAt.Format(time.RFC3339)})
	return nil
}

func (s *S3Store) RecordBooking(ctx context.Context, rec BookingRecord) error {
	if !s.Enabled() {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	key := objectKey("bookings", rec.CreatedAt, rec.SessionID)
	if err := s.putJSON(ctx, key, rec); err != nil {
		return err
	}
	succeeded := rec.Succeeded
	s.appendManifest(ctx, ManifestEntry{Kind: "booking", SessionID: rec.SessionID, S3Key: key, ArchivedAt: rec.CreatedAt.Format(time.RFC3339), Succeeded: &succeeded})
	return nil
}

func objectKey(kind string, at time.Time, sessionID string) string {
	return fmt.Sprintf("%s/v1/by-date/%d/%02d/%02d/%s.json", kind, at.Year(), at.Month(), at.Day(), sessionID)
}

func (s *S3Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	s.logger.Info("archived record to S3", "s3_key", key)
	return nil
}

// appendManifest is best effort; the record itself is already stored.
func (s *S3Store) appendManifest(ctx context.Context, entry ManifestEntry) {
	if err := s.AppendManifest(ctx, entry); err != nil {
		s.logger.Warn("failed to append manifest", "error", err, "session_id", entry.SessionID)
	}
}

// AppendManifest appends a JSONL line to the monthly manifest. S3 has no
// append, so this is a read-modify-write.
func (s *S3Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	now := s.now()
	key := fmt.Sprintf("manifests/v1/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		existing, err = io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	case isNotFound(err):
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	}); err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}
