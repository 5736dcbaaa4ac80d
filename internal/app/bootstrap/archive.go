package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/survey-assistant/internal/archive"
	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// Archive bundles the configured record sinks. PG is nil without
// DATABASE_URL; Pool must be closed by the caller.
type Archive struct {
	Recorder archive.Recorder
	PG       *archive.PGStore
	Pool     *pgxpool.Pool
}

// BuildArchive wires Postgres and S3 recording of completed surveys and
// booking attempts. Either sink may be absent.
func BuildArchive(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (*Archive, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	out := &Archive{}
	var sinks archive.MultiRecorder

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		out.Pool = pool
		out.PG = archive.NewPGStore(pool)
		sinks = append(sinks, out.PG)
		logger.Info("postgres archive enabled")
	}

	if bucket := strings.TrimSpace(cfg.ArchiveS3Bucket); bucket != "" {
		if awsCfg == nil {
			logger.Warn("ARCHIVE_S3_BUCKET set but aws config unavailable; s3 archive disabled")
		} else {
			client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
				// LocalStack serves buckets by path, not virtual host.
				o.UsePathStyle = cfg.AWSEndpointOverride != ""
			})
			sinks = append(sinks, archive.NewS3Store(client, bucket, logger))
			logger.Info("s3 archive enabled", "bucket", bucket)
		}
	}

	switch len(sinks) {
	case 0:
		out.Recorder = archive.NoopRecorder{}
	case 1:
		out.Recorder = sinks[0]
	default:
		out.Recorder = sinks
	}
	return out, nil
}

// Close releases the Postgres pool.
func (a *Archive) Close() {
	if a != nil && a.Pool != nil {
		a.Pool.Close()
	}
}
