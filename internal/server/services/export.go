package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/config"
	"github.com/dmitrijs2005/gophtodo/internal/server/events"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtodo/internal/server/wire"
	"github.com/google/uuid"
)

// ExportURLExpiry is the lifetime of a presigned snapshot URL.
const ExportURLExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportService writes JSON snapshots of an owner's list to S3-compatible
// object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      events.Publisher
	logger      logging.Logger
	config      *config.Config
	now         Clock
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, l logging.Logger, cfg *config.Config) *ExportService {
	return &ExportService{
		db:          db,
		repomanager: m,
		events:      p,
		logger:      l.With("module", "export_service"),
		config:      cfg,
		now:         time.Now,
	}
}

// Enabled reports whether a bucket is configured.
func (s *ExportService) Enabled() bool {
	return s.config.S3Bucket != ""
}

func exportKey(ownerID string, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("exports/%s/%04d/%02d/%02d/%s.json", ownerID, at.Year(), at.Month(), at.Day(), id)
}

func (s *ExportService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Export uploads the owner's current list and returns a presigned GET URL
// for it. ErrorNotConfigured is returned when no bucket is set.
func (s *ExportService) Export(ctx context.Context, ownerID string) (string, error) {
	if !s.Enabled() {
		return "", common.ErrorNotConfigured
	}

	list, err := s.repomanager.Tasks(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return "", storeError(ctx, s.logger, "export", err)
	}

	body, err := json.Marshal(wire.Tasks(list))
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	now := s.now().UTC()
	bucket := s.config.S3Bucket
	key := exportKey(ownerID, now, uuid.New())

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ExportURLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign snapshot: %w", err)
	}

	publish(ctx, s.events, s.logger, events.Event{
		Type: events.SnapshotExport, OwnerID: ownerID, Attrs: map[string]any{"key": key, "count": len(list)}, At: now,
	})
	s.logger.Info(ctx, "snapshot exported", "owner", ownerID, "key", key)
	return req.URL, nil
}
