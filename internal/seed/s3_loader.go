package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"campaign-engine/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Loader implements Loader for reading campaign fixtures from AWS S3.
type s3Loader struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates a new S3-based fixture loader.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "seed-s3-loader").Logger()

	// Load AWS configuration
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 fixture loader initialised")

	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Load fetches the fixture object and parses the campaign definitions.
func (l *s3Loader) Load(ctx context.Context, key string) ([]model.Campaign, error) {
	l.logger.Info().Str("bucket", l.bucket).Str("key", key).Msg("loading campaign fixture from S3")

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to fetch fixture object")
		return nil, fmt.Errorf("failed to fetch fixture object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture object %s: %w", key, err)
	}

	var campaigns []model.Campaign
	if err := json.Unmarshal(data, &campaigns); err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to parse fixture object")
		return nil, fmt.Errorf("failed to parse fixture object %s: %w", key, err)
	}

	l.logger.Info().
		Str("key", key).
		Int("campaigns", len(campaigns)).
		Msg("campaign fixture loaded from S3")

	return campaigns, nil
}
