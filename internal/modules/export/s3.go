package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
)

// S3Config configures the optional S3 mirror of the export artifact.
type S3Config struct {
	Region          string
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// S3Committer uploads the snapshot artifact to an S3 bucket.
type S3Committer struct {
	client *s3.Client
	bucket string
	key    string
	log    *zap.Logger
}

// NewS3Committer creates an S3 committer from static credentials.
func NewS3Committer(cfg S3Config, log *zap.Logger) *S3Committer {
	if log == nil {
		log = zap.NewNop()
	}
	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	key := cfg.Key
	if key == "" {
		key = Filename
	}
	return &S3Committer{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		key:    key,
		log:    log,
	}
}

func (c *S3Committer) Commit(ctx context.Context, snap models.Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	c.log.Info("snapshot mirrored", zap.String("bucket", c.bucket), zap.String("key", c.key))
	return nil
}
