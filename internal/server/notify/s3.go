package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectPutter is the part of the S3 client used by the mail drop.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the mail drop bucket and credentials.
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// S3MailDrop writes each email as a JSON object into a bucket, where an
// external relay picks it up.
type S3MailDrop struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

// NewS3MailDrop builds an S3 client with static credentials, suitable for
// MinIO as well as AWS.
func NewS3MailDrop(ctx context.Context, opts S3Options) (*S3MailDrop, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3MailDrop{client: client, bucket: opts.Bucket, now: time.Now}, nil
}

// MailDropKey returns the object key for an email of the given category.
func MailDropKey(category string, t time.Time) string {
	return fmt.Sprintf("outbox/%s/%d/%02d/%02d/%v.json", category, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (d *S3MailDrop) Send(ctx context.Context, email *Email) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(MailDropKey(email.Category, d.now())),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put email object: %w", err)
	}
	return nil
}
