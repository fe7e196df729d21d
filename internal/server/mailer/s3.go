package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/google/uuid"
)

// seams for tests
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3OutboxMailer writes each message as outbox/<y>/<m>/<d>/<uuid>.json.
type S3OutboxMailer struct {
	client objectPutter
	bucket string
}

// NewS3OutboxMailer builds an S3 (or MinIO) client from the server config.
func NewS3OutboxMailer(ctx context.Context, c *sc.Config) (*S3OutboxMailer, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3OutboxMailer{client: client, bucket: c.S3Bucket}, nil
}

func (m *S3OutboxMailer) SendVerificationEmail(ctx context.Context, user *models.User, token string) error {
	return m.put(ctx, verificationMessage(user, token))
}

func (m *S3OutboxMailer) SendResetEmail(ctx context.Context, email, code string) error {
	return m.put(ctx, resetMessage(email, code))
}

func outboxKey(msg Message) string {
	d := msg.CreatedAt
	return fmt.Sprintf("outbox/%d/%d/%d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (m *S3OutboxMailer) put(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(outboxKey(msg)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put outbox object: %w", err)
	}
	return nil
}
