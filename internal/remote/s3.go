package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// Config holds connection settings for an S3-compatible backend
// (AWS S3 proper or MinIO with static credentials).
type Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	MaxRetries   int
	UsePathStyle bool
}

// S3Store implements Store over the AWS SDK. Transport-level retries are the
// SDK retryer's job (MaxRetries); the engine itself never retries.
type S3Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
	gate     EntitlementGate
	log      logging.Logger
	now      func() time.Time
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds a client for cfg. A nil gate falls back to DefaultGate,
// a nil log to the no-op logger.
func NewS3Store(ctx context.Context, cfg Config, gate EntitlementGate, log logging.Logger) (*S3Store, error) {
	if gate == nil {
		gate = DefaultGate{}
	}
	if log == nil {
		log = logging.Nop{}
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	if cfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.MaxRetries
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		gate:     gate,
		log:      log,
		now:      time.Now,
	}, nil
}

// List returns every object under prefix, paginating as needed.
func (s *S3Store) List(ctx context.Context, prefix string) ([]models.RemoteObject, error) {
	var result []models.RemoteObject

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, s.translate("list", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			ro := models.RemoteObject{
				Key:  key,
				URL:  s.objectURL(key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				ro.UploadedAt = obj.LastModified.UnixMilli()
			}
			result = append(result, ro)
		}
	}

	s.log.Debug(ctx, "listed remote objects", "prefix", prefix, "count", len(result))
	return result, nil
}

// Put overwrites the object at key with data.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) (models.RemoteObject, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return models.RemoteObject{}, s.translate("put", err)
	}

	return models.RemoteObject{
		Key:        key,
		URL:        s.objectURL(key),
		Size:       int64(len(data)),
		UploadedAt: s.now().UnixMilli(),
	}, nil
}

// Delete removes the object at key. Deleting an absent key succeeds.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.translate("delete", err)
	}
	return nil
}

// Fetch downloads the full object body at key.
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.translate("fetch", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, s.translate("fetch", err)
	}
	return data, nil
}

func (s *S3Store) objectURL(key string) string {
	if s.endpoint == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}

// translate maps an SDK error onto the engine's taxonomy. An HTTP response
// means the backend answered: consult the entitlement gate first, otherwise
// record it as an APIError. No response at all is a NetworkError.
func (s *S3Store) translate(op string, err error) error {
	return translateErr(s.gate, op, err)
}

func translateErr(gate EntitlementGate, op string, err error) error {
	if err == nil {
		return nil
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		status := re.HTTPStatusCode()
		msg := ""
		var ae smithy.APIError
		if errors.As(err, &ae) {
			msg = ae.ErrorMessage()
			if msg == "" {
				msg = ae.ErrorCode()
			}
		}
		if gate.IsForbidden(status, msg) {
			return fmt.Errorf("%s: %w", op, ErrEntitlementRequired)
		}
		return fmt.Errorf("%s: %w", op, &APIError{Status: status, Message: msg})
	}

	return fmt.Errorf("%s: %w", op, &NetworkError{Err: err})
}
