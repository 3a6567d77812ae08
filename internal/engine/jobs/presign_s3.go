package jobs

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config selects the bucket that receives uploaded video files.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible stores (MinIO, R2)
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// S3Presigner hands out pre-signed PUT URLs for S3 objects.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	prefix string
}

// NewS3Presigner loads AWS credentials (explicit keys or the default chain)
// and prepares a presign client. Signing is offline; no request is sent.
func NewS3Presigner(ctx context.Context, cfg S3Config) (*S3Presigner, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 presigner: bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string, size int64, expiresAt time.Time) (StorageHandoff, error) {
	if p.prefix != "" {
		key = p.prefix + "/" + key
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	req, err := p.client.PresignPutObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return StorageHandoff{}, err
	}

	headers := map[string]string{}
	for k, v := range req.SignedHeader {
		if strings.EqualFold(k, "Host") {
			continue
		}
		headers[http.CanonicalHeaderKey(k)] = strings.Join(v, ",")
	}
	return StorageHandoff{Method: req.Method, URL: req.URL, Headers: headers, ExpiresAt: expiresAt}, nil
}
