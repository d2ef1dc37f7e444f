package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"quotawin/internal/modules/sync/domain"
	syncout "quotawin/internal/modules/sync/port/out"
)

// S3API is the part of the S3 client the document store needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds a client from the default credential chain, or from
// static keys when both are set. A custom endpoint switches to path-style
// addressing for MinIO and similar servers.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3DocumentStore keeps the document as one object and relies on S3
// conditional writes for versioning.
type S3DocumentStore struct {
	client S3API
	bucket string
	key    string
}

func NewS3DocumentStore(client S3API, bucket, prefix, name string) *S3DocumentStore {
	return &S3DocumentStore{client: client, bucket: bucket, key: path.Join(prefix, name)}
}

func (s *S3DocumentStore) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *S3DocumentStore) Fetch(ctx context.Context) (syncout.VersionedDocument, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) || hasAPICode(err, "NoSuchKey", "NotFound") {
			return syncout.VersionedDocument{}, domain.ErrDocumentNotFound
		}
		return syncout.VersionedDocument{}, fmt.Errorf("get %s: %w", s.Location(), err)
	}
	defer out.Body.Close()
	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return syncout.VersionedDocument{}, fmt.Errorf("read %s: %w", s.Location(), err)
	}
	return syncout.VersionedDocument{Raw: raw, ETag: aws.ToString(out.ETag)}, nil
}

func (s *S3DocumentStore) Put(ctx context.Context, raw []byte, ifMatch string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	}
	if ifMatch == "" {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(ifMatch)
	}
	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		if hasAPICode(err, "PreconditionFailed", "ConditionalRequestConflict") {
			return "", fmt.Errorf("%w: %v", domain.ErrVersionConflict, err)
		}
		return "", fmt.Errorf("put %s: %w", s.Location(), err)
	}
	return aws.ToString(out.ETag), nil
}

func hasAPICode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}
