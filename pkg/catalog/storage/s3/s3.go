// Package s3 implements the catalog object-store interfaces on top of an
// S3-compatible service.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/helloauslan/auslan-server/pkg/catalog"
)

// videoContentType is the content type every recognized object should carry.
const videoContentType = "video/mp4"

// Config options for the S3 backend.
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
}

// Backend is the S3 implementation of catalog.MediaStore.
type Backend struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	config        Config
}

// New creates a new S3 backend.
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Default credential chain (env, shared config, instance role).
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Backend{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        config.Bucket,
		region:        config.Region,
		config:        config,
	}, nil
}

// ListVideos pages through the bucket under prefix and invokes fn for every
// object whose key ends in catalog.MediaExtension. Pagination is sequential
// and only one page is held in memory at a time.
func (b *Backend) ListVideos(ctx context.Context, prefix string, fn func(catalog.ObjectInfo) error) error {
	return listVideoObjects(ctx, b.client, b.bucket, prefix, fn)
}

// listVideoObjects is split out so the pagination and filtering logic can be
// exercised against a fake ListObjectsV2 client.
func listVideoObjects(ctx context.Context, client s3.ListObjectsV2APIClient, bucket, prefix string, fn func(catalog.ObjectInfo) error) error {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return listError(bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(strings.ToLower(key), catalog.MediaExtension) {
				continue
			}
			info := catalog.ObjectInfo{
				Key:          key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
			}
			if obj.ETag != nil {
				etag := strings.Trim(*obj.ETag, `"`)
				info.ETag = &etag
			}
			if err := fn(info); err != nil {
				return err
			}
		}
	}
	return nil
}

func listError(bucket string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		err = fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return &catalog.StorageError{Bucket: bucket, Op: "list", Err: err}
}

// PublicURL builds the deterministic public address for a key. Works for
// public/allow-listed buckets; this is display plumbing, not a signed URL.
func (b *Backend) PublicURL(key string) string {
	if b.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(b.config.Endpoint, "/"), b.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key)
}

// PresignGetURL returns a time-limited signed URL for reading a key.
func (b *Backend) PresignGetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	result, err := b.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", &catalog.StorageError{Bucket: b.bucket, Key: key, Op: "presign", Err: err}
	}
	return result.URL, nil
}

// headCopyAPI is the slice of the S3 client used by the content-type sweep.
type headCopyAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// FixContentTypes sweeps the bucket under prefix and rewrites the content
// type of any video object not already served as video/mp4, via an in-place
// copy with replaced metadata. Per-object failures are collected in the
// summary; only a listing failure aborts the sweep.
func (b *Backend) FixContentTypes(ctx context.Context, prefix string) (*catalog.ContentTypeFixSummary, error) {
	return fixContentTypes(ctx, b.client, b.bucket, prefix, func(fn func(catalog.ObjectInfo) error) error {
		return b.ListVideos(ctx, prefix, fn)
	})
}

func fixContentTypes(ctx context.Context, api headCopyAPI, bucket, prefix string, list func(func(catalog.ObjectInfo) error) error) (*catalog.ContentTypeFixSummary, error) {
	summary := &catalog.ContentTypeFixSummary{
		Bucket: bucket,
		Prefix: prefix,
		Errors: []string{},
	}

	listErr := list(func(obj catalog.ObjectInfo) error {
		summary.Checked++

		head, err := api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(obj.Key),
		})
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", obj.Key, err))
			return nil
		}
		if aws.ToString(head.ContentType) == videoContentType {
			return nil
		}

		_, err = api.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:            aws.String(bucket),
			Key:               aws.String(obj.Key),
			CopySource:        aws.String(fmt.Sprintf("%s/%s", bucket, url.PathEscape(obj.Key))),
			ContentType:       aws.String(videoContentType),
			Metadata:          head.Metadata,
			MetadataDirective: types.MetadataDirectiveReplace,
		})
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", obj.Key, err))
			return nil
		}
		summary.Fixed++
		return nil
	})
	if listErr != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("S3 error: %v", listErr))
	}
	return summary, nil
}
