package export

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// S3Store keeps documents in an S3 (or S3-compatible) bucket. Link sharing
// uploads the object with a public-read ACL so the object URL never expires.
type S3Store struct {
	client *awss3.Client
	bucket string
}

// NewS3Store creates an S3 client from cfg. Static credentials are used when
// both keys are set, the default AWS chain otherwise.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: awss3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, doc Document) (domain.DocumentRef, error) {
	input := &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(doc.Key),
		Body:          doc.Body,
		ContentType:   aws.String(doc.ContentType),
		ContentLength: aws.Int64(doc.Size),
	}
	if doc.Sharing == config.SharingLink {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return domain.DocumentRef{}, fmt.Errorf("s3 upload %s: %w", doc.Key, err)
	}

	return domain.DocumentRef{ID: doc.Key, URL: s.objectURL(doc.Key)}, nil
}

func (s *S3Store) objectURL(key string) string {
	opts := s.client.Options()
	endpoint := fmt.Sprintf("https://s3.%s.amazonaws.com", opts.Region)
	if opts.BaseEndpoint != nil && *opts.BaseEndpoint != "" {
		endpoint = *opts.BaseEndpoint
	}
	return fmt.Sprintf("%s/%s/%s", endpoint, s.bucket, (&url.URL{Path: key}).EscapedPath())
}
