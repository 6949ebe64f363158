package generator

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutAPI is the subset of the S3 client used by S3Store.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores objects in S3 buckets.
type S3Store struct {
	client S3PutAPI
}

func NewS3Store(client S3PutAPI) *S3Store {
	return &S3Store{client: client}
}

// LoadS3Store creates an S3Store from the default AWS config chain.
func LoadS3Store(ctx context.Context) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewS3Store(s3.NewFromConfig(awsCfg)), nil
}

func (s *S3Store) PutObject(ctx context.Context, obj Object) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(obj.Bucket),
		Key:         aws.String(obj.Key),
		ContentType: aws.String(obj.ContentType),
		Body:        bytes.NewReader(obj.Body),
	})
	if err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %w", ErrStorageWrite, obj.Bucket, obj.Key, err)
	}

	return nil
}
