package formdef

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/formtabs/internal/errors"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Source reads definitions from an S3 bucket. Each form is an object
// under prefix named after the form, with a supported extension.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: creds})
//	src := formdef.NewS3Source(client, "my-bucket", "forms/")
//	layout, err := formdef.Load(ctx, src, "post")
type S3Source struct {
	client  S3API
	bucket  string
	prefix  string
	maxSize int64
}

// DefaultMaxObjectSize caps the size of a definition object.
const DefaultMaxObjectSize = 1 << 20

// NewS3Source returns a source for the objects under prefix in bucket.
func NewS3Source(client S3API, bucket, prefix string) *S3Source {
	return &S3Source{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		maxSize: DefaultMaxObjectSize,
	}
}

// WithMaxObjectSize sets the largest object Load will read.
func (s *S3Source) WithMaxObjectSize(n int64) *S3Source {
	s.maxSize = n
	return s
}

// List implements Source. Only objects directly under prefix count.
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("E040").Wrap(err)
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if rel == "" || strings.Contains(rel, "/") {
				continue
			}
			if name, ok := trimExt(rel); ok && !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

// Load implements Source. Extensions are tried in the order .yaml, .yml,
// .json, .hcl.
func (s *S3Source) Load(ctx context.Context, name string) (Document, error) {
	if !validName(name) {
		return Document{}, errors.New("E001").WithDetail("Invalid form name " + name + ".")
	}
	for _, e := range extensions {
		key := s.prefix + name + e.ext
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var nsk *types.NoSuchKey
			if stderrors.As(err, &nsk) {
				continue
			}
			return Document{}, errors.New("E040").Wrap(err)
		}
		data, err := s.read(out)
		if err != nil {
			return Document{}, errors.New("E040").Wrap(fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err))
		}
		return Document{
			Name:   name,
			Path:   "s3://" + path.Join(s.bucket, key),
			Format: e.format,
			Data:   data,
		}, nil
	}
	return Document{}, errors.New("E001").
		WithDetail("No definition named " + name + " in s3://" + path.Join(s.bucket, s.prefix) + ".")
}

func (s *S3Source) read(out *s3.GetObjectOutput) ([]byte, error) {
	defer out.Body.Close()
	if s.maxSize > 0 && out.ContentLength != nil && *out.ContentLength > s.maxSize {
		return nil, fmt.Errorf("object is %d bytes, limit is %d", *out.ContentLength, s.maxSize)
	}
	r := io.Reader(out.Body)
	if s.maxSize > 0 {
		r = io.LimitReader(out.Body, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("object exceeds %d bytes", s.maxSize)
	}
	return data, nil
}
