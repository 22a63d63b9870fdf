package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures NewS3Store.
type S3Options struct {
	Bucket string
	Prefix string

	// Region defaults to AWS_REGION, then us-east-1.
	Region string

	// Endpoint overrides the service endpoint, e.g. a MinIO URL.
	Endpoint string

	// PathStyle forces path-style addressing.
	PathStyle bool

	// Client replaces the SDK client. Tests use this.
	Client S3API
}

// S3Store keeps snapshots as objects under a key prefix.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store returns a store for the bucket. Credentials come from the
// standard AWS_* environment variables.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, storeError("open", "s3", errors.New("bucket is required"))
	}
	client := opts.Client
	if client == nil {
		region := opts.Region
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		if region == "" {
			region = "us-east-1"
		}
		o := s3.Options{
			Region:       region,
			UsePathStyle: opts.PathStyle,
			Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
		}
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		client = s3.New(o)
	}
	prefix := opts.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: opts.Bucket, prefix: prefix}, nil
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

func (s *S3Store) key(name string) string { return s.prefix + name + Ext }

// Get downloads a snapshot.
func (s *S3Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, storeError("get", name, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, storeError("get", name, err)
	}
	return data, nil
}

// Put uploads a snapshot.
func (s *S3Store) Put(ctx context.Context, name string, data []byte) error {
	if err := ValidName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return storeError("put", name, err)
	}
	return nil
}

// List pages through the prefix.
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	var names []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storeError("list", s.bucket, err)
		}
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if !strings.HasSuffix(k, Ext) {
				continue
			}
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(k, s.prefix), Ext))
		}
	}
	sort.Strings(names)
	return names, nil
}
