package main

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeS3 answers bucket calls locally and falls through to a real client,
// which can presign without network access.
type fakeS3 struct {
	s3iface.S3API
	buckets []string
	created []string
}

func (f *fakeS3) ListBuckets(*s3.ListBucketsInput) (*s3.ListBucketsOutput, error) {
	out := &s3.ListBucketsOutput{}
	for _, name := range f.buckets {
		out.Buckets = append(out.Buckets, &s3.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

func (f *fakeS3) CreateBucket(in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.StringValue(in.Bucket))
	f.buckets = append(f.buckets, aws.StringValue(in.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) WaitUntilBucketExists(*s3.HeadBucketInput) error {
	return nil
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	key  string
	body string
	err  error
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.key = aws.StringValue(in.Key)
	f.body = string(b)
	return &s3manager.UploadOutput{Location: "s3://" + aws.StringValue(in.Bucket) + "/" + f.key}, nil
}

func newTestPublisher(t *testing.T, buckets ...string) (*publisher, *fakeS3, *fakeUploader) {
	t.Helper()
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials("AKID", "SECRET", ""),
	})
	require.NoError(t, err)

	svc := &fakeS3{S3API: s3.New(sess), buckets: buckets}
	up := &fakeUploader{}
	return &publisher{svc: svc, uploader: up, logger: zap.NewNop()}, svc, up
}

func TestPublish(t *testing.T) {
	pub, svc, up := newTestPublisher(t)

	link, err := pub.publish("fits", "2026-03-01 sample.png", func(w io.Writer) error {
		_, err := io.WriteString(w, "plot-bytes")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"fits"}, svc.created)
	assert.Equal(t, "2026-03-01 sample.png", up.key)
	assert.Equal(t, "plot-bytes", up.body)
	assert.Contains(t, link, "fits")
	assert.Contains(t, link, "X-Amz-Signature=")
}

func TestPublishExistingBucket(t *testing.T) {
	pub, svc, _ := newTestPublisher(t, "other", "fits")
	_, err := pub.publish("fits", "k.png", func(w io.Writer) error { return nil })
	require.NoError(t, err)
	assert.Empty(t, svc.created)
}

func TestPublishRenderError(t *testing.T) {
	pub, _, _ := newTestPublisher(t, "fits")
	_, err := pub.publish("fits", "k.png", func(w io.Writer) error {
		return errors.New("render failed")
	})
	assert.ErrorContains(t, err, "render failed")
}

func TestPublishUploadError(t *testing.T) {
	pub, _, up := newTestPublisher(t, "fits")
	up.err = errors.New("access denied")
	_, err := pub.publish("fits", "k.png", func(w io.Writer) error {
		_, err := io.WriteString(w, strings.Repeat("x", 1<<16))
		return err
	})
	assert.ErrorContains(t, err, "access denied")
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01 sample.svg", objectKey(now, "sample", "svg"))
}
