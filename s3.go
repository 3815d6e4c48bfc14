package main

import (
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"
)

const linkExpiry = 1 * time.Hour

// publisher uploads rendered plots and hands out presigned links to them.
type publisher struct {
	svc      s3iface.S3API
	uploader s3manageriface.UploaderAPI
	logger   *zap.Logger
}

func newPublisher(region string, logger *zap.Logger) *publisher {
	sess := session.Must(session.NewSession(&aws.Config{Region: aws.String(region)}))
	return &publisher{
		svc:      s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		logger:   logger,
	}
}

func (pub *publisher) checkBucketExists(name string) (bool, error) {
	list, err := pub.svc.ListBuckets(&s3.ListBucketsInput{})
	if err != nil {
		return false, fmt.Errorf("could not list buckets: %v", err)
	}

	for _, bucket := range list.Buckets {
		if aws.StringValue(bucket.Name) == name {
			return true, nil
		}
	}

	return false, nil
}

func (pub *publisher) createBucket(name string) error {
	exists, err := pub.checkBucketExists(name)
	if err != nil || exists {
		return err
	}

	_, err = pub.svc.CreateBucket(&s3.CreateBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("unable to create bucket %q: %v", name, err)
	}

	pub.logger.Info("waiting for bucket to be created", zap.String("bucket", name))
	err = pub.svc.WaitUntilBucketExists(&s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("error occurred while waiting for bucket %q to be created: %v", name, err)
	}

	pub.logger.Info("bucket created", zap.String("bucket", name))
	return nil
}

// objectKey names the plot after the day it was produced.
func objectKey(now time.Time, name, format string) string {
	return now.Format("2006-01-02") + " " + name + "." + format
}

// publish streams the output of render into the bucket under key and returns
// a presigned link to it.
func (pub *publisher) publish(bucket, key string, render func(io.Writer) error) (string, error) {
	if err := pub.createBucket(bucket); err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(render(pw))
	}()

	if err := pub.pipeToS3(pr, key, bucket); err != nil {
		pr.CloseWithError(err)
		return "", err
	}

	return pub.getPresignedLink(key, bucket)
}

func (pub *publisher) pipeToS3(pipe io.Reader, location, bucketName string) error {
	_, err := pub.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(location),
		Body:   pipe,
	})
	if err != nil {
		return fmt.Errorf("error occurred while piping %q to s3: %v", location, err)
	}
	return nil
}

func (pub *publisher) getPresignedLink(location, bucketName string) (string, error) {
	req, _ := pub.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(location),
	})
	urlStr, err := req.Presign(linkExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %v", err)
	}

	return urlStr, nil
}
