// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Client is the slice of the S3 API the backend needs.
type Client interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackendS3 keeps each table as an object under Prefix in Bucket.
type BackendS3 struct {
	client Client
	Bucket string
	Prefix string
}

// NewBackendS3 returns a backend over client. Bucket is required.
func NewBackendS3(client Client, bucket, prefix string) (*BackendS3, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	log.Debugf("s3 backend in s3://%s/%s", bucket, prefix)
	return &BackendS3{client: client, Bucket: bucket, Prefix: prefix}, nil
}

func (be *BackendS3) Read(ctx context.Context, name string) ([]byte, error) {
	key := be.key(name)
	out, err := be.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awsv2.String(be.Bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", be.Bucket, key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return data, nil
}

func (be *BackendS3) Write(ctx context.Context, name string, data []byte) error {
	_, err := be.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awsv2.String(be.Bucket),
		Key:           awsv2.String(be.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: awsv2.Int64(int64(len(data))),
		ContentType:   awsv2.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to put S3 object: %w", err)
	}
	return nil
}

func (be *BackendS3) String() string {
	return "s3://" + path.Join(be.Bucket, be.Prefix)
}

func (be *BackendS3) key(name string) string {
	if be.Prefix == "" {
		return name
	}
	return path.Join(be.Prefix, name)
}

// isNotFound recognizes the shapes a missing object comes back in: a typed
// NoSuchKey, an API error code, or a bare 404 from a HEAD-like response with
// no body.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	return false
}
