// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/apex/log"

	"github.com/staranto/idmapgo/internal/aws"
	"github.com/staranto/idmapgo/internal/backend/local"
	"github.com/staranto/idmapgo/internal/backend/s3"
)

// ErrNotExist reports a table the backend has never stored. It is
// fs.ErrNotExist so implementations can surface plain os errors.
var ErrNotExist = fs.ErrNotExist

// Backend reads and writes whole tables by name.
type Backend interface {
	// Read returns the stored bytes of name, or an error matching
	// ErrNotExist when there are none.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the stored bytes of name.
	Write(ctx context.Context, name string, data []byte) error
	String() string
}

// Config selects and parameterizes a backend.
type Config struct {
	// Type is "local" (the default) or "s3".
	Type string

	// Dir is the local table directory. Empty means the cache directory.
	Dir string

	Bucket    string
	Prefix    string
	Region    string
	Profile   string
	Endpoint  string
	PathStyle bool
}

// NewBackend builds the backend described by cfg.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	log.Debugf("NewBackend: %+v", cfg)

	switch cfg.Type {
	case "", "local":
		var opts []local.Option
		if cfg.Dir != "" {
			opts = append(opts, local.WithDir(cfg.Dir))
		}
		return local.NewBackendLocal(opts...)
	case "s3":
		awsCfg, err := aws.LoadAWSConfig(ctx,
			aws.WithProfile(cfg.Profile),
			aws.WithRegion(cfg.Region),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := aws.NewS3(awsCfg, aws.WithS3Endpoint(cfg.Endpoint, cfg.PathStyle))
		return s3.NewBackendS3(client, cfg.Bucket, cfg.Prefix)
	}

	return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
}
