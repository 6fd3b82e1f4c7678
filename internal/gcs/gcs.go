// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs opens experiment logs from local files or Google Cloud
// Storage objects named gs://bucket/object.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

const scheme = "gs://"

// ParsePath splits a gs://bucket/object path. ok is false if path is
// not a GCS path.
func ParsePath(path string) (bucket, object string, ok bool, err error) {
	if !strings.HasPrefix(path, scheme) {
		return "", "", false, nil
	}
	rest := path[len(scheme):]
	i := strings.Index(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", true, fmt.Errorf("malformed GCS path %q: want gs://bucket/object", path)
	}
	return rest[:i], rest[i+1:], true, nil
}

// An Opener opens local paths with os.Open and GCS paths with a
// storage client. The client is created on first use, so runs that
// only read local files never need credentials.
type Opener struct {
	ctx context.Context

	mu     sync.Mutex
	client *storage.Client
}

// NewOpener returns an Opener whose GCS reads use ctx.
func NewOpener(ctx context.Context) *Opener {
	return &Opener{ctx: ctx}
}

// Open opens path for reading.
func (o *Opener) Open(path string) (io.ReadCloser, error) {
	bucket, object, isGCS, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if !isGCS {
		return os.Open(path)
	}
	client, err := o.storageClient()
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(o.ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return r, nil
}

func (o *Opener) storageClient() (*storage.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client == nil {
		client, err := storage.NewClient(o.ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		o.client = client
	}
	return o.client, nil
}

// Close releases the storage client, if one was created.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client == nil {
		return nil
	}
	err := o.client.Close()
	o.client = nil
	return err
}
