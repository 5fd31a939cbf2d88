package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/A7maad1/LSA/pkg/restclient"
)

const objectPrefix = "/storage/v1/object/"

// RemoteStore talks to the backend's storage API through the request client.
type RemoteStore struct {
	client  *restclient.Client
	timeout time.Duration
}

// NewRemoteStore constructs a remote bucket store. timeout bounds each upload.
func NewRemoteStore(client *restclient.Client, timeout time.Duration) *RemoteStore {
	return &RemoteStore{client: client, timeout: timeout}
}

// Put uploads the object body.
func (s *RemoteStore) Put(ctx context.Context, bucket, name, contentType string, body io.Reader, _ int64) error {
	_, err := s.client.Do(ctx, restclient.Request{
		Method:      http.MethodPost,
		Path:        objectPath(bucket, name),
		Raw:         body,
		ContentType: contentType,
		Timeout:     s.timeout,
		Headers: map[string]string{
			"Cache-Control": "max-age=3600",
			"x-upsert":      "false",
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}
	return nil
}

// Remove deletes the object.
func (s *RemoteStore) Remove(ctx context.Context, bucket, name string) error {
	if _, err := s.client.Do(ctx, restclient.Request{Method: http.MethodDelete, Path: objectPath(bucket, name)}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, name, err)
	}
	return nil
}

// PublicURL builds the public object URL without a network call.
func (s *RemoteStore) PublicURL(bucket, name string) string {
	return s.client.BaseURL() + objectPrefix + "public/" + url.PathEscape(bucket) + "/" + escapeName(name)
}

func objectPath(bucket, name string) string {
	return objectPrefix + url.PathEscape(bucket) + "/" + escapeName(name)
}

func escapeName(name string) string {
	parts := strings.Split(name, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
