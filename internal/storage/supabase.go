package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseStorage handles file uploads to Supabase Storage
type SupabaseStorage struct {
	projectURL string
	bucketName string
	client     *resty.Client
	now        func() time.Time
}

// NewSupabaseStorage creates a new Supabase Storage client
func NewSupabaseStorage(projectURL, apiKey, bucketName string) *SupabaseStorage {
	projectURL = strings.TrimRight(projectURL, "/")

	client := resty.New().
		SetBaseURL(projectURL+"/storage/v1").
		SetAuthToken(apiKey).
		SetHeader("apikey", apiKey)

	return &SupabaseStorage{
		projectURL: projectURL,
		bucketName: bucketName,
		client:     client,
		now:        time.Now,
	}
}

// Upload stores the file and returns its public URL.
func (s *SupabaseStorage) Upload(ctx context.Context, file *File) (string, error) {
	if file == nil {
		return "", nil
	}

	key := ObjectKey(file, s.now())
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(file.Data).
		Post(fmt.Sprintf("/object/%s/%s", s.bucketName, key))
	if err != nil {
		return "", uploadError(err, file)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", uploadError(fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()), file)
	}

	return s.PublicURL(key), nil
}

// Delete removes a file from Supabase Storage. A 404 means the object is
// already gone and is treated as success.
func (s *SupabaseStorage) Delete(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}

	prefix := s.PublicURL("")
	if !strings.HasPrefix(rawURL, prefix) {
		return deleteError(fmt.Errorf("url is not served by bucket %s", s.bucketName), rawURL)
	}

	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, prefix))
	if err != nil {
		return deleteError(err, rawURL)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/object/%s/%s", s.bucketName, key))
	if err != nil {
		return deleteError(err, rawURL)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return deleteError(fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()), rawURL)
	}
}

// PublicURL returns the public URL for a file
func (s *SupabaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.projectURL, s.bucketName, key)
}
