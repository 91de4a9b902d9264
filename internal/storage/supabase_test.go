package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseUploadAndDelete(t *testing.T) {
	var uploadedPath, deletedPath, auth string
	var body []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.Method {
		case http.MethodPost:
			uploadedPath = r.URL.Path
			body, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			deletedPath = r.URL.Path
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := NewSupabaseStorage(srv.URL, "service-key", "uploads")

	url, err := store.Upload(context.Background(), &File{Field: "image", Filename: "blog.png", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-key", auth)
	assert.Equal(t, []byte("png"), body)
	assert.True(t, strings.HasPrefix(uploadedPath, "/storage/v1/object/uploads/image/"), uploadedPath)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/storage/v1/object/public/uploads/image/"), url)

	// Missing objects are already deleted.
	require.NoError(t, store.Delete(context.Background(), url))
	assert.Equal(t, uploadedPath, deletedPath)
}

func TestSupabaseUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	store := NewSupabaseStorage(srv.URL, "k", "uploads")
	_, err := store.Upload(context.Background(), &File{Field: "image", Filename: "a.png"})
	assert.ErrorIs(t, err, ErrUploadFailed)
}
