package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUploadFailed = errors.New("upload failed")
	ErrDeleteFailed = errors.New("delete failed")
)

// File is an in-memory upload handed over by the multipart layer.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Gateway stores uploaded files and returns durable public URLs.
//
// Upload of a nil file returns "" without touching the store. Delete of ""
// is a no-op, and deleting an object that no longer exists is not an error.
type Gateway interface {
	Upload(ctx context.Context, file *File) (string, error)
	Delete(ctx context.Context, url string) error
}

var reUnsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// ObjectKey builds "<field>/<yyyymmdd>-<uuid>-<filename>".
func ObjectKey(file *File, now time.Time) string {
	folder := strings.Trim(reUnsafeFilename.ReplaceAllString(file.Field, "_"), "_")
	if folder == "" {
		folder = "misc"
	}

	name := reUnsafeFilename.ReplaceAllString(path.Base(file.Filename), "_")
	if name == "" || name == "." || name == "/" {
		name = "file"
	}

	return fmt.Sprintf("%s/%s-%s-%s", folder, now.Format("20060102"), uuid.New().String(), name)
}

func uploadError(err error, file *File) error {
	return fmt.Errorf("%w: %s: %w", ErrUploadFailed, file.Filename, err)
}

func deleteError(err error, url string) error {
	return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, url, err)
}
