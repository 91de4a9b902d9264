package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/form/v4"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/service"
	"github.com/reparvservices/reparv-server-sub002/internal/storage"
)

var decoder = form.NewDecoder()

// mediaTypes lists the file types accepted on asset fields.
var mediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"application/pdf",
	"video/mp4",
}

// sheetTypes lists the file types accepted by enquiry imports.
var sheetTypes = []string{
	"text/csv",
	"text/plain",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

const maxMemory = 32 << 20

// decode fills dst from a JSON, urlencoded or multipart body. Multipart files
// are size-checked and sniffed against allowed before anything is uploaded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, allowed []string) (service.Files, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return nil, pipeline.Validation("Invalid JSON body")
		}
		return service.Files{}, nil

	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, pipeline.Validation("Request body too large")
			}
			return nil, pipeline.Validation("Invalid multipart body")
		}
		if err := decodeValues(dst, r.MultipartForm.Value); err != nil {
			return nil, err
		}
		return s.readFiles(r.MultipartForm.File, allowed)

	default:
		if err := r.ParseForm(); err != nil {
			return nil, pipeline.Validation("Invalid form body")
		}
		if err := decodeValues(dst, r.PostForm); err != nil {
			return nil, err
		}
		return service.Files{}, nil
	}
}

func decodeValues(dst any, values url.Values) error {
	if dst == nil {
		return nil
	}
	if err := decoder.Decode(dst, values); err != nil {
		return &pipeline.Error{Kind: pipeline.KindValidation, Message: "Invalid input", Err: err}
	}
	return nil
}

func (s *Server) maxBody() int64 {
	// a request may carry several files per slot
	return s.config.UploadMaxBytes*20 + maxMemory
}

func (s *Server) readFiles(headers map[string][]*multipart.FileHeader, allowed []string) (service.Files, error) {
	files := service.Files{}
	for field, list := range headers {
		for _, fh := range list {
			f, err := s.readFile(field, fh, allowed)
			if err != nil {
				return nil, err
			}
			files[field] = append(files[field], f)
		}
	}
	return files, nil
}

func (s *Server) readFile(field string, fh *multipart.FileHeader, allowed []string) (*storage.File, error) {
	if s.config.UploadMaxBytes > 0 && fh.Size > s.config.UploadMaxBytes {
		return nil, pipeline.Validationf("%s exceeds the %d MB limit", fh.Filename, s.config.UploadMaxBytes>>20)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, pipeline.Validationf("failed to read %s", fh.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, pipeline.Validationf("failed to read %s", fh.Filename)
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowed...) && !parentAllowed(detected, allowed) {
		return nil, &pipeline.Error{
			Kind:    pipeline.KindValidation,
			Message: fmt.Sprintf("%s has an unsupported file type", fh.Filename),
			Fields:  map[string]string{field: detected.String()},
		}
	}

	return &storage.File{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: detected.String(),
		Data:        data,
	}, nil
}

func parentAllowed(m *mimetype.MIME, allowed []string) bool {
	for p := m.Parent(); p != nil; p = p.Parent() {
		if mimetype.EqualsAny(p.String(), allowed...) {
			return true
		}
	}
	return false
}
