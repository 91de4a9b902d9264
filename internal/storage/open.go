package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const (
	DriverS3       = "s3"
	DriverSupabase = "supabase"
	DriverMemory   = "memory"
)

// Open picks the Gateway named by config.BlobDriver.
func Open(ctx context.Context, config *types.Config) (Gateway, error) {
	switch strings.ToLower(config.BlobDriver) {
	case DriverS3, "":
		return OpenS3(ctx, S3Config{
			Bucket:          config.S3Bucket,
			Region:          config.S3Region,
			Endpoint:        config.S3Endpoint,
			PathStyle:       config.S3PathStyle,
			PublicBaseURL:   config.S3PublicBaseURL,
			AccessKeyID:     config.S3AccessKeyID,
			SecretAccessKey: config.S3SecretKey,
		})
	case DriverSupabase:
		if config.SupabaseURL == "" || config.SupabaseKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_URL and SUPABASE_SERVICE_KEY for the supabase driver")
		}
		return NewSupabaseStorage(config.SupabaseURL, config.SupabaseKey, config.SupabaseBucket), nil
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", config.BlobDriver)
	}
}

// Instrumented counts calls on the wrapped Gateway.
type Instrumented struct {
	next Gateway
	ops  *prometheus.CounterVec
}

func NewInstrumented(next Gateway, ops *prometheus.CounterVec) *Instrumented {
	return &Instrumented{next: next, ops: ops}
}

func (i *Instrumented) Upload(ctx context.Context, file *File) (string, error) {
	if file == nil {
		return "", nil
	}
	url, err := i.next.Upload(ctx, file)
	i.observe("upload", err)
	return url, err
}

func (i *Instrumented) Delete(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	err := i.next.Delete(ctx, url)
	i.observe("delete", err)
	return err
}

func (i *Instrumented) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.ops.WithLabelValues(op, outcome).Inc()
}
