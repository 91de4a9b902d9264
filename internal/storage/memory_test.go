package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	url, err := m.Upload(ctx, &File{Field: "image", Filename: "a.png"})
	require.NoError(t, err)
	assert.True(t, m.Has(url))

	require.NoError(t, m.Delete(ctx, url))
	assert.False(t, m.Has(url))

	// Deleting again is not an error.
	require.NoError(t, m.Delete(ctx, url))
	assert.Equal(t, []string{url, url}, m.Deleted())
}

func TestMemoryStorageSlowUploadHonoursDeadline(t *testing.T) {
	m := NewMemoryStorage()
	m.SlowUploads(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Upload(ctx, &File{Field: "image", Filename: "a.png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInstrumentedCountsOutcomes(t *testing.T) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "blob_ops"}, []string{"op", "outcome"})
	m := NewMemoryStorage()
	m.FailDelete("memory://blobs/x", errors.New("gone"))
	gw := NewInstrumented(m, ops)

	_, err := gw.Upload(context.Background(), &File{Field: "image", Filename: "a.png"})
	require.NoError(t, err)
	_, err = gw.Upload(context.Background(), nil)
	require.NoError(t, err)
	require.Error(t, gw.Delete(context.Background(), "memory://blobs/x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("upload", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("delete", "error")))
}
