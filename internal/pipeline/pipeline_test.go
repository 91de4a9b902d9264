package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reparvservices/reparv-server-sub002/internal/storage"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

func newRunner(t *testing.T, opts ...Option) (*Runner, *storage.MemoryStorage, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	blobs := storage.NewMemoryStorage()
	return NewRunner(blobs, logger, opts...), blobs, hook
}

func file(field, name string) *storage.File {
	return &storage.File{Field: field, Filename: name, ContentType: "image/png", Data: []byte("x")}
}

func TestRunCreateWithoutFiles(t *testing.T) {
	r, blobs, _ := newRunner(t)

	var persisted Assets
	res, err := r.Run(context.Background(), &Write{
		Entity:         "guest_user",
		Op:             OpCreate,
		Validate:       func() error { return nil },
		CheckDuplicate: func(context.Context) error { return nil },
		Uploads:        []SlotUpload{{Slot: Slot{Field: "adharImage", Column: "adhar_image"}}},
		Persist: func(_ context.Context, a Assets) error {
			persisted = a
			return nil
		},
	})
	require.NoError(t, err)

	assert.Empty(t, persisted)
	assert.Equal(t, 0, blobs.Uploads())
	assert.Equal(t, []State{Validating, CheckingDuplicate, UploadingAssets, Writing, Done}, res.Trace)
}

func TestRunValidationStopsBeforeIO(t *testing.T) {
	r, blobs, _ := newRunner(t)

	dupChecked := false
	_, err := r.Run(context.Background(), &Write{
		Entity:         "blog",
		Op:             OpCreate,
		Validate:       func() error { return errors.New("All Fields are required") },
		CheckDuplicate: func(context.Context) error { dupChecked = true; return nil },
		Uploads:        []SlotUpload{{Slot: Slot{Field: "image", Column: "image"}, Files: []*storage.File{file("image", "a.png")}}},
		Persist:        func(context.Context, Assets) error { t.Fatal("persist called"); return nil },
	})
	require.Error(t, err)

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "All Fields are required", err.(*Error).Message)
	assert.False(t, dupChecked)
	assert.Equal(t, 0, blobs.Uploads())
}

func TestRunDuplicateIsConflict(t *testing.T) {
	r, blobs, _ := newRunner(t)

	_, err := r.Run(context.Background(), &Write{
		Entity:         "sales_person",
		Op:             OpCreate,
		CheckDuplicate: func(context.Context) error { return Conflict("Sales person already exists") },
		Uploads:        []SlotUpload{{Slot: Slot{Field: "panImage", Column: "pan_image"}, Files: []*storage.File{file("panImage", "p.png")}}},
		Persist:        func(context.Context, Assets) error { return nil },
	})
	require.Error(t, err)

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 0, blobs.Uploads())
}

func TestRunDuplicateSkippedOnEdit(t *testing.T) {
	r, _, _ := newRunner(t)

	res, err := r.Run(context.Background(), &Write{
		Entity:         "blog",
		Op:             OpEdit,
		CheckDuplicate: func(context.Context) error { return Conflict("dup") },
		Persist:        func(context.Context, Assets) error { return nil },
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Trace, CheckingDuplicate)
}

func TestRunMultiSlotStoresJSONArray(t *testing.T) {
	r, _, _ := newRunner(t)

	var persisted Assets
	_, err := r.Run(context.Background(), &Write{
		Entity: "property",
		Op:     OpCreate,
		Uploads: []SlotUpload{
			{Slot: Slot{Field: "frontView", Column: "front_view", Multi: true}, Files: []*storage.File{file("frontView", "a.png"), file("frontView", "b.png")}},
			{Slot: Slot{Field: "sideView", Column: "side_view", Multi: true}},
		},
		Persist: func(_ context.Context, a Assets) error {
			persisted = a
			return nil
		},
	})
	require.NoError(t, err)

	require.Contains(t, persisted, "front_view")
	assert.NotContains(t, persisted, "side_view")

	var urls []string
	require.NoError(t, json.Unmarshal([]byte(persisted["front_view"]), &urls))
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "a.png")
	assert.Contains(t, urls[1], "b.png")
}

func TestRunEditDeletesOnlyReplacedAssetsAfterWrite(t *testing.T) {
	r, blobs, _ := newRunner(t)
	blobs.Put("old-image")
	blobs.Put("old-pan")

	deletedBeforeWrite := -1
	res, err := r.Run(context.Background(), &Write{
		Entity: "blog",
		Op:     OpEdit,
		Uploads: []SlotUpload{
			{Slot: Slot{Field: "image", Column: "image"}, Files: []*storage.File{file("image", "new.png")}},
			{Slot: Slot{Field: "pan", Column: "pan_image"}},
		},
		Previous: map[string]*string{
			"image":     utils.StringPtr("old-image"),
			"pan_image": utils.StringPtr("old-pan"),
		},
		Persist: func(context.Context, Assets) error {
			deletedBeforeWrite = len(blobs.Deleted())
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, deletedBeforeWrite)
	assert.Equal(t, []string{"old-image"}, blobs.Deleted())
	assert.True(t, blobs.Has("old-pan"))
	assert.Contains(t, res.Trace, CleaningUpOldAssets)
}

func TestRunEditWithoutFilesKeepsOldAsset(t *testing.T) {
	r, blobs, _ := newRunner(t)
	blobs.Put("u1")

	var persisted Assets
	res, err := r.Run(context.Background(), &Write{
		Entity:   "blog",
		Op:       OpEdit,
		Uploads:  []SlotUpload{{Slot: Slot{Field: "image", Column: "image"}}},
		Previous: map[string]*string{"image": utils.StringPtr("u1")},
		Persist: func(_ context.Context, a Assets) error {
			persisted = a
			return nil
		},
	})
	require.NoError(t, err)

	assert.Empty(t, persisted)
	assert.Empty(t, blobs.Deleted())
	assert.True(t, blobs.Has("u1"))
	assert.NotContains(t, res.Trace, CleaningUpOldAssets)
}

func TestRunPersistFailureKeepsOldAssetsAndCompensates(t *testing.T) {
	r, blobs, _ := newRunner(t)
	blobs.Put("old")

	res, err := r.Run(context.Background(), &Write{
		Entity:   "testimonial",
		Op:       OpEdit,
		Uploads:  []SlotUpload{{Slot: Slot{Field: "clientimage", Column: "client_photo"}, Files: []*storage.File{file("clientimage", "c.png")}}},
		Previous: map[string]*string{"client_photo": utils.StringPtr("old")},
		Persist:  func(context.Context, Assets) error { return errors.New("connection reset") },
	})
	require.Error(t, err)

	assert.Equal(t, KindUpstream, KindOf(err))
	assert.True(t, blobs.Has("old"))
	assert.NotContains(t, blobs.Deleted(), "old")
	require.Len(t, blobs.Deleted(), 1)
	assert.Contains(t, blobs.Deleted()[0], "c.png")
	assert.Empty(t, res.Orphans)
	assert.Equal(t, Failed, res.Trace[len(res.Trace)-1])
}

func TestRunPersistFailureWithoutCompensationReportsOrphans(t *testing.T) {
	r, blobs, _ := newRunner(t, WithCompensation(false))

	res, err := r.Run(context.Background(), &Write{
		Entity:  "slider",
		Op:      OpCreate,
		Uploads: []SlotUpload{{Slot: Slot{Field: "image", Column: "image"}, Files: []*storage.File{file("image", "s.png")}}},
		Persist: func(context.Context, Assets) error { return errors.New("boom") },
	})
	require.Error(t, err)

	assert.Empty(t, blobs.Deleted())
	assert.Len(t, res.Orphans, 1)
}

func TestRunPartialUploadFailure(t *testing.T) {
	r, blobs, _ := newRunner(t)
	blobs.FailUploads("panImage", errors.New("bucket unavailable"))

	persisted := false
	_, err := r.Run(context.Background(), &Write{
		Entity: "territory_partner",
		Op:     OpCreate,
		Uploads: []SlotUpload{
			{Slot: Slot{Field: "adharImage", Column: "adhar_image"}, Files: []*storage.File{file("adharImage", "a.png")}},
			{Slot: Slot{Field: "panImage", Column: "pan_image"}, Files: []*storage.File{file("panImage", "p.png")}},
		},
		Persist: func(context.Context, Assets) error { persisted = true; return nil },
	})
	require.Error(t, err)

	assert.Equal(t, KindUpstream, KindOf(err))
	assert.False(t, persisted)
	assert.Equal(t, 0, blobs.Len())
}

func TestRunUploadTimeout(t *testing.T) {
	r, blobs, _ := newRunner(t, WithUploadTimeout(20*time.Millisecond))
	blobs.SlowUploads(time.Second)

	_, err := r.Run(context.Background(), &Write{
		Entity:  "marketing_content",
		Op:      OpCreate,
		Uploads: []SlotUpload{{Slot: Slot{Field: "contentFile", Column: "content_file"}, Files: []*storage.File{file("contentFile", "v.mp4")}}},
		Persist: func(context.Context, Assets) error { t.Fatal("persist called"); return nil },
	})
	require.Error(t, err)

	assert.Equal(t, KindUploadTimeout, KindOf(err))
	assert.Equal(t, 500, KindOf(err).HTTPStatus())
}

func TestRunDependentFailureReverts(t *testing.T) {
	r, blobs, _ := newRunner(t)

	reverted := false
	_, err := r.Run(context.Background(), &Write{
		Entity:     "employee",
		Op:         OpCreate,
		Uploads:    []SlotUpload{{Slot: Slot{Field: "adharImage", Column: "adhar_image"}, Files: []*storage.File{file("adharImage", "a.png")}}},
		Persist:    func(context.Context, Assets) error { return nil },
		Dependents: func(context.Context) error { return errors.New("followup insert failed") },
		Revert:     func(context.Context) error { reverted = true; return nil },
	})
	require.Error(t, err)

	assert.True(t, reverted)
	assert.Equal(t, 0, blobs.Len())
}

func TestRunNotFoundPassesThrough(t *testing.T) {
	r, _, _ := newRunner(t)

	_, err := r.Run(context.Background(), &Write{
		Entity:  "blog",
		Op:      OpEdit,
		Persist: func(context.Context, Assets) error { return types.ErrBlogNotFound },
	})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCleanupToleratesFailures(t *testing.T) {
	r, blobs, hook := newRunner(t)
	blobs.Put("u1")
	blobs.Put("u2")
	blobs.FailDelete("u1", errors.New("denied"))

	failed := r.Cleanup(context.Background(), utils.StringPtr(`["u1","u2"]`), nil, utils.StringPtr(""))

	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"u1", "u2"}, blobs.Deleted())
	assert.False(t, blobs.Has("u2"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRemoveDeletesRowThenBlobs(t *testing.T) {
	r, blobs, _ := newRunner(t)
	blobs.Put("u1")
	blobs.Put("u2")
	blobs.FailDelete("u1", errors.New("denied"))

	rowDeleted := false
	err := r.Remove(context.Background(), "property", func(context.Context) error {
		rowDeleted = true
		return nil
	}, utils.StringPtr(`["u1"]`), utils.StringPtr(`["u2"]`))
	require.NoError(t, err)

	assert.True(t, rowDeleted)
	assert.Equal(t, []string{"u1", "u2"}, blobs.Deleted())
}

func TestRemoveMissingRowKeepsBlobs(t *testing.T) {
	r, blobs, _ := newRunner(t)
	blobs.Put("u1")

	err := r.Remove(context.Background(), "blog", func(context.Context) error {
		return types.ErrBlogNotFound
	}, utils.StringPtr("u1"))
	require.Error(t, err)

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, blobs.Has("u1"))
}

func TestURLs(t *testing.T) {
	assert.Nil(t, URLs(nil))
	assert.Nil(t, URLs(utils.StringPtr("  ")))
	assert.Nil(t, URLs(utils.StringPtr("null")))
	assert.Equal(t, []string{"https://cdn/x.png"}, URLs(utils.StringPtr("https://cdn/x.png")))
	assert.Equal(t, []string{"a", "b"}, URLs(utils.StringPtr(`["a", "", "b"]`)))
}
