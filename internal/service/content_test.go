package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

func blogInput(title string) *BlogInput {
	return &BlogInput{Type: "News", Title: title, Description: "short", Content: "<p>body</p>"}
}

func TestAddBlogSetsSlug(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.AddBlog(context.Background(), blogInput("Top 5 Plots in Nagpur!"), filesOf(upload("image", "cover.png")))
	require.NoError(t, err)

	assert.Equal(t, "top-5-plots-in-nagpur", b.SeoSlug)
	require.NotNil(t, b.Image)
	assert.True(t, f.blobs.Has(*b.Image))
}

func TestAddBlogDuplicateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddBlog(ctx, blogInput("Market Update"), Files{})
	require.NoError(t, err)

	_, err = f.svc.AddBlog(ctx, blogInput("market update"), Files{})
	assert.Equal(t, pipeline.KindConflict, kindOf(t, err))
	assert.Equal(t, 1, f.blogs.Len())
}

func TestEditBlogWithoutFileKeepsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.AddBlog(ctx, blogInput("Market Update"), filesOf(upload("image", "cover.png")))
	require.NoError(t, err)
	image := *b.Image

	title := "Market Update March"
	updated, err := f.svc.EditBlog(ctx, b.ID, &BlogPatch{Title: &title}, Files{})
	require.NoError(t, err)

	assert.Equal(t, image, *updated.Image)
	assert.Equal(t, "market-update-march", updated.SeoSlug)
	assert.True(t, f.blobs.Has(image))
	assert.Empty(t, f.blobs.Deleted())

	bySlug, err := f.svc.BlogBySlug(ctx, "market-update-march")
	require.NoError(t, err)
	assert.Equal(t, b.ID, bySlug.ID)
}

func TestEditBlogWithFileReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.AddBlog(ctx, blogInput("Market Update"), filesOf(upload("image", "old.png")))
	require.NoError(t, err)
	old := *b.Image

	updated, err := f.svc.EditBlog(ctx, b.ID, &BlogPatch{}, filesOf(upload("image", "new.png")))
	require.NoError(t, err)

	assert.NotEqual(t, old, *updated.Image)
	assert.False(t, f.blobs.Has(old))
	assert.True(t, f.blobs.Has(*updated.Image))
}

func TestInactiveBlogHiddenFromPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.AddBlog(ctx, blogInput("Market Update"), Files{})
	require.NoError(t, err)

	status, err := f.svc.ToggleBlogStatus(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInactive, status)

	active, err := f.svc.ListBlogs(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.ListBlogs(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.BlogBySlug(ctx, b.SeoSlug)
	assert.Equal(t, pipeline.KindNotFound, kindOf(t, err))
}

func TestDeleteBlogRemovesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.AddBlog(ctx, blogInput("Market Update"), filesOf(upload("image", "cover.png")))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBlog(ctx, b.ID))
	assert.Equal(t, 0, f.blogs.Len())
	assert.False(t, f.blobs.Has(*b.Image))
}

func TestTestimonialLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddTestimonial(ctx, &TestimonialInput{Client: "Ravi"}, Files{})
	assert.Equal(t, pipeline.KindValidation, kindOf(t, err))

	tm, err := f.svc.AddTestimonial(ctx, &TestimonialInput{Client: "Ravi", Message: "Smooth booking"}, filesOf(upload("clientimage", "ravi.jpg")))
	require.NoError(t, err)
	assert.Nil(t, tm.VideoURL)
	require.NotNil(t, tm.Photo)

	url := "https://youtu.be/abc"
	updated, err := f.svc.EditTestimonial(ctx, tm.ID, &TestimonialPatch{URL: &url}, Files{})
	require.NoError(t, err)
	require.NotNil(t, updated.VideoURL)
	assert.Equal(t, url, *updated.VideoURL)
	assert.Equal(t, *tm.Photo, *updated.Photo)

	require.NoError(t, f.svc.DeleteTestimonial(ctx, tm.ID))
	assert.False(t, f.blobs.Has(*tm.Photo))
}

func TestMarketingContentRequiresFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddMarketingContent(context.Background(), tenantA, &MarketingInput{ContentType: "Poster"}, Files{})
	assert.Equal(t, pipeline.KindValidation, kindOf(t, err))
	assert.Equal(t, 0, f.marketing.Len())
}

func TestMarketingContentDuplicateFilePerTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	poster := upload("contentFile", "poster.png")

	_, err := f.svc.AddMarketingContent(ctx, tenantA, &MarketingInput{ContentType: "Poster"}, filesOf(poster))
	require.NoError(t, err)

	_, err = f.svc.AddMarketingContent(ctx, tenantA, &MarketingInput{ContentType: "Poster"}, filesOf(poster))
	assert.Equal(t, pipeline.KindConflict, kindOf(t, err))
	assert.Equal(t, 1, f.blobs.Uploads())

	_, err = f.svc.AddMarketingContent(ctx, tenantB, &MarketingInput{ContentType: "Poster"}, filesOf(poster))
	require.NoError(t, err)
	assert.Equal(t, 2, f.marketing.Len())
}

func TestMarketingContentTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mc, err := f.svc.AddMarketingContent(ctx, tenantA, &MarketingInput{ContentType: "Video"}, filesOf(upload("contentFile", "tour.mp4")))
	require.NoError(t, err)

	listB, err := f.svc.ListMarketingContent(ctx, tenantB, false)
	require.NoError(t, err)
	assert.Empty(t, listB)

	err = f.svc.DeleteMarketingContent(ctx, tenantB, mc.ID)
	assert.Equal(t, pipeline.KindNotFound, kindOf(t, err))
	assert.True(t, f.blobs.Has(*mc.ContentFile))

	all, err := f.svc.ListMarketingContent(ctx, admin, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEditMarketingContentDeletesOldFileAfterWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mc, err := f.svc.AddMarketingContent(ctx, tenantA, &MarketingInput{ContentType: "Poster"}, filesOf(upload("contentFile", "v1.png")))
	require.NoError(t, err)
	old := *mc.ContentFile

	f.marketing.FailNext(assert.AnError)
	_, err = f.svc.EditMarketingContent(ctx, tenantA, mc.ID, &MarketingPatch{}, filesOf(upload("contentFile", "v2.png")))
	require.Error(t, err)
	assert.True(t, f.blobs.Has(old), "old file must survive a failed write")
	assert.Equal(t, 1, f.blobs.Len())

	updated, err := f.svc.EditMarketingContent(ctx, tenantA, mc.ID, &MarketingPatch{}, filesOf(upload("contentFile", "v3.png")))
	require.NoError(t, err)
	assert.False(t, f.blobs.Has(old))
	assert.True(t, f.blobs.Has(*updated.ContentFile))
}

func TestSliderNeedsAnImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddSlider(ctx, Files{})
	assert.Equal(t, pipeline.KindValidation, kindOf(t, err))

	s, err := f.svc.AddSlider(ctx, filesOf(upload("mobileImage", "m.png")))
	require.NoError(t, err)
	assert.Nil(t, s.Image)
	require.NotNil(t, s.MobileImage)

	updated, err := f.svc.EditSlider(ctx, s.ID, filesOf(upload("image", "d.png")))
	require.NoError(t, err)
	require.NotNil(t, updated.Image)
	assert.Equal(t, *s.MobileImage, *updated.MobileImage)

	require.NoError(t, f.svc.DeleteSlider(ctx, s.ID))
	assert.Equal(t, 0, f.blobs.Len())
}
