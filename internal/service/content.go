package service

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type BlogInput struct {
	Type        string `form:"type" json:"type" validate:"required"`
	Title       string `form:"tittle" json:"tittle" validate:"required"`
	Description string `form:"description" json:"description" validate:"required"`
	Content     string `form:"content" json:"content" validate:"required"`
}

type BlogPatch struct {
	Type        *string `form:"type" json:"type"`
	Title       *string `form:"tittle" json:"tittle"`
	Description *string `form:"description" json:"description"`
	Content     *string `form:"content" json:"content"`
}

func (s *Service) AddBlog(ctx context.Context, in *BlogInput, files Files) (*types.Blog, error) {
	blog := &types.Blog{
		ID:          newID(),
		Type:        trimmed(in.Type),
		Title:       trimmed(in.Title),
		SeoSlug:     utils.Slugify(in.Title),
		Description: trimmed(in.Description),
		Content:     in.Content,
		Status:      types.StatusActive,
	}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "blog",
		Op:       pipeline.OpCreate,
		Validate: func() error { return s.check(in) },
		CheckDuplicate: func(ctx context.Context) error {
			return conflictIf(s.Blogs.Exists(ctx, sq.Eq{"seo_slug": blog.SeoSlug}))("Blog already exists with this title")
		},
		Uploads: files.uploads(blogImageSlot),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			blog.Image = asset(assets, blogImageSlot.Column)
			blog.Touch(s.now())
			return s.Blogs.Insert(ctx, blog)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, blog), nil
}

// EditBlog updates the supplied fields. The image is replaced only when a
// new file is attached; a new title recomputes the slug.
func (s *Service) EditBlog(ctx context.Context, id string, patch *BlogPatch, files Files) (*types.Blog, error) {
	current, err := s.Blogs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Blog not found")
	}

	cols := store.NewColumns()
	if patch.Type != nil {
		cols.SetString("type", *patch.Type)
	}
	if patch.Title != nil && trimmed(*patch.Title) != "" {
		cols.Set("title", trimmed(*patch.Title)).Set("seo_slug", utils.Slugify(*patch.Title))
	}
	if patch.Description != nil {
		cols.SetString("description", *patch.Description)
	}
	if patch.Content != nil && trimmed(*patch.Content) != "" {
		cols.Set("content", *patch.Content)
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "blog",
		Op:       pipeline.OpEdit,
		Uploads:  files.uploads(blogImageSlot),
		Previous: map[string]*string{blogImageSlot.Column: current.Image},
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			return s.Blogs.Update(ctx, id, cols.Merge(assets))
		},
	})
	if err != nil {
		return nil, err
	}
	return s.GetBlog(ctx, id)
}

func (s *Service) GetBlog(ctx context.Context, id string) (*types.Blog, error) {
	blog, err := s.Blogs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Blog not found")
	}
	return format(s.Location, blog), nil
}

// BlogBySlug serves the public blog page; inactive blogs are hidden.
func (s *Service) BlogBySlug(ctx context.Context, slug string) (*types.Blog, error) {
	blog, err := s.Blogs.Find(ctx, sq.Eq{"seo_slug": slug, "status": types.StatusActive})
	if err != nil {
		return nil, notFound(err, "Blog not found")
	}
	return format(s.Location, blog), nil
}

func (s *Service) ListBlogs(ctx context.Context, activeOnly bool) ([]*types.Blog, error) {
	return list(ctx, s, s.Blogs, statusFilter(activeOnly))
}

func (s *Service) ToggleBlogStatus(ctx context.Context, id string) (types.Status, error) {
	v, err := toggle(ctx, s.Blogs, id, store.StatusToggle, "Blog not found")
	return types.Status(v), err
}

func (s *Service) DeleteBlog(ctx context.Context, id string) error {
	blog, err := s.Blogs.Get(ctx, id)
	if err != nil {
		return notFound(err, "Blog not found")
	}
	return s.Runner.Remove(ctx, "blog", deleteRow(s.Blogs, id), blog.Image)
}

type TestimonialInput struct {
	Client  string `form:"client" json:"client" validate:"required"`
	Message string `form:"message" json:"message" validate:"required"`
	URL     string `form:"url" json:"url" validate:"omitempty,url"`
}

type TestimonialPatch struct {
	Client  *string `form:"client" json:"client"`
	Message *string `form:"message" json:"message"`
	URL     *string `form:"url" json:"url" validate:"omitempty,url"`
}

func (s *Service) AddTestimonial(ctx context.Context, in *TestimonialInput, files Files) (*types.Testimonial, error) {
	t := &types.Testimonial{
		ID:       newID(),
		Client:   trimmed(in.Client),
		Message:  trimmed(in.Message),
		VideoURL: utils.NilIfBlank(in.URL),
		Status:   types.StatusActive,
	}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "testimonial",
		Op:       pipeline.OpCreate,
		Validate: func() error { return s.check(in) },
		Uploads:  files.uploads(clientPhotoSlot),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			t.Photo = asset(assets, clientPhotoSlot.Column)
			t.Touch(s.now())
			return s.Testimonials.Insert(ctx, t)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, t), nil
}

func (s *Service) EditTestimonial(ctx context.Context, id string, patch *TestimonialPatch, files Files) (*types.Testimonial, error) {
	current, err := s.Testimonials.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Testimonial not found")
	}

	cols := store.NewColumns().SetPtr("url", patch.URL)
	if patch.Client != nil {
		cols.SetString("client", *patch.Client)
	}
	if patch.Message != nil {
		cols.SetString("message", *patch.Message)
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "testimonial",
		Op:       pipeline.OpEdit,
		Validate: func() error { return s.check(patch) },
		Uploads:  files.uploads(clientPhotoSlot),
		Previous: map[string]*string{clientPhotoSlot.Column: current.Photo},
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			return s.Testimonials.Update(ctx, id, cols.Merge(assets))
		},
	})
	if err != nil {
		return nil, err
	}
	return s.GetTestimonial(ctx, id)
}

func (s *Service) GetTestimonial(ctx context.Context, id string) (*types.Testimonial, error) {
	t, err := s.Testimonials.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Testimonial not found")
	}
	return format(s.Location, t), nil
}

func (s *Service) ListTestimonials(ctx context.Context, activeOnly bool) ([]*types.Testimonial, error) {
	return list(ctx, s, s.Testimonials, statusFilter(activeOnly))
}

func (s *Service) ToggleTestimonialStatus(ctx context.Context, id string) (types.Status, error) {
	v, err := toggle(ctx, s.Testimonials, id, store.StatusToggle, "Testimonial not found")
	return types.Status(v), err
}

func (s *Service) DeleteTestimonial(ctx context.Context, id string) error {
	t, err := s.Testimonials.Get(ctx, id)
	if err != nil {
		return notFound(err, "Testimonial not found")
	}
	return s.Runner.Remove(ctx, "testimonial", deleteRow(s.Testimonials, id), t.Photo)
}

type MarketingInput struct {
	ContentType string `form:"contentType" json:"contentType" validate:"required"`
}

type MarketingPatch struct {
	ContentType *string `form:"contentType" json:"contentType"`
}

// AddMarketingContent stores a marketing file. The same file uploaded twice
// by one owner is a conflict, detected by content hash.
func (s *Service) AddMarketingContent(ctx context.Context, id types.Identity, in *MarketingInput, files Files) (*types.MarketingContent, error) {
	file := files.First(contentFileSlot.Field)

	mc := &types.MarketingContent{
		ID:          newID(),
		ContentType: trimmed(in.ContentType),
		Status:      types.StatusActive,
	}
	if id.Role != types.AuthAdmin {
		t, err := tenant(id)
		if err != nil {
			return nil, err
		}
		mc.ProjectPartnerID = &t
	}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity: "marketing_content",
		Op:     pipeline.OpCreate,
		Validate: func() error {
			if err := s.check(in); err != nil {
				return err
			}
			if file == nil {
				return pipeline.Validation("Content file is required")
			}
			mc.ContentHash = utils.StringPtr(checksum(file))
			return nil
		},
		CheckDuplicate: func(ctx context.Context) error {
			where := sq.Eq{"content_hash": *mc.ContentHash, "projectpartner_id": nil}
			if mc.ProjectPartnerID != nil {
				where["projectpartner_id"] = *mc.ProjectPartnerID
			}
			return conflictIf(s.Marketing.Exists(ctx, where))("This content has already been uploaded")
		},
		Uploads: files.uploads(contentFileSlot),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			mc.ContentFile = asset(assets, contentFileSlot.Column)
			mc.Touch(s.now())
			return s.Marketing.Insert(ctx, mc)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, mc), nil
}

// EditMarketingContent replaces the file like every other entity: the old
// file is deleted only after the row points at the new one.
func (s *Service) EditMarketingContent(ctx context.Context, id types.Identity, contentID string, patch *MarketingPatch, files Files) (*types.MarketingContent, error) {
	current, err := s.loadMarketing(ctx, id, contentID)
	if err != nil {
		return nil, err
	}

	cols := store.NewColumns()
	if patch.ContentType != nil {
		cols.SetString("content_type", *patch.ContentType)
	}
	if file := files.First(contentFileSlot.Field); file != nil {
		cols.Set("content_hash", checksum(file))
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "marketing_content",
		Op:       pipeline.OpEdit,
		Uploads:  files.uploads(contentFileSlot),
		Previous: map[string]*string{contentFileSlot.Column: current.ContentFile},
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			return s.Marketing.Update(ctx, contentID, cols.Merge(assets))
		},
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Marketing.Get(ctx, contentID)
	if err != nil {
		return nil, notFound(err, "Marketing content not found")
	}
	return format(s.Location, updated), nil
}

func (s *Service) loadMarketing(ctx context.Context, id types.Identity, contentID string) (*types.MarketingContent, error) {
	mc, err := s.Marketing.Get(ctx, contentID)
	if err != nil {
		return nil, notFound(err, "Marketing content not found")
	}
	if !visible(id, mc.ProjectPartnerID) {
		return nil, pipeline.NotFound("Marketing content not found")
	}
	return mc, nil
}

func (s *Service) GetMarketingContent(ctx context.Context, id types.Identity, contentID string) (*types.MarketingContent, error) {
	mc, err := s.loadMarketing(ctx, id, contentID)
	if err != nil {
		return nil, err
	}
	return format(s.Location, mc), nil
}

func (s *Service) ListMarketingContent(ctx context.Context, id types.Identity, activeOnly bool) ([]*types.MarketingContent, error) {
	where := statusFilter(activeOnly)
	if id.Role != types.AuthAdmin && id.Tenant() != "" {
		where["projectpartner_id"] = id.Tenant()
	}
	return list(ctx, s, s.Marketing, where)
}

func (s *Service) ToggleMarketingStatus(ctx context.Context, id types.Identity, contentID string) (types.Status, error) {
	if _, err := s.loadMarketing(ctx, id, contentID); err != nil {
		return "", err
	}
	v, err := toggle(ctx, s.Marketing, contentID, store.StatusToggle, "Marketing content not found")
	return types.Status(v), err
}

func (s *Service) DeleteMarketingContent(ctx context.Context, id types.Identity, contentID string) error {
	mc, err := s.loadMarketing(ctx, id, contentID)
	if err != nil {
		return err
	}
	return s.Runner.Remove(ctx, "marketing_content", deleteRow(s.Marketing, contentID), mc.ContentFile)
}

func (s *Service) AddSlider(ctx context.Context, files Files) (*types.Slider, error) {
	slider := &types.Slider{ID: newID(), Status: types.StatusActive}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity: "slider",
		Op:     pipeline.OpCreate,
		Validate: func() error {
			if !files.Has(sliderImageSlot.Field) && !files.Has(sliderMobileSlot.Field) {
				return pipeline.Validation("Image is required")
			}
			return nil
		},
		Uploads: files.uploads(sliderImageSlot, sliderMobileSlot),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			slider.Image = asset(assets, sliderImageSlot.Column)
			slider.MobileImage = asset(assets, sliderMobileSlot.Column)
			slider.Touch(s.now())
			return s.Sliders.Insert(ctx, slider)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, slider), nil
}

func (s *Service) EditSlider(ctx context.Context, id string, files Files) (*types.Slider, error) {
	current, err := s.Sliders.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Slider not found")
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:  "slider",
		Op:      pipeline.OpEdit,
		Uploads: files.uploads(sliderImageSlot, sliderMobileSlot),
		Previous: map[string]*string{
			sliderImageSlot.Column:  current.Image,
			sliderMobileSlot.Column: current.MobileImage,
		},
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			return s.Sliders.Update(ctx, id, store.NewColumns().Merge(assets))
		},
	})
	if err != nil {
		return nil, err
	}

	slider, err := s.Sliders.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Slider not found")
	}
	return format(s.Location, slider), nil
}

func (s *Service) ListSliders(ctx context.Context, activeOnly bool) ([]*types.Slider, error) {
	return list(ctx, s, s.Sliders, statusFilter(activeOnly))
}

func (s *Service) ToggleSliderStatus(ctx context.Context, id string) (types.Status, error) {
	v, err := toggle(ctx, s.Sliders, id, store.StatusToggle, "Slider not found")
	return types.Status(v), err
}

func (s *Service) DeleteSlider(ctx context.Context, id string) error {
	slider, err := s.Sliders.Get(ctx, id)
	if err != nil {
		return notFound(err, "Slider not found")
	}
	return s.Runner.Remove(ctx, "slider", deleteRow(s.Sliders, id), slider.Image, slider.MobileImage)
}

// list returns rows newest first with display timestamps filled in.
func list[T any, P interface {
	*T
	formatter
}](ctx context.Context, s *Service, rows Repository[T], where sq.Sqlizer) ([]*T, error) {
	out, err := rows.List(ctx, where)
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	for _, r := range out {
		P(r).FormatTimes(s.Location)
	}
	return out, nil
}

func deleteRow[T any](rows Repository[T], id string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rows.Delete(ctx, id)
	}
}

// conflictIf turns an existence check into a Conflict with msg.
func conflictIf(exists bool, err error) func(msg string) error {
	return func(msg string) error {
		if err != nil {
			return err
		}
		if exists {
			return pipeline.Conflict(msg)
		}
		return nil
	}
}
