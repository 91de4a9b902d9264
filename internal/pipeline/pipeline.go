// Package pipeline keeps a row's file-reference columns consistent with the
// blob store across create, edit and delete.
//
// A write moves through Validating, CheckingDuplicate (create only),
// UploadingAssets, Writing, WritingDependents and CleaningUpOldAssets (edit
// only) to Done, stopping at Failed on the first error. Superseded assets are
// deleted only after the row write has succeeded.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/reparvservices/reparv-server-sub002/internal/storage"
)

// Slot is a named file field on an entity.
type Slot struct {
	Field  string // multipart field name
	Column string // row column holding the URL
	// Multi slots hold a JSON array of URLs; the others a single URL.
	Multi bool
}

// SlotUpload pairs a slot with the files received for it in this request.
// A slot without files leaves its column untouched.
type SlotUpload struct {
	Slot
	Files []*storage.File
}

// Assets maps a column to the value to store for a freshly uploaded slot.
type Assets map[string]string

// Write describes one create or edit.
type Write struct {
	Entity string
	Op     Op

	// Validate runs before any I/O. Plain errors become ValidationError.
	Validate func() error
	// CheckDuplicate runs for creates. Return Conflict for a natural key hit.
	CheckDuplicate func(ctx context.Context) error
	Uploads        []SlotUpload
	// Previous holds the stored column values an edit may supersede.
	Previous map[string]*string
	// Persist writes the row, merging assets into its columns.
	Persist func(ctx context.Context, assets Assets) error
	// Dependents writes rows that must exist alongside a new row.
	Dependents func(ctx context.Context) error
	// Revert undoes Persist when Dependents fails.
	Revert func(ctx context.Context) error
}

type Result struct {
	Assets Assets
	Trace  []State
	// Orphans are fresh uploads that could not be removed after a failed write.
	Orphans []string
}

func (r *Result) enter(s State) {
	r.Trace = append(r.Trace, s)
}

type Runner struct {
	blobs         storage.Gateway
	logger        *logrus.Logger
	uploadTimeout time.Duration
	compensate    bool
	runs          *prometheus.CounterVec
}

type Option func(*Runner)

// WithUploadTimeout bounds the whole upload step.
func WithUploadTimeout(d time.Duration) Option {
	return func(r *Runner) { r.uploadTimeout = d }
}

// WithCompensation controls whether fresh uploads are deleted when the row
// write that should reference them fails.
func WithCompensation(enabled bool) Option {
	return func(r *Runner) { r.compensate = enabled }
}

func WithRunCounter(runs *prometheus.CounterVec) Option {
	return func(r *Runner) { r.runs = runs }
}

func NewRunner(blobs storage.Gateway, logger *logrus.Logger, opts ...Option) *Runner {
	r := &Runner{
		blobs:         blobs,
		logger:        logger,
		uploadTimeout: 30 * time.Second,
		compensate:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Blobs() storage.Gateway { return r.blobs }

// Run executes w. The returned error is always an *Error.
func (r *Runner) Run(ctx context.Context, w *Write) (*Result, error) {
	res := &Result{Assets: Assets{}}
	log := r.logger.WithFields(logrus.Fields{"entity": w.Entity, "op": w.Op})

	fail := func(state State, err *Error) (*Result, error) {
		res.enter(Failed)
		log.WithError(err).WithFields(logrus.Fields{
			"state": state.String(),
			"kind":  err.Kind.String(),
		}).Warn("write pipeline failed")
		r.observe(w, err.Kind.String())
		return res, err
	}

	res.enter(Validating)
	if w.Validate != nil {
		if err := w.Validate(); err != nil {
			return fail(Validating, Classify(err, KindValidation, err.Error()))
		}
	}

	if w.Op == OpCreate && w.CheckDuplicate != nil {
		res.enter(CheckingDuplicate)
		if err := w.CheckDuplicate(ctx); err != nil {
			return fail(CheckingDuplicate, Classify(err, KindUpstream, "failed to check for duplicates"))
		}
	}

	res.enter(UploadingAssets)
	fresh, uerr := r.upload(ctx, w.Uploads, res.Assets)
	if uerr != nil {
		res.Orphans = r.discard(ctx, log, fresh)
		return fail(UploadingAssets, uerr)
	}

	res.enter(Writing)
	if err := w.Persist(ctx, res.Assets); err != nil {
		res.Orphans = r.discard(ctx, log, fresh)
		return fail(Writing, Classify(err, KindUpstream, fmt.Sprintf("failed to write %s", w.Entity)))
	}

	if w.Dependents != nil {
		res.enter(WritingDependents)
		if err := w.Dependents(ctx); err != nil {
			if w.Revert != nil {
				if rerr := w.Revert(ctx); rerr != nil {
					log.WithError(rerr).Error("failed to revert row after dependent write failure")
				}
			}
			res.Orphans = r.discard(ctx, log, fresh)
			return fail(WritingDependents, Classify(err, KindUpstream, fmt.Sprintf("failed to write %s dependents", w.Entity)))
		}
	}

	if w.Op == OpEdit && len(res.Assets) > 0 {
		res.enter(CleaningUpOldAssets)
		for column := range res.Assets {
			r.Cleanup(ctx, w.Previous[column])
		}
	}

	res.enter(Done)
	r.observe(w, "ok")
	log.WithField("assets", len(res.Assets)).Debug("write pipeline done")
	return res, nil
}

// upload sends every file concurrently. Slot values are written to assets
// only once all uploads have succeeded. The returned slice lists every URL
// stored by this call, including on failure.
func (r *Runner) upload(ctx context.Context, uploads []SlotUpload, assets Assets) ([]string, *Error) {
	type job struct {
		slot  int
		index int
		file  *storage.File
	}

	var jobs []job
	urls := make([][]string, len(uploads))
	for i, up := range uploads {
		urls[i] = make([]string, len(up.Files))
		for j, f := range up.Files {
			if f != nil {
				jobs = append(jobs, job{slot: i, index: j, file: f})
			}
		}
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	uctx := ctx
	if r.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uctx, cancel = context.WithTimeout(ctx, r.uploadTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(uctx)
	for _, jb := range jobs {
		g.Go(func() error {
			url, err := r.blobs.Upload(gctx, jb.file)
			if err != nil {
				return err
			}
			urls[jb.slot][jb.index] = url
			return nil
		})
	}
	err := g.Wait()

	var fresh []string
	for _, slot := range urls {
		for _, u := range slot {
			if u != "" {
				fresh = append(fresh, u)
			}
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(uctx.Err(), context.DeadlineExceeded) {
			return fresh, &Error{Kind: KindUploadTimeout, Message: "upload timed out", Err: err}
		}
		return fresh, Upstream("upload failed", err)
	}

	for i, up := range uploads {
		var stored []string
		for _, u := range urls[i] {
			if u != "" {
				stored = append(stored, u)
			}
		}
		if len(stored) == 0 {
			continue
		}

		if up.Multi {
			encoded, err := json.Marshal(stored)
			if err != nil {
				return fresh, Unexpected("failed to encode image collection", err)
			}
			assets[up.Column] = string(encoded)
			continue
		}
		assets[up.Column] = stored[0]
	}

	return fresh, nil
}

// discard removes uploads whose row write failed, when compensation is on.
// It returns the URLs left behind.
func (r *Runner) discard(ctx context.Context, log *logrus.Entry, fresh []string) []string {
	if len(fresh) == 0 {
		return nil
	}

	if !r.compensate {
		log.WithField("urls", fresh).Warn("leaving orphaned uploads behind")
		return fresh
	}

	var left []string
	for _, u := range fresh {
		if err := r.blobs.Delete(context.WithoutCancel(ctx), u); err != nil {
			log.WithError(err).WithField("url", u).Error("failed to remove orphaned upload")
			left = append(left, u)
		}
	}
	return left
}

func (r *Runner) observe(w *Write, outcome string) {
	if r.runs == nil {
		return
	}
	r.runs.WithLabelValues(w.Entity, string(w.Op), outcome).Inc()
}
