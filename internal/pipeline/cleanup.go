package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
)

// URLs expands a stored asset column into the blob URLs it references. A
// value is either a single URL or a JSON array of URLs.
func URLs(value *string) []string {
	if value == nil {
		return nil
	}

	raw := strings.TrimSpace(*value)
	if raw == "" || raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			out := make([]string, 0, len(list))
			for _, u := range list {
				if u = strings.TrimSpace(u); u != "" {
					out = append(out, u)
				}
			}
			return out
		}
	}

	return []string{raw}
}

// Cleanup deletes every blob referenced by values and returns how many
// deletes failed. Failures are logged and never abort the remaining deletes.
func (r *Runner) Cleanup(ctx context.Context, values ...*string) int {
	ctx = context.WithoutCancel(ctx)

	failed := 0
	for _, value := range values {
		for _, u := range URLs(value) {
			if err := r.blobs.Delete(ctx, u); err != nil {
				failed++
				r.logger.WithError(err).WithFields(logrus.Fields{
					"url": u,
				}).Warn("failed to delete superseded asset")
			}
		}
	}

	return failed
}

// Remove deletes a row through del and then every blob it referenced.
// Blob failures are tolerated once the row is gone.
func (r *Runner) Remove(ctx context.Context, entity string, del func(ctx context.Context) error, values ...*string) error {
	w := &Write{Entity: entity, Op: OpDelete}
	if err := del(ctx); err != nil {
		perr := Classify(err, KindUpstream, "failed to delete "+entity)
		r.observe(w, perr.Kind.String())
		return perr
	}

	if failed := r.Cleanup(ctx, values...); failed > 0 {
		r.logger.WithFields(logrus.Fields{
			"entity": entity,
			"failed": failed,
		}).Warn("row deleted with leftover assets")
	}

	r.observe(w, "ok")
	return nil
}
