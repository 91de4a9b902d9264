package service

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/storage"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

// Files holds the uploaded files of a request keyed by multipart field.
type Files map[string][]*storage.File

func (f Files) Has(field string) bool {
	return len(f[field]) > 0
}

func (f Files) First(field string) *storage.File {
	if len(f[field]) == 0 {
		return nil
	}
	return f[field][0]
}

// uploads pairs each slot with the files received for it. Single slots take
// the first file only.
func (f Files) uploads(slots ...pipeline.Slot) []pipeline.SlotUpload {
	out := make([]pipeline.SlotUpload, 0, len(slots))
	for _, slot := range slots {
		files := f[slot.Field]
		if !slot.Multi && len(files) > 1 {
			files = files[:1]
		}
		out = append(out, pipeline.SlotUpload{Slot: slot, Files: files})
	}
	return out
}

func checksum(file *storage.File) string {
	sum := sha256.Sum256(file.Data)
	return hex.EncodeToString(sum[:])
}

var (
	adharSlot = pipeline.Slot{Field: "adharImage", Column: "adhar_image"}
	panSlot   = pipeline.Slot{Field: "panImage", Column: "pan_image"}
	reraSlot  = pipeline.Slot{Field: "reraImage", Column: "rera_image"}

	blogImageSlot     = pipeline.Slot{Field: "image", Column: "image"}
	clientPhotoSlot   = pipeline.Slot{Field: "clientimage", Column: "client_photo"}
	contentFileSlot   = pipeline.Slot{Field: "contentFile", Column: "content_file"}
	bannerImageSlot   = pipeline.Slot{Field: "bannerImage", Column: "banner_image"}
	sliderImageSlot   = pipeline.Slot{Field: "image", Column: "image"}
	sliderMobileSlot  = pipeline.Slot{Field: "mobileImage", Column: "mobile_image"}
	paymentImageSlot  = pipeline.Slot{Field: "paymentImage", Column: "payment_image"}
	propertyImageSlot = func(s types.PropertyImageSlot) pipeline.Slot {
		return pipeline.Slot{Field: s.Field, Column: s.Column, Multi: true}
	}
)

func partnerSlots(kind types.PartnerKind) []pipeline.Slot {
	slots := []pipeline.Slot{adharSlot, panSlot}
	if kind.Rera {
		slots = append(slots, reraSlot)
	}
	return slots
}

func propertySlots() []pipeline.Slot {
	slots := make([]pipeline.Slot, 0, len(types.PropertyImageSlots))
	for _, s := range types.PropertyImageSlots {
		slots = append(slots, propertyImageSlot(s))
	}
	return slots
}
