package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/api/validate"
	"github.com/baharkarakas/rentacar-backend/internal/metrics"
	"github.com/baharkarakas/rentacar-backend/internal/models"
)

const (
	MaxImages      = 4
	MaxImageBytes  = 10 << 20
	cleanupTimeout = 30 * time.Second
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// uploader owns the image lifecycle shared by listings and avatars:
// acceptance checks, sequential uploads and compensating deletes.
type uploader struct {
	store   Storage
	timeout time.Duration
	log     *slog.Logger
}

func (u uploader) check(files []UploadFile, min, max int) error {
	var errs validate.Errs
	if len(files) < min {
		errs = append(errs, validate.ErrField{Field: "images", Msg: fmt.Sprintf("at least %d image required", min)})
	}
	if len(files) > max {
		errs = append(errs, validate.ErrField{Field: "images", Msg: fmt.Sprintf("at most %d images allowed", max)})
	}
	for _, f := range files {
		if !allowedImageTypes[f.ContentType] {
			errs = append(errs, validate.ErrField{Field: f.Name, Msg: "only jpeg, png or webp images are accepted"})
		}
		if f.Size > MaxImageBytes {
			errs = append(errs, validate.ErrField{Field: f.Name, Msg: "image exceeds 10MB"})
		}
	}
	if len(errs) > 0 {
		return validationErr("invalid images", errs)
	}
	return nil
}

// uploadAll uploads files in order. On the first failure every image
// already uploaded by this call is deleted before the error is returned.
func (u uploader) uploadAll(ctx context.Context, files []UploadFile, folder string) ([]models.Image, error) {
	out := make([]models.Image, 0, len(files))
	for _, f := range files {
		img, err := u.uploadOne(ctx, f, folder)
		if err != nil {
			u.log.Warn("image upload failed, rolling back batch", "file", f.Name, "uploaded", len(out), "err", err)
			u.discard(ctx, out)
			return nil, uploadErr(err)
		}
		out = append(out, img)
	}
	return out, nil
}

func (u uploader) uploadOne(ctx context.Context, f UploadFile, folder string) (models.Image, error) {
	uctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	img, err := u.store.Upload(uctx, f.Path, folder)
	metrics.StorageResult("upload", err)
	return img, err
}

// discard deletes images best-effort. It survives cancellation of the
// request context.
func (u uploader) discard(ctx context.Context, images []models.Image) {
	if len(images) == 0 {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	for _, img := range images {
		err := u.store.Delete(dctx, img.Handle)
		metrics.StorageResult("delete", err)
		if err != nil {
			u.log.Warn("storage delete failed", "handle", img.Handle, "url", img.URL, "err", err)
		}
	}
}

func removeTemp(log *slog.Logger, files []UploadFile) {
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			log.Warn("temp file cleanup failed", "path", f.Path, "err", err)
		}
	}
}
