package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/baharkarakas/rentacar-backend/internal/services"
)

const (
	maxFieldBytes = 64 << 10
	// request ceiling: every allowed image at full size plus form fields
	maxBodyBytes = (services.MaxImages+1)*services.MaxImageBytes + 1<<20
)

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// form is a decoded request body whose file parts were spooled to temp
// files under dir.
type form struct {
	Values url.Values
	Files  map[string][]services.UploadFile
}

// Files for a field; callers hand them to a service which removes them.
func (f *form) files(field string) []services.UploadFile {
	return f.Files[field]
}

// cleanup removes every spooled file. Safe to call after a service has
// already removed them.
func (f *form) cleanup(log *slog.Logger) {
	for _, files := range f.Files {
		for _, uf := range files {
			if err := os.Remove(uf.Path); err != nil && !os.IsNotExist(err) {
				log.Warn("temp file cleanup failed", "path", uf.Path, "err", err)
			}
		}
	}
}

var errBadForm = errors.New("malformed form body")

// readForm accepts multipart/form-data (streamed, file parts spooled to
// disk) or a urlencoded body.
func readForm(w http.ResponseWriter, r *http.Request, dir string) (*form, error) {
	f := &form{Values: url.Values{}, Files: map[string][]services.UploadFile{}}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadForm, err)
		}
		for k, v := range r.PostForm {
			f.Values[k] = v
		}
		return f, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadForm, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			f.cleanup(slog.Default())
			return nil, fmt.Errorf("%w: %v", errBadForm, err)
		}
		name := part.FormName()
		if part.FileName() == "" {
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			if err != nil || len(b) > maxFieldBytes {
				f.cleanup(slog.Default())
				return nil, fmt.Errorf("%w: field %q too large", errBadForm, name)
			}
			f.Values.Add(name, string(b))
			continue
		}
		uf, err := spool(part, dir)
		if err != nil {
			f.cleanup(slog.Default())
			return nil, fmt.Errorf("%w: %v", errBadForm, err)
		}
		f.Files[name] = append(f.Files[name], uf)
	}
}

type filePart interface {
	io.Reader
	FileName() string
}

// spool copies one file part to disk. The content type is sniffed from the
// bytes, not taken from the client. Oversized parts are drained so the
// reported size is exact; the service rejects them.
func spool(part filePart, dir string) (services.UploadFile, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(part, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return services.UploadFile{}, err
	}
	head = head[:n]
	ctype := http.DetectContentType(head)

	ext, ok := extByType[ctype]
	if !ok {
		ext = strings.ToLower(filepath.Ext(part.FileName()))
	}
	tmp, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return services.UploadFile{}, err
	}
	defer tmp.Close()

	uf := services.UploadFile{Path: tmp.Name(), Name: part.FileName(), ContentType: ctype}
	if _, err := tmp.Write(head); err != nil {
		_ = os.Remove(tmp.Name())
		return services.UploadFile{}, err
	}
	written, err := io.Copy(tmp, io.LimitReader(part, services.MaxImageBytes+1-int64(n)))
	if err != nil {
		_ = os.Remove(tmp.Name())
		return services.UploadFile{}, err
	}
	uf.Size = int64(n) + written
	if uf.Size > services.MaxImageBytes {
		rest, err := io.Copy(io.Discard, part)
		if err != nil {
			_ = os.Remove(tmp.Name())
			return services.UploadFile{}, err
		}
		uf.Size += rest
	}
	return uf, nil
}
