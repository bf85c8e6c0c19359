// AngelaMos | 2026
// uploads.go

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/carterperez-dev/leafcare/internal/core"
)

const UploadsPrefix = "/uploads/"

var allowedImageExts = []string{".jpg", ".jpeg", ".png"}

// ImageStore keeps supplement images on local disk under one directory.
type ImageStore struct {
	dir      string
	maxBytes int64
}

func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save validates and writes one image and returns its public URL. A file
// that already exists under the same name is never overwritten.
func (s *ImageStore) Save(filename string, body io.Reader) (string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", core.UploadError(
			fmt.Sprintf("image exceeds %d bytes", s.maxBytes),
		)
	}

	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return "", core.UploadError("file is not a readable image")
	}

	stored, err := s.writeExclusive(name, data)
	if err != nil {
		return "", err
	}

	return UploadsPrefix + stored, nil
}

func (s *ImageStore) writeExclusive(name string, data []byte) (string, error) {
	candidate := name
	for range 3 {
		f, err := os.OpenFile(
			filepath.Join(s.dir, candidate),
			os.O_WRONLY|os.O_CREATE|os.O_EXCL,
			0o640,
		)
		if errors.Is(err, os.ErrExist) {
			candidate = uuid.New().String()[:8] + "_" + name
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create image file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()                                  //nolint:errcheck // already failing
			_ = os.Remove(filepath.Join(s.dir, candidate)) //nolint:errcheck // best-effort cleanup
			return "", fmt.Errorf("write image file: %w", err)
		}

		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close image file: %w", err)
		}

		return candidate, nil
	}

	return "", fmt.Errorf("allocate image name for %q: %w", name, core.ErrUploadFailed)
}

// Remove deletes the file behind a URL returned by Save. Missing files are
// not an error.
func (s *ImageStore) Remove(url string) error {
	name := path.Base(strings.TrimPrefix(url, UploadsPrefix))
	if name == "." || name == "/" || name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}

	return nil
}

// Handler serves stored images read-only. Directory listings are refused.
func (s *ImageStore) Handler() http.Handler {
	files := http.StripPrefix(UploadsPrefix, http.FileServer(http.Dir(s.dir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// SanitizeFilename strips any directory part a client sent and checks the
// extension against the image allow-list.
func SanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return "", core.UploadError("invalid file name")
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !lo.Contains(allowedImageExts, ext) {
		return "", core.UploadError("only jpg, jpeg and png images are accepted")
	}

	return name, nil
}
