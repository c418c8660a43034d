package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// ImageStore keeps uploaded post images. Paths are slash-separated and
// relative to the media root.
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Remove(rel string) error
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MaxImageSize bounds a single upload.
const MaxImageSize = 5 << 20

// DiskImageStore writes images below Root as posts/YYYY/MM/<uuid>.<ext>.
type DiskImageStore struct {
	Root string
}

func NewDiskImageStore(root string) *DiskImageStore {
	return &DiskImageStore{Root: root}
}

func (s *DiskImageStore) Save(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxImageSize {
		return "", fmt.Errorf("%w: file larger than %d bytes", ErrUnsupportedImage, MaxImageSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := time.Now()
	rel := path.Join("posts", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
	dst := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return rel, nil
}

func (s *DiskImageStore) Remove(rel string) error {
	clean := path.Clean("/" + rel)
	if !strings.HasPrefix(clean, "/posts/") {
		return fmt.Errorf("refusing to remove %q outside the posts directory", rel)
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
