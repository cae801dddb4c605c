package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNoFile   ErrCode = "NO_FILE"
	ErrNotImage ErrCode = "NOT_IMAGE"
	ErrTooLarge ErrCode = "TOO_LARGE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// MaxSize caps uploads at 5 MiB.
const MaxSize = 5 << 20

type Service interface {
	// SaveImage writes the upload under the configured directory and
	// returns the public URL path.
	SaveImage(filename, contentType string, size int64, r io.Reader) (string, error)
}

type service struct {
	dir string
}

func New(dir string) Service { return &service{dir: dir} }

func (s *service) SaveImage(filename, contentType string, size int64, r io.Reader) (string, error) {
	if filename == "" {
		return "", makeErr(ErrNoFile)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", makeErr(ErrNotImage)
	}
	if size > MaxSize {
		return "", makeErr(ErrTooLarge)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), filepath.Ext(filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// LimitReader guards against lying Content-Length headers.
	if _, err := io.Copy(dst, io.LimitReader(r, MaxSize+1)); err != nil {
		return "", err
	}
	fi, err := dst.Stat()
	if err != nil {
		return "", err
	}
	if fi.Size() > MaxSize {
		_ = os.Remove(dst.Name())
		return "", makeErr(ErrTooLarge)
	}

	return "/uploads/" + name, nil
}
