package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/nutrisnap/internal/constants"
)

// ErrNotImage is returned when a picked file is not an image
var ErrNotImage = errors.New("file is not an image")

// Blob is the single upload shape for camera captures and picked files
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes
func (b Blob) Size() int { return len(b.Data) }

// FromFile reads an image from disk. There is no stream lifecycle on this
// path; the bytes are passed through with a sniffed content type.
func FromFile(path string) (Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return Blob{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
	if err != nil {
		return Blob{}, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > constants.MaxUploadBytes {
		return Blob{}, fmt.Errorf("image %s is larger than %d MB", filepath.Base(path), constants.MaxUploadBytes>>20)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Blob{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, filepath.Base(path), contentType)
	}
	return Blob{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

// EncodeJPEG renders a captured frame as an uploadable JPEG
func EncodeJPEG(img image.Image, name string) (Blob, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: constants.CaptureJPEGQuality}); err != nil {
		return Blob{}, fmt.Errorf("encoding capture: %w", err)
	}
	return Blob{Name: name, ContentType: "image/jpeg", Data: buf.Bytes()}, nil
}
