package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/logger"
)

var (
	// ErrCameraUnavailable means the caller should fall back to the file picker
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrSessionClosed is returned when capturing from a stopped session
	ErrSessionClosed = errors.New("camera session already stopped")
)

// Track is one hardware resource held by a stream
type Track interface {
	Stop()
}

// Stream is an open camera feed
type Stream interface {
	Tracks() []Track
	Frame(ctx context.Context) (image.Image, error)
}

// Device opens camera streams. Open must not leave any track running when it
// returns an error.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Adapter hands out camera sessions
type Adapter struct {
	device Device
}

func NewAdapter(device Device) *Adapter {
	return &Adapter{device: device}
}

// StartCamera opens the device. Any failure is reported as
// ErrCameraUnavailable.
func (a *Adapter) StartCamera(ctx context.Context) (*CameraSession, error) {
	if a == nil || a.device == nil {
		return nil, ErrCameraUnavailable
	}
	stream, err := a.device.Open(ctx)
	if err != nil {
		logger.Warn("Camera open failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	return &CameraSession{stream: stream}, nil
}

// CameraSession owns an open stream until Capture or Stop releases it.
// Every track is stopped exactly once no matter how the session ends.
type CameraSession struct {
	stream Stream
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// Capture grabs one frame, encodes it as JPEG and releases the camera.
func (s *CameraSession) Capture(ctx context.Context) (Blob, error) {
	defer s.Stop()

	if !s.Active() {
		return Blob{}, ErrSessionClosed
	}
	img, err := s.stream.Frame(ctx)
	if err != nil {
		return Blob{}, fmt.Errorf("capturing frame: %w", err)
	}
	return EncodeJPEG(img, constants.CaptureFileName)
}

// Stop releases every track. Safe to call any number of times.
func (s *CameraSession) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		for _, t := range s.stream.Tracks() {
			t.Stop()
		}
		logger.Debug("Camera released")
	})
}

// Active reports whether the session still holds the camera
func (s *CameraSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}
