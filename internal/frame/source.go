package frame

import (
	"context"
	"errors"
	"image"
	"os"
)

// ErrCameraUnavailable is returned when no frame can be acquired from the
// video source.
var ErrCameraUnavailable = errors.New("camera unavailable")

// CaptureWidth and CaptureHeight are the frame dimensions requested from the
// capture device. Frames of any size are accepted.
const (
	CaptureWidth  = 640
	CaptureHeight = 480
)

//go:generate mockgen -package=mocks -destination=mocks/mock_source.go github.com/abhisek/rpscam/internal/frame Source

// Source is a live video stream that can be paused on the current frame.
type Source interface {
	// Play resumes the live stream.
	Play()

	// Pause freezes the stream on the current frame.
	Pause()

	// Playing reports whether the stream is live.
	Playing() bool

	// Frame returns the current frame: the newest one while playing, the
	// frozen one while paused.
	Frame(ctx context.Context) (image.Image, error)
}

// Config configures the file-backed video source.
type Config struct {
	// Dir is the directory an external capture process writes frames into.
	Dir string
}

// DefaultConfig returns a Config reading frames from ./frames.
func DefaultConfig() Config {
	return Config{Dir: "frames"}
}

// ConfigFromEnv overrides the defaults with RPSCAM_FRAMES.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if d := os.Getenv("RPSCAM_FRAMES"); d != "" {
		cfg.Dir = d
	}
	return cfg
}
