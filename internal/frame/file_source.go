package frame

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileSource treats a directory as a live camera: an external capture
// process (for example ffmpeg writing one image per tick) keeps dropping
// frames into it, and the newest decodable file is the current frame.
type FileSource struct {
	dir     string
	playing bool
	frozen  image.Image
	err     error
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a playing source over dir.
func NewFileSource(cfg Config) *FileSource {
	return &FileSource{dir: cfg.Dir, playing: true}
}

func (s *FileSource) Play() {
	s.playing = true
	s.frozen = nil
	s.err = nil
}

func (s *FileSource) Pause() {
	if !s.playing {
		return
	}
	s.playing = false
	s.frozen, s.err = s.latest()
}

func (s *FileSource) Playing() bool {
	return s.playing
}

func (s *FileSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.playing {
		return s.latest()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.frozen, nil
}

type candidate struct {
	path    string
	modTime time.Time
}

// latest decodes the newest frame, falling back to older ones when the
// newest is still being written.
func (s *FileSource) latest() (image.Image, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	var frames []candidate
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		frames = append(frames, candidate{
			path:    filepath.Join(s.dir, e.Name()),
			modTime: info.ModTime(),
		})
	}
	sort.Slice(frames, func(i, j int) bool {
		if frames[i].modTime.Equal(frames[j].modTime) {
			return frames[i].path > frames[j].path
		}
		return frames[i].modTime.After(frames[j].modTime)
	})

	for _, f := range frames {
		img, err := Load(f.path)
		if err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: no decodable frame in %s", ErrCameraUnavailable, s.dir)
}
