package image

import (
	"fmt"
	stdimage "image"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	_ "golang.org/x/image/webp"
)

var (
	ErrUndecodable = errors.New("image: unsupported or corrupt data")
	ErrBadName     = errors.New("image: invalid file name")
)

// RemoveResult tells a successful delete apart from a file that was not there.
type RemoveResult uint8

const (
	Removed RemoveResult = iota + 1
	NotPresent
)

func (r RemoveResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case NotPresent:
		return "not present"
	default:
		return fmt.Sprintf("RemoveResult(%d)", uint8(r))
	}
}

type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Store keeps book covers as JPEG files in one directory.
type Store struct {
	dir  string
	opts Options
	log  *zap.Logger
}

func NewStore(dir string, opts Options, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create image dir %s", dir)
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}
	return &Store{
		dir:  dir,
		opts: opts,
		log:  log.Named("images"),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save decodes r, shrinks it into the configured box and writes it as JPEG
// under name, replacing any previous file.
func (s *Store) Save(name string, r io.Reader) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return errors.Wrap(ErrUndecodable, err.Error())
	}
	img = s.fit(img)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err = imaging.Encode(tmp, img, imaging.JPEG, imaging.JPEGQuality(s.opts.Quality)); err != nil {
		tmp.Close()
		return errors.Wrap(err, "encode jpeg")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrap(err, "rename")
	}
	s.log.Debug("saved", zap.String("file", name))
	return nil
}

// Remove deletes name. A missing file is reported as NotPresent, not as an error.
func (s *Store) Remove(name string) (RemoveResult, error) {
	p, err := s.path(name)
	if err != nil {
		return 0, err
	}
	err = os.Remove(p)
	switch {
	case err == nil:
		return Removed, nil
	case errors.Is(err, fs.ErrNotExist):
		return NotPresent, nil
	default:
		return 0, errors.Wrap(err, "remove")
	}
}

func (s *Store) fit(img stdimage.Image) stdimage.Image {
	if s.opts.MaxWidth <= 0 || s.opts.MaxHeight <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= s.opts.MaxWidth && b.Dy() <= s.opts.MaxHeight {
		return img
	}
	return imaging.Fit(img, s.opts.MaxWidth, s.opts.MaxHeight, imaging.Lanczos)
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.Wrap(ErrBadName, name)
	}
	return filepath.Join(s.dir, name), nil
}
