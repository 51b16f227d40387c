// Package codec dispatches image reads and writes to the format codec that
// owns a file's extension.
package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/texconv/pkg/formats"
	"github.com/Faultbox/texconv/pkg/pixel"
)

// Registry errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrIO                = errors.New("file i/o error")
)

// Codec converts between one file format and canonical pixel buffers.
type Codec interface {
	Extension() string
	Matches(ext string) bool
	Analyze(data []byte) (*pixel.Buffer, error)
	Convert(buf *pixel.Buffer) ([]byte, error)
}

// Inspector is implemented by codecs that can describe a file from its headers.
type Inspector interface {
	Inspect(data []byte) (formats.Info, error)
}

// Registry maps extensions to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
	log    *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		codecs: make(map[string]Codec),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultOptions holds the write settings of the built-in codecs.
type DefaultOptions struct {
	TGARLE            bool
	BMPPixelsPerMeter int32
}

// NewDefault creates a registry with the BMP, TGA and DDS codecs registered.
func NewDefault(defaults DefaultOptions, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.Register("bmp", formats.BMP{PixelsPerMeter: defaults.BMPPixelsPerMeter})
	r.Register("tga", formats.TGA{RLE: defaults.TGARLE})
	r.Register("dds", formats.DDS{})
	return r
}

// Register binds ext to c, replacing any codec already registered for it.
func (r *Registry) Register(ext string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[ext] = c
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Lookup returns the codec for path's extension.
func (r *Registry) Lookup(path string) (Codec, error) {
	ext := formats.Extension(path)

	r.mu.RLock()
	c, ok := r.codecs[ext]
	r.mu.RUnlock()

	if !ok || !c.Matches(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return c, nil
}

// Analyze reads the file at path and decodes it with the matching codec.
func (r *Registry) Analyze(path string) (*pixel.Buffer, error) {
	c, err := r.Lookup(path)
	if err != nil {
		r.log.Warn("no codec for file", zap.String("path", path))
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Warn("reading image failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}

	buf, err := r.decode(c, data)
	if err != nil {
		r.log.Warn("decoding image failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	r.log.Debug("analyzed image",
		zap.String("path", path),
		zap.String("codec", c.Extension()),
		zap.Int("bytes", len(data)),
		zap.Int32("width", buf.Width),
		zap.Int32("height", buf.Height),
		zap.Uint64("digest", buf.Digest()),
	)
	return buf, nil
}

// Convert encodes buf with the codec matching path and writes the result.
// Nothing is written unless encoding succeeds, and the file is replaced in
// one step so readers never see a partial image.
func (r *Registry) Convert(path string, buf *pixel.Buffer) error {
	c, err := r.Lookup(path)
	if err != nil {
		r.log.Warn("no codec for file", zap.String("path", path))
		return err
	}

	data, err := c.Convert(buf)
	if err != nil {
		r.log.Warn("encoding image failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("converting %s: %w", path, err)
	}

	if err := writeFile(path, data); err != nil {
		r.log.Warn("writing image failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}

	r.log.Debug("wrote image",
		zap.String("path", path),
		zap.String("codec", c.Extension()),
		zap.Int("bytes", len(data)),
		zap.Uint64("digest", buf.Digest()),
	)
	return nil
}

// Decode decodes in-memory file data using the codec registered for ext.
func (r *Registry) Decode(ext string, data []byte) (*pixel.Buffer, error) {
	c, err := r.Lookup("." + ext)
	if err != nil {
		return nil, err
	}
	return r.decode(c, data)
}

// Encode encodes buf using the codec registered for ext.
func (r *Registry) Encode(ext string, buf *pixel.Buffer) ([]byte, error) {
	c, err := r.Lookup("." + ext)
	if err != nil {
		return nil, err
	}
	return c.Convert(buf)
}

// Inspect reads the headers of the file at path.
func (r *Registry) Inspect(path string) (formats.Info, error) {
	c, err := r.Lookup(path)
	if err != nil {
		return formats.Info{}, err
	}
	in, ok := c.(Inspector)
	if !ok {
		return formats.Info{}, fmt.Errorf("%w: codec %q cannot inspect files", ErrUnsupportedFormat, c.Extension())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return formats.Info{}, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}
	return in.Inspect(data)
}

// decode runs the codec, reporting a panic as ErrMalformedStream.
func (r *Registry) decode(c Codec, data []byte) (buf *pixel.Buffer, err error) {
	defer func() {
		if p := recover(); p != nil {
			buf = nil
			err = fmt.Errorf("%w: codec %q panicked: %v", formats.ErrMalformedStream, c.Extension(), p)
		}
	}()
	return c.Analyze(data)
}

// writeFile writes data to a temporary file next to path and renames it into
// place.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
