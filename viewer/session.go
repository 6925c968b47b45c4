// Package viewer ties the splitter, the compositor and the wiggle timer into
// a viewing session over one stereo pair at a time.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"ssmv/codec"
	"ssmv/mpo"
	"ssmv/prefs"
	"ssmv/stereo"
	"ssmv/wiggle"
)

var (
	ErrNoImage = errors.New("no stereo pair loaded")
	ErrTarget  = errors.New("unknown save target")
)

// Target selects the image written by Save.
type Target string

const (
	// ScreenLeft is the image shown on the left in cross mode.
	ScreenLeft Target = "left"
	// ScreenRight is the image shown on the right in cross mode.
	ScreenRight Target = "right"
	Anaglyph    Target = "anaglyph"
)

// loaded is everything derived from one opened file. It is replaced as a
// whole by the next successful load.
type loaded struct {
	container *mpo.Container
	pair      *stereo.Pair
	gray      func() *stereo.Pair
}

// Encoder writes an image in the format named by a file extension.
type Encoder interface {
	Encode(w io.Writer, img image.Image, ext string) error
}

type Option func(*Session)

// WithRedraw sets the function called after every wiggle flip. Without it
// the session never starts the wiggle timer and callers drive Frame
// themselves. redraw runs on the timer goroutine and must not call
// Configure or Close.
func WithRedraw(redraw func(turn bool)) Option {
	return func(s *Session) {
		s.redraw = redraw
	}
}

// WithEncoder sets the encoder used by Save, codec.Encoder{} by default.
func WithEncoder(enc Encoder) Option {
	return func(s *Session) {
		s.encoder = enc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session owns the bytes of the opened file, the decoded pair, the current
// preferences and the anaglyph cache. Loads and preference changes replace
// immutable snapshots, so readers never see a half-updated state.
type Session struct {
	decoder mpo.Decoder
	encoder Encoder
	logger  *slog.Logger
	redraw  func(turn bool)

	state atomic.Pointer[loaded]
	cfg   atomic.Pointer[prefs.Config]
	turn  atomic.Bool

	cacheMu sync.Mutex
	cache   stereo.AnaglyphCache

	cfgMu   sync.Mutex // serializes Configure and Close
	ctx     context.Context
	cancel  context.CancelFunc
	wiggler wiggle.Wiggler
}

func New(decoder mpo.Decoder, cfg prefs.Config, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		decoder: decoder,
		encoder: codec.Encoder{},
		logger:  slog.Default(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Configure(cfg)
	return s
}

// Config returns the current preferences.
func (s *Session) Config() prefs.Config {
	return *s.cfg.Load()
}

// Configure replaces the preferences. Entering wiggle mode, or changing the
// delay while in it, restarts the alternation; leaving it stops the timer
// before Configure returns.
func (s *Session) Configure(cfg prefs.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	cfg = cfg.Normalize()
	prev := s.cfg.Swap(&cfg)
	if s.ctx.Err() != nil || s.redraw == nil {
		return
	}

	switch {
	case cfg.Mode != stereo.Wiggle:
		s.wiggler.Stop()
		s.turn.Store(false)
	case prev == nil || prev.Mode != stereo.Wiggle || prev.Delay() != cfg.Delay() || !s.wiggler.Running():
		s.turn.Store(false)
		s.wiggler.Start(s.ctx, cfg.Delay(), s.flip)
		s.logger.Debug("wiggle started", "delay", cfg.Delay())
	}
}

func (s *Session) flip(turn bool) {
	if s.state.Load() == nil {
		return
	}
	s.turn.Store(turn)
	s.redraw(turn)
}

// Load splits data and decodes both images. On failure the previously
// loaded pair stays in place.
func (s *Session) Load(data []byte) error {
	return s.load("", data)
}

// LoadFile reads and loads the file at path.
func (s *Session) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read file %q: %w", path, err)
	}
	if err = s.load(path, data); err != nil {
		return fmt.Errorf("could not load %q: %w", path, err)
	}
	return nil
}

func (s *Session) load(name string, data []byte) error {
	splitter := mpo.Splitter{Decoder: s.decoder, Policy: s.Config().Header}
	c, err := splitter.Split(data)
	if err != nil {
		return err
	}
	pair, err := stereo.NewPair(c.Left, c.Right)
	if err != nil {
		return err
	}

	st := &loaded{
		container: c,
		pair:      pair,
		gray: sync.OnceValue(func() *stereo.Pair {
			return &stereo.Pair{Left: stereo.Grayscale(pair.Left), Right: stereo.Grayscale(pair.Right)}
		}),
	}
	s.state.Store(st)
	s.logger.Debug("loaded", "file", name, "first", c.First, "second", c.Second,
		"width", pair.Size().X, "height", pair.Size().Y)
	return nil
}

func (s *Session) current() (*loaded, error) {
	st := s.state.Load()
	if st == nil {
		return nil, ErrNoImage
	}
	return st, nil
}

// Container returns the split of the loaded file.
func (s *Session) Container() (*mpo.Container, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.container, nil
}

// Anaglyph returns the merge of the current views with the configured mask.
// The result is cached until the pair, swap, gray setting or mask changes.
// It must not be modified, and a later change never rewrites it.
func (s *Session) Anaglyph() (*stereo.Raster, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.anaglyph(st, s.Config())
}

func (s *Session) anaglyph(st *loaded, cfg prefs.Config) (*stereo.Raster, error) {
	pair := st.pair
	if cfg.Gray {
		pair = st.gray()
	}
	left, right := stereo.Eyes(pair, cfg.Swap)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cache.Get(left, right, cfg.Mask())
}

// frame returns the single view shown by the mode for the given wiggle turn:
// the anaglyph, or one of the views in wiggle mode. Cross mode has no single
// view and returns nil.
func (s *Session) frame(st *loaded, cfg prefs.Config, turn bool) (image.Image, error) {
	switch cfg.Mode {
	case stereo.Anaglyph:
		return s.anaglyph(st, cfg)
	case stereo.Wiggle:
		return stereo.WiggleFrame(st.pair, cfg.Swap, turn), nil
	}
	return nil, nil
}

// Size returns the panel size for the loaded pair and current preferences.
func (s *Session) Size() (image.Point, error) {
	st, err := s.current()
	if err != nil {
		return image.Point{}, err
	}
	cfg := s.Config()
	return cfg.Layout().Size(cfg.Mode, st.pair.Size()), nil
}

// Render draws the full panel at the current wiggle turn.
func (s *Session) Render() (*image.NRGBA, error) {
	return s.RenderTurn(s.turn.Load())
}

// RenderTurn draws the full panel as it looks at the given wiggle turn.
func (s *Session) RenderTurn(turn bool) (*image.NRGBA, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	cfg := s.Config()

	var views []image.Image
	if cfg.Mode == stereo.Cross {
		l, r := stereo.CrossOrder(st.pair, cfg.Swap)
		views = []image.Image{l, r}
	} else {
		v, err := s.frame(st, cfg, turn)
		if err != nil {
			return nil, err
		}
		views = []image.Image{v}
	}
	return cfg.Layout().Compose(cfg.Mode, views, cfg.HelpPoints, cfg.Background, cfg.Foreground), nil
}

// Image returns the image Save would write for target.
func (s *Session) Image(target Target) (image.Image, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	cfg := s.Config()
	switch target {
	case ScreenLeft:
		l, _ := stereo.CrossOrder(st.pair, cfg.Swap)
		return l, nil
	case ScreenRight:
		_, r := stereo.CrossOrder(st.pair, cfg.Swap)
		return r, nil
	case Anaglyph:
		return s.anaglyph(st, cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrTarget, target)
}

// Save writes the target image to path, in the format selected by the path
// extension. An existing file is only replaced when force is set.
func (s *Session) Save(target Target, path string, force bool) error {
	img, err := s.Image(target)
	if err != nil {
		return err
	}
	ext := codec.Ext(path)
	if ext == "" {
		return fmt.Errorf("could not save %q: %w", path, codec.ErrNoExtension)
	}
	if err = codec.WriteFile(path, force, func(w io.Writer) error {
		return s.encoder.Encode(w, img, ext)
	}); err != nil {
		return err
	}
	s.logger.Info("saved", "image", string(target), "file", path)
	return nil
}

// Close stops the wiggle timer for good. Configure keeps working afterwards
// but never restarts it.
func (s *Session) Close() {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cancel()
	s.wiggler.Stop()
}
