// Package app composes lookup, sanitizing, encoding and rendering for the
// command line.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/qrcard"
	"github.com/zoobzio/qrcard/internal/config"
	"github.com/zoobzio/qrcard/internal/logging"
	"github.com/zoobzio/qrcard/internal/render"
	"github.com/zoobzio/qrcard/internal/source"
	"golang.org/x/sync/errgroup"
)

// lookupTimeout bounds a single record lookup.
const lookupTimeout = 30 * time.Second

// Service runs the generate and decode flows.
type Service struct {
	cfg       *config.AppConfig
	source    source.Source
	sanitizer *qrcard.Sanitizer
	proc      *qrcard.Processor
	renderer  render.Renderer
	capturer  *render.QRCapturer
	hasher    qrcard.Hasher
	log       *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSource replaces the record source chosen from configuration.
func WithSource(src source.Source) Option {
	return func(s *Service) { s.source = src }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New builds a Service from cfg.
func New(cfg *config.AppConfig, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil {
		src, err := openSource(cfg.Source)
		if err != nil {
			return nil, err
		}
		s.source = src
	}

	sanitizer, err := qrcard.NewSanitizer(cfg.SanitizerOptions()...)
	if err != nil {
		return nil, fmt.Errorf("sanitizer: %w", err)
	}
	s.sanitizer = sanitizer

	popts := []qrcard.ProcessorOption{
		qrcard.WithSanitizer(sanitizer),
		qrcard.WithStrict(cfg.Decode.Strict),
		qrcard.WithDecodeDepth(cfg.Sanitize.MaxDepth),
	}
	if cfg.Codec.Indent {
		popts = append(popts, qrcard.WithIndent("", "  "))
	}
	s.proc = qrcard.NewProcessor(popts...)

	level, ok := render.ParseLevel(cfg.Render.Level)
	if !ok {
		return nil, fmt.Errorf("unknown render level %q", cfg.Render.Level)
	}
	s.renderer = render.New(render.WithLevel(level), render.WithBorder(cfg.Render.Border))
	s.capturer = render.NewCapturer()

	hasher, ok := qrcard.HasherFor(qrcard.HashAlgo(cfg.Fingerprint))
	if !ok {
		return nil, fmt.Errorf("unknown fingerprint algorithm %q", cfg.Fingerprint)
	}
	s.hasher = hasher
	return s, nil
}

func openSource(cfg config.SourceConfig) (source.Source, error) {
	if cfg.Fixtures != "" {
		src, err := source.LoadFile(cfg.Fixtures, source.WithDelay(cfg.Delay))
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		return src, nil
	}
	src, err := source.NewDemoSource(source.WithDelay(cfg.Delay))
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return src, nil
}

// Generated is the result of generating a code for one record.
type Generated struct {
	ID          string
	Payload     string
	Fingerprint string
	Link        string
	Code        *render.Code
}

// Generate looks up id, encodes the sanitized record and renders it.
func (s *Service) Generate(ctx context.Context, id string) (*Generated, error) {
	log := s.log.WithContext(ctx).WithField("id", id)

	r, err := s.lookup(ctx, id)
	if err != nil {
		log.ErrorWithErr("lookup failed", err)
		return nil, err
	}

	payload, err := s.proc.Encode(ctx, r)
	if err != nil {
		log.ErrorWithErr("encode failed", err)
		return nil, fmt.Errorf("encode %s: %w", id, err)
	}

	code, err := s.renderer.Render(payload)
	if err != nil {
		log.ErrorWithErr("render failed", err)
		return nil, fmt.Errorf("render %s: %w", id, err)
	}

	g := &Generated{
		ID:          id,
		Payload:     payload,
		Fingerprint: s.hasher.Hash([]byte(payload)),
		Link:        qrcard.Link(s.cfg.Link.Base, payload),
		Code:        code,
	}
	log.Payload("payload encoded", g.Fingerprint, len(payload))
	return g, nil
}

// GenerateAll generates codes for ids concurrently. Results keep the order
// of ids; the first failure cancels the rest.
func (s *Service) GenerateAll(ctx context.Context, ids []string) ([]*Generated, error) {
	out := make([]*Generated, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			gen, err := s.Generate(ctx, id)
			if err != nil {
				return err
			}
			out[i] = gen
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) lookup(ctx context.Context, id string) (*qrcard.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	return s.source.Lookup(ctx, id)
}

// Decode decodes payload text in either dialect.
func (s *Service) Decode(ctx context.Context, text string) (*qrcard.Record, error) {
	s.log.WithContext(ctx).Payload("decoding payload", s.hasher.Hash([]byte(text)), len(text))
	return s.proc.Decode(ctx, text)
}

// DecodeLink decodes the payload embedded in a carrier link.
func (s *Service) DecodeLink(ctx context.Context, link string) (*qrcard.Record, error) {
	s.log.WithContext(ctx).Payload("decoding link", s.hasher.Hash([]byte(link)), len(link))
	return s.proc.DecodeLink(ctx, link)
}

// Scan reads a QR code image and decodes its payload.
func (s *Service) Scan(ctx context.Context, path string) (*qrcard.Record, error) {
	text, err := s.capturer.CaptureFile(path)
	if err != nil {
		s.log.WithContext(ctx).WithField("path", path).ErrorWithErr("capture failed", err)
		return nil, err
	}
	return s.Decode(ctx, text)
}

// Export looks up id and marshals the sanitized record in format f.
func (s *Service) Export(ctx context.Context, id string, f Format) ([]byte, error) {
	r, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.processor(f).Send(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", id, err)
	}
	s.log.WithContext(ctx).WithFields(map[string]any{
		"id":     id,
		"format": string(f),
	}).Payload("record exported", s.hasher.Hash(data), len(data))
	return data, nil
}

// Import unmarshals a record exported in format f.
func (s *Service) Import(ctx context.Context, data []byte, f Format) (*qrcard.Record, error) {
	return s.processor(f).Receive(ctx, data)
}

func (s *Service) processor(f Format) *qrcard.Processor {
	return qrcard.NewProcessor(
		qrcard.WithCodec(f.Codec()),
		qrcard.WithSanitizer(s.sanitizer),
		qrcard.WithDecodeDepth(s.cfg.Sanitize.MaxDepth),
	)
}

// LinkFor builds a carrier link for payload text.
func (s *Service) LinkFor(text string) string {
	return qrcard.Link(s.cfg.Link.Base, text)
}

// PNGSize returns the configured PNG edge in pixels.
func (s *Service) PNGSize() int {
	return s.cfg.Render.Size
}
